// Package local implements storage.Backend on the local filesystem for
// development and tests.
package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/kbukum/backend-template/logger"
	"github.com/kbukum/backend-template/storage"
)

func init() {
	storage.RegisterFactory(storage.ProviderLocal, func(_ context.Context, cfg storage.Config, providerCfg any, _ *logger.Logger) (storage.Backend, error) {
		c := &Config{BasePath: cfg.BasePath, BaseURL: cfg.PublicURL}
		if providerCfg != nil {
			pc, ok := providerCfg.(*Config)
			if !ok {
				return nil, fmt.Errorf("local: expected *local.Config, got %T", providerCfg)
			}
			c = pc
		}
		c.ApplyDefaults()
		if err := c.Validate(); err != nil {
			return nil, err
		}
		return New(c.BasePath, c.BaseURL)
	})
}

// Backend stores objects as files under a base directory. Keys map to
// slash-separated relative paths.
type Backend struct {
	basePath string
	baseURL  string
	now      func() time.Time
}

var _ storage.Backend = (*Backend)(nil)
var _ storage.PublicURLer = (*Backend)(nil)

// New creates the base directory if needed.
func New(basePath, baseURL string) (*Backend, error) {
	abs, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("local: resolve base path: %w", err)
	}
	if err := os.MkdirAll(abs, 0o750); err != nil {
		return nil, fmt.Errorf("local: create base directory: %w", err)
	}
	return &Backend{basePath: abs, baseURL: strings.TrimSuffix(baseURL, "/"), now: time.Now}, nil
}

// fullPath resolves key inside basePath; ".." segments cannot escape it.
func (b *Backend) fullPath(key string) string {
	return filepath.Join(b.basePath, filepath.FromSlash(path.Clean("/"+key)))
}

func (b *Backend) Put(_ context.Context, key string, r io.Reader, _ storage.PutOptions) error {
	dst := b.fullPath(key)
	if err := os.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".upload-*")
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // no-op after a successful rename

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return fmt.Errorf("write file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), dst)
}

func (b *Backend) Get(_ context.Context, key string) (io.ReadCloser, error) {
	f, err := os.Open(b.fullPath(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, storage.NewError(storage.KindNotFound, fmt.Errorf("object not found: %s", key))
		}
		return nil, err
	}
	return f, nil
}

// Delete removes the file. A missing key is not an error, matching S3.
func (b *Backend) Delete(_ context.Context, key string) error {
	if err := os.Remove(b.fullPath(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func (b *Backend) List(_ context.Context, prefix string) ([]storage.ObjectInfo, error) {
	objects := []storage.ObjectInfo{}
	err := filepath.WalkDir(b.basePath, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), ".upload-") {
			return nil
		}
		rel, err := filepath.Rel(b.basePath, p)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if !strings.HasPrefix(key, prefix) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		objects = append(objects, storage.ObjectInfo{
			Key:          key,
			Size:         info.Size(),
			LastModified: info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(objects, func(i, j int) bool { return objects[i].Key < objects[j].Key })
	return objects, nil
}

// PresignGet returns the public URL with an expires parameter. Local files
// carry no signature.
func (b *Backend) PresignGet(_ context.Context, key string, expiry time.Duration) (string, error) {
	u, err := url.Parse(b.PublicURL(key))
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("expires", strconv.FormatInt(b.now().Add(expiry).Unix(), 10))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (b *Backend) Ping(_ context.Context) error {
	info, err := os.Stat(b.basePath)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", b.basePath)
	}
	return nil
}

// PublicURL returns BaseURL/key, or a file:// URL without a BaseURL.
func (b *Backend) PublicURL(key string) string {
	if b.baseURL != "" {
		return b.baseURL + "/" + strings.TrimPrefix(key, "/")
	}
	u := &url.URL{Scheme: "file", Path: filepath.ToSlash(b.fullPath(key))}
	return u.String()
}
