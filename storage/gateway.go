package storage

import (
	"context"
	"fmt"
	"io"
	"mime"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/kbukum/backend-template/logger"
	"github.com/kbukum/backend-template/observability"
)

// Success messages reported by the CLI and HTTP handlers.
const (
	MsgUploaded   = "Uploaded Successfully"
	MsgDownloaded = "Downloaded Successfully"
	MsgDeleted    = "Deleted Successfully"
)

// Image upload layout.
const (
	ImagePrefix      = "images"
	ImageExt         = ".jpg"
	ImageContentType = "image/jpeg"
)

// Gateway performs object operations against one long-lived Backend.
// It is safe for concurrent use.
type Gateway struct {
	backend   Backend
	publicURL string
	expiry    time.Duration
	maxUpload int64
	log       *logger.Logger
	metrics   *observability.Metrics
}

// NewGateway wraps backend. cfg supplies the public base URL, the
// presigned URL expiry and the upload size cap.
func NewGateway(backend Backend, cfg Config, log *logger.Logger) *Gateway {
	cfg.ApplyDefaults()
	return &Gateway{
		backend:   backend,
		publicURL: strings.TrimSuffix(cfg.PublicURL, "/"),
		expiry:    cfg.URLExpiry,
		maxUpload: cfg.MaxUploadSize,
		log:       log.WithComponent("storage"),
		metrics:   observability.MustMetrics(),
	}
}

// Backend returns the underlying provider client.
func (g *Gateway) Backend() Backend { return g.backend }

// UploadObject uploads the regular file at localPath to key. A missing
// local file fails with FileNotFound before any backend call.
func (g *Gateway) UploadObject(ctx context.Context, localPath, key string) error {
	info, err := os.Stat(localPath)
	if err != nil || !info.Mode().IsRegular() {
		return FileNotFound(OpUpload, localPath)
	}

	return g.observe(ctx, OpUpload, key, func(ctx context.Context) error {
		f, err := os.Open(localPath)
		if err != nil {
			return err
		}
		defer f.Close()

		return g.backend.Put(ctx, key, f, PutOptions{
			ContentType: contentType(key),
			Size:        info.Size(),
		})
	})
}

// DownloadObject writes key to localPath. The file is replaced only once
// the full object has been received.
func (g *Gateway) DownloadObject(ctx context.Context, key, localPath string) error {
	return g.observe(ctx, OpDownload, key, func(ctx context.Context) error {
		rc, err := g.backend.Get(ctx, key)
		if err != nil {
			return err
		}
		defer rc.Close()

		tmp, err := os.CreateTemp(filepath.Dir(localPath), "."+filepath.Base(localPath)+".*")
		if err != nil {
			return LocalFileError(OpDownload, localPath, err)
		}
		defer os.Remove(tmp.Name()) //nolint:errcheck // no-op after a successful rename

		if _, err := io.Copy(tmp, rc); err != nil {
			tmp.Close()
			return err
		}
		if err := tmp.Close(); err != nil {
			return LocalFileError(OpDownload, localPath, err)
		}
		if err := os.Rename(tmp.Name(), localPath); err != nil {
			return LocalFileError(OpDownload, localPath, err)
		}
		return nil
	})
}

// DeleteObject removes key.
func (g *Gateway) DeleteObject(ctx context.Context, key string) error {
	return g.observe(ctx, OpDelete, key, func(ctx context.Context) error {
		return g.backend.Delete(ctx, key)
	})
}

// ListObjects returns the sorted keys starting with prefix. No match
// yields an empty, non-nil slice.
func (g *Gateway) ListObjects(ctx context.Context, prefix string) ([]string, error) {
	objects, err := g.ListObjectInfo(ctx, prefix)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(objects))
	for _, o := range objects {
		keys = append(keys, o.Key)
	}
	return keys, nil
}

// ListObjectInfo is ListObjects with sizes and modification times.
func (g *Gateway) ListObjectInfo(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	var objects []ObjectInfo
	err := g.observe(ctx, OpList, prefix, func(ctx context.Context) error {
		var err error
		objects, err = g.backend.List(ctx, prefix)
		return err
	})
	if err != nil {
		return nil, err
	}
	if objects == nil {
		objects = []ObjectInfo{}
	}
	sort.Slice(objects, func(i, j int) bool { return objects[i].Key < objects[j].Key })
	return objects, nil
}

// ObjectURL returns a presigned GET URL for key valid for the configured
// expiry (one hour by default).
func (g *Gateway) ObjectURL(ctx context.Context, key string) (string, error) {
	var u string
	err := g.observe(ctx, OpURL, key, func(ctx context.Context) error {
		var err error
		u, err = g.backend.PresignGet(ctx, key, g.expiry)
		return err
	})
	if err != nil {
		return "", err
	}
	return u, nil
}

// URLExpiry is the validity window applied by ObjectURL.
func (g *Gateway) URLExpiry() time.Duration { return g.expiry }

// MaxUploadSize is the largest image, in bytes, accepted for upload.
func (g *Gateway) MaxUploadSize() int64 { return g.maxUpload }

// UploadImage stores r as a public-read JPEG under a fresh key and returns
// its public URL. Failures are logged and returned.
func (g *Gateway) UploadImage(ctx context.Context, r io.Reader, folder string) (string, error) {
	key := ImageKey(folder)
	err := g.observe(ctx, OpUploadImage, key, func(ctx context.Context) error {
		return g.backend.Put(ctx, key, r, PutOptions{
			ContentType: ImageContentType,
			ACL:         ACLPublicRead,
			Size:        -1,
		})
	})
	if err != nil {
		g.log.WithContext(ctx).Error("image upload failed", logger.Fields(
			logger.FieldOperation, OpUploadImage,
			logger.FieldKey, key,
			logger.FieldError, err.Error(),
			"kind", KindOf(err).String(),
		))
		return "", err
	}
	return g.PublicURL(key), nil
}

// PublicURL joins the configured public base URL and key. Without one the
// backend's own public URL is used when it provides one.
func (g *Gateway) PublicURL(key string) string {
	if g.publicURL == "" {
		if p, ok := g.backend.(PublicURLer); ok {
			return p.PublicURL(key)
		}
	}
	return g.publicURL + "/" + key
}

// Ping checks backend reachability.
func (g *Gateway) Ping(ctx context.Context) error {
	return wrap(OpPing, "", g.backend.Ping(ctx))
}

// ImageKey returns images/<uuid>.jpg, or images/<folder>/<uuid>.jpg when
// folder is set. folder cannot climb out of the images prefix.
func ImageKey(folder string) string {
	folder = strings.Trim(path.Clean("/"+folder), "/")
	name := uuid.NewString() + ImageExt
	if folder == "" {
		return ImagePrefix + "/" + name
	}
	return ImagePrefix + "/" + folder + "/" + name
}

func (g *Gateway) observe(ctx context.Context, op, key string, fn func(context.Context) error) error {
	ctx, span := observability.StartSpan(ctx, observability.SpanStorage+op)
	span.SetAttributes(
		attribute.String(observability.AttrOperationName, op),
		attribute.String(observability.AttrObjectKey, key),
	)

	start := time.Now()
	err := wrap(op, key, fn(ctx))
	elapsed := time.Since(start)

	outcome := "ok"
	if err != nil {
		outcome = KindOf(err).String()
		span.SetAttributes(attribute.String(observability.AttrErrorKind, outcome))
	}
	observability.EndSpan(span, err)
	g.metrics.RecordOperation(ctx, op, outcome, elapsed)

	fields := logger.DurationFields(op, elapsed)
	fields[logger.FieldKey] = key
	fields[logger.FieldStatus] = outcome
	g.log.WithContext(ctx).Debug(fmt.Sprintf("storage %s", op), fields)
	return err
}

func contentType(key string) string {
	if ct := mime.TypeByExtension(path.Ext(key)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
