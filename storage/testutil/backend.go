package testutil

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/kbukum/backend-template/storage"
)

// Object is a stored object with the options it was written with.
type Object struct {
	Data    []byte
	Options storage.PutOptions
	ModTime time.Time
}

// Backend is an in-memory storage.Backend that records every call.
type Backend struct {
	mu      sync.RWMutex
	objects map[string]*Object
	calls   []string
	errs    map[string]error
}

var _ storage.Backend = (*Backend)(nil)

func NewBackend() *Backend {
	return &Backend{objects: make(map[string]*Object), errs: make(map[string]error)}
}

// FailWith makes method ("Put", "Get", "Delete", "List", "PresignGet",
// "Ping") return err until Reset.
func (b *Backend) FailWith(method string, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.errs[method] = err
}

// Calls returns the names of the methods invoked so far.
func (b *Backend) Calls() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]string(nil), b.calls...)
}

// Object returns the stored object for key.
func (b *Backend) Object(key string) (*Object, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	o, ok := b.objects[key]
	return o, ok
}

// Seed stores data under key without recording a call.
func (b *Backend) Seed(key string, data []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.objects[key] = &Object{Data: data, ModTime: time.Now()}
}

// Reset clears objects, calls and injected errors.
func (b *Backend) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.objects = make(map[string]*Object)
	b.errs = make(map[string]error)
	b.calls = nil
}

func (b *Backend) record(method string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = append(b.calls, method)
	return b.errs[method]
}

func (b *Backend) Put(_ context.Context, key string, r io.Reader, opts storage.PutOptions) error {
	if err := b.record("Put"); err != nil {
		return err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read upload data: %w", err)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.objects[key] = &Object{Data: data, Options: opts, ModTime: time.Now()}
	return nil
}

func (b *Backend) Get(_ context.Context, key string) (io.ReadCloser, error) {
	if err := b.record("Get"); err != nil {
		return nil, err
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	o, ok := b.objects[key]
	if !ok {
		return nil, storage.NewError(storage.KindNotFound, fmt.Errorf("no such key: %s", key))
	}
	return io.NopCloser(bytes.NewReader(o.Data)), nil
}

func (b *Backend) Delete(_ context.Context, key string) error {
	if err := b.record("Delete"); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.objects, key)
	return nil
}

func (b *Backend) List(_ context.Context, prefix string) ([]storage.ObjectInfo, error) {
	if err := b.record("List"); err != nil {
		return nil, err
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	result := []storage.ObjectInfo{}
	for key, o := range b.objects {
		if strings.HasPrefix(key, prefix) {
			result = append(result, storage.ObjectInfo{Key: key, Size: int64(len(o.Data)), LastModified: o.ModTime})
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Key < result[j].Key })
	return result, nil
}

// PresignGet returns mem://<key>?X-Amz-Expires=<seconds>.
func (b *Backend) PresignGet(_ context.Context, key string, expiry time.Duration) (string, error) {
	if err := b.record("PresignGet"); err != nil {
		return "", err
	}
	q := url.Values{"X-Amz-Expires": {strconv.Itoa(int(expiry.Seconds()))}}
	return "mem://" + key + "?" + q.Encode(), nil
}

func (b *Backend) Ping(_ context.Context) error {
	return b.record("Ping")
}
