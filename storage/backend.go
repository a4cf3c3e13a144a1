package storage

import (
	"context"
	"io"
	"time"
)

// ACL is a canned access policy applied on upload.
type ACL string

const (
	ACLPrivate    ACL = ""
	ACLPublicRead ACL = "public-read"
)

// PutOptions tune a single upload. Size is -1 when unknown.
type PutOptions struct {
	ContentType string
	ACL         ACL
	Size        int64
}

// ObjectInfo describes a stored object.
type ObjectInfo struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"lastModified"`
	ETag         string    `json:"etag,omitempty"`
}

// Backend is a provider client. One instance is created at startup and
// shared by all requests. Implementations return *Error values classified
// with their provider's error codes; other errors are classified by the
// Gateway.
type Backend interface {
	// Put creates or overwrites key with the contents of r.
	Put(ctx context.Context, key string, r io.Reader, opts PutOptions) error

	// Get opens key for reading. The caller closes the reader.
	Get(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes key.
	Delete(ctx context.Context, key string) error

	// List returns every object whose key starts with prefix, following
	// all result pages.
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)

	// PresignGet returns a URL granting read access to key for expiry.
	PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error)

	// Ping checks that the bucket is reachable.
	Ping(ctx context.Context) error
}

// PublicURLer is implemented by backends that can build a public object
// URL when no public base URL is configured.
type PublicURLer interface {
	PublicURL(key string) string
}
