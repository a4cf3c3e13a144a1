// Package minio implements storage.Backend with the MinIO Go client for
// MinIO and other S3-compatible servers.
package minio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/kbukum/backend-template/logger"
	"github.com/kbukum/backend-template/storage"
)

func init() {
	storage.RegisterFactory(storage.ProviderMinio, func(_ context.Context, cfg storage.Config, providerCfg any, log *logger.Logger) (storage.Backend, error) {
		c := FromStorageConfig(cfg)
		if providerCfg != nil {
			pc, ok := providerCfg.(*Config)
			if !ok {
				return nil, fmt.Errorf("minio: expected *minio.Config, got %T", providerCfg)
			}
			c = pc
		}
		return New(c)
	})
}

// Config holds MinIO connection settings.
type Config struct {
	// Endpoint is host:port or a full http(s) URL.
	Endpoint     string
	Bucket       string
	Region       string
	AccessKey    string
	SecretKey    string
	UseSSL       bool
	UsePathStyle bool
}

// FromStorageConfig derives the MinIO settings from the core config.
func FromStorageConfig(cfg storage.Config) *Config {
	return &Config{
		Endpoint:     cfg.Endpoint,
		Bucket:       cfg.Bucket,
		Region:       cfg.Region,
		AccessKey:    cfg.AccessKey,
		SecretKey:    cfg.SecretKey,
		UseSSL:       cfg.UseSSL,
		UsePathStyle: cfg.UsePathStyle,
	}
}

// Backend implements storage.Backend on a MinIO client.
type Backend struct {
	client   *minio.Client
	bucket   string
	endpoint string
}

var _ storage.Backend = (*Backend)(nil)
var _ storage.PublicURLer = (*Backend)(nil)

// New creates the client. No request is sent until the first operation;
// with Region set, presigning never contacts the server.
func New(cfg *Config) (*Backend, error) {
	if cfg.Endpoint == "" || cfg.Bucket == "" {
		return nil, errors.New("minio: endpoint and bucket are required")
	}

	host, secure, err := splitEndpoint(cfg.Endpoint, cfg.UseSSL)
	if err != nil {
		return nil, err
	}

	opts := &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: secure,
		Region: cfg.Region,
	}
	if cfg.UsePathStyle {
		opts.BucketLookup = minio.BucketLookupPath
	}

	client, err := minio.New(host, opts)
	if err != nil {
		return nil, fmt.Errorf("minio: create client: %w", err)
	}

	scheme := "http"
	if secure {
		scheme = "https"
	}
	return &Backend{client: client, bucket: cfg.Bucket, endpoint: scheme + "://" + host}, nil
}

// splitEndpoint accepts "host:port" or "scheme://host:port".
func splitEndpoint(endpoint string, useSSL bool) (string, bool, error) {
	if !strings.Contains(endpoint, "://") {
		return strings.TrimSuffix(endpoint, "/"), useSSL, nil
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", false, fmt.Errorf("minio: invalid endpoint %q: %w", endpoint, err)
	}
	return u.Host, u.Scheme == "https", nil
}

func (b *Backend) Put(ctx context.Context, key string, r io.Reader, opts storage.PutOptions) error {
	size := opts.Size
	if size == 0 {
		size = -1
	}
	putOpts := minio.PutObjectOptions{ContentType: opts.ContentType}
	if opts.ACL != storage.ACLPrivate {
		putOpts.UserMetadata = map[string]string{"x-amz-acl": string(opts.ACL)}
	}
	if _, err := b.client.PutObject(ctx, b.bucket, key, r, size, putOpts); err != nil {
		return classify(err)
	}
	return nil
}

func (b *Backend) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	obj, err := b.client.GetObject(ctx, b.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, classify(err)
	}
	// GetObject is lazy; Stat surfaces a missing key before the caller reads.
	if _, err := obj.Stat(); err != nil {
		obj.Close()
		return nil, classify(err)
	}
	return obj, nil
}

func (b *Backend) Delete(ctx context.Context, key string) error {
	if err := b.client.RemoveObject(ctx, b.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return classify(err)
	}
	return nil
}

func (b *Backend) List(ctx context.Context, prefix string) ([]storage.ObjectInfo, error) {
	objects := []storage.ObjectInfo{}
	for obj := range b.client.ListObjects(ctx, b.bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, classify(obj.Err)
		}
		objects = append(objects, storage.ObjectInfo{
			Key:          obj.Key,
			Size:         obj.Size,
			LastModified: obj.LastModified,
			ETag:         obj.ETag,
		})
	}
	return objects, nil
}

func (b *Backend) PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error) {
	u, err := b.client.PresignedGetObject(ctx, b.bucket, key, expiry, url.Values{})
	if err != nil {
		return "", classify(err)
	}
	return u.String(), nil
}

func (b *Backend) Ping(ctx context.Context) error {
	ok, err := b.client.BucketExists(ctx, b.bucket)
	if err != nil {
		return classify(err)
	}
	if !ok {
		return storage.NewError(storage.KindNotFound, fmt.Errorf("bucket %q does not exist", b.bucket))
	}
	return nil
}

// PublicURL returns the path-style object URL.
func (b *Backend) PublicURL(key string) string {
	return fmt.Sprintf("%s/%s/%s", b.endpoint, b.bucket, key)
}

func classify(err error) error {
	resp := minio.ToErrorResponse(err)
	switch resp.Code {
	case "NoSuchKey", "NoSuchBucket", "NotFound":
		return storage.NewError(storage.KindNotFound, err)
	case "AccessDenied", "InvalidAccessKeyId", "SignatureDoesNotMatch", "ExpiredToken":
		return storage.NewError(storage.KindAccessDenied, err)
	case "SlowDown", "RequestTimeout", "InternalError", "ServiceUnavailable", "XMinioServerNotInitialized":
		return storage.NewError(storage.KindTransient, err)
	}
	if k := storage.StatusKind(resp.StatusCode); k != storage.KindUnknown {
		return storage.NewError(k, err)
	}
	return storage.NewError(storage.Classify(err), err)
}
