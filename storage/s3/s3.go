package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/kbukum/backend-template/logger"
	"github.com/kbukum/backend-template/storage"
)

func init() {
	storage.RegisterFactory(storage.ProviderS3, func(ctx context.Context, cfg storage.Config, providerCfg any, log *logger.Logger) (storage.Backend, error) {
		c := FromStorageConfig(cfg)
		if providerCfg != nil {
			pc, ok := providerCfg.(*Config)
			if !ok {
				return nil, fmt.Errorf("s3: expected *s3.Config, got %T", providerCfg)
			}
			c = pc
		}
		c.ApplyDefaults()
		if err := c.Validate(); err != nil {
			return nil, err
		}
		return New(ctx, c)
	})
}

// API is the subset of *s3.Client used by Backend.
type API interface {
	manager.UploadAPIClient
	awss3.ListObjectsV2APIClient
	GetObject(ctx context.Context, in *awss3.GetObjectInput, optFns ...func(*awss3.Options)) (*awss3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, in *awss3.DeleteObjectInput, optFns ...func(*awss3.Options)) (*awss3.DeleteObjectOutput, error)
	HeadBucket(ctx context.Context, in *awss3.HeadBucketInput, optFns ...func(*awss3.Options)) (*awss3.HeadBucketOutput, error)
}

// Presigner is the subset of *s3.PresignClient used by Backend.
type Presigner interface {
	PresignGetObject(ctx context.Context, in *awss3.GetObjectInput, optFns ...func(*awss3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// Backend implements storage.Backend on Amazon S3 or an S3-compatible
// service.
type Backend struct {
	client    API
	uploader  *manager.Uploader
	presigner Presigner
	bucket    string
	region    string
	endpoint  string
	pathStyle bool
}

var _ storage.Backend = (*Backend)(nil)
var _ storage.PublicURLer = (*Backend)(nil)

// New builds the SDK client once from cfg.
func New(ctx context.Context, cfg *Config) (*Backend, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("s3: load aws config: %w", err)
	}

	pathStyle := cfg.UsePathStyle || cfg.Endpoint != ""
	client := awss3.NewFromConfig(awsCfg, func(o *awss3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = pathStyle
	})

	b := NewWithClient(client, awss3.NewPresignClient(client), cfg.Bucket)
	b.region = cfg.Region
	b.endpoint = strings.TrimSuffix(cfg.Endpoint, "/")
	b.pathStyle = pathStyle
	return b, nil
}

// NewWithClient builds a Backend on existing clients.
func NewWithClient(client API, presigner Presigner, bucket string) *Backend {
	return &Backend{
		client:    client,
		uploader:  manager.NewUploader(client),
		presigner: presigner,
		bucket:    bucket,
		region:    DefaultRegion,
	}
}

func (b *Backend) Put(ctx context.Context, key string, r io.Reader, opts storage.PutOptions) error {
	in := &awss3.PutObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
		Body:   r,
	}
	if opts.ContentType != "" {
		in.ContentType = aws.String(opts.ContentType)
	}
	if opts.ACL != storage.ACLPrivate {
		in.ACL = types.ObjectCannedACL(opts.ACL)
	}
	if _, err := b.uploader.Upload(ctx, in); err != nil {
		return classify(err)
	}
	return nil
}

func (b *Backend) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	out, err := b.client.GetObject(ctx, &awss3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, classify(err)
	}
	return out.Body, nil
}

func (b *Backend) Delete(ctx context.Context, key string) error {
	_, err := b.client.DeleteObject(ctx, &awss3.DeleteObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return classify(err)
	}
	return nil
}

func (b *Backend) List(ctx context.Context, prefix string) ([]storage.ObjectInfo, error) {
	p := awss3.NewListObjectsV2Paginator(b.client, &awss3.ListObjectsV2Input{
		Bucket: aws.String(b.bucket),
		Prefix: aws.String(prefix),
	})

	objects := []storage.ObjectInfo{}
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, classify(err)
		}
		for _, obj := range page.Contents {
			info := storage.ObjectInfo{
				Key:  aws.ToString(obj.Key),
				Size: aws.ToInt64(obj.Size),
				ETag: strings.Trim(aws.ToString(obj.ETag), `"`),
			}
			if obj.LastModified != nil {
				info.LastModified = *obj.LastModified
			}
			objects = append(objects, info)
		}
	}
	return objects, nil
}

func (b *Backend) PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error) {
	req, err := b.presigner.PresignGetObject(ctx, &awss3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
	}, awss3.WithPresignExpires(expiry))
	if err != nil {
		return "", classify(err)
	}
	return req.URL, nil
}

func (b *Backend) Ping(ctx context.Context) error {
	_, err := b.client.HeadBucket(ctx, &awss3.HeadBucketInput{Bucket: aws.String(b.bucket)})
	if err != nil {
		return classify(err)
	}
	return nil
}

// PublicURL returns the unsigned object URL.
func (b *Backend) PublicURL(key string) string {
	switch {
	case b.endpoint != "":
		return fmt.Sprintf("%s/%s/%s", b.endpoint, b.bucket, key)
	case b.pathStyle:
		return fmt.Sprintf("https://s3.%s.amazonaws.com/%s/%s", b.region, b.bucket, key)
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", b.bucket, b.region, key)
	}
}

var (
	notFoundCodes = map[string]bool{
		"NoSuchKey": true, "NotFound": true, "NoSuchBucket": true,
	}
	accessDeniedCodes = map[string]bool{
		"AccessDenied": true, "Forbidden": true, "AllAccessDisabled": true,
		"InvalidAccessKeyId": true, "SignatureDoesNotMatch": true,
		"ExpiredToken": true, "InvalidToken": true,
	}
	transientCodes = map[string]bool{
		"SlowDown": true, "RequestTimeout": true, "InternalError": true,
		"ServiceUnavailable": true, "RequestTimeTooSkewed": true,
	}
)

// classify maps S3 API error codes to storage kinds, falling back to
// status codes and network errors.
func classify(err error) error {
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return storage.NewError(storage.KindNotFound, err)
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		code := apiErr.ErrorCode()
		switch {
		case notFoundCodes[code]:
			return storage.NewError(storage.KindNotFound, err)
		case accessDeniedCodes[code]:
			return storage.NewError(storage.KindAccessDenied, err)
		case transientCodes[code]:
			return storage.NewError(storage.KindTransient, err)
		}
	}
	return storage.NewError(storage.Classify(err), err)
}
