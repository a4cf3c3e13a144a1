package s3

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/url"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/kbukum/backend-template/storage"
)

// fakeAPI stores objects in memory and serves listings in pages of pageSize.
type fakeAPI struct {
	mu       sync.Mutex
	objects  map[string][]byte
	puts     []*awss3.PutObjectInput
	pageSize int
	err      error
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{objects: make(map[string][]byte), pageSize: 2}
}

func (f *fakeAPI) PutObject(_ context.Context, in *awss3.PutObjectInput, _ ...func(*awss3.Options)) (*awss3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[aws.ToString(in.Key)] = data
	f.puts = append(f.puts, in)
	return &awss3.PutObjectOutput{}, nil
}

func (f *fakeAPI) UploadPart(context.Context, *awss3.UploadPartInput, ...func(*awss3.Options)) (*awss3.UploadPartOutput, error) {
	return nil, errors.New("multipart not supported by fake")
}

func (f *fakeAPI) CreateMultipartUpload(context.Context, *awss3.CreateMultipartUploadInput, ...func(*awss3.Options)) (*awss3.CreateMultipartUploadOutput, error) {
	return nil, errors.New("multipart not supported by fake")
}

func (f *fakeAPI) CompleteMultipartUpload(context.Context, *awss3.CompleteMultipartUploadInput, ...func(*awss3.Options)) (*awss3.CompleteMultipartUploadOutput, error) {
	return nil, errors.New("multipart not supported by fake")
}

func (f *fakeAPI) AbortMultipartUpload(context.Context, *awss3.AbortMultipartUploadInput, ...func(*awss3.Options)) (*awss3.AbortMultipartUploadOutput, error) {
	return &awss3.AbortMultipartUploadOutput{}, nil
}

func (f *fakeAPI) GetObject(_ context.Context, in *awss3.GetObjectInput, _ ...func(*awss3.Options)) (*awss3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{Message: aws.String("The specified key does not exist.")}
	}
	return &awss3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeAPI) DeleteObject(_ context.Context, in *awss3.DeleteObjectInput, _ ...func(*awss3.Options)) (*awss3.DeleteObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, aws.ToString(in.Key))
	return &awss3.DeleteObjectOutput{}, nil
}

func (f *fakeAPI) HeadBucket(context.Context, *awss3.HeadBucketInput, ...func(*awss3.Options)) (*awss3.HeadBucketOutput, error) {
	return &awss3.HeadBucketOutput{}, f.err
}

func (f *fakeAPI) ListObjectsV2(_ context.Context, in *awss3.ListObjectsV2Input, _ ...func(*awss3.Options)) (*awss3.ListObjectsV2Output, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	var keys []string
	for k := range f.objects {
		if strings.HasPrefix(k, aws.ToString(in.Prefix)) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	start := 0
	if in.ContinuationToken != nil {
		for i, k := range keys {
			if k == aws.ToString(in.ContinuationToken) {
				start = i
			}
		}
	}
	end := min(start+f.pageSize, len(keys))

	out := &awss3.ListObjectsV2Output{}
	for _, k := range keys[start:end] {
		out.Contents = append(out.Contents, types.Object{
			Key:  aws.String(k),
			Size: aws.Int64(int64(len(f.objects[k]))),
			ETag: aws.String(`"etag"`),
		})
	}
	if end < len(keys) {
		out.IsTruncated = aws.Bool(true)
		out.NextContinuationToken = aws.String(keys[end])
	}
	return out, nil
}

func offlinePresigner(t *testing.T) *awss3.PresignClient {
	t.Helper()
	client := awss3.New(awss3.Options{
		Region:      "us-east-1",
		Credentials: credentials.NewStaticCredentialsProvider("AKIDEXAMPLE", "secret", ""),
	})
	return awss3.NewPresignClient(client)
}

func TestBackend_PutSetsACLAndContentType(t *testing.T) {
	api := newFakeAPI()
	b := NewWithClient(api, offlinePresigner(t), "media")

	err := b.Put(context.Background(), "images/a.jpg", strings.NewReader("jpeg"), storage.PutOptions{
		ContentType: "image/jpeg",
		ACL:         storage.ACLPublicRead,
		Size:        -1,
	})
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if len(api.puts) != 1 {
		t.Fatalf("expected one PutObject call, got %d", len(api.puts))
	}
	in := api.puts[0]
	if in.ACL != types.ObjectCannedACLPublicRead {
		t.Errorf("ACL = %q", in.ACL)
	}
	if aws.ToString(in.ContentType) != "image/jpeg" || aws.ToString(in.Bucket) != "media" {
		t.Errorf("unexpected input %+v", in)
	}
	if string(api.objects["images/a.jpg"]) != "jpeg" {
		t.Error("object body not stored")
	}
}

func TestBackend_GetMissingIsNotFound(t *testing.T) {
	b := NewWithClient(newFakeAPI(), offlinePresigner(t), "media")

	_, err := b.Get(context.Background(), "nope.txt")
	if !storage.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestBackend_ListFollowsPages(t *testing.T) {
	api := newFakeAPI()
	for _, k := range []string{"docs/c", "docs/a", "docs/b", "other/x", "docs/d", "docs/e"} {
		api.objects[k] = []byte(k)
	}
	b := NewWithClient(api, offlinePresigner(t), "media")

	objects, err := b.List(context.Background(), "docs/")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	var keys []string
	for _, o := range objects {
		keys = append(keys, o.Key)
	}
	if got := strings.Join(keys, ","); got != "docs/a,docs/b,docs/c,docs/d,docs/e" {
		t.Errorf("keys = %s", got)
	}
	if objects[0].ETag != "etag" {
		t.Errorf("expected unquoted etag, got %q", objects[0].ETag)
	}

	empty, err := b.List(context.Background(), "missing/")
	if err != nil {
		t.Fatal(err)
	}
	if empty == nil || len(empty) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", empty)
	}
}

func TestBackend_PresignGet(t *testing.T) {
	b := NewWithClient(newFakeAPI(), offlinePresigner(t), "media")

	raw, err := b.PresignGet(context.Background(), "reports/q1.pdf", storage.DefaultURLExpiry)
	if err != nil {
		t.Fatalf("PresignGet: %v", err)
	}
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse %q: %v", raw, err)
	}
	if !strings.Contains(u.Path, "reports/q1.pdf") {
		t.Errorf("url path %q does not contain the key", u.Path)
	}
	if got := u.Query().Get("X-Amz-Expires"); got != "3600" {
		t.Errorf("X-Amz-Expires = %q, want 3600", got)
	}
	if u.Query().Get("X-Amz-Signature") == "" {
		t.Error("expected a signature")
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want storage.Kind
	}{
		{"no such key", &types.NoSuchKey{}, storage.KindNotFound},
		{"no such bucket code", &smithy.GenericAPIError{Code: "NoSuchBucket"}, storage.KindNotFound},
		{"access denied", &smithy.GenericAPIError{Code: "AccessDenied"}, storage.KindAccessDenied},
		{"bad signature", &smithy.GenericAPIError{Code: "SignatureDoesNotMatch"}, storage.KindAccessDenied},
		{"slow down", &smithy.GenericAPIError{Code: "SlowDown"}, storage.KindTransient},
		{"deadline", context.DeadlineExceeded, storage.KindTransient},
		{"other", errors.New("boom"), storage.KindUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := storage.KindOf(classify(tt.err)); got != tt.want {
				t.Errorf("kind = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestBackend_PublicURL(t *testing.T) {
	b := NewWithClient(newFakeAPI(), nil, "media")
	b.region = "eu-west-1"
	if got := b.PublicURL("images/a.jpg"); got != "https://media.s3.eu-west-1.amazonaws.com/images/a.jpg" {
		t.Errorf("PublicURL = %s", got)
	}
	b.endpoint = "http://localhost:4566"
	if got := b.PublicURL("images/a.jpg"); got != "http://localhost:4566/media/images/a.jpg" {
		t.Errorf("PublicURL = %s", got)
	}
}

func TestConfigValidate(t *testing.T) {
	c := &Config{Bucket: "media", AccessKey: "only-id"}
	c.ApplyDefaults()
	if err := c.Validate(); err == nil {
		t.Error("expected error for half-set credentials")
	}

	c = FromStorageConfig(storage.Config{Bucket: "media", Region: "eu-west-1"})
	if err := c.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}
