package minio

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/minio/minio-go/v7"

	"github.com/kbukum/backend-template/storage"
)

func newTestBackend(t *testing.T) *Backend {
	t.Helper()
	b, err := New(&Config{
		Endpoint:  "http://localhost:9000",
		Bucket:    "media",
		Region:    "us-east-1",
		AccessKey: "minioadmin",
		SecretKey: "minioadmin",
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return b
}

func TestPresignGetIsOffline(t *testing.T) {
	b := newTestBackend(t)

	raw, err := b.PresignGet(context.Background(), "images/cat.jpg", storage.DefaultURLExpiry)
	if err != nil {
		t.Fatalf("PresignGet: %v", err)
	}
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatal(err)
	}
	if u.Host != "localhost:9000" || !strings.HasSuffix(u.Path, "/media/images/cat.jpg") {
		t.Errorf("unexpected url %s", raw)
	}
	if got := u.Query().Get("X-Amz-Expires"); got != "3600" {
		t.Errorf("X-Amz-Expires = %q", got)
	}
}

func TestSplitEndpoint(t *testing.T) {
	tests := []struct {
		in         string
		ssl        bool
		wantHost   string
		wantSecure bool
	}{
		{"localhost:9000", false, "localhost:9000", false},
		{"minio.internal:9000", true, "minio.internal:9000", true},
		{"https://minio.example.com", false, "minio.example.com", true},
		{"http://127.0.0.1:9000/", true, "127.0.0.1:9000", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			host, secure, err := splitEndpoint(tt.in, tt.ssl)
			if err != nil {
				t.Fatal(err)
			}
			if host != tt.wantHost || secure != tt.wantSecure {
				t.Errorf("got (%s, %v)", host, secure)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want storage.Kind
	}{
		{"no such key", minio.ErrorResponse{Code: "NoSuchKey", StatusCode: http.StatusNotFound}, storage.KindNotFound},
		{"access denied", minio.ErrorResponse{Code: "AccessDenied", StatusCode: http.StatusForbidden}, storage.KindAccessDenied},
		{"slow down", minio.ErrorResponse{Code: "SlowDown", StatusCode: http.StatusServiceUnavailable}, storage.KindTransient},
		{"status only", minio.ErrorResponse{StatusCode: http.StatusBadGateway}, storage.KindTransient},
		{"plain", errors.New("boom"), storage.KindUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := storage.KindOf(classify(tt.err)); got != tt.want {
				t.Errorf("kind = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestPublicURL(t *testing.T) {
	b := newTestBackend(t)
	if got := b.PublicURL("images/a.jpg"); got != "http://localhost:9000/media/images/a.jpg" {
		t.Errorf("PublicURL = %s", got)
	}
}

func TestNewRequiresEndpoint(t *testing.T) {
	if _, err := New(&Config{Bucket: "media"}); err == nil {
		t.Error("expected error without endpoint")
	}
}
