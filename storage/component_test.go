package storage_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/kbukum/backend-template/component"
	"github.com/kbukum/backend-template/logger"
	"github.com/kbukum/backend-template/storage"
	"github.com/kbukum/backend-template/storage/testutil"
)

var mem = testutil.NewBackend()

func TestComponentLifecycle(t *testing.T) {
	mem.Reset()
	// storage/local is not imported here, so its provider name is free.
	storage.RegisterFactory(storage.ProviderLocal, func(_ context.Context, _ storage.Config, _ any, _ *logger.Logger) (storage.Backend, error) {
		return mem, nil
	})

	comp := storage.NewComponent(storage.Config{Enabled: true, Provider: storage.ProviderLocal}, nil, logger.NewNop())
	ctx := context.Background()

	if comp.Gateway() != nil {
		t.Fatal("expected no gateway before Start")
	}
	if h := comp.Health(ctx); h.Status != component.StatusUnhealthy {
		t.Errorf("expected unhealthy before start, got %s", h.Status)
	}
	if err := comp.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	gw := comp.Gateway()
	if gw == nil {
		t.Fatal("expected gateway after Start")
	}
	if h := comp.Health(ctx); h.Status != component.StatusHealthy {
		t.Errorf("expected healthy, got %s (%s)", h.Status, h.Message)
	}

	mem.FailWith("Ping", storage.NewError(storage.KindTransient, errors.New("slow down")))
	if h := comp.Health(ctx); h.Status != component.StatusDegraded {
		t.Errorf("expected degraded on transient ping failure, got %s", h.Status)
	}

	if err := comp.Stop(ctx); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if comp.Gateway() != nil {
		t.Error("expected gateway to be released")
	}
	if !strings.Contains(comp.Describe().Details, "provider=local") {
		t.Errorf("details = %s", comp.Describe().Details)
	}
}

func TestComponentDisabled(t *testing.T) {
	comp := storage.NewComponent(storage.Config{}, nil, logger.NewNop())
	ctx := context.Background()
	if err := comp.Start(ctx); err != nil {
		t.Fatal(err)
	}
	if comp.Gateway() != nil {
		t.Error("disabled component must not create a gateway")
	}
	if h := comp.Health(ctx); h.Status != component.StatusHealthy {
		t.Errorf("expected healthy, got %s", h.Status)
	}
}

func TestNew_UnknownProvider(t *testing.T) {
	_, err := storage.New(context.Background(), storage.Config{Provider: "ftp"}, nil, logger.NewNop())
	if err == nil {
		t.Fatal("expected error for unknown provider")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     storage.Config
		wantErr bool
	}{
		{"s3 ok", storage.Config{Provider: storage.ProviderS3, Bucket: "media"}, false},
		{"s3 no bucket", storage.Config{Provider: storage.ProviderS3}, true},
		{"minio no endpoint", storage.Config{Provider: storage.ProviderMinio, Bucket: "media"}, true},
		{"local", storage.Config{Provider: storage.ProviderLocal}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.cfg.ApplyDefaults()
			if err := tt.cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
	var cfg storage.Config
	cfg.ApplyDefaults()
	if cfg.URLExpiry != storage.DefaultURLExpiry || cfg.URLExpiry.Seconds() != 3600 {
		t.Errorf("URLExpiry = %v", cfg.URLExpiry)
	}
}
