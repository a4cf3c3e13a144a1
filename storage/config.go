package storage

import (
	"errors"
	"fmt"
	"time"
)

// Provider constants for supported storage backends.
const (
	ProviderS3    = "s3"
	ProviderMinio = "minio"
	ProviderLocal = "local"
)

// Default configuration values.
const (
	DefaultProvider      = ProviderS3
	DefaultRegion        = "us-east-1"
	DefaultBasePath      = "media"
	DefaultURLExpiry     = 3600 * time.Second
	DefaultMaxUploadSize = int64(10 * 1024 * 1024) // 10 MB
)

// Config holds storage configuration.
type Config struct {
	// Enabled controls whether the storage component is active.
	Enabled bool `mapstructure:"enabled" json:"enabled"`

	// Provider selects the backend: "s3", "minio" or "local".
	Provider string `mapstructure:"provider" json:"provider"`

	Bucket    string `mapstructure:"bucket" json:"bucket"`
	Region    string `mapstructure:"region" json:"region"`
	AccessKey string `mapstructure:"access_key" json:"-"`
	SecretKey string `mapstructure:"secret_key" json:"-"`

	// PublicURL is the base URL under which public objects are served.
	PublicURL string `mapstructure:"public_url" json:"public_url"`

	// Endpoint is a custom S3-compatible endpoint (MinIO, LocalStack).
	Endpoint     string `mapstructure:"endpoint" json:"endpoint"`
	UsePathStyle bool   `mapstructure:"use_path_style" json:"use_path_style"`
	UseSSL       bool   `mapstructure:"use_ssl" json:"use_ssl"`

	// BasePath is the root directory for the local provider.
	BasePath string `mapstructure:"base_path" json:"base_path"`

	// URLExpiry is the validity window of presigned URLs.
	URLExpiry time.Duration `mapstructure:"url_expiry" json:"url_expiry"`

	// MaxUploadSize caps image uploads accepted over HTTP.
	MaxUploadSize int64 `mapstructure:"max_upload_size" json:"max_upload_size"`
}

// ApplyDefaults fills in zero-valued fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.Provider == "" {
		c.Provider = DefaultProvider
	}
	if c.Region == "" {
		c.Region = DefaultRegion
	}
	if c.BasePath == "" {
		c.BasePath = DefaultBasePath
	}
	if c.URLExpiry <= 0 {
		c.URLExpiry = DefaultURLExpiry
	}
	if c.MaxUploadSize <= 0 {
		c.MaxUploadSize = DefaultMaxUploadSize
	}
}

// Validate checks that the configuration is valid for the selected provider.
func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderLocal:
		if c.BasePath == "" {
			return errors.New("storage: base_path is required for local provider")
		}
	case ProviderS3, ProviderMinio:
		var errs []error
		if c.Bucket == "" {
			errs = append(errs, errors.New("bucket is required"))
		}
		if c.Region == "" {
			errs = append(errs, errors.New("region is required"))
		}
		if c.Provider == ProviderMinio && c.Endpoint == "" {
			errs = append(errs, errors.New("endpoint is required"))
		}
		if len(errs) > 0 {
			return fmt.Errorf("storage: invalid %s config: %w", c.Provider, errors.Join(errs...))
		}
	default:
		return fmt.Errorf("storage: unsupported provider %q", c.Provider)
	}
	return nil
}
