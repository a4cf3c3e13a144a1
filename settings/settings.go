// Package settings builds the process-wide Settings value from defaults,
// an optional config.yml, a .env file and the environment.
//
// Settings is loaded once at startup and passed explicitly to the
// components that need it; there is no package-level instance.
package settings

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/kbukum/backend-template/auth/jwt"
	"github.com/kbukum/backend-template/auth/password"
	"github.com/kbukum/backend-template/config"
	"github.com/kbukum/backend-template/database"
	"github.com/kbukum/backend-template/logger"
	"github.com/kbukum/backend-template/observability"
	"github.com/kbukum/backend-template/server"
	"github.com/kbukum/backend-template/storage"
	"github.com/kbukum/backend-template/util"
)

// InsecureSecretKey is the development signing key. Production refuses it.
const InsecureSecretKey = "django-insecure-)i(vz3!4g4!mlmr-=q65*g_!zr5(no4xqsiu*7v1_%!e@%#5ab"

// Settings is the full service configuration.
type Settings struct {
	config.ServiceConfig `mapstructure:",squash"`

	SecretKey string `mapstructure:"secret_key"`

	Paths         Paths                `mapstructure:"paths"`
	Database      database.Config      `mapstructure:"database"`
	Broker        Broker               `mapstructure:"broker"`
	Storage       storage.Config       `mapstructure:"storage"`
	HTTP          server.Config        `mapstructure:"http"`
	Auth          Auth                 `mapstructure:"auth"`
	Pagination    Pagination           `mapstructure:"pagination"`
	Observability observability.Config `mapstructure:"observability"`
}

// Paths are the filesystem locations the service writes to.
type Paths struct {
	BaseDir string `mapstructure:"base_dir"`
	LogsDir string `mapstructure:"logs_dir"`
}

// Broker holds the task broker location. No worker consumes it yet.
type Broker struct {
	URL string `mapstructure:"url"`
}

// Redacted returns the broker URL with any password replaced. A value
// that does not parse is masked whole.
func (b Broker) Redacted() string {
	if b.URL == "" {
		return ""
	}
	u, err := url.Parse(b.URL)
	if err != nil {
		return util.MaskSecret(b.URL, 0)
	}
	return u.Redacted()
}

// Auth groups token and password settings.
type Auth struct {
	JWT      jwt.Config      `mapstructure:"jwt"`
	Password password.Config `mapstructure:"password"`

	// ThrottlePerMinute caps registration and token requests per client
	// address. Zero disables throttling.
	ThrottlePerMinute int `mapstructure:"throttle_per_minute"`
}

// Pagination configures list endpoints.
type Pagination struct {
	PageSize int `mapstructure:"page_size"`
}

// Option adjusts how Load resolves files.
type Option = config.LoaderOption

// WithConfigFile and WithEnvFile pin the files Load reads.
var (
	WithConfigFile = config.WithConfigFile
	WithEnvFile    = config.WithEnvFile
	WithFileSystem = config.WithFileSystem
)

// Load resolves config.yml and .env for service, binds the environment,
// applies defaults and validates the result.
func Load(service string, opts ...Option) (*Settings, error) {
	opts = append([]Option{config.WithBindings(Bindings()...)}, opts...)

	var s Settings
	if err := config.LoadConfig(service, &s, opts...); err != nil {
		return nil, err
	}
	s.ApplyDefaults()
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// ApplyDefaults derives dependent values and fills what bindings cannot:
// paths relative to the working directory, the signing secret, list
// cleanup and the defaults of every embedded component config.
func (s *Settings) ApplyDefaults() {
	s.ServiceConfig.ApplyDefaults()

	if s.Paths.BaseDir == "" {
		if wd, err := os.Getwd(); err == nil {
			s.Paths.BaseDir = wd
		}
	}
	s.Paths.LogsDir = util.Coalesce(s.Paths.LogsDir, filepath.Join(s.Paths.BaseDir, "logs"))
	if s.Logging.Dir == "" {
		s.Logging.Dir = s.Paths.LogsDir
	}

	s.SecretKey = util.Coalesce(s.SecretKey, InsecureSecretKey)
	s.Auth.JWT.Secret = util.Coalesce(s.Auth.JWT.Secret, s.SecretKey)
	s.Auth.JWT.ApplyDefaults()
	s.Auth.Password.ApplyDefaults()

	s.Database.ApplyDefaults()
	s.Storage.ApplyDefaults()

	s.HTTP.AllowedHosts = util.CleanList(s.HTTP.AllowedHosts)
	s.HTTP.CSRFTrustedOrigins = util.CleanList(s.HTTP.CSRFTrustedOrigins)
	s.HTTP.CORS.AllowedOrigins = util.CleanList(s.HTTP.CORS.AllowedOrigins)
	s.HTTP.TrustedProxies = util.CleanList(s.HTTP.TrustedProxies)
	s.HTTP.ApplyDefaults()

	s.Observability.ServiceName = util.Coalesce(s.Observability.ServiceName, s.Name)
	s.Observability.Environment = util.Coalesce(s.Observability.Environment, s.Environment)
	s.Observability.ApplyDefaults()
}

// Validate rejects unknown environments and drivers, the insecure secret in
// production, and a non-positive page size.
func (s *Settings) Validate() error {
	var errs []error
	if err := s.ServiceConfig.Validate(); err != nil {
		errs = append(errs, err)
	}
	if s.IsProduction() && s.SecretKey == InsecureSecretKey {
		errs = append(errs, errors.New("settings: SECRET_KEY must be set in production"))
	}
	if s.IsProduction() && s.Debug {
		errs = append(errs, errors.New("settings: DEBUG must be off in production"))
	}
	if s.Pagination.PageSize <= 0 {
		errs = append(errs, fmt.Errorf("settings: PAGE_SIZE must be positive (got: %d)", s.Pagination.PageSize))
	}
	if err := s.Database.Validate(); err != nil {
		errs = append(errs, err)
	}
	if s.Storage.Enabled {
		if err := s.Storage.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := s.HTTP.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := s.Auth.JWT.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := s.Auth.Password.Validate(); err != nil {
		errs = append(errs, err)
	}
	if s.Auth.ThrottlePerMinute < 0 {
		errs = append(errs, fmt.Errorf("settings: AUTH_THROTTLE_PER_MINUTE must not be negative (got: %d)", s.Auth.ThrottlePerMinute))
	}
	return errors.Join(errs...)
}

// EnsureDirs creates the logs directory and one subdirectory per log
// channel.
func (s *Settings) EnsureDirs() error {
	if err := logger.EnsureDirs(s.Paths.LogsDir); err != nil {
		return fmt.Errorf("settings: create log directories under %s: %w", s.Paths.LogsDir, err)
	}
	return nil
}

// Summary returns loggable fields with secrets masked.
func (s *Settings) Summary() map[string]interface{} {
	return map[string]interface{}{
		"environment":   s.Environment,
		"debug":         s.Debug,
		"secret_key":    util.MaskSecret(s.SecretKey, 4),
		"database":      s.Database.Redacted(),
		"storage":       s.Storage.Provider + ":" + s.Storage.Bucket,
		"storage_key":   util.MaskSecret(s.Storage.AccessKey, 4),
		"broker":        s.Broker.Redacted(),
		"http":          s.HTTP.Addr(),
		"allowed_hosts": s.HTTP.AllowedHosts,
		"access_ttl":    s.Auth.JWT.AccessTokenTTL.String(),
		"refresh_ttl":   s.Auth.JWT.RefreshTokenTTL.String(),
		"page_size":     s.Pagination.PageSize,
		"otel":          s.Observability.Enabled(),
	}
}
