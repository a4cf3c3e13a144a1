package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

type testConfig struct {
	ServiceConfig `mapstructure:",squash"`
	Database      struct {
		Name string `mapstructure:"name"`
		Port int    `mapstructure:"port"`
	} `mapstructure:"database"`
	Hosts []string      `mapstructure:"hosts"`
	TTL   time.Duration `mapstructure:"ttl"`
}

func TestServiceConfigApplyDefaults(t *testing.T) {
	cfg := ServiceConfig{Name: "svc"}
	cfg.ApplyDefaults()
	if cfg.Environment != EnvDevelopment {
		t.Errorf("expected development, got %q", cfg.Environment)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected logging defaults, got level %q", cfg.Logging.Level)
	}
	if cfg.IsProduction() {
		t.Error("development must not report production")
	}
}

func TestServiceConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     ServiceConfig
		wantErr string
	}{
		{"valid", ServiceConfig{Name: "svc", Environment: EnvStaging}, ""},
		{"missing name", ServiceConfig{Environment: EnvProduction}, "config.name is required"},
		{"bad environment", ServiceConfig{Name: "svc", Environment: "qa"}, "config.environment must be one of"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tc.cfg.Logging.ApplyDefaults()
			err := tc.cfg.Validate()
			if tc.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("expected error containing %q, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestLoadConfig_YAMLAndEnv(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yml")
	yamlContent := `
name: from-yaml
environment: staging
database:
  name: yamldb
  port: 5432
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("TEST_DB_NAME", "envdb")
	t.Setenv("TEST_HOSTS", "localhost,127.0.0.1")

	var cfg testConfig
	err := LoadConfig("test", &cfg,
		WithConfigFile(configPath),
		WithEnvFile(filepath.Join(dir, "missing.env")),
		WithBindings(
			Binding{Key: "database.name", Env: "TEST_DB_NAME"},
			Binding{Key: "hosts", Env: "TEST_HOSTS"},
			Binding{Key: "ttl", Env: "TEST_TTL", Default: "720h"},
		),
	)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Name != "from-yaml" || cfg.Environment != EnvStaging {
		t.Errorf("yaml values not loaded: %+v", cfg.ServiceConfig)
	}
	if cfg.Database.Name != "envdb" {
		t.Errorf("expected env to override yaml, got %q", cfg.Database.Name)
	}
	if cfg.Database.Port != 5432 {
		t.Errorf("expected port 5432, got %d", cfg.Database.Port)
	}
	if len(cfg.Hosts) != 2 || cfg.Hosts[1] != "127.0.0.1" {
		t.Errorf("expected comma separated hosts, got %v", cfg.Hosts)
	}
	if cfg.TTL != 720*time.Hour {
		t.Errorf("expected default ttl, got %v", cfg.TTL)
	}
}

func TestLoadConfig_EnvFile(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	if err := os.WriteFile(envPath, []byte("TEST_ENVFILE_NAME=dotenv\n"), 0o644); err != nil {
		t.Fatalf("write env: %v", err)
	}
	t.Cleanup(func() { os.Unsetenv("TEST_ENVFILE_NAME") })

	var cfg testConfig
	err := LoadConfig("test", &cfg,
		WithConfigFile(filepath.Join(dir, "none.yml")),
		WithEnvFile(envPath),
		WithBindings(Binding{Key: "name", Env: "TEST_ENVFILE_NAME"}),
	)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Name != "dotenv" {
		t.Errorf("expected value from .env, got %q", cfg.Name)
	}
}

func TestLoadConfig_MissingFileIsNotAnError(t *testing.T) {
	var cfg testConfig
	if err := LoadConfig("nope", &cfg, WithConfigFile("/nonexistent/path.yml")); err != nil {
		t.Fatalf("expected success with missing file, got %v", err)
	}
}

type mockFS struct {
	files map[string]bool
}

func (m *mockFS) Exists(path string) bool  { return m.files[path] }
func (m *mockFS) LoadEnv(path string) error { return nil }

func TestResolverSearchOrder(t *testing.T) {
	fs := &mockFS{files: map[string]bool{
		filepath.Join("cmd", "server", "config.yml"): true,
		"config.yml": true,
		filepath.Join("cmd", "server", ".env"): true,
	}}
	resolver := &Resolver{FileSystem: fs}
	files := resolver.ResolveFiles("server", LoaderConfig{})
	if files.ConfigFile != filepath.Join("cmd", "server", "config.yml") {
		t.Errorf("unexpected config file %q", files.ConfigFile)
	}
	if files.EnvFile != filepath.Join("cmd", "server", ".env") {
		t.Errorf("unexpected env file %q", files.EnvFile)
	}
}

func TestResolverExplicitPaths(t *testing.T) {
	resolver := &Resolver{FileSystem: &mockFS{}}
	files := resolver.ResolveFiles("svc", LoaderConfig{ConfigFile: "a.yml", EnvFile: "b.env"})
	if files.ConfigFile != "a.yml" || files.EnvFile != "b.env" {
		t.Errorf("explicit paths not kept: %+v", files)
	}
}
