package local

import "fmt"

// DefaultBasePath is the default root directory for local storage.
const DefaultBasePath = "media"

// Config holds local filesystem storage configuration.
type Config struct {
	// BasePath is the root directory objects are written under.
	BasePath string `mapstructure:"base_path" json:"base_path"`

	// BaseURL is the URL prefix the files are served from, if any.
	BaseURL string `mapstructure:"base_url" json:"base_url"`
}

// ApplyDefaults fills in zero-valued fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.BasePath == "" {
		c.BasePath = DefaultBasePath
	}
}

// Validate checks that the local configuration is valid.
func (c *Config) Validate() error {
	if c.BasePath == "" {
		return fmt.Errorf("local: base_path is required")
	}
	return nil
}
