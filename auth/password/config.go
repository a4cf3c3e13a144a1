package password

import "fmt"

// Algorithm names a hashing scheme.
type Algorithm string

const (
	AlgorithmBcrypt Algorithm = "bcrypt"

	// AlgorithmPBKDF2 reads and writes Django's pbkdf2_sha256 format so
	// existing user tables can be imported.
	AlgorithmPBKDF2 Algorithm = "pbkdf2_sha256"
)

// Config configures hashing and strength checks.
type Config struct {
	// Algorithm hashes new passwords (default: bcrypt). Every supported
	// algorithm is accepted on verification.
	Algorithm Algorithm `mapstructure:"algorithm"`

	BcryptCost       int `mapstructure:"bcrypt_cost"`
	PBKDF2Iterations int `mapstructure:"pbkdf2_iterations"`

	MinLength     int     `mapstructure:"min_length"`
	MaxSimilarity float64 `mapstructure:"max_similarity"`
}

// ApplyDefaults sets defaults for zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.Algorithm == "" {
		c.Algorithm = AlgorithmBcrypt
	}
	if c.BcryptCost == 0 {
		c.BcryptCost = 12
	}
	if c.PBKDF2Iterations == 0 {
		c.PBKDF2Iterations = DefaultPBKDF2Iterations
	}
	if c.MinLength == 0 {
		c.MinLength = DefaultMinLength
	}
	if c.MaxSimilarity == 0 {
		c.MaxSimilarity = DefaultMaxSimilarity
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	switch c.Algorithm {
	case AlgorithmBcrypt, AlgorithmPBKDF2:
	default:
		return fmt.Errorf("unsupported algorithm: %s (use bcrypt or pbkdf2_sha256)", c.Algorithm)
	}
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		return fmt.Errorf("bcrypt_cost must be between 4 and 31 (got: %d)", c.BcryptCost)
	}
	if c.MinLength < 1 {
		return fmt.Errorf("min_length must be >= 1 (got: %d)", c.MinLength)
	}
	if c.MaxSimilarity < 0.1 {
		return fmt.Errorf("max_similarity must be at least 0.1 (got: %g)", c.MaxSimilarity)
	}
	return nil
}

// NewHasher returns a Hasher that hashes with cfg.Algorithm and verifies
// hashes of any supported algorithm.
func NewHasher(cfg Config) Hasher {
	cfg.ApplyDefaults()
	bc := NewBcryptHasher(WithCost(cfg.BcryptCost))
	pb := NewPBKDF2Hasher(cfg.PBKDF2Iterations)
	if cfg.Algorithm == AlgorithmPBKDF2 {
		return &multiHasher{primary: pb, others: []identifiedHasher{bc}}
	}
	return &multiHasher{primary: bc, others: []identifiedHasher{pb}}
}

// NewValidator returns the strength checks configured by cfg.
func NewValidator(cfg Config) *Validator {
	cfg.ApplyDefaults()
	return &Validator{MinLength: cfg.MinLength, MaxSimilarity: cfg.MaxSimilarity}
}
