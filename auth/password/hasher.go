// Package password hashes passwords and checks their strength.
//
//	hasher := password.NewHasher(password.Config{})
//	hash, err := hasher.Hash("correct horse battery")
//	err = hasher.Verify("correct horse battery", hash)
//
//	err = password.NewValidator(cfg).Validate(pw,
//	    password.Attribute{Name: "username", Value: u.Username})
package password

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/crypto/pbkdf2"
)

// ErrMismatch is returned by Verify when the password does not match.
var ErrMismatch = errors.New("password: invalid password")

// DefaultPBKDF2Iterations matches current Django releases.
const DefaultPBKDF2Iterations = 870000

// Hasher hashes and verifies passwords.
type Hasher interface {
	Hash(password string) (string, error)

	// Verify returns nil if password matches hash, ErrMismatch otherwise.
	Verify(password, hash string) error
}

type identifiedHasher interface {
	Hasher
	Identifies(hash string) bool
}

type multiHasher struct {
	primary identifiedHasher
	others  []identifiedHasher
}

func (m *multiHasher) Hash(password string) (string, error) {
	return m.primary.Hash(password)
}

func (m *multiHasher) Verify(password, hash string) error {
	if m.primary.Identifies(hash) {
		return m.primary.Verify(password, hash)
	}
	for _, h := range m.others {
		if h.Identifies(hash) {
			return h.Verify(password, hash)
		}
	}
	return ErrMismatch
}

// BcryptHasher implements Hasher with bcrypt.
type BcryptHasher struct {
	cost int
}

// BcryptOption configures a BcryptHasher.
type BcryptOption func(*BcryptHasher)

// WithCost sets the bcrypt cost (default 12). Out-of-range values are ignored.
func WithCost(cost int) BcryptOption {
	return func(h *BcryptHasher) {
		if cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
			h.cost = cost
		}
	}
}

// NewBcryptHasher creates a bcrypt hasher.
func NewBcryptHasher(opts ...BcryptOption) *BcryptHasher {
	h := &BcryptHasher{cost: 12}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *BcryptHasher) Hash(password string) (string, error) {
	if len(password) > 72 {
		return "", errors.New("password: maximum length is 72 bytes (bcrypt limit)")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("password: hash: %w", err)
	}
	return string(hash), nil
}

func (h *BcryptHasher) Verify(password, hash string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrMismatch
	}
	return nil
}

func (h *BcryptHasher) Identifies(hash string) bool {
	return strings.HasPrefix(hash, "$2a$") || strings.HasPrefix(hash, "$2b$") || strings.HasPrefix(hash, "$2y$")
}

// PBKDF2Hasher implements Django's pbkdf2_sha256 format:
// pbkdf2_sha256$<iterations>$<salt>$<base64 hash>.
type PBKDF2Hasher struct {
	iterations int
}

// NewPBKDF2Hasher creates a PBKDF2-SHA256 hasher.
func NewPBKDF2Hasher(iterations int) *PBKDF2Hasher {
	if iterations <= 0 {
		iterations = DefaultPBKDF2Iterations
	}
	return &PBKDF2Hasher{iterations: iterations}
}

const saltChars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

func (h *PBKDF2Hasher) Hash(password string) (string, error) {
	buf := make([]byte, 22)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("password: generate salt: %w", err)
	}
	for i, b := range buf {
		buf[i] = saltChars[int(b)%len(saltChars)]
	}
	return h.encode(password, string(buf), h.iterations), nil
}

func (h *PBKDF2Hasher) encode(password, salt string, iterations int) string {
	dk := pbkdf2.Key([]byte(password), []byte(salt), iterations, sha256.Size, sha256.New)
	return fmt.Sprintf("%s$%d$%s$%s", AlgorithmPBKDF2, iterations, salt, base64.StdEncoding.EncodeToString(dk))
}

func (h *PBKDF2Hasher) Verify(password, hash string) error {
	parts := strings.SplitN(hash, "$", 4)
	if len(parts) != 4 || parts[0] != string(AlgorithmPBKDF2) {
		return ErrMismatch
	}
	iterations, err := strconv.Atoi(parts[1])
	if err != nil || iterations <= 0 {
		return ErrMismatch
	}
	want := h.encode(password, parts[2], iterations)
	if subtle.ConstantTimeCompare([]byte(want), []byte(hash)) != 1 {
		return ErrMismatch
	}
	return nil
}

func (h *PBKDF2Hasher) Identifies(hash string) bool {
	return strings.HasPrefix(hash, string(AlgorithmPBKDF2)+"$")
}
