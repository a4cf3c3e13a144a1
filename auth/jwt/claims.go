package jwt

import (
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Token types carried in the token_type claim.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// Claims is the payload of access and refresh tokens. The jti claim
// identifies a token for blacklisting.
type Claims struct {
	gojwt.RegisteredClaims
	TokenType string `json:"token_type"`
	UserID    string `json:"user_id"`
}

// NewClaims returns claims for userID with the subject set.
func NewClaims(userID string) *Claims {
	return &Claims{
		RegisteredClaims: gojwt.RegisteredClaims{Subject: userID},
		UserID:           userID,
	}
}

// SetDefaults fills the time claims, issuer, audience and jti.
func (c *Claims) SetDefaults(now time.Time, ttl time.Duration, issuer string, audience []string) {
	if c.IssuedAt == nil {
		c.IssuedAt = gojwt.NewNumericDate(now)
	}
	if c.ExpiresAt == nil {
		c.ExpiresAt = gojwt.NewNumericDate(now.Add(ttl))
	}
	if c.Issuer == "" {
		c.Issuer = issuer
	}
	if len(c.Audience) == 0 && len(audience) > 0 {
		c.Audience = audience
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
}

func (c *Claims) SetTokenType(t string) { c.TokenType = t }
func (c *Claims) GetTokenType() string  { return c.TokenType }

// Expiry returns the exp claim, or the zero time if unset.
func (c *Claims) Expiry() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}
