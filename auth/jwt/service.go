// Package jwt issues and verifies HMAC-signed access and refresh tokens.
//
// The service is generic over the claims type so callers can extend Claims:
//
//	svc, err := jwt.NewService(cfg, func() *jwt.Claims { return &jwt.Claims{} })
//	access, err := svc.GenerateAccess(jwt.NewClaims(userID))
//	claims, err := svc.ParseType(access, jwt.TokenTypeAccess)
package jwt

import (
	"context"
	"errors"
	"fmt"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidToken covers malformed, expired and badly signed tokens.
	ErrInvalidToken = errors.New("jwt: token is invalid or expired")

	// ErrWrongTokenType is returned when a refresh token is used as an
	// access token or the other way around.
	ErrWrongTokenType = errors.New("jwt: token has wrong type")
)

// IsExpired reports whether err came from an expired token.
func IsExpired(err error) bool {
	return errors.Is(err, gojwt.ErrTokenExpired)
}

// Service generates and parses tokens for claims type T.
type Service[T gojwt.Claims] struct {
	cfg      Config
	newEmpty func() T
	now      func() time.Time
}

// NewService creates a token service. newEmpty returns an empty T to decode
// into.
func NewService[T gojwt.Claims](cfg *Config, newEmpty func() T) (*Service[T], error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("jwt: %w", err)
	}
	return &Service[T]{cfg: *cfg, newEmpty: newEmpty, now: time.Now}, nil
}

// AccessTTL returns the access token lifetime.
func (s *Service[T]) AccessTTL() time.Duration { return s.cfg.AccessTokenTTL }

// RefreshTTL returns the refresh token lifetime.
func (s *Service[T]) RefreshTTL() time.Duration { return s.cfg.RefreshTokenTTL }

// Generate signs claims as they are.
func (s *Service[T]) Generate(claims T) (string, error) {
	token := gojwt.NewWithClaims(s.cfg.signingMethod(), claims)
	signed, err := token.SignedString(s.cfg.key())
	if err != nil {
		return "", fmt.Errorf("jwt: sign token: %w", err)
	}
	return signed, nil
}

// GenerateAccess signs claims as an access token.
func (s *Service[T]) GenerateAccess(claims T) (string, error) {
	s.prepareClaims(claims, s.cfg.AccessTokenTTL, TokenTypeAccess)
	return s.Generate(claims)
}

// GenerateRefresh signs claims as a refresh token.
func (s *Service[T]) GenerateRefresh(claims T) (string, error) {
	s.prepareClaims(claims, s.cfg.RefreshTokenTTL, TokenTypeRefresh)
	return s.Generate(claims)
}

// Parse verifies the signature and time claims of tokenString.
func (s *Service[T]) Parse(tokenString string) (T, error) {
	var zero T
	claims := s.newEmpty()
	token, err := gojwt.ParseWithClaims(tokenString, claims, s.keyFunc, s.parserOptions()...)
	if err != nil {
		return zero, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !token.Valid {
		return zero, ErrInvalidToken
	}
	parsed, ok := token.Claims.(T)
	if !ok {
		return zero, errors.New("jwt: unexpected claims type")
	}
	return parsed, nil
}

// ParseType parses tokenString and checks its token_type claim. Claims
// types without a token type are accepted as is.
func (s *Service[T]) ParseType(tokenString, tokenType string) (T, error) {
	claims, err := s.Parse(tokenString)
	if err != nil {
		return claims, err
	}
	if typed, ok := any(claims).(interface{ GetTokenType() string }); ok && typed.GetTokenType() != tokenType {
		var zero T
		return zero, ErrWrongTokenType
	}
	return claims, nil
}

// ValidatorFunc adapts the service to auth.TokenValidatorFunc. Only
// access tokens are accepted.
func (s *Service[T]) ValidatorFunc() func(context.Context, string) (any, error) {
	return func(_ context.Context, token string) (any, error) {
		return s.ParseType(token, TokenTypeAccess)
	}
}

func (s *Service[T]) keyFunc(token *gojwt.Token) (interface{}, error) {
	if token.Method.Alg() != s.cfg.signingMethod().Alg() {
		return nil, fmt.Errorf("jwt: unexpected signing method: %s", token.Method.Alg())
	}
	return s.cfg.key(), nil
}

func (s *Service[T]) parserOptions() []gojwt.ParserOption {
	opts := []gojwt.ParserOption{
		gojwt.WithValidMethods([]string{s.cfg.signingMethod().Alg()}),
		gojwt.WithExpirationRequired(),
		gojwt.WithTimeFunc(s.now),
	}
	if s.cfg.Leeway > 0 {
		opts = append(opts, gojwt.WithLeeway(s.cfg.Leeway))
	}
	if s.cfg.Issuer != "" {
		opts = append(opts, gojwt.WithIssuer(s.cfg.Issuer))
	}
	if len(s.cfg.Audience) > 0 {
		opts = append(opts, gojwt.WithAudience(s.cfg.Audience[0]))
	}
	return opts
}

// prepareClaims sets standard fields on claims types that support it.
func (s *Service[T]) prepareClaims(claims T, ttl time.Duration, tokenType string) {
	if setter, ok := any(claims).(interface {
		SetDefaults(time.Time, time.Duration, string, []string)
	}); ok {
		setter.SetDefaults(s.now(), ttl, s.cfg.Issuer, s.cfg.Audience)
	}
	if typed, ok := any(claims).(interface{ SetTokenType(string) }); ok {
		typed.SetTokenType(tokenType)
	}
}
