package jwt

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func newService(t *testing.T, cfg Config) *Service[*Claims] {
	t.Helper()
	if cfg.Secret == "" {
		cfg.Secret = "test-secret"
	}
	svc, err := NewService(&cfg, func() *Claims { return &Claims{} })
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestConfig_Defaults(t *testing.T) {
	cfg := Config{Secret: "s"}
	cfg.ApplyDefaults()
	if cfg.Method != HS256 {
		t.Errorf("method = %s", cfg.Method)
	}
	if cfg.AccessTokenTTL != 30*24*time.Hour || cfg.RefreshTokenTTL != 30*24*time.Hour {
		t.Errorf("ttl = %s / %s", cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	}
	if err := cfg.Validate(); err != nil {
		t.Error(err)
	}
}

func TestConfig_Validate(t *testing.T) {
	if _, err := NewService(&Config{}, func() *Claims { return &Claims{} }); err == nil {
		t.Error("expected error without secret")
	}
	if _, err := NewService(&Config{Secret: "s", Method: "RS256"}, func() *Claims { return &Claims{} }); err == nil {
		t.Error("expected error for RS256")
	}
}

func TestGenerateAccess_Claims(t *testing.T) {
	svc := newService(t, Config{})
	fixed := time.Now().Truncate(time.Second)
	svc.now = func() time.Time { return fixed }

	userID := uuid.NewString()
	token, err := svc.GenerateAccess(NewClaims(userID))
	if err != nil {
		t.Fatal(err)
	}
	claims, err := svc.ParseType(token, TokenTypeAccess)
	if err != nil {
		t.Fatalf("ParseType: %v", err)
	}
	if claims.UserID != userID || claims.Subject != userID {
		t.Errorf("user = %s / %s", claims.UserID, claims.Subject)
	}
	if _, err := uuid.Parse(claims.ID); err != nil {
		t.Errorf("jti %q is not a uuid", claims.ID)
	}
	if !claims.Expiry().Equal(fixed.Add(DefaultTokenLifetime)) {
		t.Errorf("exp = %s", claims.Expiry())
	}
}

func TestTokenTypes(t *testing.T) {
	svc := newService(t, Config{})
	access, _ := svc.GenerateAccess(NewClaims("u1"))
	refresh, _ := svc.GenerateRefresh(NewClaims("u1"))

	if _, err := svc.ParseType(refresh, TokenTypeAccess); !errors.Is(err, ErrWrongTokenType) {
		t.Errorf("refresh accepted as access: %v", err)
	}
	if _, err := svc.ParseType(access, TokenTypeRefresh); !errors.Is(err, ErrWrongTokenType) {
		t.Errorf("access accepted as refresh: %v", err)
	}
	if _, err := svc.ValidatorFunc()(context.Background(), access); err != nil {
		t.Errorf("validator rejected access token: %v", err)
	}
}

func TestJTIsAreUnique(t *testing.T) {
	svc := newService(t, Config{})
	a, _ := svc.GenerateRefresh(NewClaims("u1"))
	b, _ := svc.GenerateRefresh(NewClaims("u1"))
	ca, _ := svc.Parse(a)
	cb, _ := svc.Parse(b)
	if ca.ID == cb.ID {
		t.Error("expected distinct jti")
	}
}

func TestParse_Rejects(t *testing.T) {
	svc := newService(t, Config{AccessTokenTTL: time.Minute})
	token, _ := svc.GenerateAccess(NewClaims("u1"))

	other := newService(t, Config{Secret: "other-secret"})
	if _, err := other.Parse(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("wrong secret: %v", err)
	}

	svc.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	if _, err := svc.Parse(token); !errors.Is(err, ErrInvalidToken) || !IsExpired(err) {
		t.Errorf("expired: %v", err)
	}

	if _, err := svc.Parse("not.a.token"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("garbage: %v", err)
	}
}

func TestParse_RequiresExpiry(t *testing.T) {
	svc := newService(t, Config{})
	token, err := svc.Generate(&Claims{TokenType: TokenTypeAccess})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Parse(token); err == nil {
		t.Error("token without exp must be rejected")
	}
}
