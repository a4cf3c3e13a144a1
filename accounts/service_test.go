package accounts

import (
	"context"
	"testing"
	"time"

	"github.com/kbukum/backend-template/auth/jwt"
	"github.com/kbukum/backend-template/auth/password"
	"github.com/kbukum/backend-template/database"
	"github.com/kbukum/backend-template/database/testutil"
	apperrors "github.com/kbukum/backend-template/errors"
	"github.com/kbukum/backend-template/logger"
	"github.com/kbukum/backend-template/validation"
)

const strongPassword = "violet-harbor-lantern"

func newService(t *testing.T) (*Service, *database.DB) {
	t.Helper()
	db := testutil.Open(t, Models()...)
	tokens, err := jwt.NewService(&jwt.Config{Secret: "test-secret"}, func() *jwt.Claims { return &jwt.Claims{} })
	if err != nil {
		t.Fatal(err)
	}
	cfg := password.Config{BcryptCost: 4}
	return NewService(db, tokens, password.NewHasher(cfg), password.NewValidator(cfg), logger.NewNop()), db
}

func register(t *testing.T, s *Service, username string) *User {
	t.Helper()
	u, err := s.Register(context.Background(), RegisterInput{
		Username:  username,
		Email:     username + "@Example.com",
		Password:  strongPassword,
		Password2: strongPassword,
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	return u
}

func codeOf(t *testing.T, err error) apperrors.ErrorCode {
	t.Helper()
	appErr, ok := apperrors.AsAppError(err)
	if !ok {
		t.Fatalf("expected AppError, got %v", err)
	}
	return appErr.Code
}

func fieldErrors(t *testing.T, err error) validation.FieldErrors {
	t.Helper()
	appErr, ok := apperrors.AsAppError(err)
	if !ok {
		t.Fatalf("expected AppError, got %v", err)
	}
	fields, _ := appErr.Details["fields"].(validation.FieldErrors)
	return fields
}

func TestRegister(t *testing.T) {
	s, _ := newService(t)
	u := register(t, s, "ana")

	if u.Email != "ana@example.com" {
		t.Errorf("email = %s", u.Email)
	}
	if u.Password == strongPassword || u.Password == "" {
		t.Error("password must be stored hashed")
	}
	if !u.GetIsActive() {
		t.Error("new users are active")
	}
}

func TestRegister_ValidationErrors(t *testing.T) {
	s, _ := newService(t)
	register(t, s, "ana")

	tests := []struct {
		name  string
		in    RegisterInput
		field string
	}{
		{"missing username", RegisterInput{Password: strongPassword, Password2: strongPassword}, "username"},
		{"bad username", RegisterInput{Username: "a b", Password: strongPassword, Password2: strongPassword}, "username"},
		{"taken", RegisterInput{Username: "ana", Password: strongPassword, Password2: strongPassword}, "username"},
		{"mismatch", RegisterInput{Username: "bob", Password: strongPassword, Password2: "other"}, "password2"},
		{"weak", RegisterInput{Username: "bob", Password: "12345678", Password2: "12345678"}, "password"},
		{"similar", RegisterInput{Username: "robertsmith", Password: "RobertSmith9", Password2: "RobertSmith9"}, "password"},
		{"bad email", RegisterInput{Username: "bob", Email: "nope", Password: strongPassword, Password2: strongPassword}, "email"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Register(context.Background(), tt.in)
			if code := codeOf(t, err); code != apperrors.ErrCodeInvalidInput {
				t.Fatalf("code = %s", code)
			}
			if fields := fieldErrors(t, err); len(fields[tt.field]) == 0 {
				t.Errorf("expected error on %s, got %v", tt.field, fields)
			}
		})
	}
}

func TestLoginAndAuthenticate(t *testing.T) {
	s, _ := newService(t)
	ctx := context.Background()
	u := register(t, s, "ana")

	pair, err := s.Login(ctx, "ana", strongPassword)
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if pair.Access == "" || pair.Refresh == "" {
		t.Fatalf("pair = %+v", pair)
	}

	got, err := s.Authenticate(ctx, pair.Access)
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if got.ID != u.ID || got.LastLogin == nil {
		t.Errorf("user = %+v", got)
	}

	if _, err := s.Authenticate(ctx, pair.Refresh); codeOf(t, err) != apperrors.ErrCodeInvalidToken {
		t.Error("refresh token must not authenticate")
	}

	me, err := s.Me(ctx, u.ID)
	if err != nil || me.Username != "ana" {
		t.Errorf("Me = %v, %v", me, err)
	}
}

func TestLogin_BadCredentials(t *testing.T) {
	s, db := newService(t)
	ctx := context.Background()
	u := register(t, s, "ana")

	if _, err := s.Login(ctx, "ana", "wrong-password"); codeOf(t, err) != apperrors.ErrCodeUnauthorized {
		t.Errorf("wrong password: %v", err)
	}
	if _, err := s.Login(ctx, "nobody", strongPassword); codeOf(t, err) != apperrors.ErrCodeUnauthorized {
		t.Errorf("unknown user: %v", err)
	}

	if err := database.Deactivate(ctx, db.GormDB, u); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Login(ctx, "ana", strongPassword); codeOf(t, err) != apperrors.ErrCodeUnauthorized {
		t.Errorf("inactive user: %v", err)
	}
}

func TestRefreshAndLogout(t *testing.T) {
	s, db := newService(t)
	ctx := context.Background()
	register(t, s, "ana")

	pair, err := s.Login(ctx, "ana", strongPassword)
	if err != nil {
		t.Fatal(err)
	}

	refreshed, err := s.Refresh(ctx, pair.Refresh)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if refreshed.Access == "" || refreshed.Refresh != "" {
		t.Errorf("refreshed = %+v", refreshed)
	}

	if err := s.Logout(ctx, pair.Refresh); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if err := s.Logout(ctx, pair.Refresh); err != nil {
		t.Errorf("second Logout: %v", err)
	}

	var n int64
	db.GormDB.Model(&BlacklistedToken{}).Count(&n)
	if n != 1 {
		t.Errorf("blacklisted rows = %d", n)
	}

	if _, err := s.Refresh(ctx, pair.Refresh); codeOf(t, err) != apperrors.ErrCodeTokenBlacklisted {
		t.Errorf("expected blacklisted, got %v", err)
	}
	if _, err := s.Refresh(ctx, pair.Access); codeOf(t, err) != apperrors.ErrCodeInvalidToken {
		t.Errorf("access token refreshed: %v", err)
	}
	if err := s.Logout(ctx, "garbage"); codeOf(t, err) != apperrors.ErrCodeInvalidToken {
		t.Errorf("garbage logout: %v", err)
	}
}

func TestFlushExpired(t *testing.T) {
	s, db := newService(t)
	ctx := context.Background()
	register(t, s, "ana")

	pair, err := s.Login(ctx, "ana", strongPassword)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Logout(ctx, pair.Refresh); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Login(ctx, "ana", strongPassword); err != nil {
		t.Fatal(err)
	}

	if n, err := s.FlushExpired(ctx); err != nil || n != 0 {
		t.Fatalf("nothing expired yet: %d, %v", n, err)
	}

	s.now = func() time.Time { return time.Now().Add(jwt.DefaultTokenLifetime + time.Hour) }
	n, err := s.FlushExpired(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("removed = %d", n)
	}
	var left int64
	db.GormDB.Model(&BlacklistedToken{}).Count(&left)
	if left != 0 {
		t.Errorf("blacklist rows left = %d", left)
	}
}
