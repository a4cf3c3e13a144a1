package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/backend-template/auth"
	"github.com/kbukum/backend-template/auth/authctx"
	apperrors "github.com/kbukum/backend-template/errors"
	"github.com/kbukum/backend-template/resilience"
	"github.com/kbukum/backend-template/server/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type principal struct{ name string }

var staticValidator = auth.TokenValidatorFunc(func(_ context.Context, token string) (any, error) {
	switch token {
	case "good":
		return &principal{name: "alice"}, nil
	case "expired":
		return nil, apperrors.TokenExpired()
	default:
		return nil, errors.New("signature is invalid")
	}
})

func authEngine() *gin.Engine {
	r := gin.New()
	r.GET("/me", middleware.Auth(staticValidator), func(c *gin.Context) {
		p, ok := authctx.Get[*principal](c.Request.Context())
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		fromGin, _ := c.Get(middleware.ContextKeyPrincipal)
		if fromGin != p {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.String(http.StatusOK, p.name)
	})
	return r
}

func TestAuth(t *testing.T) {
	tests := []struct {
		name   string
		header string
		status int
		code   apperrors.ErrorCode
	}{
		{"valid", "Bearer good", http.StatusOK, ""},
		{"lowercase scheme", "bearer good", http.StatusOK, ""},
		{"missing", "", http.StatusUnauthorized, apperrors.ErrCodeUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized, apperrors.ErrCodeUnauthorized},
		{"three parts", "Bearer good extra", http.StatusUnauthorized, apperrors.ErrCodeUnauthorized},
		{"expired", "Bearer expired", http.StatusUnauthorized, apperrors.ErrCodeTokenExpired},
		{"invalid", "Bearer forged", http.StatusUnauthorized, apperrors.ErrCodeInvalidToken},
	}
	r := authEngine()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/me", http.NoBody)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, req)

			if rr.Code != tt.status {
				t.Fatalf("status = %d, want %d (%s)", rr.Code, tt.status, rr.Body.String())
			}
			if tt.status == http.StatusOK {
				if rr.Body.String() != "alice" {
					t.Errorf("body = %q", rr.Body.String())
				}
				return
			}
			if got := decodeError(t, rr.Body.Bytes()).Code; got != tt.code {
				t.Errorf("code = %s, want %s", got, tt.code)
			}
			if rr.Header().Get("WWW-Authenticate") == "" {
				t.Error("expected WWW-Authenticate on 401")
			}
		})
	}
}

func TestObserve_NilMetricsPassesThrough(t *testing.T) {
	r := gin.New()
	r.Use(middleware.Observe(nil))
	r.GET("/items/:id", func(c *gin.Context) { c.Status(http.StatusAccepted) })

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest("GET", "/items/1", http.NoBody))
	if rr.Code != http.StatusAccepted {
		t.Fatalf("status = %d", rr.Code)
	}
}

func TestGinWrap(t *testing.T) {
	r := gin.New()
	r.Use(middleware.GinWrap(middleware.RequestID()))
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetHeader(middleware.HeaderRequestID))
	})

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest("GET", "/", http.NoBody))
	if rr.Body.Len() == 0 || rr.Body.String() != rr.Header().Get(middleware.HeaderRequestID) {
		t.Errorf("body %q, header %q", rr.Body.String(), rr.Header().Get(middleware.HeaderRequestID))
	}
}

func TestThrottle(t *testing.T) {
	r := gin.New()
	r.POST("/token", middleware.Throttle(resilience.NewKeyedLimiter(resilience.PerMinute(2))), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	send := func(remote string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/token", nil)
		req.RemoteAddr = remote
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)
		return rr
	}

	for i := 0; i < 2; i++ {
		if rr := send("192.0.2.1:1234"); rr.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i+1, rr.Code)
		}
	}
	rr := send("192.0.2.1:1234")
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rr.Code)
	}
	if ra := rr.Header().Get("Retry-After"); ra != "30" {
		t.Errorf("Retry-After = %q, want 30", ra)
	}
	if rr := send("192.0.2.2:1234"); rr.Code != http.StatusOK {
		t.Errorf("other client: expected 200, got %d", rr.Code)
	}

	open := gin.New()
	open.GET("/", middleware.Throttle(nil), func(c *gin.Context) { c.Status(http.StatusNoContent) })
	rec := httptest.NewRecorder()
	open.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusNoContent {
		t.Errorf("nil limiter should pass, got %d", rec.Code)
	}
}
