package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/backend-template/component"
	apperrors "github.com/kbukum/backend-template/errors"
	"github.com/kbukum/backend-template/logger"
	"github.com/kbukum/backend-template/resilience"
	"github.com/kbukum/backend-template/server/middleware"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := Config{Host: "127.0.0.1", AllowedHosts: []string{"localhost", "example.com"}}
	cfg.ApplyDefaults()
	cfg.Port = 0
	s := New(cfg, logger.NewNop())
	s.ApplyMiddleware()
	return s
}

func TestConfigDefaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()
	if cfg.Port != 8000 || cfg.Host != "0.0.0.0" || cfg.MaxBodySize != "10MB" {
		t.Errorf("unexpected defaults %+v", cfg)
	}
	if err := cfg.Validate(); err == nil {
		t.Error("expected an error without allowed hosts")
	}
	cfg.AllowedHosts = []string{"*"}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
	cfg.Port = 70000
	if err := cfg.Validate(); err == nil {
		t.Error("expected an error for an out-of-range port")
	}
}

func TestForwardedHeadersNeedTrustedProxy(t *testing.T) {
	tests := []struct {
		name    string
		proxies []string
		allowed int
	}{
		{"no trusted proxies ignores X-Forwarded-For", nil, 1},
		{"trusted peer forwards client addresses", []string{"203.0.113.0/24"}, 5},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Config{Host: "127.0.0.1", AllowedHosts: []string{"*"}, TrustedProxies: tc.proxies}
			cfg.ApplyDefaults()
			if err := cfg.Validate(); err != nil {
				t.Fatal(err)
			}
			s := New(cfg, logger.NewNop())
			s.ApplyMiddleware()
			limiter := resilience.NewKeyedLimiter(resilience.PerMinute(1))
			s.GinEngine().POST("/token", middleware.Throttle(limiter), func(c *gin.Context) {
				c.Status(http.StatusOK)
			})

			allowed := 0
			for i := range 5 {
				req := httptest.NewRequest("POST", "http://localhost/token", http.NoBody)
				req.RemoteAddr = "203.0.113.7:40000"
				req.Header.Set("X-Forwarded-For", fmt.Sprintf("10.0.0.%d", i))
				rr := httptest.NewRecorder()
				s.Handler().ServeHTTP(rr, req)
				if rr.Code == http.StatusOK {
					allowed++
				}
			}
			if allowed != tc.allowed {
				t.Errorf("allowed %d of 5, want %d", allowed, tc.allowed)
			}
		})
	}
}

func TestValidateTrustedProxies(t *testing.T) {
	cfg := Config{AllowedHosts: []string{"*"}, TrustedProxies: []string{"10.0.0.1", "192.168.0.0/16"}}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
	cfg.TrustedProxies = append(cfg.TrustedProxies, "proxy.local")
	if err := cfg.Validate(); err == nil {
		t.Error("expected an error for a hostname proxy")
	}
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(t)
	s.RegisterDefaultEndpoints("backend-template", func(context.Context) []component.Health {
		return []component.Health{
			{Name: "database", Status: component.StatusHealthy},
			{Name: "storage", Status: component.StatusUnhealthy, Message: "bucket missing"},
		}
	})

	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, httptest.NewRequest("GET", "http://example.com/health", http.NoBody))

	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", rr.Code)
	}
	var body struct {
		Status     string             `json:"status"`
		Service    string             `json:"service"`
		Components []component.Health `json:"components"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Status != "unhealthy" || body.Service != "backend-template" || len(body.Components) != 2 {
		t.Errorf("unexpected body %+v", body)
	}
	if rr.Header().Get("X-Request-Id") == "" {
		t.Error("middleware chain not applied")
	}
}

func TestVersionEndpoint(t *testing.T) {
	s := newTestServer(t)
	s.RegisterDefaultEndpoints("svc", nil)

	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, httptest.NewRequest("GET", "http://localhost/version", http.NoBody))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if _, ok := body["version"]; !ok {
		t.Errorf("missing version in %v", body)
	}
}

func TestDisallowedHostNeverReachesRoutes(t *testing.T) {
	s := newTestServer(t)
	called := false
	s.GinEngine().GET("/ping", func(c *gin.Context) { called = true })

	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, httptest.NewRequest("GET", "http://evil.com/ping", http.NoBody))
	if rr.Code != http.StatusBadRequest || called {
		t.Errorf("status = %d, called = %v", rr.Code, called)
	}
}

func TestRespondWithError(t *testing.T) {
	s := newTestServer(t)
	e := s.GinEngine()
	e.GET("/missing", func(c *gin.Context) { RespondWithError(c, apperrors.NotFound("User", "42")) })
	e.GET("/boom", func(c *gin.Context) { RespondWithError(c, errors.New("connection reset")) })

	tests := []struct {
		path   string
		status int
		code   apperrors.ErrorCode
	}{
		{"/missing", http.StatusNotFound, apperrors.ErrCodeNotFound},
		{"/boom", http.StatusInternalServerError, apperrors.ErrCodeInternal},
	}
	for _, tt := range tests {
		rr := httptest.NewRecorder()
		s.Handler().ServeHTTP(rr, httptest.NewRequest("GET", "http://localhost"+tt.path, http.NoBody))
		if rr.Code != tt.status {
			t.Errorf("%s: status = %d", tt.path, rr.Code)
		}
		var resp apperrors.ErrorResponse
		if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
			t.Fatal(err)
		}
		if resp.Error.Code != tt.code {
			t.Errorf("%s: code = %s", tt.path, resp.Error.Code)
		}
	}
}

func TestComponentLifecycle(t *testing.T) {
	s := newTestServer(t)
	s.RegisterDefaultEndpoints("svc", nil)
	c := NewComponent(s)
	ctx := context.Background()

	if h := c.Health(ctx); h.Status != component.StatusUnhealthy {
		t.Errorf("health before start = %s", h.Status)
	}
	if err := c.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if h := c.Health(ctx); h.Status != component.StatusHealthy {
		t.Errorf("health after start = %s", h.Status)
	}

	resp, err := http.Get("http://" + s.Addr() + "/version")
	if err != nil {
		t.Fatalf("GET /version: %v", err)
	}
	resp.Body.Close()
	// The Host header is 127.0.0.1:port, which is not in AllowedHosts.
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d", resp.StatusCode)
	}

	if err := c.Stop(ctx); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if err := c.Stop(ctx); err != nil {
		t.Errorf("second Stop should be a no-op: %v", err)
	}
}

func TestFormatHandlerName(t *testing.T) {
	tests := map[string]string{
		"github.com/kbukum/backend-template/api.(*AuthHandler).Login-fm":     "AuthHandler.Login",
		"github.com/kbukum/backend-template/server/endpoint.Health.func1":    "health",
		"github.com/kbukum/backend-template/api.(*StorageHandler).Delete-fm": "StorageHandler.Delete",
	}
	for in, want := range tests {
		if got := formatHandlerName(in); got != want {
			t.Errorf("formatHandlerName(%q) = %q, want %q", in, got, want)
		}
	}
}
