// Package api registers the REST endpoints under /api: registration and
// token management, the current user, and object storage.
package api

import (
	"context"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/backend-template/accounts"
	"github.com/kbukum/backend-template/auth"
	"github.com/kbukum/backend-template/database/pagination"
	apperrors "github.com/kbukum/backend-template/errors"
	"github.com/kbukum/backend-template/logger"
	"github.com/kbukum/backend-template/observability"
	"github.com/kbukum/backend-template/resilience"
	"github.com/kbukum/backend-template/server/middleware"
	"github.com/kbukum/backend-template/storage"
)

// Prefix is the mount point of every API route.
const Prefix = "/api"

// Deps are the services the handlers call.
type Deps struct {
	Accounts *accounts.Service
	Storage  *storage.Gateway
	Metrics  *observability.Metrics
	PageSize int
	Log      *logger.Logger

	// AuthThrottle limits registration and token requests per client
	// address. The zero value disables throttling.
	AuthThrottle resilience.Limit
}

// Register mounts the API on r. Storage routes are skipped when no
// gateway is configured.
func Register(r gin.IRouter, d Deps) {
	if d.PageSize <= 0 {
		d.PageSize = pagination.DefaultPageSize
	}
	if d.Log == nil {
		d.Log = logger.NewNop()
	}

	group := r.Group(Prefix, middleware.Observe(d.Metrics))
	requireAuth := middleware.Auth(Authenticator(d.Accounts))

	throttle := middleware.Throttle(resilience.NewKeyedLimiter(d.AuthThrottle))

	ah := &AuthHandler{accounts: d.Accounts}
	route(group, "POST", "/auth/register", throttle, ah.Register)
	route(group, "POST", "/auth/token", throttle, ah.Token)
	route(group, "POST", "/auth/token/refresh", ah.Refresh)
	route(group, "POST", "/auth/token/blacklist", ah.Blacklist)

	uh := &UserHandler{accounts: d.Accounts}
	route(group, "GET", "/users/me", requireAuth, uh.Me)

	if d.Storage != nil {
		sh := &StorageHandler{gateway: d.Storage, pageSize: d.PageSize, log: d.Log.WithComponent("api.storage")}
		route(group, "GET", "/storage/objects", requireAuth, sh.List)
		route(group, "DELETE", "/storage/objects", requireAuth, sh.Delete)
		route(group, "GET", "/storage/objects/url", requireAuth, sh.URL)
		route(group, "POST", "/storage/images", requireAuth, sh.UploadImage)
	}
}

// route registers path with and without the trailing slash Django clients
// send.
func route(g *gin.RouterGroup, method, path string, handlers ...gin.HandlerFunc) {
	g.Handle(method, path+"/", handlers...)
	g.Handle(method, path, handlers...)
}

// Authenticator validates access tokens against the account service.
func Authenticator(svc *accounts.Service) auth.TokenValidator {
	return auth.TokenValidatorFunc(func(ctx context.Context, token string) (any, error) {
		return svc.Authenticate(ctx, token)
	})
}

// requestURL rebuilds the absolute URL of the request for pagination links.
func requestURL(c *gin.Context) *url.URL {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if p := c.GetHeader("X-Forwarded-Proto"); p != "" {
		scheme = p
	}
	u := *c.Request.URL
	u.Scheme = scheme
	u.Host = c.Request.Host
	return &u
}

// bindJSON decodes the body into dst. Malformed JSON is a 400.
func bindJSON(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		return apperrors.Validation("JSON parse error.").WithCause(err)
	}
	return nil
}
