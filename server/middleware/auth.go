package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/backend-template/auth"
	"github.com/kbukum/backend-template/auth/authctx"
	apperrors "github.com/kbukum/backend-template/errors"
)

// ContextKeyPrincipal is the gin.Context key holding the authenticated
// principal.
const ContextKeyPrincipal = "principal"

// Auth requires an "Authorization: Bearer <token>" header accepted by
// validator. The principal is stored in the request context (authctx) and
// under ContextKeyPrincipal.
func Auth(validator auth.TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			abort(c, apperrors.Unauthorized(""))
			return
		}

		scheme, token, ok := strings.Cut(header, " ")
		token = strings.TrimSpace(token)
		if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" || strings.Contains(token, " ") {
			abort(c, apperrors.Unauthorized("Authorization header must contain two space-delimited values"))
			return
		}

		principal, err := validator.ValidateToken(c.Request.Context(), token)
		if err != nil {
			if appErr, ok := apperrors.AsAppError(err); ok {
				abort(c, appErr)
				return
			}
			abort(c, apperrors.InvalidToken().WithCause(err))
			return
		}

		c.Request = c.Request.WithContext(authctx.Set(c.Request.Context(), principal))
		c.Set(ContextKeyPrincipal, principal)
		c.Next()
	}
}

func abort(c *gin.Context, appErr *apperrors.AppError) {
	if appErr.HTTPStatus == 401 {
		c.Header("WWW-Authenticate", `Bearer realm="api"`)
	}
	c.AbortWithStatusJSON(appErr.HTTPStatus, appErr.ToResponse())
}
