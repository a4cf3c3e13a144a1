package api

import (
	"github.com/gin-gonic/gin"

	"github.com/kbukum/backend-template/accounts"
	"github.com/kbukum/backend-template/auth/authctx"
	apperrors "github.com/kbukum/backend-template/errors"
	"github.com/kbukum/backend-template/serializer"
	"github.com/kbukum/backend-template/server"
)

// UserHandler serves the authenticated user's profile.
type UserHandler struct {
	accounts *accounts.Service
}

// Me returns the current user, reloaded from the database.
func (h *UserHandler) Me(c *gin.Context) {
	principal, err := authctx.GetOrError[*accounts.User](c.Request.Context())
	if err != nil {
		server.RespondWithError(c, apperrors.Unauthorized(""))
		return
	}
	user, err := h.accounts.Me(c.Request.Context(), principal.ID)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	body, err := serializer.New[*accounts.User]().Serialize(user)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, body)
}
