package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/backend-template/accounts"
	"github.com/kbukum/backend-template/serializer"
	"github.com/kbukum/backend-template/server"
	"github.com/kbukum/backend-template/validation"
)

// AuthHandler serves registration and the token endpoints.
type AuthHandler struct {
	accounts *accounts.Service
	users    *serializer.ModelSerializer[*accounts.User]
}

type credentials struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type refreshRequest struct {
	Refresh string `json:"refresh" validate:"required"`
}

// Register creates a user and returns it with status 201.
func (h *AuthHandler) Register(c *gin.Context) {
	var in accounts.RegisterInput
	if err := bindJSON(c, &in); err != nil {
		server.RespondWithError(c, err)
		return
	}
	user, err := h.accounts.Register(c.Request.Context(), in)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	body, err := h.serializer().Serialize(user)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondCreated(c, body)
}

// Token exchanges credentials for an access and refresh token.
func (h *AuthHandler) Token(c *gin.Context) {
	var in credentials
	if err := bindJSON(c, &in); err != nil {
		server.RespondWithError(c, err)
		return
	}
	if err := validation.Validate(in); err != nil {
		server.RespondWithError(c, err)
		return
	}
	pair, err := h.accounts.Login(c.Request.Context(), in.Username, in.Password)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, pair)
}

// Refresh returns a new access token.
func (h *AuthHandler) Refresh(c *gin.Context) {
	var in refreshRequest
	if err := bindJSON(c, &in); err != nil {
		server.RespondWithError(c, err)
		return
	}
	if err := validation.Validate(in); err != nil {
		server.RespondWithError(c, err)
		return
	}
	pair, err := h.accounts.Refresh(c.Request.Context(), in.Refresh)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, pair)
}

// Blacklist revokes a refresh token and answers with an empty object.
func (h *AuthHandler) Blacklist(c *gin.Context) {
	var in refreshRequest
	if err := bindJSON(c, &in); err != nil {
		server.RespondWithError(c, err)
		return
	}
	if err := validation.Validate(in); err != nil {
		server.RespondWithError(c, err)
		return
	}
	if err := h.accounts.Logout(c.Request.Context(), in.Refresh); err != nil {
		server.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{})
}

func (h *AuthHandler) serializer() *serializer.ModelSerializer[*accounts.User] {
	if h.users == nil {
		h.users = serializer.New[*accounts.User]()
	}
	return h.users
}
