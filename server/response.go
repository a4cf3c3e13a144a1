package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/kbukum/backend-template/errors"
	"github.com/kbukum/backend-template/logger"
)

// RespondWithError writes err as an error envelope. Anything that is not
// an *AppError becomes a 500; 5xx errors are logged with the request id.
func RespondWithError(c *gin.Context, err error) {
	appErr := apperrors.From(err)
	if appErr.HTTPStatus >= http.StatusInternalServerError {
		fields := map[string]interface{}{
			logger.FieldPath:   c.Request.URL.Path,
			logger.FieldStatus: appErr.HTTPStatus,
		}
		if appErr.Cause != nil {
			fields[logger.FieldError] = appErr.Cause.Error()
		}
		logger.GetGlobalLogger().WithContext(c.Request.Context()).Error(appErr.Message, fields)
	}
	c.AbortWithStatusJSON(appErr.HTTPStatus, appErr.ToResponse())
}

// RespondOK sends a 200 with data as the body.
func RespondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}

// RespondCreated sends a 201 with data as the body.
func RespondCreated(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, data)
}

// RespondMessage sends {"message": msg} with the given status.
func RespondMessage(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"message": msg})
}

// RespondNoContent sends a 204 with no body.
func RespondNoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
