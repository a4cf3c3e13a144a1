package middleware

import (
	"encoding/json"
	"net/http"

	apperrors "github.com/kbukum/backend-template/errors"
)

// writeError writes appErr as JSON outside of Gin.
func writeError(w http.ResponseWriter, appErr *apperrors.AppError) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(appErr.HTTPStatus)
	_ = json.NewEncoder(w).Encode(appErr.ToResponse())
}
