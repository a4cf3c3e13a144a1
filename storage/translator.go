package storage

import (
	"errors"
	"net/http"

	apperrors "github.com/kbukum/backend-template/errors"
)

// FromStorage converts a storage error to an AppError for HTTP responses.
func FromStorage(err error) *apperrors.AppError {
	if err == nil {
		return nil
	}
	if appErr, ok := apperrors.AsAppError(err); ok {
		return appErr
	}

	var se *Error
	if !errors.As(err, &se) {
		se = &Error{Kind: Classify(err), Err: err}
	}

	switch se.Kind {
	case KindNotFound:
		if se.Msg != "" {
			return apperrors.New(apperrors.ErrCodeNotFound, se.Msg, http.StatusNotFound).WithCause(err)
		}
		appErr := apperrors.NotFound("object", se.Key).WithCause(err)
		if se.Op != "" {
			appErr.WithDetail("operation", se.Op)
		}
		return appErr
	case KindAccessDenied:
		return apperrors.Forbidden("Access to the storage bucket was denied.").WithCause(err)
	case KindTransient:
		return apperrors.ServiceUnavailable("storage service").WithCause(err)
	default:
		return apperrors.ExternalServiceError("storage", err)
	}
}
