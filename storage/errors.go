package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/http"
)

// Kind classifies a storage failure so callers can branch on outcome.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindNotFound
	KindAccessDenied
	KindTransient
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindAccessDenied:
		return "access_denied"
	case KindTransient:
		return "transient"
	default:
		return "unknown"
	}
}

// Operation names used in errors, logs and metrics.
const (
	OpUpload      = "upload_object"
	OpDownload    = "download_object"
	OpDelete      = "delete_object"
	OpList        = "list_objects"
	OpURL         = "get_object_url"
	OpUploadImage = "upload_image"
	OpPing        = "ping"
)

// Error is returned by every Gateway operation.
type Error struct {
	Kind Kind
	Op   string
	Key  string
	// Msg overrides the formatted message when set.
	Msg string
	Err error
}

func (e *Error) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	switch {
	case e.Op == "" && e.Key == "":
		return fmt.Sprintf("storage: %v", e.Err)
	case e.Key == "":
		return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
	default:
		return fmt.Sprintf("storage: %s %q: %v", e.Op, e.Key, e.Err)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// FileNotFound reports a missing local source file for op.
func FileNotFound(op, path string) *Error {
	return &Error{
		Kind: KindNotFound,
		Op:   op,
		Key:  path,
		Msg:  "File not found: " + path,
		Err:  fs.ErrNotExist,
	}
}

// LocalFileError reports a failure on the local side of a transfer. Its
// Key is the local path, and it is never classified as a missing object.
func LocalFileError(op, path string, err error) *Error {
	return &Error{
		Kind: KindUnknown,
		Op:   op,
		Key:  path,
		Msg:  fmt.Sprintf("Local file error: %s: %v", path, err),
		Err:  err,
	}
}

// NewError wraps err with the given kind. Backends use it so the Gateway
// keeps their classification.
func NewError(kind Kind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

// KindOf returns the kind of err. Errors not produced by this package are
// classified with Classify.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return Classify(err)
}

func IsNotFound(err error) bool     { return err != nil && KindOf(err) == KindNotFound }
func IsAccessDenied(err error) bool { return err != nil && KindOf(err) == KindAccessDenied }
func IsTransient(err error) bool    { return err != nil && KindOf(err) == KindTransient }

// httpStatusError is satisfied by SDK response errors.
type httpStatusError interface {
	HTTPStatusCode() int
}

// Classify derives a kind from provider-neutral signals: context
// deadlines, network errors, filesystem errors and HTTP status codes.
func Classify(err error) Kind {
	if err == nil {
		return KindUnknown
	}

	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return KindTransient
	case errors.Is(err, fs.ErrNotExist):
		return KindNotFound
	case errors.Is(err, fs.ErrPermission):
		return KindAccessDenied
	}

	var hs httpStatusError
	if errors.As(err, &hs) {
		if k := StatusKind(hs.HTTPStatusCode()); k != KindUnknown {
			return k
		}
	}

	var ne net.Error
	if errors.As(err, &ne) {
		return KindTransient
	}
	return KindUnknown
}

// StatusKind maps an HTTP status code from an object store to a kind.
func StatusKind(status int) Kind {
	switch status {
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusUnauthorized, http.StatusForbidden:
		return KindAccessDenied
	case http.StatusRequestTimeout, http.StatusTooManyRequests,
		http.StatusInternalServerError, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return KindTransient
	default:
		return KindUnknown
	}
}

// wrap attaches op and key to err, keeping any kind a backend assigned.
func wrap(op, key string, err error) error {
	if err == nil {
		return nil
	}
	var se *Error
	if errors.As(err, &se) {
		out := *se
		if out.Op == "" {
			out.Op = op
		}
		if out.Key == "" {
			out.Key = key
		}
		return &out
	}
	return &Error{Kind: Classify(err), Op: op, Key: key, Err: err}
}
