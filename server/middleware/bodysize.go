package middleware

import (
	"net/http"

	"github.com/dustin/go-humanize"
)

const defaultMaxBodySize = 10 * 1024 * 1024

// ParseSize parses sizes such as "10MB" or "512KiB". Empty or invalid
// input yields defaultBytes.
func ParseSize(s string, defaultBytes int64) int64 {
	if s == "" {
		return defaultBytes
	}
	n, err := humanize.ParseBytes(s)
	if err != nil || n == 0 {
		return defaultBytes
	}
	return int64(n)
}

// BodySizeLimit caps request bodies at maxSize.
func BodySizeLimit(maxSize string) Middleware {
	size := ParseSize(maxSize, defaultMaxBodySize)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, size)
			next.ServeHTTP(w, r)
		})
	}
}
