package middleware

import (
	"fmt"
	"net"
	"net/http"
	"strings"

	apperrors "github.com/kbukum/backend-template/errors"
)

// AllowedHosts rejects requests whose Host header matches none of hosts.
// A leading dot matches the domain and every subdomain; "*" matches any
// host. An empty list allows only localhost addresses.
func AllowedHosts(hosts []string) Middleware {
	if len(hosts) == 0 {
		hosts = []string{".localhost", "127.0.0.1", "[::1]"}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !HostAllowed(r.Host, hosts) {
				writeError(w, apperrors.New(apperrors.ErrCodeInvalidInput,
					fmt.Sprintf("Invalid HTTP_HOST header: '%s'.", r.Host), http.StatusBadRequest))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// HostAllowed reports whether host (which may carry a port) matches one of
// patterns.
func HostAllowed(host string, patterns []string) bool {
	host = strings.ToLower(stripPort(host))
	if host == "" {
		return false
	}
	host = strings.TrimSuffix(host, ".")
	for _, p := range patterns {
		p = strings.ToLower(strings.TrimSpace(p))
		switch {
		case p == "*":
			return true
		case strings.HasPrefix(p, "."):
			if host == p[1:] || strings.HasSuffix(host, p) {
				return true
			}
		case host == p || host == strings.Trim(p, "[]"):
			return true
		}
	}
	return false
}

func stripPort(host string) string {
	if h, _, err := net.SplitHostPort(host); err == nil {
		return h
	}
	return strings.Trim(host, "[]")
}
