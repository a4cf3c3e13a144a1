package middleware

import (
	"net/http"
	"net/url"
	"path"
	"strings"

	apperrors "github.com/kbukum/backend-template/errors"
)

// CSRFOrigins guards unsafe requests that carry cookies: their Origin
// must be the request's own host or match a trusted origin. Patterns take
// the form "https://*.example.com". Bearer-token requests without cookies
// pass through.
func CSRFOrigins(trusted []string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if safeMethod(r.Method) || r.Header.Get("Cookie") == "" {
				next.ServeHTTP(w, r)
				return
			}
			origin := r.Header.Get("Origin")
			if origin == "" || originTrusted(origin, r.Host, trusted) {
				next.ServeHTTP(w, r)
				return
			}
			writeError(w, apperrors.Forbidden("CSRF Failed: Origin checking failed - "+origin+" does not match any trusted origins."))
		})
	}
}

func safeMethod(m string) bool {
	switch m {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return true
	}
	return false
}

func originTrusted(origin, host string, trusted []string) bool {
	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return false
	}
	if strings.EqualFold(u.Host, host) {
		return true
	}
	for _, t := range trusted {
		tu, err := url.Parse(strings.TrimSpace(t))
		if err != nil || !strings.EqualFold(tu.Scheme, u.Scheme) {
			continue
		}
		if ok, _ := path.Match(strings.ToLower(tu.Host), strings.ToLower(u.Host)); ok {
			return true
		}
	}
	return false
}
