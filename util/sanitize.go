package util

import (
	"path"
	"strings"
	"unicode"
)

// CleanFolder turns user input into a relative object prefix: control
// characters are dropped, separators normalized and any leading "..",
// "." or "/" removed. An empty result means the bucket root.
func CleanFolder(s string) string {
	s = strings.Map(func(r rune) rune {
		switch {
		case unicode.IsControl(r):
			return -1
		case r == '\\':
			return '/'
		}
		return r
	}, strings.TrimSpace(s))
	if s == "" {
		return ""
	}
	s = strings.TrimLeft(path.Clean("/"+s), "/")
	return s
}

// Unquote trims s and strips one pair of matching surrounding quotes, the
// way values arrive from .env files and docker env lists.
func Unquote(s string) string {
	s = strings.TrimSpace(s)
	if n := len(s); n >= 2 && (s[0] == '"' || s[0] == '\'') && s[n-1] == s[0] {
		s = s[1 : n-1]
	}
	return strings.TrimSpace(s)
}
