// Package security provides response security headers and input
// sanitization for user-supplied form text.
package security

import (
	"net/http"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Headers adds standard security headers to every response.
func Headers(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'self'; script-src 'self' https://unpkg.com; style-src 'self' 'unsafe-inline'; img-src 'self' data:; connect-src 'self'")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

// Sanitizer strips markup and control characters from free-text input.
type Sanitizer struct {
	policy *bluemonday.Policy
}

// NewSanitizer builds a sanitizer with the strict policy: all HTML removed.
func NewSanitizer() *Sanitizer {
	return &Sanitizer{policy: bluemonday.StrictPolicy()}
}

// Clean sanitizes one form value: HTML stripped, control characters
// removed, whitespace trimmed.
func (s *Sanitizer) Clean(in string) string {
	out := s.policy.Sanitize(in)
	out = strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, out)
	return strings.TrimSpace(out)
}
