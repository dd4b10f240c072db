package middleware

import (
	"net/http"
	"strings"
)

// frontendCSP fits the bundled survey page: same-origin scripts and API calls,
// inline styles for the report picker.
const frontendCSP = "default-src 'self'; style-src 'self' 'unsafe-inline'; img-src 'self' data:; frame-ancestors 'none'"

// SecureHeaders sets browser hardening headers. API and export responses are
// never rendered, so they get a deny-all policy instead of the frontend one.
func SecureHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Referrer-Policy", "no-referrer")
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Permissions-Policy", "camera=(), microphone=(), geolocation=()")
		if strings.HasPrefix(r.URL.Path, "/api/") {
			h.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		} else {
			h.Set("Content-Security-Policy", frontendCSP)
		}
		next.ServeHTTP(w, r)
	})
}
