// internal/middleware/security.go
//
// Security-header middleware.
//
// Injects industry-standard headers on every response:
//
//   • Strict-Transport-Security  –  forces HTTPS (2 years + preload)
//   • Content-Security-Policy   –  sane default self-only policy
//   • X-Content-Type-Options    –  MIME-sniffing defence
//   • Referrer-Policy           –  drops path/query from Referer
//   • Permissions-Policy        –  disables powerful features by default
//
// X-Frame-Options lives in clickjacking.go so the two can be ordered
// independently in the middleware list.
//
// Notes
// -----
// • Headers are set *before* next.ServeHTTP; once a handler writes the body
//   the header map is frozen.  Handlers may still overwrite any of them.
// • HSTS is omitted in debug mode so a browser never pins localhost to TLS.
// • Oxford commas, two spaces after periods.

package middleware

import (
	"net/http"

	"github.com/yanizio/storefront/internal/config"
)

const (
	hsts  = "max-age=63072000; includeSubDomains; preload"
	csp   = "default-src 'self'; img-src 'self' data: https:; object-src 'none'; base-uri 'self'; frame-ancestors 'none'"
	nosn  = "nosniff"
	refer = "strict-origin-when-cross-origin"
	perm  = "geolocation=(), microphone=(), camera=()"
)

// Security sets security headers for every response.  Hosted deployments
// also get the HTTPS redirect.
func Security(snap *config.Snapshot) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hdr := w.Header()
			if !snap.Debug {
				hdr.Set("Strict-Transport-Security", hsts)
			}
			hdr.Set("Content-Security-Policy", csp)
			hdr.Set("X-Content-Type-Options", nosn)
			hdr.Set("Referrer-Policy", refer)
			hdr.Set("Permissions-Policy", perm)
			next.ServeHTTP(w, r)
		})

		if snap.Profile == config.Hosted && !snap.Debug {
			return ForceHTTPS(h)
		}
		return h
	}
}

// Clickjacking forbids framing of every response.
func Clickjacking(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Frame-Options", "DENY")
		next.ServeHTTP(w, r)
	})
}
