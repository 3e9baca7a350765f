package middleware

import "net/http"

// SecurityHeadersConfig holds security headers configuration
type SecurityHeadersConfig struct {
	Env string
}

const (
	// The API only ever serves JSON, so nothing may be loaded or framed.
	productionCSP  = "default-src 'none'; frame-ancestors 'none'; base-uri 'none'; form-action 'none'"
	developmentCSP = "default-src 'self' 'unsafe-inline' http: https: ws:; frame-ancestors 'self'"
)

// SecurityHeaders returns a middleware that adds security headers to all responses
func SecurityHeaders(config SecurityHeadersConfig) func(http.Handler) http.Handler {
	production := config.Env == "production"

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("X-Frame-Options", "DENY")
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("Referrer-Policy", "no-referrer")
			h.Set("Cross-Origin-Opener-Policy", "same-origin")
			h.Set("X-DNS-Prefetch-Control", "off")

			// Responses carry personal data.
			h.Set("Cache-Control", "no-store")

			if production {
				h.Set("Content-Security-Policy", productionCSP)
				if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
					h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
				}
			} else {
				h.Set("Content-Security-Policy", developmentCSP)
			}

			next.ServeHTTP(w, r)
		})
	}
}
