package middleware

import (
	"net/http"
	"time"

	pkghttp "github.com/BradenHooton/citywalk/pkg/http"
	"github.com/go-chi/httprate"
)

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	RequestsPerMinute int
	IPConfig          *pkghttp.IPConfig
}

// DefaultAuthRateLimit returns default rate limit config for auth endpoints (10 requests per minute)
func DefaultAuthRateLimit() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerMinute: 10,
	}
}

// RateLimitByIP creates a middleware that rate limits requests by client IP.
// Forwarded addresses count only when the peer is a trusted proxy.
func RateLimitByIP(config RateLimitConfig) func(next http.Handler) http.Handler {
	return httprate.Limit(
		config.RequestsPerMinute,
		1*time.Minute,
		httprate.WithKeyFuncs(func(r *http.Request) (string, error) {
			return pkghttp.ExtractClientIP(r, config.IPConfig), nil
		}),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			pkghttp.WriteTooManyRequests(w, "Too many requests")
		}),
	)
}
