package middleware

import (
	"log/slog"
	"net/http"
	"time"

	pkglogger "github.com/BradenHooton/citywalk/pkg/logger"
	"github.com/go-chi/chi/v5/middleware"
)

// SecureLogger returns a middleware for logging HTTP requests with sensitive data redaction
func SecureLogger(logger *slog.Logger, env string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			wrapped := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(wrapped, r)

			path := r.URL.Path
			if query := pkglogger.SanitizeQueryString(r.URL.RawQuery); query != "" {
				path += "?" + query
			}

			level := slog.LevelInfo
			if wrapped.Status() >= http.StatusInternalServerError {
				level = slog.LevelError
			}

			logger.LogAttrs(r.Context(), level, "http_request",
				slog.String("method", r.Method),
				slog.String("path", path),
				slog.Int("status", wrapped.Status()),
				slog.Int64("bytes", int64(wrapped.BytesWritten())),
				slog.String("duration", time.Since(start).String()),
				slog.String("request_id", middleware.GetReqID(r.Context())),
				pkglogger.RedactedAttr("remote_addr", r.RemoteAddr, env),
			)
		})
	}
}
