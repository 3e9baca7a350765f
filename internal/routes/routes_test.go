package routes_test

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/BradenHooton/citywalk/internal/auth"
	"github.com/BradenHooton/citywalk/internal/handlers"
	"github.com/BradenHooton/citywalk/internal/routes"
	"github.com/stretchr/testify/assert"
)

func newTestRouter(health handlers.HealthChecker, loginLimit int) http.Handler {
	h := routes.Handlers{
		Users:        handlers.NewUserHandler(&handlers.MockUserService{}, &handlers.MockScoringService{}),
		Auth:         handlers.NewAuthHandler(&handlers.MockAuthService{}, auth.NewTimingDelay(auth.TimingConfig{}), nil),
		Appointments: handlers.NewAppointmentHandler(&handlers.MockAppointmentService{}),
		Checkpoints:  handlers.NewCheckpointHandler(&handlers.MockCheckpointService{}, &handlers.MockScoringService{}),
		Streets:      handlers.NewStreetHandler(&handlers.MockStreetService{}),
		Patterns:     handlers.NewPatternHandler(&handlers.MockPatternService{}),
	}
	return routes.NewRouter(h, routes.Options{
		Env:                     "test",
		AllowedOrigins:          []string{"*"},
		LoginRateLimitPerMinute: loginLimit,
		Health:                  health,
		Logger:                  slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
}

func get(h http.Handler, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestRouter_Health(t *testing.T) {
	assert.Equal(t, http.StatusOK, get(newTestRouter(&handlers.MockHealthChecker{}, 10), "/health").Code)

	down := newTestRouter(&handlers.MockHealthChecker{Err: errors.New("down")}, 10)
	assert.Equal(t, http.StatusServiceUnavailable, get(down, "/health").Code)
}

func TestRouter_MountsResources(t *testing.T) {
	router := newTestRouter(&handlers.MockHealthChecker{}, 10)

	for _, path := range []string{"/users", "/appointments", "/checkpoints", "/streets", "/streets/verifications", "/patterns/validate", "/auth/stats", "/users/ranking", "/checkpoints/dashboard", "/appointments/stats"} {
		t.Run(path, func(t *testing.T) {
			w := get(router, path)
			assert.NotEqual(t, http.StatusNotFound, w.Code)
			assert.NotEqual(t, http.StatusMethodNotAllowed, w.Code)
		})
	}
}

func TestRouter_SecurityHeadersAndMetrics(t *testing.T) {
	router := newTestRouter(&handlers.MockHealthChecker{}, 10)

	w := get(router, "/health")
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))

	metrics := get(router, "/metrics")
	assert.Equal(t, http.StatusOK, metrics.Code)
	assert.Contains(t, metrics.Body.String(), "citywalk_http_requests_total")
}

func TestRouter_LoginIsRateLimited(t *testing.T) {
	router := newTestRouter(&handlers.MockHealthChecker{}, 2)

	login := func() int {
		req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{}`))
		req.Header.Set("Content-Type", "application/json")
		req.RemoteAddr = "203.0.113.9:4000"
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w.Code
	}

	assert.NotEqual(t, http.StatusTooManyRequests, login())
	assert.NotEqual(t, http.StatusTooManyRequests, login())
	assert.Equal(t, http.StatusTooManyRequests, login())

	// Other endpoints are not limited
	assert.NotEqual(t, http.StatusTooManyRequests, get(router, "/auth/stats").Code)
}
