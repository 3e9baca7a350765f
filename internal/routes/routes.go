package routes

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/BradenHooton/citywalk/internal/handlers"
	middlewareCustom "github.com/BradenHooton/citywalk/internal/middleware"
	pkghttp "github.com/BradenHooton/citywalk/pkg/http"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Handlers groups the resource handlers mounted on the router
type Handlers struct {
	Users        *handlers.UserHandler
	Auth         *handlers.AuthHandler
	Appointments *handlers.AppointmentHandler
	Checkpoints  *handlers.CheckpointHandler
	Streets      *handlers.StreetHandler
	Patterns     *handlers.PatternHandler
}

// Options configures the shared middleware stack
type Options struct {
	Env                     string
	AllowedOrigins          []string
	IPConfig                *pkghttp.IPConfig
	LoginRateLimitPerMinute int
	RequestTimeout          time.Duration
	Health                  handlers.HealthChecker
	Logger                  *slog.Logger
}

// NewRouter builds the chi router with middleware, health, metrics and all
// resource routes.
func NewRouter(h Handlers, opts Options) chi.Router {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 60 * time.Second
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middlewareCustom.SecurityHeaders(middlewareCustom.SecurityHeadersConfig{Env: opts.Env}))
	router.Use(middlewareCustom.CORS(middlewareCustom.DefaultCORSConfig(opts.AllowedOrigins)))
	router.Use(middlewareCustom.SecureLogger(opts.Logger, opts.Env))
	router.Use(middlewareCustom.Metrics)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(opts.RequestTimeout))

	router.Get("/health", handlers.Health(opts.Health))
	router.Method(http.MethodGet, "/metrics", middlewareCustom.MetricsHandler())

	loginLimit := middlewareCustom.DefaultAuthRateLimit()
	if opts.LoginRateLimitPerMinute > 0 {
		loginLimit.RequestsPerMinute = opts.LoginRateLimitPerMinute
	}
	loginLimit.IPConfig = opts.IPConfig

	RegisterRoutes(router, h, middlewareCustom.RateLimitByIP(loginLimit))
	return router
}

// RegisterRoutes registers all application routes
func RegisterRoutes(router chi.Router, h Handlers, loginLimit func(http.Handler) http.Handler) {
	// Login is the only endpoint with a per-IP budget
	h.Auth.RegisterRoutes(router, loginLimit)

	h.Users.RegisterRoutes(router)
	h.Appointments.RegisterRoutes(router)
	h.Checkpoints.RegisterRoutes(router)
	h.Streets.RegisterRoutes(router)
	h.Patterns.RegisterRoutes(router)
}
