package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/BradenHooton/citywalk/internal/auth"
	"github.com/BradenHooton/citywalk/internal/config"
	"github.com/BradenHooton/citywalk/internal/database"
	"github.com/BradenHooton/citywalk/internal/handlers"
	"github.com/BradenHooton/citywalk/internal/repositories"
	"github.com/BradenHooton/citywalk/internal/routes"
	"github.com/BradenHooton/citywalk/internal/services"
	pkghttp "github.com/BradenHooton/citywalk/pkg/http"
	pkglogger "github.com/BradenHooton/citywalk/pkg/logger"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLevel(cfg.Server.LogLevel)}))
	slog.SetDefault(logger)
	logger.Info("configuration loaded", slog.String("env", cfg.Server.Env))

	// Initialize database
	db, err := database.NewConnection(&cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := db.Close(ctx); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()

	indexCtx, indexCancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := db.EnsureIndexes(indexCtx); err != nil {
		indexCancel()
		logger.Error("failed to ensure indexes", slog.Any("error", err))
		os.Exit(1)
	}
	indexCancel()

	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	appointmentRepo := repositories.NewAppointmentRepository(db)
	checkpointRepo := repositories.NewCheckpointRepository(db)
	streetRepo := repositories.NewStreetRepository(db)
	patternRepo := repositories.NewPatternRepository(db)

	// Initialize services
	auditLogger := pkglogger.NewAuditLogger(logger)
	userService := services.NewUserService(userRepo, logger)
	appointmentService := services.NewAppointmentService(appointmentRepo, userRepo, logger)
	checkpointService := services.NewCheckpointService(checkpointRepo, logger)
	scoringService := services.NewScoringService(userRepo, checkpointRepo, logger)
	streetService := services.NewStreetService(streetRepo, logger)
	patternService := services.NewPatternService(patternRepo, logger)
	authService := services.NewAuthService(userRepo, logger, auditLogger)

	// Bootstrap operator account if configured
	if cfg.Auth.AdminUsername != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := authService.EnsureAdmin(ctx, cfg.Auth.AdminUsername, cfg.Auth.AdminPassword); err != nil {
			logger.Error("failed to ensure admin user", slog.Any("error", err))
		}
		cancel()
	}

	ipConfig, err := pkghttp.NewIPConfig(cfg.Server.TrustedProxies)
	if err != nil {
		logger.Error("invalid TRUSTED_PROXIES", slog.Any("error", err))
		os.Exit(1)
	}

	// Timing delay for login responses
	timingDelay := auth.NewTimingDelay(auth.TimingConfig{
		BaseDelayMs:   cfg.Auth.TimingDelayBaseMs,
		RandomDelayMs: cfg.Auth.TimingDelayRandomMs,
	})

	// Setup router
	router := routes.NewRouter(routes.Handlers{
		Users:        handlers.NewUserHandler(userService, scoringService),
		Auth:         handlers.NewAuthHandler(authService, timingDelay, ipConfig),
		Appointments: handlers.NewAppointmentHandler(appointmentService),
		Checkpoints:  handlers.NewCheckpointHandler(checkpointService, scoringService),
		Streets:      handlers.NewStreetHandler(streetService),
		Patterns:     handlers.NewPatternHandler(patternService),
	}, routes.Options{
		Env:                     cfg.Server.Env,
		AllowedOrigins:          cfg.Server.AllowedOrigins,
		IPConfig:                ipConfig,
		LoginRateLimitPerMinute: cfg.Auth.LoginRateLimitPerMinute,
		Health:                  db,
		Logger:                  logger,
	})

	// Create server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server
	serverErr := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigChan:
		logger.Info("shutdown signal received")
	case err := <-serverErr:
		logger.Error("server error", slog.Any("error", err))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
		return
	}

	logger.Info("server stopped gracefully")
}

// parseLevel maps LOG_LEVEL to a slog level, defaulting to info.
func parseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}
