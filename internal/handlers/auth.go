package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/BradenHooton/citywalk/internal/auth"
	"github.com/BradenHooton/citywalk/internal/models"
	pkghttp "github.com/BradenHooton/citywalk/pkg/http"
	"github.com/go-chi/chi/v5"
)

// AuthService defines the interface for authentication business logic
type AuthService interface {
	Login(ctx context.Context, username, password, ipAddress string) (*models.LoginResult, error)
	Register(ctx context.Context, in models.RegisterInput, ipAddress string) (*models.User, error)
	ChangePassword(ctx context.Context, id, current, next string) error
	ResetPassword(ctx context.Context, id, next string) error
	GetLoginStats(ctx context.Context) (*models.LoginStats, error)
}

// AuthHandler handles authentication HTTP requests
type AuthHandler struct {
	service     AuthService
	timingDelay *auth.TimingDelay
	ipConfig    *pkghttp.IPConfig
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(service AuthService, timingDelay *auth.TimingDelay, ipConfig *pkghttp.IPConfig) *AuthHandler {
	return &AuthHandler{
		service:     service,
		timingDelay: timingDelay,
		ipConfig:    ipConfig,
	}
}

// LoginRequest represents the login request body. Password is the
// client-side SHA-256 hex digest.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// ChangePasswordRequest represents the change-password request body
type ChangePasswordRequest struct {
	UserID          string `json:"userId" validate:"required"`
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// ResetPasswordRequest represents the reset-password request body
type ResetPasswordRequest struct {
	UserID      string `json:"userId" validate:"required"`
	NewPassword string `json:"newPassword"`
}

// RegisterRoutes registers the /auth routes. Middlewares in loginLimits
// wrap only the login endpoint.
func (h *AuthHandler) RegisterRoutes(router chi.Router, loginLimits ...func(http.Handler) http.Handler) {
	router.Route("/auth", func(r chi.Router) {
		r.With(loginLimits...).Post("/login", h.Login) // POST /auth/login
		r.Post("/register", h.Register)                // POST /auth/register
		r.Post("/change-password", h.ChangePassword)   // POST /auth/change-password
		r.Post("/reset-password", h.ResetPassword)     // POST /auth/reset-password
		r.Get("/stats", h.GetLoginStats)               // GET /auth/stats
	})
}

// Login authenticates a user by username and password digest
//
// @Summary Log in
// @Accept json
// @Produce json
// @Success 200 {object} models.LoginResult
// @Failure 400 {object} pkghttp.ErrorResponse
// @Failure 401 {object} pkghttp.ErrorResponse
// @Failure 429 {object} pkghttp.ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req LoginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := h.service.Login(r.Context(), req.Username, req.Password, pkghttp.ExtractClientIP(r, h.ipConfig))
	if err != nil {
		h.timingDelay.WaitFrom(r.Context(), start, false)
		writeServiceError(w, err, "Invalid credentials")
		return
	}

	h.timingDelay.WaitFrom(r.Context(), start, true)
	pkghttp.WriteOK(w, result)
}

// Register creates an account with a password
//
// @Summary Register
// @Accept json
// @Success 201 {object} models.User
// @Router /auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var in models.RegisterInput
	if !decodeBody(w, r, &in) {
		return
	}

	user, err := h.service.Register(r.Context(), in, pkghttp.ExtractClientIP(r, h.ipConfig))
	if err != nil {
		writeServiceError(w, err, msgUserNotFound)
		return
	}
	pkghttp.WriteCreated(w, user)
}

// ChangePassword replaces a password after checking the current one
//
// @Router /auth/change-password [post]
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req ChangePasswordRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := ValidateRequest(req); err != nil {
		writeServiceError(w, err, msgUserNotFound)
		return
	}

	if err := h.service.ChangePassword(r.Context(), req.UserID, req.CurrentPassword, req.NewPassword); err != nil {
		writeServiceError(w, err, msgUserNotFound)
		return
	}
	pkghttp.WriteMessage(w, "Password changed successfully")
}

// ResetPassword sets a new password without the current one
//
// @Router /auth/reset-password [post]
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := ValidateRequest(req); err != nil {
		writeServiceError(w, err, msgUserNotFound)
		return
	}

	if err := h.service.ResetPassword(r.Context(), req.UserID, req.NewPassword); err != nil {
		writeServiceError(w, err, msgUserNotFound)
		return
	}
	pkghttp.WriteMessage(w, "Password reset successfully")
}

// GetLoginStats returns password coverage and recent logins
//
// @Router /auth/stats [get]
func (h *AuthHandler) GetLoginStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.GetLoginStats(r.Context())
	if err != nil {
		writeServiceError(w, err, msgUserNotFound)
		return
	}
	pkghttp.WriteOK(w, stats)
}
