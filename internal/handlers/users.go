package handlers

import (
	"context"
	"net/http"

	"github.com/BradenHooton/citywalk/internal/models"
	pkghttp "github.com/BradenHooton/citywalk/pkg/http"
	"github.com/go-chi/chi/v5"
)

// UserService defines the interface for user business logic
type UserService interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	ListUsers(ctx context.Context, filter models.UserFilter, page models.PageRequest, sort []models.SortField) (*models.Page[*models.User], error)
	SearchUsers(ctx context.Context, term string, page models.PageRequest) (*models.Page[*models.User], error)
	CreateUser(ctx context.Context, in models.UserInput) (*models.User, error)
	UpdateUser(ctx context.Context, id string, u models.UserUpdate) (*models.User, error)
	UpdateUserByUsername(ctx context.Context, username string, u models.UserUpdate) (*models.User, error)
	DeleteUser(ctx context.Context, id string) error
	GetStats(ctx context.Context) (*models.UserStats, error)
	GetRanking(ctx context.Context, limit int) (*models.Ranking, error)
}

// ScoringService credits users with checkpoints
type ScoringService interface {
	RecordCheckpoint(ctx context.Context, username string, isMajor bool) (*models.User, error)
	CompleteCheckpoint(ctx context.Context, checkpointID, username string) (*models.User, error)
}

// UserHandler handles user-related HTTP requests
type UserHandler struct {
	service UserService
	scoring ScoringService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(service UserService, scoring ScoringService) *UserHandler {
	return &UserHandler{
		service: service,
		scoring: scoring,
	}
}

// ScoreRequest is the body of POST /users/username/{username}/score
type ScoreRequest struct {
	IsMajor *bool `json:"isMajor" validate:"required"`
}

const msgUserNotFound = "User not found"

// RegisterRoutes registers all user routes with the chi router
func (h *UserHandler) RegisterRoutes(router chi.Router) {
	router.Route("/users", func(r chi.Router) {
		r.Get("/", h.ListUsers)                               // GET /users
		r.Post("/", h.CreateUser)                             // POST /users
		r.Get("/search", h.SearchUsers)                       // GET /users/search?q=
		r.Get("/stats", h.GetStats)                           // GET /users/stats
		r.Get("/ranking", h.GetRanking)                       // GET /users/ranking?limit=
		r.Put("/username/{username}", h.UpdateUserByUsername) // PUT /users/username/{username}
		r.Post("/username/{username}/score", h.RecordScore)   // POST /users/username/{username}/score
		r.Get("/{id}", h.GetUser)                             // GET /users/{id}
		r.Put("/{id}", h.UpdateUser)                          // PUT /users/{id}
		r.Delete("/{id}", h.DeleteUser)                       // DELETE /users/{id}
	})
}

// GetUser retrieves a user by ID
//
// @Summary Get user by ID
// @Param id path string true "User ID"
// @Produce json
// @Success 200 {object} models.User
// @Failure 400 {object} pkghttp.ErrorResponse
// @Failure 404 {object} pkghttp.ErrorResponse
// @Router /users/{id} [get]
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.GetUserByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err, msgUserNotFound)
		return
	}
	pkghttp.WriteOK(w, user)
}

// ListUsers retrieves a page of users
//
// @Summary List users
// @Param page query int false "Page (default 1)"
// @Param limit query int false "Limit (default 10, max 100)"
// @Param status query string false "active or inactive"
// @Param sort query string false "e.g. -createdAt,name"
// @Produce json
// @Router /users [get]
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	filter := models.UserFilter{Status: r.URL.Query().Get("status")}

	page, err := h.service.ListUsers(r.Context(), filter, pageFromQuery(r), sortFromQuery(r, models.UserSortFields))
	if err != nil {
		writeServiceError(w, err, msgUserNotFound)
		return
	}
	pkghttp.WritePage(w, page.Items, page.Pagination)
}

// SearchUsers matches q against name, email and username
//
// @Summary Search users
// @Param q query string true "Search term"
// @Router /users/search [get]
func (h *UserHandler) SearchUsers(w http.ResponseWriter, r *http.Request) {
	page, err := h.service.SearchUsers(r.Context(), r.URL.Query().Get("q"), pageFromQuery(r))
	if err != nil {
		writeServiceError(w, err, msgUserNotFound)
		return
	}
	pkghttp.WritePage(w, page.Items, page.Pagination)
}

// CreateUser creates a new user
//
// @Summary Create user
// @Accept json
// @Produce json
// @Success 201 {object} models.User
// @Failure 400 {object} pkghttp.ErrorResponse
// @Router /users [post]
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var in models.UserInput
	if !decodeBody(w, r, &in) {
		return
	}

	user, err := h.service.CreateUser(r.Context(), in)
	if err != nil {
		writeServiceError(w, err, msgUserNotFound)
		return
	}
	pkghttp.WriteCreated(w, user)
}

// UpdateUser applies a partial update by ID
//
// @Summary Update user
// @Param id path string true "User ID"
// @Router /users/{id} [put]
func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var u models.UserUpdate
	if !decodeBody(w, r, &u) {
		return
	}

	user, err := h.service.UpdateUser(r.Context(), chi.URLParam(r, "id"), u)
	if err != nil {
		writeServiceError(w, err, msgUserNotFound)
		return
	}
	pkghttp.WriteOK(w, user)
}

// UpdateUserByUsername applies a partial update, including checkpoint
// timestamps, by username
//
// @Summary Update user by username
// @Param username path string true "Username"
// @Router /users/username/{username} [put]
func (h *UserHandler) UpdateUserByUsername(w http.ResponseWriter, r *http.Request) {
	var u models.UserUpdate
	if !decodeBody(w, r, &u) {
		return
	}

	user, err := h.service.UpdateUserByUsername(r.Context(), chi.URLParam(r, "username"), u)
	if err != nil {
		writeServiceError(w, err, msgUserNotFound)
		return
	}
	pkghttp.WriteOK(w, user)
}

// RecordScore credits a user with a major or minor checkpoint
//
// @Summary Record checkpoint for user
// @Param username path string true "Username"
// @Router /users/username/{username}/score [post]
func (h *UserHandler) RecordScore(w http.ResponseWriter, r *http.Request) {
	var req ScoreRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := ValidateRequest(req); err != nil {
		writeServiceError(w, err, msgUserNotFound)
		return
	}

	user, err := h.scoring.RecordCheckpoint(r.Context(), chi.URLParam(r, "username"), *req.IsMajor)
	if err != nil {
		writeServiceError(w, err, msgUserNotFound)
		return
	}
	pkghttp.WriteOK(w, user)
}

// DeleteUser deletes a user by ID
//
// @Summary Delete user
// @Param id path string true "User ID"
// @Router /users/{id} [delete]
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteUser(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err, msgUserNotFound)
		return
	}
	pkghttp.WriteMessage(w, "User deleted successfully")
}

// GetStats returns user counts and the most recent sign-ups
//
// @Router /users/stats [get]
func (h *UserHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.GetStats(r.Context())
	if err != nil {
		writeServiceError(w, err, msgUserNotFound)
		return
	}
	pkghttp.WriteOK(w, stats)
}

// GetRanking returns the leaderboard
//
// @Param limit query int false "Entries (default 20, max 100)"
// @Router /users/ranking [get]
func (h *UserHandler) GetRanking(w http.ResponseWriter, r *http.Request) {
	ranking, err := h.service.GetRanking(r.Context(), atoiOr(r.URL.Query().Get("limit"), 0))
	if err != nil {
		writeServiceError(w, err, msgUserNotFound)
		return
	}
	pkghttp.WriteOK(w, ranking)
}
