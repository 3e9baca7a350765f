package handlers

import (
	"context"
	"net/http"

	"github.com/BradenHooton/citywalk/internal/models"
	pkghttp "github.com/BradenHooton/citywalk/pkg/http"
	"github.com/go-chi/chi/v5"
)

// CheckpointService defines the interface for checkpoint business logic
type CheckpointService interface {
	CreateCheckpoint(ctx context.Context, in models.CheckpointInput) (*models.Checkpoint, error)
	GetCheckpoint(ctx context.Context, id string) (*models.Checkpoint, error)
	ListCheckpoints(ctx context.Context, filter models.CheckpointFilter, page models.PageRequest, sort []models.SortField) (*models.Page[*models.Checkpoint], error)
	ListMajor(ctx context.Context, page models.PageRequest) (*models.Page[*models.Checkpoint], error)
	SearchCheckpoints(ctx context.Context, internalID, location string, page models.PageRequest) (*models.Page[*models.Checkpoint], error)
	UpdateCheckpoint(ctx context.Context, id string, u models.CheckpointUpdate) (*models.Checkpoint, error)
	UpdateResult(ctx context.Context, id string, in *models.CheckpointResultInput) (*models.Checkpoint, error)
	DeleteCheckpoint(ctx context.Context, id string) error
	GetStats(ctx context.Context) (*models.CheckpointStats, error)
	GetDashboard(ctx context.Context) (*models.CheckpointDashboard, error)
}

// CheckpointHandler handles checkpoint HTTP requests
type CheckpointHandler struct {
	service CheckpointService
	scoring ScoringService
}

// NewCheckpointHandler creates a new CheckpointHandler
func NewCheckpointHandler(service CheckpointService, scoring ScoringService) *CheckpointHandler {
	return &CheckpointHandler{
		service: service,
		scoring: scoring,
	}
}

// CompleteCheckpointRequest is the body of POST /checkpoints/{id}/complete
type CompleteCheckpointRequest struct {
	Username string `json:"username" validate:"required"`
}

const msgCheckpointNotFound = "Checkpoint not found"

// RegisterRoutes registers all checkpoint routes with the chi router
func (h *CheckpointHandler) RegisterRoutes(router chi.Router) {
	router.Route("/checkpoints", func(r chi.Router) {
		r.Get("/", h.ListCheckpoints)                  // GET /checkpoints
		r.Post("/", h.CreateCheckpoint)                // POST /checkpoints
		r.Get("/stats", h.GetStats)                    // GET /checkpoints/stats
		r.Get("/dashboard", h.GetDashboard)            // GET /checkpoints/dashboard
		r.Get("/major", h.ListMajor)                   // GET /checkpoints/major
		r.Get("/search", h.SearchCheckpoints)          // GET /checkpoints/search?internalId=|location=
		r.Get("/{id}", h.GetCheckpoint)                // GET /checkpoints/{id}
		r.Put("/{id}", h.UpdateCheckpoint)             // PUT /checkpoints/{id}
		r.Put("/{id}/result", h.UpdateResult)          // PUT /checkpoints/{id}/result
		r.Post("/{id}/complete", h.CompleteCheckpoint) // POST /checkpoints/{id}/complete
		r.Delete("/{id}", h.DeleteCheckpoint)          // DELETE /checkpoints/{id}
	})
}

// ListCheckpoints retrieves a page of checkpoints
//
// @Param isMajorCheckpoint query bool false "Filter by major flag"
// @Param location query string false "Case-insensitive substring"
// @Router /checkpoints [get]
func (h *CheckpointHandler) ListCheckpoints(w http.ResponseWriter, r *http.Request) {
	filter := models.CheckpointFilter{
		IsMajorCheckpoint: boolQuery(r, "isMajorCheckpoint"),
		Location:          r.URL.Query().Get("location"),
	}

	page, err := h.service.ListCheckpoints(r.Context(), filter, pageFromQuery(r), sortFromQuery(r, models.CheckpointSortFields))
	if err != nil {
		writeServiceError(w, err, msgCheckpointNotFound)
		return
	}
	pkghttp.WritePage(w, page.Items, page.Pagination)
}

// CreateCheckpoint creates a checkpoint
//
// @Accept json
// @Success 201 {object} models.Checkpoint
// @Router /checkpoints [post]
func (h *CheckpointHandler) CreateCheckpoint(w http.ResponseWriter, r *http.Request) {
	var in models.CheckpointInput
	if !decodeBody(w, r, &in) {
		return
	}

	cp, err := h.service.CreateCheckpoint(r.Context(), in)
	if err != nil {
		writeServiceError(w, err, msgCheckpointNotFound)
		return
	}
	pkghttp.WriteCreated(w, cp)
}

// GetCheckpoint retrieves one checkpoint
//
// @Router /checkpoints/{id} [get]
func (h *CheckpointHandler) GetCheckpoint(w http.ResponseWriter, r *http.Request) {
	cp, err := h.service.GetCheckpoint(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err, msgCheckpointNotFound)
		return
	}
	pkghttp.WriteOK(w, cp)
}

// ListMajor retrieves major checkpoints only
//
// @Router /checkpoints/major [get]
func (h *CheckpointHandler) ListMajor(w http.ResponseWriter, r *http.Request) {
	page, err := h.service.ListMajor(r.Context(), pageFromQuery(r))
	if err != nil {
		writeServiceError(w, err, msgCheckpointNotFound)
		return
	}
	pkghttp.WritePage(w, page.Items, page.Pagination)
}

// SearchCheckpoints matches by internalId or location substring
//
// @Router /checkpoints/search [get]
func (h *CheckpointHandler) SearchCheckpoints(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := h.service.SearchCheckpoints(r.Context(), q.Get("internalId"), q.Get("location"), pageFromQuery(r))
	if err != nil {
		writeServiceError(w, err, msgCheckpointNotFound)
		return
	}
	pkghttp.WritePage(w, page.Items, page.Pagination)
}

// UpdateCheckpoint applies a partial update
//
// @Router /checkpoints/{id} [put]
func (h *CheckpointHandler) UpdateCheckpoint(w http.ResponseWriter, r *http.Request) {
	var u models.CheckpointUpdate
	if !decodeBody(w, r, &u) {
		return
	}

	cp, err := h.service.UpdateCheckpoint(r.Context(), chi.URLParam(r, "id"), u)
	if err != nil {
		writeServiceError(w, err, msgCheckpointNotFound)
		return
	}
	pkghttp.WriteOK(w, cp)
}

// UpdateResult replaces the result payload. A JSON null body clears it.
//
// @Router /checkpoints/{id}/result [put]
func (h *CheckpointHandler) UpdateResult(w http.ResponseWriter, r *http.Request) {
	var in *models.CheckpointResultInput
	if !decodeBody(w, r, &in) {
		return
	}

	cp, err := h.service.UpdateResult(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		writeServiceError(w, err, msgCheckpointNotFound)
		return
	}
	pkghttp.WriteOK(w, cp)
}

// CompleteCheckpoint credits a user with this checkpoint
//
// @Router /checkpoints/{id}/complete [post]
func (h *CheckpointHandler) CompleteCheckpoint(w http.ResponseWriter, r *http.Request) {
	var req CompleteCheckpointRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := ValidateRequest(req); err != nil {
		writeServiceError(w, err, msgCheckpointNotFound)
		return
	}

	user, err := h.scoring.CompleteCheckpoint(r.Context(), chi.URLParam(r, "id"), req.Username)
	if err != nil {
		writeServiceError(w, err, "Checkpoint or user not found")
		return
	}
	pkghttp.WriteOK(w, user)
}

// DeleteCheckpoint deletes one checkpoint
//
// @Router /checkpoints/{id} [delete]
func (h *CheckpointHandler) DeleteCheckpoint(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteCheckpoint(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err, msgCheckpointNotFound)
		return
	}
	pkghttp.WriteMessage(w, "Checkpoint deleted successfully")
}

// GetStats returns checkpoint counts
//
// @Router /checkpoints/stats [get]
func (h *CheckpointHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.GetStats(r.Context())
	if err != nil {
		writeServiceError(w, err, msgCheckpointNotFound)
		return
	}
	pkghttp.WriteOK(w, stats)
}

// GetDashboard returns stats plus the major and recent checkpoint feeds
//
// @Router /checkpoints/dashboard [get]
func (h *CheckpointHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	dashboard, err := h.service.GetDashboard(r.Context())
	if err != nil {
		writeServiceError(w, err, msgCheckpointNotFound)
		return
	}
	pkghttp.WriteOK(w, dashboard)
}
