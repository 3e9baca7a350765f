package handlers

import (
	"context"
	"net/http"

	"github.com/BradenHooton/citywalk/internal/models"
	pkghttp "github.com/BradenHooton/citywalk/pkg/http"
	"github.com/go-chi/chi/v5"
)

// StreetService defines the interface for street verification logic
type StreetService interface {
	Verify(ctx context.Context, provaID, location, username string) (*models.VerifyResult, error)
	CreateDestination(ctx context.Context, in models.StreetInput) (*models.StreetDestination, error)
	ListDestinations(ctx context.Context, page models.PageRequest, sort []models.SortField) (*models.Page[*models.StreetDestination], error)
	GetDestination(ctx context.Context, id string) (*models.StreetDestination, error)
	VerificationHistory(ctx context.Context, page models.PageRequest) (*models.Page[*models.StreetVerification], error)
}

// StreetHandler handles street destination HTTP requests
type StreetHandler struct {
	service StreetService
}

// NewStreetHandler creates a new StreetHandler
func NewStreetHandler(service StreetService) *StreetHandler {
	return &StreetHandler{service: service}
}

// VerifyRequest is the body of POST /streets/verify
type VerifyRequest struct {
	ProvaID  string `json:"provaId" validate:"required"`
	Location string `json:"location" validate:"required"`
	Username string `json:"username" validate:"required"`
}

const msgStreetNotFound = "Street record not found"

// RegisterRoutes registers all street routes with the chi router
func (h *StreetHandler) RegisterRoutes(router chi.Router) {
	router.Route("/streets", func(r chi.Router) {
		r.Post("/verify", h.Verify)                    // POST /streets/verify
		r.Post("/", h.CreateDestination)               // POST /streets
		r.Get("/", h.ListDestinations)                 // GET /streets
		r.Get("/verifications", h.VerificationHistory) // GET /streets/verifications
		r.Get("/{id}", h.GetDestination)               // GET /streets/{id}
	})
}

// Verify checks a (provaId, location) pair and logs who asked. The attempt is
// recorded in the verification log under verifiedBy.<username>, even when the
// destination is unknown. Usernames may not contain '.' or start with '$'.
//
// @Accept json
// @Success 200 {object} models.VerifyResult
// @Router /streets/verify [post]
func (h *StreetHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req VerifyRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := ValidateRequest(req); err != nil {
		writeServiceError(w, err, msgStreetNotFound)
		return
	}

	result, err := h.service.Verify(r.Context(), req.ProvaID, req.Location, req.Username)
	if err != nil {
		writeServiceError(w, err, msgStreetNotFound)
		return
	}
	pkghttp.WriteOK(w, result)
}

// CreateDestination registers a known destination
//
// @Success 201 {object} models.StreetDestination
// @Router /streets [post]
func (h *StreetHandler) CreateDestination(w http.ResponseWriter, r *http.Request) {
	var in models.StreetInput
	if !decodeBody(w, r, &in) {
		return
	}

	dest, err := h.service.CreateDestination(r.Context(), in)
	if err != nil {
		writeServiceError(w, err, msgStreetNotFound)
		return
	}
	pkghttp.WriteCreated(w, dest)
}

// ListDestinations retrieves a page of destinations
//
// @Router /streets [get]
func (h *StreetHandler) ListDestinations(w http.ResponseWriter, r *http.Request) {
	page, err := h.service.ListDestinations(r.Context(), pageFromQuery(r), sortFromQuery(r, models.StreetSortFields))
	if err != nil {
		writeServiceError(w, err, msgStreetNotFound)
		return
	}
	pkghttp.WritePage(w, page.Items, page.Pagination)
}

// GetDestination retrieves one destination
//
// @Router /streets/{id} [get]
func (h *StreetHandler) GetDestination(w http.ResponseWriter, r *http.Request) {
	dest, err := h.service.GetDestination(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err, msgStreetNotFound)
		return
	}
	pkghttp.WriteOK(w, dest)
}

// VerificationHistory retrieves verification logs, most recent first. Each log
// carries a verifiedBy object mapping username to the last verification time.
//
// @Router /streets/verifications [get]
func (h *StreetHandler) VerificationHistory(w http.ResponseWriter, r *http.Request) {
	page, err := h.service.VerificationHistory(r.Context(), pageFromQuery(r))
	if err != nil {
		writeServiceError(w, err, msgStreetNotFound)
		return
	}
	pkghttp.WritePage(w, page.Items, page.Pagination)
}
