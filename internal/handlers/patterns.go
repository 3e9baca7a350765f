package handlers

import (
	"context"
	"net/http"

	"github.com/BradenHooton/citywalk/internal/models"
	pkghttp "github.com/BradenHooton/citywalk/pkg/http"
	"github.com/go-chi/chi/v5"
)

// PatternService looks up canned messages for binary sequences
type PatternService interface {
	ValidatePattern(ctx context.Context, sequence string) (*models.PatternMatch, error)
}

// PatternHandler handles pattern HTTP requests
type PatternHandler struct {
	service PatternService
}

// NewPatternHandler creates a new PatternHandler
func NewPatternHandler(service PatternService) *PatternHandler {
	return &PatternHandler{service: service}
}

// PatternRequest is the body of POST /patterns/validate
type PatternRequest struct {
	Sequence string `json:"sequence"`
}

// RegisterRoutes registers all pattern routes with the chi router
func (h *PatternHandler) RegisterRoutes(router chi.Router) {
	router.Route("/patterns", func(r chi.Router) {
		r.Post("/validate", h.ValidateBody) // POST /patterns/validate
		r.Get("/validate", h.ValidateQuery) // GET /patterns/validate?sequence=
	})
}

// ValidateBody matches the sequence in the request body
//
// @Success 200 {object} models.PatternMatch
// @Router /patterns/validate [post]
func (h *PatternHandler) ValidateBody(w http.ResponseWriter, r *http.Request) {
	var req PatternRequest
	if !decodeBody(w, r, &req) {
		return
	}
	h.validate(w, r, req.Sequence)
}

// ValidateQuery matches the sequence query parameter
//
// @Router /patterns/validate [get]
func (h *PatternHandler) ValidateQuery(w http.ResponseWriter, r *http.Request) {
	h.validate(w, r, r.URL.Query().Get("sequence"))
}

func (h *PatternHandler) validate(w http.ResponseWriter, r *http.Request, sequence string) {
	match, err := h.service.ValidatePattern(r.Context(), sequence)
	if err != nil {
		writeServiceError(w, err, "Pattern not found")
		return
	}
	pkghttp.WriteOK(w, match)
}
