package handlers

import (
	"context"
	"net/http"

	"github.com/BradenHooton/citywalk/internal/models"
	pkghttp "github.com/BradenHooton/citywalk/pkg/http"
	"github.com/go-chi/chi/v5"
)

// AppointmentService defines the interface for appointment business logic
type AppointmentService interface {
	CreateAppointment(ctx context.Context, in models.AppointmentInput) (*models.AppointmentView, error)
	GetAppointment(ctx context.Context, id string) (*models.AppointmentView, error)
	ListAppointments(ctx context.Context, filter models.AppointmentFilter, page models.PageRequest, sort []models.SortField) (*models.Page[*models.AppointmentView], error)
	ListByUser(ctx context.Context, userID string, page models.PageRequest) (*models.Page[*models.AppointmentView], error)
	ListByDateRange(ctx context.Context, start, end string, page models.PageRequest) (*models.Page[*models.AppointmentView], error)
	UpdateAppointment(ctx context.Context, id string, u models.AppointmentUpdate) (*models.AppointmentView, error)
	DeleteAppointment(ctx context.Context, id string) error
	GetStats(ctx context.Context) (*models.AppointmentStats, error)
}

// AppointmentHandler handles appointment HTTP requests
type AppointmentHandler struct {
	service AppointmentService
}

// NewAppointmentHandler creates a new AppointmentHandler
func NewAppointmentHandler(service AppointmentService) *AppointmentHandler {
	return &AppointmentHandler{service: service}
}

const msgAppointmentNotFound = "Appointment not found"

// RegisterRoutes registers all appointment routes with the chi router
func (h *AppointmentHandler) RegisterRoutes(router chi.Router) {
	router.Route("/appointments", func(r chi.Router) {
		r.Get("/", h.ListAppointments)         // GET /appointments
		r.Post("/", h.CreateAppointment)       // POST /appointments
		r.Get("/stats", h.GetStats)            // GET /appointments/stats
		r.Get("/range", h.ListByDateRange)     // GET /appointments/range?startDate=&endDate=
		r.Get("/user/{userId}", h.ListByUser)  // GET /appointments/user/{userId}
		r.Get("/{id}", h.GetAppointment)       // GET /appointments/{id}
		r.Put("/{id}", h.UpdateAppointment)    // PUT /appointments/{id}
		r.Delete("/{id}", h.DeleteAppointment) // DELETE /appointments/{id}
	})
}

// ListAppointments retrieves a page of appointments joined with their users
//
// @Param status query string false "scheduled, confirmed, completed or cancelled"
// @Param date query string false "YYYY-MM-DD"
// @Param userId query string false "User ID"
// @Router /appointments [get]
func (h *AppointmentHandler) ListAppointments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := models.AppointmentFilter{
		Status: q.Get("status"),
		Date:   q.Get("date"),
		UserID: q.Get("userId"),
	}

	page, err := h.service.ListAppointments(r.Context(), filter, pageFromQuery(r), sortFromQuery(r, models.AppointmentSortFields))
	if err != nil {
		writeServiceError(w, err, msgAppointmentNotFound)
		return
	}
	pkghttp.WritePage(w, page.Items, page.Pagination)
}

// CreateAppointment books a slot for a user
//
// @Accept json
// @Success 201 {object} models.AppointmentView
// @Failure 400 {object} pkghttp.ErrorResponse
// @Failure 404 {object} pkghttp.ErrorResponse
// @Router /appointments [post]
func (h *AppointmentHandler) CreateAppointment(w http.ResponseWriter, r *http.Request) {
	var in models.AppointmentInput
	if !decodeBody(w, r, &in) {
		return
	}

	appt, err := h.service.CreateAppointment(r.Context(), in)
	if err != nil {
		writeServiceError(w, err, msgUserNotFound)
		return
	}
	pkghttp.WriteCreated(w, appt)
}

// GetAppointment retrieves one appointment
//
// @Router /appointments/{id} [get]
func (h *AppointmentHandler) GetAppointment(w http.ResponseWriter, r *http.Request) {
	appt, err := h.service.GetAppointment(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err, msgAppointmentNotFound)
		return
	}
	pkghttp.WriteOK(w, appt)
}

// ListByUser retrieves a user's appointments
//
// @Router /appointments/user/{userId} [get]
func (h *AppointmentHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	page, err := h.service.ListByUser(r.Context(), chi.URLParam(r, "userId"), pageFromQuery(r))
	if err != nil {
		writeServiceError(w, err, msgAppointmentNotFound)
		return
	}
	pkghttp.WritePage(w, page.Items, page.Pagination)
}

// ListByDateRange retrieves appointments between two dates inclusive
//
// @Param startDate query string true "YYYY-MM-DD"
// @Param endDate query string true "YYYY-MM-DD"
// @Router /appointments/range [get]
func (h *AppointmentHandler) ListByDateRange(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := h.service.ListByDateRange(r.Context(), q.Get("startDate"), q.Get("endDate"), pageFromQuery(r))
	if err != nil {
		writeServiceError(w, err, msgAppointmentNotFound)
		return
	}
	pkghttp.WritePage(w, page.Items, page.Pagination)
}

// UpdateAppointment applies a partial update
//
// @Router /appointments/{id} [put]
func (h *AppointmentHandler) UpdateAppointment(w http.ResponseWriter, r *http.Request) {
	var u models.AppointmentUpdate
	if !decodeBody(w, r, &u) {
		return
	}

	appt, err := h.service.UpdateAppointment(r.Context(), chi.URLParam(r, "id"), u)
	if err != nil {
		writeServiceError(w, err, msgAppointmentNotFound)
		return
	}
	pkghttp.WriteOK(w, appt)
}

// DeleteAppointment deletes one appointment
//
// @Router /appointments/{id} [delete]
func (h *AppointmentHandler) DeleteAppointment(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteAppointment(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err, msgAppointmentNotFound)
		return
	}
	pkghttp.WriteMessage(w, "Appointment deleted successfully")
}

// GetStats returns per-status, today and upcoming counts
//
// @Router /appointments/stats [get]
func (h *AppointmentHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.GetStats(r.Context())
	if err != nil {
		writeServiceError(w, err, msgAppointmentNotFound)
		return
	}
	pkghttp.WriteOK(w, stats)
}
