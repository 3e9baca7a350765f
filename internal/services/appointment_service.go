package services

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/BradenHooton/citywalk/internal/models"
	"github.com/BradenHooton/citywalk/internal/validation"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	dateLayout       = "2006-01-02"
	upcomingWindow   = 7 * 24 * time.Hour
	msgSlotTaken     = "User already has an appointment at this date and time"
	msgDateRangeForm = "Invalid date format. Use YYYY-MM-DD"
)

// AppointmentRepository defines the interface for appointment data access
type AppointmentRepository interface {
	List(ctx context.Context, filter models.AppointmentFilter, page models.PageRequest, sort []models.SortField) ([]*models.AppointmentView, int64, error)
	ListByDateRange(ctx context.Context, start, end string, page models.PageRequest) ([]*models.AppointmentView, int64, error)
	GetByID(ctx context.Context, id string) (*models.AppointmentView, error)
	GetStored(ctx context.Context, id string) (*models.Appointment, error)
	HasSlotConflict(ctx context.Context, userID primitive.ObjectID, date, time string, exclude primitive.ObjectID) (bool, error)
	Create(ctx context.Context, a *models.Appointment) (primitive.ObjectID, error)
	Update(ctx context.Context, id string, u models.AppointmentUpdate) error
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context, today, weekEnd string) (*models.AppointmentStats, error)
}

// UserReader looks up a single user.
type UserReader interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
}

// AppointmentService handles appointment business logic
type AppointmentService struct {
	repo   AppointmentRepository
	users  UserReader
	logger *slog.Logger
	now    func() time.Time
}

// NewAppointmentService creates a new AppointmentService
func NewAppointmentService(repo AppointmentRepository, users UserReader, logger *slog.Logger) *AppointmentService {
	return &AppointmentService{
		repo:   repo,
		users:  users,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// CreateAppointment books a slot for an existing user and returns the
// joined view of the stored appointment.
func (s *AppointmentService) CreateAppointment(ctx context.Context, in models.AppointmentInput) (*models.AppointmentView, error) {
	if err := validation.Appointment(in).Err(); err != nil {
		return nil, err
	}

	userID, err := primitive.ObjectIDFromHex(in.UserID)
	if err != nil {
		return nil, models.ErrInvalidID
	}
	if _, err := s.users.GetByID(ctx, in.UserID); err != nil {
		if isNotFound(err) {
			s.logger.Info("appointment for unknown user", slog.String("user_id", in.UserID))
		}
		return nil, storeError(ctx, s.logger, "failed to get user", err, slog.String("user_id", in.UserID))
	}

	if err := s.ensureSlotFree(ctx, userID, in.Date, in.Time, primitive.NilObjectID); err != nil {
		return nil, err
	}

	appt := &models.Appointment{
		UserID:      userID,
		Title:       strings.TrimSpace(in.Title),
		Description: trimmedPtr(in.Description),
		Date:        in.Date,
		Time:        in.Time,
		Duration:    models.DefaultAppointmentDuration,
		Status:      in.Status,
		Notes:       trimmedPtr(in.Notes),
	}
	if in.Duration != nil {
		appt.Duration = *in.Duration
	}
	if appt.Status == "" {
		appt.Status = models.AppointmentScheduled
	}

	id, err := s.repo.Create(ctx, appt)
	if err != nil {
		return nil, storeError(ctx, s.logger, "failed to create appointment", err)
	}

	s.logger.Info("appointment created",
		slog.String("appointment_id", id.Hex()),
		slog.String("user_id", in.UserID),
		slog.String("date", appt.Date),
		slog.String("time", appt.Time))

	return s.GetAppointment(ctx, id.Hex())
}

// GetAppointment returns the joined view of one appointment.
func (s *AppointmentService) GetAppointment(ctx context.Context, id string) (*models.AppointmentView, error) {
	view, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(ctx, s.logger, "failed to get appointment", err, slog.String("appointment_id", id))
	}
	return view, nil
}

// ListAppointments returns one page of joined appointments.
func (s *AppointmentService) ListAppointments(ctx context.Context, filter models.AppointmentFilter, page models.PageRequest, sort []models.SortField) (*models.Page[*models.AppointmentView], error) {
	if filter.Status != "" && !validation.IsAppointmentStatus(filter.Status) {
		return nil, models.NewValidationError("Status must be one of: " + strings.Join(models.AppointmentStatuses, ", "))
	}
	if filter.UserID != "" && !primitive.IsValidObjectID(filter.UserID) {
		return nil, models.ErrInvalidID
	}

	views, total, err := s.repo.List(ctx, filter, page, sort)
	if err != nil {
		return nil, storeError(ctx, s.logger, "failed to list appointments", err)
	}
	return &models.Page[*models.AppointmentView]{Items: views, Pagination: models.NewPagination(page, total)}, nil
}

// ListByUser returns one page of a user's appointments.
func (s *AppointmentService) ListByUser(ctx context.Context, userID string, page models.PageRequest) (*models.Page[*models.AppointmentView], error) {
	if !primitive.IsValidObjectID(userID) {
		return nil, models.ErrInvalidID
	}
	return s.ListAppointments(ctx, models.AppointmentFilter{UserID: userID}, page, nil)
}

// ListByDateRange returns appointments whose date lies in [start, end].
func (s *AppointmentService) ListByDateRange(ctx context.Context, start, end string, page models.PageRequest) (*models.Page[*models.AppointmentView], error) {
	if start == "" || end == "" {
		return nil, models.NewValidationError("Start date and end date are required")
	}
	if !validation.IsValidDate(start) || !validation.IsValidDate(end) {
		return nil, models.NewValidationError(msgDateRangeForm)
	}

	views, total, err := s.repo.ListByDateRange(ctx, start, end, page)
	if err != nil {
		return nil, storeError(ctx, s.logger, "failed to list appointments by date range", err,
			slog.String("start", start), slog.String("end", end))
	}
	return &models.Page[*models.AppointmentView]{Items: views, Pagination: models.NewPagination(page, total)}, nil
}

// UpdateAppointment applies the supplied fields. Moving the appointment to
// a new date or time re-checks the user's slot, ignoring this appointment.
func (s *AppointmentService) UpdateAppointment(ctx context.Context, id string, u models.AppointmentUpdate) (*models.AppointmentView, error) {
	if !primitive.IsValidObjectID(id) {
		return nil, models.ErrInvalidID
	}
	if u.IsEmpty() {
		return nil, models.NewValidationError("No update data provided")
	}
	if err := validation.AppointmentUpdate(u).Err(); err != nil {
		return nil, err
	}

	if u.Date != nil || u.Time != nil {
		current, err := s.repo.GetStored(ctx, id)
		if err != nil {
			return nil, storeError(ctx, s.logger, "failed to get appointment", err, slog.String("appointment_id", id))
		}
		date, tm := current.Date, current.Time
		if u.Date != nil {
			date = *u.Date
		}
		if u.Time != nil {
			tm = *u.Time
		}
		if err := s.ensureSlotFree(ctx, current.UserID, date, tm, current.ID); err != nil {
			return nil, err
		}
	}

	u.Title = trimmedPtr(u.Title)
	u.Description = trimmedPtr(u.Description)
	u.Notes = trimmedPtr(u.Notes)

	if err := s.repo.Update(ctx, id, u); err != nil {
		return nil, storeError(ctx, s.logger, "failed to update appointment", err, slog.String("appointment_id", id))
	}

	s.logger.Info("appointment updated", slog.String("appointment_id", id))
	return s.GetAppointment(ctx, id)
}

// DeleteAppointment removes an appointment.
func (s *AppointmentService) DeleteAppointment(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return storeError(ctx, s.logger, "failed to delete appointment", err, slog.String("appointment_id", id))
	}
	s.logger.Info("appointment deleted", slog.String("appointment_id", id))
	return nil
}

// GetStats counts appointments by status plus today's and the coming
// week's active bookings. Dates are UTC calendar dates.
func (s *AppointmentService) GetStats(ctx context.Context) (*models.AppointmentStats, error) {
	now := s.now()
	today := now.Format(dateLayout)
	weekEnd := now.Add(upcomingWindow).Format(dateLayout)

	stats, err := s.repo.Stats(ctx, today, weekEnd)
	if err != nil {
		return nil, storeError(ctx, s.logger, "failed to compute appointment stats", err)
	}
	return stats, nil
}

func (s *AppointmentService) ensureSlotFree(ctx context.Context, userID primitive.ObjectID, date, tm string, exclude primitive.ObjectID) error {
	taken, err := s.repo.HasSlotConflict(ctx, userID, date, tm, exclude)
	if err != nil {
		return storeError(ctx, s.logger, "failed to check appointment slot", err)
	}
	if taken {
		s.logger.Info("appointment slot taken",
			slog.String("user_id", userID.Hex()), slog.String("date", date), slog.String("time", tm))
		return models.NewConflictError(msgSlotTaken)
	}
	return nil
}
