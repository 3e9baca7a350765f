package services

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/BradenHooton/citywalk/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MockUserRepository implements UserRepository, ScoreRepository and
// AuthUserRepository for testing
type MockUserRepository struct {
	GetByIDFunc               func(ctx context.Context, id string) (*models.User, error)
	GetByEmailFunc            func(ctx context.Context, email string) (*models.User, error)
	GetByUsernameFunc         func(ctx context.Context, username string) (*models.User, error)
	ListFunc                  func(ctx context.Context, filter models.UserFilter, page models.PageRequest, sort []models.SortField) ([]*models.User, int64, error)
	SearchFunc                func(ctx context.Context, term string, page models.PageRequest) ([]*models.User, int64, error)
	CreateFunc                func(ctx context.Context, user *models.User) (*models.User, error)
	UpdateByIDFunc            func(ctx context.Context, id string, u models.UserUpdate) (*models.User, error)
	UpdateByUsernameFunc      func(ctx context.Context, username string, u models.UserUpdate) (*models.User, error)
	DeleteFunc                func(ctx context.Context, id string) error
	CountFunc                 func(ctx context.Context, filter models.UserFilter) (int64, error)
	RecentFunc                func(ctx context.Context, n int) ([]*models.User, error)
	RankingFunc               func(ctx context.Context, limit int) ([]*models.RankingEntry, error)
	RecordMajorCheckpointFunc func(ctx context.Context, username string, at time.Time) (*models.User, error)
	RecordMinorCheckpointFunc func(ctx context.Context, username string, at time.Time) (*models.User, error)
	SetLastLoginFunc          func(ctx context.Context, id primitive.ObjectID, at time.Time) error
	SetPasswordFunc           func(ctx context.Context, id string, digest string) error
	CountWithPasswordFunc     func(ctx context.Context) (int64, error)
	RecentLoginsFunc          func(ctx context.Context, n int) ([]*models.RecentLogin, error)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	if m.GetByUsernameFunc != nil {
		return m.GetByUsernameFunc(ctx, username)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserRepository) List(ctx context.Context, filter models.UserFilter, page models.PageRequest, sort []models.SortField) ([]*models.User, int64, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, filter, page, sort)
	}
	return []*models.User{}, 0, nil
}

func (m *MockUserRepository) Search(ctx context.Context, term string, page models.PageRequest) ([]*models.User, int64, error) {
	if m.SearchFunc != nil {
		return m.SearchFunc(ctx, term, page)
	}
	return []*models.User{}, 0, nil
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	return nil, models.ErrInternalServer
}

func (m *MockUserRepository) UpdateByID(ctx context.Context, id string, u models.UserUpdate) (*models.User, error) {
	if m.UpdateByIDFunc != nil {
		return m.UpdateByIDFunc(ctx, id, u)
	}
	return nil, models.ErrInternalServer
}

func (m *MockUserRepository) UpdateByUsername(ctx context.Context, username string, u models.UserUpdate) (*models.User, error) {
	if m.UpdateByUsernameFunc != nil {
		return m.UpdateByUsernameFunc(ctx, username, u)
	}
	return nil, models.ErrInternalServer
}

func (m *MockUserRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

func (m *MockUserRepository) Count(ctx context.Context, filter models.UserFilter) (int64, error) {
	if m.CountFunc != nil {
		return m.CountFunc(ctx, filter)
	}
	return 0, nil
}

func (m *MockUserRepository) Recent(ctx context.Context, n int) ([]*models.User, error) {
	if m.RecentFunc != nil {
		return m.RecentFunc(ctx, n)
	}
	return []*models.User{}, nil
}

func (m *MockUserRepository) Ranking(ctx context.Context, limit int) ([]*models.RankingEntry, error) {
	if m.RankingFunc != nil {
		return m.RankingFunc(ctx, limit)
	}
	return []*models.RankingEntry{}, nil
}

func (m *MockUserRepository) RecordMajorCheckpoint(ctx context.Context, username string, at time.Time) (*models.User, error) {
	if m.RecordMajorCheckpointFunc != nil {
		return m.RecordMajorCheckpointFunc(ctx, username, at)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserRepository) RecordMinorCheckpoint(ctx context.Context, username string, at time.Time) (*models.User, error) {
	if m.RecordMinorCheckpointFunc != nil {
		return m.RecordMinorCheckpointFunc(ctx, username, at)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserRepository) SetLastLogin(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	if m.SetLastLoginFunc != nil {
		return m.SetLastLoginFunc(ctx, id, at)
	}
	return nil
}

func (m *MockUserRepository) SetPassword(ctx context.Context, id string, digest string) error {
	if m.SetPasswordFunc != nil {
		return m.SetPasswordFunc(ctx, id, digest)
	}
	return nil
}

func (m *MockUserRepository) CountWithPassword(ctx context.Context) (int64, error) {
	if m.CountWithPasswordFunc != nil {
		return m.CountWithPasswordFunc(ctx)
	}
	return 0, nil
}

func (m *MockUserRepository) RecentLogins(ctx context.Context, n int) ([]*models.RecentLogin, error) {
	if m.RecentLoginsFunc != nil {
		return m.RecentLoginsFunc(ctx, n)
	}
	return []*models.RecentLogin{}, nil
}

// MockAppointmentRepository implements AppointmentRepository for testing
type MockAppointmentRepository struct {
	ListFunc            func(ctx context.Context, filter models.AppointmentFilter, page models.PageRequest, sort []models.SortField) ([]*models.AppointmentView, int64, error)
	ListByDateRangeFunc func(ctx context.Context, start, end string, page models.PageRequest) ([]*models.AppointmentView, int64, error)
	GetByIDFunc         func(ctx context.Context, id string) (*models.AppointmentView, error)
	GetStoredFunc       func(ctx context.Context, id string) (*models.Appointment, error)
	HasSlotConflictFunc func(ctx context.Context, userID primitive.ObjectID, date, time string, exclude primitive.ObjectID) (bool, error)
	CreateFunc          func(ctx context.Context, a *models.Appointment) (primitive.ObjectID, error)
	UpdateFunc          func(ctx context.Context, id string, u models.AppointmentUpdate) error
	DeleteFunc          func(ctx context.Context, id string) error
	StatsFunc           func(ctx context.Context, today, weekEnd string) (*models.AppointmentStats, error)
}

func (m *MockAppointmentRepository) List(ctx context.Context, filter models.AppointmentFilter, page models.PageRequest, sort []models.SortField) ([]*models.AppointmentView, int64, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, filter, page, sort)
	}
	return []*models.AppointmentView{}, 0, nil
}

func (m *MockAppointmentRepository) ListByDateRange(ctx context.Context, start, end string, page models.PageRequest) ([]*models.AppointmentView, int64, error) {
	if m.ListByDateRangeFunc != nil {
		return m.ListByDateRangeFunc(ctx, start, end, page)
	}
	return []*models.AppointmentView{}, 0, nil
}

func (m *MockAppointmentRepository) GetByID(ctx context.Context, id string) (*models.AppointmentView, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockAppointmentRepository) GetStored(ctx context.Context, id string) (*models.Appointment, error) {
	if m.GetStoredFunc != nil {
		return m.GetStoredFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockAppointmentRepository) HasSlotConflict(ctx context.Context, userID primitive.ObjectID, date, time string, exclude primitive.ObjectID) (bool, error) {
	if m.HasSlotConflictFunc != nil {
		return m.HasSlotConflictFunc(ctx, userID, date, time, exclude)
	}
	return false, nil
}

func (m *MockAppointmentRepository) Create(ctx context.Context, a *models.Appointment) (primitive.ObjectID, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, a)
	}
	return primitive.NilObjectID, models.ErrInternalServer
}

func (m *MockAppointmentRepository) Update(ctx context.Context, id string, u models.AppointmentUpdate) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, u)
	}
	return nil
}

func (m *MockAppointmentRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

func (m *MockAppointmentRepository) Stats(ctx context.Context, today, weekEnd string) (*models.AppointmentStats, error) {
	if m.StatsFunc != nil {
		return m.StatsFunc(ctx, today, weekEnd)
	}
	return &models.AppointmentStats{}, nil
}

// MockCheckpointRepository implements CheckpointRepository for testing
type MockCheckpointRepository struct {
	ListFunc            func(ctx context.Context, filter models.CheckpointFilter, page models.PageRequest, sort []models.SortField) ([]*models.Checkpoint, int64, error)
	GetByIDFunc         func(ctx context.Context, id string) (*models.Checkpoint, error)
	InternalIDTakenFunc func(ctx context.Context, internalID string, exclude primitive.ObjectID) (bool, error)
	CreateFunc          func(ctx context.Context, cp *models.Checkpoint) (*models.Checkpoint, error)
	UpdateFunc          func(ctx context.Context, id string, u models.CheckpointUpdate) (*models.Checkpoint, error)
	SetResultFunc       func(ctx context.Context, id string, result *models.CheckpointResult) (*models.Checkpoint, error)
	DeleteFunc          func(ctx context.Context, id string) error
	StatsFunc           func(ctx context.Context, since time.Time) (*models.CheckpointStats, error)
}

func (m *MockCheckpointRepository) List(ctx context.Context, filter models.CheckpointFilter, page models.PageRequest, sort []models.SortField) ([]*models.Checkpoint, int64, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, filter, page, sort)
	}
	return []*models.Checkpoint{}, 0, nil
}

func (m *MockCheckpointRepository) GetByID(ctx context.Context, id string) (*models.Checkpoint, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockCheckpointRepository) InternalIDTaken(ctx context.Context, internalID string, exclude primitive.ObjectID) (bool, error) {
	if m.InternalIDTakenFunc != nil {
		return m.InternalIDTakenFunc(ctx, internalID, exclude)
	}
	return false, nil
}

func (m *MockCheckpointRepository) Create(ctx context.Context, cp *models.Checkpoint) (*models.Checkpoint, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, cp)
	}
	return nil, models.ErrInternalServer
}

func (m *MockCheckpointRepository) Update(ctx context.Context, id string, u models.CheckpointUpdate) (*models.Checkpoint, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, u)
	}
	return nil, models.ErrInternalServer
}

func (m *MockCheckpointRepository) SetResult(ctx context.Context, id string, result *models.CheckpointResult) (*models.Checkpoint, error) {
	if m.SetResultFunc != nil {
		return m.SetResultFunc(ctx, id, result)
	}
	return nil, models.ErrInternalServer
}

func (m *MockCheckpointRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

func (m *MockCheckpointRepository) Stats(ctx context.Context, since time.Time) (*models.CheckpointStats, error) {
	if m.StatsFunc != nil {
		return m.StatsFunc(ctx, since)
	}
	return &models.CheckpointStats{}, nil
}

// MockStreetRepository implements StreetRepository for testing
type MockStreetRepository struct {
	FindDestinationFunc    func(ctx context.Context, provaID, location string) (*models.StreetDestination, error)
	RecordVerificationFunc func(ctx context.Context, provaID, location, username string, at time.Time) (*models.StreetVerification, error)
	CreateDestinationFunc  func(ctx context.Context, d *models.StreetDestination) (*models.StreetDestination, error)
	ListDestinationsFunc   func(ctx context.Context, page models.PageRequest, sort []models.SortField) ([]*models.StreetDestination, int64, error)
	GetDestinationFunc     func(ctx context.Context, id string) (*models.StreetDestination, error)
	ListVerificationsFunc  func(ctx context.Context, page models.PageRequest) ([]*models.StreetVerification, int64, error)
}

func (m *MockStreetRepository) FindDestination(ctx context.Context, provaID, location string) (*models.StreetDestination, error) {
	if m.FindDestinationFunc != nil {
		return m.FindDestinationFunc(ctx, provaID, location)
	}
	return nil, models.ErrNotFound
}

func (m *MockStreetRepository) RecordVerification(ctx context.Context, provaID, location, username string, at time.Time) (*models.StreetVerification, error) {
	if m.RecordVerificationFunc != nil {
		return m.RecordVerificationFunc(ctx, provaID, location, username, at)
	}
	return &models.StreetVerification{ProvaID: provaID, Location: location}, nil
}

func (m *MockStreetRepository) CreateDestination(ctx context.Context, d *models.StreetDestination) (*models.StreetDestination, error) {
	if m.CreateDestinationFunc != nil {
		return m.CreateDestinationFunc(ctx, d)
	}
	return nil, models.ErrInternalServer
}

func (m *MockStreetRepository) ListDestinations(ctx context.Context, page models.PageRequest, sort []models.SortField) ([]*models.StreetDestination, int64, error) {
	if m.ListDestinationsFunc != nil {
		return m.ListDestinationsFunc(ctx, page, sort)
	}
	return []*models.StreetDestination{}, 0, nil
}

func (m *MockStreetRepository) GetDestination(ctx context.Context, id string) (*models.StreetDestination, error) {
	if m.GetDestinationFunc != nil {
		return m.GetDestinationFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockStreetRepository) ListVerifications(ctx context.Context, page models.PageRequest) ([]*models.StreetVerification, int64, error) {
	if m.ListVerificationsFunc != nil {
		return m.ListVerificationsFunc(ctx, page)
	}
	return []*models.StreetVerification{}, 0, nil
}

// MockPatternRepository implements PatternRepository for testing
type MockPatternRepository struct {
	GetBySequenceFunc func(ctx context.Context, sequence string) (*models.Pattern, error)
}

func (m *MockPatternRepository) GetBySequence(ctx context.Context, sequence string) (*models.Pattern, error) {
	if m.GetBySequenceFunc != nil {
		return m.GetBySequenceFunc(ctx, sequence)
	}
	return nil, models.ErrNotFound
}

// Test data builders

// NewTestLogger returns a logger that discards output.
func NewTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// NewTestUser creates an active user with a fresh ObjectID
func NewTestUser(username, name string) *models.User {
	now := time.Now().UTC()
	return &models.User{
		ID:        primitive.NewObjectID(),
		Name:      name,
		Username:  username,
		Status:    models.UserStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewTestUserWithPassword creates a user with a stored password digest
func NewTestUserWithPassword(username, name, digest string) *models.User {
	user := NewTestUser(username, name)
	user.Password = digest
	return user
}

// NewTestUserWithStatus creates a user with specified status
func NewTestUserWithStatus(username, name, status string) *models.User {
	user := NewTestUser(username, name)
	user.Status = status
	return user
}

// NewTestCheckpoint creates a checkpoint with a fresh ObjectID
func NewTestCheckpoint(internalID string, major bool) *models.Checkpoint {
	now := time.Now().UTC()
	return &models.Checkpoint{
		ID:                primitive.NewObjectID(),
		InternalID:        internalID,
		Location:          "Piazza " + internalID,
		IsMajorCheckpoint: major,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }
func boolPtr(b bool) *bool    { return &b }
