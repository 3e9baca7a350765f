package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/BradenHooton/citywalk/internal/models"
	pkghttp "github.com/BradenHooton/citywalk/pkg/http"
	"github.com/stretchr/testify/assert"
)

// NewTestRequest creates an HTTP request with JSON body for testing
func NewTestRequest(t *testing.T, method, url string, body interface{}) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// SuccessBody is the decoded success envelope with data left raw
type SuccessBody struct {
	Success    bool               `json:"success"`
	Data       json.RawMessage    `json:"data"`
	Message    string             `json:"message"`
	Pagination *models.Pagination `json:"pagination"`
}

// AssertJSONResponse checks that response has correct status and decodes the
// envelope's data into target
func AssertJSONResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, target interface{}) SuccessBody {
	assert.Equal(t, expectedStatus, w.Code, "Response status mismatch")
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"), "Content-Type should be application/json")

	var body SuccessBody
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), "Failed to decode response JSON")
	assert.True(t, body.Success, "success should be true")

	if target != nil {
		assert.NoError(t, json.Unmarshal(body.Data, target), "Failed to decode response data")
	}
	return body
}

// AssertErrorResponse checks that response is a valid error response
func AssertErrorResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, expectedError string) pkghttp.ErrorResponse {
	assert.Equal(t, expectedStatus, w.Code, "Response status mismatch")

	var resp pkghttp.ErrorResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), "Failed to decode error response")
	assert.Equal(t, expectedError, resp.Error, "Error code mismatch")
	assert.NotEmpty(t, resp.Message, "Error message should not be empty")
	return resp
}

func emptyPage[T any](page models.PageRequest) *models.Page[T] {
	return &models.Page[T]{Items: []T{}, Pagination: models.NewPagination(page, 0)}
}

// MockUserService implements UserService for testing
type MockUserService struct {
	GetUserByIDFunc          func(ctx context.Context, id string) (*models.User, error)
	ListUsersFunc            func(ctx context.Context, filter models.UserFilter, page models.PageRequest, sort []models.SortField) (*models.Page[*models.User], error)
	SearchUsersFunc          func(ctx context.Context, term string, page models.PageRequest) (*models.Page[*models.User], error)
	CreateUserFunc           func(ctx context.Context, in models.UserInput) (*models.User, error)
	UpdateUserFunc           func(ctx context.Context, id string, u models.UserUpdate) (*models.User, error)
	UpdateUserByUsernameFunc func(ctx context.Context, username string, u models.UserUpdate) (*models.User, error)
	DeleteUserFunc           func(ctx context.Context, id string) error
	GetStatsFunc             func(ctx context.Context) (*models.UserStats, error)
	GetRankingFunc           func(ctx context.Context, limit int) (*models.Ranking, error)
}

func (m *MockUserService) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	if m.GetUserByIDFunc != nil {
		return m.GetUserByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserService) ListUsers(ctx context.Context, filter models.UserFilter, page models.PageRequest, sort []models.SortField) (*models.Page[*models.User], error) {
	if m.ListUsersFunc != nil {
		return m.ListUsersFunc(ctx, filter, page, sort)
	}
	return emptyPage[*models.User](page), nil
}

func (m *MockUserService) SearchUsers(ctx context.Context, term string, page models.PageRequest) (*models.Page[*models.User], error) {
	if m.SearchUsersFunc != nil {
		return m.SearchUsersFunc(ctx, term, page)
	}
	return emptyPage[*models.User](page), nil
}

func (m *MockUserService) CreateUser(ctx context.Context, in models.UserInput) (*models.User, error) {
	if m.CreateUserFunc != nil {
		return m.CreateUserFunc(ctx, in)
	}
	return nil, models.ErrInternalServer
}

func (m *MockUserService) UpdateUser(ctx context.Context, id string, u models.UserUpdate) (*models.User, error) {
	if m.UpdateUserFunc != nil {
		return m.UpdateUserFunc(ctx, id, u)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserService) UpdateUserByUsername(ctx context.Context, username string, u models.UserUpdate) (*models.User, error) {
	if m.UpdateUserByUsernameFunc != nil {
		return m.UpdateUserByUsernameFunc(ctx, username, u)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserService) DeleteUser(ctx context.Context, id string) error {
	if m.DeleteUserFunc != nil {
		return m.DeleteUserFunc(ctx, id)
	}
	return nil
}

func (m *MockUserService) GetStats(ctx context.Context) (*models.UserStats, error) {
	if m.GetStatsFunc != nil {
		return m.GetStatsFunc(ctx)
	}
	return &models.UserStats{RecentUsers: []*models.User{}}, nil
}

func (m *MockUserService) GetRanking(ctx context.Context, limit int) (*models.Ranking, error) {
	if m.GetRankingFunc != nil {
		return m.GetRankingFunc(ctx, limit)
	}
	return &models.Ranking{Ranking: []*models.RankingEntry{}}, nil
}

// MockScoringService implements ScoringService for testing
type MockScoringService struct {
	RecordCheckpointFunc   func(ctx context.Context, username string, isMajor bool) (*models.User, error)
	CompleteCheckpointFunc func(ctx context.Context, checkpointID, username string) (*models.User, error)
}

func (m *MockScoringService) RecordCheckpoint(ctx context.Context, username string, isMajor bool) (*models.User, error) {
	if m.RecordCheckpointFunc != nil {
		return m.RecordCheckpointFunc(ctx, username, isMajor)
	}
	return nil, models.ErrNotFound
}

func (m *MockScoringService) CompleteCheckpoint(ctx context.Context, checkpointID, username string) (*models.User, error) {
	if m.CompleteCheckpointFunc != nil {
		return m.CompleteCheckpointFunc(ctx, checkpointID, username)
	}
	return nil, models.ErrNotFound
}

// MockAuthService implements AuthService for testing
type MockAuthService struct {
	LoginFunc          func(ctx context.Context, username, password, ipAddress string) (*models.LoginResult, error)
	RegisterFunc       func(ctx context.Context, in models.RegisterInput, ipAddress string) (*models.User, error)
	ChangePasswordFunc func(ctx context.Context, id, current, next string) error
	ResetPasswordFunc  func(ctx context.Context, id, next string) error
	GetLoginStatsFunc  func(ctx context.Context) (*models.LoginStats, error)
}

func (m *MockAuthService) Login(ctx context.Context, username, password, ipAddress string) (*models.LoginResult, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, username, password, ipAddress)
	}
	return nil, models.ErrUnauthorized
}

func (m *MockAuthService) Register(ctx context.Context, in models.RegisterInput, ipAddress string) (*models.User, error) {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, in, ipAddress)
	}
	return nil, models.ErrInternalServer
}

func (m *MockAuthService) ChangePassword(ctx context.Context, id, current, next string) error {
	if m.ChangePasswordFunc != nil {
		return m.ChangePasswordFunc(ctx, id, current, next)
	}
	return nil
}

func (m *MockAuthService) ResetPassword(ctx context.Context, id, next string) error {
	if m.ResetPasswordFunc != nil {
		return m.ResetPasswordFunc(ctx, id, next)
	}
	return nil
}

func (m *MockAuthService) GetLoginStats(ctx context.Context) (*models.LoginStats, error) {
	if m.GetLoginStatsFunc != nil {
		return m.GetLoginStatsFunc(ctx)
	}
	return &models.LoginStats{RecentLogins: []*models.RecentLogin{}}, nil
}

// MockAppointmentService implements AppointmentService for testing
type MockAppointmentService struct {
	CreateAppointmentFunc func(ctx context.Context, in models.AppointmentInput) (*models.AppointmentView, error)
	GetAppointmentFunc    func(ctx context.Context, id string) (*models.AppointmentView, error)
	ListAppointmentsFunc  func(ctx context.Context, filter models.AppointmentFilter, page models.PageRequest, sort []models.SortField) (*models.Page[*models.AppointmentView], error)
	ListByUserFunc        func(ctx context.Context, userID string, page models.PageRequest) (*models.Page[*models.AppointmentView], error)
	ListByDateRangeFunc   func(ctx context.Context, start, end string, page models.PageRequest) (*models.Page[*models.AppointmentView], error)
	UpdateAppointmentFunc func(ctx context.Context, id string, u models.AppointmentUpdate) (*models.AppointmentView, error)
	DeleteAppointmentFunc func(ctx context.Context, id string) error
	GetStatsFunc          func(ctx context.Context) (*models.AppointmentStats, error)
}

func (m *MockAppointmentService) CreateAppointment(ctx context.Context, in models.AppointmentInput) (*models.AppointmentView, error) {
	if m.CreateAppointmentFunc != nil {
		return m.CreateAppointmentFunc(ctx, in)
	}
	return nil, models.ErrInternalServer
}

func (m *MockAppointmentService) GetAppointment(ctx context.Context, id string) (*models.AppointmentView, error) {
	if m.GetAppointmentFunc != nil {
		return m.GetAppointmentFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockAppointmentService) ListAppointments(ctx context.Context, filter models.AppointmentFilter, page models.PageRequest, sort []models.SortField) (*models.Page[*models.AppointmentView], error) {
	if m.ListAppointmentsFunc != nil {
		return m.ListAppointmentsFunc(ctx, filter, page, sort)
	}
	return emptyPage[*models.AppointmentView](page), nil
}

func (m *MockAppointmentService) ListByUser(ctx context.Context, userID string, page models.PageRequest) (*models.Page[*models.AppointmentView], error) {
	if m.ListByUserFunc != nil {
		return m.ListByUserFunc(ctx, userID, page)
	}
	return emptyPage[*models.AppointmentView](page), nil
}

func (m *MockAppointmentService) ListByDateRange(ctx context.Context, start, end string, page models.PageRequest) (*models.Page[*models.AppointmentView], error) {
	if m.ListByDateRangeFunc != nil {
		return m.ListByDateRangeFunc(ctx, start, end, page)
	}
	return emptyPage[*models.AppointmentView](page), nil
}

func (m *MockAppointmentService) UpdateAppointment(ctx context.Context, id string, u models.AppointmentUpdate) (*models.AppointmentView, error) {
	if m.UpdateAppointmentFunc != nil {
		return m.UpdateAppointmentFunc(ctx, id, u)
	}
	return nil, models.ErrNotFound
}

func (m *MockAppointmentService) DeleteAppointment(ctx context.Context, id string) error {
	if m.DeleteAppointmentFunc != nil {
		return m.DeleteAppointmentFunc(ctx, id)
	}
	return nil
}

func (m *MockAppointmentService) GetStats(ctx context.Context) (*models.AppointmentStats, error) {
	if m.GetStatsFunc != nil {
		return m.GetStatsFunc(ctx)
	}
	return &models.AppointmentStats{}, nil
}

// MockCheckpointService implements CheckpointService for testing
type MockCheckpointService struct {
	CreateCheckpointFunc  func(ctx context.Context, in models.CheckpointInput) (*models.Checkpoint, error)
	GetCheckpointFunc     func(ctx context.Context, id string) (*models.Checkpoint, error)
	ListCheckpointsFunc   func(ctx context.Context, filter models.CheckpointFilter, page models.PageRequest, sort []models.SortField) (*models.Page[*models.Checkpoint], error)
	ListMajorFunc         func(ctx context.Context, page models.PageRequest) (*models.Page[*models.Checkpoint], error)
	SearchCheckpointsFunc func(ctx context.Context, internalID, location string, page models.PageRequest) (*models.Page[*models.Checkpoint], error)
	UpdateCheckpointFunc  func(ctx context.Context, id string, u models.CheckpointUpdate) (*models.Checkpoint, error)
	UpdateResultFunc      func(ctx context.Context, id string, in *models.CheckpointResultInput) (*models.Checkpoint, error)
	DeleteCheckpointFunc  func(ctx context.Context, id string) error
	GetStatsFunc          func(ctx context.Context) (*models.CheckpointStats, error)
	GetDashboardFunc      func(ctx context.Context) (*models.CheckpointDashboard, error)
}

func (m *MockCheckpointService) CreateCheckpoint(ctx context.Context, in models.CheckpointInput) (*models.Checkpoint, error) {
	if m.CreateCheckpointFunc != nil {
		return m.CreateCheckpointFunc(ctx, in)
	}
	return nil, models.ErrInternalServer
}

func (m *MockCheckpointService) GetCheckpoint(ctx context.Context, id string) (*models.Checkpoint, error) {
	if m.GetCheckpointFunc != nil {
		return m.GetCheckpointFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockCheckpointService) ListCheckpoints(ctx context.Context, filter models.CheckpointFilter, page models.PageRequest, sort []models.SortField) (*models.Page[*models.Checkpoint], error) {
	if m.ListCheckpointsFunc != nil {
		return m.ListCheckpointsFunc(ctx, filter, page, sort)
	}
	return emptyPage[*models.Checkpoint](page), nil
}

func (m *MockCheckpointService) ListMajor(ctx context.Context, page models.PageRequest) (*models.Page[*models.Checkpoint], error) {
	if m.ListMajorFunc != nil {
		return m.ListMajorFunc(ctx, page)
	}
	return emptyPage[*models.Checkpoint](page), nil
}

func (m *MockCheckpointService) SearchCheckpoints(ctx context.Context, internalID, location string, page models.PageRequest) (*models.Page[*models.Checkpoint], error) {
	if m.SearchCheckpointsFunc != nil {
		return m.SearchCheckpointsFunc(ctx, internalID, location, page)
	}
	return emptyPage[*models.Checkpoint](page), nil
}

func (m *MockCheckpointService) UpdateCheckpoint(ctx context.Context, id string, u models.CheckpointUpdate) (*models.Checkpoint, error) {
	if m.UpdateCheckpointFunc != nil {
		return m.UpdateCheckpointFunc(ctx, id, u)
	}
	return nil, models.ErrNotFound
}

func (m *MockCheckpointService) UpdateResult(ctx context.Context, id string, in *models.CheckpointResultInput) (*models.Checkpoint, error) {
	if m.UpdateResultFunc != nil {
		return m.UpdateResultFunc(ctx, id, in)
	}
	return nil, models.ErrNotFound
}

func (m *MockCheckpointService) DeleteCheckpoint(ctx context.Context, id string) error {
	if m.DeleteCheckpointFunc != nil {
		return m.DeleteCheckpointFunc(ctx, id)
	}
	return nil
}

func (m *MockCheckpointService) GetStats(ctx context.Context) (*models.CheckpointStats, error) {
	if m.GetStatsFunc != nil {
		return m.GetStatsFunc(ctx)
	}
	return &models.CheckpointStats{}, nil
}

func (m *MockCheckpointService) GetDashboard(ctx context.Context) (*models.CheckpointDashboard, error) {
	if m.GetDashboardFunc != nil {
		return m.GetDashboardFunc(ctx)
	}
	return &models.CheckpointDashboard{Stats: &models.CheckpointStats{}}, nil
}

// MockStreetService implements StreetService for testing
type MockStreetService struct {
	VerifyFunc              func(ctx context.Context, provaID, location, username string) (*models.VerifyResult, error)
	CreateDestinationFunc   func(ctx context.Context, in models.StreetInput) (*models.StreetDestination, error)
	ListDestinationsFunc    func(ctx context.Context, page models.PageRequest, sort []models.SortField) (*models.Page[*models.StreetDestination], error)
	GetDestinationFunc      func(ctx context.Context, id string) (*models.StreetDestination, error)
	VerificationHistoryFunc func(ctx context.Context, page models.PageRequest) (*models.Page[*models.StreetVerification], error)
}

func (m *MockStreetService) Verify(ctx context.Context, provaID, location, username string) (*models.VerifyResult, error) {
	if m.VerifyFunc != nil {
		return m.VerifyFunc(ctx, provaID, location, username)
	}
	return nil, models.ErrInternalServer
}

func (m *MockStreetService) CreateDestination(ctx context.Context, in models.StreetInput) (*models.StreetDestination, error) {
	if m.CreateDestinationFunc != nil {
		return m.CreateDestinationFunc(ctx, in)
	}
	return nil, models.ErrInternalServer
}

func (m *MockStreetService) ListDestinations(ctx context.Context, page models.PageRequest, sort []models.SortField) (*models.Page[*models.StreetDestination], error) {
	if m.ListDestinationsFunc != nil {
		return m.ListDestinationsFunc(ctx, page, sort)
	}
	return emptyPage[*models.StreetDestination](page), nil
}

func (m *MockStreetService) GetDestination(ctx context.Context, id string) (*models.StreetDestination, error) {
	if m.GetDestinationFunc != nil {
		return m.GetDestinationFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockStreetService) VerificationHistory(ctx context.Context, page models.PageRequest) (*models.Page[*models.StreetVerification], error) {
	if m.VerificationHistoryFunc != nil {
		return m.VerificationHistoryFunc(ctx, page)
	}
	return emptyPage[*models.StreetVerification](page), nil
}

// MockPatternService implements PatternService for testing
type MockPatternService struct {
	ValidatePatternFunc func(ctx context.Context, sequence string) (*models.PatternMatch, error)
}

func (m *MockPatternService) ValidatePattern(ctx context.Context, sequence string) (*models.PatternMatch, error) {
	if m.ValidatePatternFunc != nil {
		return m.ValidatePatternFunc(ctx, sequence)
	}
	return &models.PatternMatch{Success: true, Message: []string{}}, nil
}

// MockHealthChecker implements HealthChecker for testing
type MockHealthChecker struct {
	Err error
}

func (m *MockHealthChecker) HealthCheck(ctx context.Context) error {
	return m.Err
}
