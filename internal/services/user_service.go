package services

import (
	"context"
	"log/slog"
	"strings"

	"github.com/BradenHooton/citywalk/internal/models"
	"github.com/BradenHooton/citywalk/internal/validation"
	pkglogger "github.com/BradenHooton/citywalk/pkg/logger"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	DefaultRankingLimit = 20
	recentUsersLimit    = 5

	msgEmailTaken    = "User with this email already exists"
	msgUsernameTaken = "User with this username already exists"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	List(ctx context.Context, filter models.UserFilter, page models.PageRequest, sort []models.SortField) ([]*models.User, int64, error)
	Search(ctx context.Context, term string, page models.PageRequest) ([]*models.User, int64, error)
	Create(ctx context.Context, user *models.User) (*models.User, error)
	UpdateByID(ctx context.Context, id string, u models.UserUpdate) (*models.User, error)
	UpdateByUsername(ctx context.Context, username string, u models.UserUpdate) (*models.User, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context, filter models.UserFilter) (int64, error)
	Recent(ctx context.Context, n int) ([]*models.User, error)
	Ranking(ctx context.Context, limit int) ([]*models.RankingEntry, error)
}

// UserService handles user business logic
type UserService struct {
	repo   UserRepository
	logger *slog.Logger
}

// NewUserService creates a new UserService
func NewUserService(repo UserRepository, logger *slog.Logger) *UserService {
	return &UserService{
		repo:   repo,
		logger: logger,
	}
}

// GetUserByID retrieves a user by ID
func (s *UserService) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			s.logger.Info("user not found", slog.String("user_id", id))
		}
		return nil, storeError(ctx, s.logger, "failed to get user", err, slog.String("user_id", id))
	}
	return user, nil
}

// ListUsers returns one page of users, newest first unless sort says otherwise.
func (s *UserService) ListUsers(ctx context.Context, filter models.UserFilter, page models.PageRequest, sort []models.SortField) (*models.Page[*models.User], error) {
	users, total, err := s.repo.List(ctx, filter, page, sort)
	if err != nil {
		return nil, storeError(ctx, s.logger, "failed to list users", err,
			slog.Int("page", page.Page), slog.Int("limit", page.Limit))
	}
	return &models.Page[*models.User]{Items: users, Pagination: models.NewPagination(page, total)}, nil
}

// SearchUsers matches term as a literal, case-insensitive substring of
// name, email or username.
func (s *UserService) SearchUsers(ctx context.Context, term string, page models.PageRequest) (*models.Page[*models.User], error) {
	if term = strings.TrimSpace(term); term == "" {
		return nil, models.NewValidationError("Search term is required")
	}

	users, total, err := s.repo.Search(ctx, term, page)
	if err != nil {
		return nil, storeError(ctx, s.logger, "failed to search users", err)
	}
	return &models.Page[*models.User]{Items: users, Pagination: models.NewPagination(page, total)}, nil
}

// CreateUser validates and stores a new user.
func (s *UserService) CreateUser(ctx context.Context, in models.UserInput) (*models.User, error) {
	if err := validation.User(in).Err(); err != nil {
		return nil, err
	}

	email := ""
	if in.Email != nil {
		email = strings.TrimSpace(*in.Email)
	}
	username := normalizeUsername(in.Username)

	if email != "" {
		if err := s.ensureEmailFree(ctx, email); err != nil {
			return nil, err
		}
	}
	if username != "" {
		if err := s.ensureUsernameFree(ctx, username); err != nil {
			return nil, err
		}
	}

	user := &models.User{
		Name:           strings.TrimSpace(in.Name),
		Username:       username,
		Status:         in.Status,
		Colour:         in.Colour,
		IsAdminUseOnly: in.IsAdminUseOnly,
	}
	if email != "" {
		user.Email = &email
	}
	if user.Status == "" {
		user.Status = models.UserStatusActive
	}

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		if isConflict(err) {
			return nil, models.NewConflictError("User with this email or username already exists")
		}
		return nil, storeError(ctx, s.logger, "failed to create user", err)
	}

	attrs := []any{slog.String("user_id", created.ID.Hex())}
	if email != "" {
		attrs = append(attrs, slog.String("email", pkglogger.SanitizedEmail(email)))
	}
	s.logger.Info("user created", attrs...)
	return created, nil
}

// UpdateUser applies the supplied fields to the user with the given id.
func (s *UserService) UpdateUser(ctx context.Context, id string, u models.UserUpdate) (*models.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, models.ErrInvalidID
	}

	u, err = s.prepareUpdate(ctx, u, oid, "")
	if err != nil {
		return nil, err
	}

	user, err := s.repo.UpdateByID(ctx, id, u)
	if err != nil {
		return nil, s.updateError(ctx, err, slog.String("user_id", id))
	}

	s.logger.Info("user updated", slog.String("user_id", id))
	return user, nil
}

// UpdateUserByUsername applies the supplied fields to the user with the
// given username. Checkpoint and help timestamps are accepted here.
func (s *UserService) UpdateUserByUsername(ctx context.Context, username string, u models.UserUpdate) (*models.User, error) {
	username = normalizeUsername(username)
	if username == "" {
		return nil, models.NewValidationError(validation.MsgUsernameRequired)
	}

	u, err := s.prepareUpdate(ctx, u, primitive.NilObjectID, username)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.UpdateByUsername(ctx, username, u)
	if err != nil {
		return nil, s.updateError(ctx, err, slog.String("username", username))
	}

	s.logger.Info("user updated", slog.String("user_id", user.ID.Hex()))
	return user, nil
}

// DeleteUser removes a user.
func (s *UserService) DeleteUser(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if isNotFound(err) {
			s.logger.Info("user not found for deletion", slog.String("user_id", id))
		}
		return storeError(ctx, s.logger, "failed to delete user", err, slog.String("user_id", id))
	}

	s.logger.Info("user deleted", slog.String("user_id", id))
	return nil
}

// GetStats counts users by status and lists the newest ones. Any status
// other than active counts as inactive.
func (s *UserService) GetStats(ctx context.Context) (*models.UserStats, error) {
	total, err := s.repo.Count(ctx, models.UserFilter{})
	if err != nil {
		return nil, storeError(ctx, s.logger, "failed to count users", err)
	}
	active, err := s.repo.Count(ctx, models.UserFilter{Status: models.UserStatusActive})
	if err != nil {
		return nil, storeError(ctx, s.logger, "failed to count active users", err)
	}
	recent, err := s.repo.Recent(ctx, recentUsersLimit)
	if err != nil {
		return nil, storeError(ctx, s.logger, "failed to load recent users", err)
	}

	return &models.UserStats{
		TotalUsers:    total,
		ActiveUsers:   active,
		InactiveUsers: total - active,
		RecentUsers:   recent,
	}, nil
}

// GetRanking returns the leaderboard. A non-positive limit means the default.
func (s *UserService) GetRanking(ctx context.Context, limit int) (*models.Ranking, error) {
	if limit <= 0 {
		limit = DefaultRankingLimit
	}
	if limit > models.MaxLimit {
		limit = models.MaxLimit
	}

	entries, err := s.repo.Ranking(ctx, limit)
	if err != nil {
		return nil, storeError(ctx, s.logger, "failed to load ranking", err, slog.Int("limit", limit))
	}
	if entries == nil {
		entries = []*models.RankingEntry{}
	}
	return &models.Ranking{Ranking: entries, TotalUsers: len(entries)}, nil
}

// prepareUpdate validates the present fields, trims strings and makes sure
// a new email does not belong to another user. Exactly one of selfID and
// selfUsername identifies the user being updated.
func (s *UserService) prepareUpdate(ctx context.Context, u models.UserUpdate, selfID primitive.ObjectID, selfUsername string) (models.UserUpdate, error) {
	if u.IsEmpty() {
		return u, models.NewValidationError("No update data provided")
	}
	if err := validation.UserUpdate(u).Err(); err != nil {
		return u, err
	}

	u.Name = trimmedPtr(u.Name)
	u.Email = trimmedPtr(u.Email)
	u.Colour = trimmedPtr(u.Colour)

	if u.Email == nil || *u.Email == "" {
		return u, nil
	}

	owner, err := s.repo.GetByEmail(ctx, *u.Email)
	switch {
	case isNotFound(err):
		return u, nil
	case err != nil:
		return u, storeError(ctx, s.logger, "failed to check email", err)
	}
	if (selfUsername != "" && owner.Username == selfUsername) || (!selfID.IsZero() && owner.ID == selfID) {
		return u, nil
	}
	return u, models.NewConflictError(msgEmailTaken)
}

func (s *UserService) updateError(ctx context.Context, err error, attr slog.Attr) error {
	if isConflict(err) {
		return models.NewConflictError(msgEmailTaken)
	}
	if isNotFound(err) {
		s.logger.Info("user not found for update", attr)
	}
	return storeError(ctx, s.logger, "failed to update user", err, attr)
}

func (s *UserService) ensureEmailFree(ctx context.Context, email string) error {
	_, err := s.repo.GetByEmail(ctx, email)
	switch {
	case isNotFound(err):
		return nil
	case err != nil:
		return storeError(ctx, s.logger, "failed to check email", err)
	}
	s.logger.Info("user already exists", slog.String("email", pkglogger.SanitizedEmail(email)))
	return models.NewConflictError(msgEmailTaken)
}

func (s *UserService) ensureUsernameFree(ctx context.Context, username string) error {
	_, err := s.repo.GetByUsername(ctx, username)
	switch {
	case isNotFound(err):
		return nil
	case err != nil:
		return storeError(ctx, s.logger, "failed to check username", err)
	}
	s.logger.Info("username already taken", slog.String("username", username))
	return models.NewConflictError(msgUsernameTaken)
}

func normalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}
