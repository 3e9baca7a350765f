package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/BradenHooton/citywalk/internal/models"
	"github.com/BradenHooton/citywalk/internal/validation"
	pkgauth "github.com/BradenHooton/citywalk/pkg/auth"
	pkglogger "github.com/BradenHooton/citywalk/pkg/logger"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const recentLoginsLimit = 10

// AuthUserRepository defines the user operations needed for authentication
type AuthUserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) (*models.User, error)
	SetLastLogin(ctx context.Context, id primitive.ObjectID, at time.Time) error
	SetPassword(ctx context.Context, id string, digest string) error
	Count(ctx context.Context, filter models.UserFilter) (int64, error)
	CountWithPassword(ctx context.Context) (int64, error)
	RecentLogins(ctx context.Context, n int) ([]*models.RecentLogin, error)
}

// AuthService handles authentication business logic
type AuthService struct {
	repo        AuthUserRepository
	logger      *slog.Logger
	auditLogger *pkglogger.AuditLogger
	now         func() time.Time
}

// NewAuthService creates a new AuthService
func NewAuthService(repo AuthUserRepository, logger *slog.Logger, auditLogger *pkglogger.AuditLogger) *AuthService {
	return &AuthService{
		repo:        repo,
		logger:      logger,
		auditLogger: auditLogger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Login checks a username and password digest. Every credential failure
// returns ErrUnauthorized so callers cannot tell which part was wrong.
func (s *AuthService) Login(ctx context.Context, username, password, ipAddress string) (*models.LoginResult, error) {
	if err := validation.Login(username, password).Err(); err != nil {
		return nil, err
	}
	username = normalizeUsername(username)

	fail := func(userID, reason string) {
		s.auditLogger.LogAuthAttempt(ctx, pkglogger.AuditEvent{
			EventType:     "login_failed",
			UserID:        userID,
			Username:      username,
			IPAddress:     ipAddress,
			FailureReason: reason,
		})
	}

	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if isNotFound(err) {
			s.logger.Info("login failed: invalid credentials")
			fail("", "invalid_credentials")
			return nil, models.ErrUnauthorized
		}
		return nil, storeError(ctx, s.logger, "failed to get user by username", err)
	}

	userID := user.ID.Hex()
	if !user.HasPassword() {
		s.logger.Info("login blocked: no password configured", slog.String("user_id", userID))
		fail(userID, "no_password")
		return nil, fmt.Errorf("%w: %w", models.ErrUnauthorized, models.ErrNoPassword)
	}

	if err := pkgauth.ComparePassword(user.Password, password); err != nil {
		s.logger.Info("login failed: invalid credentials")
		fail(userID, "invalid_credentials")
		return nil, models.ErrUnauthorized
	}

	// Accounts without a status predate the status field and may log in.
	if user.Status != "" && user.Status != models.UserStatusActive {
		s.logger.Info("login blocked due to account state",
			slog.String("user_id", userID),
			slog.String("status", user.Status))
		fail(userID, "account_inactive")
		return nil, fmt.Errorf("%w: %w", models.ErrUnauthorized, models.ErrAccountInactive)
	}

	loginTime := s.now()
	if err := s.repo.SetLastLogin(ctx, user.ID, loginTime); err != nil {
		return nil, storeError(ctx, s.logger, "failed to record login", err, slog.String("user_id", userID))
	}
	user.LastLogin = &loginTime

	s.logger.Info("user logged in", slog.String("user_id", userID))
	s.auditLogger.LogAuthAttempt(ctx, pkglogger.AuditEvent{
		EventType: "login_success",
		UserID:    userID,
		Username:  username,
		IPAddress: ipAddress,
		Success:   true,
	})

	return &models.LoginResult{User: user, LoginTime: loginTime}, nil
}

// Register creates an active user with a password digest.
func (s *AuthService) Register(ctx context.Context, in models.RegisterInput, ipAddress string) (*models.User, error) {
	username := normalizeUsername(in.Username)

	var problems []string
	problems = append(problems, validation.User(models.UserInput{Name: in.Name, Email: in.Email}).Errors...)
	if username == "" {
		problems = append(problems, validation.MsgUsernameRequired)
	}
	problems = append(problems, validation.PasswordDigest(in.Password).Errors...)
	if len(problems) > 0 {
		return nil, models.NewValidationError(problems...)
	}

	email := ""
	if in.Email != nil {
		email = strings.TrimSpace(*in.Email)
	}

	if _, err := s.repo.GetByUsername(ctx, username); err == nil {
		return nil, models.NewConflictError(msgUsernameTaken)
	} else if !isNotFound(err) {
		return nil, storeError(ctx, s.logger, "failed to check username", err)
	}
	if email != "" {
		if _, err := s.repo.GetByEmail(ctx, email); err == nil {
			return nil, models.NewConflictError(msgEmailTaken)
		} else if !isNotFound(err) {
			return nil, storeError(ctx, s.logger, "failed to check email", err)
		}
	}

	user := &models.User{
		Name:     strings.TrimSpace(in.Name),
		Username: username,
		Password: pkgauth.NormalizeDigest(in.Password),
		Status:   models.UserStatusActive,
		Colour:   strings.TrimSpace(in.Colour),
	}
	if email != "" {
		user.Email = &email
	}

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		if isConflict(err) {
			return nil, models.NewConflictError("User with this email or username already exists")
		}
		return nil, storeError(ctx, s.logger, "failed to register user", err)
	}

	s.logger.Info("user registered", slog.String("user_id", created.ID.Hex()))
	s.auditLogger.LogAuthAttempt(ctx, pkglogger.AuditEvent{
		EventType: "register",
		UserID:    created.ID.Hex(),
		Username:  username,
		IPAddress: ipAddress,
		Success:   true,
	})
	return created, nil
}

// ChangePassword replaces the stored digest after checking the current one.
func (s *AuthService) ChangePassword(ctx context.Context, id, current, next string) error {
	if err := validation.PasswordChange(current, next).Err(); err != nil {
		return err
	}

	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return storeError(ctx, s.logger, "failed to get user", err, slog.String("user_id", id))
	}

	if err := pkgauth.ComparePassword(user.Password, current); err != nil {
		s.logger.Info("password change rejected", slog.String("user_id", id))
		s.auditLogger.LogPasswordChange(ctx, "password_change", id, false)
		return models.ErrUnauthorized
	}

	if err := s.repo.SetPassword(ctx, id, pkgauth.NormalizeDigest(next)); err != nil {
		return storeError(ctx, s.logger, "failed to change password", err, slog.String("user_id", id))
	}

	s.auditLogger.LogPasswordChange(ctx, "password_change", id, true)
	return nil
}

// ResetPassword sets a new digest without checking the old one.
func (s *AuthService) ResetPassword(ctx context.Context, id, next string) error {
	if err := validation.PasswordDigest(next).Err(); err != nil {
		return err
	}

	if err := s.repo.SetPassword(ctx, id, pkgauth.NormalizeDigest(next)); err != nil {
		return storeError(ctx, s.logger, "failed to reset password", err, slog.String("user_id", id))
	}

	s.auditLogger.LogPasswordChange(ctx, "password_reset", id, true)
	return nil
}

// GetLoginStats summarises password coverage and recent logins.
func (s *AuthService) GetLoginStats(ctx context.Context) (*models.LoginStats, error) {
	total, err := s.repo.Count(ctx, models.UserFilter{})
	if err != nil {
		return nil, storeError(ctx, s.logger, "failed to count users", err)
	}
	active, err := s.repo.Count(ctx, models.UserFilter{Status: models.UserStatusActive})
	if err != nil {
		return nil, storeError(ctx, s.logger, "failed to count active users", err)
	}
	withPassword, err := s.repo.CountWithPassword(ctx)
	if err != nil {
		return nil, storeError(ctx, s.logger, "failed to count users with password", err)
	}
	recent, err := s.repo.RecentLogins(ctx, recentLoginsLimit)
	if err != nil {
		return nil, storeError(ctx, s.logger, "failed to load recent logins", err)
	}

	return &models.LoginStats{
		TotalUsers:        total,
		ActiveUsers:       active,
		UsersWithPassword: withPassword,
		RecentLogins:      recent,
	}, nil
}

// EnsureAdmin creates the bootstrap operator account when it is missing.
// An existing account is left untouched.
func (s *AuthService) EnsureAdmin(ctx context.Context, username, plainPassword string) error {
	username = normalizeUsername(username)
	if username == "" || plainPassword == "" {
		return nil
	}

	_, err := s.repo.GetByUsername(ctx, username)
	switch {
	case err == nil:
		s.logger.Debug("admin user already present", slog.String("username", username))
		return nil
	case !isNotFound(err):
		return fmt.Errorf("lookup admin user: %w", err)
	}

	admin, err := s.repo.Create(ctx, &models.User{
		Name:           "Administrator",
		Username:       username,
		Password:       pkgauth.HashPassword(plainPassword),
		Status:         models.UserStatusActive,
		IsAdminUseOnly: true,
	})
	if err != nil {
		return fmt.Errorf("create admin user: %w", err)
	}

	s.logger.Info("admin user created", slog.String("user_id", admin.ID.Hex()))
	return nil
}
