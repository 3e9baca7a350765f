package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/BradenHooton/citywalk/internal/models"
	pkgauth "github.com/BradenHooton/citywalk/pkg/auth"
	pkglogger "github.com/BradenHooton/citywalk/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newTestAuthService(repo AuthUserRepository) *AuthService {
	logger := NewTestLogger()
	return NewAuthService(repo, logger, pkglogger.NewAuditLogger(logger))
}

// ============================================================================
// Login Tests
// ============================================================================

func TestAuthService_Login_Success(t *testing.T) {
	digest := pkgauth.HashPassword("secret")
	user := NewTestUserWithPassword("mario", "Mario", digest)
	var stampedID primitive.ObjectID

	mockUserRepo := &MockUserRepository{
		GetByUsernameFunc: func(ctx context.Context, username string) (*models.User, error) {
			assert.Equal(t, "mario", username)
			return user, nil
		},
		SetLastLoginFunc: func(ctx context.Context, id primitive.ObjectID, at time.Time) error {
			stampedID = id
			return nil
		},
	}
	svc := newTestAuthService(mockUserRepo)

	result, err := svc.Login(context.Background(), "Mario", strings.ToUpper(digest), "203.0.113.7")

	require.NoError(t, err)
	assert.Equal(t, user.ID, stampedID)
	require.NotNil(t, result.User.LastLogin)
	assert.Equal(t, result.LoginTime, *result.User.LastLogin)
}

func TestAuthService_Login_InvalidPayload(t *testing.T) {
	svc := newTestAuthService(&MockUserRepository{})

	_, err := svc.Login(context.Background(), "", "plaintext", "")

	var ve *models.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Len(t, ve.Errors, 2)
}

func TestAuthService_Login_UnknownUser(t *testing.T) {
	svc := newTestAuthService(&MockUserRepository{})

	_, err := svc.Login(context.Background(), "ghost", pkgauth.HashPassword("x"), "")

	assert.Equal(t, models.ErrUnauthorized, err)
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	mockUserRepo := &MockUserRepository{
		GetByUsernameFunc: func(ctx context.Context, username string) (*models.User, error) {
			return NewTestUserWithPassword("mario", "Mario", pkgauth.HashPassword("secret")), nil
		},
		SetLastLoginFunc: func(ctx context.Context, id primitive.ObjectID, at time.Time) error {
			t.Fatal("lastLogin must not change on failure")
			return nil
		},
	}
	svc := newTestAuthService(mockUserRepo)

	_, err := svc.Login(context.Background(), "mario", pkgauth.HashPassword("guess"), "")

	assert.Equal(t, models.ErrUnauthorized, err)
}

func TestAuthService_Login_NoPasswordConfigured(t *testing.T) {
	mockUserRepo := &MockUserRepository{
		GetByUsernameFunc: func(ctx context.Context, username string) (*models.User, error) {
			return NewTestUser("mario", "Mario"), nil
		},
	}
	svc := newTestAuthService(mockUserRepo)

	_, err := svc.Login(context.Background(), "mario", pkgauth.HashPassword(""), "")

	assert.ErrorIs(t, err, models.ErrUnauthorized)
	assert.ErrorIs(t, err, models.ErrNoPassword)
}

func TestAuthService_Login_InactiveAccount(t *testing.T) {
	digest := pkgauth.HashPassword("secret")
	mockUserRepo := &MockUserRepository{
		GetByUsernameFunc: func(ctx context.Context, username string) (*models.User, error) {
			user := NewTestUserWithStatus("mario", "Mario", models.UserStatusInactive)
			user.Password = digest
			return user, nil
		},
	}
	svc := newTestAuthService(mockUserRepo)

	_, err := svc.Login(context.Background(), "mario", digest, "")

	assert.ErrorIs(t, err, models.ErrUnauthorized)
	assert.ErrorIs(t, err, models.ErrAccountInactive)
}

func TestAuthService_Login_EmptyStatusAllowed(t *testing.T) {
	digest := pkgauth.HashPassword("secret")
	mockUserRepo := &MockUserRepository{
		GetByUsernameFunc: func(ctx context.Context, username string) (*models.User, error) {
			user := NewTestUserWithStatus("mario", "Mario", "")
			user.Password = digest
			return user, nil
		},
		SetLastLoginFunc: func(ctx context.Context, id primitive.ObjectID, at time.Time) error { return nil },
	}
	svc := newTestAuthService(mockUserRepo)

	result, err := svc.Login(context.Background(), "mario", digest, "")

	require.NoError(t, err)
	assert.Equal(t, "mario", result.User.Username)
}

// ============================================================================
// Register Tests
// ============================================================================

func TestAuthService_Register_Success(t *testing.T) {
	digest := strings.ToUpper(pkgauth.HashPassword("secret"))
	var stored *models.User
	mockUserRepo := &MockUserRepository{
		CreateFunc: func(ctx context.Context, user *models.User) (*models.User, error) {
			stored = user
			user.ID = primitive.NewObjectID()
			return user, nil
		},
	}
	svc := newTestAuthService(mockUserRepo)

	created, err := svc.Register(context.Background(), models.RegisterInput{
		Name: "Mario Rossi", Username: "Mario", Password: digest,
	}, "")

	require.NoError(t, err)
	assert.False(t, created.ID.IsZero())
	assert.Equal(t, "mario", stored.Username)
	assert.Equal(t, strings.ToLower(digest), stored.Password)
	assert.Equal(t, models.UserStatusActive, stored.Status)
	assert.Nil(t, stored.Email)
	assert.Nil(t, stored.LastLogin)
}

func TestAuthService_Register_CollectsAllErrors(t *testing.T) {
	svc := newTestAuthService(&MockUserRepository{})

	_, err := svc.Register(context.Background(), models.RegisterInput{Name: "M", Email: strPtr("bad")}, "")

	var ve *models.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Len(t, ve.Errors, 4)
}

func TestAuthService_Register_DuplicateUsername(t *testing.T) {
	mockUserRepo := &MockUserRepository{
		GetByUsernameFunc: func(ctx context.Context, username string) (*models.User, error) {
			return NewTestUser(username, "Existing"), nil
		},
	}
	svc := newTestAuthService(mockUserRepo)

	_, err := svc.Register(context.Background(), models.RegisterInput{
		Name: "Mario", Username: "mario", Password: pkgauth.HashPassword("x"),
	}, "")

	assert.ErrorIs(t, err, models.ErrConflict)
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	mockUserRepo := &MockUserRepository{
		GetByEmailFunc: func(ctx context.Context, email string) (*models.User, error) {
			return NewTestUser("other", "Other"), nil
		},
	}
	svc := newTestAuthService(mockUserRepo)

	_, err := svc.Register(context.Background(), models.RegisterInput{
		Name: "Mario", Username: "mario", Email: strPtr("m@example.com"), Password: pkgauth.HashPassword("x"),
	}, "")

	assert.ErrorIs(t, err, models.ErrConflict)
	assert.EqualError(t, err, msgEmailTaken)
}

// ============================================================================
// Password Tests
// ============================================================================

func TestAuthService_ChangePassword(t *testing.T) {
	current := pkgauth.HashPassword("old")
	next := pkgauth.HashPassword("new")
	user := NewTestUserWithPassword("mario", "Mario", current)

	t.Run("success", func(t *testing.T) {
		var saved string
		mockUserRepo := &MockUserRepository{
			GetByIDFunc: func(ctx context.Context, id string) (*models.User, error) { return user, nil },
			SetPasswordFunc: func(ctx context.Context, id string, digest string) error {
				saved = digest
				return nil
			},
		}
		svc := newTestAuthService(mockUserRepo)

		require.NoError(t, svc.ChangePassword(context.Background(), user.ID.Hex(), current, next))
		assert.Equal(t, next, saved)
	})

	t.Run("wrong current password", func(t *testing.T) {
		mockUserRepo := &MockUserRepository{
			GetByIDFunc: func(ctx context.Context, id string) (*models.User, error) { return user, nil },
			SetPasswordFunc: func(ctx context.Context, id string, digest string) error {
				t.Fatal("password must not change")
				return nil
			},
		}
		svc := newTestAuthService(mockUserRepo)

		err := svc.ChangePassword(context.Background(), user.ID.Hex(), pkgauth.HashPassword("nope"), next)
		assert.Equal(t, models.ErrUnauthorized, err)
	})

	t.Run("new password not a digest", func(t *testing.T) {
		svc := newTestAuthService(&MockUserRepository{})
		err := svc.ChangePassword(context.Background(), user.ID.Hex(), current, "new")
		assert.ErrorIs(t, err, models.ErrBadRequest)
	})

	t.Run("current password not a digest", func(t *testing.T) {
		mockUserRepo := &MockUserRepository{
			GetByIDFunc: func(ctx context.Context, id string) (*models.User, error) {
				t.Fatal("store must not be read for an invalid payload")
				return nil, nil
			},
		}
		svc := newTestAuthService(mockUserRepo)

		err := svc.ChangePassword(context.Background(), user.ID.Hex(), "old", next)

		assert.ErrorIs(t, err, models.ErrBadRequest)
		var ve *models.ValidationError
		require.True(t, errors.As(err, &ve))
		assert.Len(t, ve.Errors, 1)
	})
}

func TestAuthService_ResetPassword(t *testing.T) {
	t.Run("not found", func(t *testing.T) {
		mockUserRepo := &MockUserRepository{
			SetPasswordFunc: func(ctx context.Context, id string, digest string) error { return models.ErrNotFound },
		}
		svc := newTestAuthService(mockUserRepo)

		err := svc.ResetPassword(context.Background(), primitive.NewObjectID().Hex(), pkgauth.HashPassword("x"))
		assert.Equal(t, models.ErrNotFound, err)
	})

	t.Run("rejects plaintext", func(t *testing.T) {
		svc := newTestAuthService(&MockUserRepository{})
		err := svc.ResetPassword(context.Background(), primitive.NewObjectID().Hex(), "plaintext")
		assert.ErrorIs(t, err, models.ErrBadRequest)
	})
}

func TestAuthService_GetLoginStats(t *testing.T) {
	mockUserRepo := &MockUserRepository{
		CountFunc: func(ctx context.Context, filter models.UserFilter) (int64, error) {
			if filter.Status == models.UserStatusActive {
				return 3, nil
			}
			return 5, nil
		},
		CountWithPasswordFunc: func(ctx context.Context) (int64, error) { return 2, nil },
		RecentLoginsFunc: func(ctx context.Context, n int) ([]*models.RecentLogin, error) {
			assert.Equal(t, 10, n)
			return []*models.RecentLogin{{Name: "Mario"}}, nil
		},
	}
	svc := newTestAuthService(mockUserRepo)

	stats, err := svc.GetLoginStats(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(5), stats.TotalUsers)
	assert.Equal(t, int64(3), stats.ActiveUsers)
	assert.Equal(t, int64(2), stats.UsersWithPassword)
	assert.Len(t, stats.RecentLogins, 1)
}

func TestAuthService_EnsureAdmin(t *testing.T) {
	t.Run("creates missing admin", func(t *testing.T) {
		var stored *models.User
		mockUserRepo := &MockUserRepository{
			CreateFunc: func(ctx context.Context, user *models.User) (*models.User, error) {
				stored = user
				user.ID = primitive.NewObjectID()
				return user, nil
			},
		}
		svc := newTestAuthService(mockUserRepo)

		require.NoError(t, svc.EnsureAdmin(context.Background(), "Admin", "changeme"))
		assert.Equal(t, "admin", stored.Username)
		assert.Equal(t, pkgauth.HashPassword("changeme"), stored.Password)
		assert.True(t, stored.IsAdminUseOnly)
	})

	t.Run("keeps existing admin", func(t *testing.T) {
		mockUserRepo := &MockUserRepository{
			GetByUsernameFunc: func(ctx context.Context, username string) (*models.User, error) {
				return NewTestUser(username, "Administrator"), nil
			},
			CreateFunc: func(ctx context.Context, user *models.User) (*models.User, error) {
				t.Fatal("create must not be called")
				return nil, nil
			},
		}
		svc := newTestAuthService(mockUserRepo)

		assert.NoError(t, svc.EnsureAdmin(context.Background(), "admin", "changeme"))
	})

	t.Run("disabled without credentials", func(t *testing.T) {
		svc := newTestAuthService(&MockUserRepository{})
		assert.NoError(t, svc.EnsureAdmin(context.Background(), "", ""))
	})
}
