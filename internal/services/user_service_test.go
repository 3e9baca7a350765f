package services

import (
	"context"
	"errors"
	"testing"

	"github.com/BradenHooton/citywalk/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestUserService_GetUserByID_Success(t *testing.T) {
	user := NewTestUser("mario", "Mario Rossi")

	mockUserRepo := &MockUserRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*models.User, error) {
			return user, nil
		},
	}

	svc := NewUserService(mockUserRepo, NewTestLogger())

	result, err := svc.GetUserByID(context.Background(), user.ID.Hex())

	assert.NoError(t, err)
	assert.Equal(t, user, result)
}

func TestUserService_GetUserByID_NotFound(t *testing.T) {
	svc := NewUserService(&MockUserRepository{}, NewTestLogger())

	result, err := svc.GetUserByID(context.Background(), primitive.NewObjectID().Hex())

	assert.Nil(t, result)
	assert.Equal(t, models.ErrNotFound, err)
}

func TestUserService_GetUserByID_InvalidID(t *testing.T) {
	mockUserRepo := &MockUserRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*models.User, error) {
			return nil, errors.Join(errors.New("users: find by id"), models.ErrInvalidID)
		},
	}
	svc := NewUserService(mockUserRepo, NewTestLogger())

	_, err := svc.GetUserByID(context.Background(), "not-an-id")

	assert.Equal(t, models.ErrInvalidID, err)
}

func TestUserService_GetUserByID_DatabaseError(t *testing.T) {
	mockUserRepo := &MockUserRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*models.User, error) {
			return nil, errors.New("connection reset")
		},
	}
	svc := NewUserService(mockUserRepo, NewTestLogger())

	result, err := svc.GetUserByID(context.Background(), primitive.NewObjectID().Hex())

	assert.Nil(t, result)
	assert.Equal(t, models.ErrInternalServer, err)
}

func TestUserService_ListUsers_Pagination(t *testing.T) {
	users := []*models.User{NewTestUser("a", "User A"), NewTestUser("b", "User B")}

	mockUserRepo := &MockUserRepository{
		ListFunc: func(ctx context.Context, filter models.UserFilter, page models.PageRequest, sort []models.SortField) ([]*models.User, int64, error) {
			assert.Equal(t, "active", filter.Status)
			assert.Equal(t, 2, page.Page)
			return users, 12, nil
		},
	}
	svc := NewUserService(mockUserRepo, NewTestLogger())

	result, err := svc.ListUsers(context.Background(), models.UserFilter{Status: "active"}, models.NewPageRequest(2, 5), nil)

	require.NoError(t, err)
	assert.Len(t, result.Items, 2)
	assert.Equal(t, models.Pagination{CurrentPage: 2, TotalPages: 3, TotalItems: 12, HasNextPage: true, HasPrevPage: true}, result.Pagination)
}

func TestUserService_SearchUsers_RequiresTerm(t *testing.T) {
	called := false
	mockUserRepo := &MockUserRepository{
		SearchFunc: func(ctx context.Context, term string, page models.PageRequest) ([]*models.User, int64, error) {
			called = true
			return nil, 0, nil
		},
	}
	svc := NewUserService(mockUserRepo, NewTestLogger())

	_, err := svc.SearchUsers(context.Background(), "   ", models.NewPageRequest(1, 10))

	assert.ErrorIs(t, err, models.ErrBadRequest)
	assert.False(t, called)
}

func TestUserService_CreateUser_Success(t *testing.T) {
	var stored *models.User
	mockUserRepo := &MockUserRepository{
		CreateFunc: func(ctx context.Context, user *models.User) (*models.User, error) {
			stored = user
			user.ID = primitive.NewObjectID()
			return user, nil
		},
	}
	svc := NewUserService(mockUserRepo, NewTestLogger())

	created, err := svc.CreateUser(context.Background(), models.UserInput{
		Name:     "  Giulia Bianchi ",
		Email:    strPtr(" giulia@example.com "),
		Username: " Giulia ",
	})

	require.NoError(t, err)
	assert.False(t, created.ID.IsZero())
	assert.Equal(t, "Giulia Bianchi", stored.Name)
	assert.Equal(t, "giulia", stored.Username)
	assert.Equal(t, "giulia@example.com", *stored.Email)
	assert.Equal(t, models.UserStatusActive, stored.Status)
}

func TestUserService_CreateUser_ValidationErrors(t *testing.T) {
	svc := NewUserService(&MockUserRepository{}, NewTestLogger())

	_, err := svc.CreateUser(context.Background(), models.UserInput{Name: "G", Email: strPtr("nope")})

	var ve *models.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Len(t, ve.Errors, 2)
}

func TestUserService_CreateUser_DuplicateEmail(t *testing.T) {
	mockUserRepo := &MockUserRepository{
		GetByEmailFunc: func(ctx context.Context, email string) (*models.User, error) {
			return NewTestUser("other", "Other"), nil
		},
		CreateFunc: func(ctx context.Context, user *models.User) (*models.User, error) {
			t.Fatal("create must not be called")
			return nil, nil
		},
	}
	svc := NewUserService(mockUserRepo, NewTestLogger())

	_, err := svc.CreateUser(context.Background(), models.UserInput{Name: "Giulia", Email: strPtr("g@example.com")})

	assert.ErrorIs(t, err, models.ErrConflict)
	assert.EqualError(t, err, msgEmailTaken)
}

func TestUserService_CreateUser_DuplicateUsername(t *testing.T) {
	mockUserRepo := &MockUserRepository{
		GetByUsernameFunc: func(ctx context.Context, username string) (*models.User, error) {
			assert.Equal(t, "giulia", username)
			return NewTestUser("giulia", "Giulia"), nil
		},
	}
	svc := NewUserService(mockUserRepo, NewTestLogger())

	_, err := svc.CreateUser(context.Background(), models.UserInput{Name: "Giulia", Username: "GIULIA"})

	assert.ErrorIs(t, err, models.ErrConflict)
	assert.EqualError(t, err, msgUsernameTaken)
}

func TestUserService_CreateUser_IndexConflict(t *testing.T) {
	mockUserRepo := &MockUserRepository{
		CreateFunc: func(ctx context.Context, user *models.User) (*models.User, error) {
			return nil, errors.Join(errors.New("users: insert"), models.ErrConflict)
		},
	}
	svc := NewUserService(mockUserRepo, NewTestLogger())

	_, err := svc.CreateUser(context.Background(), models.UserInput{Name: "Giulia", Username: "giulia"})

	assert.ErrorIs(t, err, models.ErrConflict)
}

func TestUserService_UpdateUser_EmptyPayload(t *testing.T) {
	svc := NewUserService(&MockUserRepository{}, NewTestLogger())

	_, err := svc.UpdateUser(context.Background(), primitive.NewObjectID().Hex(), models.UserUpdate{})

	assert.ErrorIs(t, err, models.ErrBadRequest)
}

func TestUserService_UpdateUser_InvalidID(t *testing.T) {
	svc := NewUserService(&MockUserRepository{}, NewTestLogger())

	_, err := svc.UpdateUser(context.Background(), "123", models.UserUpdate{Name: strPtr("Name")})

	assert.Equal(t, models.ErrInvalidID, err)
}

func TestUserService_UpdateUser_OnlyPresentFieldsValidated(t *testing.T) {
	id := primitive.NewObjectID()
	mockUserRepo := &MockUserRepository{
		UpdateByIDFunc: func(ctx context.Context, gotID string, u models.UserUpdate) (*models.User, error) {
			assert.Nil(t, u.Name)
			assert.Equal(t, "blue", *u.Colour)
			user := NewTestUser("mario", "Mario")
			user.ID = id
			user.Colour = *u.Colour
			return user, nil
		},
	}
	svc := NewUserService(mockUserRepo, NewTestLogger())

	user, err := svc.UpdateUser(context.Background(), id.Hex(), models.UserUpdate{Colour: strPtr(" blue ")})

	require.NoError(t, err)
	assert.Equal(t, "blue", user.Colour)
}

func TestUserService_UpdateUser_EmailOwnedByOther(t *testing.T) {
	mockUserRepo := &MockUserRepository{
		GetByEmailFunc: func(ctx context.Context, email string) (*models.User, error) {
			return NewTestUser("other", "Other"), nil
		},
	}
	svc := NewUserService(mockUserRepo, NewTestLogger())

	_, err := svc.UpdateUser(context.Background(), primitive.NewObjectID().Hex(), models.UserUpdate{Email: strPtr("taken@example.com")})

	assert.ErrorIs(t, err, models.ErrConflict)
}

func TestUserService_UpdateUser_EmailOwnedBySelf(t *testing.T) {
	self := NewTestUser("mario", "Mario")
	mockUserRepo := &MockUserRepository{
		GetByEmailFunc: func(ctx context.Context, email string) (*models.User, error) {
			return self, nil
		},
		UpdateByIDFunc: func(ctx context.Context, id string, u models.UserUpdate) (*models.User, error) {
			return self, nil
		},
	}
	svc := NewUserService(mockUserRepo, NewTestLogger())

	_, err := svc.UpdateUser(context.Background(), self.ID.Hex(), models.UserUpdate{Email: strPtr("mario@example.com")})

	assert.NoError(t, err)
}

func TestUserService_UpdateUser_ClearEmailSkipsOwnerCheck(t *testing.T) {
	mockUserRepo := &MockUserRepository{
		GetByEmailFunc: func(ctx context.Context, email string) (*models.User, error) {
			t.Fatal("owner lookup must be skipped for an empty email")
			return nil, nil
		},
		UpdateByIDFunc: func(ctx context.Context, id string, u models.UserUpdate) (*models.User, error) {
			assert.Equal(t, "", *u.Email)
			return NewTestUser("mario", "Mario"), nil
		},
	}
	svc := NewUserService(mockUserRepo, NewTestLogger())

	_, err := svc.UpdateUser(context.Background(), primitive.NewObjectID().Hex(), models.UserUpdate{Email: strPtr("  ")})

	assert.NoError(t, err)
}

func TestUserService_UpdateUserByUsername_EmailOwnedBySelf(t *testing.T) {
	self := NewTestUser("mario", "Mario")
	mockUserRepo := &MockUserRepository{
		GetByEmailFunc: func(ctx context.Context, email string) (*models.User, error) {
			return self, nil
		},
		UpdateByUsernameFunc: func(ctx context.Context, username string, u models.UserUpdate) (*models.User, error) {
			assert.Equal(t, "mario", username)
			return self, nil
		},
	}
	svc := NewUserService(mockUserRepo, NewTestLogger())

	_, err := svc.UpdateUserByUsername(context.Background(), " Mario ", models.UserUpdate{Email: strPtr("mario@example.com")})

	assert.NoError(t, err)
}

func TestUserService_UpdateUserByUsername_NotFound(t *testing.T) {
	mockUserRepo := &MockUserRepository{
		UpdateByUsernameFunc: func(ctx context.Context, username string, u models.UserUpdate) (*models.User, error) {
			return nil, models.ErrNotFound
		},
	}
	svc := NewUserService(mockUserRepo, NewTestLogger())

	_, err := svc.UpdateUserByUsername(context.Background(), "ghost", models.UserUpdate{Colour: strPtr("red")})

	assert.Equal(t, models.ErrNotFound, err)
}

func TestUserService_DeleteUser(t *testing.T) {
	t.Run("deleted", func(t *testing.T) {
		svc := NewUserService(&MockUserRepository{}, NewTestLogger())
		assert.NoError(t, svc.DeleteUser(context.Background(), primitive.NewObjectID().Hex()))
	})

	t.Run("not found", func(t *testing.T) {
		mockUserRepo := &MockUserRepository{
			DeleteFunc: func(ctx context.Context, id string) error { return models.ErrNotFound },
		}
		svc := NewUserService(mockUserRepo, NewTestLogger())
		assert.Equal(t, models.ErrNotFound, svc.DeleteUser(context.Background(), primitive.NewObjectID().Hex()))
	})
}

func TestUserService_GetStats(t *testing.T) {
	var filters []models.UserFilter
	mockUserRepo := &MockUserRepository{
		CountFunc: func(ctx context.Context, filter models.UserFilter) (int64, error) {
			filters = append(filters, filter)
			if filter.Status == models.UserStatusActive {
				return 7, nil
			}
			return 10, nil
		},
		RecentFunc: func(ctx context.Context, n int) ([]*models.User, error) {
			assert.Equal(t, 5, n)
			return []*models.User{NewTestUser("new", "New")}, nil
		},
	}
	svc := NewUserService(mockUserRepo, NewTestLogger())

	stats, err := svc.GetStats(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(10), stats.TotalUsers)
	assert.Equal(t, int64(7), stats.ActiveUsers)
	assert.Equal(t, int64(3), stats.InactiveUsers)
	assert.Len(t, stats.RecentUsers, 1)
	assert.Len(t, filters, 2)
}

// Users whose status is neither active nor inactive still count as inactive.
func TestUserService_GetStats_OtherStatusesAreInactive(t *testing.T) {
	users := []*models.User{
		NewTestUserWithStatus("a", "Anna", models.UserStatusActive),
		NewTestUserWithStatus("b", "Bruno", models.UserStatusInactive),
		NewTestUserWithStatus("c", "Carla", "suspended"),
	}
	mockUserRepo := &MockUserRepository{
		CountFunc: func(ctx context.Context, filter models.UserFilter) (int64, error) {
			var n int64
			for _, u := range users {
				if filter.Status == "" || u.Status == filter.Status {
					n++
				}
			}
			return n, nil
		},
		RecentFunc: func(ctx context.Context, n int) ([]*models.User, error) { return users, nil },
	}
	svc := NewUserService(mockUserRepo, NewTestLogger())

	stats, err := svc.GetStats(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.TotalUsers)
	assert.Equal(t, int64(1), stats.ActiveUsers)
	assert.Equal(t, int64(2), stats.InactiveUsers)
	assert.Equal(t, stats.TotalUsers, stats.ActiveUsers+stats.InactiveUsers)
}

func TestUserService_GetRanking_Limit(t *testing.T) {
	tests := []struct {
		name  string
		limit int
		want  int
	}{
		{name: "default", limit: 0, want: DefaultRankingLimit},
		{name: "explicit", limit: 3, want: 3},
		{name: "capped", limit: 1000, want: models.MaxLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockUserRepo := &MockUserRepository{
				RankingFunc: func(ctx context.Context, limit int) ([]*models.RankingEntry, error) {
					assert.Equal(t, tt.want, limit)
					return []*models.RankingEntry{{Name: "A", CheckpointsCompleted: 3}}, nil
				},
			}
			svc := NewUserService(mockUserRepo, NewTestLogger())

			ranking, err := svc.GetRanking(context.Background(), tt.limit)

			require.NoError(t, err)
			assert.Equal(t, 1, ranking.TotalUsers)
		})
	}
}
