package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/BradenHooton/citywalk/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStreetService_Verify_KnownDestination(t *testing.T) {
	now := time.Date(2025, 7, 2, 8, 0, 0, 0, time.UTC)
	recorded := false
	mockRepo := &MockStreetRepository{
		FindDestinationFunc: func(ctx context.Context, provaID, location string) (*models.StreetDestination, error) {
			assert.Equal(t, "P1", provaID)
			assert.Equal(t, "via roma 12", location)
			return &models.StreetDestination{ProvaID: provaID, Location: location, Info: "bakery"}, nil
		},
		RecordVerificationFunc: func(ctx context.Context, provaID, location, username string, at time.Time) (*models.StreetVerification, error) {
			recorded = true
			assert.Equal(t, "mario", username)
			assert.Equal(t, now, at)
			return &models.StreetVerification{}, nil
		},
	}
	svc := NewStreetService(mockRepo, NewTestLogger())
	svc.now = func() time.Time { return now }

	res, err := svc.Verify(context.Background(), "P1", "  Via Roma 12 ", "mario")

	require.NoError(t, err)
	assert.True(t, recorded)
	assert.True(t, res.Verified)
	assert.Equal(t, "via roma 12", res.Location)
	assert.Equal(t, "bakery", res.Info)
	assert.Equal(t, now, res.Timestamp)
}

func TestStreetService_Verify_UnknownDestinationStillLogged(t *testing.T) {
	recorded := false
	mockRepo := &MockStreetRepository{
		RecordVerificationFunc: func(ctx context.Context, provaID, location, username string, at time.Time) (*models.StreetVerification, error) {
			recorded = true
			return &models.StreetVerification{}, nil
		},
	}
	svc := NewStreetService(mockRepo, NewTestLogger())

	res, err := svc.Verify(context.Background(), "P1", "nowhere", "mario")

	require.NoError(t, err)
	assert.False(t, res.Verified)
	assert.Nil(t, res.Info)
	assert.True(t, recorded)
}

func TestStreetService_Verify_RejectsBadInput(t *testing.T) {
	svc := NewStreetService(&MockStreetRepository{}, NewTestLogger())
	ctx := context.Background()

	tests := []struct {
		name                        string
		provaID, location, username string
	}{
		{name: "missing prova", location: "x", username: "mario"},
		{name: "missing location", provaID: "P1", location: "  ", username: "mario"},
		{name: "missing username", provaID: "P1", location: "x"},
		{name: "dotted username", provaID: "P1", location: "x", username: "mario.rossi"},
		{name: "operator username", provaID: "P1", location: "x", username: "$set"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Verify(ctx, tt.provaID, tt.location, tt.username)
			assert.ErrorIs(t, err, models.ErrBadRequest)
		})
	}
}

func TestStreetService_Verify_StoreFailure(t *testing.T) {
	mockRepo := &MockStreetRepository{
		FindDestinationFunc: func(ctx context.Context, provaID, location string) (*models.StreetDestination, error) {
			return nil, errors.New("server selection timeout")
		},
	}
	svc := NewStreetService(mockRepo, NewTestLogger())

	_, err := svc.Verify(context.Background(), "P1", "x", "mario")

	assert.Equal(t, models.ErrInternalServer, err)
}

func TestStreetService_CreateDestination(t *testing.T) {
	t.Run("stores allow-listed fields normalized", func(t *testing.T) {
		mockRepo := &MockStreetRepository{
			CreateDestinationFunc: func(ctx context.Context, d *models.StreetDestination) (*models.StreetDestination, error) {
				assert.Equal(t, "P1", d.ProvaID)
				assert.Equal(t, "piazza duomo", d.Location)
				assert.Equal(t, map[string]interface{}{"hint": "look up"}, d.Info)
				d.ID = primitive.NewObjectID()
				return d, nil
			},
		}
		svc := NewStreetService(mockRepo, NewTestLogger())

		created, err := svc.CreateDestination(context.Background(), models.StreetInput{
			ProvaID: " P1 ", Location: "Piazza Duomo", Info: map[string]interface{}{"hint": "look up"},
		})

		require.NoError(t, err)
		assert.False(t, created.ID.IsZero())
	})

	t.Run("duplicate pair", func(t *testing.T) {
		mockRepo := &MockStreetRepository{
			FindDestinationFunc: func(ctx context.Context, provaID, location string) (*models.StreetDestination, error) {
				return &models.StreetDestination{}, nil
			},
		}
		svc := NewStreetService(mockRepo, NewTestLogger())

		_, err := svc.CreateDestination(context.Background(), models.StreetInput{ProvaID: "P1", Location: "x"})

		assert.ErrorIs(t, err, models.ErrConflict)
		assert.EqualError(t, err, msgStreetTaken)
	})

	t.Run("required fields", func(t *testing.T) {
		svc := NewStreetService(&MockStreetRepository{}, NewTestLogger())
		_, err := svc.CreateDestination(context.Background(), models.StreetInput{ProvaID: "P1"})
		assert.ErrorIs(t, err, models.ErrBadRequest)
	})
}

func TestStreetService_VerificationHistory(t *testing.T) {
	mockRepo := &MockStreetRepository{
		ListVerificationsFunc: func(ctx context.Context, page models.PageRequest) ([]*models.StreetVerification, int64, error) {
			return []*models.StreetVerification{{ProvaID: "P1"}}, 21, nil
		},
	}
	svc := NewStreetService(mockRepo, NewTestLogger())

	page, err := svc.VerificationHistory(context.Background(), models.NewPageRequest(1, 10))

	require.NoError(t, err)
	assert.Equal(t, 3, page.Pagination.TotalPages)
}
