package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/BradenHooton/citywalk/internal/database"
	"github.com/BradenHooton/citywalk/internal/models"
)

type StreetRepository struct {
	destinations  *database.Collection[models.StreetDestination]
	verifications *database.Collection[models.StreetVerification]
}

func NewStreetRepository(db *database.DB) *StreetRepository {
	return &StreetRepository{
		destinations:  database.NewCollection[models.StreetDestination](db.Database, database.CollectionDestinations),
		verifications: database.NewCollection[models.StreetVerification](db.Database, database.CollectionStreetVerifications),
	}
}

// FindDestination looks up a destination by provaId and normalized location.
func (r *StreetRepository) FindDestination(ctx context.Context, provaID, location string) (*models.StreetDestination, error) {
	return r.destinations.FindOne(ctx, bson.M{"provaId": provaID, "location": location})
}

// RecordVerification upserts the log for (provaID, location) and stores at
// under username. Earlier usernames are kept.
func (r *StreetRepository) RecordVerification(ctx context.Context, provaID, location, username string, at time.Time) (*models.StreetVerification, error) {
	filter := bson.M{"provaId": provaID, "location": location}
	update := bson.M{
		"$set":         bson.M{"verifiedBy." + username: at},
		"$setOnInsert": bson.M{"provaId": provaID, "location": location},
	}
	return r.verifications.FindOneAndUpdate(ctx, filter, update, true)
}

func (r *StreetRepository) CreateDestination(ctx context.Context, d *models.StreetDestination) (*models.StreetDestination, error) {
	id, err := r.destinations.Insert(ctx, d)
	if err != nil {
		return nil, err
	}
	return r.destinations.FindOne(ctx, bson.M{"_id": id})
}

func (r *StreetRepository) ListDestinations(ctx context.Context, page models.PageRequest, sort []models.SortField) ([]*models.StreetDestination, int64, error) {
	return r.destinations.Find(ctx, bson.M{}, database.FindOptions{
		Page:  page.Page,
		Limit: page.Limit,
		Sort:  sortDoc(sort, bson.D{{Key: "createdAt", Value: -1}}),
	})
}

func (r *StreetRepository) GetDestination(ctx context.Context, id string) (*models.StreetDestination, error) {
	return r.destinations.FindByID(ctx, id)
}

func (r *StreetRepository) ListVerifications(ctx context.Context, page models.PageRequest) ([]*models.StreetVerification, int64, error) {
	return r.verifications.Find(ctx, bson.M{}, database.FindOptions{
		Page:  page.Page,
		Limit: page.Limit,
		Sort:  bson.D{{Key: "updatedAt", Value: -1}},
	})
}
