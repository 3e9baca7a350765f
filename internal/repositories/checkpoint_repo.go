package repositories

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/BradenHooton/citywalk/internal/database"
	"github.com/BradenHooton/citywalk/internal/models"
)

type CheckpointRepository struct {
	checkpoints *database.Collection[models.Checkpoint]
}

func NewCheckpointRepository(db *database.DB) *CheckpointRepository {
	return &CheckpointRepository{
		checkpoints: database.NewCollection[models.Checkpoint](db.Database, database.CollectionCheckpoints),
	}
}

var checkpointDefaultSort = bson.D{{Key: "isMajorCheckpoint", Value: -1}, {Key: "createdAt", Value: -1}}

// List applies filter. Location and InternalID match as case-insensitive substrings.
func (r *CheckpointRepository) List(ctx context.Context, filter models.CheckpointFilter, page models.PageRequest, sort []models.SortField) ([]*models.Checkpoint, int64, error) {
	match := bson.M{}
	if filter.IsMajorCheckpoint != nil {
		match["isMajorCheckpoint"] = *filter.IsMajorCheckpoint
	}
	if filter.Location != "" {
		match["location"] = containsFold(filter.Location)
	}
	if filter.InternalID != "" {
		match["internalId"] = containsFold(filter.InternalID)
	}

	return r.checkpoints.Find(ctx, match, database.FindOptions{
		Page:  page.Page,
		Limit: page.Limit,
		Sort:  sortDoc(sort, checkpointDefaultSort),
	})
}

func (r *CheckpointRepository) GetByID(ctx context.Context, id string) (*models.Checkpoint, error) {
	return r.checkpoints.FindByID(ctx, id)
}

// InternalIDTaken reports whether another checkpoint than exclude uses internalID.
func (r *CheckpointRepository) InternalIDTaken(ctx context.Context, internalID string, exclude primitive.ObjectID) (bool, error) {
	filter := bson.M{"internalId": internalID}
	if !exclude.IsZero() {
		filter["_id"] = bson.M{"$ne": exclude}
	}
	n, err := r.checkpoints.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *CheckpointRepository) Create(ctx context.Context, cp *models.Checkpoint) (*models.Checkpoint, error) {
	id, err := r.checkpoints.Insert(ctx, cp)
	if err != nil {
		return nil, err
	}
	return r.checkpoints.FindOne(ctx, bson.M{"_id": id})
}

func (r *CheckpointRepository) Update(ctx context.Context, id string, u models.CheckpointUpdate) (*models.Checkpoint, error) {
	oid, err := database.ParseID(id)
	if err != nil {
		return nil, err
	}

	set := bson.M{}
	if u.InternalID != nil {
		set["internalId"] = *u.InternalID
	}
	if u.Location != nil {
		set["location"] = *u.Location
	}
	if u.Description != nil {
		set["description"] = nullable(*u.Description)
	}
	if u.IsMajorCheckpoint != nil {
		set["isMajorCheckpoint"] = *u.IsMajorCheckpoint
	}
	if u.Result != nil {
		result, err := u.Result.ToResult()
		if err != nil {
			return nil, fmt.Errorf("checkpoints: decode result: %w", models.ErrBadRequest)
		}
		set["result"] = result
	}

	return r.checkpoints.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, false)
}

// SetResult replaces the result wholesale. A nil result clears it.
func (r *CheckpointRepository) SetResult(ctx context.Context, id string, result *models.CheckpointResult) (*models.Checkpoint, error) {
	oid, err := database.ParseID(id)
	if err != nil {
		return nil, err
	}
	return r.checkpoints.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{"result": result}}, false)
}

func (r *CheckpointRepository) Delete(ctx context.Context, id string) error {
	n, err := r.checkpoints.DeleteByID(ctx, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return models.ErrNotFound
	}
	return nil
}

// Stats counts checkpoints; recentlyUpdated covers updates at or after since.
func (r *CheckpointRepository) Stats(ctx context.Context, since time.Time) (*models.CheckpointStats, error) {
	stats := &models.CheckpointStats{}
	var err error

	if stats.TotalCheckpoints, err = r.checkpoints.Count(ctx, bson.M{}); err != nil {
		return nil, err
	}
	if stats.MajorCheckpoints, err = r.checkpoints.Count(ctx, bson.M{"isMajorCheckpoint": true}); err != nil {
		return nil, err
	}
	stats.MinorCheckpoints = stats.TotalCheckpoints - stats.MajorCheckpoints

	if stats.CheckpointsWithResults, err = r.checkpoints.Count(ctx, bson.M{"result": bson.M{"$exists": true, "$ne": nil}}); err != nil {
		return nil, err
	}
	if stats.RecentlyUpdated, err = r.checkpoints.Count(ctx, bson.M{"updatedAt": bson.M{"$gte": since}}); err != nil {
		return nil, err
	}

	return stats, nil
}
