package database

import (
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/BradenHooton/citywalk/internal/models"
)

// Collection names
const (
	CollectionUsers               = "users"
	CollectionAppointments        = "appointments"
	CollectionCheckpoints         = "checkpoints"
	CollectionDestinations        = "destinations"
	CollectionStreetVerifications = "streetVerifications"
	CollectionPatterns            = "patterns"
)

// MapMongoError translates driver errors into model sentinels.
func MapMongoError(err error) error {
	if sentinel := sentinelFor(err); sentinel != nil {
		return sentinel
	}
	return err
}

// sentinelFor returns the model sentinel for err, or nil when none applies.
// Driver errors such as mongo.CommandError are not comparable with ==.
func sentinelFor(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return models.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return models.ErrConflict
	}
	return nil
}

// wrapError keeps both the mapped sentinel and the driver error in the chain.
func wrapError(collection, op string, err error) error {
	if err == nil {
		return nil
	}
	sentinel := sentinelFor(err)
	if sentinel == nil {
		return fmt.Errorf("%s: %s: %w", collection, op, err)
	}
	return fmt.Errorf("%s: %s: %w: %w", collection, op, sentinel, err)
}

// ParseID converts a hex identifier, failing with models.ErrInvalidID.
func ParseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, models.ErrInvalidID
	}
	return oid, nil
}
