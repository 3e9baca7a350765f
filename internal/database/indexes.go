package database

import (
	"context"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// onlyStrings limits a unique index to documents where field holds a string,
// so users without a username or email never collide on null.
func onlyStrings(field string) bson.M {
	return bson.M{field: bson.M{"$type": "string"}}
}

// IndexSpecs lists the indexes the application relies on, per collection.
func IndexSpecs() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		CollectionUsers: {
			{
				Keys:    bson.D{{Key: "username", Value: 1}},
				Options: options.Index().SetName("uniq_username").SetUnique(true).SetPartialFilterExpression(onlyStrings("username")),
			},
			{
				Keys:    bson.D{{Key: "email", Value: 1}},
				Options: options.Index().SetName("uniq_email").SetUnique(true).SetPartialFilterExpression(onlyStrings("email")),
			},
			{
				Keys:    bson.D{{Key: "checkpointsCompleted", Value: -1}, {Key: "lastCheckpoint", Value: 1}},
				Options: options.Index().SetName("ranking"),
			},
		},
		CollectionAppointments: {
			{
				Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "date", Value: 1}, {Key: "time", Value: 1}},
				Options: options.Index().SetName("user_slot"),
			},
		},
		CollectionCheckpoints: {
			{
				Keys:    bson.D{{Key: "internalId", Value: 1}},
				Options: options.Index().SetName("uniq_internal_id").SetUnique(true),
			},
		},
		CollectionDestinations: {
			{
				Keys:    bson.D{{Key: "provaId", Value: 1}, {Key: "location", Value: 1}},
				Options: options.Index().SetName("uniq_prova_location").SetUnique(true),
			},
		},
		CollectionStreetVerifications: {
			{
				Keys:    bson.D{{Key: "provaId", Value: 1}, {Key: "location", Value: 1}},
				Options: options.Index().SetName("uniq_prova_location").SetUnique(true),
			},
		},
		CollectionPatterns: {
			{
				Keys:    bson.D{{Key: "sequence", Value: 1}},
				Options: options.Index().SetName("sequence"),
			},
		},
	}
}

// EnsureIndexes creates every index in IndexSpecs. Creating an index that
// already exists with the same definition is a no-op on the server.
func (db *DB) EnsureIndexes(ctx context.Context) error {
	return EnsureIndexes(ctx, db.Database, db.logger)
}

func EnsureIndexes(ctx context.Context, database *mongo.Database, logger *slog.Logger) error {
	for collection, specs := range IndexSpecs() {
		names, err := database.Collection(collection).Indexes().CreateMany(ctx, specs)
		if err != nil {
			return wrapError(collection, "create indexes", err)
		}
		logger.Debug("indexes ensured", slog.String("collection", collection), slog.Any("indexes", names))
	}
	return nil
}
