//go:build integration

// Package testutil starts a disposable MongoDB for integration tests.
package testutil

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/BradenHooton/citywalk/internal/config"
	"github.com/BradenHooton/citywalk/internal/database"
	"github.com/BradenHooton/citywalk/internal/models"
	"github.com/BradenHooton/citywalk/pkg/auth"
)

// TestDB manages the MongoDB testcontainer and the connected database.
type TestDB struct {
	Container *mongodb.MongoDBContainer
	URI       string
	DB        *database.DB
}

// SetupTestDatabase starts MongoDB, connects and creates the application indexes.
func SetupTestDatabase(ctx context.Context) (*TestDB, error) {
	container, err := mongodb.RunContainer(ctx, testcontainers.WithImage("mongo:7"))
	if err != nil {
		return nil, fmt.Errorf("failed to start mongodb container: %w", err)
	}

	uri, err := container.ConnectionString(ctx)
	if err != nil {
		container.Terminate(ctx)
		return nil, fmt.Errorf("failed to get connection string: %w", err)
	}

	cfg := &config.DatabaseConfig{
		URI:            uri,
		Name:           fmt.Sprintf("citywalk_test_%d", time.Now().UnixNano()),
		ConnectTimeout: 10 * time.Second,
		MaxPoolSize:    10,
	}

	db, err := database.NewConnection(cfg, Logger())
	if err != nil {
		container.Terminate(ctx)
		return nil, err
	}

	if err := db.EnsureIndexes(ctx); err != nil {
		db.Close(ctx)
		container.Terminate(ctx)
		return nil, fmt.Errorf("failed to create indexes: %w", err)
	}

	return &TestDB{Container: container, URI: uri, DB: db}, nil
}

// Logger discards everything below warnings.
func Logger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelWarn}))
}

// Teardown disconnects and stops the container.
func (t *TestDB) Teardown(ctx context.Context) error {
	if t.DB != nil {
		_ = t.DB.Close(ctx)
	}
	if t.Container != nil {
		return t.Container.Terminate(ctx)
	}
	return nil
}

// CleanupCollections empties every application collection, keeping indexes.
func (t *TestDB) CleanupCollections(ctx context.Context) error {
	for _, name := range []string{
		database.CollectionUsers,
		database.CollectionAppointments,
		database.CollectionCheckpoints,
		database.CollectionDestinations,
		database.CollectionStreetVerifications,
		database.CollectionPatterns,
	} {
		if _, err := t.DB.Database.Collection(name).DeleteMany(ctx, bson.M{}); err != nil {
			return fmt.Errorf("failed to clean collection %s: %w", name, err)
		}
	}
	return nil
}

// SeedUser inserts an active user whose password is the digest of password.
func (t *TestDB) SeedUser(ctx context.Context, username, name, password string) (*models.User, error) {
	users := database.NewCollection[models.User](t.DB.Database, database.CollectionUsers)
	id, err := users.Insert(ctx, &models.User{
		Name:     name,
		Username: username,
		Password: auth.HashPassword(password),
		Status:   models.UserStatusActive,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}
	return users.FindOne(ctx, bson.M{"_id": id})
}

// SeedPattern inserts a pattern row.
func (t *TestDB) SeedPattern(ctx context.Context, sequence string, message ...string) error {
	_, err := t.DB.Database.Collection(database.CollectionPatterns).InsertOne(ctx, bson.M{
		"sequence": sequence,
		"message":  message,
	})
	return err
}
