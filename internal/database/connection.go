package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/BradenHooton/citywalk/internal/config"
)

// DB owns the Mongo client and the application database handle.
type DB struct {
	Client   *mongo.Client
	Database *mongo.Database
	logger   *slog.Logger
}

func NewConnection(cfg *config.DatabaseConfig, logger *slog.Logger) (*DB, error) {
	clientOpts := options.Client().
		ApplyURI(cfg.URI).
		SetMaxPoolSize(cfg.MaxPoolSize).
		SetConnectTimeout(cfg.ConnectTimeout).
		SetServerSelectionTimeout(cfg.ConnectTimeout).
		SetBSONOptions(&options.BSONOptions{DefaultDocumentM: true})

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to mongodb: %w", err)
	}

	// Verify connection
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("unable to ping mongodb: %w", err)
	}

	logger.Info("database connection established",
		slog.String("database", cfg.Name),
		slog.Uint64("max_pool_size", cfg.MaxPoolSize),
	)

	return NewDB(client, cfg.Name, logger), nil
}

// NewDB wraps an already connected client.
func NewDB(client *mongo.Client, name string, logger *slog.Logger) *DB {
	return &DB{Client: client, Database: client.Database(name), logger: logger}
}

func (db *DB) Close(ctx context.Context) error {
	db.logger.Info("closing database connection")
	return db.Client.Disconnect(ctx)
}

func (db *DB) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := db.Client.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}
	return nil
}
