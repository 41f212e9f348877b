package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/event"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// MongoConfig holds MongoDB connection configuration.
type MongoConfig struct {
	URI            string
	Database       string
	MaxPoolSize    uint64
	ConnectTimeout time.Duration
}

// NewMongoClient connects to MongoDB and pings the primary, retrying with
// exponential backoff. monitor may be nil; logger may be nil.
func NewMongoClient(ctx context.Context, cfg MongoConfig, monitor *event.PoolMonitor, logger *slog.Logger) (*mongo.Client, error) {
	opts := options.Client().
		ApplyURI(cfg.URI).
		SetConnectTimeout(cfg.ConnectTimeout).
		SetServerSelectionTimeout(cfg.ConnectTimeout)
	if cfg.MaxPoolSize > 0 {
		opts.SetMaxPoolSize(cfg.MaxPoolSize)
	}
	if monitor != nil {
		opts.SetPoolMonitor(monitor)
	}
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("parse mongo config: %w", err)
	}

	var client *mongo.Client
	err := connectWithRetry(ctx, "mongo", logger, retryBackoff, func(ctx context.Context) error {
		c, err := mongo.Connect(ctx, opts)
		if err != nil {
			return err
		}
		if err := c.Ping(ctx, readpref.Primary()); err != nil {
			_ = c.Disconnect(context.Background())
			return err
		}
		client = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return client, nil
}
