package health

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Pinger is anything with a context-aware Ping, such as *pgxpool.Pool or
// *kafka.Producer.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingCheck wraps a Pinger as a Checker.
func PingCheck(name string, p Pinger) Checker {
	return func(ctx context.Context) error {
		if err := p.Ping(ctx); err != nil {
			return fmt.Errorf("%s ping: %w", name, err)
		}
		return nil
	}
}

// MongoCheck pings the primary of the client's deployment.
func MongoCheck(client *mongo.Client) Checker {
	return func(ctx context.Context) error {
		if err := client.Ping(ctx, readpref.Primary()); err != nil {
			return fmt.Errorf("mongo ping: %w", err)
		}
		return nil
	}
}

// RedisCheck issues PING against the client.
func RedisCheck(client redis.UniversalClient) Checker {
	return func(ctx context.Context) error {
		if err := client.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis ping: %w", err)
		}
		return nil
	}
}
