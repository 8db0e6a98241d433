package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const defaultTimeout = 10 * time.Second

// Config captures the settings for the optional MongoDB account store.
type Config struct {
	URI      string
	Database string
	Timeout  time.Duration
}

// Open connects to MongoDB, verifies the connection, and returns the client
// together with an AccountRepository whose unique username index is in place.
// The caller owns the client and must Disconnect it.
func Open(ctx context.Context, cfg Config) (*mongo.Client, *AccountRepository, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	openCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(openCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, nil, fmt.Errorf("mongo connect: %w", err)
	}

	if err := client.Ping(openCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("mongo ping: %w", err)
	}

	repo := NewAccountRepository(client.Database(cfg.Database))
	if err := repo.EnsureIndexes(openCtx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, err
	}

	return client, repo, nil
}
