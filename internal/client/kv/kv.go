// Package kv provides the string key-value store that holds client state
// between runs: the session token and the password reset handoff.
package kv

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/afero"

	"github.com/atinyakov/gophauth/internal/config"
	"github.com/atinyakov/gophauth/internal/db"
)

// Store is a string key-value store. Implementations are safe for concurrent use.
type Store interface {
	// Get returns the value for key and whether it was present.
	Get(ctx context.Context, key string) (string, bool, error)
	// Set writes a single key.
	Set(ctx context.Context, key, value string) error
	// SetMany writes all pairs in one step; readers never see half of them.
	SetMany(ctx context.Context, pairs map[string]string) error
	// Delete removes keys. Missing keys are not an error.
	Delete(ctx context.Context, keys ...string) error
	// Close releases the backend.
	Close() error
}

// Open builds the backend selected in opts.
func Open(ctx context.Context, opts *config.Options) (Store, error) {
	switch opts.Store {
	case config.StoreMemory:
		return NewMemoryStore(), nil
	case config.StoreFile:
		return NewFileStore(afero.NewOsFs(), opts.StorePath), nil
	case config.StorePostgres:
		conn, err := db.InitPostgres(ctx, opts.DatabaseDSN)
		if err != nil {
			return nil, err
		}
		return NewPostgresStore(conn), nil
	case config.StoreRedis:
		client := redis.NewClient(&redis.Options{Addr: opts.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("ping redis: %w", err)
		}
		return NewRedisStore(client, DefaultRedisPrefix), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", opts.Store)
	}
}
