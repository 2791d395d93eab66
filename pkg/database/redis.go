package database

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/tasklane-io/tasklane-engine/pkg/config"
)

// NewRedisClient creates a new Redis client with the given configuration
// and verifies connectivity. Sessions live in Redis, so the engine fails
// fast when it cannot be reached.
func NewRedisClient(cfg *config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return client, nil
}
