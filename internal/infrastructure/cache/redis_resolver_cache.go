// Package cache provides the lookup caches used by the assistant.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/projectmgmt/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
)

const defaultKeyPrefix = "pm:"

// RedisResolverCache stores resolved entity ids in Redis so every instance
// shares them
type RedisResolverCache struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisClient connects to Redis and verifies the connection
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	if cfg.Addr() == "" {
		return nil, errors.New("redis host is not configured")
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// NewRedisResolverCache wraps an existing client
func NewRedisResolverCache(client *redis.Client, keyPrefix string) *RedisResolverCache {
	if keyPrefix == "" {
		keyPrefix = defaultKeyPrefix
	}
	return &RedisResolverCache{client: client, keyPrefix: keyPrefix}
}

// Get returns the cached id for key
func (c *RedisResolverCache) Get(ctx context.Context, key string) (int, bool, error) {
	id, err := c.client.Get(ctx, c.keyPrefix+key).Int()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to read resolver cache: %w", err)
	}
	return id, true, nil
}

// Set stores id for key with ttl
func (c *RedisResolverCache) Set(ctx context.Context, key string, id int, ttl time.Duration) error {
	if err := c.client.Set(ctx, c.keyPrefix+key, id, ttl).Err(); err != nil {
		return fmt.Errorf("failed to write resolver cache: %w", err)
	}
	return nil
}

// Ping checks the Redis connection
func (c *RedisResolverCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis client
func (c *RedisResolverCache) Close() error {
	return c.client.Close()
}
