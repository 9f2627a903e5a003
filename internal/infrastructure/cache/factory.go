package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/projectmgmt/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// ResolverCache is a resolver cache with a lifecycle
type ResolverCache interface {
	Get(ctx context.Context, key string) (int, bool, error)
	Set(ctx context.Context, key string, id int, ttl time.Duration) error
	Ping(ctx context.Context) error
	Close() error
}

// ResolverCacheFactory creates resolver caches based on configuration
type ResolverCacheFactory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// ResolverCacheFactoryOption is a functional option for configuring the factory
type ResolverCacheFactoryOption func(*ResolverCacheFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) ResolverCacheFactoryOption {
	return func(f *ResolverCacheFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether an unreachable Redis falls back to
// the in-memory cache. Default is true.
func WithInMemoryFallback(allow bool) ResolverCacheFactoryOption {
	return func(f *ResolverCacheFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewResolverCacheFactory creates a new factory
func NewResolverCacheFactory(cfg config.RedisConfig, opts ...ResolverCacheFactoryOption) *ResolverCacheFactory {
	f := &ResolverCacheFactory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateCache returns a Redis cache when Redis is configured and reachable,
// otherwise an in-memory cache
func (f *ResolverCacheFactory) CreateCache(ctx context.Context) (ResolverCache, error) {
	if f.redisConfig.Addr() == "" {
		f.logger.Info("Redis not configured, using in-memory resolver cache")
		return NewInMemoryResolverCache(time.Minute), nil
	}

	client, err := NewRedisClient(ctx, f.redisConfig)
	if err == nil {
		f.logger.Info("Using Redis resolver cache", zap.String("addr", f.redisConfig.Addr()))
		return NewRedisResolverCache(client, ""), nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("redis required for resolver cache but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory resolver cache", zap.Error(err))
	return NewInMemoryResolverCache(time.Minute), nil
}
