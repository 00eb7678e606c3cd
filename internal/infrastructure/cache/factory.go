package cache

import (
	"fmt"

	"github.com/shopbot/backend/internal/domain/catalog"
	"github.com/shopbot/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// CatalogCacheFactory creates catalog caches based on configuration
type CatalogCacheFactory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// CatalogCacheFactoryOption is a functional option for configuring the factory
type CatalogCacheFactoryOption func(*CatalogCacheFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) CatalogCacheFactoryOption {
	return func(f *CatalogCacheFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to the in-memory cache
// when Redis is unavailable. Default is true (allow fallback).
func WithInMemoryFallback(allow bool) CatalogCacheFactoryOption {
	return func(f *CatalogCacheFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewCatalogCacheFactory creates a new factory
func NewCatalogCacheFactory(cfg config.RedisConfig, opts ...CatalogCacheFactoryOption) *CatalogCacheFactory {
	f := &CatalogCacheFactory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// CreateRedisCache creates a Redis-based catalog cache
func (f *CatalogCacheFactory) CreateRedisCache() (catalog.ProductCache, error) {
	redisCfg := RedisConfig{
		Host:     f.redisConfig.Host,
		Port:     f.redisConfig.Port,
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
	}

	cache, err := NewRedisCatalogCache(redisCfg, f.redisConfig.TTL)
	if err != nil {
		return nil, fmt.Errorf("failed to create Redis catalog cache: %w", err)
	}

	return cache, nil
}

// CreateInMemoryCache creates an in-memory catalog cache
// This is suitable for single-instance deployments and testing
// WARNING: In-memory caches do not share state across process instances,
// so catalog pages may serve stale data in distributed deployments
func (f *CatalogCacheFactory) CreateInMemoryCache() catalog.ProductCache {
	return NewInMemoryCatalogCache(f.redisConfig.TTL)
}

// CreateCache creates a catalog cache based on whether Redis is enabled and
// reachable. It tries Redis first when enabled, and falls back to in-memory
// if Redis is not available and AllowInMemoryFallback is true.
func (f *CatalogCacheFactory) CreateCache() (catalog.ProductCache, error) {
	if !f.redisConfig.Enabled {
		f.logger.Info("redis disabled, using in-memory catalog cache")
		return f.CreateInMemoryCache(), nil
	}

	cache, err := f.CreateRedisCache()
	if err == nil {
		f.logger.Info("using Redis catalog cache",
			zap.String("addr", f.redisConfig.Addr()),
		)
		return cache, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("Redis required for catalog cache but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory catalog cache. "+
		"Catalog pages may serve stale data in distributed deployments.",
		zap.Error(err),
	)
	return f.CreateInMemoryCache(), nil
}
