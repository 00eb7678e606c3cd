package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopbot/backend/internal/domain/catalog"
)

const (
	productKeyPrefix = "catalog:product:"
	pageKeyPrefix    = "catalog:page:"
	pageVersionKey   = "catalog:pages:version"

	defaultCatalogTTL = 5 * time.Minute
)

// RedisCatalogCache implements catalog.ProductCache using Redis
// This is suitable for deployments where multiple bot instances
// need to share the catalog cache
type RedisCatalogCache struct {
	client *redis.Client
	ttl    time.Duration
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NewRedisCatalogCache creates a new Redis-based catalog cache
func NewRedisCatalogCache(cfg RedisConfig, ttl time.Duration) (*RedisCatalogCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisCatalogCacheWithClient(client, ttl), nil
}

// NewRedisCatalogCacheWithClient creates a cache with an existing Redis client
// This is useful for testing or when sharing a client across components
func NewRedisCatalogCacheWithClient(client *redis.Client, ttl time.Duration) *RedisCatalogCache {
	if ttl <= 0 {
		ttl = defaultCatalogTTL
	}
	return &RedisCatalogCache{
		client: client,
		ttl:    ttl,
	}
}

// GetProduct retrieves a cached product by its id
// Returns nil, nil on a cache miss
func (c *RedisCatalogCache) GetProduct(ctx context.Context, id int64) (*catalog.Product, error) {
	data, err := c.client.Get(ctx, productKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cached product: %w", err)
	}

	var product catalog.Product
	if err := json.Unmarshal(data, &product); err != nil {
		return nil, fmt.Errorf("failed to decode cached product: %w", err)
	}

	return &product, nil
}

// SetProduct stores a product in cache under its id
func (c *RedisCatalogCache) SetProduct(ctx context.Context, product *catalog.Product) error {
	data, err := json.Marshal(product)
	if err != nil {
		return fmt.Errorf("failed to encode product for cache: %w", err)
	}

	if err := c.client.Set(ctx, productKey(product.ID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache product: %w", err)
	}

	return nil
}

// GetPage retrieves a cached catalog page for the current version
// Returns nil, nil on a cache miss
func (c *RedisCatalogCache) GetPage(ctx context.Context, page int) ([]catalog.Product, error) {
	version, err := c.pageVersion(ctx)
	if err != nil {
		return nil, err
	}

	data, err := c.client.Get(ctx, pageKey(version, page)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cached catalog page: %w", err)
	}

	var products []catalog.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("failed to decode cached catalog page: %w", err)
	}

	return products, nil
}

// SetPage stores a catalog page in cache under the current version
func (c *RedisCatalogCache) SetPage(ctx context.Context, page int, products []catalog.Product) error {
	version, err := c.pageVersion(ctx)
	if err != nil {
		return err
	}

	data, err := json.Marshal(products)
	if err != nil {
		return fmt.Errorf("failed to encode catalog page for cache: %w", err)
	}

	if err := c.client.Set(ctx, pageKey(version, page), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache catalog page: %w", err)
	}

	return nil
}

// InvalidatePages bumps the page version counter. Page keys embed the
// version, so every cached page misses after the bump and the stale keys
// age out via TTL without a scan.
func (c *RedisCatalogCache) InvalidatePages(ctx context.Context) error {
	if err := c.client.Incr(ctx, pageVersionKey).Err(); err != nil {
		return fmt.Errorf("failed to bump catalog page version: %w", err)
	}
	return nil
}

// Close closes the Redis client
func (c *RedisCatalogCache) Close() error {
	return c.client.Close()
}

func (c *RedisCatalogCache) pageVersion(ctx context.Context) (int64, error) {
	version, err := c.client.Get(ctx, pageVersionKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read catalog page version: %w", err)
	}
	return version, nil
}

func productKey(id int64) string {
	return productKeyPrefix + strconv.FormatInt(id, 10)
}

func pageKey(version int64, page int) string {
	return fmt.Sprintf("%s%d:%d", pageKeyPrefix, version, page)
}

// Ensure RedisCatalogCache implements ProductCache
var _ catalog.ProductCache = (*RedisCatalogCache)(nil)
