package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopbot/backend/internal/domain/catalog"
)

// productEntry represents a cached product with expiration
type productEntry struct {
	product   catalog.Product
	expiresAt time.Time
}

// pageEntry represents a cached catalog page with expiration
type pageEntry struct {
	products  []catalog.Product
	expiresAt time.Time
}

// InMemoryCatalogCache implements catalog.ProductCache using in-memory maps
// This is suitable for single-instance deployments and testing
type InMemoryCatalogCache struct {
	mu        sync.RWMutex
	products  map[int64]productEntry
	pages     map[string]pageEntry
	version   int64
	ttl       time.Duration
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemoryCatalogCache creates a new in-memory catalog cache
// It starts a background goroutine to clean up expired entries
func NewInMemoryCatalogCache(ttl time.Duration) *InMemoryCatalogCache {
	if ttl <= 0 {
		ttl = defaultCatalogTTL
	}

	cache := &InMemoryCatalogCache{
		products: make(map[int64]productEntry),
		pages:    make(map[string]pageEntry),
		ttl:      ttl,
		stopChan: make(chan struct{}),
	}

	// Start cleanup goroutine
	cache.wg.Add(1)
	go cache.cleanupLoop()

	return cache
}

// GetProduct retrieves a cached product by its id
// Returns nil, nil on a cache miss
func (c *InMemoryCatalogCache) GetProduct(ctx context.Context, id int64) (*catalog.Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, exists := c.products[id]
	if !exists || time.Now().After(e.expiresAt) {
		return nil, nil
	}

	product := e.product
	return &product, nil
}

// SetProduct stores a product in cache under its id
func (c *InMemoryCatalogCache) SetProduct(ctx context.Context, product *catalog.Product) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.products[product.ID] = productEntry{
		product:   *product,
		expiresAt: time.Now().Add(c.ttl),
	}

	return nil
}

// GetPage retrieves a cached catalog page for the current version
// Returns nil, nil on a cache miss
func (c *InMemoryCatalogCache) GetPage(ctx context.Context, page int) ([]catalog.Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, exists := c.pages[c.versionedPageKey(page)]
	if !exists || time.Now().After(e.expiresAt) {
		return nil, nil
	}

	return e.products, nil
}

// SetPage stores a catalog page in cache under the current version
func (c *InMemoryCatalogCache) SetPage(ctx context.Context, page int, products []catalog.Product) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.pages[c.versionedPageKey(page)] = pageEntry{
		products:  append([]catalog.Product(nil), products...),
		expiresAt: time.Now().Add(c.ttl),
	}

	return nil
}

// InvalidatePages bumps the page version counter so cached pages stop
// matching and age out via the cleanup loop
func (c *InMemoryCatalogCache) InvalidatePages(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.version++
	return nil
}

// Close stops the cleanup goroutine and releases resources
// Safe to call multiple times
func (c *InMemoryCatalogCache) Close() error {
	c.closeOnce.Do(func() {
		close(c.stopChan)
		c.wg.Wait()
	})
	return nil
}

// Size returns the number of cached entries (for testing/monitoring)
func (c *InMemoryCatalogCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.products) + len(c.pages)
}

// versionedPageKey builds the page map key. Callers must hold at least a
// read lock.
func (c *InMemoryCatalogCache) versionedPageKey(page int) string {
	return fmt.Sprintf("%d:%d", c.version, page)
}

// cleanupLoop periodically removes expired entries
func (c *InMemoryCatalogCache) cleanupLoop() {
	defer c.wg.Done()

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopChan:
			return
		case <-ticker.C:
			c.cleanup()
		}
	}
}

// cleanup removes expired entries from the cache
func (c *InMemoryCatalogCache) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for id, e := range c.products {
		if now.After(e.expiresAt) {
			delete(c.products, id)
		}
	}
	for key, e := range c.pages {
		if now.After(e.expiresAt) {
			delete(c.pages, key)
		}
	}
}

// Ensure InMemoryCatalogCache implements ProductCache
var _ catalog.ProductCache = (*InMemoryCatalogCache)(nil)
