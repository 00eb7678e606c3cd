package catalog

import "context"

// ProductCache defines the read-through cache in front of the product catalog.
//
// Cache keys follow the pattern:
// - Products: catalog:product:{id}
// - Pages: catalog:page:{version}:{page}
// - Page version counter: catalog:pages:version
//
// Page entries embed a version counter in their key. Adding a product bumps
// the counter instead of scanning for stale page keys, so superseded pages
// simply age out via TTL.
type ProductCache interface {
	// GetProduct retrieves a cached product by its id.
	// Returns nil, nil if the product is not in cache (cache miss).
	GetProduct(ctx context.Context, id int64) (*Product, error)

	// SetProduct stores a product in cache under its id.
	SetProduct(ctx context.Context, product *Product) error

	// GetPage retrieves a cached catalog page for the current version.
	// Returns nil, nil if the page is not in cache (cache miss).
	GetPage(ctx context.Context, page int) ([]Product, error)

	// SetPage stores a catalog page in cache under the current version.
	SetPage(ctx context.Context, page int, products []Product) error

	// InvalidatePages bumps the page version counter so subsequent page
	// reads miss and repopulate from the database.
	InvalidatePages(ctx context.Context) error

	// Close releases resources held by the cache.
	Close() error
}
