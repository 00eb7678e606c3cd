package catalog

import (
	"context"
)

// ProductRepository defines the interface for product persistence
type ProductRepository interface {
	// Create persists a new product and assigns its id
	Create(ctx context.Context, product *Product) error

	// FindByID finds a product by its ID.
	// Returns shared.ErrNotFound when no such product exists; callers treat
	// that as the absent branch, not as a failure.
	FindByID(ctx context.Context, id int64) (*Product, error)

	// FindByIDs returns the products for the given ids, keyed by id.
	// Ids with no matching product are simply missing from the map.
	FindByIDs(ctx context.Context, ids []int64) (map[int64]Product, error)

	// FindPage returns one page of the catalog ordered newest-created first
	// (descending id). Pages are 0-based; a page past the end of the catalog
	// yields an empty slice, not an error.
	FindPage(ctx context.Context, page, pageSize int) ([]Product, error)

	// Count returns the total number of products
	Count(ctx context.Context) (int64, error)
}
