package persistence

import (
	"context"
	"errors"

	"github.com/shopbot/backend/internal/domain/catalog"
	"github.com/shopbot/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormProductRepository implements ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// Create persists a new product and assigns its id
func (r *GormProductRepository) Create(ctx context.Context, product *catalog.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

// FindByID finds a product by its ID
func (r *GormProductRepository) FindByID(ctx context.Context, id int64) (*catalog.Product, error) {
	var product catalog.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}

// FindByIDs returns the products for the given ids, keyed by id.
// Ids with no matching product are simply missing from the map.
func (r *GormProductRepository) FindByIDs(ctx context.Context, ids []int64) (map[int64]catalog.Product, error) {
	result := make(map[int64]catalog.Product, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var products []catalog.Product
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, err
	}
	for _, p := range products {
		result[p.ID] = p
	}
	return result, nil
}

// FindPage returns one page of the catalog, newest first (descending id)
func (r *GormProductRepository) FindPage(ctx context.Context, page, pageSize int) ([]catalog.Product, error) {
	products := make([]catalog.Product, 0, pageSize)
	if err := r.db.WithContext(ctx).
		Order("id DESC").
		Offset(page * pageSize).
		Limit(pageSize).
		Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// Count returns the total number of products
func (r *GormProductRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&catalog.Product{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Ensure GormProductRepository implements ProductRepository
var _ catalog.ProductRepository = (*GormProductRepository)(nil)
