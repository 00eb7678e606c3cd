package catalog

import (
	"context"
	"errors"
	"strconv"

	"github.com/shopbot/backend/internal/domain/access"
	"github.com/shopbot/backend/internal/domain/catalog"
	"github.com/shopbot/backend/internal/domain/shared"
	"github.com/shopbot/backend/internal/domain/shared/valueobject"
	"github.com/shopbot/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// ProductService handles catalog browsing and product management
type ProductService struct {
	products catalog.ProductRepository
	cache    catalog.ProductCache
	policy   *access.Policy
	metrics  *telemetry.BotMetrics
	logger   *zap.Logger
	pageSize int

	// sfg collapses concurrent loads of the same catalog page on a cache miss
	sfg singleflight.Group
}

// NewProductService creates a new ProductService
func NewProductService(
	products catalog.ProductRepository,
	cache catalog.ProductCache,
	policy *access.Policy,
	metrics *telemetry.BotMetrics,
	logger *zap.Logger,
	pageSize int,
) *ProductService {
	return &ProductService{
		products: products,
		cache:    cache,
		policy:   policy,
		metrics:  metrics,
		logger:   logger,
		pageSize: pageSize,
	}
}

// AddProduct adds a new product to the catalog. Only privileged actors may
// add products.
func (s *ProductService) AddProduct(ctx context.Context, actorID int64, req AddProductRequest) (*ProductResponse, error) {
	if err := s.policy.Authorize(actorID); err != nil {
		return nil, err
	}

	price, err := valueobject.NewMoneyFromString(req.Price)
	if err != nil {
		return nil, shared.NewValidationError("Product price must be a non-negative amount with at most two decimal places")
	}

	product, err := catalog.NewProduct(req.Title, req.Description, price.MinorUnits(), req.Image)
	if err != nil {
		return nil, err
	}

	if err := s.products.Create(ctx, product); err != nil {
		return nil, shared.NewPersistenceError("Failed to save product", err)
	}

	// Cache failures never fail the write path
	if err := s.cache.SetProduct(ctx, product); err != nil {
		s.logger.Warn("product cache write failed",
			zap.Int64("product_id", product.ID),
			zap.Error(err),
		)
	}
	if err := s.cache.InvalidatePages(ctx); err != nil {
		s.logger.Warn("catalog page invalidation failed", zap.Error(err))
	}

	s.logger.Info("product added",
		zap.Int64("product_id", product.ID),
		zap.Int64("actor_id", actorID),
		zap.String("title", product.Title),
	)

	resp := toProductResponse(product)
	return &resp, nil
}

// GetProduct returns a single product by id
func (s *ProductService) GetProduct(ctx context.Context, id int64) (*ProductResponse, error) {
	cached, err := s.cache.GetProduct(ctx, id)
	switch {
	case err != nil:
		s.metrics.RecordCacheEvent(telemetry.CacheBypass)
		s.logger.Warn("product cache read failed",
			zap.Int64("product_id", id),
			zap.Error(err),
		)
	case cached != nil:
		s.metrics.RecordCacheEvent(telemetry.CacheHit)
		resp := toProductResponse(cached)
		return &resp, nil
	default:
		s.metrics.RecordCacheEvent(telemetry.CacheMiss)
	}

	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, shared.NewPersistenceError("Failed to load product", err)
	}

	if err := s.cache.SetProduct(ctx, product); err != nil {
		s.logger.Warn("product cache write failed",
			zap.Int64("product_id", id),
			zap.Error(err),
		)
	}

	resp := toProductResponse(product)
	return &resp, nil
}

// ListProducts returns one catalog page, newest products first. Pages are
// zero-based; a page past the end of the catalog is empty, not an error.
func (s *ProductService) ListProducts(ctx context.Context, page int) (*CatalogPageResponse, error) {
	if page < 0 {
		return nil, shared.NewValidationError("Page must not be negative")
	}

	v, err, _ := s.sfg.Do(strconv.Itoa(page), func() (interface{}, error) {
		return s.loadPage(ctx, page)
	})
	if err != nil {
		return nil, err
	}
	return v.(*CatalogPageResponse), nil
}

// CountProducts returns the total number of products in the catalog
func (s *ProductService) CountProducts(ctx context.Context) (int64, error) {
	count, err := s.products.Count(ctx)
	if err != nil {
		return 0, shared.NewPersistenceError("Failed to count products", err)
	}
	return count, nil
}

func (s *ProductService) loadPage(ctx context.Context, page int) (*CatalogPageResponse, error) {
	products, err := s.cache.GetPage(ctx, page)
	switch {
	case err != nil:
		s.metrics.RecordCacheEvent(telemetry.CacheBypass)
		s.logger.Warn("catalog page cache read failed",
			zap.Int("page", page),
			zap.Error(err),
		)
	case products != nil:
		s.metrics.RecordCacheEvent(telemetry.CacheHit)
		return s.toPageResponse(page, products), nil
	default:
		s.metrics.RecordCacheEvent(telemetry.CacheMiss)
	}

	products, err = s.products.FindPage(ctx, page, s.pageSize)
	if err != nil {
		return nil, shared.NewPersistenceError("Failed to load catalog page", err)
	}

	if err := s.cache.SetPage(ctx, page, products); err != nil {
		s.logger.Warn("catalog page cache write failed",
			zap.Int("page", page),
			zap.Error(err),
		)
	}

	return s.toPageResponse(page, products), nil
}

func (s *ProductService) toPageResponse(page int, products []catalog.Product) *CatalogPageResponse {
	responses := make([]ProductResponse, 0, len(products))
	for i := range products {
		responses = append(responses, toProductResponse(&products[i]))
	}

	return &CatalogPageResponse{
		Products: responses,
		Page:     page,
		PageSize: s.pageSize,
		HasPrev:  page > 0,
		HasNext:  len(products) == s.pageSize,
	}
}
