package cart

import (
	"context"
	"errors"

	"github.com/shopbot/backend/internal/domain/cart"
	"github.com/shopbot/backend/internal/domain/catalog"
	"github.com/shopbot/backend/internal/domain/shared"
	"github.com/shopbot/backend/internal/domain/shared/valueobject"
	"go.uber.org/zap"
)

// CartService handles per-user cart operations
type CartService struct {
	lines    cart.CartRepository
	products catalog.ProductRepository
	logger   *zap.Logger
}

// NewCartService creates a new CartService
func NewCartService(
	lines cart.CartRepository,
	products catalog.ProductRepository,
	logger *zap.Logger,
) *CartService {
	return &CartService{
		lines:    lines,
		products: products,
		logger:   logger,
	}
}

// AddToCart adds a quantity of a product to the user's cart. Adding the same
// product again merges quantities into the existing line.
func (s *CartService) AddToCart(ctx context.Context, userID, productID int64, quantity int) error {
	if err := cart.ValidateQuantity(quantity); err != nil {
		return err
	}

	if _, err := s.products.FindByID(ctx, productID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.ErrNotFound
		}
		return shared.NewPersistenceError("Failed to load product", err)
	}

	line, err := cart.NewLine(userID, productID, quantity)
	if err != nil {
		return err
	}

	if err := s.lines.Upsert(ctx, line); err != nil {
		return shared.NewPersistenceError("Failed to add product to cart", err)
	}

	s.logger.Debug("cart line upserted",
		zap.Int64("user_id", userID),
		zap.Int64("product_id", productID),
		zap.Int("quantity", quantity),
	)

	return nil
}

// RemoveFromCart removes the whole line for a product from the user's cart,
// regardless of its quantity. Removing an absent line is not an error.
func (s *CartService) RemoveFromCart(ctx context.Context, userID, productID int64) error {
	if err := s.lines.Remove(ctx, userID, productID); err != nil {
		return shared.NewPersistenceError("Failed to remove product from cart", err)
	}
	return nil
}

// GetCart returns the user's cart with lines resolved against the catalog.
// Lines whose product has disappeared are dropped from the view.
func (s *CartService) GetCart(ctx context.Context, userID int64) (*CartResponse, error) {
	lines, err := s.lines.FindByUser(ctx, userID)
	if err != nil {
		return nil, shared.NewPersistenceError("Failed to load cart", err)
	}

	resp := &CartResponse{
		UserID: userID,
		Items:  make([]CartItemResponse, 0, len(lines)),
		Total:  valueobject.Zero().String(),
	}
	if len(lines) == 0 {
		return resp, nil
	}

	ids := make([]int64, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.ProductID)
	}

	products, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, shared.NewPersistenceError("Failed to resolve cart products", err)
	}

	total := valueobject.Zero()
	for _, line := range lines {
		product, ok := products[line.ProductID]
		if !ok {
			s.logger.Warn("dropping cart line for missing product",
				zap.Int64("user_id", userID),
				zap.Int64("product_id", line.ProductID),
			)
			continue
		}

		subtotal := product.Price.MultiplyQuantity(line.Quantity)
		total = total.Add(subtotal)
		resp.Items = append(resp.Items, CartItemResponse{
			ProductID: line.ProductID,
			Title:     product.Title,
			Quantity:  line.Quantity,
			UnitPrice: product.Price.String(),
			Subtotal:  subtotal.String(),
		})
	}
	resp.Total = total.String()

	return resp, nil
}

// ClearCart removes every line from the user's cart. Clearing an empty cart
// is not an error.
func (s *CartService) ClearCart(ctx context.Context, userID int64) error {
	if err := s.lines.Clear(ctx, userID); err != nil {
		return shared.NewPersistenceError("Failed to clear cart", err)
	}
	return nil
}
