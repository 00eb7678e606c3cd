package checkout

import (
	"context"
	"sync"

	"go.uber.org/zap"

	orderapp "github.com/shopbot/backend/internal/application/order"
	"github.com/shopbot/backend/internal/domain/cart"
	"github.com/shopbot/backend/internal/domain/catalog"
	"github.com/shopbot/backend/internal/domain/order"
	"github.com/shopbot/backend/internal/domain/shared"
	"github.com/shopbot/backend/internal/infrastructure/telemetry"
)

// CheckoutService converts a user's cart into an immutable order. The cart
// read, the order write and the cart clear run under a per-user lock, so two
// concurrent checkouts for the same user cannot both convert the same cart:
// the second one observes the emptied cart and fails with shared.ErrEmptyCart.
type CheckoutService struct {
	lines    cart.CartRepository
	products catalog.ProductRepository
	orders   order.OrderRepository
	metrics  *telemetry.BotMetrics
	logger   *zap.Logger

	mu        sync.Mutex
	userLocks map[int64]*sync.Mutex
}

// NewCheckoutService creates a new CheckoutService
func NewCheckoutService(
	lines cart.CartRepository,
	products catalog.ProductRepository,
	orders order.OrderRepository,
	metrics *telemetry.BotMetrics,
	logger *zap.Logger,
) *CheckoutService {
	return &CheckoutService{
		lines:     lines,
		products:  products,
		orders:    orders,
		metrics:   metrics,
		logger:    logger,
		userLocks: make(map[int64]*sync.Mutex),
	}
}

// userLock returns the lock serializing checkouts for one user. Locks are
// created on first use and kept for the process lifetime; the footprint is
// one mutex per user that ever checked out.
func (s *CheckoutService) userLock(userID int64) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.userLocks[userID]
	if !ok {
		lock = &sync.Mutex{}
		s.userLocks[userID] = lock
	}
	return lock
}

// Checkout snapshots the user's cart into an order and clears the cart. The
// order write and the cart clear are one transaction: if the write fails the
// cart stays untouched. Lines whose product has disappeared are dropped the
// same way the cart view drops them; a cart with nothing left to convert
// fails with shared.ErrEmptyCart and has no side effects.
func (s *CheckoutService) Checkout(ctx context.Context, userID int64) (*orderapp.OrderResponse, error) {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	lines, err := s.lines.FindByUser(ctx, userID)
	if err != nil {
		return nil, shared.NewPersistenceError("Failed to load cart", err)
	}
	if len(lines) == 0 {
		return nil, shared.ErrEmptyCart
	}

	ids := make([]int64, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.ProductID)
	}

	products, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, shared.NewPersistenceError("Failed to resolve cart products", err)
	}

	items := make([]order.Item, 0, len(lines))
	for _, line := range lines {
		product, ok := products[line.ProductID]
		if !ok {
			s.logger.Warn("dropping cart line for missing product",
				zap.Int64("user_id", userID),
				zap.Int64("product_id", line.ProductID),
			)
			continue
		}

		item, err := order.NewItem(product.ID, product.Title, line.Quantity, product.Price)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	o, err := order.NewOrder(userID, items)
	if err != nil {
		return nil, err
	}

	if err := s.orders.CreateFromCart(ctx, o); err != nil {
		return nil, shared.NewPersistenceError("Failed to create order", err)
	}

	s.metrics.RecordOrder(o.Total.MinorUnits())
	s.logger.Info("order created",
		zap.Int64("order_id", o.ID),
		zap.Int64("user_id", userID),
		zap.Int64("total_minor_units", o.Total.MinorUnits()),
		zap.Int("item_count", len(o.Items)),
	)

	return orderapp.NewOrderResponse(o), nil
}
