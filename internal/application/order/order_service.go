package order

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/shopbot/backend/internal/domain/access"
	"github.com/shopbot/backend/internal/domain/order"
	"github.com/shopbot/backend/internal/domain/shared"
)

// OrderService provides read access to the order ledger
type OrderService struct {
	orders order.OrderRepository
	policy *access.Policy
	logger *zap.Logger
}

// NewOrderService creates a new OrderService
func NewOrderService(orders order.OrderRepository, policy *access.Policy, logger *zap.Logger) *OrderService {
	return &OrderService{
		orders: orders,
		policy: policy,
		logger: logger,
	}
}

// ListOrders returns every order, newest first. Privileged actors only;
// bounding the list for display is the caller's concern.
func (s *OrderService) ListOrders(ctx context.Context, actorID int64) ([]OrderResponse, error) {
	if err := s.policy.Authorize(actorID); err != nil {
		return nil, err
	}

	orders, err := s.orders.FindAll(ctx)
	if err != nil {
		return nil, shared.NewPersistenceError("Failed to load orders", err)
	}

	responses := make([]OrderResponse, 0, len(orders))
	for i := range orders {
		responses = append(responses, *NewOrderResponse(&orders[i]))
	}
	return responses, nil
}

// GetOrder returns a single order. The owner may view their own order;
// anyone else must be privileged.
func (s *OrderService) GetOrder(ctx context.Context, actorID, orderID int64) (*OrderResponse, error) {
	o, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, shared.NewPersistenceError("Failed to load order", err)
	}

	if o.UserID != actorID && !s.policy.IsPrivileged(actorID) {
		return nil, shared.ErrForbidden
	}

	return NewOrderResponse(o), nil
}
