package order

import (
	"context"
)

// OrderRepository defines the interface for order persistence
type OrderRepository interface {
	// Create persists a new order and assigns its id
	Create(ctx context.Context, order *Order) error

	// CreateFromCart persists the order and clears the user's cart lines in
	// one transaction. No state where the order exists with a still-full
	// cart, or the cart is empty with no order, is ever observable.
	CreateFromCart(ctx context.Context, order *Order) error

	// FindByID finds an order by its ID.
	// Returns shared.ErrNotFound when no such order exists.
	FindByID(ctx context.Context, id int64) (*Order, error)

	// FindAll returns every order, newest first (descending id)
	FindAll(ctx context.Context) ([]Order, error)
}
