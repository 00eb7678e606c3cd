package cart

import (
	"context"
)

// CartRepository defines the interface for cart line persistence
type CartRepository interface {
	// Upsert adds the line's quantity to the (user, product) line, creating
	// it when absent. The merge must be atomic at the storage level so two
	// racing adds for the same key both land.
	Upsert(ctx context.Context, line *Line) error

	// Remove deletes the line if present. Removing an absent line is a no-op.
	Remove(ctx context.Context, userID, productID int64) error

	// FindByUser returns the user's lines in stable storage order
	// (ascending product id)
	FindByUser(ctx context.Context, userID int64) ([]Line, error)

	// Clear deletes all lines for the user; idempotent
	Clear(ctx context.Context, userID int64) error
}
