package cart

import (
	"time"

	"github.com/shopbot/backend/internal/domain/shared"
)

// Line is one cart entry for a user. At most one line exists per
// (user, product) pair; adding the same product again merges into the
// existing line's quantity instead of duplicating it.
//
// A line references its product by id only. The product may no longer
// resolve by the time the cart is read; such lines are treated as absent,
// never as an error.
type Line struct {
	UserID    int64 `gorm:"primaryKey;autoIncrement:false"`
	ProductID int64 `gorm:"primaryKey;autoIncrement:false"`
	Quantity  int   `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName returns the table name for GORM
func (Line) TableName() string {
	return "cart_lines"
}

// NewLine creates a cart line for an add-to-cart request
func NewLine(userID, productID int64, quantity int) (*Line, error) {
	if err := ValidateQuantity(quantity); err != nil {
		return nil, err
	}
	return &Line{
		UserID:    userID,
		ProductID: productID,
		Quantity:  quantity,
	}, nil
}

// ValidateQuantity rejects non-positive add amounts
func ValidateQuantity(quantity int) error {
	if quantity <= 0 {
		return shared.NewValidationError("Quantity must be a positive integer")
	}
	return nil
}
