package catalog

import (
	"strings"
	"time"

	"github.com/shopbot/backend/internal/domain/shared"
	"github.com/shopbot/backend/internal/domain/shared/valueobject"
)

// Product represents one catalog entry
// It is immutable once created: the storefront defines no update or delete
// operation for products, and order snapshots copy its fields at checkout
type Product struct {
	ID          int64             `gorm:"primaryKey;autoIncrement"`
	Title       string            `gorm:"type:varchar(200);not null"`
	Description string            `gorm:"type:text"`
	Price       valueobject.Money `gorm:"type:integer;not null"`
	Image       string            `gorm:"type:text"`
	CreatedAt   time.Time
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// NewProduct creates a new product. The id is assigned by the store on create.
func NewProduct(title, description string, priceMinorUnits int64, image string) (*Product, error) {
	title = strings.TrimSpace(title)
	if err := validateTitle(title); err != nil {
		return nil, err
	}

	price, err := valueobject.NewMoney(priceMinorUnits)
	if err != nil {
		return nil, shared.NewValidationError("Product price cannot be negative")
	}

	return &Product{
		Title:       title,
		Description: strings.TrimSpace(description),
		Price:       price,
		Image:       strings.TrimSpace(image),
	}, nil
}

// validateTitle validates the product title
func validateTitle(title string) error {
	if title == "" {
		return shared.NewValidationError("Product title cannot be empty")
	}
	if len(title) > 200 {
		return shared.NewValidationError("Product title cannot exceed 200 characters")
	}
	return nil
}
