package order

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopbot/backend/internal/domain/shared"
	"github.com/shopbot/backend/internal/domain/shared/valueobject"
)

// Status represents the lifecycle state of an order
type Status string

const (
	// StatusNew is the only status assigned in-process. Progression beyond
	// it belongs to fulfilment tooling outside the storefront.
	StatusNew Status = "new"
)

// IsValid checks if the status is a known value
func (s Status) IsValid() bool {
	return s == StatusNew
}

// Item is a snapshot of one cart line taken at checkout time. It copies the
// product fields so later catalog changes never alter historical orders.
type Item struct {
	ProductID int64             `json:"product_id"`
	Title     string            `json:"title"`
	Quantity  int               `json:"quantity"`
	UnitPrice valueobject.Money `json:"unit_price"`
}

// NewItem creates an order item snapshot
func NewItem(productID int64, title string, quantity int, unitPrice valueobject.Money) (Item, error) {
	if title == "" {
		return Item{}, shared.NewValidationError("Order item title cannot be empty")
	}
	if quantity <= 0 {
		return Item{}, shared.NewValidationError("Order item quantity must be positive")
	}
	return Item{
		ProductID: productID,
		Title:     title,
		Quantity:  quantity,
		UnitPrice: unitPrice,
	}, nil
}

// Subtotal returns unit price times quantity
func (i Item) Subtotal() valueobject.Money {
	return i.UnitPrice.MultiplyQuantity(i.Quantity)
}

// Items is the ordered snapshot list persisted with an order.
// It serializes to a single JSON text column.
type Items []Item

// GormDataType tells GORM to store Items in a text column
func (Items) GormDataType() string {
	return "text"
}

// Value implements driver.Valuer for database storage
func (it Items) Value() (driver.Value, error) {
	data, err := json.Marshal(it)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements sql.Scanner for database retrieval
func (it *Items) Scan(value any) error {
	if value == nil {
		*it = nil
		return nil
	}

	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, it)
	case string:
		return json.Unmarshal([]byte(v), it)
	default:
		return fmt.Errorf("cannot scan %T into Items", value)
	}
}

// Order is the immutable record of a completed checkout. It is created by
// the checkout flow, never mutated or deleted afterwards.
type Order struct {
	ID        int64             `gorm:"primaryKey;autoIncrement"`
	UserID    int64             `gorm:"not null;index"`
	Items     Items             `gorm:"type:text;not null"`
	Total     valueobject.Money `gorm:"type:integer;not null"`
	Status    Status            `gorm:"type:varchar(20);not null;default:'new'"`
	CreatedAt time.Time
}

// TableName returns the table name for GORM
func (Order) TableName() string {
	return "orders"
}

// NewOrder builds an order from resolved cart line snapshots. The total is
// computed from the items so the stored value always matches the snapshot.
// An empty snapshot list fails with shared.ErrEmptyCart.
func NewOrder(userID int64, items []Item) (*Order, error) {
	if len(items) == 0 {
		return nil, shared.ErrEmptyCart
	}

	total := valueobject.Zero()
	for _, item := range items {
		total = total.Add(item.Subtotal())
	}

	return &Order{
		UserID: userID,
		Items:  items,
		Total:  total,
		Status: StatusNew,
	}, nil
}
