package order

import (
	"time"

	"github.com/shopbot/backend/internal/domain/order"
)

// OrderItemResponse is one item snapshot inside an order
type OrderItemResponse struct {
	ProductID int64  `json:"product_id"`
	Title     string `json:"title"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
	Subtotal  string `json:"subtotal"`
}

// OrderResponse represents an order in responses
type OrderResponse struct {
	ID        int64               `json:"id"`
	UserID    int64               `json:"user_id"`
	Items     []OrderItemResponse `json:"items"`
	Total     string              `json:"total"`
	Status    string              `json:"status"`
	CreatedAt time.Time           `json:"created_at"`
}

// NewOrderResponse converts a domain order into its response form
func NewOrderResponse(o *order.Order) *OrderResponse {
	items := make([]OrderItemResponse, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, OrderItemResponse{
			ProductID: item.ProductID,
			Title:     item.Title,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice.String(),
			Subtotal:  item.Subtotal().String(),
		})
	}

	return &OrderResponse{
		ID:        o.ID,
		UserID:    o.UserID,
		Items:     items,
		Total:     o.Total.String(),
		Status:    string(o.Status),
		CreatedAt: o.CreatedAt,
	}
}
