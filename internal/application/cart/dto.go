package cart

// CartItemResponse is one cart line resolved against the catalog
type CartItemResponse struct {
	ProductID int64  `json:"product_id"`
	Title     string `json:"title"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
	Subtotal  string `json:"subtotal"`
}

// CartResponse is a user's cart with resolved products and a running total
type CartResponse struct {
	UserID int64              `json:"user_id"`
	Items  []CartItemResponse `json:"items"`
	Total  string             `json:"total"`
}

// IsEmpty reports whether the cart has no resolvable items
func (r *CartResponse) IsEmpty() bool {
	return len(r.Items) == 0
}
