package domain

import "time"

// Buyer is the customer attached to an order.
type Buyer struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
	Email     string `json:"email"`
}

// Order is one purchase imported from the storefront.
type Order struct {
	ID             int64      `json:"id"`
	ShopifyOrderID string     `json:"shopify_order_id"`
	Confirmed      bool       `json:"confirmed"`
	TotalPrice     string     `json:"total_price"`
	TotalDiscounts string     `json:"total_discounts"`
	CancelledAt    *time.Time `json:"cancelled_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	Buyer          Buyer      `json:"buyer"`
}

// LineItem is one purchased protocol variant within an order.
type LineItem struct {
	ID           int64   `json:"id"`
	ProductID    int64   `json:"product_id"`
	Title        string  `json:"title"`
	VariantTitle string  `json:"variant_title"`
	Quantity     int     `json:"quantity"`
	Price        float64 `json:"price"`
	Order        Order   `json:"order"`
}
