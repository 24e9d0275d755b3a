package repo

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"server/internal/domain"
)

// OrderRepositoryPG implements domain.OrderRepository over the imported
// storefront tables (line_items, orders, buyers).
type OrderRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewOrderRepository creates a new order repository backed by PostgreSQL.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepositoryPG {
	return &OrderRepositoryPG{pool: pool}
}

const lineItemColumns = `
li.id, li.product_id, li.title, li.variant_title, li.quantity, li.price,
o.id, o.shopify_order_id, o.confirmed, o.total_price, o.total_discounts, o.cancelled_at, o.created_at,
b.first_name, b.last_name, b.phone, b.email
`

// ListLineItemsByProductIDs returns line items for any of the given storefront
// product ids, joined with their order and buyer.
func (r *OrderRepositoryPG) ListLineItemsByProductIDs(ctx context.Context, productIDs []int64) ([]domain.LineItem, error) {
	if len(productIDs) == 0 {
		return nil, nil
	}
	query := `
SELECT ` + lineItemColumns + `
FROM line_items li
JOIN orders o ON o.id = li.order_id
JOIN buyers b ON b.id = o.buyer_id
WHERE li.product_id = ANY($1)
ORDER BY o.created_at DESC;
`
	rows, err := r.pool.Query(ctx, query, productIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanLineItems(rows)
}

// ListOrderItems returns every line item of one order.
func (r *OrderRepositoryPG) ListOrderItems(ctx context.Context, orderID int64) ([]domain.LineItem, error) {
	query := `
SELECT ` + lineItemColumns + `
FROM line_items li
JOIN orders o ON o.id = li.order_id
JOIN buyers b ON b.id = o.buyer_id
WHERE o.id = $1
ORDER BY li.id;
`
	rows, err := r.pool.Query(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanLineItems(rows)
}

func scanLineItems(rows pgx.Rows) ([]domain.LineItem, error) {
	var items []domain.LineItem
	for rows.Next() {
		var item domain.LineItem
		if err := rows.Scan(
			&item.ID,
			&item.ProductID,
			&item.Title,
			&item.VariantTitle,
			&item.Quantity,
			&item.Price,
			&item.Order.ID,
			&item.Order.ShopifyOrderID,
			&item.Order.Confirmed,
			&item.Order.TotalPrice,
			&item.Order.TotalDiscounts,
			&item.Order.CancelledAt,
			&item.Order.CreatedAt,
			&item.Order.Buyer.FirstName,
			&item.Order.Buyer.LastName,
			&item.Order.Buyer.Phone,
			&item.Order.Buyer.Email,
		); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
