package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

const orderColumns = `id, order_type, payment_method, total_price, is_highlighted, created_at`

func scanOrder(row interface{ Scan(dest ...any) error }) (Order, error) {
	var o Order
	err := row.Scan(&o.ID, &o.OrderType, &o.PaymentMethod, &o.TotalPrice, &o.IsHighlighted, &o.CreatedAt)
	return o, err
}

type CreateOrderParams struct {
	OrderType     string
	PaymentMethod pgtype.Text
	TotalPrice    decimal.Decimal
}

func (q *Queries) CreateOrder(ctx context.Context, arg CreateOrderParams) (Order, error) {
	row := q.db.QueryRow(ctx, `
		INSERT INTO orders (order_type, payment_method, total_price)
		VALUES ($1, $2, $3)
		RETURNING `+orderColumns, arg.OrderType, arg.PaymentMethod, arg.TotalPrice)
	return scanOrder(row)
}

type CreateOrderItemParams struct {
	OrderID     uuid.UUID
	ProductID   uuid.UUID
	ProductName string
	Qty         int32
	Price       decimal.Decimal
	TotalPrice  decimal.Decimal
}

func (q *Queries) CreateOrderItem(ctx context.Context, arg CreateOrderItemParams) (OrderItem, error) {
	row := q.db.QueryRow(ctx, `
		INSERT INTO order_items (order_id, product_id, product_name, qty, price, total_price)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, order_id, product_id, product_name, qty, price, total_price`,
		arg.OrderID, arg.ProductID, arg.ProductName, arg.Qty, arg.Price, arg.TotalPrice)
	var it OrderItem
	err := row.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.ProductName, &it.Qty, &it.Price, &it.TotalPrice)
	return it, err
}

// GetOrder fetches a single order by id.
func (q *Queries) GetOrder(ctx context.Context, id uuid.UUID) (Order, error) {
	row := q.db.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	return scanOrder(row)
}

// ListRecentOrders returns the newest orders first, capped at limit.
func (q *Queries) ListRecentOrders(ctx context.Context, limit int32) ([]Order, error) {
	rows, err := q.db.Query(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectOrders(rows)
}

// ListAllOrders returns every order, newest first.
func (q *Queries) ListAllOrders(ctx context.Context) ([]Order, error) {
	rows, err := q.db.Query(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectOrders(rows)
}

func collectOrders(rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}) ([]Order, error) {
	var orders []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// ListOrderItems returns an order's line items.
func (q *Queries) ListOrderItems(ctx context.Context, orderID uuid.UUID) ([]OrderItem, error) {
	rows, err := q.db.Query(ctx, `
		SELECT id, order_id, product_id, product_name, qty, price, total_price
		FROM order_items WHERE order_id = $1`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []OrderItem
	for rows.Next() {
		var it OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.ProductName, &it.Qty, &it.Price, &it.TotalPrice); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

type SetOrderHighlightParams struct {
	ID            uuid.UUID
	IsHighlighted bool
}

// SetOrderHighlight flips the yellow-highlight flag on an order.
func (q *Queries) SetOrderHighlight(ctx context.Context, arg SetOrderHighlightParams) (Order, error) {
	row := q.db.QueryRow(ctx, `
		UPDATE orders SET is_highlighted = $1 WHERE id = $2
		RETURNING `+orderColumns, arg.IsHighlighted, arg.ID)
	return scanOrder(row)
}

// DeleteOrder removes an order (items cascade), returning its id.
func (q *Queries) DeleteOrder(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	var deleted uuid.UUID
	err := q.db.QueryRow(ctx, `DELETE FROM orders WHERE id = $1 RETURNING id`, id).Scan(&deleted)
	return deleted, err
}
