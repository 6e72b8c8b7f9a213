package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/foushack-pos/api/internal/database"
	"github.com/foushack-pos/api/internal/enum"
)

// Errors returned by the order service.
var (
	ErrEmptyItems           = errors.New("items are required")
	ErrInvalidOrderType     = errors.New("invalid order_type")
	ErrInvalidPaymentMethod = errors.New("invalid payment_method")
	ErrInvalidQuantity      = errors.New("quantity must be > 0")
	ErrOrderNotFound        = errors.New("order not found")
)

// TxBeginner starts a new database transaction.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// OrderStore defines the DB methods needed to create and void orders.
// Satisfied by *database.Queries (and its WithTx variant).
type OrderStore interface {
	GetProduct(ctx context.Context, id uuid.UUID) (database.Product, error)
	AdjustProductCounter(ctx context.Context, arg database.AdjustProductCounterParams) (database.Product, error)
	CreateOrder(ctx context.Context, arg database.CreateOrderParams) (database.Order, error)
	CreateOrderItem(ctx context.Context, arg database.CreateOrderItemParams) (database.OrderItem, error)
	GetOrder(ctx context.Context, id uuid.UUID) (database.Order, error)
	ListOrderItems(ctx context.Context, orderID uuid.UUID) ([]database.OrderItem, error)
	ListAllOrders(ctx context.Context) ([]database.Order, error)
	DeleteOrder(ctx context.Context, id uuid.UUID) (uuid.UUID, error)
}

// NewOrderStore creates an OrderStore from a DBTX (pool or tx).
// This allows the service to create store instances from transactions.
type NewOrderStore func(db database.DBTX) OrderStore

// CreateOrderRequest is the validated input for checkout.
type CreateOrderRequest struct {
	OrderType     string
	PaymentMethod string
	Items         []CreateOrderItemRequest
}

// CreateOrderItemRequest is a single cart line.
type CreateOrderItemRequest struct {
	ProductID uuid.UUID
	Qty       int32
}

// CreateOrderResult is the created order with its line items.
type CreateOrderResult struct {
	Order database.Order
	Items []database.OrderItem
}

// OrderService handles checkout and void logic.
type OrderService struct {
	pool     TxBeginner
	store    OrderStore
	newStore NewOrderStore
}

// NewOrderService creates a new OrderService. store must be pool-backed;
// newStore binds the same queries to a transaction.
func NewOrderService(pool TxBeginner, store OrderStore, newStore NewOrderStore) *OrderService {
	return &OrderService{pool: pool, store: store, newStore: newStore}
}

// counterForOrderType maps an order type to the product counter its sales
// flow through.
func counterForOrderType(orderType string) string {
	if orderType == enum.OrderTypeZomato {
		return enum.CounterZomato
	}
	return enum.CounterSales
}

// Create validates the cart, snapshots product names and prices, and writes
// the order, its items, and the per-product counter increments in one
// transaction. Increments are SQL-side deltas, never compute-then-overwrite.
func (s *OrderService) Create(ctx context.Context, req CreateOrderRequest) (*CreateOrderResult, error) {
	if req.OrderType != enum.OrderTypeDineIn && req.OrderType != enum.OrderTypeZomato {
		return nil, ErrInvalidOrderType
	}

	payment := pgtype.Text{}
	if req.OrderType == enum.OrderTypeDineIn && req.PaymentMethod != "" {
		if req.PaymentMethod != enum.PaymentMethodCash && req.PaymentMethod != enum.PaymentMethodUPI {
			return nil, ErrInvalidPaymentMethod
		}
		payment = pgtype.Text{String: req.PaymentMethod, Valid: true}
	}

	if len(req.Items) == 0 {
		return nil, ErrEmptyItems
	}
	for _, item := range req.Items {
		if item.Qty <= 0 {
			return nil, ErrInvalidQuantity
		}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)
	counter := counterForOrderType(req.OrderType)

	type pricedLine struct {
		product database.Product
		qty     int32
		total   decimal.Decimal
	}
	lines := make([]pricedLine, 0, len(req.Items))
	orderTotal := decimal.Zero
	for _, item := range req.Items {
		product, err := store.GetProduct(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, ErrProductNotFound
			}
			return nil, fmt.Errorf("lookup product %s: %w", item.ProductID, err)
		}
		lineTotal := product.Price.Mul(decimal.NewFromInt32(item.Qty))
		lines = append(lines, pricedLine{product: product, qty: item.Qty, total: lineTotal})
		orderTotal = orderTotal.Add(lineTotal)
	}

	order, err := store.CreateOrder(ctx, database.CreateOrderParams{
		OrderType:     req.OrderType,
		PaymentMethod: payment,
		TotalPrice:    orderTotal,
	})
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	items := make([]database.OrderItem, 0, len(lines))
	for _, line := range lines {
		item, err := store.CreateOrderItem(ctx, database.CreateOrderItemParams{
			OrderID:     order.ID,
			ProductID:   line.product.ID,
			ProductName: line.product.Name,
			Qty:         line.qty,
			Price:       line.product.Price,
			TotalPrice:  line.total,
		})
		if err != nil {
			return nil, fmt.Errorf("create order item for %s: %w", line.product.ID, err)
		}
		items = append(items, item)

		if _, err := store.AdjustProductCounter(ctx, database.AdjustProductCounterParams{
			ID:     line.product.ID,
			Field:  counter,
			Change: line.qty,
		}); err != nil {
			return nil, fmt.Errorf("bump %s for %s: %w", counter, line.product.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	return &CreateOrderResult{Order: order, Items: items}, nil
}

// Void deletes an order. When revertCounters is set, each line's quantity is
// subtracted back from the counter its order type incremented, through the
// same atomic-delta path. The revert and the delete are best-effort, not a
// transaction: a failure mid-sequence leaves earlier decrements in place.
func (s *OrderService) Void(ctx context.Context, id uuid.UUID, revertCounters bool) error {
	order, err := s.store.GetOrder(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrOrderNotFound
		}
		return fmt.Errorf("lookup order %s: %w", id, err)
	}

	if revertCounters {
		if err := s.revertOrderCounters(ctx, order); err != nil {
			return err
		}
	}

	if _, err := s.store.DeleteOrder(ctx, id); err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("delete order %s: %w", id, err)
	}
	return nil
}

// VoidAll deletes every order, optionally reverting counters first.
func (s *OrderService) VoidAll(ctx context.Context, revertCounters bool) (int, error) {
	orders, err := s.store.ListAllOrders(ctx)
	if err != nil {
		return 0, fmt.Errorf("list orders: %w", err)
	}

	deleted := 0
	for _, order := range orders {
		if revertCounters {
			if err := s.revertOrderCounters(ctx, order); err != nil {
				return deleted, err
			}
		}
		if _, err := s.store.DeleteOrder(ctx, order.ID); err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return deleted, fmt.Errorf("delete order %s: %w", order.ID, err)
		}
		deleted++
	}
	return deleted, nil
}

func (s *OrderService) revertOrderCounters(ctx context.Context, order database.Order) error {
	items, err := s.store.ListOrderItems(ctx, order.ID)
	if err != nil {
		return fmt.Errorf("list items for order %s: %w", order.ID, err)
	}
	counter := counterForOrderType(order.OrderType)
	for _, item := range items {
		_, err := s.store.AdjustProductCounter(ctx, database.AdjustProductCounterParams{
			ID:     item.ProductID,
			Field:  counter,
			Change: -item.Qty,
		})
		if err != nil {
			// The product may have been deleted since the sale; skip it.
			if errors.Is(err, pgx.ErrNoRows) {
				continue
			}
			return fmt.Errorf("revert %s for %s: %w", counter, item.ProductID, err)
		}
	}
	return nil
}
