package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// Product is a menu item with its per-day stock counters.
// Category is a denormalized string, not a foreign key: category renames
// propagate by string equality across this column.
type Product struct {
	ID        uuid.UUID
	Name      string
	Category  string
	SortOrder int32
	Stock     int32
	Admin     int32
	Chef      int32
	Sales     int32
	Zomato    int32
	Price     decimal.Decimal
	CreatedAt time.Time
}

// Category carries the display position of a category tab.
// Rows exist exactly while some product references the name, except during
// the documented non-atomic rename/delete windows.
type Category struct {
	ID        uuid.UUID
	Name      string
	SortOrder int32
	CreatedAt time.Time
}

// Order is a completed sale. PaymentMethod is null for ZOMATO orders.
type Order struct {
	ID            uuid.UUID
	OrderType     string
	PaymentMethod pgtype.Text
	TotalPrice    decimal.Decimal
	IsHighlighted bool
	CreatedAt     time.Time
}

// OrderItem snapshots name and unit price at checkout time.
type OrderItem struct {
	ID          uuid.UUID
	OrderID     uuid.UUID
	ProductID   uuid.UUID
	ProductName string
	Qty         int32
	Price       decimal.Decimal
	TotalPrice  decimal.Decimal
}
