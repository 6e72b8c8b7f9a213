package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/foushack-pos/api/internal/enum"
)

const productColumns = `id, name, category, sort_order, stock, admin, chef, sales, zomato, price, created_at`

func scanProduct(row interface{ Scan(dest ...any) error }) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.Name, &p.Category, &p.SortOrder, &p.Stock, &p.Admin,
		&p.Chef, &p.Sales, &p.Zomato, &p.Price, &p.CreatedAt)
	return p, err
}

type CreateProductParams struct {
	Name      string
	Category  string
	SortOrder int32
	Stock     int32
	Price     decimal.Decimal
}

// CreateProduct inserts a product with zeroed tap counters.
func (q *Queries) CreateProduct(ctx context.Context, arg CreateProductParams) (Product, error) {
	row := q.db.QueryRow(ctx, `
		INSERT INTO products (name, category, sort_order, stock, price)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+productColumns,
		arg.Name, arg.Category, arg.SortOrder, arg.Stock, arg.Price)
	return scanProduct(row)
}

// GetProduct fetches a single product by id.
func (q *Queries) GetProduct(ctx context.Context, id uuid.UUID) (Product, error) {
	row := q.db.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	return scanProduct(row)
}

// ListProducts returns the whole catalog in board order.
func (q *Queries) ListProducts(ctx context.Context) ([]Product, error) {
	rows, err := q.db.Query(ctx, `SELECT `+productColumns+` FROM products ORDER BY category ASC, sort_order ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// ListProductsByCategory returns one category's products ascending by position.
func (q *Queries) ListProductsByCategory(ctx context.Context, category string) ([]Product, error) {
	rows, err := q.db.Query(ctx, `SELECT `+productColumns+` FROM products WHERE category = $1 ORDER BY sort_order ASC`, category)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

type UpdateProductNameParams struct {
	ID   uuid.UUID
	Name string
}

func (q *Queries) UpdateProductName(ctx context.Context, arg UpdateProductNameParams) (Product, error) {
	row := q.db.QueryRow(ctx, `
		UPDATE products SET name = $1 WHERE id = $2
		RETURNING `+productColumns, arg.Name, arg.ID)
	return scanProduct(row)
}

type UpdateProductPriceParams struct {
	ID    uuid.UUID
	Price decimal.Decimal
}

func (q *Queries) UpdateProductPrice(ctx context.Context, arg UpdateProductPriceParams) (Product, error) {
	row := q.db.QueryRow(ctx, `
		UPDATE products SET price = $1 WHERE id = $2
		RETURNING `+productColumns, arg.Price, arg.ID)
	return scanProduct(row)
}

type UpdateProductSortOrderParams struct {
	ID        uuid.UUID
	SortOrder int32
}

func (q *Queries) UpdateProductSortOrder(ctx context.Context, arg UpdateProductSortOrderParams) error {
	_, err := q.db.Exec(ctx, `UPDATE products SET sort_order = $1 WHERE id = $2`, arg.SortOrder, arg.ID)
	return err
}

type AdjustProductCounterParams struct {
	ID     uuid.UUID
	Field  string
	Change int32
}

// AdjustProductCounter applies a counter delta in a single UPDATE so
// concurrent taps never lose increments. The column name is interpolated and
// therefore must pass the enum whitelist.
func (q *Queries) AdjustProductCounter(ctx context.Context, arg AdjustProductCounterParams) (Product, error) {
	if !enum.IsCounterField(arg.Field) {
		return Product{}, fmt.Errorf("invalid counter field %q", arg.Field)
	}
	sql := fmt.Sprintf(`UPDATE products SET %s = %s + $1 WHERE id = $2 RETURNING `+productColumns, arg.Field, arg.Field)
	row := q.db.QueryRow(ctx, sql, arg.Change, arg.ID)
	return scanProduct(row)
}

// DeleteProduct removes a product, returning its id (pgx.ErrNoRows if absent).
func (q *Queries) DeleteProduct(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	var deleted uuid.UUID
	err := q.db.QueryRow(ctx, `DELETE FROM products WHERE id = $1 RETURNING id`, id).Scan(&deleted)
	return deleted, err
}

// CountProductsByCategory reports how many products still reference a category.
func (q *Queries) CountProductsByCategory(ctx context.Context, category string) (int64, error) {
	var count int64
	err := q.db.QueryRow(ctx, `SELECT COUNT(*) FROM products WHERE category = $1`, category).Scan(&count)
	return count, err
}

// MaxProductSortOrder returns the highest position in a category, -1 when empty.
func (q *Queries) MaxProductSortOrder(ctx context.Context, category string) (int32, error) {
	var max int32
	err := q.db.QueryRow(ctx, `SELECT COALESCE(MAX(sort_order), -1) FROM products WHERE category = $1`, category).Scan(&max)
	return max, err
}

type UpdateProductsCategoryParams struct {
	OldName string
	NewName string
}

// UpdateProductsCategory repoints every product from one category name to
// another and returns how many rows moved.
func (q *Queries) UpdateProductsCategory(ctx context.Context, arg UpdateProductsCategoryParams) (int64, error) {
	tag, err := q.db.Exec(ctx, `UPDATE products SET category = $1 WHERE category = $2`, arg.NewName, arg.OldName)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// DeleteProductsByCategory removes every product in a category.
func (q *Queries) DeleteProductsByCategory(ctx context.Context, category string) (int64, error) {
	tag, err := q.db.Exec(ctx, `DELETE FROM products WHERE category = $1`, category)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// CloseDayProducts rolls unsold prepared stock into the next day:
// stock = stock + chef - sales - zomato, then all tap counters reset.
// Stock may legitimately go negative when more was sold than prepared.
func (q *Queries) CloseDayProducts(ctx context.Context) error {
	_, err := q.db.Exec(ctx, `
		UPDATE products
		SET stock = stock + chef - sales - zomato,
		    admin = 0, chef = 0, sales = 0, zomato = 0`)
	return err
}

// ResetProducts zeroes stock and every tap counter across the catalog.
func (q *Queries) ResetProducts(ctx context.Context) error {
	_, err := q.db.Exec(ctx, `
		UPDATE products
		SET stock = 0, admin = 0, chef = 0, sales = 0, zomato = 0`)
	return err
}
