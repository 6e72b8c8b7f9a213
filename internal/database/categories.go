package database

import (
	"context"

	"github.com/google/uuid"
)

const categoryColumns = `id, name, sort_order, created_at`

func scanCategory(row interface{ Scan(dest ...any) error }) (Category, error) {
	var c Category
	err := row.Scan(&c.ID, &c.Name, &c.SortOrder, &c.CreatedAt)
	return c, err
}

// ListCategories returns all categories ascending by position.
func (q *Queries) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := q.db.Query(ctx, `SELECT `+categoryColumns+` FROM categories ORDER BY sort_order ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// GetCategoryByName fetches a category record by its unique name.
func (q *Queries) GetCategoryByName(ctx context.Context, name string) (Category, error) {
	row := q.db.QueryRow(ctx, `SELECT `+categoryColumns+` FROM categories WHERE name = $1`, name)
	return scanCategory(row)
}

type CreateCategoryParams struct {
	Name      string
	SortOrder int32
}

// CreateCategory inserts a category record. A concurrent insert of the same
// name surfaces as a unique violation for the caller to treat as idempotent.
func (q *Queries) CreateCategory(ctx context.Context, arg CreateCategoryParams) (Category, error) {
	row := q.db.QueryRow(ctx, `
		INSERT INTO categories (name, sort_order)
		VALUES ($1, $2)
		RETURNING `+categoryColumns, arg.Name, arg.SortOrder)
	return scanCategory(row)
}

// MaxCategorySortOrder returns the highest category position, -1 when none exist.
func (q *Queries) MaxCategorySortOrder(ctx context.Context) (int32, error) {
	var max int32
	err := q.db.QueryRow(ctx, `SELECT COALESCE(MAX(sort_order), -1) FROM categories`).Scan(&max)
	return max, err
}

type UpdateCategorySortOrderParams struct {
	ID        uuid.UUID
	SortOrder int32
}

func (q *Queries) UpdateCategorySortOrder(ctx context.Context, arg UpdateCategorySortOrderParams) error {
	_, err := q.db.Exec(ctx, `UPDATE categories SET sort_order = $1 WHERE id = $2`, arg.SortOrder, arg.ID)
	return err
}

type RenameCategoryParams struct {
	OldName string
	NewName string
}

// RenameCategory renames the category record only; the product cascade is a
// separate write (see service.CatalogService.RenameCategory).
func (q *Queries) RenameCategory(ctx context.Context, arg RenameCategoryParams) (Category, error) {
	row := q.db.QueryRow(ctx, `
		UPDATE categories SET name = $1 WHERE name = $2
		RETURNING `+categoryColumns, arg.NewName, arg.OldName)
	return scanCategory(row)
}

// DeleteCategoryByName removes a category record, returning its id
// (pgx.ErrNoRows if absent).
func (q *Queries) DeleteCategoryByName(ctx context.Context, name string) (uuid.UUID, error) {
	var deleted uuid.UUID
	err := q.db.QueryRow(ctx, `DELETE FROM categories WHERE name = $1 RETURNING id`, name).Scan(&deleted)
	return deleted, err
}
