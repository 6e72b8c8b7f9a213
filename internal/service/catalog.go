package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/foushack-pos/api/internal/database"
)

// Errors returned by the catalog service.
var (
	ErrBlankName        = errors.New("name must not be blank")
	ErrBlankCategory    = errors.New("category must not be blank")
	ErrNegativePrice    = errors.New("price must not be negative")
	ErrCategoryNotFound = errors.New("category not found")
	ErrCategoryExists   = errors.New("category name already in use")
	ErrProductNotFound  = errors.New("product not found")
)

// defaultPrice is applied when a product is added without a price.
var defaultPrice = decimal.NewFromInt(200)

// fallbackCategory receives bulk-added rows with no category of their own.
const fallbackCategory = "Uncategorized"

// CatalogStore defines the DB methods needed by the catalog service.
// Satisfied by *database.Queries.
type CatalogStore interface {
	GetCategoryByName(ctx context.Context, name string) (database.Category, error)
	CreateCategory(ctx context.Context, arg database.CreateCategoryParams) (database.Category, error)
	MaxCategorySortOrder(ctx context.Context) (int32, error)
	RenameCategory(ctx context.Context, arg database.RenameCategoryParams) (database.Category, error)
	DeleteCategoryByName(ctx context.Context, name string) (uuid.UUID, error)

	CreateProduct(ctx context.Context, arg database.CreateProductParams) (database.Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (database.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) (uuid.UUID, error)
	UpdateProductName(ctx context.Context, arg database.UpdateProductNameParams) (database.Product, error)
	UpdateProductPrice(ctx context.Context, arg database.UpdateProductPriceParams) (database.Product, error)
	MaxProductSortOrder(ctx context.Context, category string) (int32, error)
	CountProductsByCategory(ctx context.Context, category string) (int64, error)
	UpdateProductsCategory(ctx context.Context, arg database.UpdateProductsCategoryParams) (int64, error)
	DeleteProductsByCategory(ctx context.Context, category string) (int64, error)
}

// CatalogService keeps the category collection consistent with the set of
// categories products actually reference, and owns product lifecycle.
//
// Category rows are authoritative state with explicit lifecycle operations:
// every create and delete routes through here so the two collections can only
// diverge inside the documented non-atomic write windows.
type CatalogService struct {
	store    CatalogStore
	reorder  *ReorderService
	notifier Notifier
}

// NewCatalogService creates a new CatalogService. The reorder service renumbers
// partitions after deletes, so both must sit on the same database.
func NewCatalogService(store CatalogStore, reorder *ReorderService, notifier Notifier) *CatalogService {
	return &CatalogService{store: store, reorder: reorder, notifier: notifier}
}

// AddProductParams is the input for adding one product.
type AddProductParams struct {
	Name     string
	Category string
	Stock    int32
	Price    decimal.Decimal
}

// EnsureCategory creates the category record iff it does not exist, at
// position max+1 (0 for the first category). Idempotent; reports whether a
// record was created.
func (s *CatalogService) EnsureCategory(ctx context.Context, name string) (bool, error) {
	_, err := s.store.GetCategoryByName(ctx, name)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return false, fmt.Errorf("lookup category %q: %w", name, err)
	}

	maxOrder, err := s.store.MaxCategorySortOrder(ctx)
	if err != nil {
		return false, fmt.Errorf("max category order: %w", err)
	}

	_, err = s.store.CreateCategory(ctx, database.CreateCategoryParams{
		Name:      name,
		SortOrder: maxOrder + 1,
	})
	if err != nil {
		// A concurrent add of the same category won the race; that still
		// satisfies "ensure".
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return false, nil
		}
		return false, fmt.Errorf("create category %q: %w", name, err)
	}
	return true, nil
}

// AddProduct validates, ensures the category record, and creates the product
// at the end of its category (sort order max+1). A zero price falls back to
// the house default.
func (s *CatalogService) AddProduct(ctx context.Context, arg AddProductParams) (database.Product, error) {
	name := strings.TrimSpace(arg.Name)
	if name == "" {
		return database.Product{}, ErrBlankName
	}
	category := strings.TrimSpace(arg.Category)
	if category == "" {
		return database.Product{}, ErrBlankCategory
	}
	if arg.Price.IsNegative() {
		return database.Product{}, ErrNegativePrice
	}
	price := arg.Price
	if price.IsZero() {
		price = defaultPrice
	}

	if _, err := s.EnsureCategory(ctx, category); err != nil {
		return database.Product{}, err
	}

	maxOrder, err := s.store.MaxProductSortOrder(ctx, category)
	if err != nil {
		return database.Product{}, fmt.Errorf("max product order in %q: %w", category, err)
	}

	product, err := s.store.CreateProduct(ctx, database.CreateProductParams{
		Name:      name,
		Category:  category,
		SortOrder: maxOrder + 1,
		Stock:     arg.Stock,
		Price:     price,
	})
	if err != nil {
		return database.Product{}, fmt.Errorf("create product %q: %w", name, err)
	}
	return product, nil
}

// AddProducts bulk-adds already-parsed rows. Rows with a blank name are
// skipped; rows with a blank category land in the fallback category. Rows
// sharing a new category are appended in input order (0, 1, 2, …).
func (s *CatalogService) AddProducts(ctx context.Context, rows []AddProductParams) ([]database.Product, error) {
	created := make([]database.Product, 0, len(rows))
	for _, row := range rows {
		if strings.TrimSpace(row.Category) == "" {
			row.Category = fallbackCategory
		}
		if strings.TrimSpace(row.Name) == "" {
			continue
		}
		product, err := s.AddProduct(ctx, row)
		if err != nil {
			return created, err
		}
		created = append(created, product)
	}
	return created, nil
}

// RenameCategory renames the category record and repoints every product whose
// category string equals the old name. The two writes are not atomic: a crash
// in between leaves products pointing at the old name (accepted gap).
func (s *CatalogService) RenameCategory(ctx context.Context, oldName, newName string) error {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return ErrBlankName
	}
	if oldName == newName {
		return nil
	}

	if _, err := s.store.RenameCategory(ctx, database.RenameCategoryParams{
		OldName: oldName,
		NewName: newName,
	}); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrCategoryNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrCategoryExists
		}
		return fmt.Errorf("rename category %q: %w", oldName, err)
	}

	if _, err := s.store.UpdateProductsCategory(ctx, database.UpdateProductsCategoryParams{
		OldName: oldName,
		NewName: newName,
	}); err != nil {
		return fmt.Errorf("repoint products from %q to %q: %w", oldName, newName, err)
	}

	s.notifier.Publish(EventCategoryUpdated, map[string]string{
		"oldName": oldName,
		"newName": newName,
	})
	return nil
}

// DeleteCategory is the explicit cascade: every product in the category is
// deleted, then the category record itself, and the remaining tabs are
// renumbered so their positions stay 0..n-1. Deleting a category that has no
// record fails with ErrCategoryNotFound; an existing but empty category
// deletes cleanly.
func (s *CatalogService) DeleteCategory(ctx context.Context, name string) error {
	if _, err := s.store.GetCategoryByName(ctx, name); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrCategoryNotFound
		}
		return fmt.Errorf("lookup category %q: %w", name, err)
	}

	if _, err := s.store.DeleteProductsByCategory(ctx, name); err != nil {
		return fmt.Errorf("delete products in %q: %w", name, err)
	}
	if _, err := s.store.DeleteCategoryByName(ctx, name); err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("delete category %q: %w", name, err)
	}
	if err := s.reorder.CompactCategories(ctx); err != nil {
		return err
	}

	s.notifier.Publish(EventCategoryDeleted, map[string]string{"name": name})
	return nil
}

// DeleteProduct removes one product and renumbers the survivors so the
// category's positions stay 0..n-1. When it was the last product of its
// category, the category record is removed too and its name is returned so
// the caller can tell clients which tab disappeared; otherwise the returned
// name is empty. This implicit cleanup never reports the category as missing.
func (s *CatalogService) DeleteProduct(ctx context.Context, id uuid.UUID) (string, error) {
	product, err := s.store.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrProductNotFound
		}
		return "", fmt.Errorf("lookup product %s: %w", id, err)
	}

	if _, err := s.store.DeleteProduct(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrProductNotFound
		}
		return "", fmt.Errorf("delete product %s: %w", id, err)
	}

	remaining, err := s.store.CountProductsByCategory(ctx, product.Category)
	if err != nil {
		return "", fmt.Errorf("count products in %q: %w", product.Category, err)
	}
	if remaining > 0 {
		if err := s.reorder.CompactProducts(ctx, product.Category); err != nil {
			return "", err
		}
		return "", nil
	}

	if _, err := s.store.DeleteCategoryByName(ctx, product.Category); err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return "", fmt.Errorf("delete emptied category %q: %w", product.Category, err)
	}
	if err := s.reorder.CompactCategories(ctx); err != nil {
		return "", err
	}

	s.notifier.Publish(EventCategoryDeleted, map[string]string{"name": product.Category})
	return product.Category, nil
}

// RenameProduct sets a product's display name.
func (s *CatalogService) RenameProduct(ctx context.Context, id uuid.UUID, name string) (database.Product, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return database.Product{}, ErrBlankName
	}
	product, err := s.store.UpdateProductName(ctx, database.UpdateProductNameParams{ID: id, Name: name})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.Product{}, ErrProductNotFound
		}
		return database.Product{}, fmt.Errorf("rename product %s: %w", id, err)
	}
	return product, nil
}

// RepriceProduct sets a product's unit price.
func (s *CatalogService) RepriceProduct(ctx context.Context, id uuid.UUID, price decimal.Decimal) (database.Product, error) {
	if price.IsNegative() {
		return database.Product{}, ErrNegativePrice
	}
	product, err := s.store.UpdateProductPrice(ctx, database.UpdateProductPriceParams{ID: id, Price: price})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.Product{}, ErrProductNotFound
		}
		return database.Product{}, fmt.Errorf("reprice product %s: %w", id, err)
	}
	return product, nil
}
