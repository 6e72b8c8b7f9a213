package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/foushack-pos/api/internal/database"
)

// Errors returned by the reorder service.
var (
	ErrDraggedNotInPartition = errors.New("dragged item not found in partition")
	ErrTargetNotInPartition  = errors.New("target item not found in partition")
)

// ReorderStore defines the DB methods needed to relocate items.
// Satisfied by *database.Queries.
type ReorderStore interface {
	ListProductsByCategory(ctx context.Context, category string) ([]database.Product, error)
	UpdateProductSortOrder(ctx context.Context, arg database.UpdateProductSortOrderParams) error
	ListCategories(ctx context.Context) ([]database.Category, error)
	UpdateCategorySortOrder(ctx context.Context, arg database.UpdateCategorySortOrderParams) error
}

// ReorderService relocates one item to another item's position and renumbers
// the whole partition densely (0..n-1, no gaps, no duplicates).
//
// Partitions: each product category is its own partition; the category list
// is a single global partition. A per-partition mutex serializes concurrent
// drags on the same partition so interleaved read-renumber-write sequences
// cannot corrupt the dense ordering.
type ReorderService struct {
	store    ReorderStore
	notifier Notifier

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewReorderService creates a new ReorderService.
func NewReorderService(store ReorderStore, notifier Notifier) *ReorderService {
	return &ReorderService{
		store:    store,
		notifier: notifier,
		locks:    make(map[string]*sync.Mutex),
	}
}

// partitionLock returns the mutex guarding one partition, creating it on
// first use. Keys are prefixed so a category named "categories" cannot
// collide with the global category partition.
func (s *ReorderService) partitionLock(key string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[key]
	if !ok {
		l = &sync.Mutex{}
		s.locks[key] = l
	}
	return l
}

// spliceMove removes the element at from and reinserts it at the index to
// held in the already-shifted slice. This mirrors list-splice drag semantics:
// dragging an earlier item onto a later one lands it at the target's original
// slot, with everything between shifted left by one.
func spliceMove[T any](items []T, from, to int) []T {
	moved := items[from]
	rest := make([]T, 0, len(items))
	rest = append(rest, items[:from]...)
	rest = append(rest, items[from+1:]...)

	result := make([]T, 0, len(items))
	result = append(result, rest[:to]...)
	result = append(result, moved)
	result = append(result, rest[to:]...)
	return result
}

// ReorderProducts moves draggedID to targetID's position within category and
// rewrites the sort order of every product whose position changed.
// Both ids must currently belong to the category.
func (s *ReorderService) ReorderProducts(ctx context.Context, category string, draggedID, targetID uuid.UUID) error {
	if draggedID == targetID {
		return nil
	}

	lock := s.partitionLock("products/" + category)
	lock.Lock()
	defer lock.Unlock()

	products, err := s.store.ListProductsByCategory(ctx, category)
	if err != nil {
		return fmt.Errorf("list products in %q: %w", category, err)
	}

	draggedIdx, targetIdx := -1, -1
	for i, p := range products {
		switch p.ID {
		case draggedID:
			draggedIdx = i
		case targetID:
			targetIdx = i
		}
	}
	if draggedIdx == -1 {
		return ErrDraggedNotInPartition
	}
	if targetIdx == -1 {
		return ErrTargetNotInPartition
	}

	reordered := spliceMove(products, draggedIdx, targetIdx)
	for i, p := range reordered {
		if p.SortOrder == int32(i) {
			continue
		}
		err := s.store.UpdateProductSortOrder(ctx, database.UpdateProductSortOrderParams{
			ID:        p.ID,
			SortOrder: int32(i),
		})
		if err != nil {
			return fmt.Errorf("update sort order for product %s: %w", p.ID, err)
		}
	}

	s.notifier.Publish(EventProductsReordered, map[string]string{"category": category})
	return nil
}

// CompactProducts renumbers a category's products to 0..n-1, preserving
// relative order. Called after a removal punches a hole in the sequence; runs
// under the same partition lock as drags so a concurrent reorder never sees
// half-renumbered state.
func (s *ReorderService) CompactProducts(ctx context.Context, category string) error {
	lock := s.partitionLock("products/" + category)
	lock.Lock()
	defer lock.Unlock()

	products, err := s.store.ListProductsByCategory(ctx, category)
	if err != nil {
		return fmt.Errorf("list products in %q: %w", category, err)
	}
	for i, p := range products {
		if p.SortOrder == int32(i) {
			continue
		}
		err := s.store.UpdateProductSortOrder(ctx, database.UpdateProductSortOrderParams{
			ID:        p.ID,
			SortOrder: int32(i),
		})
		if err != nil {
			return fmt.Errorf("update sort order for product %s: %w", p.ID, err)
		}
	}
	return nil
}

// CompactCategories renumbers the global category list to 0..n-1 after a
// category removal.
func (s *ReorderService) CompactCategories(ctx context.Context) error {
	lock := s.partitionLock("categories")
	lock.Lock()
	defer lock.Unlock()

	categories, err := s.store.ListCategories(ctx)
	if err != nil {
		return fmt.Errorf("list categories: %w", err)
	}
	for i, c := range categories {
		if c.SortOrder == int32(i) {
			continue
		}
		err := s.store.UpdateCategorySortOrder(ctx, database.UpdateCategorySortOrderParams{
			ID:        c.ID,
			SortOrder: int32(i),
		})
		if err != nil {
			return fmt.Errorf("update sort order for category %q: %w", c.Name, err)
		}
	}
	return nil
}

// ReorderCategories moves draggedName to targetName's position in the global
// category list. Both names must refer to existing categories.
func (s *ReorderService) ReorderCategories(ctx context.Context, draggedName, targetName string) error {
	if draggedName == targetName {
		return nil
	}

	lock := s.partitionLock("categories")
	lock.Lock()
	defer lock.Unlock()

	categories, err := s.store.ListCategories(ctx)
	if err != nil {
		return fmt.Errorf("list categories: %w", err)
	}

	draggedIdx, targetIdx := -1, -1
	for i, c := range categories {
		switch c.Name {
		case draggedName:
			draggedIdx = i
		case targetName:
			targetIdx = i
		}
	}
	if draggedIdx == -1 {
		return ErrDraggedNotInPartition
	}
	if targetIdx == -1 {
		return ErrTargetNotInPartition
	}

	reordered := spliceMove(categories, draggedIdx, targetIdx)
	for i, c := range reordered {
		if c.SortOrder == int32(i) {
			continue
		}
		err := s.store.UpdateCategorySortOrder(ctx, database.UpdateCategorySortOrderParams{
			ID:        c.ID,
			SortOrder: int32(i),
		})
		if err != nil {
			return fmt.Errorf("update sort order for category %q: %w", c.Name, err)
		}
	}

	s.notifier.Publish(EventCategoriesReordered, nil)
	return nil
}
