package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/foushack-pos/api/internal/database"
	"github.com/foushack-pos/api/internal/service"
)

// CategoryStore defines the database methods the category handlers call
// directly. Satisfied by *database.Queries; narrow interface for testability.
type CategoryStore interface {
	ListCategories(ctx context.Context) ([]database.Category, error)
}

// CategoryHandler handles category tab endpoints.
type CategoryHandler struct {
	store   CategoryStore
	catalog *service.CatalogService
	reorder *service.ReorderService
}

// NewCategoryHandler creates a new CategoryHandler.
func NewCategoryHandler(store CategoryStore, catalog *service.CatalogService, reorder *service.ReorderService) *CategoryHandler {
	return &CategoryHandler{store: store, catalog: catalog, reorder: reorder}
}

// RegisterRoutes registers category endpoints on the given Chi router.
// Expected to be mounted at /categories.
func (h *CategoryHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/reorder", h.Reorder)
	r.Put("/{name}", h.Rename)
	r.Delete("/{name}", h.Delete)
}

// --- Request / Response types ---

type reorderCategoriesRequest struct {
	DraggedName string `json:"dragged_name"`
	TargetName  string `json:"target_name"`
}

type renameCategoryRequest struct {
	NewName string `json:"new_name"`
}

type categoryResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	SortOrder int32     `json:"sort_order"`
	CreatedAt time.Time `json:"created_at"`
}

func toCategoryResponse(c database.Category) categoryResponse {
	return categoryResponse{
		ID:        c.ID,
		Name:      c.Name,
		SortOrder: c.SortOrder,
		CreatedAt: c.CreatedAt,
	}
}

// --- Handlers ---

// List returns all category tabs in display order.
func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	categories, err := h.store.ListCategories(r.Context())
	if err != nil {
		log.Printf("ERROR: list categories: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]categoryResponse, len(categories))
	for i, c := range categories {
		resp[i] = toCategoryResponse(c)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Reorder moves one category tab onto another tab's slot.
func (h *CategoryHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	var req reorderCategoriesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	err := h.reorder.ReorderCategories(r.Context(), req.DraggedName, req.TargetName)
	if err != nil {
		if errors.Is(err, service.ErrDraggedNotInPartition) || errors.Is(err, service.ErrTargetNotInPartition) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "categories not found"})
			return
		}
		log.Printf("ERROR: reorder categories: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "categories reordered"})
}

// Rename renames a category and repoints every product in it.
func (h *CategoryHandler) Rename(w http.ResponseWriter, r *http.Request) {
	oldName := chi.URLParam(r, "name")

	var req renameCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	err := h.catalog.RenameCategory(r.Context(), oldName, req.NewName)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBlankName):
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "category name is required"})
		case errors.Is(err, service.ErrCategoryNotFound):
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "category not found"})
		case errors.Is(err, service.ErrCategoryExists):
			writeJSON(w, http.StatusConflict, map[string]string{"error": "category name already in use"})
		default:
			log.Printf("ERROR: rename category: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "category renamed"})
}

// Delete removes a category and every product in it.
func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	if err := h.catalog.DeleteCategory(r.Context(), name); err != nil {
		if errors.Is(err, service.ErrCategoryNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "category not found"})
			return
		}
		log.Printf("ERROR: delete category: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
