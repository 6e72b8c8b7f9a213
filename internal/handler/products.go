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
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/foushack-pos/api/internal/database"
	"github.com/foushack-pos/api/internal/enum"
	"github.com/foushack-pos/api/internal/service"
)

// ProductStore defines the database methods the product handlers call
// directly. Satisfied by *database.Queries; narrow interface for testability.
type ProductStore interface {
	ListProducts(ctx context.Context) ([]database.Product, error)
	AdjustProductCounter(ctx context.Context, arg database.AdjustProductCounterParams) (database.Product, error)
	CloseDayProducts(ctx context.Context) error
	ResetProducts(ctx context.Context) error
}

// ProductHandler handles the stock-board product endpoints.
type ProductHandler struct {
	store   ProductStore
	catalog *service.CatalogService
	reorder *service.ReorderService
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(store ProductStore, catalog *service.CatalogService, reorder *service.ReorderService) *ProductHandler {
	return &ProductHandler{store: store, catalog: catalog, reorder: reorder}
}

// RegisterRoutes registers product endpoints on the given Chi router.
// Expected to be mounted at /products.
func (h *ProductHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Post("/bulk", h.BulkCreate)
	r.Post("/reorder", h.Reorder)
	r.Post("/close-day", h.CloseDay)
	r.Post("/reset", h.Reset)
	r.Post("/{id}/adjust", h.Adjust)
	r.Put("/{id}/name", h.Rename)
	r.Put("/{id}/price", h.Reprice)
	r.Delete("/{id}", h.Delete)
}

// --- Request / Response types ---

type createProductRequest struct {
	Name     string          `json:"name"`
	Category string          `json:"category"`
	Stock    int32           `json:"stock"`
	Price    decimal.Decimal `json:"price"`
}

type bulkCreateProductsRequest struct {
	Products []createProductRequest `json:"products"`
}

type reorderProductsRequest struct {
	Category  string `json:"category"`
	DraggedID string `json:"dragged_id"`
	TargetID  string `json:"target_id"`
}

type adjustProductRequest struct {
	Field  string `json:"field"`
	Change int32  `json:"change"`
}

type renameProductRequest struct {
	Name string `json:"name"`
}

type repriceProductRequest struct {
	Price decimal.Decimal `json:"price"`
}

type productResponse struct {
	ID        uuid.UUID       `json:"id"`
	Name      string          `json:"name"`
	Category  string          `json:"category"`
	SortOrder int32           `json:"sort_order"`
	Stock     int32           `json:"stock"`
	Admin     int32           `json:"admin"`
	Chef      int32           `json:"chef"`
	Sales     int32           `json:"sales"`
	Zomato    int32           `json:"zomato"`
	Price     decimal.Decimal `json:"price"`
	CreatedAt time.Time       `json:"created_at"`
}

func toProductResponse(p database.Product) productResponse {
	return productResponse{
		ID:        p.ID,
		Name:      p.Name,
		Category:  p.Category,
		SortOrder: p.SortOrder,
		Stock:     p.Stock,
		Admin:     p.Admin,
		Chef:      p.Chef,
		Sales:     p.Sales,
		Zomato:    p.Zomato,
		Price:     p.Price,
		CreatedAt: p.CreatedAt,
	}
}

// --- Handlers ---

// List returns the whole catalog sorted by category, then board position.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.store.ListProducts(r.Context())
	if err != nil {
		log.Printf("ERROR: list products: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]productResponse, len(products))
	for i, p := range products {
		resp[i] = toProductResponse(p)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Create adds a single product, implicitly creating its category tab.
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	product, err := h.catalog.AddProduct(r.Context(), service.AddProductParams{
		Name:     req.Name,
		Category: req.Category,
		Stock:    req.Stock,
		Price:    req.Price,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBlankName):
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "product name is required"})
		case errors.Is(err, service.ErrBlankCategory):
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "category is required"})
		case errors.Is(err, service.ErrNegativePrice):
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "price must not be negative"})
		default:
			log.Printf("ERROR: create product: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		}
		return
	}

	writeJSON(w, http.StatusCreated, toProductResponse(product))
}

// BulkCreate adds many products in one call.
func (h *ProductHandler) BulkCreate(w http.ResponseWriter, r *http.Request) {
	var req bulkCreateProductsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if len(req.Products) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "products are required"})
		return
	}

	rows := make([]service.AddProductParams, len(req.Products))
	for i, p := range req.Products {
		rows[i] = service.AddProductParams{
			Name:     p.Name,
			Category: p.Category,
			Stock:    p.Stock,
			Price:    p.Price,
		}
	}

	created, err := h.catalog.AddProducts(r.Context(), rows)
	if err != nil {
		log.Printf("ERROR: bulk create products: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]productResponse, len(created))
	for i, p := range created {
		resp[i] = toProductResponse(p)
	}
	writeJSON(w, http.StatusCreated, resp)
}

// Reorder moves one product onto another product's slot within a category.
func (h *ProductHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	var req reorderProductsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	draggedID, err := uuid.Parse(req.DraggedID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid dragged_id"})
		return
	}
	targetID, err := uuid.Parse(req.TargetID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid target_id"})
		return
	}

	err = h.reorder.ReorderProducts(r.Context(), req.Category, draggedID, targetID)
	if err != nil {
		if errors.Is(err, service.ErrDraggedNotInPartition) || errors.Is(err, service.ErrTargetNotInPartition) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "products not found"})
			return
		}
		log.Printf("ERROR: reorder products: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "products reordered"})
}

// Adjust applies a +/- delta to one of the product counters.
func (h *ProductHandler) Adjust(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid product ID"})
		return
	}

	var req adjustProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if !enum.IsCounterField(req.Field) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid counter field"})
		return
	}

	product, err := h.store.AdjustProductCounter(r.Context(), database.AdjustProductCounterParams{
		ID:     id,
		Field:  req.Field,
		Change: req.Change,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "product not found"})
			return
		}
		log.Printf("ERROR: adjust product counter: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toProductResponse(product))
}

// Rename sets a product's display name.
func (h *ProductHandler) Rename(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid product ID"})
		return
	}

	var req renameProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	product, err := h.catalog.RenameProduct(r.Context(), id, req.Name)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBlankName):
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "product name is required"})
		case errors.Is(err, service.ErrProductNotFound):
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "product not found"})
		default:
			log.Printf("ERROR: rename product: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		}
		return
	}

	writeJSON(w, http.StatusOK, toProductResponse(product))
}

// Reprice sets a product's unit price.
func (h *ProductHandler) Reprice(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid product ID"})
		return
	}

	var req repriceProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	product, err := h.catalog.RepriceProduct(r.Context(), id, req.Price)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNegativePrice):
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "valid price is required"})
		case errors.Is(err, service.ErrProductNotFound):
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "product not found"})
		default:
			log.Printf("ERROR: reprice product: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		}
		return
	}

	writeJSON(w, http.StatusOK, toProductResponse(product))
}

// Delete removes a product. When that empties its category, the response
// carries the removed category name in delete_category; otherwise the field
// is null.
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid product ID"})
		return
	}

	removedCategory, err := h.catalog.DeleteProduct(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "product not found"})
			return
		}
		log.Printf("ERROR: delete product: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := struct {
		Message        string  `json:"message"`
		DeleteCategory *string `json:"delete_category"`
	}{Message: "product deleted"}
	if removedCategory != "" {
		resp.DeleteCategory = &removedCategory
	}
	writeJSON(w, http.StatusOK, resp)
}

// CloseDay rolls prepared-but-unsold stock into the next day and zeroes the
// tap counters on every product.
func (h *ProductHandler) CloseDay(w http.ResponseWriter, r *http.Request) {
	if err := h.store.CloseDayProducts(r.Context()); err != nil {
		log.Printf("ERROR: close day: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "day finished, stock updated"})
}

// Reset zeroes stock and every counter on every product.
func (h *ProductHandler) Reset(w http.ResponseWriter, r *http.Request) {
	if err := h.store.ResetProducts(r.Context()); err != nil {
		log.Printf("ERROR: reset products: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "all products reset"})
}
