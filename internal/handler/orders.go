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
	"github.com/foushack-pos/api/internal/service"
)

// recentOrdersLimit caps the order board at the newest sales.
const recentOrdersLimit = 50

// OrderStore defines the database methods the order handlers call directly.
// Satisfied by *database.Queries; narrow interface for testability.
type OrderStore interface {
	ListRecentOrders(ctx context.Context, limit int32) ([]database.Order, error)
	ListOrderItems(ctx context.Context, orderID uuid.UUID) ([]database.OrderItem, error)
	SetOrderHighlight(ctx context.Context, arg database.SetOrderHighlightParams) (database.Order, error)
}

// OrderHandler handles checkout and order board endpoints.
type OrderHandler struct {
	store  OrderStore
	orders *service.OrderService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(store OrderStore, orders *service.OrderService) *OrderHandler {
	return &OrderHandler{store: store, orders: orders}
}

// RegisterRoutes registers order endpoints on the given Chi router.
// Expected to be mounted at /orders.
func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Put("/{id}/highlight", h.Highlight)
	r.Delete("/{id}", h.Delete)
	r.Delete("/", h.DeleteAll)
}

// --- Request / Response types ---

type createOrderRequest struct {
	OrderType     string                   `json:"order_type"`
	PaymentMethod string                   `json:"payment_method"`
	Items         []createOrderItemRequest `json:"items"`
}

type createOrderItemRequest struct {
	ProductID string `json:"product_id"`
	Qty       int32  `json:"qty"`
}

type highlightOrderRequest struct {
	IsHighlighted bool `json:"is_highlighted"`
}

type orderItemResponse struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	Qty         int32           `json:"qty"`
	Price       decimal.Decimal `json:"price"`
	TotalPrice  decimal.Decimal `json:"total_price"`
}

type orderResponse struct {
	ID            uuid.UUID           `json:"id"`
	OrderType     string              `json:"order_type"`
	PaymentMethod *string             `json:"payment_method"`
	TotalPrice    decimal.Decimal     `json:"total_price"`
	IsHighlighted bool                `json:"is_highlighted"`
	CreatedAt     time.Time           `json:"created_at"`
	Items         []orderItemResponse `json:"items"`
}

func toOrderResponse(o database.Order, items []database.OrderItem) orderResponse {
	resp := orderResponse{
		ID:            o.ID,
		OrderType:     o.OrderType,
		TotalPrice:    o.TotalPrice,
		IsHighlighted: o.IsHighlighted,
		CreatedAt:     o.CreatedAt,
		Items:         make([]orderItemResponse, len(items)),
	}
	if o.PaymentMethod.Valid {
		resp.PaymentMethod = &o.PaymentMethod.String
	}
	for i, it := range items {
		resp.Items[i] = orderItemResponse{
			ID:          it.ID,
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Qty:         it.Qty,
			Price:       it.Price,
			TotalPrice:  it.TotalPrice,
		}
	}
	return resp
}

// --- Handlers ---

// List returns the newest orders with their line items, newest first.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	orders, err := h.store.ListRecentOrders(r.Context(), recentOrdersLimit)
	if err != nil {
		log.Printf("ERROR: list orders: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]orderResponse, 0, len(orders))
	for _, o := range orders {
		items, err := h.store.ListOrderItems(r.Context(), o.ID)
		if err != nil {
			log.Printf("ERROR: list order items: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
			return
		}
		resp = append(resp, toOrderResponse(o, items))
	}
	writeJSON(w, http.StatusOK, resp)
}

// Create performs checkout: snapshots prices, writes the order and bumps the
// sales counters of the purchased products.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	items := make([]service.CreateOrderItemRequest, len(req.Items))
	for i, it := range req.Items {
		productID, err := uuid.Parse(it.ProductID)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid product_id"})
			return
		}
		items[i] = service.CreateOrderItemRequest{ProductID: productID, Qty: it.Qty}
	}

	result, err := h.orders.Create(r.Context(), service.CreateOrderRequest{
		OrderType:     req.OrderType,
		PaymentMethod: req.PaymentMethod,
		Items:         items,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidOrderType),
			errors.Is(err, service.ErrInvalidPaymentMethod),
			errors.Is(err, service.ErrEmptyItems),
			errors.Is(err, service.ErrInvalidQuantity):
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		case errors.Is(err, service.ErrProductNotFound):
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "product not found"})
		default:
			log.Printf("ERROR: create order: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		}
		return
	}

	writeJSON(w, http.StatusCreated, toOrderResponse(result.Order, result.Items))
}

// Highlight flips the yellow marker on an order.
func (h *OrderHandler) Highlight(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return
	}

	var req highlightOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	order, err := h.store.SetOrderHighlight(r.Context(), database.SetOrderHighlightParams{
		ID:            id,
		IsHighlighted: req.IsHighlighted,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
			return
		}
		log.Printf("ERROR: highlight order: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	items, err := h.store.ListOrderItems(r.Context(), order.ID)
	if err != nil {
		log.Printf("ERROR: list order items: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(order, items))
}

// Delete voids one order. With ?revert=true the counters the order bumped are
// decremented back first.
func (h *OrderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return
	}

	revert := r.URL.Query().Get("revert") == "true"
	if err := h.orders.Void(r.Context(), id, revert); err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
			return
		}
		log.Printf("ERROR: void order: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DeleteAll voids every order, optionally reverting counters.
func (h *OrderHandler) DeleteAll(w http.ResponseWriter, r *http.Request) {
	revert := r.URL.Query().Get("revert") == "true"

	deleted, err := h.orders.VoidAll(r.Context(), revert)
	if err != nil {
		log.Printf("ERROR: void all orders: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{"deleted": deleted})
}
