package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/foushack-pos/api/internal/database"
	"github.com/foushack-pos/api/internal/enum"
	"github.com/foushack-pos/api/internal/service"
)

// memStore is an in-memory stand-in for *database.Queries. It satisfies every
// store interface the handlers and services consume, so one instance backs a
// whole test server.
type memStore struct {
	mu         sync.Mutex
	products   []database.Product
	categories []database.Category
	orders     []database.Order
	items      map[uuid.UUID][]database.OrderItem
}

func newMemStore() *memStore {
	return &memStore{items: make(map[uuid.UUID][]database.OrderItem)}
}

// --- products ---

func (m *memStore) ListProducts(context.Context) ([]database.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]database.Product, len(m.products))
	copy(result, m.products)
	sort.Slice(result, func(i, j int) bool {
		if result[i].Category != result[j].Category {
			return result[i].Category < result[j].Category
		}
		return result[i].SortOrder < result[j].SortOrder
	})
	return result, nil
}

func (m *memStore) ListProductsByCategory(_ context.Context, category string) ([]database.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []database.Product
	for _, p := range m.products {
		if p.Category == category {
			result = append(result, p)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].SortOrder < result[j].SortOrder })
	return result, nil
}

func (m *memStore) GetProduct(_ context.Context, id uuid.UUID) (database.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.products {
		if p.ID == id {
			return p, nil
		}
	}
	return database.Product{}, pgx.ErrNoRows
}

func (m *memStore) CreateProduct(_ context.Context, arg database.CreateProductParams) (database.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := database.Product{
		ID:        uuid.New(),
		Name:      arg.Name,
		Category:  arg.Category,
		SortOrder: arg.SortOrder,
		Stock:     arg.Stock,
		Price:     arg.Price,
	}
	m.products = append(m.products, p)
	return p, nil
}

func (m *memStore) DeleteProduct(_ context.Context, id uuid.UUID) (uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, p := range m.products {
		if p.ID == id {
			m.products = append(m.products[:i], m.products[i+1:]...)
			return id, nil
		}
	}
	return uuid.Nil, pgx.ErrNoRows
}

func (m *memStore) UpdateProductName(_ context.Context, arg database.UpdateProductNameParams) (database.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.products {
		if m.products[i].ID == arg.ID {
			m.products[i].Name = arg.Name
			return m.products[i], nil
		}
	}
	return database.Product{}, pgx.ErrNoRows
}

func (m *memStore) UpdateProductPrice(_ context.Context, arg database.UpdateProductPriceParams) (database.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.products {
		if m.products[i].ID == arg.ID {
			m.products[i].Price = arg.Price
			return m.products[i], nil
		}
	}
	return database.Product{}, pgx.ErrNoRows
}

func (m *memStore) UpdateProductSortOrder(_ context.Context, arg database.UpdateProductSortOrderParams) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.products {
		if m.products[i].ID == arg.ID {
			m.products[i].SortOrder = arg.SortOrder
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (m *memStore) AdjustProductCounter(_ context.Context, arg database.AdjustProductCounterParams) (database.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.products {
		if m.products[i].ID != arg.ID {
			continue
		}
		p := &m.products[i]
		switch arg.Field {
		case enum.CounterStock:
			p.Stock += arg.Change
		case enum.CounterAdmin:
			p.Admin += arg.Change
		case enum.CounterChef:
			p.Chef += arg.Change
		case enum.CounterSales:
			p.Sales += arg.Change
		case enum.CounterZomato:
			p.Zomato += arg.Change
		default:
			return database.Product{}, errors.New("unknown counter field")
		}
		return *p, nil
	}
	return database.Product{}, pgx.ErrNoRows
}

func (m *memStore) MaxProductSortOrder(_ context.Context, category string) (int32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	max := int32(-1)
	for _, p := range m.products {
		if p.Category == category && p.SortOrder > max {
			max = p.SortOrder
		}
	}
	return max, nil
}

func (m *memStore) CountProductsByCategory(_ context.Context, category string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, p := range m.products {
		if p.Category == category {
			n++
		}
	}
	return n, nil
}

func (m *memStore) UpdateProductsCategory(_ context.Context, arg database.UpdateProductsCategoryParams) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for i := range m.products {
		if m.products[i].Category == arg.OldName {
			m.products[i].Category = arg.NewName
			n++
		}
	}
	return n, nil
}

func (m *memStore) DeleteProductsByCategory(_ context.Context, category string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	kept := m.products[:0]
	for _, p := range m.products {
		if p.Category == category {
			n++
			continue
		}
		kept = append(kept, p)
	}
	m.products = kept
	return n, nil
}

func (m *memStore) CloseDayProducts(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.products {
		p := &m.products[i]
		p.Stock = p.Stock + p.Chef - p.Sales - p.Zomato
		p.Admin, p.Chef, p.Sales, p.Zomato = 0, 0, 0, 0
	}
	return nil
}

func (m *memStore) ResetProducts(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.products {
		p := &m.products[i]
		p.Stock, p.Admin, p.Chef, p.Sales, p.Zomato = 0, 0, 0, 0, 0
	}
	return nil
}

// --- categories ---

func (m *memStore) ListCategories(context.Context) ([]database.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]database.Category, len(m.categories))
	copy(result, m.categories)
	sort.Slice(result, func(i, j int) bool { return result[i].SortOrder < result[j].SortOrder })
	return result, nil
}

func (m *memStore) GetCategoryByName(_ context.Context, name string) (database.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.categories {
		if c.Name == name {
			return c, nil
		}
	}
	return database.Category{}, pgx.ErrNoRows
}

func (m *memStore) CreateCategory(_ context.Context, arg database.CreateCategoryParams) (database.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := database.Category{ID: uuid.New(), Name: arg.Name, SortOrder: arg.SortOrder}
	m.categories = append(m.categories, c)
	return c, nil
}

func (m *memStore) MaxCategorySortOrder(context.Context) (int32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	max := int32(-1)
	for _, c := range m.categories {
		if c.SortOrder > max {
			max = c.SortOrder
		}
	}
	return max, nil
}

func (m *memStore) RenameCategory(_ context.Context, arg database.RenameCategoryParams) (database.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.categories {
		if c.Name == arg.NewName {
			return database.Category{}, &pgconn.PgError{Code: "23505"}
		}
	}
	for i := range m.categories {
		if m.categories[i].Name == arg.OldName {
			m.categories[i].Name = arg.NewName
			return m.categories[i], nil
		}
	}
	return database.Category{}, pgx.ErrNoRows
}

func (m *memStore) DeleteCategoryByName(_ context.Context, name string) (uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, c := range m.categories {
		if c.Name == name {
			m.categories = append(m.categories[:i], m.categories[i+1:]...)
			return c.ID, nil
		}
	}
	return uuid.Nil, pgx.ErrNoRows
}

func (m *memStore) UpdateCategorySortOrder(_ context.Context, arg database.UpdateCategorySortOrderParams) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.categories {
		if m.categories[i].ID == arg.ID {
			m.categories[i].SortOrder = arg.SortOrder
			return nil
		}
	}
	return pgx.ErrNoRows
}

// --- orders ---

func (m *memStore) CreateOrder(_ context.Context, arg database.CreateOrderParams) (database.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o := database.Order{
		ID:            uuid.New(),
		OrderType:     arg.OrderType,
		PaymentMethod: arg.PaymentMethod,
		TotalPrice:    arg.TotalPrice,
	}
	m.orders = append(m.orders, o)
	return o, nil
}

func (m *memStore) CreateOrderItem(_ context.Context, arg database.CreateOrderItemParams) (database.OrderItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item := database.OrderItem{
		ID:          uuid.New(),
		OrderID:     arg.OrderID,
		ProductID:   arg.ProductID,
		ProductName: arg.ProductName,
		Qty:         arg.Qty,
		Price:       arg.Price,
		TotalPrice:  arg.TotalPrice,
	}
	m.items[arg.OrderID] = append(m.items[arg.OrderID], item)
	return item, nil
}

func (m *memStore) GetOrder(_ context.Context, id uuid.UUID) (database.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.orders {
		if o.ID == id {
			return o, nil
		}
	}
	return database.Order{}, pgx.ErrNoRows
}

func (m *memStore) ListRecentOrders(_ context.Context, limit int32) ([]database.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []database.Order
	for i := len(m.orders) - 1; i >= 0 && len(result) < int(limit); i-- {
		result = append(result, m.orders[i])
	}
	return result, nil
}

func (m *memStore) ListAllOrders(context.Context) ([]database.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]database.Order, len(m.orders))
	copy(result, m.orders)
	return result, nil
}

func (m *memStore) ListOrderItems(_ context.Context, orderID uuid.UUID) ([]database.OrderItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.items[orderID], nil
}

func (m *memStore) SetOrderHighlight(_ context.Context, arg database.SetOrderHighlightParams) (database.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.orders {
		if m.orders[i].ID == arg.ID {
			m.orders[i].IsHighlighted = arg.IsHighlighted
			return m.orders[i], nil
		}
	}
	return database.Order{}, pgx.ErrNoRows
}

func (m *memStore) DeleteOrder(_ context.Context, id uuid.UUID) (uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, o := range m.orders {
		if o.ID == id {
			m.orders = append(m.orders[:i], m.orders[i+1:]...)
			delete(m.items, id)
			return id, nil
		}
	}
	return uuid.Nil, pgx.ErrNoRows
}

// --- tx fakes for the order service ---

type testTx struct {
	pgx.Tx
	committed bool
}

func (t *testTx) Commit(context.Context) error {
	t.committed = true
	return nil
}

func (t *testTx) Rollback(context.Context) error { return nil }

type testBeginner struct{}

func (testBeginner) Begin(context.Context) (pgx.Tx, error) { return &testTx{}, nil }

// --- server / request helpers ---

// newTestRouter wires the full API surface on top of one memStore.
func newTestRouter(store *memStore) chi.Router {
	reorder := service.NewReorderService(store, service.NopNotifier{})
	catalog := service.NewCatalogService(store, reorder, service.NopNotifier{})
	orders := service.NewOrderService(testBeginner{}, store, func(database.DBTX) service.OrderStore { return store })

	r := chi.NewRouter()
	r.Route("/products", NewProductHandler(store, catalog, reorder).RegisterRoutes)
	r.Route("/categories", NewCategoryHandler(store, catalog, reorder).RegisterRoutes)
	r.Route("/orders", NewOrderHandler(store, orders).RegisterRoutes)
	return r
}

func doRequest(t *testing.T, router chi.Router, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode response body: %v", err)
	}
	return v
}

func seedProduct(t *testing.T, router chi.Router, name, category string, price int64) productResponse {
	t.Helper()
	rec := doRequest(t, router, http.MethodPost, "/products", map[string]any{
		"name":     name,
		"category": category,
		"price":    decimal.NewFromInt(price),
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("seed product %s: status %d, body %s", name, rec.Code, rec.Body.String())
	}
	return decodeBody[productResponse](t, rec)
}
