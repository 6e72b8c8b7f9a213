package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/foushack-pos/api/internal/database"
	"github.com/foushack-pos/api/internal/handler"
	"github.com/foushack-pos/api/internal/service"
	"github.com/foushack-pos/api/internal/ws"
)

// New creates a Chi router with all application routes wired up.
func New(queries *database.Queries, pool *pgxpool.Pool, hub *ws.Hub) chi.Router {
	r := chi.NewRouter()

	// Standard middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// The POS frontends run on LAN hosts and a hosted dashboard; origins are
	// not enumerable, and the API carries no credentials worth protecting.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300, // 5 minutes
	}))

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","version":"1.0.0"}`))
	})

	// WebSocket: connected screens refetch on change events
	r.Get("/ws", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWS(hub, w, r)
	})

	// Services
	reorderService := service.NewReorderService(queries, hub)
	catalogService := service.NewCatalogService(queries, reorderService, hub)
	orderService := service.NewOrderService(pool, queries, func(db database.DBTX) service.OrderStore {
		return database.New(db)
	})

	// Products
	productHandler := handler.NewProductHandler(queries, catalogService, reorderService)
	r.Route("/products", productHandler.RegisterRoutes)

	// Categories
	categoryHandler := handler.NewCategoryHandler(queries, catalogService, reorderService)
	r.Route("/categories", categoryHandler.RegisterRoutes)

	// Orders
	orderHandler := handler.NewOrderHandler(queries, orderService)
	r.Route("/orders", orderHandler.RegisterRoutes)

	return r
}
