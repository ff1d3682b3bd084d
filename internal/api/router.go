package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"github.com/KillerBee88/star-burger/internal/api/handlers"
	"github.com/KillerBee88/star-burger/internal/logger"
	"github.com/KillerBee88/star-burger/internal/service"
	"github.com/KillerBee88/star-burger/internal/validation"
)

// HealthCheck reports whether a backing service is reachable.
type HealthCheck func(ctx context.Context) error

type RouterConfig struct {
	Catalog     *service.CatalogService
	Orders      *service.OrderService
	Admin       *service.AdminService
	Validator   *validation.Validator
	Log         *logger.Logger
	AdminToken  string
	CORSOrigins []string
	Health      map[string]HealthCheck
}

func NewRouter(cfg RouterConfig) http.Handler {
	public := handlers.NewPublicHandler(cfg.Catalog, cfg.Orders, cfg.Validator, cfg.Log)
	orders := handlers.NewAdminOrderHandler(cfg.Admin, cfg.Log)
	products := handlers.NewProductHandler(cfg.Admin, cfg.Log)
	restaurants := handlers.NewRestaurantHandler(cfg.Admin, cfg.Log)

	r := chi.NewRouter()
	r.Use(cfg.Log.Middleware)
	r.Use(middleware.Recoverer)
	r.Use(cors.New(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "Authorization", logger.RequestIDHeader},
		ExposedHeaders: []string{logger.RequestIDHeader},
	}).Handler)

	r.Get("/healthz", healthHandler(cfg.Health))

	r.Get("/banners", public.Banners)
	r.Get("/products", public.Products)
	r.Post("/order", public.CreateOrder)

	r.Route("/admin", func(r chi.Router) {
		r.Use(AdminAuth(cfg.AdminToken))

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", orders.List)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", orders.Get)
				r.Patch("/", orders.Update)
				r.Delete("/", orders.Delete)
				r.Post("/items", orders.AddItem)
				r.Patch("/items/{itemID}", orders.UpdateItem)
				r.Delete("/items/{itemID}", orders.DeleteItem)
				r.Post("/recalculate", orders.Recalculate)
			})
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", products.GetAll)
			r.Post("/", products.Create)
			r.Get("/{id}", products.GetByID)
			r.Put("/{id}", products.Update)
			r.Delete("/{id}", products.Delete)
		})

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", restaurants.ListCategories)
			r.Post("/", restaurants.CreateCategory)
			r.Put("/{id}", restaurants.UpdateCategory)
			r.Delete("/{id}", restaurants.DeleteCategory)
		})

		r.Route("/restaurants", func(r chi.Router) {
			r.Get("/", restaurants.List)
			r.Post("/", restaurants.Create)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", restaurants.Get)
				r.Put("/", restaurants.Update)
				r.Delete("/", restaurants.Delete)
				r.Get("/menu", restaurants.Menu)
				r.Put("/menu", restaurants.SetMenuItem)
				r.Delete("/menu/{productID}", restaurants.DeleteMenuItem)
			})
		})
	})

	return r
}

func healthHandler(checks map[string]HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		results := make(map[string]string, len(checks))
		for name, check := range checks {
			if err := check(ctx); err != nil {
				results[name] = err.Error()
				status = http.StatusServiceUnavailable
				continue
			}
			results[name] = "ok"
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(results)
	}
}
