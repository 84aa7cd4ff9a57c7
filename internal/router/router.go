// Package router sets up the HTTP routes and middleware chain for the
// Bazaar catalog API.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"bazaar/internal/handlers"
	"bazaar/internal/middleware"
)

// New creates and returns the configured Chi router with all middleware
// and routes wired up.
func New(catalog *handlers.Catalog) chi.Router {
	r := chi.NewRouter()

	// Global middleware — applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)

	// The marketplace front-ends (admin dashboard, storefront) are separate
	// React apps served from other origins.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	// Health check.
	r.Get("/health", healthHandler)

	r.Route("/api/categories", func(r chi.Router) {
		r.Post("/", catalog.CategoryCreate)
		r.Get("/", catalog.CategoryList)
		r.Get("/flat", catalog.CategoryFlat)
		r.Get("/all", catalog.CategoryTree)
		r.Get("/{id}", catalog.CategoryGet)
		r.Put("/{id}", catalog.CategoryUpdate)
		r.Delete("/{id}", catalog.CategoryDelete)
		r.Put("/{id}/move", catalog.CategoryMove)
		r.Get("/{id}/products", catalog.ProductsByCategory)
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
