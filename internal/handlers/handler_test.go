// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure for handler integration
// tests. Tests run against a real PostgreSQL and are skipped when it is not
// available; the cache side uses the in-memory gateway so cache interactions
// are observable without a Valkey instance.
package handlers

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"bazaar/internal/cache"
	"bazaar/internal/database"
	"bazaar/internal/models"
	"bazaar/internal/store"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test PostgreSQL and runs migrations.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "bazaar")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "bazaar")
	dsn := "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Skipf("skipping: cannot open DB: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping: DB not reachable: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("migrate: %v", err)
	}
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// testEnv holds all dependencies for handler integration tests.
type testEnv struct {
	DB         *sql.DB
	Cache      *cache.Memory
	Categories *store.CategoryStore
	Products   *store.ProductStore
	Catalog    *Catalog
}

// newTestEnv creates a complete test environment wired to the in-memory
// cache gateway.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testDB(t)
	gw := cache.NewMemory()
	categories := store.NewCategoryStore(db)
	products := store.NewProductStore(db, categories)

	return &testEnv{
		DB:         db,
		Cache:      gw,
		Categories: categories,
		Products:   products,
		Catalog:    NewCatalog(categories, products, gw),
	}
}

// withChiURLParam adds a chi URL parameter to a request.
func withChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// mkCategory creates a category through the store and registers a cleanup.
func mkCategory(t *testing.T, env *testEnv, name string, parentID *uuid.UUID) *models.Category {
	t.Helper()

	c, err := env.Categories.Create(name, parentID)
	if err != nil {
		t.Fatalf("create category %q: %v", name, err)
	}
	t.Cleanup(func() {
		env.DB.Exec("DELETE FROM products WHERE category_id = $1", c.ID)
		env.DB.Exec("DELETE FROM categories WHERE id = $1", c.ID)
	})
	return c
}

// mkProduct inserts a product under a category. Cleaned up with the category.
func mkProduct(t *testing.T, env *testEnv, categoryID uuid.UUID, name, price string) {
	t.Helper()
	_, err := env.DB.Exec(`
		INSERT INTO products (name, category_id, price)
		VALUES ($1, $2, $3)`,
		name, categoryID, price,
	)
	if err != nil {
		t.Fatalf("insert product %q: %v", name, err)
	}
}
