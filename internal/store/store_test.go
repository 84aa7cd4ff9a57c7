// store_test.go provides a shared test database helper for all store
// integration tests. Tests are skipped if PostgreSQL is not available.
package store

import (
	"database/sql"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"bazaar/internal/database"
	"bazaar/internal/models"
)

// testDSN returns the PostgreSQL connection string for testing.
// Uses environment variables with defaults matching docker-compose.yml.
func testDSN() string {
	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "bazaar")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "bazaar")
	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test database and runs migrations.
// If the database is unavailable, the test is skipped. A cleanup
// function is registered to close the connection when the test finishes.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	dsn := testDSN()
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Skipf("skipping integration test: cannot open DB: %v", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping integration test: DB not reachable: %v", err)
	}

	// Run migrations to ensure the schema is current.
	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	// Downgrade goose global state.
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// mkCategory creates a category through the store and registers a cleanup
// that removes it (and any products still attached to it). Cleanups run in
// LIFO order, so children created after their parents are removed first.
func mkCategory(t *testing.T, db *sql.DB, s *CategoryStore, name string, parentID *uuid.UUID) *models.Category {
	t.Helper()

	c, err := s.Create(name, parentID)
	if err != nil {
		t.Fatalf("create category %q: %v", name, err)
	}
	t.Cleanup(func() {
		db.Exec("DELETE FROM products WHERE category_id = $1", c.ID)
		db.Exec("DELETE FROM categories WHERE id = $1", c.ID)
	})
	return c
}

// mkProduct inserts a product directly. discount may be empty for NULL.
// Products are cleaned up by the mkCategory cleanup of their category.
func mkProduct(t *testing.T, db *sql.DB, categoryID uuid.UUID, name, price, discount string) uuid.UUID {
	t.Helper()
	return mkProductAt(t, db, categoryID, name, price, discount, time.Now())
}

// mkProductAt inserts a product with an explicit creation time, so tests
// can pin down newest-first ordering.
func mkProductAt(t *testing.T, db *sql.DB, categoryID uuid.UUID, name, price, discount string, createdAt time.Time) uuid.UUID {
	t.Helper()

	var discountArg any
	if discount != "" {
		discountArg = discount
	}

	var id uuid.UUID
	err := db.QueryRow(`
		INSERT INTO products (name, category_id, price, discount_price, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		name, categoryID, price, discountArg, createdAt,
	).Scan(&id)
	if err != nil {
		t.Fatalf("insert product %q: %v", name, err)
	}
	return id
}
