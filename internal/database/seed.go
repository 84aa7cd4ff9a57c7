package database

import (
	"database/sql"
	"fmt"
	"log/slog"
)

// Seed populates the database with a small sample catalog for development:
// a three-level category tree and a handful of products, so the API is
// explorable without an admin UI. It is a no-op if categories already exist.
func Seed(db *sql.DB) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM categories").Scan(&count); err != nil {
		return fmt.Errorf("seed check categories: %w", err)
	}

	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("seed begin: %w", err)
	}
	defer tx.Rollback()

	insertCategory := func(name string, parent any, order int) (string, error) {
		var id string
		err := tx.QueryRow(`
			INSERT INTO categories (name, parent_id, sort_order)
			VALUES ($1, $2, $3)
			RETURNING id
		`, name, parent, order).Scan(&id)
		return id, err
	}

	food, err := insertCategory("Food", nil, 1)
	if err != nil {
		return fmt.Errorf("seed insert root: %w", err)
	}
	crafts, err := insertCategory("Crafts", nil, 2)
	if err != nil {
		return fmt.Errorf("seed insert root: %w", err)
	}
	bakery, err := insertCategory("Bakery", food, 1)
	if err != nil {
		return fmt.Errorf("seed insert child: %w", err)
	}
	pastries, err := insertCategory("Pastries", bakery, 1)
	if err != nil {
		return fmt.Errorf("seed insert child: %w", err)
	}

	products := []struct {
		name     string
		category string
		price    string
		discount any
	}{
		{"Sourdough Loaf", bakery, "6.50", nil},
		{"Croissant", pastries, "3.20", "2.80"},
		{"Pain au Chocolat", pastries, "3.60", nil},
		{"Woven Basket", crafts, "24.00", "19.90"},
	}
	for _, p := range products {
		_, err := tx.Exec(`
			INSERT INTO products (name, category_id, price, discount_price)
			VALUES ($1, $2, $3, $4)
		`, p.name, p.category, p.price, p.discount)
		if err != nil {
			return fmt.Errorf("seed insert product %q: %w", p.name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed commit: %w", err)
	}

	slog.Info("database seeded with sample catalog",
		"categories", 4,
		"products", len(products),
	)

	return nil
}
