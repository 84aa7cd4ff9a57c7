// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"bazaar/internal/models"
)

// Product listing sort modes. Anything else falls back to newest-first.
const (
	SortPriceAsc  = "priceAsc"
	SortPriceDesc = "priceDesc"
)

// ProductStore reads products scoped to category subtrees. It never creates
// or mutates products; writes happen elsewhere in the marketplace.
type ProductStore struct {
	db         *sql.DB
	categories *CategoryStore
}

// NewProductStore returns a ProductStore that resolves category subtrees
// through the given CategoryStore.
func NewProductStore(db *sql.DB, categories *CategoryStore) *ProductStore {
	return &ProductStore{db: db, categories: categories}
}

const productColumns = `id, name, category_id, description, price, discount_price,
	provider_id, available, is_new, image_urls, created_at`

// scanProduct scans a row into a Product struct.
func scanProduct(scanner interface{ Scan(...any) error }) (*models.Product, error) {
	var p models.Product
	var discount decimal.NullDecimal
	var images []byte
	err := scanner.Scan(
		&p.ID, &p.Name, &p.CategoryID, &p.Description, &p.Price, &discount,
		&p.ProviderID, &p.Available, &p.IsNew, &images, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if discount.Valid {
		p.DiscountPrice = &discount.Decimal
	}
	if err := json.Unmarshal(images, &p.ImageURLs); err != nil {
		return nil, fmt.Errorf("decode image urls: %w", err)
	}
	return &p, nil
}

// ListByCategory returns one page of products whose category lies in the
// subtree rooted at categoryID (the category itself included). A zero
// categoryID short-circuits to an empty result without touching the
// database. sortOrder selects the ordering: SortPriceAsc and SortPriceDesc
// sort by the effective price (discount price when set, list price
// otherwise); anything else sorts newest first.
func (s *ProductStore) ListByCategory(categoryID uuid.UUID, page, limit int, sortOrder string) (*models.PagedResult, error) {
	if limit < 1 {
		limit = 10
	}
	if page < 1 {
		page = 1
	}
	if categoryID == uuid.Nil {
		return models.EmptyPagedResult(limit), nil
	}

	// Filter set: the category itself plus everything below it.
	descendants, err := s.categories.Descendants(categoryID)
	if err != nil {
		return nil, fmt.Errorf("resolve category subtree: %w", err)
	}
	ids := make([]uuid.UUID, 0, len(descendants)+1)
	ids = append(ids, categoryID)
	for _, d := range descendants {
		ids = append(ids, d.ID)
	}

	in := placeholders(1, len(ids))
	args := uuidArgs(ids)

	var total int
	err = s.db.QueryRow(
		`SELECT COUNT(*) FROM products WHERE category_id IN (`+in+`)`,
		args...,
	).Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("count products by category: %w", err)
	}

	var orderBy string
	switch sortOrder {
	case SortPriceAsc:
		orderBy = `COALESCE(discount_price, price) ASC, price ASC`
	case SortPriceDesc:
		orderBy = `COALESCE(discount_price, price) DESC, price DESC`
	default:
		orderBy = `created_at DESC`
	}

	offset := (page - 1) * limit
	rows, err := s.db.Query(
		`SELECT `+productColumns+`
		 FROM products
		 WHERE category_id IN (`+in+`)
		 ORDER BY `+orderBy+`
		 LIMIT $`+fmt.Sprint(len(ids)+1)+` OFFSET $`+fmt.Sprint(len(ids)+2),
		append(args, limit, offset)...,
	)
	if err != nil {
		return nil, fmt.Errorf("list products by category: %w", err)
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	totalPages := (total + limit - 1) / limit
	result := &models.PagedResult{
		Products:      products,
		CurrentPage:   page,
		TotalPages:    totalPages,
		TotalProducts: total,
		HasNextPage:   page < totalPages,
		HasPrevPage:   page > 1,
		Limit:         limit,
	}
	if result.HasNextPage {
		next := page + 1
		result.NextPage = &next
	}
	if result.HasPrevPage {
		prev := page - 1
		result.PrevPage = &prev
	}
	return result, nil
}

// CountByCategories returns how many products reference any of the given
// category ids. Used by tests and admin tooling to verify cascades.
func (s *ProductStore) CountByCategories(ids []uuid.UUID) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var count int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM products WHERE category_id IN (`+placeholders(1, len(ids))+`)`,
		uuidArgs(ids)...,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return count, nil
}
