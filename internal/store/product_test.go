// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestListByCategory_Pagination(t *testing.T) {
	db := testDB(t)
	cats := NewCategoryStore(db)
	s := NewProductStore(db, cats)

	root := mkCategory(t, db, cats, "test-page-root", nil)
	for i := 0; i < 25; i++ {
		mkProduct(t, db, root.ID, "test-page-product", "10.00", "")
	}

	t.Run("first page", func(t *testing.T) {
		got, err := s.ListByCategory(root.ID, 1, 10, "")
		if err != nil {
			t.Fatalf("ListByCategory: %v", err)
		}
		if len(got.Products) != 10 {
			t.Errorf("products: got %d, want 10", len(got.Products))
		}
		if got.CurrentPage != 1 {
			t.Errorf("CurrentPage: got %d, want 1", got.CurrentPage)
		}
		if got.TotalProducts != 25 {
			t.Errorf("TotalProducts: got %d, want 25", got.TotalProducts)
		}
		if got.TotalPages != 3 {
			t.Errorf("TotalPages: got %d, want 3", got.TotalPages)
		}
		if !got.HasNextPage || got.HasPrevPage {
			t.Errorf("HasNextPage=%v HasPrevPage=%v, want true/false", got.HasNextPage, got.HasPrevPage)
		}
		if got.NextPage == nil || *got.NextPage != 2 {
			t.Errorf("NextPage: got %v, want 2", got.NextPage)
		}
		if got.PrevPage != nil {
			t.Errorf("PrevPage: got %v, want nil", got.PrevPage)
		}
	})

	t.Run("last page is partial", func(t *testing.T) {
		got, err := s.ListByCategory(root.ID, 3, 10, "")
		if err != nil {
			t.Fatalf("ListByCategory: %v", err)
		}
		if len(got.Products) != 5 {
			t.Errorf("products: got %d, want 5", len(got.Products))
		}
		if got.HasNextPage || !got.HasPrevPage {
			t.Errorf("HasNextPage=%v HasPrevPage=%v, want false/true", got.HasNextPage, got.HasPrevPage)
		}
		if got.NextPage != nil {
			t.Errorf("NextPage: got %v, want nil", got.NextPage)
		}
		if got.PrevPage == nil || *got.PrevPage != 2 {
			t.Errorf("PrevPage: got %v, want 2", got.PrevPage)
		}
	})

	t.Run("page beyond last is empty", func(t *testing.T) {
		got, err := s.ListByCategory(root.ID, 4, 10, "")
		if err != nil {
			t.Fatalf("ListByCategory: %v", err)
		}
		if len(got.Products) != 0 {
			t.Errorf("products: got %d, want 0", len(got.Products))
		}
		if got.HasNextPage {
			t.Error("HasNextPage should be false beyond the last page")
		}
	})

	t.Run("invalid page and limit fall back to defaults", func(t *testing.T) {
		got, err := s.ListByCategory(root.ID, 0, -5, "")
		if err != nil {
			t.Fatalf("ListByCategory: %v", err)
		}
		if got.CurrentPage != 1 {
			t.Errorf("CurrentPage: got %d, want 1", got.CurrentPage)
		}
		if got.Limit != 10 {
			t.Errorf("Limit: got %d, want 10", got.Limit)
		}
		if len(got.Products) != 10 {
			t.Errorf("products: got %d, want 10", len(got.Products))
		}
	})
}

func TestListByCategory_Sorting(t *testing.T) {
	db := testDB(t)
	cats := NewCategoryStore(db)
	s := NewProductStore(db, cats)

	root := mkCategory(t, db, cats, "test-sort-root", nil)
	base := time.Now().Add(-time.Hour)
	// Effective prices: discounted=50, cheap=80, plain=100.
	plain := mkProductAt(t, db, root.ID, "test-sort-plain", "100.00", "", base)
	discounted := mkProductAt(t, db, root.ID, "test-sort-discounted", "120.00", "50.00", base.Add(time.Minute))
	cheap := mkProductAt(t, db, root.ID, "test-sort-cheap", "80.00", "", base.Add(2*time.Minute))

	productIDs := func(t *testing.T, sortOrder string) []uuid.UUID {
		t.Helper()
		got, err := s.ListByCategory(root.ID, 1, 10, sortOrder)
		if err != nil {
			t.Fatalf("ListByCategory: %v", err)
		}
		ids := make([]uuid.UUID, len(got.Products))
		for i, p := range got.Products {
			ids[i] = p.ID
		}
		return ids
	}

	t.Run("priceAsc uses discount price when set", func(t *testing.T) {
		got := productIDs(t, SortPriceAsc)
		want := []uuid.UUID{discounted, cheap, plain}
		if !sameOrder(got, want) {
			t.Errorf("order: got %v, want [discounted, cheap, plain]", got)
		}
	})

	t.Run("priceDesc reverses", func(t *testing.T) {
		got := productIDs(t, SortPriceDesc)
		want := []uuid.UUID{plain, cheap, discounted}
		if !sameOrder(got, want) {
			t.Errorf("order: got %v, want [plain, cheap, discounted]", got)
		}
	})

	t.Run("default is newest first", func(t *testing.T) {
		got := productIDs(t, "")
		want := []uuid.UUID{cheap, discounted, plain}
		if !sameOrder(got, want) {
			t.Errorf("order: got %v, want [cheap, discounted, plain]", got)
		}
	})

	t.Run("unknown sort falls back to newest first", func(t *testing.T) {
		got := productIDs(t, "bogus")
		want := []uuid.UUID{cheap, discounted, plain}
		if !sameOrder(got, want) {
			t.Errorf("order: got %v, want [cheap, discounted, plain]", got)
		}
	})
}

func TestListByCategory_Subtree(t *testing.T) {
	db := testDB(t)
	cats := NewCategoryStore(db)
	s := NewProductStore(db, cats)

	root := mkCategory(t, db, cats, "test-subtree-root", nil)
	child := mkCategory(t, db, cats, "test-subtree-child", &root.ID)
	grandchild := mkCategory(t, db, cats, "test-subtree-grandchild", &child.ID)
	other := mkCategory(t, db, cats, "test-subtree-other", nil)

	mkProduct(t, db, root.ID, "test-subtree-p-root", "10.00", "")
	mkProduct(t, db, grandchild.ID, "test-subtree-p-deep", "20.00", "")
	mkProduct(t, db, other.ID, "test-subtree-p-other", "30.00", "")

	t.Run("includes products of the whole subtree", func(t *testing.T) {
		got, err := s.ListByCategory(root.ID, 1, 10, "")
		if err != nil {
			t.Fatalf("ListByCategory: %v", err)
		}
		if got.TotalProducts != 2 {
			t.Errorf("TotalProducts: got %d, want 2", got.TotalProducts)
		}
		for _, p := range got.Products {
			if p.CategoryID == other.ID {
				t.Error("result should not contain products from unrelated categories")
			}
		}
	})

	t.Run("leaf category lists its own products only", func(t *testing.T) {
		got, err := s.ListByCategory(grandchild.ID, 1, 10, "")
		if err != nil {
			t.Fatalf("ListByCategory: %v", err)
		}
		if got.TotalProducts != 1 {
			t.Errorf("TotalProducts: got %d, want 1", got.TotalProducts)
		}
	})
}

func TestListByCategory_Empty(t *testing.T) {
	db := testDB(t)
	cats := NewCategoryStore(db)
	s := NewProductStore(db, cats)

	t.Run("zero id short-circuits", func(t *testing.T) {
		got, err := s.ListByCategory(uuid.Nil, 1, 7, "")
		if err != nil {
			t.Fatalf("ListByCategory: %v", err)
		}
		if got.TotalProducts != 0 || got.TotalPages != 0 {
			t.Errorf("totals: got %d/%d, want 0/0", got.TotalProducts, got.TotalPages)
		}
		if got.Products == nil || len(got.Products) != 0 {
			t.Errorf("Products: got %v, want empty non-nil slice", got.Products)
		}
		if got.Limit != 7 {
			t.Errorf("Limit: got %d, want 7", got.Limit)
		}
		if got.HasNextPage || got.HasPrevPage {
			t.Error("page flags should be false for an empty result")
		}
	})

	t.Run("category without products", func(t *testing.T) {
		empty := mkCategory(t, db, cats, "test-empty-cat", nil)

		got, err := s.ListByCategory(empty.ID, 1, 10, "")
		if err != nil {
			t.Fatalf("ListByCategory: %v", err)
		}
		if got.TotalProducts != 0 {
			t.Errorf("TotalProducts: got %d, want 0", got.TotalProducts)
		}
		if len(got.Products) != 0 {
			t.Errorf("products: got %d, want 0", len(got.Products))
		}
		if got.HasNextPage {
			t.Error("HasNextPage should be false")
		}
	})

	t.Run("scans nullable and jsonb columns", func(t *testing.T) {
		c := mkCategory(t, db, cats, "test-scan-cat", nil)
		mkProduct(t, db, c.ID, "test-scan-product", "15.50", "12.00")

		got, err := s.ListByCategory(c.ID, 1, 10, "")
		if err != nil {
			t.Fatalf("ListByCategory: %v", err)
		}
		if len(got.Products) != 1 {
			t.Fatalf("products: got %d, want 1", len(got.Products))
		}
		p := got.Products[0]
		if p.DiscountPrice == nil {
			t.Fatal("DiscountPrice should be set")
		}
		if !p.DiscountPrice.Equal(p.EffectivePrice()) {
			t.Error("EffectivePrice should return the discount price when set")
		}
		if p.ImageURLs == nil {
			t.Error("ImageURLs should decode to an empty slice, not nil")
		}
	})
}
