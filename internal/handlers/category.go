// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers implements the JSON HTTP API over the catalog stores.
// Read handlers consult the cache gateway before hitting the database;
// mutation handlers invalidate every key the change could have touched.
// The gateway is best-effort throughout: a cache outage never fails a request.
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"bazaar/internal/cache"
	"bazaar/internal/models"
	"bazaar/internal/store"
)

// Catalog bundles the category API handlers with their dependencies.
type Catalog struct {
	categories *store.CategoryStore
	products   *store.ProductStore
	cache      cache.Gateway
}

// NewCatalog creates the catalog handler group.
func NewCatalog(categories *store.CategoryStore, products *store.ProductStore, gw cache.Gateway) *Catalog {
	return &Catalog{categories: categories, products: products, cache: gw}
}

// parseParentID normalizes a parent reference from a request: both absent
// and empty-string inputs mean root (nil).
func parseParentID(raw string) (*uuid.UUID, error) {
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

type createCategoryRequest struct {
	Name   string `json:"name"`
	Parent string `json:"parent"`
}

// CategoryCreate handles POST /api/categories.
func (h *Catalog) CategoryCreate(w http.ResponseWriter, r *http.Request) {
	var req createCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body.")
		return
	}

	if msg := validateCategoryName(req.Name); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	parentID, err := parseParentID(req.Parent)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid parent id.")
		return
	}

	category, err := h.categories.Create(req.Name, parentID)
	if err != nil {
		slog.Error("create category failed", "error", err)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.invalidateCategoryLists(r, parentID)

	writeJSON(w, http.StatusCreated, category)
}

// CategoryList handles GET /api/categories?parent=<id>. Without a parent
// parameter it returns the root categories.
func (h *Catalog) CategoryList(w http.ResponseWriter, r *http.Request) {
	parentID, err := parseParentID(r.URL.Query().Get("parent"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid parent id.")
		return
	}

	key := cache.KeyTopLevelCategories()
	if parentID != nil {
		key = cache.KeyCategoriesByParent(*parentID)
	}
	if cached, ok := h.cache.Get(r.Context(), key); ok {
		writeJSONRaw(w, http.StatusOK, cached)
		return
	}

	categories, err := h.categories.ListByParent(parentID)
	if err != nil {
		slog.Error("list categories failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if categories == nil {
		categories = []models.Category{}
	}
	h.respondAndCache(w, r, key, cache.CategoryListTTL, categories)
}

// CategoryFlat handles GET /api/categories/flat, serving the unfiltered
// list through the long-lived cache.
func (h *Catalog) CategoryFlat(w http.ResponseWriter, r *http.Request) {
	key := cache.KeyFlatCategories()
	if cached, ok := h.cache.Get(r.Context(), key); ok {
		writeJSONRaw(w, http.StatusOK, cached)
		return
	}

	categories, err := h.categories.ListAll()
	if err != nil {
		slog.Error("list flat categories failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.respondAndCache(w, r, key, cache.CategoryListTTL, categories)
}

// CategoryTree handles GET /api/categories/all: the nested tree with
// children populated recursively.
func (h *Catalog) CategoryTree(w http.ResponseWriter, r *http.Request) {
	key := cache.KeyAllCategories()
	if cached, ok := h.cache.Get(r.Context(), key); ok {
		writeJSONRaw(w, http.StatusOK, cached)
		return
	}

	tree, err := h.categories.Tree()
	if err != nil {
		slog.Error("category tree failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.respondAndCache(w, r, key, cache.CategoryListTTL, tree)
}

// CategoryGet handles GET /api/categories/{id}.
func (h *Catalog) CategoryGet(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid category id.")
		return
	}

	key := cache.KeyCategory(id)
	if cached, ok := h.cache.Get(r.Context(), key); ok {
		writeJSONRaw(w, http.StatusOK, cached)
		return
	}

	category, err := h.categories.FindByID(id)
	if err != nil {
		slog.Error("get category failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if category == nil {
		writeError(w, http.StatusNotFound, "Category not found")
		return
	}
	h.respondAndCache(w, r, key, cache.CategoryListTTL, category)
}

type updateCategoryRequest struct {
	Name string `json:"name"`
}

// CategoryUpdate handles PUT /api/categories/{id}: a non-structural rename.
// Parent and rank changes go through CategoryMove exclusively.
func (h *Catalog) CategoryUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid category id.")
		return
	}

	var req updateCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body.")
		return
	}
	if msg := validateCategoryName(req.Name); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	updated, err := h.categories.Update(id, req.Name)
	if errors.Is(err, store.ErrCategoryNotFound) {
		writeError(w, http.StatusNotFound, "Category not found")
		return
	}
	if err != nil {
		slog.Error("update category failed", "error", err)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx := r.Context()
	h.invalidateCategoryLists(r, updated.ParentID)
	h.cache.Invalidate(ctx, cache.KeyCategory(id))

	writeJSON(w, http.StatusOK, updated)
}

// CategoryDelete handles DELETE /api/categories/{id}: the cascading delete
// of the category, its descendants, and every product under them.
func (h *Catalog) CategoryDelete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid category id.")
		return
	}

	deleted, err := h.categories.Delete(id)
	if errors.Is(err, store.ErrCategoryNotFound) {
		writeError(w, http.StatusNotFound, "Category not found")
		return
	}
	if err != nil {
		slog.Error("delete category failed", "error", err)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx := r.Context()
	h.invalidateCategoryLists(r, deleted.ParentID)
	h.cache.Invalidate(ctx, cache.KeyCategory(id))
	h.cache.Invalidate(ctx, cache.KeyProductsByCategoryPattern(id))

	writeJSON(w, http.StatusOK, map[string]string{"message": "Category deleted successfully"})
}

type moveCategoryRequest struct {
	NewParentID string `json:"newParentId"`
	NewOrder    int    `json:"newOrder"`
}

// CategoryMove handles PUT /api/categories/{id}/move: the transactional
// move-with-reorder. An empty newParentId moves the category to the root.
func (h *Catalog) CategoryMove(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid category id.")
		return
	}

	var req moveCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body.")
		return
	}

	newParentID, err := parseParentID(req.NewParentID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid parent id.")
		return
	}

	oldParentID, moved, err := h.categories.MoveAndReorder(id, newParentID, req.NewOrder)
	switch {
	case errors.Is(err, store.ErrCategoryNotFound):
		writeError(w, http.StatusNotFound, "Category not found.")
		return
	case errors.Is(err, store.ErrSelfMove), errors.Is(err, store.ErrDescendantMove):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		slog.Error("move category failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to move category.")
		return
	}

	// Both touched sibling groups changed, so both parents' listings go.
	ctx := r.Context()
	h.invalidateCategoryLists(r, oldParentID)
	h.invalidateCategoryLists(r, moved.ParentID)
	h.cache.Invalidate(ctx, cache.KeyCategory(id))

	writeJSON(w, http.StatusOK, map[string]any{
		"message":  "Category moved and reordered successfully.",
		"category": moved,
	})
}

// invalidateCategoryLists drops every listing key a structural change can
// affect: the full tree, the flat list, the top level, and the given
// parent's child listing.
func (h *Catalog) invalidateCategoryLists(r *http.Request, parentID *uuid.UUID) {
	ctx := r.Context()
	h.cache.Invalidate(ctx, cache.KeyAllCategories())
	h.cache.Invalidate(ctx, cache.KeyFlatCategories())
	h.cache.Invalidate(ctx, cache.KeyTopLevelCategories())
	if parentID != nil {
		h.cache.Invalidate(ctx, cache.KeyCategoriesByParent(*parentID))
	}
}
