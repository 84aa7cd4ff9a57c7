// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"bazaar/internal/cache"
)

// ProductsByCategory handles GET /api/categories/{id}/products. The result
// covers the whole subtree rooted at the category and is cached briefly
// per (category, page, limit, sort) tuple.
func (h *Catalog) ProductsByCategory(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid category id.")
		return
	}

	page := queryInt(r, "page", 1)
	limit := queryInt(r, "limit", 10)
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	sort := r.URL.Query().Get("sort")

	key := cache.KeyProductsByCategory(id, page, limit, sort)
	if cached, ok := h.cache.Get(r.Context(), key); ok {
		writeJSONRaw(w, http.StatusOK, cached)
		return
	}

	result, err := h.products.ListByCategory(id, page, limit, sort)
	if err != nil {
		slog.Error("products by category failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch products for category.")
		return
	}

	h.respondAndCache(w, r, key, cache.ProductPageTTL, result)
}

// respondAndCache serializes v once, sends it, and stores the same bytes in
// the cache gateway. Cache population is best-effort.
func (h *Catalog) respondAndCache(w http.ResponseWriter, r *http.Request, key string, ttl time.Duration, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		slog.Error("response marshal failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	writeJSONRaw(w, http.StatusOK, body)
	h.cache.SetEx(r.Context(), key, ttl, body)
}

// queryInt reads an integer query parameter, falling back on absence or
// garbage, never returning less than 1.
func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
