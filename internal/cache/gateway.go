// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cache

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// TTLs for catalog responses. The flat category list changes rarely; product
// pages churn with inventory, so they stay for seconds only.
const (
	CategoryListTTL = 24 * time.Hour
	ProductPageTTL  = 30 * time.Second
)

// Gateway is the key-value caching contract consumed by the handlers.
// Implementations must treat every failure as a miss or a no-op: a cache
// outage slows the API down, it never breaks it.
type Gateway interface {
	// Get retrieves a cached value. The second return is false on miss.
	Get(ctx context.Context, key string) ([]byte, bool)

	// SetEx stores a value with the given time-to-live.
	SetEx(ctx context.Context, key string, ttl time.Duration, value []byte)

	// Invalidate removes a key, or — when the argument contains a '*'
	// wildcard — every key matching the pattern.
	Invalidate(ctx context.Context, keyOrPattern string)
}

// Valkey is the Gateway backed by a Valkey/Redis client.
type Valkey struct {
	client *redis.Client
}

// NewValkey returns a Valkey-backed cache gateway.
func NewValkey(client *redis.Client) *Valkey {
	return &Valkey{client: client}
}

func (v *Valkey) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := v.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		slog.Warn("cache get error", "key", key, "error", err)
		return nil, false
	}
	slog.Debug("cache hit", "key", key)
	return val, true
}

func (v *Valkey) SetEx(ctx context.Context, key string, ttl time.Duration, value []byte) {
	if err := v.client.Set(ctx, key, value, ttl).Err(); err != nil {
		slog.Warn("cache set error", "key", key, "error", err)
	}
}

func (v *Valkey) Invalidate(ctx context.Context, keyOrPattern string) {
	if !strings.Contains(keyOrPattern, "*") {
		if err := v.client.Del(ctx, keyOrPattern).Err(); err != nil {
			slog.Warn("cache invalidate error", "key", keyOrPattern, "error", err)
		}
		return
	}

	// Wildcard invalidation scans for the pattern and bulk-deletes matches.
	var cursor uint64
	var deleted int
	for {
		keys, nextCursor, err := v.client.Scan(ctx, cursor, keyOrPattern, 100).Result()
		if err != nil {
			slog.Warn("cache scan error", "pattern", keyOrPattern, "error", err)
			return
		}
		if len(keys) > 0 {
			if err := v.client.Del(ctx, keys...).Err(); err != nil {
				slog.Warn("cache bulk delete error", "pattern", keyOrPattern, "error", err)
			}
			deleted += len(keys)
		}
		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}
	if deleted > 0 {
		slog.Debug("cache invalidated", "pattern", keyOrPattern, "deleted", deleted)
	}
}

// Key builders. Names match the keys the marketplace has always used, so a
// deployment can roll this service out against a warm cache.

// KeyAllCategories is the nested category tree.
func KeyAllCategories() string { return "all_categories" }

// KeyFlatCategories is the unfiltered flat list.
func KeyFlatCategories() string { return "flat_categories" }

// KeyTopLevelCategories is the root-level listing.
func KeyTopLevelCategories() string { return "top_level_categories" }

// KeyCategoriesByParent is the child listing of one parent.
func KeyCategoriesByParent(parentID uuid.UUID) string {
	return "categories_by_parent:" + parentID.String()
}

// KeyCategory is a single category lookup.
func KeyCategory(id uuid.UUID) string {
	return "category:" + id.String()
}

// KeyProductsByCategory is one page of a category's product listing. The
// sort mode is part of the key so each ordering caches separately.
func KeyProductsByCategory(categoryID uuid.UUID, page, limit int, sort string) string {
	if sort == "" {
		sort = "default"
	}
	return fmt.Sprintf("products_by_category:%s:page:%d:limit:%d:sort:%s", categoryID, page, limit, sort)
}

// KeyProductsByCategoryPattern matches every cached product page of one
// category, for wildcard invalidation after mutations.
func KeyProductsByCategoryPattern(categoryID uuid.UUID) string {
	return "products_by_category:" + categoryID.String() + ":*"
}
