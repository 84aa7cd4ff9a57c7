// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a marketplace listing. The catalog service treats products as
// read-only: it filters them by category subtree and removes them when their
// category is cascade-deleted, but never creates or edits them.
type Product struct {
	ID            uuid.UUID        `json:"id"`
	Name          string           `json:"name"`
	CategoryID    uuid.UUID        `json:"category"`
	Description   string           `json:"description"`
	Price         decimal.Decimal  `json:"price"`
	DiscountPrice *decimal.Decimal `json:"discount_price"`
	ProviderID    *uuid.UUID       `json:"provider"`
	Available     bool             `json:"availability"`
	IsNew         bool             `json:"new"`
	ImageURLs     []string         `json:"image_url"`
	CreatedAt     time.Time        `json:"created_at"`
}

// EffectivePrice is the price customers actually pay: the discount price
// when one is set, the list price otherwise.
func (p *Product) EffectivePrice() decimal.Decimal {
	if p.DiscountPrice != nil {
		return *p.DiscountPrice
	}
	return p.Price
}

// PagedResult is the envelope returned by paginated product listings.
// NextPage and PrevPage are nil when there is no such page.
type PagedResult struct {
	Products      []Product `json:"products"`
	CurrentPage   int       `json:"currentPage"`
	TotalPages    int       `json:"totalPages"`
	TotalProducts int       `json:"totalProducts"`
	HasNextPage   bool      `json:"hasNextPage"`
	HasPrevPage   bool      `json:"hasPrevPage"`
	NextPage      *int      `json:"nextPage"`
	PrevPage      *int      `json:"prevPage"`
	Limit         int       `json:"limit"`
}

// EmptyPagedResult returns the zero-result envelope used when no category
// is given. It never touches the database.
func EmptyPagedResult(limit int) *PagedResult {
	return &PagedResult{
		Products:      []Product{},
		CurrentPage:   1,
		TotalPages:    0,
		TotalProducts: 0,
		HasNextPage:   false,
		HasPrevPage:   false,
		NextPage:      nil,
		PrevPage:      nil,
		Limit:         limit,
	}
}
