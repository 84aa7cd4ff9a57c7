// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"bazaar/internal/models"
)

// Sentinel errors returned by category mutators. Callers map these to
// distinct externally visible outcomes (404 vs 400 vs 500).
var (
	// ErrCategoryNotFound signals that the targeted category id does not exist.
	ErrCategoryNotFound = errors.New("category not found")

	// ErrSelfMove signals an attempt to move a category under itself.
	ErrSelfMove = errors.New("cannot move a category under itself")

	// ErrDescendantMove signals an attempt to move a category under one of
	// its own descendants. Only returned when CycleCheck is enabled.
	ErrDescendantMove = errors.New("cannot move a category under one of its descendants")

	// ErrNameRequired signals a blank category name.
	ErrNameRequired = errors.New("category name is required")
)

// CategoryStore manages the category forest in the database.
//
// Only MoveAndReorder and Delete run inside transactions: the move rewrites
// sort_order across two sibling groups and must be all-or-nothing, and the
// delete cascades over products and descendant categories. Create and Update
// are single statements.
type CategoryStore struct {
	db *sql.DB

	// CycleCheck enables the ancestor-chain walk that rejects moving a
	// category under one of its own descendants. The historical behavior
	// leaves this unguarded and only rejects direct self-parenting, so the
	// flag defaults to off.
	CycleCheck bool
}

// NewCategoryStore returns a new CategoryStore.
func NewCategoryStore(db *sql.DB) *CategoryStore {
	return &CategoryStore{db: db}
}

// dbtx is satisfied by both *sql.DB and *sql.Tx so traversal helpers can run
// inside or outside a transaction.
type dbtx interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

const categoryColumns = `id, name, parent_id, sort_order, created_at, updated_at`

// scanCategory scans a row into a Category struct.
func scanCategory(scanner interface{ Scan(...any) error }) (*models.Category, error) {
	var c models.Category
	err := scanner.Scan(
		&c.ID, &c.Name, &c.ParentID, &c.SortOrder, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// scanCategoryWithParent scans a row produced by a LEFT JOIN on the parent
// category, populating the Parent virtual field when one exists.
func scanCategoryWithParent(scanner interface{ Scan(...any) error }) (*models.Category, error) {
	var c models.Category
	var pID, pParentID *uuid.UUID
	var pName sql.NullString
	var pSortOrder sql.NullInt64
	var pCreatedAt, pUpdatedAt sql.NullTime

	err := scanner.Scan(
		&c.ID, &c.Name, &c.ParentID, &c.SortOrder, &c.CreatedAt, &c.UpdatedAt,
		&pID, &pName, &pParentID, &pSortOrder, &pCreatedAt, &pUpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if pID != nil {
		c.Parent = &models.Category{
			ID:        *pID,
			Name:      pName.String,
			ParentID:  pParentID,
			SortOrder: int(pSortOrder.Int64),
			CreatedAt: pCreatedAt.Time,
			UpdatedAt: pUpdatedAt.Time,
		}
	}
	return &c, nil
}

const categoryWithParentQuery = `
	SELECT c.id, c.name, c.parent_id, c.sort_order, c.created_at, c.updated_at,
	       p.id, p.name, p.parent_id, p.sort_order, p.created_at, p.updated_at
	FROM categories c
	LEFT JOIN categories p ON p.id = c.parent_id
`

// Create inserts a new category under the given parent (nil for root).
// The sibling rank starts at 0; move operations assign the dense sequence.
// The parent id is not validated beyond the foreign key.
func (s *CategoryStore) Create(name string, parentID *uuid.UUID) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNameRequired
	}

	row := s.db.QueryRow(`
		INSERT INTO categories (name, parent_id)
		VALUES ($1, $2)
		RETURNING `+categoryColumns,
		name, parentID,
	)
	c, err := scanCategory(row)
	if err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return c, nil
}

// FindByID retrieves a category by ID with its parent populated.
// Returns nil if not found.
func (s *CategoryStore) FindByID(id uuid.UUID) (*models.Category, error) {
	row := s.db.QueryRow(categoryWithParentQuery+`WHERE c.id = $1`, id)
	c, err := scanCategoryWithParent(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find category by id: %w", err)
	}
	return c, nil
}

// ListByParent returns the direct children of the given parent (nil for the
// root level), ordered by sibling rank, each with its parent populated.
func (s *CategoryStore) ListByParent(parentID *uuid.UUID) ([]models.Category, error) {
	rows, err := s.db.Query(
		categoryWithParentQuery+`
		WHERE c.parent_id IS NOT DISTINCT FROM $1
		ORDER BY c.sort_order, c.name`,
		parentID,
	)
	if err != nil {
		return nil, fmt.Errorf("list categories by parent: %w", err)
	}
	defer rows.Close()

	var items []models.Category
	for rows.Next() {
		c, err := scanCategoryWithParent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		items = append(items, *c)
	}
	return items, rows.Err()
}

// ListAll returns every category as a flat list ordered by sibling rank.
func (s *CategoryStore) ListAll() ([]models.Category, error) {
	rows, err := s.db.Query(`
		SELECT ` + categoryColumns + `
		FROM categories
		ORDER BY sort_order, name
	`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var items []models.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		items = append(items, *c)
	}
	return items, rows.Err()
}

// Tree returns the whole catalog as a nested tree: root categories with
// their Children arrays populated recursively.
func (s *CategoryStore) Tree() ([]models.Category, error) {
	flat, err := s.ListAll()
	if err != nil {
		return nil, err
	}
	return buildTree(flat, nil), nil
}

// buildTree recursively builds a tree from a flat list.
func buildTree(flat []models.Category, parentID *uuid.UUID) []models.Category {
	var result []models.Category
	for _, c := range flat {
		if ptrEqual(c.ParentID, parentID) {
			c.Children = buildTree(flat, &c.ID)
			result = append(result, c)
		}
	}
	return result
}

// ptrEqual compares two *uuid.UUID for equality (both nil or same value).
func ptrEqual(a, b *uuid.UUID) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return *a == *b
}

// Update renames an existing category and returns the updated row.
// Structural fields (parent, rank) are exclusively MoveAndReorder's job.
// Returns ErrCategoryNotFound if the id does not exist.
func (s *CategoryStore) Update(id uuid.UUID, name string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNameRequired
	}

	row := s.db.QueryRow(`
		UPDATE categories
		SET name = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING `+categoryColumns,
		name, id,
	)
	c, err := scanCategory(row)
	if err == sql.ErrNoRows {
		return nil, ErrCategoryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update category: %w", err)
	}
	return c, nil
}

// Descendants returns every category transitively below the given one,
// excluding the category itself. An unknown id quietly yields an empty
// result. The traversal is an explicit worklist, one query per node
// visited, with no depth bound.
func (s *CategoryStore) Descendants(id uuid.UUID) ([]models.Category, error) {
	return descendants(s.db, id)
}

func descendants(q dbtx, id uuid.UUID) ([]models.Category, error) {
	var out []models.Category
	queue := []uuid.UUID{id}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		children, err := listChildren(q, cur)
		if err != nil {
			return nil, err
		}
		for _, child := range children {
			out = append(out, child)
			queue = append(queue, child.ID)
		}
	}
	return out, nil
}

// DescendantIDs returns the ids of the given category and everything below
// it. Unlike Descendants, the result includes the input id itself; the two
// forms coexist for their historical call sites (subtree filtering vs
// cascade deletion) and are deliberately not unified.
func (s *CategoryStore) DescendantIDs(id uuid.UUID) ([]uuid.UUID, error) {
	return descendantIDs(s.db, id)
}

func descendantIDs(q dbtx, id uuid.UUID) ([]uuid.UUID, error) {
	ids := []uuid.UUID{id}
	queue := []uuid.UUID{id}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		children, err := listChildren(q, cur)
		if err != nil {
			return nil, err
		}
		for _, child := range children {
			ids = append(ids, child.ID)
			queue = append(queue, child.ID)
		}
	}
	return ids, nil
}

// listChildren fetches the direct children of one category ordered by rank.
func listChildren(q dbtx, parentID uuid.UUID) ([]models.Category, error) {
	rows, err := q.Query(`
		SELECT `+categoryColumns+`
		FROM categories
		WHERE parent_id = $1
		ORDER BY sort_order, name`,
		parentID,
	)
	if err != nil {
		return nil, fmt.Errorf("list children: %w", err)
	}
	defer rows.Close()

	var items []models.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		items = append(items, *c)
	}
	return items, rows.Err()
}

// Delete removes a category, every descendant category, and every product
// referencing any of them, then returns the deleted category. The whole
// cascade runs in one transaction: with the self-FK and the product FK a
// partial cascade would be an immediate integrity violation.
// Returns ErrCategoryNotFound if the id does not exist.
func (s *CategoryStore) Delete(id uuid.UUID) (*models.Category, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("delete category begin: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRow(`SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id)
	deleted, err := scanCategory(row)
	if err == sql.ErrNoRows {
		return nil, ErrCategoryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("delete category lookup: %w", err)
	}

	ids, err := descendantIDs(tx, id)
	if err != nil {
		return nil, fmt.Errorf("delete category descendants: %w", err)
	}

	// Products first: they hold foreign keys into the categories being removed.
	_, err = tx.Exec(
		`DELETE FROM products WHERE category_id IN (`+placeholders(1, len(ids))+`)`,
		uuidArgs(ids)...,
	)
	if err != nil {
		return nil, fmt.Errorf("delete category products: %w", err)
	}

	// Descendant categories (ids[0] is the node itself).
	if len(ids) > 1 {
		_, err = tx.Exec(
			`DELETE FROM categories WHERE id IN (`+placeholders(1, len(ids)-1)+`)`,
			uuidArgs(ids[1:])...,
		)
		if err != nil {
			return nil, fmt.Errorf("delete descendant categories: %w", err)
		}
	}

	if _, err := tx.Exec(`DELETE FROM categories WHERE id = $1`, id); err != nil {
		return nil, fmt.Errorf("delete category: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("delete category commit: %w", err)
	}
	return deleted, nil
}

// MoveAndReorder moves a category under a new parent (nil for root) and
// inserts it at the 1-based position newOrder among its new siblings.
// Both touched sibling groups are rewritten to a dense 1..n sort_order
// sequence. The whole operation runs in a single transaction: on any
// failure no partial reindexing survives.
//
// A newOrder of 1 inserts at the head; a newOrder beyond the current
// sibling count appends at the tail. Moving within the same parent skips
// the old-sibling reindex and just reorders.
//
// Returns the previous parent id (for cache invalidation) and the updated
// category. Fails with ErrCategoryNotFound, ErrSelfMove, or — when
// CycleCheck is on — ErrDescendantMove.
func (s *CategoryStore) MoveAndReorder(id uuid.UUID, newParentID *uuid.UUID, newOrder int) (*uuid.UUID, *models.Category, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, nil, fmt.Errorf("move category begin: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRow(`SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id)
	moved, err := scanCategory(row)
	if err == sql.ErrNoRows {
		return nil, nil, ErrCategoryNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("move category lookup: %w", err)
	}

	if newParentID != nil && *newParentID == id {
		return nil, nil, ErrSelfMove
	}

	// Only direct self-parenting is guarded by default; the ancestor walk
	// is opt-in.
	if s.CycleCheck && newParentID != nil {
		if err := checkAncestorChain(tx, id, *newParentID); err != nil {
			return nil, nil, err
		}
	}

	oldParentID := moved.ParentID

	// Re-index the old sibling group only when the parent actually changes.
	if !ptrEqual(oldParentID, newParentID) {
		oldSiblings, err := listSiblings(tx, oldParentID, id)
		if err != nil {
			return nil, nil, err
		}
		if err := writeOrders(tx, oldSiblings); err != nil {
			return nil, nil, err
		}
	}

	// Reparent first, then re-index the new sibling group.
	_, err = tx.Exec(`
		UPDATE categories SET parent_id = $1, updated_at = NOW() WHERE id = $2
	`, newParentID, id)
	if err != nil {
		return nil, nil, fmt.Errorf("move category reparent: %w", err)
	}

	newSiblings, err := listSiblings(tx, newParentID, id)
	if err != nil {
		return nil, nil, err
	}

	// Walk the existing siblings in rank order, slotting the moved category
	// in when the running position reaches newOrder; past-the-end positions
	// append at the tail.
	ordered := make([]models.Category, 0, len(newSiblings)+1)
	pos := 1
	inserted := false
	for _, sib := range newSiblings {
		if pos == newOrder && !inserted {
			ordered = append(ordered, *moved)
			inserted = true
			pos++
		}
		ordered = append(ordered, sib)
		pos++
	}
	if !inserted {
		ordered = append(ordered, *moved)
	}

	if err := writeOrders(tx, ordered); err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("move category commit: %w", err)
	}

	moved.ParentID = newParentID
	for i := range ordered {
		if ordered[i].ID == id {
			moved.SortOrder = i + 1
			break
		}
	}
	moved.UpdatedAt = time.Now()

	return oldParentID, moved, nil
}

// listSiblings fetches the children of parentID in rank order, excluding
// the category being moved.
func listSiblings(tx *sql.Tx, parentID *uuid.UUID, exclude uuid.UUID) ([]models.Category, error) {
	rows, err := tx.Query(`
		SELECT `+categoryColumns+`
		FROM categories
		WHERE parent_id IS NOT DISTINCT FROM $1 AND id <> $2
		ORDER BY sort_order, name`,
		parentID, exclude,
	)
	if err != nil {
		return nil, fmt.Errorf("list siblings: %w", err)
	}
	defer rows.Close()

	var items []models.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sibling: %w", err)
		}
		items = append(items, *c)
	}
	return items, rows.Err()
}

// writeOrders assigns a dense 1-based sort_order sequence to the given
// categories, in slice order, via a prepared statement.
func writeOrders(tx *sql.Tx, cats []models.Category) error {
	if len(cats) == 0 {
		return nil
	}

	stmt, err := tx.Prepare(`
		UPDATE categories SET sort_order = $1, updated_at = $2 WHERE id = $3`)
	if err != nil {
		return fmt.Errorf("prepare reorder: %w", err)
	}
	defer stmt.Close()

	now := time.Now()
	for i, c := range cats {
		if _, err := stmt.Exec(i+1, now, c.ID); err != nil {
			return fmt.Errorf("reorder category %s: %w", c.ID, err)
		}
	}
	return nil
}

// checkAncestorChain walks up from the prospective parent to the root and
// returns ErrDescendantMove if the moved category appears on the chain.
func checkAncestorChain(tx *sql.Tx, moved, newParent uuid.UUID) error {
	cur := newParent
	for {
		if cur == moved {
			return ErrDescendantMove
		}
		var parent *uuid.UUID
		err := tx.QueryRow(`SELECT parent_id FROM categories WHERE id = $1`, cur).Scan(&parent)
		if err == sql.ErrNoRows || (err == nil && parent == nil) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("ancestor walk: %w", err)
		}
		cur = *parent
	}
}
