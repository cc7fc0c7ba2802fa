// Copyright (c) 2026 Landpress Media SRL <dev@landpress.media>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"landpress/internal/models"
)

// CategoryStore manages categories in the database.
type CategoryStore struct {
	db *sql.DB
}

// NewCategoryStore returns a new CategoryStore.
func NewCategoryStore(db *sql.DB) *CategoryStore {
	return &CategoryStore{db: db}
}

const categoryColumns = `id, name, slug, description, parent_id, level, image_url, is_active, sort_order, created_at, updated_at`

// scanCategory scans a row into a Category struct.
func scanCategory(scanner interface{ Scan(...any) error }) (*models.Category, error) {
	var c models.Category
	err := scanner.Scan(
		&c.ID, &c.Name, &c.Slug, &c.Description, &c.ParentID, &c.Level,
		&c.ImageURL, &c.IsActive, &c.SortOrder, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// CategoryFilter narrows a category listing. Zero value lists root nodes
// only, newest first. This is the default admin view.
type CategoryFilter struct {
	Flat       bool       // every node, unfiltered
	ParentID   *uuid.UUID // direct children of a node
	Level      *int       // every node at a depth
	ActiveOnly bool       // public-read boundary: hide inactive categories
}

// List returns categories matching the filter, most-recently-created first.
func (s *CategoryStore) List(f CategoryFilter) ([]models.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories`
	var conds []string
	var args []any

	switch {
	case f.Flat:
		// no structural condition
	case f.ParentID != nil:
		args = append(args, *f.ParentID)
		conds = append(conds, fmt.Sprintf("parent_id = $%d", len(args)))
	case f.Level != nil:
		args = append(args, *f.Level)
		conds = append(conds, fmt.Sprintf("level = $%d", len(args)))
	default:
		conds = append(conds, "parent_id IS NULL")
	}

	if f.ActiveOnly {
		conds = append(conds, "is_active = TRUE")
	}

	for i, c := range conds {
		if i == 0 {
			query += " WHERE " + c
		} else {
			query += " AND " + c
		}
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.db.Query(query, args...)
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

// Tree returns all categories assembled into a parent→children tree.
// Inactive nodes are excluded when activeOnly is set.
func (s *CategoryStore) Tree(activeOnly bool) ([]*models.Category, error) {
	flat, err := s.List(CategoryFilter{Flat: true, ActiveOnly: activeOnly})
	if err != nil {
		return nil, err
	}
	return models.BuildCategoryTree(flat), nil
}

// FindByID retrieves a category by ID. Returns nil if not found.
func (s *CategoryStore) FindByID(id uuid.UUID) (*models.Category, error) {
	row := s.db.QueryRow(`SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id)
	c, err := scanCategory(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find category by id: %w", err)
	}
	return c, nil
}

// Children returns the direct children of a category, newest first.
func (s *CategoryStore) Children(id uuid.UUID) ([]models.Category, error) {
	return s.List(CategoryFilter{ParentID: &id})
}

// HasChildren reports whether any category references id as its parent.
// The deletion guard checks this at the application layer so the failure
// is a clean Conflict rather than a raw foreign-key error.
func (s *CategoryStore) HasChildren(id uuid.UUID) (bool, error) {
	var exists bool
	err := s.db.QueryRow(
		`SELECT EXISTS (SELECT 1 FROM categories WHERE parent_id = $1)`, id,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check category children: %w", err)
	}
	return exists, nil
}

// SlugExists reports whether a slug is already taken by a category other
// than exclude (pass uuid.Nil when creating).
func (s *CategoryStore) SlugExists(slug string, exclude uuid.UUID) (bool, error) {
	var exists bool
	err := s.db.QueryRow(
		`SELECT EXISTS (SELECT 1 FROM categories WHERE slug = $1 AND id <> $2)`,
		slug, exclude,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check category slug: %w", err)
	}
	return exists, nil
}

// Create inserts a new category and returns it.
func (s *CategoryStore) Create(c *models.Category) (*models.Category, error) {
	row := s.db.QueryRow(`
		INSERT INTO categories (name, slug, description, parent_id, level, image_url, is_active, sort_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+categoryColumns,
		c.Name, c.Slug, c.Description, c.ParentID, c.Level, c.ImageURL, c.IsActive, c.SortOrder,
	)
	result, err := scanCategory(row)
	if err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return result, nil
}

// Update modifies an existing category and returns the stored row.
func (s *CategoryStore) Update(c *models.Category) (*models.Category, error) {
	row := s.db.QueryRow(`
		UPDATE categories SET
			name = $1, slug = $2, description = $3, parent_id = $4, level = $5,
			image_url = $6, is_active = $7, sort_order = $8, updated_at = NOW()
		WHERE id = $9
		RETURNING `+categoryColumns,
		c.Name, c.Slug, c.Description, c.ParentID, c.Level,
		c.ImageURL, c.IsActive, c.SortOrder, c.ID,
	)
	result, err := scanCategory(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("update category: %w", err)
	}
	return result, nil
}

// Delete removes a category by ID. Callers must check HasChildren first;
// the RESTRICT constraint is only the backstop.
func (s *CategoryStore) Delete(id uuid.UUID) error {
	_, err := s.db.Exec(`DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return nil
}
