// Copyright (c) 2026 Landpress Media SRL <dev@landpress.media>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"landpress/internal/models"
)

// ContentStore handles all content-related database operations. It serves
// every content kind (blogs, products, events, testimonials, FAQs, courses,
// marketplace items, resources) through the unified content table.
type ContentStore struct {
	db *sql.DB
}

// NewContentStore creates a new ContentStore with the given database connection.
func NewContentStore(db *sql.DB) *ContentStore {
	return &ContentStore{db: db}
}

const contentColumns = `id, kind, title, slug, description, body, excerpt,
	category_id, author_id, status, is_active, is_featured, published_at,
	views, sort_order, price, currency, event_date, start_date, duration,
	rating, location, image_url, tags, images, metadata, created_at, updated_at`

// scanContent scans a row into a Content struct.
func scanContent(scanner interface{ Scan(...any) error }) (*models.Content, error) {
	var c models.Content
	err := scanner.Scan(
		&c.ID, &c.Kind, &c.Title, &c.Slug, &c.Description, &c.Body, &c.Excerpt,
		&c.CategoryID, &c.AuthorID, &c.Status, &c.IsActive, &c.IsFeatured, &c.PublishedAt,
		&c.Views, &c.SortOrder, &c.Price, &c.Currency, &c.EventDate, &c.StartDate, &c.Duration,
		&c.Rating, &c.Location, &c.ImageURL, &c.Tags, &c.Images, &c.Metadata, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ContentFilter narrows a content listing for one kind.
type ContentFilter struct {
	Kind        models.ContentKind
	PublicOnly  bool       // published blogs / active other kinds
	Featured    *bool      // filter on is_featured when set
	CategoryID  *uuid.UUID // filter to one category when set
	Limit       int        // 0 = no limit
	OrderBySort bool       // sort_order first, then newest (faq, testimonial)
}

// List returns content items of one kind matching the filter.
func (s *ContentStore) List(f ContentFilter) ([]models.Content, error) {
	query := `SELECT ` + contentColumns + ` FROM content WHERE kind = $1`
	args := []any{f.Kind}

	if f.PublicOnly {
		if f.Kind == models.KindBlog {
			query += ` AND status = 'published'`
		} else {
			query += ` AND is_active = TRUE`
		}
	}
	if f.Featured != nil {
		args = append(args, *f.Featured)
		query += fmt.Sprintf(" AND is_featured = $%d", len(args))
	}
	if f.CategoryID != nil {
		args = append(args, *f.CategoryID)
		query += fmt.Sprintf(" AND category_id = $%d", len(args))
	}

	if f.OrderBySort {
		query += ` ORDER BY sort_order ASC, created_at DESC`
	} else if f.PublicOnly && f.Kind == models.KindBlog {
		query += ` ORDER BY published_at DESC NULLS LAST`
	} else {
		query += ` ORDER BY created_at DESC`
	}

	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list content: %w", err)
	}
	defer rows.Close()

	var items []models.Content
	for rows.Next() {
		c, err := scanContent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan content: %w", err)
		}
		items = append(items, *c)
	}
	return items, rows.Err()
}

// FindByID retrieves a content item of one kind by its UUID. Returns nil
// if not found (or if the row belongs to a different kind).
func (s *ContentStore) FindByID(kind models.ContentKind, id uuid.UUID) (*models.Content, error) {
	row := s.db.QueryRow(`SELECT `+contentColumns+` FROM content WHERE kind = $1 AND id = $2`, kind, id)
	c, err := scanContent(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find content by id: %w", err)
	}
	return c, nil
}

// FindBySlug retrieves a content item of one kind by its slug.
func (s *ContentStore) FindBySlug(kind models.ContentKind, slug string) (*models.Content, error) {
	row := s.db.QueryRow(`SELECT `+contentColumns+` FROM content WHERE kind = $1 AND slug = $2`, kind, slug)
	c, err := scanContent(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find content by slug: %w", err)
	}
	return c, nil
}

// SlugExists reports whether a slug is already taken within a kind by a
// row other than exclude (pass uuid.Nil when creating).
func (s *ContentStore) SlugExists(kind models.ContentKind, slug string, exclude uuid.UUID) (bool, error) {
	var exists bool
	err := s.db.QueryRow(
		`SELECT EXISTS (SELECT 1 FROM content WHERE kind = $1 AND slug = $2 AND id <> $3)`,
		kind, slug, exclude,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check content slug: %w", err)
	}
	return exists, nil
}

// Create inserts a new content item and returns it with the generated ID.
func (s *ContentStore) Create(c *models.Content) (*models.Content, error) {
	if c.Status == "" {
		c.Status = models.ContentStatusDraft
	}
	// A blog entering the world already published gets its timestamp now.
	if c.Status == models.ContentStatusPublished && c.PublishedAt == nil {
		now := time.Now()
		c.PublishedAt = &now
	}

	row := s.db.QueryRow(`
		INSERT INTO content (kind, title, slug, description, body, excerpt,
			category_id, author_id, status, is_active, is_featured, published_at,
			sort_order, price, currency, event_date, start_date, duration,
			rating, location, image_url, tags, images, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12,
			$13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24)
		RETURNING `+contentColumns,
		c.Kind, c.Title, c.Slug, c.Description, c.Body, c.Excerpt,
		c.CategoryID, c.AuthorID, c.Status, c.IsActive, c.IsFeatured, c.PublishedAt,
		c.SortOrder, c.Price, c.Currency, c.EventDate, c.StartDate, c.Duration,
		c.Rating, c.Location, c.ImageURL, c.Tags, c.Images, c.Metadata,
	)
	result, err := scanContent(row)
	if err != nil {
		return nil, fmt.Errorf("create content: %w", err)
	}
	return result, nil
}

// Update replaces an existing content item's mutable columns and returns
// the stored row. Returns nil if the id does not exist.
func (s *ContentStore) Update(c *models.Content) (*models.Content, error) {
	// If transitioning to published and no published_at set, set it now.
	// An already-set published_at is never re-stamped.
	if c.Status == models.ContentStatusPublished && c.PublishedAt == nil {
		now := time.Now()
		c.PublishedAt = &now
	}

	row := s.db.QueryRow(`
		UPDATE content SET
			title = $1, slug = $2, description = $3, body = $4, excerpt = $5,
			category_id = $6, status = $7, is_active = $8, is_featured = $9,
			published_at = $10, sort_order = $11, price = $12, currency = $13,
			event_date = $14, start_date = $15, duration = $16, rating = $17,
			location = $18, image_url = $19, tags = $20, images = $21,
			metadata = $22, updated_at = NOW()
		WHERE id = $23
		RETURNING `+contentColumns,
		c.Title, c.Slug, c.Description, c.Body, c.Excerpt,
		c.CategoryID, c.Status, c.IsActive, c.IsFeatured,
		c.PublishedAt, c.SortOrder, c.Price, c.Currency,
		c.EventDate, c.StartDate, c.Duration, c.Rating,
		c.Location, c.ImageURL, c.Tags, c.Images, c.Metadata, c.ID,
	)
	result, err := scanContent(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("update content: %w", err)
	}
	return result, nil
}

// Delete removes a content item by ID.
func (s *ContentStore) Delete(id uuid.UUID) error {
	_, err := s.db.Exec(`DELETE FROM content WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete content: %w", err)
	}
	return nil
}

// IncrementViews bumps the view counter for a blog post. Runs as a single
// UPDATE so concurrent public reads don't lose counts.
func (s *ContentStore) IncrementViews(id uuid.UUID) error {
	_, err := s.db.Exec(`UPDATE content SET views = views + 1 WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("increment views: %w", err)
	}
	return nil
}

// CountByKind returns the number of content items of the given kind.
func (s *ContentStore) CountByKind(kind models.ContentKind) (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM content WHERE kind = $1`, kind).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count content: %w", err)
	}
	return count, nil
}
