// Copyright (c) 2026 Landpress Media SRL <dev@landpress.media>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// ContentKind discriminates the entity kinds sharing the unified content table.
type ContentKind string

const (
	KindBlog        ContentKind = "blog"
	KindProduct     ContentKind = "product"
	KindEvent       ContentKind = "event"
	KindTestimonial ContentKind = "testimonial"
	KindFAQ         ContentKind = "faq"
	KindCourse      ContentKind = "course"
	KindMarketplace ContentKind = "marketplace"
	KindResource    ContentKind = "resource"
)

// ContentStatus represents the publishing state of a blog post.
// Other kinds use the IsActive flag instead.
type ContentStatus string

const (
	ContentStatusDraft     ContentStatus = "draft"
	ContentStatusPublished ContentStatus = "published"
	ContentStatusArchived  ContentStatus = "archived"
)

// Content represents one row of the unified content table. All kinds share
// the common columns; kind-specific columns are nullable and only populated
// for the kinds that use them.
type Content struct {
	ID          uuid.UUID   `json:"id"`
	Kind        ContentKind `json:"kind"`
	Title       string      `json:"title"`
	Slug        string      `json:"slug"`
	Description string      `json:"description"`
	Body        string      `json:"body"`
	Excerpt     *string     `json:"excerpt,omitempty"`

	CategoryID *uuid.UUID `json:"categoryId"`
	AuthorID   *uuid.UUID `json:"authorId,omitempty"`

	Status      ContentStatus `json:"status,omitempty"` // blogs only
	IsActive    bool          `json:"isActive"`
	IsFeatured  bool          `json:"isFeatured"`
	PublishedAt *time.Time    `json:"publishedAt,omitempty"`
	Views       int           `json:"views"`
	SortOrder   int           `json:"sortOrder"`

	// Kind-specific fields.
	Price     *float64   `json:"price,omitempty"`     // product, course, marketplace
	Currency  *string    `json:"currency,omitempty"`  // product, course, marketplace
	EventDate *time.Time `json:"eventDate,omitempty"` // event
	StartDate *time.Time `json:"startDate,omitempty"` // course
	Duration  *string    `json:"duration,omitempty"`  // course ("8 weeks")
	Rating    *int       `json:"rating,omitempty"`    // testimonial (1-5)
	Location  *string    `json:"location,omitempty"`  // event, product

	ImageURL *string `json:"imageUrl,omitempty"`

	// JSON-shaped columns stored as text and parsed back on read.
	Tags     string `json:"-"`
	Images   string `json:"-"`
	Metadata string `json:"-"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// IsPublished returns true if a blog is in published status, or if a
// non-blog kind is active.
func (c *Content) IsPublished() bool {
	if c.Kind == KindBlog {
		return c.Status == ContentStatusPublished
	}
	return c.IsActive
}

// KindSpec describes how the generic CRUD engine treats one content kind:
// which derived-field rules apply, how lists are ordered, and what the
// public read boundary exposes.
type KindSpec struct {
	Kind ContentKind
	Path string // URL path segment, e.g. "blogs"

	UsesStatus  bool // tri-state draft/published/archived (blogs)
	OrderBySort bool // list by sortOrder first, then newest (faq, testimonial)
	PublicItem  bool // single-item public read allowed
	CountsViews bool // public single read increments the view counter
	StampAuthor bool // creator's admin id recorded as authorId

	HasPrice     bool
	HasEventDate bool
	HasStartDate bool
	HasRating    bool
}

// kindSpecs is the registry driving the generic CRUD engine. One descriptor
// per kind instead of seven hand-copied controllers.
var kindSpecs = []KindSpec{
	{Kind: KindBlog, Path: "blogs", UsesStatus: true, PublicItem: true, CountsViews: true, StampAuthor: true},
	{Kind: KindProduct, Path: "products", PublicItem: true, HasPrice: true},
	{Kind: KindEvent, Path: "events", PublicItem: true, HasEventDate: true},
	{Kind: KindTestimonial, Path: "testimonials", OrderBySort: true, HasRating: true},
	{Kind: KindFAQ, Path: "faqs", OrderBySort: true},
	{Kind: KindCourse, Path: "courses", PublicItem: true, HasPrice: true, HasStartDate: true},
	{Kind: KindMarketplace, Path: "marketplace", HasPrice: true},
	{Kind: KindResource, Path: "resources"},
}

// Kinds returns the full kind registry in declaration order.
func Kinds() []KindSpec {
	return kindSpecs
}

// KindByName returns the descriptor for a kind name ("blog", "product", ...).
func KindByName(name string) (KindSpec, bool) {
	for _, ks := range kindSpecs {
		if string(ks.Kind) == name {
			return ks, true
		}
	}
	return KindSpec{}, false
}

// KindByPath returns the descriptor for a URL path segment ("blogs", ...).
func KindByPath(path string) (KindSpec, bool) {
	for _, ks := range kindSpecs {
		if ks.Path == path {
			return ks, true
		}
	}
	return KindSpec{}, false
}

// KindByPublicType resolves the public content API's type parameter, which
// uses the plural path form ("blogs", "products", "marketplace", ...).
func KindByPublicType(t string) (KindSpec, bool) {
	return KindByPath(t)
}
