// Copyright (c) 2026 Landpress Media SRL <dev@landpress.media>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"landpress/internal/cache"
	"landpress/internal/middleware"
	"landpress/internal/models"
	"landpress/internal/slug"
	"landpress/internal/store"
)

// Content implements the generic CRUD engine. One handler group serves
// every content kind; the KindSpec descriptor passed to each route decides
// which field rules apply.
type Content struct {
	content    *store.ContentStore
	categories *store.CategoryStore
	cache      *cache.ResponseCache
}

// NewContent creates a new Content handler group.
func NewContent(content *store.ContentStore, categories *store.CategoryStore, cache *cache.ResponseCache) *Content {
	return &Content{content: content, categories: categories, cache: cache}
}

// contentJSON decorates a content row with its JSON-shaped columns parsed
// back into real JSON values for the response body.
type contentJSON struct {
	*models.Content
	Tags     json.RawMessage `json:"tags"`
	Images   json.RawMessage `json:"images"`
	Metadata json.RawMessage `json:"metadata"`
}

func renderContent(c *models.Content) contentJSON {
	return contentJSON{
		Content:  c,
		Tags:     rawOr(c.Tags, "[]"),
		Images:   rawOr(c.Images, "[]"),
		Metadata: rawOr(c.Metadata, "{}"),
	}
}

func renderContentList(items []models.Content) []contentJSON {
	out := make([]contentJSON, len(items))
	for i := range items {
		out[i] = renderContent(&items[i])
	}
	return out
}

func rawOr(s, fallback string) json.RawMessage {
	if s == "" || !json.Valid([]byte(s)) {
		return json.RawMessage(fallback)
	}
	return json.RawMessage(s)
}

type contentRequest struct {
	Title       string          `json:"title" validate:"omitempty,max=300"`
	Slug        string          `json:"slug" validate:"omitempty,max=300"`
	Description string          `json:"description" validate:"omitempty,max=5000"`
	Body        string          `json:"body" validate:"omitempty,max=200000"`
	Excerpt     *string         `json:"excerpt"`
	CategoryID  *string         `json:"categoryId"`
	Status      string          `json:"status" validate:"omitempty,oneof=draft published archived"`
	IsActive    *bool           `json:"isActive"`
	IsFeatured  *bool           `json:"isFeatured"`
	SortOrder   *int            `json:"sortOrder"`
	Price       *float64        `json:"price" validate:"omitempty,gte=0"`
	Currency    *string         `json:"currency" validate:"omitempty,max=3"`
	EventDate   *time.Time      `json:"eventDate"`
	StartDate   *time.Time      `json:"startDate"`
	Duration    *string         `json:"duration"`
	Rating      *int            `json:"rating" validate:"omitempty,gte=1,lte=5"`
	Location    *string         `json:"location"`
	ImageURL    *string         `json:"imageUrl"`
	Tags        json.RawMessage `json:"tags"`
	Images      json.RawMessage `json:"images"`
	Metadata    json.RawMessage `json:"metadata"`
}

// List returns all items of one kind for the admin console, drafts and
// inactive items included.
func (h *Content) List(spec models.KindSpec) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := h.content.List(store.ContentFilter{
			Kind:        spec.Kind,
			OrderBySort: spec.OrderBySort,
		})
		if err != nil {
			slog.Error("content list failed", "kind", spec.Kind, "error", err)
			respondInternal(w)
			return
		}
		respond(w, http.StatusOK, renderContentList(items))
	}
}

// Get returns one item of one kind by id.
func (h *Content) Get(spec models.KindSpec) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			respondNotFound(w)
			return
		}

		item, err := h.content.FindByID(spec.Kind, id)
		if err != nil {
			slog.Error("content get failed", "kind", spec.Kind, "error", err)
			respondInternal(w)
			return
		}
		if item == nil {
			respondNotFound(w)
			return
		}
		respond(w, http.StatusOK, renderContent(item))
	}
}

// resolveCategory validates a categoryId reference. Returns a client
// error message when the category does not exist.
func (h *Content) resolveCategory(categoryID string) (*uuid.UUID, string) {
	cid, err := uuid.Parse(categoryID)
	if err != nil {
		return nil, "categoryId must be a valid uuid"
	}
	cat, err := h.categories.FindByID(cid)
	if err != nil {
		slog.Error("category lookup failed", "error", err)
		return nil, "could not resolve categoryId"
	}
	if cat == nil {
		return nil, "categoryId does not reference an existing category"
	}
	return &cid, ""
}

// applyKindFields copies the kind-specific request fields the descriptor
// allows onto the row. Fields a kind does not carry are silently dropped.
func applyKindFields(spec models.KindSpec, c *models.Content, req *contentRequest, fields map[string]json.RawMessage) {
	if spec.HasPrice {
		if _, ok := fields["price"]; ok {
			c.Price = req.Price
		}
		if _, ok := fields["currency"]; ok {
			c.Currency = req.Currency
		}
	}
	if spec.HasEventDate {
		if _, ok := fields["eventDate"]; ok {
			c.EventDate = req.EventDate
		}
	}
	if spec.HasStartDate {
		if _, ok := fields["startDate"]; ok {
			c.StartDate = req.StartDate
		}
		if _, ok := fields["duration"]; ok {
			c.Duration = req.Duration
		}
	}
	if spec.HasRating {
		if _, ok := fields["rating"]; ok {
			c.Rating = req.Rating
		}
	}
	if _, ok := fields["location"]; ok {
		c.Location = req.Location
	}
}

// applyJSONFields validates and copies the JSON-shaped columns. Returns a
// client error message on malformed values.
func applyJSONFields(c *models.Content, req *contentRequest, fields map[string]json.RawMessage) string {
	if _, ok := fields["tags"]; ok {
		if !isJSONValue(string(req.Tags), true) {
			return "tags must be a JSON array"
		}
		c.Tags = string(req.Tags)
	}
	if _, ok := fields["images"]; ok {
		if !isJSONValue(string(req.Images), true) {
			return "images must be a JSON array"
		}
		c.Images = string(req.Images)
	}
	if _, ok := fields["metadata"]; ok {
		if !isJSONValue(string(req.Metadata), false) {
			return "metadata must be a JSON object"
		}
		c.Metadata = string(req.Metadata)
	}
	return ""
}

// Create adds a new item of one kind. The slug derives from the title when
// omitted, blogs default to draft status and record their author, and
// every other kind defaults to active.
func (h *Content) Create(spec models.KindSpec) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req contentRequest
		fields, err := decodeJSONWithFields(r, &req)
		if err != nil {
			respondInvalid(w, err.Error())
			return
		}
		if req.Title == "" {
			respondInvalid(w, "title is required")
			return
		}

		c := &models.Content{
			Kind:        spec.Kind,
			Title:       req.Title,
			Slug:        req.Slug,
			Description: req.Description,
			Body:        req.Body,
			Excerpt:     req.Excerpt,
			ImageURL:    req.ImageURL,
			Tags:        "[]",
			Images:      "[]",
			Metadata:    "{}",
		}
		if c.Slug == "" {
			c.Slug = slug.Generate(c.Title)
		} else {
			c.Slug = slug.Generate(c.Slug)
		}

		if spec.UsesStatus {
			c.Status = models.ContentStatusDraft
			if req.Status != "" {
				c.Status = models.ContentStatus(req.Status)
			}
			c.IsActive = true
		} else {
			c.Status = models.ContentStatusDraft
			c.IsActive = true
			if req.IsActive != nil {
				c.IsActive = *req.IsActive
			}
		}
		if req.IsFeatured != nil {
			c.IsFeatured = *req.IsFeatured
		}
		if req.SortOrder != nil {
			c.SortOrder = *req.SortOrder
		}

		if spec.StampAuthor {
			if sess := middleware.SessionFromCtx(r.Context()); sess != nil {
				c.AuthorID = &sess.UserID
			}
		}

		if req.CategoryID != nil && *req.CategoryID != "" {
			cid, msg := h.resolveCategory(*req.CategoryID)
			if msg != "" {
				respondInvalid(w, msg)
				return
			}
			c.CategoryID = cid
		}

		applyKindFields(spec, c, &req, fields)
		if msg := applyJSONFields(c, &req, fields); msg != "" {
			respondInvalid(w, msg)
			return
		}

		taken, err := h.content.SlugExists(spec.Kind, c.Slug, uuid.Nil)
		if err != nil {
			slog.Error("content slug check failed", "error", err)
			respondInternal(w)
			return
		}
		if taken {
			respondConflict(w, "an item with this slug already exists")
			return
		}

		created, err := h.content.Create(c)
		if err != nil {
			slog.Error("content create failed", "kind", spec.Kind, "error", err)
			respondInternal(w)
			return
		}

		h.cache.InvalidateKind(r.Context(), spec.Path)
		respond(w, http.StatusCreated, renderContent(created))
	}
}

// Update applies a partial patch to an item. The slug is recomputed only
// when the patch retitles the item without supplying a slug of its own.
// For blogs, the publish timestamp is stamped on the first transition to
// published and never re-stamped.
func (h *Content) Update(spec models.KindSpec) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			respondNotFound(w)
			return
		}

		c, err := h.content.FindByID(spec.Kind, id)
		if err != nil {
			slog.Error("content lookup failed", "kind", spec.Kind, "error", err)
			respondInternal(w)
			return
		}
		if c == nil {
			respondNotFound(w)
			return
		}

		var req contentRequest
		fields, err := decodeJSONWithFields(r, &req)
		if err != nil {
			respondInvalid(w, err.Error())
			return
		}

		if _, ok := fields["title"]; ok {
			if req.Title == "" {
				respondInvalid(w, "title cannot be empty")
				return
			}
			c.Title = req.Title
			if _, slugSent := fields["slug"]; !slugSent {
				c.Slug = slug.Generate(req.Title)
			}
		}
		if _, ok := fields["slug"]; ok {
			if req.Slug == "" {
				respondInvalid(w, "slug cannot be empty")
				return
			}
			c.Slug = slug.Generate(req.Slug)
		}
		if _, ok := fields["description"]; ok {
			c.Description = req.Description
		}
		if _, ok := fields["body"]; ok {
			c.Body = req.Body
		}
		if _, ok := fields["excerpt"]; ok {
			c.Excerpt = req.Excerpt
		}
		if _, ok := fields["imageUrl"]; ok {
			c.ImageURL = req.ImageURL
		}
		if spec.UsesStatus {
			if req.Status != "" {
				c.Status = models.ContentStatus(req.Status)
			}
		} else if req.IsActive != nil {
			c.IsActive = *req.IsActive
		}
		if req.IsFeatured != nil {
			c.IsFeatured = *req.IsFeatured
		}
		if req.SortOrder != nil {
			c.SortOrder = *req.SortOrder
		}

		if _, ok := fields["categoryId"]; ok {
			if req.CategoryID == nil || *req.CategoryID == "" {
				c.CategoryID = nil
			} else {
				cid, msg := h.resolveCategory(*req.CategoryID)
				if msg != "" {
					respondInvalid(w, msg)
					return
				}
				c.CategoryID = cid
			}
		}

		applyKindFields(spec, c, &req, fields)
		if msg := applyJSONFields(c, &req, fields); msg != "" {
			respondInvalid(w, msg)
			return
		}

		taken, err := h.content.SlugExists(spec.Kind, c.Slug, id)
		if err != nil {
			slog.Error("content slug check failed", "error", err)
			respondInternal(w)
			return
		}
		if taken {
			respondConflict(w, "an item with this slug already exists")
			return
		}

		updated, err := h.content.Update(c)
		if err != nil {
			slog.Error("content update failed", "kind", spec.Kind, "error", err)
			respondInternal(w)
			return
		}
		if updated == nil {
			respondNotFound(w)
			return
		}

		h.cache.InvalidateKind(r.Context(), spec.Path)
		respond(w, http.StatusOK, renderContent(updated))
	}
}

// Delete removes an item of one kind and returns the removed record.
func (h *Content) Delete(spec models.KindSpec) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			respondNotFound(w)
			return
		}

		item, err := h.content.FindByID(spec.Kind, id)
		if err != nil {
			slog.Error("content lookup failed", "kind", spec.Kind, "error", err)
			respondInternal(w)
			return
		}
		if item == nil {
			respondNotFound(w)
			return
		}

		if err := h.content.Delete(id); err != nil {
			slog.Error("content delete failed", "kind", spec.Kind, "error", err)
			respondInternal(w)
			return
		}

		h.cache.InvalidateKind(r.Context(), spec.Path)
		respond(w, http.StatusOK, renderContent(item))
	}
}
