// Copyright (c) 2026 Landpress Media SRL <dev@landpress.media>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"landpress/internal/cache"
	"landpress/internal/models"
	"landpress/internal/slug"
	"landpress/internal/store"
)

// Categories groups the category hierarchy HTTP handlers.
type Categories struct {
	categories *store.CategoryStore
	cache      *cache.ResponseCache
}

// NewCategories creates a new Categories handler group.
func NewCategories(categories *store.CategoryStore, cache *cache.ResponseCache) *Categories {
	return &Categories{categories: categories, cache: cache}
}

// List returns categories. Default view is root nodes only; ?flat=true
// returns every node, ?parentId= the direct children of one node, and
// ?level= every node at a depth. Newest first.
func (h *Categories) List(w http.ResponseWriter, r *http.Request) {
	var f store.CategoryFilter

	q := r.URL.Query()
	switch {
	case q.Get("flat") == "true":
		f.Flat = true
	case q.Get("parentId") != "":
		id, err := uuid.Parse(q.Get("parentId"))
		if err != nil {
			respondInvalid(w, "parentId must be a valid uuid")
			return
		}
		f.ParentID = &id
	case q.Get("level") != "":
		lvl, err := strconv.Atoi(q.Get("level"))
		if err != nil || lvl < 0 || lvl > models.MaxCategoryLevel {
			respondInvalid(w, "level must be between 0 and 2")
			return
		}
		f.Level = &lvl
	}

	items, err := h.categories.List(f)
	if err != nil {
		slog.Error("category list failed", "error", err)
		respondInternal(w)
		return
	}
	if items == nil {
		items = []models.Category{}
	}
	respond(w, http.StatusOK, items)
}

// Tree returns the full category hierarchy assembled into nested nodes.
func (h *Categories) Tree(w http.ResponseWriter, r *http.Request) {
	tree, err := h.categories.Tree(false)
	if err != nil {
		slog.Error("category tree failed", "error", err)
		respondInternal(w)
		return
	}
	if tree == nil {
		tree = []*models.Category{}
	}
	respond(w, http.StatusOK, tree)
}

// Get returns one category together with its direct children.
func (h *Categories) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondNotFound(w)
		return
	}

	cat, err := h.categories.FindByID(id)
	if err != nil {
		slog.Error("category get failed", "error", err)
		respondInternal(w)
		return
	}
	if cat == nil {
		respondNotFound(w)
		return
	}

	children, err := h.categories.Children(id)
	if err != nil {
		slog.Error("category children failed", "error", err)
		respondInternal(w)
		return
	}

	respond(w, http.StatusOK, map[string]any{
		"category": cat,
		"children": children,
	})
}

type categoryRequest struct {
	Name        string  `json:"name" validate:"omitempty,max=200"`
	Slug        string  `json:"slug" validate:"omitempty,max=200"`
	Description string  `json:"description" validate:"omitempty,max=2000"`
	ParentID    *string `json:"parentId"`
	ImageURL    *string `json:"imageUrl"`
	IsActive    *bool   `json:"isActive"`
	SortOrder   *int    `json:"sortOrder"`
}

// resolveParent looks up the parent category named in a request and
// derives the child's level. Returns a client error message when the
// parent is missing or already at the deepest level.
func (h *Categories) resolveParent(parentID string) (*uuid.UUID, int, string) {
	pid, err := uuid.Parse(parentID)
	if err != nil {
		return nil, 0, "parentId must be a valid uuid"
	}

	parent, err := h.categories.FindByID(pid)
	if err != nil {
		slog.Error("parent lookup failed", "error", err)
		return nil, 0, "could not resolve parentId"
	}
	if parent == nil {
		return nil, 0, "parentId does not reference an existing category"
	}
	if parent.Level >= models.MaxCategoryLevel {
		return nil, 0, "parent category is already at the maximum depth"
	}
	return &pid, parent.Level + 1, ""
}

// Create adds a category. The slug is derived from the name when omitted,
// the level from the parent. New categories default to active.
func (h *Categories) Create(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		respondInvalid(w, err.Error())
		return
	}
	if req.Name == "" {
		respondInvalid(w, "name is required")
		return
	}

	cat := &models.Category{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		IsActive:    true,
	}
	if cat.Slug == "" {
		cat.Slug = slug.Generate(cat.Name)
	} else {
		cat.Slug = slug.Generate(cat.Slug)
	}
	if req.IsActive != nil {
		cat.IsActive = *req.IsActive
	}
	if req.SortOrder != nil {
		cat.SortOrder = *req.SortOrder
	}

	if req.ParentID != nil && *req.ParentID != "" {
		pid, level, msg := h.resolveParent(*req.ParentID)
		if msg != "" {
			respondInvalid(w, msg)
			return
		}
		cat.ParentID = pid
		cat.Level = level
	}

	taken, err := h.categories.SlugExists(cat.Slug, uuid.Nil)
	if err != nil {
		slog.Error("category slug check failed", "error", err)
		respondInternal(w)
		return
	}
	if taken {
		respondConflict(w, "a category with this slug already exists")
		return
	}

	created, err := h.categories.Create(cat)
	if err != nil {
		slog.Error("category create failed", "error", err)
		respondInternal(w)
		return
	}

	h.cache.InvalidateAll(r.Context())
	respond(w, http.StatusCreated, created)
}

// Update applies a partial patch to a category. The slug is recomputed
// only when the patch renames the category without supplying a slug of
// its own. Reparenting is validated against the depth cap and rejected
// for categories that still have children, since their stored levels
// would go stale.
func (h *Categories) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondNotFound(w)
		return
	}

	cat, err := h.categories.FindByID(id)
	if err != nil {
		slog.Error("category lookup failed", "error", err)
		respondInternal(w)
		return
	}
	if cat == nil {
		respondNotFound(w)
		return
	}

	var req categoryRequest
	fields, err := decodeJSONWithFields(r, &req)
	if err != nil {
		respondInvalid(w, err.Error())
		return
	}

	if _, ok := fields["name"]; ok {
		if req.Name == "" {
			respondInvalid(w, "name cannot be empty")
			return
		}
		cat.Name = req.Name
		// Renaming without an explicit slug refreshes the slug too.
		if _, slugSent := fields["slug"]; !slugSent {
			cat.Slug = slug.Generate(req.Name)
		}
	}
	if _, ok := fields["slug"]; ok {
		if req.Slug == "" {
			respondInvalid(w, "slug cannot be empty")
			return
		}
		cat.Slug = slug.Generate(req.Slug)
	}
	if _, ok := fields["description"]; ok {
		cat.Description = req.Description
	}
	if _, ok := fields["imageUrl"]; ok {
		cat.ImageURL = req.ImageURL
	}
	if req.IsActive != nil {
		cat.IsActive = *req.IsActive
	}
	if req.SortOrder != nil {
		cat.SortOrder = *req.SortOrder
	}

	if _, ok := fields["parentId"]; ok {
		hasKids, err := h.categories.HasChildren(id)
		if err != nil {
			slog.Error("category children check failed", "error", err)
			respondInternal(w)
			return
		}

		var newParent *uuid.UUID
		newLevel := 0
		if req.ParentID != nil && *req.ParentID != "" {
			if *req.ParentID == id.String() {
				respondInvalid(w, "a category cannot be its own parent")
				return
			}
			pid, level, msg := h.resolveParent(*req.ParentID)
			if msg != "" {
				respondInvalid(w, msg)
				return
			}
			newParent = pid
			newLevel = level
		}

		// A depth change would leave the children's stored levels stale.
		if hasKids && newLevel != cat.Level {
			respondInvalid(w, "cannot reparent a category that has children")
			return
		}
		cat.ParentID = newParent
		cat.Level = newLevel
	}

	taken, err := h.categories.SlugExists(cat.Slug, id)
	if err != nil {
		slog.Error("category slug check failed", "error", err)
		respondInternal(w)
		return
	}
	if taken {
		respondConflict(w, "a category with this slug already exists")
		return
	}

	updated, err := h.categories.Update(cat)
	if err != nil {
		slog.Error("category update failed", "error", err)
		respondInternal(w)
		return
	}
	if updated == nil {
		respondNotFound(w)
		return
	}

	h.cache.InvalidateAll(r.Context())
	respond(w, http.StatusOK, updated)
}

// Delete removes a childless category and returns the removed record.
// Categories with children are refused; callers must delete or reparent
// the children first.
func (h *Categories) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondNotFound(w)
		return
	}

	cat, err := h.categories.FindByID(id)
	if err != nil {
		slog.Error("category lookup failed", "error", err)
		respondInternal(w)
		return
	}
	if cat == nil {
		respondNotFound(w)
		return
	}

	hasKids, err := h.categories.HasChildren(id)
	if err != nil {
		slog.Error("category children check failed", "error", err)
		respondInternal(w)
		return
	}
	if hasKids {
		respondConflict(w, "category has child categories")
		return
	}

	if err := h.categories.Delete(id); err != nil {
		slog.Error("category delete failed", "error", err)
		respondInternal(w)
		return
	}

	h.cache.InvalidateAll(r.Context())
	respond(w, http.StatusOK, cat)
}
