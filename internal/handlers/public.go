// Copyright (c) 2026 Landpress Media SRL <dev@landpress.media>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"landpress/internal/cache"
	"landpress/internal/markdown"
	"landpress/internal/models"
	"landpress/internal/store"
)

// maxPublicLimit caps the ?limit= parameter on public listings.
const maxPublicLimit = 100

// Public serves the read-only content API consumed by the site frontend.
// List responses are cached in Valkey with a short TTL.
type Public struct {
	content    *store.ContentStore
	categories *store.CategoryStore
	settings   *store.SiteSettingStore
	cache      *cache.ResponseCache
}

// NewPublic creates a new Public handler group.
func NewPublic(content *store.ContentStore, categories *store.CategoryStore, settings *store.SiteSettingStore, cache *cache.ResponseCache) *Public {
	return &Public{content: content, categories: categories, settings: settings, cache: cache}
}

// publicContentJSON adds the rendered HTML body for blog posts.
type publicContentJSON struct {
	contentJSON
	BodyHTML string `json:"bodyHtml,omitempty"`
}

func renderPublicContent(c *models.Content) publicContentJSON {
	out := publicContentJSON{contentJSON: renderContent(c)}
	if c.Kind == models.KindBlog && c.Body != "" {
		html, err := markdown.ToHTML(c.Body)
		if err != nil {
			slog.Warn("markdown render failed", "slug", c.Slug, "error", err)
		} else {
			out.BodyHTML = html
		}
	}
	return out
}

// respondCached serializes v, stores it under the cache key, and writes it.
func (h *Public) respondCached(w http.ResponseWriter, r *http.Request, key string, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		slog.Error("public response encode failed", "error", err)
		respondInternal(w)
		return
	}
	h.cache.Set(r.Context(), key, body)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

// List answers GET /api/public/content?type=... for every content kind
// plus the pseudo-types "categories" and "settings". Only published blogs
// and active items of other kinds are returned.
func (h *Public) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	typ := q.Get("type")
	if typ == "" {
		respondInvalid(w, "type parameter is required")
		return
	}

	cacheKey := typ + ":list:" + q.Encode()
	if body, ok := h.cache.Get(r.Context(), cacheKey); ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(body)
		return
	}

	switch typ {
	case "categories":
		tree, err := h.categories.Tree(true)
		if err != nil {
			slog.Error("public categories failed", "error", err)
			respondInternal(w)
			return
		}
		if tree == nil {
			tree = []*models.Category{}
		}
		h.respondCached(w, r, cacheKey, tree)
		return

	case "settings":
		settings, err := h.settings.Public()
		if err != nil {
			slog.Error("public settings failed", "error", err)
			respondInternal(w)
			return
		}
		h.respondCached(w, r, cacheKey, settings)
		return
	}

	spec, ok := models.KindByPublicType(typ)
	if !ok {
		respondInvalid(w, "unknown content type")
		return
	}

	f := store.ContentFilter{
		Kind:        spec.Kind,
		PublicOnly:  true,
		OrderBySort: spec.OrderBySort,
	}
	if v := q.Get("featured"); v != "" {
		featured := v == "true"
		f.Featured = &featured
	}
	if v := q.Get("categoryId"); v != "" {
		cid, err := uuid.Parse(v)
		if err != nil {
			respondInvalid(w, "categoryId must be a valid uuid")
			return
		}
		f.CategoryID = &cid
	}
	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 1 || limit > maxPublicLimit {
			respondInvalid(w, "limit must be between 1 and 100")
			return
		}
		f.Limit = limit
	}

	items, err := h.content.List(f)
	if err != nil {
		slog.Error("public list failed", "type", typ, "error", err)
		respondInternal(w)
		return
	}

	out := make([]publicContentJSON, len(items))
	for i := range items {
		out[i] = renderPublicContent(&items[i])
	}
	h.respondCached(w, r, cacheKey, out)
}

// Get answers GET /api/public/content/{id}?type=... for kinds that expose
// single-item reads. Blog reads increment the view counter.
func (h *Public) Get(w http.ResponseWriter, r *http.Request) {
	typ := r.URL.Query().Get("type")
	if typ == "" {
		respondInvalid(w, "type parameter is required")
		return
	}

	spec, ok := models.KindByPublicType(typ)
	if !ok || !spec.PublicItem {
		respondNotFound(w)
		return
	}

	idParam := chi.URLParam(r, "id")
	var item *models.Content
	var err error

	// Accept a uuid or a slug in the path.
	if id, parseErr := uuid.Parse(idParam); parseErr == nil {
		item, err = h.content.FindByID(spec.Kind, id)
	} else {
		item, err = h.content.FindBySlug(spec.Kind, idParam)
	}
	if err != nil {
		slog.Error("public get failed", "type", typ, "error", err)
		respondInternal(w)
		return
	}

	// Unpublished items are invisible to the public, not forbidden.
	if item == nil || !item.IsPublished() {
		respondNotFound(w)
		return
	}

	if spec.CountsViews {
		if err := h.content.IncrementViews(item.ID); err != nil {
			slog.Warn("view increment failed", "id", item.ID, "error", err)
		} else {
			item.Views++
		}
	}

	respond(w, http.StatusOK, renderPublicContent(item))
}
