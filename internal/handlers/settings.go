// Copyright (c) 2026 Landpress Media SRL <dev@landpress.media>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"

	"landpress/internal/cache"
	"landpress/internal/store"
)

// Settings groups the site settings handlers.
type Settings struct {
	settings *store.SiteSettingStore
	cache    *cache.ResponseCache
}

// NewSettings creates a new Settings handler group.
func NewSettings(settings *store.SiteSettingStore, cache *cache.ResponseCache) *Settings {
	return &Settings{settings: settings, cache: cache}
}

// Get returns every site setting as a key/value map.
func (h *Settings) Get(w http.ResponseWriter, r *http.Request) {
	all, err := h.settings.All()
	if err != nil {
		slog.Error("settings load failed", "error", err)
		respondInternal(w)
		return
	}
	respond(w, http.StatusOK, all)
}

// Put upserts the submitted key/value pairs in one transaction. Keys not
// present in the body are left untouched.
func (h *Settings) Put(w http.ResponseWriter, r *http.Request) {
	var req map[string]string
	if err := decodeJSON(r, &req); err != nil {
		respondInvalid(w, err.Error())
		return
	}
	if len(req) == 0 {
		respondInvalid(w, "no settings provided")
		return
	}
	for k := range req {
		if k == "" {
			respondInvalid(w, "setting keys cannot be empty")
			return
		}
	}

	if err := h.settings.SetMany(req); err != nil {
		slog.Error("settings save failed", "error", err)
		respondInternal(w)
		return
	}

	// Settings feed public responses, so drop the whole cache.
	h.cache.InvalidateAll(r.Context())

	all, err := h.settings.All()
	if err != nil {
		slog.Error("settings reload failed", "error", err)
		respondInternal(w)
		return
	}
	respond(w, http.StatusOK, all)
}
