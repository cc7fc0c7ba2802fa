// Copyright (c) 2026 Landpress Media SRL <dev@landpress.media>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"landpress/internal/middleware"
	"landpress/internal/models"
	"landpress/internal/store"
)

// Users groups the admin user management handlers.
type Users struct {
	users *store.UserStore
}

// NewUsers creates a new Users handler group.
func NewUsers(users *store.UserStore) *Users {
	return &Users{users: users}
}

// List returns all admin users.
func (h *Users) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List()
	if err != nil {
		slog.Error("user list failed", "error", err)
		respondInternal(w)
		return
	}
	if users == nil {
		users = []models.AdminUser{}
	}
	respond(w, http.StatusOK, users)
}

type createUserRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=8,max=128"`
	Name     string `json:"name" validate:"required,max=200"`
	Role     string `json:"role" validate:"required,oneof=admin super_admin editor"`
}

// Create adds a new admin user. A duplicate email answers Conflict.
func (h *Users) Create(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := decodeJSON(r, &req); err != nil {
		respondInvalid(w, err.Error())
		return
	}

	email := strings.ToLower(req.Email)
	existing, err := h.users.FindByEmail(email)
	if err != nil {
		slog.Error("user lookup failed", "error", err)
		respondInternal(w)
		return
	}
	if existing != nil {
		respondConflict(w, "a user with this email already exists")
		return
	}

	user, err := h.users.Create(email, req.Password, req.Name, models.Role(req.Role))
	if err != nil {
		slog.Error("user create failed", "error", err)
		respondInternal(w)
		return
	}

	slog.Info("admin user created", "email", user.Email, "role", user.Role)
	respond(w, http.StatusCreated, user)
}

type updateUserRequest struct {
	Name     string `json:"name" validate:"required,max=200"`
	Role     string `json:"role" validate:"required,oneof=admin super_admin editor"`
	Password string `json:"password" validate:"omitempty,min=8,max=128"`
}

// Update modifies a user's name and role, and re-hashes a new password
// when one is supplied.
func (h *Users) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondNotFound(w)
		return
	}

	user, err := h.users.FindByID(id)
	if err != nil {
		slog.Error("user lookup failed", "error", err)
		respondInternal(w)
		return
	}
	if user == nil {
		respondNotFound(w)
		return
	}

	var req updateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		respondInvalid(w, err.Error())
		return
	}

	if err := h.users.Update(id, req.Name, models.Role(req.Role)); err != nil {
		slog.Error("user update failed", "error", err)
		respondInternal(w)
		return
	}
	if req.Password != "" {
		if err := h.users.UpdatePassword(id, req.Password); err != nil {
			slog.Error("password update failed", "error", err)
			respondInternal(w)
			return
		}
	}

	updated, err := h.users.FindByID(id)
	if err != nil || updated == nil {
		slog.Error("user reload failed", "error", err)
		respondInternal(w)
		return
	}
	respond(w, http.StatusOK, updated)
}

// Delete removes an admin user and returns the removed record. Deleting
// your own account is blocked so the console cannot lock itself out.
func (h *Users) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondNotFound(w)
		return
	}

	sess := middleware.SessionFromCtx(r.Context())
	if sess != nil && sess.UserID == id {
		respondInvalid(w, "you cannot delete your own account")
		return
	}

	user, err := h.users.FindByID(id)
	if err != nil {
		slog.Error("user lookup failed", "error", err)
		respondInternal(w)
		return
	}
	if user == nil {
		respondNotFound(w)
		return
	}

	if err := h.users.Delete(id); err != nil {
		slog.Error("user delete failed", "error", err)
		respondInternal(w)
		return
	}

	slog.Info("admin user deleted", "email", user.Email)
	respond(w, http.StatusOK, user)
}
