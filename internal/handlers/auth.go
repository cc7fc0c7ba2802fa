// Copyright (c) 2026 Landpress Media SRL <dev@landpress.media>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/base64"
	"log/slog"
	"net/http"
	"strings"

	"github.com/pquerna/otp/totp"
	qrcode "github.com/skip2/go-qrcode"

	"landpress/internal/middleware"
	"landpress/internal/models"
	"landpress/internal/session"
	"landpress/internal/store"
)

// Auth groups all authentication-related HTTP handlers.
type Auth struct {
	sessions  *session.Store
	userStore *store.UserStore
}

// NewAuth creates a new Auth handler group.
func NewAuth(sessions *session.Store, userStore *store.UserStore) *Auth {
	return &Auth{sessions: sessions, userStore: userStore}
}

type setupRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=8,max=128"`
	Name     string `json:"name" validate:"required,max=200"`
}

// Setup creates the first super admin account. Only permitted while no
// admin users exist; afterwards it always refuses.
func (a *Auth) Setup(w http.ResponseWriter, r *http.Request) {
	count, err := a.userStore.Count()
	if err != nil {
		slog.Error("setup count failed", "error", err)
		respondInternal(w)
		return
	}
	if count > 0 {
		respondError(w, http.StatusForbidden, "setup already completed")
		return
	}

	var req setupRequest
	if err := decodeJSON(r, &req); err != nil {
		respondInvalid(w, err.Error())
		return
	}

	user, err := a.userStore.Create(strings.ToLower(req.Email), req.Password, req.Name, models.RoleSuperAdmin)
	if err != nil {
		slog.Error("setup create failed", "error", err)
		respondInternal(w)
		return
	}

	if _, err := a.sessions.Create(r.Context(), w, &session.Data{
		UserID: user.ID,
		Email:  user.Email,
		Name:   user.Name,
		Role:   string(user.Role),
	}); err != nil {
		slog.Error("setup session failed", "error", err)
		respondInternal(w)
		return
	}

	slog.Info("initial admin created", "email", user.Email)
	respond(w, http.StatusCreated, user)
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Login verifies credentials and creates a session. If the account has
// 2FA enabled, the session starts with the second factor outstanding and
// the client must call 2fa/verify before any admin route will respond.
func (a *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondInvalid(w, err.Error())
		return
	}

	user, err := a.userStore.FindByEmail(strings.ToLower(req.Email))
	if err != nil {
		slog.Error("login lookup failed", "error", err)
		respondInternal(w)
		return
	}

	// A missing user and a bad password get the same answer.
	if user == nil || !a.userStore.CheckPassword(user, req.Password) {
		respondError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	if _, err := a.sessions.Create(r.Context(), w, &session.Data{
		UserID:       user.ID,
		Email:        user.Email,
		Name:         user.Name,
		Role:         string(user.Role),
		TwoFAPending: user.TOTPEnabled,
	}); err != nil {
		slog.Error("session create failed", "error", err)
		respondInternal(w)
		return
	}

	if user.TOTPEnabled {
		respond(w, http.StatusOK, map[string]any{"requires2fa": true})
		return
	}

	slog.Info("admin logged in", "email", user.Email)
	respond(w, http.StatusOK, map[string]any{"user": user})
}

// Logout destroys the session server-side and expires the cookie.
func (a *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	if err := a.sessions.Destroy(r.Context(), w, r); err != nil {
		slog.Error("logout failed", "error", err)
	}
	respond(w, http.StatusOK, map[string]string{"status": "logged out"})
}

// Session returns the currently authenticated admin, or 401.
func (a *Auth) Session(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil || sess.TwoFAPending {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	user, err := a.userStore.FindByID(sess.UserID)
	if err != nil {
		slog.Error("session lookup failed", "error", err)
		respondInternal(w)
		return
	}
	if user == nil {
		// The account was deleted while the session was live.
		a.sessions.Destroy(r.Context(), w, r)
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	respond(w, http.StatusOK, map[string]any{"user": user})
}

// TwoFASetup generates a TOTP secret for the logged-in admin and returns
// it together with a QR code PNG (base64) for authenticator apps. The
// secret stays inactive until the first successful verify. An account
// that already has 2FA enabled is refused; a live session alone must not
// be enough to swap out the second factor.
func (a *Auth) TwoFASetup(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	user, err := a.userStore.FindByID(sess.UserID)
	if err != nil || user == nil {
		slog.Error("user lookup for 2fa setup failed", "error", err)
		respondInternal(w)
		return
	}
	if user.TOTPEnabled {
		respondInvalid(w, "2fa is already enabled")
		return
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      "Landpress",
		AccountName: sess.Email,
	})
	if err != nil {
		slog.Error("totp generate failed", "error", err)
		respondInternal(w)
		return
	}

	if err := a.userStore.SetTOTPSecret(sess.UserID, key.Secret()); err != nil {
		slog.Error("save totp secret failed", "error", err)
		respondInternal(w)
		return
	}

	qrPNG, err := qrcode.Encode(key.URL(), qrcode.Medium, 256)
	if err != nil {
		slog.Error("qr code generation failed", "error", err)
		respondInternal(w)
		return
	}

	respond(w, http.StatusOK, map[string]string{
		"secret": key.Secret(),
		"qrCode": base64.StdEncoding.EncodeToString(qrPNG),
	})
}

type twoFAVerifyRequest struct {
	Code string `json:"code" validate:"required,min=6,max=8"`
}

// TwoFAVerify validates a TOTP code. On the first successful code it
// enables 2FA for the account; on login it clears the outstanding factor.
func (a *Auth) TwoFAVerify(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req twoFAVerifyRequest
	if err := decodeJSON(r, &req); err != nil {
		respondInvalid(w, err.Error())
		return
	}

	user, err := a.userStore.FindByID(sess.UserID)
	if err != nil || user == nil {
		slog.Error("user lookup for 2fa failed", "error", err)
		respondInternal(w)
		return
	}
	if user.TOTPSecret == nil {
		respondInvalid(w, "2fa is not set up")
		return
	}

	if !totp.Validate(req.Code, *user.TOTPSecret) {
		respondError(w, http.StatusUnauthorized, "invalid code")
		return
	}

	if !user.TOTPEnabled {
		if err := a.userStore.EnableTOTP(user.ID); err != nil {
			slog.Error("enable totp failed", "error", err)
			respondInternal(w)
			return
		}
	}

	sess.TwoFAPending = false
	if err := a.sessions.Update(r.Context(), r, sess); err != nil {
		slog.Error("session update failed", "error", err)
		respondInternal(w)
		return
	}

	respond(w, http.StatusOK, map[string]any{"user": user})
}
