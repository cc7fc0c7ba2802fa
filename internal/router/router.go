// Package router sets up all HTTP routes and middleware chains for the
// landpress API server. Routes split into the session-gated admin API and
// the open public content API.
package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"landpress/internal/handlers"
	"landpress/internal/middleware"
	"landpress/internal/models"
	"landpress/internal/session"
	"landpress/internal/storage"
)

// Deps carries everything the router wires together.
type Deps struct {
	Sessions   *session.Store
	Auth       *handlers.Auth
	Categories *handlers.Categories
	Content    *handlers.Content
	Users      *handlers.Users
	Public     *handlers.Public
	Upload     *handlers.Upload
	Settings   *handlers.Settings

	// LocalFiles serves uploads from disk when S3 is not configured.
	LocalFiles *storage.LocalBackend
}

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(deps Deps) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)
	r.Use(middleware.LoadSession(deps.Sessions))

	// Health check: no auth, no CSRF.
	r.Get("/health", healthHandler)

	// Credential endpoints get a per-IP rate limit.
	loginLimiter := middleware.NewRateLimiter(10, time.Minute)

	r.Route("/api/admin", func(r chi.Router) {
		r.Use(middleware.CSRF)

		// Auth routes, reachable without a completed session.
		r.Group(func(r chi.Router) {
			r.Use(loginLimiter.Middleware)
			r.Post("/auth/setup", deps.Auth.Setup)
			r.Post("/auth/login", deps.Auth.Login)
		})
		r.Post("/auth/logout", deps.Auth.Logout)
		r.Get("/auth/session", deps.Auth.Session)
		r.Post("/auth/2fa/verify", deps.Auth.TwoFAVerify)

		// Everything below needs an authenticated admin with 2FA settled.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin)

			r.Post("/auth/2fa/setup", deps.Auth.TwoFASetup)

			r.Route("/categories", func(r chi.Router) {
				r.Get("/", deps.Categories.List)
				r.Get("/tree", deps.Categories.Tree)
				r.Post("/", deps.Categories.Create)
				r.Get("/{id}", deps.Categories.Get)
				r.Put("/{id}", deps.Categories.Update)
				r.Delete("/{id}", deps.Categories.Delete)
			})

			// One route block per content kind, all served by the same
			// generic engine.
			for _, spec := range models.Kinds() {
				spec := spec
				r.Route("/"+spec.Path, func(r chi.Router) {
					r.Get("/", deps.Content.List(spec))
					r.Post("/", deps.Content.Create(spec))
					r.Get("/{id}", deps.Content.Get(spec))
					r.Put("/{id}", deps.Content.Update(spec))
					r.Delete("/{id}", deps.Content.Delete(spec))
				})
			}

			r.Route("/users", func(r chi.Router) {
				r.Get("/", deps.Users.List)
				r.Post("/", deps.Users.Create)
				r.Put("/{id}", deps.Users.Update)
				r.Delete("/{id}", deps.Users.Delete)
			})

			r.Route("/media", func(r chi.Router) {
				r.Get("/", deps.Upload.List)
				r.Delete("/{id}", deps.Upload.Delete)
			})
			r.Post("/upload", deps.Upload.Handle)

			r.Get("/settings", deps.Settings.Get)
			r.Put("/settings", deps.Settings.Put)
		})
	})

	// Public content API, read-only.
	r.Route("/api/public", func(r chi.Router) {
		r.Get("/content", deps.Public.List)
		r.Get("/content/{id}", deps.Public.Get)
	})

	// Locally stored uploads are served straight from disk.
	if deps.LocalFiles != nil {
		fs := http.StripPrefix("/files/", http.FileServer(http.Dir(deps.LocalFiles.Dir())))
		r.Get("/files/*", fs.ServeHTTP)
	}

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
