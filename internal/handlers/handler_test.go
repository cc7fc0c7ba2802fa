// Copyright (c) 2026 Landpress Media SRL <dev@landpress.media>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure for handler integration
// tests. Tests are skipped when PostgreSQL or Valkey are unavailable.
package handlers

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"

	"landpress/internal/cache"
	"landpress/internal/database"
	"landpress/internal/middleware"
	"landpress/internal/session"
	"landpress/internal/store"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test PostgreSQL and runs migrations.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "landpress")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "landpress")
	dsn := "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Skipf("skipping: cannot open DB: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping: DB not reachable: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("migrate: %v", err)
	}
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// testValkeyClient returns a Redis client for handler tests on DB 15.
func testValkeyClient(t *testing.T) *redis.Client {
	t.Helper()

	host := envOr("VALKEY_HOST", "localhost")
	port := envOr("VALKEY_PORT", "6379")
	password := os.Getenv("VALKEY_PASSWORD")

	client := redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: password,
		DB:       15,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping: Valkey not reachable: %v", err)
	}

	t.Cleanup(func() {
		for _, pattern := range []string{"session:*", "content:*"} {
			keys, _ := client.Keys(ctx, pattern).Result()
			if len(keys) > 0 {
				client.Del(ctx, keys...)
			}
		}
		client.Close()
	})

	return client
}

// testEnv holds all dependencies for handler integration tests.
type testEnv struct {
	DB            *sql.DB
	Valkey        *redis.Client
	Sessions      *session.Store
	UserStore     *store.UserStore
	CategoryStore *store.CategoryStore
	ContentStore  *store.ContentStore
	SettingStore  *store.SiteSettingStore
	MediaStore    *store.MediaStore
	Cache         *cache.ResponseCache
	Auth          *Auth
	Categories    *Categories
	Content       *Content
	Users         *Users
	Public        *Public
	Settings      *Settings
}

// newTestEnv creates a complete test environment with all handler dependencies.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testDB(t)
	vk := testValkeyClient(t)

	sessions := session.NewStore(vk, false)
	userStore := store.NewUserStore(db)
	categoryStore := store.NewCategoryStore(db)
	contentStore := store.NewContentStore(db)
	settingStore := store.NewSiteSettingStore(db)
	mediaStore := store.NewMediaStore(db)
	responseCache := cache.NewResponseCache(vk, 1*time.Minute)

	return &testEnv{
		DB:            db,
		Valkey:        vk,
		Sessions:      sessions,
		UserStore:     userStore,
		CategoryStore: categoryStore,
		ContentStore:  contentStore,
		SettingStore:  settingStore,
		MediaStore:    mediaStore,
		Cache:         responseCache,
		Auth:          NewAuth(sessions, userStore),
		Categories:    NewCategories(categoryStore, responseCache),
		Content:       NewContent(contentStore, categoryStore, responseCache),
		Users:         NewUsers(userStore),
		Public:        NewPublic(contentStore, categoryStore, settingStore, responseCache),
		Settings:      NewSettings(settingStore, responseCache),
	}
}

// testSession creates session data for an authenticated admin.
func testSession(userID uuid.UUID, email, role string) *session.Data {
	return &session.Data{
		UserID: userID,
		Email:  email,
		Name:   "Test User",
		Role:   role,
	}
}

// withSession adds session data to a request context.
func withSession(r *http.Request, sess *session.Data) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), middleware.SessionKey, sess))
}

// withChiURLParam adds a chi URL parameter to a request.
func withChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// withChiURLParamAndSession adds both a chi URL param and session data.
func withChiURLParamAndSession(r *http.Request, key, value string, sess *session.Data) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	ctx := context.WithValue(r.Context(), chi.RouteCtxKey, rctx)
	ctx = context.WithValue(ctx, middleware.SessionKey, sess)
	return r.WithContext(ctx)
}

// testAdmin creates an admin user for the test and registers cleanup.
func testAdmin(t *testing.T, env *testEnv, email string) uuid.UUID {
	t.Helper()
	u, err := env.UserStore.Create(email, "password123", "Test Admin", "admin")
	if err != nil {
		t.Fatalf("create test admin: %v", err)
	}
	t.Cleanup(func() { env.DB.Exec("DELETE FROM admin_users WHERE email = $1", email) })
	return u.ID
}

// cleanCategories removes test categories by slug.
func cleanCategories(t *testing.T, db *sql.DB, slugs ...string) {
	t.Helper()
	for _, s := range slugs {
		db.Exec("DELETE FROM categories WHERE slug = $1", s)
	}
}

// cleanContent removes test content by slug.
func cleanContent(t *testing.T, db *sql.DB, slugs ...string) {
	t.Helper()
	for _, s := range slugs {
		db.Exec("DELETE FROM content WHERE slug = $1", s)
	}
}

// cleanUsers removes test users by email.
func cleanUsers(t *testing.T, db *sql.DB, emails ...string) {
	t.Helper()
	for _, e := range emails {
		db.Exec("DELETE FROM admin_users WHERE email = $1", e)
	}
}

// cleanSettings removes test settings by key.
func cleanSettings(t *testing.T, db *sql.DB, keys ...string) {
	t.Helper()
	for _, k := range keys {
		db.Exec("DELETE FROM site_settings WHERE key = $1", k)
	}
}
