// Copyright (c) 2026 Landpress Media SRL <dev@landpress.media>
// All rights reserved. See LICENSE for details.

package router

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"

	"landpress/internal/cache"
	"landpress/internal/database"
	"landpress/internal/handlers"
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

// testRouter assembles the full route table against the real Postgres and
// Valkey, skipping when either is unreachable.
func testRouter(t *testing.T) (http.Handler, *sql.DB) {
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

	vk := redis.NewClient(&redis.Options{
		Addr:     envOr("VALKEY_HOST", "localhost") + ":" + envOr("VALKEY_PORT", "6379"),
		Password: os.Getenv("VALKEY_PASSWORD"),
		DB:       15,
	})
	if err := vk.Ping(context.Background()).Err(); err != nil {
		vk.Close()
		t.Skipf("skipping: Valkey not reachable: %v", err)
	}
	t.Cleanup(func() { vk.Close() })

	sessions := session.NewStore(vk, false)
	userStore := store.NewUserStore(db)
	categoryStore := store.NewCategoryStore(db)
	contentStore := store.NewContentStore(db)
	settingStore := store.NewSiteSettingStore(db)
	mediaStore := store.NewMediaStore(db)
	responseCache := cache.NewResponseCache(vk, time.Minute)

	r := New(Deps{
		Sessions:   sessions,
		Auth:       handlers.NewAuth(sessions, userStore),
		Categories: handlers.NewCategories(categoryStore, responseCache),
		Content:    handlers.NewContent(contentStore, categoryStore, responseCache),
		Users:      handlers.NewUsers(userStore),
		Public:     handlers.NewPublic(contentStore, categoryStore, settingStore, responseCache),
		Upload:     handlers.NewUpload(nil, mediaStore),
		Settings:   handlers.NewSettings(settingStore, responseCache),
	})
	return r, db
}

func categoryCount(t *testing.T, db *sql.DB) int {
	t.Helper()
	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM categories").Scan(&n); err != nil {
		t.Fatalf("count categories: %v", err)
	}
	return n
}

// An unauthenticated mutation through the full middleware chain must be
// refused before any row is written.
func TestAdminMutationWithoutSession(t *testing.T) {
	r, db := testRouter(t)

	before := categoryCount(t, db)

	req := httptest.NewRequest(http.MethodPost, "/api/admin/categories",
		strings.NewReader(`{"name":"Uninvited Category"}`))
	// A valid double-submit pair so the request reaches the session gate.
	req.AddCookie(&http.Cookie{Name: middleware.CSRFCookieName, Value: "router-test-token"})
	req.Header.Set(middleware.CSRFHeaderName, "router-test-token")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without a session, got %d: %s", rec.Code, rec.Body.String())
	}
	if after := categoryCount(t, db); after != before {
		t.Errorf("category count changed from %d to %d on a refused request", before, after)
	}

	// The missing CSRF header is refused even earlier.
	req = httptest.NewRequest(http.MethodPost, "/api/admin/categories",
		strings.NewReader(`{"name":"Headerless Category"}`))
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403 without a CSRF token, got %d", rec.Code)
	}
	if after := categoryCount(t, db); after != before {
		t.Errorf("category count changed from %d to %d on a refused request", before, after)
	}
}
