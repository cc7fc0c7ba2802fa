// Copyright (c) 2026 Landpress Media SRL <dev@landpress.media>
// All rights reserved. See LICENSE for details.

package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// testValkeyClient returns a Redis client connected to the test Valkey.
// Skips the test if Valkey is unavailable.
func testValkeyClient(t *testing.T) *redis.Client {
	t.Helper()

	host := envOr("VALKEY_HOST", "localhost")
	port := envOr("VALKEY_PORT", "6379")
	password := os.Getenv("VALKEY_PASSWORD")

	client := redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: password,
		DB:       15, // Use DB 15 for tests to isolate from dev data.
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping integration test: Valkey not reachable: %v", err)
	}

	t.Cleanup(func() {
		keys, _ := client.Keys(ctx, "session:*").Result()
		if len(keys) > 0 {
			client.Del(ctx, keys...)
		}
		client.Close()
	})

	return client
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == CookieName {
			return c
		}
	}
	return nil
}

func TestSessionCreateAndGet(t *testing.T) {
	client := testValkeyClient(t)
	store := NewStore(client, false)

	w := httptest.NewRecorder()
	ctx := context.Background()

	data := &Data{
		UserID: uuid.New(),
		Email:  "test@session.local",
		Name:   "Test Admin",
		Role:   "admin",
	}

	sessionID, err := store.Create(ctx, w, data)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if sessionID == "" {
		t.Error("expected non-empty session ID")
	}

	cookie := sessionCookie(t, w)
	if cookie == nil {
		t.Fatal("expected session cookie to be set")
	}
	if !cookie.HttpOnly {
		t.Error("expected HttpOnly cookie")
	}
	if cookie.SameSite != http.SameSiteLaxMode {
		t.Errorf("SameSite = %v, want Lax", cookie.SameSite)
	}
	if cookie.MaxAge != int(DefaultTTL.Seconds()) {
		t.Errorf("MaxAge = %d, want %d", cookie.MaxAge, int(DefaultTTL.Seconds()))
	}

	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(cookie)

	retrieved, err := store.Get(ctx, req)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if retrieved == nil {
		t.Fatal("expected session data, got nil")
	}
	if retrieved.Email != data.Email || retrieved.UserID != data.UserID || retrieved.Role != data.Role {
		t.Errorf("retrieved session = %+v, want identity of %+v", retrieved, data)
	}
}

func TestSessionGetNoCookie(t *testing.T) {
	client := testValkeyClient(t)
	store := NewStore(client, false)

	req := httptest.NewRequest("GET", "/", nil)
	data, err := store.Get(context.Background(), req)
	if err != nil {
		t.Fatalf("Get without cookie: %v", err)
	}
	if data != nil {
		t.Error("expected nil session for request without cookie")
	}
}

func TestSessionGetUnknownID(t *testing.T) {
	client := testValkeyClient(t)
	store := NewStore(client, false)

	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: "does-not-exist"})

	data, err := store.Get(context.Background(), req)
	if err != nil {
		t.Fatalf("Get with unknown id: %v", err)
	}
	if data != nil {
		t.Error("expected nil session for unknown session id")
	}
}

func TestSessionDestroy(t *testing.T) {
	client := testValkeyClient(t)
	store := NewStore(client, false)
	ctx := context.Background()

	w := httptest.NewRecorder()
	_, err := store.Create(ctx, w, &Data{UserID: uuid.New(), Email: "destroy@session.local", Role: "admin"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	cookie := sessionCookie(t, w)

	req := httptest.NewRequest("POST", "/logout", nil)
	req.AddCookie(cookie)
	w2 := httptest.NewRecorder()

	if err := store.Destroy(ctx, w2, req); err != nil {
		t.Fatalf("Destroy: %v", err)
	}

	// The session must be revoked server-side, not just cookie-cleared.
	req2 := httptest.NewRequest("GET", "/", nil)
	req2.AddCookie(cookie)
	data, err := store.Get(ctx, req2)
	if err != nil {
		t.Fatalf("Get after destroy: %v", err)
	}
	if data != nil {
		t.Error("session still retrievable after Destroy")
	}

	cleared := sessionCookie(t, w2)
	if cleared == nil || cleared.MaxAge != -1 {
		t.Error("expected an expired session cookie on the destroy response")
	}
}

func TestSessionUpdate(t *testing.T) {
	client := testValkeyClient(t)
	store := NewStore(client, false)
	ctx := context.Background()

	w := httptest.NewRecorder()
	data := &Data{UserID: uuid.New(), Email: "update@session.local", Role: "admin", TwoFAPending: true}
	if _, err := store.Create(ctx, w, data); err != nil {
		t.Fatalf("Create: %v", err)
	}
	cookie := sessionCookie(t, w)

	req := httptest.NewRequest("POST", "/", nil)
	req.AddCookie(cookie)

	data.TwoFAPending = false
	if err := store.Update(ctx, req, data); err != nil {
		t.Fatalf("Update: %v", err)
	}

	retrieved, err := store.Get(ctx, req)
	if err != nil {
		t.Fatalf("Get after update: %v", err)
	}
	if retrieved == nil || retrieved.TwoFAPending {
		t.Errorf("expected TwoFAPending=false after update, got %+v", retrieved)
	}
}

func TestSessionIDsAreUnique(t *testing.T) {
	client := testValkeyClient(t)
	store := NewStore(client, false)
	ctx := context.Background()

	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		w := httptest.NewRecorder()
		id, err := store.Create(ctx, w, &Data{UserID: uuid.New(), Email: "uniq@session.local", Role: "admin"})
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		if len(id) != idLength*2 {
			t.Fatalf("session id length = %d, want %d hex chars", len(id), idLength*2)
		}
		if seen[id] {
			t.Fatal("duplicate session id generated")
		}
		seen[id] = true
	}
}
