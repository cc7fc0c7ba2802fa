package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"landpress/internal/models"
)

func TestPublicListRequiresType(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/api/public/content", nil)
	rec := httptest.NewRecorder()
	env.Public.List(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 without type, got %d", rec.Code)
	}
}

func TestPublicListUnknownType(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/api/public/content?type=widgets", nil)
	rec := httptest.NewRecorder()
	env.Public.List(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown type, got %d", rec.Code)
	}
}

func TestPublicBlogListHidesDraftsAndRendersHTML(t *testing.T) {
	env := newTestEnv(t)
	t.Cleanup(func() { cleanContent(t, env.DB, "public-visible", "public-hidden") })

	if _, err := env.ContentStore.Create(&models.Content{
		Kind: models.KindBlog, Title: "Public Visible", Slug: "public-visible",
		Body: "# Big News", Status: models.ContentStatusPublished,
		Tags: "[]", Images: "[]", Metadata: "{}",
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := env.ContentStore.Create(&models.Content{
		Kind: models.KindBlog, Title: "Public Hidden", Slug: "public-hidden",
		Status: models.ContentStatusDraft, Tags: "[]", Images: "[]", Metadata: "{}",
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/public/content?type=blogs", nil)
	rec := httptest.NewRecorder()
	env.Public.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var items []struct {
		Slug     string `json:"slug"`
		BodyHTML string `json:"bodyHtml"`
	}
	json.Unmarshal(rec.Body.Bytes(), &items)

	var visible *struct {
		Slug     string `json:"slug"`
		BodyHTML string `json:"bodyHtml"`
	}
	for i := range items {
		if items[i].Slug == "public-hidden" {
			t.Error("public listing leaked a draft")
		}
		if items[i].Slug == "public-visible" {
			visible = &items[i]
		}
	}
	if visible == nil {
		t.Fatal("published post missing from public listing")
	}
	if !strings.Contains(visible.BodyHTML, "<h1") {
		t.Errorf("blog body not rendered to HTML: %q", visible.BodyHTML)
	}
}

func TestPublicBlogGetIncrementsViews(t *testing.T) {
	env := newTestEnv(t)
	t.Cleanup(func() { cleanContent(t, env.DB, "counted-post") })

	created, err := env.ContentStore.Create(&models.Content{
		Kind: models.KindBlog, Title: "Counted Post", Slug: "counted-post",
		Status: models.ContentStatusPublished, Tags: "[]", Images: "[]", Metadata: "{}",
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/public/content/"+created.ID.String()+"?type=blogs", nil)
		req = withChiURLParam(req, "id", created.ID.String())
		rec := httptest.NewRecorder()
		env.Public.Get(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
	}

	stored, err := env.ContentStore.FindByID(models.KindBlog, created.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if stored.Views != 2 {
		t.Errorf("expected 2 views, got %d", stored.Views)
	}
}

func TestPublicGetBySlug(t *testing.T) {
	env := newTestEnv(t)
	t.Cleanup(func() { cleanContent(t, env.DB, "slug-lookup-product") })

	if _, err := env.ContentStore.Create(&models.Content{
		Kind: models.KindProduct, Title: "Slug Lookup Product", Slug: "slug-lookup-product",
		IsActive: true, Tags: "[]", Images: "[]", Metadata: "{}",
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/public/content/slug-lookup-product?type=products", nil)
	req = withChiURLParam(req, "id", "slug-lookup-product")
	rec := httptest.NewRecorder()
	env.Public.Get(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestPublicGetUnpublishedIsNotFound(t *testing.T) {
	env := newTestEnv(t)
	t.Cleanup(func() { cleanContent(t, env.DB, "secret-draft") })

	created, err := env.ContentStore.Create(&models.Content{
		Kind: models.KindBlog, Title: "Secret Draft", Slug: "secret-draft",
		Status: models.ContentStatusDraft, Tags: "[]", Images: "[]", Metadata: "{}",
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/public/content/"+created.ID.String()+"?type=blogs", nil)
	req = withChiURLParam(req, "id", created.ID.String())
	rec := httptest.NewRecorder()
	env.Public.Get(rec, req)

	// Invisible, not forbidden.
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for a draft, got %d", rec.Code)
	}
}

func TestPublicGetKindWithoutItemRead(t *testing.T) {
	env := newTestEnv(t)

	// FAQs are list-only in the public API.
	req := httptest.NewRequest(http.MethodGet, "/api/public/content/anything?type=faqs", nil)
	req = withChiURLParam(req, "id", "anything")
	rec := httptest.NewRecorder()
	env.Public.Get(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for list-only kind, got %d", rec.Code)
	}
}

func TestPublicSettingsFilteredByPrefix(t *testing.T) {
	env := newTestEnv(t)
	t.Cleanup(func() {
		cleanSettings(t, env.DB, "public.site_name", "smtp_password")
	})

	if err := env.SettingStore.SetMany(map[string]string{
		"public.site_name": "Landpress",
		"smtp_password":    "hunter2",
	}); err != nil {
		t.Fatalf("seed settings: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/public/content?type=settings", nil)
	rec := httptest.NewRecorder()
	env.Public.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var settings map[string]string
	json.Unmarshal(rec.Body.Bytes(), &settings)
	if settings["public.site_name"] != "Landpress" {
		t.Error("public setting missing")
	}
	if _, leaked := settings["smtp_password"]; leaked {
		t.Error("private setting leaked through public API")
	}
}

func TestPublicCategoriesActiveOnly(t *testing.T) {
	env := newTestEnv(t)
	t.Cleanup(func() { cleanCategories(t, env.DB, "public-cat-on", "public-cat-off") })

	if _, err := env.CategoryStore.Create(&models.Category{
		Name: "Public Cat On", Slug: "public-cat-on", IsActive: true,
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := env.CategoryStore.Create(&models.Category{
		Name: "Public Cat Off", Slug: "public-cat-off", IsActive: false,
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/public/content?type=categories", nil)
	rec := httptest.NewRecorder()
	env.Public.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "public-cat-off") {
		t.Error("inactive category leaked through public API")
	}
	if !strings.Contains(rec.Body.String(), "public-cat-on") {
		t.Error("active category missing from public API")
	}
}

func TestPublicListCaching(t *testing.T) {
	env := newTestEnv(t)
	t.Cleanup(func() { cleanContent(t, env.DB, "cache-seed-a", "cache-seed-b") })

	if _, err := env.ContentStore.Create(&models.Content{
		Kind: models.KindResource, Title: "Cache Seed A", Slug: "cache-seed-a",
		IsActive: true, Tags: "[]", Images: "[]", Metadata: "{}",
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	// First read populates the cache.
	req := httptest.NewRequest(http.MethodGet, "/api/public/content?type=resources", nil)
	rec := httptest.NewRecorder()
	env.Public.List(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	// A row added behind the cache's back is not visible yet.
	if _, err := env.ContentStore.Create(&models.Content{
		Kind: models.KindResource, Title: "Cache Seed B", Slug: "cache-seed-b",
		IsActive: true, Tags: "[]", Images: "[]", Metadata: "{}",
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/public/content?type=resources", nil)
	rec = httptest.NewRecorder()
	env.Public.List(rec, req)
	if strings.Contains(rec.Body.String(), "cache-seed-b") {
		t.Error("expected cached response without the new row")
	}

	// Invalidation restores freshness.
	env.Cache.InvalidateKind(req.Context(), "resources")
	req = httptest.NewRequest(http.MethodGet, "/api/public/content?type=resources", nil)
	rec = httptest.NewRecorder()
	env.Public.List(rec, req)
	if !strings.Contains(rec.Body.String(), "cache-seed-b") {
		t.Error("expected fresh response after invalidation")
	}
}
