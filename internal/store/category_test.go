package store

import (
	"testing"

	"github.com/google/uuid"

	"landpress/internal/models"
)

func TestCategoryCreateAndFind(t *testing.T) {
	db := testDB(t)
	s := NewCategoryStore(db)
	t.Cleanup(func() { cleanCategories(t, db, "test-raw-land") })

	created, err := s.Create(&models.Category{
		Name:     "Test Raw Land",
		Slug:     "test-raw-land",
		Level:    0,
		IsActive: true,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.ID == uuid.Nil {
		t.Error("expected generated ID")
	}
	if created.Level != 0 {
		t.Errorf("expected level 0, got %d", created.Level)
	}
	if !created.IsActive {
		t.Error("expected category active")
	}

	found, err := s.FindByID(created.ID)
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if found == nil {
		t.Fatal("expected category, got nil")
	}
	if found.Slug != "test-raw-land" {
		t.Errorf("expected slug test-raw-land, got %q", found.Slug)
	}
}

func TestCategoryFindMissing(t *testing.T) {
	db := testDB(t)
	s := NewCategoryStore(db)

	found, err := s.FindByID(uuid.New())
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if found != nil {
		t.Error("expected nil for unknown id")
	}
}

func TestCategoryHierarchy(t *testing.T) {
	db := testDB(t)
	s := NewCategoryStore(db)
	t.Cleanup(func() {
		cleanCategories(t, db, "test-leaf-c", "test-mid-b", "test-root-a")
	})

	root, err := s.Create(&models.Category{Name: "Test Root A", Slug: "test-root-a", Level: 0, IsActive: true})
	if err != nil {
		t.Fatalf("create root: %v", err)
	}
	mid, err := s.Create(&models.Category{Name: "Test Mid B", Slug: "test-mid-b", ParentID: &root.ID, Level: 1, IsActive: true})
	if err != nil {
		t.Fatalf("create mid: %v", err)
	}
	leaf, err := s.Create(&models.Category{Name: "Test Leaf C", Slug: "test-leaf-c", ParentID: &mid.ID, Level: 2, IsActive: true})
	if err != nil {
		t.Fatalf("create leaf: %v", err)
	}

	children, err := s.Children(root.ID)
	if err != nil {
		t.Fatalf("Children failed: %v", err)
	}
	if len(children) != 1 || children[0].ID != mid.ID {
		t.Errorf("expected one child %s, got %v", mid.ID, children)
	}

	hasKids, err := s.HasChildren(root.ID)
	if err != nil {
		t.Fatalf("HasChildren failed: %v", err)
	}
	if !hasKids {
		t.Error("root should report children")
	}

	hasKids, err = s.HasChildren(leaf.ID)
	if err != nil {
		t.Fatalf("HasChildren failed: %v", err)
	}
	if hasKids {
		t.Error("leaf should not report children")
	}

	// Delete bottom-up works once each node has no children left.
	for _, id := range []uuid.UUID{leaf.ID, mid.ID, root.ID} {
		if err := s.Delete(id); err != nil {
			t.Fatalf("delete %s: %v", id, err)
		}
	}
}

func TestCategoryListFilters(t *testing.T) {
	db := testDB(t)
	s := NewCategoryStore(db)
	t.Cleanup(func() {
		cleanCategories(t, db, "test-filter-child", "test-filter-root", "test-filter-hidden")
	})

	root, err := s.Create(&models.Category{Name: "Test Filter Root", Slug: "test-filter-root", Level: 0, IsActive: true})
	if err != nil {
		t.Fatalf("create root: %v", err)
	}
	if _, err := s.Create(&models.Category{Name: "Test Filter Child", Slug: "test-filter-child", ParentID: &root.ID, Level: 1, IsActive: true}); err != nil {
		t.Fatalf("create child: %v", err)
	}
	if _, err := s.Create(&models.Category{Name: "Test Filter Hidden", Slug: "test-filter-hidden", Level: 0, IsActive: false}); err != nil {
		t.Fatalf("create hidden: %v", err)
	}

	// Default view: roots only, so the child must not appear.
	roots, err := s.List(CategoryFilter{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	for _, c := range roots {
		if c.Slug == "test-filter-child" {
			t.Error("default listing leaked a non-root category")
		}
	}

	// Level filter.
	lvl := 1
	atLevel, err := s.List(CategoryFilter{Level: &lvl})
	if err != nil {
		t.Fatalf("List by level failed: %v", err)
	}
	found := false
	for _, c := range atLevel {
		if c.Slug == "test-filter-child" {
			found = true
		}
		if c.Level != 1 {
			t.Errorf("level filter returned level %d", c.Level)
		}
	}
	if !found {
		t.Error("level filter missed the child")
	}

	// ActiveOnly hides the inactive root.
	active, err := s.List(CategoryFilter{Flat: true, ActiveOnly: true})
	if err != nil {
		t.Fatalf("List active failed: %v", err)
	}
	for _, c := range active {
		if c.Slug == "test-filter-hidden" {
			t.Error("active-only listing leaked an inactive category")
		}
	}
}

func TestCategorySlugExists(t *testing.T) {
	db := testDB(t)
	s := NewCategoryStore(db)
	t.Cleanup(func() { cleanCategories(t, db, "test-slug-check") })

	created, err := s.Create(&models.Category{Name: "Test Slug Check", Slug: "test-slug-check", IsActive: true})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	taken, err := s.SlugExists("test-slug-check", uuid.Nil)
	if err != nil {
		t.Fatalf("SlugExists failed: %v", err)
	}
	if !taken {
		t.Error("slug should be taken")
	}

	// Excluding the row itself frees the slug for updates.
	taken, err = s.SlugExists("test-slug-check", created.ID)
	if err != nil {
		t.Fatalf("SlugExists failed: %v", err)
	}
	if taken {
		t.Error("slug should be free when excluding its own row")
	}
}

func TestCategoryUpdate(t *testing.T) {
	db := testDB(t)
	s := NewCategoryStore(db)
	t.Cleanup(func() { cleanCategories(t, db, "test-update-cat", "test-update-cat-renamed") })

	created, err := s.Create(&models.Category{Name: "Test Update Cat", Slug: "test-update-cat", IsActive: true})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	created.Name = "Test Update Cat Renamed"
	created.Slug = "test-update-cat-renamed"
	created.IsActive = false
	updated, err := s.Update(created)
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated == nil {
		t.Fatal("expected updated row, got nil")
	}
	if updated.Name != "Test Update Cat Renamed" || updated.IsActive {
		t.Errorf("update not applied: %+v", updated)
	}

	// Updating a missing id returns nil rather than an error.
	ghost := &models.Category{ID: uuid.New(), Name: "x", Slug: "x-test-missing"}
	res, err := s.Update(ghost)
	if err != nil {
		t.Fatalf("Update of missing row failed: %v", err)
	}
	if res != nil {
		t.Error("expected nil updating unknown id")
	}
}

func TestCategoryTreeAssembly(t *testing.T) {
	db := testDB(t)
	s := NewCategoryStore(db)
	t.Cleanup(func() {
		cleanCategories(t, db, "test-tree-kid", "test-tree-top")
	})

	top, err := s.Create(&models.Category{Name: "Test Tree Top", Slug: "test-tree-top", Level: 0, IsActive: true})
	if err != nil {
		t.Fatalf("create top: %v", err)
	}
	if _, err := s.Create(&models.Category{Name: "Test Tree Kid", Slug: "test-tree-kid", ParentID: &top.ID, Level: 1, IsActive: true}); err != nil {
		t.Fatalf("create kid: %v", err)
	}

	tree, err := s.Tree(false)
	if err != nil {
		t.Fatalf("Tree failed: %v", err)
	}

	var node *models.Category
	for _, n := range tree {
		if n.ID == top.ID {
			node = n
		}
	}
	if node == nil {
		t.Fatal("top node missing from tree roots")
	}
	if len(node.Children) != 1 || node.Children[0].Slug != "test-tree-kid" {
		t.Errorf("expected one child test-tree-kid, got %+v", node.Children)
	}
}
