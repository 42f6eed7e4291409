package catalog

import (
	"errors"
	"testing"

	"github.com/taproom/taproom/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := gdb.AutoMigrate(&models.Product{}, &models.Category{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return gdb
}

func seed(t *testing.T, gdb *gorm.DB, names ...string) {
	t.Helper()
	for _, name := range names {
		if _, err := Create(gdb, CreateParams{Name: name, Category: "Beer", PriceCents: 500, Inventory: 10}); err != nil {
			t.Fatalf("seed %s: %v", name, err)
		}
	}
}

func TestResolveFuzzy(t *testing.T) {
	gdb := testDB(t)
	seed(t, gdb, "Tito's Vodka", "Bud Light", "Miller Lite")

	cases := []struct {
		query string
		want  string
	}{
		{"Tito's Vodka", "Tito's Vodka"}, // exact
		{"tito", "Tito's Vodka"},         // prefix
		{"vodka", "Tito's Vodka"},        // word prefix
		{"ud ligh", "Bud Light"},         // substring
	}
	for _, tc := range cases {
		p, err := Resolve(gdb, tc.query)
		if err != nil {
			t.Errorf("Resolve(%q): %v", tc.query, err)
			continue
		}
		if p.Name != tc.want {
			t.Errorf("Resolve(%q) = %s, want %s", tc.query, p.Name, tc.want)
		}
	}

	if _, err := Resolve(gdb, "absinthe"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestSearchRanksAndFilters(t *testing.T) {
	gdb := testDB(t)
	seed(t, gdb, "Bud Light", "Miller Lite", "Coors Light")

	matches, err := Search(gdb, "light", "")
	if err != nil {
		t.Fatal(err)
	}
	// "Light" is a word prefix in two names; "Lite" misses the threshold.
	if len(matches) != 2 {
		t.Fatalf("matches = %d, want 2", len(matches))
	}
	// Ties keep catalog insertion order.
	if matches[0].Product.Name != "Bud Light" || matches[1].Product.Name != "Coors Light" {
		t.Errorf("order = [%s %s], want [Bud Light Coors Light]",
			matches[0].Product.Name, matches[1].Product.Name)
	}

	// Empty query returns the whole active catalog.
	all, err := Search(gdb, "", "")
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Errorf("all = %d, want 3", len(all))
	}
}

func TestSearchExcludesArchived(t *testing.T) {
	gdb := testDB(t)
	seed(t, gdb, "Bud Light")

	p, err := Resolve(gdb, "bud")
	if err != nil {
		t.Fatal(err)
	}
	if err := Archive(gdb, p.ID); err != nil {
		t.Fatalf("archive: %v", err)
	}

	if _, err := Resolve(gdb, "bud"); !errors.Is(err, ErrNotFound) {
		t.Errorf("resolved archived product, err = %v", err)
	}
	// The row survives for history.
	if _, err := Get(gdb, p.ID); err != nil {
		t.Errorf("archived product gone: %v", err)
	}
}

func TestUpdatePartialFields(t *testing.T) {
	gdb := testDB(t)
	seed(t, gdb, "Bud Light")
	p, _ := Resolve(gdb, "Bud Light")

	price := 600
	if err := Update(gdb, p.ID, UpdateParams{PriceCents: &price}); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := Get(gdb, p.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.PriceCents != 600 {
		t.Errorf("price = %d, want 600", got.PriceCents)
	}
	if got.Name != "Bud Light" || got.Inventory != 10 {
		t.Errorf("untouched fields changed: %+v", got)
	}

	if err := Update(gdb, "nope", UpdateParams{PriceCents: &price}); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestLowStock(t *testing.T) {
	gdb := testDB(t)
	seed(t, gdb, "Bud Light")
	if _, err := Create(gdb, CreateParams{Name: "Patron Silver", Category: "Spirits", PriceCents: 1500, Inventory: 2}); err != nil {
		t.Fatal(err)
	}

	low, err := LowStock(gdb, 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(low) != 1 || low[0].Name != "Patron Silver" {
		t.Errorf("low = %+v, want just Patron Silver", low)
	}
}

func TestCategoryLifecycle(t *testing.T) {
	gdb := testDB(t)

	c, err := CreateCategory(gdb, "Cocktails", "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	child, err := CreateCategory(gdb, "Signature", c.ID)
	if err != nil {
		t.Fatalf("create child: %v", err)
	}
	if child.ParentID == nil || *child.ParentID != c.ID {
		t.Errorf("parent = %v, want %s", child.ParentID, c.ID)
	}

	name := "House Cocktails"
	if err := UpdateCategory(gdb, c.ID, &name, nil); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err := GetCategory(gdb, c.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "House Cocktails" {
		t.Errorf("name = %q, want House Cocktails", got.Name)
	}

	if err := DeleteCategory(gdb, child.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	cats, err := ListCategories(gdb)
	if err != nil {
		t.Fatal(err)
	}
	if len(cats) != 1 {
		t.Errorf("active categories = %d, want 1", len(cats))
	}
}
