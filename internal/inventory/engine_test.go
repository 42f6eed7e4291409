package inventory

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
	err = gdb.AutoMigrate(
		&models.Product{}, &models.InventoryMovement{}, &models.InventoryAdjustment{},
		&models.InventoryCountSession{}, &models.InventoryCountItem{}, &models.EventAllocation{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return gdb
}

func seedProduct(t *testing.T, gdb *gorm.DB, id, name string, stock float64, volumeOz *float64) *models.Product {
	t.Helper()
	p := models.Product{
		ID: id, Name: name, Category: "Spirits", PriceCents: 1000,
		Inventory: stock, UnitType: "bottle", UnitVolumeOz: volumeOz, Active: true,
	}
	if err := gdb.Create(&p).Error; err != nil {
		t.Fatalf("seed %s: %v", name, err)
	}
	return &p
}

func stockOf(t *testing.T, gdb *gorm.DB, id string) float64 {
	t.Helper()
	var p models.Product
	if err := gdb.First(&p, "id = ?", id).Error; err != nil {
		t.Fatal(err)
	}
	return p.Inventory
}

func approx(a, b float64) bool {
	d := a - b
	return d < 1e-9 && d > -1e-9
}

func TestApplySaleCocktailRecipe(t *testing.T) {
	gdb := testDB(t)
	titos := seedProduct(t, gdb, "p-titos", "Tito's Vodka", 5, nil)
	engine := NewEngine(BottleOz)

	// A Lavender Vodka pours 2 oz of Tito's; the cocktail row itself is
	// untouched.
	err := engine.ApplySale(gdb, SoldItem{ProductID: "p-cocktail", Name: "Lavender Vodka", Quantity: 3})
	if err != nil {
		t.Fatalf("apply sale: %v", err)
	}

	want := 5 - (2*3)/BottleOz
	if got := stockOf(t, gdb, titos.ID); !approx(got, want) {
		t.Errorf("stock = %v, want %v", got, want)
	}

	movements, err := Movements(gdb, titos.ID, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(movements) != 1 {
		t.Fatalf("movements = %d, want 1", len(movements))
	}
	if movements[0].Kind != models.MovementSale || movements[0].Reason != "order_sale" {
		t.Errorf("movement = %+v, want sale/order_sale", movements[0])
	}
}

func TestApplySaleUsesConfiguredVolume(t *testing.T) {
	gdb := testDB(t)
	liter := LiterOz
	titos := seedProduct(t, gdb, "p-titos", "Tito's Vodka", 5, &liter)
	engine := NewEngine(BottleOz)

	err := engine.ApplySale(gdb, SoldItem{ProductID: titos.ID, Name: "Moscow Mule", Quantity: 1})
	if err != nil {
		t.Fatal(err)
	}
	// 1.5 oz out of a liter bottle, not the 750 ml default.
	if got := stockOf(t, gdb, titos.ID); !approx(got, 5-1.5/LiterOz) {
		t.Errorf("stock = %v, want %v", got, 5-1.5/LiterOz)
	}
}

func TestApplySaleAbsoluteUnits(t *testing.T) {
	gdb := testDB(t)
	bud := seedProduct(t, gdb, "p-bud", "Bud Light", 24, nil)
	engine := NewEngine(BottleOz)

	if err := engine.ApplySale(gdb, SoldItem{ProductID: bud.ID, Name: "Bud Light", Quantity: 2}); err != nil {
		t.Fatal(err)
	}
	if got := stockOf(t, gdb, bud.ID); got != 22 {
		t.Errorf("stock = %v, want 22", got)
	}
}

func TestApplySaleSkipsMissingIngredient(t *testing.T) {
	gdb := testDB(t)
	engine := NewEngine(BottleOz)

	// No Captain Morgan in the catalog; the sale still goes through.
	err := engine.ApplySale(gdb, SoldItem{ProductID: "p-smash", Name: "Pineapple Smash", Quantity: 1})
	if err != nil {
		t.Errorf("missing ingredient blocked the sale: %v", err)
	}
}

func TestApplySaleWithoutRecipeDecrementsDirectly(t *testing.T) {
	gdb := testDB(t)
	nachos := seedProduct(t, gdb, "p-nachos", "Loaded Nachos", 10, nil)
	engine := NewEngine(BottleOz)

	if err := engine.ApplySale(gdb, SoldItem{ProductID: nachos.ID, Name: "Loaded Nachos", Quantity: 4}); err != nil {
		t.Fatal(err)
	}
	if got := stockOf(t, gdb, nachos.ID); got != 6 {
		t.Errorf("stock = %v, want 6", got)
	}
}

func TestStockMayGoNegative(t *testing.T) {
	gdb := testDB(t)
	bud := seedProduct(t, gdb, "p-bud", "Bud Light", 1, nil)
	engine := NewEngine(BottleOz)

	if err := engine.ApplySale(gdb, SoldItem{ProductID: bud.ID, Name: "Bud Light", Quantity: 3}); err != nil {
		t.Fatal(err)
	}
	if got := stockOf(t, gdb, bud.ID); got != -2 {
		t.Errorf("stock = %v, want -2 (oversell is recorded, not blocked)", got)
	}
}

func TestRestock(t *testing.T) {
	gdb := testDB(t)
	bud := seedProduct(t, gdb, "p-bud", "Bud Light", 2, nil)

	if err := Restock(gdb, bud.ID, 24, ""); err != nil {
		t.Fatal(err)
	}
	if got := stockOf(t, gdb, bud.ID); got != 26 {
		t.Errorf("stock = %v, want 26", got)
	}

	movements, _ := Movements(gdb, bud.ID, 0)
	if len(movements) != 1 || movements[0].Kind != models.MovementRestock {
		t.Errorf("movements = %+v, want one restock", movements)
	}

	if err := Restock(gdb, "ghost", 1, ""); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}
