package order

import (
	"errors"
	"testing"

	"github.com/taproom/taproom/internal/db"
	"github.com/taproom/taproom/internal/inventory"
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
	if err := gdb.AutoMigrate(db.AllModels()...); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return gdb
}

func testService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	gdb := testDB(t)
	svc, err := NewService(ServiceOpts{
		DB:      gdb,
		TaxRate: 0.08,
		Engine:  inventory.NewEngine(inventory.BottleOz),
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, gdb
}

func seedProduct(t *testing.T, gdb *gorm.DB, id, name string, priceCents int, stock float64) *models.Product {
	t.Helper()
	p := models.Product{
		ID:         id,
		Name:       name,
		Category:   "Beer",
		PriceCents: priceCents,
		Inventory:  stock,
		UnitType:   "bottle",
		Active:     true,
	}
	if err := gdb.Create(&p).Error; err != nil {
		t.Fatalf("seed product %s: %v", name, err)
	}
	return &p
}

func TestAddItemComputesTotals(t *testing.T) {
	svc, gdb := testService(t)
	bud := seedProduct(t, gdb, "p-bud", "Bud Light", 550, 24)
	titos := seedProduct(t, gdb, "p-titos", "Tito's Vodka", 1200, 6)

	if _, err := svc.AddItem("sess-1", bud, 2); err != nil {
		t.Fatalf("add bud: %v", err)
	}
	o, err := svc.AddItem("sess-1", titos, 1)
	if err != nil {
		t.Fatalf("add titos: %v", err)
	}

	if o.SubtotalCents != 2300 {
		t.Errorf("subtotal = %d, want 2300", o.SubtotalCents)
	}
	if o.TaxCents != 184 {
		t.Errorf("tax = %d, want 184", o.TaxCents)
	}
	if o.TotalCents != 2484 {
		t.Errorf("total = %d, want 2484", o.TotalCents)
	}
}

func TestAddItemMergesExistingLine(t *testing.T) {
	svc, gdb := testService(t)
	bud := seedProduct(t, gdb, "p-bud", "Bud Light", 550, 24)

	if _, err := svc.AddItem("sess-1", bud, 1); err != nil {
		t.Fatalf("first add: %v", err)
	}
	o, err := svc.AddItem("sess-1", bud, 2)
	if err != nil {
		t.Fatalf("second add: %v", err)
	}

	if len(o.Items) != 1 {
		t.Fatalf("lines = %d, want 1", len(o.Items))
	}
	if o.Items[0].Quantity != 3 {
		t.Errorf("quantity = %d, want 3", o.Items[0].Quantity)
	}
}

func TestAddItemOpensOrderPerSession(t *testing.T) {
	svc, gdb := testService(t)
	bud := seedProduct(t, gdb, "p-bud", "Bud Light", 550, 24)

	a, err := svc.AddItem("sess-a", bud, 1)
	if err != nil {
		t.Fatalf("add sess-a: %v", err)
	}
	b, err := svc.AddItem("sess-b", bud, 1)
	if err != nil {
		t.Fatalf("add sess-b: %v", err)
	}
	if a.ID == b.ID {
		t.Error("sessions share an order")
	}
}

func TestSetQuantityZeroRemovesLine(t *testing.T) {
	svc, gdb := testService(t)
	bud := seedProduct(t, gdb, "p-bud", "Bud Light", 550, 24)
	titos := seedProduct(t, gdb, "p-titos", "Tito's Vodka", 1200, 6)

	if _, err := svc.AddItem("sess-1", bud, 2); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.AddItem("sess-1", titos, 1); err != nil {
		t.Fatal(err)
	}

	o, err := svc.SetQuantity("sess-1", bud.ID, 0)
	if err != nil {
		t.Fatalf("set quantity: %v", err)
	}
	if len(o.Items) != 1 {
		t.Fatalf("lines = %d, want 1", len(o.Items))
	}
	if o.Items[0].ProductID != titos.ID {
		t.Errorf("remaining line = %s, want %s", o.Items[0].ProductID, titos.ID)
	}
	if o.SubtotalCents != 1200 {
		t.Errorf("subtotal = %d, want 1200", o.SubtotalCents)
	}
}

func TestRemoveByName(t *testing.T) {
	svc, gdb := testService(t)
	bud := seedProduct(t, gdb, "p-bud", "Bud Light", 550, 24)

	if _, err := svc.AddItem("sess-1", bud, 3); err != nil {
		t.Fatal(err)
	}

	res, err := svc.RemoveByName("sess-1", "bud", 1)
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if res.Removed {
		t.Error("line removed, want decrement")
	}
	if res.Remaining != 2 {
		t.Errorf("remaining = %d, want 2", res.Remaining)
	}

	res, err = svc.RemoveByName("sess-1", "light", 5)
	if err != nil {
		t.Fatalf("remove all: %v", err)
	}
	if !res.Removed {
		t.Error("want line removed when quantity exceeds remaining")
	}

	if _, err := svc.RemoveByName("sess-1", "mojito", 1); !errors.Is(err, ErrItemNotFound) {
		t.Errorf("err = %v, want ErrItemNotFound", err)
	}
}

func TestClearDeletesOrder(t *testing.T) {
	svc, gdb := testService(t)
	bud := seedProduct(t, gdb, "p-bud", "Bud Light", 550, 24)

	if _, err := svc.AddItem("sess-1", bud, 2); err != nil {
		t.Fatal(err)
	}

	n, err := svc.Clear("sess-1")
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	if n != 1 {
		t.Errorf("cleared lines = %d, want 1", n)
	}

	if _, err := svc.FindPending("sess-1"); !errors.Is(err, ErrNoActiveOrder) {
		t.Errorf("err = %v, want ErrNoActiveOrder", err)
	}

	// Clearing an empty session is a no-op, not an error.
	if n, err := svc.Clear("sess-1"); err != nil || n != 0 {
		t.Errorf("clear empty = (%d, %v), want (0, nil)", n, err)
	}
}

func TestFinalizeAppliesInventoryAndCompletes(t *testing.T) {
	svc, gdb := testService(t)
	bud := seedProduct(t, gdb, "p-bud", "Bud Light", 550, 24)
	titos := seedProduct(t, gdb, "p-titos", "Tito's Vodka", 1200, 6)

	if _, err := svc.AddItem("sess-1", bud, 2); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.AddItem("sess-1", titos, 1); err != nil {
		t.Fatal(err)
	}

	res, err := svc.Finalize(FinalizeParams{SessionID: "sess-1", PaymentMethod: "card"})
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if res.AmountCents != 2484 {
		t.Errorf("amount = %d, want 2484", res.AmountCents)
	}

	var o models.Order
	if err := gdb.First(&o, "id = ?", res.OrderID).Error; err != nil {
		t.Fatal(err)
	}
	if o.Status != models.OrderCompleted {
		t.Errorf("status = %s, want completed", o.Status)
	}

	var txn models.Transaction
	if err := gdb.First(&txn, "order_id = ?", res.OrderID).Error; err != nil {
		t.Fatalf("load transaction: %v", err)
	}
	if txn.AmountCents != 2484 || txn.PaymentMethod != "card" {
		t.Errorf("transaction = %d/%s, want 2484/card", txn.AmountCents, txn.PaymentMethod)
	}

	// Beer decrements whole units, vodka a standard pour from a 750ml bottle.
	if err := gdb.First(&bud, "id = ?", bud.ID).Error; err != nil {
		t.Fatal(err)
	}
	if bud.Inventory != 22 {
		t.Errorf("bud inventory = %v, want 22", bud.Inventory)
	}
	if err := gdb.First(&titos, "id = ?", titos.ID).Error; err != nil {
		t.Fatal(err)
	}
	want := 6 - inventory.ShotOz/inventory.BottleOz
	if diff := titos.Inventory - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("titos inventory = %v, want %v", titos.Inventory, want)
	}

	// The session has no open cart afterwards.
	if _, err := svc.FindPending("sess-1"); !errors.Is(err, ErrNoActiveOrder) {
		t.Errorf("err = %v, want ErrNoActiveOrder", err)
	}
}

func TestVoidRequiresPending(t *testing.T) {
	svc, gdb := testService(t)
	bud := seedProduct(t, gdb, "p-bud", "Bud Light", 550, 24)

	o, err := svc.AddItem("sess-1", bud, 1)
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.Void(o.ID); err != nil {
		t.Fatalf("void: %v", err)
	}

	// Inventory untouched by a void.
	if err := gdb.First(&bud, "id = ?", bud.ID).Error; err != nil {
		t.Fatal(err)
	}
	if bud.Inventory != 24 {
		t.Errorf("inventory = %v, want 24", bud.Inventory)
	}

	if err := svc.Void(o.ID); !errors.Is(err, ErrNotPending) {
		t.Errorf("second void err = %v, want ErrNotPending", err)
	}
}

func TestFindPendingByLabel(t *testing.T) {
	svc, gdb := testService(t)
	bud := seedProduct(t, gdb, "p-bud", "Bud Light", 550, 24)

	if _, err := svc.Create("sess-1", "John", nil); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.AddItem("sess-1", bud, 1); err != nil {
		t.Fatal(err)
	}

	o, err := svc.FindPendingByLabel("john")
	if err != nil {
		t.Fatalf("find by label: %v", err)
	}
	if o.Label != "John" {
		t.Errorf("label = %q, want John", o.Label)
	}

	if _, err := svc.FindPendingByLabel("table 9"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}
