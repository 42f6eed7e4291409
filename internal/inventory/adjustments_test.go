package inventory

import (
	"errors"
	"testing"

	"github.com/taproom/taproom/internal/models"
)

func TestCreateAndVoidAdjustment(t *testing.T) {
	gdb := testDB(t)
	titos := seedProduct(t, gdb, "p-titos", "Tito's Vodka", 6, nil)

	adj, err := CreateAdjustment(gdb, AdjustmentParams{
		ProductID: titos.ID,
		Quantity:  -2,
		Kind:      "breakage",
		Note:      "dropped a case",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if got := stockOf(t, gdb, titos.ID); got != 4 {
		t.Errorf("stock = %v, want 4", got)
	}

	if err := VoidAdjustment(gdb, adj.ID, "entered twice"); err != nil {
		t.Fatalf("void: %v", err)
	}
	if got := stockOf(t, gdb, titos.ID); got != 6 {
		t.Errorf("stock after void = %v, want 6", got)
	}

	// Voiding twice must not restore stock twice.
	if err := VoidAdjustment(gdb, adj.ID, "again"); !errors.Is(err, ErrVoided) {
		t.Errorf("err = %v, want ErrVoided", err)
	}
	if got := stockOf(t, gdb, titos.ID); got != 6 {
		t.Errorf("stock after double void = %v, want 6", got)
	}

	if err := VoidAdjustment(gdb, "ghost", ""); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestAdjustmentHistoryNewestFirst(t *testing.T) {
	gdb := testDB(t)
	titos := seedProduct(t, gdb, "p-titos", "Tito's Vodka", 10, nil)
	bud := seedProduct(t, gdb, "p-bud", "Bud Light", 24, nil)

	for _, params := range []AdjustmentParams{
		{ProductID: titos.ID, Quantity: -1, Kind: "spillage"},
		{ProductID: bud.ID, Quantity: -2, Kind: "comp"},
		{ProductID: titos.ID, Quantity: -3, Kind: "theft"},
	} {
		if _, err := CreateAdjustment(gdb, params); err != nil {
			t.Fatal(err)
		}
	}

	all, err := AdjustmentHistory(gdb, "", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Fatalf("history = %d, want 3", len(all))
	}

	titosOnly, err := AdjustmentHistory(gdb, titos.ID, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(titosOnly) != 2 {
		t.Errorf("filtered history = %d, want 2", len(titosOnly))
	}
}

func TestCountSessionLifecycle(t *testing.T) {
	gdb := testDB(t)
	titos := seedProduct(t, gdb, "p-titos", "Tito's Vodka", 6, nil)
	bud := seedProduct(t, gdb, "p-bud", "Bud Light", 24, nil)

	session, err := StartCount(gdb, "back bar", "friday count")
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	if err := UpdateCount(gdb, session.ID, titos.ID, 4); err != nil {
		t.Fatal(err)
	}
	// Recounting replaces, not accumulates.
	if err := UpdateCount(gdb, session.ID, titos.ID, 5); err != nil {
		t.Fatal(err)
	}
	if err := UpdateCount(gdb, session.ID, bud.ID, 20); err != nil {
		t.Fatal(err)
	}

	updated, err := CloseCount(gdb, session.ID)
	if err != nil {
		t.Fatalf("close: %v", err)
	}
	if updated != 2 {
		t.Errorf("updated = %d, want 2", updated)
	}

	// Counted values become the absolute stock levels.
	if got := stockOf(t, gdb, titos.ID); got != 5 {
		t.Errorf("titos = %v, want 5", got)
	}
	if got := stockOf(t, gdb, bud.ID); got != 20 {
		t.Errorf("bud = %v, want 20", got)
	}

	// The variance is ledgered as a count movement.
	movements, _ := Movements(gdb, titos.ID, 0)
	if len(movements) != 1 || movements[0].Kind != models.MovementCount || movements[0].Delta != -1 {
		t.Errorf("movements = %+v, want one count of -1", movements)
	}

	// A closed session rejects further updates and re-closing.
	if err := UpdateCount(gdb, session.ID, titos.ID, 9); !errors.Is(err, ErrClosed) {
		t.Errorf("update err = %v, want ErrClosed", err)
	}
	if _, err := CloseCount(gdb, session.ID); !errors.Is(err, ErrClosed) {
		t.Errorf("reclose err = %v, want ErrClosed", err)
	}
}

func TestEventAllocationLifecycle(t *testing.T) {
	gdb := testDB(t)
	bud := seedProduct(t, gdb, "p-bud", "Bud Light", 100, nil)

	alloc, err := CreateAllocation(gdb, "ev-wedding", bud.ID, 48)
	if err != nil {
		t.Fatalf("allocate: %v", err)
	}
	// Allocation alone reserves nothing physically.
	if got := stockOf(t, gdb, bud.ID); got != 100 {
		t.Errorf("stock after allocate = %v, want 100", got)
	}
	if alloc.AllocatedQty != 48 {
		t.Errorf("allocated = %v, want 48", alloc.AllocatedQty)
	}

	if err := UpdateConsumption(gdb, "ev-wedding", bud.ID, 30); err != nil {
		t.Fatal(err)
	}
	if got := stockOf(t, gdb, bud.ID); got != 70 {
		t.Errorf("stock = %v, want 70", got)
	}

	// A correction shifts stock by the delta, not the full amount again.
	if err := UpdateConsumption(gdb, "ev-wedding", bud.ID, 25); err != nil {
		t.Fatal(err)
	}
	if got := stockOf(t, gdb, bud.ID); got != 75 {
		t.Errorf("stock after correction = %v, want 75", got)
	}

	closed, err := CloseEvent(gdb, "ev-wedding")
	if err != nil {
		t.Fatal(err)
	}
	if closed != 1 {
		t.Errorf("closed = %d, want 1", closed)
	}
	if err := UpdateConsumption(gdb, "ev-wedding", bud.ID, 40); !errors.Is(err, ErrClosed) {
		t.Errorf("err = %v, want ErrClosed", err)
	}

	if err := UpdateConsumption(gdb, "ev-ghost", bud.ID, 1); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}
