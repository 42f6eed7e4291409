package models

import "time"

// Movement kinds recorded in the inventory ledger.
const (
	MovementSale       = "sale"
	MovementRestock    = "restock"
	MovementAdjustment = "adjustment"
	MovementCount      = "count"
)

// InventoryMovement is one row of the append-only stock ledger. Rows are
// never updated or deleted.
type InventoryMovement struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"`
	ProductID string `gorm:"size:36;index"`
	Kind      string `gorm:"size:16;index"`
	// Delta is the signed stock change in container units.
	Delta     float64
	Reason    string    `gorm:"size:128"`
	CreatedAt time.Time `gorm:"index"`
}

// InventoryAdjustment is an operator-entered stock correction (spillage,
// breakage, comp, theft, expired). Voiding reverses its delta.
type InventoryAdjustment struct {
	ID           string `gorm:"primaryKey;size:36"`
	ProductID    string `gorm:"size:36;index"`
	LocationName string `gorm:"size:64"`
	// Quantity is the signed delta applied to the product's inventory.
	Quantity   float64
	Kind       string    `gorm:"size:32"`
	Note       string    `gorm:"type:text"`
	Voided     bool      `gorm:"default:false"`
	VoidReason string    `gorm:"size:128"`
	CreatedAt  time.Time `gorm:"index"`
}

// InventoryCountSession is a physical recount in progress for one location.
type InventoryCountSession struct {
	ID           string `gorm:"primaryKey;size:36"`
	LocationName string `gorm:"size:64"`
	Name         string `gorm:"size:128"`
	Status       string `gorm:"size:16;default:in_progress"`
	StartedAt    time.Time
	CompletedAt  *time.Time
}

// InventoryCountItem records the counted quantity for one product within a
// count session. Re-counting the same product replaces the quantity.
type InventoryCountItem struct {
	ID             uint   `gorm:"primaryKey;autoIncrement"`
	CountSessionID string `gorm:"size:36;index"`
	ProductID      string `gorm:"size:36"`
	Quantity       float64
	CreatedAt      time.Time
}

// EventAllocation reserves stock for a booked event and tracks what was
// actually consumed.
type EventAllocation struct {
	ID           string `gorm:"primaryKey;size:36"`
	EventID      string `gorm:"size:64;index"`
	ProductID    string `gorm:"size:36"`
	AllocatedQty float64
	ConsumedQty  float64
	Closed       bool `gorm:"default:false"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
