package models

import "time"

// Order statuses. Pending orders are open tabs; completed and cancelled are
// terminal.
const (
	OrderPending   = "pending"
	OrderCompleted = "completed"
	OrderCancelled = "cancelled"
)

// Order is one tab/cart/transaction. Totals are always derived from the
// line items, never mutated independently.
type Order struct {
	ID        string `gorm:"primaryKey;size:36"`
	SessionID string `gorm:"size:36;index"`
	// Label is the customer or table name for open tabs ("John", "Table 5").
	Label         string `gorm:"size:128"`
	Status        string `gorm:"size:16;default:pending;index"`
	SubtotalCents int
	TaxCents      int
	TotalCents    int
	CreatedAt     time.Time
	UpdatedAt     time.Time

	Items []OrderItem `gorm:"foreignKey:OrderID"`
}

// OrderItem is one product line within an order. A product appears at most
// once per order; re-adding merges into the existing line.
type OrderItem struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"`
	OrderID   string `gorm:"size:36;index;uniqueIndex:idx_order_product"`
	ProductID string `gorm:"size:36;uniqueIndex:idx_order_product"`
	// Name and PriceCents are snapshots taken when the line was added.
	Name       string `gorm:"size:128"`
	PriceCents int
	Quantity   int
}

// Transaction is a payment record written when an order is finalized.
type Transaction struct {
	ID            uint   `gorm:"primaryKey;autoIncrement"`
	OrderID       string `gorm:"size:36;index"`
	Type          string `gorm:"size:16;default:sale"`
	AmountCents   int
	PaymentMethod string `gorm:"size:32"`
	Status        string `gorm:"size:16;default:completed"`
	CreatedAt     time.Time
}
