// Package models defines the GORM models for the Taproom store.
package models

import "time"

// Product is one sellable catalog entry. On-hand inventory is a float: pour
// tracking decrements liquor bottles by fractional container units.
type Product struct {
	ID          string `gorm:"primaryKey;size:36"`
	Name        string `gorm:"not null;index"`
	Category    string `gorm:"size:64;index"`
	Subcategory string `gorm:"size:64"`
	Description string `gorm:"type:text"`
	// PriceCents is the unit price in cents.
	PriceCents int
	// Inventory is the on-hand quantity in container units. It may go
	// negative; decrements are bookkeeping, not reservations.
	Inventory float64
	UnitType  string `gorm:"size:16;default:bottle"`
	// UnitVolumeOz is the container size in fluid ounces, when known.
	UnitVolumeOz *float64
	Active       bool `gorm:"default:true;index"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Category groups products for menu browsing. Deletes are soft.
type Category struct {
	ID        string  `gorm:"primaryKey;size:36"`
	Name      string  `gorm:"not null"`
	ParentID  *string `gorm:"size:36"`
	Active    bool    `gorm:"default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
