package inventory

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/taproom/taproom/internal/models"
	"gorm.io/gorm"
)

// AdjustmentParams holds fields for a new operator adjustment.
type AdjustmentParams struct {
	ProductID    string
	LocationName string
	// Quantity is signed: positive adds stock, negative removes it.
	Quantity float64
	// Kind is the operator-entered reason class: spillage, breakage, comp,
	// theft, expired.
	Kind string
	Note string
}

// CreateAdjustment records an adjustment, applies its delta to the product,
// and appends a ledger row, all in one transaction.
func CreateAdjustment(gdb *gorm.DB, params AdjustmentParams) (*models.InventoryAdjustment, error) {
	adj := models.InventoryAdjustment{
		ID:           uuid.NewString(),
		ProductID:    params.ProductID,
		LocationName: params.LocationName,
		Quantity:     params.Quantity,
		Kind:         params.Kind,
		Note:         params.Note,
	}

	err := gdb.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&adj).Error; err != nil {
			return fmt.Errorf("inventory: create adjustment: %w", err)
		}
		return applyDelta(tx, params.ProductID, params.Quantity, models.MovementAdjustment, params.Kind)
	})
	if err != nil {
		return nil, err
	}
	return &adj, nil
}

// AdjustmentHistory returns adjustments newest first, optionally filtered to
// one product.
func AdjustmentHistory(gdb *gorm.DB, productID string, limit int) ([]models.InventoryAdjustment, error) {
	if limit <= 0 {
		limit = 50
	}
	q := gdb.Order("created_at DESC").Limit(limit)
	if productID != "" {
		q = q.Where("product_id = ?", productID)
	}
	var adjustments []models.InventoryAdjustment
	if err := q.Find(&adjustments).Error; err != nil {
		return nil, fmt.Errorf("inventory: adjustment history: %w", err)
	}
	return adjustments, nil
}

// VoidAdjustment reverses a prior adjustment by applying its negated delta.
// Voiding twice fails with ErrVoided.
func VoidAdjustment(gdb *gorm.DB, adjustmentID, reason string) error {
	return gdb.Transaction(func(tx *gorm.DB) error {
		var adj models.InventoryAdjustment
		err := tx.First(&adj, "id = ?", adjustmentID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: adjustment %s", ErrNotFound, adjustmentID)
		}
		if err != nil {
			return fmt.Errorf("inventory: load adjustment %s: %w", adjustmentID, err)
		}
		if adj.Voided {
			return fmt.Errorf("%w: adjustment %s", ErrVoided, adjustmentID)
		}

		if err := applyDelta(tx, adj.ProductID, -adj.Quantity, models.MovementAdjustment, "void_adjustment"); err != nil {
			return err
		}

		updates := map[string]interface{}{"voided": true, "void_reason": reason}
		if err := tx.Model(&models.InventoryAdjustment{}).
			Where("id = ?", adjustmentID).Updates(updates).Error; err != nil {
			return fmt.Errorf("inventory: void adjustment %s: %w", adjustmentID, err)
		}
		return nil
	})
}

// StartCount opens a physical count session for a location.
func StartCount(gdb *gorm.DB, locationName, countName string) (*models.InventoryCountSession, error) {
	session := models.InventoryCountSession{
		ID:           uuid.NewString(),
		LocationName: locationName,
		Name:         countName,
		Status:       "in_progress",
		StartedAt:    time.Now(),
	}
	if err := gdb.Create(&session).Error; err != nil {
		return nil, fmt.Errorf("inventory: start count: %w", err)
	}
	return &session, nil
}

// UpdateCount records the counted quantity for a product within a session.
// Re-counting the same product replaces the prior quantity.
func UpdateCount(gdb *gorm.DB, sessionID, productID string, quantity float64) error {
	var session models.InventoryCountSession
	err := gdb.First(&session, "id = ?", sessionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: count session %s", ErrNotFound, sessionID)
	}
	if err != nil {
		return fmt.Errorf("inventory: load count session %s: %w", sessionID, err)
	}
	if session.Status != "in_progress" {
		return fmt.Errorf("%w: count session %s", ErrClosed, sessionID)
	}

	var existing models.InventoryCountItem
	err = gdb.Where("count_session_id = ? AND product_id = ?", sessionID, productID).
		First(&existing).Error
	switch {
	case err == nil:
		return gdb.Model(&existing).Update("quantity", quantity).Error
	case errors.Is(err, gorm.ErrRecordNotFound):
		item := models.InventoryCountItem{
			CountSessionID: sessionID,
			ProductID:      productID,
			Quantity:       quantity,
		}
		if err := gdb.Create(&item).Error; err != nil {
			return fmt.Errorf("inventory: record count item: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("inventory: lookup count item: %w", err)
	}
}

// CloseCount finalizes a count session: each counted product's inventory is
// set to the recounted absolute value, the variance is ledgered, and the
// session is marked completed. Closing twice fails with ErrClosed. Returns
// the number of products updated.
func CloseCount(gdb *gorm.DB, sessionID string) (int, error) {
	var updated int
	err := gdb.Transaction(func(tx *gorm.DB) error {
		var session models.InventoryCountSession
		err := tx.First(&session, "id = ?", sessionID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: count session %s", ErrNotFound, sessionID)
		}
		if err != nil {
			return fmt.Errorf("inventory: load count session %s: %w", sessionID, err)
		}
		if session.Status != "in_progress" {
			return fmt.Errorf("%w: count session %s", ErrClosed, sessionID)
		}

		var items []models.InventoryCountItem
		if err := tx.Where("count_session_id = ?", sessionID).Find(&items).Error; err != nil {
			return fmt.Errorf("inventory: load count items: %w", err)
		}

		for _, item := range items {
			var product models.Product
			if err := tx.First(&product, "id = ?", item.ProductID).Error; err != nil {
				return fmt.Errorf("inventory: load product %s: %w", item.ProductID, err)
			}
			variance := item.Quantity - product.Inventory
			if err := applyDelta(tx, item.ProductID, variance, models.MovementCount, "count_variance"); err != nil {
				return err
			}
			updated++
		}

		now := time.Now()
		return tx.Model(&models.InventoryCountSession{}).Where("id = ?", sessionID).
			Updates(map[string]interface{}{"status": "completed", "completed_at": &now}).Error
	})
	if err != nil {
		return 0, err
	}
	return updated, nil
}
