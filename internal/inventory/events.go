package inventory

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/taproom/taproom/internal/models"
	"gorm.io/gorm"
)

// CreateAllocation reserves stock for a booked event. The reservation is
// bookkeeping only; stock is not decremented until consumption is recorded.
func CreateAllocation(gdb *gorm.DB, eventID, productID string, quantity float64) (*models.EventAllocation, error) {
	alloc := models.EventAllocation{
		ID:           uuid.NewString(),
		EventID:      eventID,
		ProductID:    productID,
		AllocatedQty: quantity,
	}
	if err := gdb.Create(&alloc).Error; err != nil {
		return nil, fmt.Errorf("inventory: create event allocation: %w", err)
	}
	return &alloc, nil
}

// UpdateConsumption records the actual quantity consumed for one product at
// an event. The product's stock shifts by the difference from the previously
// recorded consumption, so repeated corrections don't double-count. Fails
// with ErrClosed once the event is closed.
func UpdateConsumption(gdb *gorm.DB, eventID, productID string, quantityUsed float64) error {
	return gdb.Transaction(func(tx *gorm.DB) error {
		var alloc models.EventAllocation
		err := tx.Where("event_id = ? AND product_id = ?", eventID, productID).
			First(&alloc).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: allocation for event %s", ErrNotFound, eventID)
		}
		if err != nil {
			return fmt.Errorf("inventory: load allocation: %w", err)
		}
		if alloc.Closed {
			return fmt.Errorf("%w: event %s", ErrClosed, eventID)
		}

		delta := quantityUsed - alloc.ConsumedQty
		if delta != 0 {
			if err := applyDelta(tx, productID, -delta, models.MovementAdjustment, "event_consumption"); err != nil {
				return err
			}
		}

		if err := tx.Model(&alloc).Update("consumed_qty", quantityUsed).Error; err != nil {
			return fmt.Errorf("inventory: update consumption: %w", err)
		}
		return nil
	})
}

// CloseEvent locks all of an event's allocations against further consumption
// updates. Returns the number of allocations closed.
func CloseEvent(gdb *gorm.DB, eventID string) (int, error) {
	res := gdb.Model(&models.EventAllocation{}).
		Where("event_id = ? AND closed = ?", eventID, false).
		Update("closed", true)
	if res.Error != nil {
		return 0, fmt.Errorf("inventory: close event %s: %w", eventID, res.Error)
	}
	return int(res.RowsAffected), nil
}

// Allocations returns all allocations for an event.
func Allocations(gdb *gorm.DB, eventID string) ([]models.EventAllocation, error) {
	var allocs []models.EventAllocation
	if err := gdb.Where("event_id = ?", eventID).Find(&allocs).Error; err != nil {
		return nil, fmt.Errorf("inventory: allocations for %s: %w", eventID, err)
	}
	return allocs, nil
}
