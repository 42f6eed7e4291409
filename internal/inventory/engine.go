package inventory

import (
	"errors"
	"fmt"
	"time"

	"github.com/taproom/taproom/internal/models"
	"gorm.io/gorm"
)

// Sentinel errors for callers to branch on.
var (
	ErrNotFound = errors.New("inventory: not found")
	ErrVoided   = errors.New("inventory: adjustment already voided")
	ErrClosed   = errors.New("inventory: already closed")
)

// Engine applies stock effects to the catalog. It is purely additive
// bookkeeping: stock may go negative, nothing is reserved.
type Engine struct {
	// Recipes maps exact sellable names to ingredient decompositions.
	Recipes map[string]Recipe
	// DefaultBottleOz is the container size assumed when a fluid-ounce
	// ingredient's product has no configured unit volume.
	DefaultBottleOz float64
}

// NewEngine creates an Engine over the standard recipe table.
func NewEngine(defaultBottleOz float64) *Engine {
	if defaultBottleOz <= 0 {
		defaultBottleOz = BottleOz
	}
	return &Engine{
		Recipes:         StandardRecipes,
		DefaultBottleOz: defaultBottleOz,
	}
}

// SoldItem is one finalized order line handed to the engine.
type SoldItem struct {
	ProductID string
	Name      string
	Quantity  int
}

// ApplySale decrements stock for one sold line item. The line's exact name
// selects a recipe; each ingredient is resolved by exact catalog name and
// decremented with unit conversion. With no recipe the sold product's own
// stock is decremented directly. Each decrement appends one ledger row.
//
// Ingredients with no matching catalog entry are skipped: a missing mixer
// must not block the sale.
func (e *Engine) ApplySale(gdb *gorm.DB, item SoldItem) error {
	recipe, ok := e.Recipes[item.Name]
	if !ok {
		return applyDelta(gdb, item.ProductID, -float64(item.Quantity), models.MovementSale, "order_sale")
	}

	for _, ing := range recipe.Ingredients {
		var product models.Product
		err := gdb.Where("name = ?", ing.Name).First(&product).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			continue
		}
		if err != nil {
			return fmt.Errorf("inventory: lookup ingredient %q: %w", ing.Name, err)
		}

		var qty float64
		switch ing.Unit {
		case UnitAbsolute:
			qty = ing.Quantity * float64(item.Quantity)
		case UnitFluidOunce:
			containerOz := e.DefaultBottleOz
			if product.UnitVolumeOz != nil && *product.UnitVolumeOz > 0 {
				containerOz = *product.UnitVolumeOz
			}
			qty = (ing.Quantity * float64(item.Quantity)) / containerOz
		default:
			return fmt.Errorf("inventory: ingredient %q has unknown unit %q", ing.Name, ing.Unit)
		}

		if err := applyDelta(gdb, product.ID, -qty, models.MovementSale, "order_sale"); err != nil {
			return err
		}
	}
	return nil
}

// applyDelta shifts a product's inventory by delta and appends the matching
// ledger row. All stock changes in this package flow through here.
func applyDelta(gdb *gorm.DB, productID string, delta float64, kind, reason string) error {
	res := gdb.Model(&models.Product{}).Where("id = ?", productID).
		Updates(map[string]interface{}{
			"inventory":  gorm.Expr("inventory + ?", delta),
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return fmt.Errorf("inventory: apply delta to %s: %w", productID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: product %s", ErrNotFound, productID)
	}

	movement := models.InventoryMovement{
		ProductID: productID,
		Kind:      kind,
		Delta:     delta,
		Reason:    reason,
	}
	if err := gdb.Create(&movement).Error; err != nil {
		return fmt.Errorf("inventory: append movement for %s: %w", productID, err)
	}
	return nil
}

// Restock increases a product's stock by qty and records the movement.
func Restock(gdb *gorm.DB, productID string, qty float64, reason string) error {
	if reason == "" {
		reason = "restock"
	}
	return applyDelta(gdb, productID, qty, models.MovementRestock, reason)
}

// Movements returns the ledger for one product, newest first.
func Movements(gdb *gorm.DB, productID string, limit int) ([]models.InventoryMovement, error) {
	if limit <= 0 {
		limit = 50
	}
	var movements []models.InventoryMovement
	err := gdb.Where("product_id = ?", productID).
		Order("id DESC").Limit(limit).Find(&movements).Error
	if err != nil {
		return nil, fmt.Errorf("inventory: movements for %s: %w", productID, err)
	}
	return movements, nil
}
