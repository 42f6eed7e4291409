package tools

import (
	"errors"
	"fmt"

	"github.com/taproom/taproom/internal/catalog"
	"github.com/taproom/taproom/internal/inventory"
	"github.com/taproom/taproom/internal/order"
	"gorm.io/gorm"
)

// Deps holds everything the command handlers touch.
type Deps struct {
	DB     *gorm.DB
	Orders *order.Service
	// LowStockThreshold feeds the no-argument form of check_inventory.
	LowStockThreshold float64
	// Navigate pushes a screen change to the session's terminal UI.
	Navigate func(sessionID, screen string) error
	// Terminate asks the session manager to end the voice session.
	Terminate func(sessionID string) error
}

func (d Deps) validate() error {
	if d.DB == nil {
		return fmt.Errorf("tools: db is required")
	}
	if d.Orders == nil {
		return fmt.Errorf("tools: order service is required")
	}
	return nil
}

// RegisterAll wires every command into the registry.
func RegisterAll(r *Registry, deps Deps) error {
	if err := deps.validate(); err != nil {
		return err
	}
	for _, reg := range []func(*Registry, Deps) error{
		registerCart,
		registerOrders,
		registerCatalog,
		registerInventory,
		registerTerminal,
	} {
		if err := reg(r, deps); err != nil {
			return err
		}
	}
	return nil
}

// domainErr maps domain sentinels onto the command error taxonomy so the
// provider hears "not found" rather than a storage-layer string.
func domainErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, catalog.ErrNotFound),
		errors.Is(err, order.ErrNotFound),
		errors.Is(err, order.ErrItemNotFound),
		errors.Is(err, inventory.ErrNotFound):
		return NotFoundf("%v", err)
	case errors.Is(err, order.ErrNoActiveOrder):
		return NotFoundf("no items in the cart yet")
	case errors.Is(err, order.ErrNotPending),
		errors.Is(err, inventory.ErrVoided),
		errors.Is(err, inventory.ErrClosed):
		return Conflictf("%v", err)
	default:
		return err
	}
}
