// Package order implements the cart/order aggregate: line items, derived
// totals, and the pending → completed/cancelled status machine.
package order

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/taproom/taproom/internal/inventory"
	"github.com/taproom/taproom/internal/models"
	"gorm.io/gorm"
)

// Sentinel errors for callers to branch on.
var (
	// ErrNoActiveOrder means the session has no pending order.
	ErrNoActiveOrder = errors.New("order: no active cart")
	// ErrNotFound means no order matched the lookup.
	ErrNotFound = errors.New("order: not found")
	// ErrItemNotFound means no line item matched the name query.
	ErrItemNotFound = errors.New("order: item not in cart")
	// ErrNotPending means the order is terminal and cannot be mutated.
	ErrNotPending = errors.New("order: not pending")
)

// Service owns order mutations. One pending order exists per session at
// most; all totals are recomputed from line items on every mutation.
type Service struct {
	db      *gorm.DB
	taxRate float64
	engine  *inventory.Engine
}

// ServiceOpts holds parameters for creating a Service.
type ServiceOpts struct {
	DB *gorm.DB
	// TaxRate is the configured sales tax rate (e.g. 0.08).
	TaxRate float64
	// Engine applies inventory effects on finalize.
	Engine *inventory.Engine
}

// NewService creates a Service.
func NewService(opts ServiceOpts) (*Service, error) {
	if opts.DB == nil {
		return nil, fmt.Errorf("order: db is required")
	}
	if opts.Engine == nil {
		return nil, fmt.Errorf("order: inventory engine is required")
	}
	if opts.TaxRate < 0 || opts.TaxRate >= 1 {
		return nil, fmt.Errorf("order: tax rate %v out of range", opts.TaxRate)
	}
	return &Service{db: opts.DB, taxRate: opts.TaxRate, engine: opts.Engine}, nil
}

// LineInput seeds a line item at order creation.
type LineInput struct {
	ProductID  string
	Name       string
	PriceCents int
	Quantity   int
}

// Create opens a new pending order. Items may be empty (an empty tab).
func (s *Service) Create(sessionID, label string, items []LineInput) (*models.Order, error) {
	o := models.Order{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Label:     label,
		Status:    models.OrderPending,
	}
	for _, in := range items {
		o.Items = append(o.Items, models.OrderItem{
			ProductID:  in.ProductID,
			Name:       in.Name,
			PriceCents: in.PriceCents,
			Quantity:   in.Quantity,
		})
	}
	computeTotals(&o, s.taxRate)

	if err := s.db.Create(&o).Error; err != nil {
		return nil, fmt.Errorf("order: create: %w", err)
	}
	return &o, nil
}

// FindPending returns the session's pending order with items loaded, or
// ErrNoActiveOrder.
func (s *Service) FindPending(sessionID string) (*models.Order, error) {
	var o models.Order
	err := s.db.Preload("Items").
		Where("session_id = ? AND status = ?", sessionID, models.OrderPending).
		First(&o).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNoActiveOrder
	}
	if err != nil {
		return nil, fmt.Errorf("order: find pending for session %s: %w", sessionID, err)
	}
	return &o, nil
}

// FindPendingByLabel returns the open tab whose label matches (case
// insensitive), or ErrNotFound.
func (s *Service) FindPendingByLabel(label string) (*models.Order, error) {
	var orders []models.Order
	err := s.db.Preload("Items").
		Where("status = ?", models.OrderPending).Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("order: find by label %q: %w", label, err)
	}
	for i := range orders {
		if strings.EqualFold(orders[i].Label, label) {
			return &orders[i], nil
		}
	}
	return nil, fmt.Errorf("%w: open tab %q", ErrNotFound, label)
}

// Get returns an order by id with items loaded.
func (s *Service) Get(orderID string) (*models.Order, error) {
	var o models.Order
	err := s.db.Preload("Items").First(&o, "id = ?", orderID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: order %s", ErrNotFound, orderID)
	}
	if err != nil {
		return nil, fmt.Errorf("order: get %s: %w", orderID, err)
	}
	return &o, nil
}

// AddItem merges a product into the session's pending order, creating the
// order if the session has none. An existing line for the product gains
// quantity; otherwise a new line is appended with name/price snapshots.
func (s *Service) AddItem(sessionID string, product *models.Product, quantity int) (*models.Order, error) {
	o, err := s.FindPending(sessionID)
	if errors.Is(err, ErrNoActiveOrder) {
		return s.Create(sessionID, "", []LineInput{{
			ProductID:  product.ID,
			Name:       product.Name,
			PriceCents: product.PriceCents,
			Quantity:   quantity,
		}})
	}
	if err != nil {
		return nil, err
	}

	merged := false
	for i := range o.Items {
		if o.Items[i].ProductID == product.ID {
			o.Items[i].Quantity += quantity
			merged = true
			break
		}
	}
	if !merged {
		o.Items = append(o.Items, models.OrderItem{
			OrderID:    o.ID,
			ProductID:  product.ID,
			Name:       product.Name,
			PriceCents: product.PriceCents,
			Quantity:   quantity,
		})
	}

	if err := s.saveItems(o); err != nil {
		return nil, err
	}
	return o, nil
}

// SetQuantity replaces a line's quantity; zero or negative removes the line.
func (s *Service) SetQuantity(sessionID, productID string, quantity int) (*models.Order, error) {
	o, err := s.FindPending(sessionID)
	if err != nil {
		return nil, err
	}

	found := false
	kept := o.Items[:0]
	for _, item := range o.Items {
		if item.ProductID == productID {
			found = true
			if quantity <= 0 {
				continue
			}
			item.Quantity = quantity
		}
		kept = append(kept, item)
	}
	if !found {
		return nil, fmt.Errorf("%w: product %s", ErrItemNotFound, productID)
	}
	o.Items = kept

	if err := s.saveItems(o); err != nil {
		return nil, err
	}
	return o, nil
}

// RemoveResult reports what RemoveByName did.
type RemoveResult struct {
	ItemName string
	// Removed is true when the whole line was dropped.
	Removed   bool
	Remaining int
}

// RemoveByName locates the line whose name snapshot contains the query
// (case-insensitive) and decrements it, removing the line outright when the
// requested quantity meets or exceeds what remains.
func (s *Service) RemoveByName(sessionID, nameQuery string, quantity int) (*RemoveResult, error) {
	o, err := s.FindPending(sessionID)
	if err != nil {
		return nil, err
	}

	lower := strings.ToLower(nameQuery)
	idx := -1
	for i := range o.Items {
		if strings.Contains(strings.ToLower(o.Items[i].Name), lower) {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("%w: %q", ErrItemNotFound, nameQuery)
	}

	result := &RemoveResult{ItemName: o.Items[idx].Name}
	if o.Items[idx].Quantity <= quantity {
		result.Removed = true
		o.Items = append(o.Items[:idx], o.Items[idx+1:]...)
	} else {
		o.Items[idx].Quantity -= quantity
		result.Remaining = o.Items[idx].Quantity
	}

	if err := s.saveItems(o); err != nil {
		return nil, err
	}
	return result, nil
}

// Clear deletes the session's pending order entirely. Returns the number of
// line items discarded; zero with no error when there was no open cart.
func (s *Service) Clear(sessionID string) (int, error) {
	o, err := s.FindPending(sessionID)
	if errors.Is(err, ErrNoActiveOrder) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	count := len(o.Items)
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", o.ID).Delete(&models.OrderItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Order{}, "id = ?", o.ID).Error
	})
	if err != nil {
		return 0, fmt.Errorf("order: clear %s: %w", o.ID, err)
	}
	return count, nil
}

// OpenTab names the session's pending order and detaches it from the
// session, leaving it open for later settlement while the session starts a
// fresh cart. With no pending order an empty tab is created.
func (s *Service) OpenTab(sessionID, label string) (*models.Order, error) {
	if label == "" {
		return nil, fmt.Errorf("order: tab label is required")
	}
	o, err := s.FindPending(sessionID)
	if errors.Is(err, ErrNoActiveOrder) {
		return s.Create("", label, nil)
	}
	if err != nil {
		return nil, err
	}

	err = s.db.Model(&models.Order{}).Where("id = ?", o.ID).
		Updates(map[string]interface{}{
			"label":      label,
			"session_id": "",
			"updated_at": time.Now(),
		}).Error
	if err != nil {
		return nil, fmt.Errorf("order: open tab %q: %w", label, err)
	}
	o.Label = label
	o.SessionID = ""
	return o, nil
}

// FinalizeParams selects the order (by id, label, or session) and carries
// payment details.
type FinalizeParams struct {
	OrderID   string
	SessionID string
	// PaymentMethod is recorded on the transaction (card, cash, ...).
	PaymentMethod string
	// AmountCents defaults to the order total when zero.
	AmountCents int
	// Label optionally names the finalized order.
	Label string
}

// FinalizeResult reports the completed order.
type FinalizeResult struct {
	OrderID     string
	AmountCents int
}

// Finalize completes a pending order: a payment transaction is recorded and
// every line item's inventory effect is applied through the decrement
// engine. The whole operation runs in one store transaction so a failure
// partway leaves no ingredient half-decremented.
func (s *Service) Finalize(params FinalizeParams) (*FinalizeResult, error) {
	var result FinalizeResult
	err := s.db.Transaction(func(tx *gorm.DB) error {
		o, err := s.lockPending(tx, params.OrderID, params.SessionID)
		if err != nil {
			return err
		}

		amount := params.AmountCents
		if amount == 0 {
			amount = o.TotalCents
		}

		txn := models.Transaction{
			OrderID:       o.ID,
			Type:          "sale",
			AmountCents:   amount,
			PaymentMethod: params.PaymentMethod,
			Status:        "completed",
		}
		if err := tx.Create(&txn).Error; err != nil {
			return fmt.Errorf("order: record transaction: %w", err)
		}

		for _, item := range o.Items {
			sold := inventory.SoldItem{
				ProductID: item.ProductID,
				Name:      item.Name,
				Quantity:  item.Quantity,
			}
			if err := s.engine.ApplySale(tx, sold); err != nil {
				return err
			}
		}

		updates := map[string]interface{}{
			"status":     models.OrderCompleted,
			"updated_at": time.Now(),
		}
		if params.Label != "" {
			updates["label"] = params.Label
		}
		if err := tx.Model(&models.Order{}).Where("id = ?", o.ID).Updates(updates).Error; err != nil {
			return fmt.Errorf("order: complete %s: %w", o.ID, err)
		}

		result = FinalizeResult{OrderID: o.ID, AmountCents: amount}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Void cancels an order without inventory effect. Terminal orders fail with
// ErrNotPending.
func (s *Service) Void(orderID string) error {
	o, err := s.Get(orderID)
	if err != nil {
		return err
	}
	if o.Status != models.OrderPending {
		return fmt.Errorf("%w: order %s is %s", ErrNotPending, orderID, o.Status)
	}
	return s.db.Model(&models.Order{}).Where("id = ?", orderID).
		Updates(map[string]interface{}{
			"status":     models.OrderCancelled,
			"updated_at": time.Now(),
		}).Error
}

// List returns recent orders newest first.
func (s *Service) List(limit int) ([]models.Order, error) {
	if limit <= 0 {
		limit = 10
	}
	var orders []models.Order
	err := s.db.Preload("Items").Order("created_at DESC").Limit(limit).Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("order: list: %w", err)
	}
	return orders, nil
}

// ListByStatus returns orders in one status, newest first.
func (s *Service) ListByStatus(status string, limit int) ([]models.Order, error) {
	q := s.db.Preload("Items").Where("status = ?", status).Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var orders []models.Order
	if err := q.Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("order: list %s: %w", status, err)
	}
	return orders, nil
}

// lockPending loads the target order inside tx and verifies it is pending.
func (s *Service) lockPending(tx *gorm.DB, orderID, sessionID string) (*models.Order, error) {
	var o models.Order
	var err error
	switch {
	case orderID != "":
		err = tx.Preload("Items").First(&o, "id = ?", orderID).Error
	case sessionID != "":
		err = tx.Preload("Items").
			Where("session_id = ? AND status = ?", sessionID, models.OrderPending).
			First(&o).Error
	default:
		return nil, fmt.Errorf("order: finalize needs an order or session id")
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNoActiveOrder
	}
	if err != nil {
		return nil, fmt.Errorf("order: load for finalize: %w", err)
	}
	if o.Status != models.OrderPending {
		return nil, fmt.Errorf("%w: order %s is %s", ErrNotPending, o.ID, o.Status)
	}
	return &o, nil
}

// saveItems persists the order's line items and recomputed totals.
func (s *Service) saveItems(o *models.Order) error {
	computeTotals(o, s.taxRate)
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", o.ID).Delete(&models.OrderItem{}).Error; err != nil {
			return err
		}
		for i := range o.Items {
			o.Items[i].ID = 0
			o.Items[i].OrderID = o.ID
		}
		if len(o.Items) > 0 {
			if err := tx.Create(&o.Items).Error; err != nil {
				return err
			}
		}
		return tx.Model(&models.Order{}).Where("id = ?", o.ID).
			Updates(map[string]interface{}{
				"subtotal_cents": o.SubtotalCents,
				"tax_cents":      o.TaxCents,
				"total_cents":    o.TotalCents,
				"updated_at":     time.Now(),
			}).Error
	})
	if err != nil {
		return fmt.Errorf("order: save items for %s: %w", o.ID, err)
	}
	return nil
}

// computeTotals derives subtotal, tax, and total from the line items.
func computeTotals(o *models.Order, taxRate float64) {
	subtotal := 0
	for _, item := range o.Items {
		subtotal += item.PriceCents * item.Quantity
	}
	tax := int(math.Round(float64(subtotal) * taxRate))
	o.SubtotalCents = subtotal
	o.TaxCents = tax
	o.TotalCents = subtotal + tax
}
