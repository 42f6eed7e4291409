package tools

import (
	"errors"
	"fmt"

	"github.com/taproom/taproom/internal/catalog"
	"github.com/taproom/taproom/internal/models"
	"github.com/taproom/taproom/internal/order"
)

// lineView is one cart line in a command result.
type lineView struct {
	Name       string `json:"name"`
	Quantity   int    `json:"quantity"`
	PriceCents int    `json:"price_cents"`
}

// cartView is the cart summary returned by cart commands.
type cartView struct {
	Message       string     `json:"message"`
	Items         []lineView `json:"items"`
	SubtotalCents int        `json:"subtotal_cents"`
	TaxCents      int        `json:"tax_cents"`
	TotalCents    int        `json:"total_cents"`
}

func viewOf(o *models.Order, message string) cartView {
	v := cartView{Message: message, Items: []lineView{}}
	if o == nil {
		return v
	}
	for _, item := range o.Items {
		v.Items = append(v.Items, lineView{
			Name:       item.Name,
			Quantity:   item.Quantity,
			PriceCents: item.PriceCents,
		})
	}
	v.SubtotalCents = o.SubtotalCents
	v.TaxCents = o.TaxCents
	v.TotalCents = o.TotalCents
	return v
}

func registerCart(r *Registry, deps Deps) error {
	defs := []struct {
		def Definition
		h   Handler
	}{
		{
			Definition{
				Name:        "add_to_cart",
				Description: "Add a drink to the current order. The name may be approximate; it is matched against the menu.",
				Parameters: Object{
					Type: "object",
					Properties: map[string]Property{
						"drink_name": {Type: "string", Description: "Spoken name of the drink"},
						"quantity":   {Type: "integer", Description: "How many to add, default 1"},
					},
					Required: []string{"drink_name"},
				},
			},
			func(inv Invocation, args Args) (interface{}, error) {
				return addToCart(deps, inv.SessionID, args.String("drink_name"), args.Int("quantity", 1))
			},
		},
		{
			Definition{
				Name:        "add_multiple_to_cart",
				Description: "Add several drinks in one call. Items that fail to resolve are reported; the rest are still added.",
				Parameters: Object{
					Type: "object",
					Properties: map[string]Property{
						"items": {Type: "array", Description: "Drinks to add", Items: &Object{
							Type: "object",
							Properties: map[string]Property{
								"drink_name": {Type: "string"},
								"quantity":   {Type: "integer"},
							},
							Required: []string{"drink_name"},
						}},
					},
					Required: []string{"items"},
				},
			},
			func(inv Invocation, args Args) (interface{}, error) {
				return addMultiple(deps, inv.SessionID, args.Objects("items"))
			},
		},
		{
			Definition{
				Name:        "remove_from_cart",
				Description: "Remove a drink (or reduce its quantity) from the current order.",
				Parameters: Object{
					Type: "object",
					Properties: map[string]Property{
						"drink_name": {Type: "string", Description: "Name of the drink to remove"},
						"quantity":   {Type: "integer", Description: "How many to remove, default 1"},
					},
					Required: []string{"drink_name"},
				},
			},
			func(inv Invocation, args Args) (interface{}, error) {
				return removeFromCart(deps, inv.SessionID, args.String("drink_name"), args.Int("quantity", 1))
			},
		},
		{
			Definition{
				Name:        "show_cart",
				Description: "Read back the current order with line items and totals.",
				Parameters:  Object{Type: "object"},
			},
			func(inv Invocation, args Args) (interface{}, error) {
				o, err := deps.Orders.FindPending(inv.SessionID)
				if errors.Is(err, order.ErrNoActiveOrder) {
					return viewOf(nil, "The cart is empty."), nil
				}
				if err != nil {
					return nil, err
				}
				return viewOf(o, fmt.Sprintf("%d item(s) in the cart.", len(o.Items))), nil
			},
		},
		{
			Definition{
				Name:        "clear_cart",
				Description: "Discard the current order entirely.",
				Parameters:  Object{Type: "object"},
			},
			func(inv Invocation, args Args) (interface{}, error) {
				n, err := deps.Orders.Clear(inv.SessionID)
				if err != nil {
					return nil, err
				}
				if n == 0 {
					return viewOf(nil, "The cart was already empty."), nil
				}
				return viewOf(nil, fmt.Sprintf("Cleared %d item(s).", n)), nil
			},
		},
	}

	for _, d := range defs {
		if err := r.Register(d.def, d.h); err != nil {
			return err
		}
	}
	return nil
}

func addToCart(deps Deps, sessionID, name string, quantity int) (interface{}, error) {
	if name == "" {
		return nil, Validationf("add_to_cart: drink_name must not be empty")
	}
	if quantity <= 0 {
		return nil, Validationf("add_to_cart: quantity must be positive")
	}

	product, err := catalog.Resolve(deps.DB, name)
	if err != nil {
		return nil, domainErr(err)
	}
	if product.Inventory < float64(quantity) {
		return nil, Conflictf("only %g of %s available", product.Inventory, product.Name)
	}

	o, err := deps.Orders.AddItem(sessionID, product, quantity)
	if err != nil {
		return nil, domainErr(err)
	}
	return viewOf(o, fmt.Sprintf("Added %d× %s.", quantity, product.Name)), nil
}

// batchResult reports an add_multiple_to_cart outcome. The command is never
// all-or-nothing: each item resolves independently.
type batchResult struct {
	Message  string         `json:"message"`
	Added    int            `json:"added"`
	Failures []BatchFailure `json:"failures,omitempty"`
	Cart     cartView       `json:"cart"`
}

func addMultiple(deps Deps, sessionID string, items []Args) (interface{}, error) {
	if len(items) == 0 {
		return nil, Validationf("add_multiple_to_cart: items must not be empty")
	}

	var added int
	var failures []BatchFailure
	for _, item := range items {
		name := item.String("drink_name")
		qty := item.Int("quantity", 1)
		if _, err := addToCart(deps, sessionID, name, qty); err != nil {
			reason := err.Error()
			var terr *Error
			if errors.As(err, &terr) {
				reason = terr.Message
			}
			failures = append(failures, BatchFailure{Item: name, Reason: reason})
			continue
		}
		added++
	}

	if added == 0 {
		return nil, &Error{
			Kind:     KindBatch,
			Message:  "no items could be added",
			Failures: failures,
		}
	}

	o, err := deps.Orders.FindPending(sessionID)
	if err != nil {
		return nil, domainErr(err)
	}
	msg := fmt.Sprintf("Added %d item(s).", added)
	if len(failures) > 0 {
		msg = fmt.Sprintf("Added %d item(s); %d failed.", added, len(failures))
	}
	return batchResult{Message: msg, Added: added, Failures: failures, Cart: viewOf(o, msg)}, nil
}

func removeFromCart(deps Deps, sessionID, name string, quantity int) (interface{}, error) {
	if name == "" {
		return nil, Validationf("remove_from_cart: drink_name must not be empty")
	}
	if quantity <= 0 {
		return nil, Validationf("remove_from_cart: quantity must be positive")
	}

	res, err := deps.Orders.RemoveByName(sessionID, name, quantity)
	if err != nil {
		return nil, domainErr(err)
	}

	var o *models.Order
	if cur, err := deps.Orders.FindPending(sessionID); err == nil {
		o = cur
	}
	if res.Removed {
		return viewOf(o, fmt.Sprintf("Removed %s from the cart.", res.ItemName)), nil
	}
	return viewOf(o, fmt.Sprintf("Removed %d× %s, %d left in the cart.", quantity, res.ItemName, res.Remaining)), nil
}
