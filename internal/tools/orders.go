package tools

import (
	"fmt"

	"github.com/taproom/taproom/internal/models"
	"github.com/taproom/taproom/internal/order"
)

// orderView is one order in a list result.
type orderView struct {
	ID         string     `json:"id"`
	Label      string     `json:"label,omitempty"`
	Status     string     `json:"status"`
	TotalCents int        `json:"total_cents"`
	Items      []lineView `json:"items"`
}

func orderViewOf(o models.Order) orderView {
	v := orderView{
		ID:         o.ID,
		Label:      o.Label,
		Status:     o.Status,
		TotalCents: o.TotalCents,
		Items:      []lineView{},
	}
	for _, item := range o.Items {
		v.Items = append(v.Items, lineView{Name: item.Name, Quantity: item.Quantity, PriceCents: item.PriceCents})
	}
	return v
}

func registerOrders(r *Registry, deps Deps) error {
	defs := []struct {
		def Definition
		h   Handler
	}{
		{
			Definition{
				Name:        "process_order",
				Description: "Finalize the current order: record the payment and decrement inventory.",
				Parameters: Object{
					Type: "object",
					Properties: map[string]Property{
						"payment_method": {Type: "string", Enum: []string{"card", "cash"}},
						"customer_name":  {Type: "string", Description: "Optional name to record on the order"},
					},
					Required: []string{"payment_method"},
				},
			},
			func(inv Invocation, args Args) (interface{}, error) {
				res, err := deps.Orders.Finalize(order.FinalizeParams{
					SessionID:     inv.SessionID,
					PaymentMethod: args.String("payment_method"),
					Label:         args.String("customer_name"),
				})
				if err != nil {
					return nil, domainErr(err)
				}
				return map[string]interface{}{
					"message":      fmt.Sprintf("Order complete, charged %d cents.", res.AmountCents),
					"order_id":     res.OrderID,
					"amount_cents": res.AmountCents,
				}, nil
			},
		},
		{
			Definition{
				Name:        "get_orders_list",
				Description: "List recent orders, optionally filtered by status.",
				Parameters: Object{
					Type: "object",
					Properties: map[string]Property{
						"status": {Type: "string", Enum: []string{models.OrderPending, models.OrderCompleted, models.OrderCancelled}},
						"limit":  {Type: "integer", Description: "Max orders to return, default 10"},
					},
				},
			},
			func(inv Invocation, args Args) (interface{}, error) {
				var (
					orders []models.Order
					err    error
				)
				if status := args.String("status"); status != "" {
					orders, err = deps.Orders.ListByStatus(status, args.Int("limit", 10))
				} else {
					orders, err = deps.Orders.List(args.Int("limit", 10))
				}
				if err != nil {
					return nil, err
				}
				views := make([]orderView, len(orders))
				for i, o := range orders {
					views[i] = orderViewOf(o)
				}
				return map[string]interface{}{
					"message": fmt.Sprintf("%d order(s).", len(views)),
					"orders":  views,
				}, nil
			},
		},
		{
			Definition{
				Name:        "create_tab",
				Description: "Save the current order as an open tab under a customer name and start a fresh cart.",
				Parameters: Object{
					Type: "object",
					Properties: map[string]Property{
						"customer_name": {Type: "string"},
					},
					Required: []string{"customer_name"},
				},
			},
			func(inv Invocation, args Args) (interface{}, error) {
				name, verr := requiredString("create_tab", args, "customer_name")
				if verr != nil {
					return nil, verr
				}
				o, err := deps.Orders.OpenTab(inv.SessionID, name)
				if err != nil {
					return nil, domainErr(err)
				}
				return map[string]interface{}{
					"message":  fmt.Sprintf("Tab open for %s, %d item(s).", o.Label, len(o.Items)),
					"order_id": o.ID,
				}, nil
			},
		},
		{
			Definition{
				Name:        "close_tab",
				Description: "Settle an open tab by customer name.",
				Parameters: Object{
					Type: "object",
					Properties: map[string]Property{
						"customer_name":  {Type: "string"},
						"payment_method": {Type: "string", Enum: []string{"card", "cash"}},
					},
					Required: []string{"customer_name", "payment_method"},
				},
			},
			func(inv Invocation, args Args) (interface{}, error) {
				name, verr := requiredString("close_tab", args, "customer_name")
				if verr != nil {
					return nil, verr
				}
				tab, err := deps.Orders.FindPendingByLabel(name)
				if err != nil {
					return nil, domainErr(err)
				}
				res, err := deps.Orders.Finalize(order.FinalizeParams{
					OrderID:       tab.ID,
					PaymentMethod: args.String("payment_method"),
				})
				if err != nil {
					return nil, domainErr(err)
				}
				return map[string]interface{}{
					"message":      fmt.Sprintf("Closed %s's tab, charged %d cents.", tab.Label, res.AmountCents),
					"order_id":     res.OrderID,
					"amount_cents": res.AmountCents,
				}, nil
			},
		},
		{
			Definition{
				Name:        "void_transaction",
				Description: "Cancel a pending order without charging or touching inventory.",
				Parameters: Object{
					Type: "object",
					Properties: map[string]Property{
						"order_id": {Type: "string"},
					},
					Required: []string{"order_id"},
				},
			},
			func(inv Invocation, args Args) (interface{}, error) {
				id, verr := requiredString("void_transaction", args, "order_id")
				if verr != nil {
					return nil, verr
				}
				if err := deps.Orders.Void(id); err != nil {
					return nil, domainErr(err)
				}
				return map[string]interface{}{
					"message":  "Order cancelled.",
					"order_id": id,
				}, nil
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
