package tools

import (
	"fmt"

	"github.com/taproom/taproom/internal/catalog"
	"github.com/taproom/taproom/internal/inventory"
)

func registerInventory(r *Registry, deps Deps) error {
	defs := []struct {
		def Definition
		h   Handler
	}{
		{
			Definition{
				Name:        "create_adjustment",
				Description: "Record a manual stock adjustment (spillage, breakage, comp, theft, expired).",
				Parameters: Object{
					Type: "object",
					Properties: map[string]Property{
						"drink_name": {Type: "string"},
						"quantity":   {Type: "number", Description: "Signed: negative removes stock"},
						"kind":       {Type: "string", Enum: []string{"spillage", "breakage", "comp", "theft", "expired"}},
						"location":   {Type: "string"},
						"note":       {Type: "string"},
					},
					Required: []string{"drink_name", "quantity", "kind"},
				},
			},
			func(inv Invocation, args Args) (interface{}, error) {
				name, verr := requiredString("create_adjustment", args, "drink_name")
				if verr != nil {
					return nil, verr
				}
				p, err := catalog.Resolve(deps.DB, name)
				if err != nil {
					return nil, domainErr(err)
				}
				adj, err := inventory.CreateAdjustment(deps.DB, inventory.AdjustmentParams{
					ProductID:    p.ID,
					LocationName: args.String("location"),
					Quantity:     args.Float("quantity", 0),
					Kind:         args.String("kind"),
					Note:         args.String("note"),
				})
				if err != nil {
					return nil, domainErr(err)
				}
				return map[string]interface{}{
					"message":       fmt.Sprintf("Adjusted %s by %g (%s).", p.Name, adj.Quantity, adj.Kind),
					"adjustment_id": adj.ID,
				}, nil
			},
		},
		{
			Definition{
				Name:        "read_adjustment_history",
				Description: "List recent stock adjustments, optionally for one drink.",
				Parameters: Object{
					Type: "object",
					Properties: map[string]Property{
						"drink_name": {Type: "string"},
						"limit":      {Type: "integer"},
					},
				},
			},
			func(inv Invocation, args Args) (interface{}, error) {
				productID := ""
				if name := args.String("drink_name"); name != "" {
					p, err := catalog.Resolve(deps.DB, name)
					if err != nil {
						return nil, domainErr(err)
					}
					productID = p.ID
				}
				history, err := inventory.AdjustmentHistory(deps.DB, productID, args.Int("limit", 0))
				if err != nil {
					return nil, err
				}
				return map[string]interface{}{
					"message":     fmt.Sprintf("%d adjustment(s).", len(history)),
					"adjustments": history,
				}, nil
			},
		},
		{
			Definition{
				Name:        "void_adjustment",
				Description: "Reverse a prior stock adjustment.",
				Parameters: Object{
					Type: "object",
					Properties: map[string]Property{
						"adjustment_id": {Type: "string"},
						"reason":        {Type: "string"},
					},
					Required: []string{"adjustment_id"},
				},
			},
			func(inv Invocation, args Args) (interface{}, error) {
				id, verr := requiredString("void_adjustment", args, "adjustment_id")
				if verr != nil {
					return nil, verr
				}
				if err := inventory.VoidAdjustment(deps.DB, id, args.String("reason")); err != nil {
					return nil, domainErr(err)
				}
				return map[string]interface{}{"message": "Adjustment voided and stock restored."}, nil
			},
		},
		{
			Definition{
				Name:        "start_inventory_count",
				Description: "Open a physical count session for a location.",
				Parameters: Object{
					Type: "object",
					Properties: map[string]Property{
						"location": {Type: "string"},
						"name":     {Type: "string", Description: "Optional session name"},
					},
					Required: []string{"location"},
				},
			},
			func(inv Invocation, args Args) (interface{}, error) {
				location, verr := requiredString("start_inventory_count", args, "location")
				if verr != nil {
					return nil, verr
				}
				session, err := inventory.StartCount(deps.DB, location, args.String("name"))
				if err != nil {
					return nil, err
				}
				return map[string]interface{}{
					"message":          fmt.Sprintf("Count started for %s.", location),
					"count_session_id": session.ID,
				}, nil
			},
		},
		{
			Definition{
				Name:        "update_inventory_count",
				Description: "Record the counted quantity of one drink within an open count.",
				Parameters: Object{
					Type: "object",
					Properties: map[string]Property{
						"count_session_id": {Type: "string"},
						"drink_name":       {Type: "string"},
						"quantity":         {Type: "number"},
					},
					Required: []string{"count_session_id", "drink_name", "quantity"},
				},
			},
			func(inv Invocation, args Args) (interface{}, error) {
				sessionID, verr := requiredString("update_inventory_count", args, "count_session_id")
				if verr != nil {
					return nil, verr
				}
				name, verr := requiredString("update_inventory_count", args, "drink_name")
				if verr != nil {
					return nil, verr
				}
				p, err := catalog.Resolve(deps.DB, name)
				if err != nil {
					return nil, domainErr(err)
				}
				if err := inventory.UpdateCount(deps.DB, sessionID, p.ID, args.Float("quantity", 0)); err != nil {
					return nil, domainErr(err)
				}
				return map[string]interface{}{
					"message": fmt.Sprintf("Counted %g of %s.", args.Float("quantity", 0), p.Name),
				}, nil
			},
		},
		{
			Definition{
				Name:        "close_inventory_count",
				Description: "Close a count session and apply the counted quantities as the new stock levels.",
				Parameters: Object{
					Type: "object",
					Properties: map[string]Property{
						"count_session_id": {Type: "string"},
					},
					Required: []string{"count_session_id"},
				},
			},
			func(inv Invocation, args Args) (interface{}, error) {
				sessionID, verr := requiredString("close_inventory_count", args, "count_session_id")
				if verr != nil {
					return nil, verr
				}
				updated, err := inventory.CloseCount(deps.DB, sessionID)
				if err != nil {
					return nil, domainErr(err)
				}
				return map[string]interface{}{
					"message": fmt.Sprintf("Count closed, %d drink(s) updated.", updated),
				}, nil
			},
		},
		{
			Definition{
				Name:        "create_event_allocation",
				Description: "Reserve stock for a booked event. Stock is not decremented until consumption is recorded.",
				Parameters: Object{
					Type: "object",
					Properties: map[string]Property{
						"event_id":   {Type: "string"},
						"drink_name": {Type: "string"},
						"quantity":   {Type: "number"},
					},
					Required: []string{"event_id", "drink_name", "quantity"},
				},
			},
			func(inv Invocation, args Args) (interface{}, error) {
				eventID, verr := requiredString("create_event_allocation", args, "event_id")
				if verr != nil {
					return nil, verr
				}
				name, verr := requiredString("create_event_allocation", args, "drink_name")
				if verr != nil {
					return nil, verr
				}
				p, err := catalog.Resolve(deps.DB, name)
				if err != nil {
					return nil, domainErr(err)
				}
				alloc, err := inventory.CreateAllocation(deps.DB, eventID, p.ID, args.Float("quantity", 0))
				if err != nil {
					return nil, err
				}
				return map[string]interface{}{
					"message":       fmt.Sprintf("Allocated %g of %s to event %s.", alloc.AllocatedQty, p.Name, eventID),
					"allocation_id": alloc.ID,
				}, nil
			},
		},
		{
			Definition{
				Name:        "update_event_consumption",
				Description: "Record how much of an allocated drink an event actually used. Corrections replace the prior figure.",
				Parameters: Object{
					Type: "object",
					Properties: map[string]Property{
						"event_id":      {Type: "string"},
						"drink_name":    {Type: "string"},
						"quantity_used": {Type: "number"},
					},
					Required: []string{"event_id", "drink_name", "quantity_used"},
				},
			},
			func(inv Invocation, args Args) (interface{}, error) {
				eventID, verr := requiredString("update_event_consumption", args, "event_id")
				if verr != nil {
					return nil, verr
				}
				name, verr := requiredString("update_event_consumption", args, "drink_name")
				if verr != nil {
					return nil, verr
				}
				p, err := catalog.Resolve(deps.DB, name)
				if err != nil {
					return nil, domainErr(err)
				}
				if err := inventory.UpdateConsumption(deps.DB, eventID, p.ID, args.Float("quantity_used", 0)); err != nil {
					return nil, domainErr(err)
				}
				return map[string]interface{}{
					"message": fmt.Sprintf("Recorded %g of %s used at event %s.", args.Float("quantity_used", 0), p.Name, eventID),
				}, nil
			},
		},
		{
			Definition{
				Name:        "close_event_inventory",
				Description: "Lock an event's allocations against further consumption updates.",
				Parameters: Object{
					Type: "object",
					Properties: map[string]Property{
						"event_id": {Type: "string"},
					},
					Required: []string{"event_id"},
				},
			},
			func(inv Invocation, args Args) (interface{}, error) {
				eventID, verr := requiredString("close_event_inventory", args, "event_id")
				if verr != nil {
					return nil, verr
				}
				closed, err := inventory.CloseEvent(deps.DB, eventID)
				if err != nil {
					return nil, err
				}
				return map[string]interface{}{
					"message": fmt.Sprintf("Event closed, %d allocation(s) locked.", closed),
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
