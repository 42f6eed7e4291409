package tools

import (
	"fmt"

	"github.com/taproom/taproom/internal/catalog"
	"github.com/taproom/taproom/internal/models"
)

// productView is a product in a command result.
type productView struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Category   string  `json:"category"`
	PriceCents int     `json:"price_cents"`
	Inventory  float64 `json:"inventory"`
	Active     bool    `json:"active"`
}

func productViewOf(p models.Product) productView {
	return productView{
		ID:         p.ID,
		Name:       p.Name,
		Category:   p.Category,
		PriceCents: p.PriceCents,
		Inventory:  p.Inventory,
		Active:     p.Active,
	}
}

func registerCatalog(r *Registry, deps Deps) error {
	defs := []struct {
		def Definition
		h   Handler
	}{
		{
			Definition{
				Name:        "search_drinks",
				Description: "Search the menu by name or description, optionally within a category.",
				Parameters: Object{
					Type: "object",
					Properties: map[string]Property{
						"query":    {Type: "string", Description: "Free text to match"},
						"category": {Type: "string", Description: "Optional category filter"},
					},
				},
			},
			func(inv Invocation, args Args) (interface{}, error) {
				matches, err := catalog.Search(deps.DB, args.String("query"), args.String("category"))
				if err != nil {
					return nil, err
				}
				views := make([]productView, len(matches))
				for i, m := range matches {
					views[i] = productViewOf(m.Product)
				}
				return map[string]interface{}{
					"message": fmt.Sprintf("%d drink(s) found.", len(views)),
					"drinks":  views,
				}, nil
			},
		},
		{
			Definition{
				Name:        "check_inventory",
				Description: "Report stock for one drink, or list everything running low when no drink is named.",
				Parameters: Object{
					Type: "object",
					Properties: map[string]Property{
						"drink_name": {Type: "string", Description: "Optional drink to check"},
					},
				},
			},
			func(inv Invocation, args Args) (interface{}, error) {
				if name := args.String("drink_name"); name != "" {
					p, err := catalog.Resolve(deps.DB, name)
					if err != nil {
						return nil, domainErr(err)
					}
					return map[string]interface{}{
						"message": fmt.Sprintf("%s: %.1f %s(s) in stock.", p.Name, p.Inventory, p.UnitType),
						"drink":   productViewOf(*p),
					}, nil
				}

				low, err := catalog.LowStock(deps.DB, deps.LowStockThreshold)
				if err != nil {
					return nil, err
				}
				views := make([]productView, len(low))
				for i, p := range low {
					views[i] = productViewOf(p)
				}
				return map[string]interface{}{
					"message": fmt.Sprintf("%d drink(s) below %.0f in stock.", len(views), deps.LowStockThreshold),
					"drinks":  views,
				}, nil
			},
		},
		{
			Definition{
				Name:        "create_product",
				Description: "Add a new drink to the catalog.",
				Parameters: Object{
					Type: "object",
					Properties: map[string]Property{
						"name":        {Type: "string"},
						"category":    {Type: "string"},
						"subcategory": {Type: "string"},
						"description": {Type: "string"},
						"unit_type":   {Type: "string", Enum: []string{"bottle", "can", "keg", "case"}},
						"price_cents": {Type: "integer"},
						"inventory":   {Type: "number"},
					},
					Required: []string{"name", "price_cents"},
				},
			},
			func(inv Invocation, args Args) (interface{}, error) {
				name, verr := requiredString("create_product", args, "name")
				if verr != nil {
					return nil, verr
				}
				if args.Int("price_cents", 0) < 0 {
					return nil, Validationf("create_product: price_cents must not be negative")
				}
				p, err := catalog.Create(deps.DB, catalog.CreateParams{
					Name:        name,
					Category:    args.String("category"),
					Subcategory: args.String("subcategory"),
					Description: args.String("description"),
					UnitType:    args.String("unit_type"),
					PriceCents:  args.Int("price_cents", 0),
					Inventory:   args.Float("inventory", 0),
				})
				if err != nil {
					return nil, err
				}
				return map[string]interface{}{
					"message": fmt.Sprintf("Added %s to the catalog.", p.Name),
					"drink":   productViewOf(*p),
				}, nil
			},
		},
		{
			Definition{
				Name:        "read_product",
				Description: "Look up one drink's full catalog entry by name.",
				Parameters: Object{
					Type: "object",
					Properties: map[string]Property{
						"name": {Type: "string"},
					},
					Required: []string{"name"},
				},
			},
			func(inv Invocation, args Args) (interface{}, error) {
				name, verr := requiredString("read_product", args, "name")
				if verr != nil {
					return nil, verr
				}
				p, err := catalog.Resolve(deps.DB, name)
				if err != nil {
					return nil, domainErr(err)
				}
				return map[string]interface{}{"drink": productViewOf(*p)}, nil
			},
		},
		{
			Definition{
				Name:        "update_product",
				Description: "Change a drink's name, category, price, or stock level.",
				Parameters: Object{
					Type: "object",
					Properties: map[string]Property{
						"product_id":  {Type: "string"},
						"name":        {Type: "string"},
						"category":    {Type: "string"},
						"price_cents": {Type: "integer"},
						"inventory":   {Type: "number"},
					},
					Required: []string{"product_id"},
				},
			},
			func(inv Invocation, args Args) (interface{}, error) {
				id, verr := requiredString("update_product", args, "product_id")
				if verr != nil {
					return nil, verr
				}
				var params catalog.UpdateParams
				if _, ok := args["name"]; ok {
					s := args.String("name")
					params.Name = &s
				}
				if _, ok := args["category"]; ok {
					s := args.String("category")
					params.Category = &s
				}
				if _, ok := args["price_cents"]; ok {
					n := args.Int("price_cents", 0)
					params.PriceCents = &n
				}
				if _, ok := args["inventory"]; ok {
					f := args.Float("inventory", 0)
					params.Inventory = &f
				}
				if err := catalog.Update(deps.DB, id, params); err != nil {
					return nil, domainErr(err)
				}
				return map[string]interface{}{"message": "Drink updated."}, nil
			},
		},
		{
			Definition{
				Name:        "archive_product",
				Description: "Retire a drink from the menu. Its sales history is kept.",
				Parameters: Object{
					Type: "object",
					Properties: map[string]Property{
						"product_id": {Type: "string"},
					},
					Required: []string{"product_id"},
				},
			},
			func(inv Invocation, args Args) (interface{}, error) {
				id, verr := requiredString("archive_product", args, "product_id")
				if verr != nil {
					return nil, verr
				}
				if err := catalog.Archive(deps.DB, id); err != nil {
					return nil, domainErr(err)
				}
				return map[string]interface{}{"message": "Drink archived."}, nil
			},
		},
		{
			Definition{
				Name:        "create_category",
				Description: "Add a menu category.",
				Parameters: Object{
					Type: "object",
					Properties: map[string]Property{
						"name":      {Type: "string"},
						"parent_id": {Type: "string", Description: "Optional parent category id"},
					},
					Required: []string{"name"},
				},
			},
			func(inv Invocation, args Args) (interface{}, error) {
				name, verr := requiredString("create_category", args, "name")
				if verr != nil {
					return nil, verr
				}
				c, err := catalog.CreateCategory(deps.DB, name, args.String("parent_id"))
				if err != nil {
					return nil, err
				}
				return map[string]interface{}{
					"message":     fmt.Sprintf("Category %s created.", c.Name),
					"category_id": c.ID,
				}, nil
			},
		},
		{
			Definition{
				Name:        "update_category",
				Description: "Rename or re-parent a menu category.",
				Parameters: Object{
					Type: "object",
					Properties: map[string]Property{
						"category_id": {Type: "string"},
						"name":        {Type: "string"},
						"parent_id":   {Type: "string"},
					},
					Required: []string{"category_id"},
				},
			},
			func(inv Invocation, args Args) (interface{}, error) {
				id, verr := requiredString("update_category", args, "category_id")
				if verr != nil {
					return nil, verr
				}
				var name, parent *string
				if _, ok := args["name"]; ok {
					s := args.String("name")
					name = &s
				}
				if _, ok := args["parent_id"]; ok {
					s := args.String("parent_id")
					parent = &s
				}
				if err := catalog.UpdateCategory(deps.DB, id, name, parent); err != nil {
					return nil, domainErr(err)
				}
				return map[string]interface{}{"message": "Category updated."}, nil
			},
		},
		{
			Definition{
				Name:        "delete_category",
				Description: "Remove a menu category. Drinks in it are not deleted.",
				Parameters: Object{
					Type: "object",
					Properties: map[string]Property{
						"category_id": {Type: "string"},
					},
					Required: []string{"category_id"},
				},
			},
			func(inv Invocation, args Args) (interface{}, error) {
				id, verr := requiredString("delete_category", args, "category_id")
				if verr != nil {
					return nil, verr
				}
				if err := catalog.DeleteCategory(deps.DB, id); err != nil {
					return nil, domainErr(err)
				}
				return map[string]interface{}{"message": "Category removed."}, nil
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
