// Package catalog manages the product and category tables and resolves
// voice transcript fragments to catalog entries.
package catalog

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/taproom/taproom/internal/fuzzy"
	"github.com/taproom/taproom/internal/models"
	"gorm.io/gorm"
)

// ErrNotFound is returned when no product or category matches a lookup.
var ErrNotFound = errors.New("catalog: not found")

// Match is one ranked search result.
type Match struct {
	Product models.Product
	Score   float64
}

// Search ranks active products against a free-text query. Descriptions are
// scored as a weaker secondary signal. Results above the fuzzy threshold are
// returned best-first; ties keep catalog order. An empty query returns all
// active products unranked. A category narrows the candidate set first.
func Search(gdb *gorm.DB, query, category string) ([]Match, error) {
	q := gdb.Where("active = ?", true)
	if category != "" {
		q = q.Where("category = ?", category)
	}

	var products []models.Product
	if err := q.Order("created_at").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("catalog: search: %w", err)
	}

	if query == "" {
		matches := make([]Match, len(products))
		for i, p := range products {
			matches[i] = Match{Product: p}
		}
		return matches, nil
	}

	ranked := fuzzy.Rank(query, func(i int) float64 {
		return fuzzy.ScoreWithSecondary(query, products[i].Name, products[i].Description)
	}, len(products))

	matches := make([]Match, len(ranked))
	for i, m := range ranked {
		matches[i] = Match{Product: products[m.Index], Score: m.Score}
	}
	return matches, nil
}

// Resolve returns the best fuzzy match for a spoken product name, or
// ErrNotFound when nothing clears the threshold.
func Resolve(gdb *gorm.DB, query string) (*models.Product, error) {
	matches, err := Search(gdb, query, "")
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("%w: product %q", ErrNotFound, query)
	}
	return &matches[0].Product, nil
}

// ByExactName looks up an active product by its exact catalog name. Recipe
// ingredients are matched this way, not fuzzily.
func ByExactName(gdb *gorm.DB, name string) (*models.Product, error) {
	var p models.Product
	err := gdb.Where("name = ? AND active = ?", name, true).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: product %q", ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("catalog: by name %q: %w", name, err)
	}
	return &p, nil
}

// Get returns a product by id.
func Get(gdb *gorm.DB, id string) (*models.Product, error) {
	var p models.Product
	err := gdb.First(&p, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: product %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("catalog: get %s: %w", id, err)
	}
	return &p, nil
}

// CreateParams holds fields for a new product.
type CreateParams struct {
	Name        string
	Category    string
	Subcategory string
	Description string
	UnitType    string
	PriceCents  int
	Inventory   float64
}

// Create inserts a new product and returns it.
func Create(gdb *gorm.DB, params CreateParams) (*models.Product, error) {
	if params.Category == "" {
		params.Category = "Uncategorized"
	}
	if params.UnitType == "" {
		params.UnitType = "bottle"
	}
	p := models.Product{
		ID:          uuid.NewString(),
		Name:        params.Name,
		Category:    params.Category,
		Subcategory: params.Subcategory,
		Description: params.Description,
		UnitType:    params.UnitType,
		PriceCents:  params.PriceCents,
		Inventory:   params.Inventory,
		Active:      true,
	}
	if err := gdb.Create(&p).Error; err != nil {
		return nil, fmt.Errorf("catalog: create product %q: %w", params.Name, err)
	}
	return &p, nil
}

// UpdateParams holds optional product field updates; nil means unchanged.
type UpdateParams struct {
	Name       *string
	Category   *string
	PriceCents *int
	Inventory  *float64
	Active     *bool
}

// Update applies the non-nil fields to a product.
func Update(gdb *gorm.DB, id string, params UpdateParams) error {
	updates := map[string]interface{}{"updated_at": time.Now()}
	if params.Name != nil {
		updates["name"] = *params.Name
	}
	if params.Category != nil {
		updates["category"] = *params.Category
	}
	if params.PriceCents != nil {
		updates["price_cents"] = *params.PriceCents
	}
	if params.Inventory != nil {
		updates["inventory"] = *params.Inventory
	}
	if params.Active != nil {
		updates["active"] = *params.Active
	}

	res := gdb.Model(&models.Product{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("catalog: update %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: product %s", ErrNotFound, id)
	}
	return nil
}

// Archive soft-deletes a product, retaining its history.
func Archive(gdb *gorm.DB, id string) error {
	active := false
	return Update(gdb, id, UpdateParams{Active: &active})
}

// LowStock returns active products whose inventory is below threshold.
func LowStock(gdb *gorm.DB, threshold float64) ([]models.Product, error) {
	var products []models.Product
	err := gdb.Where("active = ? AND inventory < ?", true, threshold).
		Order("inventory").Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("catalog: low stock: %w", err)
	}
	return products, nil
}
