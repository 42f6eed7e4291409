package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/taproom/taproom/internal/catalog"
	"github.com/taproom/taproom/internal/db"
	"github.com/taproom/taproom/internal/models"
	"gorm.io/gorm"
)

// seedProduct is one row of the starter catalog.
type seedProduct struct {
	name        string
	category    string
	subcategory string
	priceCents  int
	inventory   float64
	unitType    string
	volumeOz    float64 // 0 means no configured unit volume
}

// starterCatalog is a working bar menu: every recipe ingredient has a
// matching product so sales decrement real stock from day one.
var starterCatalog = []seedProduct{
	// Spirits, 750 ml bottles.
	{"Tito's Vodka", "Spirits", "Vodka", 1200, 6, "bottle", 25.36},
	{"G.Goose Vodka", "Spirits", "Vodka", 1400, 4, "bottle", 25.36},
	{"Makers Mark", "Spirits", "Whiskey", 1300, 5, "bottle", 25.36},
	{"Jameson Whiskey", "Spirits", "Whiskey", 1200, 5, "bottle", 25.36},
	{"JD's Whiskey", "Spirits", "Whiskey", 1100, 6, "bottle", 25.36},
	{"Crown Royal", "Spirits", "Whiskey", 1300, 4, "bottle", 25.36},
	{"Hendricks Gin", "Spirits", "Gin", 1400, 4, "bottle", 25.36},
	{"Captain Morgan", "Spirits", "Rum", 1000, 6, "bottle", 25.36},
	{"Cruzan Light", "Spirits", "Rum", 900, 5, "bottle", 25.36},
	{"1800 Silver", "Spirits", "Tequila", 1100, 5, "bottle", 25.36},
	{"Patron Silver", "Spirits", "Tequila", 1500, 3, "bottle", 25.36},
	{"Don Julio", "Spirits", "Tequila", 1600, 3, "bottle", 25.36},

	// Wines by the bottle, poured by the glass.
	{"Canyon Rd Cab", "Wine", "Red", 900, 8, "bottle", 25.36},
	{"Daou Cab", "Wine", "Red", 1400, 6, "bottle", 25.36},
	{"Josh Wine", "Wine", "Red", 1100, 8, "bottle", 25.36},
	{"Moscato", "Wine", "White", 900, 6, "bottle", 25.36},
	{"Pinot G", "Wine", "White", 1000, 6, "bottle", 25.36},
	{"Sav Blanc", "Wine", "White", 1000, 6, "bottle", 25.36},
	{"March Prosecco", "Wine", "Sparkling", 1100, 6, "bottle", 25.36},

	// Beer and seltzer by the unit.
	{"Bud Light", "Beer", "Domestic", 550, 48, "bottle", 0},
	{"Coors Light", "Beer", "Domestic", 550, 48, "bottle", 0},
	{"Miller Lite", "Beer", "Domestic", 550, 36, "bottle", 0},
	{"Michelob Ultra", "Beer", "Domestic", 600, 36, "bottle", 0},
	{"Shiner Bock", "Beer", "Craft", 650, 24, "bottle", 0},
	{"Dos XX", "Beer", "Import", 650, 24, "bottle", 0},
	{"Heineken", "Beer", "Import", 650, 24, "bottle", 0},
	{"Stella Artois", "Beer", "Import", 700, 24, "bottle", 0},
	{"Corona Extra", "Beer", "Import", 650, 36, "bottle", 0},
	{"Truly's Seltzer", "Seltzer", "", 600, 24, "can", 0},
	{"White Claw", "Seltzer", "", 600, 24, "can", 0},

	// Cocktails: menu entries only; their liquor is decremented by recipe.
	{"Old Fashioned", "Cocktails", "Classics", 1200, 999, "pour", 0},
	{"Margarita", "Cocktails", "Classics", 1100, 999, "pour", 0},
	{"Moscow Mule", "Cocktails", "Classics", 1100, 999, "pour", 0},
	{"Mojito", "Cocktails", "Classics", 1100, 999, "pour", 0},
	{"Espresso Martini", "Cocktails", "Classics", 1300, 999, "pour", 0},
	{"Pineapple Smash", "Cocktails", "Signature", 1200, 999, "pour", 0},
	{"Cucumber Cooler", "Cocktails", "Signature", 1200, 999, "pour", 0},
	{"Lavender Vodka", "Cocktails", "Signature", 1200, 999, "pour", 0},
}

func newSeedCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load the starter drink catalog",
		Long:  "Migrates the store and inserts the starter menu. Existing products are left alone.",
		RunE: func(cmd *cobra.Command, args []string) error {
			gdb, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}
			if err := db.AutoMigrate(gdb); err != nil {
				return err
			}
			return runSeed(cmd, gdb)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "taproom.yaml", "path to config file")
	return cmd
}

func runSeed(cmd *cobra.Command, gdb *gorm.DB) error {
	out := cmd.OutOrStdout()

	seeded := 0
	for _, sp := range starterCatalog {
		var count int64
		if err := gdb.Model(&models.Product{}).Where("name = ?", sp.name).Count(&count).Error; err != nil {
			return fmt.Errorf("seed: check %q: %w", sp.name, err)
		}
		if count > 0 {
			continue
		}

		p, err := catalog.Create(gdb, catalog.CreateParams{
			Name:        sp.name,
			Category:    sp.category,
			Subcategory: sp.subcategory,
			UnitType:    sp.unitType,
			PriceCents:  sp.priceCents,
			Inventory:   sp.inventory,
		})
		if err != nil {
			return err
		}
		if sp.volumeOz > 0 {
			vol := sp.volumeOz
			if err := gdb.Model(p).Update("unit_volume_oz", &vol).Error; err != nil {
				return fmt.Errorf("seed: set volume for %q: %w", sp.name, err)
			}
		}
		seeded++
	}

	fmt.Fprintf(out, "Seeded %d product(s), %d already present\n", seeded, len(starterCatalog)-seeded)
	return nil
}
