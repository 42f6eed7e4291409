// Package inventory translates sales, adjustments, recounts, and event
// consumption into stock decrements and an append-only movement ledger.
package inventory

// Ingredient units.
const (
	// UnitAbsolute decrements whole container units (cans, bottles).
	UnitAbsolute = "unit"
	// UnitFluidOunce decrements fractional containers by poured volume.
	UnitFluidOunce = "oz"
)

// Standard container volumes in fluid ounces.
const (
	BottleOz    = 25.36 // 750 ml
	LiterOz     = 33.81
	MagnumOz    = 50.72 // 1.5 l
	ShotOz      = 1.5
	WineGlassOz = 6
	CanOz       = 12
	PintOz      = 16
)

// Ingredient is one catalog entry consumed by a recipe.
type Ingredient struct {
	// Name matches a product's exact catalog name.
	Name     string
	Quantity float64
	Unit     string
}

// Recipe decomposes a sellable name into the catalog entries it consumes.
type Recipe struct {
	Ingredients []Ingredient
}

// StandardRecipes maps sellable names to their ingredient decomposition.
// Cocktails decrement their liquor, spirits decrement a standard pour, wines
// a glass, beers a whole unit.
var StandardRecipes = map[string]Recipe{
	// Signature cocktails.
	"Pineapple Smash":  {Ingredients: []Ingredient{{Name: "Captain Morgan", Quantity: 2, Unit: UnitFluidOunce}}},
	"Cucumber Cooler":  {Ingredients: []Ingredient{{Name: "Hendricks Gin", Quantity: 2, Unit: UnitFluidOunce}}},
	"Lavender Vodka":   {Ingredients: []Ingredient{{Name: "Tito's Vodka", Quantity: 2, Unit: UnitFluidOunce}}},

	// Classics.
	"Old Fashioned":    {Ingredients: []Ingredient{{Name: "Makers Mark", Quantity: 2, Unit: UnitFluidOunce}}},
	"Moscow Mule":      {Ingredients: []Ingredient{{Name: "Tito's Vodka", Quantity: 1.5, Unit: UnitFluidOunce}}},
	"Espresso Martini": {Ingredients: []Ingredient{{Name: "Tito's Vodka", Quantity: 1.5, Unit: UnitFluidOunce}}},
	"Margarita":        {Ingredients: []Ingredient{{Name: "1800 Silver", Quantity: 2, Unit: UnitFluidOunce}}},
	"Mojito":           {Ingredients: []Ingredient{{Name: "Cruzan Light", Quantity: 2, Unit: UnitFluidOunce}}},

	// Spirits sold neat/rocks decrement a standard pour of themselves.
	"Tito's Vodka":    {Ingredients: []Ingredient{{Name: "Tito's Vodka", Quantity: ShotOz, Unit: UnitFluidOunce}}},
	"Makers Mark":     {Ingredients: []Ingredient{{Name: "Makers Mark", Quantity: ShotOz, Unit: UnitFluidOunce}}},
	"Hendricks Gin":   {Ingredients: []Ingredient{{Name: "Hendricks Gin", Quantity: ShotOz, Unit: UnitFluidOunce}}},
	"Captain Morgan":  {Ingredients: []Ingredient{{Name: "Captain Morgan", Quantity: ShotOz, Unit: UnitFluidOunce}}},
	"1800 Silver":     {Ingredients: []Ingredient{{Name: "1800 Silver", Quantity: ShotOz, Unit: UnitFluidOunce}}},
	"Jameson Whiskey": {Ingredients: []Ingredient{{Name: "Jameson Whiskey", Quantity: ShotOz, Unit: UnitFluidOunce}}},
	"Jack Daniels":    {Ingredients: []Ingredient{{Name: "JD's Whiskey", Quantity: ShotOz, Unit: UnitFluidOunce}}},
	"Crown Royal":     {Ingredients: []Ingredient{{Name: "Crown Royal", Quantity: ShotOz, Unit: UnitFluidOunce}}},
	"Patron Silver":   {Ingredients: []Ingredient{{Name: "Patron Silver", Quantity: ShotOz, Unit: UnitFluidOunce}}},
	"Don Julio":       {Ingredients: []Ingredient{{Name: "Don Julio", Quantity: ShotOz, Unit: UnitFluidOunce}}},
	"Grey Goose":      {Ingredients: []Ingredient{{Name: "G.Goose Vodka", Quantity: ShotOz, Unit: UnitFluidOunce}}},

	// Wines by the glass.
	"Canyon Rd Cab":  {Ingredients: []Ingredient{{Name: "Canyon Rd Cab", Quantity: WineGlassOz, Unit: UnitFluidOunce}}},
	"Daou Cab":       {Ingredients: []Ingredient{{Name: "Daou Cab", Quantity: WineGlassOz, Unit: UnitFluidOunce}}},
	"Josh Wine":      {Ingredients: []Ingredient{{Name: "Josh Wine", Quantity: WineGlassOz, Unit: UnitFluidOunce}}},
	"Moscato":        {Ingredients: []Ingredient{{Name: "Moscato", Quantity: WineGlassOz, Unit: UnitFluidOunce}}},
	"Pinot G":        {Ingredients: []Ingredient{{Name: "Pinot G", Quantity: WineGlassOz, Unit: UnitFluidOunce}}},
	"Sav Blanc":      {Ingredients: []Ingredient{{Name: "Sav Blanc", Quantity: WineGlassOz, Unit: UnitFluidOunce}}},
	"March Prosecco": {Ingredients: []Ingredient{{Name: "March Prosecco", Quantity: WineGlassOz, Unit: UnitFluidOunce}}},

	// Beers and seltzers by the unit.
	"Bud Light":       {Ingredients: []Ingredient{{Name: "Bud Light", Quantity: 1, Unit: UnitAbsolute}}},
	"Coors Light":     {Ingredients: []Ingredient{{Name: "Coors Light", Quantity: 1, Unit: UnitAbsolute}}},
	"Michelob Ultra":  {Ingredients: []Ingredient{{Name: "Michelob Ultra", Quantity: 1, Unit: UnitAbsolute}}},
	"Miller Lite":     {Ingredients: []Ingredient{{Name: "Miller Lite", Quantity: 1, Unit: UnitAbsolute}}},
	"Dos XX":          {Ingredients: []Ingredient{{Name: "Dos XX", Quantity: 1, Unit: UnitAbsolute}}},
	"Heineken":        {Ingredients: []Ingredient{{Name: "Heineken", Quantity: 1, Unit: UnitAbsolute}}},
	"Shiner Bock":     {Ingredients: []Ingredient{{Name: "Shiner Bock", Quantity: 1, Unit: UnitAbsolute}}},
	"Stella Artois":   {Ingredients: []Ingredient{{Name: "Stella Artois", Quantity: 1, Unit: UnitAbsolute}}},
	"Corona Extra":    {Ingredients: []Ingredient{{Name: "Corona Extra", Quantity: 1, Unit: UnitAbsolute}}},
	"Truly's Seltzer": {Ingredients: []Ingredient{{Name: "Truly's Seltzer", Quantity: 1, Unit: UnitAbsolute}}},
	"White Claw":      {Ingredients: []Ingredient{{Name: "White Claw", Quantity: 1, Unit: UnitAbsolute}}},
}
