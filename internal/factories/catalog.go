package factories

import (
	"math/rand"

	"github.com/chrisdamba/backoffice/internal/models"
	"github.com/jaswdr/faker"
	"github.com/lucsky/cuid"
	"github.com/shopspring/decimal"
)

var fake = faker.New()

type stockItem struct {
	name string
	unit string
}

var pantry = map[models.BusinessUnit][]stockItem{
	models.BusinessUnitRestaurant: {
		{"Flour", "kg"}, {"Tomato", "kg"}, {"Mozzarella", "kg"}, {"Olive Oil", "l"}, {"Chicken", "kg"},
		{"Pasta", "kg"}, {"Lettuce", "kg"}, {"Onion", "kg"}, {"Harissa", "kg"}, {"Tuna", "kg"},
	},
	models.BusinessUnitCoffee: {
		{"Coffee Beans", "kg"}, {"Milk", "l"}, {"Sugar", "kg"}, {"Chocolate", "kg"},
		{"Green Tea", "kg"}, {"Mint", "bunch"}, {"Cream", "l"}, {"Butter", "kg"},
	},
}

var dishes = map[models.BusinessUnit][]string{
	models.BusinessUnitRestaurant: {
		"Margherita", "Tuna Pizza", "Pasta Carbonara", "Spaghetti Arrabbiata",
		"Grilled Chicken", "Caesar Salad", "Lasagna", "Ojja",
	},
	models.BusinessUnitCoffee: {
		"Espresso", "Cappuccino", "Latte", "Hot Chocolate", "Mint Tea", "Frappe", "Cafe Creme",
	},
}

// IngredientSeed is an ingredient to create together with its opening restock.
type IngredientSeed struct {
	Input       models.IngredientInput
	Quantity    decimal.Decimal
	AmountTotal decimal.Decimal
}

// RecipeSeed points at an ingredient by its position in Catalog.Ingredients,
// since ingredient ids only exist once they are created.
type RecipeSeed struct {
	MenuItemID      string
	IngredientIndex int
	Quantity        decimal.Decimal
}

type Catalog struct {
	BusinessUnit models.BusinessUnit
	Ingredients  []IngredientSeed
	MenuItems    []*models.MenuItem
	Recipes      []RecipeSeed
	Deals        []*models.Deal
}

type CatalogFactory struct{}

func (cf *CatalogFactory) CreateIngredient(bu models.BusinessUnit, item stockItem) IngredientSeed {
	qty := decimal.NewFromFloat(fake.Float64(1, 5, 60))
	price := decimal.NewFromFloat(fake.Float64(3, 1, 40))
	return IngredientSeed{
		Input: models.IngredientInput{
			Name:          item.name,
			Unit:          item.unit,
			MinQuantity:   decimal.NewFromInt(int64(fake.IntBetween(2, 8))),
			SupplierPhone: fake.Phone().Number(),
			BusinessUnit:  bu,
		},
		Quantity:    qty,
		AmountTotal: qty.Mul(price).Round(3),
	}
}

func (cf *CatalogFactory) CreateMenuItem(bu models.BusinessUnit, name string) *models.MenuItem {
	return &models.MenuItem{
		ID:           cuid.New(),
		Name:         name,
		Description:  fake.Lorem().Sentence(8),
		Price:        decimal.NewFromFloat(fake.Float64(1, 3, 35)),
		Available:    true,
		BusinessUnit: bu,
	}
}

// CreateRecipe picks two to four distinct ingredients for a menu item.
func (cf *CatalogFactory) CreateRecipe(item *models.MenuItem, ingredientCount int) []RecipeSeed {
	n := rand.Intn(3) + 2
	if n > ingredientCount {
		n = ingredientCount
	}
	lines := make([]RecipeSeed, 0, n)
	for _, idx := range rand.Perm(ingredientCount)[:n] {
		lines = append(lines, RecipeSeed{
			MenuItemID:      item.ID,
			IngredientIndex: idx,
			Quantity:        decimal.NewFromFloat(fake.Float64(2, 5, 40)).Div(decimal.NewFromInt(100)),
		})
	}
	return lines
}

// CreateDeal bundles two menu items at a discount on their combined price.
func (cf *CatalogFactory) CreateDeal(bu models.BusinessUnit, first, second *models.MenuItem) *models.Deal {
	id := cuid.New()
	full := first.Price.Add(second.Price)
	return &models.Deal{
		ID:           id,
		Name:         first.Name + " & " + second.Name,
		Description:  fake.Lorem().Sentence(6),
		Price:        full.Mul(decimal.NewFromFloat(0.85)).Round(1),
		Active:       true,
		BusinessUnit: bu,
		Items: []models.DealItem{
			{DealID: id, MenuItemID: first.ID, Quantity: 1},
			{DealID: id, MenuItemID: second.ID, Quantity: 1},
		},
	}
}

// CreateCatalog builds a complete demo catalog for one business unit with up
// to menuItems dishes and one deal per pair of consecutive dishes.
func (cf *CatalogFactory) CreateCatalog(bu models.BusinessUnit, menuItems int) *Catalog {
	catalog := &Catalog{BusinessUnit: bu}
	for _, item := range pantry[bu] {
		catalog.Ingredients = append(catalog.Ingredients, cf.CreateIngredient(bu, item))
	}

	names := dishes[bu]
	if menuItems <= 0 || menuItems > len(names) {
		menuItems = len(names)
	}
	for _, name := range names[:menuItems] {
		item := cf.CreateMenuItem(bu, name)
		catalog.MenuItems = append(catalog.MenuItems, item)
		catalog.Recipes = append(catalog.Recipes, cf.CreateRecipe(item, len(catalog.Ingredients))...)
	}
	for i := 0; i+1 < len(catalog.MenuItems); i += 2 {
		catalog.Deals = append(catalog.Deals, cf.CreateDeal(bu, catalog.MenuItems[i], catalog.MenuItems[i+1]))
	}
	return catalog
}
