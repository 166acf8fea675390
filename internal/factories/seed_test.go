package factories

import (
	"context"
	"testing"

	"github.com/chrisdamba/backoffice/internal/inventory"
	"github.com/chrisdamba/backoffice/internal/models"
	"github.com/chrisdamba/backoffice/internal/repositories"
	"github.com/chrisdamba/backoffice/internal/repositories/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestCreateCatalog(t *testing.T) {
	cf := &CatalogFactory{}
	catalog := cf.CreateCatalog(models.BusinessUnitCoffee, 4)

	assert.Len(t, catalog.Ingredients, len(pantry[models.BusinessUnitCoffee]))
	assert.Len(t, catalog.MenuItems, 4)
	assert.Len(t, catalog.Deals, 2)
	for _, seed := range catalog.Ingredients {
		assert.True(t, seed.Quantity.IsPositive())
		assert.False(t, seed.AmountTotal.IsNegative())
		assert.Equal(t, models.BusinessUnitCoffee, seed.Input.BusinessUnit)
	}

	perItem := map[string]map[int]bool{}
	for _, r := range catalog.Recipes {
		assert.True(t, r.Quantity.IsPositive())
		assert.Less(t, r.IngredientIndex, len(catalog.Ingredients))
		if perItem[r.MenuItemID] == nil {
			perItem[r.MenuItemID] = map[int]bool{}
		}
		assert.False(t, perItem[r.MenuItemID][r.IngredientIndex], "ingredient repeated in one recipe")
		perItem[r.MenuItemID][r.IngredientIndex] = true
	}
	assert.Len(t, perItem, 4)

	all := cf.CreateCatalog(models.BusinessUnitRestaurant, 0)
	assert.Len(t, all.MenuItems, len(dishes[models.BusinessUnitRestaurant]))
}

func TestSeedIsLedgerBacked(t *testing.T) {
	ctx := context.Background()
	logger := zaptest.NewLogger(t)
	store := memory.NewStore()
	inv := inventory.NewService(store, logger)
	seeder := NewSeeder(store, inv, logger)
	catalog := (&CatalogFactory{}).CreateCatalog(models.BusinessUnitRestaurant, 3)

	ticks := 0
	summary, err := seeder.Seed(ctx, catalog, func() { ticks++ })
	require.NoError(t, err)
	assert.Equal(t, Steps(catalog), ticks)
	assert.Equal(t, len(catalog.Ingredients), summary.IngredientsCreated)
	assert.Equal(t, 3, summary.MenuItems)
	assert.Equal(t, 1, summary.Deals)

	drifts, err := inv.VerifyLedger(ctx, models.BusinessUnitRestaurant)
	require.NoError(t, err)
	assert.Empty(t, drifts)

	require.NotEmpty(t, summary.OpeningInvoiceID)
	spent := decimal.Zero
	for _, seed := range catalog.Ingredients {
		spent = spent.Add(seed.AmountTotal)
	}
	movements, err := inv.ListMovements(ctx, models.BusinessUnitRestaurant, 100)
	require.NoError(t, err)
	for _, m := range movements {
		if m.MovementType == models.MovementRestock {
			assert.Equal(t, summary.OpeningInvoiceID, m.InvoiceID)
		}
	}
	err = store.WithTx(ctx, func(ctx context.Context, tx repositories.Tx) error {
		invoice, err := tx.Invoices().Get(ctx, summary.OpeningInvoiceID)
		require.NoError(t, err)
		assert.True(t, invoice.Amount.Equal(spent), "invoice %s, spent %s", invoice.Amount, spent)
		return nil
	})
	require.NoError(t, err)

	ids := make([]string, 0, len(catalog.MenuItems))
	for _, item := range catalog.MenuItems {
		ids = append(ids, item.ID)
	}
	err = store.WithTx(ctx, func(ctx context.Context, tx repositories.Tx) error {
		recipes, err := tx.Catalog().RecipesFor(ctx, ids)
		if err != nil {
			return err
		}
		total := 0
		for _, lines := range recipes {
			total += len(lines)
		}
		assert.Equal(t, len(catalog.Recipes), total)
		return nil
	})
	require.NoError(t, err)

	again, err := seeder.Seed(ctx, (&CatalogFactory{}).CreateCatalog(models.BusinessUnitRestaurant, 2), nil)
	require.NoError(t, err)
	assert.Zero(t, again.IngredientsCreated)
	assert.Equal(t, len(catalog.Ingredients), again.IngredientsReused)
	assert.Empty(t, again.OpeningInvoiceID, "nothing new to pay for")
}
