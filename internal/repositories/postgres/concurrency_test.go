package postgres

import (
	"context"
	"sync"
	"testing"

	"github.com/chrisdamba/backoffice/internal/inventory"
	"github.com/chrisdamba/backoffice/internal/models"
	"github.com/chrisdamba/backoffice/internal/orders"
	"github.com/chrisdamba/backoffice/internal/repositories"
	"github.com/lucsky/cuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// Serializable transactions fighting over one row abort with 40001, so these
// stores get enough retries for every worker to land eventually.
const contendedRetries = 50

func newContendedService(t *testing.T) (*inventory.Service, *Store) {
	t.Helper()
	store := NewStoreFromPool(newTestStore(t).pool, contendedRetries)
	return inventory.NewService(store, zaptest.NewLogger(t)), store
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestConcurrentRestocksAgainstPostgres(t *testing.T) {
	svc, _ := newContendedService(t)
	ctx := context.Background()
	ing, err := svc.CreateIngredient(ctx, models.IngredientInput{
		Name: "Semolina " + cuid.Slug(), Unit: "kg", BusinessUnit: models.BusinessUnitRestaurant,
	})
	require.NoError(t, err)

	const workers = 10
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := svc.Restock(ctx, ing.ID, dec("1"), dec("2"), "")
			assert.NoError(t, err)
		}()
	}
	close(start)
	wg.Wait()

	got, err := svc.GetIngredient(ctx, ing.ID)
	require.NoError(t, err)
	assert.True(t, got.Quantity.Equal(dec("10")), "quantity %s", got.Quantity)
	assert.True(t, got.PricePerUnit.Equal(dec("2")), "price %s", got.PricePerUnit)

	history, err := svc.ListIngredientMovements(ctx, ing.ID)
	require.NoError(t, err)
	assert.Len(t, history, workers+1)
	assert.True(t, inventory.ReplayQuantity(history).Equal(got.Quantity))
}

func TestUndoRacesConsumeAgainstPostgres(t *testing.T) {
	svc, _ := newContendedService(t)
	ctx := context.Background()

	for round := 0; round < 5; round++ {
		ing, err := svc.CreateIngredient(ctx, models.IngredientInput{
			Name: "Cream " + cuid.Slug(), Unit: "l", BusinessUnit: models.BusinessUnitCoffee,
		})
		require.NoError(t, err)
		restock, err := svc.Restock(ctx, ing.ID, dec("10"), dec("50"), "")
		require.NoError(t, err)

		var (
			wg         sync.WaitGroup
			undoErr    error
			consumeErr error
		)
		start := make(chan struct{})
		wg.Add(2)
		go func() {
			defer wg.Done()
			<-start
			_, undoErr = svc.UndoMovement(ctx, restock.MovementID)
		}()
		go func() {
			defer wg.Done()
			<-start
			_, consumeErr = svc.AppendMovement(ctx, models.MovementRequest{
				IngredientID: ing.ID, Type: models.MovementConsume, QtyDelta: dec("-4"),
			})
		}()
		close(start)
		wg.Wait()

		got, err := svc.GetIngredient(ctx, ing.ID)
		require.NoError(t, err)
		if undoErr == nil {
			assert.ErrorIs(t, consumeErr, models.ErrInvalidDelta, "round %d", round)
			assert.True(t, got.Quantity.IsZero(), "round %d: %s", round, got.Quantity)
		} else {
			assert.NoError(t, consumeErr, "round %d", round)
			assert.ErrorIs(t, undoErr, models.ErrSubsequentMovementsExist, "round %d", round)
			assert.True(t, got.Quantity.Equal(dec("6")), "round %d: %s", round, got.Quantity)
		}

		history, err := svc.ListIngredientMovements(ctx, ing.ID)
		require.NoError(t, err)
		assert.True(t, inventory.LiveQuantity(history).Equal(got.Quantity))
	}
}

func TestConcurrentApplyAgainstPostgres(t *testing.T) {
	svc, store := newContendedService(t)
	ctx := context.Background()
	bu := models.BusinessUnitRestaurant
	coordinator := orders.NewCoordinator(store, nil, orders.Options{ShopName: "La Storia di JOJO"}, zaptest.NewLogger(t))

	ing, err := svc.CreateIngredient(ctx, models.IngredientInput{
		Name: "Beans " + cuid.Slug(), Unit: "kg", BusinessUnit: bu,
	})
	require.NoError(t, err)
	_, err = svc.Restock(ctx, ing.ID, dec("20"), dec("40"), "")
	require.NoError(t, err)

	itemID := cuid.New()
	err = store.WithTx(ctx, func(ctx context.Context, tx repositories.Tx) error {
		if err := tx.Catalog().BulkCreateMenuItems(ctx, []*models.MenuItem{{
			ID: itemID, Name: "Espresso " + cuid.Slug(), Price: dec("4"), Available: true, BusinessUnit: bu,
		}}); err != nil {
			return err
		}
		return tx.Catalog().AddRecipeLine(ctx, models.RecipeLine{
			MenuItemID: itemID, IngredientID: ing.ID, Quantity: dec("0.5"), BusinessUnit: bu,
		})
	})
	require.NoError(t, err)

	order, err := coordinator.CreatePendingOrder(ctx, models.CreateOrderRequest{
		BusinessUnit: bu, TableNumber: "4",
		Items: []models.CartItem{{ItemType: models.ItemTypeMenu, ItemID: itemID, NameSnapshot: "Espresso", UnitPriceTND: dec("4"), Qty: 4}},
	})
	require.NoError(t, err)
	_, err = coordinator.FinalizeAfterWebhookSuccess(ctx, order.ID, "ref-"+cuid.Slug())
	require.NoError(t, err)

	const workers = 6
	results := make([]*models.ConsumptionResult, workers)
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			res, err := coordinator.ApplyOrderInventoryConsumption(ctx, order.ID)
			assert.NoError(t, err)
			results[i] = res
		}(i)
	}
	close(start)
	wg.Wait()

	applied := 0
	for _, res := range results {
		require.NotNil(t, res)
		if !res.AlreadyApplied {
			applied++
		}
	}
	assert.Equal(t, 1, applied)

	got, err := svc.GetIngredient(ctx, ing.ID)
	require.NoError(t, err)
	assert.True(t, got.Quantity.Equal(dec("18")), "quantity %s", got.Quantity)

	history, err := svc.ListIngredientMovements(ctx, ing.ID)
	require.NoError(t, err)
	consumes := 0
	for _, m := range history {
		if m.MovementType == models.MovementConsume {
			consumes++
		}
	}
	assert.Equal(t, 1, consumes)
}
