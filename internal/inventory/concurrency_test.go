package inventory

import (
	"context"
	"sync"
	"testing"

	"github.com/chrisdamba/backoffice/internal/models"
	"github.com/chrisdamba/backoffice/internal/repositories/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// The service clock is left at time.Now here; the stepping clock used by
// newTestService is not safe for concurrent callers.
func newConcurrentService(t *testing.T) *Service {
	t.Helper()
	return NewService(memory.NewStore(), zaptest.NewLogger(t))
}

func TestConcurrentRestocksKeepEveryUpdate(t *testing.T) {
	svc := newConcurrentService(t)
	ctx := context.Background()
	ing := createFlour(t, svc)

	const workers = 50
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := svc.Restock(ctx, ing.ID, d("1"), d("2"), "")
			assert.NoError(t, err)
		}()
	}
	close(start)
	wg.Wait()

	got, err := svc.GetIngredient(ctx, ing.ID)
	require.NoError(t, err)
	assert.True(t, got.Quantity.Equal(d("50")), "quantity %s", got.Quantity)
	assert.True(t, got.PricePerUnit.Equal(d("2")), "price %s", got.PricePerUnit)
	assert.True(t, got.TotalValue.Equal(d("100")))

	history, err := svc.ListIngredientMovements(ctx, ing.ID)
	require.NoError(t, err)
	assert.Len(t, history, workers+1)
	for i := 1; i < len(history); i++ {
		assert.Less(t, history[i-1].Seq, history[i].Seq)
	}

	drifts, err := svc.VerifyLedger(ctx, models.BusinessUnitRestaurant)
	require.NoError(t, err)
	assert.Empty(t, drifts)
}

func TestUndoRacesConsume(t *testing.T) {
	svc := newConcurrentService(t)
	ctx := context.Background()

	for round := 0; round < 20; round++ {
		ing, err := svc.CreateIngredient(ctx, models.IngredientInput{
			Name: "Cream " + string(rune('A'+round)), Unit: "l", BusinessUnit: models.BusinessUnitCoffee,
		})
		require.NoError(t, err)
		restock, err := svc.Restock(ctx, ing.ID, d("10"), d("50"), "")
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
				IngredientID: ing.ID, Type: models.MovementConsume, QtyDelta: d("-4"),
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
			assert.True(t, got.Quantity.Equal(d("6")), "round %d: %s", round, got.Quantity)
		}

		history, err := svc.ListIngredientMovements(ctx, ing.ID)
		require.NoError(t, err)
		assert.True(t, LiveQuantity(history).Equal(got.Quantity))
	}

	drifts, err := svc.VerifyLedger(ctx, models.BusinessUnitCoffee)
	require.NoError(t, err)
	assert.Empty(t, drifts)
}
