package postgres

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/chrisdamba/backoffice/internal/models"
	"github.com/chrisdamba/backoffice/internal/repositories"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lucsky/cuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"serialization failure", &pgconn.PgError{Code: "40001"}, true},
		{"deadlock", &pgconn.PgError{Code: "40P01"}, true},
		{"wrapped", errors.Join(errors.New("commit"), &pgconn.PgError{Code: "40001"}), true},
		{"unique violation", &pgconn.PgError{Code: "23505"}, false},
		{"plain", errors.New("boom"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isRetryableError(tt.err))
		})
	}
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, isUniqueViolation(nil))
}

// newTestStore connects to BACKOFFICE_TEST_DATABASE_URL; the schema must
// already be applied with `backoffice migrate`.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	url := os.Getenv("BACKOFFICE_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("BACKOFFICE_TEST_DATABASE_URL not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, url)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return NewStoreFromPool(pool, 3)
}

func TestStoreLedgerRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	ingredient := &models.Ingredient{
		ID:           cuid.New(),
		Name:         "Flour " + cuid.Slug(),
		Unit:         "kg",
		BusinessUnit: models.BusinessUnitRestaurant,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	invoice := &models.SupplierInvoice{
		ID:            cuid.New(),
		SupplierName:  "Moulin du Sahel",
		InvoiceNumber: "INV-" + cuid.Slug(),
		Amount:        decimal.NewFromInt(50),
		Currency:      models.DefaultCurrency,
		DateReceived:  now.Format("2006-01-02"),
		BusinessUnit:  models.BusinessUnitRestaurant,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	restock := &models.InventoryMovement{
		ID:           cuid.New(),
		IngredientID: ingredient.ID,
		MovementType: models.MovementRestock,
		QtyChange:    decimal.NewFromInt(10),
		AmountDelta:  decimal.NewFromInt(50),
		InvoiceID:    invoice.ID,
		BusinessUnit: ingredient.BusinessUnit,
		CreatedAt:    now,
	}

	err := store.WithTx(ctx, func(ctx context.Context, tx repositories.Tx) error {
		if err := tx.Invoices().Create(ctx, invoice); err != nil {
			return err
		}
		if err := tx.Ingredients().Create(ctx, ingredient); err != nil {
			return err
		}
		if err := tx.Movements().Append(ctx, restock); err != nil {
			return err
		}
		return tx.Ingredients().UpdateStock(ctx, ingredient.ID, decimal.NewFromInt(10), decimal.NewFromInt(5), now)
	})
	require.NoError(t, err)
	assert.Positive(t, restock.Seq)

	err = store.WithTx(ctx, func(ctx context.Context, tx repositories.Tx) error {
		got, err := tx.Ingredients().GetForUpdate(ctx, ingredient.ID)
		require.NoError(t, err)
		assert.True(t, got.Quantity.Equal(decimal.NewFromInt(10)))
		assert.True(t, got.PricePerUnit.Equal(decimal.NewFromInt(5)))

		history, err := tx.Movements().ListByIngredient(ctx, ingredient.ID)
		require.NoError(t, err)
		require.Len(t, history, 1)
		assert.Equal(t, invoice.ID, history[0].InvoiceID)

		used, err := tx.Movements().ExistsForInvoice(ctx, invoice.ID)
		require.NoError(t, err)
		assert.True(t, used)
		assert.Empty(t, history[0].Reason)

		later, err := tx.Movements().ExistsAfter(ctx, ingredient.ID, restock.Seq)
		require.NoError(t, err)
		assert.False(t, later)

		dup := *ingredient
		dup.ID = cuid.New()
		return tx.Ingredients().Create(ctx, &dup)
	})
	assert.ErrorIs(t, err, models.ErrDuplicateIngredient)
}

func TestStoreSoftDeleteKeepsHistory(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)
	name := "Yeast " + cuid.Slug()

	ingredient := &models.Ingredient{
		ID: cuid.New(), Name: name, Unit: "kg", BusinessUnit: models.BusinessUnitRestaurant, CreatedAt: now, UpdatedAt: now,
	}
	create := &models.InventoryMovement{
		ID: cuid.New(), IngredientID: ingredient.ID, MovementType: models.MovementCreate, BusinessUnit: ingredient.BusinessUnit, CreatedAt: now,
	}
	err := store.WithTx(ctx, func(ctx context.Context, tx repositories.Tx) error {
		if err := tx.Ingredients().Create(ctx, ingredient); err != nil {
			return err
		}
		if err := tx.Movements().Append(ctx, create); err != nil {
			return err
		}
		if err := tx.Audits().Create(ctx, &models.StockAudit{
			ID: cuid.New(), BusinessUnit: ingredient.BusinessUnit, IngredientID: ingredient.ID, IngredientName: name,
			ActionType: models.AuditDelete, SupplierInfo: map[string]interface{}{"phone": "+216 71 000 000"},
			UserID: "manager-7", CreatedAt: now,
		}); err != nil {
			return err
		}
		return tx.Ingredients().Delete(ctx, ingredient.ID, now)
	})
	require.NoError(t, err)

	err = store.WithTx(ctx, func(ctx context.Context, tx repositories.Tx) error {
		_, err := tx.Ingredients().Get(ctx, ingredient.ID)
		assert.ErrorIs(t, err, models.ErrIngredientNotFound)
		assert.ErrorIs(t, tx.Ingredients().Delete(ctx, ingredient.ID, now), models.ErrIngredientNotFound)

		history, err := tx.Movements().ListByIngredient(ctx, ingredient.ID)
		require.NoError(t, err)
		require.Len(t, history, 1)
		assert.Equal(t, models.MovementCreate, history[0].MovementType)

		audits, err := tx.Audits().ListByBusinessUnit(ctx, ingredient.BusinessUnit, 50)
		require.NoError(t, err)
		var found *models.StockAudit
		for _, a := range audits {
			if a.IngredientID == ingredient.ID {
				found = a
			}
		}
		require.NotNil(t, found)
		assert.Equal(t, "manager-7", found.UserID)
		assert.Equal(t, "+216 71 000 000", found.SupplierInfo["phone"])

		exists, err := tx.Ingredients().ExistsByName(ctx, ingredient.BusinessUnit, name, "")
		require.NoError(t, err)
		assert.False(t, exists)
		return nil
	})
	require.NoError(t, err)
}
