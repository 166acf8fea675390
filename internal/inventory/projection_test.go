package inventory

import (
	"testing"

	"github.com/chrisdamba/backoffice/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestStockStatus(t *testing.T) {
	tests := []struct {
		qty, min string
		want     models.StockStatus
	}{
		{"0", "5", models.StockStatusOutOfStock},
		{"-1", "0", models.StockStatusOutOfStock},
		{"4", "5", models.StockStatusLowStock},
		{"5", "5", models.StockStatusLowStock},
		{"5.001", "5", models.StockStatusInStock},
		{"1", "0", models.StockStatusInStock},
	}
	for _, tt := range tests {
		t.Run(tt.qty+"/"+tt.min, func(t *testing.T) {
			assert.Equal(t, tt.want, StockStatus(d(tt.qty), d(tt.min)))
		})
	}
}

func TestWeightedAveragePrice(t *testing.T) {
	tests := []struct {
		name                                string
		oldQty, oldPrice, addQty, addAmount string
		want                                string
	}{
		{"first restock", "0", "0", "10", "50", "5"},
		{"blend", "10", "5", "10", "70", "6"},
		{"free restock dilutes", "10", "4", "10", "0", "2"},
		{"repeating decimal rounded", "0", "0", "3", "10", "3.333333"},
		{"empty denominator falls back to restock price", "-10", "1", "10", "30", "3"},
		{"nothing added", "0", "0", "0", "0", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WeightedAveragePrice(d(tt.oldQty), d(tt.oldPrice), d(tt.addQty), d(tt.addAmount))
			assert.True(t, got.Equal(d(tt.want)), "got %s want %s", got, tt.want)
		})
	}
}

func TestReplayMatchesLiveSum(t *testing.T) {
	movements := []*models.InventoryMovement{
		{MovementType: models.MovementCreate, QtyChange: d("0")},
		{MovementType: models.MovementRestock, QtyChange: d("20"), AmountDelta: d("40")},
		{MovementType: models.MovementConsume, QtyChange: d("-3")},
		{MovementType: models.MovementRestock, QtyChange: d("5"), AmountDelta: d("15"), IsReversed: true},
		{MovementType: models.MovementReversal, QtyChange: d("-5"), AmountDelta: d("-15")},
	}
	assert.True(t, ReplayQuantity(movements).Equal(d("17")))
	assert.True(t, LiveQuantity(movements).Equal(d("17")))
	assert.True(t, ReplayValue(movements).Equal(d("40")))
}

func TestWithStatus(t *testing.T) {
	ing := &models.Ingredient{Quantity: d("20"), PricePerUnit: d("2"), MinQuantity: d("5")}
	got := WithStatus(ing)
	assert.True(t, got.TotalValue.Equal(d("40")))
	assert.Equal(t, models.StockStatusInStock, got.ComputedStatus)
}
