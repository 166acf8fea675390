package inventory

import (
	"github.com/chrisdamba/backoffice/internal/models"
	"github.com/shopspring/decimal"
)

// PricePrecision is the number of decimal places kept on price_per_unit.
const PricePrecision = 6

// StockStatus derives the status shown to staff from a quantity and its seuil.
func StockStatus(quantity, minQuantity decimal.Decimal) models.StockStatus {
	switch {
	case quantity.LessThanOrEqual(decimal.Zero):
		return models.StockStatusOutOfStock
	case quantity.LessThanOrEqual(minQuantity):
		return models.StockStatusLowStock
	default:
		return models.StockStatusInStock
	}
}

func TotalValue(ingredient *models.Ingredient) decimal.Decimal {
	return ingredient.Quantity.Mul(ingredient.PricePerUnit)
}

func WithStatus(ingredient *models.Ingredient) *models.IngredientWithStatus {
	return &models.IngredientWithStatus{
		Ingredient:     *ingredient,
		TotalValue:     TotalValue(ingredient),
		ComputedStatus: StockStatus(ingredient.Quantity, ingredient.MinQuantity),
	}
}

// WeightedAveragePrice blends the value already on hand with a restock.
// When nothing is left after the blend it falls back to the unit price of the
// restock itself, or zero.
func WeightedAveragePrice(oldQty, oldPrice, addedQty, addedAmount decimal.Decimal) decimal.Decimal {
	totalQty := oldQty.Add(addedQty)
	if totalQty.IsZero() {
		if addedQty.IsZero() {
			return decimal.Zero
		}
		return addedAmount.DivRound(addedQty, PricePrecision)
	}
	return oldQty.Mul(oldPrice).Add(addedAmount).DivRound(totalQty, PricePrecision)
}

// ReplayQuantity folds ledger entries into a quantity. Reversed entries and
// their REVERSAL compensations cancel out, so summing every entry is the same
// as summing the live ones.
func ReplayQuantity(movements []*models.InventoryMovement) decimal.Decimal {
	qty := decimal.Zero
	for _, m := range movements {
		qty = qty.Add(m.QtyChange)
	}
	return qty
}

// ReplayValue folds ledger entries into a monetary value.
func ReplayValue(movements []*models.InventoryMovement) decimal.Decimal {
	value := decimal.Zero
	for _, m := range movements {
		value = value.Add(m.AmountDelta)
	}
	return value
}

// LiveQuantity sums only the entries that are neither reversed nor reversals.
func LiveQuantity(movements []*models.InventoryMovement) decimal.Decimal {
	qty := decimal.Zero
	for _, m := range movements {
		if m.IsReversed || m.MovementType == models.MovementReversal {
			continue
		}
		qty = qty.Add(m.QtyChange)
	}
	return qty
}
