package inventory

import (
	"context"
	"time"

	"github.com/chrisdamba/backoffice/internal/models"
	"github.com/chrisdamba/backoffice/internal/repositories"
	"github.com/lucsky/cuid"
	"github.com/shopspring/decimal"
)

// AppendTx records one ledger entry and moves the ingredient's materialized
// quantity and price in the same transaction. ingredient must have been
// loaded with GetForUpdate inside tx; it is updated in place.
func AppendTx(ctx context.Context, tx repositories.Tx, ingredient *models.Ingredient, req models.MovementRequest, at time.Time) (*models.InventoryMovement, error) {
	newQty, newPrice, amount, err := nextSnapshot(ingredient, req)
	if err != nil {
		return nil, err
	}

	movement := &models.InventoryMovement{
		ID:                 cuid.New(),
		IngredientID:       ingredient.ID,
		MovementType:       req.Type,
		QtyChange:          req.QtyDelta,
		AmountDelta:        amount,
		Reason:             req.Reason,
		RefOrderID:         req.RefOrderID,
		InvoiceID:          req.InvoiceID,
		ReversedMovementID: req.ReversedMovementID,
		BusinessUnit:       ingredient.BusinessUnit,
		CreatedAt:          at,
	}
	if err := tx.Movements().Append(ctx, movement); err != nil {
		return nil, err
	}

	if req.Type != models.MovementCreate {
		if err := tx.Ingredients().UpdateStock(ctx, ingredient.ID, newQty, newPrice, at); err != nil {
			return nil, err
		}
		ingredient.Quantity = newQty
		ingredient.PricePerUnit = newPrice
		ingredient.UpdatedAt = at
	}
	return movement, nil
}

// nextSnapshot validates the delta for its movement type and returns the
// resulting quantity, price per unit and the monetary delta to record.
func nextSnapshot(ing *models.Ingredient, req models.MovementRequest) (qty, price, amount decimal.Decimal, err error) {
	qty = ing.Quantity.Add(req.QtyDelta)
	price = ing.PricePerUnit

	switch req.Type {
	case models.MovementCreate:
		if !req.QtyDelta.IsZero() || !req.AmountDelta.IsZero() {
			return qty, price, amount, models.ErrInvalidDelta.WithMessage("create entries carry no quantity or amount")
		}
		amount = decimal.Zero
	case models.MovementRestock:
		if !req.QtyDelta.IsPositive() {
			return qty, price, amount, models.ErrInvalidDelta.WithMessage("restock quantity must be positive, got %s", req.QtyDelta)
		}
		if req.AmountDelta.IsNegative() {
			return qty, price, amount, models.ErrInvalidAmount
		}
		amount = req.AmountDelta
		price = WeightedAveragePrice(ing.Quantity, ing.PricePerUnit, req.QtyDelta, req.AmountDelta)
	case models.MovementConsume:
		if !req.QtyDelta.IsNegative() {
			return qty, price, amount, models.ErrInvalidDelta.WithMessage("consumption quantity must be negative, got %s", req.QtyDelta)
		}
		amount = req.QtyDelta.Mul(price).Round(PricePrecision)
	case models.MovementAdjust:
		amount = req.QtyDelta.Mul(price).Round(PricePrecision)
	case models.MovementReversal:
		amount = req.AmountDelta
		if qty.IsPositive() {
			value := ing.Quantity.Mul(ing.PricePerUnit).Add(amount)
			price = decimal.Max(value.DivRound(qty, PricePrecision), decimal.Zero)
		}
	default:
		return qty, price, amount, models.ErrInvalidMovementType.WithMessage("unknown movement type %q", req.Type)
	}

	if qty.IsNegative() {
		return qty, price, amount, models.ErrInvalidDelta.WithMessage(
			"%s %s would leave %s at %s %s", req.Type, req.QtyDelta, ing.Name, qty, ing.Unit)
	}
	return qty, price, amount, nil
}
