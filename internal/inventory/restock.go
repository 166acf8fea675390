package inventory

import (
	"context"
	"strings"

	"github.com/chrisdamba/backoffice/internal/models"
	"github.com/chrisdamba/backoffice/internal/repositories"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Restock adds purchased stock. A non-empty invoiceID must name a supplier
// invoice of the same business unit.
func (s *Service) Restock(ctx context.Context, ingredientID string, qtyAdded, amountAdded decimal.Decimal, invoiceID string) (*models.RestockResult, error) {
	invoiceID = strings.TrimSpace(invoiceID)
	if !qtyAdded.IsPositive() {
		return nil, models.ErrInvalidQuantity.WithMessage("restock quantity must be positive")
	}
	if amountAdded.IsNegative() {
		return nil, models.ErrInvalidAmount
	}

	var (
		ing      *models.Ingredient
		movement *models.InventoryMovement
	)
	err := s.store.WithTx(ctx, func(ctx context.Context, tx repositories.Tx) error {
		var err error
		ing, err = tx.Ingredients().GetForUpdate(ctx, ingredientID)
		if err != nil {
			return err
		}
		if err := checkInvoice(ctx, tx, ing, invoiceID); err != nil {
			return err
		}
		movement, err = AppendTx(ctx, tx, ing, models.MovementRequest{
			IngredientID: ingredientID,
			Type:         models.MovementRestock,
			QtyDelta:     qtyAdded,
			AmountDelta:  amountAdded,
			InvoiceID:    invoiceID,
		}, s.now())
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("ingredient restocked",
		zap.String("ingredient_id", ingredientID),
		zap.String("movement_id", movement.ID),
		zap.String("qty_added", qtyAdded.String()),
		zap.String("new_quantity", ing.Quantity.String()),
		zap.String("price_per_unit", ing.PricePerUnit.String()),
	)
	return &models.RestockResult{
		IngredientID:    ingredientID,
		MovementID:      movement.ID,
		NewQuantity:     ing.Quantity,
		NewPricePerUnit: ing.PricePerUnit,
		NewTotalValue:   TotalValue(ing),
		Status:          StockStatus(ing.Quantity, ing.MinQuantity),
	}, nil
}

func checkInvoice(ctx context.Context, tx repositories.Tx, ing *models.Ingredient, invoiceID string) error {
	if invoiceID == "" {
		return nil
	}
	invoice, err := tx.Invoices().Get(ctx, invoiceID)
	if err != nil {
		return err
	}
	if invoice.BusinessUnit != ing.BusinessUnit {
		return models.ErrInvoiceNotFound.WithMessage(
			"invoice %s belongs to %s, not %s", invoiceID, invoice.BusinessUnit, ing.BusinessUnit)
	}
	return nil
}

// Adjust moves an ingredient to an absolute quantity through an ADJUST entry.
func (s *Service) Adjust(ctx context.Context, ingredientID string, target decimal.Decimal, reason string) (*models.InventoryMovement, error) {
	if target.IsNegative() {
		return nil, models.ErrInvalidQuantity.WithMessage("target quantity cannot be negative")
	}

	var movement *models.InventoryMovement
	err := s.store.WithTx(ctx, func(ctx context.Context, tx repositories.Tx) error {
		ing, err := tx.Ingredients().GetForUpdate(ctx, ingredientID)
		if err != nil {
			return err
		}
		delta := target.Sub(ing.Quantity)
		if delta.IsZero() {
			return models.ErrInvalidDelta.WithMessage("%s is already at %s %s", ing.Name, target, ing.Unit)
		}
		movement, err = AppendTx(ctx, tx, ing, models.MovementRequest{
			IngredientID: ingredientID,
			Type:         models.MovementAdjust,
			QtyDelta:     delta,
			Reason:       reason,
		}, s.now())
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("ingredient adjusted",
		zap.String("ingredient_id", ingredientID),
		zap.String("movement_id", movement.ID),
		zap.String("qty_change", movement.QtyChange.String()),
	)
	return movement, nil
}

// UndoMovement compensates the latest RESTOCK of an ingredient with a
// REVERSAL entry. Every check runs after the ingredient row is locked so no
// movement can slip in between the check and the reversal.
func (s *Service) UndoMovement(ctx context.Context, movementID string) (*models.UndoResult, error) {
	var result *models.UndoResult
	err := s.store.WithTx(ctx, func(ctx context.Context, tx repositories.Tx) error {
		target, err := tx.Movements().Get(ctx, movementID)
		if err != nil {
			return err
		}
		ing, err := tx.Ingredients().GetForUpdate(ctx, target.IngredientID)
		if err != nil {
			return err
		}

		if target.MovementType != models.MovementRestock {
			return models.ErrNotUndoable.WithMessage("only restock movements can be undone, this one is %s", target.MovementType)
		}
		if target.IsReversed {
			return models.ErrAlreadyReversed
		}
		later, err := tx.Movements().ExistsAfter(ctx, target.IngredientID, target.Seq)
		if err != nil {
			return err
		}
		if later {
			return models.ErrSubsequentMovementsExist
		}
		if ing.Quantity.Sub(target.QtyChange).IsNegative() {
			return models.ErrNegativeStockResult.WithMessage(
				"undo would leave %s at %s %s", ing.Name, ing.Quantity.Sub(target.QtyChange), ing.Unit)
		}

		reversal, err := AppendTx(ctx, tx, ing, models.MovementRequest{
			IngredientID:       ing.ID,
			Type:               models.MovementReversal,
			QtyDelta:           target.QtyChange.Neg(),
			AmountDelta:        target.AmountDelta.Neg(),
			Reason:             "undo " + target.ID,
			InvoiceID:          target.InvoiceID,
			ReversedMovementID: target.ID,
		}, s.now())
		if err != nil {
			return err
		}
		if err := tx.Movements().MarkReversed(ctx, target.ID); err != nil {
			return err
		}

		result = &models.UndoResult{
			MovementID:    target.ID,
			ReversalID:    reversal.ID,
			IngredientID:  ing.ID,
			NewQuantity:   ing.Quantity,
			NewTotalValue: TotalValue(ing),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("movement undone",
		zap.String("movement_id", result.MovementID),
		zap.String("reversal_id", result.ReversalID),
		zap.String("ingredient_id", result.IngredientID),
	)
	return result, nil
}
