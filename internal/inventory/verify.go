package inventory

import (
	"context"

	"github.com/chrisdamba/backoffice/internal/models"
	"github.com/chrisdamba/backoffice/internal/repositories"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// valueTolerance absorbs the rounding applied to price_per_unit.
var valueTolerance = decimal.New(1, -2)

// VerifyLedger replays every ingredient's ledger of a business unit and
// reports the ones whose materialized snapshot disagrees with it.
func (s *Service) VerifyLedger(ctx context.Context, businessUnit models.BusinessUnit) ([]models.LedgerDrift, error) {
	if !businessUnit.Valid() {
		return nil, models.ErrInvalidBusinessUnit
	}

	var drifts []models.LedgerDrift
	err := s.store.WithTx(ctx, func(ctx context.Context, tx repositories.Tx) error {
		drifts = nil
		ingredients, err := tx.Ingredients().List(ctx, businessUnit)
		if err != nil {
			return err
		}
		for _, ing := range ingredients {
			movements, err := tx.Movements().ListByIngredient(ctx, ing.ID)
			if err != nil {
				return err
			}
			ledgerQty := ReplayQuantity(movements)
			ledgerValue := ReplayValue(movements)
			snapshotValue := TotalValue(ing)
			if ledgerQty.Equal(ing.Quantity) && ledgerValue.Sub(snapshotValue).Abs().LessThanOrEqual(valueTolerance) {
				continue
			}
			drifts = append(drifts, models.LedgerDrift{
				IngredientID:     ing.ID,
				IngredientName:   ing.Name,
				SnapshotQuantity: ing.Quantity,
				LedgerQuantity:   ledgerQty,
				SnapshotValue:    snapshotValue,
				LedgerValue:      ledgerValue,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(drifts) > 0 {
		s.logger.Warn("ledger drift detected",
			zap.String("business_unit", string(businessUnit)),
			zap.Int("ingredients", len(drifts)),
		)
	}
	return drifts, nil
}
