package inventory

import (
	"context"
	"time"

	"github.com/chrisdamba/backoffice/internal/models"
	"github.com/chrisdamba/backoffice/internal/repositories"
	"github.com/lucsky/cuid"
	"github.com/shopspring/decimal"
)

// writeAudit records a metadata change in the same transaction as the change
// itself. The user comes from the request context.
func writeAudit(ctx context.Context, tx repositories.Tx, ing *models.Ingredient, action models.AuditAction, qtyChange, qtyAfter decimal.Decimal, info map[string]interface{}, at time.Time) error {
	return tx.Audits().Create(ctx, &models.StockAudit{
		ID:             cuid.New(),
		BusinessUnit:   ing.BusinessUnit,
		IngredientID:   ing.ID,
		IngredientName: ing.Name,
		ActionType:     action,
		QtyChange:      qtyChange,
		QtyAfter:       qtyAfter,
		SupplierInfo:   info,
		UserID:         models.UserIDFrom(ctx),
		CreatedAt:      at,
	})
}

// ListAudits returns the newest metadata audits of a business unit.
func (s *Service) ListAudits(ctx context.Context, businessUnit models.BusinessUnit, limit int) ([]*models.StockAudit, error) {
	if !businessUnit.Valid() {
		return nil, models.ErrInvalidBusinessUnit
	}
	if limit <= 0 {
		limit = models.DefaultAuditsLimit
	}
	var audits []*models.StockAudit
	err := s.store.WithTx(ctx, func(ctx context.Context, tx repositories.Tx) error {
		var err error
		audits, err = tx.Audits().ListByBusinessUnit(ctx, businessUnit, limit)
		return err
	})
	return audits, err
}
