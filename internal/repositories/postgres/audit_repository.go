package postgres

import (
	"context"
	"fmt"

	"github.com/chrisdamba/backoffice/internal/models"
	"github.com/jackc/pgx/v5"
)

type AuditRepository struct {
	tx pgx.Tx
}

func (r *AuditRepository) Create(ctx context.Context, audit *models.StockAudit) error {
	query := `
        INSERT INTO stock_audits (
            id, business_unit, ingredient_id, ingredient_name, action_type,
            qty_change, qty_after, supplier_info, user_id, created_at
        ) VALUES (
            $1, $2, $3, $4, $5, $6, $7, $8, $9, $10
        )
    `
	_, err := r.tx.Exec(ctx, query,
		audit.ID,
		audit.BusinessUnit,
		nullable(audit.IngredientID),
		audit.IngredientName,
		audit.ActionType,
		audit.QtyChange,
		audit.QtyAfter,
		audit.SupplierInfo,
		nullable(audit.UserID),
		audit.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert stock audit: %w", err)
	}
	return nil
}

func (r *AuditRepository) ListByBusinessUnit(ctx context.Context, businessUnit models.BusinessUnit, limit int) ([]*models.StockAudit, error) {
	query := `
        SELECT id, business_unit, COALESCE(ingredient_id, ''), ingredient_name, action_type,
               qty_change, qty_after, supplier_info, COALESCE(user_id, ''), created_at
        FROM stock_audits
        WHERE business_unit = $1
        ORDER BY created_at DESC, id DESC
        LIMIT $2
    `
	rows, err := r.tx.Query(ctx, query, businessUnit, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query stock audits: %w", err)
	}
	defer rows.Close()

	audits := []*models.StockAudit{}
	for rows.Next() {
		a := &models.StockAudit{}
		err := rows.Scan(
			&a.ID,
			&a.BusinessUnit,
			&a.IngredientID,
			&a.IngredientName,
			&a.ActionType,
			&a.QtyChange,
			&a.QtyAfter,
			&a.SupplierInfo,
			&a.UserID,
			&a.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan stock audit row: %w", err)
		}
		audits = append(audits, a)
	}
	return audits, rows.Err()
}
