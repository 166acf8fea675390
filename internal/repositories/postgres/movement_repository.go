package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/chrisdamba/backoffice/internal/models"
	"github.com/jackc/pgx/v5"
)

type MovementRepository struct {
	tx pgx.Tx
}

const movementColumns = `
    m.id, m.seq, m.ingredient_id, m.movement_type, m.qty_change, m.amount_tnd_delta,
    COALESCE(m.reason, ''), COALESCE(m.ref_order_id, ''), COALESCE(m.invoice_id, ''),
    COALESCE(m.reversed_movement_id, ''), m.is_reversed, m.business_unit, m.created_at
`

func movementDest(m *models.InventoryMovement) []interface{} {
	return []interface{}{
		&m.ID,
		&m.Seq,
		&m.IngredientID,
		&m.MovementType,
		&m.QtyChange,
		&m.AmountDelta,
		&m.Reason,
		&m.RefOrderID,
		&m.InvoiceID,
		&m.ReversedMovementID,
		&m.IsReversed,
		&m.BusinessUnit,
		&m.CreatedAt,
	}
}

func (r *MovementRepository) Append(ctx context.Context, movement *models.InventoryMovement) error {
	query := `
        INSERT INTO inventory_movements (
            id, ingredient_id, movement_type, qty_change, amount_tnd_delta,
            reason, ref_order_id, invoice_id, reversed_movement_id,
            is_reversed, business_unit, created_at
        ) VALUES (
            $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12
        )
        RETURNING seq
    `
	err := r.tx.QueryRow(ctx, query,
		movement.ID,
		movement.IngredientID,
		movement.MovementType,
		movement.QtyChange,
		movement.AmountDelta,
		nullable(movement.Reason),
		nullable(movement.RefOrderID),
		nullable(movement.InvoiceID),
		nullable(movement.ReversedMovementID),
		movement.IsReversed,
		movement.BusinessUnit,
		movement.CreatedAt,
	).Scan(&movement.Seq)
	if err != nil {
		return fmt.Errorf("failed to append movement: %w", err)
	}
	return nil
}

func (r *MovementRepository) Get(ctx context.Context, id string) (*models.InventoryMovement, error) {
	query := `SELECT ` + movementColumns + ` FROM inventory_movements m WHERE m.id = $1`
	m := &models.InventoryMovement{}
	err := r.tx.QueryRow(ctx, query, id).Scan(movementDest(m)...)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrMovementNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load movement %s: %w", id, err)
	}
	return m, nil
}

func (r *MovementRepository) MarkReversed(ctx context.Context, id string) error {
	tag, err := r.tx.Exec(ctx, `UPDATE inventory_movements SET is_reversed = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to mark movement %s reversed: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrMovementNotFound
	}
	return nil
}

func (r *MovementRepository) CountByIngredient(ctx context.Context, ingredientID string, exclude ...models.MovementType) (int, error) {
	excluded := make([]string, len(exclude))
	for i, t := range exclude {
		excluded[i] = string(t)
	}
	query := `
        SELECT COUNT(*) FROM inventory_movements
        WHERE ingredient_id = $1 AND NOT (movement_type = ANY($2))
    `
	var count int
	err := r.tx.QueryRow(ctx, query, ingredientID, excluded).Scan(&count)
	return count, err
}

func (r *MovementRepository) ExistsAfter(ctx context.Context, ingredientID string, seq int64) (bool, error) {
	query := `
        SELECT EXISTS (
            SELECT 1 FROM inventory_movements WHERE ingredient_id = $1 AND seq > $2
        )
    `
	var exists bool
	err := r.tx.QueryRow(ctx, query, ingredientID, seq).Scan(&exists)
	return exists, err
}

func (r *MovementRepository) ExistsForOrder(ctx context.Context, orderID string, movementType models.MovementType) (bool, error) {
	query := `
        SELECT EXISTS (
            SELECT 1 FROM inventory_movements WHERE ref_order_id = $1 AND movement_type = $2
        )
    `
	var exists bool
	err := r.tx.QueryRow(ctx, query, orderID, movementType).Scan(&exists)
	return exists, err
}

func (r *MovementRepository) ListByIngredient(ctx context.Context, ingredientID string) ([]*models.InventoryMovement, error) {
	query := `SELECT ` + movementColumns + ` FROM inventory_movements m WHERE m.ingredient_id = $1 ORDER BY m.seq`
	rows, err := r.tx.Query(ctx, query, ingredientID)
	if err != nil {
		return nil, fmt.Errorf("failed to query movements: %w", err)
	}
	defer rows.Close()

	var movements []*models.InventoryMovement
	for rows.Next() {
		m := &models.InventoryMovement{}
		if err := rows.Scan(movementDest(m)...); err != nil {
			return nil, fmt.Errorf("failed to scan movement row: %w", err)
		}
		movements = append(movements, m)
	}
	return movements, rows.Err()
}

func (r *MovementRepository) ListByBusinessUnit(ctx context.Context, businessUnit models.BusinessUnit, limit int) ([]*models.MovementWithIngredient, error) {
	query := `
        SELECT ` + movementColumns + `, i.name
        FROM inventory_movements m
        JOIN ingredients i ON i.id = m.ingredient_id
        WHERE i.business_unit = $1
        ORDER BY m.seq DESC
        LIMIT $2
    `
	rows, err := r.tx.Query(ctx, query, businessUnit, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query movements: %w", err)
	}
	defer rows.Close()

	var movements []*models.MovementWithIngredient
	for rows.Next() {
		m := &models.MovementWithIngredient{}
		dest := append(movementDest(&m.InventoryMovement), &m.IngredientName)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan movement row: %w", err)
		}
		movements = append(movements, m)
	}
	return movements, rows.Err()
}

func (r *MovementRepository) ExistsForInvoice(ctx context.Context, invoiceID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM inventory_movements WHERE invoice_id = $1)`
	var exists bool
	err := r.tx.QueryRow(ctx, query, invoiceID).Scan(&exists)
	return exists, err
}
