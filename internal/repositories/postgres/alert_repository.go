package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chrisdamba/backoffice/internal/models"
	"github.com/jackc/pgx/v5"
)

type AlertRepository struct {
	tx pgx.Tx
}

const alertColumns = `
    id, ingredient_id, ingredient_name, business_unit, status, quantity,
    min_quantity, COALESCE(ref_order_id, ''), created_at, processed_at
`

func scanAlert(row pgx.Row) (*models.StockAlertEvent, error) {
	a := &models.StockAlertEvent{}
	err := row.Scan(
		&a.ID,
		&a.IngredientID,
		&a.IngredientName,
		&a.BusinessUnit,
		&a.Status,
		&a.Quantity,
		&a.MinQuantity,
		&a.RefOrderID,
		&a.CreatedAt,
		&a.ProcessedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrAlertNotFound
	}
	return a, err
}

func (r *AlertRepository) Create(ctx context.Context, event *models.StockAlertEvent) error {
	query := `
        INSERT INTO stock_alert_events (
            id, ingredient_id, ingredient_name, business_unit, status,
            quantity, min_quantity, ref_order_id, created_at
        ) VALUES (
            $1, $2, $3, $4, $5, $6, $7, $8, $9
        )
    `
	_, err := r.tx.Exec(ctx, query,
		event.ID,
		event.IngredientID,
		event.IngredientName,
		event.BusinessUnit,
		event.Status,
		event.Quantity,
		event.MinQuantity,
		nullable(event.RefOrderID),
		event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert stock alert event: %w", err)
	}
	return nil
}

func (r *AlertRepository) ListUnprocessed(ctx context.Context, limit int) ([]*models.StockAlertEvent, error) {
	query := `
        SELECT ` + alertColumns + ` FROM stock_alert_events
        WHERE processed_at IS NULL
        ORDER BY created_at, id
        LIMIT $1
    `
	rows, err := r.tx.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query stock alert events: %w", err)
	}
	defer rows.Close()

	var events []*models.StockAlertEvent
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan stock alert event row: %w", err)
		}
		events = append(events, a)
	}
	return events, rows.Err()
}

func (r *AlertRepository) MarkProcessed(ctx context.Context, id string, at time.Time) (*models.StockAlertEvent, error) {
	query := `
        UPDATE stock_alert_events SET processed_at = $2
        WHERE id = $1
        RETURNING ` + alertColumns
	return scanAlert(r.tx.QueryRow(ctx, query, id, at))
}

func (r *AlertRepository) DeleteForIngredient(ctx context.Context, ingredientID string) error {
	_, err := r.tx.Exec(ctx, `DELETE FROM stock_alert_events WHERE ingredient_id = $1`, ingredientID)
	if err != nil {
		return fmt.Errorf("failed to delete stock alert events for %s: %w", ingredientID, err)
	}
	return nil
}
