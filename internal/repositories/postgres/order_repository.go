package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chrisdamba/backoffice/internal/models"
	"github.com/jackc/pgx/v5"
)

type OrderRepository struct {
	tx pgx.Tx
}

const orderColumns = `
    id, business_unit, table_number, status, total_tnd, COALESCE(notes, ''),
    COALESCE(external_ref, ''), COALESCE(webhook_error, ''), inventory_applied,
    created_at, updated_at
`

func scanOrder(row pgx.Row) (*models.Order, error) {
	o := &models.Order{}
	err := row.Scan(
		&o.ID,
		&o.BusinessUnit,
		&o.TableNumber,
		&o.Status,
		&o.TotalTND,
		&o.Notes,
		&o.ExternalRef,
		&o.WebhookError,
		&o.InventoryApplied,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrOrderNotFound
	}
	return o, err
}

func (r *OrderRepository) Create(ctx context.Context, order *models.Order) error {
	query := `
        INSERT INTO orders (
            id, business_unit, table_number, status, total_tnd, notes,
            external_ref, webhook_error, inventory_applied, created_at, updated_at
        ) VALUES (
            $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11
        )
    `
	_, err := r.tx.Exec(ctx, query,
		order.ID,
		order.BusinessUnit,
		order.TableNumber,
		order.Status,
		order.TotalTND,
		nullable(order.Notes),
		nullable(order.ExternalRef),
		nullable(order.WebhookError),
		order.InventoryApplied,
		order.CreatedAt,
		order.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}

	_, err = r.tx.CopyFrom(
		ctx,
		pgx.Identifier{"order_items"},
		[]string{
			"id", "order_id", "position", "item_type", "item_id",
			"name_snapshot", "unit_price_tnd", "qty", "line_total_tnd",
		},
		pgx.CopyFromSlice(len(order.Items), func(i int) ([]interface{}, error) {
			item := order.Items[i]
			return []interface{}{
				item.ID,
				order.ID,
				item.Position,
				string(item.ItemType),
				nullable(item.ItemID),
				item.NameSnapshot,
				item.UnitPriceTND,
				item.Qty,
				item.LineTotalTND,
			}, nil
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to insert order items: %w", err)
	}
	return nil
}

func (r *OrderRepository) Get(ctx context.Context, id string) (*models.Order, error) {
	order, err := scanOrder(r.tx.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}
	if err := r.attach(ctx, []*models.Order{order}); err != nil {
		return nil, err
	}
	return order, nil
}

func (r *OrderRepository) GetForUpdate(ctx context.Context, id string) (*models.Order, error) {
	order, err := scanOrder(r.tx.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, err
	}
	if err := r.attach(ctx, []*models.Order{order}); err != nil {
		return nil, err
	}
	return order, nil
}

func (r *OrderRepository) UpdateState(ctx context.Context, order *models.Order) error {
	query := `
        UPDATE orders
        SET status = $2, external_ref = $3, webhook_error = $4,
            inventory_applied = $5, updated_at = $6
        WHERE id = $1
    `
	tag, err := r.tx.Exec(ctx, query,
		order.ID,
		order.Status,
		nullable(order.ExternalRef),
		nullable(order.WebhookError),
		order.InventoryApplied,
		order.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update order %s: %w", order.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrOrderNotFound
	}
	return nil
}

func (r *OrderRepository) ListRecent(ctx context.Context, businessUnit models.BusinessUnit, limit int) ([]*models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE business_unit = $1 ORDER BY created_at DESC LIMIT $2`
	orders, err := r.query(ctx, query, businessUnit, limit)
	if err != nil {
		return nil, err
	}
	if err := r.attach(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *OrderRepository) ListSubmittedBetween(ctx context.Context, businessUnit models.BusinessUnit, from, to time.Time) ([]*models.Order, error) {
	query := `
        SELECT ` + orderColumns + ` FROM orders
        WHERE business_unit = $1 AND status = $2 AND created_at >= $3 AND created_at < $4
        ORDER BY created_at
    `
	return r.query(ctx, query, businessUnit, models.OrderStatusSubmitted, from, to)
}

func (r *OrderRepository) query(ctx context.Context, query string, args ...interface{}) ([]*models.Order, error) {
	rows, err := r.tx.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var orders []*models.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order row: %w", err)
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// attach loads items and tickets for orders in two queries.
func (r *OrderRepository) attach(ctx context.Context, orders []*models.Order) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]string, len(orders))
	byID := make(map[string]*models.Order, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
		byID[o.ID] = o
	}

	rows, err := r.tx.Query(ctx, `
        SELECT id, order_id, position, item_type, COALESCE(item_id, ''),
               name_snapshot, unit_price_tnd, qty, line_total_tnd
        FROM order_items
        WHERE order_id = ANY($1)
        ORDER BY order_id, position
    `, ids)
	if err != nil {
		return fmt.Errorf("failed to query order items: %w", err)
	}
	for rows.Next() {
		var item models.OrderItem
		err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.Position,
			&item.ItemType,
			&item.ItemID,
			&item.NameSnapshot,
			&item.UnitPriceTND,
			&item.Qty,
			&item.LineTotalTND,
		)
		if err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan order item row: %w", err)
		}
		o := byID[item.OrderID]
		o.Items = append(o.Items, item)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	rows, err = r.tx.Query(ctx, `
        SELECT id, order_id, business_unit, ticket_number, content, created_at
        FROM tickets WHERE order_id = ANY($1)
    `, ids)
	if err != nil {
		return fmt.Errorf("failed to query tickets: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return fmt.Errorf("failed to scan ticket row: %w", err)
		}
		byID[t.OrderID].Ticket = t
	}
	return rows.Err()
}

type TicketRepository struct {
	tx pgx.Tx
}

func scanTicket(row pgx.Row) (*models.Ticket, error) {
	t := &models.Ticket{}
	err := row.Scan(&t.ID, &t.OrderID, &t.BusinessUnit, &t.TicketNumber, &t.Content, &t.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrTicketNotFound
	}
	return t, err
}

func (r *TicketRepository) GetByOrder(ctx context.Context, orderID string) (*models.Ticket, error) {
	return scanTicket(r.tx.QueryRow(ctx, `
        SELECT id, order_id, business_unit, ticket_number, content, created_at
        FROM tickets WHERE order_id = $1
    `, orderID))
}

func (r *TicketRepository) NextNumber(ctx context.Context, scope string) (int64, error) {
	query := `
        INSERT INTO ticket_counters (scope, last_number) VALUES ($1, 1)
        ON CONFLICT (scope) DO UPDATE SET last_number = ticket_counters.last_number + 1
        RETURNING last_number
    `
	var n int64
	if err := r.tx.QueryRow(ctx, query, scope).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to allocate ticket number: %w", err)
	}
	return n, nil
}

func (r *TicketRepository) Create(ctx context.Context, ticket *models.Ticket) error {
	query := `
        INSERT INTO tickets (id, order_id, business_unit, ticket_number, content, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)
    `
	_, err := r.tx.Exec(ctx, query,
		ticket.ID,
		ticket.OrderID,
		ticket.BusinessUnit,
		ticket.TicketNumber,
		ticket.Content,
		ticket.CreatedAt,
	)
	if isUniqueViolation(err) {
		return models.ErrInvalidTransition.WithMessage("order %s already has a ticket", ticket.OrderID)
	}
	if err != nil {
		return fmt.Errorf("failed to insert ticket: %w", err)
	}
	return nil
}

type ZReportRepository struct {
	tx pgx.Tx
}

func (r *ZReportRepository) Upsert(ctx context.Context, report *models.ZReport) error {
	query := `
        INSERT INTO z_reports (id, business_unit, report_date, total_orders, total_revenue_tnd, generated_at)
        VALUES ($1, $2, $3::date, $4, $5, $6)
        ON CONFLICT (business_unit, report_date) DO UPDATE
        SET total_orders = EXCLUDED.total_orders,
            total_revenue_tnd = EXCLUDED.total_revenue_tnd,
            generated_at = EXCLUDED.generated_at
        RETURNING id
    `
	err := r.tx.QueryRow(ctx, query,
		report.ID,
		report.BusinessUnit,
		report.ReportDate,
		report.TotalOrders,
		report.TotalRevenueTND,
		report.GeneratedAt,
	).Scan(&report.ID)
	if err != nil {
		return fmt.Errorf("failed to upsert z report: %w", err)
	}
	return nil
}

func (r *ZReportRepository) Get(ctx context.Context, businessUnit models.BusinessUnit, day string) (*models.ZReport, error) {
	query := `
        SELECT id, business_unit, report_date::text, total_orders, total_revenue_tnd, generated_at
        FROM z_reports WHERE business_unit = $1 AND report_date = $2::date
    `
	rep := &models.ZReport{}
	err := r.tx.QueryRow(ctx, query, businessUnit, day).Scan(
		&rep.ID,
		&rep.BusinessUnit,
		&rep.ReportDate,
		&rep.TotalOrders,
		&rep.TotalRevenueTND,
		&rep.GeneratedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrReportNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load z report: %w", err)
	}
	return rep, nil
}
