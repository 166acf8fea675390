package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chrisdamba/backoffice/internal/models"
	"github.com/jackc/pgx/v5"
)

type InvoiceRepository struct {
	tx pgx.Tx
}

const invoiceColumns = `
    id, supplier_name, COALESCE(supplier_phone, ''), invoice_number, amount, currency,
    date_received::text, COALESCE(file_url, ''), business_unit, created_at, updated_at
`

func scanInvoice(row pgx.Row) (*models.SupplierInvoice, error) {
	inv := &models.SupplierInvoice{}
	err := row.Scan(
		&inv.ID,
		&inv.SupplierName,
		&inv.SupplierPhone,
		&inv.InvoiceNumber,
		&inv.Amount,
		&inv.Currency,
		&inv.DateReceived,
		&inv.FileURL,
		&inv.BusinessUnit,
		&inv.CreatedAt,
		&inv.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrInvoiceNotFound
	}
	return inv, err
}

func (r *InvoiceRepository) Create(ctx context.Context, invoice *models.SupplierInvoice) error {
	query := `
        INSERT INTO supplier_invoices (
            id, supplier_name, supplier_phone, invoice_number, amount, currency,
            date_received, file_url, business_unit, created_at, updated_at
        ) VALUES (
            $1, $2, $3, $4, $5, $6, $7::date, $8, $9, $10, $11
        )
    `
	_, err := r.tx.Exec(ctx, query,
		invoice.ID,
		invoice.SupplierName,
		nullable(invoice.SupplierPhone),
		invoice.InvoiceNumber,
		invoice.Amount,
		invoice.Currency,
		invoice.DateReceived,
		nullable(invoice.FileURL),
		invoice.BusinessUnit,
		invoice.CreatedAt,
		invoice.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return models.ErrDuplicateInvoice
	}
	if err != nil {
		return fmt.Errorf("failed to insert supplier invoice: %w", err)
	}
	return nil
}

func (r *InvoiceRepository) Get(ctx context.Context, id string) (*models.SupplierInvoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM supplier_invoices WHERE id = $1`
	return scanInvoice(r.tx.QueryRow(ctx, query, id))
}

func (r *InvoiceRepository) List(ctx context.Context, businessUnit models.BusinessUnit) ([]*models.SupplierInvoice, error) {
	query := `
        SELECT ` + invoiceColumns + `
        FROM supplier_invoices
        WHERE business_unit = $1
        ORDER BY date_received DESC, created_at DESC
    `
	rows, err := r.tx.Query(ctx, query, businessUnit)
	if err != nil {
		return nil, fmt.Errorf("failed to query supplier invoices: %w", err)
	}
	defer rows.Close()

	invoices := []*models.SupplierInvoice{}
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan supplier invoice row: %w", err)
		}
		invoices = append(invoices, inv)
	}
	return invoices, rows.Err()
}

func (r *InvoiceRepository) SetFile(ctx context.Context, id, fileURL string, updatedAt time.Time) error {
	tag, err := r.tx.Exec(ctx,
		`UPDATE supplier_invoices SET file_url = $2, updated_at = $3 WHERE id = $1`,
		id, fileURL, updatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to attach file to invoice %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrInvoiceNotFound
	}
	return nil
}

func (r *InvoiceRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.tx.Exec(ctx, `DELETE FROM supplier_invoices WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete invoice %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrInvoiceNotFound
	}
	return nil
}
