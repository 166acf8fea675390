package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/chrisdamba/backoffice/internal/models"
)

type auditRepo struct{ st *state }

func (r auditRepo) Create(ctx context.Context, audit *models.StockAudit) error {
	cp := *audit
	r.st.audits = append(r.st.audits, &cp)
	return nil
}

func (r auditRepo) ListByBusinessUnit(ctx context.Context, businessUnit models.BusinessUnit, limit int) ([]*models.StockAudit, error) {
	out := []*models.StockAudit{}
	for i := len(r.st.audits) - 1; i >= 0 && len(out) < limit; i-- {
		a := r.st.audits[i]
		if a.BusinessUnit != businessUnit {
			continue
		}
		cp := *a
		out = append(out, &cp)
	}
	return out, nil
}

type invoiceRepo struct{ st *state }

func (r invoiceRepo) Create(ctx context.Context, invoice *models.SupplierInvoice) error {
	for _, existing := range r.st.invoices {
		if existing.BusinessUnit == invoice.BusinessUnit &&
			strings.EqualFold(existing.SupplierName, invoice.SupplierName) &&
			existing.InvoiceNumber == invoice.InvoiceNumber {
			return models.ErrDuplicateInvoice
		}
	}
	cp := *invoice
	r.st.invoices[invoice.ID] = &cp
	return nil
}

func (r invoiceRepo) Get(ctx context.Context, id string) (*models.SupplierInvoice, error) {
	inv, ok := r.st.invoices[id]
	if !ok {
		return nil, models.ErrInvoiceNotFound
	}
	cp := *inv
	return &cp, nil
}

func (r invoiceRepo) List(ctx context.Context, businessUnit models.BusinessUnit) ([]*models.SupplierInvoice, error) {
	out := []*models.SupplierInvoice{}
	for _, inv := range r.st.invoices {
		if inv.BusinessUnit == businessUnit {
			cp := *inv
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DateReceived != out[j].DateReceived {
			return out[i].DateReceived > out[j].DateReceived
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r invoiceRepo) SetFile(ctx context.Context, id, fileURL string, updatedAt time.Time) error {
	inv, ok := r.st.invoices[id]
	if !ok {
		return models.ErrInvoiceNotFound
	}
	inv.FileURL = fileURL
	inv.UpdatedAt = updatedAt
	return nil
}

func (r invoiceRepo) Delete(ctx context.Context, id string) error {
	if _, ok := r.st.invoices[id]; !ok {
		return models.ErrInvoiceNotFound
	}
	delete(r.st.invoices, id)
	return nil
}
