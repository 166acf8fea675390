package invoices

import (
	"context"
	"fmt"
	"io"
	"mime"
	"path"
	"strings"
	"time"

	"github.com/chrisdamba/backoffice/internal/cloudwriter"
	"github.com/chrisdamba/backoffice/internal/models"
	"github.com/chrisdamba/backoffice/internal/repositories"
	"github.com/lucsky/cuid"
	"go.uber.org/zap"
)

// Service keeps supplier invoices and their scanned files. Restock
// movements reference invoices by id.
type Service struct {
	store   repositories.Store
	factory cloudwriter.CloudWriterFactory
	bucket  string
	logger  *zap.Logger
	now     func() time.Time
}

// NewService builds the service. factory may be nil, in which case invoices
// can be recorded but files cannot be attached.
func NewService(store repositories.Store, factory cloudwriter.CloudWriterFactory, bucket string, logger *zap.Logger) *Service {
	return &Service{
		store:   store,
		factory: factory,
		bucket:  bucket,
		logger:  logger.Named("invoices"),
		now:     time.Now,
	}
}

func (s *Service) CreateInvoice(ctx context.Context, input models.InvoiceInput) (*models.SupplierInvoice, error) {
	now := s.now()
	invoice := &models.SupplierInvoice{
		ID:            cuid.New(),
		SupplierName:  strings.TrimSpace(input.SupplierName),
		SupplierPhone: strings.TrimSpace(input.SupplierPhone),
		InvoiceNumber: strings.TrimSpace(input.InvoiceNumber),
		Amount:        input.Amount,
		Currency:      strings.ToUpper(strings.TrimSpace(input.Currency)),
		DateReceived:  strings.TrimSpace(input.DateReceived),
		BusinessUnit:  input.BusinessUnit,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if invoice.Currency == "" {
		invoice.Currency = models.DefaultCurrency
	}
	if invoice.DateReceived == "" {
		invoice.DateReceived = now.UTC().Format("2006-01-02")
	}

	switch {
	case !invoice.BusinessUnit.Valid():
		return nil, models.ErrInvalidBusinessUnit
	case invoice.SupplierName == "":
		return nil, models.ErrInvalidInvoice.WithMessage("supplier name is required")
	case invoice.InvoiceNumber == "":
		return nil, models.ErrInvalidInvoice.WithMessage("invoice number is required")
	case invoice.Amount.IsNegative():
		return nil, models.ErrInvalidAmount
	}
	if _, err := time.Parse("2006-01-02", invoice.DateReceived); err != nil {
		return nil, models.ErrInvalidInvoice.WithMessage("date received must be formatted as YYYY-MM-DD")
	}

	err := s.store.WithTx(ctx, func(ctx context.Context, tx repositories.Tx) error {
		return tx.Invoices().Create(ctx, invoice)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("invoice recorded",
		zap.String("invoice_id", invoice.ID),
		zap.String("supplier", invoice.SupplierName),
		zap.String("number", invoice.InvoiceNumber),
		zap.String("business_unit", string(invoice.BusinessUnit)),
	)
	return invoice, nil
}

func (s *Service) GetInvoice(ctx context.Context, id string) (*models.SupplierInvoice, error) {
	var invoice *models.SupplierInvoice
	err := s.store.WithTx(ctx, func(ctx context.Context, tx repositories.Tx) error {
		var err error
		invoice, err = tx.Invoices().Get(ctx, id)
		return err
	})
	return invoice, err
}

// ListInvoices returns the invoices of a business unit, most recently
// received first.
func (s *Service) ListInvoices(ctx context.Context, businessUnit models.BusinessUnit) ([]*models.SupplierInvoice, error) {
	if !businessUnit.Valid() {
		return nil, models.ErrInvalidBusinessUnit
	}
	var invoices []*models.SupplierInvoice
	err := s.store.WithTx(ctx, func(ctx context.Context, tx repositories.Tx) error {
		var err error
		invoices, err = tx.Invoices().List(ctx, businessUnit)
		return err
	})
	return invoices, err
}

// DeleteInvoice removes an invoice no ledger entry points at.
func (s *Service) DeleteInvoice(ctx context.Context, id string) error {
	err := s.store.WithTx(ctx, func(ctx context.Context, tx repositories.Tx) error {
		if _, err := tx.Invoices().Get(ctx, id); err != nil {
			return err
		}
		used, err := tx.Movements().ExistsForInvoice(ctx, id)
		if err != nil {
			return err
		}
		if used {
			return models.ErrInvoiceInUse
		}
		return tx.Invoices().Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	s.logger.Info("invoice deleted", zap.String("invoice_id", id))
	return nil
}

// AttachFile uploads the scanned invoice to <business unit>/<unix ms>_<name>
// in the invoice bucket and records its location. The upload happens outside
// any transaction; the invoice row is only touched once the object exists.
func (s *Service) AttachFile(ctx context.Context, id, fileName string, body io.Reader) (*models.SupplierInvoice, error) {
	name := path.Base(strings.ReplaceAll(strings.TrimSpace(fileName), "\\", "/"))
	if name == "" || name == "." || name == "/" || body == nil {
		return nil, models.ErrInvalidFile
	}
	if s.factory == nil || s.bucket == "" {
		return nil, models.ErrStorageNotConfigured
	}

	invoice, err := s.GetInvoice(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.now()
	key := fmt.Sprintf("%s/%d_%s", invoice.BusinessUnit, now.UnixMilli(), name)
	w, err := s.factory.NewWriter(ctx, s.bucket, key)
	if err != nil {
		return nil, models.ErrUploadFailed.WithMessage("failed to create cloud file writer: %v", err)
	}
	if s3w, ok := w.(*cloudwriter.S3Writer); ok {
		if contentType := mime.TypeByExtension(path.Ext(name)); contentType != "" {
			s3w.SetContentType(contentType)
		}
	}
	n, err := io.Copy(w, body)
	if err != nil {
		return nil, models.ErrInvalidFile.WithMessage("failed to read file: %v", err)
	}
	if n == 0 {
		return nil, models.ErrInvalidFile.WithMessage("file %s is empty", name)
	}
	if err := w.Close(); err != nil {
		return nil, models.ErrUploadFailed.WithMessage("%v", err)
	}

	fileURL := fmt.Sprintf("s3://%s/%s", s.bucket, key)
	err = s.store.WithTx(ctx, func(ctx context.Context, tx repositories.Tx) error {
		return tx.Invoices().SetFile(ctx, id, fileURL, now)
	})
	if err != nil {
		return nil, err
	}
	invoice.FileURL = fileURL
	invoice.UpdatedAt = now

	s.logger.Info("invoice file attached",
		zap.String("invoice_id", id),
		zap.String("location", fileURL),
		zap.Int64("bytes", n),
	)
	return invoice, nil
}
