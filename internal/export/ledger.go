package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/chrisdamba/backoffice/internal/cloudwriter"
	"github.com/chrisdamba/backoffice/internal/models"
	"github.com/chrisdamba/backoffice/internal/repositories"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/source"
	"github.com/xitongsys/parquet-go/writer"
	"go.uber.org/zap"
)

const (
	FormatParquet = "parquet"
	FormatCSV     = "csv"

	maxExportRows = 1_000_000
)

// ledgerRow is the flat record written for each movement. Quantities and
// amounts are kept as decimal strings so no precision is lost.
type ledgerRow struct {
	Seq                int64  `parquet:"name=seq, type=INT64"`
	ID                 string `parquet:"name=id, type=BYTE_ARRAY, convertedtype=UTF8"`
	IngredientID       string `parquet:"name=ingredient_id, type=BYTE_ARRAY, convertedtype=UTF8"`
	IngredientName     string `parquet:"name=ingredient_name, type=BYTE_ARRAY, convertedtype=UTF8"`
	BusinessUnit       string `parquet:"name=business_unit, type=BYTE_ARRAY, convertedtype=UTF8"`
	MovementType       string `parquet:"name=movement_type, type=BYTE_ARRAY, convertedtype=UTF8"`
	QtyChange          string `parquet:"name=qty_change, type=BYTE_ARRAY, convertedtype=UTF8"`
	AmountDelta        string `parquet:"name=amount_tnd_delta, type=BYTE_ARRAY, convertedtype=UTF8"`
	Reason             string `parquet:"name=reason, type=BYTE_ARRAY, convertedtype=UTF8"`
	RefOrderID         string `parquet:"name=ref_order_id, type=BYTE_ARRAY, convertedtype=UTF8"`
	InvoiceID          string `parquet:"name=invoice_id, type=BYTE_ARRAY, convertedtype=UTF8"`
	ReversedMovementID string `parquet:"name=reversed_movement_id, type=BYTE_ARRAY, convertedtype=UTF8"`
	IsReversed         bool   `parquet:"name=is_reversed, type=BOOLEAN"`
	CreatedAt          int64  `parquet:"name=created_at, type=INT64, convertedtype=TIMESTAMP_MILLIS"`
}

var csvHeader = []string{
	"seq", "id", "ingredient_id", "ingredient_name", "business_unit", "movement_type",
	"qty_change", "amount_tnd_delta", "reason", "ref_order_id", "invoice_id",
	"reversed_movement_id", "is_reversed", "created_at",
}

func (r ledgerRow) record() []string {
	return []string{
		strconv.FormatInt(r.Seq, 10), r.ID, r.IngredientID, r.IngredientName, r.BusinessUnit, r.MovementType,
		r.QtyChange, r.AmountDelta, r.Reason, r.RefOrderID, r.InvoiceID,
		r.ReversedMovementID, strconv.FormatBool(r.IsReversed),
		time.UnixMilli(r.CreatedAt).UTC().Format(time.RFC3339),
	}
}

func toRow(m *models.MovementWithIngredient, bu models.BusinessUnit) ledgerRow {
	return ledgerRow{
		Seq:                m.Seq,
		ID:                 m.ID,
		IngredientID:       m.IngredientID,
		IngredientName:     m.IngredientName,
		BusinessUnit:       string(bu),
		MovementType:       string(m.MovementType),
		QtyChange:          m.QtyChange.String(),
		AmountDelta:        m.AmountDelta.String(),
		Reason:             m.Reason,
		RefOrderID:         m.RefOrderID,
		InvoiceID:          m.InvoiceID,
		ReversedMovementID: m.ReversedMovementID,
		IsReversed:         m.IsReversed,
		CreatedAt:          m.CreatedAt.UnixMilli(),
	}
}

type Result struct {
	BusinessUnit models.BusinessUnit `json:"business_unit"`
	Format       string              `json:"format"`
	Rows         int                 `json:"rows"`
	Location     string              `json:"location"`
}

// Exporter writes a business unit's ledger to a local file or an S3 object.
type Exporter struct {
	store    repositories.Store
	factory  cloudwriter.CloudWriterFactory
	basePath string
	logger   *zap.Logger
	now      func() time.Time
}

// NewExporter builds an exporter. factory may be nil when only local
// destinations are used.
func NewExporter(store repositories.Store, factory cloudwriter.CloudWriterFactory, basePath string, logger *zap.Logger) *Exporter {
	return &Exporter{
		store:    store,
		factory:  factory,
		basePath: basePath,
		logger:   logger.Named("export"),
		now:      time.Now,
	}
}

// ExportLedger writes every movement of the business unit, oldest first.
// destination is a local path, an s3://bucket/key URL, or empty for a
// timestamped file under the output path.
func (e *Exporter) ExportLedger(ctx context.Context, businessUnit models.BusinessUnit, format, destination string) (*Result, error) {
	if !businessUnit.Valid() {
		return nil, models.ErrInvalidBusinessUnit
	}
	format = strings.ToLower(strings.TrimSpace(format))
	if format != FormatParquet && format != FormatCSV {
		return nil, fmt.Errorf("unsupported export format %q", format)
	}

	var movements []*models.MovementWithIngredient
	err := e.store.WithTx(ctx, func(ctx context.Context, tx repositories.Tx) error {
		var err error
		movements, err = tx.Movements().ListByBusinessUnit(ctx, businessUnit, maxExportRows)
		return err
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(movements, func(i, j int) bool { return movements[i].Seq < movements[j].Seq })

	rows := make([]ledgerRow, 0, len(movements))
	for _, m := range movements {
		rows = append(rows, toRow(m, businessUnit))
	}

	if destination == "" {
		name := fmt.Sprintf("ledger-%s.%s", e.now().UTC().Format("20060102-150405"), format)
		destination = filepath.Join(e.basePath, string(businessUnit), name)
	}

	if strings.HasPrefix(destination, "s3://") {
		err = e.writeS3(ctx, destination, format, rows)
	} else {
		err = e.writeLocal(destination, format, rows)
	}
	if err != nil {
		return nil, err
	}

	e.logger.Info("ledger exported",
		zap.String("business_unit", string(businessUnit)),
		zap.String("format", format),
		zap.Int("rows", len(rows)),
		zap.String("location", destination),
	)
	return &Result{BusinessUnit: businessUnit, Format: format, Rows: len(rows), Location: destination}, nil
}

func (e *Exporter) writeLocal(path, format string, rows []ledgerRow) error {
	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return err
	}
	if format == FormatParquet {
		fw, err := local.NewLocalFileWriter(path)
		if err != nil {
			return fmt.Errorf("failed to create local file writer: %w", err)
		}
		return writeParquet(fw, rows)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := writeCSV(f, rows); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (e *Exporter) writeS3(ctx context.Context, destination, format string, rows []ledgerRow) error {
	if e.factory == nil {
		return fmt.Errorf("cloud storage is not configured")
	}
	u, err := url.Parse(destination)
	if err != nil {
		return fmt.Errorf("invalid destination %q: %w", destination, err)
	}
	key := strings.TrimPrefix(u.Path, "/")
	if u.Host == "" || key == "" {
		return fmt.Errorf("destination %q must look like s3://bucket/key", destination)
	}

	cw, err := e.factory.NewWriter(ctx, u.Host, key)
	if err != nil {
		return fmt.Errorf("failed to create cloud file writer: %w", err)
	}
	if s3w, ok := cw.(*cloudwriter.S3Writer); ok && format == FormatCSV {
		s3w.SetContentType("text/csv")
	}
	if format == FormatParquet {
		return writeParquet(cloudwriter.NewParquetFile(cw), rows)
	}
	if err := writeCSV(cw, rows); err != nil {
		return err
	}
	return cw.Close()
}

func writeParquet(fw source.ParquetFile, rows []ledgerRow) error {
	pw, err := writer.NewParquetWriter(fw, new(ledgerRow), 4)
	if err != nil {
		fw.Close()
		return fmt.Errorf("failed to create ParquetWriter: %w", err)
	}
	for _, row := range rows {
		if err := pw.Write(row); err != nil {
			fw.Close()
			return fmt.Errorf("failed to write row %d: %w", row.Seq, err)
		}
	}
	if err := pw.WriteStop(); err != nil {
		fw.Close()
		return err
	}
	return fw.Close()
}

func writeCSV(w io.Writer, rows []ledgerRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, row := range rows {
		if err := cw.Write(row.record()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
