package orders

import (
	"context"
	"time"

	"github.com/chrisdamba/backoffice/internal/models"
	"github.com/chrisdamba/backoffice/internal/repositories"
	"github.com/lucsky/cuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const dayLayout = "2006-01-02"

// GenerateZReport totals the submitted orders of a business unit created on
// day, cut in the configured time zone. Regenerating overwrites the stored
// report for that day.
func (c *Coordinator) GenerateZReport(ctx context.Context, businessUnit models.BusinessUnit, day string) (*models.ZReport, error) {
	if !businessUnit.Valid() {
		return nil, models.ErrInvalidBusinessUnit
	}
	from, err := time.ParseInLocation(dayLayout, day, c.opts.Location)
	if err != nil {
		return nil, models.ErrInvalidDay
	}
	to := from.AddDate(0, 0, 1)

	report := &models.ZReport{
		BusinessUnit: businessUnit,
		ReportDate:   from.Format(dayLayout),
	}
	err = c.store.WithTx(ctx, func(ctx context.Context, tx repositories.Tx) error {
		orders, err := tx.Orders().ListSubmittedBetween(ctx, businessUnit, from, to)
		if err != nil {
			return err
		}
		report.ID = cuid.New()
		report.TotalOrders = len(orders)
		report.TotalRevenueTND = decimal.Zero
		for _, o := range orders {
			report.TotalRevenueTND = report.TotalRevenueTND.Add(o.TotalTND)
		}
		report.GeneratedAt = c.now()
		return tx.Reports().Upsert(ctx, report)
	})
	if err != nil {
		return nil, err
	}

	c.logger.Info("z report generated",
		zap.String("business_unit", string(businessUnit)),
		zap.String("day", report.ReportDate),
		zap.Int("orders", report.TotalOrders),
		zap.String("revenue_tnd", report.TotalRevenueTND.String()),
	)
	return report, nil
}
