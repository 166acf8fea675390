package alerts

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/chrisdamba/backoffice/internal/models"
	"github.com/chrisdamba/backoffice/internal/repositories"
	"go.uber.org/zap"
)

// Producer publishes one message to a topic.
type Producer interface {
	WriteMessage(topic string, msg []byte) error
	Close() error
}

// Feed exposes the stock alert events written by inventory consumption.
type Feed struct {
	store    repositories.Store
	producer Producer
	topic    string
	logger   *zap.Logger
	now      func() time.Time
}

// NewFeed builds a feed. producer may be nil when the feed is only read.
func NewFeed(store repositories.Store, producer Producer, topic string, logger *zap.Logger) *Feed {
	return &Feed{
		store:    store,
		producer: producer,
		topic:    topic,
		logger:   logger.Named("alerts"),
		now:      time.Now,
	}
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return models.DefaultAlertsLimit
	}
	if limit > models.MaxAlertsLimit {
		return models.MaxAlertsLimit
	}
	return limit
}

// ListUnprocessed returns pending events, oldest first.
func (f *Feed) ListUnprocessed(ctx context.Context, limit int) ([]*models.StockAlertEvent, error) {
	var events []*models.StockAlertEvent
	err := f.store.WithTx(ctx, func(ctx context.Context, tx repositories.Tx) error {
		var err error
		events, err = tx.Alerts().ListUnprocessed(ctx, clampLimit(limit))
		return err
	})
	if err != nil {
		return nil, err
	}
	if events == nil {
		events = []*models.StockAlertEvent{}
	}
	return events, nil
}

func (f *Feed) MarkProcessed(ctx context.Context, id string) (*models.StockAlertEvent, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, models.ErrInvalidID
	}
	var event *models.StockAlertEvent
	err := f.store.WithTx(ctx, func(ctx context.Context, tx repositories.Tx) error {
		var err error
		event, err = tx.Alerts().MarkProcessed(ctx, id, f.now())
		return err
	})
	if err != nil {
		return nil, err
	}
	f.logger.Debug("alert processed", zap.String("alert_id", id))
	return event, nil
}

// RelayResult counts what one relay run did.
type RelayResult struct {
	Published int `json:"published"`
	Pending   int `json:"pending"`
}

// Relay publishes unprocessed events as JSON and marks each one processed
// after its send succeeds. The first failed send ends the run; that event and
// the ones after it stay pending for the next run.
func (f *Feed) Relay(ctx context.Context, limit int) (*RelayResult, error) {
	if f.producer == nil {
		return nil, fmt.Errorf("alert relay has no producer")
	}
	events, err := f.ListUnprocessed(ctx, limit)
	if err != nil {
		return nil, err
	}

	result := &RelayResult{Pending: len(events)}
	for _, event := range events {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		msg, err := json.Marshal(event)
		if err != nil {
			return result, fmt.Errorf("encode alert %s: %w", event.ID, err)
		}
		if err := f.producer.WriteMessage(f.topic, msg); err != nil {
			f.logger.Warn("alert relay stopped",
				zap.String("alert_id", event.ID),
				zap.Int("published", result.Published),
				zap.Error(err),
			)
			return result, fmt.Errorf("publish alert %s: %w", event.ID, err)
		}
		if _, err := f.MarkProcessed(ctx, event.ID); err != nil {
			return result, err
		}
		result.Published++
		result.Pending--
	}

	f.logger.Info("alerts relayed",
		zap.String("topic", f.topic),
		zap.Int("published", result.Published),
	)
	return result, nil
}
