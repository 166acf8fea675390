package alerts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/chrisdamba/backoffice/internal/alerts/producers"
	"github.com/chrisdamba/backoffice/internal/models"
	"github.com/chrisdamba/backoffice/internal/repositories"
	"github.com/chrisdamba/backoffice/internal/repositories/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const topic = "stock_alert_events"

func seedAlerts(t *testing.T, store repositories.Store, n int) []string {
	t.Helper()
	base := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	ids := make([]string, 0, n)
	err := store.WithTx(context.Background(), func(ctx context.Context, tx repositories.Tx) error {
		for i := 0; i < n; i++ {
			id := fmt.Sprintf("alert-%d", i)
			ids = append(ids, id)
			err := tx.Alerts().Create(ctx, &models.StockAlertEvent{
				ID:             id,
				IngredientID:   "ing-1",
				IngredientName: "Milk",
				BusinessUnit:   models.BusinessUnitCoffee,
				Status:         models.StockStatusLowStock,
				Quantity:       decimal.NewFromInt(2),
				MinQuantity:    decimal.NewFromInt(5),
				CreatedAt:      base.Add(time.Duration(i) * time.Minute),
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)
	return ids
}

func TestListUnprocessedClampsLimit(t *testing.T) {
	store := memory.NewStore()
	feed := NewFeed(store, nil, topic, zaptest.NewLogger(t))
	ids := seedAlerts(t, store, 3)

	events, err := feed.ListUnprocessed(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, ids[0], events[0].ID)

	events, err = feed.ListUnprocessed(context.Background(), 2)
	require.NoError(t, err)
	assert.Len(t, events, 2)

	assert.Equal(t, models.DefaultAlertsLimit, clampLimit(-1))
	assert.Equal(t, models.MaxAlertsLimit, clampLimit(10_000))
	assert.Equal(t, 1, clampLimit(1))
}

func TestMarkProcessed(t *testing.T) {
	store := memory.NewStore()
	feed := NewFeed(store, nil, topic, zaptest.NewLogger(t))
	at := time.Date(2024, 5, 2, 8, 0, 0, 0, time.UTC)
	feed.now = func() time.Time { return at }
	ids := seedAlerts(t, store, 2)
	ctx := context.Background()

	event, err := feed.MarkProcessed(ctx, ids[0])
	require.NoError(t, err)
	require.NotNil(t, event.ProcessedAt)
	assert.True(t, at.Equal(*event.ProcessedAt))

	events, err := feed.ListUnprocessed(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, ids[1], events[0].ID)

	_, err = feed.MarkProcessed(ctx, "nope")
	assert.ErrorIs(t, err, models.ErrAlertNotFound)
	_, err = feed.MarkProcessed(ctx, " ")
	assert.ErrorIs(t, err, models.ErrInvalidID)
}

func TestRelayPublishesToKafka(t *testing.T) {
	store := memory.NewStore()
	logger := zaptest.NewLogger(t)
	mock := mocks.NewSyncProducer(t, nil)
	ids := seedAlerts(t, store, 2)

	for _, id := range ids {
		want := id
		mock.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
			var event models.StockAlertEvent
			if err := json.Unmarshal(val, &event); err != nil {
				return err
			}
			if event.ID != want {
				return fmt.Errorf("got alert %s, want %s", event.ID, want)
			}
			return nil
		})
	}

	feed := NewFeed(store, producers.NewSaramaProducerFrom(mock, logger), topic, logger)
	result, err := feed.Relay(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Published)
	assert.Zero(t, result.Pending)

	events, err := feed.ListUnprocessed(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, events)
	require.NoError(t, mock.Close())
}

func TestRelayStopsAtFirstFailure(t *testing.T) {
	store := memory.NewStore()
	logger := zaptest.NewLogger(t)
	mock := mocks.NewSyncProducer(t, nil)
	ids := seedAlerts(t, store, 3)

	mock.ExpectSendMessageAndSucceed()
	mock.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	feed := NewFeed(store, producers.NewSaramaProducerFrom(mock, logger), topic, logger)
	result, err := feed.Relay(context.Background(), 10)
	require.Error(t, err)
	assert.ErrorIs(t, err, sarama.ErrOutOfBrokers)
	assert.Equal(t, 1, result.Published)
	assert.Equal(t, 2, result.Pending)

	events, err := feed.ListUnprocessed(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, ids[1], events[0].ID)
	assert.Equal(t, ids[2], events[1].ID)
	require.NoError(t, mock.Close())
}

func TestRelayToConsole(t *testing.T) {
	store := memory.NewStore()
	seedAlerts(t, store, 1)
	var buf bytes.Buffer

	feed := NewFeed(store, producers.NewConsoleProducer(&buf), topic, zaptest.NewLogger(t))
	result, err := feed.Relay(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Published)

	line := strings.TrimSuffix(buf.String(), "\n")
	parts := strings.SplitN(line, "\t", 2)
	require.Len(t, parts, 2)
	assert.Equal(t, topic, parts[0])
	assert.Contains(t, parts[1], `"ingredient_name":"Milk"`)
	assert.Contains(t, parts[1], `"status":"low_stock"`)
}

func TestRelayWithoutProducer(t *testing.T) {
	feed := NewFeed(memory.NewStore(), nil, topic, zaptest.NewLogger(t))
	_, err := feed.Relay(context.Background(), 10)
	assert.Error(t, err)
}
