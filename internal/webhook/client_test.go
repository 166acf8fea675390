package webhook

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/chrisdamba/backoffice/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func testPayload() models.WebhookPayload {
	notes := "no onions"
	return models.WebhookPayload{
		OrderID:      "order-1",
		BusinessUnit: models.BusinessUnitRestaurant,
		Items: []models.WebhookItem{{
			ItemType:     models.ItemTypeMenu,
			ItemID:       "menu-1",
			NameSnapshot: "Pizza",
			Qty:          2,
			UnitPriceTND: decimal.NewFromInt(12),
			LineTotalTND: decimal.NewFromInt(24),
		}},
		TotalTND:          decimal.NewFromInt(24),
		TableNumber:       "T4",
		Notes:             &notes,
		TriggeredByUserID: "user-1",
	}
}

func newTestClient(t *testing.T, url string, timeout time.Duration) *Client {
	t.Helper()
	c := NewClient(models.WebhookConfig{URL: url, Timeout: timeout}, zaptest.NewLogger(t))
	c.now = func() time.Time { return time.UnixMilli(1700000000000) }
	return c
}

func TestSendOrderPostsPayload(t *testing.T) {
	var got map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"executionId": 8812}`))
	}))
	defer srv.Close()

	res, err := newTestClient(t, srv.URL, time.Second).SendOrder(context.Background(), testPayload())
	require.NoError(t, err)
	assert.Equal(t, "8812", res.ExternalRef)
	assert.Equal(t, http.StatusOK, res.StatusCode)

	assert.Equal(t, "order-1", got["order_id"])
	assert.Equal(t, "jojo-admin", got["source"])
	assert.Equal(t, "user-1", got["triggered_by_user_id"])
	assert.Equal(t, "T4", got["table_number"])
	assert.Equal(t, "no onions", got["notes"])
	items := got["items"].([]interface{})
	require.Len(t, items, 1)
	assert.Equal(t, "menu-1", items[0].(map[string]interface{})["item_id"])
}

func TestSendOrderFailures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{"error field", http.StatusBadRequest, `{"error":"kitchen closed"}`, "kitchen closed"},
		{"no error field", http.StatusInternalServerError, `{"message":"x"}`, "webhook failed with 500"},
		{"non json", http.StatusBadGateway, `upstream down`, "webhook failed with 502"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := newTestClient(t, srv.URL, time.Second).SendOrder(context.Background(), testPayload())
			require.ErrorIs(t, err, models.ErrWebhookFailed)
			assert.Equal(t, tt.wantMsg, err.Error())
			assert.Equal(t, models.KindExternalDependency, models.KindOf(err))
		})
	}
}

func TestSendOrderTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	_, err := newTestClient(t, srv.URL, 50*time.Millisecond).SendOrder(context.Background(), testPayload())
	assert.ErrorIs(t, err, models.ErrWebhookFailed)
}

func TestSendOrderNotConfigured(t *testing.T) {
	_, err := newTestClient(t, "", time.Second).SendOrder(context.Background(), testPayload())
	assert.ErrorIs(t, err, models.ErrWebhookNotConfigured)
}

func TestSendOrderFallbackRef(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	res, err := newTestClient(t, srv.URL, time.Second).SendOrder(context.Background(), testPayload())
	require.NoError(t, err)
	assert.Equal(t, "n8n-1700000000000", res.ExternalRef)
	assert.Nil(t, res.Response)
}

func TestInferExternalRef(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"external_ref wins", `{"external_ref":" ext-1 ","id":"id-1"}`, "ext-1"},
		{"reference", `{"reference":"ref-1"}`, "ref-1"},
		{"numeric id", `{"id":42}`, "42"},
		{"execution id", `{"executionId":"exec-9"}`, "exec-9"},
		{"blank string falls back", `{"external_ref":"  ","id":"id-1"}`, "fallback"},
		{"null skipped", `{"external_ref":null,"id":"id-1"}`, "id-1"},
		{"array", `[1,2]`, "fallback"},
		{"raw text", `not json`, "fallback"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InferExternalRef(parseBody([]byte(tt.body)), "fallback"))
		})
	}
}
