package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/chrisdamba/backoffice/internal/models"
	"go.uber.org/zap"
)

// Result is a successful webhook exchange.
type Result struct {
	ExternalRef string          `json:"external_ref"`
	StatusCode  int             `json:"status"`
	Response    json.RawMessage `json:"response,omitempty"`
}

// Client posts confirmed orders to the automation endpoint.
type Client struct {
	url        string
	source     string
	timeout    time.Duration
	httpClient *http.Client
	logger     *zap.Logger
	now        func() time.Time
}

func NewClient(config models.WebhookConfig, logger *zap.Logger) *Client {
	source := config.Source
	if source == "" {
		source = models.WebhookSource
	}
	return &Client{
		url:        config.URL,
		source:     source,
		timeout:    config.Timeout,
		httpClient: &http.Client{},
		logger:     logger.Named("webhook"),
		now:        time.Now,
	}
}

// SendOrder posts the payload and returns the external reference the
// endpoint assigned. Any failure, including a timeout, is an
// ErrWebhookFailed carrying the message to store on the order.
func (c *Client) SendOrder(ctx context.Context, payload models.WebhookPayload) (*Result, error) {
	if c.url == "" {
		return nil, models.ErrWebhookNotConfigured
	}
	if payload.Source == "" {
		payload.Source = c.source
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode webhook payload: %w", err)
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := c.now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("webhook request failed", zap.String("order_id", payload.OrderID), zap.Error(err))
		return nil, models.ErrWebhookFailed.WithMessage("%s", err.Error())
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, models.ErrWebhookFailed.WithMessage("failed to read webhook response: %s", err.Error())
	}
	parsed := parseBody(raw)

	c.logger.Info("webhook answered",
		zap.String("order_id", payload.OrderID),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", c.now().Sub(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, models.ErrWebhookFailed.WithMessage("%s", errorMessage(parsed, resp.StatusCode))
	}

	result := &Result{
		ExternalRef: InferExternalRef(parsed, fmt.Sprintf("n8n-%d", c.now().UnixMilli())),
		StatusCode:  resp.StatusCode,
	}
	if parsed != nil {
		result.Response, _ = json.Marshal(parsed)
	}
	return result, nil
}

// parseBody decodes a JSON response; a non-JSON body is wrapped as {"raw": ...}
// and an empty one yields nil.
func parseBody(raw []byte) interface{} {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	var parsed interface{}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return map[string]interface{}{"raw": string(raw)}
	}
	return parsed
}

func errorMessage(parsed interface{}, status int) string {
	if record, ok := parsed.(map[string]interface{}); ok {
		if msg, ok := record["error"].(string); ok {
			return msg
		}
	}
	return fmt.Sprintf("webhook failed with %d", status)
}

var refKeys = []string{"external_ref", "reference", "id", "executionId"}

// InferExternalRef picks the first of external_ref, reference, id and
// executionId present on the response. Only a non-blank string or a number
// is accepted; anything else yields fallback.
func InferExternalRef(parsed interface{}, fallback string) string {
	record, ok := parsed.(map[string]interface{})
	if !ok {
		return fallback
	}
	for _, key := range refKeys {
		value, present := record[key]
		if !present || value == nil {
			continue
		}
		switch v := value.(type) {
		case string:
			if trimmed := strings.TrimSpace(v); trimmed != "" {
				return trimmed
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
		return fallback
	}
	return fallback
}
