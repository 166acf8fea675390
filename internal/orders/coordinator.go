package orders

import (
	"context"
	"strings"
	"time"

	"github.com/chrisdamba/backoffice/internal/models"
	"github.com/chrisdamba/backoffice/internal/repositories"
	"github.com/chrisdamba/backoffice/internal/webhook"
	"github.com/lucsky/cuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Webhook confirms an order with the external automation endpoint.
type Webhook interface {
	SendOrder(ctx context.Context, payload models.WebhookPayload) (*webhook.Result, error)
}

type Options struct {
	ShopName    string
	TicketScope string
	Location    *time.Location
}

// Coordinator drives an order from PENDING_WEBHOOK to SUBMITTED or
// FAILED_WEBHOOK. Local state changes and the webhook call never share a
// transaction, so a failed call cannot lose a persisted order.
type Coordinator struct {
	store   repositories.Store
	webhook Webhook
	applier *Applier
	opts    Options
	logger  *zap.Logger
	now     func() time.Time
}

func NewCoordinator(store repositories.Store, hook Webhook, opts Options, logger *zap.Logger) *Coordinator {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.TicketScope == "" {
		opts.TicketScope = models.TicketScopeBusinessUnit
	}
	c := &Coordinator{
		store:   store,
		webhook: hook,
		opts:    opts,
		logger:  logger.Named("orders"),
		now:     time.Now,
	}
	c.applier = NewApplier(store, logger)
	return c
}

func (c *Coordinator) CreatePendingOrder(ctx context.Context, req models.CreateOrderRequest) (*models.Order, error) {
	if !req.BusinessUnit.Valid() {
		return nil, models.ErrInvalidBusinessUnit
	}
	table := strings.TrimSpace(req.TableNumber)
	if table == "" {
		return nil, models.ErrEmptyTableNumber
	}
	if len(req.Items) == 0 {
		return nil, models.ErrEmptyOrder
	}

	now := c.now()
	order := &models.Order{
		ID:           cuid.New(),
		BusinessUnit: req.BusinessUnit,
		TableNumber:  table,
		Status:       models.OrderStatusPendingWebhook,
		TotalTND:     decimal.Zero,
		Notes:        strings.TrimSpace(req.Notes),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	for i, cart := range req.Items {
		name := strings.TrimSpace(cart.NameSnapshot)
		switch {
		case !cart.ItemType.Valid():
			return nil, models.ErrInvalidOrderItem.WithMessage("item %d: item type must be 'menu' or 'deal'", i+1)
		case name == "":
			return nil, models.ErrInvalidOrderItem.WithMessage("item %d: name is required", i+1)
		case cart.Qty <= 0:
			return nil, models.ErrInvalidOrderItem.WithMessage("item %d: quantity must be positive", i+1)
		case cart.UnitPriceTND.IsNegative():
			return nil, models.ErrInvalidOrderItem.WithMessage("item %d: price cannot be negative", i+1)
		}
		line := cart.UnitPriceTND.Mul(decimal.NewFromInt(int64(cart.Qty)))
		order.Items = append(order.Items, models.OrderItem{
			ID:           cuid.New(),
			OrderID:      order.ID,
			Position:     i,
			ItemType:     cart.ItemType,
			ItemID:       strings.TrimSpace(cart.ItemID),
			NameSnapshot: name,
			UnitPriceTND: cart.UnitPriceTND,
			Qty:          cart.Qty,
			LineTotalTND: line,
		})
		order.TotalTND = order.TotalTND.Add(line)
	}

	err := c.store.WithTx(ctx, func(ctx context.Context, tx repositories.Tx) error {
		return tx.Orders().Create(ctx, order)
	})
	if err != nil {
		return nil, err
	}

	c.logger.Info("order created",
		zap.String("order_id", order.ID),
		zap.String("business_unit", string(order.BusinessUnit)),
		zap.Int("items", len(order.Items)),
		zap.String("total_tnd", order.TotalTND.String()),
	)
	return order, nil
}

// FinalizeAfterWebhookSuccess marks the order SUBMITTED and issues its
// ticket. Repeating the call with the same reference returns the same
// ticket; tickets are keyed on the order.
func (c *Coordinator) FinalizeAfterWebhookSuccess(ctx context.Context, orderID, externalRef string) (*models.Ticket, error) {
	externalRef = strings.TrimSpace(externalRef)
	if externalRef == "" {
		return nil, models.ErrInvalidExternalRef
	}

	var (
		ticket  *models.Ticket
		created bool
	)
	err := c.store.WithTx(ctx, func(ctx context.Context, tx repositories.Tx) error {
		created = false
		order, err := tx.Orders().GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}

		if order.Status == models.OrderStatusSubmitted {
			if order.ExternalRef != externalRef {
				return models.ErrInvalidTransition.WithMessage(
					"order %s was already submitted with reference %s", order.ID, order.ExternalRef)
			}
			if order.Ticket != nil {
				ticket = order.Ticket
				return nil
			}
		} else {
			now := c.now()
			order.Status = models.OrderStatusSubmitted
			order.ExternalRef = externalRef
			order.WebhookError = ""
			order.UpdatedAt = now
			if err := tx.Orders().UpdateState(ctx, order); err != nil {
				return err
			}
			if order.Ticket != nil {
				ticket = order.Ticket
				return nil
			}
		}

		ticket, err = c.issueTicket(ctx, tx, order)
		created = err == nil
		return err
	})
	if err != nil {
		return nil, err
	}

	if created {
		c.logger.Info("order submitted",
			zap.String("order_id", orderID),
			zap.String("external_ref", externalRef),
			zap.Int64("ticket_number", ticket.TicketNumber),
		)
	}
	return ticket, nil
}

func (c *Coordinator) issueTicket(ctx context.Context, tx repositories.Tx, order *models.Order) (*models.Ticket, error) {
	scope := models.TicketScopeGlobal
	if c.opts.TicketScope == models.TicketScopeBusinessUnit {
		scope = string(order.BusinessUnit)
	}
	number, err := tx.Tickets().NextNumber(ctx, scope)
	if err != nil {
		return nil, err
	}

	now := c.now()
	ticket := &models.Ticket{
		ID:           cuid.New(),
		OrderID:      order.ID,
		BusinessUnit: order.BusinessUnit,
		TicketNumber: number,
		Content:      RenderTicket(c.opts.ShopName, order, number, now.In(c.opts.Location)),
		CreatedAt:    now,
	}
	if err := tx.Tickets().Create(ctx, ticket); err != nil {
		return nil, err
	}
	return ticket, nil
}

// MarkWebhookFailed records a failed confirmation. The order stays
// retryable; a submitted order can no longer fail.
func (c *Coordinator) MarkWebhookFailed(ctx context.Context, orderID, message string) (*models.Order, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		message = models.ErrWebhookFailed.Message
	}

	var order *models.Order
	err := c.store.WithTx(ctx, func(ctx context.Context, tx repositories.Tx) error {
		var err error
		order, err = tx.Orders().GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if order.Status == models.OrderStatusSubmitted {
			return models.ErrInvalidTransition.WithMessage("order %s is already submitted", order.ID)
		}
		order.Status = models.OrderStatusFailedWebhook
		order.WebhookError = message
		order.UpdatedAt = c.now()
		return tx.Orders().UpdateState(ctx, order)
	})
	if err != nil {
		return nil, err
	}

	c.logger.Warn("order webhook failed",
		zap.String("order_id", orderID),
		zap.String("error", message),
	)
	return order, nil
}

// Submit sends a pending or failed order to the webhook and applies the
// outcome. A webhook failure is recorded on the order and reported in the
// result, not returned as an error.
func (c *Coordinator) Submit(ctx context.Context, orderID, triggeredBy string) (*models.SubmissionResult, error) {
	order, err := c.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status == models.OrderStatusSubmitted {
		return nil, models.ErrOrderAlreadySubmitted
	}
	return c.submit(ctx, order, triggeredBy)
}

// Retry resubmits an order that has not been confirmed yet.
func (c *Coordinator) Retry(ctx context.Context, orderID, triggeredBy string) (*models.SubmissionResult, error) {
	order, err := c.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	switch order.Status {
	case models.OrderStatusFailedWebhook, models.OrderStatusPendingWebhook:
	default:
		return nil, models.ErrInvalidTransition.WithMessage("order %s is %s and cannot be retried", order.ID, order.Status)
	}
	return c.submit(ctx, order, triggeredBy)
}

// PlaceOrder persists the order, then submits it. Lines without an item id
// are rejected before anything is stored since they could never be sent.
func (c *Coordinator) PlaceOrder(ctx context.Context, req models.CreateOrderRequest, triggeredBy string) (*models.SubmissionResult, error) {
	for i, cart := range req.Items {
		if strings.TrimSpace(cart.ItemID) == "" {
			return nil, models.ErrMissingItemIdentity.WithMessage("item %d has no item id and cannot be submitted", i+1)
		}
	}
	order, err := c.CreatePendingOrder(ctx, req)
	if err != nil {
		return nil, err
	}
	return c.submit(ctx, order, triggeredBy)
}

func (c *Coordinator) submit(ctx context.Context, order *models.Order, triggeredBy string) (*models.SubmissionResult, error) {
	for _, item := range order.Items {
		if item.ItemID == "" {
			return nil, models.ErrMissingItemIdentity
		}
	}

	result := &models.SubmissionResult{OrderID: order.ID}
	hookResult, hookErr := c.webhook.SendOrder(ctx, buildPayload(order, triggeredBy))
	if hookErr != nil {
		failed, err := c.MarkWebhookFailed(ctx, order.ID, hookErr.Error())
		if err != nil {
			return nil, err
		}
		result.Status = failed.Status
		result.WebhookError = failed.WebhookError
		return result, nil
	}

	ticket, err := c.FinalizeAfterWebhookSuccess(ctx, order.ID, hookResult.ExternalRef)
	if err != nil {
		return nil, err
	}
	result.Status = models.OrderStatusSubmitted
	result.ExternalRef = hookResult.ExternalRef
	result.Ticket = ticket

	consumption, err := c.applier.Apply(ctx, order.ID)
	if err != nil {
		c.logger.Error("inventory consumption failed after submission",
			zap.String("order_id", order.ID),
			zap.Error(err),
		)
		result.InventoryError = err.Error()
		return result, nil
	}
	result.Consumption = consumption
	return result, nil
}

func buildPayload(order *models.Order, triggeredBy string) models.WebhookPayload {
	payload := models.WebhookPayload{
		OrderID:           order.ID,
		BusinessUnit:      order.BusinessUnit,
		TotalTND:          order.TotalTND,
		TableNumber:       order.TableNumber,
		TriggeredByUserID: triggeredBy,
	}
	if order.Notes != "" {
		notes := order.Notes
		payload.Notes = &notes
	}
	for _, item := range order.Items {
		payload.Items = append(payload.Items, models.WebhookItem{
			ItemType:     item.ItemType,
			ItemID:       item.ItemID,
			NameSnapshot: item.NameSnapshot,
			Qty:          item.Qty,
			UnitPriceTND: item.UnitPriceTND,
			LineTotalTND: item.LineTotalTND,
		})
	}
	return payload
}

// ApplyOrderInventoryConsumption books the stock a submitted order used.
func (c *Coordinator) ApplyOrderInventoryConsumption(ctx context.Context, orderID string) (*models.ConsumptionResult, error) {
	return c.applier.Apply(ctx, orderID)
}

func (c *Coordinator) GetOrder(ctx context.Context, orderID string) (*models.Order, error) {
	var order *models.Order
	err := c.store.WithTx(ctx, func(ctx context.Context, tx repositories.Tx) error {
		var err error
		order, err = tx.Orders().Get(ctx, orderID)
		return err
	})
	return order, err
}

func (c *Coordinator) ListRecentOrders(ctx context.Context, businessUnit models.BusinessUnit, limit int) ([]*models.Order, error) {
	if !businessUnit.Valid() {
		return nil, models.ErrInvalidBusinessUnit
	}
	if limit <= 0 {
		limit = models.DefaultOrdersLimit
	}
	var orders []*models.Order
	err := c.store.WithTx(ctx, func(ctx context.Context, tx repositories.Tx) error {
		var err error
		orders, err = tx.Orders().ListRecent(ctx, businessUnit, limit)
		return err
	})
	return orders, err
}
