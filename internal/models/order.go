package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Order struct {
	ID               string          `json:"id"`
	BusinessUnit     BusinessUnit    `json:"business_unit"`
	TableNumber      string          `json:"table_number"`
	Status           OrderStatus     `json:"status"`
	TotalTND         decimal.Decimal `json:"total_tnd"`
	Notes            string          `json:"notes,omitempty"`
	ExternalRef      string          `json:"external_ref,omitempty"`
	WebhookError     string          `json:"webhook_error,omitempty"`
	InventoryApplied bool            `json:"inventory_applied"`
	Items            []OrderItem     `json:"order_items"`
	Ticket           *Ticket         `json:"ticket,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// OrderItem snapshots the catalog entry at order time. ItemID may be empty for
// lines recorded before catalog identities were tracked.
type OrderItem struct {
	ID           string          `json:"id"`
	OrderID      string          `json:"order_id"`
	Position     int             `json:"position"`
	ItemType     ItemType        `json:"item_type"`
	ItemID       string          `json:"item_id,omitempty"`
	NameSnapshot string          `json:"name_snapshot"`
	UnitPriceTND decimal.Decimal `json:"unit_price_tnd"`
	Qty          int             `json:"qty"`
	LineTotalTND decimal.Decimal `json:"line_total_tnd"`
}

type CartItem struct {
	ItemType     ItemType        `json:"item_type"`
	ItemID       string          `json:"item_id"`
	NameSnapshot string          `json:"name_snapshot"`
	UnitPriceTND decimal.Decimal `json:"unit_price_tnd"`
	Qty          int             `json:"qty"`
}

type CreateOrderRequest struct {
	BusinessUnit BusinessUnit `json:"business_unit"`
	TableNumber  string       `json:"table_number"`
	Notes        string       `json:"notes"`
	Items        []CartItem   `json:"items"`
}

type Ticket struct {
	ID           string       `json:"id"`
	OrderID      string       `json:"order_id"`
	BusinessUnit BusinessUnit `json:"business_unit"`
	TicketNumber int64        `json:"ticket_number"`
	Content      string       `json:"content"`
	CreatedAt    time.Time    `json:"created_at"`
}

type ZReport struct {
	ID              string          `json:"id"`
	BusinessUnit    BusinessUnit    `json:"business_unit"`
	ReportDate      string          `json:"report_date"`
	TotalOrders     int             `json:"total_orders"`
	TotalRevenueTND decimal.Decimal `json:"total_revenue_tnd"`
	GeneratedAt     time.Time       `json:"generated_at"`
}

// WebhookItem and WebhookPayload are the body posted to the order automation endpoint.
type WebhookItem struct {
	ItemType     ItemType        `json:"item_type"`
	ItemID       string          `json:"item_id"`
	NameSnapshot string          `json:"name_snapshot"`
	Qty          int             `json:"qty"`
	UnitPriceTND decimal.Decimal `json:"unit_price_tnd"`
	LineTotalTND decimal.Decimal `json:"line_total_tnd"`
}

type WebhookPayload struct {
	OrderID           string          `json:"order_id"`
	BusinessUnit      BusinessUnit    `json:"business_unit"`
	Items             []WebhookItem   `json:"items"`
	TotalTND          decimal.Decimal `json:"total_tnd"`
	TableNumber       string          `json:"table_number"`
	Notes             *string         `json:"notes"`
	Source            string          `json:"source"`
	TriggeredByUserID string          `json:"triggered_by_user_id"`
}

type IngredientConsumption struct {
	IngredientID     string          `json:"ingredient_id"`
	IngredientName   string          `json:"ingredient_name"`
	RequiredQuantity decimal.Decimal `json:"required_quantity"`
	BeforeQuantity   decimal.Decimal `json:"before_quantity"`
	AfterQuantity    decimal.Decimal `json:"after_quantity"`
	Shortfall        decimal.Decimal `json:"shortfall"`
	AlertGenerated   bool            `json:"alert_generated"`
}

type ConsumptionResult struct {
	OrderID         string                  `json:"order_id"`
	AlreadyApplied  bool                    `json:"already_applied"`
	AlertsGenerated int                     `json:"alerts_generated"`
	Ingredients     []IngredientConsumption `json:"ingredients"`
}

// SubmissionResult reports one confirm-and-send attempt. A webhook failure is
// recorded on the order and reported here rather than returned as an error;
// InventoryError is set when the order was confirmed but stock bookkeeping
// did not complete.
type SubmissionResult struct {
	OrderID        string             `json:"order_id"`
	Status         OrderStatus        `json:"status"`
	ExternalRef    string             `json:"external_ref,omitempty"`
	WebhookError   string             `json:"webhook_error,omitempty"`
	Ticket         *Ticket            `json:"ticket,omitempty"`
	Consumption    *ConsumptionResult `json:"inventory,omitempty"`
	InventoryError string             `json:"inventory_error,omitempty"`
}
