package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// InventoryMovement is one ledger entry. Entries are never edited; the only
// change after insert is IsReversed, set when a REVERSAL compensates it.
type InventoryMovement struct {
	ID                 string          `json:"id"`
	Seq                int64           `json:"seq"`
	IngredientID       string          `json:"ingredient_id"`
	MovementType       MovementType    `json:"movement_type"`
	QtyChange          decimal.Decimal `json:"qty_change"`
	AmountDelta        decimal.Decimal `json:"amount_tnd_delta"`
	Reason             string          `json:"reason,omitempty"`
	RefOrderID         string          `json:"ref_order_id,omitempty"`
	InvoiceID          string          `json:"invoice_id,omitempty"`
	ReversedMovementID string          `json:"reversed_movement_id,omitempty"`
	IsReversed         bool            `json:"is_reversed"`
	BusinessUnit       BusinessUnit    `json:"business_unit"`
	CreatedAt          time.Time       `json:"created_at"`
}

type MovementWithIngredient struct {
	InventoryMovement
	IngredientName string `json:"ingredient_name"`
}

type MovementRequest struct {
	IngredientID       string          `json:"ingredient_id"`
	Type               MovementType    `json:"movement_type"`
	QtyDelta           decimal.Decimal `json:"qty_delta"`
	AmountDelta        decimal.Decimal `json:"amount_delta"`
	Reason             string          `json:"reason,omitempty"`
	RefOrderID         string          `json:"ref_order_id,omitempty"`
	InvoiceID          string          `json:"invoice_id,omitempty"`
	ReversedMovementID string          `json:"-"`
}

type RestockResult struct {
	IngredientID    string          `json:"ingredient_id"`
	MovementID      string          `json:"movement_id"`
	NewQuantity     decimal.Decimal `json:"new_quantity"`
	NewPricePerUnit decimal.Decimal `json:"new_price_per_unit"`
	NewTotalValue   decimal.Decimal `json:"new_total_value"`
	Status          StockStatus     `json:"status"`
}

type UndoResult struct {
	MovementID    string          `json:"movement_id"`
	ReversalID    string          `json:"reversal_id"`
	IngredientID  string          `json:"ingredient_id"`
	NewQuantity   decimal.Decimal `json:"new_quantity"`
	NewTotalValue decimal.Decimal `json:"new_total_value"`
}

// LedgerDrift describes an ingredient whose materialized snapshot disagrees
// with a replay of its ledger.
type LedgerDrift struct {
	IngredientID     string          `json:"ingredient_id"`
	IngredientName   string          `json:"ingredient_name"`
	SnapshotQuantity decimal.Decimal `json:"snapshot_quantity"`
	LedgerQuantity   decimal.Decimal `json:"ledger_quantity"`
	SnapshotValue    decimal.Decimal `json:"snapshot_value"`
	LedgerValue      decimal.Decimal `json:"ledger_value"`
}
