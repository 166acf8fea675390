package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type AuditAction string

const (
	AuditCreate AuditAction = "CREATE"
	AuditUpdate AuditAction = "UPDATE"
	AuditDelete AuditAction = "DELETE"
)

// StockAudit records who changed an ingredient's metadata and when. Stock
// quantities are explained by the ledger; audits cover create, edit and
// delete.
type StockAudit struct {
	ID             string                 `json:"id"`
	BusinessUnit   BusinessUnit           `json:"business_unit"`
	IngredientID   string                 `json:"ingredient_id"`
	IngredientName string                 `json:"ingredient_name"`
	ActionType     AuditAction            `json:"action_type"`
	QtyChange      decimal.Decimal        `json:"qty_change"`
	QtyAfter       decimal.Decimal        `json:"qty_after"`
	SupplierInfo   map[string]interface{} `json:"supplier_info,omitempty"`
	UserID         string                 `json:"user_id,omitempty"`
	CreatedAt      time.Time              `json:"created_at"`
}
