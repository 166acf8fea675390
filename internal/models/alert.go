package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type StockAlertEvent struct {
	ID             string          `json:"id"`
	IngredientID   string          `json:"ingredient_id"`
	IngredientName string          `json:"ingredient_name"`
	BusinessUnit   BusinessUnit    `json:"business_unit"`
	Status         StockStatus     `json:"status"`
	Quantity       decimal.Decimal `json:"quantity"`
	MinQuantity    decimal.Decimal `json:"min_quantity"`
	RefOrderID     string          `json:"ref_order_id,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	ProcessedAt    *time.Time      `json:"processed_at"`
}
