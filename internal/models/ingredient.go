package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Ingredient struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Unit          string          `json:"unit"`
	Quantity      decimal.Decimal `json:"quantity"`
	PricePerUnit  decimal.Decimal `json:"price_per_unit"`
	MinQuantity   decimal.Decimal `json:"min_quantity"`
	SupplierPhone string          `json:"supplier_phone"`
	BusinessUnit  BusinessUnit    `json:"business_unit"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	// DeletedAt is set when the ingredient is retired. The row and its ledger
	// stay behind; repositories stop returning it.
	DeletedAt *time.Time `json:"-"`
}

// IngredientWithStatus is the read model exposed to the admin screens.
type IngredientWithStatus struct {
	Ingredient
	TotalValue     decimal.Decimal `json:"total_value"`
	ComputedStatus StockStatus     `json:"computed_status"`
}

type IngredientInput struct {
	Name          string          `json:"name"`
	Unit          string          `json:"unit"`
	MinQuantity   decimal.Decimal `json:"min_quantity"`
	SupplierPhone string          `json:"supplier_phone"`
	BusinessUnit  BusinessUnit    `json:"business_unit"`
}

// IngredientUpdate carries a partial update. Quantity is accepted only while
// the ingredient has no ledger entries.
type IngredientUpdate struct {
	Name          *string          `json:"name,omitempty"`
	Unit          *string          `json:"unit,omitempty"`
	MinQuantity   *decimal.Decimal `json:"min_quantity,omitempty"`
	SupplierPhone *string          `json:"supplier_phone,omitempty"`
	Quantity      *decimal.Decimal `json:"quantity,omitempty"`
}
