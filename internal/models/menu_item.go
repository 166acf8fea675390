package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type MenuItem struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	Price        decimal.Decimal `json:"price"`
	Available    bool            `json:"available"`
	BusinessUnit BusinessUnit    `json:"business_unit"`
	CreatedAt    time.Time       `json:"created_at"`
}

type Deal struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	Price        decimal.Decimal `json:"price"`
	Active       bool            `json:"active"`
	BusinessUnit BusinessUnit    `json:"business_unit"`
	Items        []DealItem      `json:"deal_items"`
	CreatedAt    time.Time       `json:"created_at"`
}

// DealItem is one constituent of a deal; a deal sold once consumes Quantity
// units of the menu item.
type DealItem struct {
	DealID     string `json:"deal_id"`
	MenuItemID string `json:"menu_item_id"`
	Quantity   int    `json:"quantity"`
}

// RecipeLine maps a menu item to the quantity of one ingredient consumed per
// unit sold. One line per (menu item, ingredient) pair.
type RecipeLine struct {
	MenuItemID   string          `json:"menu_item_id"`
	IngredientID string          `json:"ingredient_id"`
	Quantity     decimal.Decimal `json:"quantity"`
	BusinessUnit BusinessUnit    `json:"business_unit"`
}
