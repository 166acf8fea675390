package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type SupplierInvoice struct {
	ID            string          `json:"id"`
	SupplierName  string          `json:"supplier_name"`
	SupplierPhone string          `json:"supplier_phone"`
	InvoiceNumber string          `json:"invoice_number"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	DateReceived  string          `json:"date_received"`
	FileURL       string          `json:"file_url,omitempty"`
	BusinessUnit  BusinessUnit    `json:"business_unit"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

type InvoiceInput struct {
	SupplierName  string          `json:"supplier_name"`
	SupplierPhone string          `json:"supplier_phone"`
	InvoiceNumber string          `json:"invoice_number"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	DateReceived  string          `json:"date_received"`
	BusinessUnit  BusinessUnit    `json:"business_unit"`
}
