package models

import (
	"errors"
	"fmt"
)

// Kind classifies an error for callers that need to decide how to surface it.
type Kind string

const (
	KindInternal           Kind = "internal"
	KindValidation         Kind = "validation"
	KindNotFound           Kind = "not_found"
	KindConflict           Kind = "conflict"
	KindExternalDependency Kind = "external_dependency"
	KindConsistency        Kind = "consistency"
)

// Error is a domain error with a stable code. Two errors match under errors.Is
// when their codes are equal, so a sentinel still matches after WithMessage.
type Error struct {
	Kind    Kind
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

// WithMessage returns a copy of e carrying a more specific message.
func (e *Error) WithMessage(format string, args ...interface{}) *Error {
	return &Error{Kind: e.Kind, Code: e.Code, Message: fmt.Sprintf(format, args...)}
}

func newError(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// KindOf reports the Kind of the first *Error in err's chain, KindInternal otherwise.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

var (
	ErrInvalidBusinessUnit = newError(KindValidation, "invalid_business_unit", "business unit must be 'restaurant' or 'coffee'")
	ErrInvalidName         = newError(KindValidation, "invalid_name", "name is required")
	ErrInvalidUnit         = newError(KindValidation, "invalid_unit", "unit is required")
	ErrInvalidThreshold    = newError(KindValidation, "invalid_threshold", "minimum quantity cannot be negative")
	ErrInvalidQuantity     = newError(KindValidation, "invalid_quantity", "quantity must be positive")
	ErrInvalidAmount       = newError(KindValidation, "invalid_amount", "amount cannot be negative")
	ErrInvalidMovementType = newError(KindValidation, "invalid_movement_type", "invalid movement type")
	ErrEmptyTableNumber    = newError(KindValidation, "empty_table_number", "table number is required")
	ErrEmptyOrder          = newError(KindValidation, "empty_order", "order must contain at least one item")
	ErrInvalidOrderItem    = newError(KindValidation, "invalid_order_item", "invalid order item")
	ErrInvalidExternalRef  = newError(KindValidation, "invalid_external_ref", "external reference is required")
	ErrInvalidDay          = newError(KindValidation, "invalid_day", "day must be formatted as YYYY-MM-DD")
	ErrInvalidID           = newError(KindValidation, "invalid_id", "id is required")
	ErrInvalidBody         = newError(KindValidation, "invalid_body", "invalid JSON body")
	ErrInvalidInvoice      = newError(KindValidation, "invalid_invoice", "invalid supplier invoice")
	ErrInvalidFile         = newError(KindValidation, "invalid_file", "file name and content are required")

	ErrIngredientNotFound = newError(KindNotFound, "ingredient_not_found", "ingredient not found")
	ErrMovementNotFound   = newError(KindNotFound, "movement_not_found", "inventory movement not found")
	ErrOrderNotFound      = newError(KindNotFound, "order_not_found", "order not found")
	ErrTicketNotFound     = newError(KindNotFound, "ticket_not_found", "ticket not found")
	ErrAlertNotFound      = newError(KindNotFound, "alert_not_found", "stock alert event not found")
	ErrReportNotFound     = newError(KindNotFound, "report_not_found", "z report not found")
	ErrInvoiceNotFound    = newError(KindNotFound, "invoice_not_found", "supplier invoice not found")

	ErrDuplicateIngredient      = newError(KindConflict, "duplicate_ingredient", "ingredient already exists, use restock to add stock")
	ErrLedgerNotEmpty           = newError(KindConflict, "ledger_not_empty", "cannot delete this ingredient: it has inventory movements in the ledger, set the stock to zero via an adjustment instead")
	ErrQuantityLocked           = newError(KindConflict, "quantity_locked", "quantity can only change through restock, consumption or adjustment once the ledger has entries")
	ErrAlreadyReversed          = newError(KindConflict, "already_reversed", "movement has already been reversed")
	ErrSubsequentMovementsExist = newError(KindConflict, "subsequent_movements_exist", "cannot undo: later movements exist for this ingredient")
	ErrNotUndoable              = newError(KindConflict, "not_undoable", "only restock movements can be undone")
	ErrInvalidTransition        = newError(KindConflict, "invalid_transition", "order cannot make this transition")
	ErrMissingItemIdentity      = newError(KindConflict, "missing_item_identity", "one or more order items are missing identifiers and cannot be resubmitted")
	ErrOrderAlreadySubmitted    = newError(KindConflict, "order_already_submitted", "order has already been submitted")
	ErrDuplicateRecipeLine      = newError(KindConflict, "duplicate_recipe_line", "recipe already contains this ingredient")
	ErrDuplicateInvoice         = newError(KindConflict, "duplicate_invoice", "an invoice with this number already exists for the supplier")
	ErrInvoiceInUse             = newError(KindConflict, "invoice_in_use", "invoice is referenced by restock movements and cannot be deleted")
	ErrWebhookFailed            = newError(KindExternalDependency, "webhook_failed", "order webhook failed")
	ErrWebhookNotConfigured     = newError(KindExternalDependency, "webhook_not_configured", "order webhook url is not configured")
	ErrStorageNotConfigured     = newError(KindExternalDependency, "storage_not_configured", "file storage is not configured")
	ErrUploadFailed             = newError(KindExternalDependency, "upload_failed", "file upload failed")
	ErrInvalidDelta             = newError(KindConsistency, "invalid_delta", "movement would leave the ingredient with an invalid quantity")
	ErrNegativeStockResult      = newError(KindConsistency, "negative_stock_result", "reversal would drive stock below zero")
)
