package handler

import (
	"net/http"

	"go.uber.org/zap"
)

func NewRouter(
	inventoryHandler *InventoryHandler,
	orderHandler *OrderHandler,
	alertHandler *AlertHandler,
	invoiceHandler *InvoiceHandler,
	logger *zap.Logger,
) http.Handler {
	mux := http.NewServeMux()

	// Inventory routes
	mux.HandleFunc("GET /api/v1/ingredients", inventoryHandler.ListIngredients)
	mux.HandleFunc("POST /api/v1/ingredients", inventoryHandler.CreateIngredient)
	mux.HandleFunc("GET /api/v1/ingredients/{id}", inventoryHandler.GetIngredient)
	mux.HandleFunc("PATCH /api/v1/ingredients/{id}", inventoryHandler.UpdateIngredient)
	mux.HandleFunc("DELETE /api/v1/ingredients/{id}", inventoryHandler.DeleteIngredient)
	mux.HandleFunc("POST /api/v1/ingredients/{id}/restock", inventoryHandler.Restock)
	mux.HandleFunc("POST /api/v1/ingredients/{id}/adjust", inventoryHandler.Adjust)
	mux.HandleFunc("GET /api/v1/ingredients/{id}/movements", inventoryHandler.ListIngredientMovements)
	mux.HandleFunc("GET /api/v1/movements", inventoryHandler.ListMovements)
	mux.HandleFunc("POST /api/v1/movements/{id}/undo", inventoryHandler.UndoMovement)
	mux.HandleFunc("GET /api/v1/stock-audits", inventoryHandler.ListAudits)

	// Supplier invoice routes
	mux.HandleFunc("GET /api/v1/invoices", invoiceHandler.ListInvoices)
	mux.HandleFunc("POST /api/v1/invoices", invoiceHandler.CreateInvoice)
	mux.HandleFunc("GET /api/v1/invoices/{id}", invoiceHandler.GetInvoice)
	mux.HandleFunc("DELETE /api/v1/invoices/{id}", invoiceHandler.DeleteInvoice)
	mux.HandleFunc("PUT /api/v1/invoices/{id}/file", invoiceHandler.UploadFile)

	// Order routes
	mux.HandleFunc("POST /api/v1/orders", orderHandler.PlaceOrder)
	mux.HandleFunc("GET /api/v1/orders", orderHandler.ListOrders)
	mux.HandleFunc("GET /api/v1/orders/{id}", orderHandler.GetOrder)
	mux.HandleFunc("POST /api/v1/orders/{id}/retry", orderHandler.Retry)
	mux.HandleFunc("POST /api/v1/orders/{id}/finalize", orderHandler.Finalize)
	mux.HandleFunc("POST /api/v1/orders/{id}/webhook-failed", orderHandler.MarkWebhookFailed)
	mux.HandleFunc("POST /api/v1/orders/{id}/apply-inventory", orderHandler.ApplyInventory)
	mux.HandleFunc("POST /api/v1/reports/z", orderHandler.GenerateZReport)

	// Stock alert routes
	mux.HandleFunc("GET /api/v1/stock-alert-events", alertHandler.ListUnprocessed)
	mux.HandleFunc("PATCH /api/v1/stock-alert-events/{id}/mark-processed", alertHandler.MarkProcessed)

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeOK(w, http.StatusOK, "status", "up")
	})

	logger = logger.Named("http")
	var handler http.Handler = RequireUser(mux)
	handler = Logging(logger, handler)
	handler = Recovery(logger, handler)
	return handler
}
