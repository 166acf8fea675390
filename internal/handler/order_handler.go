package handler

import (
	"net/http"

	"github.com/chrisdamba/backoffice/internal/models"
	"github.com/chrisdamba/backoffice/internal/orders"
	"go.uber.org/zap"
)

type OrderHandler struct {
	orders *orders.Coordinator
	logger *zap.Logger
}

func NewOrderHandler(coordinator *orders.Coordinator, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{orders: coordinator, logger: logger}
}

type finalizeRequest struct {
	ExternalRef string `json:"external_ref"`
}

type webhookFailedRequest struct {
	Error string `json:"error"`
}

type zReportRequest struct {
	BusinessUnit models.BusinessUnit `json:"business_unit"`
	Day          string              `json:"day"`
}

// PlaceOrder persists the cart and submits it. A webhook failure still
// answers 201: the order exists and can be retried.
func (h *OrderHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req models.CreateOrderRequest
	if err := decode(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	result, err := h.orders.PlaceOrder(r.Context(), req, userID(r))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeOK(w, http.StatusCreated, "submission", result)
}

func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	bu, err := businessUnitParam(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	list, err := h.orders.ListRecentOrders(r.Context(), bu, intParam(r, "limit", models.DefaultOrdersLimit))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if list == nil {
		list = []*models.Order{}
	}
	writeOK(w, http.StatusOK, "orders", list)
}

func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	order, err := h.orders.GetOrder(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeOK(w, http.StatusOK, "order", order)
}

func (h *OrderHandler) Retry(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	result, err := h.orders.Retry(r.Context(), id, userID(r))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeOK(w, http.StatusOK, "submission", result)
}

func (h *OrderHandler) Finalize(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	var req finalizeRequest
	if err := decode(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	ticket, err := h.orders.FinalizeAfterWebhookSuccess(r.Context(), id, req.ExternalRef)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeOK(w, http.StatusOK, "ticket", ticket)
}

func (h *OrderHandler) MarkWebhookFailed(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	var req webhookFailedRequest
	if err := decode(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	order, err := h.orders.MarkWebhookFailed(r.Context(), id, req.Error)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeOK(w, http.StatusOK, "order", order)
}

func (h *OrderHandler) ApplyInventory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	result, err := h.orders.ApplyOrderInventoryConsumption(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeOK(w, http.StatusOK, "inventory", result)
}

func (h *OrderHandler) GenerateZReport(w http.ResponseWriter, r *http.Request) {
	var req zReportRequest
	if err := decode(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	report, err := h.orders.GenerateZReport(r.Context(), req.BusinessUnit, req.Day)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeOK(w, http.StatusOK, "report", report)
}
