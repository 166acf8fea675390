package handler

import (
	"net/http"

	"github.com/chrisdamba/backoffice/internal/inventory"
	"github.com/chrisdamba/backoffice/internal/models"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type InventoryHandler struct {
	inventory *inventory.Service
	logger    *zap.Logger
}

func NewInventoryHandler(svc *inventory.Service, logger *zap.Logger) *InventoryHandler {
	return &InventoryHandler{inventory: svc, logger: logger}
}

type restockRequest struct {
	QtyAdded    decimal.Decimal `json:"qty_added"`
	AmountAdded decimal.Decimal `json:"amount_added"`
	InvoiceID   string          `json:"invoice_id"`
}

type adjustRequest struct {
	TargetQuantity decimal.Decimal `json:"target_quantity"`
	Reason         string          `json:"reason"`
}

func (h *InventoryHandler) ListIngredients(w http.ResponseWriter, r *http.Request) {
	bu, err := businessUnitParam(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	ingredients, err := h.inventory.ListIngredients(r.Context(), bu)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeOK(w, http.StatusOK, "ingredients", ingredients)
}

func (h *InventoryHandler) CreateIngredient(w http.ResponseWriter, r *http.Request) {
	var input models.IngredientInput
	if err := decode(r, &input); err != nil {
		writeError(w, h.logger, err)
		return
	}
	ingredient, err := h.inventory.CreateIngredient(r.Context(), input)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeOK(w, http.StatusCreated, "ingredient", ingredient)
}

func (h *InventoryHandler) GetIngredient(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	ingredient, err := h.inventory.GetIngredient(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeOK(w, http.StatusOK, "ingredient", ingredient)
}

func (h *InventoryHandler) UpdateIngredient(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	var update models.IngredientUpdate
	if err := decode(r, &update); err != nil {
		writeError(w, h.logger, err)
		return
	}
	ingredient, err := h.inventory.UpdateIngredient(r.Context(), id, update)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeOK(w, http.StatusOK, "ingredient", ingredient)
}

func (h *InventoryHandler) DeleteIngredient(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if err := h.inventory.DeleteIngredient(r.Context(), id); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeOK(w, http.StatusOK, "", nil)
}

func (h *InventoryHandler) Restock(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	var req restockRequest
	if err := decode(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	result, err := h.inventory.Restock(r.Context(), id, req.QtyAdded, req.AmountAdded, req.InvoiceID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeOK(w, http.StatusOK, "restock", result)
}

func (h *InventoryHandler) Adjust(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	var req adjustRequest
	if err := decode(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	movement, err := h.inventory.Adjust(r.Context(), id, req.TargetQuantity, req.Reason)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeOK(w, http.StatusOK, "movement", movement)
}

func (h *InventoryHandler) ListIngredientMovements(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	movements, err := h.inventory.ListIngredientMovements(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeOK(w, http.StatusOK, "movements", movements)
}

func (h *InventoryHandler) ListMovements(w http.ResponseWriter, r *http.Request) {
	bu, err := businessUnitParam(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	movements, err := h.inventory.ListMovements(r.Context(), bu, intParam(r, "limit", models.DefaultMovementsLimit))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if movements == nil {
		movements = []*models.MovementWithIngredient{}
	}
	writeOK(w, http.StatusOK, "movements", movements)
}

func (h *InventoryHandler) UndoMovement(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	result, err := h.inventory.UndoMovement(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeOK(w, http.StatusOK, "undo", result)
}

func (h *InventoryHandler) ListAudits(w http.ResponseWriter, r *http.Request) {
	bu, err := businessUnitParam(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	audits, err := h.inventory.ListAudits(r.Context(), bu, intParam(r, "limit", models.DefaultAuditsLimit))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeOK(w, http.StatusOK, "audits", audits)
}
