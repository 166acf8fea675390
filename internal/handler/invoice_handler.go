package handler

import (
	"net/http"

	"github.com/chrisdamba/backoffice/internal/invoices"
	"github.com/chrisdamba/backoffice/internal/models"
	"go.uber.org/zap"
)

// maxInvoiceFileBytes caps an uploaded invoice scan.
const maxInvoiceFileBytes = 10 << 20

type InvoiceHandler struct {
	invoices *invoices.Service
	logger   *zap.Logger
}

func NewInvoiceHandler(svc *invoices.Service, logger *zap.Logger) *InvoiceHandler {
	return &InvoiceHandler{invoices: svc, logger: logger}
}

func (h *InvoiceHandler) ListInvoices(w http.ResponseWriter, r *http.Request) {
	bu, err := businessUnitParam(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	list, err := h.invoices.ListInvoices(r.Context(), bu)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeOK(w, http.StatusOK, "invoices", list)
}

func (h *InvoiceHandler) CreateInvoice(w http.ResponseWriter, r *http.Request) {
	var input models.InvoiceInput
	if err := decode(r, &input); err != nil {
		writeError(w, h.logger, err)
		return
	}
	invoice, err := h.invoices.CreateInvoice(r.Context(), input)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeOK(w, http.StatusCreated, "invoice", invoice)
}

func (h *InvoiceHandler) GetInvoice(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	invoice, err := h.invoices.GetInvoice(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeOK(w, http.StatusOK, "invoice", invoice)
}

func (h *InvoiceHandler) DeleteInvoice(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if err := h.invoices.DeleteInvoice(r.Context(), id); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeOK(w, http.StatusOK, "", nil)
}

// UploadFile stores the raw request body as the invoice scan. The file name
// comes from the name query parameter.
func (h *InvoiceHandler) UploadFile(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	body := http.MaxBytesReader(w, r.Body, maxInvoiceFileBytes)
	defer body.Close()

	invoice, err := h.invoices.AttachFile(r.Context(), id, r.URL.Query().Get("name"), body)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeOK(w, http.StatusOK, "invoice", invoice)
}
