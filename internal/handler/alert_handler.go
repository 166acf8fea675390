package handler

import (
	"net/http"

	"github.com/chrisdamba/backoffice/internal/alerts"
	"github.com/chrisdamba/backoffice/internal/models"
	"go.uber.org/zap"
)

type AlertHandler struct {
	feed   *alerts.Feed
	logger *zap.Logger
}

func NewAlertHandler(feed *alerts.Feed, logger *zap.Logger) *AlertHandler {
	return &AlertHandler{feed: feed, logger: logger}
}

// ListUnprocessed clamps an explicit limit to [1, 500]; a missing or
// malformed one means 100.
func (h *AlertHandler) ListUnprocessed(w http.ResponseWriter, r *http.Request) {
	limit := intParam(r, "limit", models.DefaultAlertsLimit)
	if limit < 1 {
		limit = 1
	}
	events, err := h.feed.ListUnprocessed(r.Context(), limit)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeOK(w, http.StatusOK, "events", events)
}

func (h *AlertHandler) MarkProcessed(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	event, err := h.feed.MarkProcessed(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeOK(w, http.StatusOK, "event", event)
}
