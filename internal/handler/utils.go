package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/chrisdamba/backoffice/internal/models"
	"go.uber.org/zap"
)

const userHeader = "X-User-ID"

// StatusFor maps an error to the HTTP status it is reported with.
func StatusFor(err error) int {
	switch models.KindOf(err) {
	case models.KindValidation:
		return http.StatusBadRequest
	case models.KindNotFound:
		return http.StatusNotFound
	case models.KindConflict:
		return http.StatusConflict
	case models.KindExternalDependency:
		return http.StatusBadGateway
	case models.KindConsistency:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// writeJSON reports encode failures to the global logger at debug level.
func writeJSON(w http.ResponseWriter, status int, body map[string]interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		zap.L().Debug("failed to encode response", zap.Int("status", status), zap.Error(err))
	}
}

func writeOK(w http.ResponseWriter, status int, key string, value interface{}) {
	body := map[string]interface{}{"ok": true}
	if key != "" {
		body[key] = value
	}
	writeJSON(w, status, body)
}

func writeError(w http.ResponseWriter, logger *zap.Logger, err error) {
	status := StatusFor(err)
	body := map[string]interface{}{"ok": false, "error": err.Error()}
	var domainErr *models.Error
	if errors.As(err, &domainErr) {
		body["code"] = domainErr.Code
	}
	if status == http.StatusInternalServerError {
		logger.Error("request failed", zap.Error(err))
		body["error"] = "internal error"
	}
	writeJSON(w, status, body)
}

func decode(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return models.ErrInvalidBody
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return models.ErrInvalidBody.WithMessage("request body is empty")
		}
		return models.ErrInvalidBody.WithMessage("invalid JSON body: %v", err)
	}
	return nil
}

func userID(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get(userHeader))
}

func businessUnitParam(r *http.Request) (models.BusinessUnit, error) {
	bu := models.BusinessUnit(strings.TrimSpace(r.URL.Query().Get("business_unit")))
	if !bu.Valid() {
		return "", models.ErrInvalidBusinessUnit
	}
	return bu, nil
}

// intParam returns def when the parameter is absent or not an integer.
func intParam(r *http.Request, name string, def int) int {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

func pathID(r *http.Request) (string, error) {
	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		return "", models.ErrInvalidID
	}
	return id, nil
}
