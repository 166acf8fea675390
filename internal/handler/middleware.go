package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/chrisdamba/backoffice/internal/models"
	"go.uber.org/zap"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Logging logs one line per request.
func Logging(logger *zap.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
			zap.String("user_id", userID(r)),
		)
	})
}

func Recovery(logger *zap.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if p := recover(); p != nil {
				logger.Error("panic recovered",
					zap.Any("panic", p),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Stack("stack"),
				)
				writeJSON(w, http.StatusInternalServerError, map[string]interface{}{"ok": false, "error": "internal error"})
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// RequireUser rejects API calls that carry no caller identity and puts the
// identity on the request context for audit entries. The identity provider in
// front of the service sets the header.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := userID(r)
		if strings.HasPrefix(r.URL.Path, "/api/") && id == "" {
			writeJSON(w, http.StatusUnauthorized, map[string]interface{}{"ok": false, "error": "Unauthorized"})
			return
		}
		if id != "" {
			r = r.WithContext(models.WithUserID(r.Context(), id))
		}
		next.ServeHTTP(w, r)
	})
}
