package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/GOLDENPLIX/pes-2013-updater/internal/http/middleware"
	"github.com/GOLDENPLIX/pes-2013-updater/internal/logging"
)

// errorResponse is the body of every non-2xx status response.
type errorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"requestId,omitempty"`
}

// writeJSON writes payload with status. Status data changes with every run,
// so responses are never cached.
func writeJSON(w http.ResponseWriter, status int, payload any, logger *slog.Logger) {
	h := w.Header()
	h.Set("Content-Type", "application/json")
	h.Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.Error(logger, "status response not written", err, logging.FieldStatusCode, status)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, message string, logger *slog.Logger) {
	reqID := middleware.RequestIDFromContext(r.Context())
	if reqID == "" {
		reqID = r.Header.Get(middleware.HeaderRequestID)
	}
	if status >= http.StatusInternalServerError {
		logging.Warn(loggerFromContext(r, logger), message, logging.FieldStatusCode, status)
	}
	writeJSON(w, status, errorResponse{Error: message, RequestID: reqID}, logger)
}

func loggerFromContext(r *http.Request, fallback *slog.Logger) *slog.Logger {
	if r == nil {
		return fallback
	}
	return logging.FromContext(r.Context(), fallback)
}
