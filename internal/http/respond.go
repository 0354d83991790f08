package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"bilancio/internal/core"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// writeError maps the service error taxonomy onto HTTP statuses: conflicts
// for lifecycle violations, 422 for rejected input, 404 for unknown keys.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, core.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, core.ErrClosedMonth),
		errors.Is(err, core.ErrOutOfOrderClose),
		errors.Is(err, core.ErrCloseNotReady),
		errors.Is(err, core.ErrUnsettledAccount),
		errors.Is(err, core.ErrDuplicateObjective):
		status = http.StatusConflict
	case errors.Is(err, core.ErrReferentialIntegrity),
		errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrInvalidCycleConfig):
		status = http.StatusUnprocessableEntity
	}

	if status == http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "Request failed", "path", r.URL.Path, "error", err)
		writeJSON(w, status, errorResponse{Error: "internal error"})
		return
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

// badRequest reports malformed input that never reached the services.
func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: msg})
}

// unprocessable reports input the services rejected by a plain error (not a
// sentinel), e.g. struct validation.
func unprocessable(w http.ResponseWriter, err error) {
	writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
}
