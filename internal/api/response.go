package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/evanmh/stocktrack/internal/store"
)

// jsonResponse writes a JSON response with the given status code.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("encoding response", "error", err)
		}
	}
}

// jsonError writes a JSON error response.
func jsonError(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, map[string]string{"error": message})
}

// decodeJSON decodes a JSON request body into the given target.
func decodeJSON(r *http.Request, target any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(target)
}

// writeStoreError translates the store's typed outcomes into HTTP statuses.
// Integrity violations mean a validation bug rather than user error, so they
// are logged at error severity before being reported as a server failure.
func writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case store.IsInvalidInput(err):
		jsonError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, store.ErrNotFound):
		jsonError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, store.ErrConflict):
		jsonError(w, http.StatusConflict, err.Error())
	case errors.Is(err, store.ErrInvalidState):
		jsonError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, store.ErrIntegrityViolation):
		slog.Error("storage integrity violation", "error", err)
		jsonError(w, http.StatusInternalServerError, "storage integrity violation")
	default:
		slog.Error("internal error", "error", err)
		jsonError(w, http.StatusInternalServerError, "internal error")
	}
}
