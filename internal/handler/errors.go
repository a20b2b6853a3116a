package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/neelesh-roxban/arc/internal/domain"
)

// errorDetail is the machine-readable half of an error response. Code is a
// stable identifier the adapter switches on to render a precise user-facing
// message; Message is a human-readable hint for debugging.
type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// errorResponse is the envelope for every non-2xx JSON body.
type errorResponse struct {
	Error errorDetail `json:"error"`
}

// writeJSON serializes v as the response body with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}

// writeError writes a single errorResponse.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Error: errorDetail{Code: code, Message: message}})
}

// respondServiceError maps the domain error taxonomy onto HTTP statuses.
// Every sentinel gets a distinct, inspectable code so the adapter can tell
// "not yours" from "too late" from "gone".
func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		writeError(w, http.StatusUnprocessableEntity, "validation_error", unwrapMessage(err))
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", "listing not found")
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden", "only the owner or a moderator can do that")
	case errors.Is(err, domain.ErrPreconditionFailed):
		writeError(w, http.StatusConflict, "precondition_failed", "listing is no longer active")
	case errors.Is(err, domain.ErrStorageUnavailable):
		slog.Error("storage unavailable", "error", err)
		writeError(w, http.StatusServiceUnavailable, "storage_unavailable", "storage is temporarily unavailable")
	default:
		slog.Error("unhandled service error", "error", err)
		writeError(w, http.StatusInternalServerError, "internal", "something went wrong")
	}
}

// unwrapMessage extracts the human-readable part from a wrapped sentinel
// error, e.g. "service.ListingService.Create: validation error: have is
// required" becomes "have is required".
func unwrapMessage(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	if i := strings.LastIndex(msg, "validation error: "); i >= 0 {
		return msg[i+len("validation error: "):]
	}
	return msg
}
