// Package render writes JSON responses for the API handlers.
package render

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/MrJamesThe3rd/projectlibrary/internal/validation"
)

type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func Error(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, errorResponse{Error: msg})
}

// Validation writes a 400 with the field messages when err is a validation
// failure and reports whether it did.
func Validation(w http.ResponseWriter, err error) bool {
	verr, ok := validation.AsError(err)
	if !ok {
		return false
	}

	JSON(w, http.StatusBadRequest, errorResponse{Error: "validation failed", Fields: verr.Fields})

	return true
}

// Decode reads a JSON request body into v, writing a 400 on failure.
func Decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return false
	}

	return true
}
