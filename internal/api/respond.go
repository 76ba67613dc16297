// Package api holds shared HTTP response helpers for module handlers.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/quantdesk/quantdesk/internal/domain"
)

// WriteJSON writes v as a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// ErrorResponse is the JSON body for failed requests.
type ErrorResponse struct {
	Error string           `json:"error"`
	Kind  domain.ErrorKind `json:"kind,omitempty"`
	Field string           `json:"field,omitempty"`
}

// WriteError maps structured domain errors to HTTP status codes and writes
// the error body. Unclassified errors become 500s.
func WriteError(w http.ResponseWriter, err error) {
	var derr *domain.Error
	if errors.As(err, &derr) {
		WriteJSON(w, statusFor(derr.Kind), ErrorResponse{
			Error: derr.Msg,
			Kind:  derr.Kind,
			Field: derr.Field,
		})
		return
	}

	WriteJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
}

func statusFor(kind domain.ErrorKind) int {
	switch kind {
	case domain.ErrNotFound:
		return http.StatusNotFound
	case domain.ErrInsufficientData:
		return http.StatusUnprocessableEntity
	case domain.ErrInvalidParameter, domain.ErrInvalidPortfolio, domain.ErrInvalidComposition:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
