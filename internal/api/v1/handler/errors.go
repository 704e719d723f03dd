package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"eschool/internal/apperr"
)

// writeError maps a service error to an HTTP status and writes the error text.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, apperr.ErrValidation),
		errors.Is(err, apperr.ErrInvalidPermutation),
		errors.Is(err, apperr.ErrNotFree),
		errors.Is(err, apperr.ErrNotPaid):
		status = http.StatusBadRequest
	case errors.Is(err, apperr.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, apperr.ErrNotFound),
		errors.Is(err, apperr.ErrNoActiveIntent):
		status = http.StatusNotFound
	case errors.Is(err, apperr.ErrDuplicateSlug),
		errors.Is(err, apperr.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, apperr.ErrPublishGate):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, apperr.ErrExternal):
		status = http.StatusBadGateway
	}
	http.Error(w, err.Error(), status)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
