// Package http holds the JSON helpers shared by the API handlers.
package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"

	"bizplan/internal/log"
	"bizplan/internal/models"
	"bizplan/internal/services/ledger"
	"bizplan/internal/services/narrative"
	"bizplan/internal/services/plan"
	"bizplan/internal/services/pricing"
	"bizplan/internal/services/sensitivity"
	"bizplan/internal/services/storage"
)

// maxBodyBytes caps JSON request bodies
const maxBodyBytes = 4 << 20

// ErrBadRequest marks a request body or parameter that could not be parsed
var ErrBadRequest = errors.New("bad request")

// WriteJSON encodes v with the given status
func WriteJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(v)
}

// DecodeJSON reads a JSON body into v, rejecting unknown fields
func DecodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", ErrBadRequest, err)
	}
	return nil
}

// ErrorResponse sends a JSON error body
func ErrorResponse(w http.ResponseWriter, message string, statusCode int) {
	WriteJSON(w, statusCode, map[string]string{"error": message})
}

// StatusFor maps an error to the HTTP status it should produce
func StatusFor(err error) int {
	switch {
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, plan.ErrInvalidValue),
		errors.Is(err, plan.ErrSameScenario),
		errors.Is(err, sensitivity.ErrInvalidRange),
		errors.Is(err, pricing.ErrInvalidInput),
		errors.Is(err, storage.ErrPasswordTooShort),
		errors.Is(err, storage.ErrUnsupportedPayload),
		errors.Is(err, storage.ErrOutsideDataDir),
		errors.Is(err, ledger.ErrMissingColumn),
		errors.Is(err, ledger.ErrEmptyFile),
		errors.Is(err, ledger.ErrNoTransactions):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrUnknownScenario),
		errors.Is(err, models.ErrUnknownMonth),
		errors.Is(err, plan.ErrUnknownDriver),
		errors.Is(err, plan.ErrUnknownKind),
		errors.Is(err, plan.ErrLineItemNotFound),
		errors.Is(err, plan.ErrPricingItemNotFound),
		errors.Is(err, plan.ErrItemNotFound),
		errors.Is(err, narrative.ErrUnknownSlot):
		return http.StatusNotFound
	case errors.Is(err, storage.ErrWrongPassword):
		return http.StatusUnauthorized
	case errors.Is(err, storage.ErrAlreadyEncrypted),
		errors.Is(err, storage.ErrNotEncrypted):
		return http.StatusConflict
	case errors.Is(err, storage.ErrLocked):
		return http.StatusLocked
	case errors.Is(err, narrative.ErrDisabled):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// Error writes err as a JSON error with the mapped status. Server errors
// are logged with the request logger.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	code := StatusFor(err)
	if code >= http.StatusInternalServerError {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "request failed", log.FieldError, err)
	}
	ErrorResponse(w, err.Error(), code)
}

// QueryFloat parses an optional finite float query parameter
func QueryFloat(r *http.Request, name string, def float64) (float64, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %s must be a number", ErrBadRequest, name)
	}
	return v, nil
}
