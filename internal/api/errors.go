package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/nerrad567/sensorhub-core/internal/sensor"
)

// Error represents a structured error response.
type Error struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Common error codes.
const (
	ErrCodeBadRequest     = "bad_request"
	ErrCodeNotFound       = "not_found"
	ErrCodeConflict       = "conflict"
	ErrCodeInternal       = "internal_error"
	ErrCodeValidation     = "validation_error"
	ErrCodeStoreDown      = "store_unavailable"
	ErrCodeMethodNotAllow = "method_not_allowed"
)

// writeJSON writes a JSON response with the given status code and payload.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		//nolint:errcheck // Best-effort write to response; connection may be closed
		json.NewEncoder(w).Encode(v)
	}
}

// writeError writes a structured error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, Error{
		Status:  status,
		Code:    code,
		Message: message,
	})
}

// writeBadRequest writes a 400 error response.
func writeBadRequest(w http.ResponseWriter, message string) {
	writeError(w, http.StatusBadRequest, ErrCodeBadRequest, message)
}

// writeNotFound writes a 404 error response.
func writeNotFound(w http.ResponseWriter, message string) {
	writeError(w, http.StatusNotFound, ErrCodeNotFound, message)
}

// writeConflict writes a 409 error response.
func writeConflict(w http.ResponseWriter, message string) {
	writeError(w, http.StatusConflict, ErrCodeConflict, message)
}

// writeServiceUnavailable writes a 503 error response.
func writeServiceUnavailable(w http.ResponseWriter, message string) {
	writeError(w, http.StatusServiceUnavailable, ErrCodeStoreDown, message)
}

// writeInternalError writes a 500 error response.
func writeInternalError(w http.ResponseWriter, message string) {
	writeError(w, http.StatusInternalServerError, ErrCodeInternal, message)
}

// writeSensorError maps coordinator errors onto HTTP responses. Not-found and
// conflict sentinels become client errors; store failures become 503 with the
// failing store named so operators can tell which backend is down.
func writeSensorError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, sensor.ErrInvalidName),
		errors.Is(err, sensor.ErrInvalidCoordinates),
		errors.Is(err, sensor.ErrInvalidTelemetry):
		writeError(w, http.StatusBadRequest, ErrCodeValidation, err.Error())
	case errors.Is(err, sensor.ErrNotFound):
		writeNotFound(w, "sensor not found")
	case errors.Is(err, sensor.ErrConflict):
		writeConflict(w, err.Error())
	case errors.Is(err, sensor.ErrStoreUnavailable):
		if store := sensor.FailingStore(err); store != "" {
			writeServiceUnavailable(w, fmt.Sprintf("%s store unavailable", store))
			return
		}
		writeServiceUnavailable(w, "backing store unavailable")
	default:
		writeInternalError(w, "internal server error")
	}
}
