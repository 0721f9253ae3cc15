package sensor

import (
	"errors"
	"fmt"
)

// Domain errors for the sensor package.
//
// These errors can be checked using errors.Is() for error handling:
//
//	if errors.Is(err, sensor.ErrNotFound) {
//	    // handle not found case
//	}
var (
	// ErrNotFound is returned when a sensor or telemetry record does not
	// exist in the store consulted.
	ErrNotFound = errors.New("sensor: not found")

	// ErrConflict is returned when a uniqueness constraint is violated,
	// typically a duplicate sensor name.
	ErrConflict = errors.New("sensor: already exists")

	// ErrStoreUnavailable is returned when an underlying store rejected
	// an operation or could not be reached.
	ErrStoreUnavailable = errors.New("sensor: store unavailable")

	// ErrInvalidName is returned when a sensor name is empty or too long.
	ErrInvalidName = errors.New("sensor: invalid name")

	// ErrInvalidCoordinates is returned when a longitude/latitude pair is
	// outside the valid range.
	ErrInvalidCoordinates = errors.New("sensor: invalid coordinates")

	// ErrInvalidTelemetry is returned when a telemetry sample fails validation.
	ErrInvalidTelemetry = errors.New("sensor: invalid telemetry")
)

// Store identifies which backing store an error originated from.
type Store string

const (
	// StoreIdentity is the relational identity store.
	StoreIdentity Store = "identity"

	// StoreDocument is the document store.
	StoreDocument Store = "document"

	// StoreTelemetry is the telemetry cache.
	StoreTelemetry Store = "telemetry"
)

// StoreError attributes a failure to a specific store and operation.
// Multi-step operations surface the first failing step wrapped in a
// StoreError so callers can decide on partial retry.
type StoreError struct {
	Store Store
	Op    string
	Err   error
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	return fmt.Sprintf("sensor: %s store: %s: %v", e.Store, e.Op, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As chains.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// newStoreError wraps err with store attribution. Domain sentinels pass
// through the Unwrap chain; anything unclassified is additionally marked
// ErrStoreUnavailable so raw driver errors never leak as-is.
func newStoreError(store Store, op string, err error) error {
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrNotFound) && !errors.Is(err, ErrConflict) && !errors.Is(err, ErrStoreUnavailable) {
		err = fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	return &StoreError{Store: store, Op: op, Err: err}
}

// FailingStore extracts the store attribution from an error chain.
// Returns the empty string when the error carries no attribution.
func FailingStore(err error) Store {
	var se *StoreError
	if errors.As(err, &se) {
		return se.Store
	}
	return ""
}
