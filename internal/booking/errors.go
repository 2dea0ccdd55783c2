// Package booking implements the reservation admission engine: the rules
// deciding whether a requested reservation may be created, the weekly quota
// computation and the authorization rules for cancellation.  Handlers should
// translate the sentinel values below into HTTP responses via errors.Is.
package booking

import (
	"errors"
	"fmt"
)

// ErrUnauthenticated is returned when a mutating operation is attempted
// without an acting user.  Handlers should translate this into 401.
var ErrUnauthenticated = errors.New("unauthenticated")

// ErrInvalidInput is returned when a request is missing required unit
// fields or carries a zero date.  Handlers should translate this into 400.
var ErrInvalidInput = errors.New("invalid input")

// ErrDateAlreadyReserved is returned when the requested date is already
// held by any unit.  The resource is building-wide and singular per day,
// so it does not matter whose reservation occupies the date.  Handlers
// should translate this into 409.
var ErrDateAlreadyReserved = errors.New("date already reserved")

// ErrWeeklyQuotaExceeded is returned when admitting the reservation would
// give the requesting unit more than two reservations within the same
// Monday-starting week.  Handlers should translate this into 409.
var ErrWeeklyQuotaExceeded = errors.New("weekly quota exceeded")

// ErrNotFound is returned when a cancel target does not exist.  Handlers
// should translate this into 404.
var ErrNotFound = errors.New("reservation not found")

// ErrForbidden is returned when a cancel is attempted by a user other
// than the one who created the reservation.  Handlers should translate
// this into 403.
var ErrForbidden = errors.New("forbidden")

// StoreError wraps an underlying persistence failure (network, storage
// fault).  The cause is carried opaquely; the engine never interprets it
// and never retries.  Handlers should translate this into 500.
type StoreError struct {
	Op  string // failing store operation: "list", "create" or "delete"
	Err error
}

func (e *StoreError) Error() string { return fmt.Sprintf("reservation store %s: %v", e.Op, e.Err) }

func (e *StoreError) Unwrap() error { return e.Err }

func storeError(op string, err error) error { return &StoreError{Op: op, Err: err} }
