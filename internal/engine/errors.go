// Package engine implements the seat reservation engine: exclusive
// time-bounded seat locks, atomic conversion of a selection into a
// confirmed booking, background expiry reclamation and the seat map
// projection consumed by polling clients.
package engine

import (
    "errors"
    "fmt"
)

// Sentinel errors for caller mistakes.  None of these are retried by
// the engine; retry policy belongs to the caller.
var (
    ErrEmptySeatSelection = errors.New("seat selection is empty")
    ErrTTLOutOfRange      = errors.New("requested lock ttl exceeds the configured maximum")
    ErrBookingNotFound    = errors.New("booking not found")
)

// ErrInvariantViolation marks internal inconsistency, such as a BOOKED
// entry that cannot be reverted during rollback.  It is never repaired
// silently; callers surface it as an internal error.
var ErrInvariantViolation = errors.New("seat ledger invariant violation")

// SeatUnavailableError reports which seats blocked an acquire or book
// request.  The whole request fails; no partial claim survives.
type SeatUnavailableError struct {
    SeatIDs []uint64
}

func (e *SeatUnavailableError) Error() string {
    return fmt.Sprintf("seats unavailable: %v", e.SeatIDs)
}

// IsSeatUnavailable reports whether err is a SeatUnavailableError.
func IsSeatUnavailable(err error) bool {
    var target *SeatUnavailableError
    return errors.As(err, &target)
}
