// Package ledger holds the authoritative per-(showtime, seat) status
// table.  Every status transition in the system - locking, releasing,
// booking and expiry reclamation - goes through the single
// CompareAndSet primitive, which makes each transition an atomic
// check-and-write with respect to concurrent attempts on the same seat.
package ledger

import (
    "context"
    "errors"
    "time"
)

// Status enumerates the three states a seat can be in for a showtime.
type Status string

const (
    StatusAvailable Status = "AVAILABLE"
    StatusLocked    Status = "LOCKED"
    StatusBooked    Status = "BOOKED"
)

// Sentinel errors returned by ledger implementations.  Handlers
// translate ErrShowtimeNotFound and ErrSeatNotFound into 404 responses
// and ErrConflict into a seat-unavailable failure.
var (
    ErrShowtimeNotFound = errors.New("showtime not found")
    ErrSeatNotFound     = errors.New("seat not found for showtime")
    ErrConflict         = errors.New("seat state conflict")
)

// State is the full status of one seat entry.  Holder and ExpiresAt
// are meaningful only when Status is LOCKED; BookingRef only when
// Status is BOOKED.  At most one of the two claim states holds at a
// time per entry.
type State struct {
    Status     Status
    Holder     string
    ExpiresAt  time.Time
    BookingRef string
}

// Available returns the state representing an unclaimed seat.
func Available() State { return State{Status: StatusAvailable} }

// Locked returns the state for a seat held by holder until expiresAt.
func Locked(holder string, expiresAt time.Time) State {
    return State{Status: StatusLocked, Holder: holder, ExpiresAt: expiresAt}
}

// Booked returns the state for a seat sold under the given booking reference.
func Booked(ref string) State {
    return State{Status: StatusBooked, BookingRef: ref}
}

// Expected describes the state a CompareAndSet call requires the entry
// to currently be in.  Matching rules:
//
//   - StatusAvailable also matches a LOCKED entry whose expiry has
//     passed.  An expired lock is never honored as locked, whether or
//     not a background sweep has rewritten it yet.
//   - StatusLocked matches only an unexpired lock held by Holder.
//   - StatusBooked matches only an entry booked under BookingRef; it
//     exists so multi-seat rollback can revert entries it just booked.
type Expected struct {
    Status     Status
    Holder     string
    BookingRef string
}

// Entry is one (showtime, seat) status record as returned by reads.
type Entry struct {
    ShowtimeID uint64
    SeatID     uint64
    State      State
}

// Key identifies a single ledger entry.
type Key struct {
    ShowtimeID uint64
    SeatID     uint64
}

// Ledger is the authoritative seat status table.  Implementations must
// make CompareAndSet race-free under concurrent callers targeting the
// same seat and must apply lazy expiry on every read: a LOCKED entry
// whose ExpiresAt has passed is reported and matched as AVAILABLE.
type Ledger interface {
    // Read returns the entries for the given seats, materializing
    // missing ones as AVAILABLE.  It fails only for an unknown
    // showtime or seat.
    Read(ctx context.Context, showtimeID uint64, seatIDs []uint64) ([]Entry, error)

    // ReadAll returns the entries for every seat of the showtime's
    // screen, materializing the table on first use.
    ReadAll(ctx context.Context, showtimeID uint64) ([]Entry, error)

    // CompareAndSet transitions one entry from expected to next.  It
    // returns ErrConflict when the current state does not match
    // expected, applying the matching rules documented on Expected.
    CompareAndSet(ctx context.Context, showtimeID, seatID uint64, expected Expected, next State) error

    // ListExpired returns the keys of LOCKED entries whose expiry is
    // at or before now.  Reclamation itself must go back through
    // CompareAndSet so a concurrent legitimate transition always wins.
    ListExpired(ctx context.Context, now time.Time) ([]Key, error)
}

// TopologySource supplies the set of valid seats for a showtime's
// screen.  Ledgers use it to materialize entries lazily the first time
// a showtime is read.
type TopologySource interface {
    // SeatIDsForShowtime returns the seat IDs of the showtime's
    // screen, or ErrShowtimeNotFound.
    SeatIDsForShowtime(ctx context.Context, showtimeID uint64) ([]uint64, error)
}
