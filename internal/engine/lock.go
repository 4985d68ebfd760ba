package engine

import (
    "context"
    "time"

    "github.com/iliyamo/movie-reservation-engine/internal/ledger"
)

// LockManager grants and releases time-bounded exclusive seat holds.
// A hold is not a purchase: the TTL alone bounds how long a seat stays
// unavailable when the caller never releases or books.
type LockManager struct {
    ledger     ledger.Ledger
    defaultTTL time.Duration
    maxTTL     time.Duration

    // Now is the clock used to compute hold expiries; overridable in tests.
    Now func() time.Time
}

// NewLockManager constructs a LockManager.  defaultTTL is used when a
// request does not specify a TTL; maxTTL caps what callers may request.
func NewLockManager(l ledger.Ledger, defaultTTL, maxTTL time.Duration) *LockManager {
    if l == nil {
        panic("nil ledger passed to NewLockManager")
    }
    return &LockManager{ledger: l, defaultTTL: defaultTTL, maxTTL: maxTTL, Now: time.Now}
}

// Grant describes a successful multi-seat acquisition.
type Grant struct {
    SeatIDs   []uint64
    TTL       time.Duration
    ExpiresAt time.Time
}

// Acquire locks every requested seat for the caller, all or nothing.
// If any seat is not AVAILABLE - locked by anyone, including the same
// caller, or booked - the whole request fails with
// SeatUnavailableError and seats locked earlier in the same request
// are rolled back before returning.  A zero ttl selects the configured
// default; a ttl beyond the configured maximum is rejected.
func (m *LockManager) Acquire(ctx context.Context, showtimeID uint64, caller string, seatIDs []uint64, ttl time.Duration) (*Grant, error) {
    seatIDs = dedupeSeatIDs(seatIDs)
    if len(seatIDs) == 0 {
        return nil, ErrEmptySeatSelection
    }
    if ttl == 0 {
        ttl = m.defaultTTL
    }
    if ttl < 0 || ttl > m.maxTTL {
        return nil, ErrTTLOutOfRange
    }

    expiresAt := m.Now().UTC().Add(ttl)
    next := ledger.Locked(caller, expiresAt)

    // Undo list of seats locked by this request; compensated on failure.
    applied := make([]uint64, 0, len(seatIDs))
    for _, seatID := range seatIDs {
        err := m.ledger.CompareAndSet(ctx, showtimeID, seatID,
            ledger.Expected{Status: ledger.StatusAvailable}, next)
        if err == nil {
            applied = append(applied, seatID)
            continue
        }
        m.rollbackLocks(ctx, showtimeID, caller, applied)
        if err == ledger.ErrConflict {
            return nil, &SeatUnavailableError{SeatIDs: []uint64{seatID}}
        }
        return nil, err
    }

    return &Grant{SeatIDs: seatIDs, TTL: ttl, ExpiresAt: expiresAt}, nil
}

// Release returns the caller's holds on the given seats to AVAILABLE.
// Seats held by a different caller, or not locked at all, are silently
// skipped; releasing is idempotent.  It returns how many seats were
// actually released.
func (m *LockManager) Release(ctx context.Context, showtimeID uint64, caller string, seatIDs []uint64) (int, error) {
    released := 0
    for _, seatID := range dedupeSeatIDs(seatIDs) {
        err := m.ledger.CompareAndSet(ctx, showtimeID, seatID,
            ledger.Expected{Status: ledger.StatusLocked, Holder: caller}, ledger.Available())
        switch err {
        case nil:
            released++
        case ledger.ErrConflict:
            // not ours, or not locked
        default:
            return released, err
        }
    }
    return released, nil
}

func (m *LockManager) rollbackLocks(ctx context.Context, showtimeID uint64, caller string, seatIDs []uint64) {
    for _, seatID := range seatIDs {
        // The lock was granted moments ago within this request, so a
        // conflict here can only mean it already expired; both ways the
        // seat ends up AVAILABLE.
        _ = m.ledger.CompareAndSet(ctx, showtimeID, seatID,
            ledger.Expected{Status: ledger.StatusLocked, Holder: caller}, ledger.Available())
    }
}

// dedupeSeatIDs drops zero and duplicate IDs while preserving order.
func dedupeSeatIDs(seatIDs []uint64) []uint64 {
    unique := make([]uint64, 0, len(seatIDs))
    seen := make(map[uint64]struct{}, len(seatIDs))
    for _, id := range seatIDs {
        if id == 0 {
            continue
        }
        if _, ok := seen[id]; !ok {
            seen[id] = struct{}{}
            unique = append(unique, id)
        }
    }
    return unique
}
