package engine

import (
    "context"
    "log"
    "time"

    "github.com/iliyamo/movie-reservation-engine/internal/ledger"
)

// ExpirySweeper reclaims seats whose hold has outlived its TTL without
// relying on any caller's future action.  The ledger already treats
// expired locks as AVAILABLE on every read; the sweeper physically
// rewrites them so the table does not accumulate stale lock rows.
type ExpirySweeper struct {
    ledger   ledger.Ledger
    interval time.Duration

    // Now is the clock used to detect expired holds; overridable in tests.
    Now func() time.Time
}

// NewExpirySweeper constructs a sweeper running at the given interval.
func NewExpirySweeper(l ledger.Ledger, interval time.Duration) *ExpirySweeper {
    if l == nil {
        panic("nil ledger passed to NewExpirySweeper")
    }
    return &ExpirySweeper{ledger: l, interval: interval, Now: time.Now}
}

// Start runs the sweep loop until ctx is cancelled.  It is meant to be
// launched as its own goroutine at startup.
func (s *ExpirySweeper) Start(ctx context.Context) {
    ticker := time.NewTicker(s.interval)
    defer ticker.Stop()

    log.Printf("expiry sweeper started (interval=%s)", s.interval)
    for {
        select {
        case <-ctx.Done():
            log.Printf("expiry sweeper stopped")
            return
        case <-ticker.C:
            if n, err := s.Sweep(ctx); err != nil {
                log.Printf("expiry sweep failed: %v", err)
            } else if n > 0 {
                log.Printf("expiry sweep reclaimed %d seat(s)", n)
            }
        }
    }
}

// Sweep reclaims every currently expired hold once and returns how many
// seats were returned to AVAILABLE.  Reclamation goes through the same
// compare-and-set primitive as caller-driven transitions: the expected
// AVAILABLE matches the expired lock, so a legitimate lock or booking
// racing the sweep always wins and an already-reclaimed entry is never
// touched twice.
func (s *ExpirySweeper) Sweep(ctx context.Context) (int, error) {
    keys, err := s.ledger.ListExpired(ctx, s.Now().UTC())
    if err != nil {
        return 0, err
    }
    reclaimed := 0
    for _, k := range keys {
        err := s.ledger.CompareAndSet(ctx, k.ShowtimeID, k.SeatID,
            ledger.Expected{Status: ledger.StatusAvailable}, ledger.Available())
        switch err {
        case nil:
            reclaimed++
        case ledger.ErrConflict:
            // re-locked or booked since listing; the race winner keeps it
        default:
            return reclaimed, err
        }
    }
    return reclaimed, nil
}
