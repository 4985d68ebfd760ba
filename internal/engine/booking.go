package engine

import (
    "context"
    "fmt"
    "log"
    "time"

    "github.com/google/uuid"

    "github.com/iliyamo/movie-reservation-engine/internal/ledger"
    "github.com/iliyamo/movie-reservation-engine/internal/model"
)

// BookingCoordinator converts a caller's seat selection into a
// permanent, priced booking.  It is the only producer of bookings.
type BookingCoordinator struct {
    ledger    ledger.Ledger
    showtimes ShowtimeSource
    screens   ScreenSource
    bookings  BookingStore

    // Now is the clock stamped onto bookings; overridable in tests.
    Now func() time.Time
}

// NewBookingCoordinator constructs a BookingCoordinator.  All
// dependencies must be non-nil.
func NewBookingCoordinator(l ledger.Ledger, showtimes ShowtimeSource, screens ScreenSource, bookings BookingStore) *BookingCoordinator {
    if l == nil || showtimes == nil || screens == nil || bookings == nil {
        panic("nil dependency passed to NewBookingCoordinator")
    }
    return &BookingCoordinator{ledger: l, showtimes: showtimes, screens: screens, bookings: bookings, Now: time.Now}
}

// appliedTransition records one seat flipped to BOOKED together with
// the state it held before the attempt, so a failure later in the same
// call can compensate seat by seat.
type appliedTransition struct {
    seatID uint64
    prior  ledger.State
}

// Book transitions every requested seat to BOOKED and emits an
// immutable CONFIRMED booking.  A seat may be AVAILABLE or locked by
// the caller; a seat locked by anyone else or already booked fails the
// whole call with SeatUnavailableError, and seats booked earlier in
// the same call are rolled back to their pre-call state.  The total
// amount is the seat count times the showtime price read once at call
// time.
func (c *BookingCoordinator) Book(ctx context.Context, showtimeID uint64, caller string, seatIDs []uint64) (*model.Booking, error) {
    seatIDs = dedupeSeatIDs(seatIDs)
    if len(seatIDs) == 0 {
        return nil, ErrEmptySeatSelection
    }

    showtime, err := c.showtimes.GetShowtime(ctx, showtimeID)
    if err != nil {
        return nil, err
    }
    screenSeats, err := c.screens.SeatsForScreen(ctx, showtime.ScreenID)
    if err != nil {
        return nil, err
    }
    seatByID := make(map[uint64]model.Seat, len(screenSeats))
    for _, s := range screenSeats {
        seatByID[s.ID] = s
    }

    // Capture pre-call states.  The read applies lazy expiry, so an
    // expired foreign lock is seen - and matched below - as AVAILABLE.
    entries, err := c.ledger.Read(ctx, showtimeID, seatIDs)
    if err != nil {
        return nil, err
    }
    prior := make(map[uint64]ledger.State, len(entries))
    for _, e := range entries {
        prior[e.SeatID] = e.State
    }

    ref := uuid.NewString()
    next := ledger.Booked(ref)

    applied := make([]appliedTransition, 0, len(seatIDs))
    for _, seatID := range seatIDs {
        pre := prior[seatID]
        var expected ledger.Expected
        switch {
        case pre.Status == ledger.StatusAvailable:
            expected = ledger.Expected{Status: ledger.StatusAvailable}
        case pre.Status == ledger.StatusLocked && pre.Holder == caller:
            expected = ledger.Expected{Status: ledger.StatusLocked, Holder: caller}
        default:
            // Locked by someone else or already booked.
            c.rollbackBookings(ctx, showtimeID, ref, applied)
            return nil, &SeatUnavailableError{SeatIDs: []uint64{seatID}}
        }

        if err := c.ledger.CompareAndSet(ctx, showtimeID, seatID, expected, next); err != nil {
            c.rollbackBookings(ctx, showtimeID, ref, applied)
            if err == ledger.ErrConflict {
                return nil, &SeatUnavailableError{SeatIDs: []uint64{seatID}}
            }
            return nil, err
        }
        applied = append(applied, appliedTransition{seatID: seatID, prior: pre})
    }

    seats := make([]model.Seat, 0, len(seatIDs))
    for _, id := range seatIDs {
        seats = append(seats, seatByID[id])
    }
    booking := &model.Booking{
        Ref:              ref,
        UserID:           caller,
        ShowtimeID:       showtimeID,
        Status:           model.BookingStatusConfirmed,
        TotalAmountCents: showtime.PriceCents * uint32(len(seatIDs)),
        CreatedAt:        c.Now().UTC(),
        Seats:            seats,
    }
    if err := c.bookings.Create(ctx, booking); err != nil {
        c.rollbackBookings(ctx, showtimeID, ref, applied)
        return nil, fmt.Errorf("persist booking: %w", err)
    }
    return booking, nil
}

// rollbackBookings reverts seats flipped to BOOKED within the current
// call back to their pre-call state.  BOOKED is reachable only through
// Book, so a conflict here means the entry changed outside this call -
// a broken invariant that is logged, never repaired.
func (c *BookingCoordinator) rollbackBookings(ctx context.Context, showtimeID uint64, ref string, applied []appliedTransition) {
    for _, a := range applied {
        err := c.ledger.CompareAndSet(ctx, showtimeID, a.seatID,
            ledger.Expected{Status: ledger.StatusBooked, BookingRef: ref}, a.prior)
        if err != nil {
            log.Printf("booking rollback: showtime=%d seat=%d ref=%s: %v: %v",
                showtimeID, a.seatID, ref, ErrInvariantViolation, err)
        }
    }
}
