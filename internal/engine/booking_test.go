package engine_test

import (
    "context"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/movie-reservation-engine/internal/engine"
    "github.com/iliyamo/movie-reservation-engine/internal/ledger"
    "github.com/iliyamo/movie-reservation-engine/internal/model"
)

func newCoordinator(f *fixture) *engine.BookingCoordinator {
    c := engine.NewBookingCoordinator(f.ledger, f.catalog, f.catalog, f.bookings)
    c.Now = func() time.Time { return f.now }
    return c
}

func TestBookAvailableSeats(t *testing.T) {
    f := newFixture(t)
    c := newCoordinator(f)
    ctx := context.Background()

    booking, err := c.Book(ctx, 10, "alice", []uint64{1, 2})
    require.NoError(t, err)
    assert.NotEmpty(t, booking.Ref)
    assert.Equal(t, "alice", booking.UserID)
    assert.Equal(t, model.BookingStatusConfirmed, booking.Status)
    assert.Equal(t, uint32(2400), booking.TotalAmountCents) // 2 seats at 12.00
    assert.Equal(t, f.now, booking.CreatedAt)
    require.Len(t, booking.Seats, 2)
    assert.Equal(t, "A1", booking.Seats[0].Label())

    assert.Equal(t, ledger.StatusBooked, f.statusOf(t, 10, 1))
    assert.Equal(t, ledger.StatusBooked, f.statusOf(t, 10, 2))
    require.Len(t, f.bookings.created, 1)
    assert.Equal(t, booking.Ref, f.bookings.created[0].Ref)
}

func TestBookOwnLockedSeats(t *testing.T) {
    f := newFixture(t)
    c := newCoordinator(f)
    ctx := context.Background()

    f.lockSeat(t, 10, 1, "alice", 300*time.Second)

    // Mixing the caller's own hold with a free seat works in one call.
    booking, err := c.Book(ctx, 10, "alice", []uint64{1, 2})
    require.NoError(t, err)
    assert.Equal(t, uint32(2400), booking.TotalAmountCents)
    assert.Equal(t, ledger.StatusBooked, f.statusOf(t, 10, 1))
}

func TestBookForeignLockFails(t *testing.T) {
    f := newFixture(t)
    c := newCoordinator(f)
    ctx := context.Background()

    f.lockSeat(t, 10, 2, "bob", 300*time.Second)

    _, err := c.Book(ctx, 10, "alice", []uint64{1, 2})
    var unavailable *engine.SeatUnavailableError
    require.ErrorAs(t, err, &unavailable)
    assert.Equal(t, []uint64{2}, unavailable.SeatIDs)

    // Seat 1 was booked first and must be rolled back to AVAILABLE.
    assert.Equal(t, ledger.StatusAvailable, f.statusOf(t, 10, 1))
    assert.Equal(t, ledger.StatusLocked, f.statusOf(t, 10, 2))
    assert.Empty(t, f.bookings.created)
}

func TestBookRollbackRestoresOwnLock(t *testing.T) {
    f := newFixture(t)
    c := newCoordinator(f)
    ctx := context.Background()

    f.lockSeat(t, 10, 1, "alice", 300*time.Second)
    f.lockSeat(t, 10, 2, "bob", 300*time.Second)

    _, err := c.Book(ctx, 10, "alice", []uint64{1, 2})
    require.True(t, engine.IsSeatUnavailable(err))

    // Alice's own hold on seat 1 survives the failed booking, so she
    // can retry within her checkout window.
    assert.Equal(t, ledger.StatusLocked, f.statusOf(t, 10, 1))
    err = f.ledger.CompareAndSet(ctx, 10, 1,
        ledger.Expected{Status: ledger.StatusLocked, Holder: "alice"},
        ledger.Booked("probe"))
    assert.NoError(t, err)
}

func TestBookExpiredForeignLockSucceeds(t *testing.T) {
    f := newFixture(t)
    c := newCoordinator(f)
    ctx := context.Background()

    f.lockSeat(t, 10, 1, "bob", 60*time.Second)
    f.advance(61 * time.Second)

    booking, err := c.Book(ctx, 10, "alice", []uint64{1})
    require.NoError(t, err)
    assert.Equal(t, uint32(1200), booking.TotalAmountCents)
}

func TestBookStoreFailureRollsBackSeats(t *testing.T) {
    f := newFixture(t)
    c := newCoordinator(f)
    ctx := context.Background()

    f.bookings.failNext = true
    _, err := c.Book(ctx, 10, "alice", []uint64{1, 2})
    require.Error(t, err)
    assert.False(t, engine.IsSeatUnavailable(err))

    assert.Equal(t, ledger.StatusAvailable, f.statusOf(t, 10, 1))
    assert.Equal(t, ledger.StatusAvailable, f.statusOf(t, 10, 2))
    assert.Empty(t, f.bookings.created)
}

func TestBookValidation(t *testing.T) {
    f := newFixture(t)
    c := newCoordinator(f)
    ctx := context.Background()

    _, err := c.Book(ctx, 10, "alice", nil)
    assert.ErrorIs(t, err, engine.ErrEmptySeatSelection)

    _, err = c.Book(ctx, 99, "alice", []uint64{1})
    assert.ErrorIs(t, err, ledger.ErrShowtimeNotFound)

    _, err = c.Book(ctx, 10, "alice", []uint64{999})
    assert.ErrorIs(t, err, ledger.ErrSeatNotFound)
}

func TestBookedSeatStaysBookedAfterPriceChange(t *testing.T) {
    f := newFixture(t)
    c := newCoordinator(f)
    ctx := context.Background()

    booking, err := c.Book(ctx, 10, "alice", []uint64{1})
    require.NoError(t, err)
    assert.Equal(t, uint32(1200), booking.TotalAmountCents)

    // Later bookings pick up the new price; the stored booking keeps
    // the amount copied at creation.
    st := f.catalog.showtimes[10]
    st.PriceCents = 1500
    f.catalog.showtimes[10] = st

    second, err := c.Book(ctx, 10, "bob", []uint64{2})
    require.NoError(t, err)
    assert.Equal(t, uint32(1500), second.TotalAmountCents)

    stored, err := f.bookings.GetByRef(ctx, booking.Ref, "alice")
    require.NoError(t, err)
    assert.Equal(t, uint32(1200), stored.TotalAmountCents)
}

func TestBookWithBookedSeatFailsEntirely(t *testing.T) {
    f := newFixture(t)
    c := newCoordinator(f)
    ctx := context.Background()

    _, err := c.Book(ctx, 10, "carol", []uint64{2})
    require.NoError(t, err)

    // Seat 1 is free, seat 2 already sold: the call fails whole and
    // seat 1 stays AVAILABLE.
    _, err = c.Book(ctx, 10, "alice", []uint64{1, 2})
    var unavailable *engine.SeatUnavailableError
    require.ErrorAs(t, err, &unavailable)
    assert.Equal(t, []uint64{2}, unavailable.SeatIDs)
    assert.Equal(t, ledger.StatusAvailable, f.statusOf(t, 10, 1))
    assert.Equal(t, ledger.StatusBooked, f.statusOf(t, 10, 2))
    require.Len(t, f.bookings.created, 1)
}

func TestLockExpireRelockBookFlow(t *testing.T) {
    f := newFixture(t)
    locks := newLockManager(f)
    c := newCoordinator(f)
    ctx := context.Background()

    // U1 holds seat 1; U2's attempt fails while the hold is live.
    _, err := locks.Acquire(ctx, 10, "u1", []uint64{1}, 300*time.Second)
    require.NoError(t, err)
    _, err = locks.Acquire(ctx, 10, "u2", []uint64{1}, 300*time.Second)
    require.True(t, engine.IsSeatUnavailable(err))

    // After the TTL elapses U2 locks and books the seat.
    f.advance(301 * time.Second)
    _, err = locks.Acquire(ctx, 10, "u2", []uint64{1}, 300*time.Second)
    require.NoError(t, err)
    booking, err := c.Book(ctx, 10, "u2", []uint64{1})
    require.NoError(t, err)
    assert.Equal(t, uint32(1200), booking.TotalAmountCents)

    // The sold seat blocks every further lock or booking attempt.
    _, err = locks.Acquire(ctx, 10, "u1", []uint64{1}, 300*time.Second)
    assert.True(t, engine.IsSeatUnavailable(err))
    _, err = c.Book(ctx, 10, "u1", []uint64{1})
    assert.True(t, engine.IsSeatUnavailable(err))
}

func TestBookingsAreOwnerScoped(t *testing.T) {
    f := newFixture(t)
    c := newCoordinator(f)
    ctx := context.Background()

    booking, err := c.Book(ctx, 10, "alice", []uint64{1})
    require.NoError(t, err)

    _, err = f.bookings.GetByRef(ctx, booking.Ref, "bob")
    assert.ErrorIs(t, err, engine.ErrBookingNotFound)
}
