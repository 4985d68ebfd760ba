package ledger_test

import (
    "context"
    "sync"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/movie-reservation-engine/internal/ledger"
)

// fakeTopology maps showtime IDs to seat ID sets.
type fakeTopology struct {
    seats map[uint64][]uint64
}

func (f *fakeTopology) SeatIDsForShowtime(_ context.Context, showtimeID uint64) ([]uint64, error) {
    ids, ok := f.seats[showtimeID]
    if !ok {
        return nil, ledger.ErrShowtimeNotFound
    }
    return ids, nil
}

func newTestLedger(t *testing.T) (*ledger.Memory, *time.Time) {
    t.Helper()
    topo := &fakeTopology{seats: map[uint64][]uint64{
        10: {1, 2, 3, 4},
        20: {7, 8},
    }}
    m := ledger.NewMemory(topo)
    now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
    m.Now = func() time.Time { return now }
    return m, &now
}

func TestReadMaterializesAvailable(t *testing.T) {
    m, _ := newTestLedger(t)
    ctx := context.Background()

    entries, err := m.ReadAll(ctx, 10)
    require.NoError(t, err)
    require.Len(t, entries, 4)
    for _, e := range entries {
        assert.Equal(t, ledger.StatusAvailable, e.State.Status)
    }

    _, err = m.ReadAll(ctx, 99)
    assert.ErrorIs(t, err, ledger.ErrShowtimeNotFound)

    _, err = m.Read(ctx, 10, []uint64{1, 999})
    assert.ErrorIs(t, err, ledger.ErrSeatNotFound)
}

func TestCompareAndSetTransitions(t *testing.T) {
    m, now := newTestLedger(t)
    ctx := context.Background()
    deadline := now.Add(5 * time.Minute)

    // AVAILABLE -> LOCKED
    err := m.CompareAndSet(ctx, 10, 1,
        ledger.Expected{Status: ledger.StatusAvailable},
        ledger.Locked("alice", deadline))
    require.NoError(t, err)

    // A second lock attempt on the same seat conflicts, even by the
    // same holder.
    err = m.CompareAndSet(ctx, 10, 1,
        ledger.Expected{Status: ledger.StatusAvailable},
        ledger.Locked("bob", deadline))
    assert.ErrorIs(t, err, ledger.ErrConflict)
    err = m.CompareAndSet(ctx, 10, 1,
        ledger.Expected{Status: ledger.StatusAvailable},
        ledger.Locked("alice", deadline))
    assert.ErrorIs(t, err, ledger.ErrConflict)

    // LOCKED -> BOOKED requires the matching holder.
    err = m.CompareAndSet(ctx, 10, 1,
        ledger.Expected{Status: ledger.StatusLocked, Holder: "bob"},
        ledger.Booked("ref-1"))
    assert.ErrorIs(t, err, ledger.ErrConflict)
    err = m.CompareAndSet(ctx, 10, 1,
        ledger.Expected{Status: ledger.StatusLocked, Holder: "alice"},
        ledger.Booked("ref-1"))
    require.NoError(t, err)

    // A booked seat matches only its booking reference.
    err = m.CompareAndSet(ctx, 10, 1,
        ledger.Expected{Status: ledger.StatusBooked, BookingRef: "other"},
        ledger.Available())
    assert.ErrorIs(t, err, ledger.ErrConflict)
    err = m.CompareAndSet(ctx, 10, 1,
        ledger.Expected{Status: ledger.StatusBooked, BookingRef: "ref-1"},
        ledger.Available())
    require.NoError(t, err)

    entries, err := m.Read(ctx, 10, []uint64{1})
    require.NoError(t, err)
    assert.Equal(t, ledger.StatusAvailable, entries[0].State.Status)
}

func TestLazyExpiry(t *testing.T) {
    m, now := newTestLedger(t)
    ctx := context.Background()

    require.NoError(t, m.CompareAndSet(ctx, 10, 2,
        ledger.Expected{Status: ledger.StatusAvailable},
        ledger.Locked("alice", now.Add(300*time.Second))))

    // One second before expiry the lock still holds.
    *now = now.Add(299 * time.Second)
    err := m.CompareAndSet(ctx, 10, 2,
        ledger.Expected{Status: ledger.StatusAvailable},
        ledger.Locked("bob", now.Add(300*time.Second)))
    assert.ErrorIs(t, err, ledger.ErrConflict)

    // At expiry the entry reads AVAILABLE and matches AVAILABLE, even
    // though no sweep has rewritten it.
    *now = now.Add(2 * time.Second)
    entries, err := m.Read(ctx, 10, []uint64{2})
    require.NoError(t, err)
    assert.Equal(t, ledger.StatusAvailable, entries[0].State.Status)

    // The original holder's lock no longer matches.
    err = m.CompareAndSet(ctx, 10, 2,
        ledger.Expected{Status: ledger.StatusLocked, Holder: "alice"},
        ledger.Booked("ref-x"))
    assert.ErrorIs(t, err, ledger.ErrConflict)

    // Another caller can take the seat.
    err = m.CompareAndSet(ctx, 10, 2,
        ledger.Expected{Status: ledger.StatusAvailable},
        ledger.Locked("bob", now.Add(300*time.Second)))
    assert.NoError(t, err)
}

func TestListExpired(t *testing.T) {
    m, now := newTestLedger(t)
    ctx := context.Background()

    require.NoError(t, m.CompareAndSet(ctx, 10, 1,
        ledger.Expected{Status: ledger.StatusAvailable},
        ledger.Locked("alice", now.Add(10*time.Second))))
    require.NoError(t, m.CompareAndSet(ctx, 10, 2,
        ledger.Expected{Status: ledger.StatusAvailable},
        ledger.Locked("bob", now.Add(10*time.Minute))))
    require.NoError(t, m.CompareAndSet(ctx, 20, 7,
        ledger.Expected{Status: ledger.StatusAvailable},
        ledger.Locked("carol", now.Add(10*time.Second))))

    keys, err := m.ListExpired(ctx, now.Add(30*time.Second))
    require.NoError(t, err)
    assert.ElementsMatch(t, []ledger.Key{
        {ShowtimeID: 10, SeatID: 1},
        {ShowtimeID: 20, SeatID: 7},
    }, keys)

    keys, err = m.ListExpired(ctx, *now)
    require.NoError(t, err)
    assert.Empty(t, keys)
}

func TestConcurrentLockSingleWinner(t *testing.T) {
    m, now := newTestLedger(t)
    ctx := context.Background()
    deadline := now.Add(5 * time.Minute)

    const attempts = 32
    var wg sync.WaitGroup
    errs := make([]error, attempts)
    for i := 0; i < attempts; i++ {
        wg.Add(1)
        go func(i int) {
            defer wg.Done()
            errs[i] = m.CompareAndSet(ctx, 10, 3,
                ledger.Expected{Status: ledger.StatusAvailable},
                ledger.Locked("caller", deadline))
        }(i)
    }
    wg.Wait()

    won := 0
    for _, err := range errs {
        if err == nil {
            won++
        } else {
            assert.ErrorIs(t, err, ledger.ErrConflict)
        }
    }
    assert.Equal(t, 1, won)
}
