package engine_test

import (
    "context"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/movie-reservation-engine/internal/engine"
    "github.com/iliyamo/movie-reservation-engine/internal/ledger"
)

func newSweeper(f *fixture, interval time.Duration) *engine.ExpirySweeper {
    s := engine.NewExpirySweeper(f.ledger, interval)
    s.Now = func() time.Time { return f.now }
    return s
}

func TestSweepReclaimsExpiredHolds(t *testing.T) {
    f := newFixture(t)
    s := newSweeper(f, time.Second)
    ctx := context.Background()

    f.lockSeat(t, 10, 1, "alice", 60*time.Second)
    f.lockSeat(t, 10, 2, "bob", 600*time.Second)

    f.advance(61 * time.Second)
    n, err := s.Sweep(ctx)
    require.NoError(t, err)
    assert.Equal(t, 1, n)

    assert.Equal(t, ledger.StatusAvailable, f.statusOf(t, 10, 1))
    assert.Equal(t, ledger.StatusLocked, f.statusOf(t, 10, 2))

    // Nothing left to reclaim on the next pass.
    n, err = s.Sweep(ctx)
    require.NoError(t, err)
    assert.Equal(t, 0, n)
}

func TestSweepLosesRaceToNewClaim(t *testing.T) {
    f := newFixture(t)
    s := newSweeper(f, time.Second)
    ctx := context.Background()

    f.lockSeat(t, 10, 1, "alice", 60*time.Second)
    f.advance(61 * time.Second)

    // Between listing and reclaiming, carol takes the seat.  The sweep
    // must leave her hold alone.
    keys, err := f.ledger.ListExpired(ctx, f.now)
    require.NoError(t, err)
    require.Len(t, keys, 1)
    f.lockSeat(t, 10, 1, "carol", 300*time.Second)

    n, err := s.Sweep(ctx)
    require.NoError(t, err)
    assert.Equal(t, 0, n)
    assert.Equal(t, ledger.StatusLocked, f.statusOf(t, 10, 1))
}

func TestSweeperStopsOnContextCancel(t *testing.T) {
    f := newFixture(t)
    s := newSweeper(f, time.Millisecond)

    ctx, cancel := context.WithCancel(context.Background())
    done := make(chan struct{})
    go func() {
        s.Start(ctx)
        close(done)
    }()

    cancel()
    select {
    case <-done:
    case <-time.After(time.Second):
        t.Fatal("sweeper did not stop after cancel")
    }
}
