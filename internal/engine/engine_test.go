package engine_test

import (
    "context"
    "errors"
    "testing"
    "time"

    "github.com/iliyamo/movie-reservation-engine/internal/engine"
    "github.com/iliyamo/movie-reservation-engine/internal/ledger"
    "github.com/iliyamo/movie-reservation-engine/internal/model"
)

// fixture wires a memory ledger and in-process catalog fakes around a
// shared, test-controlled clock.
type fixture struct {
    ledger   *ledger.Memory
    catalog  *fakeCatalog
    bookings *fakeBookingStore
    now      time.Time
}

func newFixture(t *testing.T) *fixture {
    t.Helper()
    f := &fixture{
        now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
        catalog: &fakeCatalog{
            movies: map[uint64]model.Movie{
                1: {ID: 1, Title: "Arrival", DurationMins: 116},
            },
            screens: map[uint64]model.Screen{
                5: {ID: 5, TheaterID: 2, Name: "Screen 1", TotalRows: 2, TotalCols: 2,
                    Theater: &model.Theater{ID: 2, Name: "Downtown", City: "Springfield"}},
            },
            seats: map[uint64][]model.Seat{
                5: {
                    {ID: 1, ScreenID: 5, Row: "A", Col: 1, SeatType: "REGULAR"},
                    {ID: 2, ScreenID: 5, Row: "A", Col: 2, SeatType: "REGULAR"},
                    {ID: 3, ScreenID: 5, Row: "B", Col: 1, SeatType: "PREMIUM"},
                    {ID: 4, ScreenID: 5, Row: "B", Col: 2, SeatType: "PREMIUM"},
                },
            },
            showtimes: map[uint64]model.Showtime{
                10: {ID: 10, MovieID: 1, ScreenID: 5,
                    StartsAt:   time.Date(2026, 3, 1, 19, 0, 0, 0, time.UTC),
                    EndsAt:     time.Date(2026, 3, 1, 20, 56, 0, 0, time.UTC),
                    PriceCents: 1200},
            },
        },
        bookings: &fakeBookingStore{},
    }
    f.ledger = ledger.NewMemory(f.catalog)
    f.ledger.Now = func() time.Time { return f.now }
    return f
}

func (f *fixture) advance(d time.Duration) { f.now = f.now.Add(d) }

// fakeCatalog serves showtimes, movies, screens and seat topology from
// maps.  It satisfies every catalog-side port plus the ledger's
// topology source.
type fakeCatalog struct {
    movies    map[uint64]model.Movie
    screens   map[uint64]model.Screen
    seats     map[uint64][]model.Seat
    showtimes map[uint64]model.Showtime
}

func (f *fakeCatalog) GetShowtime(_ context.Context, id uint64) (*model.Showtime, error) {
    st, ok := f.showtimes[id]
    if !ok {
        return nil, ledger.ErrShowtimeNotFound
    }
    return &st, nil
}

func (f *fakeCatalog) GetMovie(_ context.Context, id uint64) (*model.Movie, error) {
    m, ok := f.movies[id]
    if !ok {
        return nil, errors.New("movie not found")
    }
    return &m, nil
}

func (f *fakeCatalog) GetScreen(_ context.Context, id uint64) (*model.Screen, error) {
    s, ok := f.screens[id]
    if !ok {
        return nil, errors.New("screen not found")
    }
    return &s, nil
}

func (f *fakeCatalog) SeatsForScreen(_ context.Context, screenID uint64) ([]model.Seat, error) {
    return f.seats[screenID], nil
}

func (f *fakeCatalog) SeatIDsForShowtime(_ context.Context, showtimeID uint64) ([]uint64, error) {
    st, ok := f.showtimes[showtimeID]
    if !ok {
        return nil, ledger.ErrShowtimeNotFound
    }
    ids := make([]uint64, 0, len(f.seats[st.ScreenID]))
    for _, s := range f.seats[st.ScreenID] {
        ids = append(ids, s.ID)
    }
    return ids, nil
}

// fakeBookingStore records created bookings in memory.  failNext makes
// the next Create fail, for rollback scenarios.
type fakeBookingStore struct {
    created  []model.Booking
    failNext bool
}

func (f *fakeBookingStore) Create(_ context.Context, b *model.Booking) error {
    if f.failNext {
        f.failNext = false
        return errors.New("insert failed")
    }
    f.created = append(f.created, *b)
    return nil
}

func (f *fakeBookingStore) GetByRef(_ context.Context, ref, userID string) (*model.Booking, error) {
    for i := range f.created {
        if f.created[i].Ref == ref && f.created[i].UserID == userID {
            return &f.created[i], nil
        }
    }
    return nil, engine.ErrBookingNotFound
}

func (f *fakeBookingStore) ListByUser(_ context.Context, userID string, limit, offset int) ([]model.Booking, error) {
    var out []model.Booking
    for i := len(f.created) - 1; i >= 0; i-- {
        if f.created[i].UserID == userID {
            out = append(out, f.created[i])
        }
    }
    if offset > len(out) {
        offset = len(out)
    }
    out = out[offset:]
    if limit > 0 && limit < len(out) {
        out = out[:limit]
    }
    return out, nil
}

// statusOf reads a single seat's effective status from the ledger.
func (f *fixture) statusOf(t *testing.T, showtimeID, seatID uint64) ledger.Status {
    t.Helper()
    entries, err := f.ledger.Read(context.Background(), showtimeID, []uint64{seatID})
    if err != nil {
        t.Fatalf("read seat %d: %v", seatID, err)
    }
    return entries[0].State.Status
}

// lockSeat locks one seat directly through the ledger, bypassing the
// manager, to stage foreign holds.
func (f *fixture) lockSeat(t *testing.T, showtimeID, seatID uint64, holder string, ttl time.Duration) {
    t.Helper()
    err := f.ledger.CompareAndSet(context.Background(), showtimeID, seatID,
        ledger.Expected{Status: ledger.StatusAvailable},
        ledger.Locked(holder, f.now.Add(ttl)))
    if err != nil {
        t.Fatalf("stage lock on seat %d: %v", seatID, err)
    }
}
