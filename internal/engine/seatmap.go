package engine

import (
    "context"
    "time"

    "github.com/iliyamo/movie-reservation-engine/internal/ledger"
    "github.com/iliyamo/movie-reservation-engine/internal/model"
)

// SeatMapProjector assembles the read view polled by clients: seat
// geometry joined with current ledger state plus movie and screen
// context.  It is a pure read; the ledger's lazy expiry guarantees an
// expired lock is never reported as LOCKED.
type SeatMapProjector struct {
    ledger    ledger.Ledger
    showtimes ShowtimeSource
    movies    MovieSource
    screens   ScreenSource

    // Now is the clock used to compute remaining lock time.
    Now func() time.Time
}

// NewSeatMapProjector constructs a projector.  All dependencies must be non-nil.
func NewSeatMapProjector(l ledger.Ledger, showtimes ShowtimeSource, movies MovieSource, screens ScreenSource) *SeatMapProjector {
    if l == nil || showtimes == nil || movies == nil || screens == nil {
        panic("nil dependency passed to NewSeatMapProjector")
    }
    return &SeatMapProjector{ledger: l, showtimes: showtimes, movies: movies, screens: screens, Now: time.Now}
}

// SeatView is one seat in the projection.  LockedUntil and
// LockRemaining are set only while the seat is validly LOCKED.
type SeatView struct {
    Seat          model.Seat
    Status        ledger.Status
    LockedUntil   *time.Time
    LockRemaining time.Duration
}

// SeatMap is the full projection for one showtime.
type SeatMap struct {
    Showtime model.Showtime
    Movie    model.Movie
    Screen   model.Screen
    Seats    []SeatView
}

// Project builds the seat map for a showtime.  Unknown showtimes fail
// with ledger.ErrShowtimeNotFound.
func (p *SeatMapProjector) Project(ctx context.Context, showtimeID uint64) (*SeatMap, error) {
    showtime, err := p.showtimes.GetShowtime(ctx, showtimeID)
    if err != nil {
        return nil, err
    }
    movie, err := p.movies.GetMovie(ctx, showtime.MovieID)
    if err != nil {
        return nil, err
    }
    screen, err := p.screens.GetScreen(ctx, showtime.ScreenID)
    if err != nil {
        return nil, err
    }
    seats, err := p.screens.SeatsForScreen(ctx, screen.ID)
    if err != nil {
        return nil, err
    }
    entries, err := p.ledger.ReadAll(ctx, showtimeID)
    if err != nil {
        return nil, err
    }

    states := make(map[uint64]ledger.State, len(entries))
    for _, e := range entries {
        states[e.SeatID] = e.State
    }

    now := p.Now().UTC()
    views := make([]SeatView, 0, len(seats))
    for _, seat := range seats {
        state, ok := states[seat.ID]
        if !ok {
            state = ledger.Available()
        }
        v := SeatView{Seat: seat, Status: state.Status}
        if state.Status == ledger.StatusLocked {
            until := state.ExpiresAt
            v.LockedUntil = &until
            if rem := until.Sub(now); rem > 0 {
                v.LockRemaining = rem
            }
        }
        views = append(views, v)
    }

    return &SeatMap{
        Showtime: *showtime,
        Movie:    *movie,
        Screen:   *screen,
        Seats:    views,
    }, nil
}
