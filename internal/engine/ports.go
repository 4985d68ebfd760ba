package engine

import (
    "context"

    "github.com/iliyamo/movie-reservation-engine/internal/model"
)

// ShowtimeSource resolves showtimes.  Implementations return
// ledger.ErrShowtimeNotFound for unknown IDs so callers can translate
// uniformly.
type ShowtimeSource interface {
    GetShowtime(ctx context.Context, id uint64) (*model.Showtime, error)
}

// MovieSource resolves movies for display context.
type MovieSource interface {
    GetMovie(ctx context.Context, id uint64) (*model.Movie, error)
}

// ScreenSource resolves screens and their seats for display context.
type ScreenSource interface {
    GetScreen(ctx context.Context, id uint64) (*model.Screen, error)
    SeatsForScreen(ctx context.Context, screenID uint64) ([]model.Seat, error)
}

// BookingStore persists and retrieves immutable booking records.
type BookingStore interface {
    Create(ctx context.Context, b *model.Booking) error
    // GetByRef returns the booking only when it belongs to userID;
    // otherwise ErrBookingNotFound.
    GetByRef(ctx context.Context, ref, userID string) (*model.Booking, error)
    // ListByUser returns the user's bookings most recent first.
    ListByUser(ctx context.Context, userID string, limit, offset int) ([]model.Booking, error)
}
