package model

import "time"

// Showtime is a scheduled screening of a movie on a particular screen.
// It carries the per-seat price for that screening.  A showtime is
// treated as immutable once seats have been sold against it: the price
// is copied into each booking at creation time, so later price changes
// never affect existing bookings.
//
// Fields:
//  ID         - primary key identifier.
//  MovieID    - movie being screened.
//  ScreenID   - screen the showtime runs on.
//  StartsAt   - when the screening begins (UTC).
//  EndsAt     - when the screening ends; derived from the movie duration.
//  PriceCents - price per seat in cents at the time of sale.
type Showtime struct {
    ID         uint64    // showtimes.id
    MovieID    uint64    // showtimes.movie_id
    ScreenID   uint64    // showtimes.screen_id
    StartsAt   time.Time // showtimes.starts_at
    EndsAt     time.Time // showtimes.ends_at
    PriceCents uint32    // showtimes.price_cents
}
