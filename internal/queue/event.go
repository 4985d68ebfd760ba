// Package queue defines message payloads exchanged over the message broker.
package queue

// BookingConfirmedEvent is published when a booking is successfully created.
// It carries enough context for downstream consumers to log, notify or feed
// analytics without querying the primary database.
type BookingConfirmedEvent struct {
    BookingRef       string   `json:"booking_ref"`
    UserID           string   `json:"user_id"`
    ShowtimeID       uint64   `json:"showtime_id"`
    MovieTitle       string   `json:"movie_title"`
    ScreenName       string   `json:"screen_name"`
    TheaterName      string   `json:"theater_name"`
    StartsAt         string   `json:"starts_at"`
    EndsAt           string   `json:"ends_at"`
    SeatLabels       []string `json:"seats"`
    TotalAmountCents uint32   `json:"total_amount_cents"`
    ConfirmedAt      string   `json:"confirmed_at"`
}
