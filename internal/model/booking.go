package model

import "time"

// BookingStatusConfirmed is the only status this engine ever produces.
// Cancellation and refunds are outside its scope.
const BookingStatusConfirmed = "CONFIRMED"

// Booking records a caller's purchase of one or more seats for a
// showtime.  Bookings are immutable once created: the total amount is
// computed from the showtime price at booking time and never
// recalculated.  A booking exclusively owns its seat set; the ledger's
// booking reference on each seat is a back-reference for lookup only.
//
// Fields:
//  Ref              - opaque booking reference (UUID).
//  UserID           - caller identity that made the booking.
//  ShowtimeID       - showtime being booked.
//  Status           - always CONFIRMED.
//  TotalAmountCents - seat count × showtime price at booking time.
//  CreatedAt        - creation timestamp (UTC).
//  Seats            - seats purchased under this booking.
type Booking struct {
    Ref              string    // bookings.ref
    UserID           string    // bookings.user_id
    ShowtimeID       uint64    // bookings.showtime_id
    Status           string    // bookings.status
    TotalAmountCents uint32    // bookings.total_amount_cents
    CreatedAt        time.Time // bookings.created_at
    Seats            []Seat    // joined via booking_seats
}
