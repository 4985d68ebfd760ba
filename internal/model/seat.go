package model

import "fmt"

// Seat describes a physical seat in a screen.  Seats are uniquely
// identified by their screen, row label and column number.  They are
// static reference data; per-showtime availability lives in the seat
// ledger, not here.
//
// Fields:
//  ID       - primary key identifier.
//  ScreenID - screen to which this seat belongs.
//  Row      - letter or string designating the row (e.g. "A").
//  Col      - column number of the seat within the row.
//  SeatType - type of seat (REGULAR, PREMIUM, ...).
type Seat struct {
    ID       uint64 // seats.id
    ScreenID uint64 // seats.screen_id
    Row      string // seats.seat_row
    Col      uint32 // seats.seat_col
    SeatType string // seats.seat_type
}

// Label returns the human-readable seat designation, e.g. "A7".
func (s Seat) Label() string {
    return fmt.Sprintf("%s%d", s.Row, s.Col)
}
