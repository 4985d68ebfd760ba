package repository

import (
    "context"
    "database/sql"
    "errors"

    "github.com/iliyamo/movie-reservation-engine/internal/engine"
    "github.com/iliyamo/movie-reservation-engine/internal/model"
)

// BookingRepo persists immutable booking records and their seat sets.
// Bookings are only ever inserted; there is no update path.
type BookingRepo struct {
    db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the provided database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// Create inserts the booking and its booking_seats rows in one
// transaction.  The booking's Seats slice must carry at least the seat
// IDs; remaining seat columns are resolved from the seats table on read.
func (r *BookingRepo) Create(ctx context.Context, b *model.Booking) error {
    tx, err := r.db.BeginTx(ctx, nil)
    if err != nil {
        return err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    const ins = `INSERT INTO bookings (ref, user_id, showtime_id, status, total_amount_cents, created_at)
                 VALUES (?, ?, ?, ?, ?, ?)`
    if _, err := tx.ExecContext(ctx, ins,
        b.Ref, b.UserID, b.ShowtimeID, b.Status, b.TotalAmountCents, b.CreatedAt.UTC()); err != nil {
        return err
    }

    if len(b.Seats) > 0 {
        query := `INSERT INTO booking_seats (booking_ref, seat_id) VALUES `
        args := make([]interface{}, 0, len(b.Seats)*2)
        for i, s := range b.Seats {
            if i > 0 {
                query += ","
            }
            query += "(?, ?)"
            args = append(args, b.Ref, s.ID)
        }
        if _, err := tx.ExecContext(ctx, query, args...); err != nil {
            return err
        }
    }

    if err := tx.Commit(); err != nil {
        return err
    }
    committed = true
    return nil
}

// GetByRef returns the booking with its seats, but only when it
// belongs to userID.  Ownership is enforced in the query itself, so a
// foreign booking is indistinguishable from a missing one.
func (r *BookingRepo) GetByRef(ctx context.Context, ref, userID string) (*model.Booking, error) {
    const q = `SELECT ref, user_id, showtime_id, status, total_amount_cents, created_at
               FROM bookings WHERE ref = ? AND user_id = ?`
    var b model.Booking
    err := r.db.QueryRowContext(ctx, q, ref, userID).Scan(
        &b.Ref, &b.UserID, &b.ShowtimeID, &b.Status, &b.TotalAmountCents, &b.CreatedAt)
    if errors.Is(err, sql.ErrNoRows) {
        return nil, engine.ErrBookingNotFound
    }
    if err != nil {
        return nil, err
    }
    if b.Seats, err = r.seatsForBooking(ctx, b.Ref); err != nil {
        return nil, err
    }
    return &b, nil
}

// ListByUser returns the user's bookings most recent first.  The
// ordering key (created_at, ref) is stable across pages; limit <= 0
// means no limit.
func (r *BookingRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]model.Booking, error) {
    q := `SELECT ref, user_id, showtime_id, status, total_amount_cents, created_at
          FROM bookings WHERE user_id = ?
          ORDER BY created_at DESC, ref DESC`
    args := []interface{}{userID}
    if limit > 0 {
        q += ` LIMIT ? OFFSET ?`
        args = append(args, limit, offset)
    }
    rows, err := r.db.QueryContext(ctx, q, args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    var bookings []model.Booking
    for rows.Next() {
        var b model.Booking
        if err := rows.Scan(&b.Ref, &b.UserID, &b.ShowtimeID, &b.Status, &b.TotalAmountCents, &b.CreatedAt); err != nil {
            return nil, err
        }
        bookings = append(bookings, b)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    for i := range bookings {
        if bookings[i].Seats, err = r.seatsForBooking(ctx, bookings[i].Ref); err != nil {
            return nil, err
        }
    }
    return bookings, nil
}

func (r *BookingRepo) seatsForBooking(ctx context.Context, ref string) ([]model.Seat, error) {
    const q = `SELECT s.id, s.screen_id, s.seat_row, s.seat_col, s.seat_type
               FROM booking_seats bs
               JOIN seats s ON s.id = bs.seat_id
               WHERE bs.booking_ref = ?
               ORDER BY s.seat_row, s.seat_col`
    rows, err := r.db.QueryContext(ctx, q, ref)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    var seats []model.Seat
    for rows.Next() {
        var s model.Seat
        if err := rows.Scan(&s.ID, &s.ScreenID, &s.Row, &s.Col, &s.SeatType); err != nil {
            return nil, err
        }
        seats = append(seats, s)
    }
    return seats, rows.Err()
}
