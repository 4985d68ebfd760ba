package repository

import (
    "context"
    "database/sql"
    "errors"
    "time"

    "github.com/iliyamo/movie-reservation-engine/internal/ledger"
    "github.com/iliyamo/movie-reservation-engine/internal/model"
)

// ShowtimeRepo provides access to the showtimes table.  Besides plain
// lookups it implements the ledger's topology source: the seat IDs a
// showtime's status table is materialized from.
type ShowtimeRepo struct {
    db *sql.DB
}

// NewShowtimeRepo returns a new ShowtimeRepo bound to the provided database.
func NewShowtimeRepo(db *sql.DB) *ShowtimeRepo { return &ShowtimeRepo{db: db} }

// Create inserts a new showtime and populates its generated ID.  The
// end time is expected to have been derived from the movie duration by
// the caller.
func (r *ShowtimeRepo) Create(ctx context.Context, st *model.Showtime) error {
    const q = `INSERT INTO showtimes (movie_id, screen_id, starts_at, ends_at, price_cents)
               VALUES (?, ?, ?, ?, ?)`
    res, err := r.db.ExecContext(ctx, q,
        st.MovieID, st.ScreenID, st.StartsAt.UTC(), st.EndsAt.UTC(), st.PriceCents)
    if err != nil {
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    st.ID = uint64(id)
    return nil
}

// GetShowtime fetches a single showtime by ID.  It returns
// ledger.ErrShowtimeNotFound when no row exists so every layer shares
// one not-found sentinel for showtimes.
func (r *ShowtimeRepo) GetShowtime(ctx context.Context, id uint64) (*model.Showtime, error) {
    const q = `SELECT id, movie_id, screen_id, starts_at, ends_at, price_cents
               FROM showtimes WHERE id = ?`
    var st model.Showtime
    err := r.db.QueryRowContext(ctx, q, id).Scan(
        &st.ID, &st.MovieID, &st.ScreenID, &st.StartsAt, &st.EndsAt, &st.PriceCents)
    if errors.Is(err, sql.ErrNoRows) {
        return nil, ledger.ErrShowtimeNotFound
    }
    if err != nil {
        return nil, err
    }
    return &st, nil
}

// UpdatePrice changes the per-seat price of a showtime.  Existing
// bookings are unaffected: the price was copied into each of them at
// creation time.
func (r *ShowtimeRepo) UpdatePrice(ctx context.Context, id uint64, priceCents uint32) error {
    res, err := r.db.ExecContext(ctx,
        `UPDATE showtimes SET price_cents = ? WHERE id = ?`, priceCents, id)
    if err != nil {
        return err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        return ledger.ErrShowtimeNotFound
    }
    return nil
}

// ListByMovie returns a movie's showtimes starting within [from, to),
// ordered by start time.
func (r *ShowtimeRepo) ListByMovie(ctx context.Context, movieID uint64, from, to time.Time) ([]model.Showtime, error) {
    const q = `SELECT id, movie_id, screen_id, starts_at, ends_at, price_cents
               FROM showtimes
               WHERE movie_id = ? AND starts_at >= ? AND starts_at < ?
               ORDER BY starts_at`
    rows, err := r.db.QueryContext(ctx, q, movieID, from.UTC(), to.UTC())
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    var showtimes []model.Showtime
    for rows.Next() {
        var st model.Showtime
        if err := rows.Scan(&st.ID, &st.MovieID, &st.ScreenID, &st.StartsAt, &st.EndsAt, &st.PriceCents); err != nil {
            return nil, err
        }
        showtimes = append(showtimes, st)
    }
    return showtimes, rows.Err()
}

// SeatIDsForShowtime returns the seat IDs of the showtime's screen.
// It satisfies ledger.TopologySource and returns
// ledger.ErrShowtimeNotFound for unknown showtimes.
func (r *ShowtimeRepo) SeatIDsForShowtime(ctx context.Context, showtimeID uint64) ([]uint64, error) {
    if _, err := r.GetShowtime(ctx, showtimeID); err != nil {
        return nil, err
    }
    const q = `SELECT s.id
               FROM seats s
               JOIN showtimes st ON st.screen_id = s.screen_id
               WHERE st.id = ?
               ORDER BY s.id`
    rows, err := r.db.QueryContext(ctx, q, showtimeID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    var ids []uint64
    for rows.Next() {
        var id uint64
        if err := rows.Scan(&id); err != nil {
            return nil, err
        }
        ids = append(ids, id)
    }
    return ids, rows.Err()
}
