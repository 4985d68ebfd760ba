package repository

import (
    "context"
    "database/sql"
    "errors"

    "github.com/iliyamo/movie-reservation-engine/internal/model"
)

// ScreenRepo provides read access to screens, their theaters and their
// seats.  All of this is static reference data from the engine's point
// of view.
type ScreenRepo struct {
    db *sql.DB
}

// NewScreenRepo returns a new ScreenRepo bound to the provided database.
func NewScreenRepo(db *sql.DB) *ScreenRepo { return &ScreenRepo{db: db} }

// GetScreen fetches a screen with its theater joined in.  It returns
// ErrScreenNotFound when no row exists.
func (r *ScreenRepo) GetScreen(ctx context.Context, id uint64) (*model.Screen, error) {
    const q = `SELECT sc.id, sc.theater_id, sc.name, sc.total_rows, sc.total_cols,
                      t.id, t.name, t.city, t.address
               FROM screens sc
               JOIN theaters t ON t.id = sc.theater_id
               WHERE sc.id = ?`
    var (
        s       model.Screen
        th      model.Theater
        address sql.NullString
    )
    err := r.db.QueryRowContext(ctx, q, id).Scan(
        &s.ID, &s.TheaterID, &s.Name, &s.TotalRows, &s.TotalCols,
        &th.ID, &th.Name, &th.City, &address,
    )
    if errors.Is(err, sql.ErrNoRows) {
        return nil, ErrScreenNotFound
    }
    if err != nil {
        return nil, err
    }
    if address.Valid {
        th.Address = &address.String
    }
    s.Theater = &th
    return &s, nil
}

// ListScreens returns all screens with their theaters, ordered by ID.
// Used by the scheduling endpoint so operators can pick a screen.
func (r *ScreenRepo) ListScreens(ctx context.Context) ([]model.Screen, error) {
    const q = `SELECT sc.id, sc.theater_id, sc.name, sc.total_rows, sc.total_cols,
                      t.id, t.name, t.city, t.address
               FROM screens sc
               JOIN theaters t ON t.id = sc.theater_id
               ORDER BY sc.id`
    rows, err := r.db.QueryContext(ctx, q)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    var screens []model.Screen
    for rows.Next() {
        var (
            s       model.Screen
            th      model.Theater
            address sql.NullString
        )
        if err := rows.Scan(
            &s.ID, &s.TheaterID, &s.Name, &s.TotalRows, &s.TotalCols,
            &th.ID, &th.Name, &th.City, &address,
        ); err != nil {
            return nil, err
        }
        if address.Valid {
            th.Address = &address.String
        }
        s.Theater = &th
        screens = append(screens, s)
    }
    return screens, rows.Err()
}

// SeatsForScreen returns every seat of a screen ordered by row and
// column, the order clients render the grid in.
func (r *ScreenRepo) SeatsForScreen(ctx context.Context, screenID uint64) ([]model.Seat, error) {
    const q = `SELECT id, screen_id, seat_row, seat_col, seat_type
               FROM seats WHERE screen_id = ?
               ORDER BY seat_row, seat_col`
    rows, err := r.db.QueryContext(ctx, q, screenID)
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
