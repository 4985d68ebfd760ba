package ledger

import (
    "context"
    "database/sql"
    "time"
)

// MySQL persists the seat status table in the showtime_seats table.
// CompareAndSet is implemented as a single conditional UPDATE, so every
// transition is atomic at the row level without holding any
// application-level lock across the round trip.  Lazy expiry is
// expressed in SQL: an expected AVAILABLE also matches a LOCKED row
// whose locked_until has passed, and reads report such rows as
// AVAILABLE.
//
// Expected schema:
//
//  CREATE TABLE showtime_seats (
//      showtime_id  BIGINT UNSIGNED NOT NULL,
//      seat_id      BIGINT UNSIGNED NOT NULL,
//      status       ENUM('AVAILABLE','LOCKED','BOOKED') NOT NULL DEFAULT 'AVAILABLE',
//      holder       VARCHAR(64)  NULL,
//      locked_until DATETIME     NULL,
//      booking_ref  CHAR(36)     NULL,
//      PRIMARY KEY (showtime_id, seat_id),
//      KEY idx_locked_until (status, locked_until)
//  );
type MySQL struct {
    db *sql.DB
}

// NewMySQL returns a MySQL-backed ledger using the given DB handle.
func NewMySQL(db *sql.DB) *MySQL { return &MySQL{db: db} }

// materialize inserts AVAILABLE rows for every seat of the showtime's
// screen that does not have an entry yet.  INSERT IGNORE keeps the
// operation idempotent under concurrent first reads.  It returns
// ErrShowtimeNotFound when the showtime does not exist.
func (l *MySQL) materialize(ctx context.Context, showtimeID uint64) error {
    var exists bool
    err := l.db.QueryRowContext(ctx,
        `SELECT EXISTS(SELECT 1 FROM showtimes WHERE id = ?)`, showtimeID,
    ).Scan(&exists)
    if err != nil {
        return err
    }
    if !exists {
        return ErrShowtimeNotFound
    }
    _, err = l.db.ExecContext(ctx,
        `INSERT IGNORE INTO showtime_seats (showtime_id, seat_id, status)
         SELECT st.id, s.id, 'AVAILABLE'
         FROM showtimes st
         JOIN seats s ON s.screen_id = st.screen_id
         WHERE st.id = ?`,
        showtimeID,
    )
    return err
}

const readColumns = `seat_id,
    CASE WHEN status = 'LOCKED' AND locked_until <= UTC_TIMESTAMP() THEN 'AVAILABLE' ELSE status END,
    CASE WHEN status = 'LOCKED' AND locked_until >  UTC_TIMESTAMP() THEN holder ELSE NULL END,
    CASE WHEN status = 'LOCKED' AND locked_until >  UTC_TIMESTAMP() THEN locked_until ELSE NULL END,
    CASE WHEN status = 'BOOKED' THEN booking_ref ELSE NULL END`

func (l *MySQL) scanEntries(rows *sql.Rows, showtimeID uint64) ([]Entry, error) {
    defer rows.Close()
    var entries []Entry
    for rows.Next() {
        var (
            e      Entry
            status string
            holder sql.NullString
            until  sql.NullTime
            ref    sql.NullString
        )
        if err := rows.Scan(&e.SeatID, &status, &holder, &until, &ref); err != nil {
            return nil, err
        }
        e.ShowtimeID = showtimeID
        e.State.Status = Status(status)
        if holder.Valid {
            e.State.Holder = holder.String
        }
        if until.Valid {
            e.State.ExpiresAt = until.Time
        }
        if ref.Valid {
            e.State.BookingRef = ref.String
        }
        entries = append(entries, e)
    }
    return entries, rows.Err()
}

func (l *MySQL) Read(ctx context.Context, showtimeID uint64, seatIDs []uint64) ([]Entry, error) {
    if err := l.materialize(ctx, showtimeID); err != nil {
        return nil, err
    }
    if len(seatIDs) == 0 {
        return []Entry{}, nil
    }
    query := `SELECT ` + readColumns + ` FROM showtime_seats WHERE showtime_id = ? AND seat_id IN (`
    args := make([]interface{}, 0, len(seatIDs)+1)
    args = append(args, showtimeID)
    for i, id := range seatIDs {
        if i > 0 {
            query += ","
        }
        query += "?"
        args = append(args, id)
    }
    query += ")"
    rows, err := l.db.QueryContext(ctx, query, args...)
    if err != nil {
        return nil, err
    }
    entries, err := l.scanEntries(rows, showtimeID)
    if err != nil {
        return nil, err
    }
    if len(entries) != len(seatIDs) {
        return nil, ErrSeatNotFound
    }
    return entries, nil
}

func (l *MySQL) ReadAll(ctx context.Context, showtimeID uint64) ([]Entry, error) {
    if err := l.materialize(ctx, showtimeID); err != nil {
        return nil, err
    }
    rows, err := l.db.QueryContext(ctx,
        `SELECT `+readColumns+` FROM showtime_seats WHERE showtime_id = ? ORDER BY seat_id`,
        showtimeID,
    )
    if err != nil {
        return nil, err
    }
    return l.scanEntries(rows, showtimeID)
}

func (l *MySQL) CompareAndSet(ctx context.Context, showtimeID, seatID uint64, expected Expected, next State) error {
    var (
        cond string
        args []interface{}
    )
    switch expected.Status {
    case StatusAvailable:
        cond = `(status = 'AVAILABLE' OR (status = 'LOCKED' AND locked_until <= UTC_TIMESTAMP()))`
    case StatusLocked:
        cond = `status = 'LOCKED' AND holder = ? AND locked_until > UTC_TIMESTAMP()`
        args = append(args, expected.Holder)
    case StatusBooked:
        cond = `status = 'BOOKED' AND booking_ref = ?`
        args = append(args, expected.BookingRef)
    default:
        return ErrConflict
    }

    var (
        holder sql.NullString
        until  sql.NullTime
        ref    sql.NullString
    )
    if next.Status == StatusLocked {
        holder = sql.NullString{String: next.Holder, Valid: true}
        until = sql.NullTime{Time: next.ExpiresAt.UTC(), Valid: true}
    }
    if next.Status == StatusBooked {
        ref = sql.NullString{String: next.BookingRef, Valid: true}
    }

    query := `UPDATE showtime_seats
              SET status = ?, holder = ?, locked_until = ?, booking_ref = ?
              WHERE showtime_id = ? AND seat_id = ? AND ` + cond
    full := append([]interface{}{string(next.Status), holder, until, ref, showtimeID, seatID}, args...)

    res, err := l.db.ExecContext(ctx, query, full...)
    if err != nil {
        return err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n > 0 {
        return nil
    }

    // No row changed: either the entry is in a different state or it
    // does not exist yet.  Materialize and retry once so a CAS against
    // a never-read showtime still works, then report the mismatch.
    var exists bool
    err = l.db.QueryRowContext(ctx,
        `SELECT EXISTS(SELECT 1 FROM showtime_seats WHERE showtime_id = ? AND seat_id = ?)`,
        showtimeID, seatID,
    ).Scan(&exists)
    if err != nil {
        return err
    }
    if exists {
        return ErrConflict
    }
    if err := l.materialize(ctx, showtimeID); err != nil {
        return err
    }
    res, err = l.db.ExecContext(ctx, query, full...)
    if err != nil {
        return err
    }
    if n, err = res.RowsAffected(); err != nil {
        return err
    }
    if n > 0 {
        return nil
    }
    err = l.db.QueryRowContext(ctx,
        `SELECT EXISTS(SELECT 1 FROM showtime_seats WHERE showtime_id = ? AND seat_id = ?)`,
        showtimeID, seatID,
    ).Scan(&exists)
    if err != nil {
        return err
    }
    if !exists {
        return ErrSeatNotFound
    }
    return ErrConflict
}

func (l *MySQL) ListExpired(ctx context.Context, now time.Time) ([]Key, error) {
    rows, err := l.db.QueryContext(ctx,
        `SELECT showtime_id, seat_id FROM showtime_seats
         WHERE status = 'LOCKED' AND locked_until <= ?`,
        now.UTC(),
    )
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    var keys []Key
    for rows.Next() {
        var k Key
        if err := rows.Scan(&k.ShowtimeID, &k.SeatID); err != nil {
            return nil, err
        }
        keys = append(keys, k)
    }
    return keys, rows.Err()
}
