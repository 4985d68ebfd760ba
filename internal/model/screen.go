package model

// Screen is an auditorium inside a theater.  Its row and column counts
// describe the seat grid rendered by clients; the individual seats are
// stored separately and referenced by showtime seat entries.
//
// Fields:
//  ID        - primary key identifier.
//  TheaterID - theater this screen belongs to.
//  Name      - screen name within the theater.
//  TotalRows - number of seat rows.
//  TotalCols - number of seat columns.
//  Theater   - optional embedded theater for display responses.
type Screen struct {
    ID        uint64   // screens.id
    TheaterID uint64   // screens.theater_id
    Name      string   // screens.name
    TotalRows uint32   // screens.total_rows
    TotalCols uint32   // screens.total_cols
    Theater   *Theater // joined theater, populated by list queries
}
