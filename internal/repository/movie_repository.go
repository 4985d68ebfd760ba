package repository

import (
    "context"
    "database/sql"
    "errors"

    "github.com/iliyamo/movie-reservation-engine/internal/model"
)

// MovieRepo provides read access to the movies table.  Movie CRUD is
// owned by the catalog service; the reservation engine only needs
// lookups for seat map and booking context.
type MovieRepo struct {
    db *sql.DB
}

// NewMovieRepo returns a new MovieRepo bound to the provided database.
func NewMovieRepo(db *sql.DB) *MovieRepo { return &MovieRepo{db: db} }

// GetMovie fetches a single movie by ID.  It returns ErrMovieNotFound
// when no row exists.
func (r *MovieRepo) GetMovie(ctx context.Context, id uint64) (*model.Movie, error) {
    const q = `SELECT id, title, description, duration_mins, language, genre, poster_url, release_date, created_at
               FROM movies WHERE id = ?`
    var (
        m           model.Movie
        description sql.NullString
        language    sql.NullString
        genre       sql.NullString
        posterURL   sql.NullString
        releaseDate sql.NullTime
    )
    err := r.db.QueryRowContext(ctx, q, id).Scan(
        &m.ID, &m.Title, &description, &m.DurationMins,
        &language, &genre, &posterURL, &releaseDate, &m.CreatedAt,
    )
    if errors.Is(err, sql.ErrNoRows) {
        return nil, ErrMovieNotFound
    }
    if err != nil {
        return nil, err
    }
    if description.Valid {
        m.Description = &description.String
    }
    if language.Valid {
        m.Language = &language.String
    }
    if genre.Valid {
        m.Genre = &genre.String
    }
    if posterURL.Valid {
        m.PosterURL = &posterURL.String
    }
    if releaseDate.Valid {
        t := releaseDate.Time
        m.ReleaseDate = &t
    }
    return &m, nil
}
