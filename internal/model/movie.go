package model

import "time"

// Movie holds the catalog information for a film.  The reservation
// engine treats movies as static reference data: it only reads the
// title, duration and descriptive fields to enrich seat maps and
// booking responses.
//
// Fields:
//  ID           - primary key identifier.
//  Title        - display title of the movie.
//  Description  - optional synopsis.
//  DurationMins - runtime in minutes; used to derive showtime end times.
//  Language     - optional spoken language.
//  Genre        - optional genre label.
//  PosterURL    - optional poster image location.
//  ReleaseDate  - optional release date.
//  CreatedAt    - creation timestamp.
type Movie struct {
    ID           uint64     // movies.id
    Title        string     // movies.title
    Description  *string    // movies.description (nullable)
    DurationMins uint32     // movies.duration_mins
    Language     *string    // movies.language (nullable)
    Genre        *string    // movies.genre (nullable)
    PosterURL    *string    // movies.poster_url (nullable)
    ReleaseDate  *time.Time // movies.release_date (nullable)
    CreatedAt    time.Time  // movies.created_at
}
