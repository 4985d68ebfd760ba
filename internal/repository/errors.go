// Package repository provides MySQL-backed access to the catalog
// (movies, theaters, screens, seats, showtimes) and to persisted
// bookings. The seat status table itself lives in the ledger package;
// repositories here only serve reference data and immutable records.
package repository

import "errors"

// ErrMovieNotFound is returned when a movie ID does not exist.
// Handlers translate this into an HTTP 404 response.
var ErrMovieNotFound = errors.New("movie not found")

// ErrScreenNotFound is returned when a screen ID does not exist.
// Handlers translate this into an HTTP 404 response.
var ErrScreenNotFound = errors.New("screen not found")
