package handler

import (
    "errors"
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/movie-reservation-engine/internal/engine"
    "github.com/iliyamo/movie-reservation-engine/internal/ledger"
    "github.com/iliyamo/movie-reservation-engine/internal/repository"
)

// getUserID extracts the caller identity placed in the context by the
// CallerIdentity middleware.  An empty value means the middleware was
// not applied or rejected the request.
func getUserID(c echo.Context) (string, error) {
    if v, ok := c.Get("user_id").(string); ok && v != "" {
        return v, nil
    }
    return "", errors.New("no user in context")
}

// engineError translates engine and repository failures into the HTTP
// responses of the boundary contract: 404 for unknown resources, 409
// for seat conflicts the caller should resolve by refreshing the seat
// map, 400 for invalid requests and 500 for everything else.  Errors
// are surfaced verbatim; the engine never retries on the caller's
// behalf, and neither does this layer.
func engineError(c echo.Context, err error) error {
    var unavailable *engine.SeatUnavailableError
    switch {
    case errors.Is(err, ledger.ErrShowtimeNotFound):
        return c.JSON(http.StatusNotFound, echo.Map{"error": "showtime not found"})
    case errors.Is(err, ledger.ErrSeatNotFound):
        return c.JSON(http.StatusNotFound, echo.Map{"error": "seat not found for showtime"})
    case errors.Is(err, repository.ErrMovieNotFound):
        return c.JSON(http.StatusNotFound, echo.Map{"error": "movie not found"})
    case errors.Is(err, repository.ErrScreenNotFound):
        return c.JSON(http.StatusNotFound, echo.Map{"error": "screen not found"})
    case errors.Is(err, engine.ErrBookingNotFound):
        return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
    case errors.As(err, &unavailable):
        return c.JSON(http.StatusConflict, echo.Map{
            "error":       "some seats are unavailable",
            "unavailable": unavailable.SeatIDs,
        })
    case errors.Is(err, engine.ErrEmptySeatSelection):
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "seat_ids is required"})
    case errors.Is(err, engine.ErrTTLOutOfRange):
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "requested ttl exceeds maximum"})
    default:
        c.Logger().Errorf("reservation engine error: %v", err)
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
    }
}
