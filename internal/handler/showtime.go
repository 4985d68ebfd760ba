package handler

import (
    "net/http"
    "strconv"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/movie-reservation-engine/internal/model"
    "github.com/iliyamo/movie-reservation-engine/internal/repository"
)

// ShowtimeHandler serves the catalog side of the API: screens and
// showtime scheduling.  It writes reference data only; seat state is
// owned by the reservation engine.
type ShowtimeHandler struct {
    Showtimes *repository.ShowtimeRepo
    Movies    *repository.MovieRepo
    Screens   *repository.ScreenRepo
}

// NewShowtimeHandler constructs a ShowtimeHandler.
func NewShowtimeHandler(showtimes *repository.ShowtimeRepo, movies *repository.MovieRepo, screens *repository.ScreenRepo) *ShowtimeHandler {
    if showtimes == nil || movies == nil || screens == nil {
        panic("nil dependency passed to NewShowtimeHandler")
    }
    return &ShowtimeHandler{Showtimes: showtimes, Movies: movies, Screens: screens}
}

// ListScreens handles GET /v1/screens.  Screens are returned with
// their theater so clients can group them by venue.
func (h *ShowtimeHandler) ListScreens(c echo.Context) error {
    screens, err := h.Screens.ListScreens(c.Request().Context())
    if err != nil {
        return engineError(c, err)
    }
    items := make([]echo.Map, 0, len(screens))
    for _, s := range screens {
        items = append(items, screenJSON(s))
    }
    return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// CreateShowtime handles POST /v1/showtimes.  The end time is derived
// from the movie's runtime, so the body only carries the movie,
// screen, start time and per-seat price.
func (h *ShowtimeHandler) CreateShowtime(c echo.Context) error {
    var body struct {
        MovieID    uint64 `json:"movie_id"`
        ScreenID   uint64 `json:"screen_id"`
        StartsAt   string `json:"starts_at"`
        PriceCents uint32 `json:"price_cents"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    if body.MovieID == 0 || body.ScreenID == 0 || body.PriceCents == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "movie_id, screen_id and price_cents are required"})
    }
    startsAt, err := time.Parse(time.RFC3339, body.StartsAt)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "starts_at must be RFC3339"})
    }

    ctx := c.Request().Context()
    movie, err := h.Movies.GetMovie(ctx, body.MovieID)
    if err != nil {
        return engineError(c, err)
    }
    if _, err := h.Screens.GetScreen(ctx, body.ScreenID); err != nil {
        return engineError(c, err)
    }

    st := &model.Showtime{
        MovieID:    body.MovieID,
        ScreenID:   body.ScreenID,
        StartsAt:   startsAt.UTC(),
        EndsAt:     startsAt.UTC().Add(time.Duration(movie.DurationMins) * time.Minute),
        PriceCents: body.PriceCents,
    }
    if err := h.Showtimes.Create(ctx, st); err != nil {
        return engineError(c, err)
    }
    return c.JSON(http.StatusCreated, echo.Map{
        "id":          st.ID,
        "movie_id":    st.MovieID,
        "screen_id":   st.ScreenID,
        "starts_at":   st.StartsAt.UTC().Format(time.RFC3339),
        "ends_at":     st.EndsAt.UTC().Format(time.RFC3339),
        "price_cents": st.PriceCents,
    })
}

// UpdateShowtimePrice handles PATCH /v1/showtimes/:id/price.  The
// change only affects bookings made after it; existing bookings keep
// the amount copied at their creation.
func (h *ShowtimeHandler) UpdateShowtimePrice(c echo.Context) error {
    id, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil || id == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid showtime id"})
    }
    var body struct {
        PriceCents uint32 `json:"price_cents"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    if body.PriceCents == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "price_cents is required"})
    }
    if err := h.Showtimes.UpdatePrice(c.Request().Context(), id, body.PriceCents); err != nil {
        return engineError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"id": id, "price_cents": body.PriceCents})
}

// ListShowtimes handles GET /v1/movies/:id/showtimes.  Optional from/to
// query parameters bound the window; the default is the next seven days.
func (h *ShowtimeHandler) ListShowtimes(c echo.Context) error {
    movieID, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil || movieID == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid movie id"})
    }
    now := time.Now().UTC()
    from, to := now, now.Add(7*24*time.Hour)
    if v := c.QueryParam("from"); v != "" {
        if from, err = time.Parse(time.RFC3339, v); err != nil {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "from must be RFC3339"})
        }
    }
    if v := c.QueryParam("to"); v != "" {
        if to, err = time.Parse(time.RFC3339, v); err != nil {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "to must be RFC3339"})
        }
    }

    showtimes, err := h.Showtimes.ListByMovie(c.Request().Context(), movieID, from.UTC(), to.UTC())
    if err != nil {
        return engineError(c, err)
    }
    items := make([]echo.Map, 0, len(showtimes))
    for _, st := range showtimes {
        items = append(items, echo.Map{
            "id":          st.ID,
            "movie_id":    st.MovieID,
            "screen_id":   st.ScreenID,
            "starts_at":   st.StartsAt.UTC().Format(time.RFC3339),
            "ends_at":     st.EndsAt.UTC().Format(time.RFC3339),
            "price_cents": st.PriceCents,
        })
    }
    return c.JSON(http.StatusOK, echo.Map{"items": items})
}
