package handler

import (
    "context"
    "net/http"
    "strconv"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/movie-reservation-engine/internal/engine"
    "github.com/iliyamo/movie-reservation-engine/internal/model"
    "github.com/iliyamo/movie-reservation-engine/internal/queue"
    queue_publisher "github.com/iliyamo/movie-reservation-engine/internal/service"
)

// ReservationHandler exposes the reservation engine over HTTP: the
// polled seat map, seat locking and release, booking creation and the
// caller's booking history.  Caller identity is injected by the
// CallerIdentity middleware before any of these run.
type ReservationHandler struct {
    Locks       *engine.LockManager
    Coordinator *engine.BookingCoordinator
    Projector   *engine.SeatMapProjector
    Bookings    engine.BookingStore
    Showtimes   engine.ShowtimeSource
    Movies      engine.MovieSource
    Screens     engine.ScreenSource
}

// NewReservationHandler constructs a ReservationHandler with the
// provided engine components.  All dependencies must be non-nil.
func NewReservationHandler(locks *engine.LockManager, coordinator *engine.BookingCoordinator, projector *engine.SeatMapProjector, bookings engine.BookingStore, showtimes engine.ShowtimeSource, movies engine.MovieSource, screens engine.ScreenSource) *ReservationHandler {
    if locks == nil || coordinator == nil || projector == nil || bookings == nil {
        panic("nil dependency passed to NewReservationHandler")
    }
    return &ReservationHandler{
        Locks:       locks,
        Coordinator: coordinator,
        Projector:   projector,
        Bookings:    bookings,
        Showtimes:   showtimes,
        Movies:      movies,
        Screens:     screens,
    }
}

// GetSeatMap handles GET /v1/showtimes/:id/seats.  It returns every
// seat of the showtime's screen with its current status, the movie and
// screen context and, for locked seats, the lock deadline.  Polling
// clients call this every few seconds; expired locks are already
// reported AVAILABLE here, whether or not the sweeper has rewritten
// them.
func (h *ReservationHandler) GetSeatMap(c echo.Context) error {
    showtimeID, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil || showtimeID == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid showtime id"})
    }
    sm, err := h.Projector.Project(c.Request().Context(), showtimeID)
    if err != nil {
        return engineError(c, err)
    }

    seats := make([]echo.Map, 0, len(sm.Seats))
    for _, v := range sm.Seats {
        entry := echo.Map{
            "seat":   seatJSON(v.Seat),
            "status": v.Status,
        }
        if v.LockedUntil != nil {
            entry["locked_until"] = v.LockedUntil.UTC().Format(time.RFC3339)
            entry["lock_remaining_seconds"] = int(v.LockRemaining / time.Second)
        }
        seats = append(seats, entry)
    }

    return c.JSON(http.StatusOK, echo.Map{
        "showtime_id": sm.Showtime.ID,
        "price_cents": sm.Showtime.PriceCents,
        "starts_at":   sm.Showtime.StartsAt.UTC().Format(time.RFC3339),
        "ends_at":     sm.Showtime.EndsAt.UTC().Format(time.RFC3339),
        "movie":       movieJSON(sm.Movie),
        "screen":      screenJSON(sm.Screen),
        "seats":       seats,
    })
}

// LockSeats handles POST /v1/showtimes/:id/lock-seats.  The request
// body carries a "seat_ids" array and an optional "ttl_seconds".  The
// acquisition is all or nothing: any unavailable seat fails the whole
// request with 409 and no seat from the request stays locked.
func (h *ReservationHandler) LockSeats(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    showtimeID, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil || showtimeID == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid showtime id"})
    }
    var body struct {
        SeatIDs    []uint64 `json:"seat_ids"`
        TTLSeconds int64    `json:"ttl_seconds"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }

    grant, err := h.Locks.Acquire(c.Request().Context(), showtimeID, userID, body.SeatIDs,
        time.Duration(body.TTLSeconds)*time.Second)
    if err != nil {
        return engineError(c, err)
    }
    return c.JSON(http.StatusCreated, echo.Map{
        "showtime_id":      showtimeID,
        "locked_seat_ids":  grant.SeatIDs,
        "lock_ttl_seconds": int(grant.TTL / time.Second),
        "expires_at":       grant.ExpiresAt.UTC().Format(time.RFC3339),
    })
}

// ReleaseSeats handles DELETE /v1/showtimes/:id/lock-seats.  It
// releases the caller's holds on the listed seats; seats held by
// someone else or not locked are skipped, so repeating the call is
// harmless.  Responds with how many seats were released.
func (h *ReservationHandler) ReleaseSeats(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    showtimeID, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil || showtimeID == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid showtime id"})
    }
    var body struct {
        SeatIDs []uint64 `json:"seat_ids"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    released, err := h.Locks.Release(c.Request().Context(), showtimeID, userID, body.SeatIDs)
    if err != nil {
        return engineError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"released": released})
}

// CreateBooking handles POST /v1/bookings.  Seats may be AVAILABLE or
// locked by the caller; the client's "Confirm booking" action does not
// require a prior lock.  On success a CONFIRMED booking is returned
// and a booking.confirmed event is published to the broker.
func (h *ReservationHandler) CreateBooking(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    var body struct {
        ShowtimeID uint64   `json:"showtime_id"`
        SeatIDs    []uint64 `json:"seat_ids"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    if body.ShowtimeID == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "showtime_id is required"})
    }

    booking, err := h.Coordinator.Book(c.Request().Context(), body.ShowtimeID, userID, body.SeatIDs)
    if err != nil {
        return engineError(c, err)
    }

    go h.publishConfirmed(booking)

    return c.JSON(http.StatusCreated, h.bookingJSON(c.Request().Context(), booking))
}

// MyBookings handles GET /v1/bookings/me.  It returns the caller's
// bookings most recent first.  Optional limit/offset query parameters
// page through the history; the ordering key is stable across pages.
func (h *ReservationHandler) MyBookings(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    limit, _ := strconv.Atoi(c.QueryParam("limit"))
    offset, _ := strconv.Atoi(c.QueryParam("offset"))
    if offset < 0 {
        offset = 0
    }

    bookings, err := h.Bookings.ListByUser(c.Request().Context(), userID, limit, offset)
    if err != nil {
        return engineError(c, err)
    }
    items := make([]echo.Map, 0, len(bookings))
    for i := range bookings {
        items = append(items, h.bookingJSON(c.Request().Context(), &bookings[i]))
    }
    return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// GetBooking handles GET /v1/bookings/:ref.  Ownership is enforced in
// the store, so a booking belonging to another caller responds 404
// exactly like a missing one.
func (h *ReservationHandler) GetBooking(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    ref := c.Param("ref")
    if ref == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking ref"})
    }
    booking, err := h.Bookings.GetByRef(c.Request().Context(), ref, userID)
    if err != nil {
        return engineError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"item": h.bookingJSON(c.Request().Context(), booking)})
}

// bookingJSON renders a booking with its showtime and movie context.
// Context lookups are best effort: a missing movie or showtime leaves
// the field out rather than failing the whole response.
func (h *ReservationHandler) bookingJSON(ctx context.Context, b *model.Booking) echo.Map {
    seats := make([]echo.Map, 0, len(b.Seats))
    for _, s := range b.Seats {
        seats = append(seats, seatJSON(s))
    }
    out := echo.Map{
        "ref":                b.Ref,
        "showtime_id":        b.ShowtimeID,
        "status":             b.Status,
        "total_amount_cents": b.TotalAmountCents,
        "created_at":         b.CreatedAt.UTC().Format(time.RFC3339),
        "seats":              seats,
    }
    showtime, err := h.Showtimes.GetShowtime(ctx, b.ShowtimeID)
    if err != nil {
        return out
    }
    out["showtime"] = echo.Map{
        "id":          showtime.ID,
        "screen_id":   showtime.ScreenID,
        "starts_at":   showtime.StartsAt.UTC().Format(time.RFC3339),
        "ends_at":     showtime.EndsAt.UTC().Format(time.RFC3339),
        "price_cents": showtime.PriceCents,
    }
    if movie, err := h.Movies.GetMovie(ctx, showtime.MovieID); err == nil {
        out["movie"] = movieJSON(*movie)
    }
    return out
}

// publishConfirmed assembles and publishes the booking.confirmed event
// off the request path.  A broker failure only costs the event.
func (h *ReservationHandler) publishConfirmed(b *model.Booking) {
    ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
    defer cancel()

    ev := queue.BookingConfirmedEvent{
        BookingRef:       b.Ref,
        UserID:           b.UserID,
        ShowtimeID:       b.ShowtimeID,
        TotalAmountCents: b.TotalAmountCents,
        ConfirmedAt:      b.CreatedAt.UTC().Format(time.RFC3339),
    }
    for _, s := range b.Seats {
        ev.SeatLabels = append(ev.SeatLabels, s.Label())
    }
    if showtime, err := h.Showtimes.GetShowtime(ctx, b.ShowtimeID); err == nil {
        ev.StartsAt = showtime.StartsAt.UTC().Format(time.RFC3339)
        ev.EndsAt = showtime.EndsAt.UTC().Format(time.RFC3339)
        if movie, err := h.Movies.GetMovie(ctx, showtime.MovieID); err == nil {
            ev.MovieTitle = movie.Title
        }
        if screen, err := h.Screens.GetScreen(ctx, showtime.ScreenID); err == nil {
            ev.ScreenName = screen.Name
            if screen.Theater != nil {
                ev.TheaterName = screen.Theater.Name
            }
        }
    }
    _ = queue_publisher.PublishBookingConfirmed(ctx, ev)
}

func seatJSON(s model.Seat) echo.Map {
    return echo.Map{
        "id":        s.ID,
        "screen_id": s.ScreenID,
        "seat_row":  s.Row,
        "seat_col":  s.Col,
        "seat_type": s.SeatType,
        "label":     s.Label(),
    }
}

func movieJSON(m model.Movie) echo.Map {
    out := echo.Map{
        "id":            m.ID,
        "title":         m.Title,
        "duration_mins": m.DurationMins,
    }
    if m.Description != nil {
        out["description"] = *m.Description
    }
    if m.Language != nil {
        out["language"] = *m.Language
    }
    if m.Genre != nil {
        out["genre"] = *m.Genre
    }
    if m.PosterURL != nil {
        out["poster_url"] = *m.PosterURL
    }
    if m.ReleaseDate != nil {
        out["release_date"] = m.ReleaseDate.UTC().Format("2006-01-02")
    }
    return out
}

func screenJSON(s model.Screen) echo.Map {
    out := echo.Map{
        "id":         s.ID,
        "theater_id": s.TheaterID,
        "name":       s.Name,
        "total_rows": s.TotalRows,
        "total_cols": s.TotalCols,
    }
    if s.Theater != nil {
        theater := echo.Map{
            "id":   s.Theater.ID,
            "name": s.Theater.Name,
            "city": s.Theater.City,
        }
        if s.Theater.Address != nil {
            theater["address"] = *s.Theater.Address
        }
        out["theater"] = theater
    }
    return out
}
