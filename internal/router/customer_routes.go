package router

import (
    "github.com/labstack/echo/v4"

    "github.com/iliyamo/movie-reservation-engine/internal/handler"
    "github.com/iliyamo/movie-reservation-engine/internal/middleware"
)

// RegisterCustomer registers the authenticated reservation endpoints
// under /v1.  All routes require a valid bearer token; the mutating
// seat operations additionally pass through the rate limiter so one
// aggressive client cannot starve a showtime's lock table.
func RegisterCustomer(e *echo.Echo, r *handler.ReservationHandler, jwtSecret string, limiter echo.MiddlewareFunc) {
    g := e.Group(
        "/v1",
        middleware.CallerIdentity(jwtSecret),
    )

    locks := g.Group("", limiter)
    locks.POST("/showtimes/:id/lock-seats", r.LockSeats)
    locks.DELETE("/showtimes/:id/lock-seats", r.ReleaseSeats)
    locks.POST("/bookings", r.CreateBooking)

    g.GET("/bookings/me", r.MyBookings)
    g.GET("/bookings/:ref", r.GetBooking)
}

// RegisterAdmin registers the scheduling endpoints under /v1.  They are
// token-protected like the customer routes; per-role authorization is
// out of scope for this service.
func RegisterAdmin(e *echo.Echo, s *handler.ShowtimeHandler, jwtSecret string) {
    g := e.Group(
        "/v1",
        middleware.CallerIdentity(jwtSecret),
    )
    g.POST("/showtimes", s.CreateShowtime)
    g.PATCH("/showtimes/:id/price", s.UpdateShowtimePrice)
}
