package router

import (
    "github.com/labstack/echo/v4"

    "github.com/iliyamo/movie-reservation-engine/internal/handler"
)

// RegisterRoutes registers routes that do not require authentication on
// the provided Echo instance.  The health check is used by load
// balancers and monitoring systems; the catalog and seat map endpoints
// are public so guests can browse screens and watch seat availability
// before signing in.
func RegisterRoutes(e *echo.Echo, s *handler.ShowtimeHandler, r *handler.ReservationHandler) {
    e.GET("/healthz", handler.Health)

    // Browse endpoints.  Seat availability is readable without a
    // session; holding or booking a seat requires one.
    e.GET("/v1/screens", s.ListScreens)
    e.GET("/v1/movies/:id/showtimes", s.ListShowtimes)
    e.GET("/v1/showtimes/:id/seats", r.GetSeatMap)
}
