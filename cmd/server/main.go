package main // Entry point package

import (
    "context"
    "log"

    "github.com/joho/godotenv"
    "github.com/labstack/echo/v4"

    "github.com/iliyamo/movie-reservation-engine/internal/config"
    "github.com/iliyamo/movie-reservation-engine/internal/database"
    "github.com/iliyamo/movie-reservation-engine/internal/engine"
    "github.com/iliyamo/movie-reservation-engine/internal/handler"
    "github.com/iliyamo/movie-reservation-engine/internal/ledger"
    "github.com/iliyamo/movie-reservation-engine/internal/middleware"
    "github.com/iliyamo/movie-reservation-engine/internal/queue"
    "github.com/iliyamo/movie-reservation-engine/internal/repository"
    "github.com/iliyamo/movie-reservation-engine/internal/router"
)

func main() {
    _ = godotenv.Load() // .env is optional; real env vars win

    cfg := config.Load()

    db, err := database.Open(cfg)
    if err != nil {
        log.Fatalf("database connection failed: %v", err)
    }
    defer db.Close()

    // Catalog repositories.
    movies := repository.NewMovieRepo(db)
    screens := repository.NewScreenRepo(db)
    showtimes := repository.NewShowtimeRepo(db)
    bookings := repository.NewBookingRepo(db)

    // The seat ledger owns all per-showtime seat state.  Every mutation
    // in the system goes through its compare-and-set.
    seatLedger := ledger.NewMySQL(db)

    locks := engine.NewLockManager(seatLedger, cfg.LockTTL, cfg.LockTTLMax)
    coordinator := engine.NewBookingCoordinator(seatLedger, showtimes, screens, bookings)
    projector := engine.NewSeatMapProjector(seatLedger, showtimes, movies, screens)
    sweeper := engine.NewExpirySweeper(seatLedger, cfg.SweepInterval)

    ctx, cancel := context.WithCancel(context.Background())
    defer cancel()
    go sweeper.Start(ctx)

    // Consume booking.confirmed events in the background.  The consumer
    // reconnects on broker failure and never takes the API down.
    go func() {
        if err := queue.StartBookingConsumer(); err != nil {
            log.Printf("booking consumer stopped: %v", err)
        }
    }()

    e := echo.New()

    rdb := config.NewRedisClient()
    limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)

    reservations := handler.NewReservationHandler(locks, coordinator, projector, bookings, showtimes, movies, screens)
    catalog := handler.NewShowtimeHandler(showtimes, movies, screens)

    router.RegisterRoutes(e, catalog, reservations)
    router.RegisterCustomer(e, reservations, cfg.JWTSecret, limiter)
    router.RegisterAdmin(e, catalog, cfg.JWTSecret)

    addr := ":" + cfg.Port
    log.Printf("listening on %s (env=%s)", addr, cfg.Env)

    if err := e.Start(addr); err != nil {
        log.Fatal(err)
    }
}
