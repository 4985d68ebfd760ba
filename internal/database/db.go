// Package database opens and configures the MySQL connection pool
// shared by the catalog repositories and the seat ledger.
package database

import (
    "context"
    "database/sql"
    "fmt"
    "time"

    "github.com/go-sql-driver/mysql"

    "github.com/iliyamo/movie-reservation-engine/internal/config"
)

// Open connects to MySQL using the app config and verifies the
// connection with a short ping.  parseTime and a UTC location are
// forced in the DSN: lock expiries are stored as DATETIME and compared
// against UTC_TIMESTAMP(), so a session in any other time zone would
// corrupt expiry checks.
func Open(cfg config.Config) (*sql.DB, error) {
    mc := mysql.NewConfig()
    mc.User = cfg.DBUser
    mc.Passwd = cfg.DBPass
    mc.Net = "tcp"
    mc.Addr = fmt.Sprintf("%s:%s", cfg.DBHost, cfg.DBPort)
    mc.DBName = cfg.DBName
    mc.ParseTime = true
    mc.Loc = time.UTC
    mc.Params = map[string]string{"charset": "utf8mb4"}

    db, err := sql.Open("mysql", mc.FormatDSN())
    if err != nil {
        return nil, err
    }

    // The lock and booking paths issue several short conditional
    // UPDATEs per request, so keep a warm pool.
    db.SetMaxOpenConns(25)
    db.SetMaxIdleConns(10)
    db.SetConnMaxLifetime(30 * time.Minute)

    ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
    defer cancel()
    if err := db.PingContext(ctx); err != nil {
        db.Close()
        return nil, err
    }
    return db, nil
}
