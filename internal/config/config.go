package config // package config loads application configuration from environment variables

import (
    "log"      // log is used to report configuration errors and halt execution
    "os"       // os provides access to environment variables
    "strconv"  // strconv converts strings to other types
    "time"     // time expresses the engine's TTL and interval knobs
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  The types reflect how the values are used in
// the application: strings for identifiers and secrets, durations for the
// reservation engine's timing knobs.
type Config struct {
    Env           string        // application environment (e.g. "dev", "prod")
    Port          string        // HTTP port to listen on
    DBUser        string        // database username
    DBPass        string        // database password (optional)
    DBHost        string        // database host address
    DBPort        string        // database port number
    DBName        string        // database name
    JWTSecret     string        // secret used to verify caller identity tokens
    LockTTL       time.Duration // default seat lock time-to-live
    LockTTLMax    time.Duration // maximum TTL a caller may request
    SweepInterval time.Duration // how often the expiry sweeper runs
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.  The engine timing
// knobs fall back to sane defaults when unset: a 5 minute lock TTL (the
// client's checkout window), a 30 minute cap and a 5 second sweep.
func Load() Config {
    return Config{
        Env:           must("APP_ENV"),      // environment (dev/test/prod)
        Port:          must("APP_PORT"),     // port to bind the HTTP server
        DBUser:        must("DB_USER"),      // database user
        DBPass:        os.Getenv("DB_PASS"), // database password (empty allowed)
        DBHost:        must("DB_HOST"),      // database host
        DBPort:        must("DB_PORT"),      // database port
        DBName:        must("DB_NAME"),      // database name
        JWTSecret:     must("JWT_SECRET"),   // secret for verifying bearer tokens
        LockTTL:       seconds("LOCK_TTL_SECONDS", 300),
        LockTTLMax:    seconds("LOCK_TTL_MAX_SECONDS", 1800),
        SweepInterval: seconds("SWEEP_INTERVAL_SECONDS", 5),
    }
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
    v, ok := os.LookupEnv(key)
    if !ok || v == "" {
        log.Fatalf("missing required env var: %s", key)
    }
    return v
}

// seconds reads an integer number of seconds from the environment and
// converts it to a duration, falling back to def when unset.  A value
// that fails to parse is a fatal configuration error.
func seconds(key string, def int) time.Duration {
    s := os.Getenv(key)
    if s == "" {
        return time.Duration(def) * time.Second
    }
    n, err := strconv.Atoi(s)
    if err != nil || n <= 0 {
        log.Fatalf("invalid seconds for %s: %q", key, s)
    }
    return time.Duration(n) * time.Second
}
