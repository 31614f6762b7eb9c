package config // package config loads application configuration from environment variables

import (
	"log"     // log reports configuration errors and halts execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
	"time"    // time expresses token and cache lifetimes
)

// Config holds all runtime configuration values.  Each field corresponds to an
// environment variable.  Database settings are required; token secrets, TTLs
// and tuning knobs all carry defaults so the service boots with a minimal env.
type Config struct {
	Env  string // application environment (e.g. "dev", "prod")
	Port string // HTTP port to listen on

	DBUser string // database username
	DBPass string // database password (optional)
	DBHost string // database host address
	DBPort string // database port number
	DBName string // database name

	// Access and refresh tokens are signed with independent secrets and live
	// for independent durations.  Access tokens are short-lived and stateless;
	// refresh tokens are long-lived and additionally checked against a hash
	// stored on the account row.
	AccessSecret  string        // secret for signing access tokens
	RefreshSecret string        // secret for signing refresh tokens
	AccessTTL     time.Duration // access token lifetime (default 15m)
	RefreshTTL    time.Duration // refresh token lifetime (default 168h)

	BcryptCost int // bcrypt cost for password hashing (default 10)

	CacheTTL time.Duration // lifetime of cached listing results

	// Login rate limiting (fixed window per client IP).  A zero limit
	// disables the middleware.
	LoginRateLimit  int           // allowed login attempts per window
	LoginRateWindow time.Duration // window length

	AmqpURL string // broker URL for account events (empty disables publishing)
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values cause
// the program to exit with a fatal log message.
func Load() Config {
	return Config{
		Env:    getenv("APP_ENV", "dev"),
		Port:   getenv("APP_PORT", "8080"),
		DBUser: must("DB_USER"),
		DBPass: os.Getenv("DB_PASS"), // empty allowed
		DBHost: must("DB_HOST"),
		DBPort: must("DB_PORT"),
		DBName: must("DB_NAME"),

		AccessSecret:  getenv("JWT_ACCESS_SECRET", "dev-access-secret"),
		RefreshSecret: getenv("JWT_REFRESH_SECRET", "dev-refresh-secret"),
		AccessTTL:     parseDur(getenv("ACCESS_TOKEN_TTL", "15m")),
		RefreshTTL:    parseDur(getenv("REFRESH_TOKEN_TTL", "168h")),

		BcryptCost: atoi(getenv("BCRYPT_COST", "10")),

		CacheTTL: parseDur(getenv("CACHE_TTL", "60s")),

		LoginRateLimit:  atoi(getenv("LOGIN_RATE_LIMIT", "10")),
		LoginRateWindow: parseDur(getenv("LOGIN_RATE_WINDOW", "1m")),

		AmqpURL: os.Getenv("RABBITMQ_URL"),
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

// getenv returns the value of key, or def when the variable is unset or empty.
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoi(s string) int {
	i, _ := strconv.Atoi(s)
	return i
}

func parseDur(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return time.Minute
	}
	return d
}
