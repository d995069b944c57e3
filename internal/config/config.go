package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  The types reflect how the values are used in
// the application: strings for identifiers and secrets, ints for durations and costs.
type Config struct {
	Env               string // application environment (e.g. "dev", "prod")
	Port              string // HTTP port to listen on
	DBUser            string // database username
	DBPass            string // database password (optional)
	DBHost            string // database host address
	DBPort            string // database port number
	DBName            string // database name
	DBMaxOpenConns    int    // connection pool ceiling
	DBMaxIdleConns    int    // idle connections kept warm
	DBConnLifetimeMin int    // minutes before a pooled connection is recycled
	JWTSecret         string // secret used to verify JWTs
	BcryptCost        int    // bcrypt cost for password hashing
	AutoStartGraceMin int    // minutes past departure before an OPEN trip is auto-started
	ForgottenTripHrs  int    // hours a STARTED trip may run before it is auto-closed
	ViolationTTLDays  int    // days a violation stays active before it expires
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.  The lifecycle
// thresholds have defaults so a bare deployment behaves sensibly.
func Load() Config {
	return Config{
		Env:               must("APP_ENV"),      // environment (dev/test/prod)
		Port:              must("APP_PORT"),     // port to bind the HTTP server
		DBUser:            must("DB_USER"),      // database user
		DBPass:            os.Getenv("DB_PASS"), // database password (empty allowed)
		DBHost:            must("DB_HOST"),      // database host
		DBPort:            must("DB_PORT"),      // database port
		DBName:            must("DB_NAME"),      // database name
		DBMaxOpenConns:    intDefault("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdleConns:    intDefault("DB_MAX_IDLE_CONNS", 25),
		DBConnLifetimeMin: intDefault("DB_CONN_LIFETIME_MIN", 30),
		JWTSecret:         must("JWT_SECRET"),   // secret used for verifying JWTs
		BcryptCost:        mustInt("BCRYPT_COST"),
		AutoStartGraceMin: intDefault("AUTO_START_GRACE_MIN", 15),
		ForgottenTripHrs:  intDefault("FORGOTTEN_TRIP_HOURS", 6),
		ViolationTTLDays:  intDefault("VIOLATION_TTL_DAYS", 90),
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

// mustInt is like must() but converts the retrieved string into an integer.
// If conversion fails, the application logs a fatal error and exits.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}

// intDefault reads an optional integer variable, falling back to def when
// the variable is unset.  A malformed value is fatal rather than silently
// replaced, because a typoed threshold should not reach production.
func intDefault(key string, def int) int {
	s, ok := os.LookupEnv(key)
	if !ok || s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}
