package config // package config loads application configuration from environment variables

import (
	"log" // log is used to report configuration errors and halt execution
	"os"  // os provides access to environment variables
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  Database settings are optional: when DB_HOST is
// empty the durable store falls back to Redis, then to process memory.
type Config struct {
	Env            string        // application environment (e.g. "dev", "prod")
	Port           string        // HTTP port to listen on
	LogLevel       string        // DEBUG, INFO, WARN, ERROR or OFF
	DBUser         string        // database username
	DBPass         string        // database password (optional)
	DBHost         string        // database host address (optional)
	DBPort         string        // database port number
	DBName         string        // database name
	MigrationsPath string        // directory holding the SQL migrations
	JWTSecret      string        // secret used to sign JWTs
	AccessTTLMin   int           // access token time‑to‑live in minutes
	RefreshTTLDays int           // refresh token time‑to‑live in days
	BcryptCost     int           // bcrypt cost for password hashing
	SessionTTL     time.Duration // lifetime of session-scoped state in Redis
	RabbitURL      string        // AMQP url for booking events (optional)
	QuestionsPath  string        // question bank JSON
	CatalogPath    string        // movie and theater catalog JSON
	BookingLogPath string        // file the booking consumer appends to
}

// Load reads a .env file when one exists, then builds the Config from the
// environment.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.
func Load() Config {
	_ = godotenv.Load()
	return Config{
		Env:            getenv("APP_ENV", "dev"),
		Port:           getenv("APP_PORT", "8080"),
		LogLevel:       getenv("LOG_LEVEL", "INFO"),
		DBUser:         getenv("DB_USER", "root"),
		DBPass:         os.Getenv("DB_PASS"), // empty allowed
		DBHost:         os.Getenv("DB_HOST"),
		DBPort:         getenv("DB_PORT", "3306"),
		DBName:         getenv("DB_NAME", "cineverse"),
		MigrationsPath: getenv("MIGRATIONS_PATH", "migrations"),
		JWTSecret:      must("JWT_SECRET"),
		AccessTTLMin:   envInt("ACCESS_TOKEN_TTL_MIN", 60),
		RefreshTTLDays: envInt("REFRESH_TOKEN_TTL_DAYS", 7),
		BcryptCost:     envInt("BCRYPT_COST", 10),
		SessionTTL:     envDur("SESSION_TTL", 24*time.Hour),
		RabbitURL:      os.Getenv("RABBITMQ_URL"),
		QuestionsPath:  getenv("QUESTIONS_PATH", "data/questions.json"),
		CatalogPath:    getenv("CATALOG_PATH", "data/movies.json"),
		BookingLogPath: getenv("BOOKING_LOG_PATH", "logs/booking.log"),
	}
}

// HasDB reports whether MySQL settings were supplied.
func (c Config) HasDB() bool { return c.DBHost != "" }

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}
