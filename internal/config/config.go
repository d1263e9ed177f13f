// Package config provides application configuration management.
// Configuration is loaded from environment variables following 12-factor principles.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/caarlos0/env/v10"

	"github.com/tareasapi/tareas/internal/auth"
)

// Supported storage backends.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds all application configuration.
// All fields are populated from environment variables.
type Config struct {
	// Application settings
	AppEnv  string `env:"APP_ENV" envDefault:"development"`
	AppPort int    `env:"APP_PORT" envDefault:"8080"`
	// AppTimezone is the IANA zone whose calendar date is "today" for
	// target date checks.
	AppTimezone string `env:"APP_TIMEZONE" envDefault:"UTC"`

	// Database: "postgres" uses pgx, "sqlite" uses gorm.
	DatabaseDriver string `env:"DATABASE_DRIVER" envDefault:"postgres"`
	DatabaseURL    string `env:"DATABASE_URL,required,notEmpty"`
	AutoMigrate    bool   `env:"AUTO_MIGRATE" envDefault:"true"`

	// Cache (Redis). Optional; enables the shared rate limiter.
	RedisURL string `env:"REDIS_URL"`

	// Access tokens
	JWTSecret string        `env:"JWT_SECRET,required,notEmpty,unset"`
	JWTTTL    time.Duration `env:"JWT_TTL" envDefault:"30m"`
	JWTIssuer string        `env:"JWT_ISSUER" envDefault:"tareas"`

	// Argon2id cost
	HashTime     uint32 `env:"HASH_TIME" envDefault:"3"`
	HashMemoryKB uint32 `env:"HASH_MEMORY_KB" envDefault:"65536"`
	HashThreads  uint8  `env:"HASH_THREADS" envDefault:"4"`

	// GET /users requires a bearer token when set.
	UsersListRequireAuth bool `env:"USERS_LIST_REQUIRE_AUTH" envDefault:"false"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Server timeouts
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"10s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// Rate limiting of register and login, per client IP
	RateLimitAuthEnabled bool    `env:"RATE_LIMIT_AUTH_ENABLED" envDefault:"true"`
	RateLimitAuthRPS     float64 `env:"RATE_LIMIT_AUTH_RPS" envDefault:"5"`
	RateLimitAuthBurst   int     `env:"RATE_LIMIT_AUTH_BURST" envDefault:"10"`

	// CORS configuration
	// Comma-separated list of allowed origins (e.g., "https://example.com,https://app.example.com")
	CORSAllowedOrigins string        `env:"CORS_ALLOWED_ORIGINS" envDefault:""`
	CORSMaxAge         time.Duration `env:"CORS_MAX_AGE" envDefault:"10m"`

	// Request body size limit in bytes (default 1MB)
	MaxRequestBodySize int64 `env:"MAX_REQUEST_BODY_SIZE" envDefault:"1048576"`
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// GetCORSAllowedOrigins parses the comma-separated origins string into a slice.
func (c *Config) GetCORSAllowedOrigins() []string {
	if c.CORSAllowedOrigins == "" {
		return nil
	}

	origins := strings.Split(c.CORSAllowedOrigins, ",")
	result := make([]string, 0, len(origins))

	for _, origin := range origins {
		trimmed := strings.TrimSpace(origin)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

// Location returns the zone named by APP_TIMEZONE, or UTC when it cannot
// be loaded. Validate reports unknown zones.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.AppTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// HashParams returns the configured Argon2id cost.
func (c *Config) HashParams() auth.HashParams {
	return auth.HashParams{
		Time:    c.HashTime,
		Memory:  c.HashMemoryKB,
		Threads: c.HashThreads,
	}
}

// TokenConfig returns the token issuer settings.
func (c *Config) TokenConfig() auth.TokenConfig {
	return auth.TokenConfig{
		Secret: []byte(c.JWTSecret),
		TTL:    c.JWTTTL,
		Issuer: c.JWTIssuer,
	}
}

// Validate checks values env tags cannot express.
func (c *Config) Validate() error {
	var errs []error

	switch c.DatabaseDriver {
	case DriverPostgres, DriverSQLite:
	default:
		errs = append(errs, fmt.Errorf("DATABASE_DRIVER must be %q or %q, got %q", DriverPostgres, DriverSQLite, c.DatabaseDriver))
	}

	if _, err := time.LoadLocation(c.AppTimezone); err != nil {
		errs = append(errs, fmt.Errorf("APP_TIMEZONE: %w", err))
	}
	if len(c.JWTSecret) < auth.MinSecretLength {
		errs = append(errs, fmt.Errorf("JWT_SECRET must be at least %d bytes", auth.MinSecretLength))
	}
	if c.JWTTTL <= 0 {
		errs = append(errs, errors.New("JWT_TTL must be positive"))
	}
	if c.HashTime == 0 || c.HashMemoryKB == 0 || c.HashThreads == 0 {
		errs = append(errs, errors.New("HASH_TIME, HASH_MEMORY_KB and HASH_THREADS must be positive"))
	}
	if c.RateLimitAuthEnabled && (c.RateLimitAuthRPS <= 0 || c.RateLimitAuthBurst <= 0) {
		errs = append(errs, errors.New("RATE_LIMIT_AUTH_RPS and RATE_LIMIT_AUTH_BURST must be positive"))
	}

	return errors.Join(errs...)
}

// Load parses environment variables and returns a validated Config.
// Returns an error if required variables are missing or invalid.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
