// Package config loads the roster service configuration from environment
// variables, applies defaults and validates everything on startup so a
// misconfigured deployment fails before it serves a request.
package config

import (
	"net"
	"strconv"
	"time"
)

// Storage backends.
const (
	BackendExcel    = "excel"
	BackendPostgres = "postgres"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Roster   RosterConfig
	Database DatabaseConfig
	Upload   UploadConfig
	Rate     RateLimitConfig
	Security SecurityConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`
	Port int    `env:"SERVER_PORT" default:"8080"`

	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"30s"`
	IdleTimeout     time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout per request
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"30s"`
}

// RosterConfig selects where the roster lives and how it is checked.
type RosterConfig struct {
	// Backend is "excel" or "postgres"
	Backend string `env:"ROSTER_BACKEND" default:"excel"`

	// File is the workbook path for the excel backend
	File string `env:"ROSTER_FILE" envAlt:"ROSTER_PATH" default:"alunos.xlsx"`

	// CreateIfMissing starts with an empty roster when File does not exist
	CreateIfMissing bool `env:"ROSTER_CREATE_IF_MISSING" default:"false"`

	// Threshold is the name similarity a match must exceed
	Threshold float64 `env:"ROSTER_SIMILARITY_THRESHOLD" default:"0.8"`

	// Autosave writes the roster back after every change
	Autosave bool `env:"ROSTER_AUTOSAVE" default:"true"`

	// BatchTTL is how long a validated batch can still be committed
	BatchTTL time.Duration `env:"ROSTER_BATCH_TTL" default:"30m"`

	// SweepInterval is how often expired batches are dropped
	SweepInterval time.Duration `env:"ROSTER_BATCH_SWEEP_INTERVAL" default:"1m"`

	// LockWait is how long an operation waits for the roster before
	// failing as busy
	LockWait time.Duration `env:"ROSTER_LOCK_WAIT" default:"5s"`
}

// DatabaseConfig holds Postgres settings, used by the postgres backend.
type DatabaseConfig struct {
	// URL is the connection string; required when ROSTER_BACKEND=postgres
	URL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	MaxConns        int           `env:"DB_MAX_CONNS" default:"4"`
	MinConns        int           `env:"DB_MIN_CONNS" default:"1"`
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`
}

// UploadConfig limits batch file uploads.
type UploadConfig struct {
	// MaxFileSize is the largest accepted batch file in bytes (default: 10MB)
	MaxFileSize int64 `env:"UPLOAD_MAX_FILE_SIZE" default:"10485760"`

	// MaxRows is the largest accepted batch in rows
	MaxRows int `env:"UPLOAD_MAX_ROWS" default:"5000"`
}

// RateLimitConfig holds per-IP rate limits.
type RateLimitConfig struct {
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute applies to every API route
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"120"`

	// WriteLimit applies to routes that change the roster or validate batches
	WriteLimit int `env:"RATE_LIMIT_WRITE" default:"30"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of proxy CIDRs or addresses whose
	// X-Forwarded-For is believed
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	// APIKeys, when set, are required in the X-API-Key header
	APIKeys []string `env:"API_KEYS"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `env:"LOG_LEVEL" default:"info"`
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
