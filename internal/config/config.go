// Package config provides centralized configuration management for the application.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
package config

import (
	"time"

	"github.com/JonMunkholm/csvcell/internal/codec"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server    ServerConfig
	Codec     CodecConfig
	Directory DirectoryConfig
	Batch     BatchConfig
	Rate      RateLimitConfig
	Security  SecurityConfig
	Logging   LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading request body (default: 15s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`

	// WriteTimeout is the maximum duration for writing response (default: 30s)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"30s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 60s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"60s"`

	// MaxBodySize caps request bodies in bytes (default: 10MB)
	MaxBodySize int64 `env:"SERVER_MAX_BODY_SIZE" default:"10485760"`
}

// CodecConfig holds the characters shared by every codec. Each must be a
// single character.
type CodecConfig struct {
	Delimiter              rune   `env:"CSV_DELIMITER" default:","`
	Enclosure              rune   `env:"CSV_ENCLOSURE" default:"\""`
	Escape                 rune   `env:"CSV_ESCAPE" default:"\\"`
	MultipleValueDelimiter rune   `env:"MULTIPLE_VALUE_DELIMITER" default:"|"`
	MultipleFieldDelimiter rune   `env:"MULTIPLE_FIELD_DELIMITER" default:","`
	CategoryDelimiter      rune   `env:"CATEGORY_DELIMITER" default:"/"`
	EntityTypeCode         string `env:"ENTITY_TYPE_CODE" default:"catalog_product"`
}

// DirectoryConfig selects where attribute metadata comes from. Exactly one
// of AttributeFile and URL must be set.
type DirectoryConfig struct {
	// AttributeFile is a YAML attribute catalog
	AttributeFile string `env:"ATTRIBUTE_FILE"`

	// URL is the PostgreSQL connection string of the EAV database
	// Supports both DATABASE_URL and DB_URL env vars for compatibility
	URL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	// MaxConns is the maximum number of connections in the pool (default: 10)
	MaxConns int `env:"DB_MAX_CONNS" default:"10"`

	// MinConns is the minimum number of connections to keep open (default: 2)
	MinConns int `env:"DB_MIN_CONNS" default:"2"`

	// MaxConnLifetime is the maximum lifetime of a connection (default: 1h)
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`

	// MaxConnIdleTime is the maximum idle time before a connection is closed (default: 30m)
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`

	// Cache memoizes attribute lookups for the process lifetime (default: true)
	Cache bool `env:"DIRECTORY_CACHE" default:"true"`
}

// BatchConfig bounds batch decoding requests.
type BatchConfig struct {
	// MaxCells is the largest number of cells accepted per batch (default: 10000)
	MaxCells int `env:"BATCH_MAX_CELLS" default:"10000"`

	// MaxConcurrent is the maximum number of batches decoded in parallel (default: 4)
	MaxConcurrent int `env:"BATCH_MAX_CONCURRENT" default:"4"`

	// MaxWaitTime is how long to wait for a batch slot (default: 10s)
	MaxWaitTime time.Duration `env:"BATCH_MAX_WAIT_TIME" default:"10s"`
}

// RateLimitConfig holds rate limiting settings per time window.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the default rate limit per IP (default: 300)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"300"`

	// BatchLimit is requests per minute for batch endpoints (default: 30)
	BatchLimit int `env:"RATE_LIMIT_BATCH" default:"30"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	// EnableCSP enables Content-Security-Policy headers (default: true)
	EnableCSP bool `env:"SECURITY_ENABLE_CSP" default:"true"`

	// RequireAPIKey enables API key authentication on /api routes (default: false)
	RequireAPIKey bool `env:"REQUIRE_API_KEY" default:"false"`

	// APIKeys is a comma-separated list of accepted keys
	APIKeys []string `env:"API_KEYS"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	if c.Host == "" {
		return ":" + itoa(c.Port)
	}
	return c.Host + ":" + itoa(c.Port)
}

// Configuration converts the settings into the codec configuration.
func (c *CodecConfig) Configuration() codec.Configuration {
	return codec.Configuration{
		Delimiters: codec.DelimiterSet{
			Delimiter: c.Delimiter,
			Enclosure: c.Enclosure,
			Escape:    c.Escape,
		},
		MultipleValueDelimiter: c.MultipleValueDelimiter,
		MultipleFieldDelimiter: c.MultipleFieldDelimiter,
		CategoryDelimiter:      c.CategoryDelimiter,
		EntityTypeCode:         c.EntityTypeCode,
	}
}

// UsesDatabase reports whether attributes are read from Postgres.
func (c *DirectoryConfig) UsesDatabase() bool {
	return c.URL != ""
}

// itoa converts an int to string without importing strconv in this file.
func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	var b [20]byte
	n := len(b)
	neg := i < 0
	if neg {
		i = -i
	}
	for i > 0 {
		n--
		b[n] = byte('0' + i%10)
		i /= 10
	}
	if neg {
		n--
		b[n] = '-'
	}
	return string(b[n:])
}
