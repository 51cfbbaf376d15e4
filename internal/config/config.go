// Package config provides centralized configuration management for the application.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
package config

import (
	"strconv"
	"time"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server   ServerConfig
	Export   ExportConfig
	Import   ImportConfig
	Limits   LimitsConfig
	Rate     RateLimitConfig
	Security SecurityConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on, falling back to PORT (default: 8080)
	Port int `env:"SERVER_PORT" envAlt:"PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading request body (default: 15s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`

	// WriteTimeout is the maximum duration for writing a response (default: 60s)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"60s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 60s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"60s"`
}

// ExportConfig holds workbook rendering defaults.
type ExportConfig struct {
	// SheetName is the title of the exported worksheet (default: 数据)
	SheetName string `env:"EXPORT_SHEET_NAME" default:"数据"`

	// DateFormat is the Excel number format of date columns
	DateFormat string `env:"EXPORT_DATE_FORMAT" default:"yyyy/dd/MM HH:mm:ss"`

	// TableStyle is the built-in table style of non-merged exports; "none" disables it
	TableStyle string `env:"EXPORT_TABLE_STYLE" default:"TableStyleMedium9"`

	// RowHeight is the row height of merged exports in points (default: 28)
	RowHeight float64 `env:"EXPORT_ROW_HEIGHT" default:"28"`

	// HeaderFont is the header font family of merged exports (default: 微软雅黑)
	HeaderFont string `env:"EXPORT_HEADER_FONT" default:"微软雅黑"`

	// StrictMerge rejects merge requests whose unique field is not exported (default: false)
	StrictMerge bool `env:"EXPORT_STRICT_MERGE" default:"false"`
}

// ImportConfig holds workbook reading settings.
type ImportConfig struct {
	// MaxFileSize is the maximum accepted workbook size in bytes (default: 20MB)
	MaxFileSize int64 `env:"IMPORT_MAX_FILE_SIZE" default:"20971520"`

	// Validate runs struct validation on every imported record (default: true)
	Validate bool `env:"IMPORT_VALIDATE" default:"true"`
}

// LimitsConfig bounds concurrent conversions.
type LimitsConfig struct {
	// MaxConcurrent is the maximum number of parallel exports and imports (default: 4)
	MaxConcurrent int `env:"LIMIT_MAX_CONCURRENT" default:"4"`

	// MaxWaitTime is how long to wait for a conversion slot (default: 30s)
	MaxWaitTime time.Duration `env:"LIMIT_MAX_WAIT_TIME" default:"30s"`
}

// RateLimitConfig holds rate limiting settings per time window.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the rate limit per IP (default: 100)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"100"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	// RequireAPIKey enables X-API-Key checks on conversion endpoints (default: false)
	RequireAPIKey bool `env:"REQUIRE_API_KEY" default:"false"`

	// APIKeys is a comma-separated list of accepted API keys
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
	return c.Host + ":" + strconv.Itoa(c.Port)
}

// TableStyleName returns the configured table style, with "none" mapped to
// the empty style that disables table formatting.
func (c *ExportConfig) TableStyleName() string {
	if c.TableStyle == "none" {
		return ""
	}
	return c.TableStyle
}
