// Package logging provides structured logging configuration using zerolog.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LogLevel represents the logging level.
type LogLevel string

const (
	// LevelTrace logs everything, including per-page aggregation steps.
	LevelTrace LogLevel = "trace"

	// LevelDebug logs debug messages and above.
	LevelDebug LogLevel = "debug"

	// LevelInfo logs info messages and above.
	LevelInfo LogLevel = "info"

	// LevelWarn logs warning messages and above.
	LevelWarn LogLevel = "warn"

	// LevelError logs error messages only.
	LevelError LogLevel = "error"
)

// Config holds logger configuration.
type Config struct {
	// Level is the minimum log level to output.
	Level LogLevel

	// Pretty enables human-readable console output (default: false for JSON).
	Pretty bool

	// Output is the writer to output logs to (default: os.Stderr).
	Output io.Writer
}

// DefaultConfig returns a default logger configuration.
func DefaultConfig() Config {
	return Config{
		Level:  LevelInfo,
		Pretty: false,
		Output: os.Stderr,
	}
}

// Setup configures the global zerolog logger.
func Setup(cfg Config) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.SetGlobalLevel(parseLevel(cfg.Level))

	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{Out: output, TimeFormat: time.Kitchen}
	}

	logger := zerolog.New(output).With().Timestamp().Logger()
	log.Logger = logger

	return logger
}

// parseLevel converts LogLevel to zerolog.Level.
func parseLevel(level LogLevel) zerolog.Level {
	switch strings.ToLower(string(level)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// NewLogger creates a new logger with the given component name.
func NewLogger(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}

// PrettyFromFormat resolves an output format name to the Pretty flag:
// "console" always, "json" never, and "auto" picks console output when
// stderr is a terminal.
func PrettyFromFormat(format string) bool {
	switch strings.ToLower(format) {
	case "console":
		return true
	case "auto":
		return isatty.IsTerminal(os.Stderr.Fd())
	default:
		return false
	}
}

// Log Level Guidelines:
//
// Trace: Per-page aggregation detail
//   - Page index, requested size, cursor in/out
//
// Debug: Detailed information for debugging
//   - Individual request flow (method, endpoint, status, duration)
//   - Cache operations (hit/miss, key, TTL)
//   - Rate limit state reads
//
// Info: Normal operation events
//   - Completed aggregations (endpoint, items, pages)
//   - Server startup/shutdown
//
// Warn: Warning conditions that don't prevent operation
//   - Rate limit warning band reached
//   - Cache errors (fallback to direct request)
//
// Error: Error conditions requiring attention
//   - Failed requests
//   - Rate limit blocks
//   - Configuration errors
//
// Context Fields:
//   - endpoint: Helix endpoint path (e.g. "streams")
//   - method: HTTP method
//   - status: HTTP status code
//   - duration: request duration
//   - kind: error kind (invalid_method, request_failed, ...)
//   - first/after: pagination parameters of a page request
//   - pages/items: aggregation totals
//   - points_remaining: rate limit bucket points left
