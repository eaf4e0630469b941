// Package logging provides JSON-lines structured logging for fooddiary.
//
// Records look like:
//
//	{"ts":"2024-05-02T09:15:00+08:00","level":"INFO","msg":"diary loaded","meal_logs":12}
//
// The terminal UI owns the screen, so records go to a log file unless an
// explicit writer is supplied.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Config configures the structured logger.
type Config struct {
	// Output is the writer for log output (default: os.Stderr)
	Output io.Writer

	// Level is the minimum log level (default: LevelInfo)
	Level slog.Level

	// Debug enables debug level logging (overrides Level)
	Debug bool
}

// DefaultConfig returns the default logging configuration.
func DefaultConfig() *Config {
	return &Config{
		Output: os.Stderr,
		Level:  slog.LevelInfo,
	}
}

// New creates a JSON-lines logger.
func New(cfg *Config) *slog.Logger {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}

	level := cfg.Level
	if cfg.Debug {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey && len(groups) == 0 {
				a.Key = "ts"
			}
			return a
		},
	}

	return slog.New(slog.NewJSONHandler(output, opts))
}

// ParseLevel maps a config level name (debug, info, warn, error) to a
// slog.Level. Unknown names map to info.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewFromEnv creates a logger on stderr configured from environment
// variables. FOODDIARY_DEBUG=1 enables debug logging.
func NewFromEnv() *slog.Logger {
	cfg := DefaultConfig()
	if os.Getenv("FOODDIARY_DEBUG") == "1" {
		cfg.Debug = true
	}
	return New(cfg)
}

// OpenFile creates a logger appending to path at the named level. The
// returned closer releases the file.
func OpenFile(path, level string) (*slog.Logger, io.Closer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return New(&Config{Output: f, Level: ParseLevel(level)}), f, nil
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return New(&Config{Output: io.Discard, Level: slog.LevelError + 1})
}

// StartupInfo holds information logged when the application starts.
type StartupInfo struct {
	Version      string
	ConfigPath   string
	DatabasePath string
	Ephemeral    bool
	Locale       string
	PID          int
}

// LogStartup logs startup information.
func LogStartup(logger *slog.Logger, info StartupInfo) {
	logger.Info("fooddiary started",
		"version", info.Version,
		"config_path", info.ConfigPath,
		"database_path", info.DatabasePath,
		"ephemeral", info.Ephemeral,
		"locale", info.Locale,
		"pid", info.PID,
	)
}

// LogShutdown logs application shutdown.
func LogShutdown(logger *slog.Logger, reason string) {
	logger.Info("fooddiary shutting down", "reason", reason)
}

// LogImport logs a completed import.
func LogImport(logger *slog.Logger, fileName string, meals, stores int) {
	logger.Info("backup imported",
		"file", fileName,
		"meal_logs", meals,
		"fav_stores", stores,
	)
}

// LogExport logs a completed export.
func LogExport(logger *slog.Logger, path string, bytes int64) {
	logger.Info("backup exported", "path", path, "bytes", bytes)
}

// LogSQLiteError logs SQLite errors.
func LogSQLiteError(logger *slog.Logger, operation string, err error) {
	logger.Error("sqlite error", "operation", operation, "error", err)
}
