// Package logging provides structured logging for the attribute engine
// using Go's standard log/slog package.
//
// The package offers a small Logger interface suitable for dependency
// injection, a slog-backed implementation with configurable level, format
// and output, a no-op logger for silent operation, and component loggers
// that stamp every record with the emitting component.
//
// Basic Usage:
//
//	logger, closer, err := logging.New(logging.Config{Level: "debug", Format: "json"})
//	if err != nil {
//		panic(err)
//	}
//	if closer != nil {
//		defer closer.Close()
//	}
//	logger.Info("session opened", "target", "192.0.2.1")
//
// Component-Aware Logging:
//
//	walkLog := logging.NewComponentLogger(logger, "walker")
//	walkLog.Debug("row stored", "iid", "3")
//	// Output: ... component=walker iid=3
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Log level constants define the available logging levels.
const (
	LevelDebug = "debug"
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"
)

// Log format constants define the available output formats.
const (
	// FormatLogfmt provides key=value structured output.
	FormatLogfmt = "logfmt"

	// FormatJSON provides machine-readable JSON output.
	FormatJSON = "json"
)

// Logger is the structured logging contract consumed by the rest of the
// module. Methods accept a message followed by key-value pairs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)

	// With returns a logger that adds the given attributes to every
	// record.
	With(args ...any) Logger
}

// Config holds logger configuration. All fields have defaults; the zero
// value gives info-level logfmt on stdout.
type Config struct {
	// Level is the minimum level to output: "debug", "info", "warn" or
	// "error".
	Level string `json:"level" yaml:"level"`

	// Format is "logfmt" or "json".
	Format string `json:"format" yaml:"format"`

	// Output is "stdout", "stderr" or a file path. Parent directories of
	// a file path are created as needed.
	Output string `json:"output" yaml:"output"`

	// AddSource includes source file and line in records.
	AddSource bool `json:"add_source" yaml:"add_source"`
}

// DefaultConfig returns the recommended defaults: info level, logfmt,
// stdout.
func DefaultConfig() Config {
	return Config{Level: LevelInfo, Format: FormatLogfmt, Output: "stdout"}
}

// New creates an independent logger from the configuration. The returned
// closer is non-nil only when the output is a file and must then be closed
// by the caller.
func New(config Config) (Logger, io.Closer, error) {
	if config.Level != "" && !ValidateLevel(config.Level) {
		return nil, nil, fmt.Errorf("invalid log level: %q, must be one of: %s, %s, %s, %s",
			config.Level, LevelDebug, LevelInfo, LevelWarn, LevelError)
	}
	if config.Format != "" && !ValidateFormat(config.Format) {
		return nil, nil, fmt.Errorf("invalid log format: %q, must be one of: %s, %s",
			config.Format, FormatLogfmt, FormatJSON)
	}

	var writer io.Writer
	var closer io.Closer
	switch strings.ToLower(config.Output) {
	case "stdout", "":
		writer = os.Stdout
	case "stderr":
		writer = os.Stderr
	default:
		file, err := openLogFile(config.Output)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file %s: %w", config.Output, err)
		}
		writer = file
		closer = file
	}

	opts := &slog.HandlerOptions{
		Level:     parseLevel(config.Level),
		AddSource: config.AddSource,
	}

	var handler slog.Handler
	if strings.ToLower(config.Format) == FormatJSON {
		handler = slog.NewJSONHandler(writer, opts)
	} else {
		handler = slog.NewTextHandler(writer, opts)
	}

	return &slogLogger{logger: slog.New(handler)}, closer, nil
}

// Wrap adapts an existing slog.Logger to the Logger interface.
func Wrap(logger *slog.Logger) Logger {
	return &slogLogger{logger: logger}
}

// Nop returns a logger that discards everything. It is the default for
// library consumers that configure no logging.
func Nop() Logger { return nopLogger{} }

// ValidateLevel reports whether level names a known log level.
func ValidateLevel(level string) bool {
	switch strings.ToLower(level) {
	case LevelDebug, LevelInfo, LevelWarn, LevelError:
		return true
	}
	return false
}

// ValidateFormat reports whether format names a known output format.
func ValidateFormat(format string) bool {
	switch strings.ToLower(format) {
	case FormatLogfmt, FormatJSON:
		return true
	}
	return false
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func openLogFile(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create log directory %s: %w", dir, err)
		}
	}
	return os.OpenFile(filepath.Clean(path), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
}

// slogLogger adapts slog to the Logger interface.
type slogLogger struct {
	logger *slog.Logger
}

func (s *slogLogger) Debug(msg string, args ...any) { s.logger.Debug(msg, args...) }
func (s *slogLogger) Info(msg string, args ...any)  { s.logger.Info(msg, args...) }
func (s *slogLogger) Warn(msg string, args ...any)  { s.logger.Warn(msg, args...) }
func (s *slogLogger) Error(msg string, args ...any) { s.logger.Error(msg, args...) }

func (s *slogLogger) With(args ...any) Logger {
	return &slogLogger{logger: s.logger.With(args...)}
}

// nopLogger discards all records.
type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

func (nopLogger) With(...any) Logger { return nopLogger{} }

// NewComponentLogger returns a logger that stamps every record with the
// component name.
func NewComponentLogger(base Logger, component string) Logger {
	if base == nil {
		return Nop()
	}
	return base.With("component", component)
}
