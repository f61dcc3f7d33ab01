// Package log configures structured logging for CLI applications. It builds
// [log/slog] handlers from level and format strings and exposes a [Config]
// that registers the matching CLI flags.
package log

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Format represents the log output format.
type Format string

const (
	// FormatJSON outputs logs as JSON objects.
	FormatJSON Format = "json"
	// FormatText outputs logs in logfmt-style text.
	FormatText Format = "text"
)

var (
	// ErrUnknownLogLevel indicates an unrecognized log level string.
	ErrUnknownLogLevel = errors.New("unknown log level")
	// ErrUnknownLogFormat indicates an unrecognized log format string.
	ErrUnknownLogFormat = errors.New("unknown log format")
)

// NewHandler creates a [slog.Handler] writing to w from level and format
// strings.
func NewHandler(w io.Writer, level, format string) (slog.Handler, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}

	f, err := ParseFormat(format)
	if err != nil {
		return nil, err
	}

	opts := &slog.HandlerOptions{Level: lvl}

	if f == FormatJSON {
		return slog.NewJSONHandler(w, opts), nil
	}

	return slog.NewTextHandler(w, opts), nil
}

// ParseLevel parses a log level string into a [slog.Level].
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "error":
		return slog.LevelError, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	}

	return 0, fmt.Errorf("%w: %q", ErrUnknownLogLevel, level)
}

// ParseFormat parses a log format string into a [Format].
func ParseFormat(format string) (Format, error) {
	switch Format(strings.ToLower(format)) {
	case FormatJSON:
		return FormatJSON, nil
	case FormatText:
		return FormatText, nil
	}

	return "", fmt.Errorf("%w: %q", ErrUnknownLogFormat, format)
}

// LevelStrings returns the canonical log level strings. [ParseLevel] also
// accepts "warning" as an alias of "warn".
func LevelStrings() []string {
	return []string{"error", "warn", "info", "debug"}
}

// FormatStrings returns every accepted log format string.
func FormatStrings() []string {
	return []string{string(FormatText), string(FormatJSON)}
}
