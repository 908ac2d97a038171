// Package logging builds the slog logger shared by the binaries: text output with UTC
// RFC3339 timestamps to the console and, optionally, a log file.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

// ParseLevel converts a level name to slog.Level. Unknown names mean info.
func ParseLevel(level string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func handlerOptions(level string) *slog.HandlerOptions {
	return &slog.HandlerOptions{
		Level: ParseLevel(level),
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey && len(groups) == 0 {
				if t, ok := a.Value.Any().(time.Time); ok {
					a.Value = slog.StringValue(t.UTC().Format(time.RFC3339))
				}
			}
			return a
		},
	}
}

// New returns a logger writing to console and file. Either may be nil.
func New(console, file io.Writer, level string) *slog.Logger {
	opts := handlerOptions(level)

	var handlers []slog.Handler
	if console != nil {
		handlers = append(handlers, slog.NewTextHandler(console, opts))
	}
	if file != nil {
		handlers = append(handlers, slog.NewTextHandler(file, opts))
	}
	return slog.New(NewMultiHandler(handlers...))
}

// Setup installs the default logger for a service. A non-empty path adds a log file,
// which the returned closer releases.
func Setup(service, level, path string) (*slog.Logger, io.Closer, error) {
	var (
		file   io.Writer
		closer io.Closer = nopCloser{}
	)
	if path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		file, closer = f, f
	}

	logger := New(os.Stdout, file, level).With("service", service)
	slog.SetDefault(logger)
	logger.Info("Logging initialized", "level", ParseLevel(level).String())
	return logger, closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
