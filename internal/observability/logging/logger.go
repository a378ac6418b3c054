package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// NewJSONLogger writes JSON records to stdout and to every extra writer.
func NewJSONLogger(service, level string, extra ...io.Writer) *slog.Logger {
	return NewJSONLoggerTo(os.Stdout, service, level, extra...)
}

// NewJSONLoggerTo is NewJSONLogger with a different primary sink, for modes
// where stdout carries a protocol.
func NewJSONLoggerTo(primary io.Writer, service, level string, extra ...io.Writer) *slog.Logger {
	out := primary
	if len(extra) > 0 {
		out = io.MultiWriter(append([]io.Writer{primary}, extra...)...)
	}
	handler := slog.NewJSONHandler(out, &slog.HandlerOptions{
		Level: parseLevel(level),
	})
	return slog.New(handler).With("service", service)
}

// OpenLogFile opens path for appending, creating parent directories.
func OpenLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
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
