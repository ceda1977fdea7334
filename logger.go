package paxcol

import (
	"context"
	"log/slog"
	"os"

	"github.com/hupe1980/paxcol/column"
)

// Logger wraps slog.Logger with paxcol-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithFormat adds a format field to the logger.
func (l *Logger) WithFormat(format column.Format) *Logger {
	return &Logger{
		Logger: l.Logger.With("format", format.String()),
	}
}

// WithColumns adds a columns field to the logger.
func (l *Logger) WithColumns(n int) *Logger {
	return &Logger{
		Logger: l.Logger.With("columns", n),
	}
}

// LogFlush logs a row group flush.
func (l *Logger) LogFlush(ctx context.Context, rows, bytes, toasts int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "flush failed",
			"rows", rows,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "flush completed",
			"rows", rows,
			"bytes", bytes,
			"toasts", toasts,
		)
	}
}

// LogOpen logs opening a stripe for reading.
func (l *Logger) LogOpen(ctx context.Context, rows, bytes int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "open failed",
			"bytes", bytes,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "open completed",
			"rows", rows,
			"bytes", bytes,
		)
	}
}

// LogDetoast logs a failed detoast of one value.
func (l *Logger) LogDetoast(ctx context.Context, col, row int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "detoast failed",
			"column", col,
			"row", row,
			"error", err,
		)
	}
}
