package knn

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with knn-specific context.
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
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// WithRunID adds a run_id field to the logger.
func (l *Logger) WithRunID(id string) *Logger {
	return &Logger{
		Logger: l.Logger.With("run_id", id),
	}
}

// WithK adds a k (neighbor count) field to the logger.
func (l *Logger) WithK(k int) *Logger {
	return &Logger{
		Logger: l.Logger.With("k", k),
	}
}

// WithDimension adds a dimension field to the logger.
func (l *Logger) WithDimension(dim int) *Logger {
	return &Logger{
		Logger: l.Logger.With("dimension", dim),
	}
}

// WithCount adds a count field to the logger.
func (l *Logger) WithCount(count int) *Logger {
	return &Logger{
		Logger: l.Logger.With("count", count),
	}
}

// LogFit logs fitting a model.
func (l *Logger) LogFit(ctx context.Context, rows, dim int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "fit failed",
			"rows", rows,
			"dimension", dim,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "fit completed",
			"rows", rows,
			"dimension", dim,
		)
	}
}

// LogClassify logs a classification run over a test matrix.
func (l *Logger) LogClassify(ctx context.Context, rows, workers int, duration time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "classify failed",
			"rows", rows,
			"workers", workers,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "classify completed",
			"rows", rows,
			"workers", workers,
			"duration", duration,
		)
	}
}

// LogLoad logs reading a dataset blob.
func (l *Logger) LogLoad(ctx context.Context, name string, rows, dim int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "load failed",
			"name", name,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "dataset loaded",
			"name", name,
			"rows", rows,
			"dimension", dim,
		)
	}
}

// LogValidate logs a cross-check against the reference classifier.
func (l *Logger) LogValidate(ctx context.Context, rows int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "validation failed",
			"rows", rows,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "validation passed",
			"rows", rows,
		)
	}
}
