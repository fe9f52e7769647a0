package splatq

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with splatq-specific context.
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
func NewJSONLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return NewLogger(slog.DiscardHandler)
}

// WithGroup adds an attribute-group field to the logger.
func (l *Logger) WithGroup(group string) *Logger {
	return &Logger{
		Logger: l.Logger.With("group", group),
	}
}

// WithK adds a k (cluster count) field to the logger.
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

// LogCluster logs the outcome of a clustering run.
func (l *Logger) LogCluster(ctx context.Context, rows, k int, res *Result, elapsed time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "cluster failed",
			"rows", rows,
			"k", k,
			"error", err,
		)
		return
	}
	if res.Degenerate {
		l.WarnContext(ctx, "cluster skipped, fewer rows than clusters",
			"rows", rows,
			"k", k,
		)
		return
	}
	l.InfoContext(ctx, "cluster completed",
		"rows", rows,
		"k", k,
		"iterations", res.Iterations,
		"converged", res.Converged,
		"strategy", res.Strategy.String(),
		"elapsed", elapsed,
	)
}

// LogFallback logs that a run abandoned its device.
func (l *Logger) LogFallback(ctx context.Context, strategy Strategy) {
	l.WarnContext(ctx, "device unavailable, clustered on cpu",
		"strategy", strategy.String(),
	)
}

// LogPublish logs an artifact publish operation.
func (l *Logger) LogPublish(ctx context.Context, run string, groups int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "publish failed",
			"run", run,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "publish completed",
			"run", run,
			"groups", groups,
		)
	}
}
