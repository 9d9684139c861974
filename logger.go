package hfcand

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with the field names used across hfcand.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a Logger with the given handler.
// If handler is nil, uses a text handler to stderr at info level.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})
	}
	return &Logger{Logger: slog.New(handler)}
}

// NewJSONLogger creates a Logger that writes JSON lines to stderr.
func NewJSONLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// NewTextLogger creates a Logger that writes human-readable text to stderr.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// NoopLogger discards everything.
func NoopLogger() *Logger {
	return NewLogger(slog.DiscardHandler)
}

// WithEvent tags records with a collision ID.
func (l *Logger) WithEvent(collisionID int) *Logger {
	return &Logger{Logger: l.Logger.With("collision_id", collisionID)}
}

// WithRun tags records with a run ID.
func (l *Logger) WithRun(runID string) *Logger {
	return &Logger{Logger: l.Logger.With("run_id", runID)}
}

// LogEvent logs one processed event.
func (l *Logger) LogEvent(ctx context.Context, collisionID, candidates int, took time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "event failed",
			"collision_id", collisionID,
			"error", err,
		)
		return
	}
	l.DebugContext(ctx, "event processed",
		"collision_id", collisionID,
		"candidates", candidates,
		"duration", took,
	)
}

// LogProgress logs a running total.
func (l *Logger) LogProgress(ctx context.Context, s RunStats) {
	l.InfoContext(ctx, "progress",
		"events", s.Events,
		"candidates", s.Candidates,
		"elapsed", s.Duration.Round(time.Millisecond),
	)
}

// LogRun logs the end of a streaming run.
func (l *Logger) LogRun(ctx context.Context, s RunStats, err error) {
	if err != nil {
		l.ErrorContext(ctx, "run failed",
			"events", s.Events,
			"candidates", s.Candidates,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "run completed",
		"events", s.Events,
		"candidates", s.Candidates,
		"rec_matched", s.RecMatched,
		"gen_matched", s.GenMatched,
		"jets", s.Jets,
		"duration", s.Duration.Round(time.Millisecond),
	)
}
