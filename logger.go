package elgo

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with reasoner-specific context.
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
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// WithRun adds a classification run id field to the logger.
func (l *Logger) WithRun(id string) *Logger {
	return &Logger{
		Logger: l.Logger.With("run", id),
	}
}

// WithWorkers adds a worker count field to the logger.
func (l *Logger) WithWorkers(n int) *Logger {
	return &Logger{
		Logger: l.Logger.With("workers", n),
	}
}

// LogClassify logs a classification run.
func (l *Logger) LogClassify(ctx context.Context, res SaturationResult, err error) {
	if err != nil {
		l.ErrorContext(ctx, "classification failed",
			"contexts", res.Contexts,
			"duration", res.Duration,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "classification completed",
		"complete", res.Complete,
		"consistent", res.Consistent,
		"contexts", res.Contexts,
		"processed", res.Processed,
		"conclusions", res.Conclusions,
		"rule_applications", res.Rules.Total(),
		"duration", res.Duration,
	)
}

// LogIncremental logs the application of an axiom delta.
func (l *Logger) LogIncremental(ctx context.Context, added, removed int, st IncrementalStats) {
	if st.FullReset {
		l.InfoContext(ctx, "axiom changes applied with full reset",
			"added", added,
			"removed", removed,
		)
		return
	}
	l.DebugContext(ctx, "axiom changes applied incrementally",
		"added", added,
		"removed", removed,
		"seeds", st.Seeds,
		"invalidated", st.Invalidated,
	)
}

// LogInterrupted logs a run that stopped before reaching the fixpoint.
func (l *Logger) LogInterrupted(ctx context.Context, backlog int, cause error) {
	l.WarnContext(ctx, "classification interrupted",
		"backlog", backlog,
		"cause", cause,
	)
}

// LogTaxonomy logs a taxonomy build.
func (l *Logger) LogTaxonomy(ctx context.Context, nodes int, complete bool, d time.Duration) {
	l.DebugContext(ctx, "taxonomy built",
		"nodes", nodes,
		"complete", complete,
		"duration", d,
	)
}
