// Package log provides the structured logging interface used by the
// classifiers, the grid search and the command line tool.
//
// The Logger interface mirrors the method set of log/slog so that callers can
// swap implementations. The production implementation writes JSON lines with
// zerolog; tests use TestLogger, which captures entries in memory.
//
// Example usage:
//
//	logger := log.GetLoggerWithName("linear_model").With(
//	    log.ModelNameKey, "SoftmaxRegression",
//	)
//	logger.Info("Training started",
//	    log.OperationKey, log.OperationFit,
//	    log.SamplesKey, 150,
//	    log.FeaturesKey, 4,
//	)
package log

import (
	"context"
)

// Logger is a structured logger with slog-style key/value fields.
type Logger interface {
	// Debug logs diagnostic detail such as per-epoch loss values.
	Debug(msg string, fields ...any)

	// Info logs lifecycle events: training started/completed, grid cells.
	Info(msg string, fields ...any)

	// Warn logs recoverable conditions.
	Warn(msg string, fields ...any)

	// Error logs failures. By convention the error is passed under
	// ErrAttrKey so handlers can extract a stack trace.
	Error(msg string, fields ...any)

	// With returns a child logger that adds fields to every entry.
	With(fields ...any) Logger

	// Enabled reports whether entries at level would be written.
	Enabled(ctx context.Context, level Level) bool
}

// Level is a log severity, numerically compatible with slog.Level.
type Level int

const (
	LevelDebug Level = -4
	LevelInfo  Level = 0
	LevelWarn  Level = 4
	LevelError Level = 8
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// LoggerProvider hands out loggers that share one configuration.
type LoggerProvider interface {
	GetLogger() Logger

	// GetLoggerWithName returns a logger tagged with ComponentKey=name.
	GetLoggerWithName(name string) Logger

	SetLevel(level Level)
}
