// Package logger provides the structured logger used by plx sessions and
// drivers.
//
// There is no package-level logger. Every session owns the Logger it was
// constructed with, so verbosity is configured per session rather than per
// process.
package logger

// Level indicates the logging severity level.
type Level = int8

const (
	// DebugLevel logs outbound buffers and raw reads.
	DebugLevel Level = iota - 1
	// InfoLevel logs session lifecycle events.
	InfoLevel
	// WarnLevel logs recoverable problems such as unrecognized controller
	// commands. This is the default session level.
	WarnLevel
	// ErrorLevel logs failures.
	ErrorLevel
)

// Logger defines the logging interface used throughout plx.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Warn(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
	// With creates a child logger and adds structured context to it.
	// Key-values added to the child don't affect the parent, and vice versa.
	With(keyValues ...any) Logger
	// Level returns the minimum enabled level for this logger.
	Level() Level
	// SetLevel sets the minimum enabled level for this logger.
	SetLevel(level Level)
	// WithLevel creates a child logger with its own minimum level. Changing
	// the level of the child doesn't affect the parent, and vice versa.
	WithLevel(level Level) Logger
}

// ParseLevel maps a level name (debug, info, warn, error) to a Level. Unknown
// names return WarnLevel and false.
func ParseLevel(s string) (Level, bool) {
	switch s {
	case "debug":
		return DebugLevel, true
	case "info":
		return InfoLevel, true
	case "warn", "warning":
		return WarnLevel, true
	case "error":
		return ErrorLevel, true
	}
	return WarnLevel, false
}
