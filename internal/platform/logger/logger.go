// Package logger provides structured logging for the simulation server.
// Every run start, early stop and persisted tick should be traceable through this.
package logger

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
)

// Logger provides structured logging with context.
type Logger struct {
	base *log.Logger
}

// NewLogger creates a new logger instance at info level.
func NewLogger() *Logger {
	return New(os.Stderr, "info")
}

// New creates a logger writing to w. level is one of debug, info, warn, error.
// An unknown level falls back to info.
func New(w io.Writer, level string) *Logger {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}
	return &Logger{
		base: log.NewWithOptions(w, log.Options{
			ReportTimestamp: true,
			TimeFormat:      time.DateTime,
			Prefix:          "epicurves",
			Level:           lvl,
		}),
	}
}

// NewNop returns a logger that discards everything. Used by tests.
func NewNop() *Logger {
	return &Logger{base: log.New(io.Discard)}
}

// With returns a child logger that always carries keyvals.
func (l *Logger) With(keyvals ...interface{}) *Logger {
	return &Logger{base: l.base.With(keyvals...)}
}

// Debug logs verbose diagnostics.
func (l *Logger) Debug(msg string, keyvals ...interface{}) {
	l.base.Debug(msg, keyvals...)
}

// Info logs informational messages.
func (l *Logger) Info(msg string, keyvals ...interface{}) {
	l.base.Info(msg, keyvals...)
}

// Warn logs warning messages.
func (l *Logger) Warn(msg string, keyvals ...interface{}) {
	l.base.Warn(msg, keyvals...)
}

// Error logs error messages.
func (l *Logger) Error(msg string, keyvals ...interface{}) {
	l.base.Error(msg, keyvals...)
}

// Event logs a simulation event at debug level.
func (l *Logger) Event(eventType string, agentID int, details string) {
	l.base.Debug(fmt.Sprintf("[EVENT:%s]", eventType), "agent", agentID, "details", details)
}
