// Package opslog wraps the standard library's log.Logger with leveled
// prefixes, the way the teacher narrates scheduler and recovery events
// with plain log.Printf calls rather than a structured logging library.
package opslog

import (
	"io"
	"log"
	"os"
)

// Logger prefixes every line with a level tag and writes through a
// wrapped *log.Logger.
type Logger struct {
	std *log.Logger
}

// New returns a Logger writing to w with the given name in every line's
// prefix (e.g. the owning session id).
func New(w io.Writer, name string) *Logger {
	return &Logger{std: log.New(w, "["+name+"] ", log.LstdFlags)}
}

// Default returns a Logger writing to stderr.
func Default(name string) *Logger {
	return New(os.Stderr, name)
}

// Info logs an informational line.
func (l *Logger) Info(format string, args ...any) { l.log("INFO", format, args...) }

// Warn logs a warning line.
func (l *Logger) Warn(format string, args ...any) { l.log("WARN", format, args...) }

// Error logs an error line.
func (l *Logger) Error(format string, args ...any) { l.log("ERROR", format, args...) }

func (l *Logger) log(level, format string, args ...any) {
	l.std.Printf(level+": "+format, args...)
}
