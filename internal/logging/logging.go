// Package logging is a minimal, allocation-conscious logger used by every
// package in this module in place of a structured-logging framework.
//
// Each call formats its arguments with fmt.Sprintf and writes a single
// line tagged with its level and component, with no structured fields,
// mirroring debug.DropError/DropMessage from the reference project this
// module grew out of.
package logging

import (
	"fmt"
	"os"
)

// Logger tags every line with a fixed component name, e.g. "path[grid-out]".
type Logger struct {
	component string
}

// New returns a Logger prefixing every line with component.
func New(component string) Logger {
	return Logger{component: component}
}

// Debugf writes a debug-level line to stdout.
func (l Logger) Debugf(format string, args ...any) {
	l.write(os.Stdout, "debug", format, args...)
}

// Infof writes an info-level line to stdout.
func (l Logger) Infof(format string, args ...any) {
	l.write(os.Stdout, "info", format, args...)
}

// Warnf writes a warning-level line to stderr.
func (l Logger) Warnf(format string, args ...any) {
	l.write(os.Stderr, "warn", format, args...)
}

// Errorf writes an error-level line to stderr.
func (l Logger) Errorf(format string, args ...any) {
	l.write(os.Stderr, "error", format, args...)
}

func (l Logger) write(w *os.File, level, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintf(w, "%-5s [%s] %s\n", level, l.component, msg)
}
