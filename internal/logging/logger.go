// Package logging provides the file-backed debug log used while the TUI owns
// the terminal.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Logger writes timestamped debug lines. A nil Logger, or one without a
// writer, discards everything, so components can log unconditionally.
type Logger struct {
	out       *output
	component string
}

// output is shared between a Logger and the children returned by With.
type output struct {
	mu     sync.Mutex
	w      io.Writer
	closer io.Closer
	now    func() time.Time
}

// Open creates a logger appending to path. If the path is empty, returns a
// no-op logger. Creates parent directories if they don't exist.
func Open(path string) (*Logger, error) {
	if path == "" {
		return Nop(), nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	l := &Logger{out: &output{w: f, closer: f, now: time.Now}}
	l.Log("=== weave debug log started at %s ===", time.Now().Format(time.RFC3339))
	return l, nil
}

// OpenOrNop is Open that falls back to a no-op logger on error.
func OpenOrNop(path string) *Logger {
	l, err := Open(path)
	if err != nil {
		return Nop()
	}
	return l
}

// New returns a logger writing to w.
func New(w io.Writer) *Logger {
	return &Logger{out: &output{w: w, now: time.Now}}
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{}
}

// With returns a child logger whose lines are prefixed with [component].
func (l *Logger) With(component string) *Logger {
	if l == nil {
		return nil
	}
	return &Logger{out: l.out, component: component}
}

// Log writes a timestamped message to the debug log.
func (l *Logger) Log(format string, args ...interface{}) {
	if l == nil || l.out == nil || l.out.w == nil {
		return
	}

	msg := fmt.Sprintf(format, args...)
	if l.component != "" {
		msg = "[" + l.component + "] " + msg
	}

	l.out.mu.Lock()
	defer l.out.mu.Unlock()

	timestamp := l.out.now().Format("15:04:05.000")
	fmt.Fprintf(l.out.w, "[%s] %s\n", timestamp, msg)
	if f, ok := l.out.w.(*os.File); ok {
		f.Sync()
	}
}

// Close closes the underlying file, if any.
// Safe to call on nil logger or logger without file.
func (l *Logger) Close() error {
	if l == nil || l.out == nil || l.out.closer == nil {
		return nil
	}

	l.out.mu.Lock()
	defer l.out.mu.Unlock()

	return l.out.closer.Close()
}
