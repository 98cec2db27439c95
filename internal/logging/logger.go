// Package logging provides structured JSON logging for tomato.
//
// It wraps log/slog so every package logs through one handler whose level and
// destination come from configuration. The TUI owns the terminal, so logs
// normally go to a file; with an empty path they go to stderr.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
)

// Log levels supported by the logger
const (
	LevelDebug = "DEBUG"
	LevelInfo  = "INFO"
	LevelWarn  = "WARN"
	LevelError = "ERROR"
)

// Logger is safe for concurrent use. Child loggers share the parent's output,
// so closing any of them closes the file once for all.
type Logger struct {
	logger *slog.Logger
	out    *output
}

type output struct {
	mu   sync.Mutex
	file *os.File
}

// NewLogger creates a Logger appending JSON lines to path, creating parent
// directories as needed. An empty path logs to stderr.
func NewLogger(path, level string) (*Logger, error) {
	if path == "" {
		return New(os.Stderr, level), nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	l := New(file, level)
	l.out.file = file
	return l, nil
}

// New creates a Logger writing to w.
func New(w io.Writer, level string) *Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: parseLevel(level)})
	return &Logger{logger: slog.New(handler), out: &output{}}
}

// NopLogger returns a Logger that discards all output.
func NopLogger() *Logger {
	return New(io.Discard, LevelError)
}

func parseLevel(level string) slog.Level {
	switch strings.ToUpper(level) {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ValidLevels returns the accepted level strings.
func ValidLevels() []string {
	return []string{LevelDebug, LevelInfo, LevelWarn, LevelError}
}

// IsValidLevel reports whether level is one of ValidLevels, ignoring case.
func IsValidLevel(level string) bool {
	for _, l := range ValidLevels() {
		if strings.EqualFold(level, l) {
			return true
		}
	}
	return false
}

// With returns a child logger that adds the given key-value pairs to every entry.
func (l *Logger) With(args ...any) *Logger {
	if len(args) == 0 {
		return l
	}
	return &Logger{logger: l.logger.With(args...), out: l.out}
}

// WithSession returns a child logger tagged with a session id.
func (l *Logger) WithSession(id int64) *Logger {
	return l.With("session_id", strconv.FormatInt(id, 10))
}

func (l *Logger) Debug(msg string, args ...any) { l.logger.Debug(msg, args...) }
func (l *Logger) Info(msg string, args ...any)  { l.logger.Info(msg, args...) }
func (l *Logger) Warn(msg string, args ...any)  { l.logger.Warn(msg, args...) }
func (l *Logger) Error(msg string, args ...any) { l.logger.Error(msg, args...) }

// Close syncs and closes the log file. It is a no-op for stderr and writer loggers.
func (l *Logger) Close() error {
	l.out.mu.Lock()
	defer l.out.mu.Unlock()

	f := l.out.file
	if f == nil {
		return nil
	}
	l.out.file = nil
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("sync log file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close log file: %w", err)
	}
	return nil
}
