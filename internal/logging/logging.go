package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Logger is a deliberately small, framework-agnostic logging interface.
type Logger interface {
	// Debug logs a debug-level message.
	Debug(msg string, fields ...Field)

	// Info logs an informational message.
	Info(msg string, fields ...Field)

	// Warn logs a warning.
	Warn(msg string, fields ...Field)

	// Error logs an error.
	Error(msg string, fields ...Field)

	// With returns a child logger with persistent fields.
	With(fields ...Field) Logger
}

// Field is a simple key/value pair for structured logging fields.
type Field struct {
	Key   string
	Value any
}

// Config controls the logrus backend.
type Config struct {
	// Level is one of debug, info, warn, error. Unknown values fall back to info.
	Level string
	// Format is "json" or "text".
	Format string
	// Output is "stdout", "stderr" or a file path opened in append mode.
	Output string
}

// StdoutLogger is the structured logger used by every component. It is backed
// by a logrus entry so persistent fields survive With().
type StdoutLogger struct {
	entry *logrus.Entry
}

// NewStdoutLogger creates a JSON logger on stdout at info level. component is
// optional and will be included as a persistent field.
func NewStdoutLogger(component string) *StdoutLogger {
	l := logrus.New()
	l.SetOutput(os.Stdout)
	l.SetFormatter(&logrus.JSONFormatter{})
	l.SetLevel(logrus.InfoLevel)

	entry := logrus.NewEntry(l)
	if component != "" {
		entry = entry.WithField("component", component)
	}
	return &StdoutLogger{entry: entry}
}

// NewLogger builds a logger from cfg. The returned io.Closer releases the log
// file when Output names one; it is a no-op otherwise.
func NewLogger(cfg Config, component string) (*StdoutLogger, io.Closer, error) {
	l := logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	l.SetLevel(level)

	switch strings.ToLower(cfg.Format) {
	case "text":
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		l.SetFormatter(&logrus.JSONFormatter{})
	}

	var closer io.Closer = nopCloser{}
	switch strings.ToLower(cfg.Output) {
	case "", "stdout":
		l.SetOutput(os.Stdout)
	case "stderr":
		l.SetOutput(os.Stderr)
	default:
		f, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file %s: %w", cfg.Output, err)
		}
		l.SetOutput(f)
		closer = f
	}

	entry := logrus.NewEntry(l)
	if component != "" {
		entry = entry.WithField("component", component)
	}
	return &StdoutLogger{entry: entry}, closer, nil
}

func toLogrusFields(fields []Field) logrus.Fields {
	out := make(logrus.Fields, len(fields))
	for _, f := range fields {
		out[f.Key] = f.Value
	}
	return out
}

func (s *StdoutLogger) Debug(msg string, fields ...Field) {
	s.entry.WithFields(toLogrusFields(fields)).Debug(msg)
}

func (s *StdoutLogger) Info(msg string, fields ...Field) {
	s.entry.WithFields(toLogrusFields(fields)).Info(msg)
}

func (s *StdoutLogger) Warn(msg string, fields ...Field) {
	s.entry.WithFields(toLogrusFields(fields)).Warn(msg)
}

func (s *StdoutLogger) Error(msg string, fields ...Field) {
	s.entry.WithFields(toLogrusFields(fields)).Error(msg)
}

func (s *StdoutLogger) With(fields ...Field) Logger {
	return &StdoutLogger{entry: s.entry.WithFields(toLogrusFields(fields))}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// NopLogger discards everything.
type NopLogger struct{}

// NewNopLogger returns a Logger that discards all messages.
func NewNopLogger() Logger { return NopLogger{} }

func (NopLogger) Debug(string, ...Field)  {}
func (NopLogger) Info(string, ...Field)   {}
func (NopLogger) Warn(string, ...Field)   {}
func (NopLogger) Error(string, ...Field)  {}
func (n NopLogger) With(...Field) Logger { return n }
