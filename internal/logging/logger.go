// Package logging wraps logrus behind a small structured-logging interface so
// the rest of the module never imports logrus directly.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Logger is the structured logging interface used across the module
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, err error, fields ...Field)

	// With returns a child logger carrying preset fields
	With(fields ...Field) Logger

	Close() error
}

// Config holds configuration for creating a logger instance
type Config struct {
	Level  string // debug, info, warn, error
	Format string // text, json
	Output string // stdout, stderr or a file path
}

type logrusLogger struct {
	logrus *logrus.Logger
	file   *os.File
	fields []Field
}

// New creates a logger with the given configuration
func New(cfg Config) (Logger, error) {
	l := logrus.New()

	level := cfg.Level
	if level == "" {
		level = "info"
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}
	l.SetLevel(lvl)

	switch strings.ToLower(cfg.Format) {
	case "json":
		l.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})
	case "text", "":
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: time.RFC3339})
	default:
		return nil, fmt.Errorf("unsupported log format: %s", cfg.Format)
	}

	var (
		file   *os.File
		writer io.Writer
	)
	switch strings.ToLower(cfg.Output) {
	case "stdout":
		writer = os.Stdout
	case "stderr", "":
		writer = os.Stderr
	default:
		if err := os.MkdirAll(filepath.Dir(cfg.Output), 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		//nolint:gosec // path comes from configuration
		file, err = os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		writer = file
	}
	l.SetOutput(writer)

	return &logrusLogger{logrus: l, file: file}, nil
}

// NewWithWriter creates a logger writing to w; used by tests to capture output
func NewWithWriter(w io.Writer, level string, format string) (Logger, error) {
	lg, err := New(Config{Level: level, Format: format, Output: "stderr"})
	if err != nil {
		return nil, err
	}
	lg.(*logrusLogger).logrus.SetOutput(w)
	return lg, nil
}

func (l *logrusLogger) entry(fields []Field) *logrus.Entry {
	all := make(logrus.Fields, len(l.fields)+len(fields))
	for _, f := range l.fields {
		all[f.Key] = f.Value
	}
	for _, f := range fields {
		all[f.Key] = f.Value
	}
	return l.logrus.WithFields(all)
}

func (l *logrusLogger) Debug(msg string, fields ...Field) { l.entry(fields).Debug(msg) }
func (l *logrusLogger) Info(msg string, fields ...Field)  { l.entry(fields).Info(msg) }
func (l *logrusLogger) Warn(msg string, fields ...Field)  { l.entry(fields).Warn(msg) }

func (l *logrusLogger) Error(msg string, err error, fields ...Field) {
	e := l.entry(fields)
	if err != nil {
		e = e.WithError(err)
	}
	e.Error(msg)
}

func (l *logrusLogger) With(fields ...Field) Logger {
	preset := make([]Field, 0, len(l.fields)+len(fields))
	preset = append(preset, l.fields...)
	preset = append(preset, fields...)
	// Child loggers don't own the file handle
	return &logrusLogger{logrus: l.logrus, fields: preset}
}

func (l *logrusLogger) Close() error {
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}

// NewNoop creates a logger that discards everything
func NewNoop() Logger {
	return noopLogger{}
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...Field)        {}
func (noopLogger) Info(string, ...Field)         {}
func (noopLogger) Warn(string, ...Field)         {}
func (noopLogger) Error(string, error, ...Field) {}
func (n noopLogger) With(...Field) Logger        { return n }
func (noopLogger) Close() error                  { return nil }
