package logging

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/apex/log"
	"github.com/apex/log/handlers/cli"
	"github.com/apex/log/handlers/json"
	"github.com/apex/log/handlers/multi"
	"github.com/apex/log/handlers/text"
	"github.com/mitchellh/go-homedir"
)

// Format represents the log file output format
type Format string

const (
	FormatJSON Format = "json"
	FormatText Format = "text"
)

// Config describes where log entries go
type Config struct {
	// Level is the minimum log level
	Level Level
	// Console receives human oriented output; nil disables it
	Console io.Writer
	// File is an optional log file path, ~ is expanded
	File string
	// Format is the log file format
	Format Format
}

// ApexLogger implements Logger on top of apex/log
type ApexLogger struct {
	entry  *log.Entry
	closer io.Closer
}

// New creates a logger writing to the console and optionally to a file
func New(cfg Config) (*ApexLogger, error) {
	var handlers []log.Handler
	if cfg.Console != nil {
		handlers = append(handlers, cli.New(cfg.Console))
	}

	var closer io.Closer
	if cfg.File != "" {
		file, err := openLogFile(cfg.File)
		if err != nil {
			return nil, err
		}
		closer = file

		if cfg.Format == FormatJSON {
			handlers = append(handlers, json.New(file))
		} else {
			handlers = append(handlers, text.New(file))
		}
	}

	var handler log.Handler
	switch len(handlers) {
	case 0:
		handler = log.HandlerFunc(func(*log.Entry) error { return nil })
	case 1:
		handler = handlers[0]
	default:
		handler = multi.New(handlers...)
	}

	logger := &log.Logger{
		Handler: handler,
		Level:   apexLevel(cfg.Level),
	}

	return &ApexLogger{entry: log.NewEntry(logger), closer: closer}, nil
}

func openLogFile(path string) (*os.File, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return nil, fmt.Errorf("failed to expand log path %s: %w", path, err)
	}

	if err := os.MkdirAll(filepath.Dir(expanded), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	file, err := os.OpenFile(expanded, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return file, nil
}

// Debug logs a debug message
func (l *ApexLogger) Debug(ctx context.Context, msg string, fields Fields) {
	l.with(fields).Debug(msg)
}

// Info logs an info message
func (l *ApexLogger) Info(ctx context.Context, msg string, fields Fields) {
	l.with(fields).Info(msg)
}

// Warn logs a warning message
func (l *ApexLogger) Warn(ctx context.Context, msg string, fields Fields) {
	l.with(fields).Warn(msg)
}

// Error logs an error message
func (l *ApexLogger) Error(ctx context.Context, msg string, err error, fields Fields) {
	entry := l.with(fields)
	if err != nil {
		entry = entry.WithError(err)
	}
	entry.Error(msg)
}

// WithFields returns a logger with additional fields
func (l *ApexLogger) WithFields(fields Fields) Logger {
	return &ApexLogger{entry: l.with(fields)}
}

// Close closes the log file, if any. Derived loggers share the file and
// do not close it.
func (l *ApexLogger) Close() error {
	if l.closer != nil {
		return l.closer.Close()
	}
	return nil
}

func (l *ApexLogger) with(fields Fields) *log.Entry {
	if len(fields) == 0 {
		return l.entry
	}
	return l.entry.WithFields(log.Fields(fields))
}

func apexLevel(level Level) log.Level {
	switch level {
	case DebugLevel:
		return log.DebugLevel
	case InfoLevel:
		return log.InfoLevel
	case ErrorLevel:
		return log.ErrorLevel
	default:
		return log.WarnLevel
	}
}
