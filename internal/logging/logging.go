// Package logging builds the process logger from configuration.
package logging

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

// Options selects the logger's level and sinks.
type Options struct {
	Level string

	Console       bool
	ConsoleWriter io.Writer

	File     bool
	FilePath string

	Loki *LokiConfig
}

// Logger wraps the configured logrus logger and owns its sinks.
type Logger struct {
	*logrus.Logger

	file *os.File
	loki *LokiHook
}

// New creates a logger writing to the configured sinks. With no sink
// enabled output is discarded.
func New(opts Options) (*Logger, error) {
	level, err := logrus.ParseLevel(opts.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", opts.Level, err)
	}

	log := logrus.New()
	log.SetLevel(level)

	l := &Logger{Logger: log}

	writers := make([]io.Writer, 0, 2)

	if opts.Console {
		console := opts.ConsoleWriter
		if console == nil {
			console = os.Stderr
		}

		writers = append(writers, console)
	}

	if opts.File {
		f, err := openLogFile(opts.FilePath)
		if err != nil {
			return nil, err
		}

		l.file = f
		writers = append(writers, f)
	}

	switch len(writers) {
	case 0:
		log.SetOutput(io.Discard)
	case 1:
		log.SetOutput(writers[0])
	default:
		log.SetOutput(io.MultiWriter(writers...))
	}

	if opts.Loki != nil && opts.Loki.Host != "" {
		l.loki = NewLokiHook(*opts.Loki)
		log.AddHook(l.loki)
	}

	return l, nil
}

// Close flushes pending remote entries and closes the log file.
func (l *Logger) Close() error {
	var errs []error

	if l.loki != nil {
		if err := l.loki.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing loki hook: %w", err))
		}
	}

	if l.file != nil {
		if err := l.file.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing log file: %w", err))
		}
	}

	return errors.Join(errs...)
}

func openLogFile(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating log directory: %w", err)
		}
	}

	//nolint:gosec // G304: Log path comes from local configuration
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}

	return f, nil
}
