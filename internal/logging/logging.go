// Package logging builds the process logger: human console output on stderr
// plus an append-only error log file. The file sink keeps warnings and
// errors; the ledger stays the durable record of item outcomes, and the two
// channels must agree.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

const consoleTimeFormat = "15:04:05"

// New returns a logger writing to the console and, when errorLogPath is
// non-empty, appending warn-and-above records to that file. The returned
// close func flushes and closes the file sink.
func New(errorLogPath string, verbose bool) (zerolog.Logger, func(), error) {
	console := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: consoleTimeFormat}

	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}

	writers := []io.Writer{console}
	closeFn := func() {}

	if errorLogPath != "" {
		if err := os.MkdirAll(filepath.Dir(errorLogPath), 0o755); err != nil {
			return zerolog.Logger{}, nil, fmt.Errorf("create log directory: %w", err)
		}
		f, err := os.OpenFile(errorLogPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return zerolog.Logger{}, nil, fmt.Errorf("open error log %s: %w", errorLogPath, err)
		}
		writers = append(writers, levelFilter{w: f, min: zerolog.WarnLevel})
		closeFn = func() { _ = f.Close() }
	}

	logger := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(level).
		With().
		Timestamp().
		Logger()
	return logger, closeFn, nil
}

// Nop returns a silent logger for tests.
func Nop() zerolog.Logger {
	return zerolog.Nop()
}

// levelFilter keeps info chatter out of the persistent error log.
type levelFilter struct {
	w   io.Writer
	min zerolog.Level
}

func (f levelFilter) Write(p []byte) (int, error) {
	return f.w.Write(p)
}

func (f levelFilter) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	if level < f.min {
		return len(p), nil
	}
	return f.w.Write(p)
}

func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
