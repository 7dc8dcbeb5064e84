// Package logger provides the structured logger used across the daemon.
package logger

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Log is a logrus entry carrying the fields of the component that owns it.
type Log struct {
	*logrus.Entry
}

// Fields are a representation of formatted log fields.
type Fields map[string]interface{}

// NewLogger creates a logger writing to stdout at the given level
// ("debug", "info", "warn", "error").
func NewLogger(level string) (*Log, error) {
	return newLogger(os.Stdout, level)
}

func newLogger(w io.Writer, level string) (*Log, error) {
	log := logrus.New()
	log.SetOutput(w)

	log.Formatter = &logrus.TextFormatter{
		TimestampFormat:  "2006-01-02 15:04:05.0000",
		FullTimestamp:    true,
		QuoteEmptyFields: true,
		// Running under systemd the journal adds its own timestamps.
		DisableTimestamp: os.Getenv("INVOCATION_ID") != "",
	}

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("logger: bad level %q: %w", level, err)
	}
	log.SetLevel(lvl)

	return &Log{Entry: logrus.NewEntry(log)}, nil
}

// With returns a logger that adds fields to every entry.
func (l *Log) With(fields Fields) *Log {
	return &Log{Entry: l.WithFields(logrus.Fields(fields))}
}

// Module is shorthand for With(Fields{"module": name}).
func (l *Log) Module(name string) *Log {
	return l.With(Fields{"module": name})
}

// GetLevel returns the current level name.
func (l *Log) GetLevel() string {
	return l.Logger.Level.String()
}

// Discard returns a logger that drops everything. Useful in tests.
func Discard() *Log {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return &Log{Entry: logrus.NewEntry(log)}
}
