// Package logging holds the process-wide structured logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"sync/atomic"

	charm "github.com/charmbracelet/log"
)

const prefix = "changeproxy"

var defaultLogger atomic.Pointer[charm.Logger]

func init() {
	defaultLogger.Store(charm.NewWithOptions(os.Stderr, charm.Options{
		Prefix: prefix,
		Level:  charm.InfoLevel,
	}))
}

// Default returns the global logger.
func Default() *charm.Logger {
	return defaultLogger.Load()
}

// SetDefault replaces the global logger. Nil is ignored.
func SetDefault(l *charm.Logger) {
	if l != nil {
		defaultLogger.Store(l)
	}
}

// New creates a logger writing to stderr at the named level
// ("debug", "info", "warn", "error").
func New(level string) (*charm.Logger, error) {
	return NewWriter(os.Stderr, level)
}

// NewWriter is New with an explicit destination.
func NewWriter(w io.Writer, level string) (*charm.Logger, error) {
	lvl, err := charm.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return charm.NewWithOptions(w, charm.Options{
		Prefix:          prefix,
		Level:           lvl,
		ReportTimestamp: true,
	}), nil
}

// Discard returns a logger that drops everything, for tests.
func Discard() *charm.Logger {
	return charm.New(io.Discard)
}
