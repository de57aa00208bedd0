// Package logger holds the process-wide structured logger.
//
// Output never goes to stdout: the language server speaks its protocol there.
package logger

import (
	"io"
	"os"
	"strings"
	"sync/atomic"

	charm "github.com/charmbracelet/log"
	"github.com/cockroachdb/errors"
)

// ErrInvalidLevel is returned for log levels other than debug, info, warn,
// error and off.
var ErrInvalidLevel = errors.New("invalid log level")

var defaultLogger atomic.Value

func init() {
	defaultLogger.Store(New(os.Stderr, charm.InfoLevel))
}

// Default returns the global logger.
func Default() *charm.Logger {
	return defaultLogger.Load().(*charm.Logger)
}

// SetDefault replaces the global logger. nil is ignored.
func SetDefault(l *charm.Logger) {
	if l != nil {
		defaultLogger.Store(l)
	}
}

// New creates a logger writing to w at level.
func New(w io.Writer, level charm.Level) *charm.Logger {
	return charm.NewWithOptions(w, charm.Options{
		Level:           level,
		Prefix:          "solls",
		ReportTimestamp: true,
	})
}

// ParseLevel parses a level name. "off" silences everything below fatal.
func ParseLevel(s string) (charm.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return charm.InfoLevel, nil
	case "debug", "trace":
		return charm.DebugLevel, nil
	case "warn", "warning":
		return charm.WarnLevel, nil
	case "error":
		return charm.ErrorLevel, nil
	case "off", "none":
		return charm.FatalLevel, nil
	}
	return charm.InfoLevel, errors.Wrapf(ErrInvalidLevel, "%q", s)
}

// Configure installs a global logger at level writing to file, or stderr
// when file is empty. The returned closer releases the file.
func Configure(level, file string) (io.Closer, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	var w io.WriteCloser = nopCloser{os.Stderr}
	switch file {
	case "", "/dev/stderr":
	default:
		f, err := os.OpenFile(file, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0o644)
		if err != nil {
			return nil, errors.Wrapf(err, "open log file %s", file)
		}
		w = f
	}
	SetDefault(New(w, lvl))
	return w, nil
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

func Debug(msg any, keyvals ...any) { Default().Debug(msg, keyvals...) }

func Info(msg any, keyvals ...any) { Default().Info(msg, keyvals...) }

func Warn(msg any, keyvals ...any) { Default().Warn(msg, keyvals...) }

func Error(msg any, keyvals ...any) { Default().Error(msg, keyvals...) }
