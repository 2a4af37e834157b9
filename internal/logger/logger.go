// Package logger holds the shared logrus logger for fluxcast-backup.
//
// Standard output belongs to the backup report (timestamps and the rsync
// transfer log), so diagnostic logging always goes to standard error.
package logger

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	base *logrus.Logger
	mu   sync.Mutex
)

// Init (re)configures the shared logger with the given level name.
// Unknown or empty level names fall back to info.
func Init(level string) *logrus.Logger {
	mu.Lock()
	defer mu.Unlock()
	if base == nil {
		base = newLogger(os.Stderr)
	}
	base.SetLevel(ParseLevel(level))
	return base
}

// Get returns the shared logger, initializing it at info level on first use.
func Get() *logrus.Logger {
	mu.Lock()
	l := base
	mu.Unlock()
	if l == nil {
		return Init("")
	}
	return l
}

// New builds an independent logger writing to w. Tests use it to capture output.
func New(w io.Writer, level string) *logrus.Logger {
	l := newLogger(w)
	l.SetLevel(ParseLevel(level))
	return l
}

func newLogger(w io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return l
}

// ParseLevel converts a level name such as "debug" or "WARN" into a logrus level.
func ParseLevel(raw string) logrus.Level {
	level := strings.TrimSpace(strings.ToLower(raw))
	if level == "" {
		return logrus.InfoLevel
	}
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		return logrus.InfoLevel
	}
	return parsed
}

// Discard returns a logger that drops everything.
func Discard() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
