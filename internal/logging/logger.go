// Package logging provides the shared zerolog loggers used by the command
// line tool and the desktop application.
package logging

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	mu            sync.Mutex
	defaultLogger zerolog.Logger
	subsystems    = map[string]*zerolog.Logger{}
)

func init() {
	defaultLogger = newLogger(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}

func newLogger(w io.Writer) zerolog.Logger {
	return zerolog.New(w).With().Timestamp().Logger()
}

// GetDefaultLogger returns the root logger.
func GetDefaultLogger() *zerolog.Logger {
	mu.Lock()
	defer mu.Unlock()
	l := defaultLogger
	return &l
}

// GetSubsystemLogger returns a logger tagged with component=name.
// Loggers are cached per name until the output is changed.
func GetSubsystemLogger(name string) *zerolog.Logger {
	mu.Lock()
	defer mu.Unlock()
	if l, ok := subsystems[name]; ok {
		return l
	}
	l := defaultLogger.With().Str("component", name).Logger()
	subsystems[name] = &l
	return &l
}

// SetOutput redirects every logger obtained afterwards to w.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	defaultLogger = newLogger(w)
	subsystems = map[string]*zerolog.Logger{}
}

// SetLevel sets the global log level. Unknown names fall back to info.
func SetLevel(level string) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
}
