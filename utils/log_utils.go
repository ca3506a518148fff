package utils

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

var (
	logger      zerolog.Logger
	logMu       sync.RWMutex
	initialized bool
)

func initLoggerLocked() {
	if initialized {
		return
	}
	logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger().Level(zerolog.InfoLevel)
	initialized = true
}

// Logger returns the process logger. By default it writes human readable lines to stderr at
// info level.
func Logger() *zerolog.Logger {
	logMu.RLock()
	if initialized {
		l := logger
		logMu.RUnlock()
		return &l
	}
	logMu.RUnlock()

	logMu.Lock()
	defer logMu.Unlock()
	initLoggerLocked()
	l := logger
	return &l
}

// SetLogOutput redirects the process logger, keeping the current level.
func SetLogOutput(w io.Writer) {
	logMu.Lock()
	defer logMu.Unlock()
	initLoggerLocked()
	logger = zerolog.New(w).With().Timestamp().Logger().Level(logger.GetLevel())
}

// SetLogLevel parses one of zerolog's level names ("debug", "info", ...).
func SetLogLevel(level string) error {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return errors.Wrapf(err, "invalid log level %q", level)
	}
	logMu.Lock()
	defer logMu.Unlock()
	initLoggerLocked()
	logger = logger.Level(lvl)
	return nil
}
