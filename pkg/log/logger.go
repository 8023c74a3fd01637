package log

import (
	"fmt"
	"os"
	"sync"

	"github.com/rs/zerolog"

	"github.com/YuminosukeSato/mlvlab/pkg/errors"
)

var (
	defaultMu     sync.RWMutex
	defaultLogger Logger = NewZerologLogger(os.Stderr, LevelInfo)
)

// SetupLogger configures the process-wide logger from a level name
// ("debug", "info", "warn", "error") and routes library warnings to it.
func SetupLogger(loglevel string) {
	level := ToLogLevel(loglevel)
	zerolog.SetGlobalLevel(toZerologLevel(level))
	l := NewZerologLogger(os.Stdout, level)
	SetLogger(l)
	InstallWarningHandler(l)
}

// ToLogLevel is ParseLevel for trusted input; it panics on an unknown name.
func ToLogLevel(level string) Level {
	l, err := ParseLevel(level)
	if err != nil {
		panic(fmt.Sprintf("invalid log level :%s", level))
	}
	return l
}

// ParseLevel converts a level name into a Level.
func ParseLevel(level string) (Level, error) {
	switch level {
	case "info":
		return LevelInfo, nil
	case "debug":
		return LevelDebug, nil
	case "warn":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, errors.NewValidationError("loglevel", "must be one of debug, info, warn, error", level)
	}
}

// SetLogger replaces the default logger.
func SetLogger(l Logger) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultLogger = l
}

// GetLogger returns the default logger.
func GetLogger() Logger {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultLogger
}

// GetLoggerWithName returns the default logger tagged with a component name.
func GetLoggerWithName(name string) Logger {
	return GetLogger().With(ComponentKey, name)
}

// InstallWarningHandler sends warnings raised through errors.Warn to l.
func InstallWarningHandler(l Logger) {
	errors.SetZerologWarnFunc(func(w error) {
		fields := []any{ErrorTypeKey, fmt.Sprintf("%T", w)}
		if m, ok := w.(zerolog.LogObjectMarshaler); ok {
			fields = append(fields, DetailKey, m)
		}
		l.Warn(w.Error(), fields...)
	})
}
