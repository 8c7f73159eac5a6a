// Package logger holds the process-wide zap logger. Every subsystem of the
// payment engine logs through WithModule so settlement, webhook and HTTP
// entries stay distinguishable in one stream.
package logger

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	global *zap.Logger
	mu     sync.RWMutex
)

func init() {
	// Packages log during construction, before main has parsed any config.
	global = zap.NewNop()
}

// Init replaces the no-op logger with a production zap logger at the given
// level. An unparseable level falls back to info rather than failing startup.
func Init(level string) error {
	cfg := zap.NewProductionConfig()

	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		zapLevel = zapcore.InfoLevel
	}
	cfg.Level = zap.NewAtomicLevelAt(zapLevel)

	built, err := cfg.Build()
	if err != nil {
		return err
	}

	mu.Lock()
	defer mu.Unlock()

	global = built
	return nil
}

// Logger returns the current process-wide logger.
func Logger() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()

	return global
}

// Sync flushes buffered entries, typically on shutdown.
func Sync() error {
	return Logger().Sync()
}

// WithModule returns a child logger tagged with the owning subsystem, for
// example "settlement" or "webhooks".
func WithModule(module string) *zap.Logger {
	return Logger().With(zap.String("module", module))
}
