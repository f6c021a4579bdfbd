package logger

import (
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var global atomic.Pointer[zap.Logger]

func init() {
	// A usable logger is always available, even before Init runs.
	global.Store(zap.NewNop())
}

// Init builds the global logger at the requested level. Unknown level
// strings fall back to info.
func Init(level string) error {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = zapcore.InfoLevel
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	log, err := cfg.Build()
	if err != nil {
		return err
	}

	global.Store(log)
	return nil
}

// Logger returns the current global logger.
func Logger() *zap.Logger {
	return global.Load()
}

// WithComponent returns a child logger tagged with the component name.
func WithComponent(name string) *zap.Logger {
	return Logger().With(zap.String("component", name))
}

// Sync flushes any buffered log entries.
func Sync() error {
	return Logger().Sync()
}
