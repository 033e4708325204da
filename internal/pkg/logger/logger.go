// Package logger provides the process-wide zap logger.
//
// JSON format for production, console for development. Until Init runs every
// call is a no-op, so packages can log from tests without setup.
package logger

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	global *zap.Logger
	once   sync.Once
	nop    = zap.NewNop()
)

// Init builds the global logger once; later calls are ignored.
// level: debug, info, warn, error. format: json or console.
func Init(level, format string) error {
	var initErr error
	once.Do(func() {
		lvl, err := zap.ParseAtomicLevel(level)
		if err != nil {
			initErr = fmt.Errorf("parse log level %q: %w", level, err)
			return
		}

		cfg := zap.NewProductionConfig()
		if format == "console" {
			cfg = zap.NewDevelopmentConfig()
			cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		}
		cfg.Level = lvl

		built, err := cfg.Build(zap.AddCallerSkip(1))
		if err != nil {
			initErr = fmt.Errorf("build logger: %w", err)
			return
		}
		global = built
	})
	return initErr
}

// current returns the global logger, or a no-op logger until Init has run.
func current() *zap.Logger {
	if global == nil {
		return nop
	}
	return global
}

func Debug(msg string, fields ...zap.Field) { current().Debug(msg, fields...) }

func Info(msg string, fields ...zap.Field) { current().Info(msg, fields...) }

func Warn(msg string, fields ...zap.Field) { current().Warn(msg, fields...) }

func Error(msg string, fields ...zap.Field) { current().Error(msg, fields...) }

// Sync flushes any buffered log entries.
func Sync() error {
	if global == nil {
		return nil
	}
	return global.Sync()
}
