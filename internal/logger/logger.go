// Package logger wraps zap construction so both binaries configure
// structured logging the same way.
package logger

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger holds the active zap logger. Log is a no-op logger until Init
// succeeds, so callers may use it unconditionally.
type Logger struct {
	Log *zap.Logger

	out io.Writer
}

// New returns a Logger writing to stderr.
func New() *Logger {
	return &Logger{Log: zap.NewNop(), out: os.Stderr}
}

// NewWithWriter returns a Logger writing to w instead of stderr.
func NewWithWriter(w io.Writer) *Logger {
	return &Logger{Log: zap.NewNop(), out: w}
}

// Init replaces Log with a console-encoded logger at the given level
// ("debug", "info", "warn", "error").
func (l *Logger) Init(level string) error {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("parse log level %q: %w", level, err)
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encCfg),
		zapcore.AddSync(l.out),
		lvl,
	)
	l.Log = zap.New(core)
	return nil
}
