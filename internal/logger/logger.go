// Package logger wires the application's structured zap logger.
package logger

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger holds the process-wide zap logger. It is a no-op logger until Init is called.
type Logger struct {
	Log *zap.Logger
}

// New returns a Logger backed by a no-op zap logger.
func New() *Logger {
	return &Logger{Log: zap.NewNop()}
}

// Init replaces the no-op logger with a JSON logger at the given level
// ("debug", "info", "warn", "error"; case-insensitive) writing to stderr.
// When file is non-empty, records are also written to a size-rotated log file.
func (l *Logger) Init(level string, file string) error {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return fmt.Errorf("parse log level %q: %w", level, err)
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoder := zapcore.NewJSONEncoder(encCfg)

	cores := []zapcore.Core{
		zapcore.NewCore(encoder, zapcore.Lock(os.Stderr), lvl),
	}
	if file != "" {
		rotating := &lumberjack.Logger{
			Filename:   file,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
			Compress:   true,
		}
		cores = append(cores, zapcore.NewCore(encoder, zapcore.AddSync(rotating), lvl))
	}

	l.Log = zap.New(zapcore.NewTee(cores...), zap.AddCaller())
	return nil
}
