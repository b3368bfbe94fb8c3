// Package obslog builds the structured loggers used across the
// ingestion pipeline. The front-end that embeds this module owns
// overall logging *setup* (verbosity flags, output targets chosen by
// the operator); this package only owns the one thing the core itself
// needs: a rotated, leveled sink for its own operational events
// (retries, file-deletes, batch failures, state transitions).
package obslog

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

// FileConfig controls the rotated log file a Logger writes through.
type FileConfig struct {
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

func (c FileConfig) withDefaults() FileConfig {
	if c.MaxSizeMB == 0 {
		c.MaxSizeMB = 50
	}
	if c.MaxBackups == 0 {
		c.MaxBackups = 5
	}
	if c.MaxAgeDays == 0 {
		c.MaxAgeDays = 30
	}
	return c
}

// New builds a *zap.Logger that writes JSON lines to a rotated file
// and, if console is true, also to stderr in a human-readable form.
func New(fc FileConfig, console bool) (*zap.Logger, error) {
	fc = fc.withDefaults()

	var cores []zapcore.Core

	if fc.Path != "" {
		rotator := &lumberjack.Logger{
			Filename:   fc.Path,
			MaxSize:    fc.MaxSizeMB,
			MaxBackups: fc.MaxBackups,
			MaxAge:     fc.MaxAgeDays,
			Compress:   fc.Compress,
		}
		fileEncoder := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
		cores = append(cores, zapcore.NewCore(fileEncoder, zapcore.AddSync(rotator), zapcore.InfoLevel))
	}

	if console {
		consoleCfg := zap.NewDevelopmentEncoderConfig()
		consoleEncoder := zapcore.NewConsoleEncoder(consoleCfg)
		cores = append(cores, zapcore.NewCore(consoleEncoder, zapcore.Lock(zapcore.AddSync(os.Stderr)), zapcore.DebugLevel))
	}

	if len(cores) == 0 {
		return zap.NewNop(), nil
	}

	core := zapcore.NewTee(cores...)
	return zap.New(core, zap.AddCaller()), nil
}

// Nop returns a logger that discards everything, used as the default
// when a caller does not inject one.
func Nop() *zap.Logger { return zap.NewNop() }
