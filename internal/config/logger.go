package config

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type LoggerConfig struct {
	Level string `yaml:"level" validate:"required,oneof=none debug normal"`
}

type LoggingConfig struct {
	Console LoggerConfig `yaml:"console"`
}

// Prepare returns the console logger: informational messages go to stdout
// unless stdout carries the converted document, errors always go to stderr.
func (conf *LoggingConfig) Prepare(stdoutBusy bool) *zap.Logger {
	ec := zap.NewDevelopmentEncoderConfig()
	ec.EncodeCaller = nil
	ec.TimeKey = zapcore.OmitKey
	ec.EncodeLevel = zapcore.CapitalLevelEncoder
	encoder := zapcore.NewConsoleEncoder(ec)

	var minLevel zapcore.Level
	switch conf.Console.Level {
	case "debug":
		minLevel = zapcore.DebugLevel
	case "normal":
		minLevel = zapcore.InfoLevel
	default:
		return zap.NewNop()
	}

	lowPriority := zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
		return minLevel <= lvl && lvl < zapcore.ErrorLevel
	})
	highPriority := zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
		return lvl >= zapcore.ErrorLevel
	})

	lowSink := zapcore.Lock(os.Stdout)
	if stdoutBusy {
		lowSink = zapcore.Lock(os.Stderr)
	}

	return zap.New(zapcore.NewTee(
		zapcore.NewCore(encoder, lowSink, lowPriority),
		zapcore.NewCore(encoder, zapcore.Lock(os.Stderr), highPriority),
	))
}
