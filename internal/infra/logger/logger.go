package logger

import (
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	logger = zap.NewNop()
)

// Init configures the package logger. Without a file path every entry is
// discarded, so console output of the tools stays clean.
func Init(debugEnabled bool, logFilePath string) error {
	if logFilePath == "" {
		logger = zap.NewNop()
		return nil
	}

	level := zapcore.InfoLevel
	if debugEnabled {
		level = zapcore.DebugLevel
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder

	config := zap.Config{
		Level:            zap.NewAtomicLevelAt(level),
		Encoding:         "json",
		EncoderConfig:    encoderConfig,
		OutputPaths:      []string{logFilePath},
		ErrorOutputPaths: []string{logFilePath + ".err"},
	}

	built, err := config.Build()
	if err != nil {
		return err
	}
	logger = built
	return nil
}

// Close flushes any buffered log entries
func Close() {
	_ = logger.Sync()
}

func Debug(msg string, fields ...zap.Field) {
	logger.Debug(msg, fields...)
}

func Info(msg string, fields ...zap.Field) {
	logger.Info(msg, fields...)
}

func Warn(msg string, fields ...zap.Field) {
	logger.Warn(msg, fields...)
}

func Error(msg string, fields ...zap.Field) {
	logger.Error(msg, fields...)
}

// Err creates an error field
func Err(err error) zap.Field {
	return zap.Error(err)
}

// String creates a string field (safe for user input)
func String(key string, value string) zap.Field {
	return zap.String(key, value)
}

func Int(key string, value int) zap.Field {
	return zap.Int(key, value)
}

func Bool(key string, value bool) zap.Field {
	return zap.Bool(key, value)
}

func Float64(key string, value float64) zap.Field {
	return zap.Float64(key, value)
}

func Duration(key string, value time.Duration) zap.Field {
	return zap.Duration(key, value)
}
