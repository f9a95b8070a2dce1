package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Nop until InitLogger is called, so library code and tests can log freely.
var zapLog = zap.NewNop()

func InitLogger(level zapcore.Level) error {

	config := zap.NewDevelopmentConfig()
	config.Level = zap.NewAtomicLevelAt(level) // Set to desired level
	config.OutputPaths = []string{"stderr"}    // stdout may carry the report

	encoderConfig := zap.NewDevelopmentEncoderConfig()
	encoderConfig.TimeKey = "time"
	encoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("Jan _2 15:04:05.000000000")
	encoderConfig.StacktraceKey = "" // to hide stacktrace info
	config.EncoderConfig = encoderConfig

	built, err := config.Build(zap.AddCallerSkip(1))
	if err != nil {
		return err
	}
	zapLog = built
	return nil
}

// ParseLevel turns "debug", "info", "warn"... into a zap level.
func ParseLevel(text string) (zapcore.Level, error) {
	return zapcore.ParseLevel(text)
}

// L exposes the underlying logger for packages that need a *zap.Logger (middleware).
func L() *zap.Logger {
	return zapLog.WithOptions(zap.AddCallerSkip(-1))
}

func Info(message string, fields ...zap.Field) {
	zapLog.Info(message, fields...)
}

func Warn(message string, fields ...zap.Field) {
	zapLog.Warn(message, fields...)
}

func Debug(message string, fields ...zap.Field) {
	zapLog.Debug(message, fields...)
}

func Error(message string, fields ...zap.Field) {
	zapLog.Error(message, fields...)
}

func Fatal(message string, fields ...zap.Field) {
	zapLog.Fatal(message, fields...)
}

// Replace swaps the process logger for l and returns a func that puts the
// previous one back. Used by tests to capture log entries.
func Replace(l *zap.Logger) (restore func()) {
	prev := zapLog
	zapLog = l.WithOptions(zap.AddCallerSkip(1))
	return func() { zapLog = prev }
}

// Sync flushes any buffered log entries
func Sync() error {
	return zapLog.Sync()
}
