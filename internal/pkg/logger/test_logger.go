package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

type zapTestLogger struct {
	l *zap.Logger
}

// NewTestLogger returns an ILogger wired into the test runner's output.
func NewTestLogger(t testing.TB) ILogger {
	return &zapTestLogger{l: zaptest.NewLogger(t)}
}

// NewNoOpLogger creates an ILogger that doesn't output anything.
func NewNoOpLogger() ILogger {
	return &zapTestLogger{l: zap.NewNop()}
}

func (l *zapTestLogger) Debug(module, message string, details map[string]interface{}) {
	l.l.Debug(message, zap.String("module", module), zap.Any("details", details))
}

func (l *zapTestLogger) Info(module, message string, details map[string]interface{}) {
	l.l.Info(message, zap.String("module", module), zap.Any("details", details))
}

func (l *zapTestLogger) Warn(module, message string, details map[string]interface{}) {
	l.l.Warn(message, zap.String("module", module), zap.Any("details", details))
}

func (l *zapTestLogger) Error(module, message string, details map[string]interface{}) {
	l.l.Error(message, zap.String("module", module), zap.Any("details", details))
}

func (l *zapTestLogger) Sync() error {
	return l.l.Sync()
}
