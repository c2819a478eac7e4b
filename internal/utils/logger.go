package utils

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	consoleEncoding     = "console"
	loggerMessageKey    = "message"
	errorLogLevelFormat = "unknown log level %q"
	DefaultLogLevel     = "info"
)

// NewApplicationLogger constructs a zap logger configured for human-readable console output
// on standard error at the given level ("debug", "info", "warn", "error").
func NewApplicationLogger(levelName string) (*zap.Logger, error) {
	if strings.TrimSpace(levelName) == EmptyString {
		levelName = DefaultLogLevel
	}
	level, levelError := zapcore.ParseLevel(strings.ToLower(strings.TrimSpace(levelName)))
	if levelError != nil {
		return nil, fmt.Errorf(errorLogLevelFormat, levelName)
	}

	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(level)
	config.Encoding = consoleEncoding
	config.DisableCaller = true
	config.DisableStacktrace = true
	config.Sampling = nil
	config.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	config.EncoderConfig.TimeKey = EmptyString
	config.EncoderConfig.NameKey = EmptyString
	config.EncoderConfig.CallerKey = EmptyString
	config.EncoderConfig.MessageKey = loggerMessageKey
	config.EncoderConfig.StacktraceKey = EmptyString
	return config.Build()
}
