package utils

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// DefaultLogLevel is used when no level is requested.
const DefaultLogLevel = "info"

const errorUnknownLogLevel = "unknown log level %q: %w"

// NewApplicationLogger constructs a zap logger configured for human-readable console output on stderr.
func NewApplicationLogger(logLevel string) (*zap.Logger, error) {
	if strings.TrimSpace(logLevel) == "" {
		logLevel = DefaultLogLevel
	}
	atomicLevel, levelError := zap.ParseAtomicLevel(strings.ToLower(logLevel))
	if levelError != nil {
		return nil, fmt.Errorf(errorUnknownLogLevel, logLevel, levelError)
	}

	config := zap.NewProductionConfig()
	config.Level = atomicLevel
	config.Encoding = "console"
	config.DisableCaller = true
	config.DisableStacktrace = true
	config.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	config.EncoderConfig.TimeKey = ""
	config.EncoderConfig.NameKey = ""
	config.EncoderConfig.CallerKey = ""
	config.EncoderConfig.MessageKey = "message"
	config.EncoderConfig.StacktraceKey = ""
	return config.Build()
}
