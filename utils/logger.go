package utils

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds the application logger. Production emits JSON at info level,
// every other environment gets a colored console encoder at debug level.
func NewLogger(env string) (*zap.Logger, error) {
	if env == "production" {
		cfg := zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "time"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		return cfg.Build()
	}

	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	return cfg.Build()
}

// MustLogger is NewLogger for command line entry points that cannot continue without logging
func MustLogger(env string) *zap.Logger {
	logger, err := NewLogger(env)
	if err != nil {
		panic(err)
	}
	return logger
}
