// Package logging builds the zap logger shared by the server and CLI.
package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a production logger at level. "debug" switches to the
// development encoder.
func New(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	cfg := zap.NewProductionConfig()
	if lvl == zapcore.DebugLevel {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return logger, nil
}

// Must is New for startup paths; it falls back to a production logger at
// info level when level is invalid.
func Must(level string) *zap.Logger {
	logger, err := New(level)
	if err == nil {
		return logger
	}
	logger, buildErr := zap.NewProduction()
	if buildErr != nil {
		panic("failed to initialize logger: " + buildErr.Error())
	}
	logger.Warn("falling back to info logging", zap.Error(err))
	return logger
}
