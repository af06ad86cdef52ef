// Package logging builds the service's zap loggers and the request
// middleware that writes through them.
package logging

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// BootstrapLogger is used until config is loaded. It writes info and above
// to stderr in console form.
func BootstrapLogger() *zap.Logger {
	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	cfg.DisableStacktrace = true

	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// ParseLevel maps a config log_level onto a zap level, case-insensitively.
func ParseLevel(level string) (zapcore.Level, error) {
	return zapcore.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
}

// BuildLogger returns the JSON production logger when env is "prod" and the
// console development logger otherwise. Every entry carries the app name.
// An unknown level logs at info and says so on stderr.
func BuildLogger(app, level, env string) (*zap.Logger, error) {
	var cfg zap.Config
	if env == "prod" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}

	lvl, err := ParseLevel(level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "WARNING: invalid log level %q, using info\n", level)
		lvl = zapcore.InfoLevel
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	logger, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	if app != "" {
		logger = logger.With(zap.String("app", app))
	}
	return logger, nil
}

// MustBuildLogger is BuildLogger for main: it exits on failure.
func MustBuildLogger(app, level, env string) *zap.Logger {
	logger, err := BuildLogger(app, level, env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	return logger
}
