// Package logging builds the application's zap logger from configuration.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/km-arc/go-inject/framework/config"
)

// New returns a console logger for local or debug runs and a JSON logger
// otherwise. The level comes from cfg.Log.Level.
func New(cfg *config.Config, opts ...zap.Option) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("logging: %w", err)
	}

	zc := Config(cfg)
	zc.Level = zap.NewAtomicLevelAt(level)

	logger, err := zc.Build(opts...)
	if err != nil {
		return nil, fmt.Errorf("logging: build: %w", err)
	}
	return logger.Named(cfg.App.Name), nil
}

// Config returns the zap configuration New starts from, before the level is applied.
func Config(cfg *config.Config) zap.Config {
	if !cfg.IsLocal() && !cfg.App.Debug {
		return zap.NewProductionConfig()
	}

	zc := zap.NewDevelopmentConfig()
	zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zc.EncoderConfig.EncodeDuration = zapcore.StringDurationEncoder
	return zc
}
