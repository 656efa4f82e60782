package main

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// newLogger picks the development encoder for local runs and JSON
// everywhere else. DEV_MODE forces debug level.
func newLogger(cfg Config) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if cfg.isLocal() {
		zc = zap.NewDevelopmentConfig()
	}
	if cfg.DevMode {
		zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger.With(zap.String("app_env", cfg.AppEnv)), nil
}
