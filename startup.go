package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/TheRealTwizzy/raiderdle/internal/storage"
)

// openBackend connects the configured state backend and ensures its schema.
func openBackend(ctx context.Context, cfg StateConfig, log *zap.Logger) (storage.Backend, error) {
	switch cfg.Backend {
	case BackendPostgres:
		pg, err := storage.OpenPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		log.Info("connected to postgres")
		return pg, nil
	case BackendSQLite:
		db, err := storage.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		log.Info("opened sqlite", zap.String("path", cfg.SQLitePath))
		return db, nil
	case BackendFile:
		fs, err := storage.NewFileStore(cfg.Dir)
		if err != nil {
			return nil, err
		}
		log.Info("using file state", zap.String("dir", cfg.Dir))
		return fs, nil
	default:
		return nil, fmt.Errorf("unsupported state backend %q", cfg.Backend)
	}
}
