// Package backend builds the configured persistence backend from the
// application config.
package backend

import (
	"context"
	"fmt"

	"fiscus/internal/config"
	"fiscus/internal/log"
	"fiscus/internal/persist"
	"fiscus/internal/persist/memory"
	"fiscus/internal/persist/postgres"
	"fiscus/internal/persist/sqlite"
)

// Result bundles a backend with its cleanup function.
type Result struct {
	Backend persist.Backend
	Cleanup func() error
}

// New creates the backend named by cfg.DataBackend.
func New(ctx context.Context, cfg *config.Config, logger *log.Logger) (*Result, error) {
	if logger == nil {
		logger = log.New(log.DefaultConfig()).WithComponent(log.ComponentPersist)
	}

	switch cfg.DataBackend {
	case "memory":
		logger.Info("initialized memory backend")
		return &Result{
			Backend: memory.New(),
			Cleanup: func() error { return nil },
		}, nil

	case "sqlite":
		repo, err := sqlite.New(cfg.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("initialize sqlite backend: %w", err)
		}
		logger.Info("initialized sqlite backend", "db_path", cfg.SQLiteDBPath)
		return &Result{Backend: repo, Cleanup: repo.Close}, nil

	case "postgres":
		repo, err := postgres.New(ctx, cfg.PostgresURL)
		if err != nil {
			return nil, fmt.Errorf("initialize postgres backend: %w", err)
		}
		logger.Info("initialized postgres backend")
		return &Result{
			Backend: repo,
			Cleanup: func() error { repo.Close(); return nil },
		}, nil

	default:
		return nil, fmt.Errorf("unsupported backend type: %s", cfg.DataBackend)
	}
}
