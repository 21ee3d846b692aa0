package main

import (
	"errors"
	"fmt"

	corecfg "github.com/groan-lab/groan/internal/core/config"
	"github.com/groan-lab/groan/internal/core/storage"
	"github.com/groan-lab/groan/internal/core/storage/filesystem"
	"github.com/groan-lab/groan/internal/core/storage/postgres"
	"github.com/groan-lab/groan/internal/migrations"
	"github.com/groan-lab/groan/internal/server"
)

// stores bundles the configured revision and series stores.
type stores struct {
	revisions storage.RevisionStore
	series    storage.SeriesStore
	checks    map[string]server.HealthChecker
	close     func() error
}

func openStores(cfg corecfg.StorageConfig) (*stores, error) {
	switch cfg.Type {
	case "filesystem":
		revs := filesystem.NewRevisionRepository(cfg.RevisionsDir)
		ser := filesystem.NewSeriesRepository(cfg.SeriesDir)
		return &stores{
			revisions: revs,
			series:    ser,
			checks:    map[string]server.HealthChecker{"revisions": revs, "series": ser},
			close:     func() error { return nil },
		}, nil

	case "postgres":
		db, err := postgres.Open(cfg.DSN, cfg.MaxOpenConns, cfg.MaxIdleConns)
		if err != nil {
			return nil, err
		}
		if err := migrations.RunMigrations(db, cfg.AutoMigrate); err != nil {
			return nil, errors.Join(fmt.Errorf("failed to run database migrations: %w", err), db.Close())
		}
		adapter, err := postgres.NewAdapter(db)
		if err != nil {
			return nil, errors.Join(err, db.Close())
		}
		return &stores{
			revisions: adapter,
			series:    adapter,
			checks:    map[string]server.HealthChecker{"database": adapter},
			close:     adapter.Close,
		}, nil
	}
	return nil, fmt.Errorf("unsupported storage.type %q", cfg.Type)
}
