package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/boldorider4/kvfront"
	"github.com/boldorider4/kvfront/backend"
	"github.com/boldorider4/kvfront/config"
)

// app bundles an open backend with the two registries served over it.
type app struct {
	db    backend.Database
	keys  *kvfront.Registry
	files *kvfront.Registry
}

// openApp connects to the configured backend, migrates it when
// auto_migrate is set, checks the schema, applies the seed file and builds
// the keys and files registries.
func openApp(ctx context.Context, cfg *config.Config) (*app, error) {
	db, err := backend.Connect(ctx, cfg.Backend)
	if err != nil {
		return nil, fmt.Errorf("connect backend: %w", err)
	}

	a, err := newApp(ctx, cfg, db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return a, nil
}

func newApp(ctx context.Context, cfg *config.Config, db backend.Database) (*app, error) {
	if err := db.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping backend: %w", err)
	}

	if cfg.Backend.AutoMigrate {
		if err := db.Migrate(ctx); err != nil {
			return nil, fmt.Errorf("migrate backend: %w", err)
		}
		slog.Debug("backend migration complete", "type", cfg.Backend.Type)
	}

	if err := db.Validate(ctx); err != nil {
		return nil, fmt.Errorf("validate backend schema: %w", err)
	}

	store := db.Store()

	if cfg.Backend.SeedFile != "" {
		entries, err := backend.LoadSeedFile(cfg.Backend.SeedFile)
		if err != nil {
			return nil, err
		}
		if err := backend.Seed(ctx, store, entries); err != nil {
			return nil, err
		}
		slog.Info("seeded backend", "file", cfg.Backend.SeedFile, "entries", len(entries))
	}

	keys, err := kvfront.NewRegistry(store, cfg.Keys())
	if err != nil {
		return nil, fmt.Errorf("create keys registry: %w", err)
	}

	files, err := kvfront.NewRegistry(store, cfg.Files())
	if err != nil {
		return nil, fmt.Errorf("create files registry: %w", err)
	}

	return &app{db: db, keys: keys, files: files}, nil
}

// registry returns the registry serving collection ("keys" or "files").
func (a *app) registry(collection string) (*kvfront.Registry, error) {
	switch collection {
	case "keys":
		return a.keys, nil
	case "files":
		return a.files, nil
	default:
		return nil, fmt.Errorf("unknown collection: %s (valid collections: keys, files)", collection)
	}
}

// indexKeys returns the index entry names of both registries.
func (a *app) indexKeys() []string {
	return []string{a.keys.IndexKey(), a.files.IndexKey()}
}

func (a *app) Close() error {
	return a.db.Close()
}
