package backend

import (
	"context"
	"fmt"

	"github.com/boldorider4/kvfront"
	"github.com/boldorider4/kvfront/backend/bolt"
	"github.com/boldorider4/kvfront/backend/filesystem"
	"github.com/boldorider4/kvfront/backend/memory"
	"github.com/boldorider4/kvfront/backend/postgres"
	"github.com/boldorider4/kvfront/backend/sqlite"
)

// Config holds the configuration for connecting to a KV backend.
type Config struct {
	// Type specifies the backend: "sqlite", "postgres", "bolt", "memory" or "filesystem"
	Type string `mapstructure:"type" validate:"required,oneof=sqlite postgres bolt memory filesystem"`
	// DSN is the connection string (postgres) or file/directory path (sqlite, bolt, filesystem)
	DSN string `mapstructure:"dsn"`
	// Tables names the table, bucket or directory holding entries
	Tables kvfront.Tables `mapstructure:"tables"`
	// SeedFile is an optional JSON file of entries written on startup
	SeedFile string `mapstructure:"seed_file"`
	// AutoMigrate creates the entries table on startup
	AutoMigrate bool `mapstructure:"auto_migrate"`
}

// Database is a connected backend that owns its storage namespace.
type Database interface {
	Ping(ctx context.Context) error
	Migrate(ctx context.Context) error
	Validate(ctx context.Context) error
	Store() kvfront.Backend
	Close() error
}

// Connect opens the configured backend. It does not migrate; callers run
// Migrate (or Validate) before using the store.
func Connect(ctx context.Context, cfg Config) (Database, error) {
	if err := cfg.Tables.Validate(); err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	switch cfg.Type {
	case "sqlite":
		db, err := sqlite.Connect(ctx, cfg.DSN, cfg.Tables)
		if err != nil {
			return nil, err
		}
		return db, nil
	case "postgres":
		db, err := postgres.Connect(ctx, cfg.DSN, cfg.Tables)
		if err != nil {
			return nil, err
		}
		return db, nil
	case "bolt":
		db, err := bolt.Connect(ctx, cfg.DSN, cfg.Tables)
		if err != nil {
			return nil, err
		}
		return db, nil
	case "memory":
		db, err := memory.Connect(ctx, cfg.Tables)
		if err != nil {
			return nil, err
		}
		return db, nil
	case "filesystem":
		db, err := filesystem.Connect(ctx, cfg.DSN, cfg.Tables)
		if err != nil {
			return nil, err
		}
		return db, nil
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", cfg.Type)
	}
}
