// Package postgres implements kvfront.Backend on a PostgreSQL table.
package postgres

import (
	"context"
	"fmt"

	"github.com/boldorider4/kvfront"
	"github.com/jackc/pgx/v5/pgxpool"
)

type database struct {
	pool   *pgxpool.Pool
	tables kvfront.Tables
}

// Connect establishes a connection to PostgreSQL.
// Tables should be validated before calling Connect.
func Connect(ctx context.Context, dsn string, tables kvfront.Tables) (*database, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	return &database{
		pool:   pool,
		tables: tables,
	}, nil
}

// Ping verifies the database connection is alive.
func (d *database) Ping(ctx context.Context) error {
	return d.pool.Ping(ctx)
}

// Migrate runs database migrations to create required tables.
func (d *database) Migrate(ctx context.Context) error {
	if err := createEntriesTable(ctx, d.pool, d.tables.Entries); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// Validate checks that the database schema matches expected structure.
func (d *database) Validate(ctx context.Context) error {
	if err := validateTableSchema(ctx, d.pool, d.tables.Entries, entriesTableSchema); err != nil {
		return fmt.Errorf("validate schema %s: %w", d.tables.Entries, err)
	}
	return nil
}

// Store returns the entry store backed by the entries table.
func (d *database) Store() kvfront.Backend {
	return &store{pool: d.pool, tableName: d.tables.Entries}
}

// Close closes the database connection pool.
func (d *database) Close() error {
	d.pool.Close()
	return nil
}
