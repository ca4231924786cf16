package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/boldorider4/kvfront"

	_ "modernc.org/sqlite" // SQLite driver
)

// database provides SQLite database operations.
type database struct {
	db     *sql.DB
	tables kvfront.Tables
}

// Connect opens a SQLite database.
// Tables should be validated before calling Connect.
//
// The pool is limited to one connection: ":memory:" databases are
// per-connection, and a single writer keeps Update serialised.
func Connect(ctx context.Context, dsn string, tables kvfront.Tables) (*database, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect sqlite: %w", err)
	}

	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connect sqlite: %w", err)
	}

	return &database{
		db:     db,
		tables: tables,
	}, nil
}

// Ping verifies the database connection is alive.
func (d *database) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

// Migrate runs database migrations to create required tables.
func (d *database) Migrate(ctx context.Context) error {
	if err := migrate(ctx, d.db, d.tables); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// Validate checks that the database schema matches expected structure.
func (d *database) Validate(ctx context.Context) error {
	if err := validateSchema(ctx, d.db, d.tables); err != nil {
		return fmt.Errorf("validate: %w", err)
	}
	return nil
}

// Store returns the entry store backed by the entries table.
func (d *database) Store() kvfront.Backend {
	return &store{db: d.db, tableName: d.tables.Entries}
}

// Close closes the database connection.
func (d *database) Close() error {
	return d.db.Close()
}
