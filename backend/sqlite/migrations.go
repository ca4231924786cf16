package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/boldorider4/kvfront"
)

// quoteIdentifier safely quotes a SQLite identifier
func quoteIdentifier(name string) string {
	return `"` + name + `"`
}

func migrate(ctx context.Context, db *sql.DB, tables kvfront.Tables) error {
	if err := createEntriesTable(ctx, db, tables.Entries); err != nil {
		return fmt.Errorf("migrate up %s: %w", tables.Entries, err)
	}
	return nil
}

func createEntriesTable(ctx context.Context, db *sql.DB, tableName string) error {
	quotedTable := quoteIdentifier(tableName)

	createTableSQL := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id TEXT NOT NULL PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			value TEXT NOT NULL,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)
	`, quotedTable)

	if _, err := db.ExecContext(ctx, createTableSQL); err != nil {
		return fmt.Errorf("create table: %w", err)
	}

	return nil
}
