package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/boldorider4/kvfront"
)

type columnInfo struct {
	dataType   string
	isNullable bool
}

var entriesTableSchema = map[string]columnInfo{
	"id":         {"text", false},
	"name":       {"text", false},
	"value":      {"text", false},
	"created_at": {"text", false},
	"updated_at": {"text", false},
}

func validateSchema(ctx context.Context, db *sql.DB, tables kvfront.Tables) error {
	if err := validateTableSchema(ctx, db, tables.Entries, entriesTableSchema); err != nil {
		return fmt.Errorf("validate schema %s: %w", tables.Entries, err)
	}
	return nil
}

func validateTableSchema(ctx context.Context, db *sql.DB, tableName string, expectedSchema map[string]columnInfo) error {
	if !kvfront.IsValidTableName(tableName) {
		return fmt.Errorf("validate table schema: invalid table name: %s", tableName)
	}

	exists, err := tableExists(ctx, db, tableName)
	if err != nil {
		return fmt.Errorf("validate table schema: %w", err)
	}

	if !exists {
		return fmt.Errorf("validate table schema: table %s does not exist", tableName)
	}

	query := fmt.Sprintf(`PRAGMA table_info(%s)`, quoteIdentifier(tableName))

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return fmt.Errorf("validate table schema: query columns: %w", err)
	}
	defer func() { _ = rows.Close() }()

	actual := make(map[string]columnInfo)
	for rows.Next() {
		var cid, notNull, pk int
		var name, dataType string
		var dfltValue sql.NullString

		if err := rows.Scan(&cid, &name, &dataType, &notNull, &dfltValue, &pk); err != nil {
			return fmt.Errorf("validate table schema: scan column: %w", err)
		}
		actual[name] = columnInfo{
			dataType:   strings.ToLower(dataType),
			isNullable: notNull == 0,
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("validate table schema: rows error: %w", err)
	}

	return compareColumns(tableName, expectedSchema, actual)
}

func compareColumns(tableName string, expected, actual map[string]columnInfo) error {
	var missing, mismatched []string

	for colName, want := range expected {
		got, ok := actual[colName]
		if !ok {
			missing = append(missing, colName)
			continue
		}

		if got.dataType != want.dataType {
			mismatched = append(mismatched,
				fmt.Sprintf("%s: expected %s, got %s", colName, want.dataType, got.dataType))
		}

		if got.isNullable != want.isNullable {
			mismatched = append(mismatched,
				fmt.Sprintf("%s: expected nullable=%v, got nullable=%v", colName, want.isNullable, got.isNullable))
		}
	}

	if len(missing) == 0 && len(mismatched) == 0 {
		return nil
	}

	slices.Sort(missing)
	slices.Sort(mismatched)

	var msg strings.Builder
	fmt.Fprintf(&msg, "table %s schema validation failed:\n", tableName)

	if len(missing) > 0 {
		fmt.Fprintf(&msg, "  missing columns: %s\n", strings.Join(missing, ", "))
	}

	if len(mismatched) > 0 {
		fmt.Fprintf(&msg, "  mismatched columns:\n")
		for _, m := range mismatched {
			fmt.Fprintf(&msg, "    - %s\n", m)
		}
	}

	return errors.New(msg.String())
}

func tableExists(ctx context.Context, db *sql.DB, tableName string) (bool, error) {
	var name string
	query := `SELECT name FROM sqlite_master WHERE type='table' AND name=?`
	err := db.QueryRowContext(ctx, query, tableName).Scan(&name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check table exists: %w", err)
	}
	return true, nil
}
