package postgres

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/boldorider4/kvfront"
	"github.com/jackc/pgx/v5/pgxpool"
)

type columnInfo struct {
	dataType   string
	isNullable bool
}

var entriesTableSchema = map[string]columnInfo{
	"id":         {"uuid", false},
	"name":       {"text", false},
	"value":      {"text", false},
	"created_at": {"timestamp with time zone", false},
	"updated_at": {"timestamp with time zone", false},
}

func validateTableSchema(ctx context.Context, pool *pgxpool.Pool, tableName string, expectedSchema map[string]columnInfo) error {
	if !kvfront.IsValidTableName(tableName) {
		return fmt.Errorf("validate table schema: invalid table name: %s", tableName)
	}

	exists, err := tableExists(ctx, pool, tableName)
	if err != nil {
		return fmt.Errorf("validate table schema: %w", err)
	}

	if !exists {
		return fmt.Errorf("validate table schema: table %s does not exist", tableName)
	}

	query := `
		SELECT column_name, data_type, is_nullable
		FROM information_schema.columns
		WHERE table_schema = 'public' AND table_name = $1
		ORDER BY ordinal_position
	`

	rows, err := pool.Query(ctx, query, tableName)
	if err != nil {
		return fmt.Errorf("validate table schema: query columns: %w", err)
	}
	defer rows.Close()

	actual := make(map[string]columnInfo)
	for rows.Next() {
		var name, dataType, nullable string
		if err := rows.Scan(&name, &dataType, &nullable); err != nil {
			return fmt.Errorf("validate table schema: scan column: %w", err)
		}
		actual[name] = columnInfo{
			dataType:   strings.ToLower(dataType),
			isNullable: nullable == "YES",
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("validate table schema: rows error: %w", err)
	}

	var missing, mismatched []string

	for colName, want := range expectedSchema {
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

func tableExists(ctx context.Context, pool *pgxpool.Pool, tableName string) (bool, error) {
	var exists bool
	query := `
		SELECT EXISTS (
			SELECT 1
			FROM information_schema.tables
			WHERE table_schema = 'public'
			AND table_name = $1
		)
	`
	err := pool.QueryRow(ctx, query, tableName).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check table exists: %w", err)
	}
	return exists, nil
}
