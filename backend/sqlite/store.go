package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/boldorider4/kvfront"
	"github.com/google/uuid"
)

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type store struct {
	db        *sql.DB
	tableName string
}

func (s *store) Put(ctx context.Context, key, value string) error {
	if err := s.upsert(ctx, s.db, key, value); err != nil {
		return fmt.Errorf("put: %w", err)
	}
	return nil
}

func (s *store) Get(ctx context.Context, key string) (string, error) {
	value, err := s.get(ctx, s.db, key)
	if err != nil {
		return "", fmt.Errorf("get: %w", err)
	}
	return value, nil
}

// List returns entry names ordered by SQLite's BINARY collation, which
// compares UTF-8 bytes and therefore matches Go string ordering.
func (s *store) List(ctx context.Context) ([]string, error) {
	query := fmt.Sprintf(`SELECT name FROM %s ORDER BY name`, quoteIdentifier(s.tableName)) //nolint:gosec // G201: table name is validated

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}
	defer func() { _ = rows.Close() }()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("list: scan: %w", err)
		}
		names = append(names, name)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list: rows error: %w", err)
	}

	return names, nil
}

// Update runs the read-modify-write of key inside a single transaction.
func (s *store) Update(ctx context.Context, key string, fn kvfront.UpdateFunc) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("update: begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	current, err := s.get(ctx, tx, key)
	found := true
	if errors.Is(err, kvfront.ErrNotFound) {
		found = false
	} else if err != nil {
		return fmt.Errorf("update: %w", err)
	}

	next, write, err := fn(current, found)
	if err != nil {
		return fmt.Errorf("update: %w", err)
	}

	if write {
		if err = s.upsert(ctx, tx, key, next); err != nil {
			return fmt.Errorf("update: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("update: commit: %w", err)
	}

	return nil
}

func (s *store) get(ctx context.Context, q queryRower, key string) (string, error) {
	query := fmt.Sprintf(`SELECT value FROM %s WHERE name = ?`, quoteIdentifier(s.tableName)) //nolint:gosec // G201: table name is validated

	var value string
	err := q.QueryRowContext(ctx, query, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", kvfront.ErrNotFound
		}
		return "", err
	}

	return value, nil
}

func (s *store) upsert(ctx context.Context, e execer, key, value string) error {
	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`INSERT INTO %s (id, name, value, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (name) DO UPDATE
		SET value = excluded.value,
			updated_at = excluded.updated_at`, quoteIdentifier(s.tableName))

	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := e.ExecContext(ctx, query, uuid.NewString(), key, value, now, now)
	return err
}
