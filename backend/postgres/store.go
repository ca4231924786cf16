package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/boldorider4/kvfront"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type store struct {
	pool      *pgxpool.Pool
	tableName string
}

func (s *store) Put(ctx context.Context, key, value string) error {
	if err := s.upsert(ctx, s.pool, key, value); err != nil {
		return fmt.Errorf("put: %w", err)
	}
	return nil
}

func (s *store) Get(ctx context.Context, key string) (string, error) {
	value, err := s.get(ctx, s.pool, key, false)
	if err != nil {
		return "", fmt.Errorf("get: %w", err)
	}
	return value, nil
}

func (s *store) List(ctx context.Context) ([]string, error) {
	query := fmt.Sprintf(`SELECT name FROM %s ORDER BY name`, pgx.Identifier{s.tableName}.Sanitize())

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}

	names, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}

	if names == nil {
		names = []string{}
	}

	return names, nil
}

// Update serialises writers of key with a transaction-scoped advisory lock,
// so the read sees every previously committed update even when the row
// does not exist yet.
func (s *store) Update(ctx context.Context, key string, fn kvfront.UpdateFunc) error {
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		lockKey := s.tableName + "/" + key
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, lockKey); err != nil {
			return fmt.Errorf("lock: %w", err)
		}

		current, err := s.get(ctx, tx, key, true)
		found := true
		if errors.Is(err, kvfront.ErrNotFound) {
			found = false
		} else if err != nil {
			return err
		}

		next, write, err := fn(current, found)
		if err != nil || !write {
			return err
		}

		return s.upsert(ctx, tx, key, next)
	})
	if err != nil {
		return fmt.Errorf("update: %w", err)
	}
	return nil
}

func (s *store) get(ctx context.Context, q querier, key string, forUpdate bool) (string, error) {
	query := fmt.Sprintf(`SELECT value FROM %s WHERE name = $1`, pgx.Identifier{s.tableName}.Sanitize())
	if forUpdate {
		query += ` FOR UPDATE`
	}

	var value string
	err := q.QueryRow(ctx, query, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", kvfront.ErrNotFound
		}
		return "", err
	}

	return value, nil
}

func (s *store) upsert(ctx context.Context, q querier, key, value string) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (name, value)
		VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE
		SET value = EXCLUDED.value,
			updated_at = NOW()
	`, pgx.Identifier{s.tableName}.Sanitize())

	_, err := q.Exec(ctx, query, key, value)
	return err
}
