package postgres_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/boldorider4/kvfront"
	"github.com/boldorider4/kvfront/backend/postgres"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnect(t *testing.T) {
	pool := getSharedTestDatabase(t)
	ctx := context.Background()

	db, err := postgres.Connect(ctx, getDSN(pool), kvfront.Tables{Entries: "kv_entries"})
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	assert.NoError(t, db.Ping(ctx), "ping should succeed after connect")
}

func TestDatabase_Migrate(t *testing.T) {
	pool := getSharedTestDatabase(t)
	ctx := context.Background()

	t.Run("idempotent - can run multiple times", func(t *testing.T) {
		tableName := "migrate_test_" + getRandomString(t)
		db, err := postgres.Connect(ctx, getDSN(pool), kvfront.Tables{Entries: tableName})
		require.NoError(t, err)
		defer func() {
			_ = db.Close()
			_ = dropTable(ctx, pool, tableName)
		}()

		require.NoError(t, db.Migrate(ctx))
		require.NoError(t, db.Migrate(ctx), "second migrate should succeed")
		assert.NoError(t, db.Validate(ctx))
	})
}

func TestDatabase_Validate(t *testing.T) {
	pool := getSharedTestDatabase(t)
	ctx := context.Background()

	t.Run("error - table does not exist", func(t *testing.T) {
		db, err := postgres.Connect(ctx, getDSN(pool), kvfront.Tables{Entries: "missing_" + getRandomString(t)})
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		err = db.Validate(ctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "does not exist")
	})

	t.Run("error - wrong column type", func(t *testing.T) {
		tableName := "wrong_type_" + getRandomString(t)
		_, err := pool.Exec(ctx, fmt.Sprintf(`
			CREATE TABLE %s (
				id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
				name TEXT NOT NULL UNIQUE,
				value BYTEA NOT NULL,
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			)`, pgx.Identifier{tableName}.Sanitize()))
		require.NoError(t, err)
		defer func() { _ = dropTable(ctx, pool, tableName) }()

		db, err := postgres.Connect(ctx, getDSN(pool), kvfront.Tables{Entries: tableName})
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		err = db.Validate(ctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "value: expected text, got bytea")
	})
}
