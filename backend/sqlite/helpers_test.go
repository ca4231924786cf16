package sqlite_test

import (
	"context"
	"crypto/rand"
	"fmt"
	"math"
	"math/big"
	"testing"

	"github.com/boldorider4/kvfront"
	"github.com/boldorider4/kvfront/backend/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getRandomString(t *testing.T) string {
	t.Helper()
	n, err := rand.Int(rand.Reader, big.NewInt(math.MaxInt64))
	assert.NoError(t, err, "random string")
	return fmt.Sprintf("test%x", n.Int64())
}

// setupTestStore creates a store with a unique table name for test isolation
func setupTestStore(t *testing.T) kvfront.Backend {
	t.Helper()

	ctx := context.Background()
	tables := kvfront.Tables{Entries: "entries_" + getRandomString(t)}

	db, err := sqlite.Connect(ctx, ":memory:", tables)
	require.NoError(t, err, "failed to connect")
	t.Cleanup(func() { _ = db.Close() })

	err = db.Migrate(ctx)
	require.NoError(t, err, "failed to migrate")

	return db.Store()
}
