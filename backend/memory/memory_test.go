package memory_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/boldorider4/kvfront"
	"github.com/boldorider4/kvfront/backend/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_PutGet(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := memory.NewStore()

	require.NoError(t, s.Put(ctx, "a", "1"))
	require.NoError(t, s.Put(ctx, "a", "2"))

	value, err := s.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "2", value)
	assert.Equal(t, 1, s.Len())

	_, err = s.Get(ctx, "missing")
	assert.ErrorIs(t, err, kvfront.ErrNotFound)
}

func TestStore_ListSorted(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := memory.NewStore()

	names, err := s.List(ctx)
	require.NoError(t, err)
	assert.NotNil(t, names)
	assert.Empty(t, names)

	for _, name := range []string{"zeta", "alpha", "Beta", "alpha/1"} {
		require.NoError(t, s.Put(ctx, name, name))
	}

	names, err = s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Beta", "alpha", "alpha/1", "zeta"}, names)
}

func TestStore_Seed(t *testing.T) {
	t.Parallel()
	s := memory.NewStore()

	s.Seed([]kvfront.Entry{
		{Name: "a", Value: "1"},
		{Name: "b", Value: "2"},
	})

	value, err := s.Get(context.Background(), "b")
	require.NoError(t, err)
	assert.Equal(t, "2", value)
	assert.Equal(t, 2, s.Len())
}

func TestStore_Update(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := memory.NewStore()

	err := s.Update(ctx, "k", func(current string, found bool) (string, bool, error) {
		assert.False(t, found)
		return "v", true, nil
	})
	require.NoError(t, err)

	boom := errors.New("boom")
	err = s.Update(ctx, "k", func(current string, found bool) (string, bool, error) {
		assert.True(t, found)
		assert.Equal(t, "v", current)
		return "changed", true, boom
	})
	assert.ErrorIs(t, err, boom)

	value, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", value)
}

func TestStore_Latency(t *testing.T) {
	t.Parallel()
	s := memory.NewStore(memory.WithLatency(50 * time.Millisecond))

	start := time.Now()
	require.NoError(t, s.Put(context.Background(), "a", "1"))
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()

	_, err := s.Get(ctx, "a")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestStore_ConcurrentAccess(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := memory.NewStore()

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = s.Put(ctx, string(rune('a'+i%26)), "x")
		}()
		go func() {
			defer wg.Done()
			_, _ = s.List(ctx)
		}()
	}
	wg.Wait()

	assert.Equal(t, 26, s.Len())
}

func TestDatabase(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	db, err := memory.Connect(ctx, kvfront.Tables{Entries: "ignored"})
	require.NoError(t, err)

	assert.NoError(t, db.Ping(ctx))
	assert.NoError(t, db.Migrate(ctx))
	assert.NoError(t, db.Validate(ctx))

	store := db.Store()
	require.NoError(t, store.Put(ctx, "a", "1"))
	assert.Same(t, store, db.Store(), "store should be shared across calls")

	_, ok := store.(kvfront.AtomicUpdater)
	assert.True(t, ok)
	assert.NoError(t, db.Close())
}
