package kvfront

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
)

// Backend defines the interface for entry persistence.
// Implementations must be safe for concurrent use.
//
// All methods accept a context for cancellation and timeout control.
type Backend interface {
	// Put writes value under key, overwriting any previous value.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeout
	//   - key: The entry name
	//   - value: The opaque payload to store
	//
	// Returns:
	//   - error: Any storage error
	Put(ctx context.Context, key, value string) error

	// Get retrieves the value stored under key.
	//
	// Returns:
	//   - string: The stored value
	//   - error: ErrNotFound if key doesn't exist, or other storage errors
	Get(ctx context.Context, key string) (string, error)

	// List returns every key known to the backend in lexicographic order.
	// This is the native enumeration; it reflects all writes regardless of
	// which path created them.
	//
	// Implementations should return an empty slice (not nil) when the
	// backend is empty.
	List(ctx context.Context) ([]string, error)
}

// UpdateFunc computes the next value of an entry from its current value.
// found is false when the entry does not exist yet. Returning write=false
// leaves the entry untouched.
type UpdateFunc func(current string, found bool) (next string, write bool, err error)

// AtomicUpdater is implemented by backends that can run a read-modify-write
// of a single entry without interleaving with other writers.
type AtomicUpdater interface {
	// Update reads key, passes its value to fn and stores the result, all
	// inside one transaction. An error returned by fn aborts the update and
	// is returned unchanged (wrapped).
	Update(ctx context.Context, key string, fn UpdateFunc) error
}

// RegistryConfig holds configuration options for Registry.
type RegistryConfig struct {
	IndexKey string        // Name of the index entry (e.g. "keys")
	Strategy IndexStrategy // Index update strategy (default: best_effort)
	// Reserved lists names this registry must never write, typically the
	// index keys of other registries sharing the backend.
	Reserved []string
}

// Registry maintains an index document next to the entries it writes.
type Registry struct {
	backend  Backend
	updater  AtomicUpdater
	indexKey string
	reserved []string
	strategy IndexStrategy
}

func NewRegistry(backend Backend, cfg RegistryConfig) (*Registry, error) {
	if backend == nil {
		return nil, errors.New("new registry: backend cannot be nil")
	}

	if !IsValidName(cfg.IndexKey) {
		return nil, fmt.Errorf("new registry: %w: invalid index key %q", ErrInvalidInput, cfg.IndexKey)
	}

	for _, name := range cfg.Reserved {
		if !IsValidName(name) {
			return nil, fmt.Errorf("new registry: %w: invalid reserved name %q", ErrInvalidInput, name)
		}
	}

	strategy := cfg.Strategy
	if strategy == "" {
		strategy = StrategyBestEffort
	}
	if !strategy.IsValid() {
		return nil, fmt.Errorf("new registry: invalid strategy: %s", strategy)
	}

	r := &Registry{
		backend:  backend,
		indexKey: cfg.IndexKey,
		reserved: slices.Clone(cfg.Reserved),
		strategy: strategy,
	}

	if strategy == StrategyAtomic {
		updater, ok := backend.(AtomicUpdater)
		if ok {
			r.updater = updater
		} else {
			slog.Warn("backend does not support atomic updates, falling back to best effort",
				"index", cfg.IndexKey, "backend", fmt.Sprintf("%T", backend))
			r.strategy = StrategyBestEffort
		}
	}

	return r, nil
}

// IndexKey returns the name of the index entry this registry maintains.
func (r *Registry) IndexKey() string {
	return r.indexKey
}

// Strategy returns the effective index strategy.
func (r *Registry) Strategy() IndexStrategy {
	return r.strategy
}

// Put writes an entry and records its name in the index.
//
// The method performs the following steps:
//  1. Validates the name (non-empty, IsValidName, not the index key or a
//     reserved name)
//  2. Writes the entry unconditionally (last write wins)
//  3. Reads the index (absent means empty), appends the name if missing and
//     rewrites it
//
// Steps 2 and 3 are separate backend calls. With StrategyBestEffort a crash
// or a concurrent Put between them can leave the index without a name whose
// entry was written; concurrent Puts of different names can also overwrite
// each other's index update. StrategyAtomic runs step 3 as a single
// transaction but still does not tie it to step 2.
//
// Error types returned:
//   - ErrInvalidInput: Empty, invalid or reserved name
//   - Wrapped backend errors: Issues writing the entry or the index
func (r *Registry) Put(ctx context.Context, name, value string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("put entry: %w", err)
	}

	if err := r.validateName(name); err != nil {
		return fmt.Errorf("put entry: %w", err)
	}

	if err := r.backend.Put(ctx, name, value); err != nil {
		return fmt.Errorf("put entry %s: %w", name, err)
	}

	if err := r.addToIndex(ctx, name); err != nil {
		return fmt.Errorf("put entry %s: index: %w", name, err)
	}

	return nil
}

// Record writes an entry without touching the index. Entries written this
// way are only visible through the native listing. Index keys and reserved
// names are rejected like in Put.
func (r *Registry) Record(ctx context.Context, name, value string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("record entry: %w", err)
	}

	if err := r.validateName(name); err != nil {
		return fmt.Errorf("record entry: %w", err)
	}

	if err := r.backend.Put(ctx, name, value); err != nil {
		return fmt.Errorf("record entry %s: %w", name, err)
	}

	return nil
}

func (r *Registry) Get(ctx context.Context, name string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("get entry: %w", err)
	}

	if name == "" {
		return "", fmt.Errorf("get entry: %w: name cannot be empty", ErrInvalidInput)
	}

	value, err := r.backend.Get(ctx, name)
	if err != nil {
		return "", fmt.Errorf("get entry %s: %w", name, err)
	}

	return value, nil
}

// ListIndexed returns the names recorded in the index, in write order.
// A missing index yields an empty list.
func (r *Registry) ListIndexed(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("list indexed: %w", err)
	}

	raw, err := r.backend.Get(ctx, r.indexKey)
	found := true
	if errors.Is(err, ErrNotFound) {
		found = false
	} else if err != nil {
		return nil, fmt.Errorf("list indexed: %w", err)
	}

	names, err := decodeIndex(raw, found)
	if err != nil {
		return nil, fmt.Errorf("list indexed: %w", err)
	}

	return names, nil
}

// ListNative returns every key the backend knows about, bypassing the index.
func (r *Registry) ListNative(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("list native: %w", err)
	}

	names, err := r.backend.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list native: %w", err)
	}

	if names == nil {
		names = []string{}
	}

	return names, nil
}

// List dispatches to ListNative or ListIndexed.
func (r *Registry) List(ctx context.Context, source ListSource) ([]string, error) {
	switch source {
	case SourceNative:
		return r.ListNative(ctx)
	case SourceIndexed:
		return r.ListIndexed(ctx)
	default:
		return nil, fmt.Errorf("list: %w: unknown source %q", ErrInvalidInput, source)
	}
}

// Diff compares the index with the native enumeration.
//
// Names listed in reserved (typically the index keys of every registry
// sharing the backend) are ignored on the native side. Because all
// collections share one key space, Unindexed also contains entries that
// belong to other collections or were written through Record.
func (r *Registry) Diff(ctx context.Context, reserved ...string) (IndexDiff, error) {
	indexed, err := r.ListIndexed(ctx)
	if err != nil {
		return IndexDiff{}, fmt.Errorf("diff: %w", err)
	}

	native, err := r.ListNative(ctx)
	if err != nil {
		return IndexDiff{}, fmt.Errorf("diff: %w", err)
	}

	diff := IndexDiff{Unindexed: []string{}, Dangling: []string{}}

	for _, name := range native {
		if name == r.indexKey || slices.Contains(r.reserved, name) || slices.Contains(reserved, name) {
			continue
		}
		if !slices.Contains(indexed, name) {
			diff.Unindexed = append(diff.Unindexed, name)
		}
	}

	for _, name := range indexed {
		if !slices.Contains(native, name) {
			diff.Dangling = append(diff.Dangling, name)
		}
	}

	return diff, nil
}

// Reindex adds existing entries to the index. It is the repair path for
// index updates lost by StrategyBestEffort.
//
// Every name must exist in the backend; processing stops at the first name
// that fails validation or lookup, before the index is touched. Names that
// are already indexed are skipped.
//
// Returns the number of names added to the index.
func (r *Registry) Reindex(ctx context.Context, names []string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("reindex: %w", err)
	}

	for _, name := range names {
		if err := r.validateName(name); err != nil {
			return 0, fmt.Errorf("reindex: %w", err)
		}
		if _, err := r.backend.Get(ctx, name); err != nil {
			return 0, fmt.Errorf("reindex '%s': %w", name, err)
		}
	}

	added := 0
	appendMissing := func(current string, found bool) (string, bool, error) {
		indexed, err := decodeIndex(current, found)
		if err != nil {
			return "", false, err
		}
		added = 0
		for _, name := range names {
			if !slices.Contains(indexed, name) {
				indexed = append(indexed, name)
				added++
			}
		}
		if added == 0 {
			return "", false, nil
		}
		next, err := encodeIndex(indexed)
		return next, err == nil, err
	}

	if err := r.updateIndex(ctx, appendMissing); err != nil {
		return 0, fmt.Errorf("reindex: %w", err)
	}

	return added, nil
}

func (r *Registry) validateName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidInput)
	}

	if !IsValidName(name) {
		return fmt.Errorf("%w: invalid name %q", ErrInvalidInput, name)
	}

	if name == r.indexKey || slices.Contains(r.reserved, name) {
		return fmt.Errorf("%w: name %q is reserved for an index", ErrInvalidInput, name)
	}

	return nil
}

func (r *Registry) addToIndex(ctx context.Context, name string) error {
	return r.updateIndex(ctx, func(current string, found bool) (string, bool, error) {
		names, err := decodeIndex(current, found)
		if err != nil {
			return "", false, err
		}
		if slices.Contains(names, name) {
			return "", false, nil
		}
		next, err := encodeIndex(append(names, name))
		return next, err == nil, err
	})
}

// updateIndex applies fn to the index entry, atomically when the strategy
// and backend allow it and as a plain get-then-put otherwise.
func (r *Registry) updateIndex(ctx context.Context, fn UpdateFunc) error {
	if r.updater != nil {
		return r.updater.Update(ctx, r.indexKey, fn)
	}

	current, err := r.backend.Get(ctx, r.indexKey)
	found := true
	if errors.Is(err, ErrNotFound) {
		found = false
	} else if err != nil {
		return err
	}

	next, write, err := fn(current, found)
	if err != nil || !write {
		return err
	}

	return r.backend.Put(ctx, r.indexKey, next)
}

func decodeIndex(raw string, found bool) ([]string, error) {
	if !found || raw == "" {
		return []string{}, nil
	}

	var names []string
	if err := json.Unmarshal([]byte(raw), &names); err != nil {
		return nil, fmt.Errorf("%w: decode index: %w", ErrInternal, err)
	}

	if names == nil {
		names = []string{}
	}

	return names, nil
}

func encodeIndex(names []string) (string, error) {
	data, err := json.Marshal(names)
	if err != nil {
		return "", fmt.Errorf("encode index: %w", err)
	}
	return string(data), nil
}
