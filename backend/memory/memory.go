// Package memory provides a process-local kvfront.Backend.
// It is suitable for development, tests and the sandbox server; entries
// are lost when the process exits.
package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/boldorider4/kvfront"
)

// Option configures a Store.
type Option func(*Store)

// WithLatency delays every backend call by d, mimicking a hosted KV
// service. Update holds the lock for the whole delay.
func WithLatency(d time.Duration) Option {
	return func(s *Store) {
		s.latency = d
	}
}

// Store keeps entries in a map guarded by a RWMutex.
type Store struct {
	mu      sync.RWMutex
	entries map[string]string
	latency time.Duration
}

// NewStore creates an empty store.
func NewStore(opts ...Option) *Store {
	s := &Store{entries: make(map[string]string)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Seed writes entries without any latency.
func (s *Store) Seed(entries []kvfront.Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range entries {
		s.entries[e.Name] = e.Value
	}
}

func (s *Store) Put(ctx context.Context, key, value string) error {
	if err := s.wait(ctx); err != nil {
		return fmt.Errorf("put: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = value
	return nil
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	if err := s.wait(ctx); err != nil {
		return "", fmt.Errorf("get: %w", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.entries[key]
	if !ok {
		return "", fmt.Errorf("get %s: %w", key, kvfront.ErrNotFound)
	}
	return value, nil
}

func (s *Store) List(ctx context.Context) ([]string, error) {
	if err := s.wait(ctx); err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}

	s.mu.RLock()
	names := make([]string, 0, len(s.entries))
	for name := range s.entries {
		names = append(names, name)
	}
	s.mu.RUnlock()

	slices.Sort(names)
	return names, nil
}

// Update runs fn under the write lock.
func (s *Store) Update(ctx context.Context, key string, fn kvfront.UpdateFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.wait(ctx); err != nil {
		return fmt.Errorf("update: %w", err)
	}

	current, found := s.entries[key]
	next, write, err := fn(current, found)
	if err != nil {
		return fmt.Errorf("update: %w", err)
	}
	if write {
		s.entries[key] = next
	}
	return nil
}

// Len returns the number of stored entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func (s *Store) wait(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.latency <= 0 {
		return nil
	}

	timer := time.NewTimer(s.latency)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Database adapts a Store to the backend connection lifecycle.
// Migrate, Validate and Close have nothing to do.
type Database struct {
	store *Store
}

// Connect returns a Database around a fresh Store. Tables are accepted for
// symmetry with the other backends; a memory store has a single namespace.
func Connect(ctx context.Context, _ kvfront.Tables, opts ...Option) (*Database, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("connect memory: %w", err)
	}
	return &Database{store: NewStore(opts...)}, nil
}

func (d *Database) Ping(context.Context) error     { return nil }
func (d *Database) Migrate(context.Context) error  { return nil }
func (d *Database) Validate(context.Context) error { return nil }
func (d *Database) Close() error                   { return nil }

func (d *Database) Store() kvfront.Backend {
	return d.store
}
