// Package filesystem stores each entry as a file under a sandboxed
// directory. Writes go through a temp file and an atomic rename, so a
// reader never observes a partially written value.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"path"
	"slices"

	"github.com/boldorider4/kvfront"
	"github.com/google/uuid"
)

const tmpDir = ".tmp"

// maxFileNameBytes is the file name limit of common file systems
// (ext4, xfs, apfs, ntfs).
const maxFileNameBytes = 255

// Store provides file system entry storage.
type Store struct {
	root *os.Root
	dir  string
}

// NewStore creates a Store keeping entries in dir, relative to root.
// The root provides sandboxed file operations preventing path traversal.
func NewStore(root *os.Root, dir string) *Store {
	return &Store{root: root, dir: dir}
}

// Get reads an entry. Returns kvfront.ErrNotFound if the file does not exist.
func (s *Store) Get(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	target, err := s.entryPath(key)
	if err != nil {
		// A name that cannot be stored was never written.
		return "", kvfront.ErrNotFound
	}

	data, err := s.root.ReadFile(target)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", kvfront.ErrNotFound
		}
		return "", fmt.Errorf("read entry: %w", err)
	}

	return string(data), nil
}

// Put atomically writes an entry using a temp file and rename.
func (s *Store) Put(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	target, err := s.entryPath(key)
	if err != nil {
		return err
	}

	tmpFile := tmpFileName()
	t, err := s.root.Create(tmpFile)
	if err != nil {
		return fmt.Errorf("could not open temp file: %w", err)
	}

	success := false
	defer func() {
		if closeErr := t.Close(); closeErr != nil && !errors.Is(closeErr, os.ErrClosed) {
			slog.Warn("failed to close tmp file", "err", closeErr)
		}
		if !success {
			if rmErr := s.root.Remove(tmpFile); rmErr != nil {
				slog.Warn("failed to remove tmp file", "err", rmErr)
			}
		}
	}()

	if _, err := t.WriteString(value); err != nil {
		return fmt.Errorf("could not write entry: %w", err)
	}

	if err := t.Sync(); err != nil {
		return fmt.Errorf("could not sync written file: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	if err := s.root.Rename(tmpFile, target); err != nil {
		return fmt.Errorf("failed to rename file: %w", err)
	}

	success = true
	return nil
}

// List returns the unescaped names of all entry files, sorted.
func (s *Store) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dirEntries, err := fs.ReadDir(s.root.FS(), s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}

	names := make([]string, 0, len(dirEntries))
	for _, entry := range dirEntries {
		if entry.IsDir() {
			continue
		}

		name, err := url.PathUnescape(entry.Name())
		if err != nil {
			slog.Warn("skipping file with undecodable name", "file", entry.Name(), "err", err)
			continue
		}
		names = append(names, name)
	}

	slices.Sort(names)
	return names, nil
}

// entryPath maps a name onto a single path element. PathEscape encodes "/",
// so every name becomes a direct child of the entries directory. Escaping
// can triple the length, so names over maxFileNameBytes once escaped are
// rejected with kvfront.ErrInvalidInput.
func (s *Store) entryPath(key string) (string, error) {
	escaped := url.PathEscape(key)
	if len(escaped) > maxFileNameBytes {
		return "", fmt.Errorf("%w: name is %d bytes once escaped, limit is %d",
			kvfront.ErrInvalidInput, len(escaped), maxFileNameBytes)
	}
	return path.Join(s.dir, escaped), nil
}

func tmpFileName() string {
	return path.Join(tmpDir, fmt.Sprintf(".t%s", uuid.New().String()))
}

// Database owns the root directory handle.
type Database struct {
	root  *os.Root
	store *Store
}

// Connect opens dir as the storage root, creating it if needed.
func Connect(ctx context.Context, dir string, tables kvfront.Tables) (*Database, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("connect filesystem: %w", err)
	}

	if dir == "" {
		return nil, errors.New("connect filesystem: directory cannot be empty")
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("connect filesystem: %w", err)
	}

	root, err := os.OpenRoot(dir)
	if err != nil {
		return nil, fmt.Errorf("connect filesystem: %w", err)
	}

	return &Database{root: root, store: NewStore(root, tables.Entries)}, nil
}

func (d *Database) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := d.root.Stat("."); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Migrate creates the entries and temp directories.
func (d *Database) Migrate(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	for _, dir := range []string{d.store.dir, tmpDir} {
		if err := d.root.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("migrate: create %s: %w", dir, err)
		}
	}
	return nil
}

// Validate checks that the entries and temp directories exist.
func (d *Database) Validate(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	for _, dir := range []string{d.store.dir, tmpDir} {
		info, err := d.root.Stat(dir)
		if err != nil {
			return fmt.Errorf("validate: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("validate: %s is not a directory", dir)
		}
	}
	return nil
}

func (d *Database) Store() kvfront.Backend {
	return d.store
}

func (d *Database) Close() error {
	return d.root.Close()
}
