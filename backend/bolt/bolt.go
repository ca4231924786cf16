// Package bolt implements kvfront.Backend on a bbolt file.
// Each entries namespace is a bucket; bbolt keeps keys sorted byte-wise,
// so List needs no extra ordering.
package bolt

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/boldorider4/kvfront"
	"go.etcd.io/bbolt"
)

// Option configures a Database.
type Option func(*Database)

// WithLogger sets the logger for the database.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Database) {
		d.logger = logger
	}
}

// WithNoSync disables fsync per transaction. Use only for tests.
func WithNoSync(noSync bool) Option {
	return func(d *Database) {
		d.noSync = noSync
	}
}

// Database wraps a bbolt file holding one entries bucket.
type Database struct {
	db     *bbolt.DB
	bucket []byte
	logger *slog.Logger
	noSync bool
}

// Connect opens (creating if needed) the bbolt file at path.
func Connect(ctx context.Context, path string, tables kvfront.Tables, opts ...Option) (*Database, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("connect bolt: %w", err)
	}

	if path == "" {
		return nil, errors.New("connect bolt: path cannot be empty")
	}

	d := &Database{
		bucket: []byte(tables.Entries),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}

	db, err := bbolt.Open(path, 0o600, &bbolt.Options{
		Timeout: 1 * time.Second,
		NoSync:  d.noSync,
	})
	if err != nil {
		return nil, fmt.Errorf("connect bolt: %w", err)
	}
	d.db = db

	d.logger.Debug("opened bolt database", "path", path, "bucket", tables.Entries)
	return d, nil
}

// Ping reports whether the database file is still open.
func (d *Database) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return d.db.View(func(*bbolt.Tx) error { return nil })
}

// Migrate creates the entries bucket.
func (d *Database) Migrate(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := d.db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(d.bucket)
		return err
	})
	if err != nil {
		return fmt.Errorf("migrate: creating bucket %s: %w", d.bucket, err)
	}
	return nil
}

// Validate checks that the entries bucket exists.
func (d *Database) Validate(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return d.db.View(func(tx *bbolt.Tx) error {
		if tx.Bucket(d.bucket) == nil {
			return fmt.Errorf("validate: bucket %s does not exist", d.bucket)
		}
		return nil
	})
}

func (d *Database) Store() kvfront.Backend {
	return &store{db: d.db, bucket: d.bucket}
}

// Close closes the database.
func (d *Database) Close() error {
	if d.db == nil {
		return nil
	}
	d.logger.Debug("closing bolt database")
	return d.db.Close()
}

var errBucketMissing = errors.New("bucket not found")

type store struct {
	db     *bbolt.DB
	bucket []byte
}

func (s *store) Put(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(s.bucket)
		if b == nil {
			return errBucketMissing
		}
		return b.Put([]byte(key), []byte(value))
	})
	if err != nil {
		return fmt.Errorf("put: %w", err)
	}
	return nil
}

func (s *store) Get(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var value string
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(s.bucket)
		if b == nil {
			return errBucketMissing
		}
		v, ok := lookup(b, key)
		if !ok {
			return kvfront.ErrNotFound
		}
		value = v
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("get: %w", err)
	}
	return value, nil
}

func (s *store) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	names := []string{}
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(s.bucket)
		if b == nil {
			return errBucketMissing
		}
		return b.ForEach(func(k, _ []byte) error {
			names = append(names, string(k))
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}
	return names, nil
}

// Update runs fn inside a single bbolt write transaction. bbolt allows one
// writer at a time, so concurrent updates are serialised.
func (s *store) Update(ctx context.Context, key string, fn kvfront.UpdateFunc) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(s.bucket)
		if b == nil {
			return errBucketMissing
		}

		current, found := lookup(b, key)
		next, write, err := fn(current, found)
		if err != nil || !write {
			return err
		}
		return b.Put([]byte(key), []byte(next))
	})
	if err != nil {
		return fmt.Errorf("update: %w", err)
	}
	return nil
}

// lookup finds key with a cursor so that empty values are told apart from
// missing keys. The returned string is a copy; bbolt memory is only valid
// inside the transaction.
func lookup(b *bbolt.Bucket, key string) (string, bool) {
	k, v := b.Cursor().Seek([]byte(key))
	if k == nil || !bytes.Equal(k, []byte(key)) {
		return "", false
	}
	return string(v), true
}
