// Package backend provides a unified interface for connecting to KV backends.
//
// Every backend stores entries in a single namespace (a table, bucket or
// directory named by Tables.Entries) and exposes it as a kvfront.Backend.
//
// # Supported Backends
//
//   - sqlite: Lightweight backend suitable for development and single-node deployments
//   - postgres: Production-ready backend using pgx connection pool
//   - bolt: Embedded bbolt file, one bucket per namespace
//   - memory: Process-local map, optionally seeded from a JSON file
//   - filesystem: One file per entry under a sandboxed directory
//
// All backends except filesystem implement kvfront.AtomicUpdater.
//
// # Usage
//
//	cfg := backend.Config{
//	    Type:   "sqlite",
//	    DSN:    "kvfront.db",
//	    Tables: kvfront.Tables{Entries: "kv_entries"},
//	}
//
//	db, err := backend.Connect(ctx, cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
//	store := db.Store()
//
// # Subpackages
//
//   - backend/sqlite: SQLite implementation using modernc.org/sqlite
//   - backend/postgres: PostgreSQL implementation using pgx
//   - backend/bolt: bbolt implementation
//   - backend/memory: in-memory implementation
//   - backend/filesystem: os.Root implementation with atomic renames
package backend
