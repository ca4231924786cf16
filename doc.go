// Package kvfront provides a small HTTP-facing facade over a key-value store.
//
// Entries are plain (name, value) string pairs kept in a pluggable Backend.
// Alongside the entries, a Registry maintains an index document: a single
// entry whose value is a JSON array of the names written through the indexed
// path. The backend's own key enumeration stays available as the native
// listing, so the two listings can diverge and that divergence is visible to
// callers.
//
// # Key Components
//
//   - Backend: Interface for entry persistence (SQLite, PostgreSQL, bbolt, memory, filesystem)
//   - AtomicUpdater: Optional Backend capability for transactional read-modify-write
//   - Registry: Indexed write path plus indexed and native listings
//   - BearerToken: Syntactic bearer token extraction from an HTTP request
//
// # Index Strategies
//
//   - StrategyBestEffort: Write the entry, then read, append and rewrite the
//     index in two separate backend calls. Concurrent writers can lose index
//     updates.
//   - StrategyAtomic: Run the index read-modify-write through the backend's
//     AtomicUpdater when available.
//
// # Example Usage
//
//	registry, err := kvfront.NewRegistry(store, kvfront.RegistryConfig{IndexKey: "keys"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Write an entry and index it
//	err = registry.Put(ctx, "greeting", "hello")
//
//	// Read it back
//	value, err := registry.Get(ctx, "greeting")
//
// See the http package for the HTML front-end and the backend package for
// the storage implementations.
package kvfront
