package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/boldorider4/kvfront"
)

// LoadSeedFile loads entries from a JSON file.
// The file should contain an array of entries:
//
//	[
//	  {"name": "greeting", "value": "hello"},
//	  {"name": "fake-token-00000", "value": "fake-token-00000"}
//	]
//
// Entries with an invalid name are skipped.
func LoadSeedFile(path string) ([]kvfront.Entry, error) {
	data, err := os.ReadFile(path) //nolint:gosec // Path is from trusted config file
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}

	var raw []kvfront.Entry
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}

	entries := make([]kvfront.Entry, 0, len(raw))
	for _, e := range raw {
		if kvfront.IsValidName(e.Name) {
			entries = append(entries, e)
		}
	}

	return entries, nil
}

// Seed writes entries directly to the store. Seeded entries bypass every
// registry, so they show up in native listings only.
func Seed(ctx context.Context, store kvfront.Backend, entries []kvfront.Entry) error {
	for _, e := range entries {
		if err := store.Put(ctx, e.Name, e.Value); err != nil {
			return fmt.Errorf("seed '%s': %w", e.Name, err)
		}
	}
	return nil
}
