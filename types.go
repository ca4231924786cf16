package kvfront

import (
	"errors"
	"fmt"
	"regexp"
)

const (
	// DefaultKeysIndex is the index entry tracking names written under /keys.
	DefaultKeysIndex = "keys"
	// DefaultFilesIndex is the index entry tracking names written under /files.
	DefaultFilesIndex = "files"
	// NoTokenKey is recorded when a request carries no bearer token.
	NoTokenKey = "no-token"
)

// Entry is a named value stored in a Backend.
type Entry struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// ListSource selects which listing a collection page is rendered from.
type ListSource string

const (
	SourceNative  ListSource = "native"
	SourceIndexed ListSource = "indexed"
)

func (s ListSource) IsValid() bool {
	switch s {
	case SourceNative, SourceIndexed:
		return true
	default:
		return false
	}
}

func ParseListSource(s string) (ListSource, error) {
	source := ListSource(s)
	if !source.IsValid() {
		return "", fmt.Errorf("invalid list source: %s (valid sources: native, indexed)", s)
	}
	return source, nil
}

// IndexStrategy controls how the index document is updated after a write.
type IndexStrategy string

const (
	StrategyBestEffort IndexStrategy = "best_effort"
	StrategyAtomic     IndexStrategy = "atomic"
)

func (s IndexStrategy) IsValid() bool {
	switch s {
	case StrategyBestEffort, StrategyAtomic:
		return true
	default:
		return false
	}
}

func ParseIndexStrategy(s string) (IndexStrategy, error) {
	strategy := IndexStrategy(s)
	if !strategy.IsValid() {
		return "", fmt.Errorf("invalid index strategy: %s (valid strategies: best_effort, atomic)", s)
	}
	return strategy, nil
}

// IndexDiff describes how an index document and the native enumeration disagree.
type IndexDiff struct {
	// Unindexed holds names present natively but missing from the index.
	Unindexed []string `json:"unindexed"`
	// Dangling holds names present in the index but missing natively.
	Dangling []string `json:"dangling"`
}

// InSync reports whether the index and native enumeration agree.
func (d IndexDiff) InSync() bool {
	return len(d.Unindexed) == 0 && len(d.Dangling) == 0
}

// Tables holds configurable table (or bucket) names for entry storage.
// This allows several deployments to share one database.
type Tables struct {
	Entries string `mapstructure:"entries"`
}

var validTableNameRegex = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// IsValidTableName checks if a table name is valid (lowercase, alphanumeric with underscores, max 63 chars).
func IsValidTableName(name string) bool {
	return validTableNameRegex.MatchString(name) && len(name) <= 63
}

// Validate checks that all required table names are set and valid.
func (t Tables) Validate() error {
	if t.Entries == "" {
		return errors.New("validate tables: entries table name cannot be empty")
	}

	if !IsValidTableName(t.Entries) {
		return fmt.Errorf("validate tables: invalid entries table name: %s (must match ^[a-z_][a-z0-9_]*$ and be <= 63 chars)", t.Entries)
	}

	return nil
}
