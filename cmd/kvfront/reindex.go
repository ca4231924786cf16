package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/boldorider4/kvfront"
	"github.com/boldorider4/kvfront/config"
)

var reindexCmd = &cobra.Command{
	Use:   "reindex [flags] [name...]",
	Short: "Compare a collection's index with the backend and repair it",
	Long: `Compare a collection's index entry with the backend's native listing.

Without arguments the command only reports names that exist natively but
are missing from the index (unindexed) and names in the index whose entry
is gone (dangling). Index updates can be lost when two writes race under
the best_effort strategy; pass the names to add them back, or --all to add
every unindexed name that the other collection does not claim.

Examples:
  # Report differences for /keys
  kvfront reindex

  # Add two names to the files index
  kvfront reindex -c files a.txt b.txt

  # Add every unindexed name to the keys index
  kvfront reindex --all`,
	RunE: runReindex,
}

var (
	reindexCollection string
	reindexAll        bool
	reindexDryRun     bool
)

func init() {
	reindexCmd.Flags().StringVarP(&reindexCollection, "collection", "c", "keys", "collection to check (keys, files)")
	reindexCmd.Flags().BoolVar(&reindexAll, "all", false, "add every unindexed name")
	reindexCmd.Flags().BoolVarP(&reindexDryRun, "dry-run", "n", false, "show what would be added without writing")
	rootCmd.AddCommand(reindexCmd)
}

func runReindex(cmd *cobra.Command, args []string) error {
	if reindexAll && len(args) > 0 {
		return errors.New("give names or --all, not both")
	}

	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}

	ctx := cmd.Context()

	a, err := openApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	reg, err := a.registry(reindexCollection)
	if err != nil {
		return err
	}

	diff, err := reg.Diff(ctx, a.indexKeys()...)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, name := range diff.Unindexed {
		_, _ = fmt.Fprintf(out, "unindexed\t%s\n", name)
	}
	for _, name := range diff.Dangling {
		_, _ = fmt.Fprintf(out, "dangling\t%s\n", name)
	}

	names := args
	if reindexAll {
		names, err = claimable(ctx, a, reg, diff)
		if err != nil {
			return err
		}
	}

	if len(names) == 0 {
		if diff.InSync() {
			slog.Info("index in sync", "collection", reindexCollection)
		}
		return nil
	}

	if reindexDryRun {
		for _, name := range names {
			_, _ = fmt.Fprintf(out, "would add\t%s\n", name)
		}
		return nil
	}

	added, err := reg.Reindex(ctx, names)
	if err != nil {
		return err
	}

	slog.Info("reindex complete", "collection", reindexCollection, "added", added)
	return nil
}

// claimable filters the unindexed names down to those not already indexed
// by the other collection.
func claimable(ctx context.Context, a *app, reg *kvfront.Registry, diff kvfront.IndexDiff) ([]string, error) {
	other := a.files
	if reg == a.files {
		other = a.keys
	}

	claimed, err := other.ListIndexed(ctx)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(diff.Unindexed))
	for _, name := range diff.Unindexed {
		if !slices.Contains(claimed, name) {
			names = append(names, name)
		}
	}
	return names, nil
}
