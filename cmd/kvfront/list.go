package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/boldorider4/kvfront"
	"github.com/boldorider4/kvfront/config"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List entry names",
	Long: `List entry names of a collection.

The native source enumerates every entry in the backend, including index
entries and recorded tokens. The indexed source reads the collection's
index entry.

Examples:
  kvfront list
  kvfront list -c files --source indexed
  kvfront list --json`,
	Args: cobra.NoArgs,
	RunE: runList,
}

var (
	listCollection string
	listSource     string
	listJSON       bool
)

func init() {
	listCmd.Flags().StringVarP(&listCollection, "collection", "c", "keys", "collection to list (keys, files)")
	listCmd.Flags().StringVarP(&listSource, "source", "s", "", "listing source: native, indexed (default: server.listing)")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "print a JSON array")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}

	source := cfg.ListSource()
	if listSource != "" {
		source, err = kvfront.ParseListSource(listSource)
		if err != nil {
			return err
		}
	}

	ctx := cmd.Context()

	a, err := openApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	reg, err := a.registry(listCollection)
	if err != nil {
		return err
	}

	names, err := reg.List(ctx, source)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if listJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(names)
	}

	for _, name := range names {
		if _, err := fmt.Fprintln(out, name); err != nil {
			return err
		}
	}
	return nil
}
