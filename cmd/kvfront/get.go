package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/boldorider4/kvfront/config"
)

var getCmd = &cobra.Command{
	Use:   "get <name>",
	Short: "Print an entry's value",
	Args:  cobra.ExactArgs(1),
	RunE:  runGet,
}

func init() {
	rootCmd.AddCommand(getCmd)
}

func runGet(cmd *cobra.Command, args []string) error {
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

	// Both collections share one key space, so either registry can read.
	value, err := a.keys.Get(ctx, args[0])
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), value)
	return err
}
