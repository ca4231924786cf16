package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/boldorider4/kvfront/config"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Version: version,
	Use:     "kvfront",
	Short:   "HTML front-end over a key-value store",
	Long: `kvfront serves a small HTML front-end over a key-value store.
Entries are written through registries that keep an index entry
next to the data, and can be listed natively or from that index.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configFiles, _ := cmd.Flags().GetStringSlice("config")

		cfg, err := config.Load(configFiles, cmd.Flags())
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		setupLogging(cfg.Env, cfg.Log.Level)
		cmd.SetContext(config.WithContext(cmd.Context(), cfg))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringSlice("config", nil, "config file path(s), merged left to right (default: ./config.yaml)")
	rootCmd.PersistentFlags().String("backend", "", "backend type: sqlite, postgres, bolt, memory, filesystem (env: KVFRONT_BACKEND_TYPE)")
	rootCmd.PersistentFlags().String("dsn", "", "connection string or path (default: kvfront.db, env: KVFRONT_BACKEND_DSN)")
	rootCmd.PersistentFlags().String("table-name", "", "entries table, bucket or directory (default: kv_entries)")
	rootCmd.PersistentFlags().String("strategy", "", "index strategy: best_effort, atomic (env: KVFRONT_REGISTRY_STRATEGY)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
