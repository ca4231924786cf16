package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/boldorider4/kvfront/backend"
	"github.com/boldorider4/kvfront/config"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the entries table",
	Long: `Create the entries table, bucket or directory of the configured
backend and check its schema. Safe to run repeatedly.`,
	Args: cobra.NoArgs,
	RunE: runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}

	ctx := cmd.Context()

	db, err := backend.Connect(ctx, cfg.Backend)
	if err != nil {
		return fmt.Errorf("connect backend: %w", err)
	}
	defer func() { _ = db.Close() }()

	if err = db.Ping(ctx); err != nil {
		return fmt.Errorf("ping backend: %w", err)
	}

	if err = db.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate backend: %w", err)
	}

	if err = db.Validate(ctx); err != nil {
		return fmt.Errorf("validate backend schema: %w", err)
	}

	slog.Info("migration complete", "type", cfg.Backend.Type, "table", cfg.Backend.Tables.Entries)
	return nil
}
