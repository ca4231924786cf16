package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/boldorider4/kvfront/config"
)

var putCmd = &cobra.Command{
	Use:   "put [flags] <name> [value]",
	Short: "Write an entry",
	Long: `Write an entry through a collection's registry, updating its index.

The value is taken from the second argument, or from --file when given
("-" reads stdin).

Examples:
  # Create a key
  kvfront put greeting hello

  # Create a file entry from disk
  kvfront put -c files notes.txt --file ./notes.txt

  # Write without touching the index, like token recording does
  kvfront put --record fake-token-00000 fake-token-00000`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runPut,
}

var (
	putCollection string
	putFile       string
	putRecord     bool
)

func init() {
	putCmd.Flags().StringVarP(&putCollection, "collection", "c", "keys", "collection to write to (keys, files)")
	putCmd.Flags().StringVarP(&putFile, "file", "f", "", "read the value from a file (- for stdin)")
	putCmd.Flags().BoolVar(&putRecord, "record", false, "write without updating the index")
	rootCmd.AddCommand(putCmd)
}

func runPut(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}

	name := args[0]
	value, err := putValue(cmd, args)
	if err != nil {
		return err
	}

	ctx := cmd.Context()

	a, err := openApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	reg, err := a.registry(putCollection)
	if err != nil {
		return err
	}

	if putRecord {
		err = reg.Record(ctx, name, value)
	} else {
		err = reg.Put(ctx, name, value)
	}
	if err != nil {
		return err
	}

	slog.Info("entry written", "collection", putCollection, "name", name, "indexed", !putRecord)
	return nil
}

func putValue(cmd *cobra.Command, args []string) (string, error) {
	switch {
	case putFile != "" && len(args) == 2:
		return "", errors.New("give the value as an argument or with --file, not both")
	case putFile == "-":
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	case putFile != "":
		data, err := os.ReadFile(putFile)
		if err != nil {
			return "", fmt.Errorf("read %s: %w", putFile, err)
		}
		return string(data), nil
	case len(args) == 2:
		return args[1], nil
	default:
		return "", errors.New("missing value")
	}
}
