package main

import (
	"fmt"
	"os"

	"github.com/boldorider4/kvfront/clientcli"
	"github.com/spf13/cobra"
)

var (
	benchTokens  int
	benchVerbose bool
)

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Measure server-side KV latency",
	Long: `Measure server-side KV latency through the /measure endpoints.

Runs three phases with generated tokens (fake-token-00000, ...):
  1. one PUT per token
  2. one GET per token (a different key each request)
  3. the same number of GETs for the last token

Timings are read from the X-KV-Write-Ms / X-KV-Read-Ms headers. The command
exits non-zero if any request fails.

Examples:
  kvfront-cli bench
  kvfront-cli bench --tokens 100 -v
  kvfront-cli bench -e https://kv.example.com --json`,
	Args: cobra.NoArgs,
	RunE: runBench,
}

func init() {
	benchCmd.Flags().IntVarP(&benchTokens, "tokens", "n", clientcli.DefaultBenchTokens, "number of tokens")
	benchCmd.Flags().BoolVarP(&benchVerbose, "verbose", "v", false, "print every request")
}

func runBench(cmd *cobra.Command, _ []string) error {
	if benchTokens < 1 {
		return fail(clientcli.ErrNoTokens)
	}

	client, err := getClient()
	if err != nil {
		return fail(err)
	}

	opts := clientcli.BenchOptions{Tokens: clientcli.FakeTokens(benchTokens)}
	if benchVerbose && !jsonOutput {
		opts.Progress = func(_ string, i, total int, m clientcli.Measurement) {
			if m.Err != nil {
				_, _ = fmt.Fprintf(os.Stderr, "  [%d/%d] %s %s FAILED: %v\n", i+1, total, m.Op, m.Token, m.Err)
				return
			}
			_, _ = fmt.Fprintf(os.Stderr, "  [%d/%d] %s %s %d ms\n", i+1, total, m.Op, m.Token, m.Ms)
		}
	}

	result, err := client.Bench(cmd.Context(), opts)
	if err != nil {
		return fail(err)
	}

	if err := getFormatter().FormatBench(os.Stdout, result); err != nil {
		return err
	}

	if failed := result.Failed(); failed > 0 {
		return fmt.Errorf("%d requests failed", failed)
	}

	return nil
}
