package main

import (
	"os"

	"github.com/spf13/cobra"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Show the bearer token the server extracts",
	Long: `Show the bearer token the server extracts from the request.

The token is sent as "Authorization: Bearer <token>" from --token,
KVFRONT_TOKEN or the selected profile.`,
	Args: cobra.NoArgs,
	RunE: runToken,
}

func runToken(cmd *cobra.Command, _ []string) error {
	client, err := getClient()
	if err != nil {
		return fail(err)
	}

	result, err := client.Token(cmd.Context())
	if err != nil {
		return fail(err)
	}

	return getFormatter().FormatToken(os.Stdout, result)
}
