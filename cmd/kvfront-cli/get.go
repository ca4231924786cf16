package main

import (
	"os"

	"github.com/boldorider4/kvfront/clientcli"
	"github.com/spf13/cobra"
)

var getCollection string

var getCmd = &cobra.Command{
	Use:   "get <name>",
	Short: "Print the content of an entry",
	Long: `Print the content of an entry.

Examples:
  kvfront-cli get alpha
  kvfront-cli get -C files report.txt > report.txt`,
	Args: cobra.ExactArgs(1),
	RunE: runGet,
}

func init() {
	getCmd.Flags().StringVarP(&getCollection, "collection", "C", string(clientcli.CollectionKeys), "collection (keys, files)")
}

func runGet(cmd *cobra.Command, args []string) error {
	collection, err := clientcli.ParseCollection(getCollection)
	if err != nil {
		return fail(err)
	}

	client, err := getClient()
	if err != nil {
		return fail(err)
	}

	entry, err := client.Get(cmd.Context(), collection, args[0])
	if err != nil {
		return fail(err)
	}

	return getFormatter().FormatGet(os.Stdout, entry)
}
