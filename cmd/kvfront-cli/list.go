package main

import (
	"os"

	"github.com/boldorider4/kvfront/clientcli"
	"github.com/spf13/cobra"
)

var listCollection string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the names in a collection",
	Long: `List the names in a collection.

The server decides whether names come from the collection index or from the
backend's native enumeration. Native listings also show entries written by
token recording and the index entries themselves.

Examples:
  kvfront-cli list
  kvfront-cli list -C files
  kvfront-cli list --json`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	listCmd.Flags().StringVarP(&listCollection, "collection", "C", string(clientcli.CollectionKeys), "collection (keys, files)")
}

func runList(cmd *cobra.Command, _ []string) error {
	collection, err := clientcli.ParseCollection(listCollection)
	if err != nil {
		return fail(err)
	}

	client, err := getClient()
	if err != nil {
		return fail(err)
	}

	result, err := client.List(cmd.Context(), collection)
	if err != nil {
		return fail(err)
	}

	return getFormatter().FormatList(os.Stdout, result)
}
