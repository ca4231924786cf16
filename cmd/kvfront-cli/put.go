package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/boldorider4/kvfront/clientcli"
	"github.com/spf13/cobra"
)

var (
	putCollection string
	putFile       string
)

var putCmd = &cobra.Command{
	Use:   "put <name> [content]",
	Short: "Create or overwrite an entry",
	Long: `Create or overwrite an entry and record it in the collection index.

Content is taken from the second argument, from --file, or from stdin when
--file is "-".

Examples:
  kvfront-cli put alpha "hello"
  kvfront-cli put -C files report.txt --file ./report.txt
  echo hello | kvfront-cli put alpha --file -`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runPut,
}

func init() {
	putCmd.Flags().StringVarP(&putCollection, "collection", "C", string(clientcli.CollectionKeys), "collection (keys, files)")
	putCmd.Flags().StringVarP(&putFile, "file", "f", "", `read content from file ("-" for stdin)`)
}

func runPut(cmd *cobra.Command, args []string) error {
	collection, err := clientcli.ParseCollection(putCollection)
	if err != nil {
		return fail(err)
	}

	content, err := putContent(args, putFile, cmd.InOrStdin())
	if err != nil {
		return fail(err)
	}

	client, err := getClient()
	if err != nil {
		return fail(err)
	}

	result, err := client.Put(cmd.Context(), clientcli.PutOptions{
		Collection: collection,
		Name:       args[0],
		Content:    content,
	})
	if err != nil {
		return fail(err)
	}

	return getFormatter().FormatPut(os.Stdout, result)
}

func putContent(args []string, file string, stdin io.Reader) (string, error) {
	switch {
	case len(args) == 2 && file != "":
		return "", errors.New("content argument and --file are mutually exclusive")
	case len(args) == 2:
		return args[1], nil
	case file == "-":
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	case file != "":
		data, err := os.ReadFile(filepath.Clean(file))
		if err != nil {
			return "", fmt.Errorf("read file: %w", err)
		}
		return string(data), nil
	default:
		return "", errors.New("content is required: pass it as an argument or use --file")
	}
}
