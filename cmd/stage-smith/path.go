package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonderfulspam/stage-smith/pkg/document"
	"github.com/wonderfulspam/stage-smith/pkg/renderer"
)

var pathCmd = &cobra.Command{
	Use:   "path <document> <path>",
	Short: "Print the value at a path inside a document",
	Long: `Resolves a path such as "orders[0].items[2].sku" against a JSON or YAML
document and prints the value found there as JSON. An empty path selects the
whole document.`,
	Args: cobra.ExactArgs(2),
	RunE: runPath,
}

var pathFormat string

func init() {
	pathCmd.Flags().StringVar(&pathFormat, "format", "json", "Output format: json, yaml")
	rootCmd.AddCommand(pathCmd)
}

func runPath(cmd *cobra.Command, args []string) error {
	doc, err := document.Decoder{MaxDepth: appConfig.MaxDepth}.File(args[0])
	if err != nil {
		return err
	}

	segments, ok := document.ParsePath(args[1])
	if !ok {
		return fmt.Errorf("malformed path '%s'", args[1])
	}
	value, ok := document.ValueAtSegments(doc, segments)
	if !ok {
		return fmt.Errorf("path '%s' not found in '%s'", args[1], args[0])
	}

	format, err := renderer.ParseFormat(pathFormat)
	if err != nil {
		return err
	}
	output, err := renderer.New(renderer.Options{Format: format}).RenderValue(value)
	if err != nil {
		return err
	}

	fmt.Fprint(cmd.OutOrStdout(), output)
	return nil
}
