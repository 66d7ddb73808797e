package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wonderfulspam/stage-smith/pkg/differ"
	"github.com/wonderfulspam/stage-smith/pkg/document"
)

var diffCmd = &cobra.Command{
	Use:   "diff <old> <new>",
	Short: "Show the structural differences between two documents",
	Long: `Compares two JSON or YAML documents node by node. Records are compared by
field name and sequences by position. Every node is reported as added, removed,
modified or unchanged.`,
	Args: cobra.ExactArgs(2),
	RunE: runDiff,
}

func init() {
	diffCmd.Flags().String("format", "table", "Output format: table, json, yaml, mermaid, dot")
	diffCmd.Flags().StringSlice("only", nil, "Only list these change types (added, removed, modified, unchanged)")
	diffCmd.Flags().Bool("changed-only", false, "Hide unchanged nodes")
	diffCmd.Flags().Int("max-depth", document.DefaultMaxDepth, "Maximum document nesting depth")

	rootCmd.AddCommand(diffCmd)
}

func runDiff(cmd *cobra.Command, args []string) error {
	decoder := document.Decoder{MaxDepth: appConfig.MaxDepth}

	oldDoc, err := decoder.File(args[0])
	if err != nil {
		return err
	}
	newDoc, err := decoder.File(args[1])
	if err != nil {
		return err
	}

	result, err := differ.Compare(oldDoc, newDoc, differ.WithMaxDepth(appConfig.MaxDepth))
	if err != nil {
		return fmt.Errorf("comparing documents: %w", err)
	}
	logger.Debug("Documents compared",
		zap.String("old", args[0]),
		zap.String("new", args[1]),
		zap.String("description", result.Description))

	r, err := newRenderer()
	if err != nil {
		return err
	}
	output, err := r.RenderDiff(result)
	if err != nil {
		return fmt.Errorf("rendering diff: %w", err)
	}

	fmt.Fprint(cmd.OutOrStdout(), output)
	return nil
}
