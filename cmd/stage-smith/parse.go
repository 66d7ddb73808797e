package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonderfulspam/stage-smith/pkg/parser"
	"github.com/wonderfulspam/stage-smith/pkg/renderer"
)

var parseCmd = &cobra.Command{
	Use:   "parse <stage-run>",
	Short: "Parse and display a stage run file",
	Long: `Reads a stage run (the execute-stages response or a bare list of stage
results), fills in defaults, sorts the stages and prints the normalized form.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		run, err := parser.Parser{MaxDepth: appConfig.MaxDepth}.ParseFile(args[0])
		if err != nil {
			return err
		}

		format, err := renderer.ParseFormat(parseFormat)
		if err != nil {
			return err
		}
		output, err := renderer.New(renderer.Options{Format: format}).RenderStageRun(run)
		if err != nil {
			return fmt.Errorf("marshaling output: %w", err)
		}

		fmt.Fprint(cmd.OutOrStdout(), output)
		return nil
	},
}

var parseFormat string

func init() {
	parseCmd.Flags().StringVar(&parseFormat, "format", "json", "Output format: json, yaml")
	rootCmd.AddCommand(parseCmd)
}
