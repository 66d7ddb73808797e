package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wonderfulspam/stage-smith/pkg/document"
	"github.com/wonderfulspam/stage-smith/pkg/parser"
)

var validateCmd = &cobra.Command{
	Use:   "validate <pipeline>",
	Short: "Check the syntax of a pipeline definition",
	Long: `Checks that a pipeline file holds a non-empty list of stages whose keys are
all operators starting with '$'. With --remote the pipeline is also sent to the
stage-execution service for validation.`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

var validateRemote bool

func init() {
	validateCmd.Flags().BoolVar(&validateRemote, "remote", false, "Also validate with the stage-execution service")
	addServiceFlags(validateCmd)
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	pipeline, err := document.Decoder{MaxDepth: appConfig.MaxDepth}.File(args[0])
	if err != nil {
		return err
	}
	if err := parser.ValidatePipeline(pipeline); err != nil {
		return fmt.Errorf("pipeline '%s' is invalid: %w", args[0], err)
	}

	if validateRemote {
		c, err := newServiceClient()
		if err != nil {
			return err
		}
		result, err := c.ValidatePipeline(cmd.Context(), pipeline)
		if err != nil {
			return err
		}
		logger.Debug("Remote validation finished", zap.Bool("valid", result.Valid))
		if !result.Valid {
			return fmt.Errorf("pipeline '%s' was rejected by the service: %s", args[0], result.Error)
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Pipeline %s is valid (%d stages)\n", args[0], pipeline.Len())
	return nil
}
