package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wonderfulspam/stage-smith/pkg/chart"
	"github.com/wonderfulspam/stage-smith/pkg/client"
	"github.com/wonderfulspam/stage-smith/pkg/inspector"
	"github.com/wonderfulspam/stage-smith/pkg/parser"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect [stage-run]",
	Short: "Report chart types and changes for every stage of a pipeline",
	Long: `Analyses a stage run: for each stage it detects a chart type and builds the
chart data, and it diffs each stage's sample output against the previous stage.

The stage run is read from a file (the execute-stages response, or a bare list
of stage results), or produced by sending --pipeline to the stage-execution
service.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInspect,
}

var (
	inspectPipeline  string
	inspectChartType string
)

func init() {
	inspectCmd.Flags().StringVar(&inspectPipeline, "pipeline", "", "Pipeline file to execute stage by stage")
	inspectCmd.Flags().StringVar(&inspectChartType, "type", "", "Force a chart type for every stage (bar, pie, line, table)")
	inspectCmd.Flags().Int("sample-size", 10, "Documents sampled per stage")
	inspectCmd.Flags().Int("concurrency", inspector.DefaultConcurrency, "Stages analysed in parallel")
	inspectCmd.Flags().String("format", "table", "Output format: table, json, yaml, mermaid, dot")
	inspectCmd.Flags().StringSlice("only", nil, "Only list these change types")
	inspectCmd.Flags().Bool("changed-only", false, "Hide unchanged nodes")
	addServiceFlags(inspectCmd)

	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
	run, err := loadStageRun(cmd, args)
	if err != nil {
		return err
	}

	opts := []inspector.Option{
		inspector.WithConcurrency(appConfig.Concurrency),
		inspector.WithMaxDepth(appConfig.MaxDepth),
		inspector.WithRegistry(appConfig.ChartRegistry()),
		inspector.WithColors(appConfig.Chart.Colors),
		inspector.WithLogger(logger),
	}
	forced := inspectChartType
	if forced == "" && appConfig.Chart.DefaultType != "auto" {
		forced = appConfig.Chart.DefaultType
	}
	if forced != "" {
		t, err := chart.ParseChartType(forced)
		if err != nil {
			return err
		}
		opts = append(opts, inspector.WithChartType(t))
	}

	report, err := inspector.Inspect(cmd.Context(), run, opts...)
	if err != nil {
		return fmt.Errorf("inspecting stage run: %w", err)
	}

	r, err := newRenderer()
	if err != nil {
		return err
	}
	output, err := r.RenderReport(report)
	if err != nil {
		return fmt.Errorf("rendering report: %w", err)
	}

	fmt.Fprint(cmd.OutOrStdout(), output)
	return nil
}

func loadStageRun(cmd *cobra.Command, args []string) (*parser.StageRun, error) {
	if len(args) == 1 {
		return parser.Parser{MaxDepth: appConfig.MaxDepth}.ParseFile(args[0])
	}

	if inspectPipeline == "" {
		return nil, fmt.Errorf("a stage run file or --pipeline is required")
	}
	pipeline, err := parser.LoadPipeline(inspectPipeline)
	if err != nil {
		return nil, err
	}

	c, err := newServiceClient()
	if err != nil {
		return nil, err
	}
	run, err := c.ExecuteStages(cmd.Context(), client.StagesRequest{
		ConnectionID: appConfig.Client.ConnectionID,
		Database:     appConfig.Client.Database,
		Collection:   appConfig.Client.Collection,
		Pipeline:     pipeline,
		SampleSize:   appConfig.Client.SampleSize,
	})
	if err != nil {
		return nil, err
	}
	logger.Debug("Stages executed",
		zap.String("pipeline", inspectPipeline),
		zap.Int("stages", len(run.Stages)))
	return run, nil
}
