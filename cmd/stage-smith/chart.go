package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wonderfulspam/stage-smith/pkg/chart"
	"github.com/wonderfulspam/stage-smith/pkg/client"
	"github.com/wonderfulspam/stage-smith/pkg/document"
	"github.com/wonderfulspam/stage-smith/pkg/parser"
)

var chartCmd = &cobra.Command{
	Use:   "chart [result-set]",
	Short: "Turn a result set into chart-ready data",
	Long: `Detects a chart type for a list of result documents and reshapes them into
labelled series (bar, line, pie) or a table. The result set is read from a JSON
or YAML file, or fetched by running --pipeline through the stage-execution
service.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runChart,
}

var (
	chartType     string
	chartTitle    string
	chartPipeline string
)

func init() {
	chartCmd.Flags().StringVar(&chartType, "type", "", "Chart type: auto, bar, pie, line, table (default from config)")
	chartCmd.Flags().StringVar(&chartTitle, "title", "", "Chart title")
	chartCmd.Flags().StringSlice("colors", nil, "Custom colors, e.g. #ff0000,#00ff00")
	chartCmd.Flags().String("format", "table", "Output format: table, json, yaml, mermaid")
	chartCmd.Flags().StringVar(&chartPipeline, "pipeline", "", "Pipeline file to execute instead of reading a result set")
	addServiceFlags(chartCmd)

	rootCmd.AddCommand(chartCmd)
}

func runChart(cmd *cobra.Command, args []string) error {
	data, err := loadResultSet(cmd.Context(), args)
	if err != nil {
		return err
	}

	selected := chartType
	if selected == "" {
		selected = appConfig.Chart.DefaultType
	}

	var resolved chart.ChartType
	if selected == "auto" {
		var rule string
		resolved, rule = appConfig.ChartRegistry().Classify(data)
		logger.Debug("Chart type detected",
			zap.String("type", string(resolved)),
			zap.String("rule", rule),
			zap.Int("documents", len(data)))
	} else {
		resolved, err = chart.ParseChartType(selected)
		if err != nil {
			return err
		}
	}

	cfg := chart.GetChartConfig(data, resolved, chartTitle)
	if len(appConfig.Chart.Colors) > 0 {
		cfg.Colors = appConfig.Chart.Colors
	}
	cfg.MaxDepth = appConfig.MaxDepth

	model, err := chart.TransformToChartData(data, resolved, &cfg)
	if err != nil {
		return fmt.Errorf("building chart: %w", err)
	}

	r, err := newRenderer()
	if err != nil {
		return err
	}
	output, err := r.RenderChart(model, cfg)
	if err != nil {
		return fmt.Errorf("rendering chart: %w", err)
	}

	fmt.Fprint(cmd.OutOrStdout(), output)
	return nil
}

// loadResultSet reads documents from a file, or runs the configured pipeline
// against the service when no file is given.
func loadResultSet(ctx context.Context, args []string) ([]document.Value, error) {
	if len(args) == 1 {
		doc, err := document.Decoder{MaxDepth: appConfig.MaxDepth}.File(args[0])
		if err != nil {
			return nil, err
		}
		return resultDocuments(doc), nil
	}

	if chartPipeline == "" {
		return nil, fmt.Errorf("a result set file or --pipeline is required")
	}
	pipeline, err := parser.LoadPipeline(chartPipeline)
	if err != nil {
		return nil, err
	}

	c, err := newServiceClient()
	if err != nil {
		return nil, err
	}
	result, err := c.Execute(ctx, client.ExecuteRequest{
		ConnectionID: appConfig.Client.ConnectionID,
		Database:     appConfig.Client.Database,
		Collection:   appConfig.Client.Collection,
		Pipeline:     pipeline,
	})
	if err != nil {
		return nil, err
	}
	logger.Debug("Pipeline executed", zap.Int("count", result.Count))
	return result.Results, nil
}

// resultDocuments accepts a list of documents, an execute response holding
// "results", or a single document.
func resultDocuments(doc document.Value) []document.Value {
	switch doc.Kind() {
	case document.KindSequence:
		return doc.Items()
	case document.KindRecord:
		if results, ok := doc.Get("results"); ok && results.Kind() == document.KindSequence {
			return results.Items()
		}
		return []document.Value{doc}
	default:
		return nil
	}
}

func addServiceFlags(cmd *cobra.Command) {
	cmd.Flags().String("endpoint", "", "Stage-execution service base URL")
	cmd.Flags().String("connection", "", "Connection ID known to the service")
	cmd.Flags().String("database", "", "Database name")
	cmd.Flags().String("collection", "", "Collection name")
	cmd.Flags().String("timeout", "", "Request timeout, e.g. 30s")
	cmd.Flags().Float64("rate-limit", 0, "Maximum requests per second to the service (0 for no limit)")
}

func newServiceClient() (client.Client, error) {
	timeout, err := appConfig.Client.TimeoutDuration()
	if err != nil {
		return nil, err
	}
	return client.NewClient(&client.Config{
		BaseURL:   appConfig.Client.Endpoint,
		Timeout:   timeout,
		MaxDepth:  appConfig.MaxDepth,
		Logger:    logger,
		RateLimit: appConfig.Client.RateLimit,
	})
}
