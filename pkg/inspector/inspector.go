// Package inspector builds a per-stage report for a stage run: the chart
// classification and chart model of every stage's preview, and a structural
// diff of each preview against the one before it.
package inspector

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/wonderfulspam/stage-smith/pkg/chart"
	"github.com/wonderfulspam/stage-smith/pkg/differ"
	"github.com/wonderfulspam/stage-smith/pkg/document"
	"github.com/wonderfulspam/stage-smith/pkg/parser"
)

const DefaultConcurrency = 4

type options struct {
	concurrency int
	maxDepth    int
	registry    *chart.RuleRegistry
	chartType   chart.ChartType
	colors      []string
	logger      *zap.Logger
}

type Option func(*options)

// WithConcurrency bounds the number of stages analysed at once.
func WithConcurrency(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.concurrency = n
		}
	}
}

func WithMaxDepth(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxDepth = n
		}
	}
}

// WithRegistry replaces the default classification rules.
func WithRegistry(r *chart.RuleRegistry) Option {
	return func(o *options) {
		if r != nil {
			o.registry = r
		}
	}
}

// WithChartType forces every stage to chartType instead of detecting it.
func WithChartType(t chart.ChartType) Option {
	return func(o *options) { o.chartType = t }
}

func WithColors(colors []string) Option {
	return func(o *options) { o.colors = colors }
}

func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// StageReport is the analysis of a single stage.
type StageReport struct {
	StageIndex    int               `json:"stageIndex" yaml:"stageIndex"`
	Operator      string            `json:"operator" yaml:"operator"`
	Count         int               `json:"count" yaml:"count"`
	ExecutionTime float64           `json:"executionTime" yaml:"executionTime"`
	DetectedType  chart.ChartType   `json:"detectedType" yaml:"detectedType"`
	Rule          string            `json:"rule,omitempty" yaml:"rule,omitempty"`
	ChartType     chart.ChartType   `json:"chartType" yaml:"chartType"`
	Config        chart.ChartConfig `json:"config" yaml:"config"`
	Model         chart.Model       `json:"model" yaml:"model"`
	// Diff compares this stage's preview with the previous stage's. It is
	// nil for the first stage.
	Diff *differ.DiffResult `json:"diff,omitempty" yaml:"diff,omitempty"`
}

// Report is the analysis of a whole stage run, in stage order.
type Report struct {
	Stages             []StageReport  `json:"stages" yaml:"stages"`
	TotalExecutionTime float64        `json:"totalExecutionTime" yaml:"totalExecutionTime"`
	Changes            differ.Summary `json:"changes" yaml:"changes"`
}

// Inspect analyses every stage of run concurrently. The first error cancels
// the remaining work. Stages not yet started when ctx is cancelled are
// skipped and ctx.Err() is returned.
func Inspect(ctx context.Context, run *parser.StageRun, opts ...Option) (*Report, error) {
	o := &options{
		concurrency: DefaultConcurrency,
		maxDepth:    document.DefaultMaxDepth,
		registry:    chart.DefaultRegistry(),
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(o)
	}

	if run == nil {
		return nil, fmt.Errorf("inspecting stage run: run is nil")
	}

	stages := run.Stages
	reports := make([]StageReport, len(stages))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.concurrency)

	o.logger.Debug("Inspecting stage run",
		zap.Int("stages", len(stages)),
		zap.Int("concurrency", o.concurrency))

	for i := range stages {
		if gctx.Err() != nil {
			break
		}
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			var previous *parser.StageResult
			if i > 0 {
				previous = &stages[i-1]
			}
			report, err := inspectStage(stages[i], previous, o)
			if err != nil {
				return err
			}
			reports[i] = report
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := &Report{
		Stages:             reports,
		TotalExecutionTime: run.TotalExecutionTime(),
	}
	for _, r := range reports {
		if r.Diff == nil {
			continue
		}
		result.Changes.Added += r.Diff.Summary.Added
		result.Changes.Removed += r.Diff.Summary.Removed
		result.Changes.Modified += r.Diff.Summary.Modified
		result.Changes.Unchanged += r.Diff.Summary.Unchanged
		result.Changes.Total += r.Diff.Summary.Total
	}

	o.logger.Debug("Stage run inspected",
		zap.Int("stages", len(reports)),
		zap.Int("changes", result.Changes.Total-result.Changes.Unchanged))

	return result, nil
}

func inspectStage(stage parser.StageResult, previous *parser.StageResult, o *options) (StageReport, error) {
	report := StageReport{
		StageIndex:    stage.StageIndex,
		Operator:      stage.Operator(),
		Count:         stage.Count,
		ExecutionTime: stage.ExecutionTime,
	}

	report.DetectedType, report.Rule = o.registry.Classify(stage.Preview)
	report.ChartType = report.DetectedType
	if o.chartType != "" {
		report.ChartType = o.chartType
	}

	report.Config = chart.GetChartConfig(stage.Preview, report.ChartType, stageTitle(report))
	if len(o.colors) > 0 {
		report.Config.Colors = o.colors
	}
	report.Config.MaxDepth = o.maxDepth

	model, err := chart.TransformToChartData(stage.Preview, report.ChartType, &report.Config)
	if err != nil {
		return StageReport{}, fmt.Errorf("stage %d: building chart: %w", stage.StageIndex, err)
	}
	report.Model = model

	if previous != nil {
		// The wrapping sequences add one level above the previews.
		diff, err := differ.Compare(
			document.Sequence(previous.Preview...),
			document.Sequence(stage.Preview...),
			differ.WithMaxDepth(o.maxDepth+1),
		)
		if err != nil {
			return StageReport{}, fmt.Errorf("stage %d: diffing against stage %d: %w", stage.StageIndex, previous.StageIndex, err)
		}
		report.Diff = diff
	}

	o.logger.Debug("Stage inspected",
		zap.Int("stage", stage.StageIndex),
		zap.String("operator", report.Operator),
		zap.String("chart", string(report.ChartType)),
		zap.String("rule", report.Rule))

	return report, nil
}

func stageTitle(r StageReport) string {
	if r.Operator == "" {
		return fmt.Sprintf("Stage %d", r.StageIndex)
	}
	return fmt.Sprintf("Stage %d: %s", r.StageIndex, r.Operator)
}
