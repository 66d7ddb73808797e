// Package renderer formats diff results, chart models and stage run reports
// as text tables, JSON, YAML, Mermaid or DOT.
package renderer

import (
	"bytes"
	"encoding/json"
	"fmt"

	fcolor "github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"github.com/wonderfulspam/stage-smith/pkg/chart"
	"github.com/wonderfulspam/stage-smith/pkg/differ"
	"github.com/wonderfulspam/stage-smith/pkg/document"
	"github.com/wonderfulspam/stage-smith/pkg/inspector"
	"github.com/wonderfulspam/stage-smith/pkg/parser"
)

// Renderer renders results in a single output format.
type Renderer struct {
	opts   Options
	colors map[differ.ChangeType]*fcolor.Color
	visual *VisualRenderer
}

// New creates a Renderer. An empty format selects the table format.
func New(opts Options) *Renderer {
	if opts.Format == "" {
		opts.Format = FormatTable
	}

	colors := make(map[differ.ChangeType]*fcolor.Color, len(differ.ChangeTypes))
	for _, t := range differ.ChangeTypes {
		c := fcolor.New(colorAttribute(t.Color()))
		if !opts.Color {
			c.DisableColor()
		}
		colors[t] = c
	}

	return &Renderer{
		opts:   opts,
		colors: colors,
		visual: NewVisualRenderer(opts.ChangedOnly),
	}
}

func (r *Renderer) Format() Format {
	return r.opts.Format
}

func colorAttribute(name string) fcolor.Attribute {
	switch name {
	case "green":
		return fcolor.FgGreen
	case "red":
		return fcolor.FgRed
	case "yellow":
		return fcolor.FgYellow
	case "faint":
		return fcolor.Faint
	default:
		return fcolor.Reset
	}
}

// RenderDiff formats a diff result.
func (r *Renderer) RenderDiff(result *differ.DiffResult) (string, error) {
	if result == nil {
		return "", fmt.Errorf("no diff result to render")
	}

	switch r.opts.Format {
	case FormatTable:
		return r.formatDiffTable(result), nil
	case FormatJSON, FormatYAML:
		if !r.filtering() {
			return Encode(result, r.opts.Format)
		}
		return Encode(r.filteredDiff(result), r.opts.Format)
	case FormatMermaid, FormatDOT:
		return r.visual.RenderDiffGraph(result, VisualFormat(r.opts.Format))
	default:
		return "", fmt.Errorf("unsupported format: %s", r.opts.Format)
	}
}

// RenderChart formats a chart model together with its presentation config.
func (r *Renderer) RenderChart(model chart.Model, cfg chart.ChartConfig) (string, error) {
	if model == nil {
		return "", fmt.Errorf("no chart to render")
	}

	switch r.opts.Format {
	case FormatTable:
		return r.formatChartTable(model, cfg), nil
	case FormatJSON, FormatYAML:
		return Encode(chartEnvelope{Type: model.Kind(), Config: cfg, Data: model}, r.opts.Format)
	case FormatMermaid:
		return r.visual.RenderChartDiagram(model, cfg)
	default:
		return "", fmt.Errorf("format %s is not available for charts (supported: table, json, yaml, mermaid)", r.opts.Format)
	}
}

type chartEnvelope struct {
	Type   chart.ChartType   `json:"type" yaml:"type"`
	Config chart.ChartConfig `json:"config" yaml:"config"`
	Data   chart.Model       `json:"data" yaml:"data"`
}

// RenderReport formats an inspection report.
func (r *Renderer) RenderReport(report *inspector.Report) (string, error) {
	if report == nil {
		return "", fmt.Errorf("no report to render")
	}

	switch r.opts.Format {
	case FormatTable:
		return r.formatReportTable(report), nil
	case FormatJSON, FormatYAML:
		return Encode(report, r.opts.Format)
	case FormatMermaid, FormatDOT:
		return r.visual.RenderReportGraph(report, VisualFormat(r.opts.Format))
	default:
		return "", fmt.Errorf("unsupported format: %s", r.opts.Format)
	}
}

// RenderStageRun formats a normalized stage run as JSON or YAML.
func (r *Renderer) RenderStageRun(run *parser.StageRun) (string, error) {
	if run == nil {
		return "", fmt.Errorf("no stage run to render")
	}
	switch r.opts.Format {
	case FormatYAML:
		return Encode(run, FormatYAML)
	case FormatJSON, FormatTable:
		return Encode(run, FormatJSON)
	default:
		return "", fmt.Errorf("format %s is not available for stage runs (supported: json, yaml)", r.opts.Format)
	}
}

// RenderValue formats a single document. Table output prints scalars bare
// and containers as indented JSON.
func (r *Renderer) RenderValue(v document.Value) (string, error) {
	switch r.opts.Format {
	case FormatYAML:
		return Encode(v, FormatYAML)
	case FormatJSON:
		return Encode(v, FormatJSON)
	case FormatTable:
		if !v.IsContainer() {
			return v.Text() + "\n", nil
		}
		return Encode(v, FormatJSON)
	default:
		return "", fmt.Errorf("format %s is not available for documents (supported: table, json, yaml)", r.opts.Format)
	}
}

// Encode writes v as indented JSON or as YAML.
func Encode(v any, format Format) (string, error) {
	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return "", fmt.Errorf("marshaling JSON: %w", err)
		}
		return string(data) + "\n", nil
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return "", fmt.Errorf("marshaling YAML: %w", err)
		}
		if err := enc.Close(); err != nil {
			return "", fmt.Errorf("marshaling YAML: %w", err)
		}
		return buf.String(), nil
	default:
		return "", fmt.Errorf("unsupported format: %s", format)
	}
}

func (r *Renderer) filtering() bool {
	return r.opts.ChangedOnly || len(r.opts.Only) > 0
}

// selectChanges returns the flattened changes that pass the filters.
func (r *Renderer) selectChanges(result *differ.DiffResult) []*differ.DiffChange {
	changes := result.Changes
	if r.opts.ChangedOnly {
		changes = differ.FilterChangesByTypes(changes, differ.ChangeTypeAdded, differ.ChangeTypeRemoved, differ.ChangeTypeModified)
	}
	return differ.FilterChangesByTypes(changes, r.opts.Only...)
}

func (r *Renderer) filteredDiff(result *differ.DiffResult) filteredDiff {
	out := filteredDiff{
		Summary:     result.Summary,
		HasChanges:  result.HasChanges,
		Description: result.Description,
		Changes:     []changeView{},
	}
	for _, c := range r.selectChanges(result) {
		view := changeView{Type: c.Type, Path: c.Path}
		if c.OldValue != nil {
			view.OldValue = *c.OldValue
		}
		if c.NewValue != nil {
			view.NewValue = *c.NewValue
		}
		out.Changes = append(out.Changes, view)
	}
	return out
}
