package renderer

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/wonderfulspam/stage-smith/pkg/chart"
	"github.com/wonderfulspam/stage-smith/pkg/differ"
	"github.com/wonderfulspam/stage-smith/pkg/document"
	"github.com/wonderfulspam/stage-smith/pkg/inspector"
)

// VisualFormat represents supported visual diagram formats
type VisualFormat string

const (
	VisualDOT     VisualFormat = VisualFormat(FormatDOT)
	VisualMermaid VisualFormat = VisualFormat(FormatMermaid)
)

const maxLabelValue = 40

// VisualRenderer handles generation of diagrams for diffs, charts and reports
type VisualRenderer struct {
	changedOnly bool
}

// NewVisualRenderer creates a new VisualRenderer. With changedOnly set,
// unchanged subtrees are left out of diff graphs.
func NewVisualRenderer(changedOnly bool) *VisualRenderer {
	return &VisualRenderer{changedOnly: changedOnly}
}

// RenderDiffGraph draws the change tree of a diff
func (vr *VisualRenderer) RenderDiffGraph(result *differ.DiffResult, format VisualFormat) (string, error) {
	switch format {
	case VisualDOT:
		return vr.generateDiffDOTGraph(result), nil
	case VisualMermaid:
		return vr.generateDiffMermaidGraph(result), nil
	default:
		return "", fmt.Errorf("unsupported visual format: %s", format)
	}
}

// RenderReportGraph draws the stages of a report and the changes between them
func (vr *VisualRenderer) RenderReportGraph(report *inspector.Report, format VisualFormat) (string, error) {
	switch format {
	case VisualDOT:
		return vr.generateReportDOTGraph(report), nil
	case VisualMermaid:
		return vr.generateReportMermaidGraph(report), nil
	default:
		return "", fmt.Errorf("unsupported visual format: %s", format)
	}
}

// RenderChartDiagram draws a chart model as a Mermaid pie or xychart
func (vr *VisualRenderer) RenderChartDiagram(model chart.Model, cfg chart.ChartConfig) (string, error) {
	data, ok := model.(*chart.ChartData)
	if !ok {
		return "", fmt.Errorf("mermaid output is not available for %s charts", model.Kind())
	}

	title := cfg.Title
	if title == "" {
		title = data.Kind().Title() + " Chart"
	}

	var buf bytes.Buffer
	if data.Kind() == chart.ChartTypePie {
		buf.WriteString(fmt.Sprintf("pie title %s\n", mermaidText(title)))
		var values []float64
		if len(data.Datasets) > 0 {
			values = data.Datasets[0].Data
		}
		for i, label := range data.Labels {
			value := 0.0
			if i < len(values) {
				value = values[i]
			}
			buf.WriteString(fmt.Sprintf("    %s : %s\n", mermaidQuote(label), document.FormatNumber(value)))
		}
		return buf.String(), nil
	}

	series := "bar"
	if data.Kind() == chart.ChartTypeLine {
		series = "line"
	}

	labels := make([]string, len(data.Labels))
	for i, label := range data.Labels {
		labels[i] = mermaidQuote(label)
	}

	buf.WriteString("xychart-beta\n")
	buf.WriteString(fmt.Sprintf("    title %s\n", mermaidQuote(title)))
	if cfg.XAxisLabel != "" {
		buf.WriteString(fmt.Sprintf("    x-axis %s [%s]\n", mermaidQuote(cfg.XAxisLabel), strings.Join(labels, ", ")))
	} else {
		buf.WriteString(fmt.Sprintf("    x-axis [%s]\n", strings.Join(labels, ", ")))
	}
	if cfg.YAxisLabel != "" {
		buf.WriteString(fmt.Sprintf("    y-axis %s\n", mermaidQuote(cfg.YAxisLabel)))
	}
	for _, ds := range data.Datasets {
		values := make([]string, len(ds.Data))
		for i, v := range ds.Data {
			values[i] = document.FormatNumber(v)
		}
		buf.WriteString(fmt.Sprintf("    %s [%s]\n", series, strings.Join(values, ", ")))
	}

	return buf.String(), nil
}

type graphNode struct {
	id     string
	change *differ.DiffChange
	parent string
}

// collectNodes walks the change tree in pre-order and assigns node ids
func (vr *VisualRenderer) collectNodes(root *differ.DiffChange) []graphNode {
	var nodes []graphNode
	var walk func(c *differ.DiffChange, parent string)
	walk = func(c *differ.DiffChange, parent string) {
		if vr.changedOnly && c.Type == differ.ChangeTypeUnchanged && parent != "" {
			return
		}
		id := fmt.Sprintf("n%d", len(nodes))
		nodes = append(nodes, graphNode{id: id, change: c, parent: parent})
		for _, child := range c.Children {
			walk(child, id)
		}
	}
	if root != nil {
		walk(root, "")
	}
	return nodes
}

func nodeLabel(c *differ.DiffChange) string {
	label := c.Type.Symbol() + " " + lastSegment(c.Path)
	if detail := changeDetail(c); detail != "" {
		label += ": " + truncate(detail, maxLabelValue)
	}
	return label
}

func lastSegment(path string) string {
	segments, ok := document.ParsePath(path)
	if !ok || len(segments) == 0 {
		return differ.FormatPath(path)
	}
	return segments[len(segments)-1].String()
}

// generateDiffDOTGraph creates a DOT graph of the change tree
func (vr *VisualRenderer) generateDiffDOTGraph(result *differ.DiffResult) string {
	var buf bytes.Buffer

	buf.WriteString("digraph diff {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  node [shape=box, style=\"filled,rounded\"];\n")
	buf.WriteString("  edge [arrowhead=open];\n\n")

	nodes := vr.collectNodes(result.Root)
	for _, n := range nodes {
		buf.WriteString(fmt.Sprintf("  %s [label=%s, fillcolor=%s];\n", n.id, dotQuote(nodeLabel(n.change)), vr.getDOTNodeColor(n.change.Type)))
	}
	if len(nodes) > 1 {
		buf.WriteString("\n")
	}
	for _, n := range nodes {
		if n.parent != "" {
			buf.WriteString(fmt.Sprintf("  %s -> %s;\n", n.parent, n.id))
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

// generateDiffMermaidGraph creates a Mermaid flowchart of the change tree
func (vr *VisualRenderer) generateDiffMermaidGraph(result *differ.DiffResult) string {
	var buf bytes.Buffer

	buf.WriteString("flowchart LR\n")

	nodes := vr.collectNodes(result.Root)
	for _, n := range nodes {
		buf.WriteString(fmt.Sprintf("  %s[%s]:::%s\n", n.id, mermaidQuote(nodeLabel(n.change)), n.change.Type))
	}
	for _, n := range nodes {
		if n.parent != "" {
			buf.WriteString(fmt.Sprintf("  %s --> %s\n", n.parent, n.id))
		}
	}

	buf.WriteString("\n  classDef added fill:#d1fae5,stroke:#10b981;\n")
	buf.WriteString("  classDef removed fill:#fee2e2,stroke:#ef4444;\n")
	buf.WriteString("  classDef modified fill:#fef3c7,stroke:#f59e0b;\n")
	buf.WriteString("  classDef unchanged fill:#f3f4f6,stroke:#6b7280;\n")

	return buf.String()
}

func stageLabel(stage inspector.StageReport) string {
	op := stage.Operator
	if op == "" {
		op = "stage"
	}
	return fmt.Sprintf("%d: %s\n%s, %d docs", stage.StageIndex, op, stage.ChartType, stage.Count)
}

// generateReportDOTGraph creates a DOT graph with one node per stage
func (vr *VisualRenderer) generateReportDOTGraph(report *inspector.Report) string {
	var buf bytes.Buffer

	buf.WriteString("digraph stages {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  node [shape=box, style=rounded];\n")
	buf.WriteString("  edge [arrowhead=open];\n\n")

	for _, stage := range report.Stages {
		buf.WriteString(fmt.Sprintf("  s%d [label=%s];\n", stage.StageIndex, dotQuote(stageLabel(stage))))
	}
	for i := 1; i < len(report.Stages); i++ {
		prev, stage := report.Stages[i-1], report.Stages[i]
		color := "gray"
		if stage.Diff != nil && stage.Diff.HasChanges {
			color = "orange"
		}
		buf.WriteString(fmt.Sprintf("  s%d -> s%d [label=%s, color=%s];\n",
			prev.StageIndex, stage.StageIndex, dotQuote(changeCounts(stage.Diff)), color))
	}

	buf.WriteString("}\n")
	return buf.String()
}

// generateReportMermaidGraph creates a Mermaid flowchart with one node per stage
func (vr *VisualRenderer) generateReportMermaidGraph(report *inspector.Report) string {
	var buf bytes.Buffer

	buf.WriteString("flowchart LR\n")
	for _, stage := range report.Stages {
		label := strings.ReplaceAll(stageLabel(stage), "\n", "<br/>")
		buf.WriteString(fmt.Sprintf("  S%d[%s]\n", stage.StageIndex, mermaidQuote(label)))
	}
	for i := 1; i < len(report.Stages); i++ {
		prev, stage := report.Stages[i-1], report.Stages[i]
		buf.WriteString(fmt.Sprintf("  S%d -->|%s| S%d\n",
			prev.StageIndex, mermaidQuote(changeCounts(stage.Diff)), stage.StageIndex))
	}

	return buf.String()
}

func (vr *VisualRenderer) getDOTNodeColor(t differ.ChangeType) string {
	switch t {
	case differ.ChangeTypeAdded:
		return "palegreen"
	case differ.ChangeTypeRemoved:
		return "lightcoral"
	case differ.ChangeTypeModified:
		return "lightgoldenrod"
	default:
		return "white"
	}
}

func dotQuote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	s = strings.ReplaceAll(s, "\n", `\n`)
	return `"` + s + `"`
}

func mermaidQuote(s string) string {
	return `"` + mermaidText(s) + `"`
}

// mermaidText escapes characters Mermaid treats specially inside labels
func mermaidText(s string) string {
	s = strings.ReplaceAll(s, `"`, "#quot;")
	s = strings.ReplaceAll(s, "\n", " ")
	return s
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}
