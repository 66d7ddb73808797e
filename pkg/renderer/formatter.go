package renderer

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/mitchellh/go-wordwrap"

	"github.com/wonderfulspam/stage-smith/pkg/chart"
	"github.com/wonderfulspam/stage-smith/pkg/differ"
	"github.com/wonderfulspam/stage-smith/pkg/document"
	"github.com/wonderfulspam/stage-smith/pkg/inspector"
)

// formatDiffTable formats a diff as an indented change listing
func (r *Renderer) formatDiffTable(result *differ.DiffResult) string {
	var buf bytes.Buffer

	buf.WriteString("Document Diff\n")
	buf.WriteString("=============\n\n")

	r.writeSummary(&buf, result)

	changes := r.selectChanges(result)
	buf.WriteString("\nChanges:\n")
	buf.WriteString("--------\n")
	if len(changes) == 0 {
		buf.WriteString("  (none)\n")
		return buf.String()
	}
	r.writeChanges(&buf, changes, "  ")

	return buf.String()
}

func (r *Renderer) writeSummary(buf *bytes.Buffer, result *differ.DiffResult) {
	s := result.Summary
	buf.WriteString("Summary:\n")
	buf.WriteString(fmt.Sprintf("  %s Added: %d\n", r.symbol(differ.ChangeTypeAdded), s.Added))
	buf.WriteString(fmt.Sprintf("  %s Removed: %d\n", r.symbol(differ.ChangeTypeRemoved), s.Removed))
	buf.WriteString(fmt.Sprintf("  %s Modified: %d\n", r.symbol(differ.ChangeTypeModified), s.Modified))
	buf.WriteString(fmt.Sprintf("  %s Unchanged: %d\n", r.symbol(differ.ChangeTypeUnchanged), s.Unchanged))
	buf.WriteString(fmt.Sprintf("  Total Nodes: %d\n", s.Total))
	buf.WriteString(fmt.Sprintf("  %s\n", result.Description))
}

func (r *Renderer) symbol(t differ.ChangeType) string {
	c, ok := r.colors[t]
	if !ok {
		return t.Symbol()
	}
	return c.Sprint(t.Symbol())
}

func (r *Renderer) writeChanges(buf *bytes.Buffer, changes []*differ.DiffChange, prefix string) {
	for _, change := range changes {
		indent := prefix + strings.Repeat("  ", pathDepth(change.Path))
		head := fmt.Sprintf("%s%s %s", indent, r.symbol(change.Type), differ.FormatPath(change.Path))

		detail := changeDetail(change)
		if detail == "" {
			buf.WriteString(head + "\n")
			continue
		}

		// symbol, space and path, then ": "
		used := len(indent) + 2 + lipgloss.Width(differ.FormatPath(change.Path)) + 2
		lines := r.wrap(detail, used)
		buf.WriteString(head + ": " + lines[0] + "\n")
		for _, line := range lines[1:] {
			buf.WriteString(indent + "    " + line + "\n")
		}
	}
}

// wrap splits s to fit the configured width after used columns. It always
// returns at least one line.
func (r *Renderer) wrap(s string, used int) []string {
	if r.opts.WrapWidth <= 0 || used+lipgloss.Width(s) <= r.opts.WrapWidth {
		return []string{s}
	}
	width := r.opts.WrapWidth - used
	if width < 20 {
		width = 20
	}
	return strings.Split(wordwrap.WrapString(s, uint(width)), "\n")
}

func pathDepth(path string) int {
	segments, ok := document.ParsePath(path)
	if !ok {
		return 0
	}
	return len(segments)
}

func changeDetail(change *differ.DiffChange) string {
	if len(change.Children) > 0 {
		return ""
	}
	switch change.Type {
	case differ.ChangeTypeAdded:
		return valueText(change.NewValue)
	case differ.ChangeTypeRemoved:
		return valueText(change.OldValue)
	case differ.ChangeTypeModified:
		return valueText(change.OldValue) + " → " + valueText(change.NewValue)
	default:
		if change.OldValue != nil && change.OldValue.IsContainer() {
			return ""
		}
		return valueText(change.OldValue)
	}
}

func valueText(v *document.Value) string {
	if v == nil {
		return "(absent)"
	}
	return v.String()
}

// formatChartTable formats a chart model as a text table
func (r *Renderer) formatChartTable(model chart.Model, cfg chart.ChartConfig) string {
	var buf bytes.Buffer

	title := cfg.Title
	if title == "" {
		title = model.Kind().Title() + " Chart"
	}
	buf.WriteString(title + "\n")
	buf.WriteString(strings.Repeat("=", lipgloss.Width(title)) + "\n\n")

	switch m := model.(type) {
	case *chart.ChartData:
		if cfg.XAxisLabel != "" || cfg.YAxisLabel != "" {
			buf.WriteString(fmt.Sprintf("X: %s  Y: %s\n\n", orDash(cfg.XAxisLabel), orDash(cfg.YAxisLabel)))
		}
		headers := []string{orDefault(cfg.XAxisLabel, "Label")}
		for _, ds := range m.Datasets {
			headers = append(headers, ds.Label)
		}
		rows := make([][]string, len(m.Labels))
		for i, label := range m.Labels {
			row := []string{label}
			for _, ds := range m.Datasets {
				cell := ""
				if i < len(ds.Data) {
					cell = document.FormatNumber(ds.Data[i])
				}
				row = append(row, cell)
			}
			rows[i] = row
		}
		writeTable(&buf, headers, rows)

		if cfg.ShowLegend && len(m.Datasets) > 0 {
			buf.WriteString("\nLegend:\n")
			for _, ds := range m.Datasets {
				buf.WriteString(fmt.Sprintf("  %s %s\n", legendColor(ds), ds.Label))
			}
		}
	case *chart.TableData:
		writeTable(&buf, m.Columns, m.Rows)
		buf.WriteString(fmt.Sprintf("\n%s rows\n", humanize.Comma(int64(len(m.Rows)))))
	}

	return buf.String()
}

func legendColor(ds chart.Dataset) string {
	if ds.BackgroundColor.IsPerItem() {
		return "[" + strings.Join(ds.BackgroundColor.PerItem, " ") + "]"
	}
	return "[" + ds.BackgroundColor.Single + "]"
}

// formatReportTable formats an inspection report as a stage table followed
// by the changes between neighbouring stages
func (r *Renderer) formatReportTable(report *inspector.Report) string {
	var buf bytes.Buffer

	buf.WriteString("Stage Run Report\n")
	buf.WriteString("================\n\n")

	buf.WriteString(fmt.Sprintf("Stages: %d\n", len(report.Stages)))
	buf.WriteString(fmt.Sprintf("Total Execution Time: %.2fms\n", report.TotalExecutionTime))
	buf.WriteString(fmt.Sprintf("Changes: %s %d  %s %d  %s %d\n\n",
		r.symbol(differ.ChangeTypeAdded), report.Changes.Added,
		r.symbol(differ.ChangeTypeRemoved), report.Changes.Removed,
		r.symbol(differ.ChangeTypeModified), report.Changes.Modified))

	headers := []string{"#", "Operator", "Count", "Time (ms)", "Chart", "Rule", "Changes"}
	rows := make([][]string, 0, len(report.Stages))
	for _, stage := range report.Stages {
		rows = append(rows, []string{
			fmt.Sprintf("%d", stage.StageIndex),
			orDash(stage.Operator),
			humanize.Comma(int64(stage.Count)),
			fmt.Sprintf("%.2f", stage.ExecutionTime),
			string(stage.ChartType),
			orDash(stage.Rule),
			changeCounts(stage.Diff),
		})
	}
	writeTable(&buf, headers, rows)

	for i, stage := range report.Stages {
		if stage.Diff == nil || !stage.Diff.HasChanges {
			continue
		}
		changes := r.selectChanges(stage.Diff)
		if len(changes) == 0 {
			continue
		}
		previous := report.Stages[i-1]
		buf.WriteString(fmt.Sprintf("\nStage %d (%s) vs stage %d (%s):\n",
			stage.StageIndex, orDash(stage.Operator), previous.StageIndex, orDash(previous.Operator)))
		buf.WriteString(fmt.Sprintf("  %s\n", stage.Diff.Description))
		r.writeChanges(&buf, changes, "  ")
	}

	return buf.String()
}

func changeCounts(diff *differ.DiffResult) string {
	if diff == nil {
		return "-"
	}
	if !diff.HasChanges {
		return "none"
	}
	s := diff.Summary
	return fmt.Sprintf("+%d -%d ~%d", s.Added, s.Removed, s.Modified)
}

// writeTable writes a pipe separated table with padded columns
func writeTable(buf *bytes.Buffer, headers []string, rows [][]string) {
	colWidths := make([]int, len(headers))
	for i, h := range headers {
		colWidths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(colWidths) {
				if w := lipgloss.Width(cell); w > colWidths[i] {
					colWidths[i] = w
				}
			}
		}
	}

	writeRow := func(cells []string) {
		parts := make([]string, len(colWidths))
		for i := range colWidths {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			parts[i] = cell + strings.Repeat(" ", colWidths[i]-lipgloss.Width(cell))
		}
		buf.WriteString(strings.TrimRight(strings.Join(parts, " | "), " ") + "\n")
	}

	writeRow(headers)
	dividers := make([]string, len(colWidths))
	for i, w := range colWidths {
		dividers[i] = strings.Repeat("-", w)
	}
	buf.WriteString(strings.Join(dividers, "-+-") + "\n")
	for _, row := range rows {
		writeRow(row)
	}
}

func orDash(s string) string {
	return orDefault(s, "-")
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
