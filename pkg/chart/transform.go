package chart

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/wonderfulspam/stage-smith/pkg/document"
)

const (
	barBorderWidth  = 1
	lineBorderWidth = 2
	pieBorderWidth  = 1
)

// TransformToChartData reshapes data for chartType. cfg may be nil. The only
// error is a *document.DepthError when a document nests deeper than
// cfg.MaxDepth (or document.DefaultMaxDepth).
func TransformToChartData(data []document.Value, chartType ChartType, cfg *ChartConfig) (Model, error) {
	if cfg == nil {
		cfg = &ChartConfig{}
	}
	if err := document.CheckDepth(cfg.MaxDepth, data...); err != nil {
		return nil, err
	}

	switch chartType {
	case ChartTypeBar:
		return transformToBarChart(data, cfg), nil
	case ChartTypePie:
		return transformToPieChart(data, cfg), nil
	case ChartTypeLine:
		return transformToLineChart(data, cfg), nil
	default:
		return transformToTable(data), nil
	}
}

func transformToBarChart(data []document.Value, cfg *ChartConfig) *ChartData {
	result := &ChartData{Type: ChartTypeBar, Labels: []string{}, Datasets: []Dataset{}}
	if len(data) == 0 {
		return result
	}

	first := data[0]
	labelField, hasLabel := firstField(first, func(f document.Field) bool {
		return f.Value.Kind() == document.KindString &&
			!strings.Contains(f.Name, "date") && !strings.Contains(f.Name, "time")
	})
	numeric := numericFields(first)

	if !hasLabel || len(numeric) == 0 {
		result.Labels = indexLabels("Item", len(data))
		result.Datasets = []Dataset{fallbackDataset(data, cfg, barBorderWidth)}
		return result
	}

	result.Labels = categoryLabels(data, labelField)
	result.Datasets = seriesDatasets(data, numeric, cfg, barBorderWidth)
	return result
}

func transformToPieChart(data []document.Value, cfg *ChartConfig) *ChartData {
	result := &ChartData{Type: ChartTypePie, Labels: []string{}, Datasets: []Dataset{}}
	if len(data) == 0 {
		return result
	}

	first := data[0]
	labelField, hasLabel := firstField(first, func(f document.Field) bool {
		return f.Value.Kind() == document.KindString
	})
	valueField, hasValue := firstField(first, func(f document.Field) bool {
		return f.Value.Kind() == document.KindNumber
	})

	slices := Colors(cfg.Colors, len(data))
	dataset := Dataset{
		Label:           "Value",
		BackgroundColor: Each(slices),
		BorderColor:     Each(append([]string(nil), slices...)),
		BorderWidth:     pieBorderWidth,
	}

	if !hasLabel || !hasValue {
		result.Labels = indexLabels("Item", len(data))
		dataset.Data = firstNumericValues(data)
		result.Datasets = []Dataset{dataset}
		return result
	}

	result.Labels = categoryLabels(data, labelField)
	dataset.Label = valueField
	dataset.Data = fieldValues(data, valueField)
	result.Datasets = []Dataset{dataset}
	return result
}

func transformToLineChart(data []document.Value, cfg *ChartConfig) *ChartData {
	result := &ChartData{Type: ChartTypeLine, Labels: []string{}, Datasets: []Dataset{}}
	if len(data) == 0 {
		return result
	}

	first := data[0]
	timeField, hasTime := firstField(first, func(f document.Field) bool {
		return IsTimeField(f.Name)
	})
	numeric := numericFields(first)

	if !hasTime || len(numeric) == 0 {
		result.Labels = indexLabels("Point", len(data))
		result.Datasets = []Dataset{fallbackDataset(data, cfg, lineBorderWidth)}
		return result
	}

	sorted := make([]document.Value, len(data))
	copy(sorted, data)
	sort.SliceStable(sorted, func(i, j int) bool {
		return timeLess(fieldOf(sorted[i], timeField), fieldOf(sorted[j], timeField))
	})

	result.Labels = make([]string, len(sorted))
	for i, doc := range sorted {
		result.Labels[i] = fieldOf(doc, timeField).Text()
	}
	result.Datasets = seriesDatasets(sorted, numeric, cfg, lineBorderWidth)
	return result
}

// timeLess orders two time values when both are strings or both are numbers.
// Any other pairing is a tie, which the stable sort leaves in input order.
func timeLess(a, b document.Value) bool {
	if as, ok := a.AsString(); ok {
		if bs, ok := b.AsString(); ok {
			return as < bs
		}
		return false
	}
	if an, ok := a.AsNumber(); ok {
		if bn, ok := b.AsNumber(); ok {
			return an < bn
		}
	}
	return false
}

func transformToTable(data []document.Value) *TableData {
	result := &TableData{Columns: []string{}, Rows: [][]string{}}
	if len(data) == 0 {
		return result
	}

	result.Columns = data[0].Keys()
	if result.Columns == nil {
		result.Columns = []string{}
	}

	result.Rows = make([][]string, len(data))
	for i, doc := range data {
		row := make([]string, len(result.Columns))
		for j, column := range result.Columns {
			row[j] = CellText(fieldOf(doc, column))
		}
		result.Rows[i] = row
	}
	return result
}

// CellText renders a value for a table cell. Null and absent values are
// empty, containers are compact JSON.
func CellText(v document.Value) string {
	return v.Text()
}

func firstField(record document.Value, pred func(document.Field) bool) (string, bool) {
	for _, f := range record.Fields() {
		if pred(f) {
			return f.Name, true
		}
	}
	return "", false
}

func numericFields(record document.Value) []string {
	var names []string
	for _, f := range record.Fields() {
		if f.Value.Kind() == document.KindNumber {
			names = append(names, f.Name)
		}
	}
	return names
}

// fieldOf returns the named field of doc, or null when doc is not a record or
// lacks the field.
func fieldOf(doc document.Value, name string) document.Value {
	v, _ := doc.Get(name)
	return v
}

func indexLabels(prefix string, n int) []string {
	labels := make([]string, n)
	for i := range labels {
		labels[i] = fmt.Sprintf("%s %d", prefix, i+1)
	}
	return labels
}

func categoryLabels(data []document.Value, field string) []string {
	labels := make([]string, len(data))
	for i, doc := range data {
		label := fieldOf(doc, field).Text()
		if label == "" {
			label = "Unknown"
		}
		labels[i] = label
	}
	return labels
}

// numberOr0 returns the finite number held by v, or 0.
func numberOr0(v document.Value) float64 {
	n, ok := v.AsNumber()
	if !ok || math.IsNaN(n) {
		return 0
	}
	return n
}

func fieldValues(data []document.Value, field string) []float64 {
	values := make([]float64, len(data))
	for i, doc := range data {
		values[i] = numberOr0(fieldOf(doc, field))
	}
	return values
}

func firstNumericValues(data []document.Value) []float64 {
	values := make([]float64, len(data))
	for i, doc := range data {
		for _, f := range doc.Fields() {
			if f.Value.Kind() == document.KindNumber {
				values[i] = numberOr0(f.Value)
				break
			}
		}
	}
	return values
}

func seriesDatasets(data []document.Value, fields []string, cfg *ChartConfig, borderWidth int) []Dataset {
	datasets := make([]Dataset, len(fields))
	for i, field := range fields {
		color := ColorAt(cfg.Colors, i)
		datasets[i] = Dataset{
			Label:           field,
			Data:            fieldValues(data, field),
			BackgroundColor: Solid(color),
			BorderColor:     Solid(color),
			BorderWidth:     borderWidth,
		}
	}
	return datasets
}

func fallbackDataset(data []document.Value, cfg *ChartConfig, borderWidth int) Dataset {
	label := cfg.YAxisLabel
	if label == "" {
		label = "Value"
	}
	color := ColorAt(cfg.Colors, 0)
	return Dataset{
		Label:           label,
		Data:            firstNumericValues(data),
		BackgroundColor: Solid(color),
		BorderColor:     Solid(color),
		BorderWidth:     borderWidth,
	}
}
