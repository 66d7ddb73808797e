// Package chart classifies result sets into chart types and reshapes them into
// chart series or tables ready for rendering.
package chart

import (
	"encoding/json"
	"fmt"
	"strings"
)

type ChartType string

const (
	ChartTypeBar   ChartType = "bar"
	ChartTypePie   ChartType = "pie"
	ChartTypeLine  ChartType = "line"
	ChartTypeTable ChartType = "table"
)

// ChartTypes lists the supported chart types.
var ChartTypes = []ChartType{ChartTypeBar, ChartTypePie, ChartTypeLine, ChartTypeTable}

// ParseChartType parses a chart type name, ignoring case.
func ParseChartType(s string) (ChartType, error) {
	t := ChartType(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range ChartTypes {
		if t == known {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown chart type '%s' (want bar, pie, line or table)", s)
}

// Title returns the type name with its first letter upper-cased.
func (t ChartType) Title() string {
	if t == "" {
		return ""
	}
	return strings.ToUpper(string(t[:1])) + string(t[1:])
}

// ChartConfig holds presentation settings for a chart. MaxDepth bounds the
// nesting of documents accepted by TransformToChartData; zero selects the
// package default.
type ChartConfig struct {
	Type       ChartType `json:"type" yaml:"type"`
	Title      string    `json:"title,omitempty" yaml:"title,omitempty"`
	XAxisLabel string    `json:"xAxisLabel,omitempty" yaml:"xAxisLabel,omitempty"`
	YAxisLabel string    `json:"yAxisLabel,omitempty" yaml:"yAxisLabel,omitempty"`
	Colors     []string  `json:"colors,omitempty" yaml:"colors,omitempty"`
	ShowLegend bool      `json:"showLegend" yaml:"showLegend"`
	ShowGrid   bool      `json:"showGrid" yaml:"showGrid"`
	MaxDepth   int       `json:"-" yaml:"-"`
}

// ColorSpec is either one color for a whole dataset or one color per item.
type ColorSpec struct {
	Single  string
	PerItem []string
}

// Solid returns a ColorSpec that paints the whole dataset in c.
func Solid(c string) ColorSpec { return ColorSpec{Single: c} }

// Each returns a ColorSpec with one color per item.
func Each(colors []string) ColorSpec { return ColorSpec{PerItem: colors} }

// IsPerItem reports whether c holds one color per item.
func (c ColorSpec) IsPerItem() bool { return c.PerItem != nil }

// At returns the color of item i.
func (c ColorSpec) At(i int) string {
	if c.PerItem == nil {
		return c.Single
	}
	if i >= 0 && i < len(c.PerItem) {
		return c.PerItem[i]
	}
	return ""
}

func (c ColorSpec) MarshalJSON() ([]byte, error) {
	if c.PerItem != nil {
		return json.Marshal(c.PerItem)
	}
	return json.Marshal(c.Single)
}

func (c *ColorSpec) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*c = ColorSpec{PerItem: list}
		return nil
	}
	var single string
	if err := json.Unmarshal(data, &single); err != nil {
		return fmt.Errorf("color must be a string or a list of strings: %w", err)
	}
	*c = ColorSpec{Single: single}
	return nil
}

func (c ColorSpec) MarshalYAML() (interface{}, error) {
	if c.PerItem != nil {
		return c.PerItem, nil
	}
	return c.Single, nil
}

type Dataset struct {
	Label           string    `json:"label" yaml:"label"`
	Data            []float64 `json:"data" yaml:"data"`
	BackgroundColor ColorSpec `json:"backgroundColor" yaml:"backgroundColor"`
	BorderColor     ColorSpec `json:"borderColor" yaml:"borderColor"`
	BorderWidth     int       `json:"borderWidth" yaml:"borderWidth"`
}

// Model is the result of TransformToChartData: a *ChartData or a *TableData.
type Model interface {
	Kind() ChartType
	isModel()
}

// ChartData is a labelled series set for bar, line and pie charts.
type ChartData struct {
	Type     ChartType `json:"-" yaml:"-"`
	Labels   []string  `json:"labels" yaml:"labels"`
	Datasets []Dataset `json:"datasets" yaml:"datasets"`
}

func (c *ChartData) Kind() ChartType { return c.Type }
func (*ChartData) isModel()          {}

// TableData is a grid of display strings.
type TableData struct {
	Columns []string   `json:"columns" yaml:"columns"`
	Rows    [][]string `json:"rows" yaml:"rows"`
}

func (*TableData) Kind() ChartType { return ChartTypeTable }
func (*TableData) isModel()        {}
