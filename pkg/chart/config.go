package chart

import "github.com/wonderfulspam/stage-smith/pkg/document"

// GetChartConfig returns the presentation defaults for chartType. data is
// accepted for symmetry with the transform and is not inspected.
func GetChartConfig(data []document.Value, chartType ChartType, title string) ChartConfig {
	cfg := ChartConfig{
		Type:       chartType,
		Title:      title,
		Colors:     Palette(),
		ShowLegend: true,
		ShowGrid:   true,
	}
	if cfg.Title == "" {
		cfg.Title = chartType.Title() + " Chart"
	}

	switch chartType {
	case ChartTypeBar:
		cfg.XAxisLabel = "Category"
		cfg.YAxisLabel = "Value"
	case ChartTypeLine:
		cfg.XAxisLabel = "Time"
		cfg.YAxisLabel = "Value"
	case ChartTypePie:
		cfg.ShowGrid = false
	case ChartTypeTable:
		cfg.ShowLegend = false
		cfg.ShowGrid = false
	}

	return cfg
}
