package chart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonderfulspam/stage-smith/pkg/document"
)

func docs(t *testing.T, s string) []document.Value {
	t.Helper()
	v, err := document.DecodeJSON([]byte(s))
	require.NoError(t, err)
	require.Equal(t, document.KindSequence, v.Kind())
	return v.Items()
}

func TestDetectChartType(t *testing.T) {
	tests := []struct {
		name string
		data string
		want ChartType
	}{
		{"empty", `[]`, ChartTypeTable},
		{"non-record", `["string", 123, true]`, ChartTypeTable},
		{"null first", `[null, {"a": 1}]`, ChartTypeTable},
		{"aggregation with category", `[{"_id": "category1", "count": 10}]`, ChartTypeBar},
		{"categorical and numeric", `[{"category": "A", "value": 30}]`, ChartTypeBar},
		{"named sales", `[{"name": "Product A", "sales": 1000}]`, ChartTypeBar},
		{"time series", `[{"date": "2023-01-01", "value": 100}]`, ChartTypeLine},
		{"timestamp field", `[{"timestamp": "2023-01-01", "value": 100}]`, ChartTypeLine},
		{"createdAt", `[{"createdAt": 1700000000, "n": 2}]`, ChartTypeLine},
		{"underscore aggregates", `[{"_id": "cat1", "_sum": 100, "_avg": 50}]`, ChartTypeBar},
		{"small aggregate", `[{"total_count": 5, "max": 9}]`, ChartTypePie},
		{"large numeric aggregate", `[{"count": 1, "a": 2, "b": 3, "c": 4}]`, ChartTypeTable},
		{"time without numbers", `[{"date": "2023-01-01", "name": "x"}]`, ChartTypeTable},
		{"only strings", `[{"a": "x", "b": "y"}]`, ChartTypeTable},
		{"nested only", `[{"a": {"b": 1}}]`, ChartTypeTable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectChartType(docs(t, tt.data)))
		})
	}
}

func TestComputeSignals(t *testing.T) {
	rec := docs(t, `[{"date": "2023-01-01", "label": "x", "value": 1}]`)[0]

	s := ComputeSignals(rec)
	assert.True(t, s.HasTimeField)
	assert.True(t, s.HasNumericField)
	assert.False(t, s.HasCategoricalField, "a time field suppresses the categorical signal")
	assert.False(t, s.HasAggregation)
	assert.Equal(t, 3, s.FieldCount)

	assert.Equal(t, Signals{}, ComputeSignals(document.Number(1)))
}

func TestRulesInPriorityOrder(t *testing.T) {
	rules := Rules()
	require.Len(t, rules, 4)

	want := []ChartType{ChartTypeLine, ChartTypeBar, ChartTypePie, ChartTypeBar}
	for i, rule := range rules {
		assert.Equal(t, want[i], rule.Result, "rule %s", rule.Name)
		assert.NotEmpty(t, rule.Name)
		assert.NotNil(t, rule.Matches)
	}

	all := Signals{HasAggregation: true, HasTimeField: true, HasCategoricalField: true, HasNumericField: true, FieldCount: 2}
	for _, rule := range rules {
		assert.True(t, rule.Matches(all), "rule %s should match every signal", rule.Name)
	}
}

func TestRuleRegistry(t *testing.T) {
	data := docs(t, `[{"date": "2023-01-01", "value": 100}]`)

	r := DefaultRegistry()
	chartType, rule := r.Classify(data)
	assert.Equal(t, ChartTypeLine, chartType)
	assert.Equal(t, "time-series", rule)

	r.SetEnabled("time-series", false)
	chartType, rule = r.Classify(data)
	assert.Equal(t, ChartTypeTable, chartType)
	assert.Empty(t, rule)

	r.SetEnabled("time-series", true)
	assert.Equal(t, ChartTypeLine, r.Detect(data))

	r.Register(Rule{
		Name:    "time-series",
		Matches: func(s Signals) bool { return s.HasTimeField },
		Result:  ChartTypeBar,
	})
	assert.Len(t, r.Rules(), 4)
	assert.Equal(t, ChartTypeBar, r.Detect(data))

	empty := NewRuleRegistry()
	assert.Equal(t, ChartTypeTable, empty.Detect(data))
}

func TestParseChartType(t *testing.T) {
	got, err := ParseChartType(" Pie ")
	require.NoError(t, err)
	assert.Equal(t, ChartTypePie, got)

	_, err = ParseChartType("radar")
	assert.Error(t, err)

	assert.Equal(t, "Line", ChartTypeLine.Title())
}
