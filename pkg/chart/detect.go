package chart

import (
	"strings"

	"github.com/wonderfulspam/stage-smith/pkg/document"
)

// Signals are the shape features of a record that drive classification.
type Signals struct {
	HasAggregation      bool `json:"hasAggregation"`
	HasTimeField        bool `json:"hasTimeField"`
	HasCategoricalField bool `json:"hasCategoricalField"`
	HasNumericField     bool `json:"hasNumericField"`
	FieldCount          int  `json:"fieldCount"`
}

func isAggregationField(name string) bool {
	if strings.HasPrefix(name, "_") {
		return true
	}
	for _, marker := range []string{"sum", "avg", "count", "min", "max"} {
		if strings.Contains(name, marker) {
			return true
		}
	}
	return false
}

// IsTimeField reports whether a field name looks like it holds a timestamp.
func IsTimeField(name string) bool {
	return strings.Contains(name, "date") ||
		strings.Contains(name, "time") ||
		strings.Contains(name, "timestamp") ||
		name == "createdAt" ||
		name == "updatedAt"
}

// ComputeSignals inspects the top-level fields of record. Non-records yield
// zero Signals.
func ComputeSignals(record document.Value) Signals {
	var s Signals
	if record.Kind() != document.KindRecord {
		return s
	}

	fields := record.Fields()
	s.FieldCount = len(fields)

	hasString := false
	for _, f := range fields {
		if isAggregationField(f.Name) {
			s.HasAggregation = true
		}
		if IsTimeField(f.Name) {
			s.HasTimeField = true
		}
		switch f.Value.Kind() {
		case document.KindString:
			hasString = true
		case document.KindNumber:
			s.HasNumericField = true
		}
	}
	s.HasCategoricalField = hasString && !s.HasTimeField

	return s
}

// Rule maps a signal pattern to a chart type.
type Rule struct {
	Name        string
	Description string
	Matches     func(Signals) bool
	Result      ChartType
}

// Rules returns the default classification rules in priority order.
func Rules() []Rule {
	return []Rule{
		{
			Name:        "time-series",
			Description: "time field with numeric values",
			Matches:     func(s Signals) bool { return s.HasTimeField && s.HasNumericField },
			Result:      ChartTypeLine,
		},
		{
			Name:        "grouped-aggregation",
			Description: "aggregated values keyed by a category",
			Matches:     func(s Signals) bool { return s.HasAggregation && s.HasCategoricalField },
			Result:      ChartTypeBar,
		},
		{
			Name:        "small-aggregation",
			Description: "aggregate with at most three fields",
			Matches:     func(s Signals) bool { return s.HasAggregation && s.FieldCount <= 3 },
			Result:      ChartTypePie,
		},
		{
			Name:        "categorical",
			Description: "category with numeric values",
			Matches:     func(s Signals) bool { return s.HasCategoricalField && s.HasNumericField },
			Result:      ChartTypeBar,
		},
	}
}

// RuleRegistry evaluates rules in registration order; the first match wins.
type RuleRegistry struct {
	rules    []Rule
	disabled map[string]bool
}

func NewRuleRegistry() *RuleRegistry {
	return &RuleRegistry{
		disabled: make(map[string]bool),
	}
}

// DefaultRegistry returns a registry holding Rules().
func DefaultRegistry() *RuleRegistry {
	r := NewRuleRegistry()
	for _, rule := range Rules() {
		r.Register(rule)
	}
	return r
}

// Register appends rule. A rule with the same name is replaced in place.
func (r *RuleRegistry) Register(rule Rule) {
	for i := range r.rules {
		if r.rules[i].Name == rule.Name {
			r.rules[i] = rule
			return
		}
	}
	r.rules = append(r.rules, rule)
}

func (r *RuleRegistry) SetEnabled(name string, enabled bool) {
	if enabled {
		delete(r.disabled, name)
		return
	}
	r.disabled[name] = true
}

// Rules returns the enabled rules in evaluation order.
func (r *RuleRegistry) Rules() []Rule {
	rules := make([]Rule, 0, len(r.rules))
	for _, rule := range r.rules {
		if !r.disabled[rule.Name] {
			rules = append(rules, rule)
		}
	}
	return rules
}

// Classify returns the chart type for data and the name of the rule that
// chose it. The name is empty when no rule matched and table was chosen.
func (r *RuleRegistry) Classify(data []document.Value) (ChartType, string) {
	if len(data) == 0 || data[0].Kind() != document.KindRecord {
		return ChartTypeTable, ""
	}

	signals := ComputeSignals(data[0])
	for _, rule := range r.Rules() {
		if rule.Matches != nil && rule.Matches(signals) {
			return rule.Result, rule.Name
		}
	}
	return ChartTypeTable, ""
}

func (r *RuleRegistry) Detect(data []document.Value) ChartType {
	t, _ := r.Classify(data)
	return t
}

// DetectChartType picks a chart type from the shape of the first document.
func DetectChartType(data []document.Value) ChartType {
	return DefaultRegistry().Detect(data)
}
