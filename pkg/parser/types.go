package parser

import (
	"github.com/wonderfulspam/stage-smith/pkg/document"
)

// StageRun is the result of executing a pipeline one stage at a time.
type StageRun struct {
	Stages []StageResult `json:"stages" yaml:"stages"`
}

// StageResult holds the output sample of the pipeline prefix ending at one
// stage.
type StageResult struct {
	StageIndex    int              `json:"stageIndex" yaml:"stageIndex"`
	Stage         document.Value   `json:"stage" yaml:"stage"`
	Count         int              `json:"count" yaml:"count"`
	Preview       []document.Value `json:"preview" yaml:"preview"`
	ExecutionTime float64          `json:"executionTime" yaml:"executionTime"`
}

// Operator returns the first key of the stage definition, such as "$match", or ""
// when the stage is not a record.
func (s StageResult) Operator() string {
	keys := s.Stage.Keys()
	if len(keys) == 0 {
		return ""
	}
	return keys[0]
}

// Pipeline returns the stage definitions of the run as a sequence.
func (r *StageRun) Pipeline() document.Value {
	stages := make([]document.Value, len(r.Stages))
	for i, s := range r.Stages {
		stages[i] = s.Stage
	}
	return document.Sequence(stages...)
}

// Operators lists each stage's operator in order.
func (r *StageRun) Operators() []string {
	ops := make([]string, len(r.Stages))
	for i, s := range r.Stages {
		ops[i] = s.Operator()
	}
	return ops
}

// TotalExecutionTime sums the execution time of every stage.
func (r *StageRun) TotalExecutionTime() float64 {
	var total float64
	for _, s := range r.Stages {
		total += s.ExecutionTime
	}
	return total
}
