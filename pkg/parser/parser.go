package parser

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/wonderfulspam/stage-smith/pkg/document"
)

// ErrServiceFailure marks a stage run payload whose success flag is false.
var ErrServiceFailure = errors.New("stage execution failed")

// Parse decodes a stage run from JSON or YAML. The input is either the
// execute-stages response envelope or a bare list of stage results.
func Parse(data []byte) (*StageRun, error) {
	return Parser{}.Parse(data)
}

// ParseFile reads and parses the stage run stored at path.
func ParseFile(path string) (*StageRun, error) {
	return Parser{}.ParseFile(path)
}

// ParseDocument builds a stage run from an already decoded document.
func ParseDocument(doc document.Value) (*StageRun, error) {
	return Parser{}.ParseDocument(doc)
}

// Parser parses stage runs with a configurable depth limit.
type Parser struct {
	MaxDepth int
}

func (p Parser) Parse(data []byte) (*StageRun, error) {
	doc, err := document.Decoder{MaxDepth: p.MaxDepth}.Auto(data)
	if err != nil {
		return nil, fmt.Errorf("decoding stage run: %w", err)
	}
	return p.ParseDocument(doc)
}

func (p Parser) ParseFile(path string) (*StageRun, error) {
	doc, err := document.Decoder{MaxDepth: p.MaxDepth}.File(path)
	if err != nil {
		return nil, err
	}
	run, err := p.ParseDocument(doc)
	if err != nil {
		return nil, fmt.Errorf("parsing stage run '%s': %w", path, err)
	}
	return run, nil
}

func (p Parser) ParseDocument(doc document.Value) (*StageRun, error) {
	var stages document.Value

	switch doc.Kind() {
	case document.KindSequence:
		stages = doc
	case document.KindRecord:
		if ok, present := doc.Get("success"); present {
			if b, isBool := ok.AsBool(); isBool && !b {
				return nil, serviceError(doc)
			}
		}
		s, present := doc.Get("stages")
		if !present {
			return nil, fmt.Errorf("stage run has no 'stages' field")
		}
		if s.Kind() != document.KindSequence {
			return nil, fmt.Errorf("'stages' must be a list, got %s", s.Kind())
		}
		stages = s
	default:
		return nil, fmt.Errorf("stage run must be a record or a list, got %s", doc.Kind())
	}

	run := &StageRun{Stages: make([]StageResult, 0, stages.Len())}
	for i, item := range stages.Items() {
		result, err := parseStageResult(item, i)
		if err != nil {
			return nil, fmt.Errorf("stage %d: %w", i, err)
		}
		run.Stages = append(run.Stages, result)
	}

	sort.SliceStable(run.Stages, func(i, j int) bool {
		return run.Stages[i].StageIndex < run.Stages[j].StageIndex
	})

	return run, nil
}

func parseStageResult(item document.Value, position int) (StageResult, error) {
	if item.Kind() != document.KindRecord {
		return StageResult{}, fmt.Errorf("stage result must be a record, got %s", item.Kind())
	}

	result := StageResult{StageIndex: position}

	if v, ok := item.Get("stageIndex"); ok {
		n, err := intField("stageIndex", v)
		if err != nil {
			return StageResult{}, err
		}
		result.StageIndex = n
	}

	if v, ok := item.Get("stage"); ok {
		result.Stage = v
	}

	preview, ok := item.Get("preview")
	switch {
	case !ok || preview.IsNull():
		result.Preview = []document.Value{}
	case preview.Kind() == document.KindSequence:
		result.Preview = preview.Items()
	default:
		return StageResult{}, fmt.Errorf("'preview' must be a list, got %s", preview.Kind())
	}

	result.Count = len(result.Preview)
	if v, ok := item.Get("count"); ok {
		n, err := intField("count", v)
		if err != nil {
			return StageResult{}, err
		}
		result.Count = n
	}

	if v, ok := item.Get("executionTime"); ok {
		n, isNum := v.AsNumber()
		if !isNum {
			return StageResult{}, fmt.Errorf("'executionTime' must be a number, got %s", v.Kind())
		}
		result.ExecutionTime = n
	}

	return result, nil
}

func intField(name string, v document.Value) (int, error) {
	n, ok := v.AsNumber()
	if !ok || n != math.Trunc(n) || n < 0 {
		return 0, fmt.Errorf("'%s' must be a non-negative integer, got %s", name, v.Text())
	}
	return int(n), nil
}

func serviceError(doc document.Value) error {
	var parts []string
	for _, key := range []string{"error", "message"} {
		if v, ok := doc.Get(key); ok && v.Text() != "" {
			parts = append(parts, v.Text())
		}
	}
	switch len(parts) {
	case 0:
		return ErrServiceFailure
	case 1:
		return fmt.Errorf("%w: %s", ErrServiceFailure, parts[0])
	default:
		return fmt.Errorf("%w: %s: %s", ErrServiceFailure, parts[0], parts[1])
	}
}
