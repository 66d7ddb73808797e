package parser

import (
	"fmt"
	"strings"

	"github.com/wonderfulspam/stage-smith/pkg/document"
)

// ValidatePipeline checks that pipeline is a non-empty list of stages, each a
// record whose keys are all operators starting with '$'.
func ValidatePipeline(pipeline document.Value) error {
	if pipeline.Kind() != document.KindSequence {
		return fmt.Errorf("pipeline must be a list")
	}
	if pipeline.Len() == 0 {
		return fmt.Errorf("pipeline cannot be empty")
	}

	for i, stage := range pipeline.Items() {
		if stage.Kind() != document.KindRecord {
			return fmt.Errorf("stage %d must be an object", i+1)
		}
		keys := stage.Keys()
		if len(keys) == 0 {
			return fmt.Errorf("stage %d must have at least one operator", i+1)
		}
		var invalid []string
		for _, k := range keys {
			if !strings.HasPrefix(k, "$") {
				invalid = append(invalid, k)
			}
		}
		if len(invalid) > 0 {
			return fmt.Errorf("stage %d has invalid operators: %s. Operators must start with $", i+1, strings.Join(invalid, ", "))
		}
	}
	return nil
}

// LoadPipeline reads a pipeline definition file and validates it.
func LoadPipeline(path string) (document.Value, error) {
	pipeline, err := document.DecodeFile(path)
	if err != nil {
		return document.Value{}, err
	}
	if err := ValidatePipeline(pipeline); err != nil {
		return document.Value{}, fmt.Errorf("invalid pipeline '%s': %w", path, err)
	}
	return pipeline, nil
}
