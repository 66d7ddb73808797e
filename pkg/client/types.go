package client

import (
	"github.com/wonderfulspam/stage-smith/pkg/document"
)

type StagesRequest struct {
	ConnectionID string         `json:"connectionId"`
	Database     string         `json:"database"`
	Collection   string         `json:"collection"`
	Pipeline     document.Value `json:"pipeline"`
	SampleSize   int            `json:"sampleSize,omitempty"`
}

type ExecuteRequest struct {
	ConnectionID string         `json:"connectionId"`
	Database     string         `json:"database"`
	Collection   string         `json:"collection"`
	Pipeline     document.Value `json:"pipeline"`
}

// ExecuteResult is the full output of a pipeline run.
type ExecuteResult struct {
	Count   int              `json:"count"`
	Results []document.Value `json:"results"`
}

// ValidationResult is the service's verdict on a pipeline.
type ValidationResult struct {
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}
