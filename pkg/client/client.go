// Package client talks to the stage-execution service that runs aggregation
// pipelines and reports per-stage result samples.
package client

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/wonderfulspam/stage-smith/pkg/document"
	"github.com/wonderfulspam/stage-smith/pkg/parser"
)

const (
	DefaultBaseURL    = "http://localhost:3001/api"
	DefaultTimeout    = 30 * time.Second
	DefaultSampleSize = 10
)

// Client defines the operations of the stage-execution service.
type Client interface {
	// ExecuteStages runs every prefix of the pipeline and returns a sample of
	// each stage's output.
	ExecuteStages(ctx context.Context, req StagesRequest) (*parser.StageRun, error)
	// Execute runs the whole pipeline and returns its results.
	Execute(ctx context.Context, req ExecuteRequest) (*ExecuteResult, error)
	// ValidatePipeline asks the service to check pipeline syntax.
	ValidatePipeline(ctx context.Context, pipeline document.Value) (*ValidationResult, error)
}

// Config holds the configuration for an APIClient.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	MaxDepth   int
	Logger     *zap.Logger
	HTTPClient *http.Client
	// RateLimit caps requests per second. Zero disables limiting.
	RateLimit float64
}

// NewClient returns an APIClient for cfg. A nil cfg selects the defaults.
func NewClient(cfg *Config) (Client, error) {
	return NewAPIClient(cfg)
}
