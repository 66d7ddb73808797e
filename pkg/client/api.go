package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/wonderfulspam/stage-smith/pkg/document"
	"github.com/wonderfulspam/stage-smith/pkg/parser"
)

// maxResponseBytes caps how much of a response body is read.
var maxResponseBytes int64 = 64 << 20

var _ Client = (*APIClient)(nil)

// APIClient implements Client over the service's JSON HTTP API.
type APIClient struct {
	baseURL    string
	maxDepth   int
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *zap.Logger
}

// NewAPIClient creates a client for the service at cfg.BaseURL.
func NewAPIClient(cfg *Config) (*APIClient, error) {
	if cfg == nil {
		cfg = &Config{}
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		return nil, fmt.Errorf("service URL must start with http:// or https://, got '%s'", cfg.BaseURL)
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	var limiter *rate.Limiter
	if cfg.RateLimit < 0 {
		return nil, fmt.Errorf("rate limit must not be negative, got %v", cfg.RateLimit)
	}
	if cfg.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), max(1, int(cfg.RateLimit)))
	}

	return &APIClient{
		baseURL:    baseURL,
		maxDepth:   cfg.MaxDepth,
		httpClient: httpClient,
		limiter:    limiter,
		logger:     logger,
	}, nil
}

// BaseURL returns the service root the client sends requests to.
func (c *APIClient) BaseURL() string {
	return c.baseURL
}

// doRequest posts body as JSON and decodes the response document. Non-2xx
// responses become an *APIError carrying the service's message.
func (c *APIClient) doRequest(ctx context.Context, path string, body interface{}) (document.Value, error) {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return document.Value{}, fmt.Errorf("encoding request: %w", err)
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return document.Value{}, fmt.Errorf("rate limit %s: %w", path, err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(jsonBody))
	if err != nil {
		return document.Value{}, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return document.Value{}, fmt.Errorf("calling stage service %s: %w", path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		return document.Value{}, fmt.Errorf("reading response from %s: %w", path, err)
	}
	if int64(len(data)) > maxResponseBytes {
		return document.Value{}, fmt.Errorf("response from %s exceeds %d bytes", path, maxResponseBytes)
	}

	c.logger.Debug("stage service request",
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(data)),
		zap.Duration("elapsed", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return document.Value{}, &APIError{
			StatusCode: resp.StatusCode,
			Path:       path,
			Message:    serviceMessage(data),
		}
	}

	doc, err := document.Decoder{MaxDepth: c.maxDepth}.JSON(data)
	if err != nil {
		return document.Value{}, fmt.Errorf("decoding response from %s: %w", path, err)
	}
	return doc, nil
}

// serviceMessage extracts "error" and "message" from an error body, falling
// back to the raw text.
func serviceMessage(data []byte) string {
	doc, err := document.DecodeJSON(data)
	if err != nil || doc.Kind() != document.KindRecord {
		return strings.TrimSpace(string(data))
	}
	return docMessage(doc)
}

func docMessage(doc document.Value) string {
	var parts []string
	for _, key := range []string{"error", "message"} {
		if v, ok := doc.Get(key); ok && v.Text() != "" {
			parts = append(parts, v.Text())
		}
	}
	return strings.Join(parts, ": ")
}

func checkTarget(connectionID, database, collection string, pipeline document.Value) error {
	var missing []string
	if connectionID == "" {
		missing = append(missing, "connectionId")
	}
	if database == "" {
		missing = append(missing, "database")
	}
	if collection == "" {
		missing = append(missing, "collection")
	}
	if pipeline.IsNull() {
		missing = append(missing, "pipeline")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s required", ErrInvalidRequest, strings.Join(missing, ", "))
	}
	if pipeline.Kind() != document.KindSequence {
		return fmt.Errorf("%w: pipeline must be a list", ErrInvalidRequest)
	}
	return nil
}

// ExecuteStages calls POST /pipelines/execute-stages.
func (c *APIClient) ExecuteStages(ctx context.Context, req StagesRequest) (*parser.StageRun, error) {
	if err := checkTarget(req.ConnectionID, req.Database, req.Collection, req.Pipeline); err != nil {
		return nil, err
	}
	if req.SampleSize <= 0 {
		req.SampleSize = DefaultSampleSize
	}

	doc, err := c.doRequest(ctx, "/pipelines/execute-stages", req)
	if err != nil {
		return nil, err
	}

	run, err := parser.Parser{MaxDepth: c.maxDepth}.ParseDocument(doc)
	if err != nil {
		return nil, fmt.Errorf("parsing stage run: %w", err)
	}

	c.logger.Info("executed pipeline stages",
		zap.String("database", req.Database),
		zap.String("collection", req.Collection),
		zap.Int("stages", len(run.Stages)))

	return run, nil
}

// Execute calls POST /pipelines/execute.
func (c *APIClient) Execute(ctx context.Context, req ExecuteRequest) (*ExecuteResult, error) {
	if err := checkTarget(req.ConnectionID, req.Database, req.Collection, req.Pipeline); err != nil {
		return nil, err
	}

	doc, err := c.doRequest(ctx, "/pipelines/execute", req)
	if err != nil {
		return nil, err
	}
	if ok, present := doc.Get("success"); present {
		if b, _ := ok.AsBool(); !b {
			return nil, fmt.Errorf("%w: %s", parser.ErrServiceFailure, docMessage(doc))
		}
	}

	results, ok := doc.Get("results")
	if !ok || results.Kind() != document.KindSequence {
		return nil, fmt.Errorf("execute response has no 'results' list")
	}

	out := &ExecuteResult{Results: results.Items(), Count: results.Len()}
	if v, ok := doc.Get("count"); ok {
		if n, isNum := v.AsNumber(); isNum {
			out.Count = int(n)
		}
	}
	return out, nil
}

// ValidatePipeline calls POST /pipelines/validate.
func (c *APIClient) ValidatePipeline(ctx context.Context, pipeline document.Value) (*ValidationResult, error) {
	if pipeline.IsNull() {
		return nil, fmt.Errorf("%w: pipeline required", ErrInvalidRequest)
	}

	doc, err := c.doRequest(ctx, "/pipelines/validate", map[string]document.Value{"pipeline": pipeline})
	if err != nil {
		return nil, err
	}

	result := &ValidationResult{}
	if v, ok := doc.Get("valid"); ok {
		result.Valid, _ = v.AsBool()
	}
	if v, ok := doc.Get("error"); ok {
		result.Error = v.Text()
	}
	return result, nil
}
