package main

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const sampleStageRun = `{
  "success": true,
  "stages": [
    {
      "stageIndex": 1,
      "stage": {"$sort": {"count": -1}},
      "count": 2,
      "executionTime": 0.5,
      "preview": [{"_id": "Games", "count": 20}, {"_id": "Books", "count": 10}]
    },
    {
      "stageIndex": 0,
      "stage": {"$group": {"_id": "$category", "count": {"$sum": 1}}},
      "count": 2,
      "executionTime": 1.5,
      "preview": [{"_id": "Books", "count": 10}, {"_id": "Games", "count": 20}]
    }
  ]
}`

type reportOutput struct {
	Stages []struct {
		StageIndex   int    `json:"stageIndex"`
		Operator     string `json:"operator"`
		DetectedType string `json:"detectedType"`
		ChartType    string `json:"chartType"`
		Rule         string `json:"rule"`
		Diff         *struct {
			Summary struct {
				Modified int `json:"modified"`
				Total    int `json:"total"`
			} `json:"summary"`
		} `json:"diff"`
	} `json:"stages"`
	TotalExecutionTime float64 `json:"totalExecutionTime"`
	Changes            struct {
		Modified int `json:"modified"`
	} `json:"changes"`
}

func decodeReport(t *testing.T, output string) reportOutput {
	t.Helper()
	var report reportOutput
	if err := json.Unmarshal([]byte(output), &report); err != nil {
		t.Fatalf("Output is not valid JSON: %v\n%s", err, output)
	}
	return report
}

func TestInspectCommandJSON(t *testing.T) {
	file := writeFile(t, "run.json", sampleStageRun)

	output, err := executeCommand(t, "inspect", "--format", "json", file)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	report := decodeReport(t, output)

	if len(report.Stages) != 2 {
		t.Fatalf("Expected 2 stages, got %d", len(report.Stages))
	}
	if report.Stages[0].Operator != "$group" || report.Stages[1].Operator != "$sort" {
		t.Errorf("Expected stages sorted by index, got %s, %s", report.Stages[0].Operator, report.Stages[1].Operator)
	}
	for _, stage := range report.Stages {
		if stage.ChartType != "bar" || stage.Rule != "grouped-aggregation" {
			t.Errorf("Stage %d: expected grouped-aggregation bar, got %s (%s)", stage.StageIndex, stage.ChartType, stage.Rule)
		}
	}
	if report.Stages[0].Diff != nil {
		t.Error("Expected no diff for the first stage")
	}
	// Swapping the two documents modifies every node.
	if report.Stages[1].Diff == nil || report.Stages[1].Diff.Summary.Modified != 7 {
		t.Errorf("Unexpected diff for stage 1: %+v", report.Stages[1].Diff)
	}
	if report.Changes.Modified != 7 {
		t.Errorf("Expected 7 modified nodes in total, got %d", report.Changes.Modified)
	}
	if report.TotalExecutionTime != 2 {
		t.Errorf("Expected total execution time 2, got %v", report.TotalExecutionTime)
	}
}

func TestInspectCommandOutputFormats(t *testing.T) {
	file := writeFile(t, "run.json", sampleStageRun)

	tests := []struct {
		name           string
		args           []string
		expectError    bool
		expectedOutput []string
	}{
		{
			name: "table",
			args: []string{"inspect", "--no-color", file},
			expectedOutput: []string{
				"Stage Run Report",
				"Stages: 2",
				"$group",
				"Stage 1 ($sort) vs stage 0 ($group):",
				"+0 -0 ~7",
			},
		},
		{
			name:           "yaml",
			args:           []string{"inspect", "--format", "yaml", file},
			expectedOutput: []string{"stages:", "operator: $sort"},
		},
		{
			name:           "mermaid",
			args:           []string{"inspect", "--format", "mermaid", file},
			expectedOutput: []string{"flowchart", "S0 -->"},
		},
		{
			name:           "dot",
			args:           []string{"inspect", "--format", "dot", file},
			expectedOutput: []string{"digraph stages", "s0 -> s1"},
		},
		{
			name:           "forced chart type",
			args:           []string{"inspect", "--format", "json", "--type", "table", file},
			expectedOutput: []string{`"chartType": "table"`},
		},
		{
			name:        "unknown chart type",
			args:        []string{"inspect", "--type", "radar", file},
			expectError: true,
		},
		{
			name:        "no input",
			args:        []string{"inspect"},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output, err := executeCommand(t, tt.args...)

			if tt.expectError {
				if err == nil {
					t.Errorf("Expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Expected no error, got: %v", err)
			}
			for _, expected := range tt.expectedOutput {
				if !strings.Contains(output, expected) {
					t.Errorf("Expected output to contain '%s', got:\n%s", expected, output)
				}
			}
		})
	}
}

func TestInspectCommandServiceFailure(t *testing.T) {
	file := writeFile(t, "run.json", `{"success": false, "error": "Pipeline execution failed", "message": "unknown operator"}`)

	_, err := executeCommand(t, "inspect", file)
	if err == nil {
		t.Fatal("Expected error for failed stage run, got nil")
	}
	if !strings.Contains(err.Error(), "unknown operator") {
		t.Errorf("Expected service message in error, got: %v", err)
	}
}

func TestInspectCommandExecutesPipeline(t *testing.T) {
	var request map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/pipelines/execute-stages" {
			http.NotFound(w, r)
			return
		}
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &request)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, sampleStageRun)
	}))
	defer server.Close()

	pipeline := writeFile(t, "pipeline.yaml", "- $group:\n    _id: $category\n    count:\n      $sum: 1\n- $sort:\n    count: -1\n")

	output, err := executeCommand(t, "inspect",
		"--format", "json",
		"--pipeline", pipeline,
		"--endpoint", server.URL,
		"--connection", "local",
		"--database", "shop",
		"--collection", "orders",
		"--sample-size", "5")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	report := decodeReport(t, output)
	if len(report.Stages) != 2 {
		t.Errorf("Expected 2 stages, got %d", len(report.Stages))
	}
	if request["sampleSize"] != float64(5) {
		t.Errorf("Expected sample size 5 in request, got %v", request["sampleSize"])
	}
	if stages, ok := request["pipeline"].([]any); !ok || len(stages) != 2 {
		t.Errorf("Expected the pipeline in the request, got %v", request["pipeline"])
	}
}

func TestInspectCommandServiceError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"error": "Invalid pipeline"}`)
	}))
	defer server.Close()

	pipeline := writeFile(t, "pipeline.json", `[{"$match": {}}]`)

	_, err := executeCommand(t, "inspect",
		"--pipeline", pipeline,
		"--endpoint", server.URL,
		"--connection", "local",
		"--database", "shop",
		"--collection", "orders")
	if err == nil {
		t.Fatal("Expected error from service, got nil")
	}
	if !strings.Contains(err.Error(), "Invalid pipeline") {
		t.Errorf("Expected service message in error, got: %v", err)
	}
}
