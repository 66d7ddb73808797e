package main

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const groupedResults = `[
  {"_id": "Books", "count": 10},
  {"_id": "Games", "count": 20}
]`

type chartOutput struct {
	Type   string `json:"type"`
	Config struct {
		XAxisLabel string `json:"xAxisLabel"`
		YAxisLabel string `json:"yAxisLabel"`
	} `json:"config"`
	Data struct {
		Labels   []string `json:"labels"`
		Columns  []string `json:"columns"`
		Datasets []struct {
			Label           string          `json:"label"`
			Data            []float64       `json:"data"`
			BackgroundColor json.RawMessage `json:"backgroundColor"`
		} `json:"datasets"`
	} `json:"data"`
}

func runChartJSON(t *testing.T, args ...string) chartOutput {
	t.Helper()
	output, err := executeCommand(t, append([]string{"chart", "--format", "json"}, args...)...)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	var out chartOutput
	if err := json.Unmarshal([]byte(output), &out); err != nil {
		t.Fatalf("Output is not valid JSON: %v\n%s", err, output)
	}
	return out
}

func TestChartCommandDetectsType(t *testing.T) {
	file := writeFile(t, "results.json", groupedResults)

	out := runChartJSON(t, file)

	if out.Type != "bar" {
		t.Errorf("Expected bar chart, got %s", out.Type)
	}
	if strings.Join(out.Data.Labels, ",") != "Books,Games" {
		t.Errorf("Unexpected labels: %v", out.Data.Labels)
	}
	if len(out.Data.Datasets) != 1 || out.Data.Datasets[0].Label != "count" {
		t.Fatalf("Unexpected datasets: %+v", out.Data.Datasets)
	}
	if got := out.Data.Datasets[0].Data; len(got) != 2 || got[0] != 10 || got[1] != 20 {
		t.Errorf("Unexpected data: %v", got)
	}
	if out.Config.XAxisLabel != "Category" || out.Config.YAxisLabel != "Value" {
		t.Errorf("Unexpected axis labels: %+v", out.Config)
	}
}

func TestChartCommandForcedType(t *testing.T) {
	file := writeFile(t, "results.json", groupedResults)

	out := runChartJSON(t, "--type", "pie", file)
	if out.Type != "pie" {
		t.Errorf("Expected pie chart, got %s", out.Type)
	}
	var colors []string
	if err := json.Unmarshal(out.Data.Datasets[0].BackgroundColor, &colors); err != nil {
		t.Fatalf("Expected one color per slice: %v", err)
	}
	if len(colors) != 2 {
		t.Errorf("Expected 2 slice colors, got %v", colors)
	}

	out = runChartJSON(t, "--type", "table", file)
	if out.Type != "table" {
		t.Errorf("Expected table, got %s", out.Type)
	}
	if strings.Join(out.Data.Columns, ",") != "_id,count" {
		t.Errorf("Unexpected columns: %v", out.Data.Columns)
	}
}

func TestChartCommandCustomColors(t *testing.T) {
	file := writeFile(t, "results.json", groupedResults)

	out := runChartJSON(t, "--colors", "#ff0000,#00ff00", file)

	var color string
	if err := json.Unmarshal(out.Data.Datasets[0].BackgroundColor, &color); err != nil {
		t.Fatalf("Expected a single dataset color: %v", err)
	}
	if color != "#ff0000" {
		t.Errorf("Expected custom color, got %s", color)
	}
}

func TestChartCommandDisabledRule(t *testing.T) {
	cfgPath := writeFile(t, "config.yaml", "chart:\n  disabled_rules:\n    - grouped-aggregation\n")
	file := writeFile(t, "results.json", groupedResults)

	out := runChartJSON(t, "--config", cfgPath, file)
	if out.Type != "pie" {
		t.Errorf("Expected the small-aggregation rule to choose pie, got %s", out.Type)
	}
}

func TestChartCommandOutputFormats(t *testing.T) {
	file := writeFile(t, "results.json", groupedResults)

	tests := []struct {
		name           string
		args           []string
		expectError    bool
		expectedOutput []string
	}{
		{
			name:           "table",
			args:           []string{"chart", "--title", "Sales", file},
			expectedOutput: []string{"Sales\n=====", "Category | count", "Books", "Legend:"},
		},
		{
			name:           "mermaid bar",
			args:           []string{"chart", "--format", "mermaid", file},
			expectedOutput: []string{"xychart-beta", "bar [10, 20]"},
		},
		{
			name:           "mermaid pie",
			args:           []string{"chart", "--format", "mermaid", "--type", "pie", file},
			expectedOutput: []string{"pie title", `"Books" : 10`},
		},
		{
			name:        "dot is not a chart format",
			args:        []string{"chart", "--format", "dot", file},
			expectError: true,
		},
		{
			name:        "unknown chart type",
			args:        []string{"chart", "--type", "radar", file},
			expectError: true,
		},
		{
			name:        "no input",
			args:        []string{"chart"},
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

func TestChartCommandAcceptsExecuteResponse(t *testing.T) {
	file := writeFile(t, "response.json", `{"success": true, "count": 2, "results": `+groupedResults+`}`)

	out := runChartJSON(t, file)
	if len(out.Data.Labels) != 2 {
		t.Errorf("Expected 2 labels from results, got %v", out.Data.Labels)
	}
}

func TestChartCommandExecutesPipeline(t *testing.T) {
	var request map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/pipelines/execute" {
			http.NotFound(w, r)
			return
		}
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &request)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"success": true, "count": 2, "results": `+groupedResults+`}`)
	}))
	defer server.Close()

	pipeline := writeFile(t, "pipeline.json", `[{"$group": {"_id": "$category", "count": {"$sum": 1}}}]`)

	out := runChartJSON(t,
		"--pipeline", pipeline,
		"--endpoint", server.URL,
		"--connection", "local",
		"--database", "shop",
		"--collection", "orders")

	if out.Type != "bar" {
		t.Errorf("Expected bar chart, got %s", out.Type)
	}
	if request["database"] != "shop" || request["collection"] != "orders" || request["connectionId"] != "local" {
		t.Errorf("Unexpected request: %v", request)
	}
}

func TestChartCommandRejectsInvalidPipeline(t *testing.T) {
	pipeline := writeFile(t, "pipeline.json", `[{"group": {}}]`)

	_, err := executeCommand(t, "chart", "--pipeline", pipeline, "--endpoint", "http://127.0.0.1:1")
	if err == nil {
		t.Fatal("Expected error for invalid pipeline, got nil")
	}
	if !strings.Contains(err.Error(), "Operators must start with $") {
		t.Errorf("Unexpected error: %v", err)
	}
}
