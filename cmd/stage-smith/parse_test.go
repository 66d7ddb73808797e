package main

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		name        string
		content     string
		args        []string
		expectError bool
		validate    func(t *testing.T, output string)
	}{
		{
			name: "bare list with defaults",
			content: `[
  {"stage": {"$limit": 2}, "preview": [{"a": 1}, {"a": 2}]},
  {"stage": {"$match": {}}}
]`,
			args: []string{"parse"},
			validate: func(t *testing.T, output string) {
				var run struct {
					Stages []struct {
						StageIndex int               `json:"stageIndex"`
						Count      int               `json:"count"`
						Preview    []json.RawMessage `json:"preview"`
					} `json:"stages"`
				}
				if err := json.Unmarshal([]byte(output), &run); err != nil {
					t.Fatalf("Output is not valid JSON: %v\n%s", err, output)
				}
				if len(run.Stages) != 2 {
					t.Fatalf("Expected 2 stages, got %d", len(run.Stages))
				}
				if run.Stages[0].StageIndex != 0 || run.Stages[1].StageIndex != 1 {
					t.Errorf("Expected positional stage indexes, got %d, %d", run.Stages[0].StageIndex, run.Stages[1].StageIndex)
				}
				if run.Stages[0].Count != 2 {
					t.Errorf("Expected count to default to the preview length, got %d", run.Stages[0].Count)
				}
				if run.Stages[1].Preview == nil || len(run.Stages[1].Preview) != 0 {
					t.Errorf("Expected an empty preview list, got %v", run.Stages[1].Preview)
				}
			},
		},
		{
			name:    "yaml output",
			content: `{"success": true, "stages": [{"stageIndex": 0, "stage": {"$count": "n"}, "count": 1, "preview": [{"n": 4}]}]}`,
			args:    []string{"parse", "--format", "yaml"},
			validate: func(t *testing.T, output string) {
				if !strings.Contains(output, "stageIndex: 0") {
					t.Errorf("Expected YAML stage run, got:\n%s", output)
				}
			},
		},
		{
			name:        "service failure",
			content:     `{"success": false, "error": "Pipeline execution failed"}`,
			args:        []string{"parse"},
			expectError: true,
		},
		{
			name:        "negative count",
			content:     `[{"count": -1}]`,
			args:        []string{"parse"},
			expectError: true,
		},
		{
			name:        "unsupported format",
			content:     `[]`,
			args:        []string{"parse", "--format", "dot"},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			file := writeFile(t, "run.json", tt.content)

			output, err := executeCommand(t, append(tt.args, file)...)

			if tt.expectError {
				if err == nil {
					t.Errorf("Expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Expected no error, got: %v", err)
			}
			tt.validate(t, output)
		})
	}
}

func TestParseCommandInvalidFile(t *testing.T) {
	invalid := writeFile(t, "invalid.json", `{"stages": [`)

	if _, err := executeCommand(t, "parse", invalid); err == nil {
		t.Error("Expected error for invalid document, got nil")
	}
	if _, err := executeCommand(t, "parse", filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("Expected error for missing file, got nil")
	}
}
