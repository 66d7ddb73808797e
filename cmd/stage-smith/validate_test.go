package main

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestValidateCommand(t *testing.T) {
	tests := []struct {
		name           string
		content        string
		expectError    bool
		errorContains  string
		expectedOutput string
	}{
		{
			name:           "valid pipeline",
			content:        `[{"$match": {"status": "A"}}, {"$group": {"_id": "$cust_id"}}]`,
			expectedOutput: "is valid (2 stages)",
		},
		{
			name:          "operator without dollar",
			content:       `[{"$match": {}}, {"group": {}}]`,
			expectError:   true,
			errorContains: "stage 2 has invalid operators: group",
		},
		{
			name:          "empty pipeline",
			content:       `[]`,
			expectError:   true,
			errorContains: "pipeline cannot be empty",
		},
		{
			name:          "not a list",
			content:       `{"$match": {}}`,
			expectError:   true,
			errorContains: "pipeline must be a list",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			file := writeFile(t, "pipeline.json", tt.content)

			output, err := executeCommand(t, "validate", file)

			if tt.expectError {
				if err == nil {
					t.Fatal("Expected error, got nil")
				}
				if !strings.Contains(err.Error(), tt.errorContains) {
					t.Errorf("Expected error containing '%s', got: %v", tt.errorContains, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Expected no error, got: %v", err)
			}
			if !strings.Contains(output, tt.expectedOutput) {
				t.Errorf("Expected output to contain '%s', got: %s", tt.expectedOutput, output)
			}
		})
	}
}

func TestValidateCommandRemote(t *testing.T) {
	tests := []struct {
		name        string
		response    string
		expectError bool
	}{
		{
			name:     "accepted",
			response: `{"valid": true}`,
		},
		{
			name:        "rejected",
			response:    `{"valid": false, "error": "Unrecognized pipeline stage name: '$foo'"}`,
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/pipelines/validate" {
					http.NotFound(w, r)
					return
				}
				w.Header().Set("Content-Type", "application/json")
				_, _ = io.WriteString(w, tt.response)
			}))
			defer server.Close()

			file := writeFile(t, "pipeline.json", `[{"$foo": {}}]`)

			output, err := executeCommand(t, "validate", "--remote", "--endpoint", server.URL, file)

			if tt.expectError {
				if err == nil {
					t.Fatal("Expected error, got nil")
				}
				if !strings.Contains(err.Error(), "Unrecognized pipeline stage name") {
					t.Errorf("Expected service error, got: %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Expected no error, got: %v", err)
			}
			if !strings.Contains(output, "is valid (1 stages)") {
				t.Errorf("Unexpected output: %s", output)
			}
		})
	}
}
