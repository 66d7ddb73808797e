package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// executeCommand runs the root command with args and returns what it wrote.
// Flag values survive between executions of the shared command tree, so they
// are reset to their defaults first.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()

	resetFlags(rootCmd)

	// A nil slice would make cobra fall back to os.Args.
	if args == nil {
		args = []string{}
	}

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()
	return buf.String(), err
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// writeFile writes content to name inside a fresh temporary directory.
func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
	return path
}

func TestRootCommand(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{
			name: "root command without args",
			args: []string{},
		},
		{
			name: "help flag",
			args: []string{"--help"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output, err := executeCommand(t, tt.args...)
			if err != nil {
				t.Errorf("Expected no error, got: %v", err)
			}
			if !strings.Contains(output, "stage-smith") {
				t.Errorf("Expected usage output, got: %s", output)
			}
		})
	}
}

func TestCommandStructure(t *testing.T) {
	expectedCommands := []string{"diff", "chart", "inspect", "path", "parse", "validate", "config"}

	commands := make(map[string]bool)
	for _, cmd := range rootCmd.Commands() {
		commands[cmd.Name()] = true
	}

	for _, expected := range expectedCommands {
		if !commands[expected] {
			t.Errorf("Expected command '%s' not found", expected)
		}
	}

	for _, flag := range []string{"config", "verbose", "no-color"} {
		if rootCmd.PersistentFlags().Lookup(flag) == nil {
			t.Errorf("Expected persistent flag '--%s' not found", flag)
		}
	}
}

func TestInvalidCommand(t *testing.T) {
	_, err := executeCommand(t, "invalid-command")
	if err == nil {
		t.Error("Expected error for invalid command, got nil")
	}
}

func TestMissingConfigFile(t *testing.T) {
	oldFile := writeFile(t, "old.json", `{"a": 1}`)

	_, err := executeCommand(t, "diff", "--config", filepath.Join(t.TempDir(), "missing.yaml"), oldFile, oldFile)
	if err == nil {
		t.Fatal("Expected error for missing config file, got nil")
	}
	if !strings.Contains(err.Error(), "reading config file") {
		t.Errorf("Expected config file error, got: %v", err)
	}
}

func TestInvalidConfigValue(t *testing.T) {
	oldFile := writeFile(t, "old.json", `{"a": 1}`)
	t.Setenv("STAGE_SMITH_MAX_DEPTH", "0")

	_, err := executeCommand(t, "diff", oldFile, oldFile)
	if err == nil {
		t.Fatal("Expected error for invalid max depth, got nil")
	}
	if !strings.Contains(err.Error(), "max_depth must be positive") {
		t.Errorf("Expected max_depth error, got: %v", err)
	}
}

func TestEnvironmentSelectsFormat(t *testing.T) {
	oldFile := writeFile(t, "old.json", `{"a": 1}`)
	newFile := writeFile(t, "new.json", `{"a": 2}`)
	t.Setenv("STAGE_SMITH_OUTPUT_FORMAT", "json")

	output, err := executeCommand(t, "diff", oldFile, newFile)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if !strings.HasPrefix(output, "{") {
		t.Errorf("Expected JSON output from environment override, got: %s", output)
	}
}

func TestConfigFileSelectsFormat(t *testing.T) {
	cfgPath := writeFile(t, "config.yaml", "output:\n  format: yaml\n")
	oldFile := writeFile(t, "old.json", `{"a": 1}`)
	newFile := writeFile(t, "new.json", `{"a": 2}`)

	output, err := executeCommand(t, "diff", "--config", cfgPath, oldFile, newFile)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if !strings.Contains(output, "has_changes: true") {
		t.Errorf("Expected YAML output from config file, got: %s", output)
	}

	// An explicit flag beats the file.
	output, err = executeCommand(t, "diff", "--config", cfgPath, "--format", "json", oldFile, newFile)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if !strings.Contains(output, `"has_changes": true`) {
		t.Errorf("Expected JSON output from flag, got: %s", output)
	}
}
