package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wonderfulspam/stage-smith/pkg/chart"
	"github.com/wonderfulspam/stage-smith/pkg/config"
	"github.com/wonderfulspam/stage-smith/pkg/renderer"
)

const defaultConfigFile = ".stage-smith.yaml"

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage StageSmith configuration",
	Long:  `Manage StageSmith configuration files, including initialization and validation.`,
}

var configInitCmd = &cobra.Command{
	Use:   "init [file]",
	Short: "Generate a default configuration file",
	Long: `Generate a StageSmith configuration file holding every setting at its default
value. If no file is specified, creates .stage-smith.yaml in the current
directory. A .json extension writes JSON instead of YAML.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConfigInit,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Validate a configuration file",
	Long:  `Validate a StageSmith configuration file for correctness.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigValidate,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Long: `Print the configuration after applying the config file, STAGE_SMITH_*
environment variables and flags.`,
	Args: cobra.NoArgs,
	RunE: runConfigShow,
}

var configRulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List the chart classification rules",
	Long:  `List the chart classification rules in evaluation order and whether each is enabled.`,
	Args:  cobra.NoArgs,
	RunE:  runConfigRules,
}

var configShowFormat string

func init() {
	configShowCmd.Flags().StringVar(&configShowFormat, "format", "yaml", "Output format: yaml, json")

	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configValidateCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configRulesCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	outputFile := defaultConfigFile
	if len(args) > 0 {
		outputFile = args[0]
	}

	// Check if file already exists
	if _, err := os.Stat(outputFile); err == nil {
		return fmt.Errorf("configuration file %s already exists", outputFile)
	}

	if err := config.SaveConfig(config.DefaultConfig(), outputFile); err != nil {
		return fmt.Errorf("failed to write configuration file: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✅ Configuration file created: %s\n", outputFile)
	fmt.Fprintf(cmd.OutOrStdout(), "\nYou can now:\n")
	fmt.Fprintf(cmd.OutOrStdout(), "1. Edit the file to customize output and detection\n")
	fmt.Fprintf(cmd.OutOrStdout(), "2. Use it with: stage-smith inspect --config=%s <stage-run>\n", outputFile)
	fmt.Fprintf(cmd.OutOrStdout(), "3. Validate it with: stage-smith config validate %s\n", outputFile)

	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	configFile := args[0]

	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✅ Configuration is valid!\n\n")
	fmt.Fprintf(cmd.OutOrStdout(), "Summary:\n")
	fmt.Fprintf(cmd.OutOrStdout(), "  Max Depth: %d\n", cfg.MaxDepth)
	fmt.Fprintf(cmd.OutOrStdout(), "  Concurrency: %d\n", cfg.Concurrency)
	fmt.Fprintf(cmd.OutOrStdout(), "  Default Chart Type: %s\n", cfg.Chart.DefaultType)
	fmt.Fprintf(cmd.OutOrStdout(), "  Output Format: %s\n", cfg.Output.Format)
	fmt.Fprintf(cmd.OutOrStdout(), "  Service Endpoint: %s\n", cfg.Client.Endpoint)

	if len(cfg.Chart.Colors) > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "  Custom Colors: %d\n", len(cfg.Chart.Colors))
	}
	if len(cfg.Chart.DisabledRules) > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "  Disabled Rules: %d\n", len(cfg.Chart.DisabledRules))
	}

	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	format, err := renderer.ParseFormat(configShowFormat)
	if err != nil {
		return err
	}
	if format != renderer.FormatYAML && format != renderer.FormatJSON {
		return fmt.Errorf("unsupported format: %s (supported: yaml, json)", configShowFormat)
	}

	output, err := renderer.Encode(appConfig, format)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), output)
	return nil
}

func runConfigRules(cmd *cobra.Command, args []string) error {
	enabled := make(map[string]bool)
	for _, rule := range appConfig.ChartRegistry().Rules() {
		enabled[rule.Name] = true
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Chart Classification Rules\n")
	fmt.Fprintf(cmd.OutOrStdout(), "==========================\n\n")

	for i, rule := range chart.Rules() {
		status := "✅"
		if !enabled[rule.Name] {
			status = "❌"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d. %s %-20s %-6s %s\n", i+1, status, rule.Name, rule.Result, rule.Description)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "\nDocuments matching no rule are shown as a table.\n")

	return nil
}
