// Package config loads stage-smith settings from a YAML or JSON file,
// STAGE_SMITH_* environment variables and command-line flags.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/wonderfulspam/stage-smith/pkg/chart"
	"github.com/wonderfulspam/stage-smith/pkg/document"
)

// Config holds the overall tool configuration.
type Config struct {
	MaxDepth    int          `yaml:"max_depth" json:"max_depth" mapstructure:"max_depth"`
	Concurrency int          `yaml:"concurrency" json:"concurrency" mapstructure:"concurrency"`
	Chart       ChartConfig  `yaml:"chart" json:"chart" mapstructure:"chart"`
	Diff        DiffConfig   `yaml:"diff" json:"diff" mapstructure:"diff"`
	Output      OutputConfig `yaml:"output" json:"output" mapstructure:"output"`
	Client      ClientConfig `yaml:"client" json:"client" mapstructure:"client"`
}

type ChartConfig struct {
	// DefaultType is "auto" or a chart type name.
	DefaultType   string   `yaml:"default_type" json:"default_type" mapstructure:"default_type"`
	Colors        []string `yaml:"colors,omitempty" json:"colors,omitempty" mapstructure:"colors"`
	DisabledRules []string `yaml:"disabled_rules,omitempty" json:"disabled_rules,omitempty" mapstructure:"disabled_rules"`
}

type DiffConfig struct {
	ChangedOnly bool     `yaml:"changed_only" json:"changed_only" mapstructure:"changed_only"`
	Only        []string `yaml:"only,omitempty" json:"only,omitempty" mapstructure:"only"`
}

type OutputConfig struct {
	Format    string `yaml:"format" json:"format" mapstructure:"format"`
	Color     bool   `yaml:"color" json:"color" mapstructure:"color"`
	WrapWidth int    `yaml:"wrap_width" json:"wrap_width" mapstructure:"wrap_width"`
}

type ClientConfig struct {
	Endpoint     string  `yaml:"endpoint" json:"endpoint" mapstructure:"endpoint"`
	Timeout      string  `yaml:"timeout" json:"timeout" mapstructure:"timeout"`
	SampleSize   int     `yaml:"sample_size" json:"sample_size" mapstructure:"sample_size"`
	RateLimit    float64 `yaml:"rate_limit" json:"rate_limit" mapstructure:"rate_limit"`
	ConnectionID string  `yaml:"connection_id,omitempty" json:"connection_id,omitempty" mapstructure:"connection_id"`
	Database     string  `yaml:"database,omitempty" json:"database,omitempty" mapstructure:"database"`
	Collection   string  `yaml:"collection,omitempty" json:"collection,omitempty" mapstructure:"collection"`
}

// TimeoutDuration parses Timeout. An empty value yields zero.
func (c ClientConfig) TimeoutDuration() (time.Duration, error) {
	if c.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid client timeout '%s': %w", c.Timeout, err)
	}
	return d, nil
}

var (
	OutputFormats = []string{"table", "json", "yaml", "mermaid", "dot"}
	ChartTypes    = []string{"auto", "bar", "pie", "line", "table"}
)

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		MaxDepth:    document.DefaultMaxDepth,
		Concurrency: 4,
		Chart: ChartConfig{
			DefaultType: "auto",
		},
		Output: OutputConfig{
			Format:    "table",
			Color:     true,
			WrapWidth: 80,
		},
		Client: ClientConfig{
			Endpoint:   "http://localhost:3001/api",
			Timeout:    "30s",
			SampleSize: 10,
		},
	}
}

// LoadConfig loads configuration from a YAML or JSON file. Settings missing
// from the file keep their default values.
func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("reading config file '%s': %w", filename, err)
	}

	config := DefaultConfig()

	err = yaml.Unmarshal(data, config)
	if err != nil {
		// If YAML fails, try JSON
		config = DefaultConfig()
		err = json.Unmarshal(data, config)
		if err != nil {
			return nil, fmt.Errorf("failed to parse config file as YAML or JSON: %w", err)
		}
	}

	return config, nil
}

// SaveConfig writes config to filename, as JSON for a .json extension and
// YAML otherwise.
func SaveConfig(config *Config, filename string) error {
	var data []byte
	var err error

	if strings.EqualFold(filepath.Ext(filename), ".json") {
		data, err = json.MarshalIndent(config, "", "  ")
	} else {
		data, err = yaml.Marshal(config)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	return os.WriteFile(filename, data, 0644)
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error

	if c.MaxDepth <= 0 {
		errs = append(errs, fmt.Errorf("max_depth must be positive, got %d", c.MaxDepth))
	}
	if c.Concurrency <= 0 {
		errs = append(errs, fmt.Errorf("concurrency must be positive, got %d", c.Concurrency))
	}
	if !contains(ChartTypes, c.Chart.DefaultType) {
		errs = append(errs, fmt.Errorf("chart.default_type must be one of %s, got '%s'", strings.Join(ChartTypes, ", "), c.Chart.DefaultType))
	}
	knownRules := make(map[string]bool)
	for _, rule := range chart.Rules() {
		knownRules[rule.Name] = true
	}
	for _, name := range c.Chart.DisabledRules {
		if !knownRules[name] {
			errs = append(errs, fmt.Errorf("chart.disabled_rules: unknown rule '%s'", name))
		}
	}
	for _, t := range c.Diff.Only {
		if !contains([]string{"added", "removed", "modified", "unchanged"}, t) {
			errs = append(errs, fmt.Errorf("diff.only: unknown change type '%s'", t))
		}
	}
	if !contains(OutputFormats, c.Output.Format) {
		errs = append(errs, fmt.Errorf("output.format must be one of %s, got '%s'", strings.Join(OutputFormats, ", "), c.Output.Format))
	}
	if c.Output.WrapWidth < 0 {
		errs = append(errs, fmt.Errorf("output.wrap_width must not be negative, got %d", c.Output.WrapWidth))
	}
	if _, err := c.Client.TimeoutDuration(); err != nil {
		errs = append(errs, err)
	}
	if c.Client.SampleSize <= 0 {
		errs = append(errs, fmt.Errorf("client.sample_size must be positive, got %d", c.Client.SampleSize))
	}
	if c.Client.RateLimit < 0 {
		errs = append(errs, fmt.Errorf("client.rate_limit must not be negative, got %v", c.Client.RateLimit))
	}

	return errors.Join(errs...)
}

// ChartRegistry returns the default classification rules minus those
// disabled in the configuration.
func (c *Config) ChartRegistry() *chart.RuleRegistry {
	registry := chart.DefaultRegistry()
	for _, name := range c.Chart.DisabledRules {
		registry.SetEnabled(name, false)
	}
	return registry
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
