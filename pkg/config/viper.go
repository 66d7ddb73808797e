package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. STAGE_SMITH_MAX_DEPTH.
const EnvPrefix = "STAGE_SMITH"

// flagKeys maps command-line flag names to configuration keys.
var flagKeys = map[string]string{
	"max-depth":    "max_depth",
	"concurrency":  "concurrency",
	"colors":       "chart.colors",
	"changed-only": "diff.changed_only",
	"only":         "diff.only",
	"format":       "output.format",
	"wrap-width":   "output.wrap_width",
	"endpoint":     "client.endpoint",
	"timeout":      "client.timeout",
	"sample-size":  "client.sample_size",
	"rate-limit":   "client.rate_limit",
	"connection":   "client.connection_id",
	"database":     "client.database",
	"collection":   "client.collection",
}

// NewViper returns a viper instance seeded with the defaults and reading
// STAGE_SMITH_* environment variables.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	d := DefaultConfig()
	v.SetDefault("max_depth", d.MaxDepth)
	v.SetDefault("concurrency", d.Concurrency)
	v.SetDefault("chart.default_type", d.Chart.DefaultType)
	v.SetDefault("chart.colors", d.Chart.Colors)
	v.SetDefault("chart.disabled_rules", d.Chart.DisabledRules)
	v.SetDefault("diff.changed_only", d.Diff.ChangedOnly)
	v.SetDefault("diff.only", d.Diff.Only)
	v.SetDefault("output.format", d.Output.Format)
	v.SetDefault("output.color", d.Output.Color)
	v.SetDefault("output.wrap_width", d.Output.WrapWidth)
	v.SetDefault("client.endpoint", d.Client.Endpoint)
	v.SetDefault("client.timeout", d.Client.Timeout)
	v.SetDefault("client.sample_size", d.Client.SampleSize)
	v.SetDefault("client.rate_limit", d.Client.RateLimit)
	v.SetDefault("client.connection_id", d.Client.ConnectionID)
	v.SetDefault("client.database", d.Client.Database)
	v.SetDefault("client.collection", d.Client.Collection)

	return v
}

// BindFlags binds every known flag present in flags to its configuration
// key. Flags only override the file and environment when set explicitly.
func BindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	var errs []error
	flags.VisitAll(func(f *pflag.Flag) {
		key, ok := flagKeys[f.Name]
		if !ok {
			return
		}
		if err := v.BindPFlag(key, f); err != nil {
			errs = append(errs, fmt.Errorf("binding flag --%s: %w", f.Name, err))
		}
	})
	return errors.Join(errs...)
}

// Load resolves the configuration from defaults, the optional file, the
// environment and any flags already bound to v. Priority rises in that order.
func Load(v *viper.Viper, filename string) (*Config, error) {
	if filename != "" {
		v.SetConfigFile(filename)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file '%s': %w", filename, err)
		}
	}

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return config, nil
}
