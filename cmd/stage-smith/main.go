package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/wonderfulspam/stage-smith/pkg/config"
	"github.com/wonderfulspam/stage-smith/pkg/differ"
	"github.com/wonderfulspam/stage-smith/pkg/renderer"
)

var (
	cfgFile string
	verbose bool
	noColor bool

	logger    *zap.Logger
	appConfig *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "stage-smith",
	Short: "Inspect the output of each stage of a data pipeline",
	Long: `StageSmith diffs the output of consecutive pipeline stages and turns result
sets into chart-ready series with an inferred visualization type.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zapConfig := zap.NewProductionConfig()
		if verbose {
			zapConfig.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zapConfig.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		v := config.NewViper()
		if err := config.BindFlags(v, cmd.Flags()); err != nil {
			return err
		}
		appConfig, err = config.Load(v, cfgFile)
		if err != nil {
			return err
		}
		logger.Debug("Configuration loaded",
			zap.String("file", cfgFile),
			zap.String("format", appConfig.Output.Format),
			zap.Int("max_depth", appConfig.MaxDepth))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Configuration file (YAML or JSON)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
}

// newRenderer builds a renderer from the resolved configuration
func newRenderer() (*renderer.Renderer, error) {
	format, err := renderer.ParseFormat(appConfig.Output.Format)
	if err != nil {
		return nil, err
	}

	only := make([]differ.ChangeType, 0, len(appConfig.Diff.Only))
	for _, name := range appConfig.Diff.Only {
		types, err := differ.ParseChangeTypes(name)
		if err != nil {
			return nil, err
		}
		only = append(only, types...)
	}

	return renderer.New(renderer.Options{
		Format:      format,
		Color:       appConfig.Output.Color && !noColor,
		WrapWidth:   appConfig.Output.WrapWidth,
		ChangedOnly: appConfig.Diff.ChangedOnly,
		Only:        only,
	}), nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
