package commands

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/configcat/openfeature-go/internal/config"
)

var (
	// Global flags
	flagsFile string
	format    string
	logLevel  string

	logger zerolog.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "cceval",
	Short: "Evaluate feature flags from a local settings file",
	Long: `cceval evaluates feature flags through the full provider pipeline
against a local JSON settings file, without talking to a remote config
service. It is meant for inspecting flag files and reproducing evaluation
results locally.

Examples:
  cceval list --flags flags.json
  cceval eval enabledFeature --type bool --default false
  cceval eval stringSetting --type string --targeting-key user-1 --attr plan=premium`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level, err := zerolog.ParseLevel(logLevel)
		if err != nil {
			level = zerolog.WarnLevel
		}
		logger = zerolog.New(os.Stderr).With().Timestamp().Logger().Level(level)
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cfg := config.Load()

	rootCmd.PersistentFlags().StringVar(&flagsFile, "flags", cfg.FlagsFile, "Path to the JSON settings file")
	rootCmd.PersistentFlags().StringVar(&format, "format", cfg.Format, "Output format (table, json, yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", cfg.LogLevel, "Log level (trace, debug, info, warn, error)")
}
