package commands

import (
	"github.com/spf13/cobra"

	"github.com/configcat/openfeature-go/internal/cli"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the flags in a settings file",
	Long: `List all flag definitions found in the settings file.

Examples:
  cceval list --flags flags.json
  cceval list --flags flags.json --format json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := cli.LoadSettingsFile(flagsFile)
		if err != nil {
			return err
		}
		return cli.PrintSettings(settings, cli.OutputFormat(format))
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
