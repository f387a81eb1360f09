package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/configcat/openfeature-go/internal/cli"
)

var (
	profileTargetingKey string
	profileAttrs        []string
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage stored evaluation profiles",
	Long: `Manage named evaluation contexts stored in ~/.cceval/profiles.yaml,
so repeated evaluations against the same user do not need the targeting key
and attributes retyped.

Examples:
  cceval profile set tester --targeting-key example@matching.com --attr Country=US
  cceval profile list
  cceval eval disabledFeature --type bool --profile tester`,
}

var profileSetCmd = &cobra.Command{
	Use:   "set <name>",
	Short: "Store or replace a profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		attributes := make(map[string]string, len(profileAttrs))
		for _, attr := range profileAttrs {
			name, value, found := strings.Cut(attr, "=")
			if !found || name == "" {
				return fmt.Errorf("invalid attribute %q, expected name=value", attr)
			}
			attributes[name] = value
		}
		return cli.SetProfile(args[0], cli.Profile{
			TargetingKey: profileTargetingKey,
			Attributes:   attributes,
		})
	},
}

var profileListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored profiles",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		profiles, err := cli.LoadProfiles()
		if err != nil {
			return err
		}
		return cli.PrintProfiles(profiles, cli.OutputFormat(format))
	},
}

func init() {
	profileSetCmd.Flags().StringVar(&profileTargetingKey, "targeting-key", "", "Targeting key identifying the evaluation subject")
	profileSetCmd.Flags().StringArrayVar(&profileAttrs, "attr", nil, "Context attribute as name=value (repeatable)")

	profileCmd.AddCommand(profileSetCmd)
	profileCmd.AddCommand(profileListCmd)
	rootCmd.AddCommand(profileCmd)
}
