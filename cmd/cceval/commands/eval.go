package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	configcat "github.com/configcat/openfeature-go"
	"github.com/configcat/openfeature-go/engine/memory"
	"github.com/configcat/openfeature-go/internal/cli"
	"github.com/configcat/openfeature-go/internal/config"
	"github.com/configcat/openfeature-go/openfeature"
)

var (
	valueType    string
	defaultValue string
	targetingKey string
	attrs        []string
	profileName  string
)

const initializeTimeout = 5 * time.Second

var evalCmd = &cobra.Command{
	Use:   "eval <key>",
	Short: "Evaluate a feature flag",
	Long: `Evaluate a single feature flag through the provider pipeline.

Examples:
  cceval eval enabledFeature --type bool --default false
  cceval eval intSetting --type int --default 0 --format json
  cceval eval disabledFeature --type bool --targeting-key example@matching.com
  cceval eval objectSetting --type object --attr Country=US --attr age=42`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		key := args[0]

		settings, err := cli.LoadSettingsFile(flagsFile)
		if err != nil {
			return err
		}

		client := memory.NewClient(settings)
		provider := configcat.NewProvider(client, configcat.WithLogger(logger))
		defer provider.Shutdown()

		evalCtx, err := buildContext()
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), initializeTimeout)
		defer cancel()
		if err := provider.Initialize(ctx, evalCtx); err != nil {
			return fmt.Errorf("initialize provider: %w", err)
		}

		row, err := evaluateTyped(provider, key)
		if err != nil {
			return err
		}
		return cli.PrintEvaluation(row, cli.OutputFormat(format))
	},
}

// buildContext assembles the evaluation context from the stored profile and
// the command-line flags. Flags override profile values.
func buildContext() (*openfeature.EvaluationContext, error) {
	key := ""
	attributes := make(map[string]openfeature.Value, len(attrs))

	if profileName != "" {
		profile, _, err := cli.GetProfile(profileName)
		if err != nil {
			return nil, err
		}
		key = profile.TargetingKey
		for name, value := range profile.Attributes {
			attributes[name] = parseAttribute(value)
		}
	}

	if targetingKey != "" {
		key = targetingKey
	}
	for _, attr := range attrs {
		name, raw, found := strings.Cut(attr, "=")
		if !found || name == "" {
			return nil, fmt.Errorf("invalid attribute %q, expected name=value", attr)
		}
		attributes[name] = parseAttribute(raw)
	}

	if key == "" && len(attributes) == 0 {
		return nil, nil
	}
	evalCtx := openfeature.NewEvaluationContext(key, attributes)
	return &evalCtx, nil
}

// parseAttribute interprets the value as JSON when possible, so booleans,
// numbers, lists, and objects keep their types; anything else is a string.
func parseAttribute(raw string) openfeature.Value {
	var value openfeature.Value
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		return openfeature.String(raw)
	}
	return value
}

func evaluateTyped(provider *configcat.Provider, key string) (cli.EvaluationRow, error) {
	switch valueType {
	case "bool":
		def := false
		if defaultValue != "" {
			parsed, err := strconv.ParseBool(defaultValue)
			if err != nil {
				return cli.EvaluationRow{}, fmt.Errorf("invalid bool default %q: %w", defaultValue, err)
			}
			def = parsed
		}
		return rowFrom(key, provider.BooleanEvaluation(key, def, nil)), nil
	case "int":
		def := 0
		if defaultValue != "" {
			parsed, err := strconv.Atoi(defaultValue)
			if err != nil {
				return cli.EvaluationRow{}, fmt.Errorf("invalid int default %q: %w", defaultValue, err)
			}
			def = parsed
		}
		return rowFrom(key, provider.IntEvaluation(key, def, nil)), nil
	case "float":
		def := 0.0
		if defaultValue != "" {
			parsed, err := strconv.ParseFloat(defaultValue, 64)
			if err != nil {
				return cli.EvaluationRow{}, fmt.Errorf("invalid float default %q: %w", defaultValue, err)
			}
			def = parsed
		}
		return rowFrom(key, provider.FloatEvaluation(key, def, nil)), nil
	case "string":
		return rowFrom(key, provider.StringEvaluation(key, defaultValue, nil)), nil
	case "object":
		result := provider.ObjectEvaluation(key, openfeature.Null(), nil)
		row := cli.EvaluationRow{
			Key:          key,
			Value:        result.Value.Native(),
			Variant:      result.Variant,
			Reason:       string(result.Reason),
			ErrorCode:    string(result.ErrorCode),
			ErrorMessage: result.ErrorMessage,
		}
		return row, nil
	default:
		return cli.EvaluationRow{}, fmt.Errorf("unsupported value type %q (bool, int, float, string, object)", valueType)
	}
}

func rowFrom[T any](key string, result openfeature.ProviderEvaluation[T]) cli.EvaluationRow {
	return cli.EvaluationRow{
		Key:          key,
		Value:        result.Value,
		Variant:      result.Variant,
		Reason:       string(result.Reason),
		ErrorCode:    string(result.ErrorCode),
		ErrorMessage: result.ErrorMessage,
	}
}

func init() {
	cfg := config.Load()

	evalCmd.Flags().StringVar(&valueType, "type", "bool", "Value type (bool, int, float, string, object)")
	evalCmd.Flags().StringVar(&defaultValue, "default", "", "Default value returned on evaluation failure")
	evalCmd.Flags().StringVar(&targetingKey, "targeting-key", cfg.TargetingKey, "Targeting key identifying the evaluation subject")
	evalCmd.Flags().StringArrayVar(&attrs, "attr", nil, "Context attribute as name=value (repeatable)")
	evalCmd.Flags().StringVar(&profileName, "profile", "", "Stored evaluation profile to use as the context base")

	rootCmd.AddCommand(evalCmd)
}
