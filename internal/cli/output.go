// Package cli provides output rendering and settings-file loading for the
// cceval command.
package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/olekukonko/tablewriter"
	"gopkg.in/yaml.v3"

	"github.com/configcat/openfeature-go/engine/memory"
)

// OutputFormat specifies the output format for CLI commands.
type OutputFormat string

const (
	FormatTable OutputFormat = "table"
	FormatJSON  OutputFormat = "json"
	FormatYAML  OutputFormat = "yaml"
)

// EvaluationRow is the renderable form of a single evaluation result.
type EvaluationRow struct {
	Key          string `json:"key" yaml:"key"`
	Value        any    `json:"value" yaml:"value"`
	Variant      string `json:"variant,omitempty" yaml:"variant,omitempty"`
	Reason       string `json:"reason" yaml:"reason"`
	ErrorCode    string `json:"errorCode,omitempty" yaml:"errorCode,omitempty"`
	ErrorMessage string `json:"errorMessage,omitempty" yaml:"errorMessage,omitempty"`
}

// PrintEvaluation outputs one evaluation result in the specified format.
func PrintEvaluation(row EvaluationRow, format OutputFormat) error {
	switch format {
	case FormatJSON:
		return printJSON(row)
	case FormatYAML:
		return printYAML(row)
	case FormatTable:
		table := newTable("KEY", "VALUE", "VARIANT", "REASON", "ERROR")
		table.Append([]string{
			row.Key,
			fmt.Sprintf("%v", row.Value),
			row.Variant,
			row.Reason,
			errorCell(row),
		})
		table.Render()
		return nil
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

// PrintSettings outputs the flag definitions of a settings file.
func PrintSettings(settings map[string]memory.Setting, format OutputFormat) error {
	switch format {
	case FormatJSON:
		return printJSON(map[string]map[string]memory.Setting{"settings": settings})
	case FormatYAML:
		return printYAML(map[string]map[string]memory.Setting{"settings": settings})
	case FormatTable:
		keys := make([]string, 0, len(settings))
		for k := range settings {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		table := newTable("KEY", "TYPE", "VALUE", "VARIATION", "OVERRIDES")
		for _, k := range keys {
			s := settings[k]
			table.Append([]string{
				k,
				settingType(s.Value),
				fmt.Sprintf("%v", s.Value),
				s.VariationID,
				fmt.Sprintf("%d", len(s.Overrides)),
			})
		}
		table.Render()
		return nil
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

// PrintProfiles outputs the stored evaluation profiles.
func PrintProfiles(profiles *Profiles, format OutputFormat) error {
	switch format {
	case FormatJSON:
		return printJSON(profiles)
	case FormatYAML:
		return printYAML(profiles)
	case FormatTable:
		names := make([]string, 0, len(profiles.Profiles))
		for name := range profiles.Profiles {
			names = append(names, name)
		}
		sort.Strings(names)

		table := newTable("NAME", "TARGETING KEY", "ATTRIBUTES", "DEFAULT")
		for _, name := range names {
			p := profiles.Profiles[name]
			isDefault := ""
			if name == profiles.DefaultProfile {
				isDefault = "*"
			}
			table.Append([]string{
				name,
				p.TargetingKey,
				fmt.Sprintf("%d", len(p.Attributes)),
				isDefault,
			})
		}
		table.Render()
		return nil
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

func newTable(headers ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader(headers)
	table.SetBorder(false)
	table.SetAutoWrapText(false)
	return table
}

func errorCell(row EvaluationRow) string {
	if row.ErrorCode == "" {
		return ""
	}
	return fmt.Sprintf("%s: %s", row.ErrorCode, row.ErrorMessage)
}

func settingType(value any) string {
	switch value.(type) {
	case bool:
		return "bool"
	case int:
		return "int"
	case float64:
		return "float"
	case string:
		return "string"
	default:
		return fmt.Sprintf("%T", value)
	}
}

func printJSON(data any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

func printYAML(data any) error {
	encoder := yaml.NewEncoder(os.Stdout)
	defer encoder.Close()
	return encoder.Encode(data)
}
