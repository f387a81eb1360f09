package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/configcat/openfeature-go/engine/memory"
)

// Settings file shape:
//
//	{
//	  "settings": {
//	    "enabledFeature": {
//	      "value": true,
//	      "variationId": "v-enabled",
//	      "overrides": [
//	        {"identifier": "example@matching.com", "value": false, "variationId": "v-off"}
//	      ]
//	    }
//	  }
//	}
type settingsFile struct {
	Settings map[string]fileSetting `json:"settings"`
}

type fileSetting struct {
	Value       any            `json:"value"`
	VariationID string         `json:"variationId"`
	Overrides   []fileOverride `json:"overrides"`
}

type fileOverride struct {
	Identifier  string `json:"identifier"`
	Value       any    `json:"value"`
	VariationID string `json:"variationId"`
	Percentage  bool   `json:"percentage"`
}

// LoadSettingsFile reads a JSON settings file into the in-memory engine's
// settings map. Integral numbers become int, all other numbers float64, so
// the stored types line up with the typed evaluation calls.
func LoadSettingsFile(path string) (map[string]memory.Setting, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read settings file: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(content))
	dec.UseNumber()
	var file settingsFile
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("parse settings file %s: %w", path, err)
	}
	if file.Settings == nil {
		return nil, fmt.Errorf("settings file %s has no \"settings\" object", path)
	}

	settings := make(map[string]memory.Setting, len(file.Settings))
	for key, fs := range file.Settings {
		setting := memory.Setting{
			Value:       normalizeValue(fs.Value),
			VariationID: fs.VariationID,
		}
		for _, o := range fs.Overrides {
			setting.Overrides = append(setting.Overrides, memory.Override{
				Identifier:  o.Identifier,
				Value:       normalizeValue(o.Value),
				VariationID: o.VariationID,
				Percentage:  o.Percentage,
			})
		}
		settings[key] = setting
	}
	return settings, nil
}

func normalizeValue(v any) any {
	n, ok := v.(json.Number)
	if !ok {
		return v
	}
	if i, err := strconv.ParseInt(n.String(), 10, strconv.IntSize); err == nil {
		return int(i)
	}
	if f, err := n.Float64(); err == nil {
		return f
	}
	return n.String()
}
