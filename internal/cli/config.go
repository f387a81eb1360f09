package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Profiles holds named evaluation contexts so repeated evaluations against
// the same user do not need the targeting key and attributes retyped.
type Profiles struct {
	DefaultProfile string             `yaml:"default_profile"`
	Profiles       map[string]Profile `yaml:"profiles"`
}

// Profile is one stored evaluation context.
type Profile struct {
	TargetingKey string            `yaml:"targeting_key"`
	Attributes   map[string]string `yaml:"attributes"`
}

// GetProfilesPath returns the path to the profiles file.
func GetProfilesPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".cceval", "profiles.yaml"), nil
}

// LoadProfiles loads the stored profiles from file.
func LoadProfiles() (*Profiles, error) {
	path, err := GetProfilesPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Return an empty set if the file doesn't exist
			return &Profiles{Profiles: make(map[string]Profile)}, nil
		}
		return nil, fmt.Errorf("failed to read profiles file: %w", err)
	}

	var profiles Profiles
	if err := yaml.Unmarshal(data, &profiles); err != nil {
		return nil, fmt.Errorf("failed to parse profiles file: %w", err)
	}
	if profiles.Profiles == nil {
		profiles.Profiles = make(map[string]Profile)
	}

	return &profiles, nil
}

// SaveProfiles writes the profiles to file.
func SaveProfiles(profiles *Profiles) error {
	path, err := GetProfilesPath()
	if err != nil {
		return err
	}

	// Create directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create profiles directory: %w", err)
	}

	data, err := yaml.Marshal(profiles)
	if err != nil {
		return fmt.Errorf("failed to marshal profiles: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write profiles file: %w", err)
	}

	return nil
}

// GetProfile resolves a profile by name. An empty name falls back to the
// configured default profile; if none is configured either, a zero Profile
// is returned so callers evaluate without a user.
func GetProfile(name string) (*Profile, string, error) {
	profiles, err := LoadProfiles()
	if err != nil {
		return nil, "", err
	}

	if name == "" {
		name = profiles.DefaultProfile
	}
	if name == "" {
		return &Profile{}, "", nil
	}

	profile, ok := profiles.Profiles[name]
	if !ok {
		return nil, "", fmt.Errorf("profile '%s' not found, run 'cceval profile set %s' first", name, name)
	}
	return &profile, name, nil
}

// SetProfile stores or replaces a named profile.
func SetProfile(name string, profile Profile) error {
	profiles, err := LoadProfiles()
	if err != nil {
		return err
	}
	profiles.Profiles[name] = profile
	if profiles.DefaultProfile == "" {
		profiles.DefaultProfile = name
	}
	return SaveProfiles(profiles)
}
