// Package config provides CLI configuration loading from environment
// variables and an optional .env file. It uses viper with sensible
// defaults; command-line flags override anything loaded here.
package config

import "github.com/spf13/viper"

// Config holds the cceval defaults loaded from the environment.
// Priority: environment variables > .env file > defaults.
type Config struct {
	FlagsFile    string // Path to the JSON settings file (CCEVAL_FLAGS_FILE)
	Format       string // Output format: table, json, or yaml (CCEVAL_FORMAT)
	TargetingKey string // Default targeting key for evaluations (CCEVAL_TARGETING_KEY)
	LogLevel     string // zerolog level name (CCEVAL_LOG_LEVEL)
}

// Load reads configuration from environment variables and a .env file if
// one is present. It never fails: missing values fall back to defaults.
func Load() *Config {
	v := viper.New()
	v.SetConfigFile(".env") // optional, silently ignored when absent
	_ = v.ReadInConfig()
	v.AutomaticEnv()

	v.SetDefault("CCEVAL_FLAGS_FILE", "flags.json")
	v.SetDefault("CCEVAL_FORMAT", "table")
	v.SetDefault("CCEVAL_TARGETING_KEY", "")
	v.SetDefault("CCEVAL_LOG_LEVEL", "warn")

	return &Config{
		FlagsFile:    v.GetString("CCEVAL_FLAGS_FILE"),
		Format:       v.GetString("CCEVAL_FORMAT"),
		TargetingKey: v.GetString("CCEVAL_TARGETING_KEY"),
		LogLevel:     v.GetString("CCEVAL_LOG_LEVEL"),
	}
}
