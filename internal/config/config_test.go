package config

import (
	"os"
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"CCEVAL_FLAGS_FILE", "CCEVAL_FORMAT", "CCEVAL_TARGETING_KEY", "CCEVAL_LOG_LEVEL",
	} {
		os.Unsetenv(key)
	}
}

func TestLoad_DefaultValues(t *testing.T) {
	clearEnv(t)

	cfg := Load()

	if cfg.FlagsFile != "flags.json" {
		t.Errorf("FlagsFile = %q, want flags.json", cfg.FlagsFile)
	}
	if cfg.Format != "table" {
		t.Errorf("Format = %q, want table", cfg.Format)
	}
	if cfg.TargetingKey != "" {
		t.Errorf("TargetingKey = %q, want empty", cfg.TargetingKey)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %q, want warn", cfg.LogLevel)
	}
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("CCEVAL_FLAGS_FILE", "custom.json")
	t.Setenv("CCEVAL_FORMAT", "json")
	t.Setenv("CCEVAL_TARGETING_KEY", "user-1")
	t.Setenv("CCEVAL_LOG_LEVEL", "debug")

	cfg := Load()

	if cfg.FlagsFile != "custom.json" {
		t.Errorf("FlagsFile = %q, want custom.json", cfg.FlagsFile)
	}
	if cfg.Format != "json" {
		t.Errorf("Format = %q, want json", cfg.Format)
	}
	if cfg.TargetingKey != "user-1" {
		t.Errorf("TargetingKey = %q, want user-1", cfg.TargetingKey)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
}

func TestLoad_MissingEnvFileIsAcceptable(t *testing.T) {
	clearEnv(t)

	cfg := Load()
	if cfg == nil {
		t.Fatal("Load returned nil")
	}
}
