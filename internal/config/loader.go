package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Load reads and merges configuration from global and project paths.
// Order of precedence (highest to lowest): project config, global config, defaults.
// Missing files are not errors; malformed JSON returns an error.
func Load(globalPath, projectPath string) (*PlannerConfig, error) {
	// Start with defaults
	cfg := DefaultConfig()

	// Merge global config if exists
	if globalPath != "" {
		if err := mergeConfigFile(cfg, globalPath); err != nil {
			return nil, fmt.Errorf("loading global config: %w", err)
		}
	}

	// Merge project config if exists (highest precedence)
	if projectPath != "" {
		if err := mergeConfigFile(cfg, projectPath); err != nil {
			return nil, fmt.Errorf("loading project config: %w", err)
		}
	}

	return cfg, nil
}

// LoadDefault loads configuration from conventional paths.
// Global: ~/.taskplanner/config.json
// Project: .taskplanner/config.json (relative to cwd)
func LoadDefault() (*PlannerConfig, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("getting home directory: %w", err)
	}

	globalPath := filepath.Join(homeDir, ".taskplanner", "config.json")
	projectPath := filepath.Join(".taskplanner", "config.json")

	return Load(globalPath, projectPath)
}

// mergeConfigFile reads a JSON config file and merges it into the base
// config. Scalars override only when present; channel entries merge by key.
// Missing files are silently skipped. Malformed JSON returns an error.
func mergeConfigFile(base *PlannerConfig, path string) error {
	// Check if file exists
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil // Missing file is not an error
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	var loaded PlannerConfig
	if err := json.Unmarshal(data, &loaded); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}

	// Scheduling: a zero value means the file did not set the field.
	if loaded.Scheduling.HorizonDays > 0 {
		base.Scheduling.HorizonDays = loaded.Scheduling.HorizonDays
	}
	if loaded.Scheduling.SplitCoverage > 0 {
		base.Scheduling.SplitCoverage = loaded.Scheduling.SplitCoverage
	}
	if loaded.Scheduling.OverloadCoverage > 0 {
		base.Scheduling.OverloadCoverage = loaded.Scheduling.OverloadCoverage
	}

	if loaded.Database.Path != "" {
		base.Database.Path = loaded.Database.Path
	}

	if loaded.Notify.Concurrency > 0 {
		base.Notify.Concurrency = loaded.Notify.Concurrency
	}

	// Merge channels
	for key, channel := range loaded.Notify.Channels {
		base.Notify.Channels[key] = channel
	}

	return nil
}
