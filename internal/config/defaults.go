package config

import "path/filepath"

// DefaultConfig returns the default configuration.
func DefaultConfig() *PlannerConfig {
	return &PlannerConfig{
		Scheduling: SchedulingConfig{
			HorizonDays:      7,
			SplitCoverage:    0.75,
			OverloadCoverage: 0.5,
		},
		Database: DatabaseConfig{
			Path: filepath.Join(".taskplanner", "planner.db"),
		},
		Notify: NotifyConfig{
			Concurrency: 4,
			Channels: map[string]ChannelConfig{
				"log": {
					Type:    "log",
					Enabled: true,
				},
			},
		},
	}
}
