package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func writeConfigFile(t *testing.T, dir, name string, cfg *PlannerConfig) string {
	t.Helper()
	data, err := json.Marshal(cfg)
	if err != nil {
		t.Fatalf("failed to marshal config: %v", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name             string
		globalConfig     *PlannerConfig
		projectConfig    *PlannerConfig
		expectHorizon    int
		expectSplit      float64
		expectDBPath     string
		expectChannels   int
		checkChannel     string
		expectChannelURL string
	}{
		{
			name:           "No config files - returns defaults",
			expectHorizon:  7,
			expectSplit:    0.75,
			expectDBPath:   filepath.Join(".taskplanner", "planner.db"),
			expectChannels: 1,
		},
		{
			name: "Global only - overrides horizon, adds channel",
			globalConfig: &PlannerConfig{
				Scheduling: SchedulingConfig{HorizonDays: 14},
				Notify: NotifyConfig{
					Channels: map[string]ChannelConfig{
						"team-hook": {Type: "webhook", Endpoint: "https://example.com/hook", Enabled: true},
					},
				},
			},
			expectHorizon:    14,
			expectSplit:      0.75,
			expectDBPath:     filepath.Join(".taskplanner", "planner.db"),
			expectChannels:   2,
			checkChannel:     "team-hook",
			expectChannelURL: "https://example.com/hook",
		},
		{
			name: "Project only - overrides database path",
			projectConfig: &PlannerConfig{
				Database: DatabaseConfig{Path: "custom/tasks.db"},
			},
			expectHorizon:  7,
			expectSplit:    0.75,
			expectDBPath:   "custom/tasks.db",
			expectChannels: 1,
		},
		{
			name: "Both with merge - project wins on overlap",
			globalConfig: &PlannerConfig{
				Scheduling: SchedulingConfig{HorizonDays: 14, SplitCoverage: 0.9},
			},
			projectConfig: &PlannerConfig{
				Scheduling: SchedulingConfig{HorizonDays: 3},
			},
			expectHorizon:  3,
			expectSplit:    0.9,
			expectDBPath:   filepath.Join(".taskplanner", "planner.db"),
			expectChannels: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir := t.TempDir()

			var globalPath, projectPath string
			if tt.globalConfig != nil {
				globalPath = writeConfigFile(t, tmpDir, "global.json", tt.globalConfig)
			}
			if tt.projectConfig != nil {
				projectPath = writeConfigFile(t, tmpDir, "project.json", tt.projectConfig)
			}

			cfg, err := Load(globalPath, projectPath)
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}

			if cfg.Scheduling.HorizonDays != tt.expectHorizon {
				t.Errorf("HorizonDays: got %d, want %d", cfg.Scheduling.HorizonDays, tt.expectHorizon)
			}
			if cfg.Scheduling.SplitCoverage != tt.expectSplit {
				t.Errorf("SplitCoverage: got %v, want %v", cfg.Scheduling.SplitCoverage, tt.expectSplit)
			}
			if cfg.Database.Path != tt.expectDBPath {
				t.Errorf("Database.Path: got %s, want %s", cfg.Database.Path, tt.expectDBPath)
			}
			if len(cfg.Notify.Channels) != tt.expectChannels {
				t.Errorf("channel count: got %d, want %d", len(cfg.Notify.Channels), tt.expectChannels)
			}
			if tt.checkChannel != "" {
				channel, ok := cfg.Notify.Channels[tt.checkChannel]
				if !ok {
					t.Fatalf("channel %s not found", tt.checkChannel)
				}
				if channel.Endpoint != tt.expectChannelURL {
					t.Errorf("channel endpoint: got %s, want %s", channel.Endpoint, tt.expectChannelURL)
				}
			}
		})
	}
}

func TestLoadMissingFilesAreNotErrors(t *testing.T) {
	cfg, err := Load("/nonexistent/global.json", "/nonexistent/project.json")
	if err != nil {
		t.Fatalf("Load with missing files should not error: %v", err)
	}
	if cfg.Scheduling.HorizonDays != 7 {
		t.Errorf("expected default horizon 7, got %d", cfg.Scheduling.HorizonDays)
	}
}

func TestLoadMalformedJSON(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	if _, err := Load(path, ""); err == nil {
		t.Fatal("expected error for malformed JSON, got nil")
	}
}

func TestLoadDefaultChannelStaysEnabled(t *testing.T) {
	tmpDir := t.TempDir()
	globalPath := writeConfigFile(t, tmpDir, "global.json", &PlannerConfig{
		Notify: NotifyConfig{
			Channels: map[string]ChannelConfig{
				"log": {Type: "log", Enabled: false},
			},
		},
	})

	cfg, err := Load(globalPath, "")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	// A file entry for an existing channel replaces it wholesale.
	if cfg.Notify.Channels["log"].Enabled {
		t.Error("log channel should be disabled by the global file")
	}
}
