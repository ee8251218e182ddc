package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestSaveCreatesFile(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.json")

	cfg := DefaultConfig()
	cfg.Scheduling.HorizonDays = 10

	if err := Save(cfg, path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Fatalf("Config file was not created: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read config file: %v", err)
	}

	var loaded PlannerConfig
	if err := json.Unmarshal(data, &loaded); err != nil {
		t.Fatalf("Config file contains invalid JSON: %v", err)
	}
	if loaded.Scheduling.HorizonDays != 10 {
		t.Errorf("Expected horizon 10, got %d", loaded.Scheduling.HorizonDays)
	}
}

func TestSaveCreatesParentDir(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "nested", "deep", "config.json")

	if err := Save(DefaultConfig(), path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Fatalf("Config file was not created: %s", path)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.json")

	cfg := &PlannerConfig{
		Scheduling: SchedulingConfig{
			HorizonDays:      14,
			SplitCoverage:    0.8,
			OverloadCoverage: 0.4,
		},
		Database: DatabaseConfig{Path: "data/planner.db"},
		Notify: NotifyConfig{
			Concurrency: 2,
			Channels: map[string]ChannelConfig{
				"log":  {Type: "log", Enabled: true},
				"hook": {Type: "webhook", Endpoint: "https://example.com/notify", Enabled: true},
			},
		},
	}

	if err := Save(cfg, path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path, "")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if loaded.Scheduling.HorizonDays != 14 {
		t.Errorf("HorizonDays mismatch: got %d", loaded.Scheduling.HorizonDays)
	}
	if loaded.Scheduling.OverloadCoverage != 0.4 {
		t.Errorf("OverloadCoverage mismatch: got %v", loaded.Scheduling.OverloadCoverage)
	}
	if loaded.Database.Path != "data/planner.db" {
		t.Errorf("Database.Path mismatch: got %s", loaded.Database.Path)
	}
	if loaded.Notify.Channels["hook"].Endpoint != "https://example.com/notify" {
		t.Errorf("hook endpoint mismatch: got %s", loaded.Notify.Channels["hook"].Endpoint)
	}
}
