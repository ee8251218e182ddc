package config

// SchedulingConfig tunes the scheduling engine.
type SchedulingConfig struct {
	HorizonDays      int     `json:"horizon_days,omitempty"`      // Days ahead to materialize availability
	SplitCoverage    float64 `json:"split_coverage,omitempty"`    // Minimum fraction of a task coverable by fragments
	OverloadCoverage float64 `json:"overload_coverage,omitempty"` // Relaxed fraction used when demand exceeds supply
}

// DatabaseConfig locates the SQLite task store.
type DatabaseConfig struct {
	Path string `json:"path,omitempty"`
}

// ChannelConfig defines one notification sink. Channels are separate from
// the dispatcher -- a run outcome fans out to every enabled channel.
type ChannelConfig struct {
	Type     string `json:"type"`               // Sink type: "log", "webhook"
	Endpoint string `json:"endpoint,omitempty"` // Webhook URL; unused for log sinks
	Enabled  bool   `json:"enabled"`
}

// NotifyConfig configures run-outcome notification delivery.
type NotifyConfig struct {
	Concurrency int                      `json:"concurrency,omitempty"` // Max channels notified in parallel
	Channels    map[string]ChannelConfig `json:"channels"`
}

// PlannerConfig is the top-level configuration.
type PlannerConfig struct {
	Scheduling SchedulingConfig `json:"scheduling"`
	Database   DatabaseConfig   `json:"database"`
	Notify     NotifyConfig     `json:"notify"`
}
