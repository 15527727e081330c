package app

import (
	"testing"
	"time"

	"TourneySync/internal/config"
)

func defaultConfig() *config.Config {
	return &config.Config{
		Sync: config.SyncConfig{
			Concurrency:  1,
			HostInterval: 2 * time.Second,
			RunTimeout:   4 * time.Minute,
		},
		Fetch: config.FetchConfig{
			Timeout:      15 * time.Second,
			RetryCount:   3,
			RetryBackoff: time.Second,
		},
		Browser: config.BrowserConfig{NavTimeout: 30 * time.Second},
	}
}

func TestTriggerWriteTimeout(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   time.Duration
	}{
		{
			// 4 candidate paths x 3 attempts x (2s gate + 15s timeout + 1s backoff)
			name:   "defaults",
			mutate: func(*config.Config) {},
			want:   4*time.Minute + 216*time.Second + 30*time.Second,
		},
		{
			// 4 candidates x 3 attempts x (2s + 60s + 1s)
			name:   "browser enabled",
			mutate: func(c *config.Config) { c.Browser.Enabled = true },
			want:   4*time.Minute + 756*time.Second + 30*time.Second,
		},
		{
			// the shared host gate can queue behind every other worker
			name:   "concurrent workers",
			mutate: func(c *config.Config) { c.Sync.Concurrency = 4 },
			want:   4*time.Minute + 288*time.Second + 30*time.Second,
		},
		{
			name:   "unbounded run",
			mutate: func(c *config.Config) { c.Sync.RunTimeout = 0 },
			want:   0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			if got := TriggerWriteTimeout(cfg); got != tt.want {
				t.Errorf("TriggerWriteTimeout = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWriteTimeoutOutlastsSlowestProbingVenue(t *testing.T) {
	cfg := defaultConfig()
	// a direct website venue started the instant before the budget expires
	slowest := cfg.Sync.RunTimeout + 4*(3*cfg.Fetch.Timeout+2*cfg.Fetch.RetryBackoff)
	if got := TriggerWriteTimeout(cfg); got <= slowest {
		t.Errorf("TriggerWriteTimeout = %v, must exceed %v", got, slowest)
	}
}
