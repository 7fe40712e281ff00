package domain

import (
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		Posts: []MonitoredPost{
			{URL: "https://shortvid.example/reel/AAA", MessageTemplate: "Hi {username}!"},
		},
		Settings: Settings{
			MaxActionsPerSession: 10,
			APIBaseURL:           "https://api.shortvid.example",
		},
	}
}

func TestCheckIntervalPrecedence(t *testing.T) {
	// Seconds wins when both keys are set.
	s := Settings{CheckIntervalSeconds: 90, CheckIntervalMinutes: 5}
	if got := s.CheckInterval(); got != 90*time.Second {
		t.Fatalf("CheckInterval() = %v, want 90s", got)
	}

	s = Settings{CheckIntervalMinutes: 5}
	if got := s.CheckInterval(); got != 5*time.Minute {
		t.Fatalf("CheckInterval() = %v, want 5m", got)
	}

	s = Settings{}
	if got := s.CheckInterval(); got != DefaultCheckInterval {
		t.Fatalf("CheckInterval() = %v, want default %v", got, DefaultCheckInterval)
	}
}

func TestValidateDerivesPostIDs(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if cfg.Posts[0].ID != "AAA" {
		t.Fatalf("post ID = %q, want AAA", cfg.Posts[0].ID)
	}
}

func TestValidateRejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no posts", func(c *Config) { c.Posts = nil }},
		{"missing url", func(c *Config) { c.Posts[0].URL = "" }},
		{"missing message template", func(c *Config) { c.Posts[0].MessageTemplate = "" }},
		{"zero action budget", func(c *Config) { c.Settings.MaxActionsPerSession = 0 }},
		{"negative delay", func(c *Config) { c.Settings.MinDelaySeconds = -1 }},
		{"max below min delay", func(c *Config) {
			c.Settings.MinDelaySeconds = 5
			c.Settings.MaxDelaySeconds = 2
		}},
		{"missing api base url", func(c *Config) { c.Settings.APIBaseURL = "" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if _, ok := err.(*ConfigValidationError); !ok {
				t.Fatalf("error type = %T, want *ConfigValidationError", err)
			}
		})
	}
}
