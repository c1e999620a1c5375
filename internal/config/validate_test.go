package config

import (
	"strings"
	"testing"
)

func validConfig() *Config {
	cfg := defaultConfig()
	cfg.Provider.Type = "fake"
	return cfg
}

func TestValidateDefaults(t *testing.T) {
	if err := Validate(validConfig()); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Config)
		wantSub string
	}{
		{
			name:    "missing addr",
			mutate:  func(c *Config) { c.Server.Addr = " " },
			wantSub: "server.addr",
		},
		{
			name:    "unknown provider type",
			mutate:  func(c *Config) { c.Provider.Type = "vertex" },
			wantSub: "provider.type",
		},
		{
			name:    "openai without key env",
			mutate:  func(c *Config) { c.Provider.Type = "openai"; c.Provider.APIKeyEnv = "" },
			wantSub: "api_key_env",
		},
		{
			name:    "alpha out of range",
			mutate:  func(c *Config) { c.Engine.SmoothingAlpha = 1.5 },
			wantSub: "smoothing_alpha",
		},
		{
			name: "smoothing floor below scoring floor",
			mutate: func(c *Config) {
				c.Engine.MinTokensForLSM = 20
				c.Engine.MinTokensForSmoothing = 10
			},
			wantSub: "min_tokens_for_smoothing",
		},
		{
			name:    "unknown session backend",
			mutate:  func(c *Config) { c.Sessions.Backend = "dynamo" },
			wantSub: "sessions.backend",
		},
		{
			name:    "redis backend without addr",
			mutate:  func(c *Config) { c.Sessions.Backend = "redis" },
			wantSub: "sessions.redis.addr",
		},
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.EventLog.Level = "verbose" },
			wantSub: "event_log.level",
		},
		{
			name:    "bad archive url",
			mutate:  func(c *Config) { c.EventLog.ArchiveURL = "ftp://archive" },
			wantSub: "archive_url",
		},
		{
			name:    "telemetry without endpoint",
			mutate:  func(c *Config) { c.Telemetry.Enabled = true },
			wantSub: "telemetry",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(cfg)
			err := Validate(cfg)
			if err == nil {
				t.Fatalf("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.wantSub) {
				t.Fatalf("error %q should mention %q", err.Error(), tc.wantSub)
			}
		})
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load("does-not-exist.yaml")
	if err != nil {
		t.Fatalf("missing config file should not error: %v", err)
	}
	if cfg.Server.Addr != ":8000" {
		t.Fatalf("expected default addr, got %q", cfg.Server.Addr)
	}
	if cfg.Engine.SmoothingAlpha != 0.25 {
		t.Fatalf("expected default alpha 0.25, got %v", cfg.Engine.SmoothingAlpha)
	}
	if cfg.Engine.MinTokensForSmoothing != 15 || cfg.Engine.MinTokensForLSM != 5 {
		t.Fatalf("unexpected token floors: %d / %d", cfg.Engine.MinTokensForSmoothing, cfg.Engine.MinTokensForLSM)
	}
}
