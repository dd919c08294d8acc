// AINav - AI Tools Directory with Live Message Wall
// Copyright 2026 AINav contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ainav/ainav

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Stream.PresenceInterval != 5*time.Second {
		t.Errorf("Stream.PresenceInterval = %v, want 5s", cfg.Stream.PresenceInterval)
	}
	if cfg.Stream.MessageInterval != time.Second {
		t.Errorf("Stream.MessageInterval = %v, want 1s", cfg.Stream.MessageInterval)
	}
	if cfg.Messages.HistoryLimit != 10 {
		t.Errorf("Messages.HistoryLimit = %d, want 10", cfg.Messages.HistoryLimit)
	}
	if cfg.Messages.MaxContentLength != 500 {
		t.Errorf("Messages.MaxContentLength = %d, want 500", cfg.Messages.MaxContentLength)
	}
	if cfg.Presence.TTL != 0 {
		t.Errorf("Presence.TTL = %v, want 0 (disabled)", cfg.Presence.TTL)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"bad port", func(c *Config) { c.Server.Port = 0 }, "HTTP_PORT"},
		{"zero presence interval", func(c *Config) { c.Stream.PresenceInterval = 0 }, "STREAM_PRESENCE_INTERVAL"},
		{"negative message interval", func(c *Config) { c.Stream.MessageInterval = -time.Second }, "STREAM_MESSAGE_INTERVAL"},
		{"zero max batch", func(c *Config) { c.Stream.MaxBatch = 0 }, "STREAM_MAX_BATCH"},
		{"negative ttl", func(c *Config) { c.Presence.TTL = -time.Second }, "PRESENCE_TTL"},
		{"ttl without sweep", func(c *Config) {
			c.Presence.TTL = time.Minute
			c.Presence.SweepInterval = 0
		}, "PRESENCE_SWEEP_INTERVAL"},
		{"history above max", func(c *Config) { c.Messages.HistoryLimit = 500 }, "MESSAGES_MAX_HISTORY_LIMIT"},
		{"unknown log level", func(c *Config) { c.Logging.Level = "loud" }, "LOG_LEVEL"},
		{"unknown log format", func(c *Config) { c.Logging.Format = "xml" }, "LOG_FORMAT"},
		{"rate limit window", func(c *Config) { c.Security.RateLimitWindow = time.Millisecond }, "RATE_LIMIT_WINDOW"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatalf("expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want mention of %s", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_RateLimitDisabledSkipsBounds(t *testing.T) {
	cfg := defaultConfig()
	cfg.Security.RateLimitDisabled = true
	cfg.Security.RateLimitReqs = 0
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected no error with rate limiting disabled, got %v", err)
	}
}

func TestLoadWithKoanf_EnvOverrides(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("STREAM_MESSAGE_INTERVAL", "250ms")
	t.Setenv("PRESENCE_TTL", "2m")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("UNRELATED_VARIABLE", "ignored")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Stream.MessageInterval != 250*time.Millisecond {
		t.Errorf("Stream.MessageInterval = %v, want 250ms", cfg.Stream.MessageInterval)
	}
	if cfg.Presence.TTL != 2*time.Minute {
		t.Errorf("Presence.TTL = %v, want 2m", cfg.Presence.TTL)
	}
	if len(cfg.Security.CORSOrigins) != 2 || cfg.Security.CORSOrigins[1] != "https://b.example" {
		t.Errorf("CORSOrigins = %v", cfg.Security.CORSOrigins)
	}
}

func TestLoadWithKoanf_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  port: 7000
stream:
  presence_interval: 10s
messages:
  history_limit: 20
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("MESSAGES_HISTORY_LIMIT", "15")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}
	if cfg.Server.Port != 7000 {
		t.Errorf("Server.Port = %d, want 7000 from file", cfg.Server.Port)
	}
	if cfg.Stream.PresenceInterval != 10*time.Second {
		t.Errorf("Stream.PresenceInterval = %v, want 10s from file", cfg.Stream.PresenceInterval)
	}
	if cfg.Messages.HistoryLimit != 15 {
		t.Errorf("Messages.HistoryLimit = %d, want 15 from env", cfg.Messages.HistoryLimit)
	}
	if cfg.Stream.MessageInterval != time.Second {
		t.Errorf("Stream.MessageInterval = %v, want default 1s", cfg.Stream.MessageInterval)
	}
}

func TestEnvTransformFunc(t *testing.T) {
	if got := envTransformFunc("DUCKDB_PATH"); got != "database.path" {
		t.Errorf("DUCKDB_PATH -> %q", got)
	}
	if got := envTransformFunc("HOME"); got != "" {
		t.Errorf("HOME should be ignored, got %q", got)
	}
}
