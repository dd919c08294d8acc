// AINav - AI Tools Directory with Live Message Wall
// Copyright 2026 AINav contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ainav/ainav

// Package config loads service configuration from built-in defaults, an
// optional YAML file and environment variables, in that order of precedence.
package config

import "time"

// Config is the root configuration for the message wall service.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Stream   StreamConfig   `koanf:"stream"`
	Presence PresenceConfig `koanf:"presence"`
	Messages MessagesConfig `koanf:"messages"`
	Security SecurityConfig `koanf:"security"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port        int           `koanf:"port"`
	Host        string        `koanf:"host"`
	Timeout     time.Duration `koanf:"timeout"`     // Read/shutdown timeout; SSE responses are exempt from the write deadline
	Environment string        `koanf:"environment"` // "development" or "production"
}

// DatabaseConfig holds DuckDB settings for the message table.
type DatabaseConfig struct {
	Path                   string `koanf:"path"`
	MaxMemory              string `koanf:"max_memory"`
	Threads                int    `koanf:"threads"` // 0 = runtime.NumCPU()
	PreserveInsertionOrder bool   `koanf:"preserve_insertion_order"`

	// BreakerThreshold is the number of consecutive read failures that opens
	// the circuit in front of the message store.
	BreakerThreshold uint32 `koanf:"breaker_threshold"`
	// BreakerTimeout is how long the circuit stays open before a probe.
	BreakerTimeout time.Duration `koanf:"breaker_timeout"`
}

// StreamConfig controls the per-connection SSE tickers.
//
// Environment Variables:
//   - STREAM_PRESENCE_INTERVAL: userCount cadence (default: 5s)
//   - STREAM_MESSAGE_INTERVAL: message poll cadence (default: 1s)
//   - STREAM_NOTIFY_ENABLED: poll immediately after an insert (default: true)
//   - STREAM_MAX_BATCH: messages per stream event (default: 100)
type StreamConfig struct {
	PresenceInterval time.Duration `koanf:"presence_interval"`
	MessageInterval  time.Duration `koanf:"message_interval"`
	NotifyEnabled    bool          `koanf:"notify_enabled"`
	MaxBatch         int           `koanf:"max_batch"` // messages per event
}

// PresenceConfig holds the optional expiry for presence entries.
// A zero TTL keeps an origin until it is explicitly decremented.
type PresenceConfig struct {
	TTL           time.Duration `koanf:"ttl"`
	SweepInterval time.Duration `koanf:"sweep_interval"`
}

// MessagesConfig bounds message history reads and inserts.
type MessagesConfig struct {
	HistoryLimit     int `koanf:"history_limit"`
	MaxHistoryLimit  int `koanf:"max_history_limit"`
	MaxContentLength int `koanf:"max_content_length"`
	MaxAuthorLength  int `koanf:"max_author_length"`
}

// SecurityConfig holds rate limiting and CORS settings
type SecurityConfig struct {
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	// MessagePostReqs is the stricter per-IP budget for POST /api/v1/messages.
	MessagePostReqs int      `koanf:"message_post_reqs"`
	CORSOrigins     []string `koanf:"cors_origins"`
}

// LoggingConfig holds logging configuration.
//
// Environment Variables:
//   - LOG_LEVEL: trace, debug, info, warn, error (default: info)
//   - LOG_FORMAT: json, console (default: json)
//   - LOG_CALLER: true/false - include caller file:line (default: false)
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Load reads configuration using the koanf layering in LoadWithKoanf.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
