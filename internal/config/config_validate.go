// AINav - AI Tools Directory with Live Message Wall
// Copyright 2026 AINav contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ainav/ainav

package config

import (
	"fmt"
	"time"
)

var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}

// Validate checks that configuration values are usable.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateDatabase(); err != nil {
		return err
	}
	if err := c.validateStream(); err != nil {
		return err
	}
	if err := c.validatePresence(); err != nil {
		return err
	}
	if err := c.validateMessages(); err != nil {
		return err
	}
	if err := c.validateRateLimits(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}
	return nil
}

func (c *Config) validateDatabase() error {
	if c.Database.Path == "" {
		return fmt.Errorf("DUCKDB_PATH is required")
	}
	if c.Database.Threads < 0 {
		return fmt.Errorf("DUCKDB_THREADS must not be negative")
	}
	if c.Database.BreakerThreshold == 0 {
		return fmt.Errorf("DUCKDB_BREAKER_THRESHOLD must be at least 1")
	}
	return requirePositive("DUCKDB_BREAKER_TIMEOUT", c.Database.BreakerTimeout)
}

func (c *Config) validateStream() error {
	if err := requirePositive("STREAM_PRESENCE_INTERVAL", c.Stream.PresenceInterval); err != nil {
		return err
	}
	if c.Stream.MaxBatch < 1 {
		return fmt.Errorf("STREAM_MAX_BATCH must be at least 1, got %d", c.Stream.MaxBatch)
	}
	return requirePositive("STREAM_MESSAGE_INTERVAL", c.Stream.MessageInterval)
}

func (c *Config) validatePresence() error {
	if c.Presence.TTL < 0 {
		return fmt.Errorf("PRESENCE_TTL must not be negative")
	}
	if c.Presence.TTL == 0 {
		return nil
	}
	return requirePositive("PRESENCE_SWEEP_INTERVAL", c.Presence.SweepInterval)
}

func (c *Config) validateMessages() error {
	m := c.Messages
	if m.HistoryLimit < 1 {
		return fmt.Errorf("MESSAGES_HISTORY_LIMIT must be at least 1")
	}
	if m.MaxHistoryLimit < m.HistoryLimit {
		return fmt.Errorf("MESSAGES_MAX_HISTORY_LIMIT (%d) must be >= MESSAGES_HISTORY_LIMIT (%d)",
			m.MaxHistoryLimit, m.HistoryLimit)
	}
	if m.MaxContentLength < 1 {
		return fmt.Errorf("MESSAGES_MAX_CONTENT_LENGTH must be at least 1")
	}
	if m.MaxAuthorLength < 1 {
		return fmt.Errorf("MESSAGES_MAX_AUTHOR_LENGTH must be at least 1")
	}
	return nil
}

// validateRateLimits is skipped entirely when rate limiting is disabled.
func (c *Config) validateRateLimits() error {
	if c.Security.RateLimitDisabled {
		return nil
	}
	if c.Security.RateLimitReqs < 1 || c.Security.RateLimitReqs > 100000 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be between 1 and 100000")
	}
	if c.Security.MessagePostReqs < 1 {
		return fmt.Errorf("RATE_LIMIT_MESSAGES must be at least 1")
	}
	if c.Security.RateLimitWindow < time.Second || c.Security.RateLimitWindow > time.Hour {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be between 1s and 1h")
	}
	return nil
}

func (c *Config) validateLogging() error {
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	if c.Logging.Format != "" && !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}

func requirePositive(name string, d time.Duration) error {
	if d <= 0 {
		return fmt.Errorf("%s must be positive, got %v", name, d)
	}
	return nil
}
