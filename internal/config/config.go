// Loopfeed - Short Video and Photo Social Feed Backend
// Copyright 2026 Loopfeed contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/loopfeedapp/loopfeed

// Package config defines the Loopfeed configuration model and its layered
// loader (built-in defaults, optional YAML file, environment overrides).
package config

import (
	"fmt"
	"time"
)

// Config is the root configuration for the Loopfeed server.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Feed     FeedConfig     `koanf:"feed"`
	EventBus EventBusConfig `koanf:"eventbus"`
	API      APIConfig      `koanf:"api"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host        string        `koanf:"host"`
	Port        int           `koanf:"port"`
	Timeout     time.Duration `koanf:"timeout"`
	Environment string        `koanf:"environment"`
}

// DatabaseConfig holds DuckDB settings.
type DatabaseConfig struct {
	// Path is the database file location; ":memory:" for ephemeral use.
	Path string `koanf:"path"`

	// MaxMemory is DuckDB's memory budget, e.g. "2GB".
	MaxMemory string `koanf:"max_memory"`

	// Threads is the DuckDB thread count; 0 uses runtime.NumCPU().
	Threads int `koanf:"threads"`

	// SeedMockData populates the database with generated users, follows,
	// and content on startup. Development only.
	SeedMockData bool `koanf:"seed_mock_data"`
}

// PopularityWeights are the per-interaction weights of the popularity
// score. They are configuration, not inline literals, so deployments can
// retune ranking without a rebuild.
type PopularityWeights struct {
	View    int64 `koanf:"view"`
	Like    int64 `koanf:"like"`
	Comment int64 `koanf:"comment"`
	Save    int64 `koanf:"save"`
	Share   int64 `koanf:"share"`
}

// DefaultPopularityWeights returns the standard 1/5/3/7/10 weighting.
func DefaultPopularityWeights() PopularityWeights {
	return PopularityWeights{View: 1, Like: 5, Comment: 3, Save: 7, Share: 10}
}

// FeedConfig holds feed composition settings.
type FeedConfig struct {
	// DefaultPageSize is used when a request omits limit.
	DefaultPageSize int `koanf:"default_page_size"`

	// MaxPageSize caps the limit a caller may request.
	MaxPageSize int `koanf:"max_page_size"`

	// SourceTimeout bounds each candidate source query. A source that
	// exceeds it contributes nothing to the page.
	SourceTimeout time.Duration `koanf:"source_timeout"`

	// PopularityCacheTTL bounds staleness of the cached popularity
	// ranking. Zero disables the cache.
	PopularityCacheTTL time.Duration `koanf:"popularity_cache_ttl"`

	// PopularityWeights tunes the popularity score.
	PopularityWeights PopularityWeights `koanf:"popularity_weights"`

	// BreakerFailureThreshold is the consecutive-failure count that opens
	// a candidate source's circuit breaker.
	BreakerFailureThreshold uint32 `koanf:"breaker_failure_threshold"`

	// BreakerCooldown is how long an open breaker stays open before
	// probing the source again.
	BreakerCooldown time.Duration `koanf:"breaker_cooldown"`
}

// EventBusConfig holds in-process event bus settings.
type EventBusConfig struct {
	// BufferSize is the per-subscriber buffer capacity. Publishes into a
	// full buffer are dropped for that subscriber, never queued.
	BufferSize int `koanf:"buffer_size"`
}

// APIConfig holds HTTP API settings.
type APIConfig struct {
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Validate checks the configuration for values that would misbehave at
// runtime. It is called by LoadWithKoanf after all layers are applied.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path must not be empty")
	}
	if c.Feed.DefaultPageSize <= 0 {
		return fmt.Errorf("feed.default_page_size must be positive")
	}
	if c.Feed.MaxPageSize < c.Feed.DefaultPageSize {
		return fmt.Errorf("feed.max_page_size %d smaller than default_page_size %d",
			c.Feed.MaxPageSize, c.Feed.DefaultPageSize)
	}
	if c.Feed.SourceTimeout <= 0 {
		return fmt.Errorf("feed.source_timeout must be positive")
	}
	if err := c.Feed.PopularityWeights.validate(); err != nil {
		return err
	}
	if c.EventBus.BufferSize <= 0 {
		return fmt.Errorf("eventbus.buffer_size must be positive")
	}
	return nil
}

func (w PopularityWeights) validate() error {
	for name, v := range map[string]int64{
		"view":    w.View,
		"like":    w.Like,
		"comment": w.Comment,
		"save":    w.Save,
		"share":   w.Share,
	} {
		if v < 0 {
			return fmt.Errorf("feed.popularity_weights.%s must not be negative", name)
		}
	}
	return nil
}
