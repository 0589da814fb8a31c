// Loopfeed - Short Video and Photo Social Feed Backend
// Copyright 2026 Loopfeed contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/loopfeedapp/loopfeed

// Package cache provides the small in-memory TTL cache used on hot
// read paths.
package cache

import (
	"sync"
	"time"
)

// Stats tracks cache effectiveness.
type Stats struct {
	Hits   int64
	Misses int64
}

// TTL is a thread-safe single-value cache with expiration. It holds
// one value at a time; Loopfeed uses it for the popularity ranking,
// which has exactly one instance per process. A zero or negative ttl
// disables caching entirely.
type TTL[V any] struct {
	mu       sync.Mutex
	value    V
	storedAt time.Time
	present  bool
	ttl      time.Duration
	stats    Stats
}

// NewTTL creates a cache holding values for ttl.
func NewTTL[V any](ttl time.Duration) *TTL[V] {
	return &TTL[V]{ttl: ttl}
}

// Get returns the cached value if it is still fresh.
func (c *TTL[V]) Get() (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.present || c.ttl <= 0 || time.Since(c.storedAt) >= c.ttl {
		c.stats.Misses++
		var zero V
		return zero, false
	}
	c.stats.Hits++
	return c.value, true
}

// Set stores a value, restarting its TTL.
func (c *TTL[V]) Set(v V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.value = v
	c.storedAt = time.Now()
	c.present = true
}

// Clear drops the cached value.
func (c *TTL[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	var zero V
	c.value = zero
	c.present = false
}

// GetStats returns a snapshot of hit and miss counts.
func (c *TTL[V]) GetStats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}
