// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Parley Contributors

package store

import "time"

// Config selects and tunes the storage backend. It is the store-layer view
// of the application's storage configuration; cmd wiring maps the viper
// config onto it.
type Config struct {
	// Backend is the registered backend name: "redis", "sqlite" or "memory".
	Backend string

	// URL is the connection URL for networked backends (redis:// or
	// rediss:// for TLS).
	URL string

	// Path is the database file path for the sqlite backend.
	Path string

	// SessionTTL overrides DefaultSessionTTL when positive.
	SessionTTL time.Duration

	// RetryAttempts and RetryBaseDelay tune the per-operation retry
	// policy; zero values take the package defaults.
	RetryAttempts  int
	RetryBaseDelay time.Duration

	// ConnectTimeout caps a single connection attempt for networked
	// backends.
	ConnectTimeout time.Duration
}

// TTL returns the effective session TTL.
func (c *Config) TTL() time.Duration {
	if c != nil && c.SessionTTL > 0 {
		return c.SessionTTL
	}
	return DefaultSessionTTL
}

// Retry returns the effective retry policy.
func (c *Config) Retry() RetryPolicy {
	if c == nil {
		return DefaultRetryPolicy()
	}
	return NewRetryPolicy(c.RetryAttempts, c.RetryBaseDelay)
}
