// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Parley Contributors

// Package health tracks the availability of upstream dependencies.
package health

import (
	"sync"
	"time"
)

// Metrics exposes the current health state of an upstream dependency
// (session store, question generator, voice provider) for monitoring and
// operator visibility. All fields are point-in-time snapshots safe to
// serialize to JSON.
type Metrics struct {
	FailureCount  int64      `json:"failure_count"`
	LastFailureAt *time.Time `json:"last_failure_at,omitempty"`
	CooldownUntil *time.Time `json:"cooldown_until,omitempty"`
	Available     bool       `json:"available"`
}

// DefaultCooldown is the duration after which a failed dependency becomes
// eligible for retry.
const DefaultCooldown = 30 * time.Second

// Tracker records success and failure of calls against one dependency.
// A dependency is considered available until RecordFailure is called;
// after a failure it stays unavailable for the cooldown period, then
// becomes available again to allow recovery.
type Tracker struct {
	mu           sync.RWMutex
	available    bool
	failedAt     time.Time
	cooldown     time.Duration
	failureCount int64
	nowFunc      func() time.Time // for testing
}

// NewTracker creates a Tracker that starts available. A non-positive
// cooldown takes DefaultCooldown.
func NewTracker(cooldown time.Duration) *Tracker {
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	return &Tracker{
		available: true,
		cooldown:  cooldown,
		nowFunc:   time.Now,
	}
}

// Available reports whether the dependency is available or its cooldown
// has elapsed.
func (t *Tracker) Available() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.availableLocked()
}

// availableLocked requires at least t.mu.RLock.
func (t *Tracker) availableLocked() bool {
	if t.available {
		return true
	}
	return t.nowFunc().Sub(t.failedAt) >= t.cooldown
}

// RecordSuccess marks the dependency as available.
func (t *Tracker) RecordSuccess() {
	t.mu.Lock()
	t.available = true
	t.mu.Unlock()
}

// RecordFailure marks the dependency as unavailable and increments the
// cumulative failure count.
func (t *Tracker) RecordFailure() {
	t.mu.Lock()
	t.available = false
	t.failedAt = t.nowFunc()
	t.failureCount++
	t.mu.Unlock()
}

// Metrics returns a point-in-time snapshot of the tracker's state.
func (t *Tracker) Metrics() Metrics {
	t.mu.RLock()
	defer t.mu.RUnlock()

	m := Metrics{
		FailureCount: t.failureCount,
		Available:    t.availableLocked(),
	}
	if !t.failedAt.IsZero() {
		failedAt := t.failedAt
		m.LastFailureAt = &failedAt
		if !t.available {
			until := t.failedAt.Add(t.cooldown)
			m.CooldownUntil = &until
		}
	}
	return m
}

// SetNowFunc overrides the time source (for testing).
func (t *Tracker) SetNowFunc(fn func() time.Time) {
	t.mu.Lock()
	t.nowFunc = fn
	t.mu.Unlock()
}
