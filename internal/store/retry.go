// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Parley Contributors

package store

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

const (
	// DefaultRetryAttempts bounds retries of a single store operation.
	DefaultRetryAttempts = 3
	// DefaultRetryBaseDelay is multiplied by the attempt number between
	// tries (linear backoff: base, 2*base, ...).
	DefaultRetryBaseDelay = time.Second
)

// RetryPolicy retries an operation a bounded number of times with linear
// backoff. The zero value is unusable; use DefaultRetryPolicy or construct
// explicitly.
type RetryPolicy struct {
	Attempts  int
	BaseDelay time.Duration

	// sleep is overridable for tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// DefaultRetryPolicy returns the policy applied to store operations:
// 3 attempts, linear attempt-times-base backoff.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{Attempts: DefaultRetryAttempts, BaseDelay: DefaultRetryBaseDelay}
}

// NewRetryPolicy builds a policy with the given bounds, falling back to
// defaults for non-positive values.
func NewRetryPolicy(attempts int, baseDelay time.Duration) RetryPolicy {
	if attempts <= 0 {
		attempts = DefaultRetryAttempts
	}
	if baseDelay <= 0 {
		baseDelay = DefaultRetryBaseDelay
	}
	return RetryPolicy{Attempts: attempts, BaseDelay: baseDelay}
}

// WithSleep returns a copy of the policy using fn to wait between attempts.
// Tests use this to avoid real delays.
func (p RetryPolicy) WithSleep(fn func(ctx context.Context, d time.Duration) error) RetryPolicy {
	p.sleep = fn
	return p
}

// Do runs op until it succeeds, the attempt budget is exhausted, or the
// context is done. Context cancellation is never retried. The last error is
// returned on exhaustion.
func (p RetryPolicy) Do(ctx context.Context, name string, op func(ctx context.Context) error) error {
	attempts := p.Attempts
	if attempts <= 0 {
		attempts = DefaultRetryAttempts
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		lastErr = op(ctx)
		if lastErr == nil {
			return nil
		}
		if errors.Is(lastErr, context.Canceled) || errors.Is(lastErr, context.DeadlineExceeded) {
			return lastErr
		}
		if attempt == attempts {
			break
		}

		slog.Warn("store operation failed, retrying",
			"op", name,
			"attempt", attempt,
			"max_attempts", attempts,
			"error", lastErr,
		)
		if err := p.wait(ctx, p.BaseDelay*time.Duration(attempt)); err != nil {
			return err
		}
	}

	slog.Error("store operation failed after all retries",
		"op", name,
		"attempts", attempts,
		"error", lastErr,
	)
	return lastErr
}

func (p RetryPolicy) wait(ctx context.Context, d time.Duration) error {
	if p.sleep != nil {
		return p.sleep(ctx, d)
	}

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
