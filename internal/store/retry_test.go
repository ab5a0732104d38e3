// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Parley Contributors

package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noSleep(context.Context, time.Duration) error { return nil }

func TestRetryPolicySucceedsFirstTry(t *testing.T) {
	p := DefaultRetryPolicy().WithSleep(noSleep)

	calls := 0
	err := p.Do(context.Background(), "op", func(context.Context) error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetryPolicyRecoversAfterTransientFailure(t *testing.T) {
	p := DefaultRetryPolicy().WithSleep(noSleep)

	calls := 0
	err := p.Do(context.Background(), "op", func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryPolicyExhaustsAttempts(t *testing.T) {
	p := NewRetryPolicy(3, time.Millisecond).WithSleep(noSleep)

	calls := 0
	boom := errors.New("boom")
	err := p.Do(context.Background(), "op", func(context.Context) error {
		calls++
		return boom
	})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 3, calls)
}

func TestRetryPolicyLinearBackoff(t *testing.T) {
	var delays []time.Duration
	p := NewRetryPolicy(3, 100*time.Millisecond).WithSleep(func(_ context.Context, d time.Duration) error {
		delays = append(delays, d)
		return nil
	})

	_ = p.Do(context.Background(), "op", func(context.Context) error {
		return errors.New("always")
	})

	// Two waits between three attempts: base, then 2*base.
	require.Equal(t, []time.Duration{100 * time.Millisecond, 200 * time.Millisecond}, delays)
}

func TestRetryPolicyStopsOnContextCancel(t *testing.T) {
	p := DefaultRetryPolicy().WithSleep(noSleep)

	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	err := p.Do(ctx, "op", func(context.Context) error {
		calls++
		cancel()
		return ctx.Err()
	})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls, "context cancellation must not be retried")
}

func TestRetryPolicyDefaults(t *testing.T) {
	p := NewRetryPolicy(0, 0)
	assert.Equal(t, DefaultRetryAttempts, p.Attempts)
	assert.Equal(t, DefaultRetryBaseDelay, p.BaseDelay)
}
