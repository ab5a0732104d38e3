// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Parley Contributors

package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	parleyerr "github.com/parley-dev/parley/pkg/errors"
)

func TestMemoryStoreCreateAndGet(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(0)

	created, err := s.CreateSession(ctx, "session_abc", "Alice", "Go", "Tell me about yourself.", "Backend Engineer")
	require.NoError(t, err)
	require.Equal(t, "session_abc", created.SessionID)
	require.Equal(t, []string{"Tell me about yourself."}, created.Questions)
	require.Empty(t, created.Answers)
	require.False(t, created.IsCompleted)

	got, err := s.GetSession(ctx, "session_abc")
	require.NoError(t, err)
	assert.Equal(t, created.SessionID, got.SessionID)
	assert.Equal(t, "Backend Engineer", got.Position)
}

func TestMemoryStoreCreateIsIdempotentOverwrite(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(0)

	_, err := s.CreateSession(ctx, "session_abc", "Alice", "Go", "First question?", "")
	require.NoError(t, err)

	// Re-creating the same id replaces the record wholesale.
	_, err = s.CreateSession(ctx, "session_abc", "Bob", "Rust", "Different opener?", "")
	require.NoError(t, err)

	got, err := s.GetSession(ctx, "session_abc")
	require.NoError(t, err)
	assert.Equal(t, "Bob", got.Name)
	assert.Equal(t, []string{"Different opener?"}, got.Questions)
	assert.Empty(t, got.Answers)
}

func TestMemoryStoreDefaultPosition(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(0)

	created, err := s.CreateSession(ctx, "session_abc", "Alice", "Go", "Q1", "")
	require.NoError(t, err)
	assert.Equal(t, DefaultPosition, created.Position)
}

func TestMemoryStoreGetMissing(t *testing.T) {
	s := NewMemoryStore(0)

	_, err := s.GetSession(context.Background(), "nope")
	require.Error(t, err)
	assert.True(t, parleyerr.IsNotFound(err))
}

func TestMemoryStoreUpdateAppendsTurn(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(0)

	_, err := s.CreateSession(ctx, "session_abc", "Alice", "Go", "Q1", "")
	require.NoError(t, err)

	updated, err := s.UpdateSession(ctx, "session_abc", "A1", "Q2", false)
	require.NoError(t, err)
	assert.Equal(t, []string{"Q1", "Q2"}, updated.Questions)
	assert.Equal(t, []string{"A1"}, updated.Answers)
	assert.False(t, updated.IsCompleted)

	updated, err = s.UpdateSession(ctx, "session_abc", "A2", "Thank you.", true)
	require.NoError(t, err)
	assert.True(t, updated.IsCompleted)

	// The completed flag never reverts.
	updated, err = s.UpdateSession(ctx, "session_abc", "A3", "Q4", false)
	require.NoError(t, err)
	assert.True(t, updated.IsCompleted)
}

func TestMemoryStoreUpdateMissingDoesNotCreate(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(0)

	_, err := s.UpdateSession(ctx, "ghost", "answer", "question", false)
	require.Error(t, err)
	assert.True(t, parleyerr.IsNotFound(err))

	_, err = s.GetSession(ctx, "ghost")
	require.Error(t, err, "a failed update must not create the session")
}

func TestMemoryStoreTTLExpiry(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(time.Hour)

	now := time.Now()
	s.SetNowFunc(func() time.Time { return now })

	_, err := s.CreateSession(ctx, "session_abc", "Alice", "Go", "Q1", "")
	require.NoError(t, err)

	now = now.Add(59 * time.Minute)
	_, err = s.GetSession(ctx, "session_abc")
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, err = s.GetSession(ctx, "session_abc")
	require.Error(t, err)
	assert.True(t, parleyerr.IsNotFound(err))
}

func TestMemoryStoreSlidingTTL(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(time.Hour)

	now := time.Now()
	s.SetNowFunc(func() time.Time { return now })

	_, err := s.CreateSession(ctx, "session_abc", "Alice", "Go", "Q1", "")
	require.NoError(t, err)

	// A write near the deadline restores the full TTL.
	now = now.Add(55 * time.Minute)
	_, err = s.UpdateSession(ctx, "session_abc", "A1", "Q2", false)
	require.NoError(t, err)

	now = now.Add(55 * time.Minute)
	_, err = s.GetSession(ctx, "session_abc")
	require.NoError(t, err)
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(0)

	_, err := s.CreateSession(ctx, "session_abc", "Alice", "Go", "Q1", "")
	require.NoError(t, err)

	got, err := s.GetSession(ctx, "session_abc")
	require.NoError(t, err)
	got.Questions[0] = "mutated"
	got.Name = "mutated"

	again, err := s.GetSession(ctx, "session_abc")
	require.NoError(t, err)
	assert.Equal(t, "Q1", again.Questions[0])
	assert.Equal(t, "Alice", again.Name)
}

func TestMemoryStoreEmptySessionID(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(0)

	_, err := s.CreateSession(ctx, "", "Alice", "Go", "Q1", "")
	require.Error(t, err)
	assert.True(t, parleyerr.IsInvalidInput(err))

	_, err = s.GetSession(ctx, "")
	require.Error(t, err)
	assert.True(t, parleyerr.IsInvalidInput(err))
}
