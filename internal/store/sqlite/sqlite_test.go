// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Parley Contributors

package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parley-dev/parley/internal/store"
	parleyerr "github.com/parley-dev/parley/pkg/errors"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(&store.Config{
		Backend: "sqlite",
		Path:    filepath.Join(t.TempDir(), "parley.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteCreateGetUpdate(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	created, err := s.CreateSession(ctx, "session_abc", "Alice", "Go", "Q1", "Backend Engineer")
	require.NoError(t, err)
	require.Equal(t, []string{"Q1"}, created.Questions)

	got, err := s.GetSession(ctx, "session_abc")
	require.NoError(t, err)
	assert.Equal(t, "Alice", got.Name)
	assert.Equal(t, "Backend Engineer", got.Position)

	updated, err := s.UpdateSession(ctx, "session_abc", "A1", "Q2", false)
	require.NoError(t, err)
	assert.Equal(t, []string{"Q1", "Q2"}, updated.Questions)
	assert.Equal(t, []string{"A1"}, updated.Answers)

	got, err = s.GetSession(ctx, "session_abc")
	require.NoError(t, err)
	assert.Equal(t, []string{"A1"}, got.Answers)
}

func TestSQLiteCreateOverwrites(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.CreateSession(ctx, "session_abc", "Alice", "Go", "Q1", "")
	require.NoError(t, err)
	_, err = s.CreateSession(ctx, "session_abc", "Bob", "Rust", "Other", "")
	require.NoError(t, err)

	got, err := s.GetSession(ctx, "session_abc")
	require.NoError(t, err)
	assert.Equal(t, "Bob", got.Name)
	assert.Empty(t, got.Answers)
}

func TestSQLiteMissingSession(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.GetSession(ctx, "nope")
	require.Error(t, err)
	assert.True(t, parleyerr.IsNotFound(err))

	_, err = s.UpdateSession(ctx, "nope", "answer", "question", false)
	require.Error(t, err)
	assert.True(t, parleyerr.IsNotFound(err))
}

func TestSQLiteExpiry(t *testing.T) {
	ctx := context.Background()
	s, err := New(&store.Config{
		Backend:    "sqlite",
		Path:       filepath.Join(t.TempDir(), "parley.db"),
		SessionTTL: time.Hour,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	now := time.Now()
	s.nowFunc = func() time.Time { return now }

	_, err = s.CreateSession(ctx, "session_abc", "Alice", "Go", "Q1", "")
	require.NoError(t, err)

	now = now.Add(30 * time.Minute)
	_, err = s.GetSession(ctx, "session_abc")
	require.NoError(t, err)

	now = now.Add(31 * time.Minute)
	_, err = s.GetSession(ctx, "session_abc")
	require.Error(t, err)
	assert.True(t, parleyerr.IsNotFound(err), "an expired record reads as not found")
}

func TestSQLiteRequiresPath(t *testing.T) {
	_, err := New(&store.Config{Backend: "sqlite"})
	require.Error(t, err)
	assert.True(t, parleyerr.IsInvalidInput(err))
}
