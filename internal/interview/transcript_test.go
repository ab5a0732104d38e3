// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Parley Contributors

package interview

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	parleyerr "github.com/parley-dev/parley/pkg/errors"
)

func TestGetTranscript(t *testing.T) {
	s := newFakeStore()
	id := seedSession(t, s, false)
	_, err := s.MemoryStore.UpdateSession(context.Background(), id, "A1", "Q2", false)
	require.NoError(t, err)

	m := newManager(s, &fakeGenerator{})

	tr, err := m.GetTranscript(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, id, tr.SessionID)
	assert.Equal(t, "Go", tr.Topic)
	assert.False(t, tr.IsCompleted)

	// Questions lead answers by one, so the transcript ends on an
	// interviewer turn.
	require.Len(t, tr.Messages, 3)
	assert.Equal(t, Message{Role: RoleInterviewer, Content: "Q1"}, tr.Messages[0])
	assert.Equal(t, Message{Role: RoleCandidate, Content: "A1"}, tr.Messages[1])
	assert.Equal(t, Message{Role: RoleInterviewer, Content: "Q2"}, tr.Messages[2])
}

func TestGetTranscriptFreshSession(t *testing.T) {
	s := newFakeStore()
	id := seedSession(t, s, false)
	m := newManager(s, &fakeGenerator{})

	tr, err := m.GetTranscript(context.Background(), id)
	require.NoError(t, err)
	require.Len(t, tr.Messages, 1)
	assert.Equal(t, RoleInterviewer, tr.Messages[0].Role)
}

func TestGetTranscriptNotFound(t *testing.T) {
	m := newManager(newFakeStore(), &fakeGenerator{})

	_, err := m.GetTranscript(context.Background(), "session_missing")
	require.Error(t, err)
	assert.True(t, parleyerr.IsNotFound(err))
}
