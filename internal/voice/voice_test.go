// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Parley Contributors

package voice

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parley-dev/parley/internal/store"
	parleyerr "github.com/parley-dev/parley/pkg/errors"
)

func fastRetry() store.RetryPolicy {
	return store.NewRetryPolicy(3, time.Millisecond).
		WithSleep(func(context.Context, time.Duration) error { return nil })
}

func newTestAdapter(t *testing.T, handler http.Handler, sessions SessionReader) *Adapter {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(Config{APIKey: "test-key", BaseURL: srv.URL}, sessions, WithLookupRetry(fastRetry()))
}

func TestSpeakNotConfigured(t *testing.T) {
	a := New(Config{}, nil)

	_, err := a.Speak(context.Background(), "hello there", "", "")
	require.Error(t, err)
	assert.True(t, parleyerr.IsNotConfigured(err))
	assert.False(t, a.Configured())
}

func TestSpeakValidation(t *testing.T) {
	a := newTestAdapter(t, http.NotFoundHandler(), nil)

	_, err := a.Speak(context.Background(), "", "", "")
	require.Error(t, err)
	assert.True(t, parleyerr.IsInvalidInput(err))

	_, err = a.Speak(context.Background(), strings.Repeat("a", MaxTextLength+1), "", "")
	require.Error(t, err)
	assert.True(t, parleyerr.IsInvalidInput(err))
}

func TestSpeak(t *testing.T) {
	var gotBody map[string]any
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/audio/speech", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &gotBody))
		w.Write([]byte("mp3-bytes"))
	})
	a := newTestAdapter(t, handler, nil)

	audio, err := a.Speak(context.Background(), "Tell me about yourself", "", "")
	require.NoError(t, err)
	assert.Equal(t, []byte("mp3-bytes"), audio)
	assert.Equal(t, DefaultVoice, gotBody["voice"])
	assert.Equal(t, "Tell me about yourself.", gotBody["input"], "missing terminal punctuation is appended")
}

func TestSpeakExplicitVoice(t *testing.T) {
	var gotBody map[string]any
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &gotBody))
		w.Write([]byte("x"))
	})
	a := newTestAdapter(t, handler, nil)

	_, err := a.Speak(context.Background(), "What is a goroutine?", "onyx", "")
	require.NoError(t, err)
	assert.Equal(t, "onyx", gotBody["voice"])
	assert.Equal(t, "What is a goroutine?", gotBody["input"], "existing punctuation is kept")
}

func TestSpeakTimesOutHungProvider(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Drain the body so the server notices the client disconnect;
		// with an unread body the request context is never canceled.
		io.Copy(io.Discard, r.Body)
		<-r.Context().Done()
	})
	a := newTestAdapter(t, handler, nil)
	a.timeout = 10 * time.Millisecond

	_, err := a.Speak(context.Background(), "some text to speak", "", "")
	require.Error(t, err)
	assert.True(t, parleyerr.IsUpstreamFailure(err))
}

func TestSpeakUnknownVoiceFallsBack(t *testing.T) {
	var gotBody map[string]any
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &gotBody))
		w.Write([]byte("x"))
	})
	a := newTestAdapter(t, handler, nil)

	_, err := a.Speak(context.Background(), "What is a channel?", "hal9000", "")
	require.NoError(t, err)
	assert.Equal(t, DefaultVoice, gotBody["voice"])
}

func TestSpeakUpstreamFailure(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": {"message": "overloaded"}}`, http.StatusBadGateway)
	})
	a := newTestAdapter(t, handler, nil)

	_, err := a.Speak(context.Background(), "some text to speak", "", "")
	require.Error(t, err)
	assert.True(t, parleyerr.IsUpstreamFailure(err))
}

func TestSpeakUnknownSession(t *testing.T) {
	sessions := store.NewMemoryStore(0)
	a := newTestAdapter(t, http.NotFoundHandler(), sessions)

	_, err := a.Speak(context.Background(), "hello candidate", "", "session_missing")
	require.Error(t, err)
	assert.True(t, parleyerr.IsNotFound(err))
}

func TestSpeakKnownSession(t *testing.T) {
	sessions := store.NewMemoryStore(0)
	_, err := sessions.CreateSession(context.Background(), "session_abc", "Alice", "Go", "Q1", "")
	require.NoError(t, err)

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	a := newTestAdapter(t, handler, sessions)

	_, err = a.Speak(context.Background(), "hello candidate", "", "session_abc")
	require.NoError(t, err)
}

func TestTranscribeNotConfigured(t *testing.T) {
	a := New(Config{}, nil)

	_, err := a.Transcribe(context.Background(), []byte("audio"), "", "")
	require.Error(t, err)
	assert.True(t, parleyerr.IsNotConfigured(err))
}

func TestTranscribeValidation(t *testing.T) {
	a := newTestAdapter(t, http.NotFoundHandler(), nil)

	_, err := a.Transcribe(context.Background(), nil, "", "")
	require.Error(t, err)
	assert.True(t, parleyerr.IsInvalidInput(err))

	_, err = a.Transcribe(context.Background(), make([]byte, MaxAudioBytes+1), "", "")
	require.Error(t, err)
	assert.True(t, parleyerr.IsInvalidInput(err))
}

func TestTranscribe(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/audio/transcriptions", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1 << 20))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"text": "I have five years of Go experience"}`))
	})
	a := newTestAdapter(t, handler, nil)

	text, err := a.Transcribe(context.Background(), []byte("webm-bytes"), "recording.webm", "")
	require.NoError(t, err)
	assert.Equal(t, "I have five years of Go experience", text)
}

func TestVoicesCatalogue(t *testing.T) {
	a := New(Config{}, nil)

	voices := a.Voices()
	require.NotEmpty(t, voices)

	ids := make(map[string]bool, len(voices))
	for _, v := range voices {
		ids[v.ID] = true
	}
	assert.True(t, ids[DefaultVoice], "default voice is in the catalogue")
}
