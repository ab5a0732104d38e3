// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Parley Contributors

// Package voice bridges interview text to and from audio through an
// OpenAI-compatible audio API (Lemonfox by default). The adapter is strictly
// optional: when no credential is configured every operation fails fast with
// a not-configured error and the rest of the service is unaffected.
package voice

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	openaisdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/parley-dev/parley/internal/store"
	parleyerr "github.com/parley-dev/parley/pkg/errors"
)

const (
	// MaxTextLength caps text submitted for synthesis.
	MaxTextLength = 2000
	// MaxAudioBytes caps audio submitted for transcription.
	MaxAudioBytes = 10 << 20

	// DefaultVoice is used when the caller does not pick one.
	DefaultVoice = "jessica"

	defaultBaseURL         = "https://api.lemonfox.ai/v1"
	defaultSpeechModel     = "tts-1"
	defaultTranscribeModel = "whisper-1"

	sessionLookupDelay = 500 * time.Millisecond

	// upstreamTimeout bounds a single provider call so a hung voice
	// backend surfaces as a failure instead of stalling the request.
	upstreamTimeout = 60 * time.Second
)

// Voice describes one synthesis voice on offer.
type Voice struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Language string `json:"language"`
}

// catalogue is the fixed set of voices the provider serves.
var catalogue = []Voice{
	{ID: "sarah", Name: "Sarah", Language: "en"},
	{ID: "heart", Name: "Heart", Language: "en"},
	{ID: "bella", Name: "Bella", Language: "en"},
	{ID: "michael", Name: "Michael", Language: "en"},
	{ID: "river", Name: "River", Language: "en"},
	{ID: "jessica", Name: "Jessica", Language: "en"},
	{ID: "nova", Name: "Nova", Language: "en"},
	{ID: "skyler", Name: "Skyler", Language: "en"},
	{ID: "eric", Name: "Eric", Language: "en"},
	{ID: "liam", Name: "Liam", Language: "en"},
	{ID: "onyx", Name: "Onyx", Language: "en"},
	{ID: "alice", Name: "Alice", Language: "en-gb"},
	{ID: "emma", Name: "Emma", Language: "en-gb"},
	{ID: "daniel", Name: "Daniel", Language: "en-gb"},
	{ID: "george", Name: "George", Language: "en-gb"},
	{ID: "lewis", Name: "Lewis", Language: "en-gb"},
}

// SessionReader is the slice of the store the adapter needs: existence
// checks only.
type SessionReader interface {
	GetSession(ctx context.Context, sessionID string) (*store.InterviewSession, error)
}

// Config tunes the adapter.
type Config struct {
	// APIKey is the provider credential. Empty means not configured.
	APIKey string

	// BaseURL overrides the provider endpoint.
	BaseURL string

	// SpeechModel and TranscribeModel name the provider models.
	SpeechModel     string
	TranscribeModel string

	// DefaultVoice overrides the package default voice.
	DefaultVoice string
}

// Adapter implements text-to-speech and speech-to-text for interview
// sessions.
type Adapter struct {
	client          openaisdk.Client
	configured      bool
	speechModel     string
	transcribeModel string
	defaultVoice    string
	sessions        SessionReader
	lookupRetry     store.RetryPolicy
	timeout         time.Duration
	log             *slog.Logger
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithLookupRetry overrides the session existence-check retry policy.
func WithLookupRetry(p store.RetryPolicy) Option {
	return func(a *Adapter) { a.lookupRetry = p }
}

// New builds the adapter. A missing API key is not an error here; it makes
// every operation return a not-configured failure so the endpoint layer can
// answer 501.
func New(cfg Config, sessions SessionReader, opts ...Option) *Adapter {
	a := &Adapter{
		configured:      strings.TrimSpace(cfg.APIKey) != "",
		speechModel:     cfg.SpeechModel,
		transcribeModel: cfg.TranscribeModel,
		defaultVoice:    cfg.DefaultVoice,
		sessions:        sessions,
		lookupRetry:     store.NewRetryPolicy(store.DefaultRetryAttempts, sessionLookupDelay),
		timeout:         upstreamTimeout,
		log:             slog.With("component", "voice"),
	}
	if a.speechModel == "" {
		a.speechModel = defaultSpeechModel
	}
	if a.transcribeModel == "" {
		a.transcribeModel = defaultTranscribeModel
	}
	if a.defaultVoice == "" {
		a.defaultVoice = DefaultVoice
	}

	if a.configured {
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = defaultBaseURL
		}
		a.client = openaisdk.NewClient(
			option.WithAPIKey(cfg.APIKey),
			option.WithBaseURL(baseURL),
		)
	}

	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Configured reports whether a credential is present.
func (a *Adapter) Configured() bool { return a.configured }

// Voices lists the available synthesis voices.
func (a *Adapter) Voices() []Voice {
	out := make([]Voice, len(catalogue))
	copy(out, catalogue)
	return out
}

// Speak synthesizes text to audio bytes (mp3). When sessionID is set, the
// session must exist; voice interaction is not permitted against an unknown
// or expired session.
func (a *Adapter) Speak(ctx context.Context, text, voice, sessionID string) ([]byte, error) {
	if !a.configured {
		return nil, parleyerr.New(parleyerr.CodeVoiceNotConfigured,
			"text-to-speech is not configured")
	}
	if text == "" {
		return nil, parleyerr.New(parleyerr.CodeVoiceRequestInvalid,
			"text to convert is required")
	}
	if utf8.RuneCountInString(text) > MaxTextLength {
		return nil, parleyerr.Errorf(parleyerr.CodeVoiceRequestInvalid,
			"text is too long, limit is %d characters", MaxTextLength)
	}

	if err := a.checkSession(ctx, sessionID); err != nil {
		return nil, err
	}

	voice = a.normalizeVoice(voice)

	// A trailing period keeps the synthesis from clipping the last word.
	text = strings.TrimSpace(text)
	if !strings.HasSuffix(text, ".") && !strings.HasSuffix(text, "?") && !strings.HasSuffix(text, "!") {
		text += "."
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	resp, err := a.client.Audio.Speech.New(ctx, openaisdk.AudioSpeechNewParams{
		Model:          openaisdk.SpeechModel(a.speechModel),
		Input:          text,
		Voice:          openaisdk.AudioSpeechNewParamsVoice(voice),
		ResponseFormat: openaisdk.AudioSpeechNewParamsResponseFormatMP3,
	})
	if err != nil {
		return nil, parleyerr.Wrap(err, parleyerr.CodeVoiceUpstreamFailure,
			"speech synthesis request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, parleyerr.Errorf(parleyerr.CodeVoiceUpstreamFailure,
			"speech synthesis returned status %d", resp.StatusCode)
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, parleyerr.Wrap(err, parleyerr.CodeVoiceUpstreamFailure,
			"reading synthesized audio")
	}

	a.log.Debug("text synthesized", "voice", voice, "bytes", len(audio))
	return audio, nil
}

// Transcribe converts recorded audio to text. filename hints the container
// format to the provider ("recording.webm" when unknown).
func (a *Adapter) Transcribe(ctx context.Context, audio []byte, filename, sessionID string) (string, error) {
	if !a.configured {
		return "", parleyerr.New(parleyerr.CodeVoiceNotConfigured,
			"speech-to-text is not configured")
	}
	if len(audio) == 0 {
		return "", parleyerr.New(parleyerr.CodeVoiceRequestInvalid,
			"audio data is required")
	}
	if len(audio) > MaxAudioBytes {
		return "", parleyerr.Errorf(parleyerr.CodeVoiceRequestInvalid,
			"audio is too large, limit is %d bytes", MaxAudioBytes)
	}

	if err := a.checkSession(ctx, sessionID); err != nil {
		return "", err
	}

	if filename == "" {
		filename = "recording.webm"
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	transcription, err := a.client.Audio.Transcriptions.New(ctx, openaisdk.AudioTranscriptionNewParams{
		Model: openaisdk.AudioModel(a.transcribeModel),
		File:  openaisdk.File(bytes.NewReader(audio), filename, "application/octet-stream"),
	})
	if err != nil {
		return "", parleyerr.Wrap(err, parleyerr.CodeVoiceUpstreamFailure,
			"transcription request")
	}

	a.log.Debug("audio transcribed", "bytes", len(audio), "chars", len(transcription.Text))
	return transcription.Text, nil
}

// normalizeVoice maps an empty or unknown selector to the default voice.
func (a *Adapter) normalizeVoice(voice string) string {
	for _, v := range catalogue {
		if v.ID == voice {
			return voice
		}
	}
	return a.defaultVoice
}

// checkSession verifies the session exists when an id was provided, with the
// same miss-retry behavior as answer turns.
func (a *Adapter) checkSession(ctx context.Context, sessionID string) error {
	if sessionID == "" || a.sessions == nil {
		return nil
	}

	err := a.lookupRetry.Do(ctx, "voice_session_check", func(ctx context.Context) error {
		_, err := a.sessions.GetSession(ctx, sessionID)
		return err
	})
	if err != nil {
		if parleyerr.IsNotFound(err) {
			return parleyerr.New(parleyerr.CodeStoreSessionNotFound,
				"interview session does not exist or has expired",
				parleyerr.FieldSessionID(sessionID))
		}
		return err
	}
	return nil
}
