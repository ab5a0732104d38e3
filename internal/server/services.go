// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Parley Contributors

package server

import (
	"context"

	"github.com/parley-dev/parley/internal/interview"
	"github.com/parley-dev/parley/internal/voice"
	parleyerr "github.com/parley-dev/parley/pkg/errors"
)

// InterviewService provides the interview operations behind the REST
// handlers. *interview.Manager satisfies it; tests substitute fakes.
type InterviewService interface {
	StartInterview(ctx context.Context, name, topic, position string) (*interview.StartResult, error)
	SubmitAnswer(ctx context.Context, sessionID, answer string) (*interview.TurnResult, error)
	SessionStatus(ctx context.Context, sessionID string) (*interview.Status, error)
	GetTranscript(ctx context.Context, sessionID string) (*interview.Transcript, error)
}

// VoiceService provides the voice operations behind the REST handlers.
// *voice.Adapter satisfies it.
type VoiceService interface {
	Configured() bool
	Voices() []voice.Voice
	Speak(ctx context.Context, text, voiceID, sessionID string) ([]byte, error)
	Transcribe(ctx context.Context, audio []byte, filename, sessionID string) (string, error)
}

// Pinger reports whether the session store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Services holds the dependencies injected into route handlers.
type Services struct {
	interviews InterviewService
	voice      VoiceService
	store      Pinger
}

// NewServices validates and bundles the handler dependencies. The voice
// service is required even when unconfigured so its endpoints can answer
// not-configured instead of 404.
func NewServices(interviews InterviewService, voiceSvc VoiceService, storePinger Pinger) (*Services, error) {
	if interviews == nil {
		return nil, parleyerr.New(parleyerr.CodeServerStartFailure, "interview service is required")
	}
	if voiceSvc == nil {
		return nil, parleyerr.New(parleyerr.CodeServerStartFailure, "voice service is required")
	}
	if storePinger == nil {
		return nil, parleyerr.New(parleyerr.CodeServerStartFailure, "store pinger is required")
	}
	return &Services{interviews: interviews, voice: voiceSvc, store: storePinger}, nil
}

// Interviews returns the interview service.
func (s *Services) Interviews() InterviewService { return s.interviews }

// Voice returns the voice service.
func (s *Services) Voice() VoiceService { return s.voice }

// Store returns the store pinger.
func (s *Services) Store() Pinger { return s.store }

// Wire-level error codes clients branch on. These match what earlier
// deployments of the API returned.
const (
	ErrCodeSessionExpired   = "SESSION_EXPIRED"
	ErrCodeSessionNotFound  = "SESSION_NOT_FOUND"
	ErrCodeNotConfigured    = "API_NOT_CONFIGURED"
	ErrCodeSessionCompleted = "SESSION_COMPLETED"
	ErrCodeSessionError     = "SESSION_ERROR"
	ErrCodeValidation       = "VALIDATION_ERROR"
)

// apiError is the JSON error body. It implements huma.StatusError so
// handlers can return it directly.
type apiError struct {
	status    int
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	ErrorCode string `json:"error_code,omitempty"`
}

func (e *apiError) Error() string  { return e.Message }
func (e *apiError) GetStatus() int { return e.status }

// serviceError maps a domain error onto the wire error body.
func serviceError(err error) *apiError {
	e := &apiError{
		status:  parleyerr.HTTPStatus(err),
		Message: err.Error(),
	}

	switch {
	case parleyerr.IsExpired(err):
		e.ErrorCode = ErrCodeSessionExpired
		e.Message = "Interview session has expired or does not exist. Please start a new session."
	case parleyerr.IsAlreadyCompleted(err):
		e.ErrorCode = ErrCodeSessionCompleted
		e.Message = "This interview session is already completed"
	case parleyerr.IsNotFound(err):
		e.ErrorCode = ErrCodeSessionNotFound
		e.Message = "Interview session does not exist or has expired"
	case parleyerr.IsNotConfigured(err):
		e.ErrorCode = ErrCodeNotConfigured
	case parleyerr.IsInvalidInput(err):
		e.ErrorCode = ErrCodeValidation
	case parleyerr.IsUnavailable(err):
		e.Message = "Database service is currently unavailable. Please try again later."
	}
	return e
}
