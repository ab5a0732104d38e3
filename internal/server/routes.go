// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Parley Contributors

package server

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/parley-dev/parley/internal/interview"
	"github.com/parley-dev/parley/internal/voice"
)

const (
	sessionCookieName = "interview_session_id"
	sessionCookieAge  = 7 * 24 * time.Hour
)

func (s *Server) registerRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "start-interview",
		Method:      http.MethodPost,
		Path:        "/api/v1/interview/start",
		Summary:     "Start a new interview session",
		Tags:        []string{"interview"},
	}, s.handleStartInterview)

	huma.Register(s.api, huma.Operation{
		OperationID: "submit-answer",
		Method:      http.MethodPost,
		Path:        "/api/v1/interview/answer",
		Summary:     "Submit an answer and receive the next question",
		Tags:        []string{"interview"},
	}, s.handleSubmitAnswer)

	huma.Register(s.api, huma.Operation{
		OperationID: "get-session",
		Method:      http.MethodGet,
		Path:        "/api/v1/interview/session/{sessionId}",
		Summary:     "Check interview session status",
		Tags:        []string{"interview"},
	}, s.handleGetSession)

	huma.Register(s.api, huma.Operation{
		OperationID: "get-transcript",
		Method:      http.MethodGet,
		Path:        "/api/v1/interview/session/{sessionId}/transcript",
		Summary:     "Get the interview transcript",
		Tags:        []string{"interview"},
	}, s.handleGetTranscript)

	huma.Register(s.api, huma.Operation{
		OperationID: "list-voices",
		Method:      http.MethodGet,
		Path:        "/api/v1/interview/voices",
		Summary:     "List available synthesis voices",
		Tags:        []string{"voice"},
	}, s.handleListVoices)

	huma.Register(s.api, huma.Operation{
		OperationID: "service-status",
		Method:      http.MethodGet,
		Path:        "/api/v1/status",
		Summary:     "Service status",
		Tags:        []string{"system"},
	}, s.handleStatus)
}

// --- Request/Response types ---

type startInterviewInput struct {
	Body struct {
		Name           string `json:"name" minLength:"1" maxLength:"100" doc:"Candidate name"`
		InterviewTopic string `json:"interview_topic" minLength:"1" maxLength:"500" doc:"Interview topic or field"`
		Position       string `json:"position,omitempty" maxLength:"200" doc:"Target job position"`
	}
}

type sessionInfo struct {
	Name     string `json:"name"`
	Topic    string `json:"topic"`
	Position string `json:"position"`
}

type startInterviewOutput struct {
	SetCookie http.Cookie `header:"Set-Cookie"`
	Body      struct {
		Success     bool        `json:"success"`
		Message     string      `json:"message"`
		SessionID   string      `json:"session_id"`
		Question    string      `json:"question"`
		IsCompleted bool        `json:"is_completed"`
		SessionInfo sessionInfo `json:"session_info"`
	}
}

// submitAnswerInput carries no schema constraints: presence and length
// are checked by the session manager so failures surface as 400 with the
// {success,message,error_code} body rather than schema validation errors.
type submitAnswerInput struct {
	Body struct {
		SessionID string `json:"session_id,omitempty" doc:"Session to answer in"`
		Answer    string `json:"answer,omitempty" doc:"Candidate answer, up to 5000 characters"`
	}
}

type submitAnswerOutput struct {
	SetCookie http.Cookie `header:"Set-Cookie"`
	Body      struct {
		Success     bool   `json:"success"`
		SessionID   string `json:"session_id"`
		Question    string `json:"question"`
		IsCompleted bool   `json:"is_completed"`
	}
}

type sessionIDInput struct {
	SessionID string `path:"sessionId" doc:"Session identifier, up to 100 characters"`
}

type getSessionOutput struct {
	Body struct {
		Success       bool      `json:"success"`
		SessionID     string    `json:"session_id"`
		IsActive      bool      `json:"is_active"`
		IsCompleted   bool      `json:"is_completed"`
		Position      string    `json:"position"`
		CreatedAt     time.Time `json:"created_at"`
		QuestionCount int       `json:"question_count"`
	}
}

type getTranscriptOutput struct {
	Body struct {
		Success    bool                 `json:"success"`
		Transcript interview.Transcript `json:"transcript"`
	}
}

type listVoicesOutput struct {
	Body struct {
		Voices       []voice.Voice `json:"voices"`
		DefaultVoice string        `json:"default_voice"`
	}
}

type statusOutput struct {
	Body struct {
		Status string `json:"status" example:"ok" doc:"Service status"`
		Store  string `json:"store" doc:"Session store reachability"`
		Voice  bool   `json:"voice_configured" doc:"Whether voice endpoints are configured"`
	}
}

// --- Handlers ---

func (s *Server) handleStartInterview(ctx context.Context, input *startInterviewInput) (*startInterviewOutput, error) {
	res, err := s.services.Interviews().StartInterview(ctx,
		input.Body.Name, input.Body.InterviewTopic, input.Body.Position)
	if err != nil {
		return nil, serviceError(err)
	}

	out := &startInterviewOutput{SetCookie: s.sessionCookie(res.SessionID)}
	out.Body.Success = true
	out.Body.Message = "Interview started successfully"
	out.Body.SessionID = res.SessionID
	out.Body.Question = res.Question
	out.Body.IsCompleted = res.IsCompleted
	out.Body.SessionInfo = sessionInfo{
		Name:     res.Name,
		Topic:    res.Topic,
		Position: res.Position,
	}
	return out, nil
}

func (s *Server) handleSubmitAnswer(ctx context.Context, input *submitAnswerInput) (*submitAnswerOutput, error) {
	res, err := s.services.Interviews().SubmitAnswer(ctx, input.Body.SessionID, input.Body.Answer)
	if err != nil {
		return nil, serviceError(err)
	}

	out := &submitAnswerOutput{SetCookie: s.sessionCookie(res.SessionID)}
	out.Body.Success = true
	out.Body.SessionID = res.SessionID
	out.Body.Question = res.Question
	out.Body.IsCompleted = res.IsCompleted
	return out, nil
}

func (s *Server) handleGetSession(ctx context.Context, input *sessionIDInput) (*getSessionOutput, error) {
	status, err := s.services.Interviews().SessionStatus(ctx, input.SessionID)
	if err != nil {
		return nil, serviceError(err)
	}

	out := &getSessionOutput{}
	out.Body.Success = true
	out.Body.SessionID = status.SessionID
	out.Body.IsActive = true
	out.Body.IsCompleted = status.IsCompleted
	out.Body.Position = status.Position
	out.Body.CreatedAt = status.CreatedAt
	out.Body.QuestionCount = status.QuestionCount
	return out, nil
}

func (s *Server) handleGetTranscript(ctx context.Context, input *sessionIDInput) (*getTranscriptOutput, error) {
	tr, err := s.services.Interviews().GetTranscript(ctx, input.SessionID)
	if err != nil {
		return nil, serviceError(err)
	}

	out := &getTranscriptOutput{}
	out.Body.Success = true
	out.Body.Transcript = *tr
	return out, nil
}

func (s *Server) handleListVoices(_ context.Context, _ *struct{}) (*listVoicesOutput, error) {
	out := &listVoicesOutput{}
	out.Body.Voices = s.services.Voice().Voices()
	out.Body.DefaultVoice = voice.DefaultVoice
	return out, nil
}

func (s *Server) handleStatus(ctx context.Context, _ *struct{}) (*statusOutput, error) {
	out := &statusOutput{}
	out.Body.Status = "ok"
	out.Body.Store = "ok"
	out.Body.Voice = s.services.Voice().Configured()

	if err := s.pingStore(ctx); err != nil {
		out.Body.Store = "unreachable"
	}
	return out, nil
}

// sessionCookie builds the week-long session cookie attached to start and
// answer responses.
func (s *Server) sessionCookie(sessionID string) http.Cookie {
	return http.Cookie{
		Name:     sessionCookieName,
		Value:    sessionID,
		MaxAge:   int(sessionCookieAge.Seconds()),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		Secure:   s.cfg.SecureCookies,
	}
}
