// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Parley Contributors

// Package interview orchestrates the per-turn state transition of an
// interview session. It is the only component enforcing the session state
// machine; the store and generator stay policy-free.
package interview

import (
	"context"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/parley-dev/parley/internal/generator"
	"github.com/parley-dev/parley/internal/store"
	parleyerr "github.com/parley-dev/parley/pkg/errors"
)

const (
	// MaxAnswerLength caps a candidate answer.
	MaxAnswerLength = 5000
	// MaxNameLength caps the candidate name at session start.
	MaxNameLength = 100
	// MaxTopicLength caps the interview topic at session start.
	MaxTopicLength = 500
	// MaxSessionIDLength caps a session id taken from a request path.
	MaxSessionIDLength = 100

	sessionIDPrefix = "session_"
	sessionIDHexLen = 16

	lookupRetryDelay = 500 * time.Millisecond
)

// stopMarkers in a raw answer mean the candidate wants to end the interview.
var stopMarkers = []string{"stop", "end"}

// AnswerRequestsStop reports whether the candidate's raw answer contains an
// explicit stop request. Matching is case-insensitive substring search, so
// "please stop here" and "let's END" both trigger.
func AnswerRequestsStop(answer string) bool {
	lower := strings.ToLower(answer)
	for _, marker := range stopMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// StartResult is the outcome of opening a new interview.
type StartResult struct {
	SessionID   string
	Question    string
	IsCompleted bool
	Name        string
	Topic       string
	Position    string
}

// TurnResult is the outcome of one answered turn.
type TurnResult struct {
	SessionID   string
	Question    string
	IsCompleted bool
}

// Status is a read-only snapshot of a session.
type Status struct {
	SessionID     string
	IsCompleted   bool
	Position      string
	CreatedAt     time.Time
	QuestionCount int
}

// Manager drives interview sessions against a store and a question
// generator.
type Manager struct {
	store       store.SessionStore
	generator   generator.Generator
	lookupRetry store.RetryPolicy
	createRetry store.RetryPolicy
	log         *slog.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithLookupRetry overrides the policy used when an expected session is not
// yet readable.
func WithLookupRetry(p store.RetryPolicy) Option {
	return func(m *Manager) { m.lookupRetry = p }
}

// WithCreateRetry overrides the policy used for session creation.
func WithCreateRetry(p store.RetryPolicy) Option {
	return func(m *Manager) { m.createRetry = p }
}

// NewManager wires a Manager.
func NewManager(s store.SessionStore, g generator.Generator, opts ...Option) *Manager {
	m := &Manager{
		store:       s,
		generator:   g,
		lookupRetry: store.NewRetryPolicy(store.DefaultRetryAttempts, lookupRetryDelay),
		createRetry: store.DefaultRetryPolicy(),
		log:         slog.With("component", "interview"),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// StartInterview opens a new session: it gates on store availability,
// generates the opening question, persists the session with retries and
// verifies it reads back. Unlike answer turns, a generation failure here
// aborts the start; there is no interview to salvage yet.
func (m *Manager) StartInterview(ctx context.Context, name, topic, position string) (*StartResult, error) {
	if name == "" || topic == "" {
		return nil, parleyerr.New(parleyerr.CodeInterviewStartInvalid,
			"name and interview topic are required")
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return nil, parleyerr.Errorf(parleyerr.CodeInterviewStartInvalid,
			"name must not exceed %d characters", MaxNameLength)
	}
	if utf8.RuneCountInString(topic) > MaxTopicLength {
		return nil, parleyerr.Errorf(parleyerr.CodeInterviewStartInvalid,
			"interview topic must not exceed %d characters", MaxTopicLength)
	}

	if err := m.store.Ping(ctx); err != nil {
		return nil, parleyerr.Wrap(err, parleyerr.CodeServerUnavailable,
			"session store is not reachable")
	}

	first, err := m.generator.FirstQuestion(ctx, name, topic)
	if err != nil {
		return nil, err
	}

	sessionID := newSessionID()

	err = m.createRetry.Do(ctx, "create_session", func(ctx context.Context) error {
		_, err := m.store.CreateSession(ctx, sessionID, name, topic, first.Question, position)
		return err
	})
	if err != nil {
		return nil, parleyerr.Wrap(err, parleyerr.CodeStoreWriteFailure,
			"creating interview session", parleyerr.FieldSessionID(sessionID))
	}

	// Read-back check. A miss here is unusual but not fatal; the write
	// succeeded, so proceed and let the first answer turn retry.
	saved, err := m.store.GetSession(ctx, sessionID)
	if err != nil || saved == nil {
		m.log.Warn("session created but not immediately readable",
			"session_id", sessionID, "error", err)
	}

	m.log.Info("interview started", "session_id", sessionID, "topic", topic)

	result := &StartResult{
		SessionID:   sessionID,
		Question:    first.Question,
		IsCompleted: false,
		Name:        name,
		Topic:       topic,
		Position:    position,
	}
	if result.Position == "" {
		result.Position = store.DefaultPosition
	}
	return result, nil
}

// SubmitAnswer processes one candidate answer: validates it, loads the
// session, evaluates the stop request, generates the next question (falling
// back on generator failure), persists the turn best-effort and returns the
// resulting turn. Persistence failure after retries degrades to an in-memory
// result rather than failing the turn.
func (m *Manager) SubmitAnswer(ctx context.Context, sessionID, answer string) (*TurnResult, error) {
	if sessionID == "" || answer == "" {
		return nil, parleyerr.New(parleyerr.CodeInterviewAnswerInvalid,
			"session id and answer are required")
	}
	if utf8.RuneCountInString(answer) > MaxAnswerLength {
		return nil, parleyerr.Errorf(parleyerr.CodeInterviewAnswerInvalid,
			"answer is too long, limit is %d characters", MaxAnswerLength)
	}

	session, err := m.fetchWithRetry(ctx, sessionID)
	if err != nil {
		if parleyerr.IsNotFound(err) {
			return nil, parleyerr.New(parleyerr.CodeInterviewSessionExpired,
				"interview session has expired or does not exist",
				parleyerr.FieldSessionID(sessionID))
		}
		return nil, err
	}

	if session.IsCompleted {
		return nil, parleyerr.New(parleyerr.CodeInterviewAlreadyCompleted,
			"this interview session is already completed",
			parleyerr.FieldSessionID(sessionID))
	}

	stopRequested := AnswerRequestsStop(answer)

	question := generator.FallbackQuestion
	generatorCompleted := false
	res, genErr := m.generator.NextQuestion(ctx, sessionID, session.Topic,
		session.Questions, append(append([]string(nil), session.Answers...), answer))
	switch {
	case genErr != nil:
		m.log.Warn("question generation failed, using fallback",
			"session_id", sessionID, "error", genErr)
	case res.Question == "":
		// The completion verdict still stands; only the question text is
		// substituted.
		generatorCompleted = res.IsCompleted
		m.log.Warn("generator returned an empty question, using fallback",
			"session_id", sessionID)
	default:
		question = res.Question
		generatorCompleted = res.IsCompleted
	}

	completed := stopRequested || generatorCompleted

	// Best-effort persist. The turn result stands even if the write is
	// lost; the candidate keeps their question and the next turn retries.
	err = m.createRetry.Do(ctx, "update_session", func(ctx context.Context) error {
		_, err := m.store.UpdateSession(ctx, sessionID, answer, question, completed)
		return err
	})
	if err != nil {
		m.log.Warn("could not persist answered turn, continuing",
			"session_id", sessionID, "error", err)
	}

	return &TurnResult{
		SessionID:   sessionID,
		Question:    question,
		IsCompleted: completed,
	}, nil
}

// SessionStatus returns a read-only snapshot of a session.
func (m *Manager) SessionStatus(ctx context.Context, sessionID string) (*Status, error) {
	if err := validateSessionID(sessionID); err != nil {
		return nil, err
	}

	session, err := m.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	return &Status{
		SessionID:     session.SessionID,
		IsCompleted:   session.IsCompleted,
		Position:      session.Position,
		CreatedAt:     session.CreatedAt,
		QuestionCount: len(session.Questions),
	}, nil
}

// fetchWithRetry loads a session, retrying misses briefly. Replication lag
// can make a freshly written session momentarily unreadable, so a miss is
// only final after the retry budget.
func (m *Manager) fetchWithRetry(ctx context.Context, sessionID string) (*store.InterviewSession, error) {
	var session *store.InterviewSession
	err := m.lookupRetry.Do(ctx, "get_session", func(ctx context.Context) error {
		s, err := m.store.GetSession(ctx, sessionID)
		if err != nil {
			return err
		}
		session = s
		return nil
	})
	if err != nil {
		return nil, err
	}
	return session, nil
}

func validateSessionID(sessionID string) error {
	if sessionID == "" {
		return parleyerr.New(parleyerr.CodeInterviewAnswerInvalid, "invalid session id")
	}
	if utf8.RuneCountInString(sessionID) > MaxSessionIDLength {
		return parleyerr.New(parleyerr.CodeInterviewAnswerInvalid, "invalid session id (too long)")
	}
	return nil
}

// newSessionID builds a fresh opaque session id.
func newSessionID() string {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	return sessionIDPrefix + hex[:sessionIDHexLen]
}
