// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Parley Contributors

package store

import "time"

// DefaultSessionTTL bounds the lifetime of a session record from its last
// write. Expiry is a designed soft-delete: after it the store reports the
// session as not found, never as an error.
const DefaultSessionTTL = 24 * time.Hour

// DefaultPosition is recorded when a session is created without a target
// job position.
const DefaultPosition = "Unknown position"

// InterviewSession is the sole persisted entity: one interview conversation,
// keyed by SessionID. JSON field names are stable — records written by
// earlier deployments must round-trip unchanged.
type InterviewSession struct {
	SessionID   string    `json:"sessionId"`
	Name        string    `json:"name"`
	Topic       string    `json:"topic"`
	Position    string    `json:"position"`
	Questions   []string  `json:"questions"`
	Answers     []string  `json:"answers"`
	IsCompleted bool      `json:"isCompleted"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// NewInterviewSession constructs a fresh session with the opening question
// and no answers. questions always has at least one element.
func NewInterviewSession(sessionID, name, topic, firstQuestion, position string) *InterviewSession {
	if position == "" {
		position = DefaultPosition
	}
	now := time.Now().UTC()
	return &InterviewSession{
		SessionID:   sessionID,
		Name:        name,
		Topic:       topic,
		Position:    position,
		Questions:   []string{firstQuestion},
		Answers:     []string{},
		IsCompleted: false,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Clone returns a deep copy so callers can mutate without aliasing a cached
// record.
func (s *InterviewSession) Clone() *InterviewSession {
	if s == nil {
		return nil
	}
	cp := *s
	cp.Questions = append([]string(nil), s.Questions...)
	cp.Answers = append([]string(nil), s.Answers...)
	return &cp
}

// ApplyTurn appends one answered turn: the candidate's answer and the next
// interviewer question. The completed flag is monotonic — once true it never
// reverts.
func (s *InterviewSession) ApplyTurn(answer, nextQuestion string, completed bool) {
	s.Answers = append(s.Answers, answer)
	s.Questions = append(s.Questions, nextQuestion)
	if completed {
		s.IsCompleted = true
	}
	s.UpdatedAt = time.Now().UTC()
}
