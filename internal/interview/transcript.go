// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Parley Contributors

package interview

import (
	"context"
)

// Role identifies the author of a transcript message.
type Role string

const (
	RoleInterviewer Role = "interviewer"
	RoleCandidate   Role = "candidate"
)

// Message is one turn in a transcript.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Transcript is the ordered conversation of a session.
type Transcript struct {
	SessionID   string    `json:"session_id"`
	Topic       string    `json:"topic"`
	IsCompleted bool      `json:"is_completed"`
	Messages    []Message `json:"messages"`
}

// GetTranscript reconstructs the conversation by zipping questions and
// answers: interviewer message i, then candidate message i when it exists.
// Questions lead answers by one, so the transcript may end on an
// interviewer turn.
func (m *Manager) GetTranscript(ctx context.Context, sessionID string) (*Transcript, error) {
	if err := validateSessionID(sessionID); err != nil {
		return nil, err
	}

	session, err := m.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	messages := make([]Message, 0, len(session.Questions)+len(session.Answers))
	for i, q := range session.Questions {
		messages = append(messages, Message{Role: RoleInterviewer, Content: q})
		if i < len(session.Answers) {
			messages = append(messages, Message{Role: RoleCandidate, Content: session.Answers[i]})
		}
	}

	return &Transcript{
		SessionID:   session.SessionID,
		Topic:       session.Topic,
		IsCompleted: session.IsCompleted,
		Messages:    messages,
	}, nil
}
