// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Parley Contributors

package store

import (
	"context"
	"sync"
	"time"

	parleyerr "github.com/parley-dev/parley/pkg/errors"
)

func init() {
	RegisterBackend("memory", func(cfg *Config) (SessionStore, error) {
		return NewMemoryStore(cfg.TTL()), nil
	})
}

// Compile-time interface check.
var _ SessionStore = (*MemoryStore)(nil)

type memoryRecord struct {
	session   *InterviewSession
	expiresAt time.Time
}

// MemoryStore is the in-process backend used for tests and local development.
// It honors the same TTL and last-write-wins semantics as the networked
// backends so the session manager behaves identically against it. It is
// never a mirror of another backend — when selected, it is the single
// source of truth.
type MemoryStore struct {
	mu       sync.Mutex
	records  map[string]memoryRecord
	ttl      time.Duration
	nowFunc  func() time.Time // for TTL tests
}

// NewMemoryStore creates an empty in-memory store with the given TTL.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &MemoryStore{
		records: make(map[string]memoryRecord),
		ttl:     ttl,
		nowFunc: time.Now,
	}
}

// SetNowFunc overrides the time source (for testing TTL eviction).
func (m *MemoryStore) SetNowFunc(fn func() time.Time) {
	m.mu.Lock()
	m.nowFunc = fn
	m.mu.Unlock()
}

func (m *MemoryStore) CreateSession(_ context.Context, sessionID, name, topic, firstQuestion, position string) (*InterviewSession, error) {
	if sessionID == "" {
		return nil, parleyerr.New(parleyerr.CodeStoreInvalidInput, "session id must not be empty")
	}

	session := NewInterviewSession(sessionID, name, topic, firstQuestion, position)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[sessionID] = memoryRecord{
		session:   session.Clone(),
		expiresAt: m.nowFunc().Add(m.ttl),
	}
	return session, nil
}

func (m *MemoryStore) GetSession(_ context.Context, sessionID string) (*InterviewSession, error) {
	if sessionID == "" {
		return nil, parleyerr.New(parleyerr.CodeStoreInvalidInput, "session id must not be empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[sessionID]
	if !ok || !m.nowFunc().Before(rec.expiresAt) {
		// Lazy eviction keeps expired keys from lingering.
		delete(m.records, sessionID)
		return nil, parleyerr.New(parleyerr.CodeStoreSessionNotFound,
			"session not found", parleyerr.FieldSessionID(sessionID))
	}
	return rec.session.Clone(), nil
}

func (m *MemoryStore) UpdateSession(_ context.Context, sessionID, answer, nextQuestion string, completed bool) (*InterviewSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[sessionID]
	if !ok || !m.nowFunc().Before(rec.expiresAt) {
		delete(m.records, sessionID)
		return nil, parleyerr.New(parleyerr.CodeStoreSessionNotFound,
			"session not found for update", parleyerr.FieldSessionID(sessionID))
	}

	session := rec.session.Clone()
	session.ApplyTurn(answer, nextQuestion, completed)

	// Sliding expiration: every successful write restores the full TTL.
	m.records[sessionID] = memoryRecord{
		session:   session.Clone(),
		expiresAt: m.nowFunc().Add(m.ttl),
	}
	return session, nil
}

func (m *MemoryStore) Ping(context.Context) error { return nil }

func (m *MemoryStore) Close() error { return nil }
