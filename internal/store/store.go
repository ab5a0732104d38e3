// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Parley Contributors

// Package store defines the session store contract and the shared retry
// policy applied around every operation that crosses the network.
package store

import "context"

// SessionStore is the single authoritative persistence interface for
// interview sessions. Backends provide TTL-bounded, last-write-wins storage
// per key; there is no optimistic-concurrency token, so concurrent writers
// to the same session race and the later write wins.
type SessionStore interface {
	// CreateSession writes a fresh record with the full TTL. A record
	// already present under the same key is overwritten — creation is
	// idempotent and fully resets the session.
	CreateSession(ctx context.Context, sessionID, name, topic, firstQuestion, position string) (*InterviewSession, error)

	// GetSession reads and deserializes a record. A missing key — whether
	// never written or evicted by TTL — and an undecodable record both
	// yield an error satisfying errors.IsNotFound; callers decide whether
	// to retry or to treat the absence as expiry.
	GetSession(ctx context.Context, sessionID string) (*InterviewSession, error)

	// UpdateSession performs a read-modify-write: appends the answer and
	// next question, ORs the completed flag, refreshes UpdatedAt, and
	// rewrites the record with the TTL reset to its full duration (sliding
	// expiration). Fails with not-found if the record does not exist; it
	// never creates one implicitly.
	UpdateSession(ctx context.Context, sessionID, answer, nextQuestion string, completed bool) (*InterviewSession, error)

	// Ping checks liveness of the underlying store connection.
	Ping(ctx context.Context) error

	Close() error
}
