// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Parley Contributors

// Package sqlite implements a local single-file session store backend. It is
// intended for development and single-node deployments where no Redis server
// is available; TTL expiry is emulated through an expires_at column checked
// on read.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/parley-dev/parley/internal/store"
	parleyerr "github.com/parley-dev/parley/pkg/errors"
)

func init() {
	store.RegisterBackend("sqlite", func(cfg *store.Config) (store.SessionStore, error) {
		return New(cfg)
	})
}

// Compile-time interface check.
var _ store.SessionStore = (*Store)(nil)

// Store implements store.SessionStore backed by SQLite.
type Store struct {
	db  *sql.DB
	ttl time.Duration
	log *slog.Logger

	// nowFunc is replaceable in tests to exercise expiry.
	nowFunc func() time.Time
}

// New opens (or creates) the database at cfg.Path and initialises the
// interview_sessions table.
func New(cfg *store.Config) (*Store, error) {
	if cfg == nil || cfg.Path == "" {
		return nil, parleyerr.New(parleyerr.CodeConfigValidateInvalidValue,
			"sqlite store: database path is required", parleyerr.FieldBackend("sqlite"))
	}

	db, err := sql.Open("sqlite3", cfg.Path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, parleyerr.Wrap(err, parleyerr.CodeStoreConnectFailure, "opening sqlite db")
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, parleyerr.Wrap(err, parleyerr.CodeStoreConnectFailure, "pinging sqlite db")
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, parleyerr.Wrap(err, parleyerr.CodeStoreConnectFailure, "migrating sqlite db")
	}

	return &Store{
		db:      db,
		ttl:     cfg.TTL(),
		log:     slog.With("component", "store", "backend", "sqlite"),
		nowFunc: time.Now,
	}, nil
}

func migrate(db *sql.DB) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS interview_sessions (
	session_id TEXT PRIMARY KEY,
	record     TEXT NOT NULL,
	expires_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_interview_sessions_expires ON interview_sessions(expires_at);
`
	_, err := db.Exec(ddl)
	return err
}

func (s *Store) CreateSession(ctx context.Context, sessionID, name, topic, firstQuestion, position string) (*store.InterviewSession, error) {
	if sessionID == "" {
		return nil, parleyerr.New(parleyerr.CodeStoreInvalidInput, "session id must not be empty")
	}

	session := store.NewInterviewSession(sessionID, name, topic, firstQuestion, position)
	if err := s.writeSession(ctx, session); err != nil {
		return nil, err
	}

	s.log.Info("session created", "session_id", sessionID)
	return session, nil
}

func (s *Store) GetSession(ctx context.Context, sessionID string) (*store.InterviewSession, error) {
	if sessionID == "" {
		return nil, parleyerr.New(parleyerr.CodeStoreInvalidInput, "session id must not be empty")
	}

	const q = `SELECT record, expires_at FROM interview_sessions WHERE session_id = ?`

	var record, expiresAt string
	err := s.db.QueryRowContext(ctx, q, sessionID).Scan(&record, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, parleyerr.New(parleyerr.CodeStoreSessionNotFound,
			"session not found", parleyerr.FieldSessionID(sessionID))
	}
	if err != nil {
		return nil, parleyerr.Wrap(err, parleyerr.CodeStoreReadFailure,
			"reading session", parleyerr.FieldSessionID(sessionID))
	}

	// Lazy expiry: a record past its deadline is reported as absent and
	// deleted opportunistically.
	deadline, err := time.Parse(time.RFC3339Nano, expiresAt)
	if err == nil && s.nowFunc().After(deadline) {
		_, _ = s.db.ExecContext(ctx, `DELETE FROM interview_sessions WHERE session_id = ?`, sessionID)
		return nil, parleyerr.New(parleyerr.CodeStoreSessionNotFound,
			"session expired", parleyerr.FieldSessionID(sessionID))
	}

	var session store.InterviewSession
	if err := json.Unmarshal([]byte(record), &session); err != nil {
		s.log.Error("undecodable session record, treating as missing",
			"session_id", sessionID, "error", err)
		return nil, parleyerr.New(parleyerr.CodeStoreSessionNotFound,
			"session record undecodable", parleyerr.FieldSessionID(sessionID))
	}

	return &session, nil
}

func (s *Store) UpdateSession(ctx context.Context, sessionID, answer, nextQuestion string, completed bool) (*store.InterviewSession, error) {
	session, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	session.ApplyTurn(answer, nextQuestion, completed)

	if err := s.writeSession(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// writeSession upserts the record with a fresh expiry deadline (sliding TTL).
func (s *Store) writeSession(ctx context.Context, session *store.InterviewSession) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return parleyerr.Wrap(err, parleyerr.CodeStoreWriteFailure,
			"encoding session", parleyerr.FieldSessionID(session.SessionID))
	}

	now := s.nowFunc().UTC()
	const q = `INSERT INTO interview_sessions (session_id, record, expires_at, updated_at)
VALUES (?, ?, ?, ?)
ON CONFLICT(session_id) DO UPDATE SET record = excluded.record, expires_at = excluded.expires_at, updated_at = excluded.updated_at`

	_, err = s.db.ExecContext(ctx, q,
		session.SessionID,
		string(payload),
		now.Add(s.ttl).Format(time.RFC3339Nano),
		now.Format(time.RFC3339Nano),
	)
	if err != nil {
		return parleyerr.Wrap(err, parleyerr.CodeStoreWriteFailure,
			"writing session", parleyerr.FieldSessionID(session.SessionID))
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return parleyerr.Wrap(err, parleyerr.CodeStoreConnectFailure, "pinging sqlite db")
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
