// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Parley Contributors

// Package redis implements the authoritative session store backend on a
// TTL-capable Redis-compatible server (e.g. Upstash over TLS).
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/parley-dev/parley/internal/store"
	parleyerr "github.com/parley-dev/parley/pkg/errors"
)

func init() {
	store.RegisterBackend("redis", func(cfg *store.Config) (store.SessionStore, error) {
		return New(cfg)
	})
}

const (
	// keyPrefix namespaces session records; the value matches what earlier
	// deployments wrote so existing records remain readable.
	keyPrefix = "interview_session:"

	// defaultConnectTimeout caps a single dial.
	defaultConnectTimeout = 5 * time.Second

	// maxReconnectAttempts caps the client's internal reconnect strategy
	// before an operation surfaces a hard connect failure.
	maxReconnectAttempts = 3

	// connectPollInterval is how long a caller waits for a concurrent
	// connection attempt before taking over.
	connectPollInterval = 500 * time.Millisecond
)

// Compile-time interface check.
var _ store.SessionStore = (*Store)(nil)

// Store implements store.SessionStore backed by Redis. The client is a
// single shared handle, established lazily on first use; concurrent callers
// needing a not-yet-open connection wait briefly for the in-flight attempt
// instead of racing to open duplicates.
type Store struct {
	opts  *goredis.Options
	ttl   time.Duration
	retry store.RetryPolicy
	log   *slog.Logger

	mu         sync.Mutex
	client     *goredis.Client
	connecting bool

	// pollInterval is how often a waiter re-checks an in-flight attempt;
	// overridable for tests.
	pollInterval time.Duration
}

// New parses the connection URL and prepares a Store. No connection is made
// until the first operation.
func New(cfg *store.Config) (*Store, error) {
	if cfg == nil || cfg.URL == "" {
		return nil, parleyerr.New(parleyerr.CodeConfigValidateInvalidValue,
			"redis store: connection URL is required", parleyerr.FieldBackend("redis"))
	}

	opts, err := goredis.ParseURL(cfg.URL)
	if err != nil {
		return nil, parleyerr.Wrapf(err, parleyerr.CodeConfigValidateInvalidValue,
			"redis store: parsing connection URL")
	}

	connectTimeout := cfg.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = defaultConnectTimeout
	}
	opts.DialTimeout = connectTimeout
	// The client retries a broken connection itself with increasing delay;
	// beyond the cap the failure escalates to the operation-level policy.
	opts.MaxRetries = maxReconnectAttempts
	opts.MinRetryBackoff = 250 * time.Millisecond
	opts.MaxRetryBackoff = 10 * time.Second

	return &Store{
		opts:         opts,
		ttl:          cfg.TTL(),
		retry:        cfg.Retry(),
		pollInterval: connectPollInterval,
		log:          slog.With("component", "store", "backend", "redis"),
	}, nil
}

// getClient returns the shared client, establishing it on first use. The
// connecting flag serializes establishment: at most one caller dials at a
// time, and waiters poll until the attempt settles instead of racing to
// open duplicates.
func (s *Store) getClient(ctx context.Context) (*goredis.Client, error) {
	for {
		s.mu.Lock()
		if s.client != nil {
			c := s.client
			s.mu.Unlock()
			return c, nil
		}
		if !s.connecting {
			// Claim the attempt. Anyone else arriving now waits.
			s.connecting = true
			s.mu.Unlock()
			break
		}
		s.mu.Unlock()

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(s.pollInterval):
		}
	}

	client := goredis.NewClient(s.opts)
	pingCtx, cancel := context.WithTimeout(ctx, s.opts.DialTimeout)
	err := client.Ping(pingCtx).Err()
	cancel()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.connecting = false

	if err != nil {
		_ = client.Close()
		return nil, parleyerr.Wrap(err, parleyerr.CodeStoreConnectFailure,
			"connecting to redis", parleyerr.Field("attempts", maxReconnectAttempts))
	}

	s.client = client
	s.log.Info("redis connection established", "addr", s.opts.Addr)
	return client, nil
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

	var raw string
	err := s.retry.Do(ctx, "get_session", func(ctx context.Context) error {
		client, err := s.getClient(ctx)
		if err != nil {
			return err
		}
		val, err := client.Get(ctx, keyPrefix+sessionID).Result()
		if errors.Is(err, goredis.Nil) {
			// Missing is a definitive answer, not a transient failure.
			raw = ""
			return nil
		}
		if err != nil {
			return parleyerr.Wrap(err, parleyerr.CodeStoreReadFailure,
				"reading session", parleyerr.FieldSessionID(sessionID))
		}
		raw = val
		return nil
	})
	if err != nil {
		return nil, err
	}

	if raw == "" {
		return nil, parleyerr.New(parleyerr.CodeStoreSessionNotFound,
			"session not found", parleyerr.FieldSessionID(sessionID))
	}

	var session store.InterviewSession
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		// An undecodable record is treated as absent so callers can apply
		// their expiry policy; the corruption is logged, not raised.
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

	s.log.Debug("session updated",
		"session_id", sessionID,
		"questions", len(session.Questions),
		"answers", len(session.Answers),
		"completed", session.IsCompleted,
	)
	return session, nil
}

// writeSession serializes and SETs the record with the TTL restored to its
// full duration (sliding expiration).
func (s *Store) writeSession(ctx context.Context, session *store.InterviewSession) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return parleyerr.Wrap(err, parleyerr.CodeStoreWriteFailure,
			"encoding session", parleyerr.FieldSessionID(session.SessionID))
	}

	return s.retry.Do(ctx, "write_session", func(ctx context.Context) error {
		client, err := s.getClient(ctx)
		if err != nil {
			return err
		}
		if err := client.Set(ctx, keyPrefix+session.SessionID, payload, s.ttl).Err(); err != nil {
			return parleyerr.Wrap(err, parleyerr.CodeStoreWriteFailure,
				"writing session", parleyerr.FieldSessionID(session.SessionID))
		}
		return nil
	})
}

func (s *Store) Ping(ctx context.Context) error {
	return s.retry.Do(ctx, "ping", func(ctx context.Context) error {
		client, err := s.getClient(ctx)
		if err != nil {
			return err
		}
		return client.Ping(ctx).Err()
	})
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.client == nil {
		return nil
	}
	err := s.client.Close()
	s.client = nil
	if err != nil {
		return parleyerr.Wrap(err, parleyerr.CodeStoreConnectFailure, "closing redis connection")
	}
	s.log.Info("redis connection closed")
	return nil
}
