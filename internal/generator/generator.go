// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Parley Contributors

// Package generator produces interview questions from conversation history
// through a pluggable LLM backend. The gateway owns prompt construction,
// response extraction, sanitization and the completion heuristics; backends
// only turn a prompt into text.
package generator

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	parleyerr "github.com/parley-dev/parley/pkg/errors"
)

const (
	// MaxQuestions is the question-count ceiling: once the interview holds
	// this many questions the next turn is marked final.
	MaxQuestions = 5

	// FallbackQuestion is substituted by the session manager whenever
	// generation fails. Generation failures never block the interview.
	FallbackQuestion = "Can you share more about your experience?"

	// completionTimeout bounds a single generation call so a hung
	// provider surfaces as a failure instead of stalling the turn.
	completionTimeout = 120 * time.Second
)

// closingMarkers are the phrases in generated text that signal the
// interviewer is wrapping up.
var closingMarkers = []string{"thank you", "completed", "end"}

// ClosingLanguage reports whether generated text contains wrap-up phrasing.
// This is one of the completion heuristics; the others (question ceiling,
// candidate stop request) live with their owners.
func ClosingLanguage(text string) bool {
	lower := strings.ToLower(text)
	for _, marker := range closingMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// Result is one generated interview turn.
type Result struct {
	Question    string
	IsCompleted bool
}

// Generator produces interview questions.
type Generator interface {
	// FirstQuestion opens an interview for a named candidate on a topic.
	// The result is always not-completed.
	FirstQuestion(ctx context.Context, name, topic string) (Result, error)

	// NextQuestion continues an interview from its history. IsCompleted
	// is the OR of the question ceiling and closing language in the
	// generated text; the candidate's own stop request is evaluated by
	// the caller.
	NextQuestion(ctx context.Context, sessionID, topic string, questions, answers []string) (Result, error)

	Close() error
}

// CompletionRequest is the backend-facing request: a single prompt plus
// sampling knobs.
type CompletionRequest struct {
	SystemPrompt string
	UserPrompt   string
	Temperature  float32
	MaxTokens    int
}

// Completer is the minimal backend contract. Implementations live in
// subpackages and register themselves through RegisterBackend.
type Completer interface {
	Name() string
	Complete(ctx context.Context, req CompletionRequest) (string, error)
	Close() error
}

// Config selects and tunes the generation backend.
type Config struct {
	// Provider is the registered backend name: "openai", "deepseek",
	// "anthropic" or "google".
	Provider string

	// APIKey is the resolved credential (after secret URI resolution).
	APIKey string

	// BaseURL overrides the provider's API endpoint. Used for
	// OpenAI-compatible providers such as DeepSeek.
	BaseURL string

	// Model names the model; each backend has a sensible default.
	Model string

	// Temperature is the sampling temperature (0 uses the backend default).
	Temperature float32

	// MaxTokens caps the response length (0 uses the backend default).
	MaxTokens int
}

// Factory creates a Completer for a named provider.
type Factory func(cfg *Config) (Completer, error)

var (
	factories   = map[string]Factory{}
	factoriesMu sync.RWMutex
)

// RegisterBackend registers a completion backend. Backend packages call this
// from init().
func RegisterBackend(name string, f Factory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()
	factories[name] = f
}

// New builds the Generator for the configured provider.
func New(cfg *Config) (Generator, error) {
	provider := "deepseek"
	if cfg != nil && cfg.Provider != "" {
		provider = cfg.Provider
	}

	factoriesMu.RLock()
	factory, ok := factories[provider]
	factoriesMu.RUnlock()
	if !ok {
		return nil, parleyerr.Errorf(parleyerr.CodeGeneratorNotConfigured,
			"unsupported generation provider: %q", provider)
	}

	completer, err := factory(cfg)
	if err != nil {
		return nil, err
	}
	return NewGateway(completer), nil
}

// Gateway implements Generator on top of any Completer.
type Gateway struct {
	completer Completer
	timeout   time.Duration
	log       *slog.Logger
}

// NewGateway wraps a backend in the full question pipeline.
func NewGateway(completer Completer) *Gateway {
	return &Gateway{
		completer: completer,
		timeout:   completionTimeout,
		log:       slog.With("component", "generator", "provider", completer.Name()),
	}
}

// complete runs one generation call under the gateway's hard timeout.
func (g *Gateway) complete(ctx context.Context, req CompletionRequest) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()
	return g.completer.Complete(ctx, req)
}

func (g *Gateway) FirstQuestion(ctx context.Context, name, topic string) (Result, error) {
	if name == "" || topic == "" {
		return Result{}, parleyerr.New(parleyerr.CodeGeneratorRequestInvalid,
			"name and topic are required for the opening question")
	}

	raw, err := g.complete(ctx, CompletionRequest{
		SystemPrompt: systemPrompt,
		UserPrompt:   firstQuestionPrompt(name, topic),
	})
	if err != nil {
		return Result{}, parleyerr.Wrap(err, parleyerr.CodeGeneratorUpstreamFailure,
			"generating opening question", parleyerr.FieldProvider(g.completer.Name()))
	}

	question, err := extractQuestion(raw)
	if err != nil {
		return Result{}, err
	}
	question = Sanitize(question)

	g.log.Debug("opening question generated", "topic", topic)
	return Result{Question: question, IsCompleted: false}, nil
}

func (g *Gateway) NextQuestion(ctx context.Context, sessionID, topic string, questions, answers []string) (Result, error) {
	if sessionID == "" || topic == "" {
		return Result{}, parleyerr.New(parleyerr.CodeGeneratorRequestInvalid,
			"session id and topic are required for a follow-up question")
	}

	raw, err := g.complete(ctx, CompletionRequest{
		SystemPrompt: systemPrompt,
		UserPrompt:   nextQuestionPrompt(topic, questions, answers),
	})
	if err != nil {
		return Result{}, parleyerr.Wrap(err, parleyerr.CodeGeneratorUpstreamFailure,
			"generating follow-up question",
			parleyerr.FieldProvider(g.completer.Name()),
			parleyerr.FieldSessionID(sessionID))
	}

	question, err := extractQuestion(raw)
	if err != nil {
		return Result{}, err
	}
	question = Sanitize(question)

	completed := len(questions) >= MaxQuestions || ClosingLanguage(question)

	g.log.Debug("follow-up question generated",
		"session_id", sessionID,
		"questions", len(questions),
		"completed", completed,
	)
	return Result{Question: question, IsCompleted: completed}, nil
}

func (g *Gateway) Close() error {
	return g.completer.Close()
}
