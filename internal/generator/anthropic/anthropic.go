// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Parley Contributors

// Package anthropic implements the question generation backend on the
// Anthropic Messages API.
package anthropic

import (
	"context"
	"strings"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/parley-dev/parley/internal/generator"
	parleyerr "github.com/parley-dev/parley/pkg/errors"
)

const (
	defaultModel     = "claude-sonnet-4-5"
	defaultMaxTokens = 1024
)

func init() {
	generator.RegisterBackend("anthropic", func(cfg *generator.Config) (generator.Completer, error) {
		return New(cfg)
	})
}

// Compile-time interface check.
var _ generator.Completer = (*Completer)(nil)

// Completer calls the Anthropic Messages API for question generation.
type Completer struct {
	client      anthropicsdk.Client
	model       string
	temperature float32
	maxTokens   int
}

// New creates a Completer. Returns an error if the API key is missing.
func New(cfg *generator.Config) (*Completer, error) {
	if cfg == nil || cfg.APIKey == "" {
		return nil, parleyerr.New(parleyerr.CodeGeneratorNotConfigured,
			"anthropic: missing api key", parleyerr.FieldProvider("anthropic"))
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	model := cfg.Model
	if model == "" {
		model = defaultModel
	}

	return &Completer{
		client:      anthropicsdk.NewClient(opts...),
		model:       model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
	}, nil
}

func (c *Completer) Name() string { return "anthropic" }

func (c *Completer) Complete(ctx context.Context, req generator.CompletionRequest) (string, error) {
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = c.maxTokens
	}
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	params := anthropicsdk.MessageNewParams{
		Model:     anthropicsdk.Model(c.model),
		MaxTokens: int64(maxTokens),
		Messages: []anthropicsdk.MessageParam{
			anthropicsdk.NewUserMessage(anthropicsdk.NewTextBlock(req.UserPrompt)),
		},
	}

	if req.SystemPrompt != "" {
		params.System = []anthropicsdk.TextBlockParam{
			{Text: req.SystemPrompt},
		}
	}

	temperature := req.Temperature
	if temperature == 0 {
		temperature = c.temperature
	}
	if temperature > 0 {
		params.Temperature = anthropicsdk.Float(float64(temperature))
	}

	msg, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return "", parleyerr.Wrap(err, parleyerr.CodeGeneratorUpstreamFailure,
			"messages request", parleyerr.FieldProvider("anthropic"))
	}

	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	if b.Len() == 0 {
		return "", parleyerr.New(parleyerr.CodeGeneratorResponseInvalid,
			"message contained no text blocks", parleyerr.FieldProvider("anthropic"))
	}
	return b.String(), nil
}

func (c *Completer) Close() error { return nil }
