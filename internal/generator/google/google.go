// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Parley Contributors

// Package google implements the question generation backend on the Gemini
// API through the Google GenAI SDK.
package google

import (
	"context"

	"google.golang.org/genai"

	"github.com/parley-dev/parley/internal/generator"
	parleyerr "github.com/parley-dev/parley/pkg/errors"
)

const defaultModel = "gemini-2.5-flash"

func init() {
	generator.RegisterBackend("google", func(cfg *generator.Config) (generator.Completer, error) {
		return New(cfg)
	})
}

// Compile-time interface check.
var _ generator.Completer = (*Completer)(nil)

// Completer calls the Gemini API for question generation.
type Completer struct {
	client      *genai.Client
	model       string
	temperature float32
	maxTokens   int
}

// New creates a Completer. Returns an error if the API key is missing.
func New(cfg *generator.Config) (*Completer, error) {
	if cfg == nil || cfg.APIKey == "" {
		return nil, parleyerr.New(parleyerr.CodeGeneratorNotConfigured,
			"google: missing api key", parleyerr.FieldProvider("google"))
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, parleyerr.Wrap(err, parleyerr.CodeGeneratorUpstreamFailure,
			"creating genai client", parleyerr.FieldProvider("google"))
	}

	model := cfg.Model
	if model == "" {
		model = defaultModel
	}

	return &Completer{
		client:      client,
		model:       model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
	}, nil
}

func (c *Completer) Name() string { return "google" }

func (c *Completer) Complete(ctx context.Context, req generator.CompletionRequest) (string, error) {
	cfg := &genai.GenerateContentConfig{}

	if req.SystemPrompt != "" {
		cfg.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{
				{Text: req.SystemPrompt},
			},
		}
	}

	temperature := req.Temperature
	if temperature == 0 {
		temperature = c.temperature
	}
	if temperature > 0 {
		cfg.Temperature = genai.Ptr(temperature)
	}

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = c.maxTokens
	}
	if maxTokens > 0 {
		cfg.MaxOutputTokens = int32(maxTokens)
	}

	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: req.UserPrompt},
			},
		},
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, cfg)
	if err != nil {
		return "", parleyerr.Wrap(err, parleyerr.CodeGeneratorUpstreamFailure,
			"generate content request", parleyerr.FieldProvider("google"))
	}

	text := resp.Text()
	if text == "" {
		return "", parleyerr.New(parleyerr.CodeGeneratorResponseInvalid,
			"generate content returned no text", parleyerr.FieldProvider("google"))
	}
	return text, nil
}

func (c *Completer) Close() error { return nil }
