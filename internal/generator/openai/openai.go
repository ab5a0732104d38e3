// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Parley Contributors

// Package openai implements the question generation backend on the OpenAI
// Chat Completions API. It also serves OpenAI-compatible providers; the
// "deepseek" registration points the same client at the DeepSeek endpoint.
package openai

import (
	"context"
	"fmt"

	openaisdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/shared"

	"github.com/parley-dev/parley/internal/generator"
	parleyerr "github.com/parley-dev/parley/pkg/errors"
)

const (
	defaultModel = "gpt-4.1-mini"

	deepseekBaseURL = "https://api.deepseek.com/v1"
	deepseekModel   = "deepseek-chat"
)

func init() {
	generator.RegisterBackend("openai", func(cfg *generator.Config) (generator.Completer, error) {
		return New("openai", cfg)
	})
	generator.RegisterBackend("deepseek", func(cfg *generator.Config) (generator.Completer, error) {
		return New("deepseek", cfg)
	})
}

// Compile-time interface check.
var _ generator.Completer = (*Completer)(nil)

// Completer calls a Chat Completions endpoint for question generation.
type Completer struct {
	name        string
	client      openaisdk.Client
	model       string
	temperature float32
	maxTokens   int
}

// New creates a Completer. Returns an error if the API key is missing.
func New(name string, cfg *generator.Config) (*Completer, error) {
	if cfg == nil || cfg.APIKey == "" {
		return nil, parleyerr.New(parleyerr.CodeGeneratorNotConfigured,
			fmt.Sprintf("%s: missing api key", name), parleyerr.FieldProvider(name))
	}

	baseURL := cfg.BaseURL
	model := cfg.Model
	if name == "deepseek" {
		if baseURL == "" {
			baseURL = deepseekBaseURL
		}
		if model == "" {
			model = deepseekModel
		}
	}
	if model == "" {
		model = defaultModel
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	return &Completer{
		name:        name,
		client:      openaisdk.NewClient(opts...),
		model:       model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
	}, nil
}

func (c *Completer) Name() string { return c.name }

func (c *Completer) Complete(ctx context.Context, req generator.CompletionRequest) (string, error) {
	var msgs []openaisdk.ChatCompletionMessageParamUnion
	if req.SystemPrompt != "" {
		msgs = append(msgs, openaisdk.SystemMessage(req.SystemPrompt))
	}
	msgs = append(msgs, openaisdk.UserMessage(req.UserPrompt))

	params := openaisdk.ChatCompletionNewParams{
		Model:    shared.ChatModel(c.model),
		Messages: msgs,
	}

	temperature := req.Temperature
	if temperature == 0 {
		temperature = c.temperature
	}
	if temperature > 0 {
		params.Temperature = param.NewOpt(float64(temperature))
	}

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = c.maxTokens
	}
	if maxTokens > 0 {
		params.MaxCompletionTokens = param.NewOpt(int64(maxTokens))
	}

	completion, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", parleyerr.Wrap(err, parleyerr.CodeGeneratorUpstreamFailure,
			"chat completion request", parleyerr.FieldProvider(c.name))
	}

	if len(completion.Choices) == 0 {
		return "", parleyerr.New(parleyerr.CodeGeneratorResponseInvalid,
			"chat completion returned no choices", parleyerr.FieldProvider(c.name))
	}
	return completion.Choices[0].Message.Content, nil
}

func (c *Completer) Close() error { return nil }
