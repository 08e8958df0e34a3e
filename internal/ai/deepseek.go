// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package ai

import (
	"context"
	"net/http"
)

// deepSeekProvider implements the Provider interface using DeepSeek's
// chat completions API, which is OpenAI-compatible.
type deepSeekProvider struct {
	inner *openAIProvider
}

// newDeepSeek creates a new DeepSeek provider. DeepSeek uses an
// OpenAI-compatible API at a different base URL and is text-only. Calls are
// bounded by the caller's context, not a client timeout.
func newDeepSeek(cfg ProviderConfig) *deepSeekProvider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.deepseek.com/v1"
	}
	return &deepSeekProvider{
		inner: &openAIProvider{
			name:   "deepseek",
			config: cfg,
			client: &http.Client{},
		},
	}
}

func (p *deepSeekProvider) Name() string { return "deepseek" }

// Generate sends a chat completion request to DeepSeek's API.
func (p *deepSeekProvider) Generate(ctx context.Context, systemPrompt, userPrompt string) (*Completion, error) {
	messages := []openAIMessage{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: userPrompt},
	}

	body := openAIRequest{
		Model:    p.inner.config.Model,
		Messages: messages,
	}

	return p.inner.doChat(ctx, body)
}
