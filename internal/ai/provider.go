// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package ai provides a unified interface for interacting with multiple
// LLM providers (OpenAI, DeepSeek, Gemini). Each provider handles its own
// HTTP communication and response parsing, and the Registry selects the
// active one by name.
package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
)

// ErrProviderUnavailable is returned at construction when the selected
// provider has no API key configured.
var ErrProviderUnavailable = errors.New("ai: provider unavailable")

// Completion is the raw result of one text generation call.
type Completion struct {
	Text       string
	Model      string
	TokensUsed *int
}

// Provider defines the interface that all AI providers must implement.
type Provider interface {
	// Generate sends a prompt to the LLM and returns the completion.
	// systemPrompt sets the model's behaviour; userPrompt is the user's request.
	Generate(ctx context.Context, systemPrompt, userPrompt string) (*Completion, error)

	// Name returns the provider identifier (e.g., "openai", "deepseek").
	Name() string
}

// ProviderConfig holds the credentials and settings for a single provider.
type ProviderConfig struct {
	APIKey     string
	Model      string
	ModelImage string
	BaseURL    string
}

// ProviderError describes a failed provider call. Transient errors (network
// failures, timeouts, rate limits, upstream 5xx) are worth retrying; the
// rest are not.
type ProviderError struct {
	Provider  string
	Status    int // 0 when the request never got an HTTP response
	Message   string
	Transient bool
}

func (e *ProviderError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("%s: %s", e.Provider, e.Message)
	}
	return fmt.Sprintf("%s API error (status %d): %s", e.Provider, e.Status, e.Message)
}

// IsTransient reports whether err is a provider error worth retrying.
func IsTransient(err error) bool {
	var pe *ProviderError
	return errors.As(err, &pe) && pe.Transient
}

// transientStatus reports whether an HTTP status from an upstream provider
// indicates a retryable condition.
func transientStatus(status int) bool {
	return status == http.StatusRequestTimeout ||
		status == http.StatusTooManyRequests ||
		status >= 500
}

// netError wraps a transport-level failure (DNS, connect, context deadline)
// as a transient provider error.
func netError(provider string, err error) *ProviderError {
	return &ProviderError{Provider: provider, Message: err.Error(), Transient: true}
}

// apiError wraps a non-2xx upstream response, classifying it by status.
func apiError(provider string, status int, body []byte) *ProviderError {
	return &ProviderError{
		Provider:  provider,
		Status:    status,
		Message:   string(body),
		Transient: transientStatus(status),
	}
}

// Registry manages available AI providers and selects the active one.
// All methods are safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
	configs   map[string]ProviderConfig
	active    string
}

// NewRegistry creates a registry and initialises providers for every config
// that has a non-empty API key. Providers without keys are silently skipped,
// but a missing key for the selected active provider is a hard error: the
// service must not start if it cannot generate.
func NewRegistry(active string, configs map[string]ProviderConfig) (*Registry, error) {
	r := &Registry{
		providers: make(map[string]Provider),
		configs:   configs,
		active:    active,
	}

	for name, cfg := range configs {
		if cfg.APIKey == "" {
			continue
		}
		switch name {
		case "openai":
			r.providers[name] = newOpenAI(cfg)
		case "deepseek":
			r.providers[name] = newDeepSeek(cfg)
		case "gemini":
			r.providers[name] = newGemini(cfg)
		}
	}

	if _, ok := r.providers[active]; !ok {
		return nil, fmt.Errorf("%w: no API key for %q", ErrProviderUnavailable, active)
	}

	return r, nil
}

// Generate calls the active provider's Generate method.
func (r *Registry) Generate(ctx context.Context, systemPrompt, userPrompt string) (*Completion, error) {
	p, err := r.Active()
	if err != nil {
		return nil, err
	}
	return p.Generate(ctx, systemPrompt, userPrompt)
}

// Active returns the currently active provider.
func (r *Registry) Active() (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.providers[r.active]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrProviderUnavailable, r.active)
	}
	return p, nil
}

// SetActive switches the active provider at runtime. Returns an error if
// the named provider has no API key configured.
func (r *Registry) SetActive(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.providers[name]; !ok {
		return fmt.Errorf("%w: %q (no API key?)", ErrProviderUnavailable, name)
	}
	r.active = name
	return nil
}

// ActiveModel returns the configured model name of the active provider,
// e.g. "deepseek-chat". Empty when the active provider was injected via
// Register without a config.
func (r *Registry) ActiveModel() string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.configs[r.active].Model
}

// ActiveName returns the name of the currently active provider.
func (r *Registry) ActiveName() string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.active
}

// Available returns the names of all providers that have valid API keys.
func (r *Registry) Available() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var names []string
	for name := range r.providers {
		names = append(names, name)
	}
	return names
}

// Register adds or replaces a provider in the registry. This allows injecting
// custom providers at runtime (e.g. for testing).
func (r *Registry) Register(name string, p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[name] = p
}

// HasProvider checks whether a named provider is configured and available.
func (r *Registry) HasProvider(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.providers[name]
	return ok
}
