// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package ai

import (
	"context"
	"fmt"
)

// ImageGenerator is an optional interface that AI providers can implement
// to support image generation. Not all providers have this capability
// (DeepSeek is text-only).
type ImageGenerator interface {
	// GenerateImage creates an image from a text prompt. Returns the raw
	// image bytes and the MIME content type (e.g., "image/png").
	GenerateImage(ctx context.Context, prompt, size string) ([]byte, string, error)
}

// GenerateImage calls the named provider's image generation if supported.
// An empty name uses the active provider.
func (r *Registry) GenerateImage(ctx context.Context, provider, prompt, size string) ([]byte, string, error) {
	var (
		p   Provider
		err error
	)
	if provider == "" {
		p, err = r.Active()
		if err != nil {
			return nil, "", err
		}
	} else {
		r.mu.RLock()
		var ok bool
		p, ok = r.providers[provider]
		r.mu.RUnlock()
		if !ok {
			return nil, "", fmt.Errorf("%w: %q", ErrProviderUnavailable, provider)
		}
	}

	ig, ok := p.(ImageGenerator)
	if !ok {
		return nil, "", fmt.Errorf("ai: provider %q does not support image generation", p.Name())
	}

	return ig.GenerateImage(ctx, prompt, size)
}

// SupportsImageGeneration returns true if the named provider can generate
// images. An empty name checks the active provider.
func (r *Registry) SupportsImageGeneration(provider string) bool {
	var p Provider
	if provider == "" {
		var err error
		p, err = r.Active()
		if err != nil {
			return false
		}
	} else {
		r.mu.RLock()
		p = r.providers[provider]
		r.mu.RUnlock()
		if p == nil {
			return false
		}
	}
	_, ok := p.(ImageGenerator)
	return ok
}
