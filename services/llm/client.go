// Copyright (C) 2025 Ember Journal (dev@emberjournal.app)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package llm provides provider clients for text generation behind a
// single small interface. The generation cascade never talks to a
// provider SDK directly.
package llm

import (
	"context"

	"github.com/emberjournal/ember-backend/services/personalization/datatypes"
)

// GenerationParams are the per-call knobs passed through to a provider.
// Nil pointer fields mean "use the provider default".
type GenerationParams struct {
	Temperature *float32 `json:"temperature"`
	TopP        *float32 `json:"top_p"`
	MaxTokens   *int     `json:"max_tokens"`
	Stop        []string `json:"stop"`
}

// LLMClient defines the standard interface for any generation backend.
//
// A system-role message at the head of the messages slice carries the
// system instructions; each client maps it to its provider's native
// system-prompt mechanism.
type LLMClient interface {
	// Generate issues a single-prompt completion.
	Generate(ctx context.Context, prompt string, params GenerationParams) (string, error)

	// Chat issues a multi-turn completion.
	Chat(ctx context.Context, messages []datatypes.Message, params GenerationParams) (string, error)

	// ModelID returns the opaque model identifier reported to callers.
	ModelID() string
}
