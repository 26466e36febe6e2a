// Copyright (C) 2025 Ember Journal (dev@emberjournal.app)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package generation runs the degradation cascade that turns a prompt
// policy and provider call into a GenerationResult. Every request
// terminates with a usable result: structured provider output when
// possible, salvaged text when parsing fails, and a deterministic local
// template when the provider is unreachable.
package generation

import (
	"github.com/emberjournal/ember-backend/services/personalization/datatypes"
)

// Request is the kind-tagged input to the cascade. One pipeline handles
// all three request kinds; the fields a kind does not use stay zero.
type Request struct {
	Kind  datatypes.Kind
	Tier  datatypes.Tier
	Style datatypes.Style

	// Content is the journal entry (insight) or journal content
	// (summary).
	Content string

	// MoodRating is the optional 1-5 self-report attached to an insight
	// request. Drives sentiment selection on the fallback path.
	MoodRating *int

	// Messages is the conversation history for chat requests.
	Messages []datatypes.Message

	// JournalContext is optional journal text grounding a chat request.
	JournalContext string
}

// kindSpec captures the per-kind behavior the shared pipeline needs:
// how to interpret raw provider output and whether a failed parse may
// be salvaged.
type kindSpec struct {
	parse       func(raw string) (text, secondary string, ok bool)
	salvageable bool
}

func specFor(kind datatypes.Kind) kindSpec {
	switch kind {
	case datatypes.KindInsight:
		return kindSpec{parse: parseInsight, salvageable: true}
	case datatypes.KindSummary:
		return kindSpec{parse: parseFreeText, salvageable: true}
	default:
		return kindSpec{parse: parseFreeText, salvageable: false}
	}
}

// lastUserMessage returns the content of the most recent user-role turn
// in a chat request, falling back to the final message of any role.
func lastUserMessage(messages []datatypes.Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == "user" {
			return messages[i].Content
		}
	}
	if len(messages) > 0 {
		return messages[len(messages)-1].Content
	}
	return ""
}
