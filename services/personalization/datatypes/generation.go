// Copyright (C) 2025 Ember Journal (dev@emberjournal.app)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package datatypes

// Kind identifies which generation pipeline a request flows through.
// The prompt policy, cascade behavior, and response shape all key off
// it.
type Kind string

const (
	KindInsight Kind = "insight"
	KindChat    Kind = "chat"
	KindSummary Kind = "summary"
)

// Provenance tags every generation result with the stage of the
// degradation cascade that produced it. Callers use it to distinguish
// authoritative provider output from degraded output; it must never be
// dropped when shaping responses.
type Provenance string

const (
	// ProvenanceProvider means the structured provider response parsed cleanly.
	ProvenanceProvider Provenance = "provider"

	// ProvenanceSalvaged means the provider returned text that failed
	// structured parsing and was recovered sentence-by-sentence.
	ProvenanceSalvaged Provenance = "provider-salvaged"

	// ProvenanceLocalFallback means the deterministic local template path
	// produced the result without any network call.
	ProvenanceLocalFallback Provenance = "local-fallback"
)

// GenerationResult is the normalized envelope returned by the cascade.
//
// Text carries the primary content (insight, chat reply, or summary
// depending on the request kind). SecondaryText carries the follow-up
// question for insight requests and is empty otherwise. Confidence is a
// coarse trust signal in [0,1], fixed per cascade stage; it is not a
// calibrated probability.
type GenerationResult struct {
	RequestID     string     `json:"request_id"`
	Text          string     `json:"text"`
	SecondaryText string     `json:"secondary_text,omitempty"`
	Confidence    float64    `json:"confidence"`
	Provenance    Provenance `json:"provenance"`
	ModelID       string     `json:"model_id"`
}

// InsightRequest is the body of POST /v1/insight.
type InsightRequest struct {
	Content    string `json:"content" binding:"required,max=10000"`
	MoodRating *int   `json:"moodRating,omitempty" binding:"omitempty,min=1,max=5"`
}

// ChatRequest is the body of POST /v1/chat.
type ChatRequest struct {
	Messages       []Message `json:"messages" binding:"required,min=1,dive"`
	JournalContext string    `json:"journalContext,omitempty"`
}

// SummaryRequest is the body of POST /v1/summary.
type SummaryRequest struct {
	JournalContent      string    `json:"journalContent" binding:"required,max=20000"`
	ConversationHistory []Message `json:"conversationHistory,omitempty" binding:"omitempty,dive"`
}

// InsightResponse is the wire shape of a successful insight call.
type InsightResponse struct {
	Insight          string     `json:"insight"`
	FollowUpQuestion string     `json:"followUpQuestion"`
	Confidence       float64    `json:"confidence"`
	Provenance       Provenance `json:"provenance"`
	ModelID          string     `json:"modelId"`
}

// ChatResponse is the wire shape of a successful chat call.
type ChatResponse struct {
	Response   string     `json:"response"`
	Provenance Provenance `json:"provenance"`
	ModelID    string     `json:"modelId"`
}

// SummaryResponse is the wire shape of a successful summary call.
type SummaryResponse struct {
	Summary    string     `json:"summary"`
	Provenance Provenance `json:"provenance"`
	ModelID    string     `json:"modelId"`
}

// UsageResponse is the wire shape of GET /v1/usage.
type UsageResponse struct {
	Tier      Tier    `json:"tier"`
	Limit     *int    `json:"limit"`
	Remaining *int    `json:"remaining"`
	ResetAt   *string `json:"resetAt"`
}
