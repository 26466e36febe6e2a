// Copyright (C) 2025 Ember Journal (dev@emberjournal.app)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package generation

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/emberjournal/ember-backend/services/llm"
	"github.com/emberjournal/ember-backend/services/personalization/datatypes"
	"github.com/emberjournal/ember-backend/services/personalization/observability"
	"github.com/emberjournal/ember-backend/services/personalization/prompt"
	"github.com/emberjournal/ember-backend/services/personalization/stats"
)

// Confidence is fixed per cascade stage, a coarse trust signal rather
// than a calibrated probability.
const (
	providerConfidence = 0.9
	salvageConfidence  = 0.7
)

// DefaultProviderTimeout bounds the single provider call. There is no
// retry; a slow provider degrades to the local fallback instead of
// compounding latency.
const DefaultProviderTimeout = 12 * time.Second

const fallbackModelID = "local-template"

// Orchestrator runs the degradation cascade:
// ATTEMPT_PROVIDER -> PARSE_STRUCTURED -> SALVAGE_TEXT -> LOCAL_FALLBACK.
// Run never returns an error; the local fallback has no failure mode.
type Orchestrator struct {
	client     llm.LLMClient
	classifier Classifier
	templates  *TemplateSet
	timeout    time.Duration
	metrics    *observability.Metrics
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithTimeout overrides the provider call timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithClassifier swaps the fallback classifier.
func WithClassifier(c Classifier) Option {
	return func(o *Orchestrator) {
		if c != nil {
			o.classifier = c
		}
	}
}

// WithMetrics enables provider call instrumentation.
func WithMetrics(m *observability.Metrics) Option {
	return func(o *Orchestrator) {
		o.metrics = m
	}
}

// New creates an orchestrator. client may be nil, in which case every
// request goes straight to the local fallback (no provider credential
// configured).
func New(client llm.LLMClient, templates *TemplateSet, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		client:     client,
		classifier: NewKeywordClassifier(),
		templates:  templates,
		timeout:    DefaultProviderTimeout,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run executes the cascade for one request, tagged with snapshot-driven
// personalization when stats is non-nil.
func (o *Orchestrator) Run(ctx context.Context, req Request, snapshot *stats.Snapshot) datatypes.GenerationResult {
	requestID := uuid.NewString()

	if o.client == nil {
		return o.fallback(req, requestID)
	}

	policy := prompt.Build(prompt.BuildInput{
		Kind:           req.Kind,
		Tier:           req.Tier,
		Style:          req.Style,
		Stats:          snapshot,
		Messages:       req.Messages,
		JournalContext: req.JournalContext,
	})

	start := time.Now()
	raw, err := o.callProvider(ctx, req, policy)
	if o.metrics != nil {
		o.metrics.RecordProviderCall(observability.Endpoint(req.Kind),
			time.Since(start).Seconds(), err == nil)
	}
	if err != nil {
		class := llm.Classify(err)
		if o.metrics != nil {
			o.metrics.RecordProviderFailure(string(class))
		}
		slog.Warn("provider call failed, using local fallback",
			"request_id", requestID,
			"kind", req.Kind,
			"failure_class", class,
			"error", err,
		)
		return o.fallback(req, requestID)
	}

	spec := specFor(req.Kind)
	if text, secondary, ok := spec.parse(raw); ok {
		return datatypes.GenerationResult{
			RequestID:     requestID,
			Text:          text,
			SecondaryText: secondary,
			Confidence:    providerConfidence,
			Provenance:    datatypes.ProvenanceProvider,
			ModelID:       o.client.ModelID(),
		}
	}

	if spec.salvageable {
		if text, secondary, ok := salvage(raw); ok {
			slog.Info("structured parse failed, salvaged provider text",
				"request_id", requestID, "kind", req.Kind)
			return datatypes.GenerationResult{
				RequestID:     requestID,
				Text:          text,
				SecondaryText: secondary,
				Confidence:    salvageConfidence,
				Provenance:    datatypes.ProvenanceSalvaged,
				ModelID:       o.client.ModelID(),
			}
		}
	}

	slog.Warn("provider output unusable, using local fallback",
		"request_id", requestID, "kind", req.Kind)
	return o.fallback(req, requestID)
}

// callProvider issues the single bounded provider call. The prompt
// policy's system instructions travel as a system-role message at the
// head of the slice.
func (o *Orchestrator) callProvider(ctx context.Context, req Request, policy prompt.Policy) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	maxTokens := policy.MaxTokens
	params := llm.GenerationParams{MaxTokens: &maxTokens}

	messages := []datatypes.Message{
		{Role: "system", Content: policy.SystemInstructions},
		{Role: "user", Content: userContent(req)},
	}
	return o.client.Chat(ctx, messages, params)
}

func userContent(req Request) string {
	if req.Kind == datatypes.KindChat {
		return lastUserMessage(req.Messages)
	}
	return req.Content
}

func (o *Orchestrator) fallback(req Request, requestID string) datatypes.GenerationResult {
	category := o.classifier.Category(classifierInput(req))
	sentiment := o.classifier.Sentiment(req.MoodRating)
	tmpl := o.templates.Select(req.Kind, category, sentiment, req.Tier)

	return datatypes.GenerationResult{
		RequestID:     requestID,
		Text:          tmpl.Text,
		SecondaryText: tmpl.FollowUp,
		Confidence:    tmpl.Confidence,
		Provenance:    datatypes.ProvenanceLocalFallback,
		ModelID:       fallbackModelID,
	}
}
