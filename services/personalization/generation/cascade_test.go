// Copyright (C) 2025 Ember Journal (dev@emberjournal.app)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package generation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emberjournal/ember-backend/services/llm"
	"github.com/emberjournal/ember-backend/services/personalization/datatypes"
	"github.com/emberjournal/ember-backend/services/personalization/observability"
)

// fakeClient scripts provider behavior for cascade tests.
type fakeClient struct {
	response string
	err      error
	delay    time.Duration
	calls    int
}

func (f *fakeClient) Generate(ctx context.Context, prompt string, params llm.GenerationParams) (string, error) {
	return f.Chat(ctx, nil, params)
}

func (f *fakeClient) Chat(ctx context.Context, messages []datatypes.Message, params llm.GenerationParams) (string, error) {
	f.calls++
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func (f *fakeClient) ModelID() string { return "fake-model" }

func mustTemplates(t *testing.T) *TemplateSet {
	t.Helper()
	set, err := LoadTemplates()
	require.NoError(t, err)
	return set
}

func insightRequest() Request {
	return Request{
		Kind:    datatypes.KindInsight,
		Tier:    datatypes.TierFree,
		Style:   datatypes.StyleCoach,
		Content: "Long day at the office, the project deadline is close.",
	}
}

func TestRun_StructuredProviderResponse(t *testing.T) {
	client := &fakeClient{response: `{"insight": "You write about work under pressure.", "followUpQuestion": "What would lighten the load?"}`}
	o := New(client, mustTemplates(t))

	result := o.Run(context.Background(), insightRequest(), nil)

	assert.Equal(t, datatypes.ProvenanceProvider, result.Provenance)
	assert.Equal(t, "You write about work under pressure.", result.Text)
	assert.Equal(t, "What would lighten the load?", result.SecondaryText)
	assert.Equal(t, providerConfidence, result.Confidence)
	assert.Equal(t, "fake-model", result.ModelID)
	assert.NotEmpty(t, result.RequestID)
}

func TestRun_TimeoutDegradesToLocalFallback(t *testing.T) {
	client := &fakeClient{delay: time.Second}
	o := New(client, mustTemplates(t), WithTimeout(10*time.Millisecond))

	result := o.Run(context.Background(), insightRequest(), nil)

	assert.Equal(t, datatypes.ProvenanceLocalFallback, result.Provenance)
	assert.NotEmpty(t, result.Text)
	assert.NotEmpty(t, result.SecondaryText)
	assert.Equal(t, fallbackModelID, result.ModelID)
	assert.Equal(t, 1, client.calls, "no retry after provider failure")
}

func TestRun_UnparseableInsightIsSalvaged(t *testing.T) {
	client := &fakeClient{response: "You keep circling the same deadline. The pattern is worth naming. What would finishing early change?"}
	o := New(client, mustTemplates(t))

	result := o.Run(context.Background(), insightRequest(), nil)

	assert.Equal(t, datatypes.ProvenanceSalvaged, result.Provenance)
	assert.NotEmpty(t, result.Text)
	assert.Equal(t, "What would finishing early change?", result.SecondaryText)
	assert.Equal(t, salvageConfidence, result.Confidence)
}

func TestRun_ChatDoesNotSalvage(t *testing.T) {
	// Empty provider output fails the free-text parse; chat skips
	// salvage and lands on the fallback.
	client := &fakeClient{response: "   "}
	o := New(client, mustTemplates(t))

	result := o.Run(context.Background(), Request{
		Kind:     datatypes.KindChat,
		Tier:     datatypes.TierFree,
		Style:    datatypes.StyleReflector,
		Messages: []datatypes.Message{{Role: "user", Content: "hello"}},
	}, nil)

	assert.Equal(t, datatypes.ProvenanceLocalFallback, result.Provenance)
	assert.NotEmpty(t, result.Text)
}

func TestRun_NilClientSkipsProvider(t *testing.T) {
	o := New(nil, mustTemplates(t))

	result := o.Run(context.Background(), insightRequest(), nil)

	assert.Equal(t, datatypes.ProvenanceLocalFallback, result.Provenance)
	assert.NotEmpty(t, result.Text)
}

func TestRun_SummaryFreeTextSucceeds(t *testing.T) {
	client := &fakeClient{response: "A week dominated by the project deadline, with mood holding steady."}
	o := New(client, mustTemplates(t))

	result := o.Run(context.Background(), Request{
		Kind:    datatypes.KindSummary,
		Tier:    datatypes.TierPremium,
		Style:   datatypes.StyleCoach,
		Content: "journal text",
	}, nil)

	assert.Equal(t, datatypes.ProvenanceProvider, result.Provenance)
	assert.Empty(t, result.SecondaryText)
}

func TestRun_ProviderFailureIsInstrumented(t *testing.T) {
	metrics := observability.NewMetrics(prometheus.NewRegistry())
	client := &fakeClient{err: errors.New("connection refused")}
	o := New(client, mustTemplates(t), WithMetrics(metrics))

	result := o.Run(context.Background(), insightRequest(), nil)

	assert.Equal(t, datatypes.ProvenanceLocalFallback, result.Provenance)
	assert.Equal(t, float64(1),
		testutil.ToFloat64(metrics.ProviderFailuresTotal.WithLabelValues(string(llm.FailureTransport))))
	assert.Equal(t, 1, testutil.CollectAndCount(metrics.ProviderLatencySeconds))
}

func TestRun_ProviderSuccessIsInstrumented(t *testing.T) {
	metrics := observability.NewMetrics(prometheus.NewRegistry())
	client := &fakeClient{response: `{"insight": "Steady output.", "followUpQuestion": "What helped?"}`}
	o := New(client, mustTemplates(t), WithMetrics(metrics))

	o.Run(context.Background(), insightRequest(), nil)

	assert.Equal(t, 1, testutil.CollectAndCount(metrics.ProviderLatencySeconds))
	assert.Equal(t, 0, testutil.CollectAndCount(metrics.ProviderFailuresTotal))
}

func TestRun_FallbackReflectsMoodAndCategory(t *testing.T) {
	o := New(nil, mustTemplates(t))
	mood := 1

	result := o.Run(context.Background(), Request{
		Kind:       datatypes.KindInsight,
		Tier:       datatypes.TierPremium,
		Style:      datatypes.StyleCoach,
		Content:    "My boss rejected the project plan again.",
		MoodRating: &mood,
	}, nil)

	want := mustTemplates(t).Select(datatypes.KindInsight, CategoryCareer, SentimentNegative, datatypes.TierPremium)
	assert.Equal(t, want.Text, result.Text)
	assert.Equal(t, want.Confidence, result.Confidence)
}
