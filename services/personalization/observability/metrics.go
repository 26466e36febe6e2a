// Copyright (C) 2025 Ember Journal (dev@emberjournal.app)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package observability provides Prometheus metrics for the
// personalization service.
//
// # Description
//
// Metrics cover the request surface (by endpoint and status), the
// degradation cascade (results by provenance, provider latency and
// failure classes), and the rate limiter (rejections, fail-open
// admissions). Exposed via the /metrics endpoint.
//
// # Thread Safety
//
// All metric operations are thread-safe via Prometheus's internal
// locking.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "ember"

const generationSubsystem = "generation"

// Endpoint labels a request-surface metric.
type Endpoint string

const (
	EndpointInsight Endpoint = "insight"
	EndpointChat    Endpoint = "chat"
	EndpointSummary Endpoint = "summary"
	EndpointUsage   Endpoint = "usage"
)

// Metrics holds all Prometheus metrics for the personalization service.
// Initialize once at startup via InitMetrics().
type Metrics struct {
	// RequestsTotal counts requests by endpoint and HTTP status class.
	// Labels: endpoint, status (2xx, 4xx, 5xx)
	RequestsTotal *prometheus.CounterVec

	// ResultsTotal counts generation results by endpoint and provenance.
	// Labels: endpoint, provenance (provider, provider-salvaged, local-fallback)
	ResultsTotal *prometheus.CounterVec

	// ProviderLatencySeconds measures the provider call duration,
	// including failed calls.
	// Labels: endpoint, outcome (ok, error)
	ProviderLatencySeconds *prometheus.HistogramVec

	// ProviderFailuresTotal counts provider failures by class.
	// Labels: failure_class (auth, rate_limit, bad_request, server, timeout, transport)
	ProviderFailuresTotal *prometheus.CounterVec

	// RateLimitRejectionsTotal counts quota rejections.
	RateLimitRejectionsTotal prometheus.Counter

	// FailOpenTotal counts admissions granted because the tier lookup
	// failed.
	FailOpenTotal prometheus.Counter
}

// DefaultMetrics is the singleton registered against the default
// Prometheus registry. Initialized by InitMetrics().
var DefaultMetrics *Metrics

// NewMetrics creates a metrics set registered against reg. Tests pass
// an isolated registry to avoid duplicate-registration panics.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: generationSubsystem,
				Name:      "requests_total",
				Help:      "Total requests by endpoint and status class",
			},
			[]string{"endpoint", "status"},
		),

		ResultsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: generationSubsystem,
				Name:      "results_total",
				Help:      "Generation results by endpoint and provenance",
			},
			[]string{"endpoint", "provenance"},
		),

		ProviderLatencySeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: generationSubsystem,
				Name:      "provider_latency_seconds",
				Help:      "Provider call duration in seconds",
				Buckets:   []float64{0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 15.0},
			},
			[]string{"endpoint", "outcome"},
		),

		ProviderFailuresTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: generationSubsystem,
				Name:      "provider_failures_total",
				Help:      "Provider failures by class",
			},
			[]string{"failure_class"},
		),

		RateLimitRejectionsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: generationSubsystem,
				Name:      "rate_limit_rejections_total",
				Help:      "Requests rejected by the admission window",
			},
		),

		FailOpenTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: generationSubsystem,
				Name:      "fail_open_total",
				Help:      "Admissions granted because the tier lookup failed",
			},
		),
	}
}

// InitMetrics initializes DefaultMetrics against the default registry.
// Call once at startup; a second call panics on duplicate registration.
func InitMetrics() *Metrics {
	DefaultMetrics = NewMetrics(prometheus.DefaultRegisterer)
	return DefaultMetrics
}

// RecordRequest records a completed request with its HTTP status class.
func (m *Metrics) RecordRequest(endpoint Endpoint, statusCode int) {
	var class string
	switch {
	case statusCode >= 500:
		class = "5xx"
	case statusCode >= 400:
		class = "4xx"
	default:
		class = "2xx"
	}
	m.RequestsTotal.WithLabelValues(string(endpoint), class).Inc()
}

// RecordResult records the provenance of a generation result.
func (m *Metrics) RecordResult(endpoint Endpoint, provenance string) {
	m.ResultsTotal.WithLabelValues(string(endpoint), provenance).Inc()
}

// RecordProviderCall records one provider call's duration and outcome.
func (m *Metrics) RecordProviderCall(endpoint Endpoint, seconds float64, success bool) {
	outcome := "ok"
	if !success {
		outcome = "error"
	}
	m.ProviderLatencySeconds.WithLabelValues(string(endpoint), outcome).Observe(seconds)
}

// RecordProviderFailure records a provider failure by class.
func (m *Metrics) RecordProviderFailure(failureClass string) {
	m.ProviderFailuresTotal.WithLabelValues(failureClass).Inc()
}

// RecordRateLimitRejection increments the quota rejection counter.
func (m *Metrics) RecordRateLimitRejection() {
	m.RateLimitRejectionsTotal.Inc()
}

// RecordFailOpen increments the fail-open admission counter.
func (m *Metrics) RecordFailOpen() {
	m.FailOpenTotal.Inc()
}
