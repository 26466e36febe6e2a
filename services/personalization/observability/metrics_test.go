// Copyright (C) 2025 Ember Journal (dev@emberjournal.app)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func newTestMetrics() *Metrics {
	return NewMetrics(prometheus.NewRegistry())
}

func TestRecordRequest_StatusClasses(t *testing.T) {
	m := newTestMetrics()

	m.RecordRequest(EndpointInsight, 200)
	m.RecordRequest(EndpointInsight, 200)
	m.RecordRequest(EndpointInsight, 429)
	m.RecordRequest(EndpointChat, 500)

	if got := testutil.ToFloat64(m.RequestsTotal.WithLabelValues("insight", "2xx")); got != 2 {
		t.Errorf("insight 2xx = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.RequestsTotal.WithLabelValues("insight", "4xx")); got != 1 {
		t.Errorf("insight 4xx = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.RequestsTotal.WithLabelValues("chat", "5xx")); got != 1 {
		t.Errorf("chat 5xx = %v, want 1", got)
	}
}

func TestRecordResult_Provenance(t *testing.T) {
	m := newTestMetrics()

	m.RecordResult(EndpointInsight, "provider")
	m.RecordResult(EndpointInsight, "local-fallback")
	m.RecordResult(EndpointInsight, "local-fallback")

	if got := testutil.ToFloat64(m.ResultsTotal.WithLabelValues("insight", "local-fallback")); got != 2 {
		t.Errorf("local-fallback count = %v, want 2", got)
	}
}

func TestRateLimitCounters(t *testing.T) {
	m := newTestMetrics()

	m.RecordRateLimitRejection()
	m.RecordFailOpen()
	m.RecordFailOpen()

	if got := testutil.ToFloat64(m.RateLimitRejectionsTotal); got != 1 {
		t.Errorf("rejections = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.FailOpenTotal); got != 2 {
		t.Errorf("fail-open = %v, want 2", got)
	}
}

func TestRecordProviderFailure(t *testing.T) {
	m := newTestMetrics()

	m.RecordProviderFailure("timeout")
	m.RecordProviderFailure("timeout")

	if got := testutil.ToFloat64(m.ProviderFailuresTotal.WithLabelValues("timeout")); got != 2 {
		t.Errorf("timeout failures = %v, want 2", got)
	}
}
