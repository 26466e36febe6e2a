// Copyright (C) 2025 Ember Journal (dev@emberjournal.app)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package personalization

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emberjournal/ember-backend/services/personalization/datatypes"
)

func newTestService(t *testing.T) Service {
	t.Helper()
	svc, err := New(Config{GinMode: "test", LLMBackend: "none"}, nil)
	require.NoError(t, err)
	return svc
}

func TestNew_DefaultsToFallbackOnlyMode(t *testing.T) {
	svc := newTestService(t)

	body, _ := json.Marshal(datatypes.InsightRequest{Content: "wrote a little today"})
	req := httptest.NewRequest(http.MethodPost, "/v1/insight", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	svc.Router().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp datatypes.InsightResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, datatypes.ProvenanceLocalFallback, resp.Provenance)
}

func TestRouter_HealthAndMetrics(t *testing.T) {
	svc := newTestService(t)

	for _, path := range []string{"/health", "/metrics"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		svc.Router().ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
}

func TestApplyConfigDefaults(t *testing.T) {
	cfg := applyConfigDefaults(Config{})

	assert.Equal(t, 12310, cfg.Port)
	assert.Equal(t, "none", cfg.LLMBackend)
	assert.Equal(t, 10, cfg.RateLimitCapacity)
	assert.NotZero(t, cfg.RateLimitWindow)
	assert.NotZero(t, cfg.SweepInterval)
	assert.NotZero(t, cfg.ProviderTimeout)
}
