// Copyright (C) 2025 Ember Journal (dev@emberjournal.app)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package llm

import (
	"context"
	"fmt"
	"testing"

	"github.com/sashabaranov/go-openai"
)

func TestClassify_Timeout(t *testing.T) {
	if got := Classify(context.DeadlineExceeded); got != FailureTimeout {
		t.Errorf("Expected timeout, got %s", got)
	}
	wrapped := fmt.Errorf("call failed: %w", context.DeadlineExceeded)
	if got := Classify(wrapped); got != FailureTimeout {
		t.Errorf("Expected timeout for wrapped deadline error, got %s", got)
	}
}

func TestClassify_OpenAIStatusCodes(t *testing.T) {
	cases := []struct {
		status int
		want   FailureClass
	}{
		{401, FailureAuth},
		{403, FailureAuth},
		{429, FailureRateLimit},
		{400, FailureBadRequest},
		{404, FailureBadRequest},
		{500, FailureServer},
		{503, FailureServer},
	}
	for _, tc := range cases {
		err := &openai.APIError{HTTPStatusCode: tc.status}
		if got := Classify(err); got != tc.want {
			t.Errorf("status %d: expected %s, got %s", tc.status, tc.want, got)
		}
	}
}

func TestClassify_ProviderHTTPError(t *testing.T) {
	err := fmt.Errorf("chat failed: %w", &ProviderHTTPError{StatusCode: 429, Body: "overloaded"})
	if got := Classify(err); got != FailureRateLimit {
		t.Errorf("Expected rate_limit, got %s", got)
	}
}

func TestClassify_UnknownIsTransport(t *testing.T) {
	if got := Classify(fmt.Errorf("connection reset by peer")); got != FailureTransport {
		t.Errorf("Expected transport, got %s", got)
	}
}
