// Copyright (C) 2025 Ember Journal (dev@emberjournal.app)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package llm

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/sashabaranov/go-openai"
)

// FailureClass categorizes a provider failure for logging and metrics.
// The cascade does not branch on the class; every class degrades to the
// local fallback without retry.
type FailureClass string

const (
	FailureAuth       FailureClass = "auth"
	FailureRateLimit  FailureClass = "rate_limit"
	FailureBadRequest FailureClass = "bad_request"
	FailureServer     FailureClass = "server"
	FailureTimeout    FailureClass = "timeout"
	FailureTransport  FailureClass = "transport"
)

// ProviderHTTPError is returned by raw-HTTP clients (Anthropic) when the
// provider answers with a non-2xx status.
type ProviderHTTPError struct {
	StatusCode int
	Body       string
}

func (e *ProviderHTTPError) Error() string {
	return fmt.Sprintf("provider returned status %d: %s", e.StatusCode, e.Body)
}

// Classify maps a provider error to its failure class.
//
// Understands context deadline errors, net timeouts, go-openai API
// errors, and ProviderHTTPError. Anything unrecognized is a transport
// failure.
func Classify(err error) FailureClass {
	if err == nil {
		return FailureTransport
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return FailureTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return FailureTimeout
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return classifyStatus(apiErr.HTTPStatusCode)
	}
	var httpErr *ProviderHTTPError
	if errors.As(err, &httpErr) {
		return classifyStatus(httpErr.StatusCode)
	}

	return FailureTransport
}

func classifyStatus(status int) FailureClass {
	switch {
	case status == 401 || status == 403:
		return FailureAuth
	case status == 429:
		return FailureRateLimit
	case status >= 400 && status < 500:
		return FailureBadRequest
	case status >= 500:
		return FailureServer
	default:
		return FailureTransport
	}
}
