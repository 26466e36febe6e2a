// Copyright (C) 2025 Ember Journal (dev@emberjournal.app)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package extensions

import (
	"context"
	"errors"
)

// ErrUnauthorized is returned when authentication fails. Implementations
// should wrap this error with additional context:
//
//	if !validToken {
//	    return nil, fmt.Errorf("invalid token format: %w", extensions.ErrUnauthorized)
//	}
var ErrUnauthorized = errors.New("unauthorized")

// AuthInfo contains identity information returned after successful
// authentication.
//
// Required fields (always populated):
//   - UserID: Unique identifier for the user
//
// Optional fields (may be empty):
//   - Email: User's email address
//   - Claims: Additional claims from the identity provider
type AuthInfo struct {
	// UserID is the unique identifier for the authenticated user.
	// This is the only required field and must never be empty.
	UserID string

	// Email is the user's email address.
	// May be empty if not provided by the identity provider.
	Email string

	// Claims holds additional claims from the identity provider.
	// Implementations can store provider-specific data here without
	// requiring changes to the core struct.
	Claims map[string]any
}

// AuthProvider validates bearer tokens and returns user identity.
//
// Implementations must be safe for concurrent use by multiple goroutines.
//
// The identity system is an external collaborator: this service only
// depends on verify(token) -> {userId, claims} | error. The default
// production implementation is JWTAuthProvider; NopAuthProvider exists for
// local development and tests.
type AuthProvider interface {
	// Validate checks if the token is valid and returns the user's identity.
	//
	// Returns AuthInfo if valid, or ErrUnauthorized (possibly wrapped) if
	// the token is missing, malformed, expired, or otherwise invalid.
	// Other errors indicate provider failures (network, key store).
	Validate(ctx context.Context, token string) (*AuthInfo, error)
}

// NopAuthProvider accepts any token and returns a fixed local user.
//
// Intended for local single-user development where no identity
// infrastructure exists. Thread-safe: no mutable state.
type NopAuthProvider struct{}

// Validate always returns a valid local user.
//
// The token parameter is ignored - any value (including empty string)
// results in successful authentication.
func (p *NopAuthProvider) Validate(_ context.Context, _ string) (*AuthInfo, error) {
	return &AuthInfo{
		UserID: "local-user",
		Email:  "",
	}, nil
}

// Compile-time interface compliance check.
var _ AuthProvider = (*NopAuthProvider)(nil)
