// Copyright (C) 2025 Ember Journal (dev@emberjournal.app)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package extensions defines the pluggable provider interfaces the
// personalization service depends on at its boundaries.
//
// The service never talks to the identity system directly; it goes
// through an AuthProvider injected at construction time. This keeps the
// HTTP middleware testable and lets deployments swap the token scheme
// (JWT today, opaque introspection tomorrow) without touching handlers.
package extensions

// ServiceOptions carries injectable collaborators for the service.
//
// A nil option is replaced by its no-op default via DefaultOptions, so
// the service can always assume non-nil providers.
type ServiceOptions struct {
	// AuthProvider validates bearer tokens. Default: NopAuthProvider.
	AuthProvider AuthProvider
}

// DefaultOptions returns ServiceOptions with no-op implementations.
func DefaultOptions() ServiceOptions {
	return ServiceOptions{
		AuthProvider: &NopAuthProvider{},
	}
}

// Normalize fills nil fields with their defaults.
func (o ServiceOptions) Normalize() ServiceOptions {
	if o.AuthProvider == nil {
		o.AuthProvider = &NopAuthProvider{}
	}
	return o
}
