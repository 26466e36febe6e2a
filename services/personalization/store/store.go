// Copyright (C) 2025 Ember Journal (dev@emberjournal.app)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package store persists user and entry records. The personalization
// service only reads them (account and journal writes happen in other
// services against the same keyspace), but the write methods are part
// of the contract so tests and seed tooling can populate a store.
package store

import (
	"context"
	"errors"

	"github.com/emberjournal/ember-backend/services/personalization/datatypes"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// EntryStore provides access to journal entries.
type EntryStore interface {
	PutEntry(ctx context.Context, entry datatypes.Entry) error

	// EntriesByOwner returns all entries belonging to ownerID. An owner
	// with no entries yields an empty slice, not ErrNotFound.
	EntriesByOwner(ctx context.Context, ownerID string) ([]datatypes.Entry, error)
}

// UserStore provides access to user records.
type UserStore interface {
	PutUser(ctx context.Context, user datatypes.User) error

	// GetUser returns the user record or ErrNotFound.
	GetUser(ctx context.Context, userID string) (datatypes.User, error)
}

// Store combines both record kinds behind one lifecycle.
type Store interface {
	EntryStore
	UserStore
	Close() error
}
