// Copyright (C) 2025 Ember Journal (dev@emberjournal.app)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package store

import (
	"context"
	"sync"

	"github.com/emberjournal/ember-backend/services/personalization/datatypes"
)

// MemoryStore is a mutex-guarded in-memory record store. Used in tests
// and when the service runs without a configured data directory.
type MemoryStore struct {
	mu      sync.RWMutex
	users   map[string]datatypes.User
	entries map[string][]datatypes.Entry
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:   make(map[string]datatypes.User),
		entries: make(map[string][]datatypes.Entry),
	}
}

func (s *MemoryStore) PutUser(ctx context.Context, user datatypes.User) error {
	if err := user.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.ID] = user
	return nil
}

func (s *MemoryStore) GetUser(ctx context.Context, userID string) (datatypes.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[userID]
	if !ok {
		return datatypes.User{}, ErrNotFound
	}
	return user, nil
}

func (s *MemoryStore) PutEntry(ctx context.Context, entry datatypes.Entry) error {
	if err := entry.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.entries[entry.OwnerID] {
		if existing.ID == entry.ID {
			s.entries[entry.OwnerID][i] = entry
			return nil
		}
	}
	s.entries[entry.OwnerID] = append(s.entries[entry.OwnerID], entry)
	return nil
}

func (s *MemoryStore) EntriesByOwner(ctx context.Context, ownerID string) ([]datatypes.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entries := make([]datatypes.Entry, len(s.entries[ownerID]))
	copy(entries, s.entries[ownerID])
	return entries, nil
}

func (s *MemoryStore) Close() error { return nil }
