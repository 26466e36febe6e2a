// Copyright (C) 2025 Ember Journal (dev@emberjournal.app)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package ratelimit implements per-user admission control for generation
// requests: a fixed 24h window with a request cap for free-tier users,
// unlimited passthrough for premium.
//
// The window table lives in process memory and is intentionally
// non-durable; a restart resets all quotas. For a horizontally scaled
// deployment the table would move behind the same Admit contract into a
// shared store with atomic increment+TTL.
package ratelimit

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/emberjournal/ember-backend/services/personalization/datatypes"
)

// TierLookup resolves a user's subscription tier. Implemented by the
// user record store; injected so the limiter stays storage-agnostic.
type TierLookup func(ctx context.Context, userID string) (datatypes.Tier, error)

// Decision is the outcome of an admission check.
//
// Remaining and ResetAt are nil for premium users (unlimited) and for
// fail-open admissions where no window state exists.
type Decision struct {
	Allowed   bool
	Remaining *int
	ResetAt   *time.Time

	// FailedOpen is set when the tier lookup failed and the request was
	// admitted anyway. Availability of journaling is prioritized over
	// strict quota enforcement.
	FailedOpen bool
}

// Config holds limiter settings.
type Config struct {
	// Capacity is the free-tier request cap per window. Default: 10.
	Capacity int

	// Window is the admission window length. Default: 24h.
	Window time.Duration
}

// DefaultConfig returns the production limiter settings.
func DefaultConfig() Config {
	return Config{
		Capacity: 10,
		Window:   24 * time.Hour,
	}
}

type window struct {
	count   int
	resetAt time.Time
}

// Limiter tracks per-user request counts within a rolling admission
// window. Safe for concurrent use; the window table is guarded by a
// mutex since concurrent requests for the same user race on window
// creation and increment.
type Limiter struct {
	cfg    Config
	lookup TierLookup
	now    func() time.Time

	mu      sync.Mutex
	windows map[string]*window
}

// NewLimiter creates a limiter with the given config and tier lookup.
func NewLimiter(cfg Config, lookup TierLookup) *Limiter {
	if cfg.Capacity <= 0 {
		cfg.Capacity = DefaultConfig().Capacity
	}
	if cfg.Window <= 0 {
		cfg.Window = DefaultConfig().Window
	}
	return &Limiter{
		cfg:     cfg,
		lookup:  lookup,
		now:     time.Now,
		windows: make(map[string]*window),
	}
}

// Admit decides whether a generation request for userID may proceed.
//
// Premium users are admitted before any window lookup, so premium
// traffic never touches the window table. Free users consume one slot
// from their current window; a rejected request does not mutate the
// stored count. A failed tier lookup fails open.
func (l *Limiter) Admit(ctx context.Context, userID string) Decision {
	tier, err := l.lookup(ctx, userID)
	if err != nil {
		slog.Warn("tier lookup failed, admitting request (fail-open)",
			"user_id", userID, "error", err)
		return Decision{Allowed: true, FailedOpen: true}
	}

	if tier == datatypes.TierPremium {
		return Decision{Allowed: true}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.windows[userID]
	if !ok || now.After(w.resetAt) {
		w = &window{count: 0, resetAt: now.Add(l.cfg.Window)}
		l.windows[userID] = w
	}

	if w.count >= l.cfg.Capacity {
		zero := 0
		resetAt := w.resetAt
		return Decision{Allowed: false, Remaining: &zero, ResetAt: &resetAt}
	}

	w.count++
	remaining := l.cfg.Capacity - w.count
	resetAt := w.resetAt
	return Decision{Allowed: true, Remaining: &remaining, ResetAt: &resetAt}
}

// Peek reports the current quota state for userID without consuming a
// slot. Serves the usage endpoint.
func (l *Limiter) Peek(ctx context.Context, userID string) (datatypes.Tier, Decision) {
	tier, err := l.lookup(ctx, userID)
	if err != nil {
		slog.Warn("tier lookup failed during usage peek", "user_id", userID, "error", err)
		return datatypes.TierFree, Decision{Allowed: true, FailedOpen: true}
	}

	if tier == datatypes.TierPremium {
		return tier, Decision{Allowed: true}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.windows[userID]
	if !ok || now.After(w.resetAt) {
		remaining := l.cfg.Capacity
		return tier, Decision{Allowed: true, Remaining: &remaining}
	}

	remaining := l.cfg.Capacity - w.count
	if remaining < 0 {
		remaining = 0
	}
	resetAt := w.resetAt
	return tier, Decision{Allowed: remaining > 0, Remaining: &remaining, ResetAt: &resetAt}
}

// Capacity returns the configured free-tier cap.
func (l *Limiter) Capacity() int {
	return l.cfg.Capacity
}

// WindowCount returns the number of tracked windows. Used by the
// sweeper for logging and by tests.
func (l *Limiter) WindowCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.windows)
}

// RemoveExpired deletes windows whose resetAt is more than one window
// length in the past and returns how many were removed.
//
// The scan runs in two passes so the lock is never held across the
// whole snapshot-plus-delete under high cardinality: a cheap key/reset
// snapshot under the lock, filtering outside it, then batched deletes
// that recheck expiry before removing.
func (l *Limiter) RemoveExpired() int {
	type stamped struct {
		key     string
		resetAt time.Time
	}

	l.mu.Lock()
	snapshot := make([]stamped, 0, len(l.windows))
	for key, w := range l.windows {
		snapshot = append(snapshot, stamped{key: key, resetAt: w.resetAt})
	}
	l.mu.Unlock()

	cutoff := l.now().Add(-l.cfg.Window)
	expired := make([]string, 0)
	for _, s := range snapshot {
		if s.resetAt.Before(cutoff) {
			expired = append(expired, s.key)
		}
	}
	if len(expired) == 0 {
		return 0
	}

	removed := 0
	l.mu.Lock()
	for _, key := range expired {
		if w, ok := l.windows[key]; ok && w.resetAt.Before(cutoff) {
			delete(l.windows, key)
			removed++
		}
	}
	l.mu.Unlock()

	return removed
}
