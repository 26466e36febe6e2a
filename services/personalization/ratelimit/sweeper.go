// Copyright (C) 2025 Ember Journal (dev@emberjournal.app)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package ratelimit

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// SweeperConfig holds configuration for the background window sweeper.
//
// # Description
//
// Contains settings for the goroutine that periodically evicts expired
// admission windows so the table does not grow with churned users.
// Default values are provided via DefaultSweeperConfig().
//
// # Fields
//
//   - Interval: How often a sweep cycle runs. Default: 1 hour.
type SweeperConfig struct {
	Interval time.Duration
}

// DefaultSweeperConfig returns the production sweeper configuration.
func DefaultSweeperConfig() SweeperConfig {
	return SweeperConfig{
		Interval: 1 * time.Hour,
	}
}

// Sweeper periodically removes expired admission windows from a Limiter.
//
// # Description
//
// Manages the lifecycle of a background goroutine using the ticker +
// done channel pattern for graceful shutdown. Eviction runs entirely
// off the request path; admission latency is never affected by sweep
// cycles.
//
// # Thread Safety
//
// All public methods are thread-safe. A mutex protects the
// running-state transitions.
type Sweeper struct {
	limiter *Limiter
	config  SweeperConfig
	done    chan struct{}
	mu      sync.Mutex
	running bool
}

// NewSweeper creates a sweeper for the given limiter.
func NewSweeper(limiter *Limiter, config SweeperConfig) *Sweeper {
	if config.Interval <= 0 {
		config.Interval = DefaultSweeperConfig().Interval
	}
	return &Sweeper{
		limiter: limiter,
		config:  config,
		done:    make(chan struct{}),
	}
}

// Start begins the background sweep loop.
//
// The loop runs until Stop() is called or the context is cancelled.
// Returns an error if the sweeper is already running.
func (s *Sweeper) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("sweeper is already running")
	}
	s.running = true
	s.done = make(chan struct{}) // Reset done channel for potential restart
	s.mu.Unlock()

	slog.Info("rate limit sweeper starting", "interval", s.config.Interval.String())

	go s.runLoop(ctx)
	return nil
}

// Stop signals the sweep loop to exit. Safe to call multiple times.
//
// Does not interrupt an in-progress sweep cycle; the loop exits after
// the current cycle completes.
func (s *Sweeper) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil // Already stopped
	}

	slog.Info("rate limit sweeper stopping")
	close(s.done)
	s.running = false
	return nil
}

// RunNow performs a single sweep cycle immediately without waiting for
// the next scheduled tick. Returns the number of windows evicted.
func (s *Sweeper) RunNow() int {
	return s.sweep()
}

func (s *Sweeper) runLoop(ctx context.Context) {
	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("rate limit sweeper stopped (context cancelled)")
			return
		case <-s.done:
			slog.Info("rate limit sweeper stopped (stop requested)")
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *Sweeper) sweep() int {
	start := time.Now()
	removed := s.limiter.RemoveExpired()
	if removed > 0 {
		slog.Info("rate limit sweep completed",
			"windows_removed", removed,
			"windows_remaining", s.limiter.WindowCount(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
	return removed
}
