// Copyright (C) 2025 Ember Journal (dev@emberjournal.app)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package handlers implements the HTTP surface of the personalization
// service. The three generation endpoints share one pipeline:
// admission, user load, stats, cascade; only request binding and
// response shaping differ per kind.
package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/emberjournal/ember-backend/services/personalization/datatypes"
	"github.com/emberjournal/ember-backend/services/personalization/generation"
	"github.com/emberjournal/ember-backend/services/personalization/middleware"
	"github.com/emberjournal/ember-backend/services/personalization/observability"
	"github.com/emberjournal/ember-backend/services/personalization/ratelimit"
	"github.com/emberjournal/ember-backend/services/personalization/stats"
	"github.com/emberjournal/ember-backend/services/personalization/store"
)

// entryFetchTimeout bounds the historical-entry read so a slow store
// degrades personalization instead of stalling the request.
const entryFetchTimeout = 10 * time.Second

// Deps bundles the collaborators the endpoint handlers need.
type Deps struct {
	Users        store.UserStore
	Entries      store.EntryStore
	Limiter      *ratelimit.Limiter
	Orchestrator *generation.Orchestrator
	Metrics      *observability.Metrics
	Now          func() time.Time
}

func (d Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

// buildRequest turns the authenticated user into a kind-specific
// generation request once the shared pipeline has admitted the call.
type buildRequest func(user datatypes.User) generation.Request

// shapeResponse maps the normalized result envelope onto the
// endpoint's wire shape.
type shapeResponse func(result datatypes.GenerationResult) any

// runPipeline executes the shared stages for one generation request:
// admission, user load, stats computation, cascade, response.
//
// Provider failures never surface here; the cascade absorbs them. The
// only client-visible failures are auth (handled by middleware),
// validation (handled by the per-endpoint binder), and quota.
func runPipeline(c *gin.Context, deps Deps, endpoint observability.Endpoint, build buildRequest, shape shapeResponse) {
	info := middleware.GetAuthInfo(c)
	if info == nil {
		deps.Metrics.RecordRequest(endpoint, http.StatusUnauthorized)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	ctx := c.Request.Context()

	decision := deps.Limiter.Admit(ctx, info.UserID)
	if decision.FailedOpen {
		deps.Metrics.RecordFailOpen()
	}
	if !decision.Allowed {
		deps.Metrics.RecordRateLimitRejection()
		deps.Metrics.RecordRequest(endpoint, http.StatusTooManyRequests)
		writeRateLimitHeaders(c, deps.Limiter.Capacity(), decision)
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error": "daily generation limit reached",
		})
		return
	}

	user := loadUser(ctx, deps, info.UserID)
	snapshot := computeStats(ctx, deps, info.UserID)

	result := deps.Orchestrator.Run(ctx, build(user), snapshot)

	deps.Metrics.RecordResult(endpoint, string(result.Provenance))
	deps.Metrics.RecordRequest(endpoint, http.StatusOK)
	c.JSON(http.StatusOK, shape(result))
}

// loadUser reads the user record, degrading to free-tier defaults when
// the read fails. The limiter has already made its own admission
// decision; this lookup only drives prompt personalization.
func loadUser(ctx context.Context, deps Deps, userID string) datatypes.User {
	user, err := deps.Users.GetUser(ctx, userID)
	if err != nil {
		slog.Warn("user load failed, using default personalization",
			"user_id", userID, "error", err)
		return datatypes.User{ID: userID, Tier: datatypes.TierFree, Style: datatypes.StyleCoach}
	}
	return user
}

// computeStats fetches the user's entries and derives the snapshot.
// Any failure yields nil: the request proceeds with degraded
// personalization rather than aborting.
func computeStats(ctx context.Context, deps Deps, userID string) (snapshot *stats.Snapshot) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("stats computation panicked, proceeding without stats",
				"user_id", userID, "panic", r)
			snapshot = nil
		}
	}()

	fetchCtx, cancel := context.WithTimeout(ctx, entryFetchTimeout)
	defer cancel()

	entries, err := deps.Entries.EntriesByOwner(fetchCtx, userID)
	if err != nil {
		slog.Warn("entry fetch failed, proceeding without stats",
			"user_id", userID, "error", err)
		return nil
	}

	snap := stats.Compute(entries, deps.now())
	return &snap
}

// writeRateLimitHeaders attaches quota metadata to a 429 response.
func writeRateLimitHeaders(c *gin.Context, limit int, decision ratelimit.Decision) {
	c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
	if decision.Remaining != nil {
		c.Header("X-RateLimit-Remaining", strconv.Itoa(*decision.Remaining))
	}
	if decision.ResetAt != nil {
		c.Header("X-RateLimit-Reset", decision.ResetAt.UTC().Format(time.RFC3339))
	}
}
