// Copyright (C) 2025 Ember Journal (dev@emberjournal.app)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/emberjournal/ember-backend/services/personalization/datatypes"
	"github.com/emberjournal/ember-backend/services/personalization/middleware"
	"github.com/emberjournal/ember-backend/services/personalization/observability"
)

// HandleUsage serves GET /v1/usage: the caller's tier and remaining
// quota without consuming a request slot.
func HandleUsage(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		info := middleware.GetAuthInfo(c)
		if info == nil {
			deps.Metrics.RecordRequest(observability.EndpointUsage, http.StatusUnauthorized)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		tier, decision := deps.Limiter.Peek(c.Request.Context(), info.UserID)

		resp := datatypes.UsageResponse{
			Tier:      tier,
			Remaining: decision.Remaining,
		}
		if tier == datatypes.TierFree {
			limit := deps.Limiter.Capacity()
			resp.Limit = &limit
		}
		if decision.ResetAt != nil {
			resetAt := decision.ResetAt.UTC().Format(time.RFC3339)
			resp.ResetAt = &resetAt
		}

		deps.Metrics.RecordRequest(observability.EndpointUsage, http.StatusOK)
		c.JSON(http.StatusOK, resp)
	}
}
