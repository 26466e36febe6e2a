// Copyright (C) 2025 Ember Journal (dev@emberjournal.app)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/emberjournal/ember-backend/services/personalization/datatypes"
	"github.com/emberjournal/ember-backend/services/personalization/generation"
	"github.com/emberjournal/ember-backend/services/personalization/observability"
)

// HandleInsight serves POST /v1/insight: a structured insight plus
// follow-up question for one journal entry.
func HandleInsight(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req datatypes.InsightRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			deps.Metrics.RecordRequest(observability.EndpointInsight, http.StatusBadRequest)
			c.JSON(http.StatusBadRequest, gin.H{"error": "content is required and must be at most 10000 characters"})
			return
		}

		runPipeline(c, deps, observability.EndpointInsight,
			func(user datatypes.User) generation.Request {
				return generation.Request{
					Kind:       datatypes.KindInsight,
					Tier:       user.Tier,
					Style:      user.Style,
					Content:    req.Content,
					MoodRating: req.MoodRating,
				}
			},
			func(result datatypes.GenerationResult) any {
				return datatypes.InsightResponse{
					Insight:          result.Text,
					FollowUpQuestion: result.SecondaryText,
					Confidence:       result.Confidence,
					Provenance:       result.Provenance,
					ModelID:          result.ModelID,
				}
			},
		)
	}
}
