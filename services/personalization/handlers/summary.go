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

// HandleSummary serves POST /v1/summary: a compact prose summary of
// journal content, optionally informed by conversation history.
func HandleSummary(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req datatypes.SummaryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			deps.Metrics.RecordRequest(observability.EndpointSummary, http.StatusBadRequest)
			c.JSON(http.StatusBadRequest, gin.H{"error": "journalContent is required and must be at most 20000 characters"})
			return
		}

		runPipeline(c, deps, observability.EndpointSummary,
			func(user datatypes.User) generation.Request {
				return generation.Request{
					Kind:     datatypes.KindSummary,
					Tier:     user.Tier,
					Style:    user.Style,
					Content:  req.JournalContent,
					Messages: req.ConversationHistory,
				}
			},
			func(result datatypes.GenerationResult) any {
				return datatypes.SummaryResponse{
					Summary:    result.Text,
					Provenance: result.Provenance,
					ModelID:    result.ModelID,
				}
			},
		)
	}
}
