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

// HandleChat serves POST /v1/chat: a conversational reply grounded in
// the caller's recent turns and optional journal context.
func HandleChat(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req datatypes.ChatRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			deps.Metrics.RecordRequest(observability.EndpointChat, http.StatusBadRequest)
			c.JSON(http.StatusBadRequest, gin.H{"error": "messages are required, each with a role of user or assistant and non-empty content"})
			return
		}

		runPipeline(c, deps, observability.EndpointChat,
			func(user datatypes.User) generation.Request {
				return generation.Request{
					Kind:           datatypes.KindChat,
					Tier:           user.Tier,
					Style:          user.Style,
					Messages:       req.Messages,
					JournalContext: req.JournalContext,
				}
			},
			func(result datatypes.GenerationResult) any {
				return datatypes.ChatResponse{
					Response:   result.Text,
					Provenance: result.Provenance,
					ModelID:    result.ModelID,
				}
			},
		)
	}
}
