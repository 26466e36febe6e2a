// Copyright (C) 2025 Ember Journal (dev@emberjournal.app)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/emberjournal/ember-backend/pkg/extensions"
	"github.com/emberjournal/ember-backend/services/personalization/handlers"
	"github.com/emberjournal/ember-backend/services/personalization/middleware"
)

// SetupRoutes registers the personalization service's HTTP surface.
// Everything under /v1 requires a bearer credential; /health and
// /metrics stay open for probes and scrapers.
func SetupRoutes(router *gin.Engine, deps handlers.Deps, opts extensions.ServiceOptions) {
	router.GET("/health", handlers.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/v1")
	v1.Use(middleware.AuthMiddleware(opts.AuthProvider))
	{
		v1.POST("/insight", handlers.HandleInsight(deps))
		v1.POST("/chat", handlers.HandleChat(deps))
		v1.POST("/summary", handlers.HandleSummary(deps))
		v1.GET("/usage", handlers.HandleUsage(deps))
	}
}
