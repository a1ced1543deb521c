package main

import (
	"marketing-console/internal/activitylog"
	"marketing-console/internal/actor"
	"marketing-console/internal/config"
	"marketing-console/internal/dashboard"
	"marketing-console/internal/events"
	"marketing-console/internal/httpapi"
	"marketing-console/internal/submissions"

	"github.com/gin-gonic/gin"
)

type routeDeps struct {
	events      *events.Service
	submissions *submissions.Service
	dashboard   *dashboard.Projection
	sink        *activitylog.Sink
}

// registerRoutes wires HTTP routes to handlers.
// Keep this file free of business logic. Handlers delegate to internal modules.
func registerRoutes(r *gin.Engine, cfg config.Config, deps routeDeps) {
	h := httpapi.Handlers{
		Events:      deps.events,
		Submissions: deps.submissions,
		Dashboard:   deps.dashboard,
		Sink:        deps.sink,
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Producer endpoints (public site traffic).
	r.POST("/track/pageview", h.TrackPageView)
	r.POST("/track/event", h.TrackCustomEvent)
	r.POST("/submissions/contact", h.SubmitContact)
	r.POST("/submissions/investor", h.SubmitInvestor)

	// Operator console. Actor extraction is attribution-only; access
	// control sits in front of this service.
	v1 := r.Group("/v1")
	v1.Use(actor.Middleware(cfg.Admin.JWTSecret))
	{
		dash := v1.Group("/dashboard")
		{
			dash.GET("/metrics", h.GetMetrics)
			dash.PUT("/window", h.SetWindow)
			dash.GET("/export", h.Export)
			dash.GET("/export/submissions.csv", h.ExportSubmissionsCSV)
		}
	}
}
