package httpapi

import (
	"errors"
	"net/http"
	"time"

	"marketing-console/internal/activitylog"
	"marketing-console/internal/actor"
	"marketing-console/internal/analytics"
	"marketing-console/internal/dashboard"
	"marketing-console/internal/events"
	"marketing-console/internal/submissions"

	"github.com/gin-gonic/gin"
)

// Handlers groups HTTP handlers for dependency injection.
// Keep these thin: parse/validate input, call internal modules, return JSON.
type Handlers struct {
	Events      *events.Service
	Submissions *submissions.Service
	Dashboard   *dashboard.Projection
	Sink        *activitylog.Sink
}

// --- Producers ---

type viewportRequest struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

type pageViewRequest struct {
	Page      string           `json:"page"`
	SessionID string           `json:"session_id"`
	Country   string           `json:"country,omitempty"`
	Language  string           `json:"language,omitempty"`
	Viewport  *viewportRequest `json:"viewport,omitempty"`
}

func (h Handlers) TrackPageView(c *gin.Context) {
	var req pageViewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	e, err := h.Events.TrackPageView(c.Request.Context(), events.PageView{
		Page:      req.Page,
		SessionID: req.SessionID,
		Country:   req.Country,
		Language:  req.Language,
		Viewport:  viewport(req.Viewport),
	})
	if err != nil {
		abortTrackError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"id": e.ID})
}

type customEventRequest struct {
	EventName string           `json:"event_name"`
	SessionID string           `json:"session_id"`
	Country   string           `json:"country,omitempty"`
	Language  string           `json:"language,omitempty"`
	Viewport  *viewportRequest `json:"viewport,omitempty"`
}

func (h Handlers) TrackCustomEvent(c *gin.Context) {
	var req customEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	e, err := h.Events.TrackCustomEvent(c.Request.Context(), events.CustomEvent{
		EventName: req.EventName,
		SessionID: req.SessionID,
		Country:   req.Country,
		Language:  req.Language,
		Viewport:  viewport(req.Viewport),
	})
	if err != nil {
		abortTrackError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"id": e.ID})
}

type submissionRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Company string `json:"company,omitempty"`
	Message string `json:"message,omitempty"`
	Country string `json:"country,omitempty"`

	Firm            string `json:"firm,omitempty"`
	InvestmentRange string `json:"investment_range,omitempty"`
}

func (h Handlers) SubmitContact(c *gin.Context)  { h.submit(c, submissions.KindContact) }
func (h Handlers) SubmitInvestor(c *gin.Context) { h.submit(c, submissions.KindInvestor) }

func (h Handlers) submit(c *gin.Context, kind submissions.Kind) {
	var req submissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	sub, err := h.Submissions.Submit(c.Request.Context(), submissions.Submission{
		Kind:            kind,
		Name:            req.Name,
		Email:           req.Email,
		Company:         req.Company,
		Message:         req.Message,
		Country:         req.Country,
		Firm:            req.Firm,
		InvestmentRange: req.InvestmentRange,
	})
	if err != nil {
		abortTrackError(c, err)
		return
	}

	h.enqueue(c, activitylog.Entry{
		Level:    activitylog.LevelSuccess,
		Category: activitylog.CategoryAPI,
		Action:   string(kind) + "_submission_received",
		Message:  "new " + string(kind) + " submission",
		Details:  map[string]any{"submission_id": sub.ID},
	})
	c.JSON(http.StatusCreated, gin.H{"id": sub.ID})
}

// --- Console (read side) ---

func (h Handlers) GetMetrics(c *gin.Context) {
	w := h.Dashboard.Window()
	c.JSON(http.StatusOK, gin.H{
		"period":   w.Label(),
		"degraded": h.Dashboard.Degraded(),
		"metrics":  h.Dashboard.Metrics(),
	})
}

type windowRequest struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

func (h Handlers) SetWindow(c *gin.Context) {
	var req windowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	start, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "start_date must be YYYY-MM-DD"})
		return
	}
	end, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "end_date must be YYYY-MM-DD"})
		return
	}

	w := analytics.NewWindow(start, end)
	h.Dashboard.SetWindow(w)

	h.enqueue(c, activitylog.Entry{
		Level:    activitylog.LevelInfo,
		Category: activitylog.CategoryUI,
		Action:   "dashboard_window_changed",
		Message:  "reporting window set to " + w.Label(),
	})
	c.JSON(http.StatusOK, gin.H{"period": w.Label(), "metrics": h.Dashboard.Metrics()})
}

func (h Handlers) Export(c *gin.Context) {
	started := time.Now()
	payload, err := h.Dashboard.Export(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "export unavailable"})
		return
	}

	h.enqueue(c, activitylog.Entry{
		Level:           activitylog.LevelInfo,
		Category:        activitylog.CategoryPerformance,
		Action:          "dashboard_exported",
		Message:         "analytics export generated",
		DurationSeconds: time.Since(started).Seconds(),
	})
	c.Header("Content-Disposition", `attachment; filename="analytics-export.json"`)
	c.JSON(http.StatusOK, payload)
}

func (h Handlers) ExportSubmissionsCSV(c *gin.Context) {
	kind := submissions.Kind(c.DefaultQuery("kind", string(submissions.KindContact)))
	if kind != submissions.KindContact && kind != submissions.KindInvestor {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "kind must be contact or investor"})
		return
	}
	out, err := h.Dashboard.ExportSubmissionsCSV(c.Request.Context(), kind)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "export unavailable"})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+string(kind)+`-submissions.csv"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", []byte(out))
}

// enqueue attaches the request's actor identity and a client
// descriptor before handing the entry to the sink.
func (h Handlers) enqueue(c *gin.Context, e activitylog.Entry) {
	if h.Sink == nil {
		return
	}
	e.Actor = actor.FromContext(c.Request.Context())
	e.ClientDescriptor = clientDescriptor(c)
	h.Sink.Enqueue(e)
}

func clientDescriptor(c *gin.Context) string {
	desc := c.ClientIP()
	if ua := c.Request.UserAgent(); ua != "" {
		desc += " " + ua
	}
	return desc
}

func abortTrackError(c *gin.Context, err error) {
	if errors.Is(err, events.ErrInvalidRecord) || errors.Is(err, submissions.ErrInvalidRecord) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "storage failure"})
}

func viewport(v *viewportRequest) *events.Viewport {
	if v == nil {
		return nil
	}
	return &events.Viewport{Width: v.Width, Height: v.Height}
}
