package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"marketing-console/internal/activitylog"
	"marketing-console/internal/analytics"
	"marketing-console/internal/dashboard"
	"marketing-console/internal/docstore"
	"marketing-console/internal/events"
	"marketing-console/internal/submissions"

	"github.com/gin-gonic/gin"
)

func testRouter(t *testing.T) (*gin.Engine, *docstore.Memory, *dashboard.Projection) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := docstore.NewMemory()
	ts := time.Date(2025, 3, 2, 10, 0, 0, 0, time.UTC)
	store.SetClock(func() time.Time { return ts })

	proj := dashboard.NewProjection(store, nil, analytics.NewWindow(
		time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 3, 7, 0, 0, 0, 0, time.UTC),
	))
	if err := proj.Start(context.Background()); err != nil {
		t.Fatalf("projection start: %v", err)
	}
	t.Cleanup(proj.Close)

	h := Handlers{
		Events:      events.NewService(store),
		Submissions: submissions.NewService(store),
		Dashboard:   proj,
		Sink:        activitylog.NewSink(store, nil),
	}

	r := gin.New()
	r.POST("/track/pageview", h.TrackPageView)
	r.POST("/track/event", h.TrackCustomEvent)
	r.POST("/submissions/contact", h.SubmitContact)
	r.POST("/submissions/investor", h.SubmitInvestor)
	r.GET("/v1/dashboard/metrics", h.GetMetrics)
	r.PUT("/v1/dashboard/window", h.SetWindow)
	r.GET("/v1/dashboard/export", h.Export)
	r.GET("/v1/dashboard/export/submissions.csv", h.ExportSubmissionsCSV)
	return r, store, proj
}

func doJSON(t *testing.T, r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestTrackPageView(t *testing.T) {
	r, store, _ := testRouter(t)

	w := doJSON(t, r, http.MethodPost, "/track/pageview",
		`{"page":"/pricing","session_id":"abc","viewport":{"width":390,"height":844}}`)
	if w.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", w.Code, w.Body.String())
	}

	docs, _ := store.Documents(context.Background(), events.Collection, docstore.Query{})
	if len(docs) != 1 {
		t.Fatalf("expected 1 stored event, got %d", len(docs))
	}
}

func TestTrackPageView_RejectsInvalid(t *testing.T) {
	r, _, _ := testRouter(t)

	w := doJSON(t, r, http.MethodPost, "/track/pageview", `{"session_id":"abc"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing page, got %d", w.Code)
	}
}

func TestSubmitContact_WritesActivityLog(t *testing.T) {
	r, store, _ := testRouter(t)

	w := doJSON(t, r, http.MethodPost, "/submissions/contact",
		`{"name":"Ada","email":"ada@example.com","country":"UK"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		docs, _ := store.Documents(context.Background(), activitylog.Collection, docstore.Query{})
		if len(docs) == 1 {
			if docs[0].Fields["action"] != "contact_submission_received" {
				t.Fatalf("unexpected log action: %v", docs[0].Fields["action"])
			}
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("activity log entry never persisted")
}

func TestGetMetricsReflectsTraffic(t *testing.T) {
	r, _, proj := testRouter(t)

	doJSON(t, r, http.MethodPost, "/track/pageview", `{"page":"/","session_id":"abc"}`)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) && proj.Metrics().TotalPageViews == 0 {
		time.Sleep(5 * time.Millisecond)
	}

	w := doJSON(t, r, http.MethodGet, "/v1/dashboard/metrics", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp struct {
		Period   string             `json:"period"`
		Degraded bool               `json:"degraded"`
		Metrics  analytics.Snapshot `json:"metrics"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Metrics.TotalPageViews != 1 {
		t.Fatalf("expected 1 page view in metrics, got %d", resp.Metrics.TotalPageViews)
	}
	if resp.Degraded {
		t.Fatalf("expected healthy status")
	}
}

func TestSetWindow(t *testing.T) {
	r, _, proj := testRouter(t)

	w := doJSON(t, r, http.MethodPut, "/v1/dashboard/window",
		`{"start_date":"2025-04-01","end_date":"2025-04-03"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if proj.Window().Days() != 3 {
		t.Fatalf("expected 3-day window, got %d", proj.Window().Days())
	}

	w = doJSON(t, r, http.MethodPut, "/v1/dashboard/window", `{"start_date":"yesterday","end_date":"2025-04-03"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad date, got %d", w.Code)
	}
}

func TestExportEndpoints(t *testing.T) {
	r, _, _ := testRouter(t)

	doJSON(t, r, http.MethodPost, "/submissions/investor",
		`{"name":"Grace","email":"g@h.i","firm":"Hopper Capital"}`)

	w := doJSON(t, r, http.MethodGet, "/v1/dashboard/export", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Header().Get("Content-Disposition"), "analytics-export.json") {
		t.Fatalf("expected download disposition, got %q", w.Header().Get("Content-Disposition"))
	}
	var payload map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, ok := payload["recent_submissions"]; !ok {
		t.Fatalf("expected recent_submissions in export")
	}

	w = doJSON(t, r, http.MethodGet, "/v1/dashboard/export/submissions.csv?kind=investor", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.HasPrefix(w.Header().Get("Content-Type"), "text/csv") {
		t.Fatalf("expected csv content type, got %q", w.Header().Get("Content-Type"))
	}
	if !strings.Contains(w.Body.String(), "Hopper Capital") {
		t.Fatalf("expected investor row in csv: %s", w.Body.String())
	}

	w = doJSON(t, r, http.MethodGet, "/v1/dashboard/export/submissions.csv?kind=partner", "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown kind, got %d", w.Code)
	}
}
