package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"marketing-console/internal/docstore"
)

func TestValidate_ExactlyOneOfPageOrEventName(t *testing.T) {
	cases := []struct {
		name string
		e    Event
		ok   bool
	}{
		{"page view", Event{Kind: KindPageView, Page: "/", SessionID: "s"}, true},
		{"custom event", Event{Kind: KindCustomEvent, EventName: "cta_click", SessionID: "s"}, true},
		{"page view missing page", Event{Kind: KindPageView, SessionID: "s"}, false},
		{"page view with event name", Event{Kind: KindPageView, Page: "/", EventName: "x", SessionID: "s"}, false},
		{"custom event missing name", Event{Kind: KindCustomEvent, SessionID: "s"}, false},
		{"custom event with page", Event{Kind: KindCustomEvent, EventName: "x", Page: "/", SessionID: "s"}, false},
		{"unknown kind", Event{Kind: "click", Page: "/", SessionID: "s"}, false},
		{"missing session", Event{Kind: KindPageView, Page: "/"}, false},
	}
	for _, tc := range cases {
		err := tc.e.Validate()
		if tc.ok && err != nil {
			t.Fatalf("%s: unexpected err: %v", tc.name, err)
		}
		if !tc.ok && !errors.Is(err, ErrInvalidRecord) {
			t.Fatalf("%s: expected ErrInvalidRecord, got %v", tc.name, err)
		}
	}
}

func TestDecode_RoundTripsViewport(t *testing.T) {
	now := time.Unix(1700000000, 0).UTC()
	doc := docstore.Document{
		ID:        "d1",
		CreatedAt: now,
		Fields: map[string]any{
			"kind":       "page_view",
			"page":       "/pricing",
			"session_id": "abc",
			"country":    "Germany",
			"language":   "de-DE",
			// json numbers decode as float64
			"viewport": map[string]any{"width": float64(1280), "height": float64(720)},
		},
	}
	e, err := Decode(doc)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if e.Viewport == nil || e.Viewport.Width != 1280 || e.Viewport.Height != 720 {
		t.Fatalf("viewport not decoded: %+v", e.Viewport)
	}
	if !e.Timestamp.Equal(now) {
		t.Fatalf("expected store-assigned timestamp")
	}
}

func TestDecodeAll_SkipsMalformedDocuments(t *testing.T) {
	docs := []docstore.Document{
		{ID: "good", Fields: map[string]any{"kind": "page_view", "page": "/", "session_id": "s"}},
		{ID: "bad", Fields: map[string]any{"kind": "page_view", "session_id": "s"}},
		{ID: "worse", Fields: map[string]any{}},
	}
	out := DecodeAll(docs)
	if len(out) != 1 || out[0].ID != "good" {
		t.Fatalf("expected only the valid document, got %+v", out)
	}
}

func TestService_TrackPageViewAppends(t *testing.T) {
	store := docstore.NewMemory()
	svc := NewService(store)

	e, err := svc.TrackPageView(context.Background(), PageView{Page: "/", SessionID: "abc"})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if e.ID == "" || e.Timestamp.IsZero() {
		t.Fatalf("expected store-assigned id and timestamp, got %+v", e)
	}

	docs, err := store.Documents(context.Background(), Collection, docstore.Query{})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("expected 1 document, got %d", len(docs))
	}
}

func TestService_RejectsInvalidBeforeAppend(t *testing.T) {
	store := docstore.NewMemory()
	svc := NewService(store)

	if _, err := svc.TrackCustomEvent(context.Background(), CustomEvent{SessionID: "abc"}); !errors.Is(err, ErrInvalidRecord) {
		t.Fatalf("expected ErrInvalidRecord, got %v", err)
	}
	docs, _ := store.Documents(context.Background(), Collection, docstore.Query{})
	if len(docs) != 0 {
		t.Fatalf("invalid record must not be persisted")
	}
}
