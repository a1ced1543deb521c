package events

import (
	"errors"
	"time"
)

// Collection is the docstore collection holding analytics events.
const Collection = "analytics_events"

type Kind string

const (
	KindPageView    Kind = "page_view"
	KindCustomEvent Kind = "custom_event"
)

var ErrInvalidRecord = errors.New("events: invalid record")

// Viewport is the client viewport in device-independent pixels, used
// only for device-class classification.
type Viewport struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Event is one observed occurrence on the site.
//
// Invariants:
// - Exactly one of Page or EventName is set, matching Kind.
// - Events are written once and never mutated.
// - SessionID groups events from one browsing session and is the
//   deduplication key for unique-visitor counts.
type Event struct {
	ID        string    `json:"id"`
	Kind      Kind      `json:"kind"`
	Page      string    `json:"page,omitempty"`
	EventName string    `json:"event_name,omitempty"`
	SessionID string    `json:"session_id"`
	Country   string    `json:"country,omitempty"`
	Language  string    `json:"language,omitempty"`
	Viewport  *Viewport `json:"viewport,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Validate enforces the one-of Page/EventName invariant.
func (e Event) Validate() error {
	switch e.Kind {
	case KindPageView:
		if e.Page == "" || e.EventName != "" {
			return ErrInvalidRecord
		}
	case KindCustomEvent:
		if e.EventName == "" || e.Page != "" {
			return ErrInvalidRecord
		}
	default:
		return ErrInvalidRecord
	}
	if e.SessionID == "" {
		return ErrInvalidRecord
	}
	return nil
}
