package events

import (
	"context"
	"errors"

	"marketing-console/internal/docstore"
)

// Service is the producer side: it validates and appends events.
// Timestamps are always store-assigned, never taken from the client.
type Service struct {
	store docstore.Store
}

func NewService(store docstore.Store) *Service {
	return &Service{store: store}
}

// PageView captures the client-supplied parts of a page view.
type PageView struct {
	Page      string
	SessionID string
	Country   string
	Language  string
	Viewport  *Viewport
}

// CustomEvent captures the client-supplied parts of a custom interaction.
type CustomEvent struct {
	EventName string
	SessionID string
	Country   string
	Language  string
	Viewport  *Viewport
}

func (s *Service) TrackPageView(ctx context.Context, pv PageView) (Event, error) {
	if s.store == nil {
		return Event{}, errors.New("events: store not configured")
	}
	e := Event{
		Kind:      KindPageView,
		Page:      pv.Page,
		SessionID: pv.SessionID,
		Country:   pv.Country,
		Language:  pv.Language,
		Viewport:  pv.Viewport,
	}
	if err := e.Validate(); err != nil {
		return Event{}, err
	}
	doc, err := s.store.Append(ctx, Collection, e.fields())
	if err != nil {
		return Event{}, err
	}
	e.ID = doc.ID
	e.Timestamp = doc.CreatedAt
	return e, nil
}

func (s *Service) TrackCustomEvent(ctx context.Context, ce CustomEvent) (Event, error) {
	if s.store == nil {
		return Event{}, errors.New("events: store not configured")
	}
	e := Event{
		Kind:      KindCustomEvent,
		EventName: ce.EventName,
		SessionID: ce.SessionID,
		Country:   ce.Country,
		Language:  ce.Language,
		Viewport:  ce.Viewport,
	}
	if err := e.Validate(); err != nil {
		return Event{}, err
	}
	doc, err := s.store.Append(ctx, Collection, e.fields())
	if err != nil {
		return Event{}, err
	}
	e.ID = doc.ID
	e.Timestamp = doc.CreatedAt
	return e, nil
}
