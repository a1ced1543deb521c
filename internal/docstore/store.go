package docstore

import (
	"context"
	"errors"
	"sync"
	"time"
)

// Document is one loosely-structured record in a named collection.
// CreatedAt is assigned by the store on append and is non-decreasing
// per store instance; it is not guaranteed strictly ordered across
// concurrent writers.
type Document struct {
	ID        string         `json:"id"`
	Fields    map[string]any `json:"fields"`
	CreatedAt time.Time      `json:"created_at"`
}

// Query filters and orders a collection read.
// Zero time bounds mean unbounded; CreatedAfter is inclusive,
// CreatedBefore exclusive. Default ordering is newest-first.
type Query struct {
	CreatedAfter  time.Time
	CreatedBefore time.Time
	Ascending     bool
	Limit         int
}

// Store is the document-store collaborator: an append-only log per
// collection with point-in-time query snapshots and live change feeds.
//
// Records are never updated or deleted through this interface;
// retention is an external policy.
type Store interface {
	Append(ctx context.Context, collection string, fields map[string]any) (Document, error)
	Documents(ctx context.Context, collection string, q Query) ([]Document, error)
	Subscribe(ctx context.Context, collection string, q Query) (*Subscription, error)
}

var ErrClosed = errors.New("docstore: subscription closed")

// Subscription is a live feed over one collection. The current matching
// snapshot is delivered on C immediately after Subscribe and again after
// every observed change. Delivery is at-least-once and coalescing: a
// slow consumer sees the latest snapshot, not every intermediate one.
type Subscription struct {
	c    chan []Document
	stop func()

	mu     sync.Mutex
	err    error
	closed bool
}

func newSubscription() *Subscription {
	return &Subscription{c: make(chan []Document, 1)}
}

// C delivers full snapshots of the matching record set.
func (s *Subscription) C() <-chan []Document { return s.c }

// Err reports the last delivery failure, if any. A non-nil error does
// not invalidate previously delivered snapshots.
func (s *Subscription) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Close cancels interest in further deliveries. Safe to call twice.
func (s *Subscription) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	stop := s.stop
	s.mu.Unlock()
	if stop != nil {
		stop()
	}
}

// publish replaces any undelivered snapshot with docs.
func (s *Subscription) publish(docs []Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case <-s.c:
	default:
	}
	select {
	case s.c <- docs:
	default:
	}
}

func (s *Subscription) setErr(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

// Matches reports whether d falls inside the query's time bounds.
func (q Query) Matches(d Document) bool {
	if !q.CreatedAfter.IsZero() && d.CreatedAt.Before(q.CreatedAfter) {
		return false
	}
	if !q.CreatedBefore.IsZero() && !d.CreatedAt.Before(q.CreatedBefore) {
		return false
	}
	return true
}
