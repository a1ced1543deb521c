package docstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Memory is an in-memory Store used by tests and local development.
// It honors the same append-only and non-decreasing-timestamp contract
// as the Postgres implementation.
type Memory struct {
	mu    sync.Mutex
	cols  map[string][]Document
	subs  map[string][]*memorySub
	clock func() time.Time
	last  time.Time
}

type memorySub struct {
	sub *Subscription
	q   Query
}

func NewMemory() *Memory {
	return &Memory{
		cols:  map[string][]Document{},
		subs:  map[string][]*memorySub{},
		clock: time.Now,
	}
}

// SetClock overrides the timestamp source. Test-only.
func (m *Memory) SetClock(clock func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clock = clock
}

func (m *Memory) Append(ctx context.Context, collection string, fields map[string]any) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}

	m.mu.Lock()
	now := m.clock().UTC()
	if now.Before(m.last) {
		now = m.last
	}
	m.last = now

	doc := Document{
		ID:        uuid.NewString(),
		Fields:    copyFields(fields),
		CreatedAt: now,
	}
	m.cols[collection] = append(m.cols[collection], doc)

	// Snapshot per subscriber while still holding the lock, deliver after.
	type delivery struct {
		sub  *Subscription
		docs []Document
	}
	var deliveries []delivery
	for _, ms := range m.subs[collection] {
		deliveries = append(deliveries, delivery{ms.sub, m.snapshotLocked(collection, ms.q)})
	}
	m.mu.Unlock()

	for _, d := range deliveries {
		d.sub.publish(d.docs)
	}
	return doc, nil
}

func (m *Memory) Documents(ctx context.Context, collection string, q Query) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked(collection, q), nil
}

func (m *Memory) Subscribe(ctx context.Context, collection string, q Query) (*Subscription, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sub := newSubscription()
	ms := &memorySub{sub: sub, q: q}

	m.mu.Lock()
	m.subs[collection] = append(m.subs[collection], ms)
	initial := m.snapshotLocked(collection, q)
	m.mu.Unlock()

	sub.stop = func() { m.unsubscribe(collection, ms) }
	sub.publish(initial)

	context.AfterFunc(ctx, sub.Close)
	return sub, nil
}

func (m *Memory) unsubscribe(collection string, target *memorySub) {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.subs[collection][:0]
	for _, ms := range m.subs[collection] {
		if ms != target {
			kept = append(kept, ms)
		}
	}
	m.subs[collection] = kept
}

func (m *Memory) snapshotLocked(collection string, q Query) []Document {
	out := make([]Document, 0)
	for _, d := range m.cols[collection] {
		if q.Matches(d) {
			out = append(out, d)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if q.Ascending {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[j].CreatedAt.Before(out[i].CreatedAt)
	})
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out
}

func copyFields(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		out[k] = v
	}
	return out
}
