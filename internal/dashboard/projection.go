package dashboard

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"marketing-console/internal/analytics"
	"marketing-console/internal/docstore"
	"marketing-console/internal/events"
	"marketing-console/internal/submissions"
)

// Projection keeps a derived-metrics snapshot current as the record
// set changes or the operator moves the time window. Every change
// re-runs the aggregator wholesale; with the modest volumes of a
// marketing site that is simpler and safer than incremental updates.
// A newer delivery simply supersedes the previous recomputation:
// last snapshot wins.
type Projection struct {
	store docstore.Store
	log   *slog.Logger
	clock func() time.Time

	mu        sync.Mutex
	window    analytics.Window
	events    []events.Event
	contacts  []submissions.Submission
	investors []submissions.Submission
	snapshot  analytics.Snapshot

	subs   []*docstore.Subscription
	cancel context.CancelFunc
	done   chan struct{}
}

func NewProjection(store docstore.Store, log *slog.Logger, w analytics.Window) *Projection {
	if log == nil {
		log = slog.Default()
	}
	p := &Projection{
		store:  store,
		log:    log,
		clock:  time.Now,
		window: w,
	}
	p.snapshot = analytics.Aggregate(nil, nil, w)
	return p
}

// Start opens live subscriptions on the three record collections and
// keeps recomputing until ctx is canceled or Close is called.
func (p *Projection) Start(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)

	collections := []string{events.Collection, submissions.ContactCollection, submissions.InvestorCollection}
	subs := make([]*docstore.Subscription, 0, len(collections))
	for _, col := range collections {
		sub, err := p.store.Subscribe(runCtx, col, docstore.Query{Ascending: true})
		if err != nil {
			cancel()
			for _, s := range subs {
				s.Close()
			}
			return err
		}
		subs = append(subs, sub)
	}

	p.mu.Lock()
	p.subs = subs
	p.cancel = cancel
	p.done = make(chan struct{})
	p.mu.Unlock()

	go p.run(runCtx, subs)
	return nil
}

func (p *Projection) run(ctx context.Context, subs []*docstore.Subscription) {
	defer close(p.done)
	for {
		select {
		case docs := <-subs[0].C():
			p.applyEvents(docs)
		case docs := <-subs[1].C():
			p.applySubmissions(submissions.KindContact, docs)
		case docs := <-subs[2].C():
			p.applySubmissions(submissions.KindInvestor, docs)
		case <-ctx.Done():
			return
		}
	}
}

// Close cancels interest in further deliveries. It does not interrupt
// writes already in flight elsewhere.
func (p *Projection) Close() {
	p.mu.Lock()
	cancel := p.cancel
	subs := p.subs
	done := p.done
	p.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	for _, s := range subs {
		s.Close()
	}
	if done != nil {
		<-done
	}
}

func (p *Projection) applyEvents(docs []docstore.Document) {
	decoded := events.DecodeAll(docs)
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = decoded
	p.recomputeLocked()
}

func (p *Projection) applySubmissions(kind submissions.Kind, docs []docstore.Document) {
	decoded := submissions.DecodeAll(kind, docs)
	p.mu.Lock()
	defer p.mu.Unlock()
	switch kind {
	case submissions.KindContact:
		p.contacts = decoded
	case submissions.KindInvestor:
		p.investors = decoded
	}
	p.recomputeLocked()
}

// SetWindow changes the reporting window and recomputes synchronously:
// new metrics are visible as soon as this returns.
func (p *Projection) SetWindow(w analytics.Window) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.window = w
	p.recomputeLocked()
}

func (p *Projection) recomputeLocked() {
	pooled := make([]submissions.Submission, 0, len(p.contacts)+len(p.investors))
	pooled = append(pooled, p.contacts...)
	pooled = append(pooled, p.investors...)
	p.snapshot = analytics.Aggregate(p.events, pooled, p.window)
}

// Metrics returns the current derived snapshot. During a store outage
// this keeps returning the last-known-good result.
func (p *Projection) Metrics() analytics.Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshot
}

func (p *Projection) Window() analytics.Window {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.window
}

// Degraded reports whether any live subscription is currently failing.
// Metrics remain served from the last successful delivery.
func (p *Projection) Degraded() bool {
	p.mu.Lock()
	subs := p.subs
	p.mu.Unlock()
	for _, s := range subs {
		if s.Err() != nil {
			return true
		}
	}
	return false
}
