package activitylog

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"marketing-console/internal/docstore"
)

// Sink buffers log entries in memory and drains them to the docstore
// one write at a time. Persistence is sequential even though enqueues
// are concurrent, which caps the write pressure on the backing store.
//
// Delivery policy (explicit, documented): best-effort. Enqueue never
// blocks on I/O, never signals backpressure, and a failed write is
// reported to the process logger and dropped without retry. Entries
// persist in FIFO order relative to a single producer; no ordering is
// guaranteed across producers.
//
// Construct one Sink in the composition root and inject it; there is
// deliberately no package-level instance.
type Sink struct {
	store docstore.Store
	log   *slog.Logger
	clock func() time.Time

	// writeTimeout bounds each individual persistence attempt.
	writeTimeout time.Duration

	mu       sync.Mutex
	cond     *sync.Cond
	queue    []Entry
	draining bool
}

func NewSink(store docstore.Store, log *slog.Logger) *Sink {
	if log == nil {
		log = slog.Default()
	}
	s := &Sink{
		store:        store,
		log:          log,
		clock:        time.Now,
		writeTimeout: 10 * time.Second,
	}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// Enqueue appends e to the in-memory queue and returns immediately.
// The first enqueue on an idle sink starts a drain pass; enqueues
// during an active drain are absorbed into the same pass.
func (s *Sink) Enqueue(e Entry) {
	s.mu.Lock()
	s.queue = append(s.queue, e)
	if !s.draining {
		s.draining = true
		go s.drain()
	}
	s.mu.Unlock()
}

// Convenience constructors mirroring the common call sites.

func (s *Sink) Info(category Category, action, message string) {
	s.Enqueue(Entry{Level: LevelInfo, Category: category, Action: action, Message: message})
}

func (s *Sink) Error(category Category, action, message string, details map[string]any) {
	s.Enqueue(Entry{Level: LevelError, Category: category, Action: action, Message: message, Details: details})
}

func (s *Sink) Performance(action, message string, elapsed time.Duration) {
	s.Enqueue(Entry{
		Level:           LevelInfo,
		Category:        CategoryPerformance,
		Action:          action,
		Message:         message,
		DurationSeconds: elapsed.Seconds(),
	})
}

func (s *Sink) drain() {
	for {
		s.mu.Lock()
		if len(s.queue) == 0 {
			s.draining = false
			s.cond.Broadcast()
			s.mu.Unlock()
			return
		}
		e := s.queue[0]
		s.queue = s.queue[1:]
		s.mu.Unlock()

		s.persist(e)
	}
}

// persist writes one entry. Failure is terminal for the entry: it is
// logged locally and the drain moves on.
func (s *Sink) persist(e Entry) {
	ctx, cancel := context.WithTimeout(context.Background(), s.writeTimeout)
	defer cancel()

	serverTime := s.clock().UTC().Format(time.RFC3339Nano)
	if _, err := s.store.Append(ctx, Collection, e.fields(serverTime)); err != nil {
		s.log.Error("activity log write failed",
			"action", e.Action,
			"category", string(e.Category),
			"err", err,
		)
	}
}

// Flush blocks until the queue is empty and the drain is idle, or ctx
// expires. It exists for orderly shutdown; it does not re-attempt
// entries whose writes already failed.
func (s *Sink) Flush(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.mu.Lock()
		for len(s.queue) > 0 || s.draining {
			s.cond.Wait()
		}
		s.mu.Unlock()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
