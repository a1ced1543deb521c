package docstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// NOTE: This store assumes the following table exists:
//
//   CREATE TABLE documents (
//     id         uuid PRIMARY KEY,
//     collection text NOT NULL,
//     fields     jsonb NOT NULL,
//     created_at timestamptz NOT NULL DEFAULT now()
//   );
//   CREATE INDEX documents_collection_created_at
//     ON documents (collection, created_at);
//
// The table is INSERT-only; updates and deletes are an external
// retention concern.

const changeChannelPrefix = "docstore:"

// Postgres persists documents in a single jsonb table and fans out
// change notifications over Redis pub/sub so that Subscribe can
// re-query on every observed append.
type Postgres struct {
	db  *sql.DB
	rdb *redis.Client
	log *slog.Logger
}

func NewPostgres(db *sql.DB, rdb *redis.Client, log *slog.Logger) *Postgres {
	if log == nil {
		log = slog.Default()
	}
	return &Postgres{db: db, rdb: rdb, log: log}
}

func (p *Postgres) Append(ctx context.Context, collection string, fields map[string]any) (Document, error) {
	payload, err := json.Marshal(fields)
	if err != nil {
		return Document{}, fmt.Errorf("docstore: encode fields: %w", err)
	}

	doc := Document{ID: uuid.NewString(), Fields: copyFields(fields)}

	const q = `
INSERT INTO documents (id, collection, fields)
VALUES ($1, $2, $3)
RETURNING created_at
`
	if err := p.db.QueryRowContext(ctx, q, doc.ID, collection, payload).Scan(&doc.CreatedAt); err != nil {
		return Document{}, fmt.Errorf("docstore: append to %s: %w", collection, err)
	}

	// Change notification is best-effort; subscribers converge on the
	// next successful publish or re-query.
	if err := p.rdb.Publish(ctx, changeChannelPrefix+collection, doc.ID).Err(); err != nil {
		p.log.Warn("docstore change publish failed", "collection", collection, "err", err)
	}
	return doc, nil
}

func (p *Postgres) Documents(ctx context.Context, collection string, q Query) ([]Document, error) {
	var b strings.Builder
	b.WriteString(`SELECT id, fields, created_at FROM documents WHERE collection = $1`)
	args := []any{collection}

	if !q.CreatedAfter.IsZero() {
		args = append(args, q.CreatedAfter)
		fmt.Fprintf(&b, " AND created_at >= $%d", len(args))
	}
	if !q.CreatedBefore.IsZero() {
		args = append(args, q.CreatedBefore)
		fmt.Fprintf(&b, " AND created_at < $%d", len(args))
	}
	if q.Ascending {
		b.WriteString(" ORDER BY created_at ASC")
	} else {
		b.WriteString(" ORDER BY created_at DESC")
	}
	if q.Limit > 0 {
		args = append(args, q.Limit)
		fmt.Fprintf(&b, " LIMIT $%d", len(args))
	}

	rows, err := p.db.QueryContext(ctx, b.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("docstore: query %s: %w", collection, err)
	}
	defer rows.Close()

	out := make([]Document, 0)
	for rows.Next() {
		var (
			doc     Document
			payload []byte
		)
		if err := rows.Scan(&doc.ID, &payload, &doc.CreatedAt); err != nil {
			return nil, fmt.Errorf("docstore: scan %s: %w", collection, err)
		}
		if err := json.Unmarshal(payload, &doc.Fields); err != nil {
			// A corrupt row must not hide the rest of the collection.
			p.log.Warn("docstore: skipping undecodable document", "collection", collection, "id", doc.ID, "err", err)
			continue
		}
		out = append(out, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("docstore: iterate %s: %w", collection, err)
	}
	return out, nil
}

func (p *Postgres) Subscribe(ctx context.Context, collection string, q Query) (*Subscription, error) {
	subCtx, cancel := context.WithCancel(ctx)

	pubsub := p.rdb.Subscribe(subCtx, changeChannelPrefix+collection)
	if _, err := pubsub.Receive(subCtx); err != nil {
		cancel()
		_ = pubsub.Close()
		return nil, fmt.Errorf("docstore: subscribe %s: %w", collection, err)
	}

	sub := newSubscription()
	sub.stop = func() {
		cancel()
		_ = pubsub.Close()
	}

	go p.deliver(subCtx, collection, q, sub, pubsub.Channel())
	return sub, nil
}

// deliver pushes the initial snapshot, then a fresh snapshot for every
// change notification. Query failures are surfaced through Err() while
// the subscription keeps serving its last delivered snapshot.
func (p *Postgres) deliver(ctx context.Context, collection string, q Query, sub *Subscription, changes <-chan *redis.Message) {
	refresh := func() {
		queryCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		docs, err := p.Documents(queryCtx, collection, q)
		cancel()
		if err != nil {
			sub.setErr(err)
			p.log.Warn("docstore subscription refresh failed", "collection", collection, "err", err)
			return
		}
		sub.setErr(nil)
		sub.publish(docs)
	}

	refresh()
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-changes:
			if !ok {
				sub.setErr(ErrClosed)
				return
			}
			refresh()
		}
	}
}
