package events

import (
	"fmt"

	"marketing-console/internal/docstore"
)

// Decode converts a raw document into a typed Event, validating the
// record shape at the store boundary. Aggregation code never touches
// raw field maps.
func Decode(doc docstore.Document) (Event, error) {
	e := Event{
		ID:        doc.ID,
		Kind:      Kind(stringField(doc.Fields, "kind")),
		Page:      stringField(doc.Fields, "page"),
		EventName: stringField(doc.Fields, "event_name"),
		SessionID: stringField(doc.Fields, "session_id"),
		Country:   stringField(doc.Fields, "country"),
		Language:  stringField(doc.Fields, "language"),
		Timestamp: doc.CreatedAt,
	}
	if vp, ok := doc.Fields["viewport"].(map[string]any); ok {
		w, wok := intField(vp, "width")
		h, hok := intField(vp, "height")
		if wok && hok && w > 0 && h > 0 {
			e.Viewport = &Viewport{Width: w, Height: h}
		}
	}
	if err := e.Validate(); err != nil {
		return Event{}, fmt.Errorf("document %s: %w", doc.ID, err)
	}
	return e, nil
}

// DecodeAll decodes a snapshot, silently skipping malformed documents.
// A bad record must never fail a whole aggregation pass.
func DecodeAll(docs []docstore.Document) []Event {
	out := make([]Event, 0, len(docs))
	for _, doc := range docs {
		e, err := Decode(doc)
		if err != nil {
			continue
		}
		out = append(out, e)
	}
	return out
}

func (e Event) fields() map[string]any {
	f := map[string]any{
		"kind":       string(e.Kind),
		"session_id": e.SessionID,
	}
	if e.Page != "" {
		f["page"] = e.Page
	}
	if e.EventName != "" {
		f["event_name"] = e.EventName
	}
	if e.Country != "" {
		f["country"] = e.Country
	}
	if e.Language != "" {
		f["language"] = e.Language
	}
	if e.Viewport != nil {
		f["viewport"] = map[string]any{
			"width":  e.Viewport.Width,
			"height": e.Viewport.Height,
		}
	}
	return f
}

func stringField(fields map[string]any, key string) string {
	if v, ok := fields[key].(string); ok {
		return v
	}
	return ""
}

// intField tolerates both json-decoded float64 and native int values.
func intField(fields map[string]any, key string) (int, bool) {
	switch v := fields[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	default:
		return 0, false
	}
}
