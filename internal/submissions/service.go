package submissions

import (
	"context"
	"errors"
	"fmt"

	"marketing-console/internal/docstore"
)

// Service is the producer and read side for lead-capture submissions.
type Service struct {
	store docstore.Store
}

func NewService(store docstore.Store) *Service {
	return &Service{store: store}
}

func collectionFor(kind Kind) (string, error) {
	switch kind {
	case KindContact:
		return ContactCollection, nil
	case KindInvestor:
		return InvestorCollection, nil
	default:
		return "", fmt.Errorf("%w: unknown kind %q", ErrInvalidRecord, kind)
	}
}

// Submit validates and appends a submission. New submissions always
// start as status "new", priority "medium"; operators triage later.
func (s *Service) Submit(ctx context.Context, sub Submission) (Submission, error) {
	if s.store == nil {
		return Submission{}, errors.New("submissions: store not configured")
	}
	if err := sub.Validate(); err != nil {
		return Submission{}, err
	}
	col, err := collectionFor(sub.Kind)
	if err != nil {
		return Submission{}, err
	}

	sub.Status = "new"
	sub.Priority = "medium"

	doc, err := s.store.Append(ctx, col, sub.fields())
	if err != nil {
		return Submission{}, err
	}
	sub.ID = doc.ID
	sub.CreatedAt = doc.CreatedAt
	return sub, nil
}

// Recent returns the n most recent submissions of one kind, newest first.
func (s *Service) Recent(ctx context.Context, kind Kind, n int) ([]Submission, error) {
	if s.store == nil {
		return nil, errors.New("submissions: store not configured")
	}
	col, err := collectionFor(kind)
	if err != nil {
		return nil, err
	}
	docs, err := s.store.Documents(ctx, col, docstore.Query{Limit: n})
	if err != nil {
		return nil, err
	}
	return DecodeAll(kind, docs), nil
}

func (sub Submission) fields() map[string]any {
	f := map[string]any{
		"name":     sub.Name,
		"email":    sub.Email,
		"status":   sub.Status,
		"priority": sub.Priority,
	}
	if sub.Company != "" {
		f["company"] = sub.Company
	}
	if sub.Message != "" {
		f["message"] = sub.Message
	}
	if sub.Country != "" {
		f["country"] = sub.Country
	}
	if sub.Firm != "" {
		f["firm"] = sub.Firm
	}
	if sub.InvestmentRange != "" {
		f["investment_range"] = sub.InvestmentRange
	}
	return f
}

// Decode converts a raw document into a typed Submission.
func Decode(kind Kind, doc docstore.Document) (Submission, error) {
	sub := Submission{
		ID:              doc.ID,
		Kind:            kind,
		Name:            stringField(doc.Fields, "name"),
		Email:           stringField(doc.Fields, "email"),
		Company:         stringField(doc.Fields, "company"),
		Message:         stringField(doc.Fields, "message"),
		Country:         stringField(doc.Fields, "country"),
		Firm:            stringField(doc.Fields, "firm"),
		InvestmentRange: stringField(doc.Fields, "investment_range"),
		Status:          stringField(doc.Fields, "status"),
		Priority:        stringField(doc.Fields, "priority"),
		CreatedAt:       doc.CreatedAt,
	}
	if err := sub.Validate(); err != nil {
		return Submission{}, fmt.Errorf("document %s: %w", doc.ID, err)
	}
	return sub, nil
}

// DecodeAll decodes a snapshot, skipping malformed documents.
func DecodeAll(kind Kind, docs []docstore.Document) []Submission {
	out := make([]Submission, 0, len(docs))
	for _, doc := range docs {
		sub, err := Decode(kind, doc)
		if err != nil {
			continue
		}
		out = append(out, sub)
	}
	return out
}

func stringField(fields map[string]any, key string) string {
	if v, ok := fields[key].(string); ok {
		return v
	}
	return ""
}
