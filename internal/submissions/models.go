package submissions

import (
	"errors"
	"time"
)

// Docstore collections holding lead-capture submissions.
const (
	ContactCollection  = "contact_submissions"
	InvestorCollection = "investor_submissions"
)

type Kind string

const (
	KindContact  Kind = "contact"
	KindInvestor Kind = "investor"
)

var ErrInvalidRecord = errors.New("submissions: invalid record")

// Submission is one completed lead-capture form.
//
// Invariants:
// - CreatedAt is store-assigned once and never changes.
// - Status and Priority are operator-administrative and irrelevant to
//   aggregation; only CreatedAt and Country feed derived metrics.
type Submission struct {
	ID      string `json:"id"`
	Kind    Kind   `json:"kind"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Company string `json:"company,omitempty"`
	Message string `json:"message,omitempty"`
	Country string `json:"country,omitempty"`

	// Investor-only fields.
	Firm            string `json:"firm,omitempty"`
	InvestmentRange string `json:"investment_range,omitempty"`

	Status    string    `json:"status"`
	Priority  string    `json:"priority"`
	CreatedAt time.Time `json:"created_at"`
}

func (s Submission) Validate() error {
	if s.Kind != KindContact && s.Kind != KindInvestor {
		return ErrInvalidRecord
	}
	if s.Name == "" || s.Email == "" {
		return ErrInvalidRecord
	}
	return nil
}
