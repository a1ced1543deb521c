package submissions

import (
	"strings"
	"time"
)

// CSV rendering for flat submission-record exports.
//
// Format contract: one row per record, fields comma-joined, string
// fields double-quote-escaped, with embedded newlines and commas
// stripped from values before quoting. encoding/csv is deliberately
// not used; it would preserve the characters this format strips.

var csvHeader = []string{
	"id", "kind", "name", "email", "company", "message",
	"country", "firm", "investment_range", "status", "priority", "created_at",
}

// CSV renders subs as a flat CSV document including a header row.
func CSV(subs []Submission) string {
	var b strings.Builder
	writeRow(&b, csvHeader)
	for _, s := range subs {
		writeRow(&b, []string{
			s.ID,
			string(s.Kind),
			s.Name,
			s.Email,
			s.Company,
			s.Message,
			s.Country,
			s.Firm,
			s.InvestmentRange,
			s.Status,
			s.Priority,
			s.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return b.String()
}

func writeRow(b *strings.Builder, fields []string) {
	for i, f := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(csvField(f))
	}
	b.WriteByte('\n')
}

func csvField(v string) string {
	v = strings.NewReplacer("\r", "", "\n", "", ",", "").Replace(v)
	v = strings.ReplaceAll(v, `"`, `""`)
	return `"` + v + `"`
}
