package dashboard

import (
	"context"
	"time"

	"marketing-console/internal/analytics"
	"marketing-console/internal/docstore"
	"marketing-console/internal/submissions"
)

const recentSubmissionLimit = 10

// ExportPayload is the self-describing download of one dashboard state:
// every derived metric plus the most recent raw submissions.
type ExportPayload struct {
	Period      string `json:"period"`
	GeneratedAt string `json:"generated_at"`

	Metrics ExportMetrics `json:"metrics"`

	TimeSeries []analytics.DayBucket    `json:"time_series"`
	TopPages   []analytics.PageCount    `json:"top_pages"`
	Geography  []analytics.CountryCount `json:"geography"`
	Devices    []analytics.DeviceCount  `json:"devices"`

	RecentSubmissions RecentSubmissions `json:"recent_submissions"`
}

type ExportMetrics struct {
	TotalPageViews    int     `json:"total_page_views"`
	TotalCustomEvents int     `json:"total_custom_events"`
	TotalSubmissions  int     `json:"total_submissions"`
	UniqueVisitors    int     `json:"unique_visitors"`
	ConversionRate    float64 `json:"conversion_rate"`
}

type RecentSubmissions struct {
	Contacts  []submissions.Submission `json:"contacts"`
	Investors []submissions.Submission `json:"investors"`
}

// Export serializes the current snapshot together with the ten most
// recent submissions of each kind.
func (p *Projection) Export(ctx context.Context) (ExportPayload, error) {
	p.mu.Lock()
	snap := p.snapshot
	window := p.window
	now := p.clock()
	p.mu.Unlock()

	contacts, err := p.recent(ctx, submissions.ContactCollection, submissions.KindContact)
	if err != nil {
		return ExportPayload{}, err
	}
	investors, err := p.recent(ctx, submissions.InvestorCollection, submissions.KindInvestor)
	if err != nil {
		return ExportPayload{}, err
	}

	return ExportPayload{
		Period:      window.Label(),
		GeneratedAt: now.UTC().Format(time.RFC3339),
		Metrics: ExportMetrics{
			TotalPageViews:    snap.TotalPageViews,
			TotalCustomEvents: snap.TotalCustomEvents,
			TotalSubmissions:  snap.TotalSubmissions,
			UniqueVisitors:    snap.UniqueVisitors,
			ConversionRate:    snap.ConversionRate,
		},
		TimeSeries: snap.TimeSeries,
		TopPages:   snap.TopPages,
		Geography:  snap.Geography,
		Devices:    snap.Devices,
		RecentSubmissions: RecentSubmissions{
			Contacts:  contacts,
			Investors: investors,
		},
	}, nil
}

// ExportSubmissionsCSV renders the recent submissions of one kind as a
// flat CSV document.
func (p *Projection) ExportSubmissionsCSV(ctx context.Context, kind submissions.Kind) (string, error) {
	col := submissions.ContactCollection
	if kind == submissions.KindInvestor {
		col = submissions.InvestorCollection
	}
	subs, err := p.recent(ctx, col, kind)
	if err != nil {
		return "", err
	}
	return submissions.CSV(subs), nil
}

func (p *Projection) recent(ctx context.Context, collection string, kind submissions.Kind) ([]submissions.Submission, error) {
	docs, err := p.store.Documents(ctx, collection, docstore.Query{Limit: recentSubmissionLimit})
	if err != nil {
		return nil, err
	}
	return submissions.DecodeAll(kind, docs), nil
}
