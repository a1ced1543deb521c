package analytics

import (
	"math"
	"sort"

	"marketing-console/internal/events"
	"marketing-console/internal/submissions"
)

// Aggregate is a pure function: the same inputs always produce the
// same Snapshot, and a Snapshot is always recomputed wholesale so its
// parts stay mutually consistent. Records outside the window are
// ignored; records missing a field are excluded only from counts that
// need that field.

const (
	topPagesLimit  = 10
	geographyLimit = 8

	tabletMinWidth  = 768
	desktopMinWidth = 1024
)

// DayBucket is one calendar day of counts. Date is "2006-01-02" in UTC.
type DayBucket struct {
	Date         string `json:"date"`
	PageViews    int    `json:"page_views"`
	CustomEvents int    `json:"custom_events"`
	Submissions  int    `json:"submissions"`
}

type PageCount struct {
	Page  string `json:"page"`
	Views int    `json:"views"`
	Pct   int    `json:"pct"`
}

type CountryCount struct {
	Country string `json:"country"`
	Count   int    `json:"count"`
	Pct     int    `json:"pct"`
}

type DeviceCount struct {
	Class string `json:"class"`
	Count int    `json:"count"`
	Pct   int    `json:"pct"`
}

// Snapshot is the complete derived-metrics result of one aggregation
// pass. It is never partially updated.
type Snapshot struct {
	TimeSeries []DayBucket `json:"time_series"`

	TotalPageViews    int `json:"total_page_views"`
	TotalCustomEvents int `json:"total_custom_events"`
	TotalSubmissions  int `json:"total_submissions"`
	UniqueVisitors    int `json:"unique_visitors"`

	TopPages  []PageCount    `json:"top_pages"`
	Geography []CountryCount `json:"geography"`
	Devices   []DeviceCount  `json:"devices"`

	// ConversionRate is submissions per page view, as a percentage
	// rounded to two decimals. Zero when there are no page views.
	ConversionRate float64 `json:"conversion_rate"`
}

func Aggregate(evs []events.Event, subs []submissions.Submission, w Window) Snapshot {
	snap := Snapshot{}

	byDay := map[string]*DayBucket{}
	series := make([]DayBucket, w.Days())
	for i := range series {
		series[i] = DayBucket{Date: dayKey(w.Day(i))}
		byDay[series[i].Date] = &series[i]
	}

	pageViews := map[string]int{}
	pageOrder := make([]string, 0)
	sessions := map[string]struct{}{}
	devices := map[string]int{}

	for _, e := range evs {
		if !w.Contains(e.Timestamp) {
			continue
		}
		bucket := byDay[dayKey(e.Timestamp)]

		switch e.Kind {
		case events.KindPageView:
			bucket.PageViews++
			snap.TotalPageViews++
			if e.SessionID != "" {
				sessions[e.SessionID] = struct{}{}
			}
			if e.Page != "" {
				if _, seen := pageViews[e.Page]; !seen {
					pageOrder = append(pageOrder, e.Page)
				}
				pageViews[e.Page]++
			}
		case events.KindCustomEvent:
			bucket.CustomEvents++
			snap.TotalCustomEvents++
		}

		if e.Viewport != nil {
			devices[classifyViewport(e.Viewport.Width)]++
		}
	}

	countries := map[string]int{}
	countryOrder := make([]string, 0)
	for _, s := range subs {
		if !w.Contains(s.CreatedAt) {
			continue
		}
		byDay[dayKey(s.CreatedAt)].Submissions++
		snap.TotalSubmissions++

		country := s.Country
		if country == "" {
			country = "Unknown"
		}
		if _, seen := countries[country]; !seen {
			countryOrder = append(countryOrder, country)
		}
		countries[country]++
	}

	snap.TimeSeries = series
	snap.UniqueVisitors = len(sessions)
	snap.TopPages = rankPages(pageViews, pageOrder, snap.TotalPageViews)
	snap.Geography = rankCountries(countries, countryOrder, snap.TotalSubmissions)
	snap.Devices = rankDevices(devices)
	snap.ConversionRate = conversionRate(snap.TotalSubmissions, snap.TotalPageViews)
	return snap
}

// classifyViewport maps a viewport width to a device class.
// Boundaries: <768 mobile, 768..1023 tablet, >=1024 desktop.
func classifyViewport(width int) string {
	switch {
	case width < tabletMinWidth:
		return "mobile"
	case width < desktopMinWidth:
		return "tablet"
	default:
		return "desktop"
	}
}

// rankPages sorts by views descending with a stable first-seen
// tiebreak, keeps the top 10 and expresses integer shares of total.
func rankPages(views map[string]int, order []string, total int) []PageCount {
	out := make([]PageCount, 0, len(order))
	for _, page := range order {
		out = append(out, PageCount{Page: page, Views: views[page]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Views > out[j].Views })
	if len(out) > topPagesLimit {
		out = out[:topPagesLimit]
	}
	for i := range out {
		out[i].Pct = sharePct(out[i].Views, total)
	}
	return out
}

func rankCountries(counts map[string]int, order []string, total int) []CountryCount {
	out := make([]CountryCount, 0, len(order))
	for _, country := range order {
		out = append(out, CountryCount{Country: country, Count: counts[country]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	if len(out) > geographyLimit {
		out = out[:geographyLimit]
	}
	for i := range out {
		out[i].Pct = sharePct(out[i].Count, total)
	}
	return out
}

// rankDevices keeps a fixed class order; shares are relative to the
// classified record count, not all records.
func rankDevices(counts map[string]int) []DeviceCount {
	classified := counts["mobile"] + counts["tablet"] + counts["desktop"]
	out := make([]DeviceCount, 0, 3)
	for _, class := range []string{"mobile", "tablet", "desktop"} {
		out = append(out, DeviceCount{
			Class: class,
			Count: counts[class],
			Pct:   sharePct(counts[class], classified),
		})
	}
	return out
}

// sharePct is a whole-number percentage; zero denominator yields zero.
func sharePct(count, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(count) / float64(total) * 100))
}

// conversionRate is a two-decimal percentage; zero page views yields zero.
func conversionRate(submissionCount, pageViewCount int) float64 {
	if pageViewCount == 0 {
		return 0
	}
	rate := float64(submissionCount) / float64(pageViewCount) * 100
	return math.Round(rate*100) / 100
}
