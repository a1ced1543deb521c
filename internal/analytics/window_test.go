package analytics

import (
	"testing"
	"time"
)

func TestNewWindow_NormalizesToDayBounds(t *testing.T) {
	start := time.Date(2025, 3, 1, 17, 30, 0, 0, time.UTC)
	end := time.Date(2025, 3, 3, 2, 15, 0, 0, time.UTC)
	w := NewWindow(start, end)

	if w.Start != time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC) {
		t.Fatalf("start not normalized: %v", w.Start)
	}
	if w.End != time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC) {
		t.Fatalf("end not normalized: %v", w.End)
	}
	if w.Days() != 3 {
		t.Fatalf("expected 3 days, got %d", w.Days())
	}
}

func TestNewWindow_InvertedRangeCollapses(t *testing.T) {
	a := time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC)
	w := NewWindow(a, a.AddDate(0, 0, -2))
	if w.Days() != 1 {
		t.Fatalf("expected collapsed single-day window, got %d days", w.Days())
	}
}

func TestLastNDays(t *testing.T) {
	now := time.Date(2025, 3, 7, 9, 0, 0, 0, time.UTC)
	w := LastNDays(now, 7)
	if w.Days() != 7 {
		t.Fatalf("expected 7 days, got %d", w.Days())
	}
	if w.End != time.Date(2025, 3, 7, 0, 0, 0, 0, time.UTC) {
		t.Fatalf("expected window to end today, got %v", w.End)
	}
	if w.Start != time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC) {
		t.Fatalf("unexpected start %v", w.Start)
	}
}

func TestContains_EdgesInclusive(t *testing.T) {
	w := NewWindow(
		time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 3, 7, 0, 0, 0, 0, time.UTC),
	)
	if !w.Contains(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("first midnight should be inside")
	}
	if !w.Contains(time.Date(2025, 3, 7, 23, 59, 59, 0, time.UTC)) {
		t.Fatalf("last day's final second should be inside")
	}
	if w.Contains(time.Date(2025, 3, 8, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("day after window should be outside")
	}
	if w.Contains(time.Date(2025, 2, 28, 23, 59, 59, 0, time.UTC)) {
		t.Fatalf("day before window should be outside")
	}
}

func TestWindow_Label(t *testing.T) {
	w := NewWindow(
		time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 3, 7, 0, 0, 0, 0, time.UTC),
	)
	if w.Label() != "2025-03-01 - 2025-03-07" {
		t.Fatalf("unexpected label %q", w.Label())
	}
}
