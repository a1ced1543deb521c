package analytics

import "time"

// All day-bucket math uses UTC. Window bounds are normalized to UTC
// midnights so that a window always spans whole calendar days.

const dayFormat = "2006-01-02"

// Window is an inclusive range of calendar days.
type Window struct {
	Start time.Time
	End   time.Time
}

// NewWindow normalizes start/end to the UTC midnight of their calendar
// day. If end precedes start, the window collapses to start's day.
func NewWindow(start, end time.Time) Window {
	s := dayStart(start)
	e := dayStart(end)
	if e.Before(s) {
		e = s
	}
	return Window{Start: s, End: e}
}

// LastNDays is the trailing window ending on now's day, n days long.
func LastNDays(now time.Time, n int) Window {
	if n < 1 {
		n = 1
	}
	end := dayStart(now)
	return Window{Start: end.AddDate(0, 0, -(n - 1)), End: end}
}

// Days is the inclusive day count; always at least 1.
func (w Window) Days() int {
	return int(w.End.Sub(w.Start).Hours()/24) + 1
}

// Contains reports whether t falls on one of the window's days.
func (w Window) Contains(t time.Time) bool {
	d := dayStart(t)
	return !d.Before(w.Start) && !d.After(w.End)
}

// Day returns the i-th day of the window.
func (w Window) Day(i int) time.Time {
	return w.Start.AddDate(0, 0, i)
}

// Label formats the window for export payloads, e.g.
// "2025-03-01 - 2025-03-07".
func (w Window) Label() string {
	return w.Start.Format(dayFormat) + " - " + w.End.Format(dayFormat)
}

func dayStart(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

func dayKey(t time.Time) string {
	return t.UTC().Format(dayFormat)
}
