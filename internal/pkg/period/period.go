// Package period holds calendar-date helpers shared by the timesheet, attendance and report packages.
// Dates are civil dates carried as time.Time at 00:00 UTC; callers anchor them in a schedule's
// location when wall-clock arithmetic is needed.
package period

import (
	"fmt"
	"time"
)

const DateLayout = "2006-01-02"

// Date truncates t to its calendar date as seen in loc.
func Date(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	l := t.In(loc)
	return time.Date(l.Year(), l.Month(), l.Day(), 0, 0, 0, 0, time.UTC)
}

// Midnight returns the start of the civil date d in loc.
func Midnight(d time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc)
}

// Range is an inclusive span of calendar dates.
type Range struct {
	Start time.Time
	End   time.Time
}

// NewRange normalises both bounds to dates and rejects End before Start.
func NewRange(start, end time.Time) (Range, error) {
	r := Range{Start: Date(start, time.UTC), End: Date(end, time.UTC)}
	if r.End.Before(r.Start) {
		return Range{}, fmt.Errorf("end date %s is before start date %s", r.End.Format(DateLayout), r.Start.Format(DateLayout))
	}
	return r, nil
}

// Parse builds a Range from two YYYY-MM-DD strings.
func Parse(start, end string) (Range, error) {
	s, err := time.Parse(DateLayout, start)
	if err != nil {
		return Range{}, fmt.Errorf("invalid start date: %w", err)
	}
	e, err := time.Parse(DateLayout, end)
	if err != nil {
		return Range{}, fmt.Errorf("invalid end date: %w", err)
	}
	return NewRange(s, e)
}

// Month covers every day of the month containing t.
func Month(t time.Time) Range {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	return Range{Start: first, End: first.AddDate(0, 1, -1)}
}

// HalfMonth returns the 1-15 cut-off when firstHalf is set, otherwise 16 to month end.
func HalfMonth(t time.Time, firstHalf bool) Range {
	m := Month(t)
	if firstHalf {
		return Range{Start: m.Start, End: m.Start.AddDate(0, 0, 14)}
	}
	return Range{Start: m.Start.AddDate(0, 0, 15), End: m.End}
}

// Days lists every date in the range in order.
func (r Range) Days() []time.Time {
	var days []time.Time
	for d := r.Start; !d.After(r.End); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// Len is the number of days in the range.
func (r Range) Len() int {
	return int(r.End.Sub(r.Start).Hours()/24) + 1
}

func (r Range) Contains(d time.Time) bool {
	d = Date(d, time.UTC)
	return !d.Before(r.Start) && !d.After(r.End)
}

// Overlaps reports whether the two ranges share at least one day.
func (r Range) Overlaps(o Range) bool {
	return !r.End.Before(o.Start) && !o.End.Before(r.Start)
}

// Intersect returns the shared days, ok=false when the ranges are disjoint.
func (r Range) Intersect(o Range) (Range, bool) {
	if !r.Overlaps(o) {
		return Range{}, false
	}
	out := r
	if o.Start.After(out.Start) {
		out.Start = o.Start
	}
	if o.End.Before(out.End) {
		out.End = o.End
	}
	return out, true
}

// Bounds returns [start, end) instants of the range anchored in loc.
func (r Range) Bounds(loc *time.Location) (time.Time, time.Time) {
	return Midnight(r.Start, loc), Midnight(r.End.AddDate(0, 0, 1), loc)
}

func (r Range) String() string {
	return r.Start.Format(DateLayout) + ".." + r.End.Format(DateLayout)
}
