package schedule

import (
	"fmt"
	"sort"
	"time"
	_ "time/tzdata"
)

// TimeOfDay is a wall-clock time stored as minutes after midnight.
type TimeOfDay int

const MinutesPerDay = 24 * 60

// ParseTimeOfDay parses "HH:MM".
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("invalid time of day %q: %w", s, err)
	}
	return TimeOfDay(t.Hour()*60 + t.Minute()), nil
}

// MustTimeOfDay is ParseTimeOfDay for literals.
func MustTimeOfDay(s string) TimeOfDay {
	t, err := ParseTimeOfDay(s)
	if err != nil {
		panic(err)
	}
	return t
}

func (t TimeOfDay) Minutes() int { return int(t) }

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

// DayOfWeek follows ISO numbering: 1=Monday ... 7=Sunday.
type DayOfWeek int

const (
	Monday DayOfWeek = iota + 1
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

func DayOfWeekFrom(w time.Weekday) DayOfWeek {
	if w == time.Sunday {
		return 7
	}
	return DayOfWeek(w)
}

func (d DayOfWeek) Weekday() time.Weekday {
	return time.Weekday(int(d) % 7)
}

func (d DayOfWeek) Valid() bool {
	return d >= 1 && d <= 7
}

// WorkWindow is the expected working span of one weekday with its break.
type WorkWindow struct {
	DayOfWeek DayOfWeek
	From      TimeOfDay
	To        TimeOfDay
	BreakFrom TimeOfDay
	BreakTo   TimeOfDay
}

// Validate enforces from < breakFrom <= breakTo < to.
func (w WorkWindow) Validate() error {
	if !w.DayOfWeek.Valid() {
		return fmt.Errorf("%w: day_of_week %d out of range", ErrInvalidWindow, w.DayOfWeek)
	}
	if !(w.From < w.BreakFrom && w.BreakFrom <= w.BreakTo && w.BreakTo < w.To) {
		return fmt.Errorf("%w: %s-%s with break %s-%s", ErrInvalidWindow, w.From, w.To, w.BreakFrom, w.BreakTo)
	}
	return nil
}

// ShiftMinutes is to - from.
func (w WorkWindow) ShiftMinutes() int {
	return int(w.To - w.From)
}

type Schedule struct {
	ID        string
	Name      string
	Timezone  string
	Windows   map[DayOfWeek]WorkWindow
	CreatedAt time.Time
	UpdatedAt time.Time
}

// WindowFor returns the window configured for the weekday of date. ok=false means a rest day.
func (s *Schedule) WindowFor(date time.Time) (WorkWindow, bool) {
	if s == nil || s.Windows == nil {
		return WorkWindow{}, false
	}
	w, ok := s.Windows[DayOfWeekFrom(date.Weekday())]
	return w, ok
}

// Location resolves Timezone, falling back to UTC.
func (s *Schedule) Location() *time.Location {
	if s == nil || s.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// OrderedWindows lists windows Monday first.
func (s *Schedule) OrderedWindows() []WorkWindow {
	out := make([]WorkWindow, 0, len(s.Windows))
	for _, w := range s.Windows {
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DayOfWeek < out[j].DayOfWeek })
	return out
}
