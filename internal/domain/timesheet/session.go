package timesheet

import (
	"sort"
	"time"

	"github.com/cmlabs-hris/hris-timesheet-go/internal/pkg/period"
)

// PairSessions rebuilds sessions from a flat event log.
//
// Events are walked in timestamp order. An IN opens a session dated by the IN's local date in loc.
// The next OUT closes the most recent open session, even when it lands after midnight. An IN that
// arrives while a session is open leaves that session open and starts a new one. An OUT with no
// open session is ignored.
func PairSessions(events []TimeEvent, loc *time.Location) []DaySessions {
	sorted := make([]TimeEvent, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Timestamp.Equal(sorted[j].Timestamp) {
			return sorted[i].Kind == EventIn && sorted[j].Kind == EventOut
		}
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	var days []DaySessions
	index := make(map[time.Time]int)
	var open *Session

	for i := range sorted {
		ev := sorted[i]
		switch ev.Kind {
		case EventIn:
			date := period.Date(ev.Timestamp, loc)
			pos, ok := index[date]
			if !ok {
				days = append(days, DaySessions{Date: date})
				pos = len(days) - 1
				index[date] = pos
			}
			days[pos].Sessions = append(days[pos].Sessions, Session{In: ev})
			open = &days[pos].Sessions[len(days[pos].Sessions)-1]
		case EventOut:
			if open == nil {
				continue
			}
			out := ev
			open.Out = &out
			open = nil
		}
	}

	return days
}

// Find returns the sessions for date, or an empty DaySessions.
func Find(days []DaySessions, date time.Time) DaySessions {
	for _, d := range days {
		if d.Date.Equal(date) {
			return d
		}
	}
	return DaySessions{Date: date}
}
