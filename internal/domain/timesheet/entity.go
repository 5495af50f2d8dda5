package timesheet

import "time"

type EventKind string

const (
	EventIn  EventKind = "IN"
	EventOut EventKind = "OUT"
)

func (k EventKind) Valid() bool {
	return k == EventIn || k == EventOut
}

// MediaRef points at an attachment held by external storage.
type MediaRef struct {
	FileName string
	MimeType string
	URL      string
}

// TimeEvent is one raw clock punch. Events are append-only.
type TimeEvent struct {
	ID         string
	EmployeeID string
	Timestamp  time.Time
	Kind       EventKind
	Remarks    string
	Media      []MediaRef
	CreatedAt  time.Time
}

// Session is an IN punch with the OUT that closed it, if any.
type Session struct {
	In  TimeEvent
	Out *TimeEvent
}

func (s Session) Open() bool {
	return s.Out == nil
}

// DaySessions are the sessions whose IN falls on Date (local calendar date).
type DaySessions struct {
	Date     time.Time
	Sessions []Session
}

// HasOpenSession reports whether any session is missing its OUT.
func (d DaySessions) HasOpenSession() bool {
	for _, s := range d.Sessions {
		if s.Open() {
			return true
		}
	}
	return false
}
