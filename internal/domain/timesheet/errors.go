package timesheet

import "errors"

var (
	ErrAlreadyClockedIn = errors.New("employee already has an open session")
	ErrNotClockedIn     = errors.New("employee has no open session to clock out of")
	ErrOutOfOrder       = errors.New("event timestamp precedes the previous event")
)
