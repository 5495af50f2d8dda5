package schedule

import "errors"

var (
	ErrScheduleNotFound   = errors.New("schedule not found")
	ErrNoScheduleAssigned = errors.New("employee has no schedule assigned")
	ErrInvalidWindow      = errors.New("invalid work window")
	ErrInvalidTimezone    = errors.New("invalid timezone")
	ErrWindowNotFound     = errors.New("work window not found")
)
