package attendance

import "errors"

var (
	ErrIncompleteDay = errors.New("day has a session without a clock-out")
	ErrInvalidDate   = errors.New("invalid attendance date")
)
