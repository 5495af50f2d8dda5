package timesheet

import (
	"context"
	"time"
)

type TimeEventRepository interface {
	Create(ctx context.Context, ev *TimeEvent) error
	// ListByEmployee returns events with from <= timestamp < to, ordered by timestamp.
	ListByEmployee(ctx context.Context, employeeID string, from, to time.Time) ([]TimeEvent, error)
	Latest(ctx context.Context, employeeID string) (*TimeEvent, error)
	// LockEmployee serializes writers for one employee until the surrounding transaction ends.
	LockEmployee(ctx context.Context, employeeID string) error
}
