package timesheet

import (
	"context"

	"github.com/cmlabs-hris/hris-timesheet-go/internal/pkg/period"
)

type TimesheetService interface {
	RecordEvent(ctx context.Context, req RecordEventRequest) (TimeEvent, error)
	ListTimeEvents(ctx context.Context, employeeID string, r period.Range) ([]TimeEvent, error)
	// Sessions pairs events of the range in the employee's schedule timezone.
	Sessions(ctx context.Context, employeeID string, r period.Range) ([]DaySessions, error)
}
