package attendance

import (
	"context"
	"time"

	"github.com/cmlabs-hris/hris-timesheet-go/internal/pkg/period"
)

// RequestSource exposes the request data the calculator depends on.
type RequestSource interface {
	OvertimeClaims(ctx context.Context, employeeID string, r period.Range) (map[time.Time]OvertimeClaim, error)
	// ApprovedAbsenceDays are dates excused by an approved leave or offset.
	ApprovedAbsenceDays(ctx context.Context, employeeID string, r period.Range) (map[time.Time]bool, error)
}

type AttendanceService interface {
	GetDay(ctx context.Context, employeeID string, date time.Time) (AttendanceDay, error)
	// ListDays computes every day of r; a failing day is reported on its own row.
	ListDays(ctx context.Context, employeeID string, r period.Range) ([]DayResult, error)
}

// DayResult carries a computed day or the reason it could not be computed.
type DayResult struct {
	Day AttendanceDay
	Err error
}
