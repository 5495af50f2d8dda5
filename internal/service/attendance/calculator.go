package attendance

import (
	"time"

	"github.com/cmlabs-hris/hris-timesheet-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-timesheet-go/internal/domain/schedule"
	"github.com/cmlabs-hris/hris-timesheet-go/internal/domain/timesheet"
	"github.com/cmlabs-hris/hris-timesheet-go/internal/pkg/period"
)

// Calculator derives attendance metrics for one employee-day. It holds no state and is safe for
// concurrent use.
type Calculator struct{}

func NewCalculator() *Calculator {
	return &Calculator{}
}

// ComputeDay evaluates sessions against the schedule window of date.
//
// A day with an open session is returned with StatusIncomplete, a nil UndertimeMinutes and
// ErrIncompleteDay so callers can still show the partial metrics.
func (c *Calculator) ComputeDay(
	employeeID string,
	sched *schedule.Schedule,
	date time.Time,
	sessions []timesheet.Session,
	overtime *attendance.OvertimeClaim,
) (attendance.AttendanceDay, error) {
	date = period.Date(date, time.UTC)
	day := attendance.AttendanceDay{
		EmployeeID:   employeeID,
		Date:         date,
		SessionCount: len(sessions),
	}
	applyOvertime(&day, overtime)

	window, ok := sched.WindowFor(date)
	if !ok {
		zero := 0
		day.UndertimeMinutes = &zero
		day.Status = attendance.StatusNonWorkingDay
		return day, nil
	}

	if len(sessions) == 0 {
		zero := 0
		day.UndertimeMinutes = &zero
		day.Status = attendance.StatusAbsent
		return day, nil
	}

	midnight := period.Midnight(date, sched.Location())
	first := sessions[0]
	firstIn := first.In.Timestamp
	day.FirstIn = &firstIn

	day.LateMinutes = lateMinutes(window, minutesSince(midnight, firstIn))

	incomplete := false
	var lastOut *time.Time
	for _, s := range sessions {
		if s.Open() {
			incomplete = true
			continue
		}
		in := minutesSince(midnight, s.In.Timestamp)
		out := minutesSince(midnight, s.Out.Timestamp)
		day.TrackedMinutes += trackedMinutes(window, in, out)
		if lastOut == nil || s.Out.Timestamp.After(*lastOut) {
			ts := s.Out.Timestamp
			lastOut = &ts
		}
	}
	day.LastOut = lastOut

	if incomplete {
		day.Status = attendance.StatusIncomplete
		return day, attendance.ErrIncompleteDay
	}

	undertime := max(0, window.To.Minutes()-minutesSince(midnight, *lastOut))
	day.UndertimeMinutes = &undertime
	day.Status = statusFor(day.LateMinutes, undertime)

	return day, nil
}

func applyOvertime(day *attendance.AttendanceDay, claim *attendance.OvertimeClaim) {
	if claim == nil {
		return
	}
	day.OvertimeRequestedMinutes = claim.RequestedMinutes
	if !claim.Decided {
		return
	}
	approved := claim.ApprovedMinutes
	day.OvertimeApprovedMinutes = &approved
}

// lateMinutes clamps a clock-in after the end of the shift to the whole shift.
func lateMinutes(w schedule.WorkWindow, firstIn int) int {
	if firstIn >= w.To.Minutes() {
		return w.ShiftMinutes()
	}
	return max(0, firstIn-w.From.Minutes())
}

// trackedMinutes is the session length minus its own overlap with the break.
func trackedMinutes(w schedule.WorkWindow, in, out int) int {
	if out <= in {
		return 0
	}
	overlap := min(out, w.BreakTo.Minutes()) - max(in, w.BreakFrom.Minutes())
	return out - in - max(0, overlap)
}

func statusFor(late, undertime int) attendance.Status {
	switch {
	case late > 0 && undertime > 0:
		return attendance.StatusLateUndertime
	case late > 0:
		return attendance.StatusLate
	case undertime > 0:
		return attendance.StatusUndertime
	default:
		return attendance.StatusPresent
	}
}

// minutesSince floors the offset of t from midnight. Times after the following midnight exceed 1440.
func minutesSince(midnight, t time.Time) int {
	return int(t.Sub(midnight) / time.Minute)
}
