package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-timesheet-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-timesheet-go/internal/domain/schedule"
	"github.com/cmlabs-hris/hris-timesheet-go/internal/domain/timesheet"
	"github.com/cmlabs-hris/hris-timesheet-go/internal/pkg/period"
	"github.com/jackc/pgx/v5"
)

type AttendanceServiceImpl struct {
	schedule.ScheduleRepository
	timesheetService timesheet.TimesheetService
	requests         attendance.RequestSource
	calculator       *Calculator
}

func NewAttendanceService(
	scheduleRepo schedule.ScheduleRepository,
	timesheetService timesheet.TimesheetService,
	requests attendance.RequestSource,
	calculator *Calculator,
) attendance.AttendanceService {
	return &AttendanceServiceImpl{
		ScheduleRepository: scheduleRepo,
		timesheetService:   timesheetService,
		requests:           requests,
		calculator:         calculator,
	}
}

// GetDay implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) GetDay(ctx context.Context, employeeID string, date time.Time) (attendance.AttendanceDay, error) {
	r, err := period.NewRange(date, date)
	if err != nil {
		return attendance.AttendanceDay{}, attendance.ErrInvalidDate
	}

	results, err := a.ListDays(ctx, employeeID, r)
	if err != nil {
		return attendance.AttendanceDay{}, err
	}
	if len(results) != 1 {
		return attendance.AttendanceDay{}, fmt.Errorf("expected one day for %s, got %d", r, len(results))
	}
	return results[0].Day, results[0].Err
}

// ListDays implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) ListDays(ctx context.Context, employeeID string, r period.Range) ([]attendance.DayResult, error) {
	sched, err := a.ScheduleRepository.GetByEmployeeID(ctx, employeeID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, schedule.ErrNoScheduleAssigned
		}
		return nil, fmt.Errorf("failed to get schedule: %w", err)
	}

	days, err := a.timesheetService.Sessions(ctx, employeeID, r)
	if err != nil {
		return nil, fmt.Errorf("failed to load sessions: %w", err)
	}

	claims, err := a.requests.OvertimeClaims(ctx, employeeID, r)
	if err != nil {
		return nil, fmt.Errorf("failed to load overtime claims: %w", err)
	}

	excused, err := a.requests.ApprovedAbsenceDays(ctx, employeeID, r)
	if err != nil {
		return nil, fmt.Errorf("failed to load approved absences: %w", err)
	}

	results := make([]attendance.DayResult, 0, r.Len())
	for _, date := range r.Days() {
		var claim *attendance.OvertimeClaim
		if c, ok := claims[date]; ok {
			claim = &c
		}

		day, dayErr := a.calculator.ComputeDay(employeeID, sched, date, timesheet.Find(days, date).Sessions, claim)
		if dayErr != nil && !errors.Is(dayErr, attendance.ErrIncompleteDay) {
			slog.Warn("attendance day computation failed",
				"employee_id", employeeID,
				"date", date.Format(period.DateLayout),
				"error", dayErr)
		}
		if day.Status == attendance.StatusAbsent && excused[date] {
			day.Status = attendance.StatusOnLeave
		}
		results = append(results, attendance.DayResult{Day: day, Err: dayErr})
	}

	return results, nil
}
