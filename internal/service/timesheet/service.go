package timesheet

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-timesheet-go/internal/domain/schedule"
	"github.com/cmlabs-hris/hris-timesheet-go/internal/domain/timesheet"
	"github.com/cmlabs-hris/hris-timesheet-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-timesheet-go/internal/pkg/period"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type TimesheetServiceImpl struct {
	tx database.Transactor
	timesheet.TimeEventRepository
	schedule.ScheduleRepository
	now func() time.Time
}

func NewTimesheetService(tx database.Transactor, eventRepo timesheet.TimeEventRepository, scheduleRepo schedule.ScheduleRepository, now func() time.Time) timesheet.TimesheetService {
	if now == nil {
		now = time.Now
	}
	return &TimesheetServiceImpl{
		tx:                  tx,
		TimeEventRepository: eventRepo,
		ScheduleRepository:  scheduleRepo,
		now:                 now,
	}
}

// RecordEvent implements timesheet.TimesheetService.
func (s *TimesheetServiceImpl) RecordEvent(ctx context.Context, req timesheet.RecordEventRequest) (timesheet.TimeEvent, error) {
	now := s.now()
	ts, err := req.Validate(now)
	if err != nil {
		return timesheet.TimeEvent{}, err
	}
	kind := timesheet.EventKind(req.Kind)

	id, err := uuid.NewV7()
	if err != nil {
		return timesheet.TimeEvent{}, fmt.Errorf("failed to generate event id: %w", err)
	}

	ev := timesheet.TimeEvent{
		ID:         id.String(),
		EmployeeID: req.EmployeeID,
		Timestamp:  ts.UTC(),
		Kind:       kind,
		Remarks:    req.Remarks,
		CreatedAt:  now,
	}
	for _, m := range req.Media {
		ev.Media = append(ev.Media, timesheet.MediaRef{FileName: m.FileName, MimeType: m.MimeType, URL: m.URL})
	}

	// The IN/OUT check and the insert run under one per-employee lock.
	err = s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		if err := s.TimeEventRepository.LockEmployee(txCtx, req.EmployeeID); err != nil {
			return err
		}

		latest, err := s.TimeEventRepository.Latest(txCtx, req.EmployeeID)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("failed to get latest event: %w", err)
		}
		if errors.Is(err, pgx.ErrNoRows) {
			latest = nil
		}

		if latest != nil && ts.Before(latest.Timestamp) {
			return timesheet.ErrOutOfOrder
		}
		clockedIn := latest != nil && latest.Kind == timesheet.EventIn
		if kind == timesheet.EventIn && clockedIn {
			return timesheet.ErrAlreadyClockedIn
		}
		if kind == timesheet.EventOut && !clockedIn {
			return timesheet.ErrNotClockedIn
		}

		if err := s.TimeEventRepository.Create(txCtx, &ev); err != nil {
			return fmt.Errorf("failed to record event: %w", err)
		}
		return nil
	})
	if err != nil {
		return timesheet.TimeEvent{}, err
	}

	slog.Info("time event recorded",
		"employee_id", ev.EmployeeID,
		"kind", ev.Kind,
		"timestamp", ev.Timestamp)

	return ev, nil
}

// ListTimeEvents implements timesheet.TimesheetService.
func (s *TimesheetServiceImpl) ListTimeEvents(ctx context.Context, employeeID string, r period.Range) ([]timesheet.TimeEvent, error) {
	loc, err := s.location(ctx, employeeID)
	if err != nil {
		return nil, err
	}

	from, to := r.Bounds(loc)
	events, err := s.TimeEventRepository.ListByEmployee(ctx, employeeID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list time events: %w", err)
	}
	return events, nil
}

// Sessions implements timesheet.TimesheetService. The fetch window is padded so sessions
// crossing midnight at either edge pair with their partner event.
func (s *TimesheetServiceImpl) Sessions(ctx context.Context, employeeID string, r period.Range) ([]timesheet.DaySessions, error) {
	loc, err := s.location(ctx, employeeID)
	if err != nil {
		return nil, err
	}

	from, to := r.Bounds(loc)
	events, err := s.TimeEventRepository.ListByEmployee(ctx, employeeID, from.AddDate(0, 0, -1), to.AddDate(0, 0, 1))
	if err != nil {
		return nil, fmt.Errorf("failed to list time events: %w", err)
	}

	all := timesheet.PairSessions(events, loc)
	days := make([]timesheet.DaySessions, 0, len(all))
	for _, d := range all {
		if r.Contains(d.Date) {
			days = append(days, d)
		}
	}
	return days, nil
}

// location falls back to UTC for employees without a schedule.
func (s *TimesheetServiceImpl) location(ctx context.Context, employeeID string) (*time.Location, error) {
	sched, err := s.ScheduleRepository.GetByEmployeeID(ctx, employeeID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return time.UTC, nil
		}
		return nil, fmt.Errorf("failed to get schedule: %w", err)
	}
	return sched.Location(), nil
}
