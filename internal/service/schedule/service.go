package schedule

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-timesheet-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-timesheet-go/internal/domain/schedule"
	"github.com/cmlabs-hris/hris-timesheet-go/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type scheduleServiceImpl struct {
	tx           database.Transactor
	scheduleRepo schedule.ScheduleRepository
	employeeRepo employee.EmployeeRepository
	now          func() time.Time
}

func NewScheduleService(tx database.Transactor, scheduleRepo schedule.ScheduleRepository, employeeRepo employee.EmployeeRepository) schedule.ScheduleService {
	return &scheduleServiceImpl{
		tx:           tx,
		scheduleRepo: scheduleRepo,
		employeeRepo: employeeRepo,
		now:          time.Now,
	}
}

// GetSchedule implements schedule.ScheduleService.
func (s *scheduleServiceImpl) GetSchedule(ctx context.Context, employeeID string) (*schedule.Schedule, error) {
	sched, err := s.scheduleRepo.GetByEmployeeID(ctx, employeeID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, schedule.ErrNoScheduleAssigned
		}
		return nil, fmt.Errorf("failed to get employee schedule: %w", err)
	}
	return sched, nil
}

// GetScheduleByID implements schedule.ScheduleService.
func (s *scheduleServiceImpl) GetScheduleByID(ctx context.Context, id string) (*schedule.Schedule, error) {
	sched, err := s.scheduleRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, schedule.ErrScheduleNotFound
		}
		return nil, fmt.Errorf("failed to get schedule: %w", err)
	}
	return sched, nil
}

// CreateSchedule implements schedule.ScheduleService.
func (s *scheduleServiceImpl) CreateSchedule(ctx context.Context, req schedule.CreateScheduleRequest) (*schedule.Schedule, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	windows := make(map[schedule.DayOfWeek]schedule.WorkWindow, len(req.Windows))
	for i := range req.Windows {
		w, err := req.Windows[i].ToWindow()
		if err != nil {
			return nil, err
		}
		windows[w.DayOfWeek] = w
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate schedule id: %w", err)
	}
	now := s.now()
	sched := &schedule.Schedule{
		ID:        id.String(),
		Name:      req.Name,
		Timezone:  req.Timezone,
		Windows:   windows,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		return s.scheduleRepo.Create(txCtx, sched)
	}); err != nil {
		return nil, fmt.Errorf("failed to create schedule: %w", err)
	}

	slog.Info("schedule created", "schedule_id", sched.ID, "windows", len(windows))
	return sched, nil
}

// SetWindow implements schedule.ScheduleService. Existing windows for the day are replaced.
func (s *scheduleServiceImpl) SetWindow(ctx context.Context, scheduleID string, req schedule.WorkWindowRequest) (*schedule.Schedule, error) {
	w, err := req.ToWindow()
	if err != nil {
		return nil, err
	}

	err = s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		if _, err := s.GetScheduleByID(txCtx, scheduleID); err != nil {
			return err
		}
		if err := s.scheduleRepo.UpsertWindow(txCtx, scheduleID, w); err != nil {
			return fmt.Errorf("failed to save work window: %w", err)
		}
		return s.scheduleRepo.Touch(txCtx, scheduleID)
	})
	if err != nil {
		return nil, err
	}

	return s.GetScheduleByID(ctx, scheduleID)
}

// RemoveWindow implements schedule.ScheduleService. The day becomes a rest day.
func (s *scheduleServiceImpl) RemoveWindow(ctx context.Context, scheduleID string, day schedule.DayOfWeek) (*schedule.Schedule, error) {
	if !day.Valid() {
		return nil, fmt.Errorf("%w: day_of_week %d out of range", schedule.ErrInvalidWindow, day)
	}

	err := s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		if _, err := s.GetScheduleByID(txCtx, scheduleID); err != nil {
			return err
		}
		if err := s.scheduleRepo.DeleteWindow(txCtx, scheduleID, day); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return schedule.ErrWindowNotFound
			}
			return fmt.Errorf("failed to delete work window: %w", err)
		}
		return s.scheduleRepo.Touch(txCtx, scheduleID)
	})
	if err != nil {
		return nil, err
	}

	return s.GetScheduleByID(ctx, scheduleID)
}

// AssignSchedule implements schedule.ScheduleService.
func (s *scheduleServiceImpl) AssignSchedule(ctx context.Context, employeeID, scheduleID string) error {
	if _, err := s.GetScheduleByID(ctx, scheduleID); err != nil {
		return err
	}

	if err := s.employeeRepo.UpdateSchedule(ctx, employeeID, scheduleID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.ErrEmployeeNotFound
		}
		return fmt.Errorf("failed to assign schedule: %w", err)
	}

	slog.Info("schedule assigned", "employee_id", employeeID, "schedule_id", scheduleID)
	return nil
}
