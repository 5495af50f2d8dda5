package schedule

import "context"

type ScheduleRepository interface {
	Create(ctx context.Context, s *Schedule) error
	GetByID(ctx context.Context, id string) (*Schedule, error)
	GetByEmployeeID(ctx context.Context, employeeID string) (*Schedule, error)
	UpsertWindow(ctx context.Context, scheduleID string, w WorkWindow) error
	DeleteWindow(ctx context.Context, scheduleID string, day DayOfWeek) error
	Touch(ctx context.Context, scheduleID string) error
}
