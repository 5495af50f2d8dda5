package schedule

import "context"

type ScheduleService interface {
	GetSchedule(ctx context.Context, employeeID string) (*Schedule, error)
	GetScheduleByID(ctx context.Context, id string) (*Schedule, error)
	CreateSchedule(ctx context.Context, req CreateScheduleRequest) (*Schedule, error)
	SetWindow(ctx context.Context, scheduleID string, req WorkWindowRequest) (*Schedule, error)
	RemoveWindow(ctx context.Context, scheduleID string, day DayOfWeek) (*Schedule, error)
	AssignSchedule(ctx context.Context, employeeID, scheduleID string) error
}
