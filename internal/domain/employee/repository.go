package employee

import "context"

type EmployeeRepository interface {
	GetByID(ctx context.Context, id string) (Employee, error)
	GetByUserID(ctx context.Context, userID string) (Employee, error)
	Create(ctx context.Context, e Employee) (Employee, error)
	ListActive(ctx context.Context) ([]Employee, error)
	UpdateSchedule(ctx context.Context, id string, scheduleID string) error
	UpdateApprovers(ctx context.Context, id string, leaderID, managerID *string) error
}
