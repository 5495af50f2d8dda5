package employee

import "time"

type Employee struct {
	ID               string
	UserID           *string
	EmployeeCode     string
	FullName         string
	Email            string
	ScheduleID       *string
	LeaderID         *string
	ManagerID        *string
	EmploymentStatus EmploymentStatus
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

type EmploymentStatus string

const (
	EmploymentStatusActive   EmploymentStatus = "active"
	EmploymentStatusInactive EmploymentStatus = "inactive"
)

func (e Employee) IsActive() bool {
	return e.EmploymentStatus == EmploymentStatusActive
}
