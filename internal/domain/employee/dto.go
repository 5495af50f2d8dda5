package employee

import (
	"time"

	"github.com/cmlabs-hris/hris-timesheet-go/internal/pkg/validator"
)

type CreateEmployeeRequest struct {
	UserID       *string `json:"user_id,omitempty"`
	EmployeeCode string  `json:"employee_code" validate:"required,max=32"`
	FullName     string  `json:"full_name" validate:"required,max=150"`
	Email        string  `json:"email" validate:"required,email"`
	ScheduleID   *string `json:"schedule_id,omitempty"`
	LeaderID     *string `json:"leader_id,omitempty"`
	ManagerID    *string `json:"manager_id,omitempty"`
}

func (r *CreateEmployeeRequest) Validate() error {
	return validator.Struct(r)
}

type UpdateApproversRequest struct {
	LeaderID  *string `json:"leader_id"`
	ManagerID *string `json:"manager_id"`
}

type EmployeeResponse struct {
	ID               string  `json:"id"`
	EmployeeCode     string  `json:"employee_code"`
	FullName         string  `json:"full_name"`
	Email            string  `json:"email"`
	ScheduleID       *string `json:"schedule_id,omitempty"`
	LeaderID         *string `json:"leader_id,omitempty"`
	ManagerID        *string `json:"manager_id,omitempty"`
	EmploymentStatus string  `json:"employment_status"`
	CreatedAt        string  `json:"created_at"`
}

func ToResponse(e Employee) EmployeeResponse {
	return EmployeeResponse{
		ID:               e.ID,
		EmployeeCode:     e.EmployeeCode,
		FullName:         e.FullName,
		Email:            e.Email,
		ScheduleID:       e.ScheduleID,
		LeaderID:         e.LeaderID,
		ManagerID:        e.ManagerID,
		EmploymentStatus: string(e.EmploymentStatus),
		CreatedAt:        e.CreatedAt.Format(time.RFC3339),
	}
}
