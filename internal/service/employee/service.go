package employee

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-timesheet-go/internal/domain/employee"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type EmployeeServiceImpl struct {
	employeeRepo employee.EmployeeRepository
	now          func() time.Time
}

func NewEmployeeService(employeeRepo employee.EmployeeRepository) employee.EmployeeService {
	return &EmployeeServiceImpl{
		employeeRepo: employeeRepo,
		now:          time.Now,
	}
}

// Create implements employee.EmployeeService.
func (s *EmployeeServiceImpl) Create(ctx context.Context, req employee.CreateEmployeeRequest) (employee.EmployeeResponse, error) {
	if err := req.Validate(); err != nil {
		return employee.EmployeeResponse{}, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return employee.EmployeeResponse{}, fmt.Errorf("failed to generate employee id: %w", err)
	}

	if err := s.checkApprovers(ctx, id.String(), req.LeaderID, req.ManagerID); err != nil {
		return employee.EmployeeResponse{}, err
	}

	now := s.now()
	created, err := s.employeeRepo.Create(ctx, employee.Employee{
		ID:               id.String(),
		UserID:           req.UserID,
		EmployeeCode:     strings.TrimSpace(req.EmployeeCode),
		FullName:         strings.TrimSpace(req.FullName),
		Email:            strings.ToLower(strings.TrimSpace(req.Email)),
		ScheduleID:       req.ScheduleID,
		LeaderID:         req.LeaderID,
		ManagerID:        req.ManagerID,
		EmploymentStatus: employee.EmploymentStatusActive,
		CreatedAt:        now,
		UpdatedAt:        now,
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return employee.EmployeeResponse{}, employee.ErrEmployeeCodeExists
		}
		return employee.EmployeeResponse{}, fmt.Errorf("failed to create employee: %w", err)
	}

	slog.Info("employee created", "employee_id", created.ID, "employee_code", created.EmployeeCode)
	return employee.ToResponse(created), nil
}

// Get implements employee.EmployeeService.
func (s *EmployeeServiceImpl) Get(ctx context.Context, id string) (employee.EmployeeResponse, error) {
	emp, err := s.employeeRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.EmployeeResponse{}, employee.ErrEmployeeNotFound
		}
		return employee.EmployeeResponse{}, fmt.Errorf("failed to get employee: %w", err)
	}
	return employee.ToResponse(emp), nil
}

// List implements employee.EmployeeService.
func (s *EmployeeServiceImpl) List(ctx context.Context) ([]employee.EmployeeResponse, error) {
	emps, err := s.employeeRepo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	out := make([]employee.EmployeeResponse, 0, len(emps))
	for _, e := range emps {
		out = append(out, employee.ToResponse(e))
	}
	return out, nil
}

// UpdateApprovers implements employee.EmployeeService.
func (s *EmployeeServiceImpl) UpdateApprovers(ctx context.Context, id string, req employee.UpdateApproversRequest) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.checkApprovers(ctx, id, req.LeaderID, req.ManagerID); err != nil {
		return err
	}
	if err := s.employeeRepo.UpdateApprovers(ctx, id, req.LeaderID, req.ManagerID); err != nil {
		return fmt.Errorf("failed to update approvers: %w", err)
	}
	return nil
}

func (s *EmployeeServiceImpl) checkApprovers(ctx context.Context, employeeID string, leaderID, managerID *string) error {
	if leaderID != nil && managerID != nil && *leaderID != "" && *leaderID == *managerID {
		return employee.ErrSameApprover
	}
	for _, id := range []*string{leaderID, managerID} {
		if id == nil || *id == "" {
			continue
		}
		if *id == employeeID {
			return employee.ErrSelfApproval
		}
		if _, err := s.employeeRepo.GetByID(ctx, *id); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return employee.ErrApproverNotFound
			}
			return fmt.Errorf("failed to get approver: %w", err)
		}
	}
	return nil
}
