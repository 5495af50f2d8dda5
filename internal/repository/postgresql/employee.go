package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/hris-timesheet-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-timesheet-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const employeeColumns = `id, user_id, employee_code, full_name, email, schedule_id, leader_id, manager_id,
	employment_status, created_at, updated_at`

type employeeRepositoryImpl struct {
	db *database.DB
}

func NewEmployeeRepository(db *database.DB) employee.EmployeeRepository {
	return &employeeRepositoryImpl{db: db}
}

func scanEmployee(row rowScanner) (employee.Employee, error) {
	var emp employee.Employee
	var status string
	err := row.Scan(
		&emp.ID, &emp.UserID, &emp.EmployeeCode, &emp.FullName, &emp.Email,
		&emp.ScheduleID, &emp.LeaderID, &emp.ManagerID,
		&status, &emp.CreatedAt, &emp.UpdatedAt,
	)
	emp.EmploymentStatus = employee.EmploymentStatus(status)
	return emp, err
}

// GetByID implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	q := GetQuerier(ctx, e.db)

	query := `SELECT ` + employeeColumns + ` FROM employees WHERE id = $1`
	emp, err := scanEmployee(q.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return employee.Employee{}, err
		}
		return employee.Employee{}, fmt.Errorf("failed to get employee with id %s: %w", id, err)
	}
	return emp, nil
}

// GetByUserID implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) GetByUserID(ctx context.Context, userID string) (employee.Employee, error) {
	q := GetQuerier(ctx, e.db)

	query := `SELECT ` + employeeColumns + ` FROM employees WHERE user_id = $1`
	emp, err := scanEmployee(q.QueryRow(ctx, query, userID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return employee.Employee{}, err
		}
		return employee.Employee{}, fmt.Errorf("failed to get employee with user id %s: %w", userID, err)
	}
	return emp, nil
}

// Create implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) Create(ctx context.Context, newEmployee employee.Employee) (employee.Employee, error) {
	q := GetQuerier(ctx, e.db)

	if newEmployee.EmploymentStatus == "" {
		newEmployee.EmploymentStatus = employee.EmploymentStatusActive
	}

	query := `
		INSERT INTO employees (
			id, user_id, employee_code, full_name, email, schedule_id, leader_id, manager_id,
			employment_status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)
		RETURNING ` + employeeColumns

	created, err := scanEmployee(q.QueryRow(ctx, query,
		newEmployee.ID, newEmployee.UserID, newEmployee.EmployeeCode, newEmployee.FullName, newEmployee.Email,
		newEmployee.ScheduleID, newEmployee.LeaderID, newEmployee.ManagerID,
		string(newEmployee.EmploymentStatus), newEmployee.CreatedAt,
	))
	if err != nil {
		return employee.Employee{}, fmt.Errorf("failed to create employee: %w", err)
	}
	return created, nil
}

// ListActive implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) ListActive(ctx context.Context) ([]employee.Employee, error) {
	q := GetQuerier(ctx, e.db)

	query := `SELECT ` + employeeColumns + ` FROM employees WHERE employment_status = $1 ORDER BY full_name, id`

	rows, err := q.Query(ctx, query, string(employee.EmploymentStatusActive))
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	defer rows.Close()

	var employees []employee.Employee
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		employees = append(employees, emp)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}
	return employees, nil
}

// UpdateSchedule implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) UpdateSchedule(ctx context.Context, id string, scheduleID string) error {
	q := GetQuerier(ctx, e.db)

	query := `
		UPDATE employees
		SET schedule_id = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING id
	`

	var updatedID string
	if err := q.QueryRow(ctx, query, scheduleID, id).Scan(&updatedID); err != nil {
		if err == pgx.ErrNoRows {
			return err
		}
		return fmt.Errorf("failed to update schedule for employee with id %s: %w", id, err)
	}
	return nil
}

// UpdateApprovers implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) UpdateApprovers(ctx context.Context, id string, leaderID, managerID *string) error {
	q := GetQuerier(ctx, e.db)

	query := `
		UPDATE employees
		SET leader_id = $1, manager_id = $2, updated_at = NOW()
		WHERE id = $3
		RETURNING id
	`

	var updatedID string
	if err := q.QueryRow(ctx, query, leaderID, managerID, id).Scan(&updatedID); err != nil {
		if err == pgx.ErrNoRows {
			return err
		}
		return fmt.Errorf("failed to update approvers for employee with id %s: %w", id, err)
	}
	return nil
}
