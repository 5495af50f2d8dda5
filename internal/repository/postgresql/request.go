package postgresql

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-timesheet-go/internal/domain/approval"
	"github.com/cmlabs-hris/hris-timesheet-go/internal/domain/schedule"
	"github.com/cmlabs-hris/hris-timesheet-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const requestColumns = `id, employee_id, type, leave_type, start_date, end_date, amount::text, offset_from, offset_to,
	is_with_pay, reason, leader_id, manager_id, leader_decision, manager_decision,
	leader_decided_at, manager_decided_at, version, last_reminded_at, created_at, updated_at`

// requestStatusExpr mirrors approval.DeriveStatus so status filters run in SQL.
const requestStatusExpr = `CASE
	WHEN leader_decision IS NULL OR manager_decision IS NULL THEN 'PENDING'
	WHEN leader_decision AND manager_decision THEN 'APPROVED'
	ELSE 'DISAPPROVED'
END`

type requestRepositoryImpl struct {
	db *database.DB
}

func NewRequestRepository(db *database.DB) approval.RequestRepository {
	return &requestRepositoryImpl{db: db}
}

func scanRequest(row rowScanner) (approval.Request, error) {
	var req approval.Request
	var reqType, amount string
	var leaveType *string
	var offsetFrom, offsetTo *int

	err := row.Scan(
		&req.ID, &req.EmployeeID, &reqType, &leaveType, &req.StartDate, &req.EndDate, &amount,
		&offsetFrom, &offsetTo,
		&req.IsWithPay, &req.Reason, &req.LeaderID, &req.ManagerID, &req.LeaderDecision, &req.ManagerDecision,
		&req.LeaderDecidedAt, &req.ManagerDecidedAt, &req.Version, &req.LastRemindedAt, &req.CreatedAt, &req.UpdatedAt,
	)
	if err != nil {
		return req, err
	}

	req.Type = approval.RequestType(reqType)
	if req.Amount, err = decimal.NewFromString(amount); err != nil {
		return req, fmt.Errorf("invalid amount %q on request %s: %w", amount, req.ID, err)
	}
	if leaveType != nil {
		lt, ok := approval.ParseLeaveType(*leaveType)
		if !ok {
			// Kept as stored; projections without a code for it skip the request.
			slog.Warn("request has unknown leave type", "request_id", req.ID, "leave_type", *leaveType)
			lt = approval.LeaveType(*leaveType)
		}
		req.LeaveType = &lt
	}
	if offsetFrom != nil {
		t := schedule.TimeOfDay(*offsetFrom)
		req.OffsetFrom = &t
	}
	if offsetTo != nil {
		t := schedule.TimeOfDay(*offsetTo)
		req.OffsetTo = &t
	}
	return req, nil
}

func collectRequests(rows pgx.Rows) ([]approval.Request, error) {
	defer rows.Close()

	var requests []approval.Request
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, req)
	}
	return requests, rows.Err()
}

func timeOfDayArg(t *schedule.TimeOfDay) *int {
	if t == nil {
		return nil
	}
	m := t.Minutes()
	return &m
}

// Create implements approval.RequestRepository.
func (r *requestRepositoryImpl) Create(ctx context.Context, req *approval.Request) error {
	q := GetQuerier(ctx, r.db)

	var leaveType *string
	if req.LeaveType != nil {
		s := string(*req.LeaveType)
		leaveType = &s
	}

	query := `
		INSERT INTO requests (
			id, employee_id, type, leave_type, start_date, end_date, amount, offset_from, offset_to,
			is_with_pay, reason, leader_id, manager_id, version, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7::numeric, $8, $9,
			$10, $11, $12, $13, $14, $15, $16
		)
	`

	_, err := q.Exec(ctx, query,
		req.ID, req.EmployeeID, string(req.Type), leaveType, req.StartDate, req.EndDate, req.Amount.String(),
		timeOfDayArg(req.OffsetFrom), timeOfDayArg(req.OffsetTo),
		req.IsWithPay, req.Reason, req.LeaderID, req.ManagerID, req.Version, req.CreatedAt, req.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	return nil
}

// GetByID implements approval.RequestRepository.
func (r *requestRepositoryImpl) GetByID(ctx context.Context, id string) (*approval.Request, error) {
	return r.getOne(ctx, `SELECT `+requestColumns+` FROM requests WHERE id = $1`, id)
}

// GetForUpdate implements approval.RequestRepository.
func (r *requestRepositoryImpl) GetForUpdate(ctx context.Context, id string) (*approval.Request, error) {
	return r.getOne(ctx, `SELECT `+requestColumns+` FROM requests WHERE id = $1 FOR UPDATE`, id)
}

func (r *requestRepositoryImpl) getOne(ctx context.Context, query, id string) (*approval.Request, error) {
	q := GetQuerier(ctx, r.db)

	req, err := scanRequest(q.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get request with id %s: %w", id, err)
	}
	return &req, nil
}

// SetDecision implements approval.RequestRepository.
func (r *requestRepositoryImpl) SetDecision(ctx context.Context, id string, actor approval.Actor, approve bool, decidedAt time.Time, expectedVersion int) (bool, error) {
	q := GetQuerier(ctx, r.db)

	decisionCol, decidedAtCol := "leader_decision", "leader_decided_at"
	if actor == approval.ActorManager {
		decisionCol, decidedAtCol = "manager_decision", "manager_decided_at"
	}

	query := fmt.Sprintf(`
		UPDATE requests
		SET %[1]s = $1, %[2]s = $2, version = version + 1, updated_at = $2
		WHERE id = $3 AND %[1]s IS NULL AND version = $4
	`, decisionCol, decidedAtCol)

	tag, err := q.Exec(ctx, query, approve, decidedAt, id, expectedVersion)
	if err != nil {
		return false, fmt.Errorf("failed to record %s decision on request %s: %w", actor, id, err)
	}
	return tag.RowsAffected() == 1, nil
}

// List implements approval.RequestRepository.
func (r *requestRepositoryImpl) List(ctx context.Context, filter approval.ListFilter) ([]approval.Request, int64, error) {
	q := GetQuerier(ctx, r.db)

	var conditions []string
	var args []interface{}
	argIndex := 1

	if filter.EmployeeID != nil {
		conditions = append(conditions, fmt.Sprintf("employee_id = $%d", argIndex))
		args = append(args, *filter.EmployeeID)
		argIndex++
	}

	if filter.ApproverID != nil {
		leader := fmt.Sprintf("leader_id = $%d", argIndex)
		manager := fmt.Sprintf("manager_id = $%d", argIndex)
		if filter.AwaitingApprover {
			leader += " AND leader_decision IS NULL"
			manager += " AND manager_decision IS NULL"
		}
		switch {
		case filter.Actor != nil && *filter.Actor == approval.ActorLeader:
			conditions = append(conditions, leader)
		case filter.Actor != nil && *filter.Actor == approval.ActorManager:
			conditions = append(conditions, manager)
		default:
			conditions = append(conditions, "(("+leader+") OR ("+manager+"))")
		}
		args = append(args, *filter.ApproverID)
		argIndex++
	}

	if filter.Type != nil {
		conditions = append(conditions, fmt.Sprintf("type = $%d", argIndex))
		args = append(args, string(*filter.Type))
		argIndex++
	}

	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("(%s) = $%d", requestStatusExpr, argIndex))
		args = append(args, string(*filter.Status))
		argIndex++
	}

	// A request matches a date window when its span overlaps it.
	if filter.From != nil {
		conditions = append(conditions, fmt.Sprintf("end_date >= $%d", argIndex))
		args = append(args, *filter.From)
		argIndex++
	}
	if filter.To != nil {
		conditions = append(conditions, fmt.Sprintf("start_date <= $%d", argIndex))
		args = append(args, *filter.To)
		argIndex++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	var total int64
	if err := q.QueryRow(ctx, "SELECT COUNT(*) FROM requests "+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count requests: %w", err)
	}

	page, limit := filter.Page, filter.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM requests
		%s
		ORDER BY created_at DESC, id DESC
		LIMIT $%d OFFSET $%d
	`, requestColumns, whereClause, argIndex, argIndex+1)
	args = append(args, limit, (page-1)*limit)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list requests: %w", err)
	}
	requests, err := collectRequests(rows)
	if err != nil {
		return nil, 0, err
	}
	return requests, total, nil
}

// ListOverlapping implements approval.RequestRepository.
func (r *requestRepositoryImpl) ListOverlapping(ctx context.Context, employeeID string, types []approval.RequestType, from, to time.Time) ([]approval.Request, error) {
	q := GetQuerier(ctx, r.db)

	typeNames := make([]string, len(types))
	for i, t := range types {
		typeNames[i] = string(t)
	}

	query := `
		SELECT ` + requestColumns + `
		FROM requests
		WHERE employee_id = $1 AND type = ANY($2) AND start_date <= $4 AND end_date >= $3
		ORDER BY start_date, id
	`

	rows, err := q.Query(ctx, query, employeeID, typeNames, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list overlapping requests: %w", err)
	}
	return collectRequests(rows)
}

// ListStalePending implements approval.RequestRepository.
func (r *requestRepositoryImpl) ListStalePending(ctx context.Context, createdBefore, remindedBefore time.Time) ([]approval.Request, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + requestColumns + `
		FROM requests
		WHERE (leader_decision IS NULL OR manager_decision IS NULL)
		  AND created_at < $1
		  AND (last_reminded_at IS NULL OR last_reminded_at < $2)
		ORDER BY created_at, id
	`

	rows, err := q.Query(ctx, query, createdBefore, remindedBefore)
	if err != nil {
		return nil, fmt.Errorf("failed to list stale pending requests: %w", err)
	}
	return collectRequests(rows)
}

// MarkReminded implements approval.RequestRepository.
func (r *requestRepositoryImpl) MarkReminded(ctx context.Context, id string, at time.Time) error {
	q := GetQuerier(ctx, r.db)

	if _, err := q.Exec(ctx, `UPDATE requests SET last_reminded_at = $1 WHERE id = $2`, at, id); err != nil {
		return fmt.Errorf("failed to mark request %s reminded: %w", id, err)
	}
	return nil
}
