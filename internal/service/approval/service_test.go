package approval

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-timesheet-go/internal/domain/approval"
	"github.com/cmlabs-hris/hris-timesheet-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-timesheet-go/internal/domain/notification"
	"github.com/cmlabs-hris/hris-timesheet-go/internal/pkg/period"
	"github.com/cmlabs-hris/hris-timesheet-go/internal/pkg/validator"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---- fakes ----

type passthroughTx struct{}

func (passthroughTx) WithinTransaction(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

type memRequests struct {
	mu       sync.Mutex
	rows     map[string]approval.Request
	conflict bool
	reminded map[string]time.Time
}

func newMemRequests() *memRequests {
	return &memRequests{rows: map[string]approval.Request{}, reminded: map[string]time.Time{}}
}

func (m *memRequests) Create(_ context.Context, r *approval.Request) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[r.ID] = *r
	return nil
}

func (m *memRequests) GetByID(_ context.Context, id string) (*approval.Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rows[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &r, nil
}

func (m *memRequests) GetForUpdate(ctx context.Context, id string) (*approval.Request, error) {
	return m.GetByID(ctx, id)
}

func (m *memRequests) SetDecision(_ context.Context, id string, actor approval.Actor, approve bool, at time.Time, version int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rows[id]
	if !ok || m.conflict || r.Version != version || r.Gate(actor) != nil {
		return false, nil
	}
	r.SetGate(actor, approve, at)
	m.rows[id] = r
	return true, nil
}

func (m *memRequests) List(_ context.Context, f approval.ListFilter) ([]approval.Request, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []approval.Request
	for _, r := range m.rows {
		if f.EmployeeID != nil && r.EmployeeID != *f.EmployeeID {
			continue
		}
		if f.ApproverID != nil && r.LeaderID != *f.ApproverID && r.ManagerID != *f.ApproverID {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (m *memRequests) ListOverlapping(_ context.Context, employeeID string, types []approval.RequestType, from, to time.Time) ([]approval.Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []approval.Request
	for _, r := range m.rows {
		if r.EmployeeID != employeeID || r.EndDate.Before(from) || r.StartDate.After(to) {
			continue
		}
		for _, t := range types {
			if r.Type == t {
				out = append(out, r)
			}
		}
	}
	return out, nil
}

func (m *memRequests) ListStalePending(_ context.Context, createdBefore, remindedBefore time.Time) ([]approval.Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []approval.Request
	for _, r := range m.rows {
		if r.IsTerminal() || !r.CreatedAt.Before(createdBefore) {
			continue
		}
		if at, ok := m.reminded[r.ID]; ok && !at.Before(remindedBefore) {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (m *memRequests) MarkReminded(_ context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reminded[id] = at
	return nil
}

type memEmployees struct {
	rows map[string]employee.Employee
}

func (m *memEmployees) GetByID(_ context.Context, id string) (employee.Employee, error) {
	e, ok := m.rows[id]
	if !ok {
		return employee.Employee{}, pgx.ErrNoRows
	}
	return e, nil
}

func (m *memEmployees) GetByUserID(context.Context, string) (employee.Employee, error) {
	return employee.Employee{}, pgx.ErrNoRows
}

func (m *memEmployees) Create(_ context.Context, e employee.Employee) (employee.Employee, error) {
	m.rows[e.ID] = e
	return e, nil
}

func (m *memEmployees) ListActive(context.Context) ([]employee.Employee, error) {
	return nil, nil
}

func (m *memEmployees) UpdateSchedule(context.Context, string, string) error { return nil }

func (m *memEmployees) UpdateApprovers(context.Context, string, *string, *string) error { return nil }

type recordingNotifier struct {
	notification.Service
	mu   sync.Mutex
	sent []notification.CreateNotificationRequest
	err  error
}

func (r *recordingNotifier) QueueNotification(_ context.Context, req notification.CreateNotificationRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, req)
	return nil
}

func (r *recordingNotifier) QueueBulkNotification(ctx context.Context, reqs []notification.CreateNotificationRequest) error {
	for _, req := range reqs {
		if err := r.QueueNotification(ctx, req); err != nil {
			return err
		}
	}
	return nil
}

func (r *recordingNotifier) count(recipient string, t notification.NotificationType) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, s := range r.sent {
		if s.RecipientID == recipient && s.Type == t {
			n++
		}
	}
	return n
}

type recordingPublisher struct {
	events []approval.DecisionEvent
	err    error
}

func (p *recordingPublisher) PublishDecision(_ context.Context, e approval.DecisionEvent) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, e)
	return nil
}

// ---- helpers ----

var fixedNow = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

type fixture struct {
	svc       *ApprovalServiceImpl
	requests  *memRequests
	notifier  *recordingNotifier
	publisher *recordingPublisher
}

func newFixture() *fixture {
	employees := &memEmployees{rows: map[string]employee.Employee{
		"emp":     {ID: "emp", FullName: "Rina Putri", LeaderID: strPtr("leader"), ManagerID: strPtr("manager"), EmploymentStatus: employee.EmploymentStatusActive},
		"leader":  {ID: "leader", FullName: "Lead", EmploymentStatus: employee.EmploymentStatusActive},
		"manager": {ID: "manager", FullName: "Boss", EmploymentStatus: employee.EmploymentStatusActive},
		"orphan":  {ID: "orphan", FullName: "No Approvers", EmploymentStatus: employee.EmploymentStatusActive},
		"selfie":  {ID: "selfie", FullName: "Own Leader", LeaderID: strPtr("selfie"), ManagerID: strPtr("manager"), EmploymentStatus: employee.EmploymentStatusActive},
		"dangling": {ID: "dangling", FullName: "Gone Manager", LeaderID: strPtr("leader"), ManagerID: strPtr("ghost"), EmploymentStatus: employee.EmploymentStatusActive},
		"single":  {ID: "single", FullName: "One Approver", LeaderID: strPtr("leader"), ManagerID: strPtr("leader"), EmploymentStatus: employee.EmploymentStatusActive},
	}}
	f := &fixture{
		requests:  newMemRequests(),
		notifier:  &recordingNotifier{},
		publisher: &recordingPublisher{},
	}
	f.svc = NewApprovalService(passthroughTx{}, f.requests, employees, f.notifier, f.publisher, func() time.Time { return fixedNow })
	return f
}

func (f *fixture) submitSickLeave(t *testing.T) approval.RequestResponse {
	t.Helper()
	resp, err := f.svc.Submit(context.Background(), approval.SubmitRequest{
		EmployeeID: "emp",
		Type:       "LEAVE",
		LeaveType:  "SICK_LEAVE",
		StartDate:  "2024-03-04",
		EndDate:    "2024-03-05",
		Reason:     "flu",
	})
	require.NoError(t, err)
	return resp
}

func (f *fixture) decide(id, actorID, actor string, approve bool) (approval.RequestResponse, error) {
	return f.svc.Decide(context.Background(), approval.DecideRequest{
		RequestID: id,
		ActorID:   actorID,
		Actor:     actor,
		Approve:   boolPtr(approve),
	})
}

// ---- tests ----

func TestSubmit_DefaultsApproversAndNotifiesBoth(t *testing.T) {
	f := newFixture()

	resp := f.submitSickLeave(t)

	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, "leader", resp.LeaderID)
	assert.Equal(t, "manager", resp.ManagerID)
	assert.Equal(t, "PENDING", resp.Status)
	assert.Equal(t, "2", resp.Amount)
	assert.Equal(t, 1, f.notifier.count("leader", notification.TypeRequest))
	assert.Equal(t, 1, f.notifier.count("manager", notification.TypeRequest))
}

func TestSubmit_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		req     approval.SubmitRequest
		wantErr error
	}{
		{
			name:    "no approvers",
			req:     approval.SubmitRequest{EmployeeID: "orphan", Type: "OVERTIME", StartDate: "2024-03-04", Reason: "release", RequestedMinutes: intPtr(60)},
			wantErr: approval.ErrApproverMissing,
		},
		{
			name:    "self approval",
			req:     approval.SubmitRequest{EmployeeID: "selfie", Type: "OVERTIME", StartDate: "2024-03-04", Reason: "release", RequestedMinutes: intPtr(60)},
			wantErr: employee.ErrSelfApproval,
		},
		{
			name:    "unknown approver",
			req:     approval.SubmitRequest{EmployeeID: "dangling", Type: "OVERTIME", StartDate: "2024-03-04", Reason: "release", RequestedMinutes: intPtr(60)},
			wantErr: employee.ErrApproverNotFound,
		},
		{
			name:    "leader is also manager",
			req:     approval.SubmitRequest{EmployeeID: "single", Type: "OVERTIME", StartDate: "2024-03-04", Reason: "release", RequestedMinutes: intPtr(60)},
			wantErr: employee.ErrSameApprover,
		},
		{
			name:    "unknown employee",
			req:     approval.SubmitRequest{EmployeeID: "ghost", Type: "OVERTIME", StartDate: "2024-03-04", Reason: "release", RequestedMinutes: intPtr(60)},
			wantErr: employee.ErrEmployeeNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			_, err := f.svc.Submit(context.Background(), tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, f.requests.rows)
		})
	}
}

func TestSubmit_IgnoresApproversInBody(t *testing.T) {
	f := newFixture()

	var req approval.SubmitRequest
	require.NoError(t, json.Unmarshal([]byte(`{
		"type": "LEAVE",
		"leave_type": "SICK_LEAVE",
		"start_date": "2024-03-04",
		"reason": "flu",
		"leader_id": "orphan",
		"manager_id": "orphan"
	}`), &req))
	req.EmployeeID = "emp"

	resp, err := f.svc.Submit(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "leader", resp.LeaderID)
	assert.Equal(t, "manager", resp.ManagerID)
	assert.Equal(t, 1, f.notifier.count("leader", notification.TypeRequest))
	assert.Zero(t, f.notifier.count("orphan", notification.TypeRequest))

	_, err = f.decide(resp.ID, "orphan", "LEADER", true)
	assert.ErrorIs(t, err, approval.ErrForbidden)
	_, err = f.decide(resp.ID, "orphan", "MANAGER", true)
	assert.ErrorIs(t, err, approval.ErrForbidden)

	got, err := f.svc.Get(context.Background(), resp.ID, "")
	require.NoError(t, err)
	assert.Equal(t, "PENDING", got.Status)
}

func TestSubmit_UnknownLeaveTypeIsValidationError(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Submit(context.Background(), approval.SubmitRequest{
		EmployeeID: "emp",
		Type:       "LEAVE",
		LeaveType:  "SABBATICAL",
		StartDate:  "2024-03-04",
		Reason:     "rest",
	})

	var vErrs validator.ValidationErrors
	require.ErrorAs(t, err, &vErrs)
	assert.Contains(t, vErrs.ToMap(), "leave_type")
}

func TestDecide_LeaderApprovesManagerDisapproves(t *testing.T) {
	f := newFixture()
	req := f.submitSickLeave(t)

	first, err := f.decide(req.ID, "leader", "LEADER", true)
	require.NoError(t, err)
	assert.Equal(t, "PENDING", first.Status)
	assert.Equal(t, 1, f.notifier.count("emp", notification.TypeApproval))

	second, err := f.decide(req.ID, "manager", "MANAGER", false)
	require.NoError(t, err)
	assert.Equal(t, "DISAPPROVED", second.Status)
	assert.Equal(t, 1, f.notifier.count("emp", notification.TypeDisapproval))
	assert.Equal(t, 1, f.notifier.count("emp", notification.TypeApproval))

	require.Len(t, f.publisher.events, 2)
	assert.Equal(t, "DISAPPROVED", f.publisher.events[1].Status)
	assert.Equal(t, "MANAGER", f.publisher.events[1].Actor)
}

func TestDecide_BothApprove(t *testing.T) {
	f := newFixture()
	req := f.submitSickLeave(t)

	_, err := f.decide(req.ID, "manager", "MANAGER", true)
	require.NoError(t, err)
	resp, err := f.decide(req.ID, "leader", "LEADER", true)
	require.NoError(t, err)

	assert.Equal(t, "APPROVED", resp.Status)
	assert.Equal(t, 2, f.notifier.count("emp", notification.TypeApproval))
	assert.Zero(t, f.notifier.count("emp", notification.TypeDisapproval))
}

func TestDecide_FirstDisapprovalThenApproval(t *testing.T) {
	f := newFixture()
	req := f.submitSickLeave(t)

	_, err := f.decide(req.ID, "leader", "LEADER", false)
	require.NoError(t, err)
	resp, err := f.decide(req.ID, "manager", "MANAGER", true)
	require.NoError(t, err)

	assert.Equal(t, "DISAPPROVED", resp.Status)
	assert.Equal(t, 2, f.notifier.count("emp", notification.TypeDisapproval))
}

func TestDecide_AlreadyDecidedRegardlessOfValue(t *testing.T) {
	for _, second := range []bool{true, false} {
		f := newFixture()
		req := f.submitSickLeave(t)

		_, err := f.decide(req.ID, "leader", "LEADER", true)
		require.NoError(t, err)

		_, err = f.decide(req.ID, "leader", "LEADER", second)
		assert.ErrorIs(t, err, approval.ErrAlreadyDecided)

		stored, err := f.requests.GetByID(context.Background(), req.ID)
		require.NoError(t, err)
		assert.True(t, *stored.LeaderDecision)
	}
}

func TestDecide_Forbidden(t *testing.T) {
	f := newFixture()
	req := f.submitSickLeave(t)

	_, err := f.decide(req.ID, "manager", "LEADER", true)
	assert.ErrorIs(t, err, approval.ErrForbidden)

	_, err = f.decide(req.ID, "emp", "MANAGER", true)
	assert.ErrorIs(t, err, approval.ErrForbidden)

	stored, err := f.requests.GetByID(context.Background(), req.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.LeaderDecision)
	assert.Nil(t, stored.ManagerDecision)
}

func TestDecide_NotFoundAndConflict(t *testing.T) {
	f := newFixture()

	_, err := f.decide("missing", "leader", "LEADER", true)
	assert.ErrorIs(t, err, approval.ErrRequestNotFound)

	req := f.submitSickLeave(t)
	f.requests.conflict = true
	_, err = f.decide(req.ID, "leader", "LEADER", true)
	assert.ErrorIs(t, err, approval.ErrDecisionConflict)
	assert.Zero(t, f.notifier.count("emp", notification.TypeApproval))
}

func TestDecide_InvalidPayload(t *testing.T) {
	f := newFixture()
	req := f.submitSickLeave(t)

	_, err := f.svc.Decide(context.Background(), approval.DecideRequest{RequestID: req.ID, ActorID: "leader", Actor: "HR", Approve: boolPtr(true)})
	var vErrs validator.ValidationErrors
	assert.ErrorAs(t, err, &vErrs)

	_, err = f.svc.Decide(context.Background(), approval.DecideRequest{RequestID: req.ID, ActorID: "leader", Actor: "LEADER"})
	assert.ErrorAs(t, err, &vErrs)
}

func TestDecide_SideEffectFailuresKeepDecision(t *testing.T) {
	f := newFixture()
	req := f.submitSickLeave(t)
	f.notifier.err = errors.New("queue down")
	f.publisher.err = errors.New("sqs down")

	resp, err := f.decide(req.ID, "leader", "LEADER", true)
	require.NoError(t, err)
	assert.Equal(t, "PENDING", resp.Status)

	stored, err := f.requests.GetByID(context.Background(), req.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.LeaderDecision)
	assert.True(t, *stored.LeaderDecision)
}

func TestGet_OnlyParties(t *testing.T) {
	f := newFixture()
	req := f.submitSickLeave(t)

	for _, viewer := range []string{"emp", "leader", "manager", ""} {
		_, err := f.svc.Get(context.Background(), req.ID, viewer)
		assert.NoError(t, err, viewer)
	}

	_, err := f.svc.Get(context.Background(), req.ID, "orphan")
	assert.ErrorIs(t, err, approval.ErrNotRequestParty)

	_, err = f.svc.Get(context.Background(), "missing", "emp")
	assert.ErrorIs(t, err, approval.ErrRequestNotFound)
}

func TestListForApprover(t *testing.T) {
	f := newFixture()
	f.submitSickLeave(t)

	list, err := f.svc.ListForApprover(context.Background(), "leader", nil, true, approval.RequestFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, list.TotalCount)
	assert.Equal(t, 1, list.TotalPages)
	assert.Equal(t, 20, list.Limit)

	bad := approval.Actor("HR")
	_, err = f.svc.ListForApprover(context.Background(), "leader", &bad, true, approval.RequestFilter{})
	assert.ErrorIs(t, err, approval.ErrInvalidActor)
}

func TestOvertimeClaims_MergesByDate(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	day := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)

	put := func(id string, minutes int64, leader, manager *bool) {
		require.NoError(t, f.requests.Create(ctx, &approval.Request{
			ID: id, EmployeeID: "emp", Type: approval.TypeOvertime,
			StartDate: day, EndDate: day, Amount: decimal.NewFromInt(minutes),
			LeaderID: "leader", ManagerID: "manager",
			LeaderDecision: leader, ManagerDecision: manager,
		}))
	}
	put("ot-1", 60, boolPtr(true), boolPtr(true))
	put("ot-2", 30, boolPtr(true), boolPtr(false))

	r, err := period.NewRange(day, day.AddDate(0, 0, 1))
	require.NoError(t, err)

	claims, err := f.svc.OvertimeClaims(ctx, "emp", r)
	require.NoError(t, err)
	require.Contains(t, claims, day)
	assert.Equal(t, 90, claims[day].RequestedMinutes)
	assert.Equal(t, 60, claims[day].ApprovedMinutes)
	assert.True(t, claims[day].Decided)

	put("ot-3", 15, nil, nil)
	claims, err = f.svc.OvertimeClaims(ctx, "emp", r)
	require.NoError(t, err)
	assert.Equal(t, 105, claims[day].RequestedMinutes)
	assert.False(t, claims[day].Decided)
}

func TestApprovedAbsenceDays(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	sick := approval.LeaveSick
	start := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)

	require.NoError(t, f.requests.Create(ctx, &approval.Request{
		ID: "leave-1", EmployeeID: "emp", Type: approval.TypeLeave, LeaveType: &sick,
		StartDate: start, EndDate: start.AddDate(0, 0, 2), Amount: decimal.NewFromInt(3),
		LeaderDecision: boolPtr(true), ManagerDecision: boolPtr(true),
	}))
	require.NoError(t, f.requests.Create(ctx, &approval.Request{
		ID: "leave-2", EmployeeID: "emp", Type: approval.TypeLeave, LeaveType: &sick,
		StartDate: start.AddDate(0, 0, 7), EndDate: start.AddDate(0, 0, 7), Amount: decimal.NewFromInt(1),
	}))

	r, err := period.NewRange(start.AddDate(0, 0, 1), start.AddDate(0, 0, 10))
	require.NoError(t, err)

	days, err := f.svc.ApprovedAbsenceDays(ctx, "emp", r)
	require.NoError(t, err)
	assert.Len(t, days, 2)
	assert.True(t, days[start.AddDate(0, 0, 1)])
	assert.True(t, days[start.AddDate(0, 0, 2)])
	assert.False(t, days[start.AddDate(0, 0, 7)])
}

func TestRemindPending_OncePerDay(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	req := f.submitSickLeave(t)
	_, err := f.decide(req.ID, "leader", "LEADER", true)
	require.NoError(t, err)

	f.svc.now = func() time.Time { return fixedNow.Add(72 * time.Hour) }

	n, err := f.svc.RemindPending(ctx, 48*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 2, f.notifier.count("manager", notification.TypeRequest))
	assert.Equal(t, 1, f.notifier.count("leader", notification.TypeRequest))

	n, err = f.svc.RemindPending(ctx, 48*time.Hour)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func intPtr(i int) *int { return &i }
