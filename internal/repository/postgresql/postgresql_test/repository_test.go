package postgresql_test

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-timesheet-go/internal/domain/approval"
	"github.com/cmlabs-hris/hris-timesheet-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-timesheet-go/internal/domain/notification"
	"github.com/cmlabs-hris/hris-timesheet-go/internal/domain/schedule"
	"github.com/cmlabs-hris/hris-timesheet-go/internal/domain/timesheet"
	"github.com/cmlabs-hris/hris-timesheet-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-timesheet-go/internal/repository/postgresql"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newID(t *testing.T) string {
	t.Helper()
	id, err := uuid.NewV7()
	require.NoError(t, err)
	return id.String()
}

func seedEmployee(t *testing.T, db *database.DB, code string, leaderID, managerID *string) employee.Employee {
	t.Helper()
	repo := postgresql.NewEmployeeRepository(db)
	emp, err := repo.Create(context.Background(), employee.Employee{
		ID:           newID(t),
		EmployeeCode: code,
		FullName:     "Employee " + code,
		Email:        code + "@example.com",
		LeaderID:     leaderID,
		ManagerID:    managerID,
		CreatedAt:    time.Now().UTC(),
	})
	require.NoError(t, err)
	return emp
}

func TestScheduleRepository_WindowsRoundTrip(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := postgresql.NewScheduleRepository(db)

	sched := &schedule.Schedule{
		ID:       newID(t),
		Name:     "Office",
		Timezone: "Asia/Jakarta",
		Windows: map[schedule.DayOfWeek]schedule.WorkWindow{
			schedule.Monday: {
				DayOfWeek: schedule.Monday,
				From:      schedule.MustTimeOfDay("09:00"),
				To:        schedule.MustTimeOfDay("18:00"),
				BreakFrom: schedule.MustTimeOfDay("12:00"),
				BreakTo:   schedule.MustTimeOfDay("13:00"),
			},
		},
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	require.NoError(t, repo.Create(ctx, sched))

	emp := seedEmployee(t, db, "E001", nil, nil)
	require.NoError(t, postgresql.NewEmployeeRepository(db).UpdateSchedule(ctx, emp.ID, sched.ID))

	got, err := repo.GetByEmployeeID(ctx, emp.ID)
	require.NoError(t, err)
	assert.Equal(t, "Asia/Jakarta", got.Timezone)
	assert.Equal(t, sched.Windows[schedule.Monday], got.Windows[schedule.Monday])

	assert.ErrorIs(t, repo.DeleteWindow(ctx, sched.ID, schedule.Tuesday), pgx.ErrNoRows)
	require.NoError(t, repo.DeleteWindow(ctx, sched.ID, schedule.Monday))

	got, err = repo.GetByID(ctx, sched.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Windows)

	_, err = repo.GetByEmployeeID(ctx, seedEmployee(t, db, "E002", nil, nil).ID)
	assert.ErrorIs(t, err, pgx.ErrNoRows)
}

func TestTimeEventRepository_ListWithMedia(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := postgresql.NewTimeEventRepository(db)
	emp := seedEmployee(t, db, "E001", nil, nil)

	base := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	in := &timesheet.TimeEvent{
		ID: newID(t), EmployeeID: emp.ID, Timestamp: base, Kind: timesheet.EventIn, CreatedAt: base,
		Media: []timesheet.MediaRef{{FileName: "selfie.jpg", MimeType: "image/jpeg", URL: "https://cdn.example.com/selfie.jpg"}},
	}
	out := &timesheet.TimeEvent{
		ID: newID(t), EmployeeID: emp.ID, Timestamp: base.Add(8 * time.Hour), Kind: timesheet.EventOut, CreatedAt: base,
	}
	require.NoError(t, repo.Create(ctx, in))
	require.NoError(t, repo.Create(ctx, out))

	events, err := repo.ListByEmployee(ctx, emp.ID, base, base.Add(24*time.Hour))
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, timesheet.EventIn, events[0].Kind)
	assert.Len(t, events[0].Media, 1)
	assert.Empty(t, events[1].Media)

	latest, err := repo.Latest(ctx, emp.ID)
	require.NoError(t, err)
	assert.Equal(t, out.ID, latest.ID)

	_, err = repo.Latest(ctx, seedEmployee(t, db, "E002", nil, nil).ID)
	assert.ErrorIs(t, err, pgx.ErrNoRows)
}

func TestTimeEventRepository_LockEmployeeHeldUntilCommit(t *testing.T) {
	db := newTestDB(t)
	repo := postgresql.NewTimeEventRepository(db)
	tx := postgresql.NewTransactor(db)

	locked := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- tx.WithinTransaction(context.Background(), func(txCtx context.Context) error {
			if err := repo.LockEmployee(txCtx, "emp-a"); err != nil {
				return err
			}
			close(locked)
			<-release
			return nil
		})
	}()

	select {
	case <-locked:
	case err := <-done:
		t.Fatalf("first lock failed: %v", err)
	}

	lockWithin := func(ctx context.Context, employeeID string) error {
		return tx.WithinTransaction(ctx, func(txCtx context.Context) error {
			return repo.LockEmployee(txCtx, employeeID)
		})
	}

	require.NoError(t, lockWithin(context.Background(), "emp-b"))

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	assert.Error(t, lockWithin(ctx, "emp-a"))

	close(release)
	require.NoError(t, <-done)
	require.NoError(t, lockWithin(context.Background(), "emp-a"))
}

func TestRequestRepository_DecisionsAndStatusFilter(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := postgresql.NewRequestRepository(db)

	leader := seedEmployee(t, db, "L001", nil, nil)
	manager := seedEmployee(t, db, "M001", nil, nil)
	emp := seedEmployee(t, db, "E001", &leader.ID, &manager.ID)

	sick := approval.LeaveSick
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	req := &approval.Request{
		ID:         newID(t),
		EmployeeID: emp.ID,
		Type:       approval.TypeLeave,
		LeaveType:  &sick,
		StartDate:  time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC),
		EndDate:    time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
		Amount:     decimal.NewFromInt(2),
		Reason:     "flu",
		LeaderID:   leader.ID,
		ManagerID:  manager.ID,
		Version:    1,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	require.NoError(t, repo.Create(ctx, req))

	ok, err := repo.SetDecision(ctx, req.ID, approval.ActorLeader, true, now, 1)
	require.NoError(t, err)
	assert.True(t, ok)

	// Stale version and closed gate are both refused.
	ok, err = repo.SetDecision(ctx, req.ID, approval.ActorManager, true, now, 1)
	require.NoError(t, err)
	assert.False(t, ok)
	ok, err = repo.SetDecision(ctx, req.ID, approval.ActorLeader, false, now, 2)
	require.NoError(t, err)
	assert.False(t, ok)

	pending := approval.StatusPending
	list, total, err := repo.List(ctx, approval.ListFilter{Status: &pending, Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, list, 1)
	assert.True(t, list[0].Amount.Equal(decimal.NewFromInt(2)))

	_, total, err = repo.List(ctx, approval.ListFilter{ApproverID: &leader.ID, AwaitingApprover: true, Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 0, total)

	ok, err = repo.SetDecision(ctx, req.ID, approval.ActorManager, false, now, 2)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := repo.GetByID(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, approval.StatusDisapproved, got.Status())
	assert.Equal(t, 3, got.Version)

	overlapping, err := repo.ListOverlapping(ctx, emp.ID, []approval.RequestType{approval.TypeLeave},
		time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Len(t, overlapping, 1)
}

func TestNotificationRepository_MarkAsReadKeepsFirstReadAt(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := postgresql.NewNotificationRepository(db)
	emp := seedEmployee(t, db, "E001", nil, nil)

	n := &notification.Notification{
		RecipientID: emp.ID,
		Type:        notification.TypeRequest,
		Title:       "New request",
		Message:     "A request needs your decision.",
		Data:        map[string]interface{}{"request_type": "LEAVE"},
	}
	require.NoError(t, repo.CreateBatch(ctx, []*notification.Notification{n}))

	first, err := repo.MarkAsRead(ctx, n.ID, emp.ID)
	require.NoError(t, err)
	require.NotNil(t, first.ReadAt)

	second, err := repo.MarkAsRead(ctx, n.ID, emp.ID)
	require.NoError(t, err)
	assert.True(t, first.ReadAt.Equal(*second.ReadAt))
	assert.Equal(t, "LEAVE", second.Data["request_type"])

	push, email, err := repo.Channels(ctx, emp.ID, notification.TypeApproval)
	require.NoError(t, err)
	assert.True(t, push)
	assert.True(t, email)
}
