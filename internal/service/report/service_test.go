package report

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-timesheet-go/internal/domain/approval"
	"github.com/cmlabs-hris/hris-timesheet-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-timesheet-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-timesheet-go/internal/domain/schedule"
	"github.com/cmlabs-hris/hris-timesheet-go/internal/pkg/period"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type stubRequests struct {
	byEmployee map[string][]approval.Request
}

func (s stubRequests) ListOverlapping(_ context.Context, employeeID string, _ []approval.RequestType, _ period.Range) ([]approval.Request, error) {
	return s.byEmployee[employeeID], nil
}

type stubAttendance struct {
	late map[string]int
	err  map[string]error
}

func (s stubAttendance) GetDay(context.Context, string, time.Time) (attendance.AttendanceDay, error) {
	return attendance.AttendanceDay{}, errors.New("not used")
}

func (s stubAttendance) ListDays(_ context.Context, employeeID string, r period.Range) ([]attendance.DayResult, error) {
	if err := s.err[employeeID]; err != nil {
		return nil, err
	}
	out := make([]attendance.DayResult, 0, r.Len())
	for range r.Days() {
		zero := 0
		out = append(out, attendance.DayResult{Day: attendance.AttendanceDay{
			EmployeeID:       employeeID,
			Status:           attendance.StatusLate,
			LateMinutes:      s.late[employeeID],
			UndertimeMinutes: &zero,
		}})
	}
	return out, nil
}

type stubEmployees struct {
	employee.EmployeeRepository
	active []employee.Employee
}

func (s stubEmployees) ListActive(context.Context) ([]employee.Employee, error) {
	return s.active, nil
}

func newReportService() *ReportServiceImpl {
	return NewReportService(
		stubRequests{byEmployee: map[string][]approval.Request{
			"a": {leave("l1", approval.LeaveSick, date(2024, 3, 4), date(2024, 3, 5), boolPtr(true), boolPtr(true))},
		}},
		stubAttendance{
			late: map[string]int{"a": 10, "b": 3},
			err:  map[string]error{"c": schedule.ErrNoScheduleAssigned},
		},
		stubEmployees{active: []employee.Employee{
			{ID: "b", FullName: "Budi"},
			{ID: "a", FullName: "Ayu"},
			{ID: "c", FullName: "Citra"},
		}},
		2,
	)
}

func TestBuildHeatMap(t *testing.T) {
	svc := newReportService()

	cells, err := svc.BuildHeatMap(context.Background(), "a", date(2024, 3, 15))
	require.NoError(t, err)
	require.Len(t, cells, 2)
	assert.Equal(t, 12, cells[0].Value)

	cells, err = svc.BuildHeatMap(context.Background(), "b", date(2024, 3, 15))
	require.NoError(t, err)
	assert.Empty(t, cells)
}

func TestBuildTeamSummary_SkipsUnscheduledAndSortsByName(t *testing.T) {
	svc := newReportService()
	r, err := period.NewRange(date(2024, 3, 4), date(2024, 3, 8))
	require.NoError(t, err)

	rows, err := svc.BuildTeamSummary(context.Background(), r)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "Ayu", rows[0].EmployeeName)
	assert.Equal(t, 50, rows[0].LateMinutes)
	assert.Equal(t, "2.00", rows[0].LeaveDays.StringFixed(2))
	assert.Equal(t, "Budi", rows[1].EmployeeName)
	assert.Equal(t, 15, rows[1].LateMinutes)
}

func TestBuildTeamSummary_PropagatesFailures(t *testing.T) {
	svc := newReportService()
	svc.attendance = stubAttendance{err: map[string]error{"b": errors.New("db down")}}

	r := period.Month(date(2024, 3, 1))
	_, err := svc.BuildTeamSummary(context.Background(), r)
	assert.ErrorContains(t, err, "db down")
}

func TestExportTeamSummary(t *testing.T) {
	svc := newReportService()
	r, err := period.NewRange(date(2024, 3, 4), date(2024, 3, 8))
	require.NoError(t, err)

	buf, name, err := svc.ExportTeamSummary(context.Background(), r)
	require.NoError(t, err)
	assert.Equal(t, "attendance_summary_2024-03-04_2024-03-08.xlsx", name)

	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(summarySheet)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, "Attendance summary 2024-03-04 to 2024-03-08", rows[0][0])
	assert.Equal(t, summaryHeaders, rows[1])
	assert.Equal(t, "Ayu", rows[2][0])
	assert.Equal(t, "50", rows[2][4])
}
