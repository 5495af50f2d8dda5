package report

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/cmlabs-hris/hris-timesheet-go/internal/domain/approval"
	"github.com/cmlabs-hris/hris-timesheet-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-timesheet-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-timesheet-go/internal/domain/report"
	"github.com/cmlabs-hris/hris-timesheet-go/internal/domain/schedule"
	"github.com/cmlabs-hris/hris-timesheet-go/internal/pkg/period"
	"golang.org/x/sync/errgroup"
)

// RequestLister is the part of the approval service reports read from.
type RequestLister interface {
	ListOverlapping(ctx context.Context, employeeID string, types []approval.RequestType, r period.Range) ([]approval.Request, error)
}

type ReportServiceImpl struct {
	requests     RequestLister
	attendance   attendance.AttendanceService
	employeeRepo employee.EmployeeRepository
	concurrency  int
	now          func() time.Time
}

func NewReportService(
	requests RequestLister,
	attendanceService attendance.AttendanceService,
	employeeRepo employee.EmployeeRepository,
	concurrency int,
) *ReportServiceImpl {
	if concurrency <= 0 {
		concurrency = 4
	}
	return &ReportServiceImpl{
		requests:     requests,
		attendance:   attendanceService,
		employeeRepo: employeeRepo,
		concurrency:  concurrency,
		now:          time.Now,
	}
}

// BuildHeatMap implements report.ReportService.
func (s *ReportServiceImpl) BuildHeatMap(ctx context.Context, employeeID string, month time.Time) ([]report.HeatMapCell, error) {
	m := period.Month(month)
	leaves, err := s.requests.ListOverlapping(ctx, employeeID, []approval.RequestType{approval.TypeLeave}, m)
	if err != nil {
		return nil, fmt.Errorf("failed to load leave requests: %w", err)
	}
	return HeatMapCells(leaves, m), nil
}

// BuildSummary implements report.ReportService.
func (s *ReportServiceImpl) BuildSummary(ctx context.Context, employeeID string, r period.Range) (report.Summary, error) {
	days, err := s.attendance.ListDays(ctx, employeeID, r)
	if err != nil {
		return report.Summary{}, err
	}

	leaves, err := s.requests.ListOverlapping(ctx, employeeID, []approval.RequestType{approval.TypeLeave}, r)
	if err != nil {
		return report.Summary{}, fmt.Errorf("failed to load leave requests: %w", err)
	}

	return Summarize(employeeID, r, days, leaves), nil
}

// BuildTeamSummary implements report.ReportService. Employees without a schedule are skipped.
func (s *ReportServiceImpl) BuildTeamSummary(ctx context.Context, r period.Range) ([]report.Summary, error) {
	emps, err := s.employeeRepo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}

	rows := make([]*report.Summary, len(emps))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i, emp := range emps {
		g.Go(func() error {
			sum, err := s.BuildSummary(gctx, emp.ID, r)
			if errors.Is(err, schedule.ErrNoScheduleAssigned) {
				slog.Warn("skipping employee without schedule", "employee_id", emp.ID)
				return nil
			}
			if err != nil {
				return fmt.Errorf("summary for employee %s: %w", emp.ID, err)
			}
			sum.EmployeeName = emp.FullName
			rows[i] = &sum
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]report.Summary, 0, len(rows))
	for _, row := range rows {
		if row != nil {
			out = append(out, *row)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].EmployeeName < out[j].EmployeeName })
	return out, nil
}
