package report

import (
	"errors"
	"log/slog"
	"sort"

	"github.com/cmlabs-hris/hris-timesheet-go/internal/domain/approval"
	"github.com/cmlabs-hris/hris-timesheet-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-timesheet-go/internal/domain/report"
	"github.com/cmlabs-hris/hris-timesheet-go/internal/pkg/period"
	"github.com/shopspring/decimal"
)

// HeatMapCells projects leave requests onto the days of month. Non-leave requests are ignored.
// Cells are ordered by date, then by request ID.
func HeatMapCells(requests []approval.Request, month period.Range) []report.HeatMapCell {
	var cells []report.HeatMapCell
	for i := range requests {
		req := &requests[i]
		if req.Type != approval.TypeLeave {
			continue
		}
		overlap, ok := req.Span().Intersect(month)
		if !ok {
			continue
		}

		value, ok := cellValue(req)
		if !ok {
			slog.Warn("leave has no heat-map code, skipping",
				"request_id", req.ID,
				"leave_type", req.TypeName())
			continue
		}

		// Decided cells carry the type in their value band; only the sentinel needs a name.
		var name string
		if !req.IsTerminal() {
			name = req.TypeName()
		}
		for _, day := range overlap.Days() {
			cells = append(cells, report.HeatMapCell{
				Date:      day,
				Value:     value,
				LeaveName: name,
				RequestID: req.ID,
				Status:    string(req.Status()),
			})
		}
	}

	sort.SliceStable(cells, func(i, j int) bool {
		if !cells[i].Date.Equal(cells[j].Date) {
			return cells[i].Date.Before(cells[j].Date)
		}
		return cells[i].RequestID < cells[j].RequestID
	})
	return cells
}

// cellValue is 42 while any gate is open, otherwise the leave type's band.
func cellValue(req *approval.Request) (int, bool) {
	if !req.IsTerminal() {
		return report.PendingCellValue, true
	}
	if req.LeaveType == nil {
		return 0, false
	}
	return req.LeaveType.HeatMapCode()
}

// Summarize totals computed days and approved leave over r.
func Summarize(employeeID string, r period.Range, days []attendance.DayResult, leaves []approval.Request) report.Summary {
	s := report.Summary{
		EmployeeID: employeeID,
		Range:      r,
		LeaveDays:  decimal.Zero,
	}

	for _, res := range days {
		d := res.Day
		if res.Err != nil && !errors.Is(res.Err, attendance.ErrIncompleteDay) {
			continue
		}
		if d.Status == attendance.StatusIncomplete {
			s.IncompleteDays++
		}
		if d.Status == attendance.StatusAbsent {
			s.Absences++
		}
		s.LateMinutes += d.LateMinutes
		if d.UndertimeMinutes != nil {
			s.UndertimeMinutes += *d.UndertimeMinutes
		}
		s.TrackedMinutes += d.TrackedMinutes
		s.OvertimeRequestedMinutes += d.OvertimeRequestedMinutes
		if d.OvertimeApprovedMinutes != nil {
			s.OvertimeMinutes += *d.OvertimeApprovedMinutes
		}
	}

	for i := range leaves {
		req := &leaves[i]
		if req.Type != approval.TypeLeave || req.Status() != approval.StatusApproved {
			continue
		}
		overlap, ok := req.Span().Intersect(r)
		if !ok {
			continue
		}
		s.LeaveDays = s.LeaveDays.Add(req.AmountPerDay().Mul(decimal.NewFromInt(int64(overlap.Len()))))
	}

	return s
}
