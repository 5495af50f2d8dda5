package report

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/hris-timesheet-go/internal/domain/report"
	"github.com/cmlabs-hris/hris-timesheet-go/internal/pkg/period"
	"github.com/xuri/excelize/v2"
)

const summarySheet = "Summary"

var summaryHeaders = []string{
	"Employee",
	"Employee ID",
	"Leave Days",
	"Absences",
	"Late (min)",
	"Undertime (min)",
	"Tracked (min)",
	"Overtime Approved (min)",
	"Overtime Requested (min)",
	"Incomplete Days",
}

// ExportTeamSummary implements report.ReportService.
func (s *ReportServiceImpl) ExportTeamSummary(ctx context.Context, r period.Range) (*bytes.Buffer, string, error) {
	rows, err := s.BuildTeamSummary(ctx, r)
	if err != nil {
		return nil, "", err
	}

	buf, err := RenderSummaryWorkbook(r, rows)
	if err != nil {
		slog.Error("failed to render summary workbook", "range", r.String(), "error", err)
		return nil, "", report.ErrExportFailed
	}

	filename := fmt.Sprintf("attendance_summary_%s_%s.xlsx", r.Start.Format(period.DateLayout), r.End.Format(period.DateLayout))
	return buf, filename, nil
}

// RenderSummaryWorkbook writes a title row, a header row and one row per summary.
func RenderSummaryWorkbook(r period.Range, rows []report.Summary) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(summarySheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, err
	}

	lastCol, _ := excelize.ColumnNumberToName(len(summaryHeaders))
	if err := f.SetCellValue(summarySheet, "A1", fmt.Sprintf("Attendance summary %s to %s",
		r.Start.Format(period.DateLayout), r.End.Format(period.DateLayout))); err != nil {
		return nil, err
	}
	if err := f.MergeCell(summarySheet, "A1", lastCol+"1"); err != nil {
		return nil, err
	}

	for i, h := range summaryHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 2)
		if err := f.SetCellValue(summarySheet, cell, h); err != nil {
			return nil, err
		}
	}
	if err := f.SetCellStyle(summarySheet, "A2", lastCol+"2", headerStyle); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(summarySheet, "A", "A", 28); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(summarySheet, "B", lastCol, 16); err != nil {
		return nil, err
	}

	for i, s := range rows {
		leaveDays, _ := s.LeaveDays.Round(2).Float64()
		values := []interface{}{
			s.EmployeeName,
			s.EmployeeID,
			leaveDays,
			s.Absences,
			s.LateMinutes,
			s.UndertimeMinutes,
			s.TrackedMinutes,
			s.OvertimeMinutes,
			s.OvertimeRequestedMinutes,
			s.IncompleteDays,
		}
		start, _ := excelize.CoordinatesToCellName(1, i+3)
		if err := f.SetSheetRow(summarySheet, start, &values); err != nil {
			return nil, err
		}
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		return nil, err
	}
	return buf, nil
}
