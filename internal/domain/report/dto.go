package report

import (
	"time"

	"github.com/cmlabs-hris/hris-timesheet-go/internal/pkg/period"
	"github.com/cmlabs-hris/hris-timesheet-go/internal/pkg/validator"
)

const maxRangeDays = 366

type HeatMapRequest struct {
	Month string `json:"month"`
}

// Validate returns the first day of the requested month.
func (r *HeatMapRequest) Validate() (time.Time, error) {
	m, ok := validator.IsValidMonth(r.Month)
	if !ok {
		return time.Time{}, ErrInvalidMonth
	}
	return m, nil
}

// SummaryRequest selects a range either by explicit dates or by month, optionally
// narrowed to a half-month cut-off ("first" = 1-15, "second" = 16-end).
type SummaryRequest struct {
	Start string `json:"start"`
	End   string `json:"end"`
	Month string `json:"month"`
	Half  string `json:"half"`
}

func (r *SummaryRequest) Validate() (period.Range, error) {
	var errs validator.ValidationErrors

	if r.Month != "" {
		m, ok := validator.IsValidMonth(r.Month)
		if !ok {
			errs.Add("month", ErrInvalidMonth.Error())
			return period.Range{}, errs
		}
		switch r.Half {
		case "":
			return period.Month(m), nil
		case "first":
			return period.HalfMonth(m, true), nil
		case "second":
			return period.HalfMonth(m, false), nil
		default:
			errs.Add("half", "half must be one of: first, second")
			return period.Range{}, errs
		}
	}

	if r.Start == "" {
		errs.Add("start", "start is required")
	}
	if r.End == "" {
		errs.Add("end", "end is required")
	}
	if len(errs) > 0 {
		return period.Range{}, errs
	}

	rng, err := period.Parse(r.Start, r.End)
	if err != nil {
		errs.Add("end", ErrInvalidDateRange.Error())
		return period.Range{}, errs
	}
	if rng.Len() > maxRangeDays {
		return period.Range{}, ErrRangeTooLarge
	}
	return rng, nil
}

type HeatMapCellResponse struct {
	Date      string `json:"date"`
	Day       int    `json:"day"`
	Value     int    `json:"value"`
	LeaveName string `json:"leave_name,omitempty"`
	RequestID string `json:"request_id"`
	Status    string `json:"status"`
}

type HeatMapResponse struct {
	EmployeeID string                `json:"employee_id"`
	Month      string                `json:"month"`
	Cells      []HeatMapCellResponse `json:"cells"`
}

type SummaryResponse struct {
	EmployeeID               string `json:"employee_id"`
	EmployeeName             string `json:"employee_name,omitempty"`
	Start                    string `json:"start"`
	End                      string `json:"end"`
	LeaveDays                string `json:"leave_days"`
	Absences                 int    `json:"absences"`
	LateMinutes              int    `json:"late_minutes"`
	UndertimeMinutes         int    `json:"undertime_minutes"`
	TrackedMinutes           int    `json:"tracked_minutes"`
	OvertimeMinutes          int    `json:"overtime_minutes"`
	OvertimeRequestedMinutes int    `json:"overtime_requested_minutes"`
	IncompleteDays           int    `json:"incomplete_days"`
}

type TeamSummaryResponse struct {
	Start       string            `json:"start"`
	End         string            `json:"end"`
	GeneratedAt string            `json:"generated_at"`
	Employees   []SummaryResponse `json:"employees"`
}

func ToHeatMapResponse(employeeID string, month time.Time, cells []HeatMapCell) HeatMapResponse {
	out := make([]HeatMapCellResponse, 0, len(cells))
	for _, c := range cells {
		out = append(out, HeatMapCellResponse{
			Date:      c.Date.Format(period.DateLayout),
			Day:       c.Date.Day(),
			Value:     c.Value,
			LeaveName: c.LeaveName,
			RequestID: c.RequestID,
			Status:    c.Status,
		})
	}
	return HeatMapResponse{
		EmployeeID: employeeID,
		Month:      month.Format("2006-01"),
		Cells:      out,
	}
}

func ToSummaryResponse(s Summary) SummaryResponse {
	return SummaryResponse{
		EmployeeID:               s.EmployeeID,
		EmployeeName:             s.EmployeeName,
		Start:                    s.Range.Start.Format(period.DateLayout),
		End:                      s.Range.End.Format(period.DateLayout),
		LeaveDays:                s.LeaveDays.StringFixed(2),
		Absences:                 s.Absences,
		LateMinutes:              s.LateMinutes,
		UndertimeMinutes:         s.UndertimeMinutes,
		TrackedMinutes:           s.TrackedMinutes,
		OvertimeMinutes:          s.OvertimeMinutes,
		OvertimeRequestedMinutes: s.OvertimeRequestedMinutes,
		IncompleteDays:           s.IncompleteDays,
	}
}

func ToTeamSummaryResponse(r period.Range, rows []Summary, generatedAt time.Time) TeamSummaryResponse {
	out := make([]SummaryResponse, 0, len(rows))
	for _, s := range rows {
		out = append(out, ToSummaryResponse(s))
	}
	return TeamSummaryResponse{
		Start:       r.Start.Format(period.DateLayout),
		End:         r.End.Format(period.DateLayout),
		GeneratedAt: generatedAt.Format(time.RFC3339),
		Employees:   out,
	}
}
