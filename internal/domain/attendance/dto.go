package attendance

import (
	"time"

	"github.com/cmlabs-hris/hris-timesheet-go/internal/pkg/period"
)

type AttendanceDayResponse struct {
	EmployeeID               string  `json:"employee_id"`
	Date                     string  `json:"date"`
	Status                   string  `json:"status"`
	LateMinutes              int     `json:"late_minutes"`
	UndertimeMinutes         *int    `json:"undertime_minutes"`
	OvertimeRequestedMinutes int     `json:"overtime_requested_minutes"`
	OvertimeApprovedMinutes  *int    `json:"overtime_approved_minutes"`
	TrackedMinutes           int     `json:"tracked_minutes"`
	SessionCount             int     `json:"session_count"`
	FirstIn                  *string `json:"first_in,omitempty"`
	LastOut                  *string `json:"last_out,omitempty"`
	Error                    string  `json:"error,omitempty"`
}

func ToResponse(d AttendanceDay, err error) AttendanceDayResponse {
	resp := AttendanceDayResponse{
		EmployeeID:               d.EmployeeID,
		Date:                     d.Date.Format(period.DateLayout),
		Status:                   string(d.Status),
		LateMinutes:              d.LateMinutes,
		UndertimeMinutes:         d.UndertimeMinutes,
		OvertimeRequestedMinutes: d.OvertimeRequestedMinutes,
		OvertimeApprovedMinutes:  d.OvertimeApprovedMinutes,
		TrackedMinutes:           d.TrackedMinutes,
		SessionCount:             d.SessionCount,
	}
	if d.FirstIn != nil {
		s := d.FirstIn.Format(time.RFC3339)
		resp.FirstIn = &s
	}
	if d.LastOut != nil {
		s := d.LastOut.Format(time.RFC3339)
		resp.LastOut = &s
	}
	if err != nil {
		resp.Error = err.Error()
	}
	return resp
}
