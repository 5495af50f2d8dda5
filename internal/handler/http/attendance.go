package http

import (
	"net/http"
	"time"

	"github.com/cmlabs-hris/hris-timesheet-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-timesheet-go/internal/handler/http/response"
	"github.com/cmlabs-hris/hris-timesheet-go/internal/pkg/period"
	"github.com/go-chi/chi/v5"
)

type AttendanceHandler interface {
	ListDays(w http.ResponseWriter, r *http.Request)
	GetDay(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	attendanceService attendance.AttendanceService
}

func NewAttendanceHandler(attendanceService attendance.AttendanceService) AttendanceHandler {
	return &attendanceHandlerImpl{attendanceService: attendanceService}
}

// ListDays handles GET /attendance/days?start=&end=. A day that cannot be computed
// carries its error on its own row.
func (h *attendanceHandlerImpl) ListDays(w http.ResponseWriter, r *http.Request) {
	employeeID, ok := subjectEmployee(w, r)
	if !ok {
		return
	}
	rng, err := rangeQuery(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	days, err := h.attendanceService.ListDays(r.Context(), employeeID, rng)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	items := make([]attendance.AttendanceDayResponse, 0, len(days))
	for _, d := range days {
		items = append(items, attendance.ToResponse(d.Day, d.Err))
	}
	response.Success(w, items)
}

// GetDay handles GET /attendance/days/{date}
func (h *attendanceHandlerImpl) GetDay(w http.ResponseWriter, r *http.Request) {
	employeeID, ok := subjectEmployee(w, r)
	if !ok {
		return
	}
	date, err := time.Parse(period.DateLayout, chi.URLParam(r, "date"))
	if err != nil {
		response.HandleError(w, attendance.ErrInvalidDate)
		return
	}

	day, err := h.attendanceService.GetDay(r.Context(), employeeID, date)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, attendance.ToResponse(day, nil))
}
