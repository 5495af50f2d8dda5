package http

import (
	"net/http"

	"github.com/cmlabs-hris/hris-timesheet-go/internal/domain/timesheet"
	"github.com/cmlabs-hris/hris-timesheet-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/hris-timesheet-go/internal/handler/http/response"
)

type TimesheetHandler interface {
	RecordEvent(w http.ResponseWriter, r *http.Request)
	ListEvents(w http.ResponseWriter, r *http.Request)
	Sessions(w http.ResponseWriter, r *http.Request)
}

type timesheetHandlerImpl struct {
	timesheetService timesheet.TimesheetService
}

func NewTimesheetHandler(timesheetService timesheet.TimesheetService) TimesheetHandler {
	return &timesheetHandlerImpl{timesheetService: timesheetService}
}

// RecordEvent handles POST /timesheet/events for the caller.
func (h *timesheetHandlerImpl) RecordEvent(w http.ResponseWriter, r *http.Request) {
	var req timesheet.RecordEventRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.EmployeeID = middleware.EmployeeID(r.Context())

	ev, err := h.timesheetService.RecordEvent(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Time event recorded", timesheet.ToResponse(ev))
}

// ListEvents handles GET /timesheet/events?start=&end=
func (h *timesheetHandlerImpl) ListEvents(w http.ResponseWriter, r *http.Request) {
	employeeID, ok := subjectEmployee(w, r)
	if !ok {
		return
	}
	rng, err := rangeQuery(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	events, err := h.timesheetService.ListTimeEvents(r.Context(), employeeID, rng)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	items := make([]timesheet.TimeEventResponse, 0, len(events))
	for _, ev := range events {
		items = append(items, timesheet.ToResponse(ev))
	}
	response.Success(w, items)
}

// Sessions handles GET /timesheet/sessions?start=&end=
func (h *timesheetHandlerImpl) Sessions(w http.ResponseWriter, r *http.Request) {
	employeeID, ok := subjectEmployee(w, r)
	if !ok {
		return
	}
	rng, err := rangeQuery(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	days, err := h.timesheetService.Sessions(r.Context(), employeeID, rng)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	items := make([]timesheet.DaySessionsResponse, 0, len(days))
	for _, d := range days {
		items = append(items, timesheet.ToDaySessionsResponse(d))
	}
	response.Success(w, items)
}
