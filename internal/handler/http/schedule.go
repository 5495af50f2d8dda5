package http

import (
	"net/http"
	"strconv"

	"github.com/cmlabs-hris/hris-timesheet-go/internal/domain/schedule"
	"github.com/cmlabs-hris/hris-timesheet-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/hris-timesheet-go/internal/handler/http/response"
	"github.com/cmlabs-hris/hris-timesheet-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-timesheet-go/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
)

type ScheduleHandler interface {
	GetMine(w http.ResponseWriter, r *http.Request)
	GetForEmployee(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Create(w http.ResponseWriter, r *http.Request)
	SetWindow(w http.ResponseWriter, r *http.Request)
	RemoveWindow(w http.ResponseWriter, r *http.Request)
	Assign(w http.ResponseWriter, r *http.Request)
}

type scheduleHandlerImpl struct {
	scheduleService schedule.ScheduleService
}

func NewScheduleHandler(scheduleService schedule.ScheduleService) ScheduleHandler {
	return &scheduleHandlerImpl{scheduleService: scheduleService}
}

// GetMine handles GET /schedules/me
func (h *scheduleHandlerImpl) GetMine(w http.ResponseWriter, r *http.Request) {
	sched, err := h.scheduleService.GetSchedule(r.Context(), middleware.EmployeeID(r.Context()))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, schedule.ToResponse(sched))
}

// GetForEmployee handles GET /employees/{id}/schedule. Employees may only read their own.
func (h *scheduleHandlerImpl) GetForEmployee(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "id")
	role := middleware.Role(r.Context())
	if employeeID != middleware.EmployeeID(r.Context()) && role != jwt.RoleHR && role != jwt.RoleManager {
		response.Forbidden(w, "Not allowed to read this schedule")
		return
	}

	sched, err := h.scheduleService.GetSchedule(r.Context(), employeeID)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, schedule.ToResponse(sched))
}

// Get handles GET /schedules/{id}
func (h *scheduleHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	sched, err := h.scheduleService.GetScheduleByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, schedule.ToResponse(sched))
}

// Create handles POST /schedules
func (h *scheduleHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	var req schedule.CreateScheduleRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	sched, err := h.scheduleService.CreateSchedule(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Schedule created successfully", schedule.ToResponse(sched))
}

// SetWindow handles PUT /schedules/{id}/windows
func (h *scheduleHandlerImpl) SetWindow(w http.ResponseWriter, r *http.Request) {
	var req schedule.WorkWindowRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	sched, err := h.scheduleService.SetWindow(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Work window saved", schedule.ToResponse(sched))
}

// RemoveWindow handles DELETE /schedules/{id}/windows/{weekday}
func (h *scheduleHandlerImpl) RemoveWindow(w http.ResponseWriter, r *http.Request) {
	day, err := strconv.Atoi(chi.URLParam(r, "weekday"))
	if err != nil {
		response.BadRequest(w, "weekday must be a number from 1 (Monday) to 7 (Sunday)", nil)
		return
	}

	sched, err := h.scheduleService.RemoveWindow(r.Context(), chi.URLParam(r, "id"), schedule.DayOfWeek(day))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Work window removed", schedule.ToResponse(sched))
}

// Assign handles PUT /employees/{id}/schedule
func (h *scheduleHandlerImpl) Assign(w http.ResponseWriter, r *http.Request) {
	var req schedule.AssignScheduleRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := validator.Struct(&req); err != nil {
		response.HandleError(w, err)
		return
	}

	if err := h.scheduleService.AssignSchedule(r.Context(), chi.URLParam(r, "id"), req.ScheduleID); err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Schedule assigned successfully", nil)
}
