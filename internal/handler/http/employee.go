package http

import (
	"net/http"

	"github.com/cmlabs-hris/hris-timesheet-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-timesheet-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/hris-timesheet-go/internal/handler/http/response"
	"github.com/cmlabs-hris/hris-timesheet-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
)

type EmployeeHandler interface {
	Me(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Create(w http.ResponseWriter, r *http.Request)
	UpdateApprovers(w http.ResponseWriter, r *http.Request)
}

type employeeHandlerImpl struct {
	employeeService employee.EmployeeService
}

func NewEmployeeHandler(employeeService employee.EmployeeService) EmployeeHandler {
	return &employeeHandlerImpl{employeeService: employeeService}
}

// Me handles GET /employees/me
func (h *employeeHandlerImpl) Me(w http.ResponseWriter, r *http.Request) {
	emp, err := h.employeeService.Get(r.Context(), middleware.EmployeeID(r.Context()))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, emp)
}

// Get handles GET /employees/{id}
func (h *employeeHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id != middleware.EmployeeID(r.Context()) && middleware.Role(r.Context()) == jwt.RoleEmployee {
		response.Forbidden(w, "Not allowed to read this employee")
		return
	}

	emp, err := h.employeeService.Get(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, emp)
}

// List handles GET /employees
func (h *employeeHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	employees, err := h.employeeService.List(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, employees)
}

// Create handles POST /employees
func (h *employeeHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	var req employee.CreateEmployeeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	emp, err := h.employeeService.Create(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Employee created successfully", emp)
}

// UpdateApprovers handles PUT /employees/{id}/approvers
func (h *employeeHandlerImpl) UpdateApprovers(w http.ResponseWriter, r *http.Request) {
	var req employee.UpdateApproversRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.employeeService.UpdateApprovers(r.Context(), chi.URLParam(r, "id"), req); err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Approvers updated", nil)
}
