package http

import (
	"net/http"
	"strings"

	"github.com/cmlabs-hris/hris-timesheet-go/internal/domain/approval"
	"github.com/cmlabs-hris/hris-timesheet-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/hris-timesheet-go/internal/handler/http/response"
	"github.com/cmlabs-hris/hris-timesheet-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
)

type RequestHandler interface {
	Submit(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	ListMine(w http.ResponseWriter, r *http.Request)
	ListApprovals(w http.ResponseWriter, r *http.Request)
	Decide(w http.ResponseWriter, r *http.Request)
}

type requestHandlerImpl struct {
	approvalService approval.ApprovalService
}

func NewRequestHandler(approvalService approval.ApprovalService) RequestHandler {
	return &requestHandlerImpl{approvalService: approvalService}
}

func requestFilterQuery(r *http.Request) approval.RequestFilter {
	q := r.URL.Query()
	return approval.RequestFilter{
		Type:   strings.ToUpper(q.Get("type")),
		Status: strings.ToUpper(q.Get("status")),
		Start:  q.Get("start"),
		End:    q.Get("end"),
		Page:   getIntQueryParam(r, "page", 1),
		Limit:  getIntQueryParam(r, "limit", 20),
	}
}

func writeRequestList(w http.ResponseWriter, result approval.ListRequestResponse) {
	response.SuccessWithMeta(w, result.Requests, &response.Meta{
		Page:       result.Page,
		Limit:      result.Limit,
		TotalItems: result.TotalCount,
		TotalPages: result.TotalPages,
	})
}

// Submit handles POST /requests on behalf of the caller.
func (h *requestHandlerImpl) Submit(w http.ResponseWriter, r *http.Request) {
	var req approval.SubmitRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.EmployeeID = middleware.EmployeeID(r.Context())

	result, err := h.approvalService.Submit(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Request submitted successfully", result)
}

// Get handles GET /requests/{id}. HR may read any request.
func (h *requestHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	viewerID := middleware.EmployeeID(r.Context())
	if middleware.Role(r.Context()) == jwt.RoleHR {
		viewerID = ""
	}

	result, err := h.approvalService.Get(r.Context(), chi.URLParam(r, "id"), viewerID)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// ListMine handles GET /requests/me
func (h *requestHandlerImpl) ListMine(w http.ResponseWriter, r *http.Request) {
	result, err := h.approvalService.ListMine(r.Context(), middleware.EmployeeID(r.Context()), requestFilterQuery(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	writeRequestList(w, result)
}

// ListApprovals handles GET /requests/approvals?actor=&pending=
func (h *requestHandlerImpl) ListApprovals(w http.ResponseWriter, r *http.Request) {
	var actor *approval.Actor
	if v := r.URL.Query().Get("actor"); v != "" {
		a := approval.Actor(strings.ToUpper(v))
		actor = &a
	}
	pendingOnly := getBoolQueryParam(r, "pending", true)

	result, err := h.approvalService.ListForApprover(r.Context(), middleware.EmployeeID(r.Context()), actor, pendingOnly, requestFilterQuery(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	writeRequestList(w, result)
}

// Decide handles POST /requests/{id}/decision. The caller acts for the gate named in the body.
func (h *requestHandlerImpl) Decide(w http.ResponseWriter, r *http.Request) {
	var req approval.DecideRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.RequestID = chi.URLParam(r, "id")
	req.ActorID = middleware.EmployeeID(r.Context())
	req.Actor = strings.ToUpper(req.Actor)

	result, err := h.approvalService.Decide(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Decision recorded", result)
}
