package approval

import (
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-timesheet-go/internal/domain/schedule"
	"github.com/cmlabs-hris/hris-timesheet-go/internal/pkg/period"
	"github.com/cmlabs-hris/hris-timesheet-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

const maxOvertimeMinutes = 24 * 60

type SubmitRequest struct {
	EmployeeID string `json:"-"`
	Type       string `json:"type" validate:"required,oneof=LEAVE OVERTIME OFFSET"`
	StartDate  string `json:"start_date" validate:"required,date"`
	EndDate    string `json:"end_date" validate:"omitempty,date"`
	Reason     string `json:"reason" validate:"required,max=1000"`

	// LEAVE
	LeaveType    string           `json:"leave_type,omitempty"`
	NumberOfDays *decimal.Decimal `json:"number_of_days,omitempty"`
	IsWithPay    bool             `json:"is_with_pay"`

	// OVERTIME
	RequestedMinutes *int `json:"requested_minutes,omitempty"`

	// OFFSET
	TimeIn  string `json:"time_in,omitempty" validate:"omitempty,hhmm"`
	TimeOut string `json:"time_out,omitempty" validate:"omitempty,hhmm"`
}

// ToRequest validates the payload per request type and builds an unsaved PENDING request.
func (s *SubmitRequest) ToRequest() (*Request, error) {
	var errs validator.ValidationErrors
	if err := validator.Struct(s); err != nil {
		vErrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return nil, err
		}
		errs = append(errs, vErrs...)
	}
	if len(errs) > 0 {
		return nil, errs
	}

	start, _ := validator.IsValidDate(s.StartDate)
	end := start
	if s.EndDate != "" {
		end, _ = validator.IsValidDate(s.EndDate)
	}
	span, err := period.NewRange(start, end)
	if err != nil {
		errs.Add("end_date", "end_date must not be before start_date")
		return nil, errs
	}

	req := &Request{
		EmployeeID: s.EmployeeID,
		Type:       RequestType(s.Type),
		StartDate:  span.Start,
		EndDate:    span.End,
		Reason:     strings.TrimSpace(s.Reason),
	}

	switch req.Type {
	case TypeLeave:
		lt, ok := ParseLeaveType(s.LeaveType)
		if !ok {
			errs.Add("leave_type", "leave_type must be one of: "+strings.Join(LeaveTypeValues(), ", "))
			break
		}
		req.LeaveType = &lt
		req.IsWithPay = s.IsWithPay
		days := decimal.NewFromInt(int64(span.Len()))
		if s.NumberOfDays != nil {
			switch {
			case !s.NumberOfDays.IsPositive():
				errs.Add("number_of_days", "number_of_days must be positive")
			case s.NumberOfDays.GreaterThan(days):
				errs.Add("number_of_days", "number_of_days cannot exceed the days between start_date and end_date")
			default:
				days = *s.NumberOfDays
			}
		}
		req.Amount = days

	case TypeOvertime:
		if span.Len() != 1 {
			errs.Add("end_date", "overtime covers a single date")
		}
		switch {
		case s.RequestedMinutes == nil:
			errs.Add("requested_minutes", "requested_minutes is required")
		case *s.RequestedMinutes <= 0 || *s.RequestedMinutes > maxOvertimeMinutes:
			errs.Add("requested_minutes", "requested_minutes must be between 1 and 1440")
		default:
			req.Amount = decimal.NewFromInt(int64(*s.RequestedMinutes))
		}

	case TypeOffset:
		if span.Len() != 1 {
			errs.Add("end_date", "offset covers a single date")
		}
		if s.TimeIn == "" || s.TimeOut == "" {
			errs.Add("time_in", "time_in and time_out are required")
			break
		}
		from := schedule.MustTimeOfDay(s.TimeIn)
		to := schedule.MustTimeOfDay(s.TimeOut)
		if to <= from {
			errs.Add("time_out", "time_out must be after time_in")
			break
		}
		req.OffsetFrom = &from
		req.OffsetTo = &to
		req.Amount = decimal.NewFromInt(int64(to - from))
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return req, nil
}

type DecideRequest struct {
	RequestID string `json:"-"`
	ActorID   string `json:"-"`
	Actor     string `json:"actor" validate:"required,oneof=LEADER MANAGER"`
	Approve   *bool  `json:"approve" validate:"required"`
}

func (d *DecideRequest) Validate() error {
	return validator.Struct(d)
}

type RequestFilter struct {
	Type   string `json:"type,omitempty"`
	Status string `json:"status,omitempty"`
	Start  string `json:"start,omitempty"`
	End    string `json:"end,omitempty"`
	Page   int    `json:"page"`
	Limit  int    `json:"limit"`
}

// Validate fills paging defaults like the other list filters.
func (f *RequestFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Type != "" && !validator.IsInSlice(f.Type, RequestTypeValues) {
		errs.Add("type", "type must be one of: "+strings.Join(RequestTypeValues, ", "))
	}
	if f.Status != "" && !validator.IsInSlice(f.Status, []string{string(StatusPending), string(StatusApproved), string(StatusDisapproved)}) {
		errs.Add("status", "status must be one of: PENDING, APPROVED, DISAPPROVED")
	}
	if f.Start != "" {
		if _, ok := validator.IsValidDate(f.Start); !ok {
			errs.Add("start", "start must be YYYY-MM-DD")
		}
	}
	if f.End != "" {
		if _, ok := validator.IsValidDate(f.End); !ok {
			errs.Add("end", "end must be YYYY-MM-DD")
		}
	}
	if f.Page < 0 {
		errs.Add("page", "page must be a positive number")
	}
	if f.Page == 0 {
		f.Page = 1
	}
	if f.Limit < 0 {
		errs.Add("limit", "limit must be a positive number")
	}
	if f.Limit == 0 {
		f.Limit = 20
	}
	if f.Limit > 100 {
		errs.Add("limit", "limit must not exceed 100")
	}

	return errs.OrNil()
}

// ToListFilter converts a validated filter.
func (f RequestFilter) ToListFilter() ListFilter {
	lf := ListFilter{Page: f.Page, Limit: f.Limit}
	if f.Type != "" {
		t := RequestType(f.Type)
		lf.Type = &t
	}
	if f.Status != "" {
		st := Status(f.Status)
		lf.Status = &st
	}
	if d, ok := validator.IsValidDate(f.Start); ok {
		lf.From = &d
	}
	if d, ok := validator.IsValidDate(f.End); ok {
		lf.To = &d
	}
	return lf
}

type RequestResponse struct {
	ID               string  `json:"id"`
	EmployeeID       string  `json:"employee_id"`
	Type             string  `json:"type"`
	TypeName         string  `json:"type_name"`
	LeaveType        *string `json:"leave_type,omitempty"`
	StartDate        string  `json:"start_date"`
	EndDate          string  `json:"end_date"`
	Amount           string  `json:"amount"`
	TimeIn           *string `json:"time_in,omitempty"`
	TimeOut          *string `json:"time_out,omitempty"`
	IsWithPay        bool    `json:"is_with_pay"`
	Reason           string  `json:"reason"`
	LeaderID         string  `json:"leader_id"`
	ManagerID        string  `json:"manager_id"`
	LeaderDecision   *bool   `json:"leader_decision"`
	ManagerDecision  *bool   `json:"manager_decision"`
	LeaderDecidedAt  *string `json:"leader_decided_at,omitempty"`
	ManagerDecidedAt *string `json:"manager_decided_at,omitempty"`
	Status           string  `json:"status"`
	CreatedAt        string  `json:"created_at"`
}

type ListRequestResponse struct {
	TotalCount int64             `json:"total_count"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	TotalPages int               `json:"total_pages"`
	Requests   []RequestResponse `json:"requests"`
}

func ToResponse(r *Request) RequestResponse {
	resp := RequestResponse{
		ID:              r.ID,
		EmployeeID:      r.EmployeeID,
		Type:            string(r.Type),
		TypeName:        r.TypeName(),
		StartDate:       r.StartDate.Format(period.DateLayout),
		EndDate:         r.EndDate.Format(period.DateLayout),
		Amount:          r.Amount.String(),
		IsWithPay:       r.IsWithPay,
		Reason:          r.Reason,
		LeaderID:        r.LeaderID,
		ManagerID:       r.ManagerID,
		LeaderDecision:  r.LeaderDecision,
		ManagerDecision: r.ManagerDecision,
		Status:          string(r.Status()),
		CreatedAt:       r.CreatedAt.Format(time.RFC3339),
	}
	if r.LeaveType != nil {
		lt := string(*r.LeaveType)
		resp.LeaveType = &lt
	}
	if r.OffsetFrom != nil && r.OffsetTo != nil {
		in, out := r.OffsetFrom.String(), r.OffsetTo.String()
		resp.TimeIn, resp.TimeOut = &in, &out
	}
	if r.LeaderDecidedAt != nil {
		s := r.LeaderDecidedAt.Format(time.RFC3339)
		resp.LeaderDecidedAt = &s
	}
	if r.ManagerDecidedAt != nil {
		s := r.ManagerDecidedAt.Format(time.RFC3339)
		resp.ManagerDecidedAt = &s
	}
	return resp
}
