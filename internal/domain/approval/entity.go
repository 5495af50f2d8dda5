package approval

import (
	"time"

	"github.com/cmlabs-hris/hris-timesheet-go/internal/domain/schedule"
	"github.com/cmlabs-hris/hris-timesheet-go/internal/pkg/period"
	"github.com/shopspring/decimal"
)

type RequestType string

const (
	TypeLeave    RequestType = "LEAVE"
	TypeOvertime RequestType = "OVERTIME"
	TypeOffset   RequestType = "OFFSET"
)

var RequestTypeValues = []string{string(TypeLeave), string(TypeOvertime), string(TypeOffset)}

type Status string

const (
	StatusPending     Status = "PENDING"
	StatusApproved    Status = "APPROVED"
	StatusDisapproved Status = "DISAPPROVED"
)

// DeriveStatus is the only source of a request's status. Rules are evaluated in order.
func DeriveStatus(leaderDecision, managerDecision *bool) Status {
	if leaderDecision == nil || managerDecision == nil {
		return StatusPending
	}
	if *leaderDecision && *managerDecision {
		return StatusApproved
	}
	return StatusDisapproved
}

// Actor names an approval gate.
type Actor string

const (
	ActorLeader  Actor = "LEADER"
	ActorManager Actor = "MANAGER"
)

func (a Actor) Valid() bool {
	return a == ActorLeader || a == ActorManager
}

type Request struct {
	ID         string
	EmployeeID string
	Type       RequestType
	LeaveType  *LeaveType
	StartDate  time.Time
	EndDate    time.Time
	// Amount is days for LEAVE and minutes for OVERTIME and OFFSET.
	Amount     decimal.Decimal
	OffsetFrom *schedule.TimeOfDay
	OffsetTo   *schedule.TimeOfDay
	IsWithPay  bool
	Reason     string

	LeaderID         string
	ManagerID        string
	LeaderDecision   *bool
	ManagerDecision  *bool
	LeaderDecidedAt  *time.Time
	ManagerDecidedAt *time.Time
	Version          int

	LastRemindedAt *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (r *Request) Status() Status {
	return DeriveStatus(r.LeaderDecision, r.ManagerDecision)
}

func (r *Request) IsTerminal() bool {
	return r.Status() != StatusPending
}

// Gate returns the decision slot of actor.
func (r *Request) Gate(actor Actor) *bool {
	if actor == ActorLeader {
		return r.LeaderDecision
	}
	return r.ManagerDecision
}

// ApproverID returns the employee assigned to actor's gate.
func (r *Request) ApproverID(actor Actor) string {
	if actor == ActorLeader {
		return r.LeaderID
	}
	return r.ManagerID
}

// SetGate records a decision in memory; persistence is the repository's job.
func (r *Request) SetGate(actor Actor, approve bool, at time.Time) {
	v := approve
	ts := at
	if actor == ActorLeader {
		r.LeaderDecision = &v
		r.LeaderDecidedAt = &ts
	} else {
		r.ManagerDecision = &v
		r.ManagerDecidedAt = &ts
	}
	r.Version++
	r.UpdatedAt = at
}

// Span is the inclusive date range the request covers.
func (r *Request) Span() period.Range {
	return period.Range{Start: r.StartDate, End: r.EndDate}
}

// TypeName is the display label used on heat-map cells and notifications.
func (r *Request) TypeName() string {
	if r.Type == TypeLeave && r.LeaveType != nil {
		return r.LeaveType.DisplayName()
	}
	switch r.Type {
	case TypeOvertime:
		return "Overtime"
	case TypeOffset:
		return "Offset"
	default:
		return string(r.Type)
	}
}

// AmountPerDay spreads a leave's day count evenly over its span.
func (r *Request) AmountPerDay() decimal.Decimal {
	days := r.Span().Len()
	if days <= 0 {
		return decimal.Zero
	}
	return r.Amount.Div(decimal.NewFromInt(int64(days)))
}
