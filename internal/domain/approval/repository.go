package approval

import (
	"context"
	"time"
)

type ListFilter struct {
	EmployeeID *string
	ApproverID *string
	Actor      *Actor
	Type       *RequestType
	Status     *Status
	// AwaitingApprover keeps only requests whose ApproverID gate is still open.
	AwaitingApprover bool
	From             *time.Time
	To               *time.Time
	Page             int
	Limit            int
}

type RequestRepository interface {
	Create(ctx context.Context, r *Request) error
	GetByID(ctx context.Context, id string) (*Request, error)
	// GetForUpdate locks the row for the surrounding transaction.
	GetForUpdate(ctx context.Context, id string) (*Request, error)
	// SetDecision writes actor's gate only while it is NULL and the version still matches.
	// It reports false when no row was updated.
	SetDecision(ctx context.Context, id string, actor Actor, approve bool, decidedAt time.Time, expectedVersion int) (bool, error)
	List(ctx context.Context, filter ListFilter) ([]Request, int64, error)
	// ListOverlapping returns requests of the given types whose span touches [from, to].
	ListOverlapping(ctx context.Context, employeeID string, types []RequestType, from, to time.Time) ([]Request, error)
	// ListStalePending returns pending requests created before createdBefore that were not
	// reminded since remindedBefore.
	ListStalePending(ctx context.Context, createdBefore, remindedBefore time.Time) ([]Request, error)
	MarkReminded(ctx context.Context, id string, at time.Time) error
}

// DecisionEvent is published after a decision commits.
type DecisionEvent struct {
	RequestID  string    `json:"requestId"`
	EmployeeID string    `json:"employeeId"`
	Type       string    `json:"type"`
	Actor      string    `json:"actor"`
	ActorID    string    `json:"actorId"`
	Approved   bool      `json:"approved"`
	Status     string    `json:"status"`
	DecidedAt  time.Time `json:"decidedAt"`
}

type DecisionPublisher interface {
	PublishDecision(ctx context.Context, event DecisionEvent) error
}
