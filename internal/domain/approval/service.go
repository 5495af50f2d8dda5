package approval

import (
	"context"

	"github.com/cmlabs-hris/hris-timesheet-go/internal/pkg/period"
)

type ApprovalService interface {
	Submit(ctx context.Context, req SubmitRequest) (RequestResponse, error)
	Decide(ctx context.Context, req DecideRequest) (RequestResponse, error)
	// Get is visible to the requester and both assigned approvers.
	Get(ctx context.Context, requestID, viewerID string) (RequestResponse, error)
	ListMine(ctx context.Context, employeeID string, filter RequestFilter) (ListRequestResponse, error)
	ListForApprover(ctx context.Context, approverID string, actor *Actor, pendingOnly bool, filter RequestFilter) (ListRequestResponse, error)
	ListOverlapping(ctx context.Context, employeeID string, types []RequestType, r period.Range) ([]Request, error)
}
