package approval

import "errors"

var (
	ErrRequestNotFound  = errors.New("request not found")
	ErrForbidden        = errors.New("actor is not the assigned approver for this gate")
	ErrAlreadyDecided   = errors.New("approval gate already decided")
	ErrDecisionConflict = errors.New("request was modified concurrently, retry the decision")
	ErrUnknownLeaveType = errors.New("unknown leave type")
	ErrInvalidActor     = errors.New("actor must be LEADER or MANAGER")
	ErrApproverMissing  = errors.New("request has no leader or manager assigned")
	ErrNotRequestParty  = errors.New("not allowed to view this request")
)
