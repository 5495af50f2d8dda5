package employee

import "errors"

var (
	ErrEmployeeNotFound   = errors.New("employee not found")
	ErrEmployeeCodeExists = errors.New("employee code already exists")
	ErrApproverNotFound   = errors.New("approver not found")
	ErrSelfApproval       = errors.New("employee cannot be their own approver")
	ErrSameApprover       = errors.New("leader and manager must be different employees")
)
