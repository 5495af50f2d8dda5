package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/hris-timesheet-go/internal/domain/approval"
	"github.com/cmlabs-hris/hris-timesheet-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-timesheet-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-timesheet-go/internal/domain/notification"
	"github.com/cmlabs-hris/hris-timesheet-go/internal/domain/report"
	"github.com/cmlabs-hris/hris-timesheet-go/internal/domain/schedule"
	"github.com/cmlabs-hris/hris-timesheet-go/internal/domain/timesheet"
	"github.com/cmlabs-hris/hris-timesheet-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Not found
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, employee.ErrApproverNotFound):
		NotFound(w, "Approver not found")
	case errors.Is(err, schedule.ErrScheduleNotFound):
		NotFound(w, "Schedule not found")
	case errors.Is(err, schedule.ErrNoScheduleAssigned):
		NotFound(w, "Employee has no schedule assigned")
	case errors.Is(err, schedule.ErrWindowNotFound):
		NotFound(w, "Work window not found")
	case errors.Is(err, approval.ErrRequestNotFound):
		NotFound(w, "Request not found")
	case errors.Is(err, notification.ErrNotificationNotFound):
		NotFound(w, "Notification not found")

	// Forbidden
	case errors.Is(err, approval.ErrForbidden):
		Forbidden(w, err.Error())
	case errors.Is(err, approval.ErrNotRequestParty):
		Forbidden(w, err.Error())
	case errors.Is(err, notification.ErrUnauthorized):
		Forbidden(w, err.Error())

	// Conflicts
	case errors.Is(err, approval.ErrAlreadyDecided):
		Conflict(w, "Approval gate already decided")
	case errors.Is(err, approval.ErrDecisionConflict):
		Conflict(w, err.Error())
	case errors.Is(err, employee.ErrEmployeeCodeExists):
		Conflict(w, "Employee code already exists")

	// Rule violations
	case errors.Is(err, attendance.ErrIncompleteDay):
		UnprocessableEntity(w, "INCOMPLETE_DAY", err.Error())
	case errors.Is(err, schedule.ErrInvalidWindow):
		UnprocessableEntity(w, "INVALID_WINDOW", err.Error())
	case errors.Is(err, schedule.ErrInvalidTimezone),
		errors.Is(err, timesheet.ErrAlreadyClockedIn),
		errors.Is(err, timesheet.ErrNotClockedIn),
		errors.Is(err, timesheet.ErrOutOfOrder),
		errors.Is(err, approval.ErrUnknownLeaveType),
		errors.Is(err, approval.ErrInvalidActor),
		errors.Is(err, approval.ErrApproverMissing),
		errors.Is(err, employee.ErrSelfApproval),
		errors.Is(err, employee.ErrSameApprover),
		errors.Is(err, notification.ErrInvalidNotificationType):
		UnprocessableEntity(w, "VALIDATION_ERROR", err.Error())

	// Bad query parameters
	case errors.Is(err, attendance.ErrInvalidDate),
		errors.Is(err, report.ErrInvalidMonth),
		errors.Is(err, report.ErrInvalidDateRange),
		errors.Is(err, report.ErrRangeTooLarge):
		BadRequest(w, err.Error(), nil)

	default:
		slog.Error("unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
