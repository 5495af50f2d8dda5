package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cmlabs-hris/hris-timesheet-go/internal/domain/approval"
	"github.com/cmlabs-hris/hris-timesheet-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-timesheet-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-timesheet-go/internal/domain/notification"
	"github.com/cmlabs-hris/hris-timesheet-go/internal/domain/report"
	"github.com/cmlabs-hris/hris-timesheet-go/internal/domain/schedule"
	"github.com/cmlabs-hris/hris-timesheet-go/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleError_StatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"request not found", approval.ErrRequestNotFound, http.StatusNotFound, "NOT_FOUND"},
		{"wrapped employee not found", fmt.Errorf("submit: %w", employee.ErrEmployeeNotFound), http.StatusNotFound, "NOT_FOUND"},
		{"no schedule", schedule.ErrNoScheduleAssigned, http.StatusNotFound, "NOT_FOUND"},
		{"forbidden gate", approval.ErrForbidden, http.StatusForbidden, "FORBIDDEN"},
		{"foreign notification", notification.ErrUnauthorized, http.StatusForbidden, "FORBIDDEN"},
		{"already decided", approval.ErrAlreadyDecided, http.StatusConflict, "CONFLICT"},
		{"lost race", approval.ErrDecisionConflict, http.StatusConflict, "CONFLICT"},
		{"incomplete day", attendance.ErrIncompleteDay, http.StatusUnprocessableEntity, "INCOMPLETE_DAY"},
		{"bad window", fmt.Errorf("%w: 09:00-08:00", schedule.ErrInvalidWindow), http.StatusUnprocessableEntity, "INVALID_WINDOW"},
		{"leader doubles as manager", employee.ErrSameApprover, http.StatusUnprocessableEntity, "VALIDATION_ERROR"},
		{"bad month", report.ErrInvalidMonth, http.StatusBadRequest, "BAD_REQUEST"},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_SERVER_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			HandleError(w, tt.err)

			assert.Equal(t, tt.status, w.Code)
			var resp Response
			require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
		})
	}
}

func TestHandleError_ValidationDetails(t *testing.T) {
	var errs validator.ValidationErrors
	errs.Add("amount", "amount must be positive")

	w := httptest.NewRecorder()
	HandleError(w, fmt.Errorf("submit: %w", errs))

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	var resp Response
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "amount must be positive", resp.Error.Details["amount"])
}
