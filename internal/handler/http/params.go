package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/cmlabs-hris/hris-timesheet-go/internal/domain/report"
	"github.com/cmlabs-hris/hris-timesheet-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/hris-timesheet-go/internal/handler/http/response"
	"github.com/cmlabs-hris/hris-timesheet-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-timesheet-go/internal/pkg/period"
)

// getIntQueryParam gets an int query parameter with a default value
func getIntQueryParam(r *http.Request, key string, defaultVal int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultVal
	}
	intVal, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return intVal
}

// getBoolQueryParam gets a bool query parameter with a default value
func getBoolQueryParam(r *http.Request, key string, defaultVal bool) bool {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultVal
	}
	return val == "true" || val == "1"
}

// decodeJSON writes a 400 and returns false when the body is not valid JSON.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return false
	}
	return true
}

// rangeQuery reads start/end or month/half from the query string.
func rangeQuery(r *http.Request) (period.Range, error) {
	q := r.URL.Query()
	req := report.SummaryRequest{
		Start: q.Get("start"),
		End:   q.Get("end"),
		Month: q.Get("month"),
		Half:  q.Get("half"),
	}
	return req.Validate()
}

// subjectEmployee is the employee a read endpoint reports on: the caller, or the
// employee_id query parameter when the caller is HR.
func subjectEmployee(w http.ResponseWriter, r *http.Request) (string, bool) {
	self := middleware.EmployeeID(r.Context())
	if self == "" {
		response.Unauthorized(w, "Unauthorized")
		return "", false
	}

	other := r.URL.Query().Get("employee_id")
	if other == "" || other == self {
		return self, true
	}
	if middleware.Role(r.Context()) != jwt.RoleHR {
		response.Forbidden(w, "Only HR may read other employees' records")
		return "", false
	}
	return other, true
}
