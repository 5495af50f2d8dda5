package report

import (
	"time"

	"github.com/cmlabs-hris/hris-timesheet-go/internal/pkg/period"
	"github.com/shopspring/decimal"
)

// PendingCellValue marks a leave that still has an open approval gate.
const PendingCellValue = 42

// HeatMapCell is one calendar day covered by a leave request. LeaveName is set on pending cells only.
type HeatMapCell struct {
	Date      time.Time
	Value     int
	LeaveName string
	RequestID string
	Status    string
}

// Summary totals one employee's attendance over a range.
type Summary struct {
	EmployeeID   string
	EmployeeName string
	Range        period.Range

	LeaveDays decimal.Decimal
	Absences  int

	LateMinutes              int
	UndertimeMinutes         int
	TrackedMinutes           int
	OvertimeMinutes          int // approved only
	OvertimeRequestedMinutes int
	IncompleteDays           int
}
