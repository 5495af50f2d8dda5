package attendance

import "time"

type Status string

const (
	StatusPresent       Status = "PRESENT"
	StatusLate          Status = "LATE"
	StatusUndertime     Status = "UNDERTIME"
	StatusLateUndertime Status = "LATE_UNDERTIME"
	StatusIncomplete    Status = "INCOMPLETE"
	StatusNonWorkingDay Status = "NON_WORKING_DAY"
	StatusAbsent        Status = "ABSENT"
	StatusOnLeave       Status = "ON_LEAVE"
)

// AttendanceDay is derived from events and the schedule on every read; it is never stored.
type AttendanceDay struct {
	EmployeeID               string
	Date                     time.Time
	LateMinutes              int
	UndertimeMinutes         *int // nil while a session is still open
	OvertimeRequestedMinutes int
	OvertimeApprovedMinutes  *int // nil until both gates resolve
	TrackedMinutes           int
	SessionCount             int
	FirstIn                  *time.Time
	LastOut                  *time.Time
	Status                   Status
}

// OvertimeClaim is the overtime filed for one date. ApprovedMinutes is meaningful once Decided.
type OvertimeClaim struct {
	RequestedMinutes int
	ApprovedMinutes  int
	Decided          bool
}
