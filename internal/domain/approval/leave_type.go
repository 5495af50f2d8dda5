package approval

// LeaveType is closed; values outside this set are rejected on submit.
type LeaveType string

const (
	LeaveUndertime   LeaveType = "UNDERTIME"
	LeaveSick        LeaveType = "SICK_LEAVE"
	LeaveVacation    LeaveType = "VACATION_LEAVE"
	LeaveEmergency   LeaveType = "EMERGENCY_LEAVE"
	LeaveBereavement LeaveType = "BEREAVEMENT_LEAVE"
	LeaveMaternity   LeaveType = "MATERNITY_LEAVE"
)

var leaveTypes = []LeaveType{
	LeaveUndertime,
	LeaveSick,
	LeaveVacation,
	LeaveEmergency,
	LeaveBereavement,
	LeaveMaternity,
}

func LeaveTypeValues() []string {
	out := make([]string, len(leaveTypes))
	for i, lt := range leaveTypes {
		out[i] = string(lt)
	}
	return out
}

func ParseLeaveType(s string) (LeaveType, bool) {
	for _, lt := range leaveTypes {
		if string(lt) == s {
			return lt, true
		}
	}
	return "", false
}

func (lt LeaveType) DisplayName() string {
	switch lt {
	case LeaveUndertime:
		return "Undertime"
	case LeaveSick:
		return "Sick Leave"
	case LeaveVacation:
		return "Vacation Leave"
	case LeaveEmergency:
		return "Emergency Leave"
	case LeaveBereavement:
		return "Bereavement Leave"
	case LeaveMaternity:
		return "Maternity Leave"
	}
	return string(lt)
}

// HeatMapCode is the calendar colour band of a decided leave.
func (lt LeaveType) HeatMapCode() (int, bool) {
	switch lt {
	case LeaveUndertime:
		return 6, true
	case LeaveSick:
		return 12, true
	case LeaveVacation:
		return 18, true
	case LeaveEmergency:
		return 24, true
	case LeaveBereavement:
		return 30, true
	case LeaveMaternity:
		return 36, true
	}
	return 0, false
}
