package schedule

import (
	"time"

	"github.com/cmlabs-hris/hris-timesheet-go/internal/pkg/validator"
)

type WorkWindowRequest struct {
	DayOfWeek int    `json:"day_of_week" validate:"required,gte=1,lte=7"`
	From      string `json:"from" validate:"required,hhmm"`
	To        string `json:"to" validate:"required,hhmm"`
	BreakFrom string `json:"break_from" validate:"required,hhmm"`
	BreakTo   string `json:"break_to" validate:"required,hhmm"`
}

func (r *WorkWindowRequest) Validate() error {
	return validator.Struct(r)
}

// ToWindow parses the request. Ordering is checked by WorkWindow.Validate.
func (r *WorkWindowRequest) ToWindow() (WorkWindow, error) {
	if err := r.Validate(); err != nil {
		return WorkWindow{}, err
	}
	w := WorkWindow{
		DayOfWeek: DayOfWeek(r.DayOfWeek),
		From:      MustTimeOfDay(r.From),
		To:        MustTimeOfDay(r.To),
		BreakFrom: MustTimeOfDay(r.BreakFrom),
		BreakTo:   MustTimeOfDay(r.BreakTo),
	}
	return w, w.Validate()
}

type CreateScheduleRequest struct {
	Name     string              `json:"name" validate:"required,max=100"`
	Timezone string              `json:"timezone"`
	Windows  []WorkWindowRequest `json:"windows" validate:"dive"`
}

func (r *CreateScheduleRequest) Validate() error {
	var errs validator.ValidationErrors
	if err := validator.Struct(r); err != nil {
		if vErrs, ok := err.(validator.ValidationErrors); ok {
			errs = append(errs, vErrs...)
		} else {
			return err
		}
	}
	if r.Timezone == "" {
		r.Timezone = "UTC"
	}
	if _, err := time.LoadLocation(r.Timezone); err != nil {
		errs.Add("timezone", "timezone must be a valid IANA zone name")
	}
	seen := make(map[int]bool)
	for _, w := range r.Windows {
		if seen[w.DayOfWeek] {
			errs.Add("windows", "day_of_week must be unique per schedule")
			break
		}
		seen[w.DayOfWeek] = true
	}
	return errs.OrNil()
}

type AssignScheduleRequest struct {
	ScheduleID string `json:"schedule_id" validate:"required"`
}

type WorkWindowResponse struct {
	DayOfWeek int    `json:"day_of_week"`
	Weekday   string `json:"weekday"`
	From      string `json:"from"`
	To        string `json:"to"`
	BreakFrom string `json:"break_from"`
	BreakTo   string `json:"break_to"`
}

type ScheduleResponse struct {
	ID        string               `json:"id"`
	Name      string               `json:"name"`
	Timezone  string               `json:"timezone"`
	Windows   []WorkWindowResponse `json:"windows"`
	CreatedAt string               `json:"created_at"`
	UpdatedAt string               `json:"updated_at"`
}

func ToResponse(s *Schedule) ScheduleResponse {
	windows := make([]WorkWindowResponse, 0, len(s.Windows))
	for _, w := range s.OrderedWindows() {
		windows = append(windows, WorkWindowResponse{
			DayOfWeek: int(w.DayOfWeek),
			Weekday:   w.DayOfWeek.Weekday().String(),
			From:      w.From.String(),
			To:        w.To.String(),
			BreakFrom: w.BreakFrom.String(),
			BreakTo:   w.BreakTo.String(),
		})
	}
	return ScheduleResponse{
		ID:        s.ID,
		Name:      s.Name,
		Timezone:  s.Timezone,
		Windows:   windows,
		CreatedAt: s.CreatedAt.Format(time.RFC3339),
		UpdatedAt: s.UpdatedAt.Format(time.RFC3339),
	}
}
