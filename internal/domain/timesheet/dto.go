package timesheet

import (
	"time"

	"github.com/cmlabs-hris/hris-timesheet-go/internal/pkg/validator"
)

type MediaRefRequest struct {
	FileName string `json:"file_name" validate:"required,max=255"`
	MimeType string `json:"mime_type" validate:"required"`
	URL      string `json:"url" validate:"required,url"`
}

type RecordEventRequest struct {
	EmployeeID string            `json:"-"`
	Kind       string            `json:"kind" validate:"required,oneof=IN OUT"`
	Timestamp  string            `json:"timestamp,omitempty"`
	Remarks    string            `json:"remarks" validate:"max=500"`
	Media      []MediaRefRequest `json:"media" validate:"max=5,dive"`
}

// Validate checks the payload and returns the parsed timestamp (now when omitted).
func (r *RecordEventRequest) Validate(now time.Time) (time.Time, error) {
	var errs validator.ValidationErrors
	if err := validator.Struct(r); err != nil {
		vErrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return time.Time{}, err
		}
		errs = append(errs, vErrs...)
	}

	ts := now
	if r.Timestamp != "" {
		parsed, ok := validator.IsValidDateTime(r.Timestamp)
		if !ok {
			errs.Add("timestamp", "timestamp must be RFC3339")
		} else if parsed.After(now.Add(time.Minute)) {
			errs.Add("timestamp", "timestamp cannot be in the future")
		} else {
			ts = parsed
		}
	}
	return ts, errs.OrNil()
}

type MediaRefResponse struct {
	FileName string `json:"file_name"`
	MimeType string `json:"mime_type"`
	URL      string `json:"url"`
}

type TimeEventResponse struct {
	ID         string             `json:"id"`
	EmployeeID string             `json:"employee_id"`
	Timestamp  string             `json:"timestamp"`
	Kind       string             `json:"kind"`
	Remarks    string             `json:"remarks,omitempty"`
	Media      []MediaRefResponse `json:"media,omitempty"`
}

func ToResponse(ev TimeEvent) TimeEventResponse {
	media := make([]MediaRefResponse, 0, len(ev.Media))
	for _, m := range ev.Media {
		media = append(media, MediaRefResponse{FileName: m.FileName, MimeType: m.MimeType, URL: m.URL})
	}
	return TimeEventResponse{
		ID:         ev.ID,
		EmployeeID: ev.EmployeeID,
		Timestamp:  ev.Timestamp.Format(time.RFC3339),
		Kind:       string(ev.Kind),
		Remarks:    ev.Remarks,
		Media:      media,
	}
}

type SessionResponse struct {
	In  TimeEventResponse  `json:"in"`
	Out *TimeEventResponse `json:"out,omitempty"`
}

type DaySessionsResponse struct {
	Date     string            `json:"date"`
	Open     bool              `json:"open"`
	Sessions []SessionResponse `json:"sessions"`
}

func ToDaySessionsResponse(d DaySessions) DaySessionsResponse {
	sessions := make([]SessionResponse, 0, len(d.Sessions))
	for _, s := range d.Sessions {
		resp := SessionResponse{In: ToResponse(s.In)}
		if s.Out != nil {
			out := ToResponse(*s.Out)
			resp.Out = &out
		}
		sessions = append(sessions, resp)
	}
	return DaySessionsResponse{
		Date:     d.Date.Format("2006-01-02"),
		Open:     d.HasOpenSession(),
		Sessions: sessions,
	}
}
