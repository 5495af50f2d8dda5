package schedule

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func officeWindow(day DayOfWeek) WorkWindow {
	return WorkWindow{
		DayOfWeek: day,
		From:      MustTimeOfDay("09:00"),
		To:        MustTimeOfDay("18:00"),
		BreakFrom: MustTimeOfDay("12:00"),
		BreakTo:   MustTimeOfDay("13:00"),
	}
}

func TestWorkWindowValidate(t *testing.T) {
	tests := []struct {
		name    string
		window  WorkWindow
		wantErr bool
	}{
		{"regular office hours", officeWindow(1), false},
		{"zero length break", WorkWindow{DayOfWeek: 2, From: 480, BreakFrom: 720, BreakTo: 720, To: 1020}, false},
		{"break starts at from", WorkWindow{DayOfWeek: 2, From: 480, BreakFrom: 480, BreakTo: 540, To: 1020}, true},
		{"break ends at to", WorkWindow{DayOfWeek: 2, From: 480, BreakFrom: 900, BreakTo: 1020, To: 1020}, true},
		{"break reversed", WorkWindow{DayOfWeek: 2, From: 480, BreakFrom: 780, BreakTo: 720, To: 1020}, true},
		{"to before from", WorkWindow{DayOfWeek: 2, From: 1020, BreakFrom: 720, BreakTo: 780, To: 480}, true},
		{"bad weekday", WorkWindow{DayOfWeek: 8, From: 480, BreakFrom: 720, BreakTo: 780, To: 1020}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.window.Validate()
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrInvalidWindow))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestWindowFor(t *testing.T) {
	s := &Schedule{
		Windows: map[DayOfWeek]WorkWindow{
			1: officeWindow(1),
			5: officeWindow(5),
		},
	}

	monday := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	w, ok := s.WindowFor(monday)
	require.True(t, ok)
	assert.Equal(t, DayOfWeek(1), w.DayOfWeek)

	_, ok = s.WindowFor(monday.AddDate(0, 0, 1))
	assert.False(t, ok, "tuesday has no window")

	sunday := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	_, ok = s.WindowFor(sunday)
	assert.False(t, ok)

	var none *Schedule
	_, ok = none.WindowFor(monday)
	assert.False(t, ok)
}

func TestDayOfWeekMapping(t *testing.T) {
	assert.Equal(t, DayOfWeek(7), DayOfWeekFrom(time.Sunday))
	assert.Equal(t, DayOfWeek(1), DayOfWeekFrom(time.Monday))
	assert.Equal(t, time.Sunday, DayOfWeek(7).Weekday())
	assert.Equal(t, time.Saturday, DayOfWeek(6).Weekday())
}

func TestTimeOfDay(t *testing.T) {
	tod, err := ParseTimeOfDay("09:15")
	require.NoError(t, err)
	assert.Equal(t, 555, tod.Minutes())
	assert.Equal(t, "09:15", tod.String())

	_, err = ParseTimeOfDay("9.15")
	assert.Error(t, err)
}

func TestLocationFallback(t *testing.T) {
	assert.Equal(t, time.UTC, (&Schedule{Timezone: "Not/AZone"}).Location())
	assert.Equal(t, "Asia/Jakarta", (&Schedule{Timezone: "Asia/Jakarta"}).Location().String())
}

func TestWorkWindowRequestToWindow(t *testing.T) {
	req := WorkWindowRequest{DayOfWeek: 3, From: "09:00", To: "18:00", BreakFrom: "13:00", BreakTo: "12:00"}
	_, err := req.ToWindow()
	assert.ErrorIs(t, err, ErrInvalidWindow)

	req.BreakFrom, req.BreakTo = "12:00", "13:00"
	w, err := req.ToWindow()
	require.NoError(t, err)
	assert.Equal(t, 540, w.ShiftMinutes())
}
