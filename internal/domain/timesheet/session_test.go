package timesheet

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(s string) time.Time {
	t, err := time.Parse("2006-01-02 15:04", s)
	if err != nil {
		panic(err)
	}
	return t
}

func ev(kind EventKind, ts string) TimeEvent {
	return TimeEvent{ID: string(kind) + ts, EmployeeID: "emp-1", Kind: kind, Timestamp: at(ts)}
}

func TestPairSessions_SplitDay(t *testing.T) {
	events := []TimeEvent{
		ev(EventOut, "2024-03-04 18:00"),
		ev(EventIn, "2024-03-04 13:30"),
		ev(EventOut, "2024-03-04 12:00"),
		ev(EventIn, "2024-03-04 09:00"),
	}

	days := PairSessions(events, time.UTC)
	require.Len(t, days, 1)
	require.Len(t, days[0].Sessions, 2)
	assert.Equal(t, at("2024-03-04 09:00"), days[0].Sessions[0].In.Timestamp)
	assert.Equal(t, at("2024-03-04 12:00"), days[0].Sessions[0].Out.Timestamp)
	assert.Equal(t, at("2024-03-04 13:30"), days[0].Sessions[1].In.Timestamp)
	assert.False(t, days[0].HasOpenSession())
}

func TestPairSessions_Overnight(t *testing.T) {
	events := []TimeEvent{
		ev(EventIn, "2024-03-04 22:00"),
		ev(EventOut, "2024-03-05 06:00"),
	}

	days := PairSessions(events, time.UTC)
	require.Len(t, days, 1)
	assert.Equal(t, at("2024-03-04 00:00"), days[0].Date)
	require.NotNil(t, days[0].Sessions[0].Out)
	assert.Equal(t, at("2024-03-05 06:00"), days[0].Sessions[0].Out.Timestamp)
}

func TestPairSessions_OrphansAndOpen(t *testing.T) {
	events := []TimeEvent{
		ev(EventOut, "2024-03-04 08:00"), // nothing open
		ev(EventIn, "2024-03-04 09:00"),
		ev(EventIn, "2024-03-04 10:00"),
		ev(EventOut, "2024-03-04 17:00"),
		ev(EventIn, "2024-03-05 09:00"),
	}

	days := PairSessions(events, time.UTC)
	require.Len(t, days, 2)

	first := days[0]
	require.Len(t, first.Sessions, 2)
	assert.True(t, first.Sessions[0].Open(), "IN without OUT before a second IN stays open")
	require.NotNil(t, first.Sessions[1].Out)
	assert.True(t, first.HasOpenSession())

	assert.True(t, days[1].HasOpenSession())
}

func TestPairSessions_DatesInLocation(t *testing.T) {
	wib := time.FixedZone("WIB", 7*3600)
	events := []TimeEvent{
		ev(EventIn, "2024-03-04 18:00"), // 01:00 on the 5th in WIB
		ev(EventOut, "2024-03-05 02:00"),
	}

	days := PairSessions(events, wib)
	require.Len(t, days, 1)
	assert.Equal(t, at("2024-03-05 00:00"), days[0].Date)
}

func TestFind(t *testing.T) {
	days := PairSessions([]TimeEvent{ev(EventIn, "2024-03-04 09:00"), ev(EventOut, "2024-03-04 17:00")}, time.UTC)
	assert.Len(t, Find(days, at("2024-03-04 00:00")).Sessions, 1)
	assert.Empty(t, Find(days, at("2024-03-05 00:00")).Sessions)
}
