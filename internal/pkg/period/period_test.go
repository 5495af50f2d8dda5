package period

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	t, _ := time.Parse(DateLayout, s)
	return t
}

func TestParse(t *testing.T) {
	r, err := Parse("2024-03-01", "2024-03-05")
	require.NoError(t, err)
	assert.Equal(t, 5, r.Len())
	assert.Len(t, r.Days(), 5)

	_, err = Parse("2024-03-05", "2024-03-01")
	assert.Error(t, err)

	_, err = Parse("03/01/2024", "2024-03-05")
	assert.Error(t, err)
}

func TestMonthAndHalfMonth(t *testing.T) {
	feb := Month(day("2024-02-10"))
	assert.Equal(t, day("2024-02-01"), feb.Start)
	assert.Equal(t, day("2024-02-29"), feb.End)

	first := HalfMonth(day("2024-02-10"), true)
	assert.Equal(t, day("2024-02-15"), first.End)

	second := HalfMonth(day("2024-02-10"), false)
	assert.Equal(t, day("2024-02-16"), second.Start)
	assert.Equal(t, day("2024-02-29"), second.End)
}

func TestIntersect(t *testing.T) {
	a, _ := Parse("2024-01-28", "2024-02-03")
	got, ok := a.Intersect(Month(day("2024-02-01")))
	require.True(t, ok)
	assert.Equal(t, day("2024-02-01"), got.Start)
	assert.Equal(t, day("2024-02-03"), got.End)

	_, ok = a.Intersect(Month(day("2024-04-01")))
	assert.False(t, ok)
}

func TestDateUsesLocation(t *testing.T) {
	jakarta := time.FixedZone("WIB", 7*3600)
	ts := time.Date(2024, 3, 1, 20, 0, 0, 0, time.UTC) // 03:00 next day in WIB
	assert.Equal(t, day("2024-03-02"), Date(ts, jakarta))
	assert.Equal(t, day("2024-03-01"), Date(ts, time.UTC))
}
