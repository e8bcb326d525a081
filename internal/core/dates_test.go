package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeekdayAbbrev(t *testing.T) {
	assert.Equal(t, "Wed", WeekdayAbbrev("2025-09-17"))
	assert.Equal(t, "Mon", WeekdayAbbrev("2025-09-15"))
	assert.Equal(t, "Sun", WeekdayAbbrev("2025-09-21"))
}

func TestWeekdayAbbrevMalformed(t *testing.T) {
	for _, bad := range []string{"", "not-a-date", "2025-13-40", "17/09/2025"} {
		assert.Equal(t, WeekdayErrorMarker, WeekdayAbbrev(bad), "input %q", bad)
	}
}

func TestPastNDays(t *testing.T) {
	dates := PastNDays(7)
	require.Len(t, dates, 7)

	assert.Equal(t, Today(), dates[6], "window ends today")
	for i := 1; i < len(dates); i++ {
		prev, err := time.Parse(DateLayout, dates[i-1])
		require.NoError(t, err)
		cur, err := time.Parse(DateLayout, dates[i])
		require.NoError(t, err)
		assert.Equal(t, 24*time.Hour, cur.Sub(prev), "consecutive calendar days, oldest first")
	}
}

func TestTodayLayout(t *testing.T) {
	_, err := time.Parse(DateLayout, Today())
	assert.NoError(t, err)
}
