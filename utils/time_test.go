package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseClock(t *testing.T) {
	date := time.Date(2026, 8, 24, 15, 30, 45, 0, time.UTC)

	parsed, err := ParseClock("09:05", date)
	require.NoError(t, err)
	require.Equal(t, time.Date(2026, 8, 24, 9, 5, 0, 0, time.UTC), parsed)

	// 空串返回原日期
	parsed, err = ParseClock("", date)
	require.NoError(t, err)
	require.Equal(t, date, parsed)

	_, err = ParseClock("25:00", date)
	require.Error(t, err)

	_, err = ParseClock("9am", date)
	require.Error(t, err)
}

func TestClockMinutes(t *testing.T) {
	m, err := ClockMinutes("00:00")
	require.NoError(t, err)
	require.Equal(t, 0, m)

	m, err = ClockMinutes("09:30")
	require.NoError(t, err)
	require.Equal(t, 570, m)

	m, err = ClockMinutes("23:59")
	require.NoError(t, err)
	require.Equal(t, 1439, m)

	_, err = ClockMinutes("24:00")
	require.Error(t, err)
}

func TestDayKey(t *testing.T) {
	require.Equal(t, "2026-08-24", DayKey(time.Date(2026, 8, 24, 23, 59, 59, 0, time.UTC)))
	require.Equal(t, "2026-08-25", DayKey(time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC)))
}

func TestNextMidnight(t *testing.T) {
	noon := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)
	require.Equal(t, time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC), NextMidnight(noon))

	// 月末跨月
	endOfMonth := time.Date(2026, 8, 31, 23, 0, 0, 0, time.UTC)
	require.Equal(t, time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC), NextMidnight(endOfMonth))
}

func TestWeekStart(t *testing.T) {
	monday := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)

	// 2026-08-24 是周一，当周任何一天都回到它
	require.Equal(t, monday, WeekStart(monday))
	require.Equal(t, monday, WeekStart(time.Date(2026, 8, 26, 18, 30, 0, 0, time.UTC)))
	require.Equal(t, monday, WeekStart(time.Date(2026, 8, 30, 23, 59, 59, 0, time.UTC)))

	// 周日属于上一周开始的那一周
	require.Equal(t,
		time.Date(2026, 8, 17, 0, 0, 0, 0, time.UTC),
		WeekStart(time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)),
	)
}

func TestWeekdayName(t *testing.T) {
	require.Equal(t, "monday", WeekdayName(time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)))
	require.Equal(t, "sunday", WeekdayName(time.Date(2026, 8, 23, 0, 0, 0, 0, time.UTC)))
	require.Equal(t, "saturday", WeekdayName(time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)))
}

func TestIsValidWeekday(t *testing.T) {
	for _, day := range []string{"sunday", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday"} {
		require.True(t, IsValidWeekday(day))
	}
	require.False(t, IsValidWeekday("Monday"))
	require.False(t, IsValidWeekday("mon"))
	require.False(t, IsValidWeekday(""))
}

func TestFormatParseID(t *testing.T) {
	require.Equal(t, "123456789012345678", FormatID(123456789012345678))

	id, err := ParseID("123456789012345678")
	require.NoError(t, err)
	require.Equal(t, int64(123456789012345678), id)

	_, err = ParseID("not-a-number")
	require.Error(t, err)
}
