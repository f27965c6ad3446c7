package planner

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"GymTree/internal/model"
	"GymTree/pkg/logger"
)

func init() {
	logger.Init()
}

// 2026-08-24 是周一
func monday(clock string) time.Time {
	t, err := time.Parse("2006-01-02 15:04:05", "2026-08-24 "+clock)
	if err != nil {
		panic(err)
	}
	return t
}

func mondayEntry(start, end string) []model.WorkoutPlanEntry {
	return []model.WorkoutPlanEntry{{
		ProfileID: 1,
		Day:       "monday",
		StartTime: start,
		EndTime:   end,
	}}
}

func TestTodaysEntry_MatchesWeekday(t *testing.T) {
	entries := []model.WorkoutPlanEntry{
		{ProfileID: 1, Day: "sunday", StartTime: "08:00", EndTime: "09:00"},
		{ProfileID: 1, Day: "monday", StartTime: "09:00", EndTime: "10:00"},
	}

	entry := TodaysEntry(entries, monday("12:00:00"))
	require.NotNil(t, entry)
	require.Equal(t, "monday", entry.Day)
}

func TestTodaysEntry_NoEntryForToday(t *testing.T) {
	entries := []model.WorkoutPlanEntry{
		{ProfileID: 1, Day: "tuesday", StartTime: "09:00", EndTime: "10:00"},
	}

	require.Nil(t, TodaysEntry(entries, monday("12:00:00")))
}

func TestTodaysEntry_DuplicateDayTakesFirst(t *testing.T) {
	entries := []model.WorkoutPlanEntry{
		{ProfileID: 1, Day: "monday", StartTime: "06:00", EndTime: "07:00"},
		{ProfileID: 1, Day: "monday", StartTime: "18:00", EndTime: "19:00"},
	}

	entry := TodaysEntry(entries, monday("12:00:00"))
	require.NotNil(t, entry)
	require.Equal(t, "06:00", entry.StartTime)
}

func TestIsWithinWindow_Inclusive(t *testing.T) {
	entries := mondayEntry("09:00", "10:00")

	cases := []struct {
		clock string
		want  bool
	}{
		{"09:00:00", true},
		{"10:00:00", true},
		{"09:30:00", true},
		{"08:59:59", false},
		{"10:00:01", false},
	}

	for _, c := range cases {
		within, err := IsWithinWindow(&entries[0], monday(c.clock))
		require.NoError(t, err)
		require.Equal(t, c.want, within, "clock %s", c.clock)
	}
}

func TestIsWithinWindow_InvalidTimes(t *testing.T) {
	entries := mondayEntry("9am", "10:00")

	_, err := IsWithinWindow(&entries[0], monday("09:30:00"))
	require.Error(t, err)
}

func TestIsWorkoutTime_NoPlan(t *testing.T) {
	ok, entry := IsWorkoutTime(nil, monday("12:00:00"))
	require.False(t, ok)
	require.Nil(t, entry)
}

func TestIsWorkoutTime_InvalidWindowTreatedAsOutside(t *testing.T) {
	entries := mondayEntry("bad", "10:00")

	ok, entry := IsWorkoutTime(entries, monday("09:30:00"))
	require.False(t, ok)
	require.NotNil(t, entry)
}

func TestValidateWindow(t *testing.T) {
	require.NoError(t, ValidateWindow("09:00", "10:00"))
	require.NoError(t, ValidateWindow("09:00", "09:00"))
	require.Error(t, ValidateWindow("10:00", "09:00"))
	require.Error(t, ValidateWindow("25:00", "26:00"))
}
