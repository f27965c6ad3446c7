package utils

import (
	"fmt"
	"time"
)

// ParseClock 解析 HH:MM 格式的时间字符串并应用到指定日期
func ParseClock(clock string, date time.Time) (time.Time, error) {
	if clock == "" {
		return date, nil
	}

	parsed, err := time.Parse("15:04", clock)
	if err != nil {
		return date, err
	}

	return time.Date(
		date.Year(),
		date.Month(),
		date.Day(),
		parsed.Hour(),
		parsed.Minute(),
		0,
		0,
		date.Location(),
	), nil
}

// ClockMinutes 将 HH:MM 转换为从 00:00 起的分钟数
func ClockMinutes(clock string) (int, error) {
	parsed, err := time.Parse("15:04", clock)
	if err != nil {
		return 0, fmt.Errorf("invalid clock %q: %w", clock, err)
	}
	return parsed.Hour()*60 + parsed.Minute(), nil
}

// DayKey 返回本地日历日的键，格式 2006-01-02，打卡去重以此为界
func DayKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// NextMidnight 返回 t 之后的下一个本地零点
func NextMidnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location()).AddDate(0, 0, 1)
}

// WeekStart 返回 t 所在周的周一零点
func WeekStart(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return day.AddDate(0, 0, -offset)
}

// WeekdayName 返回小写的英文星期名，Sunday=0..Saturday=6
func WeekdayName(t time.Time) string {
	days := [...]string{"sunday", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday"}
	return days[int(t.Weekday())]
}

// IsValidWeekday 校验小写英文星期名
func IsValidWeekday(day string) bool {
	switch day {
	case "sunday", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday":
		return true
	}
	return false
}
