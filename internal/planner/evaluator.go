package planner

import (
	"errors"
	"time"

	"go.uber.org/zap"

	"GymTree/internal/model"
	"GymTree/pkg/logger"
	"GymTree/utils"
)

// 计划评估，判断"现在是不是训练时间"
// 星期名与时间窗都是用户本地时间，窗口两端为闭区间

var errWindowInverted = errors.New("end time before start time")

// TodaysEntry 返回匹配今天星期几的第一条计划条目，没有则返回 nil
// 数据库有 (profile_id, day) 唯一索引，出现多条说明数据被绕过写入，取第一条并告警
func TodaysEntry(entries []model.WorkoutPlanEntry, now time.Time) *model.WorkoutPlanEntry {
	day := utils.WeekdayName(now)

	var matched *model.WorkoutPlanEntry
	count := 0
	for i := range entries {
		if entries[i].Day != day {
			continue
		}
		count++
		if matched == nil {
			matched = &entries[i]
		}
	}

	if count > 1 {
		logger.Logger.Warn("Multiple plan entries for the same day, using the first",
			zap.Int64("profile_id", matched.ProfileID),
			zap.String("day", day),
			zap.Int("count", count),
		)
	}

	return matched
}

// IsWithinWindow 判断 now 是否落在条目的时间窗内，两端均含
// 解析失败时返回错误，调用方按"不在窗内"处理
func IsWithinWindow(entry *model.WorkoutPlanEntry, now time.Time) (bool, error) {
	if entry == nil {
		return false, nil
	}

	start, err := utils.ParseClock(entry.StartTime, now)
	if err != nil {
		return false, err
	}
	end, err := utils.ParseClock(entry.EndTime, now)
	if err != nil {
		return false, err
	}

	// 秒粒度比较，09:00:30 仍算在 [09:00, 10:00] 内，10:00:01 不算
	if now.Before(start) {
		return false, nil
	}
	// 终点含整分钟的第 0 秒
	if now.After(end) {
		return false, nil
	}
	return true, nil
}

// IsWorkoutTime 组合判断：今天有计划且当前时间在窗内
func IsWorkoutTime(entries []model.WorkoutPlanEntry, now time.Time) (bool, *model.WorkoutPlanEntry) {
	entry := TodaysEntry(entries, now)
	if entry == nil {
		return false, nil
	}

	within, err := IsWithinWindow(entry, now)
	if err != nil {
		logger.Logger.Warn("Plan entry has invalid time window",
			zap.Int64("profile_id", entry.ProfileID),
			zap.String("day", entry.Day),
			zap.String("start", entry.StartTime),
			zap.String("end", entry.EndTime),
			zap.Error(err),
		)
		return false, entry
	}

	return within, entry
}

// ValidateWindow 校验一条计划条目的时间窗，创建和更新时调用
func ValidateWindow(startTime, endTime string) error {
	startMin, err := utils.ClockMinutes(startTime)
	if err != nil {
		return err
	}
	endMin, err := utils.ClockMinutes(endTime)
	if err != nil {
		return err
	}
	if endMin < startMin {
		return errWindowInverted
	}
	return nil
}
