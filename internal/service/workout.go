package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"gorm.io/gorm"

	"GymTree/internal/cache"
	"GymTree/internal/model"
	"GymTree/storage/database"
	"GymTree/utils"
)

var (
	workoutService *WorkoutService
	workoutOnce    sync.Once
)

func Workout() *WorkoutService {
	workoutOnce.Do(func() {
		workoutService = &WorkoutService{}
	})

	return workoutService
}

type WorkoutService struct{}

// HasWorkoutOn 查询某天是否已有完成记录
func (s *WorkoutService) HasWorkoutOn(ctx context.Context, profileID int64, date string) (bool, error) {
	var count int64
	err := database.DB().WithContext(ctx).
		Model(&model.CompletedWorkout{}).
		Where("profile_id = ? AND workout_date = ?", profileID, date).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// GetOn 读取某天的完成记录，没有时返回 nil
func (s *WorkoutService) GetOn(ctx context.Context, profileID int64, date string) (*model.CompletedWorkout, error) {
	var workout model.CompletedWorkout
	err := database.DB().WithContext(ctx).
		Where("profile_id = ? AND workout_date = ?", profileID, date).
		First(&workout).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &workout, nil
}

// RecordWorkout 写入完成记录
func (s *WorkoutService) RecordWorkout(ctx context.Context, w *model.CompletedWorkout) error {
	return database.DB().WithContext(ctx).Create(w).Error
}

// ListHistory 倒序分页读取历史记录
func (s *WorkoutService) ListHistory(ctx context.Context, profileID int64, limit, offset int) ([]model.CompletedWorkout, error) {
	if limit <= 0 || limit > 100 {
		limit = 30
	}

	var workouts []model.CompletedWorkout
	err := database.DB().WithContext(ctx).
		Where("profile_id = ?", profileID).
		Order("workout_date DESC").
		Limit(limit).
		Offset(offset).
		Find(&workouts).Error
	if err != nil {
		return nil, err
	}
	return workouts, nil
}

// WeeklyStats 本周完成天数与计划天数
// 完成数优先读 redis 计数，未命中时回退数据库
func (s *WorkoutService) WeeklyStats(ctx context.Context, profileID int64, now time.Time) (*model.WeeklyStatsResponse, error) {
	weekStart := utils.WeekStart(now)
	weekKey := utils.DayKey(weekStart)

	completed, err := cache.GetWeeklyCompleted(ctx, profileID, weekKey)
	if err != nil || completed == 0 {
		var count int64
		dbErr := database.DB().WithContext(ctx).
			Model(&model.CompletedWorkout{}).
			Where("profile_id = ? AND workout_date >= ? AND workout_date <= ?",
				profileID, weekKey, utils.DayKey(weekStart.AddDate(0, 0, 6))).
			Count(&count).Error
		if dbErr != nil {
			return nil, dbErr
		}
		completed = int(count)
	}

	planned, err := Plan().CountEntries(ctx, profileID)
	if err != nil {
		return nil, err
	}

	return &model.WeeklyStatsResponse{
		WeekStart:     weekKey,
		CompletedDays: completed,
		PlannedDays:   planned,
	}, nil
}
