package service

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"gorm.io/gorm/clause"

	"GymTree/internal/cache"
	"GymTree/internal/model"
	"GymTree/internal/planner"
	"GymTree/internal/queue"
	pkgerrors "GymTree/pkg/errors"
	"GymTree/pkg/logger"
	"GymTree/pkg/snowflake"
	"GymTree/storage/database"
	"GymTree/utils"
)

var (
	planService *PlanService
	planOnce    sync.Once
)

func Plan() *PlanService {
	planOnce.Do(func() {
		planService = &PlanService{}
	})

	return planService
}

type PlanService struct{}

// ListEntries 读取用户的全部计划条目，验证路径直接走数据库
func (s *PlanService) ListEntries(ctx context.Context, profileID int64) ([]model.WorkoutPlanEntry, error) {
	var entries []model.WorkoutPlanEntry
	err := database.DB().WithContext(ctx).
		Where("profile_id = ?", profileID).
		Order("id").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// ListEntriesCached 读侧加速的计划列表
func (s *PlanService) ListEntriesCached(ctx context.Context, profileID int64) ([]model.WorkoutPlanEntry, error) {
	key := utils.FormatID(profileID)

	var cached []model.WorkoutPlanEntry
	hit, err := cache.PlanProtectedCache.Get(ctx, key, &cached)
	if err != nil {
		logger.Logger.Warn("Plan cache read failed", zap.Error(err))
	} else if hit {
		return cached, nil
	}

	entries, err := s.ListEntries(ctx, profileID)
	if err != nil {
		return nil, err
	}

	if err := cache.PlanProtectedCache.Set(ctx, key, entries); err != nil {
		logger.Logger.Warn("Plan cache write failed", zap.Error(err))
	}
	return entries, nil
}

// UpsertEntry 创建或替换某个星期几的计划条目
func (s *PlanService) UpsertEntry(ctx context.Context, profileID int64, day, startTime, endTime string) (*model.WorkoutPlanEntry, error) {
	if !utils.IsValidWeekday(day) {
		return nil, pkgerrors.PlanDayInvalid
	}
	if _, err := utils.ClockMinutes(startTime); err != nil {
		return nil, pkgerrors.PlanTimeInvalid
	}
	if _, err := utils.ClockMinutes(endTime); err != nil {
		return nil, pkgerrors.PlanTimeInvalid
	}
	if err := planner.ValidateWindow(startTime, endTime); err != nil {
		return nil, pkgerrors.PlanWindowInvalid
	}

	entry := &model.WorkoutPlanEntry{
		PublicID:  snowflake.NextID(snowflake.GeneratorTypePlan),
		ProfileID: profileID,
		Day:       day,
		StartTime: startTime,
		EndTime:   endTime,
	}

	// (profile_id, day) 唯一，冲突时更新时间窗
	err := database.DB().WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "profile_id"}, {Name: "day"}},
		DoUpdates: clause.AssignmentColumns([]string{"start_time", "end_time", "updated_at"}),
	}).Create(entry).Error
	if err != nil {
		return nil, err
	}

	s.invalidateCache(ctx, profileID)
	queue.PublishProfileChanged(profileID, model.ProfileChangePlan)

	logger.Logger.Info("Plan entry upserted",
		zap.Int64("profile_id", profileID),
		zap.String("day", day),
		zap.String("window", startTime+"-"+endTime),
	)
	return entry, nil
}

// DeleteEntry 删除某个星期几的计划条目
func (s *PlanService) DeleteEntry(ctx context.Context, profileID int64, day string) error {
	if !utils.IsValidWeekday(day) {
		return pkgerrors.PlanDayInvalid
	}

	result := database.DB().WithContext(ctx).
		Where("profile_id = ? AND day = ?", profileID, day).
		Delete(&model.WorkoutPlanEntry{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.PlanEntryNotFound
	}

	s.invalidateCache(ctx, profileID)
	queue.PublishProfileChanged(profileID, model.ProfileChangePlan)
	return nil
}

// CountEntries 计划中的天数，周统计用
func (s *PlanService) CountEntries(ctx context.Context, profileID int64) (int, error) {
	var count int64
	err := database.DB().WithContext(ctx).
		Model(&model.WorkoutPlanEntry{}).
		Where("profile_id = ?", profileID).
		Count(&count).Error
	return int(count), err
}

func (s *PlanService) invalidateCache(ctx context.Context, profileID int64) {
	if err := cache.PlanProtectedCache.Delete(ctx, utils.FormatID(profileID)); err != nil {
		logger.Logger.Warn("Failed to invalidate plan cache",
			zap.Int64("profile_id", profileID),
			zap.Error(err),
		)
	}
}
