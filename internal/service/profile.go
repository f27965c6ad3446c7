package service

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"GymTree/internal/cache"
	"GymTree/internal/geo"
	"GymTree/internal/model"
	"GymTree/internal/queue"
	pkgerrors "GymTree/pkg/errors"
	"GymTree/pkg/logger"
	"GymTree/pkg/snowflake"
	"GymTree/storage/database"
	"GymTree/utils"
)

var (
	profileService *ProfileService
	profileOnce    sync.Once
)

func Profile() *ProfileService {
	profileOnce.Do(func() {
		profileService = &ProfileService{}
	})

	return profileService
}

type ProfileService struct{}

// CreateProfile 创建档案
func (s *ProfileService) CreateProfile(ctx context.Context, nickname, timezone string) (*model.Profile, error) {
	if timezone == "" {
		timezone = "UTC"
	}

	profile := &model.Profile{
		PublicID: snowflake.NextID(snowflake.GeneratorTypeProfile),
		Nickname: nickname,
		Timezone: timezone,
	}

	if err := database.DB().WithContext(ctx).Create(profile).Error; err != nil {
		return nil, err
	}

	logger.Logger.Info("Profile created",
		zap.Int64("profile_id", profile.PublicID),
	)
	return profile, nil
}

// GetProfile 按对外 ID 读取档案
func (s *ProfileService) GetProfile(ctx context.Context, profileID int64) (*model.Profile, error) {
	var profile model.Profile
	err := database.DB().WithContext(ctx).
		Where("public_id = ?", profileID).
		First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.ProfileNotFound
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// GetProfileCached 读侧加速的档案读取，验证路径不走这里
func (s *ProfileService) GetProfileCached(ctx context.Context, profileID int64) (*model.Profile, error) {
	key := utils.FormatID(profileID)

	var cached model.Profile
	hit, err := cache.ProfileProtectedCache.Get(ctx, key, &cached)
	if err != nil {
		logger.Logger.Warn("Profile cache read failed", zap.Error(err))
	} else if hit {
		if cached.PublicID == 0 {
			return nil, pkgerrors.ProfileNotFound
		}
		return &cached, nil
	}

	profile, err := s.GetProfile(ctx, profileID)
	if err != nil {
		if errors.Is(err, error(pkgerrors.ProfileNotFound)) {
			_ = cache.ProfileProtectedCache.Set(ctx, key, nil)
		}
		return nil, err
	}

	if err := cache.ProfileProtectedCache.Set(ctx, key, profile); err != nil {
		logger.Logger.Warn("Profile cache write failed", zap.Error(err))
	}
	return profile, nil
}

// UpdateGymLocation 换绑健身房位置
// 当前连胜清零，最长连胜保持不变，活跃会话通过事件刷新
func (s *ProfileService) UpdateGymLocation(ctx context.Context, profileID int64, lat, lng float64) (*model.Profile, error) {
	coord := geo.Coordinate{Latitude: lat, Longitude: lng}
	if !coord.Valid() {
		return nil, pkgerrors.GymLocationInvalid
	}

	var profile model.Profile
	err := database.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("public_id = ?", profileID).
			First(&profile).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.ProfileNotFound
			}
			return err
		}

		changed := profile.GymLatitude == nil || profile.GymLongitude == nil ||
			*profile.GymLatitude != lat || *profile.GymLongitude != lng

		profile.GymLatitude = &lat
		profile.GymLongitude = &lng
		if changed {
			profile.CurrentStreak = 0
		}

		return tx.Save(&profile).Error
	})
	if err != nil {
		return nil, err
	}

	s.invalidateCache(ctx, profileID)
	queue.PublishProfileChanged(profileID, model.ProfileChangeGymLocation)

	logger.Logger.Info("Gym location updated",
		zap.Int64("profile_id", profileID),
		zap.Float64("lat", lat),
		zap.Float64("lng", lng),
	)
	return &profile, nil
}

// IncrementStreak 在事务内重读并递增连胜，返回更新后的值
func (s *ProfileService) IncrementStreak(ctx context.Context, profileID int64) (int, int, error) {
	var current, longest int

	err := database.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var profile model.Profile
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("public_id = ?", profileID).
			First(&profile).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.ProfileNotFound
			}
			return err
		}

		current = profile.CurrentStreak + 1
		longest = profile.LongestStreak
		if current > longest {
			longest = current
		}

		return tx.Model(&profile).Updates(map[string]interface{}{
			"current_streak": current,
			"longest_streak": longest,
		}).Error
	})
	if err != nil {
		return 0, 0, err
	}

	s.invalidateCache(ctx, profileID)
	return current, longest, nil
}

func (s *ProfileService) invalidateCache(ctx context.Context, profileID int64) {
	if err := cache.ProfileProtectedCache.Delete(ctx, utils.FormatID(profileID)); err != nil {
		logger.Logger.Warn("Failed to invalidate profile cache",
			zap.Int64("profile_id", profileID),
			zap.Error(err),
		)
	}
}
