package cache

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"GymTree/storage/redis"
)

const (
	// 当日完成标记，命中即可跳过数据库查重
	workoutDonePrefix = "workout:done"
	// 消息处理标记，消费端幂等用
	messageProcessedPrefix = "message:processed"
	// 周统计计数
	weeklyStatsPrefix = "stats:weekly"

	doneTTL      = 48 * time.Hour
	processedTTL = 48 * time.Hour
)

// IsWorkoutDone 查询当日完成标记，标记只是加速路径，最终以数据库为准
func IsWorkoutDone(ctx context.Context, date string, profileID int64) (bool, error) {
	key := redis.Key(workoutDonePrefix, date, fmt.Sprintf("%d", profileID))
	result, err := redis.Client().Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check workout done status: %w", err)
	}
	return result > 0, nil
}

// MarkWorkoutDone 标记指定日期已完成训练
func MarkWorkoutDone(ctx context.Context, date string, profileID int64) error {
	key := redis.Key(workoutDonePrefix, date, fmt.Sprintf("%d", profileID))
	return redis.Client().Set(ctx, key, "1", doneTTL).Err()
}

// UnmarkWorkoutDone 清除完成标记，数据订正时使用
func UnmarkWorkoutDone(ctx context.Context, date string, profileID int64) error {
	key := redis.Key(workoutDonePrefix, date, fmt.Sprintf("%d", profileID))
	return redis.Client().Del(ctx, key).Err()
}

// TryMarkMessageProcessing 原子标记消息正在处理，返回 false 表示重复消息
func TryMarkMessageProcessing(ctx context.Context, messageID string, ttl time.Duration) (bool, error) {
	key := redis.Key(messageProcessedPrefix, messageID)
	if ttl <= 0 {
		ttl = processedTTL
	}

	result, err := redis.Client().SetNX(ctx, key, "processing", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to mark message as processing: %w", err)
	}
	return result, nil
}

// UnmarkMessageProcessing 取消处理标记，处理失败时调用以允许重试
func UnmarkMessageProcessing(ctx context.Context, messageID string) error {
	key := redis.Key(messageProcessedPrefix, messageID)
	return redis.Client().Del(ctx, key).Err()
}

// MarkMessageProcessed 标记消息已处理完成
func MarkMessageProcessed(ctx context.Context, messageID string, ttl time.Duration) error {
	key := redis.Key(messageProcessedPrefix, messageID)
	if ttl <= 0 {
		ttl = processedTTL
	}
	return redis.Client().Set(ctx, key, "completed", ttl).Err()
}

// ========== 周统计 ==========

// IncrementWeeklyCompleted 累加某周的完成天数，weekKey 为该周周一的日期
func IncrementWeeklyCompleted(ctx context.Context, profileID int64, weekKey string) error {
	key := redis.Key(weeklyStatsPrefix, fmt.Sprintf("%d", profileID), weekKey)

	pipe := redis.Client().Pipeline()
	pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, 14*24*time.Hour)
	_, err := pipe.Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to increment weekly completed count: %w", err)
	}
	return nil
}

// GetWeeklyCompleted 读取某周的完成天数
func GetWeeklyCompleted(ctx context.Context, profileID int64, weekKey string) (int, error) {
	key := redis.Key(weeklyStatsPrefix, fmt.Sprintf("%d", profileID), weekKey)
	count, err := redis.Client().Get(ctx, key).Int()
	if err == goredis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get weekly completed count: %w", err)
	}
	return count, nil
}
