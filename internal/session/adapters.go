package session

import (
	"context"
	"time"

	"GymTree/internal/cache"
)

// CacheDoneMarker 基于 redis 的当日完成标记
type CacheDoneMarker struct{}

func (CacheDoneMarker) IsDone(ctx context.Context, date string, profileID int64) (bool, error) {
	return cache.IsWorkoutDone(ctx, date, profileID)
}

func (CacheDoneMarker) MarkDone(ctx context.Context, date string, profileID int64) error {
	return cache.MarkWorkoutDone(ctx, date, profileID)
}

// CacheAttemptLocker 基于 redis SetNX 的验证尝试锁
type CacheAttemptLocker struct{}

func (CacheAttemptLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return cache.TryLock(ctx, key, ttl)
}

func (CacheAttemptLocker) Unlock(ctx context.Context, key string) error {
	return cache.Unlock(ctx, key)
}
