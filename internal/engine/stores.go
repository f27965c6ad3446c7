package engine

import (
	"context"
	"time"

	"GymTree/internal/model"
)

// 引擎对存储与事件的依赖收敛在这里，service 层提供实现，测试用桩替换

// ProfileStore 档案读取与连胜更新
type ProfileStore interface {
	GetProfile(ctx context.Context, profileID int64) (*model.Profile, error)
	// IncrementStreak 在单个事务内重读连胜并递增，返回更新后的值
	IncrementStreak(ctx context.Context, profileID int64) (current, longest int, err error)
}

// PlanStore 计划条目读取
type PlanStore interface {
	ListEntries(ctx context.Context, profileID int64) ([]model.WorkoutPlanEntry, error)
}

// WorkoutStore 完成记录的查重与写入
type WorkoutStore interface {
	HasWorkoutOn(ctx context.Context, profileID int64, date string) (bool, error)
	RecordWorkout(ctx context.Context, w *model.CompletedWorkout) error
}

// EventPublisher 训练完成事件外发
type EventPublisher interface {
	PublishWorkoutCompleted(msg model.WorkoutCompletedMessage) error
}

// DoneMarker 当日完成标记，加速跳过重复验证
type DoneMarker interface {
	IsDone(ctx context.Context, date string, profileID int64) (bool, error)
	MarkDone(ctx context.Context, date string, profileID int64) error
}

// AttemptLocker 验证尝试互斥锁
type AttemptLocker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Unlock(ctx context.Context, key string) error
}
