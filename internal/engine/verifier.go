package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"GymTree/config"
	"GymTree/internal/cache"
	"GymTree/internal/geo"
	"GymTree/internal/model"
	"GymTree/internal/planner"
	pkgerrors "GymTree/pkg/errors"
	"GymTree/pkg/geoprovider"
	"GymTree/pkg/logger"
	"GymTree/pkg/metrics"
	"GymTree/pkg/snowflake"
	"GymTree/utils"
)

// State 验证状态机的状态
type State int

const (
	StateIdle State = iota
	StateConditionsMet
	StateVerifying
	StateCompleted
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConditionsMet:
		return "conditions_met"
	case StateVerifying:
		return "verifying"
	case StateCompleted:
		return "completed"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// Snapshot 状态机对外暴露的快照
type Snapshot struct {
	State          State
	IsWorkoutTime  bool
	IsAtGym        bool
	DistanceMeters *float64
	Completed      bool
	WindowStart    string
	WindowEnd      string
	LastErr        error
}

// Verifier 一个用户的训练验证状态机
// 每次 Attempt 从头评估：今天有没有计划、在不在时间窗内、离健身房多远，
// 条件全部满足且今天尚未打卡时落库并递增连胜
type Verifier struct {
	profileID int64

	profiles ProfileStore
	plans    PlanStore
	workouts WorkoutStore
	events   EventPublisher
	marker   DoneMarker
	locker   AttemptLocker

	mu           sync.Mutex
	state        State
	lastAttempt  time.Time
	lastErr      error
	completedDay string
	snapshot     Snapshot
}

// NewVerifier 创建验证状态机
func NewVerifier(profileID int64, profiles ProfileStore, plans PlanStore, workouts WorkoutStore, events EventPublisher, marker DoneMarker, locker AttemptLocker) *Verifier {
	return &Verifier{
		profileID: profileID,
		profiles:  profiles,
		plans:     plans,
		workouts:  workouts,
		events:    events,
		marker:    marker,
		locker:    locker,
		state:     StateIdle,
	}
}

// Attempt 执行一次验证评估
// sample 为 nil 表示当前没有可用定位，只评估时间窗
func (v *Verifier) Attempt(ctx context.Context, sample *geoprovider.Sample, now time.Time) Snapshot {
	started := time.Now()
	snap := v.evaluate(ctx, sample, now)

	v.mu.Lock()
	v.snapshot = snap
	v.state = snap.State
	v.lastErr = snap.LastErr
	v.mu.Unlock()

	metrics.RecordVerificationAttempt(ctx, snap.State.String(), time.Since(started).Seconds())
	return snap
}

func (v *Verifier) evaluate(ctx context.Context, sample *geoprovider.Sample, now time.Time) Snapshot {
	snap := Snapshot{State: StateIdle}

	// 每次评估都重读档案，换绑健身房或改时区后下一次检查立即生效
	var profile *model.Profile
	err := cache.ProfileBreaker.Call(ctx, func() error {
		var e error
		profile, e = v.profiles.GetProfile(ctx, v.profileID)
		return e
	})
	if err != nil {
		snap.State = StateError
		snap.LastErr = fmt.Errorf("%w: %v", ErrPersistence, err)
		return snap
	}

	// 星期匹配、时间窗和去重日界都以档案时区的墙上时钟为准
	now = now.In(profile.Location())
	today := utils.DayKey(now)

	// 跨天后清掉上一天的完成态
	v.mu.Lock()
	if v.completedDay != "" && v.completedDay != today {
		v.completedDay = ""
	}
	alreadyDone := v.completedDay == today
	v.mu.Unlock()

	entries, err := v.plans.ListEntries(ctx, v.profileID)
	if err != nil {
		snap.State = StateError
		snap.LastErr = fmt.Errorf("%w: %v", ErrPersistence, err)
		return snap
	}

	isTime, entry := planner.IsWorkoutTime(entries, now)
	snap.IsWorkoutTime = isTime
	if entry != nil {
		snap.WindowStart = entry.StartTime
		snap.WindowEnd = entry.EndTime
	}

	// 没有计划的日子永远不会产生打卡
	if entry == nil || !isTime {
		if alreadyDone {
			snap.State = StateCompleted
			snap.Completed = true
		}
		return snap
	}

	gym := profile.GymLocation()
	if gym == nil {
		// 在窗内但没有健身房坐标，无从判定
		snap.State = StateError
		snap.LastErr = ErrGymNotSet
		return snap
	}

	if sample == nil {
		// 在窗内但当前没有定位，保持等待
		if alreadyDone {
			snap.State = StateCompleted
			snap.Completed = true
		}
		return snap
	}

	// 每次检查都重读健身房坐标，换绑后立即生效
	result := geo.CheckProximity(
		geo.Coordinate{Latitude: sample.Latitude, Longitude: sample.Longitude},
		*gym,
		config.Cfg.GymRadiusMeters,
	)
	snap.DistanceMeters = &result.DistanceMeters
	snap.IsAtGym = result.InRange
	metrics.RecordDistance(ctx, result.DistanceMeters, result.InRange)

	if alreadyDone {
		snap.State = StateCompleted
		snap.Completed = true
		return snap
	}

	if !result.InRange {
		return snap
	}

	snap.State = StateConditionsMet

	// 两次落库尝试之间的最小间隔，时间窗内的轮询与位置回调共享这一个约束
	v.mu.Lock()
	reattempt := time.Duration(config.Cfg.VerifyMinReattemptSeconds) * time.Second
	if !v.lastAttempt.IsZero() && now.Sub(v.lastAttempt) < reattempt {
		v.mu.Unlock()
		return snap
	}
	v.lastAttempt = now
	v.mu.Unlock()

	snap.State = StateVerifying

	if err := v.record(ctx, today, entry.PublicID, result.DistanceMeters, now); err != nil {
		if errors.Is(err, errAlreadyRecorded) {
			v.mu.Lock()
			v.completedDay = today
			v.mu.Unlock()
			snap.State = StateCompleted
			snap.Completed = true
			return snap
		}
		snap.State = StateError
		snap.LastErr = err
		return snap
	}

	v.mu.Lock()
	v.completedDay = today
	v.mu.Unlock()

	snap.State = StateCompleted
	snap.Completed = true
	return snap
}

var errAlreadyRecorded = errors.New("workout already recorded today")

// record 幂等落库：完成标记、分布式锁、数据库查重、写入、连胜递增、事件外发
func (v *Verifier) record(ctx context.Context, today string, planEntryID int64, distance float64, now time.Time) error {
	// 快速路径，redis 标记命中直接跳过
	done, err := v.marker.IsDone(ctx, today, v.profileID)
	if err != nil {
		logger.Logger.Warn("Failed to check workout done marker, falling back to database",
			zap.Int64("profile_id", v.profileID),
			zap.Error(err),
		)
	} else if done {
		return errAlreadyRecorded
	}

	// 同一用户同一时刻只允许一个落库者
	lockKey := fmt.Sprintf("verify:%d:%s", v.profileID, today)
	locked, err := v.locker.TryLock(ctx, lockKey, 30*time.Second)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if !locked {
		return errAlreadyRecorded
	}
	defer func() {
		if err := v.locker.Unlock(context.WithoutCancel(ctx), lockKey); err != nil {
			logger.Logger.Warn("Failed to release verify lock",
				zap.String("key", lockKey),
				zap.Error(err),
			)
		}
	}()

	// 以数据库为准的查重
	exists, err := v.workouts.HasWorkoutOn(ctx, v.profileID, today)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if exists {
		if err := v.marker.MarkDone(ctx, today, v.profileID); err != nil {
			logger.Logger.Warn("Failed to backfill workout done marker", zap.Error(err))
		}
		return errAlreadyRecorded
	}

	workout := &model.CompletedWorkout{
		PublicID:       snowflake.NextID(snowflake.GeneratorTypeWorkout),
		ProfileID:      v.profileID,
		WorkoutDate:    today,
		PlanEntryID:    planEntryID,
		DistanceMeters: distance,
		VerifiedAtUnix: now.Unix(),
	}
	if err := v.workouts.RecordWorkout(ctx, workout); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	// 落库后立即重读并递增连胜，避免用验证开始前的旧值计算
	current, longest, err := v.profiles.IncrementStreak(ctx, v.profileID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	if err := v.marker.MarkDone(ctx, today, v.profileID); err != nil {
		logger.Logger.Warn("Failed to set workout done marker", zap.Error(err))
	}

	metrics.RecordWorkoutRecorded(ctx)
	logger.Logger.Info("Workout verified and recorded",
		zap.Int64("profile_id", v.profileID),
		zap.String("date", today),
		zap.Float64("distance_m", distance),
		zap.Int("current_streak", current),
		zap.Int("longest_streak", longest),
	)

	if v.events != nil {
		msg := model.WorkoutCompletedMessage{
			MessageID:     snowflake.NextID(snowflake.GeneratorTypeMessage),
			ProfileID:     v.profileID,
			WorkoutID:     workout.PublicID,
			PlanEntryID:   planEntryID,
			WorkoutDate:   today,
			CurrentStreak: current,
			LongestStreak: longest,
			Distance:      distance,
			Timestamp:     now.Unix(),
		}
		if err := v.events.PublishWorkoutCompleted(msg); err != nil {
			// 事件丢失不影响打卡本身，worker 侧有对账
			logger.Logger.Error("Failed to publish workout completed event",
				zap.Int64("profile_id", v.profileID),
				zap.Error(err),
			)
		}
	}

	return nil
}

// Current 返回最近一次 Attempt 的快照
func (v *Verifier) Current() Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.snapshot
}

// 引擎错误分类
var (
	ErrPersistence = errors.New("persistence failure")
	ErrGymNotSet   = error(pkgerrors.GymLocationNotSet)
)
