package main

// 本地模拟器：用内存存储和 mock 定位源驱动一条验证会话，
// 模拟设备从远处走向健身房并完成打卡，便于不起外部依赖观察引擎行为

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"GymTree/internal/engine"
	"GymTree/internal/model"
	"GymTree/pkg/geoprovider"
	"GymTree/pkg/logger"
	"GymTree/pkg/snowflake"
	"GymTree/utils"
)

const profileID = 1001

type memStores struct {
	mu       sync.Mutex
	profile  model.Profile
	entries  []model.WorkoutPlanEntry
	workouts map[string]model.CompletedWorkout
	markers  map[string]bool
	locks    map[string]bool
}

func (m *memStores) GetProfile(ctx context.Context, id int64) (*model.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := m.profile
	return &p, nil
}

func (m *memStores) IncrementStreak(ctx context.Context, id int64) (int, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profile.CurrentStreak++
	if m.profile.CurrentStreak > m.profile.LongestStreak {
		m.profile.LongestStreak = m.profile.CurrentStreak
	}
	return m.profile.CurrentStreak, m.profile.LongestStreak, nil
}

func (m *memStores) ListEntries(ctx context.Context, id int64) ([]model.WorkoutPlanEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.WorkoutPlanEntry(nil), m.entries...), nil
}

func (m *memStores) HasWorkoutOn(ctx context.Context, id int64, date string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.workouts[date]
	return ok, nil
}

func (m *memStores) RecordWorkout(ctx context.Context, w *model.CompletedWorkout) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.workouts[w.WorkoutDate] = *w
	return nil
}

func (m *memStores) PublishWorkoutCompleted(msg model.WorkoutCompletedMessage) error {
	fmt.Printf(">>> workout completed: date=%s streak=%d longest=%d distance=%.1fm\n",
		msg.WorkoutDate, msg.CurrentStreak, msg.LongestStreak, msg.Distance)
	return nil
}

func (m *memStores) IsDone(ctx context.Context, date string, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.markers[date], nil
}

func (m *memStores) MarkDone(ctx context.Context, date string, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.markers[date] = true
	return nil
}

func (m *memStores) TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.locks[key] {
		return false, nil
	}
	m.locks[key] = true
	return true, nil
}

func (m *memStores) Unlock(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.locks, key)
	return nil
}

func main() {
	logger.Init()
	defer logger.Sync()

	if err := snowflake.Init(1, 1); err != nil {
		logger.Logger.Fatal("Failed to initialize snowflake", zap.Error(err))
	}

	// 健身房设在天安门，时间窗覆盖全天，任何时候跑模拟都在窗内
	gymLat, gymLng := 39.9087, 116.3975

	profile := model.Profile{
		PublicID:     profileID,
		Nickname:     "simulator",
		GymLatitude:  &gymLat,
		GymLongitude: &gymLng,
		CurrentStreak: 5,
		LongestStreak: 7,
		Timezone:      "Asia/Shanghai",
	}
	// 计划日按档案时区取"今天"
	now := time.Now().In(profile.Location())

	stores := &memStores{
		profile: profile,
		entries: []model.WorkoutPlanEntry{{
			ProfileID: profileID,
			Day:       utils.WeekdayName(now),
			StartTime: "00:00",
			EndTime:   "23:59",
		}},
		workouts: make(map[string]model.CompletedWorkout),
		markers:  make(map[string]bool),
		locks:    make(map[string]bool),
	}

	mock := geoprovider.NewMockClient()
	// 起点在健身房北边约 550 米
	mock.SetPosition(gymLat+0.005, gymLng, 20)

	tracker := engine.NewTracker(mock, profileID)
	verifier := engine.NewVerifier(profileID, stores, stores, stores, stores, stores, stores)
	orch := engine.NewOrchestrator(profileID, tracker, verifier)

	ctx := context.Background()
	if err := orch.Start(ctx); err != nil {
		logger.Logger.Fatal("Failed to start session", zap.Error(err))
	}
	defer orch.Stop()

	// 分五步走向健身房，每步约 110 米
	for i := 4; i >= 0; i-- {
		time.Sleep(500 * time.Millisecond)
		mock.Emit(gymLat+0.001*float64(i), gymLng, 15)

		snap := orch.ForceLocationCheck(ctx)
		dist := "n/a"
		if snap.DistanceMeters != nil {
			dist = fmt.Sprintf("%.0fm", *snap.DistanceMeters)
		}
		fmt.Printf("step %d: state=%s at_gym=%v distance=%s\n", 5-i, snap.State, snap.IsAtGym, dist)

		if snap.Completed {
			break
		}
	}

	status := orch.Status()
	fmt.Printf("final: state=%s completed=%v streak=%d longest=%d\n",
		status.Snapshot.State, status.Snapshot.Completed,
		stores.profile.CurrentStreak, stores.profile.LongestStreak)
}
