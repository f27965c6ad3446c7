package engine

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"GymTree/internal/model"
	"GymTree/pkg/geoprovider"
	"GymTree/pkg/logger"
	"GymTree/pkg/snowflake"
	"GymTree/utils"
)

func init() {
	logger.Init()
	if err := snowflake.Init(1, 1); err != nil {
		panic(err)
	}
}

// 2026-08-24 12:00 是周一，测试计划都挂在 monday 上
var testNow = time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)

const (
	testProfileID   = int64(42)
	testPlanEntryID = int64(9001)
	gymLat          = 39.9087
	gymLng          = 116.3975
)

type stubStores struct {
	mu       sync.Mutex
	profile  model.Profile
	entries  []model.WorkoutPlanEntry
	workouts map[string]model.CompletedWorkout
	markers  map[string]bool
	locks    map[string]bool

	profileErr error
	recordErr  error
	published  []model.WorkoutCompletedMessage
	increments int
}

func newStubStores() *stubStores {
	lat, lng := gymLat, gymLng
	return &stubStores{
		profile: model.Profile{
			PublicID:      testProfileID,
			GymLatitude:   &lat,
			GymLongitude:  &lng,
			CurrentStreak: 5,
			LongestStreak: 7,
		},
		entries: []model.WorkoutPlanEntry{{
			PublicID:  testPlanEntryID,
			ProfileID: testProfileID,
			Day:       "monday",
			StartTime: "09:00",
			EndTime:   "18:00",
		}},
		workouts: make(map[string]model.CompletedWorkout),
		markers:  make(map[string]bool),
		locks:    make(map[string]bool),
	}
}

func (s *stubStores) GetProfile(ctx context.Context, id int64) (*model.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.profileErr != nil {
		return nil, s.profileErr
	}
	p := s.profile
	return &p, nil
}

func (s *stubStores) IncrementStreak(ctx context.Context, id int64) (int, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.increments++
	s.profile.CurrentStreak++
	if s.profile.CurrentStreak > s.profile.LongestStreak {
		s.profile.LongestStreak = s.profile.CurrentStreak
	}
	return s.profile.CurrentStreak, s.profile.LongestStreak, nil
}

func (s *stubStores) ListEntries(ctx context.Context, id int64) ([]model.WorkoutPlanEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.WorkoutPlanEntry(nil), s.entries...), nil
}

func (s *stubStores) HasWorkoutOn(ctx context.Context, id int64, date string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.workouts[date]
	return ok, nil
}

func (s *stubStores) RecordWorkout(ctx context.Context, w *model.CompletedWorkout) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.recordErr != nil {
		return s.recordErr
	}
	s.workouts[w.WorkoutDate] = *w
	return nil
}

func (s *stubStores) PublishWorkoutCompleted(msg model.WorkoutCompletedMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.published = append(s.published, msg)
	return nil
}

func (s *stubStores) IsDone(ctx context.Context, date string, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.markers[date], nil
}

func (s *stubStores) MarkDone(ctx context.Context, date string, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.markers[date] = true
	return nil
}

func (s *stubStores) TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.locks[key] {
		return false, nil
	}
	s.locks[key] = true
	return true, nil
}

func (s *stubStores) Unlock(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.locks, key)
	return nil
}

func newTestVerifier(s *stubStores) *Verifier {
	return NewVerifier(testProfileID, s, s, s, s, s, s)
}

func atGym() *geoprovider.Sample {
	return &geoprovider.Sample{Latitude: gymLat, Longitude: gymLng, Accuracy: 10, Timestamp: testNow}
}

func farAway() *geoprovider.Sample {
	return &geoprovider.Sample{Latitude: gymLat + 0.1, Longitude: gymLng, Accuracy: 10, Timestamp: testNow}
}

func TestVerifier_RecordsWorkoutWhenConditionsMet(t *testing.T) {
	stores := newStubStores()
	v := newTestVerifier(stores)

	snap := v.Attempt(context.Background(), atGym(), testNow)

	require.Equal(t, StateCompleted, snap.State)
	require.True(t, snap.Completed)
	require.Len(t, stores.workouts, 1)
	require.Equal(t, 6, stores.profile.CurrentStreak)
	require.Equal(t, 7, stores.profile.LongestStreak)
	require.Len(t, stores.published, 1)
	require.Equal(t, 6, stores.published[0].CurrentStreak)

	// 记录与事件都引用命中的计划条目
	w := stores.workouts[utils.DayKey(testNow)]
	require.Equal(t, testPlanEntryID, w.PlanEntryID)
	require.Equal(t, testPlanEntryID, stores.published[0].PlanEntryID)
}

func TestVerifier_UsesProfileTimezone(t *testing.T) {
	stores := newStubStores()
	stores.profile.Timezone = "Asia/Shanghai"
	stores.entries = []model.WorkoutPlanEntry{{
		PublicID:  testPlanEntryID,
		ProfileID: testProfileID,
		Day:       "tuesday",
		StartTime: "06:00",
		EndTime:   "08:00",
	}}
	v := newTestVerifier(stores)

	// UTC 周一 23:00，上海已是周二 07:00，命中周二的时间窗
	utcMondayNight := time.Date(2026, 8, 24, 23, 0, 0, 0, time.UTC)
	snap := v.Attempt(context.Background(), atGym(), utcMondayNight)

	require.Equal(t, StateCompleted, snap.State)
	require.Len(t, stores.workouts, 1)

	// 去重日界同样按档案时区落在周二
	w, ok := stores.workouts["2026-08-25"]
	require.True(t, ok)
	require.Equal(t, "2026-08-25", w.WorkoutDate)
}

func TestVerifier_ServerZoneDoesNotLeakIntoEvaluation(t *testing.T) {
	stores := newStubStores()
	stores.profile.Timezone = "UTC"
	stores.entries = []model.WorkoutPlanEntry{{
		PublicID:  testPlanEntryID,
		ProfileID: testProfileID,
		Day:       "tuesday",
		StartTime: "06:00",
		EndTime:   "08:00",
	}}
	v := newTestVerifier(stores)

	// 同一时刻以东八区表示传入，对 UTC 档案仍是周一，不命中周二计划
	shanghai, err := time.LoadLocation("Asia/Shanghai")
	require.NoError(t, err)
	utcMondayNight := time.Date(2026, 8, 24, 23, 0, 0, 0, time.UTC).In(shanghai)
	snap := v.Attempt(context.Background(), atGym(), utcMondayNight)

	require.Equal(t, StateIdle, snap.State)
	require.False(t, snap.IsWorkoutTime)
	require.Empty(t, stores.workouts)
}

func TestVerifier_LongestStreakFollowsCurrent(t *testing.T) {
	stores := newStubStores()
	stores.profile.CurrentStreak = 7
	stores.profile.LongestStreak = 7
	v := newTestVerifier(stores)

	v.Attempt(context.Background(), atGym(), testNow)

	require.Equal(t, 8, stores.profile.CurrentStreak)
	require.Equal(t, 8, stores.profile.LongestStreak)
}

func TestVerifier_IdempotentAcrossTicks(t *testing.T) {
	stores := newStubStores()
	v := newTestVerifier(stores)

	for i := 0; i < 5; i++ {
		now := testNow.Add(time.Duration(i) * time.Minute)
		v.Attempt(context.Background(), atGym(), now)
	}

	require.Len(t, stores.workouts, 1)
	require.Equal(t, 1, stores.increments)
	require.Equal(t, 6, stores.profile.CurrentStreak)
}

func TestVerifier_DebounceBetweenAttempts(t *testing.T) {
	stores := newStubStores()
	stores.recordErr = errors.New("db down")
	v := newTestVerifier(stores)

	first := v.Attempt(context.Background(), atGym(), testNow)
	require.Equal(t, StateError, first.State)

	// 间隔不足时不再触发落库，状态停留在条件满足
	second := v.Attempt(context.Background(), atGym(), testNow.Add(5*time.Second))
	require.Equal(t, StateConditionsMet, second.State)
	require.Equal(t, 0, stores.increments)

	// 超过最小间隔后恢复重试
	stores.mu.Lock()
	stores.recordErr = nil
	stores.mu.Unlock()
	third := v.Attempt(context.Background(), atGym(), testNow.Add(time.Minute))
	require.Equal(t, StateCompleted, third.State)
	require.Equal(t, 1, stores.increments)
}

func TestVerifier_NotAtGymDoesNotRecord(t *testing.T) {
	stores := newStubStores()
	v := newTestVerifier(stores)

	snap := v.Attempt(context.Background(), farAway(), testNow)

	require.Equal(t, StateIdle, snap.State)
	require.True(t, snap.IsWorkoutTime)
	require.False(t, snap.IsAtGym)
	require.NotNil(t, snap.DistanceMeters)
	require.Empty(t, stores.workouts)
}

func TestVerifier_OutsideWindowDoesNotRecord(t *testing.T) {
	stores := newStubStores()
	v := newTestVerifier(stores)

	earlyMorning := time.Date(2026, 8, 24, 6, 0, 0, 0, time.UTC)
	snap := v.Attempt(context.Background(), atGym(), earlyMorning)

	require.Equal(t, StateIdle, snap.State)
	require.False(t, snap.IsWorkoutTime)
	require.Nil(t, snap.DistanceMeters)
	require.Empty(t, stores.workouts)
}

func TestVerifier_NoPlanNeverVerifies(t *testing.T) {
	stores := newStubStores()
	stores.entries = nil
	v := newTestVerifier(stores)

	for i := 0; i < 3; i++ {
		snap := v.Attempt(context.Background(), atGym(), testNow.Add(time.Duration(i)*time.Hour))
		require.Equal(t, StateIdle, snap.State)
	}
	require.Empty(t, stores.workouts)
}

func TestVerifier_GymLocationNotSet(t *testing.T) {
	stores := newStubStores()
	stores.profile.GymLatitude = nil
	stores.profile.GymLongitude = nil
	v := newTestVerifier(stores)

	snap := v.Attempt(context.Background(), atGym(), testNow)

	require.Equal(t, StateError, snap.State)
	require.ErrorIs(t, snap.LastErr, ErrGymNotSet)
	require.Empty(t, stores.workouts)
}

func TestVerifier_NilSampleOnlyEvaluatesWindow(t *testing.T) {
	stores := newStubStores()
	v := newTestVerifier(stores)

	snap := v.Attempt(context.Background(), nil, testNow)

	require.Equal(t, StateIdle, snap.State)
	require.True(t, snap.IsWorkoutTime)
	require.Nil(t, snap.DistanceMeters)
	require.Empty(t, stores.workouts)
}

func TestVerifier_ExistingRecordBackfillsMarker(t *testing.T) {
	stores := newStubStores()
	today := utils.DayKey(testNow)
	stores.workouts[today] = model.CompletedWorkout{ProfileID: testProfileID, WorkoutDate: today}
	v := newTestVerifier(stores)

	snap := v.Attempt(context.Background(), atGym(), testNow)

	require.Equal(t, StateCompleted, snap.State)
	require.Equal(t, 0, stores.increments)
	require.True(t, stores.markers[today])
}

func TestVerifier_DayRolloverResetsCompletion(t *testing.T) {
	stores := newStubStores()
	v := newTestVerifier(stores)

	v.Attempt(context.Background(), atGym(), testNow)
	require.Len(t, stores.workouts, 1)

	// 次日同一时刻（周二），当天没有计划条目
	nextDay := testNow.AddDate(0, 0, 1)
	snap := v.Attempt(context.Background(), atGym(), nextDay)
	require.Equal(t, StateIdle, snap.State)
	require.False(t, snap.Completed)
}
