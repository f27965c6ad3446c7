package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"GymTree/internal/model"
	"GymTree/pkg/geoprovider"
	"GymTree/utils"
)

func newTestOrchestrator(stores *stubStores, mock *geoprovider.MockClient) *Orchestrator {
	// 协调器测试用真实时钟。存根档案的时区回退 UTC，
	// 计划挂在 UTC 的今天的全天窗口上
	stores.entries = []model.WorkoutPlanEntry{{
		PublicID:  testPlanEntryID,
		ProfileID: testProfileID,
		Day:       utils.WeekdayName(time.Now().UTC()),
		StartTime: "00:00",
		EndTime:   "23:59",
	}}

	return NewOrchestrator(testProfileID, NewTracker(mock, testProfileID), newTestVerifier(stores))
}

func TestOrchestrator_StartStop(t *testing.T) {
	stores := newStubStores()
	mock := geoprovider.NewMockClient()
	mock.SetPosition(gymLat+0.1, gymLng, 10)
	orch := newTestOrchestrator(stores, mock)

	require.NoError(t, orch.Start(context.Background()))
	require.ErrorIs(t, orch.Start(context.Background()), ErrAlreadyRunning)

	status := orch.Status()
	require.True(t, status.Running)

	orch.Stop()
	require.False(t, orch.Status().Running)

	// 已停止的会话再次 Stop 无害
	orch.Stop()
}

func TestOrchestrator_StartFailsWithoutPermission(t *testing.T) {
	stores := newStubStores()
	mock := geoprovider.NewMockClient()
	mock.SetPermission(geoprovider.PermissionDenied)
	orch := newTestOrchestrator(stores, mock)

	err := orch.Start(context.Background())
	require.ErrorIs(t, err, geoprovider.ErrPermissionDenied)
	require.False(t, orch.Status().Running)

	// 失败后可以重试
	mock.SetPermission(geoprovider.PermissionGranted)
	mock.SetPosition(gymLat, gymLng, 10)
	require.NoError(t, orch.Start(context.Background()))
	orch.Stop()
}

func TestOrchestrator_SampleDrivesVerification(t *testing.T) {
	stores := newStubStores()
	mock := geoprovider.NewMockClient()
	mock.SetPosition(gymLat+0.1, gymLng, 10)
	orch := newTestOrchestrator(stores, mock)

	require.NoError(t, orch.Start(context.Background()))
	defer orch.Stop()

	// 走到健身房，位置更新应当立刻完成当日打卡
	mock.Emit(gymLat, gymLng, 10)

	require.Eventually(t, func() bool {
		stores.mu.Lock()
		defer stores.mu.Unlock()
		return len(stores.workouts) == 1
	}, 2*time.Second, 10*time.Millisecond)

	today := utils.DayKey(time.Now().UTC())
	stores.mu.Lock()
	w, ok := stores.workouts[today]
	stores.mu.Unlock()
	require.True(t, ok)
	require.Equal(t, testProfileID, w.ProfileID)
	require.Less(t, w.DistanceMeters, 100.0)

	require.Eventually(t, func() bool {
		return orch.Status().Snapshot.State == StateCompleted
	}, 2*time.Second, 10*time.Millisecond)
}

func TestOrchestrator_ForceLocationCheck(t *testing.T) {
	stores := newStubStores()
	mock := geoprovider.NewMockClient()
	mock.SetPosition(gymLat+0.1, gymLng, 10)
	orch := newTestOrchestrator(stores, mock)

	require.NoError(t, orch.Start(context.Background()))
	defer orch.Stop()

	snap := orch.ForceLocationCheck(context.Background())
	require.True(t, snap.IsWorkoutTime)
	require.False(t, snap.IsAtGym)
	require.NotNil(t, snap.DistanceMeters)

	mock.SetPosition(gymLat, gymLng, 10)
	snap = orch.ForceLocationCheck(context.Background())
	require.Equal(t, StateCompleted, snap.State)
}

func TestOrchestrator_StatusReportsErrorKind(t *testing.T) {
	stores := newStubStores()
	stores.profile.GymLatitude = nil
	stores.profile.GymLongitude = nil
	mock := geoprovider.NewMockClient()
	mock.SetPosition(gymLat, gymLng, 10)
	orch := newTestOrchestrator(stores, mock)

	require.NoError(t, orch.Start(context.Background()))
	defer orch.Stop()

	require.Eventually(t, func() bool {
		return orch.Status().ErrorKind == ErrorKindGymNotSet
	}, 2*time.Second, 10*time.Millisecond)
}

func TestOrchestrator_ResumeRefreshesStaleLocation(t *testing.T) {
	stores := newStubStores()
	mock := geoprovider.NewMockClient()
	mock.SetPosition(gymLat, gymLng, 10)
	orch := newTestOrchestrator(stores, mock)

	// 没有任何样本时 Resume 会强制取一次定位并完成评估
	orch.Resume(context.Background())

	require.Eventually(t, func() bool {
		stores.mu.Lock()
		defer stores.mu.Unlock()
		return len(stores.workouts) == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestClassifyError(t *testing.T) {
	cases := map[error]string{
		geoprovider.ErrPermissionDenied: ErrorKindPermission,
		geoprovider.ErrNoFix:            ErrorKindTimeout,
		ErrLowAccuracy:                  ErrorKindLowAccuracy,
		ErrPersistence:                  ErrorKindPersistence,
		ErrGymNotSet:                    ErrorKindGymNotSet,
		context.Canceled:                ErrorKindUnknown,
	}
	for err, kind := range cases {
		require.Equal(t, kind, classifyError(err))
	}
}
