package engine

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"GymTree/pkg/geoprovider"
)

func TestTracker_FetchCurrent(t *testing.T) {
	mock := geoprovider.NewMockClient()
	mock.SetPosition(39.9, 116.4, 25)
	tr := NewTracker(mock, testProfileID)

	s, err := tr.FetchCurrent(context.Background(), geoprovider.AccuracyBalanced)
	require.NoError(t, err)
	require.InDelta(t, 39.9, s.Latitude, 1e-9)
	require.NotNil(t, tr.Last())
}

func TestTracker_FetchCurrentLowAccuracy(t *testing.T) {
	mock := geoprovider.NewMockClient()
	mock.SetPosition(39.9, 116.4, 800)
	tr := NewTracker(mock, testProfileID)

	_, err := tr.FetchCurrent(context.Background(), geoprovider.AccuracyHigh)
	require.ErrorIs(t, err, ErrLowAccuracy)
	require.Nil(t, tr.Last())
}

func TestTracker_FetchCurrentPermissionDenied(t *testing.T) {
	mock := geoprovider.NewMockClient()
	mock.SetPermission(geoprovider.PermissionDenied)
	tr := NewTracker(mock, testProfileID)

	_, err := tr.FetchCurrent(context.Background(), geoprovider.AccuracyBalanced)
	require.ErrorIs(t, err, geoprovider.ErrPermissionDenied)
}

func TestTracker_EnsurePermission(t *testing.T) {
	mock := geoprovider.NewMockClient()
	mock.SetPermission(geoprovider.PermissionUnknown)
	tr := NewTracker(mock, testProfileID)

	// 未知状态会发起请求，mock 在请求时放行
	require.NoError(t, tr.EnsurePermission(context.Background()))

	mock.SetPermission(geoprovider.PermissionDenied)
	require.ErrorIs(t, tr.EnsurePermission(context.Background()), geoprovider.ErrPermissionDenied)
}

func TestTracker_StreamDropsLowAccuracySilently(t *testing.T) {
	mock := geoprovider.NewMockClient()
	tr := NewTracker(mock, testProfileID)

	var mu sync.Mutex
	var received []geoprovider.Sample
	require.NoError(t, tr.Start(context.Background(), func(s geoprovider.Sample) {
		mu.Lock()
		received = append(received, s)
		mu.Unlock()
	}))
	defer tr.Stop()

	mock.Emit(39.9, 116.4, 900)
	mock.Emit(39.9, 116.4, 30)

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(received) == 1
	}, time.Second, 10*time.Millisecond)

	mu.Lock()
	require.InDelta(t, 30, received[0].Accuracy, 1e-9)
	mu.Unlock()

	last := tr.Last()
	require.NotNil(t, last)
	require.InDelta(t, 30, last.Accuracy, 1e-9)
}

func TestTracker_StopIsIdempotent(t *testing.T) {
	mock := geoprovider.NewMockClient()
	tr := NewTracker(mock, testProfileID)

	require.NoError(t, tr.Start(context.Background(), nil))
	tr.Stop()
	tr.Stop()
}

func TestTracker_IsStale(t *testing.T) {
	mock := geoprovider.NewMockClient()
	tr := NewTracker(mock, testProfileID)

	now := time.Now()
	require.True(t, tr.IsStale(now, 5*time.Minute), "没有样本时视为过期")

	mock.SetPosition(39.9, 116.4, 10)
	_, err := tr.FetchCurrent(context.Background(), geoprovider.AccuracyBalanced)
	require.NoError(t, err)

	require.False(t, tr.IsStale(now, 5*time.Minute))
	require.True(t, tr.IsStale(now.Add(6*time.Minute), 5*time.Minute))
}
