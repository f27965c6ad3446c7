package geoprovider

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const pushProfileID = int64(7)

func TestPushClient_IngestGrantsPermission(t *testing.T) {
	c := NewPushClient()

	status, err := c.PermissionStatus(context.Background(), pushProfileID)
	require.NoError(t, err)
	require.Equal(t, PermissionUnknown, status)

	c.Ingest(pushProfileID, Sample{Latitude: 39.9, Longitude: 116.4, Accuracy: 10})

	status, err = c.PermissionStatus(context.Background(), pushProfileID)
	require.NoError(t, err)
	require.Equal(t, PermissionGranted, status)
}

func TestPushClient_CurrentPositionFreshSample(t *testing.T) {
	c := NewPushClient()
	c.Ingest(pushProfileID, Sample{Latitude: 39.9, Longitude: 116.4, Accuracy: 10, Timestamp: time.Now()})

	s, err := c.CurrentPosition(context.Background(), pushProfileID, AccuracyBalanced)
	require.NoError(t, err)
	require.InDelta(t, 39.9, s.Latitude, 1e-9)
}

func TestPushClient_CurrentPositionWaitsForReport(t *testing.T) {
	c := NewPushClient()
	// 过期样本不能直接返回，必须等下一次上报
	c.Ingest(pushProfileID, Sample{Latitude: 1, Longitude: 1, Accuracy: 10, Timestamp: time.Now().Add(-time.Hour)})

	type result struct {
		s   *Sample
		err error
	}
	got := make(chan result, 1)
	go func() {
		s, err := c.CurrentPosition(context.Background(), pushProfileID, AccuracyBalanced)
		got <- result{s, err}
	}()

	time.Sleep(20 * time.Millisecond)
	c.Ingest(pushProfileID, Sample{Latitude: 39.9, Longitude: 116.4, Accuracy: 10})

	select {
	case r := <-got:
		require.NoError(t, r.err)
		require.InDelta(t, 39.9, r.s.Latitude, 1e-9)
	case <-time.After(time.Second):
		t.Fatal("CurrentPosition did not return after ingest")
	}
}

func TestPushClient_CurrentPositionTimeout(t *testing.T) {
	c := NewPushClient()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.CurrentPosition(ctx, pushProfileID, AccuracyBalanced)
	require.ErrorIs(t, err, ErrNoFix)
}

func TestPushClient_PermissionDenied(t *testing.T) {
	c := NewPushClient()
	c.ReportPermission(pushProfileID, PermissionDenied)

	_, err := c.CurrentPosition(context.Background(), pushProfileID, AccuracyBalanced)
	require.ErrorIs(t, err, ErrPermissionDenied)

	_, err = c.WatchPosition(context.Background(), pushProfileID, WatchOptions{})
	require.ErrorIs(t, err, ErrPermissionDenied)
}

func TestPushClient_WatchIntervalFilter(t *testing.T) {
	c := NewPushClient()
	c.ReportPermission(pushProfileID, PermissionGranted)

	sub, err := c.WatchPosition(context.Background(), pushProfileID, WatchOptions{MinInterval: 30 * time.Second})
	require.NoError(t, err)
	defer sub.Stop()

	base := time.Now()
	c.Ingest(pushProfileID, Sample{Latitude: 1, Longitude: 1, Accuracy: 10, Timestamp: base})
	// 间隔不足 30s，被过滤
	c.Ingest(pushProfileID, Sample{Latitude: 2, Longitude: 2, Accuracy: 10, Timestamp: base.Add(10 * time.Second)})
	c.Ingest(pushProfileID, Sample{Latitude: 3, Longitude: 3, Accuracy: 10, Timestamp: base.Add(31 * time.Second)})

	first := <-sub.C
	require.InDelta(t, 1, first.Latitude, 1e-9)
	second := <-sub.C
	require.InDelta(t, 3, second.Latitude, 1e-9)
}

func TestPushClient_WatchDistanceFilter(t *testing.T) {
	c := NewPushClient()
	c.ReportPermission(pushProfileID, PermissionGranted)

	sub, err := c.WatchPosition(context.Background(), pushProfileID, WatchOptions{MinDistanceMeters: 100})
	require.NoError(t, err)
	defer sub.Stop()

	c.Ingest(pushProfileID, Sample{Latitude: 39.9000, Longitude: 116.4, Accuracy: 10})
	// 约 11 米的位移，低于 100 米阈值
	c.Ingest(pushProfileID, Sample{Latitude: 39.9001, Longitude: 116.4, Accuracy: 10})
	// 约 1.1 公里
	c.Ingest(pushProfileID, Sample{Latitude: 39.9100, Longitude: 116.4, Accuracy: 10})

	first := <-sub.C
	require.InDelta(t, 39.9000, first.Latitude, 1e-9)
	second := <-sub.C
	require.InDelta(t, 39.9100, second.Latitude, 1e-9)
}

func TestPushClient_StopRemovesWatcher(t *testing.T) {
	c := NewPushClient()
	c.ReportPermission(pushProfileID, PermissionGranted)

	sub, err := c.WatchPosition(context.Background(), pushProfileID, WatchOptions{})
	require.NoError(t, err)

	sub.Stop()
	sub.Stop()

	_, open := <-sub.C
	require.False(t, open)

	// 停止后的上报不会写入已关闭的通道
	c.Ingest(pushProfileID, Sample{Latitude: 1, Longitude: 1, Accuracy: 10})
}

func TestPushClient_DevicesAreIsolated(t *testing.T) {
	c := NewPushClient()
	c.Ingest(1, Sample{Latitude: 10, Longitude: 10, Accuracy: 10})

	s, err := c.CurrentPosition(context.Background(), 1, AccuracyBalanced)
	require.NoError(t, err)
	require.InDelta(t, 10, s.Latitude, 1e-9)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = c.CurrentPosition(ctx, 2, AccuracyBalanced)
	require.ErrorIs(t, err, ErrNoFix)
}
