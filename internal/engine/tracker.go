package engine

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"GymTree/config"
	"GymTree/pkg/geoprovider"
	"GymTree/pkg/logger"
	"GymTree/pkg/metrics"
)

// ErrLowAccuracy 单次定位的精度半径超过阈值
var ErrLowAccuracy = errors.New("location accuracy below threshold")

// Tracker 一个用户的定位跟踪器
// 持续流里精度不达标的样本静默丢弃，单次获取则返回 ErrLowAccuracy 让调用方感知
type Tracker struct {
	provider  geoprovider.Client
	profileID int64

	accuracyThreshold float64
	fetchTimeout      time.Duration

	mu   sync.Mutex
	last *geoprovider.Sample
	sub  *geoprovider.Subscription
	done chan struct{}
}

func NewTracker(provider geoprovider.Client, profileID int64) *Tracker {
	return &Tracker{
		provider:          provider,
		profileID:         profileID,
		accuracyThreshold: config.Cfg.AccuracyThresholdMeters,
		fetchTimeout:      time.Duration(config.Cfg.LocationFetchTimeoutSeconds) * time.Second,
	}
}

// EnsurePermission 确认定位权限，未知时发起请求
func (t *Tracker) EnsurePermission(ctx context.Context) error {
	status, err := t.provider.PermissionStatus(ctx, t.profileID)
	if err != nil {
		return err
	}
	if status == geoprovider.PermissionGranted {
		return nil
	}

	status, err = t.provider.RequestPermission(ctx, t.profileID)
	if err != nil {
		return err
	}
	if status != geoprovider.PermissionGranted {
		return geoprovider.ErrPermissionDenied
	}
	return nil
}

// FetchCurrent 单次定位，超时与精度校验都在这里
func (t *Tracker) FetchCurrent(ctx context.Context, accuracy geoprovider.Accuracy) (*geoprovider.Sample, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, t.fetchTimeout)
	defer cancel()

	s, err := t.provider.CurrentPosition(fetchCtx, t.profileID, accuracy)
	if err != nil {
		return nil, err
	}

	if s.Accuracy > t.accuracyThreshold {
		metrics.RecordLocationSample(ctx, false)
		return nil, ErrLowAccuracy
	}

	metrics.RecordLocationSample(ctx, true)
	t.store(s)
	return s, nil
}

// Start 开始持续定位，每个过滤后的样本回调 onSample
func (t *Tracker) Start(ctx context.Context, onSample func(geoprovider.Sample)) error {
	t.mu.Lock()
	if t.sub != nil {
		t.mu.Unlock()
		return nil
	}
	t.mu.Unlock()

	sub, err := t.provider.WatchPosition(ctx, t.profileID, geoprovider.WatchOptions{
		MinInterval:       time.Duration(config.Cfg.LocationUpdateIntervalSeconds) * time.Second,
		MinDistanceMeters: config.Cfg.LocationDistanceIntervalM,
		Accuracy:          geoprovider.AccuracyBalanced,
	})
	if err != nil {
		return err
	}

	done := make(chan struct{})

	t.mu.Lock()
	t.sub = sub
	t.done = done
	t.mu.Unlock()

	go func() {
		defer close(done)
		for s := range sub.C {
			if s.Accuracy > t.accuracyThreshold {
				// 精度不足的流式样本直接丢弃，不打断跟踪
				metrics.RecordLocationSample(context.Background(), false)
				continue
			}
			metrics.RecordLocationSample(context.Background(), true)
			t.store(&s)
			if onSample != nil {
				onSample(s)
			}
		}
	}()

	logger.Logger.Info("Location tracking started",
		zap.Int64("profile_id", t.profileID),
	)
	return nil
}

// Stop 停止持续定位并等待消费协程退出
func (t *Tracker) Stop() {
	t.mu.Lock()
	sub := t.sub
	done := t.done
	t.sub = nil
	t.done = nil
	t.mu.Unlock()

	if sub == nil {
		return
	}
	sub.Stop()
	<-done

	logger.Logger.Info("Location tracking stopped",
		zap.Int64("profile_id", t.profileID),
	)
}

func (t *Tracker) store(s *geoprovider.Sample) {
	sample := *s
	t.mu.Lock()
	t.last = &sample
	t.mu.Unlock()
}

// Last 返回最近一个通过精度过滤的样本
func (t *Tracker) Last() *geoprovider.Sample {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.last == nil {
		return nil
	}
	s := *t.last
	return &s
}

// IsStale 判断最近样本是否已过期，没有样本时视为过期
func (t *Tracker) IsStale(now time.Time, maxAge time.Duration) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.last == nil {
		return true
	}
	return now.Sub(t.last.Timestamp) > maxAge
}
