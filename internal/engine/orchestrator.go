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

// Orchestrator 一个用户会话的验证协调器
// 生命周期由 Start/Stop 显式管理，不存在跨会话的全局状态，
// 定时轮询与位置更新都会驱动一次验证评估
type Orchestrator struct {
	profileID int64
	tracker   *Tracker
	verifier  *Verifier

	interval time.Duration
	staleAge time.Duration

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	running bool
	lastErr error
}

// NewOrchestrator 创建协调器，依赖均显式注入
func NewOrchestrator(profileID int64, tracker *Tracker, verifier *Verifier) *Orchestrator {
	return &Orchestrator{
		profileID: profileID,
		tracker:   tracker,
		verifier:  verifier,
		interval:  time.Duration(config.Cfg.VerificationIntervalSeconds) * time.Second,
		staleAge:  time.Duration(config.Cfg.LocationStaleSeconds) * time.Second,
	}
}

// Start 启动会话：确认权限、开始持续定位、拉起轮询协程
func (o *Orchestrator) Start(ctx context.Context) error {
	o.mu.Lock()
	if o.running {
		o.mu.Unlock()
		return ErrAlreadyRunning
	}
	o.running = true
	o.mu.Unlock()

	if err := o.tracker.EnsurePermission(ctx); err != nil {
		o.mu.Lock()
		o.running = false
		o.lastErr = err
		o.mu.Unlock()
		return err
	}

	runCtx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	o.mu.Lock()
	o.cancel = cancel
	o.done = done
	o.lastErr = nil
	o.mu.Unlock()

	// 位置更新直接驱动一次评估，不等下一个轮询周期
	if err := o.tracker.Start(runCtx, func(s geoprovider.Sample) {
		o.verifier.Attempt(runCtx, &s, time.Now())
	}); err != nil {
		cancel()
		o.mu.Lock()
		o.running = false
		o.lastErr = err
		o.mu.Unlock()
		return err
	}

	go o.loop(runCtx, done)

	metrics.SessionStarted(ctx)
	logger.Logger.Info("Verification session started",
		zap.Int64("profile_id", o.profileID),
		zap.Duration("interval", o.interval),
	)
	return nil
}

func (o *Orchestrator) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	// 启动即做一次初始定位与评估
	o.refresh(ctx, geoprovider.AccuracyBalanced)

	ticker := time.NewTicker(o.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			o.verifier.Attempt(ctx, o.tracker.Last(), time.Now())
		}
	}
}

// refresh 取一次定位并立即评估，定位失败时用时间窗评估兜底
func (o *Orchestrator) refresh(ctx context.Context, accuracy geoprovider.Accuracy) {
	s, err := o.tracker.FetchCurrent(ctx, accuracy)
	if err != nil {
		o.mu.Lock()
		o.lastErr = err
		o.mu.Unlock()

		logger.Logger.Warn("Location refresh failed",
			zap.Int64("profile_id", o.profileID),
			zap.Error(err),
		)
		o.verifier.Attempt(ctx, nil, time.Now())
		return
	}

	o.mu.Lock()
	o.lastErr = nil
	o.mu.Unlock()
	o.verifier.Attempt(ctx, s, time.Now())
}

// Stop 终止会话并等待轮询协程退出，对未启动的会话无害
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	if !o.running {
		o.mu.Unlock()
		return
	}
	o.running = false
	cancel := o.cancel
	done := o.done
	o.cancel = nil
	o.done = nil
	o.mu.Unlock()

	cancel()
	o.tracker.Stop()
	<-done

	metrics.SessionStopped(context.Background())
	logger.Logger.Info("Verification session stopped",
		zap.Int64("profile_id", o.profileID),
	)
}

// Resume 前台恢复：最近定位过期则强制刷新，否则只重新评估
func (o *Orchestrator) Resume(ctx context.Context) {
	if o.tracker.IsStale(time.Now(), o.staleAge) {
		o.refresh(ctx, geoprovider.AccuracyBalanced)
		return
	}
	o.verifier.Attempt(ctx, o.tracker.Last(), time.Now())
}

// ForceRefresh 重新评估当前条件，计划或档案变更后调用
func (o *Orchestrator) ForceRefresh(ctx context.Context) {
	o.verifier.Attempt(ctx, o.tracker.Last(), time.Now())
}

// ForceLocationCheck 用高精度定位立即做一次完整检查
func (o *Orchestrator) ForceLocationCheck(ctx context.Context) Snapshot {
	o.refresh(ctx, geoprovider.AccuracyHigh)
	return o.verifier.Current()
}

// Status 聚合当前会话状态
func (o *Orchestrator) Status() SessionStatus {
	o.mu.Lock()
	running := o.running
	lastErr := o.lastErr
	o.mu.Unlock()

	snap := o.verifier.Current()
	if snap.LastErr != nil {
		lastErr = snap.LastErr
	}

	status := SessionStatus{
		Running:  running,
		Snapshot: snap,
	}
	if last := o.tracker.Last(); last != nil {
		status.LastSampleAt = last.Timestamp
	}
	if lastErr != nil {
		status.ErrorKind = classifyError(lastErr)
	}
	return status
}

// SessionStatus 会话状态聚合
type SessionStatus struct {
	Running      bool
	Snapshot     Snapshot
	LastSampleAt time.Time
	ErrorKind    string
}

// 错误分类，面向客户端展示
const (
	ErrorKindPermission  = "permission_denied"
	ErrorKindTimeout     = "location_timeout"
	ErrorKindLowAccuracy = "low_accuracy"
	ErrorKindPersistence = "persistence_error"
	ErrorKindGymNotSet   = "gym_location_not_set"
	ErrorKindUnknown     = "unknown"
)

func classifyError(err error) string {
	switch {
	case errors.Is(err, geoprovider.ErrPermissionDenied):
		return ErrorKindPermission
	case errors.Is(err, geoprovider.ErrNoFix):
		return ErrorKindTimeout
	case errors.Is(err, ErrLowAccuracy):
		return ErrorKindLowAccuracy
	case errors.Is(err, ErrPersistence):
		return ErrorKindPersistence
	case errors.Is(err, ErrGymNotSet):
		return ErrorKindGymNotSet
	default:
		return ErrorKindUnknown
	}
}

// ErrAlreadyRunning 会话已在运行
var ErrAlreadyRunning = errors.New("verification session already running")
