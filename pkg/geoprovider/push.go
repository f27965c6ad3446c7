package geoprovider

import (
	"context"
	"errors"
	"sync"
	"time"

	"GymTree/config"
	"GymTree/internal/geo"
)

var (
	// ErrPermissionDenied 设备已拒绝定位权限
	ErrPermissionDenied = errors.New("location permission denied")
	// ErrNoFix 等待窗口内没有可用的定位样本
	ErrNoFix = errors.New("no location fix available")
)

// PushClient 由设备主动上报驱动的定位客户端
// 服务端不向设备拉取，所有样本经 Ingest 进入并分发给等待方
type PushClient struct {
	mu      sync.Mutex
	devices map[int64]*deviceState
}

type deviceState struct {
	permission Permission
	latest     *Sample

	// 一次性等待者，收到下一个样本后即被移除
	waiters map[int64]chan Sample
	// 持续订阅者，按各自的过滤参数接收
	watchers map[int64]*pushWatcher

	nextID int64
}

type pushWatcher struct {
	ch       chan Sample
	opts     WatchOptions
	lastSent *Sample
	sentAt   time.Time
}

func NewPushClient() *PushClient {
	return &PushClient{devices: make(map[int64]*deviceState)}
}

func (c *PushClient) device(profileID int64) *deviceState {
	d, ok := c.devices[profileID]
	if !ok {
		d = &deviceState{
			waiters:  make(map[int64]chan Sample),
			watchers: make(map[int64]*pushWatcher),
		}
		c.devices[profileID] = d
	}
	return d
}

// Ingest 接收设备上报的样本并分发，上报本身即视为权限已授予
func (c *PushClient) Ingest(profileID int64, s Sample) {
	if s.Timestamp.IsZero() {
		s.Timestamp = time.Now()
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	d := c.device(profileID)
	d.permission = PermissionGranted
	sample := s
	d.latest = &sample

	for id, ch := range d.waiters {
		ch <- s
		delete(d.waiters, id)
	}

	for _, w := range d.watchers {
		if !w.accept(s) {
			continue
		}
		select {
		case w.ch <- s:
			w.remember(s)
		default:
			// 订阅方消费过慢时丢弃本次样本，保持上报路径不阻塞
		}
	}
}

// accept 按最小间隔与最小位移过滤
func (w *pushWatcher) accept(s Sample) bool {
	if w.lastSent == nil {
		return true
	}
	if w.opts.MinInterval > 0 && s.Timestamp.Sub(w.sentAt) < w.opts.MinInterval {
		return false
	}
	if w.opts.MinDistanceMeters > 0 {
		moved := geo.DistanceMeters(w.lastSent.Latitude, w.lastSent.Longitude, s.Latitude, s.Longitude)
		if moved < w.opts.MinDistanceMeters {
			return false
		}
	}
	return true
}

func (w *pushWatcher) remember(s Sample) {
	sample := s
	w.lastSent = &sample
	w.sentAt = s.Timestamp
}

// ReportPermission 设备回传权限状态
func (c *PushClient) ReportPermission(profileID int64, p Permission) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.device(profileID).permission = p
}

func (c *PushClient) PermissionStatus(ctx context.Context, profileID int64) (Permission, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.device(profileID).permission, nil
}

// RequestPermission 在推送模型下只能返回已知状态，真实弹窗发生在设备端
func (c *PushClient) RequestPermission(ctx context.Context, profileID int64) (Permission, error) {
	return c.PermissionStatus(ctx, profileID)
}

// CurrentPosition 返回新鲜的最近样本，否则等待设备的下一次上报
func (c *PushClient) CurrentPosition(ctx context.Context, profileID int64, accuracy Accuracy) (*Sample, error) {
	freshness := time.Duration(config.Cfg.LocationUpdateIntervalSeconds) * time.Second

	c.mu.Lock()
	d := c.device(profileID)
	if d.permission == PermissionDenied {
		c.mu.Unlock()
		return nil, ErrPermissionDenied
	}
	if d.latest != nil && time.Since(d.latest.Timestamp) <= freshness {
		s := *d.latest
		c.mu.Unlock()
		return &s, nil
	}

	ch := make(chan Sample, 1)
	d.nextID++
	id := d.nextID
	d.waiters[id] = ch
	c.mu.Unlock()

	select {
	case s := <-ch:
		return &s, nil
	case <-ctx.Done():
		c.mu.Lock()
		delete(d.waiters, id)
		c.mu.Unlock()
		return nil, ErrNoFix
	}
}

func (c *PushClient) WatchPosition(ctx context.Context, profileID int64, opts WatchOptions) (*Subscription, error) {
	c.mu.Lock()
	d := c.device(profileID)
	if d.permission == PermissionDenied {
		c.mu.Unlock()
		return nil, ErrPermissionDenied
	}

	ch := make(chan Sample, 8)
	d.nextID++
	id := d.nextID
	d.watchers[id] = &pushWatcher{ch: ch, opts: opts}
	c.mu.Unlock()

	var once sync.Once
	stop := func() {
		once.Do(func() {
			c.mu.Lock()
			if _, ok := d.watchers[id]; ok {
				delete(d.watchers, id)
				close(ch)
			}
			c.mu.Unlock()
		})
	}

	go func() {
		<-ctx.Done()
		stop()
	}()

	return &Subscription{C: ch, stop: stop}, nil
}
