package geoprovider

import (
	"context"
	"sync"
	"time"
)

// MockClient 测试与本地模拟用的定位客户端
// 位置与权限由调用方直接设置，Emit 向所有订阅者广播样本
type MockClient struct {
	mu         sync.Mutex
	permission Permission
	position   *Sample
	posErr     error
	watchers   map[int64]chan Sample
	nextID     int64
}

func NewMockClient() *MockClient {
	return &MockClient{
		permission: PermissionGranted,
		watchers:   make(map[int64]chan Sample),
	}
}

// SetPermission 设置所有用户的权限状态
func (c *MockClient) SetPermission(p Permission) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.permission = p
}

// SetPosition 设置 CurrentPosition 的返回值
func (c *MockClient) SetPosition(lat, lng, accuracy float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.position = &Sample{Latitude: lat, Longitude: lng, Accuracy: accuracy, Timestamp: time.Now()}
	c.posErr = nil
}

// SetPositionError 让 CurrentPosition 返回指定错误
func (c *MockClient) SetPositionError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.posErr = err
}

// Emit 向所有订阅者广播一个样本，并更新当前位置
func (c *MockClient) Emit(lat, lng, accuracy float64) {
	s := Sample{Latitude: lat, Longitude: lng, Accuracy: accuracy, Timestamp: time.Now()}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.position = &s
	for _, ch := range c.watchers {
		select {
		case ch <- s:
		default:
		}
	}
}

func (c *MockClient) PermissionStatus(ctx context.Context, profileID int64) (Permission, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.permission, nil
}

func (c *MockClient) RequestPermission(ctx context.Context, profileID int64) (Permission, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.permission == PermissionUnknown {
		c.permission = PermissionGranted
	}
	return c.permission, nil
}

func (c *MockClient) CurrentPosition(ctx context.Context, profileID int64, accuracy Accuracy) (*Sample, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.permission == PermissionDenied {
		return nil, ErrPermissionDenied
	}
	if c.posErr != nil {
		return nil, c.posErr
	}
	if c.position == nil {
		return nil, ErrNoFix
	}
	s := *c.position
	return &s, nil
}

func (c *MockClient) WatchPosition(ctx context.Context, profileID int64, opts WatchOptions) (*Subscription, error) {
	c.mu.Lock()
	if c.permission == PermissionDenied {
		c.mu.Unlock()
		return nil, ErrPermissionDenied
	}
	ch := make(chan Sample, 8)
	c.nextID++
	id := c.nextID
	c.watchers[id] = ch
	c.mu.Unlock()

	var once sync.Once
	stop := func() {
		once.Do(func() {
			c.mu.Lock()
			if _, ok := c.watchers[id]; ok {
				delete(c.watchers, id)
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
