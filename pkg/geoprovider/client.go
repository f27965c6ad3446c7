package geoprovider

import (
	"context"
	"fmt"
	"time"

	"GymTree/config"
)

// Accuracy 定位精度档位
type Accuracy int

const (
	AccuracyBalanced Accuracy = iota
	AccuracyHigh
)

// Permission 定位权限状态
type Permission int

const (
	PermissionUnknown Permission = iota
	PermissionGranted
	PermissionDenied
)

// Sample 一次定位样本
type Sample struct {
	Latitude  float64
	Longitude float64
	// Accuracy 为水平误差半径（米），0 表示设备未上报
	Accuracy  float64
	Timestamp time.Time
}

// WatchOptions 持续定位的过滤参数
type WatchOptions struct {
	// MinInterval 两次推送之间的最小间隔
	MinInterval time.Duration
	// MinDistanceMeters 两次推送之间的最小位移
	MinDistanceMeters float64
	Accuracy          Accuracy
}

// Subscription 一路持续定位流，Stop 后通道关闭
type Subscription struct {
	C    <-chan Sample
	stop func()
}

// Stop 取消订阅，可重复调用
func (s *Subscription) Stop() {
	if s.stop != nil {
		s.stop()
	}
}

// Client 定位来源的统一抽象
// push 实现由设备通过 HTTP 上报驱动，mock 实现用于测试与模拟器
type Client interface {
	// PermissionStatus 查询某用户设备的定位权限
	PermissionStatus(ctx context.Context, profileID int64) (Permission, error)
	// RequestPermission 请求权限，状态由设备下次上报回传
	RequestPermission(ctx context.Context, profileID int64) (Permission, error)
	// CurrentPosition 获取一次定位，等待窗口由 ctx 控制
	CurrentPosition(ctx context.Context, profileID int64, accuracy Accuracy) (*Sample, error)
	// WatchPosition 按过滤参数持续接收定位
	WatchPosition(ctx context.Context, profileID int64, opts WatchOptions) (*Subscription, error)
}

// NewClient 按配置创建定位客户端
func NewClient() (Client, error) {
	switch config.Cfg.LocationProvider {
	case "push":
		return NewPushClient(), nil
	case "mock":
		return NewMockClient(), nil
	default:
		return nil, fmt.Errorf("unknown location provider: %s", config.Cfg.LocationProvider)
	}
}
