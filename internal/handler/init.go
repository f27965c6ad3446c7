package handler

import (
	"GymTree/internal/session"
	"GymTree/pkg/geoprovider"
)

// Ingestor 设备上报入口，push 模式下由 PushClient 实现
type Ingestor interface {
	Ingest(profileID int64, s geoprovider.Sample)
	ReportPermission(profileID int64, p geoprovider.Permission)
}

var (
	sessionManager *session.Manager
	ingestor       Ingestor
)

// Setup 注入 handler 层依赖，服务启动时调用一次
// mock 定位模式下 ingest 可以为 nil，此时上报接口返回 412
func Setup(m *session.Manager, ingest Ingestor) {
	sessionManager = m
	ingestor = ingest
}
