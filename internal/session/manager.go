package session

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"GymTree/internal/engine"
	pkgerrors "GymTree/pkg/errors"
	"GymTree/pkg/geoprovider"
	"GymTree/pkg/logger"
)

// Manager 按用户维护验证会话
// 会话随 Start/Stop 创建销毁，进程内不保留已停止会话的任何状态

type Manager struct {
	provider geoprovider.Client

	profiles engine.ProfileStore
	plans    engine.PlanStore
	workouts engine.WorkoutStore
	events   engine.EventPublisher
	marker   engine.DoneMarker
	locker   engine.AttemptLocker

	mu       sync.Mutex
	sessions map[int64]*engine.Orchestrator
}

// NewManager 创建会话管理器
func NewManager(
	provider geoprovider.Client,
	profiles engine.ProfileStore,
	plans engine.PlanStore,
	workouts engine.WorkoutStore,
	events engine.EventPublisher,
	marker engine.DoneMarker,
	locker engine.AttemptLocker,
) *Manager {
	return &Manager{
		provider: provider,
		profiles: profiles,
		plans:    plans,
		workouts: workouts,
		events:   events,
		marker:   marker,
		locker:   locker,
		sessions: make(map[int64]*engine.Orchestrator),
	}
}

// Start 为用户启动验证会话
func (m *Manager) Start(ctx context.Context, profileID int64) error {
	m.mu.Lock()
	if _, ok := m.sessions[profileID]; ok {
		m.mu.Unlock()
		return pkgerrors.SessionAlreadyActive
	}

	tracker := engine.NewTracker(m.provider, profileID)
	verifier := engine.NewVerifier(profileID, m.profiles, m.plans, m.workouts, m.events, m.marker, m.locker)
	orch := engine.NewOrchestrator(profileID, tracker, verifier)
	m.sessions[profileID] = orch
	m.mu.Unlock()

	if err := orch.Start(ctx); err != nil {
		m.mu.Lock()
		delete(m.sessions, profileID)
		m.mu.Unlock()
		return err
	}
	return nil
}

// Stop 停止并移除用户的验证会话
func (m *Manager) Stop(profileID int64) error {
	m.mu.Lock()
	orch, ok := m.sessions[profileID]
	if ok {
		delete(m.sessions, profileID)
	}
	m.mu.Unlock()

	if !ok {
		return pkgerrors.SessionNotFound
	}

	orch.Stop()
	return nil
}

// Get 返回用户的活跃会话
func (m *Manager) Get(profileID int64) (*engine.Orchestrator, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	orch, ok := m.sessions[profileID]
	if !ok {
		return nil, pkgerrors.SessionNotFound
	}
	return orch, nil
}

// Refresh 档案或计划变更后刷新活跃会话，无会话时静默返回
func (m *Manager) Refresh(ctx context.Context, profileID int64) {
	orch, err := m.Get(profileID)
	if err != nil {
		return
	}
	orch.ForceRefresh(ctx)
	logger.Logger.Info("Session refreshed after profile change",
		zap.Int64("profile_id", profileID),
	)
}

// StopAll 停止所有会话，进程退出时调用
func (m *Manager) StopAll() {
	m.mu.Lock()
	sessions := make([]*engine.Orchestrator, 0, len(m.sessions))
	for id, orch := range m.sessions {
		sessions = append(sessions, orch)
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	for _, orch := range sessions {
		orch.Stop()
	}

	logger.Logger.Info("All verification sessions stopped",
		zap.Int("count", len(sessions)),
	)
}
