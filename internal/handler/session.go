package handler

import (
	"context"
	"errors"

	"github.com/cloudwego/hertz/pkg/app"

	"GymTree/internal/engine"
	"GymTree/internal/middleware"
	"GymTree/internal/model"
	pkgerrors "GymTree/pkg/errors"
	"GymTree/pkg/geoprovider"
	"GymTree/pkg/response"
)

// StartSession 启动验证会话，客户端进入前台时调用
// POST /v1/sessions
func StartSession(ctx context.Context, c *app.RequestContext) {
	profileID, ok := middleware.GetProfileID(ctx, c)
	if !ok {
		response.Error(ctx, c, pkgerrors.InvalidUserID)
		return
	}

	if err := sessionManager.Start(ctx, profileID); err != nil {
		response.Error(ctx, c, mapSessionError(err))
		return
	}

	response.Success(ctx, c, map[string]interface{}{"started": true})
}

// StopSession 停止验证会话
// DELETE /v1/sessions
func StopSession(ctx context.Context, c *app.RequestContext) {
	profileID, ok := middleware.GetProfileID(ctx, c)
	if !ok {
		response.Error(ctx, c, pkgerrors.InvalidUserID)
		return
	}

	if err := sessionManager.Stop(profileID); err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.NoContent(ctx, c)
}

// ResumeSession 前台恢复，定位过期时触发强制刷新
// POST /v1/sessions/resume
func ResumeSession(ctx context.Context, c *app.RequestContext) {
	profileID, ok := middleware.GetProfileID(ctx, c)
	if !ok {
		response.Error(ctx, c, pkgerrors.InvalidUserID)
		return
	}

	orch, err := sessionManager.Get(profileID)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	orch.Resume(ctx)
	response.Success(ctx, c, toStatusResponse(orch.Status()))
}

// GetSessionStatus 查询会话聚合状态
// GET /v1/sessions/status
func GetSessionStatus(ctx context.Context, c *app.RequestContext) {
	profileID, ok := middleware.GetProfileID(ctx, c)
	if !ok {
		response.Error(ctx, c, pkgerrors.InvalidUserID)
		return
	}

	orch, err := sessionManager.Get(profileID)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, toStatusResponse(orch.Status()))
}

// RefreshSession 重新评估当前条件，计划或档案变更后调用
// POST /v1/sessions/refresh
func RefreshSession(ctx context.Context, c *app.RequestContext) {
	profileID, ok := middleware.GetProfileID(ctx, c)
	if !ok {
		response.Error(ctx, c, pkgerrors.InvalidUserID)
		return
	}

	orch, err := sessionManager.Get(profileID)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	orch.ForceRefresh(ctx)
	response.Success(ctx, c, toStatusResponse(orch.Status()))
}

// ForceLocationCheck 高精度定位并立即做一次完整检查
// POST /v1/sessions/force-check
func ForceLocationCheck(ctx context.Context, c *app.RequestContext) {
	profileID, ok := middleware.GetProfileID(ctx, c)
	if !ok {
		response.Error(ctx, c, pkgerrors.InvalidUserID)
		return
	}

	orch, err := sessionManager.Get(profileID)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	orch.ForceLocationCheck(ctx)
	response.Success(ctx, c, toStatusResponse(orch.Status()))
}

func mapSessionError(err error) error {
	switch {
	case errors.Is(err, geoprovider.ErrPermissionDenied):
		return pkgerrors.LocationPermission
	case errors.Is(err, engine.ErrAlreadyRunning):
		return pkgerrors.SessionAlreadyActive
	default:
		return err
	}
}

func toStatusResponse(s engine.SessionStatus) model.SessionStatusResponse {
	resp := model.SessionStatusResponse{
		State:               s.Snapshot.State.String(),
		IsWorkoutTime:       s.Snapshot.IsWorkoutTime,
		IsAtGym:             s.Snapshot.IsAtGym,
		DistanceMeters:      s.Snapshot.DistanceMeters,
		WorkoutCompleted:    s.Snapshot.Completed,
		LastError:           s.ErrorKind,
		TodayWindowStart:    s.Snapshot.WindowStart,
		TodayWindowEnd:      s.Snapshot.WindowEnd,
		VerificationEnabled: s.Running,
	}
	if !s.LastSampleAt.IsZero() {
		resp.LastSampleUnix = s.LastSampleAt.Unix()
	}
	return resp
}
