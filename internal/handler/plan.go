package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"

	"GymTree/internal/middleware"
	"GymTree/internal/model"
	"GymTree/internal/service"
	pkgerrors "GymTree/pkg/errors"
	"GymTree/pkg/response"
)

// ListPlanEntries 列出全部计划条目
// GET /v1/plans
func ListPlanEntries(ctx context.Context, c *app.RequestContext) {
	profileID, ok := middleware.GetProfileID(ctx, c)
	if !ok {
		response.Error(ctx, c, pkgerrors.InvalidUserID)
		return
	}

	entries, err := service.Plan().ListEntriesCached(ctx, profileID)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	resp := make([]model.PlanEntryResponse, 0, len(entries))
	for _, e := range entries {
		resp = append(resp, toPlanEntryResponse(&e))
	}
	response.Success(ctx, c, resp)
}

// UpsertPlanEntry 创建或替换某个星期几的计划条目
// PUT /v1/plans
func UpsertPlanEntry(ctx context.Context, c *app.RequestContext) {
	profileID, ok := middleware.GetProfileID(ctx, c)
	if !ok {
		response.Error(ctx, c, pkgerrors.InvalidUserID)
		return
	}

	var req model.UpsertPlanEntryRequest
	if err := c.BindAndValidate(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	entry, err := service.Plan().UpsertEntry(ctx, profileID, req.Day, req.StartTime, req.EndTime)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, toPlanEntryResponse(entry))
}

// DeletePlanEntry 删除某个星期几的计划条目
// DELETE /v1/plans/:day
func DeletePlanEntry(ctx context.Context, c *app.RequestContext) {
	profileID, ok := middleware.GetProfileID(ctx, c)
	if !ok {
		response.Error(ctx, c, pkgerrors.InvalidUserID)
		return
	}

	day := c.Param("day")
	if err := service.Plan().DeleteEntry(ctx, profileID, day); err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.NoContent(ctx, c)
}

func toPlanEntryResponse(e *model.WorkoutPlanEntry) model.PlanEntryResponse {
	return model.PlanEntryResponse{
		ID:        e.PublicID,
		Day:       e.Day,
		StartTime: e.StartTime,
		EndTime:   e.EndTime,
	}
}
